package accounts

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/google/uuid"

	"github.com/AadiSharma49/Street-Food-Solution/pkg/db"
	"github.com/AadiSharma49/Street-Food-Solution/pkg/db/models"
	"github.com/AadiSharma49/Street-Food-Solution/pkg/enums"
	pkgerrors "github.com/AadiSharma49/Street-Food-Solution/pkg/errors"
	"github.com/AadiSharma49/Street-Food-Solution/pkg/logger"
	"github.com/AadiSharma49/Street-Food-Solution/pkg/pagination"
)

const phoneConstraint = "ux_accounts_phone"

var pincodePattern = regexp.MustCompile(`^[1-9][0-9]{5}$`)

type accountRepository interface {
	Create(ctx context.Context, account *models.Account) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.Account, error)
	Update(ctx context.Context, account *models.Account) error
	ListSuppliers(ctx context.Context, query supplierListQuery) ([]models.Account, error)
}

// Service exposes vendor and supplier profile operations.
type Service interface {
	Register(ctx context.Context, input RegisterInput) (*AccountDTO, error)
	GetProfile(ctx context.Context, id uuid.UUID) (*AccountDTO, error)
	UpdateProfile(ctx context.Context, id uuid.UUID, input UpdateProfileInput) (*AccountDTO, error)
	ListSuppliers(ctx context.Context, input ListSuppliersInput) (*pagination.Page[AccountDTO], error)
}

type service struct {
	repo accountRepository
	logg *logger.Logger
}

// NewService builds an account service with the provided repository.
func NewService(repo accountRepository, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("account repository required")
	}
	if logg == nil {
		logg = logger.Nop()
	}
	return &service{repo: repo, logg: logg}, nil
}

func (s *service) Register(ctx context.Context, input RegisterInput) (*AccountDTO, error) {
	if !input.Type.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid account type")
	}
	if strings.TrimSpace(input.Phone) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "phone is required")
	}
	account := input.ToModel()
	if err := validateAccount(account); err != nil {
		return nil, err
	}

	if err := s.repo.Create(ctx, account); err != nil {
		if db.IsUniqueViolation(err, phoneConstraint) || db.IsUniqueViolation(err, "accounts.phone") {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "phone number already registered")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create account")
	}
	s.logg.Info(s.logg.WithFields(ctx, map[string]any{
		"account_id":   account.ID.String(),
		"account_type": account.Type.String(),
	}), "account registered")
	return FromModel(account), nil
}

func (s *service) GetProfile(ctx context.Context, id uuid.UUID) (*AccountDTO, error) {
	account, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	return FromModel(account), nil
}

func (s *service) UpdateProfile(ctx context.Context, id uuid.UUID, input UpdateProfileInput) (*AccountDTO, error) {
	account, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}

	if input.BusinessName != nil {
		account.BusinessName = strings.TrimSpace(*input.BusinessName)
	}
	if input.OwnerName != nil {
		account.OwnerName = strings.TrimSpace(*input.OwnerName)
	}
	if input.Email != nil {
		account.Email = normalizeEmail(input.Email)
	}
	if input.Address != nil {
		account.Address = strings.TrimSpace(*input.Address)
	}
	if input.City != nil {
		account.City = strings.TrimSpace(*input.City)
	}
	if input.State != nil {
		account.State = strings.TrimSpace(*input.State)
	}
	if input.Pincode != nil {
		account.Pincode = strings.TrimSpace(*input.Pincode)
	}
	if input.BusinessType != nil {
		account.BusinessType = strings.TrimSpace(*input.BusinessType)
	}
	if input.YearsInBusiness != nil {
		account.YearsInBusiness = *input.YearsInBusiness
	}
	if input.Description != nil {
		account.Description = cloneStringPtr(input.Description)
	}

	if account.IsSupplier() {
		if input.GSTNumber != nil {
			account.GSTNumber = cloneStringPtr(input.GSTNumber)
		}
		if input.FSSAILicense != nil {
			account.FSSAILicense = cloneStringPtr(input.FSSAILicense)
		}
		if input.Categories != nil {
			account.Categories = normalizeCategories(*input.Categories)
		}
		if input.MinOrderValue != nil {
			account.MinOrderValue = *input.MinOrderValue
		}
		if input.DeliveryRadiusKM != nil {
			account.DeliveryRadiusKM = *input.DeliveryRadiusKM
		}
	} else if input.Categories != nil || input.MinOrderValue != nil || input.DeliveryRadiusKM != nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "supplier fields cannot be set on a vendor account")
	}

	if err := validateAccount(account); err != nil {
		return nil, err
	}
	if err := s.repo.Update(ctx, account); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update account")
	}
	return FromModel(account), nil
}

func (s *service) ListSuppliers(ctx context.Context, input ListSuppliersInput) (*pagination.Page[AccountDTO], error) {
	cursor, err := pagination.ParseCursor(input.Pagination.Cursor)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
	}
	rows, err := s.repo.ListSuppliers(ctx, supplierListQuery{
		City:     strings.TrimSpace(input.City),
		Category: strings.ToLower(strings.TrimSpace(input.Category)),
		Verified: input.Verified,
		Cursor:   cursor,
		Limit:    input.Pagination.Limit,
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list suppliers")
	}

	rows, next := pagination.Trim(rows, input.Pagination.Limit, func(a models.Account) pagination.Cursor {
		return pagination.Cursor{CreatedAt: a.CreatedAt, ID: a.ID}
	})
	page := &pagination.Page[AccountDTO]{Items: make([]AccountDTO, 0, len(rows))}
	for i := range rows {
		page.Items = append(page.Items, *FromModel(&rows[i]))
	}
	if next != nil {
		page.NextCursor = pagination.EncodeCursor(*next)
	}
	return page, nil
}

func (s *service) load(ctx context.Context, id uuid.UUID) (*models.Account, error) {
	account, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if db.IsNotFound(err) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "account not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load account")
	}
	return account, nil
}

func validateAccount(a *models.Account) error {
	switch {
	case a.BusinessName == "":
		return pkgerrors.New(pkgerrors.CodeValidation, "business_name is required")
	case a.OwnerName == "":
		return pkgerrors.New(pkgerrors.CodeValidation, "owner_name is required")
	case a.Address == "" || a.City == "" || a.State == "":
		return pkgerrors.New(pkgerrors.CodeValidation, "address, city and state are required")
	case !pincodePattern.MatchString(a.Pincode):
		return pkgerrors.New(pkgerrors.CodeValidation, "pincode must be 6 digits")
	case a.BusinessType == "":
		return pkgerrors.New(pkgerrors.CodeValidation, "business_type is required")
	case a.YearsInBusiness < 0:
		return pkgerrors.New(pkgerrors.CodeValidation, "years_in_business must not be negative")
	case a.Email != nil && !strings.Contains(*a.Email, "@"):
		return pkgerrors.New(pkgerrors.CodeValidation, "invalid email")
	}
	if a.Type == enums.AccountTypeSupplier {
		switch {
		case len(a.Categories) == 0:
			return pkgerrors.New(pkgerrors.CodeValidation, "suppliers must list at least one category")
		case a.MinOrderValue.IsNegative():
			return pkgerrors.New(pkgerrors.CodeValidation, "min_order_value must not be negative")
		case a.DeliveryRadiusKM < 0:
			return pkgerrors.New(pkgerrors.CodeValidation, "delivery_radius_km must not be negative")
		}
	}
	return nil
}
