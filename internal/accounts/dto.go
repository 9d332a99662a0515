package accounts

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"

	"github.com/AadiSharma49/Street-Food-Solution/pkg/db/models"
	"github.com/AadiSharma49/Street-Food-Solution/pkg/enums"
	"github.com/AadiSharma49/Street-Food-Solution/pkg/pagination"
)

// AccountDTO exposes profile data in API responses. Supplier-only fields are
// omitted for vendors.
type AccountDTO struct {
	ID               uuid.UUID         `json:"id"`
	Type             enums.AccountType `json:"type"`
	Phone            string            `json:"phone"`
	BusinessName     string            `json:"business_name"`
	OwnerName        string            `json:"owner_name"`
	Email            *string           `json:"email,omitempty"`
	Address          string            `json:"address"`
	City             string            `json:"city"`
	State            string            `json:"state"`
	Pincode          string            `json:"pincode"`
	BusinessType     string            `json:"business_type"`
	YearsInBusiness  int               `json:"years_in_business"`
	Description      *string           `json:"description,omitempty"`
	GSTNumber        *string           `json:"gst_number,omitempty"`
	FSSAILicense     *string           `json:"fssai_license,omitempty"`
	Categories       []string          `json:"categories,omitempty"`
	MinOrderValue    *decimal.Decimal  `json:"min_order_value,omitempty"`
	DeliveryRadiusKM *int              `json:"delivery_radius_km,omitempty"`
	Verified         bool              `json:"verified"`
	Rating           *float64          `json:"rating,omitempty"`
	LastLoginAt      *time.Time        `json:"last_login_at,omitempty"`
	CreatedAt        time.Time         `json:"created_at"`
	UpdatedAt        time.Time         `json:"updated_at"`
}

// RegisterInput holds the profile captured at sign-up. Phone must already be
// normalized.
type RegisterInput struct {
	Type             enums.AccountType
	Phone            string
	BusinessName     string
	OwnerName        string
	Email            *string
	Address          string
	City             string
	State            string
	Pincode          string
	BusinessType     string
	YearsInBusiness  int
	Description      *string
	GSTNumber        *string
	FSSAILicense     *string
	Categories       []string
	MinOrderValue    decimal.Decimal
	DeliveryRadiusKM int
}

// UpdateProfileInput captures the allowed profile fields for mutation.
type UpdateProfileInput struct {
	BusinessName     *string
	OwnerName        *string
	Email            *string
	Address          *string
	City             *string
	State            *string
	Pincode          *string
	BusinessType     *string
	YearsInBusiness  *int
	Description      *string
	GSTNumber        *string
	FSSAILicense     *string
	Categories       *[]string
	MinOrderValue    *decimal.Decimal
	DeliveryRadiusKM *int
}

// ListSuppliersInput filters the supplier directory.
type ListSuppliersInput struct {
	City       string
	Category   string
	Verified   *bool
	Pagination pagination.Params
}

// FromModel maps the persisted account into a DTO.
func FromModel(m *models.Account) *AccountDTO {
	if m == nil {
		return nil
	}
	dto := &AccountDTO{
		ID:              m.ID,
		Type:            m.Type,
		Phone:           m.Phone,
		BusinessName:    m.BusinessName,
		OwnerName:       m.OwnerName,
		Email:           m.Email,
		Address:         m.Address,
		City:            m.City,
		State:           m.State,
		Pincode:         m.Pincode,
		BusinessType:    m.BusinessType,
		YearsInBusiness: m.YearsInBusiness,
		Description:     m.Description,
		Verified:        m.Verified,
		LastLoginAt:     m.LastLoginAt,
		CreatedAt:       m.CreatedAt,
		UpdatedAt:       m.UpdatedAt,
	}
	if m.IsSupplier() {
		minOrder := m.MinOrderValue
		radius := m.DeliveryRadiusKM
		rating := m.Rating
		dto.GSTNumber = m.GSTNumber
		dto.FSSAILicense = m.FSSAILicense
		dto.Categories = append([]string{}, m.Categories...)
		dto.MinOrderValue = &minOrder
		dto.DeliveryRadiusKM = &radius
		dto.Rating = &rating
	}
	return dto
}

// ToModel prepares the GORM model, dropping supplier fields for vendors.
func (in RegisterInput) ToModel() *models.Account {
	model := &models.Account{
		Type:            in.Type,
		Phone:           in.Phone,
		BusinessName:    strings.TrimSpace(in.BusinessName),
		OwnerName:       strings.TrimSpace(in.OwnerName),
		Email:           normalizeEmail(in.Email),
		Address:         strings.TrimSpace(in.Address),
		City:            strings.TrimSpace(in.City),
		State:           strings.TrimSpace(in.State),
		Pincode:         strings.TrimSpace(in.Pincode),
		BusinessType:    strings.TrimSpace(in.BusinessType),
		YearsInBusiness: in.YearsInBusiness,
		Description:     cloneStringPtr(in.Description),
		Categories:      pq.StringArray{},
	}
	if in.Type == enums.AccountTypeSupplier {
		model.GSTNumber = cloneStringPtr(in.GSTNumber)
		model.FSSAILicense = cloneStringPtr(in.FSSAILicense)
		model.Categories = normalizeCategories(in.Categories)
		model.MinOrderValue = in.MinOrderValue
		model.DeliveryRadiusKM = in.DeliveryRadiusKM
	}
	return model
}

func cloneStringPtr(value *string) *string {
	if value == nil {
		return nil
	}
	cpy := strings.TrimSpace(*value)
	return &cpy
}

func normalizeEmail(value *string) *string {
	if value == nil {
		return nil
	}
	email := strings.ToLower(strings.TrimSpace(*value))
	if email == "" {
		return nil
	}
	return &email
}

// normalizeCategories lowercases, trims and de-duplicates, keeping first-seen
// order. The result is never nil since the column is NOT NULL.
func normalizeCategories(values []string) pq.StringArray {
	seen := make(map[string]struct{}, len(values))
	res := make(pq.StringArray, 0, len(values))
	for _, value := range values {
		category := strings.ToLower(strings.TrimSpace(value))
		if category == "" {
			continue
		}
		if _, dup := seen[category]; dup {
			continue
		}
		seen[category] = struct{}{}
		res = append(res, category)
	}
	return res
}
