package accounts

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/AadiSharma49/Street-Food-Solution/pkg/db/models"
	"github.com/AadiSharma49/Street-Food-Solution/pkg/enums"
	"github.com/AadiSharma49/Street-Food-Solution/pkg/pagination"
)

// Repository handles account persistence.
type Repository struct {
	db *gorm.DB
}

// NewRepository binds a GORM DB to account operations.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// WithTx returns a repository bound to the provided transaction.
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	if tx == nil {
		return r
	}
	return &Repository{db: tx}
}

// Create persists a new account row.
func (r *Repository) Create(ctx context.Context, account *models.Account) error {
	return r.db.WithContext(ctx).Create(account).Error
}

// FindByID loads an account by its UUID.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Account, error) {
	var account models.Account
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&account).Error; err != nil {
		return nil, err
	}
	return &account, nil
}

// FindByPhone loads an account by its normalized phone number.
func (r *Repository) FindByPhone(ctx context.Context, phone string) (*models.Account, error) {
	var account models.Account
	if err := r.db.WithContext(ctx).Where("phone = ?", phone).First(&account).Error; err != nil {
		return nil, err
	}
	return &account, nil
}

// Update saves the provided account.
func (r *Repository) Update(ctx context.Context, account *models.Account) error {
	if account == nil {
		return fmt.Errorf("account is required")
	}
	return r.db.WithContext(ctx).Save(account).Error
}

// TouchLastLogin stamps last_login_at without bumping other columns.
func (r *Repository) TouchLastLogin(ctx context.Context, id uuid.UUID, at time.Time) error {
	return r.db.WithContext(ctx).
		Model(&models.Account{}).
		Where("id = ?", id).
		UpdateColumn("last_login_at", at).Error
}

type supplierListQuery struct {
	City     string
	Category string
	Verified *bool
	Cursor   *pagination.Cursor
	Limit    int
}

// ListSuppliers returns one buffered page of supplier accounts, newest first.
func (r *Repository) ListSuppliers(ctx context.Context, query supplierListQuery) ([]models.Account, error) {
	qb := r.db.WithContext(ctx).
		Model(&models.Account{}).
		Where("account_type = ?", enums.AccountTypeSupplier)
	if query.City != "" {
		qb = qb.Where("LOWER(city) = ?", strings.ToLower(query.City))
	}
	if query.Category != "" {
		qb = r.whereCategory(qb, query.Category)
	}
	if query.Verified != nil {
		qb = qb.Where("verified = ?", *query.Verified)
	}

	var rows []models.Account
	err := qb.Scopes(pagination.Scope(query.Cursor, query.Limit)).Find(&rows).Error
	return rows, err
}

// whereCategory matches one entry of the categories array. SQLite stores the
// array literal as text, where pq quotes every element.
func (r *Repository) whereCategory(qb *gorm.DB, category string) *gorm.DB {
	if r.db.Dialector.Name() == "postgres" {
		return qb.Where("? = ANY(categories)", category)
	}
	return qb.Where("categories LIKE ?", `%"`+category+`"%`)
}
