package product

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/AadiSharma49/Street-Food-Solution/pkg/db/models"
	"github.com/AadiSharma49/Street-Food-Solution/pkg/enums"
	"github.com/AadiSharma49/Street-Food-Solution/pkg/pagination"
)

// SupplierSummary exposes the minimal account data used by product read paths.
type SupplierSummary struct {
	SupplierID   uuid.UUID
	BusinessName string
	City         string
	Verified     bool
	Rating       float64
}

// Repository wires together all product-related persistence helpers.
type Repository struct {
	db *gorm.DB
}

// NewRepository builds a repository tied to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// WithTx returns a repository bound to the provided transaction.
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	return &Repository{db: tx}
}

// FindByID loads the product without associations.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	var product models.Product
	if err := r.db.WithContext(ctx).First(&product, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &product, nil
}

// CreateProduct inserts a new product row.
func (r *Repository) CreateProduct(ctx context.Context, product *models.Product) (*models.Product, error) {
	if err := r.db.WithContext(ctx).Create(product).Error; err != nil {
		return nil, err
	}
	return product, nil
}

// UpdateProduct updates an existing product row.
func (r *Repository) UpdateProduct(ctx context.Context, product *models.Product) (*models.Product, error) {
	if err := r.db.WithContext(ctx).Save(product).Error; err != nil {
		return nil, err
	}
	return product, nil
}

// DeleteProduct removes a supplier's product. It reports false when nothing matched.
func (r *Repository) DeleteProduct(ctx context.Context, supplierID, id uuid.UUID) (bool, error) {
	result := r.db.WithContext(ctx).
		Where("id = ? AND supplier_id = ?", id, supplierID).
		Delete(&models.Product{})
	return result.RowsAffected > 0, result.Error
}

// GetProductDetail fetches a product with its supplier summary. The summary is
// nil when the supplier account no longer exists.
func (r *Repository) GetProductDetail(ctx context.Context, id uuid.UUID) (*models.Product, *SupplierSummary, error) {
	product, err := r.FindByID(ctx, id)
	if err != nil {
		return nil, nil, err
	}

	var account models.Account
	err = r.db.WithContext(ctx).
		Select("id", "business_name", "city", "verified", "rating").
		Take(&account, "id = ?", product.SupplierID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return product, nil, nil
	}
	if err != nil {
		return nil, nil, err
	}
	return product, &SupplierSummary{
		SupplierID:   account.ID,
		BusinessName: account.BusinessName,
		City:         account.City,
		Verified:     account.Verified,
		Rating:       account.Rating,
	}, nil
}

type productListQuery struct {
	Category        string
	SupplierID      *uuid.UUID
	Search          string
	IncludeInactive bool
	Cursor          *pagination.Cursor
	Limit           int
}

// ListProducts returns one buffered page of products, newest first.
func (r *Repository) ListProducts(ctx context.Context, query productListQuery) ([]models.Product, error) {
	qb := r.db.WithContext(ctx).Model(&models.Product{})
	if query.Category != "" {
		qb = qb.Where("category = ?", query.Category)
	}
	if query.SupplierID != nil {
		qb = qb.Where("supplier_id = ?", *query.SupplierID)
	}
	if !query.IncludeInactive {
		qb = qb.Where("status <> ?", enums.ProductStatusInactive)
	}
	if search := strings.TrimSpace(query.Search); search != "" {
		pattern := "%" + strings.ToLower(search) + "%"
		qb = qb.Where("(LOWER(name) LIKE ? OR LOWER(category) LIKE ?)", pattern, pattern)
	}

	var rows []models.Product
	err := qb.Scopes(pagination.Scope(query.Cursor, query.Limit)).Find(&rows).Error
	return rows, err
}

type offerRecord struct {
	ProductID        uuid.UUID
	SupplierID       uuid.UUID
	BusinessName     string
	City             string
	Verified         bool
	Name             string
	Unit             string
	Price            decimal.Decimal
	MinOrderQuantity int
	StockQuantity    int
}

// ListOffersByName lists every active listing of a product name, cheapest first.
func (r *Repository) ListOffersByName(ctx context.Context, name string) ([]offerRecord, error) {
	var rows []offerRecord
	err := r.db.WithContext(ctx).
		Table("products p").
		Select(strings.Join([]string{
			"p.id AS product_id",
			"p.supplier_id",
			"a.business_name",
			"a.city",
			"a.verified",
			"p.name",
			"p.unit",
			"p.price",
			"p.min_order_quantity",
			"p.stock_quantity",
		}, ", ")).
		Joins("JOIN accounts a ON a.id = p.supplier_id").
		Where("LOWER(p.name) = ?", strings.ToLower(strings.TrimSpace(name))).
		Where("p.status = ?", enums.ProductStatusActive).
		Order("p.price ASC").
		Order("p.id ASC").
		Scan(&rows).Error
	return rows, err
}

// DecrementStock takes quantity out of stock when enough is available and
// flips an emptied active product to out_of_stock.
func (r *Repository) DecrementStock(ctx context.Context, id uuid.UUID, quantity int) (bool, error) {
	result := r.db.WithContext(ctx).
		Model(&models.Product{}).
		Where("id = ? AND stock_quantity >= ?", id, quantity).
		Updates(map[string]any{
			"stock_quantity": gorm.Expr("stock_quantity - ?", quantity),
			"status": gorm.Expr("CASE WHEN stock_quantity - ? = 0 AND status = ? THEN ? ELSE status END",
				quantity, enums.ProductStatusActive, enums.ProductStatusOutOfStock),
		})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

// RestoreStock returns quantity to stock, reactivating an out_of_stock product.
func (r *Repository) RestoreStock(ctx context.Context, id uuid.UUID, quantity int) error {
	return r.db.WithContext(ctx).
		Model(&models.Product{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"stock_quantity": gorm.Expr("stock_quantity + ?", quantity),
			"status": gorm.Expr("CASE WHEN status = ? THEN ? ELSE status END",
				enums.ProductStatusOutOfStock, enums.ProductStatusActive),
		}).Error
}

// Release restores stock inside the caller's transaction.
func (r *Repository) Release(ctx context.Context, tx *gorm.DB, productID uuid.UUID, qty int) error {
	return r.WithTx(tx).RestoreStock(ctx, productID, qty)
}

// Reserve takes stock inside the caller's transaction. It reports false
// when not enough stock is left.
func (r *Repository) Reserve(ctx context.Context, tx *gorm.DB, productID uuid.UUID, qty int) (bool, error) {
	return r.WithTx(tx).DecrementStock(ctx, productID, qty)
}
