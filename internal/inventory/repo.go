package inventory

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/AadiSharma49/Street-Food-Solution/pkg/db/models"
)

// Repository persists vendor stock records.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, item *models.InventoryItem) error
	FindForVendor(ctx context.Context, vendorID, id uuid.UUID) (*models.InventoryItem, error)
	ListByVendor(ctx context.Context, vendorID uuid.UUID, category string) ([]models.InventoryItem, error)
	Save(ctx context.Context, item *models.InventoryItem) error
	Delete(ctx context.Context, vendorID, id uuid.UUID) (bool, error)
	ListAlertCandidates(ctx context.Context, alertedBefore time.Time, limit int) ([]models.InventoryItem, error)
	MarkAlerted(ctx context.Context, id uuid.UUID, at time.Time) error
}

type repository struct {
	db *gorm.DB
}

// NewRepository builds an inventory repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, item *models.InventoryItem) error {
	return r.db.WithContext(ctx).Create(item).Error
}

func (r *repository) FindForVendor(ctx context.Context, vendorID, id uuid.UUID) (*models.InventoryItem, error) {
	var item models.InventoryItem
	err := r.db.WithContext(ctx).
		Where("id = ? AND vendor_id = ?", id, vendorID).
		First(&item).Error
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func (r *repository) ListByVendor(ctx context.Context, vendorID uuid.UUID, category string) ([]models.InventoryItem, error) {
	query := r.db.WithContext(ctx).Where("vendor_id = ?", vendorID)
	if category != "" {
		query = query.Where("category = ?", category)
	}
	var items []models.InventoryItem
	err := query.Order("product_name ASC, id ASC").Find(&items).Error
	return items, err
}

func (r *repository) Save(ctx context.Context, item *models.InventoryItem) error {
	return r.db.WithContext(ctx).Save(item).Error
}

func (r *repository) Delete(ctx context.Context, vendorID, id uuid.UUID) (bool, error) {
	result := r.db.WithContext(ctx).
		Where("id = ? AND vendor_id = ?", id, vendorID).
		Delete(&models.InventoryItem{})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

// ListAlertCandidates returns low or empty items not alerted since alertedBefore.
func (r *repository) ListAlertCandidates(ctx context.Context, alertedBefore time.Time, limit int) ([]models.InventoryItem, error) {
	var items []models.InventoryItem
	err := r.db.WithContext(ctx).
		Where("(current_stock = 0 OR current_stock < min_threshold)").
		Where("(last_alerted_at IS NULL OR last_alerted_at < ?)", alertedBefore).
		Order("current_stock ASC, id ASC").
		Limit(limit).
		Find(&items).Error
	return items, err
}

func (r *repository) MarkAlerted(ctx context.Context, id uuid.UUID, at time.Time) error {
	return r.db.WithContext(ctx).
		Model(&models.InventoryItem{}).
		Where("id = ?", id).
		UpdateColumn("last_alerted_at", at).Error
}
