package grouporders

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/AadiSharma49/Street-Food-Solution/pkg/db/models"
	"github.com/AadiSharma49/Street-Food-Solution/pkg/enums"
	"github.com/AadiSharma49/Street-Food-Solution/pkg/pagination"
)

// Repository persists group orders and their participants.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, order *models.GroupOrder) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.GroupOrder, error)
	List(ctx context.Context, params listParams) ([]models.GroupOrder, error)
	ListExpired(ctx context.Context, now time.Time, limit int) ([]models.GroupOrder, error)
	UpdateState(ctx context.Context, order *models.GroupOrder, expectedVersion int) (bool, error)
	AddParticipant(ctx context.Context, participant *models.GroupOrderParticipant) error
}

type listParams struct {
	Status        enums.GroupOrderStatus
	Category      string
	SupplierID    *uuid.UUID
	ParticipantID *uuid.UUID
	Cursor        *pagination.Cursor
	Limit         int
}

type repository struct {
	db *gorm.DB
}

// NewRepository builds a group orders repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, order *models.GroupOrder) error {
	return r.db.WithContext(ctx).Omit("Participants").Create(order).Error
}

func (r *repository) FindByID(ctx context.Context, id uuid.UUID) (*models.GroupOrder, error) {
	var order models.GroupOrder
	err := r.db.WithContext(ctx).
		Preload("Participants", func(db *gorm.DB) *gorm.DB {
			return db.Order("joined_at ASC, id ASC")
		}).
		Where("id = ?", id).
		First(&order).Error
	if err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *repository) List(ctx context.Context, params listParams) ([]models.GroupOrder, error) {
	query := r.db.WithContext(ctx).Model(&models.GroupOrder{})
	if params.Status != "" {
		query = query.Where("status = ?", params.Status)
	}
	if params.Category != "" {
		query = query.Where("category = ?", params.Category)
	}
	if params.SupplierID != nil {
		query = query.Where("supplier_id = ?", *params.SupplierID)
	}
	if params.ParticipantID != nil {
		query = query.Where("id IN (?)", r.db.Model(&models.GroupOrderParticipant{}).
			Select("group_order_id").
			Where("vendor_id = ?", *params.ParticipantID))
	}

	var rows []models.GroupOrder
	err := query.
		Scopes(pagination.Scope(params.Cursor, params.Limit)).
		Find(&rows).Error
	return rows, err
}

func (r *repository) ListExpired(ctx context.Context, now time.Time, limit int) ([]models.GroupOrder, error) {
	var rows []models.GroupOrder
	err := r.db.WithContext(ctx).
		Preload("Participants").
		Where("status = ? AND end_time <= ?", enums.GroupOrderStatusActive, now).
		Order("end_time ASC").
		Limit(limit).
		Find(&rows).Error
	return rows, err
}

// UpdateState writes the mutable state columns only when the stored version
// still equals expectedVersion, then bumps the version. A false result means
// another writer got there first.
func (r *repository) UpdateState(ctx context.Context, order *models.GroupOrder, expectedVersion int) (bool, error) {
	result := r.db.WithContext(ctx).
		Model(&models.GroupOrder{}).
		Where("id = ? AND version = ?", order.ID, expectedVersion).
		Updates(map[string]any{
			"current_quantity": order.CurrentQuantity,
			"status":           order.Status,
			"completed_at":     order.CompletedAt,
			"cancelled_at":     order.CancelledAt,
			"version":          expectedVersion + 1,
			"updated_at":       time.Now().UTC(),
		})
	if result.Error != nil {
		return false, result.Error
	}
	if result.RowsAffected == 0 {
		return false, nil
	}
	order.Version = expectedVersion + 1
	return true, nil
}

func (r *repository) AddParticipant(ctx context.Context, participant *models.GroupOrderParticipant) error {
	return r.db.WithContext(ctx).Create(participant).Error
}
