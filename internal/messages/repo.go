package messages

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/AadiSharma49/Street-Food-Solution/pkg/db/models"
	"github.com/AadiSharma49/Street-Food-Solution/pkg/pagination"
)

// Repository persists direct messages.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, message *models.Message) error
	ListConversation(ctx context.Context, me, partner uuid.UUID, cursor *pagination.Cursor, limit int) ([]models.Message, error)
	MarkConversationRead(ctx context.Context, me, partner uuid.UUID, now time.Time) (int64, error)
	ListPartners(ctx context.Context, me uuid.UUID, limit int) ([]partnerRow, error)
	LastMessage(ctx context.Context, me, partner uuid.UUID) (*models.Message, error)
}

type partnerRow struct {
	PartnerID uuid.UUID `gorm:"column:partner_id"`
	Unread    int64     `gorm:"column:unread"`
}

type repository struct {
	db *gorm.DB
}

// NewRepository binds the messages repository to db.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, message *models.Message) error {
	return r.db.WithContext(ctx).Create(message).Error
}

func (r *repository) between(ctx context.Context, me, partner uuid.UUID) *gorm.DB {
	return r.db.WithContext(ctx).
		Model(&models.Message{}).
		Where("(sender_id = ? AND receiver_id = ?) OR (sender_id = ? AND receiver_id = ?)", me, partner, partner, me)
}

// ListConversation returns one newest-first page; callers reverse it for display.
func (r *repository) ListConversation(ctx context.Context, me, partner uuid.UUID, cursor *pagination.Cursor, limit int) ([]models.Message, error) {
	var rows []models.Message
	err := r.between(ctx, me, partner).
		Scopes(pagination.Scope(cursor, limit)).
		Find(&rows).Error
	return rows, err
}

func (r *repository) MarkConversationRead(ctx context.Context, me, partner uuid.UUID, now time.Time) (int64, error) {
	result := r.db.WithContext(ctx).
		Model(&models.Message{}).
		Where("sender_id = ? AND receiver_id = ? AND read_at IS NULL", partner, me).
		UpdateColumn("read_at", now)
	return result.RowsAffected, result.Error
}

// ListPartners groups every message touching me by the other party, most
// recently active first.
func (r *repository) ListPartners(ctx context.Context, me uuid.UUID, limit int) ([]partnerRow, error) {
	var rows []partnerRow
	err := r.db.WithContext(ctx).
		Model(&models.Message{}).
		Select(`CASE WHEN sender_id = ? THEN receiver_id ELSE sender_id END AS partner_id,
			SUM(CASE WHEN receiver_id = ? AND read_at IS NULL THEN 1 ELSE 0 END) AS unread`, me, me).
		Where("sender_id = ? OR receiver_id = ?", me, me).
		Group("partner_id").
		Order("MAX(created_at) DESC").
		Limit(limit).
		Scan(&rows).Error
	return rows, err
}

func (r *repository) LastMessage(ctx context.Context, me, partner uuid.UUID) (*models.Message, error) {
	var message models.Message
	err := r.between(ctx, me, partner).
		Order("created_at DESC, id DESC").
		First(&message).Error
	if err != nil {
		return nil, err
	}
	return &message, nil
}
