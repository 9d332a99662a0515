package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/AadiSharma49/Street-Food-Solution/pkg/enums"
)

// GroupOrder pools vendor demand for one supplier product at a group price.
// Version increments on every write and guards concurrent joins.
type GroupOrder struct {
	ID              uuid.UUID               `gorm:"column:id;type:uuid;primaryKey"`
	ProductID       uuid.UUID               `gorm:"column:product_id;type:uuid;not null;index"`
	SupplierID      uuid.UUID               `gorm:"column:supplier_id;type:uuid;not null;index"`
	Title           string                  `gorm:"column:title;not null"`
	Description     *string                 `gorm:"column:description"`
	Category        string                  `gorm:"column:category;not null"`
	Unit            string                  `gorm:"column:unit;not null"`
	TargetQuantity  int                     `gorm:"column:target_quantity;not null"`
	CurrentQuantity int                     `gorm:"column:current_quantity;not null;default:0"`
	MinJoinQuantity int                     `gorm:"column:min_join_quantity;not null;default:1"`
	MaxJoinQuantity int                     `gorm:"column:max_join_quantity;not null;default:0"`
	RegularPrice    decimal.Decimal         `gorm:"column:regular_price;type:numeric(12,2);not null"`
	GroupPrice      decimal.Decimal         `gorm:"column:group_price;type:numeric(12,2);not null"`
	EndTime         time.Time               `gorm:"column:end_time;not null;index"`
	Status          enums.GroupOrderStatus  `gorm:"column:status;not null;default:'active';index"`
	Version         int                     `gorm:"column:version;not null;default:1"`
	CompletedAt     *time.Time              `gorm:"column:completed_at"`
	CancelledAt     *time.Time              `gorm:"column:cancelled_at"`
	Participants    []GroupOrderParticipant `gorm:"foreignKey:GroupOrderID;constraint:OnDelete:CASCADE"`
	CreatedAt       time.Time               `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt       time.Time               `gorm:"column:updated_at;autoUpdateTime"`
}

func (g *GroupOrder) BeforeCreate(*gorm.DB) error {
	ensureID(&g.ID)
	return nil
}

// GroupOrderParticipant is one vendor's commitment to a group order.
type GroupOrderParticipant struct {
	ID           uuid.UUID `gorm:"column:id;type:uuid;primaryKey"`
	GroupOrderID uuid.UUID `gorm:"column:group_order_id;type:uuid;not null;uniqueIndex:ux_group_order_participants_vendor"`
	VendorID     uuid.UUID `gorm:"column:vendor_id;type:uuid;not null;uniqueIndex:ux_group_order_participants_vendor"`
	Quantity     int       `gorm:"column:quantity;not null"`
	JoinedAt     time.Time `gorm:"column:joined_at;not null"`
}

func (p *GroupOrderParticipant) BeforeCreate(*gorm.DB) error {
	ensureID(&p.ID)
	return nil
}
