package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// InventoryItem is a vendor's own stock record for one ingredient.
type InventoryItem struct {
	ID            uuid.UUID       `gorm:"column:id;type:uuid;primaryKey"`
	VendorID      uuid.UUID       `gorm:"column:vendor_id;type:uuid;not null;index"`
	ProductName   string          `gorm:"column:product_name;not null"`
	Category      string          `gorm:"column:category;not null"`
	Unit          string          `gorm:"column:unit;not null"`
	CurrentStock  float64         `gorm:"column:current_stock;not null;default:0"`
	MinThreshold  float64         `gorm:"column:min_threshold;not null;default:0"`
	MaxCapacity   float64         `gorm:"column:max_capacity;not null"`
	UsageRate     float64         `gorm:"column:usage_rate;not null;default:0"`
	CostPerUnit   decimal.Decimal `gorm:"column:cost_per_unit;type:numeric(12,2);not null;default:0"`
	SupplierID    *uuid.UUID      `gorm:"column:supplier_id;type:uuid"`
	LastRestocked *time.Time      `gorm:"column:last_restocked"`
	LastAlertedAt *time.Time      `gorm:"column:last_alerted_at"`
	CreatedAt     time.Time       `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt     time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}

func (i *InventoryItem) BeforeCreate(*gorm.DB) error {
	ensureID(&i.ID)
	return nil
}
