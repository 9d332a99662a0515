package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/AadiSharma49/Street-Food-Solution/pkg/enums"
)

// Product is a raw material listed by a supplier.
type Product struct {
	ID               uuid.UUID           `gorm:"column:id;type:uuid;primaryKey"`
	SupplierID       uuid.UUID           `gorm:"column:supplier_id;type:uuid;not null;index"`
	Name             string              `gorm:"column:name;not null"`
	Category         string              `gorm:"column:category;not null;index"`
	Price            decimal.Decimal     `gorm:"column:price;type:numeric(12,2);not null"`
	Unit             string              `gorm:"column:unit;not null"`
	StockQuantity    int                 `gorm:"column:stock_quantity;not null;default:0"`
	MinOrderQuantity int                 `gorm:"column:min_order_quantity;not null;default:1"`
	Description      *string             `gorm:"column:description"`
	ImageURL         *string             `gorm:"column:image_url"`
	Status           enums.ProductStatus `gorm:"column:status;not null;default:'active'"`
	CreatedAt        time.Time           `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt        time.Time           `gorm:"column:updated_at;autoUpdateTime"`
}

func (p *Product) BeforeCreate(*gorm.DB) error {
	ensureID(&p.ID)
	return nil
}

// IsPurchasable reports whether the product can be ordered right now.
func (p *Product) IsPurchasable() bool {
	return p.Status == enums.ProductStatusActive && p.StockQuantity > 0
}
