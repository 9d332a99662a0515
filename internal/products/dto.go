package product

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/AadiSharma49/Street-Food-Solution/pkg/db/models"
	"github.com/AadiSharma49/Street-Food-Solution/pkg/enums"
)

// ProductDTO represents the supplier product payload returned to clients.
type ProductDTO struct {
	ID               uuid.UUID           `json:"id"`
	SupplierID       uuid.UUID           `json:"supplier_id"`
	Name             string              `json:"name"`
	Category         string              `json:"category"`
	Price            decimal.Decimal     `json:"price"`
	Unit             string              `json:"unit"`
	StockQuantity    int                 `json:"stock_quantity"`
	MinOrderQuantity int                 `json:"min_order_quantity"`
	Description      *string             `json:"description,omitempty"`
	ImageURL         *string             `json:"image_url,omitempty"`
	Status           enums.ProductStatus `json:"status"`
	Supplier         *SupplierSummaryDTO `json:"supplier,omitempty"`
	CreatedAt        time.Time           `json:"created_at"`
	UpdatedAt        time.Time           `json:"updated_at"`
}

// SupplierSummaryDTO surfaces limited account data for product responses.
type SupplierSummaryDTO struct {
	ID           uuid.UUID `json:"id"`
	BusinessName string    `json:"business_name"`
	City         string    `json:"city"`
	Verified     bool      `json:"verified"`
	Rating       float64   `json:"rating"`
}

// OfferDTO is one supplier's listing of a product name.
type OfferDTO struct {
	ProductID        uuid.UUID       `json:"product_id"`
	SupplierID       uuid.UUID       `json:"supplier_id"`
	SupplierName     string          `json:"supplier_name"`
	City             string          `json:"city"`
	Verified         bool            `json:"verified"`
	Unit             string          `json:"unit"`
	Price            decimal.Decimal `json:"price"`
	MinOrderQuantity int             `json:"min_order_quantity"`
	InStock          bool            `json:"in_stock"`
}

// PriceComparison lists the offers for a product name, cheapest first.
// MaxSavingsPerUnit is the gap between the dearest and the cheapest offer.
type PriceComparison struct {
	Name              string          `json:"name"`
	Offers            []OfferDTO      `json:"offers"`
	Cheapest          *OfferDTO       `json:"cheapest,omitempty"`
	MaxSavingsPerUnit decimal.Decimal `json:"max_savings_per_unit"`
}

// NewProductDTO builds a DTO from the persisted model and supplier summary.
func NewProductDTO(product *models.Product, summary *SupplierSummary) *ProductDTO {
	dto := &ProductDTO{
		ID:               product.ID,
		SupplierID:       product.SupplierID,
		Name:             product.Name,
		Category:         product.Category,
		Price:            product.Price,
		Unit:             product.Unit,
		StockQuantity:    product.StockQuantity,
		MinOrderQuantity: product.MinOrderQuantity,
		Description:      product.Description,
		ImageURL:         product.ImageURL,
		Status:           product.Status,
		CreatedAt:        product.CreatedAt,
		UpdatedAt:        product.UpdatedAt,
	}
	if summary != nil {
		dto.Supplier = &SupplierSummaryDTO{
			ID:           summary.SupplierID,
			BusinessName: summary.BusinessName,
			City:         summary.City,
			Verified:     summary.Verified,
			Rating:       summary.Rating,
		}
	}
	return dto
}

func (r offerRecord) toDTO() OfferDTO {
	return OfferDTO{
		ProductID:        r.ProductID,
		SupplierID:       r.SupplierID,
		SupplierName:     r.BusinessName,
		City:             r.City,
		Verified:         r.Verified,
		Unit:             r.Unit,
		Price:            r.Price,
		MinOrderQuantity: r.MinOrderQuantity,
		InStock:          r.StockQuantity > 0,
	}
}
