package inventory

import (
	"math"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/AadiSharma49/Street-Food-Solution/pkg/db/models"
	"github.com/AadiSharma49/Street-Food-Solution/pkg/enums"
	"github.com/AadiSharma49/Street-Food-Solution/pkg/types"
)

// ItemInput creates an inventory item.
type ItemInput struct {
	ProductName  string
	Category     string
	Unit         string
	CurrentStock float64
	MinThreshold float64
	MaxCapacity  float64
	UsageRate    float64
	CostPerUnit  decimal.Decimal
	SupplierID   *uuid.UUID
}

// UpdateInput patches an item. Nil fields are left unchanged; SupplierID
// distinguishes an explicit null (clear) from an absent field.
type UpdateInput struct {
	ProductName  *string
	Category     *string
	Unit         *string
	CurrentStock *float64
	MinThreshold *float64
	MaxCapacity  *float64
	UsageRate    *float64
	CostPerUnit  *decimal.Decimal
	SupplierID   types.NullableUUID
}

// ItemView is an item with its derived figures. EstimatedDaysLeft is nil
// when the item is not being consumed.
type ItemView struct {
	ID                uuid.UUID         `json:"id"`
	ProductName       string            `json:"product_name"`
	Category          string            `json:"category"`
	Unit              string            `json:"unit"`
	CurrentStock      float64           `json:"current_stock"`
	MinThreshold      float64           `json:"min_threshold"`
	MaxCapacity       float64           `json:"max_capacity"`
	UsageRate         float64           `json:"usage_rate"`
	CostPerUnit       decimal.Decimal   `json:"cost_per_unit"`
	SupplierID        *uuid.UUID        `json:"supplier_id,omitempty"`
	LastRestocked     *time.Time        `json:"last_restocked,omitempty"`
	Status            enums.StockStatus `json:"status"`
	EstimatedDaysLeft *float64          `json:"estimated_days_left"`
	StockPercent      float64           `json:"stock_percent"`
	TotalValue        decimal.Decimal   `json:"total_value"`
	NeedsReorder      bool              `json:"needs_reorder"`
	UpdatedAt         time.Time         `json:"updated_at"`
}

// Alert is a ranked reorder alert.
type Alert struct {
	Item     ItemView            `json:"item"`
	Severity enums.AlertSeverity `json:"severity"`
}

// Summary aggregates a vendor's stock.
type Summary struct {
	TotalItems    int             `json:"total_items"`
	CriticalCount int             `json:"critical_count"`
	LowStock      int             `json:"low_stock"`
	OutOfStock    int             `json:"out_of_stock"`
	Overstocked   int             `json:"overstocked"`
	TotalValue    decimal.Decimal `json:"total_value"`
}

func evaluatorItem(m *models.InventoryItem) Item {
	return Item{
		ID:           m.ID,
		CurrentStock: m.CurrentStock,
		MinThreshold: m.MinThreshold,
		MaxCapacity:  m.MaxCapacity,
		UsageRate:    m.UsageRate,
	}
}

// StockPercent is current over capacity, clamped to 100.
func StockPercent(current, capacity float64) float64 {
	if capacity <= 0 {
		return 0
	}
	return math.Min(current/capacity*100, 100)
}

func totalValue(m *models.InventoryItem) decimal.Decimal {
	return m.CostPerUnit.Mul(decimal.NewFromFloat(m.CurrentStock)).Round(2)
}

func toView(m *models.InventoryItem) ItemView {
	item := evaluatorItem(m)
	view := ItemView{
		ID:            m.ID,
		ProductName:   m.ProductName,
		Category:      m.Category,
		Unit:          m.Unit,
		CurrentStock:  m.CurrentStock,
		MinThreshold:  m.MinThreshold,
		MaxCapacity:   m.MaxCapacity,
		UsageRate:     m.UsageRate,
		CostPerUnit:   m.CostPerUnit,
		SupplierID:    m.SupplierID,
		LastRestocked: m.LastRestocked,
		Status:        Classify(item),
		StockPercent:  StockPercent(m.CurrentStock, m.MaxCapacity),
		TotalValue:    totalValue(m),
		NeedsReorder:  NeedsReorder(item),
		UpdatedAt:     m.UpdatedAt,
	}
	if days := EstimatedDaysLeft(item); !math.IsInf(days, 1) {
		view.EstimatedDaysLeft = &days
	}
	return view
}
