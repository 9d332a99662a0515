package enums

import "fmt"

// StockStatus is the derived bucket for an inventory item.
type StockStatus string

const (
	StockStatusInStock     StockStatus = "in_stock"
	StockStatusLowStock    StockStatus = "low_stock"
	StockStatusOutOfStock  StockStatus = "out_of_stock"
	StockStatusOverstocked StockStatus = "overstocked"
)

var validStockStatuses = []StockStatus{
	StockStatusInStock,
	StockStatusLowStock,
	StockStatusOutOfStock,
	StockStatusOverstocked,
}

// String implements fmt.Stringer.
func (s StockStatus) String() string {
	return string(s)
}

// IsValid reports whether the value is a known StockStatus.
func (s StockStatus) IsValid() bool {
	for _, candidate := range validStockStatuses {
		if candidate == s {
			return true
		}
	}
	return false
}

// ParseStockStatus converts raw input into a StockStatus.
func ParseStockStatus(value string) (StockStatus, error) {
	for _, candidate := range validStockStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid stock status %q", value)
}

// AlertSeverity ranks reorder alerts for display.
type AlertSeverity string

const (
	AlertSeverityCritical AlertSeverity = "critical"
	AlertSeverityHigh     AlertSeverity = "high"
)
