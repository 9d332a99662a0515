package inventory

import (
	"math"
	"sort"

	"github.com/google/uuid"

	"github.com/AadiSharma49/Street-Food-Solution/pkg/enums"
)

// Item is the evaluator's view of a stock record. Quantities are in the
// item's own unit; UsageRate is units per day.
type Item struct {
	ID           uuid.UUID
	CurrentStock float64
	MinThreshold float64
	MaxCapacity  float64
	UsageRate    float64
}

// Classify buckets an item. First match wins: empty, below threshold, above
// capacity, otherwise in stock.
func Classify(item Item) enums.StockStatus {
	switch {
	case item.CurrentStock == 0:
		return enums.StockStatusOutOfStock
	case item.CurrentStock < item.MinThreshold:
		return enums.StockStatusLowStock
	case item.CurrentStock > item.MaxCapacity:
		return enums.StockStatusOverstocked
	default:
		return enums.StockStatusInStock
	}
}

// EstimatedDaysLeft is stock divided by daily usage, +Inf when nothing is used.
func EstimatedDaysLeft(item Item) float64 {
	if item.UsageRate == 0 {
		return math.Inf(1)
	}
	return item.CurrentStock / item.UsageRate
}

// NeedsReorder reports whether the item is low or out of stock.
func NeedsReorder(item Item) bool {
	status := Classify(item)
	return status == enums.StockStatusLowStock || status == enums.StockStatusOutOfStock
}

// Severity maps a reorder status to its alert severity.
func Severity(status enums.StockStatus) enums.AlertSeverity {
	if status == enums.StockStatusOutOfStock {
		return enums.AlertSeverityCritical
	}
	return enums.AlertSeverityHigh
}

// RankAlerts returns the items needing reorder, soonest to run out first.
// Ties put out_of_stock ahead of low_stock. The result is a new slice on
// every call and the input is not reordered.
func RankAlerts(items []Item) []Item {
	ranked := make([]Item, 0, len(items))
	for _, item := range items {
		if NeedsReorder(item) {
			ranked = append(ranked, item)
		}
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		di, dj := EstimatedDaysLeft(ranked[i]), EstimatedDaysLeft(ranked[j])
		if di != dj {
			return di < dj
		}
		return severityRank(Classify(ranked[i])) > severityRank(Classify(ranked[j]))
	})
	return ranked
}

func severityRank(status enums.StockStatus) int {
	if status == enums.StockStatusOutOfStock {
		return 2
	}
	return 1
}
