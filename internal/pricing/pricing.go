package pricing

import (
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

var (
	// ErrInvalidPrice marks a negative price or a group price above the regular price.
	ErrInvalidPrice = errors.New("invalid price")
	// ErrInvalidQuantity marks a quantity outside the allowed range.
	ErrInvalidQuantity = errors.New("invalid quantity")
)

// Item is anything sold at a fixed price per unit label.
type Item struct {
	UnitPrice decimal.Decimal `json:"unit_price"`
	Unit      string          `json:"unit"`
}

// Validate checks the price is non-negative and the unit label is present.
func (i Item) Validate() error {
	if i.UnitPrice.IsNegative() {
		return fmt.Errorf("%w: unit price %s is negative", ErrInvalidPrice, i.UnitPrice)
	}
	if strings.TrimSpace(i.Unit) == "" {
		return errors.New("unit is required")
	}
	return nil
}

// SavingsPerUnit returns regular - group.
func SavingsPerUnit(regular, group decimal.Decimal) (decimal.Decimal, error) {
	if regular.IsNegative() || group.IsNegative() {
		return decimal.Zero, fmt.Errorf("%w: prices must be non-negative (regular %s, group %s)", ErrInvalidPrice, regular, group)
	}
	if group.GreaterThan(regular) {
		return decimal.Zero, fmt.Errorf("%w: group price %s exceeds regular price %s", ErrInvalidPrice, group, regular)
	}
	return regular.Sub(group), nil
}

// LineTotal returns unitPrice * quantity. A zero quantity is allowed.
func LineTotal(unitPrice decimal.Decimal, quantity int) (decimal.Decimal, error) {
	if quantity < 0 {
		return decimal.Zero, fmt.Errorf("%w: %d", ErrInvalidQuantity, quantity)
	}
	if unitPrice.IsNegative() {
		return decimal.Zero, fmt.Errorf("%w: unit price %s is negative", ErrInvalidPrice, unitPrice)
	}
	return unitPrice.Mul(decimal.NewFromInt(int64(quantity))), nil
}
