package cart

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/AadiSharma49/Street-Food-Solution/internal/pricing"
)

// Product is the catalog snapshot a line is created from.
type Product struct {
	ID         uuid.UUID
	SupplierID uuid.UUID
	Name       string
	Unit       string
	UnitPrice  decimal.Decimal
}

// Line is one product in the cart.
type Line struct {
	ProductID  uuid.UUID       `json:"product_id"`
	SupplierID uuid.UUID       `json:"supplier_id"`
	Name       string          `json:"name"`
	Unit       string          `json:"unit"`
	UnitPrice  decimal.Decimal `json:"unit_price"`
	Quantity   int             `json:"quantity"`
}

// Cart is an immutable value: every operation returns a new Cart and leaves
// its argument untouched. Lines keep first-add order.
type Cart struct {
	Lines []Line `json:"lines"`
}

// Len returns the number of distinct products.
func (c Cart) Len() int {
	return len(c.Lines)
}

// Line returns the line for productID.
func (c Cart) Line(productID uuid.UUID) (Line, bool) {
	if idx := c.indexOf(productID); idx >= 0 {
		return c.Lines[idx], true
	}
	return Line{}, false
}

func (c Cart) indexOf(productID uuid.UUID) int {
	for i, line := range c.Lines {
		if line.ProductID == productID {
			return i
		}
	}
	return -1
}

func (c Cart) clone() Cart {
	lines := make([]Line, len(c.Lines))
	copy(lines, c.Lines)
	return Cart{Lines: lines}
}

// AddItem merges quantity into the product's line, or appends a new line.
// The resulting quantity must be at least 1. A merge refreshes the line's
// snapshot (name, unit, price) from product.
func AddItem(c Cart, product Product, quantity int) (Cart, error) {
	if product.ID == uuid.Nil {
		return c, fmt.Errorf("product id required")
	}
	if err := (pricing.Item{UnitPrice: product.UnitPrice, Unit: product.Unit}).Validate(); err != nil {
		return c, err
	}

	next := c.clone()
	line := Line{
		ProductID:  product.ID,
		SupplierID: product.SupplierID,
		Name:       product.Name,
		Unit:       product.Unit,
		UnitPrice:  product.UnitPrice,
		Quantity:   quantity,
	}
	idx := next.indexOf(product.ID)
	if idx >= 0 {
		line.Quantity = next.Lines[idx].Quantity + quantity
	}
	if line.Quantity < 1 {
		return c, fmt.Errorf("%w: resulting quantity %d", pricing.ErrInvalidQuantity, line.Quantity)
	}

	if idx >= 0 {
		next.Lines[idx] = line
	} else {
		next.Lines = append(next.Lines, line)
	}
	return next, nil
}

// SetQuantity overwrites the product's quantity. A quantity of zero or less
// removes the line; removing an absent line is a no-op.
func SetQuantity(c Cart, productID uuid.UUID, quantity int) Cart {
	idx := c.indexOf(productID)
	if idx < 0 {
		return c.clone()
	}
	next := c.clone()
	if quantity <= 0 {
		next.Lines = append(next.Lines[:idx], next.Lines[idx+1:]...)
		return next
	}
	next.Lines[idx].Quantity = quantity
	return next
}

// Total sums the line totals.
func Total(c Cart) (decimal.Decimal, error) {
	total := decimal.Zero
	for _, line := range c.Lines {
		lineTotal, err := pricing.LineTotal(line.UnitPrice, line.Quantity)
		if err != nil {
			return decimal.Zero, fmt.Errorf("line %s: %w", line.ProductID, err)
		}
		total = total.Add(lineTotal)
	}
	return total, nil
}

// ItemCount sums quantities across lines, not distinct products.
func ItemCount(c Cart) int {
	count := 0
	for _, line := range c.Lines {
		count += line.Quantity
	}
	return count
}
