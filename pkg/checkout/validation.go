package checkout

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	pkgerrors "github.com/AadiSharma49/Street-Food-Solution/pkg/errors"
)

// MOQValidationInput describes the data required to verify a line item's MOQ.
type MOQValidationInput struct {
	ProductID   uuid.UUID
	ProductName string
	MOQ         int
	Quantity    int
}

// MOQViolationDetail exposes the data returned to callers when a validation fails.
type MOQViolationDetail struct {
	ProductID    uuid.UUID `json:"product_id"`
	ProductName  string    `json:"product_name,omitempty"`
	RequiredQty  int       `json:"required_qty"`
	RequestedQty int       `json:"requested_qty"`
}

// ValidateMOQ ensures every provided line item meets its product's minimum order quantity.
func ValidateMOQ(items []MOQValidationInput) error {
	var violations []MOQViolationDetail
	for _, item := range items {
		if item.MOQ <= 1 {
			continue
		}
		if item.Quantity < item.MOQ {
			violations = append(violations, MOQViolationDetail{
				ProductID:    item.ProductID,
				ProductName:  item.ProductName,
				RequiredQty:  item.MOQ,
				RequestedQty: item.Quantity,
			})
		}
	}
	if len(violations) == 0 {
		return nil
	}
	return pkgerrors.New(pkgerrors.CodeStateConflict, fmt.Sprintf("minimum order quantity not met for %d item(s)", len(violations))).WithDetails(map[string]any{
		"violations": violations,
	})
}

// MinOrderValueInput is one supplier's slice of a checkout.
type MinOrderValueInput struct {
	SupplierID    uuid.UUID
	SupplierName  string
	MinOrderValue decimal.Decimal
	Subtotal      decimal.Decimal
}

// MinOrderValueViolationDetail is returned for each supplier whose floor is not met.
type MinOrderValueViolationDetail struct {
	SupplierID    uuid.UUID       `json:"supplier_id"`
	SupplierName  string          `json:"supplier_name,omitempty"`
	MinOrderValue decimal.Decimal `json:"min_order_value"`
	Subtotal      decimal.Decimal `json:"subtotal"`
}

// ValidateMinOrderValue checks every supplier subtotal against the supplier's minimum order value.
// A zero or negative minimum disables the check.
func ValidateMinOrderValue(groups []MinOrderValueInput) error {
	var violations []MinOrderValueViolationDetail
	for _, group := range groups {
		if !group.MinOrderValue.IsPositive() {
			continue
		}
		if group.Subtotal.LessThan(group.MinOrderValue) {
			violations = append(violations, MinOrderValueViolationDetail{
				SupplierID:    group.SupplierID,
				SupplierName:  group.SupplierName,
				MinOrderValue: group.MinOrderValue,
				Subtotal:      group.Subtotal,
			})
		}
	}
	if len(violations) == 0 {
		return nil
	}
	return pkgerrors.New(pkgerrors.CodeStateConflict, fmt.Sprintf("minimum order value not met for %d supplier(s)", len(violations))).WithDetails(map[string]any{
		"violations": violations,
	})
}
