package helpers

import (
	"strings"

	"github.com/google/uuid"

	"github.com/AadiSharma49/Street-Food-Solution/pkg/db/models"
	"github.com/AadiSharma49/Street-Food-Solution/pkg/enums"
	pkgerrors "github.com/AadiSharma49/Street-Food-Solution/pkg/errors"
)

// Unavailability reasons reported per cart line.
const (
	ReasonNotFound          = "not_found"
	ReasonInactive          = "inactive"
	ReasonInsufficientStock = "insufficient_stock"
)

// LineIssue describes a cart line that cannot be bought.
type LineIssue struct {
	ProductID uuid.UUID `json:"product_id"`
	Name      string    `json:"name"`
	Reason    string    `json:"reason"`
	Requested int       `json:"requested"`
	Available int       `json:"available"`
}

// ValidateBuyer ensures the checking-out account is a vendor and returns the
// delivery address to use.
func ValidateBuyer(account *models.Account, requestedAddress string) (string, error) {
	if account == nil {
		return "", pkgerrors.New(pkgerrors.CodeNotFound, "account not found")
	}
	if account.Type != enums.AccountTypeVendor {
		return "", pkgerrors.New(pkgerrors.CodeForbidden, "only vendors can check out")
	}
	address := strings.TrimSpace(requestedAddress)
	if address == "" {
		address = strings.TrimSpace(account.Address)
	}
	if address == "" {
		return "", pkgerrors.New(pkgerrors.CodeValidation, "delivery_address is required")
	}
	return address, nil
}

// ValidateSupplier confirms the seller still exists as a supplier.
func ValidateSupplier(account *models.Account) error {
	if account == nil || account.Type != enums.AccountTypeSupplier {
		return pkgerrors.New(pkgerrors.CodeNotFound, "supplier not found")
	}
	return nil
}

// CheckLine compares a cart line against the current catalog row. A nil
// product means it was deleted.
func CheckLine(productID uuid.UUID, name string, quantity int, product *models.Product) *LineIssue {
	issue := &LineIssue{ProductID: productID, Name: name, Requested: quantity}
	switch {
	case product == nil:
		issue.Reason = ReasonNotFound
	case product.Status == enums.ProductStatusInactive:
		issue.Reason = ReasonInactive
	case product.StockQuantity < quantity || product.Status == enums.ProductStatusOutOfStock:
		issue.Reason = ReasonInsufficientStock
		issue.Available = product.StockQuantity
	default:
		return nil
	}
	return issue
}

// UnavailableError bundles every line issue into one state conflict.
func UnavailableError(issues []LineIssue) error {
	if len(issues) == 0 {
		return nil
	}
	return pkgerrors.Newf(pkgerrors.CodeStateConflict, "%d cart item(s) are unavailable", len(issues)).
		WithDetails(map[string]any{"unavailable": issues})
}
