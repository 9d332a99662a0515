package orders

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/AadiSharma49/Street-Food-Solution/pkg/db/models"
	"github.com/AadiSharma49/Street-Food-Solution/pkg/enums"
	"github.com/AadiSharma49/Street-Food-Solution/pkg/pagination"
)

// Actor is the authenticated account acting on an order.
type Actor struct {
	AccountID   uuid.UUID
	AccountType enums.AccountType
}

// IsVendor reports whether the actor buys on the marketplace.
func (a Actor) IsVendor() bool {
	return a.AccountType == enums.AccountTypeVendor
}

// OrderItemDTO is one purchased line.
type OrderItemDTO struct {
	ProductID uuid.UUID       `json:"product_id"`
	Name      string          `json:"name"`
	Unit      string          `json:"unit"`
	Quantity  int             `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	Total     decimal.Decimal `json:"total"`
}

// OrderDTO is the API representation of an order.
type OrderDTO struct {
	ID              uuid.UUID         `json:"id"`
	VendorID        uuid.UUID         `json:"vendor_id"`
	SupplierID      uuid.UUID         `json:"supplier_id"`
	Status          enums.OrderStatus `json:"status"`
	TotalAmount     decimal.Decimal   `json:"total_amount"`
	DeliveryAddress string            `json:"delivery_address"`
	Notes           *string           `json:"notes,omitempty"`
	CancelReason    *string           `json:"cancel_reason,omitempty"`
	Items           []OrderItemDTO    `json:"items"`
	CreatedAt       time.Time         `json:"created_at"`
	UpdatedAt       time.Time         `json:"updated_at"`
}

// ListParams filters an account's orders.
type ListParams struct {
	Status     *enums.OrderStatus
	Pagination pagination.Params
}

// StatusInput requests a transition.
type StatusInput struct {
	Status enums.OrderStatus
	Reason *string
}

// FromModel maps a persisted order to its DTO.
func FromModel(m *models.Order) *OrderDTO {
	if m == nil {
		return nil
	}
	items := make([]OrderItemDTO, 0, len(m.Items))
	for _, item := range m.Items {
		items = append(items, OrderItemDTO{
			ProductID: item.ProductID,
			Name:      item.Name,
			Unit:      item.Unit,
			Quantity:  item.Quantity,
			UnitPrice: item.UnitPrice,
			Total:     item.Total,
		})
	}
	return &OrderDTO{
		ID:              m.ID,
		VendorID:        m.VendorID,
		SupplierID:      m.SupplierID,
		Status:          m.Status,
		TotalAmount:     m.TotalAmount,
		DeliveryAddress: m.DeliveryAddress,
		Notes:           m.Notes,
		CancelReason:    m.CancelReason,
		Items:           items,
		CreatedAt:       m.CreatedAt,
		UpdatedAt:       m.UpdatedAt,
	}
}
