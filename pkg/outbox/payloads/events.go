package payloads

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/AadiSharma49/Street-Food-Solution/pkg/enums"
)

// OrderPlacedEvent is emitted once per supplier order created by checkout.
type OrderPlacedEvent struct {
	OrderID     uuid.UUID       `json:"order_id"`
	VendorID    uuid.UUID       `json:"vendor_id"`
	SupplierID  uuid.UUID       `json:"supplier_id"`
	TotalAmount decimal.Decimal `json:"total_amount"`
	ItemCount   int             `json:"item_count"`
}

// OrderStatusChangedEvent records one legal order transition.
type OrderStatusChangedEvent struct {
	OrderID    uuid.UUID         `json:"order_id"`
	VendorID   uuid.UUID         `json:"vendor_id"`
	SupplierID uuid.UUID         `json:"supplier_id"`
	From       enums.OrderStatus `json:"from"`
	To         enums.OrderStatus `json:"to"`
	ChangedBy  uuid.UUID         `json:"changed_by"`
	Reason     string            `json:"reason,omitempty"`
}

// GroupOrderJoinedEvent is emitted for every accepted join.
type GroupOrderJoinedEvent struct {
	GroupOrderID    uuid.UUID `json:"group_order_id"`
	SupplierID      uuid.UUID `json:"supplier_id"`
	VendorID        uuid.UUID `json:"vendor_id"`
	Title           string    `json:"title"`
	Quantity        int       `json:"quantity"`
	CurrentQuantity int       `json:"current_quantity"`
	TargetQuantity  int       `json:"target_quantity"`
}

// GroupOrderCompletedEvent is emitted when current quantity reaches the target.
type GroupOrderCompletedEvent struct {
	GroupOrderID   uuid.UUID   `json:"group_order_id"`
	SupplierID     uuid.UUID   `json:"supplier_id"`
	Title          string      `json:"title"`
	FinalQuantity  int         `json:"final_quantity"`
	ParticipantIDs []uuid.UUID `json:"participant_ids"`
	CompletedAt    time.Time   `json:"completed_at"`
}

// GroupOrderCancelledEvent is emitted when a supplier or the expiry job cancels.
type GroupOrderCancelledEvent struct {
	GroupOrderID   uuid.UUID   `json:"group_order_id"`
	SupplierID     uuid.UUID   `json:"supplier_id"`
	Title          string      `json:"title"`
	ParticipantIDs []uuid.UUID `json:"participant_ids"`
	Reason         string      `json:"reason"`
}

// InventoryLowStockEvent alerts a vendor that an item needs reordering.
// DaysLeft is omitted when consumption is zero.
type InventoryLowStockEvent struct {
	ItemID       uuid.UUID           `json:"item_id"`
	VendorID     uuid.UUID           `json:"vendor_id"`
	ProductName  string              `json:"product_name"`
	Unit         string              `json:"unit"`
	Status       enums.StockStatus   `json:"status"`
	Severity     enums.AlertSeverity `json:"severity"`
	CurrentStock float64             `json:"current_stock"`
	DaysLeft     *float64            `json:"days_left,omitempty"`
}

// NotificationRequestedEvent asks the notification worker to store a message verbatim.
type NotificationRequestedEvent struct {
	AccountID uuid.UUID              `json:"account_id"`
	Type      enums.NotificationType `json:"type"`
	Title     string                 `json:"title"`
	Message   string                 `json:"message"`
	Link      *string                `json:"link,omitempty"`
}
