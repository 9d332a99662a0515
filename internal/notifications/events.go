package notifications

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/AadiSharma49/Street-Food-Solution/pkg/enums"
	"github.com/AadiSharma49/Street-Food-Solution/pkg/outbox/payloads"
)

// inputsForEvent maps a decoded domain payload to the notifications it
// produces. Unknown payloads produce none.
func inputsForEvent(payload any) []CreateInput {
	switch p := payload.(type) {
	case *payloads.OrderPlacedEvent:
		return []CreateInput{{
			AccountID: p.SupplierID,
			Type:      enums.NotificationTypeOrderUpdate,
			Title:     "New order received",
			Message:   fmt.Sprintf("Order %s for ₹%s with %d item(s) is waiting for confirmation.", shortID(p.OrderID), p.TotalAmount.StringFixed(2), p.ItemCount),
			Link:      orderLink(p.OrderID),
		}}

	case *payloads.OrderStatusChangedEvent:
		recipient := p.VendorID
		if p.ChangedBy == p.VendorID {
			recipient = p.SupplierID
		}
		message := fmt.Sprintf("Order %s moved from %s to %s.", shortID(p.OrderID), p.From, p.To)
		if p.To == enums.OrderStatusCancelled && p.Reason != "" {
			message = fmt.Sprintf("Order %s was cancelled: %s", shortID(p.OrderID), p.Reason)
		}
		return []CreateInput{{
			AccountID: recipient,
			Type:      enums.NotificationTypeOrderUpdate,
			Title:     fmt.Sprintf("Order %s", p.To),
			Message:   message,
			Link:      orderLink(p.OrderID),
		}}

	case *payloads.GroupOrderJoinedEvent:
		return []CreateInput{{
			AccountID: p.SupplierID,
			Type:      enums.NotificationTypeGroupOrder,
			Title:     "New group order participant",
			Message:   fmt.Sprintf("A vendor joined %q with %d unit(s). Progress %d/%d.", p.Title, p.Quantity, p.CurrentQuantity, p.TargetQuantity),
			Link:      groupOrderLink(p.GroupOrderID),
		}}

	case *payloads.GroupOrderCompletedEvent:
		inputs := make([]CreateInput, 0, len(p.ParticipantIDs)+1)
		inputs = append(inputs, CreateInput{
			AccountID: p.SupplierID,
			Type:      enums.NotificationTypeGroupOrder,
			Title:     "Group order target reached",
			Message:   fmt.Sprintf("%q closed with %d unit(s). Prepare the shipment.", p.Title, p.FinalQuantity),
			Link:      groupOrderLink(p.GroupOrderID),
		})
		for _, vendorID := range p.ParticipantIDs {
			inputs = append(inputs, CreateInput{
				AccountID: vendorID,
				Type:      enums.NotificationTypeGroupOrder,
				Title:     "Group order complete",
				Message:   fmt.Sprintf("%q reached its target. Your group price is locked in.", p.Title),
				Link:      groupOrderLink(p.GroupOrderID),
			})
		}
		return inputs

	case *payloads.GroupOrderCancelledEvent:
		inputs := make([]CreateInput, 0, len(p.ParticipantIDs))
		for _, vendorID := range p.ParticipantIDs {
			inputs = append(inputs, CreateInput{
				AccountID: vendorID,
				Type:      enums.NotificationTypeGroupOrder,
				Title:     "Group order cancelled",
				Message:   fmt.Sprintf("%q was cancelled: %s", p.Title, p.Reason),
				Link:      groupOrderLink(p.GroupOrderID),
			})
		}
		return inputs

	case *payloads.InventoryLowStockEvent:
		title := "Low stock: " + p.ProductName
		if p.Status == enums.StockStatusOutOfStock {
			title = "Out of stock: " + p.ProductName
		}
		message := fmt.Sprintf("%s %s left.", trimFloat(p.CurrentStock), p.Unit)
		if p.DaysLeft != nil {
			message = fmt.Sprintf("%s %s left, about %.1f day(s) at the current usage.", trimFloat(p.CurrentStock), p.Unit, *p.DaysLeft)
		}
		link := "/inventory/" + p.ItemID.String()
		return []CreateInput{{
			AccountID: p.VendorID,
			Type:      enums.NotificationTypeLowStock,
			Title:     title,
			Message:   message,
			Link:      &link,
		}}

	case *payloads.NotificationRequestedEvent:
		return []CreateInput{{
			AccountID: p.AccountID,
			Type:      p.Type,
			Title:     p.Title,
			Message:   p.Message,
			Link:      p.Link,
		}}
	}
	return nil
}

func orderLink(id uuid.UUID) *string {
	link := "/orders/" + id.String()
	return &link
}

func groupOrderLink(id uuid.UUID) *string {
	link := "/group-orders/" + id.String()
	return &link
}

func shortID(id uuid.UUID) string {
	return "#" + id.String()[:8]
}

func trimFloat(v float64) string {
	return fmt.Sprintf("%g", v)
}
