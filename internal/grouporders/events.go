package grouporders

import (
	"time"

	"github.com/google/uuid"

	"github.com/AadiSharma49/Street-Food-Solution/pkg/db/models"
	"github.com/AadiSharma49/Street-Food-Solution/pkg/enums"
	"github.com/AadiSharma49/Street-Food-Solution/pkg/outbox"
	"github.com/AadiSharma49/Street-Food-Solution/pkg/outbox/payloads"
)

func joinedEvent(order *models.GroupOrder, vendorID uuid.UUID, quantity int) outbox.DomainEvent {
	return outbox.DomainEvent{
		EventType:     enums.EventGroupOrderJoined,
		AggregateType: enums.AggregateGroupOrder,
		AggregateID:   order.ID,
		Actor:         &outbox.ActorRef{AccountID: vendorID, AccountType: enums.AccountTypeVendor},
		Data: payloads.GroupOrderJoinedEvent{
			GroupOrderID:    order.ID,
			SupplierID:      order.SupplierID,
			VendorID:        vendorID,
			Title:           order.Title,
			Quantity:        quantity,
			CurrentQuantity: order.CurrentQuantity,
			TargetQuantity:  order.TargetQuantity,
		},
	}
}

func completedEvent(order *models.GroupOrder, at time.Time) outbox.DomainEvent {
	return outbox.DomainEvent{
		EventType:     enums.EventGroupOrderCompleted,
		AggregateType: enums.AggregateGroupOrder,
		AggregateID:   order.ID,
		Data: payloads.GroupOrderCompletedEvent{
			GroupOrderID:   order.ID,
			SupplierID:     order.SupplierID,
			Title:          order.Title,
			FinalQuantity:  order.CurrentQuantity,
			ParticipantIDs: participantIDs(order),
			CompletedAt:    at,
		},
	}
}

func cancelledEvent(order *models.GroupOrder, actor *outbox.ActorRef, reason string) outbox.DomainEvent {
	return outbox.DomainEvent{
		EventType:     enums.EventGroupOrderCancelled,
		AggregateType: enums.AggregateGroupOrder,
		AggregateID:   order.ID,
		Actor:         actor,
		Data: payloads.GroupOrderCancelledEvent{
			GroupOrderID:   order.ID,
			SupplierID:     order.SupplierID,
			Title:          order.Title,
			ParticipantIDs: participantIDs(order),
			Reason:         reason,
		},
	}
}
