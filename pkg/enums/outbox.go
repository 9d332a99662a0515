package enums

import "fmt"

// OutboxAggregateType maps to the aggregate_type column of outbox_events.
type OutboxAggregateType string

const (
	AggregateOrder         OutboxAggregateType = "order"
	AggregateGroupOrder    OutboxAggregateType = "group_order"
	AggregateInventoryItem OutboxAggregateType = "inventory_item"
	AggregateNotification  OutboxAggregateType = "notification"
)

var validAggregateTypes = []OutboxAggregateType{
	AggregateOrder,
	AggregateGroupOrder,
	AggregateInventoryItem,
	AggregateNotification,
}

// IsValid reports whether the value matches the canonical aggregate_type enum.
func (a OutboxAggregateType) IsValid() bool {
	for _, candidate := range validAggregateTypes {
		if candidate == a {
			return true
		}
	}
	return false
}

// ParseOutboxAggregateType converts raw input into OutboxAggregateType.
func ParseOutboxAggregateType(value string) (OutboxAggregateType, error) {
	for _, candidate := range validAggregateTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid aggregate type %q", value)
}

// OutboxEventType maps to the event_type column of outbox_events.
type OutboxEventType string

const (
	EventOrderPlaced           OutboxEventType = "order.placed"
	EventOrderStatusChanged    OutboxEventType = "order.status_changed"
	EventGroupOrderJoined      OutboxEventType = "group_order.joined"
	EventGroupOrderCompleted   OutboxEventType = "group_order.completed"
	EventGroupOrderCancelled   OutboxEventType = "group_order.cancelled"
	EventInventoryLowStock     OutboxEventType = "inventory.low_stock"
	EventNotificationRequested OutboxEventType = "notification.requested"
)

var validOutboxEventTypes = []OutboxEventType{
	EventOrderPlaced,
	EventOrderStatusChanged,
	EventGroupOrderJoined,
	EventGroupOrderCompleted,
	EventGroupOrderCancelled,
	EventInventoryLowStock,
	EventNotificationRequested,
}

// IsValid reports whether the value matches the canonical event_type enum.
func (e OutboxEventType) IsValid() bool {
	for _, candidate := range validOutboxEventTypes {
		if candidate == e {
			return true
		}
	}
	return false
}

// ParseOutboxEventType converts raw input into OutboxEventType.
func ParseOutboxEventType(value string) (OutboxEventType, error) {
	for _, candidate := range validOutboxEventTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid event type %q", value)
}
