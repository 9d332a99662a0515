package enums

import "fmt"

// GroupOrderStatus tracks the lifecycle of a pooled purchase.
type GroupOrderStatus string

const (
	GroupOrderStatusActive    GroupOrderStatus = "active"
	GroupOrderStatusCompleted GroupOrderStatus = "completed"
	GroupOrderStatusCancelled GroupOrderStatus = "cancelled"
)

var validGroupOrderStatuses = []GroupOrderStatus{
	GroupOrderStatusActive,
	GroupOrderStatusCompleted,
	GroupOrderStatusCancelled,
}

// String implements fmt.Stringer.
func (s GroupOrderStatus) String() string {
	return string(s)
}

// IsValid reports whether the value is a known GroupOrderStatus.
func (s GroupOrderStatus) IsValid() bool {
	for _, candidate := range validGroupOrderStatuses {
		if candidate == s {
			return true
		}
	}
	return false
}

// IsTerminal reports whether the status can no longer change.
func (s GroupOrderStatus) IsTerminal() bool {
	return s == GroupOrderStatusCompleted || s == GroupOrderStatusCancelled
}

// ParseGroupOrderStatus converts raw input into a GroupOrderStatus.
func ParseGroupOrderStatus(value string) (GroupOrderStatus, error) {
	for _, candidate := range validGroupOrderStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid group order status %q", value)
}
