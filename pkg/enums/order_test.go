package enums

import "testing"

func TestOrderStatusTransitions(t *testing.T) {
	cases := []struct {
		from OrderStatus
		to   OrderStatus
		ok   bool
	}{
		{OrderStatusPending, OrderStatusConfirmed, true},
		{OrderStatusPending, OrderStatusCancelled, true},
		{OrderStatusPending, OrderStatusShipped, false},
		{OrderStatusConfirmed, OrderStatusProcessing, true},
		{OrderStatusConfirmed, OrderStatusCancelled, true},
		{OrderStatusProcessing, OrderStatusShipped, true},
		{OrderStatusProcessing, OrderStatusCancelled, false},
		{OrderStatusShipped, OrderStatusDelivered, true},
		{OrderStatusDelivered, OrderStatusPending, false},
		{OrderStatusCancelled, OrderStatusPending, false},
	}
	for _, tc := range cases {
		if got := tc.from.CanTransitionTo(tc.to); got != tc.ok {
			t.Fatalf("%s -> %s: expected %v, got %v", tc.from, tc.to, tc.ok, got)
		}
	}
}

func TestParseHelpers(t *testing.T) {
	if _, err := ParseAccountType("admin"); err == nil {
		t.Fatal("expected invalid account type")
	}
	if got, err := ParseOTPChannel(""); err != nil || got != OTPChannelSMS {
		t.Fatalf("expected sms default, got %q err=%v", got, err)
	}
	if got, err := ParseMessageType(""); err != nil || got != MessageTypeText {
		t.Fatalf("expected text default, got %q err=%v", got, err)
	}
	if !GroupOrderStatusCancelled.IsTerminal() || GroupOrderStatusActive.IsTerminal() {
		t.Fatal("terminal classification mismatch")
	}
	if _, err := ParseOutboxEventType("group_order.joined"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}
