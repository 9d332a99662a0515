package grouporders

import (
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/AadiSharma49/Street-Food-Solution/internal/pricing"
	"github.com/AadiSharma49/Street-Food-Solution/pkg/enums"
)

var trackerNow = time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)

func activeOrder(target, current int) Order {
	o := Order{
		ID:               uuid.New(),
		TargetQuantity:   target,
		MinJoinQuantity:  1,
		UnitRegularPrice: decimal.NewFromInt(120),
		UnitGroupPrice:   decimal.NewFromInt(95),
		EndTime:          trackerNow.Add(48 * time.Hour),
		Status:           enums.GroupOrderStatusActive,
	}
	if current > 0 {
		o.Participants = []Participant{{ParticipantID: uuid.New(), Quantity: current, JoinedAt: trackerNow.Add(-time.Hour)}}
		o.CurrentQuantity = current
	}
	return o
}

func sumParticipants(o Order) int {
	total := 0
	for _, p := range o.Participants {
		total += p.Quantity
	}
	return total
}

func TestJoinCompletesOnCrossing(t *testing.T) {
	o := activeOrder(500, 320)
	v9 := uuid.New()

	next, err := Join(o, v9, 200, trackerNow)
	if err != nil {
		t.Fatalf("join: %v", err)
	}
	if next.CurrentQuantity != 520 {
		t.Fatalf("expected 520, got %d", next.CurrentQuantity)
	}
	if next.Status != enums.GroupOrderStatusCompleted {
		t.Fatalf("expected completed, got %s", next.Status)
	}
	pct, err := ProgressPercent(next)
	if err != nil || pct != 100 {
		t.Fatalf("expected clamped 100, got %v (%v)", pct, err)
	}
	if o.CurrentQuantity != 320 || len(o.Participants) != 1 || o.Status != enums.GroupOrderStatusActive {
		t.Fatal("input order was mutated")
	}
	last := next.Participants[len(next.Participants)-1]
	if last.ParticipantID != v9 || last.Quantity != 200 || !last.JoinedAt.Equal(trackerNow) {
		t.Fatalf("unexpected participant %+v", last)
	}

	if _, err := Join(next, uuid.New(), 1, trackerNow); !errors.Is(err, ErrOrderNotActive) {
		t.Fatalf("expected completed order to reject joins, got %v", err)
	}
}

func TestJoinKeepsQuantityInvariant(t *testing.T) {
	o := activeOrder(1000, 0)
	prev := 0.0
	for _, qty := range []int{10, 250, 5, 400} {
		var err error
		o, err = Join(o, uuid.New(), qty, trackerNow)
		if err != nil {
			t.Fatalf("join %d: %v", qty, err)
		}
		if o.CurrentQuantity != sumParticipants(o) {
			t.Fatalf("current %d != sum %d", o.CurrentQuantity, sumParticipants(o))
		}
		pct, _ := ProgressPercent(o)
		if pct < prev {
			t.Fatalf("progress decreased from %v to %v", prev, pct)
		}
		prev = pct
	}
	if o.Status != enums.GroupOrderStatusActive {
		t.Fatalf("expected still active below target, got %s", o.Status)
	}
}

func TestJoinValidation(t *testing.T) {
	base := activeOrder(100, 10)
	base.MinJoinQuantity = 5
	base.MaxJoinQuantity = 50
	existing := base.Participants[0].ParticipantID

	cases := []struct {
		name    string
		order   Order
		who     uuid.UUID
		qty     int
		at      time.Time
		wantErr error
	}{
		{name: "zero quantity", order: base, who: uuid.New(), qty: 0, at: trackerNow, wantErr: ErrInvalidQuantity},
		{name: "negative quantity", order: base, who: uuid.New(), qty: -3, at: trackerNow, wantErr: ErrInvalidQuantity},
		{name: "below minimum", order: base, who: uuid.New(), qty: 4, at: trackerNow, wantErr: ErrInvalidQuantity},
		{name: "above maximum", order: base, who: uuid.New(), qty: 51, at: trackerNow, wantErr: ErrInvalidQuantity},
		{name: "duplicate", order: base, who: existing, qty: 10, at: trackerNow, wantErr: ErrDuplicateParticipant},
		{name: "at end time", order: base, who: uuid.New(), qty: 10, at: base.EndTime, wantErr: ErrOrderNotActive},
		{name: "cancelled", order: func() Order { o, _ := Cancel(base); return o }(), who: uuid.New(), qty: 10, at: trackerNow, wantErr: ErrOrderNotActive},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Join(tc.order, tc.who, tc.qty, tc.at)
			if !errors.Is(err, tc.wantErr) {
				t.Fatalf("expected %v, got %v", tc.wantErr, err)
			}
		})
	}

	if !errors.Is(ErrInvalidQuantity, pricing.ErrInvalidQuantity) {
		t.Fatal("invalid quantity should match the pricing sentinel")
	}
}

func TestJoinWithoutMaximum(t *testing.T) {
	o := activeOrder(10, 0)
	next, err := Join(o, uuid.New(), 10000, trackerNow)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if next.Status != enums.GroupOrderStatusCompleted {
		t.Fatalf("expected completed, got %s", next.Status)
	}
}

func TestProgressPercent(t *testing.T) {
	pct, err := ProgressPercent(activeOrder(200, 50))
	if err != nil || pct != 25 {
		t.Fatalf("expected 25, got %v (%v)", pct, err)
	}
	if _, err := ProgressPercent(Order{}); !errors.Is(err, ErrDivisionByZero) {
		t.Fatalf("expected division by zero, got %v", err)
	}
}

func TestRemainingTime(t *testing.T) {
	o := activeOrder(10, 0)
	if got := RemainingTime(o, trackerNow); got != 48*time.Hour {
		t.Fatalf("expected 48h, got %s", got)
	}
	if got := RemainingTime(o, o.EndTime.Add(time.Minute)); got != 0 {
		t.Fatalf("expected 0 after end, got %s", got)
	}
}

func TestTotalSavingsForParticipant(t *testing.T) {
	o := activeOrder(500, 0)
	vendor := uuid.New()
	o, _ = Join(o, vendor, 40, trackerNow)

	savings, err := TotalSavingsForParticipant(o, vendor)
	if err != nil {
		t.Fatalf("savings: %v", err)
	}
	if !savings.Equal(decimal.NewFromInt(1000)) {
		t.Fatalf("expected 1000, got %s", savings)
	}
	if _, err := TotalSavingsForParticipant(o, uuid.New()); !errors.Is(err, ErrParticipantNotFound) {
		t.Fatalf("expected participant not found, got %v", err)
	}

	o.UnitGroupPrice = decimal.NewFromInt(130)
	if _, err := TotalSavingsForParticipant(o, vendor); !errors.Is(err, pricing.ErrInvalidPrice) {
		t.Fatalf("expected invalid price, got %v", err)
	}
}

func TestCancel(t *testing.T) {
	o := activeOrder(10, 0)
	cancelled, err := Cancel(o)
	if err != nil {
		t.Fatalf("cancel: %v", err)
	}
	if cancelled.Status != enums.GroupOrderStatusCancelled {
		t.Fatalf("expected cancelled, got %s", cancelled.Status)
	}
	if _, err := Cancel(cancelled); !errors.Is(err, ErrOrderNotActive) {
		t.Fatalf("expected terminal state to stay, got %v", err)
	}
}

func TestExpire(t *testing.T) {
	reached := activeOrder(10, 12)
	short := activeOrder(10, 3)
	after := reached.EndTime.Add(time.Second)

	if _, ok := Expire(reached, trackerNow); ok {
		t.Fatal("expected no change before end time")
	}
	next, ok := Expire(reached, after)
	if !ok || next.Status != enums.GroupOrderStatusCompleted {
		t.Fatalf("expected completed, got %s", next.Status)
	}
	next, ok = Expire(short, after)
	if !ok || next.Status != enums.GroupOrderStatusCancelled {
		t.Fatalf("expected cancelled, got %s", next.Status)
	}
	if _, ok := Expire(next, after); ok {
		t.Fatal("terminal orders never change")
	}
}
