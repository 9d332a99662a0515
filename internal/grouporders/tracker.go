package grouporders

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/AadiSharma49/Street-Food-Solution/internal/pricing"
	"github.com/AadiSharma49/Street-Food-Solution/pkg/enums"
)

// Participant is one vendor's contribution.
type Participant struct {
	ParticipantID uuid.UUID `json:"participant_id"`
	Quantity      int       `json:"quantity"`
	JoinedAt      time.Time `json:"joined_at"`
}

// Order is the tracker's snapshot of a group order. CurrentQuantity always
// equals the sum of participant quantities. MaxJoinQuantity of zero means no
// per-join cap.
type Order struct {
	ID               uuid.UUID
	TargetQuantity   int
	CurrentQuantity  int
	MinJoinQuantity  int
	MaxJoinQuantity  int
	UnitRegularPrice decimal.Decimal
	UnitGroupPrice   decimal.Decimal
	EndTime          time.Time
	Participants     []Participant
	Status           enums.GroupOrderStatus
}

func (o Order) clone() Order {
	participants := make([]Participant, len(o.Participants))
	copy(participants, o.Participants)
	o.Participants = participants
	return o
}

func (o Order) participant(id uuid.UUID) (Participant, bool) {
	for _, p := range o.Participants {
		if p.ParticipantID == id {
			return p, true
		}
	}
	return Participant{}, false
}

// IsOpen reports whether the order accepts joins at now.
func (o Order) IsOpen(now time.Time) bool {
	return o.Status == enums.GroupOrderStatusActive && now.Before(o.EndTime)
}

// Join records participantID's quantity and completes the order on the first
// crossing of the target. Over-subscription past the target is allowed.
func Join(o Order, participantID uuid.UUID, quantity int, now time.Time) (Order, error) {
	if quantity <= 0 {
		return o, fmt.Errorf("%w: %d", ErrInvalidQuantity, quantity)
	}
	if !o.IsOpen(now) {
		return o, fmt.Errorf("%w: status %s, ends %s", ErrOrderNotActive, o.Status, o.EndTime.UTC().Format(time.RFC3339))
	}
	if _, ok := o.participant(participantID); ok {
		return o, fmt.Errorf("%w: %s", ErrDuplicateParticipant, participantID)
	}
	if o.MinJoinQuantity > 0 && quantity < o.MinJoinQuantity {
		return o, fmt.Errorf("%w: %d is below the minimum of %d", ErrInvalidQuantity, quantity, o.MinJoinQuantity)
	}
	if o.MaxJoinQuantity > 0 && quantity > o.MaxJoinQuantity {
		return o, fmt.Errorf("%w: %d is above the maximum of %d", ErrInvalidQuantity, quantity, o.MaxJoinQuantity)
	}

	next := o.clone()
	next.Participants = append(next.Participants, Participant{
		ParticipantID: participantID,
		Quantity:      quantity,
		JoinedAt:      now,
	})
	next.CurrentQuantity += quantity
	if next.CurrentQuantity >= next.TargetQuantity {
		next.Status = enums.GroupOrderStatusCompleted
	}
	return next, nil
}

// ProgressPercent returns current/target as a percentage clamped to 100.
func ProgressPercent(o Order) (float64, error) {
	if o.TargetQuantity == 0 {
		return 0, ErrDivisionByZero
	}
	pct := float64(o.CurrentQuantity) / float64(o.TargetQuantity) * 100
	if pct > 100 {
		return 100, nil
	}
	return pct, nil
}

// RemainingTime never returns a negative duration.
func RemainingTime(o Order, now time.Time) time.Duration {
	remaining := o.EndTime.Sub(now)
	if remaining < 0 {
		return 0
	}
	return remaining
}

// TotalSavingsForParticipant is savings per unit times the participant's quantity.
func TotalSavingsForParticipant(o Order, participantID uuid.UUID) (decimal.Decimal, error) {
	p, ok := o.participant(participantID)
	if !ok {
		return decimal.Zero, fmt.Errorf("%w: %s", ErrParticipantNotFound, participantID)
	}
	perUnit, err := pricing.SavingsPerUnit(o.UnitRegularPrice, o.UnitGroupPrice)
	if err != nil {
		return decimal.Zero, err
	}
	return perUnit.Mul(decimal.NewFromInt(int64(p.Quantity))), nil
}

// Cancel moves an active order to cancelled.
func Cancel(o Order) (Order, error) {
	if o.Status != enums.GroupOrderStatusActive {
		return o, fmt.Errorf("%w: status %s", ErrOrderNotActive, o.Status)
	}
	next := o.clone()
	next.Status = enums.GroupOrderStatusCancelled
	return next, nil
}

// Expire closes an active order whose end time has passed: completed when the
// target was reached, cancelled otherwise. ok is false when nothing changed.
func Expire(o Order, now time.Time) (next Order, ok bool) {
	if o.Status != enums.GroupOrderStatusActive || now.Before(o.EndTime) {
		return o, false
	}
	next = o.clone()
	if next.CurrentQuantity >= next.TargetQuantity {
		next.Status = enums.GroupOrderStatusCompleted
	} else {
		next.Status = enums.GroupOrderStatusCancelled
	}
	return next, true
}
