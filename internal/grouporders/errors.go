package grouporders

import (
	"errors"

	"github.com/AadiSharma49/Street-Food-Solution/internal/pricing"
)

var (
	// ErrInvalidQuantity is shared with pricing so callers can match either.
	ErrInvalidQuantity = pricing.ErrInvalidQuantity
	ErrOrderNotActive  = errors.New("group order is not active")
	// ErrDuplicateParticipant rejects a second join by the same vendor.
	ErrDuplicateParticipant = errors.New("participant already joined")
	ErrParticipantNotFound  = errors.New("participant not found")
	ErrDivisionByZero       = errors.New("target quantity is zero")
)
