package idempotency

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/AadiSharma49/Street-Food-Solution/pkg/redis"
)

// State is what Claim found for an event.
type State int

const (
	// Claimed means the caller now owns the event and must Complete or Release it.
	Claimed State = iota
	// InFlight means another delivery holds the claim; redeliver later.
	InFlight
	// Done means the event was handled already; ack and skip.
	Done
)

func (s State) String() string {
	switch s {
	case Claimed:
		return "claimed"
	case InFlight:
		return "in_flight"
	case Done:
		return "done"
	default:
		return "unknown"
	}
}

const (
	markerPending   = "pending"
	markerDone      = "done:"
	defaultClaimTTL = 5 * time.Minute
)

// Manager deduplicates event deliveries per consumer. A claim is held with a
// short TTL while the handler runs, so a crashed worker frees the event for
// redelivery; a completed event is remembered for the full TTL.
// Keys look like `sf:idempotency:evt:<consumer>:<event_id>`.
type Manager struct {
	store    redis.IdempotencyStore
	ttl      time.Duration
	claimTTL time.Duration
	now      func() time.Time
}

func NewManager(store redis.IdempotencyStore, ttl time.Duration) (*Manager, error) {
	if store == nil {
		return nil, errors.New("idempotency store is required")
	}
	if ttl < 0 {
		return nil, errors.New("ttl must be non-negative")
	}
	claimTTL := defaultClaimTTL
	if ttl > 0 && ttl < claimTTL {
		claimTTL = ttl
	}
	return &Manager{store: store, ttl: ttl, claimTTL: claimTTL, now: time.Now}, nil
}

func (m *Manager) Claim(ctx context.Context, consumer string, eventID uuid.UUID) (State, error) {
	key, err := m.key(consumer, eventID)
	if err != nil {
		return InFlight, err
	}
	ok, err := m.store.SetNX(ctx, key, markerPending, m.claimTTL)
	if err != nil {
		return InFlight, err
	}
	if ok {
		return Claimed, nil
	}
	current, err := m.store.Get(ctx, key)
	switch {
	case redis.IsNil(err):
		// released between SETNX and GET; let the redelivery claim it
		return InFlight, nil
	case err != nil:
		return InFlight, err
	case strings.HasPrefix(current, markerDone):
		return Done, nil
	default:
		return InFlight, nil
	}
}

// Complete records the event as handled for the manager's TTL.
func (m *Manager) Complete(ctx context.Context, consumer string, eventID uuid.UUID) error {
	key, err := m.key(consumer, eventID)
	if err != nil {
		return err
	}
	return m.store.Set(ctx, key, markerDone+m.now().UTC().Format(time.RFC3339), m.ttl)
}

// Release drops a claim so the next delivery can retry the event.
func (m *Manager) Release(ctx context.Context, consumer string, eventID uuid.UUID) error {
	key, err := m.key(consumer, eventID)
	if err != nil {
		return err
	}
	return m.store.Del(ctx, key)
}

func (m *Manager) key(consumer string, eventID uuid.UUID) (string, error) {
	if consumer == "" {
		return "", errors.New("consumer name is required")
	}
	if eventID == uuid.Nil {
		return "", errors.New("event id is required")
	}
	return m.store.IdempotencyKey("evt:"+consumer, eventID.String()), nil
}
