package cart

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	redisclient "github.com/AadiSharma49/Street-Food-Solution/pkg/redis"
)

// maxUpdateAttempts bounds optimistic retries. A conflict means another
// writer committed, so N concurrent writers on one cart need at most N tries.
const maxUpdateAttempts = 64

// ErrContention is returned when a cart kept changing under Update.
var ErrContention = errors.New("cart is being updated concurrently")

// Mutation derives the next cart from the current one. Its error aborts
// the update and is returned unchanged.
type Mutation func(current Cart) (Cart, error)

// Store persists one cart per account.
type Store interface {
	Load(ctx context.Context, accountID uuid.UUID) (Cart, error)
	// Update applies fn atomically against the stored cart and returns the
	// cart that was written.
	Update(ctx context.Context, accountID uuid.UUID, fn Mutation) (Cart, error)
	Delete(ctx context.Context, accountID uuid.UUID) error
}

type keyValue interface {
	Get(ctx context.Context, key string) (string, error)
	Del(ctx context.Context, keys ...string) error
	Watch(ctx context.Context, fn func(*redisclient.Tx) error, keys ...string) error
	CartKey(accountID string) string
}

type redisStore struct {
	kv  keyValue
	ttl time.Duration
}

// NewRedisStore keeps carts as JSON under sf:cart:<account_id>. Every
// update refreshes the TTL, so an idle cart expires.
func NewRedisStore(kv keyValue, ttl time.Duration) (Store, error) {
	if kv == nil {
		return nil, errors.New("redis client required")
	}
	if ttl <= 0 {
		return nil, errors.New("cart ttl must be positive")
	}
	return &redisStore{kv: kv, ttl: ttl}, nil
}

func (s *redisStore) key(accountID uuid.UUID) string {
	return s.kv.CartKey(accountID.String())
}

func (s *redisStore) Load(ctx context.Context, accountID uuid.UUID) (Cart, error) {
	raw, err := s.kv.Get(ctx, s.key(accountID))
	return decodeCart(raw, err)
}

// Update runs fn under WATCH on the cart key and retries when another
// writer committed first.
func (s *redisStore) Update(ctx context.Context, accountID uuid.UUID, fn Mutation) (Cart, error) {
	key := s.key(accountID)
	var next Cart
	attempt := func(tx *redisclient.Tx) error {
		current, err := decodeCart(tx.Get(ctx, key).Result())
		if err != nil {
			return err
		}
		if next, err = fn(current); err != nil {
			return err
		}
		var data []byte
		if next.Len() > 0 {
			if data, err = json.Marshal(next); err != nil {
				return fmt.Errorf("encode cart: %w", err)
			}
		}
		_, err = tx.TxPipelined(ctx, func(pipe redisclient.Pipeliner) error {
			if data == nil {
				pipe.Del(ctx, key)
			} else {
				pipe.Set(ctx, key, data, s.ttl)
			}
			return nil
		})
		return err
	}

	for i := 0; i < maxUpdateAttempts; i++ {
		err := s.kv.Watch(ctx, attempt, key)
		if errors.Is(err, redisclient.ErrTxConflict) {
			continue
		}
		if err != nil {
			return Cart{}, err
		}
		return next, nil
	}
	return Cart{}, ErrContention
}

func (s *redisStore) Delete(ctx context.Context, accountID uuid.UUID) error {
	return s.kv.Del(ctx, s.key(accountID))
}

// decodeCart treats a missing key as an empty cart.
func decodeCart(raw string, err error) (Cart, error) {
	if redisclient.IsNil(err) {
		return Cart{}, nil
	}
	if err != nil {
		return Cart{}, fmt.Errorf("load cart: %w", err)
	}
	var c Cart
	if err := json.Unmarshal([]byte(raw), &c); err != nil {
		return Cart{}, fmt.Errorf("decode cart: %w", err)
	}
	return c, nil
}
