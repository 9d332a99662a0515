package auth

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/AadiSharma49/Street-Food-Solution/pkg/enums"
	redisclient "github.com/AadiSharma49/Street-Food-Solution/pkg/redis"
)

type otpKV interface {
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	Get(ctx context.Context, key string) (string, error)
	Del(ctx context.Context, keys ...string) error
	TTL(ctx context.Context, key string) (time.Duration, error)
	OTPKey(phone string) string
}

// otpRecord is the Redis value kept per phone number.
type otpRecord struct {
	Hash     string           `json:"hash"`
	Channel  enums.OTPChannel `json:"channel"`
	Attempts int              `json:"attempts"`
}

// OTPStore keeps hashed one-time codes in Redis until they expire or are used.
type OTPStore struct {
	kv otpKV
}

// NewOTPStore binds the store to a Redis client.
func NewOTPStore(kv otpKV) *OTPStore {
	return &OTPStore{kv: kv}
}

// Save replaces any pending code for phone.
func (s *OTPStore) Save(ctx context.Context, phone string, rec otpRecord, ttl time.Duration) error {
	raw, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("encode otp: %w", err)
	}
	return s.kv.Set(ctx, s.kv.OTPKey(phone), string(raw), ttl)
}

// Load returns the pending code, or nil when none exists.
func (s *OTPStore) Load(ctx context.Context, phone string) (*otpRecord, error) {
	raw, err := s.kv.Get(ctx, s.kv.OTPKey(phone))
	if err != nil {
		if redisclient.IsNil(err) {
			return nil, nil
		}
		return nil, err
	}
	var rec otpRecord
	if err := json.Unmarshal([]byte(raw), &rec); err != nil {
		return nil, fmt.Errorf("decode otp: %w", err)
	}
	return &rec, nil
}

// RecordFailure stores the bumped attempt counter without extending the code's lifetime.
func (s *OTPStore) RecordFailure(ctx context.Context, phone string, rec otpRecord) error {
	key := s.kv.OTPKey(phone)
	ttl, err := s.kv.TTL(ctx, key)
	if err != nil {
		return err
	}
	if ttl <= 0 {
		return s.kv.Del(ctx, key)
	}
	return s.Save(ctx, phone, rec, ttl)
}

// Delete drops the pending code.
func (s *OTPStore) Delete(ctx context.Context, phone string) error {
	return s.kv.Del(ctx, s.kv.OTPKey(phone))
}
