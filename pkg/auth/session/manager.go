// Package session keeps one refresh session per access token in Redis.
// The access token's jti is the session key; rotating a refresh token
// consumes the old session and opens a new one under a fresh jti.
package session

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/AadiSharma49/Street-Food-Solution/pkg/config"
	redisclient "github.com/AadiSharma49/Street-Food-Solution/pkg/redis"
)

const refreshTokenBytes = 32

var ErrInvalidRefreshToken = errors.New("invalid refresh token")

type store interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	Del(ctx context.Context, keys ...string) error
	DeleteIfEqual(ctx context.Context, key, owner string) (bool, error)
	AccessSessionKey(accessID string) string
}

type record struct {
	AccountID    uuid.UUID `json:"account_id"`
	RefreshToken string    `json:"refresh_token"`
	IssuedAt     time.Time `json:"issued_at"`
}

// Rotation is the session that replaced a consumed one.
type Rotation struct {
	AccessID     string
	RefreshToken string
	AccountID    uuid.UUID
}

type Manager struct {
	store store
	ttl   time.Duration
	now   func() time.Time
}

// AccessSessionChecker is what the auth middleware needs to reject tokens
// whose session was revoked or rotated away.
type AccessSessionChecker interface {
	HasSession(ctx context.Context, accessID string) (bool, error)
}

// NewManager requires the refresh TTL to outlive the access token, otherwise
// a client could never refresh before its access token expired.
func NewManager(client *redisclient.Client, cfg config.JWTConfig) (*Manager, error) {
	if client == nil {
		return nil, errors.New("redis client is required")
	}
	ttl, accessTTL := cfg.RefreshTokenTTL(), cfg.AccessTokenTTL()
	switch {
	case ttl <= 0:
		return nil, errors.New("refresh token ttl must be positive")
	case ttl <= accessTTL:
		return nil, fmt.Errorf("refresh token ttl (%s) must exceed access token ttl (%s)", ttl, accessTTL)
	}
	return &Manager{store: client, ttl: ttl, now: time.Now}, nil
}

// NewAccessID returns a fresh jti.
func NewAccessID() string {
	return uuid.NewString()
}

// Generate opens a session for accountID under accessID and returns its
// refresh token.
func (m *Manager) Generate(ctx context.Context, accessID string, accountID uuid.UUID) (string, error) {
	if blank(accessID) {
		return "", errors.New("access id is required")
	}
	if accountID == uuid.Nil {
		return "", errors.New("account id is required")
	}
	return m.open(ctx, accessID, accountID)
}

// Rotate checks provided against the session stored under oldAccessID and
// swaps it for a new one. The old session is consumed with a compare-and-
// delete, so a refresh token can win at most one rotation even when
// replayed concurrently.
func (m *Manager) Rotate(ctx context.Context, oldAccessID, provided string) (Rotation, error) {
	if blank(oldAccessID) || blank(provided) {
		return Rotation{}, ErrInvalidRefreshToken
	}

	key := m.store.AccessSessionKey(oldAccessID)
	raw, err := m.store.Get(ctx, key)
	if redisclient.IsNil(err) {
		return Rotation{}, ErrInvalidRefreshToken
	}
	if err != nil {
		return Rotation{}, err
	}
	var current record
	if err := json.Unmarshal([]byte(raw), &current); err != nil {
		return Rotation{}, ErrInvalidRefreshToken
	}
	if subtle.ConstantTimeCompare([]byte(current.RefreshToken), []byte(provided)) != 1 {
		return Rotation{}, ErrInvalidRefreshToken
	}

	consumed, err := m.store.DeleteIfEqual(ctx, key, raw)
	if err != nil {
		return Rotation{}, err
	}
	if !consumed {
		return Rotation{}, ErrInvalidRefreshToken
	}

	next := Rotation{AccessID: NewAccessID(), AccountID: current.AccountID}
	if next.RefreshToken, err = m.open(ctx, next.AccessID, current.AccountID); err != nil {
		return Rotation{}, err
	}
	return next, nil
}

func (m *Manager) Revoke(ctx context.Context, accessID string) error {
	if blank(accessID) {
		return errors.New("access id is required")
	}
	return m.store.Del(ctx, m.store.AccessSessionKey(accessID))
}

func (m *Manager) HasSession(ctx context.Context, accessID string) (bool, error) {
	if blank(accessID) {
		return false, errors.New("access id is required")
	}
	_, err := m.store.Get(ctx, m.store.AccessSessionKey(accessID))
	switch {
	case redisclient.IsNil(err):
		return false, nil
	case err != nil:
		return false, err
	}
	return true, nil
}

func (m *Manager) open(ctx context.Context, accessID string, accountID uuid.UUID) (string, error) {
	token, err := newRefreshToken()
	if err != nil {
		return "", err
	}
	encoded, err := json.Marshal(record{AccountID: accountID, RefreshToken: token, IssuedAt: m.now().UTC()})
	if err != nil {
		return "", fmt.Errorf("encode session: %w", err)
	}
	if err := m.store.Set(ctx, m.store.AccessSessionKey(accessID), string(encoded), m.ttl); err != nil {
		return "", err
	}
	return token, nil
}

func newRefreshToken() (string, error) {
	buf := make([]byte, refreshTokenBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generating refresh token: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}

func blank(s string) bool {
	return strings.TrimSpace(s) == ""
}
