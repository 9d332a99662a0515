// Package redis holds the shared go-redis client and the key layout every
// Redis-backed feature uses. All keys live under the "sf" namespace.
package redis

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/AadiSharma49/Street-Food-Solution/pkg/config"
	"github.com/AadiSharma49/Street-Food-Solution/pkg/logger"
)

const keyNamespace = "sf"

// Key families. Each one maps to a single feature so a SCAN on the prefix
// finds everything it owns.
const (
	familyIdempotency = "idempotency"
	familyRateLimit   = "rate_limit"
	familyCounter     = "counter"
	familySession     = "session"
	familyCart        = "cart"
	familyOTP         = "otp"
	familyRealtime    = "rt"
	familyLock        = "lock"
)

// Both scripts only touch KEYS[1] while it still holds the caller's token.
var (
	releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)
	extendScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("PEXPIRE", KEYS[1], ARGV[2])
end
return 0
`)
)

// PubSub is the subscription handle returned by Subscribe.
type PubSub = redis.PubSub

// Tx and Pipeliner are the optimistic transaction handles passed to Watch.
type (
	Tx        = redis.Tx
	Pipeliner = redis.Pipeliner
)

// ErrTxConflict is returned by Watch when a watched key changed before EXEC.
var ErrTxConflict = redis.TxFailedErr

// ErrNotInitialized is returned when a zero Client is used.
var ErrNotInitialized = errors.New("redis client not initialized")

// Client is a thin layer over *redis.Client. A zero Client fails every
// call with ErrNotInitialized instead of panicking.
type Client struct {
	conn *redis.Client
}

// Pinger exposes the health-check surface.
type Pinger interface {
	Ping(context.Context) error
}

// IdempotencyStore is the surface shared by the HTTP idempotency middleware
// and the event consumer dedup manager.
type IdempotencyStore interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	SetNX(ctx context.Context, key string, value any, ttl time.Duration) (bool, error)
	Del(ctx context.Context, keys ...string) error
	ExpireIfEqual(ctx context.Context, key, owner string, ttl time.Duration) (bool, error)
	IdempotencyKey(scope, id string) string
}

// New dials Redis from cfg and fails fast when the server does not answer.
func New(ctx context.Context, cfg config.RedisConfig, logg *logger.Logger) (*Client, error) {
	opts, err := optionsFromConfig(cfg)
	if err != nil {
		return nil, err
	}
	conn := redis.NewClient(opts)
	if err := conn.Ping(ctx).Err(); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("ping redis at %s: %w", opts.Addr, err)
	}
	logg.Info(logg.WithFields(ctx, map[string]any{
		"redis_addr": opts.Addr,
		"redis_db":   opts.DB,
		"pool_size":  opts.PoolSize,
	}), "redis connection established")
	return &Client{conn: conn}, nil
}

// NewFromRaw wraps an already configured go-redis client.
func NewFromRaw(conn *redis.Client) *Client {
	return &Client{conn: conn}
}

// optionsFromConfig prefers URL over discrete fields. Pool and timeout
// settings from cfg fill whatever the URL left unset.
func optionsFromConfig(cfg config.RedisConfig) (*redis.Options, error) {
	opts := &redis.Options{Addr: cfg.Address, Password: cfg.Password, DB: cfg.DB}
	switch {
	case cfg.URL != "":
		parsed, err := redis.ParseURL(cfg.URL)
		if err != nil {
			return nil, fmt.Errorf("parsing redis url: %w", err)
		}
		opts = parsed
	case cfg.Address == "":
		return nil, errors.New("redis url or address is required")
	}

	fillInt(&opts.DB, cfg.DB)
	fillInt(&opts.PoolSize, cfg.PoolSize)
	fillInt(&opts.MinIdleConns, cfg.MinIdleConns)
	fillDuration(&opts.DialTimeout, cfg.DialTimeout)
	fillDuration(&opts.ReadTimeout, cfg.ReadTimeout)
	fillDuration(&opts.WriteTimeout, cfg.WriteTimeout)
	return opts, nil
}

func fillInt(dst *int, v int) {
	if *dst == 0 {
		*dst = v
	}
}

func fillDuration(dst *time.Duration, v time.Duration) {
	if *dst == 0 {
		*dst = v
	}
}

func (c *Client) ready() (*redis.Client, error) {
	if c == nil || c.conn == nil {
		return nil, ErrNotInitialized
	}
	return c.conn, nil
}

func (c *Client) Set(ctx context.Context, key string, value any, ttl time.Duration) error {
	conn, err := c.ready()
	if err != nil {
		return err
	}
	return conn.Set(ctx, key, value, ttl).Err()
}

// Get returns the value at key. Missing keys yield an error IsNil accepts.
func (c *Client) Get(ctx context.Context, key string) (string, error) {
	conn, err := c.ready()
	if err != nil {
		return "", err
	}
	return conn.Get(ctx, key).Result()
}

func (c *Client) SetNX(ctx context.Context, key string, value any, ttl time.Duration) (bool, error) {
	conn, err := c.ready()
	if err != nil {
		return false, err
	}
	return conn.SetNX(ctx, key, value, ttl).Result()
}

func (c *Client) Incr(ctx context.Context, key string) (int64, error) {
	conn, err := c.ready()
	if err != nil {
		return 0, err
	}
	return conn.Incr(ctx, key).Result()
}

// IncrWithTTL increments key and starts its TTL on the first increment,
// so the window is anchored at the first hit.
func (c *Client) IncrWithTTL(ctx context.Context, key string, ttl time.Duration) (int64, error) {
	conn, err := c.ready()
	if err != nil {
		return 0, err
	}
	count, err := conn.Incr(ctx, key).Result()
	if err != nil {
		return 0, err
	}
	if count == 1 && ttl > 0 {
		if err := conn.Expire(ctx, key, ttl).Err(); err != nil {
			return count, err
		}
	}
	return count, nil
}

func (c *Client) TTL(ctx context.Context, key string) (time.Duration, error) {
	conn, err := c.ready()
	if err != nil {
		return 0, err
	}
	return conn.TTL(ctx, key).Result()
}

// FixedWindowAllow counts one hit against scope and reports whether the
// count is still within limit for the current window.
func (c *Client) FixedWindowAllow(ctx context.Context, scope string, limit int64, window time.Duration) (bool, int64, error) {
	count, err := c.IncrWithTTL(ctx, c.RateLimitKey(scope), window)
	if err != nil {
		return false, 0, err
	}
	return count <= limit, count, nil
}

// Publish returns how many subscribers received payload.
func (c *Client) Publish(ctx context.Context, channel string, payload any) (int64, error) {
	conn, err := c.ready()
	if err != nil {
		return 0, err
	}
	return conn.Publish(ctx, channel, payload).Result()
}

// Subscribe waits for the server to confirm the subscription before
// returning. Callers own the returned PubSub and must Close it.
func (c *Client) Subscribe(ctx context.Context, channels ...string) (*PubSub, error) {
	conn, err := c.ready()
	if err != nil {
		return nil, err
	}
	if len(channels) == 0 {
		return nil, errors.New("at least one channel is required")
	}
	sub := conn.Subscribe(ctx, channels...)
	if _, err := sub.Receive(ctx); err != nil {
		_ = sub.Close()
		return nil, fmt.Errorf("subscribe %s: %w", strings.Join(channels, ","), err)
	}
	return sub, nil
}

func (c *Client) IdempotencyKey(scope, id string) string {
	return buildKey(familyIdempotency, scope, id)
}

func (c *Client) RateLimitKey(scope string) string {
	return buildKey(familyRateLimit, scope)
}

func (c *Client) CounterKey(name string) string {
	return buildKey(familyCounter, name)
}

// AccessSessionKey is keyed by the access token's jti.
func (c *Client) AccessSessionKey(accessID string) string {
	return buildKey(familySession, "access", accessID)
}

func (c *Client) CartKey(accountID string) string {
	return buildKey(familyCart, accountID)
}

// OTPKey expects an already normalized phone number.
func (c *Client) OTPKey(phone string) string {
	return buildKey(familyOTP, phone)
}

// RealtimeChannel is the pub/sub channel carrying live events for one account.
func (c *Client) RealtimeChannel(accountID string) string {
	return buildKey(familyRealtime, accountID)
}

func (c *Client) LockKey(name string) string {
	return buildKey(familyLock, name)
}

// DeleteIfEqual removes key only while it still holds owner.
func (c *Client) DeleteIfEqual(ctx context.Context, key, owner string) (bool, error) {
	return c.runOwned(ctx, releaseScript, key, owner)
}

// ExpireIfEqual resets the TTL of key only while it still holds owner.
func (c *Client) ExpireIfEqual(ctx context.Context, key, owner string, ttl time.Duration) (bool, error) {
	return c.runOwned(ctx, extendScript, key, owner, ttl.Milliseconds())
}

func (c *Client) runOwned(ctx context.Context, script *redis.Script, key string, args ...any) (bool, error) {
	conn, err := c.ready()
	if err != nil {
		return false, err
	}
	n, err := script.Run(ctx, conn, []string{key}, args...).Int64()
	if err != nil {
		return false, err
	}
	return n == 1, nil
}

// Watch runs fn in an optimistic transaction over keys. Writes queued with
// tx.TxPipelined are dropped and ErrTxConflict returned if any watched key
// changed in the meantime; retrying is up to the caller.
func (c *Client) Watch(ctx context.Context, fn func(*Tx) error, keys ...string) error {
	conn, err := c.ready()
	if err != nil {
		return err
	}
	return conn.Watch(ctx, fn, keys...)
}

func (c *Client) Del(ctx context.Context, keys ...string) error {
	conn, err := c.ready()
	if err != nil {
		return err
	}
	return conn.Del(ctx, keys...).Err()
}

func (c *Client) Ping(ctx context.Context) error {
	conn, err := c.ready()
	if err != nil {
		return err
	}
	return conn.Ping(ctx).Err()
}

// Close is a no-op on a zero Client.
func (c *Client) Close() error {
	if c == nil || c.conn == nil {
		return nil
	}
	return c.conn.Close()
}

// IsNil reports whether err is the redis "key does not exist" sentinel.
func IsNil(err error) bool {
	return errors.Is(err, redis.Nil)
}

// buildKey joins parts under the namespace, dropping blank segments.
func buildKey(parts ...string) string {
	var b strings.Builder
	b.WriteString(keyNamespace)
	for _, part := range parts {
		if part = strings.TrimSpace(part); part != "" {
			b.WriteByte(':')
			b.WriteString(part)
		}
	}
	return b.String()
}
