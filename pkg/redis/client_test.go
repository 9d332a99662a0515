package redis

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"github.com/AadiSharma49/Street-Food-Solution/pkg/config"
)

func newTestClient(t *testing.T) (*Client, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	raw := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = raw.Close() })
	return NewFromRaw(raw), mr
}

func TestFixedWindowAllow(t *testing.T) {
	ctx := context.Background()
	client, mr := newTestClient(t)

	allowed, count, err := client.FixedWindowAllow(ctx, "test-scope", 2, time.Minute)
	require.NoError(t, err)
	require.True(t, allowed)
	require.EqualValues(t, 1, count)
	require.Equal(t, time.Minute, mr.TTL("sf:rate_limit:test-scope"))

	allowed, count, err = client.FixedWindowAllow(ctx, "test-scope", 2, time.Minute)
	require.NoError(t, err)
	require.True(t, allowed)
	require.EqualValues(t, 2, count)

	allowed, _, err = client.FixedWindowAllow(ctx, "test-scope", 2, time.Minute)
	require.NoError(t, err)
	require.False(t, allowed)

	mr.FastForward(time.Minute + time.Second)
	allowed, count, err = client.FixedWindowAllow(ctx, "test-scope", 2, time.Minute)
	require.NoError(t, err)
	require.True(t, allowed)
	require.EqualValues(t, 1, count)
}

func TestSetGetDel(t *testing.T) {
	ctx := context.Background()
	client, _ := newTestClient(t)

	require.NoError(t, client.Set(ctx, "k", "v", 10*time.Minute))
	got, err := client.Get(ctx, "k")
	require.NoError(t, err)
	require.Equal(t, "v", got)

	ttl, err := client.TTL(ctx, "k")
	require.NoError(t, err)
	require.Equal(t, 10*time.Minute, ttl)

	ok, err := client.SetNX(ctx, "k", "other", time.Minute)
	require.NoError(t, err)
	require.False(t, ok)

	require.NoError(t, client.Del(ctx, "k"))
	_, err = client.Get(ctx, "k")
	require.True(t, IsNil(err))
}

func TestPublishSubscribe(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	client, _ := newTestClient(t)

	channel := client.RealtimeChannel("acct-1")
	sub, err := client.Subscribe(ctx, channel)
	require.NoError(t, err)
	defer sub.Close()

	receivers, err := client.Publish(ctx, channel, `{"type":"ping"}`)
	require.NoError(t, err)
	require.EqualValues(t, 1, receivers)

	select {
	case msg := <-sub.Channel():
		require.Equal(t, channel, msg.Channel)
		require.Equal(t, `{"type":"ping"}`, msg.Payload)
	case <-ctx.Done():
		t.Fatal("timed out waiting for message")
	}
}

func TestZeroClientReturnsError(t *testing.T) {
	client := &Client{}
	require.ErrorIs(t, client.Ping(context.Background()), ErrNotInitialized)
	_, err := client.Subscribe(context.Background(), "x")
	require.ErrorIs(t, err, ErrNotInitialized)
}

func TestKeyBuilders(t *testing.T) {
	client := &Client{}
	require.Equal(t, "sf:idempotency:scope:id", client.IdempotencyKey("scope", "id"))
	require.Equal(t, "sf:rate_limit:scope", client.RateLimitKey("scope"))
	require.Equal(t, "sf:counter:hits", client.CounterKey("hits"))
	require.Equal(t, "sf:session:access:abc", client.AccessSessionKey("abc"))
	require.Equal(t, "sf:cart:acct", client.CartKey("acct"))
	require.Equal(t, "sf:otp:919876543210", client.OTPKey("919876543210"))
	require.Equal(t, "sf:rt:acct", client.RealtimeChannel("acct"))
	require.Equal(t, "sf:lock:cron", client.LockKey(" cron "))
	require.Equal(t, "sf:cart", client.CartKey(""))
}

func TestOwnerScopedDeleteAndExpire(t *testing.T) {
	ctx := context.Background()
	client, mr := newTestClient(t)
	key := client.LockKey("cron-worker")

	ok, err := client.SetNX(ctx, key, "owner-a", time.Minute)
	require.NoError(t, err)
	require.True(t, ok)

	extended, err := client.ExpireIfEqual(ctx, key, "owner-b", time.Hour)
	require.NoError(t, err)
	require.False(t, extended)
	require.Equal(t, time.Minute, mr.TTL(key))

	extended, err = client.ExpireIfEqual(ctx, key, "owner-a", time.Hour)
	require.NoError(t, err)
	require.True(t, extended)
	require.Equal(t, time.Hour, mr.TTL(key))

	deleted, err := client.DeleteIfEqual(ctx, key, "owner-b")
	require.NoError(t, err)
	require.False(t, deleted)
	require.True(t, mr.Exists(key))

	deleted, err = client.DeleteIfEqual(ctx, key, "owner-a")
	require.NoError(t, err)
	require.True(t, deleted)
	require.False(t, mr.Exists(key))
}

func TestOptionsFromConfig(t *testing.T) {
	_, err := optionsFromConfig(config.RedisConfig{})
	require.Error(t, err)

	opts, err := optionsFromConfig(config.RedisConfig{
		Address:     "localhost:6379",
		DB:          2,
		PoolSize:    20,
		DialTimeout: 3 * time.Second,
	})
	require.NoError(t, err)
	require.Equal(t, "localhost:6379", opts.Addr)
	require.Equal(t, 2, opts.DB)
	require.Equal(t, 20, opts.PoolSize)
	require.Equal(t, 3*time.Second, opts.DialTimeout)

	opts, err = optionsFromConfig(config.RedisConfig{URL: "redis://:secret@cache:6380/4", DB: 1, PoolSize: 8})
	require.NoError(t, err)
	require.Equal(t, "cache:6380", opts.Addr)
	require.Equal(t, "secret", opts.Password)
	require.Equal(t, 4, opts.DB)
	require.Equal(t, 8, opts.PoolSize)

	_, err = optionsFromConfig(config.RedisConfig{URL: "://bad"})
	require.Error(t, err)
}

func TestNilClientIsNotInitialized(t *testing.T) {
	var client *Client
	require.ErrorIs(t, client.Set(context.Background(), "k", "v", 0), ErrNotInitialized)
	require.NoError(t, client.Close())
}
