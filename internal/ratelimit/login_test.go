package ratelimit

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	redis "github.com/redis/go-redis/v9"
	"github.com/smallbiznis/eventory/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func newTestRedis(t *testing.T) *redis.Client {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return client
}

func TestLoginLimiterBlocksAfterBurst(t *testing.T) {
	client := newTestRedis(t)
	cfg := config.Config{Auth: config.AuthConfig{LoginRateLimit: 3, LoginRateWindow: time.Hour}}
	limiter := NewLoginLimiter(cfg, client, zaptest.NewLogger(t))
	require.True(t, limiter.Enabled())

	ctx := context.Background()
	for i := 0; i < 3; i++ {
		allowed, _ := limiter.Allow(ctx, "platform-a", "10.0.0.1")
		assert.True(t, allowed, "attempt %d", i+1)
	}

	allowed, retryAfter := limiter.Allow(ctx, "platform-a", "10.0.0.1")
	assert.False(t, allowed)
	assert.Greater(t, retryAfter, time.Duration(0))

	// Buckets are keyed per platform and address.
	allowed, _ = limiter.Allow(ctx, "platform-a", "10.0.0.2")
	assert.True(t, allowed)
	allowed, _ = limiter.Allow(ctx, "platform-b", "10.0.0.1")
	assert.True(t, allowed)
}

func TestLoginLimiterNilAllows(t *testing.T) {
	var limiter *LoginLimiter
	allowed, retryAfter := limiter.Allow(context.Background(), "p", "ip")
	assert.True(t, allowed)
	assert.Zero(t, retryAfter)

	cfg := config.Config{Auth: config.AuthConfig{LoginRateLimit: 5}}
	assert.Nil(t, NewLoginLimiter(cfg, nil, zaptest.NewLogger(t)))
}

func TestLockerWithLock(t *testing.T) {
	client := newTestRedis(t)
	locker := NewLocker(client)
	ctx := context.Background()

	token, ok, err := locker.TryLock(ctx, "job:test", time.Minute)
	require.NoError(t, err)
	require.True(t, ok)

	ran := false
	err = locker.WithLock(ctx, "job:test", time.Minute, func(context.Context) error {
		ran = true
		return nil
	})
	assert.ErrorIs(t, err, ErrLockHeld)
	assert.False(t, ran)

	require.NoError(t, locker.Release(ctx, "job:test", token))

	err = locker.WithLock(ctx, "job:test", time.Minute, func(context.Context) error {
		ran = true
		return nil
	})
	require.NoError(t, err)
	assert.True(t, ran)

	var nilLocker *Locker
	called := false
	require.NoError(t, nilLocker.WithLock(ctx, "any", time.Minute, func(context.Context) error {
		called = true
		return nil
	}))
	assert.True(t, called)
}
