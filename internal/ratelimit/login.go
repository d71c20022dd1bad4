package ratelimit

import (
	"context"
	"fmt"
	"strings"
	"time"

	redis "github.com/redis/go-redis/v9"
	"github.com/smallbiznis/eventory/internal/config"
	"go.uber.org/zap"
)

const keyLoginAttempts = "auth:login:%s:%s"

// LoginLimiter throttles login attempts per platform and client address.
// A nil limiter allows every attempt.
type LoginLimiter struct {
	bucket *TokenBucket
	log    *zap.Logger
	rate   float64
	burst  int
}

func NewLoginLimiter(cfg config.Config, client *redis.Client, log *zap.Logger) *LoginLimiter {
	if client == nil || cfg.Auth.LoginRateLimit <= 0 {
		return nil
	}
	window := cfg.Auth.LoginRateWindow
	if window <= 0 {
		window = time.Minute
	}
	return &LoginLimiter{
		bucket: NewTokenBucket(client),
		log:    log.Named("ratelimit.login"),
		rate:   float64(cfg.Auth.LoginRateLimit) / window.Seconds(),
		burst:  cfg.Auth.LoginRateLimit,
	}
}

func (l *LoginLimiter) Enabled() bool {
	return l != nil && l.bucket != nil
}

// Allow reports whether another attempt is permitted. Redis failures fail open.
func (l *LoginLimiter) Allow(ctx context.Context, platformID, clientIP string) (bool, time.Duration) {
	if !l.Enabled() {
		return true, 0
	}
	key := fmt.Sprintf(keyLoginAttempts, strings.TrimSpace(platformID), strings.TrimSpace(clientIP))
	res, err := l.bucket.Allow(ctx, key, l.rate, l.burst)
	if err != nil {
		l.log.Warn("login rate limit check failed", zap.Error(err))
		return true, 0
	}
	return res.Allowed, res.RetryAfter
}
