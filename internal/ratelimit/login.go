package ratelimit

import (
	"context"
	"fmt"
	"strings"

	"github.com/kvartplata/kvartplata/internal/config"
	redis "github.com/redis/go-redis/v9"
)

const keyLogin = "ratelimit:login:%s"

// LoginLimiter throttles token-login attempts per client address. Session
// tokens are unguessable, but there is no reason to let anyone try.
type LoginLimiter struct {
	bucket *TokenBucket
	rate   float64
	burst  int
}

func NewLoginLimiter(client *redis.Client, cfg config.Config) *LoginLimiter {
	return &LoginLimiter{
		bucket: NewTokenBucket(client),
		rate:   cfg.LoginRatePerSec,
		burst:  cfg.LoginBurst,
	}
}

func (l *LoginLimiter) Allow(ctx context.Context, clientAddr string) (Result, error) {
	clientAddr = strings.TrimSpace(clientAddr)
	if clientAddr == "" {
		clientAddr = "unknown"
	}
	return l.bucket.Allow(ctx, fmt.Sprintf(keyLogin, clientAddr), l.rate, l.burst)
}
