// Package ratelimit provides per-client sliding window rate limiting,
// in memory by default with an optional Redis backend.
package ratelimit

import (
	"context"
	"time"
)

// Result reports the outcome of a rate limit check
type Result struct {
	Allowed    bool
	Limit      int
	Remaining  int
	RetryAfter time.Duration
	ResetTime  time.Time
}

// Limiter checks whether a request identified by key may proceed
type Limiter interface {
	Allow(ctx context.Context, key string) (*Result, error)
	Close() error
}

// New selects the Redis backend when an address is configured,
// otherwise the in-memory sliding window.
func New(limit int, window time.Duration, redisAddr string) (Limiter, error) {
	if redisAddr != "" {
		return NewRedisLimiter(redisAddr, limit, window)
	}
	return NewMemoryLimiter(limit, window), nil
}
