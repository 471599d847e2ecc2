package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"mcp-server/internal/logging"
)

// RedisLimiter implements the sliding window over a Redis sorted set
// per key, scored by request time. It keeps limiting consistent across
// multiple server instances.
type RedisLimiter struct {
	client *redis.Client
	limit  int
	window time.Duration
	logger logging.Logger
}

// NewRedisLimiter connects to Redis and verifies the connection
func NewRedisLimiter(addr string, limit int, window time.Duration) (*RedisLimiter, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         addr,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  2 * time.Second,
		WriteTimeout: 2 * time.Second,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	logger := logging.WithComponent("ratelimit")
	logger.Info("using redis rate limit backend", "addr", addr)

	return &RedisLimiter{
		client: client,
		limit:  limit,
		window: window,
		logger: logger,
	}, nil
}

// Allow trims expired entries, counts the window and records the
// request when under the limit, all in one pipeline round trip.
func (rl *RedisLimiter) Allow(ctx context.Context, key string) (*Result, error) {
	now := time.Now()
	windowStart := now.Add(-rl.window)
	redisKey := "ratelimit:" + key

	pipe := rl.client.TxPipeline()
	pipe.ZRemRangeByScore(ctx, redisKey, "0", fmt.Sprintf("%d", windowStart.UnixNano()))
	countCmd := pipe.ZCard(ctx, redisKey)
	if _, err := pipe.Exec(ctx); err != nil {
		return nil, fmt.Errorf("rate limit check failed: %w", err)
	}

	count := int(countCmd.Val())
	result := &Result{
		Limit:     rl.limit,
		ResetTime: now.Add(rl.window),
	}

	if count >= rl.limit {
		oldest, err := rl.client.ZRangeWithScores(ctx, redisKey, 0, 0).Result()
		if err != nil {
			return nil, fmt.Errorf("rate limit reset lookup failed: %w", err)
		}
		if len(oldest) > 0 {
			reset := time.Unix(0, int64(oldest[0].Score)).Add(rl.window)
			result.ResetTime = reset
			if retry := reset.Sub(now); retry > 0 {
				result.RetryAfter = retry
			}
		}
		return result, nil
	}

	member := fmt.Sprintf("%d-%s", now.UnixNano(), uuid.NewString())
	pipe = rl.client.TxPipeline()
	pipe.ZAdd(ctx, redisKey, redis.Z{Score: float64(now.UnixNano()), Member: member})
	pipe.Expire(ctx, redisKey, rl.window)
	if _, err := pipe.Exec(ctx); err != nil {
		return nil, fmt.Errorf("rate limit record failed: %w", err)
	}

	result.Allowed = true
	result.Remaining = rl.limit - count - 1
	return result, nil
}

// Close releases the Redis client
func (rl *RedisLimiter) Close() error {
	return rl.client.Close()
}
