package ratelimit

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newClockedLimiter(limit int, window time.Duration) (*MemoryLimiter, *time.Time) {
	l := NewMemoryLimiter(limit, window)
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	l.now = func() time.Time { return now }
	return l, &now
}

func TestMemoryLimiterEnforcesLimit(t *testing.T) {
	l, _ := newClockedLimiter(3, time.Minute)
	defer func() { _ = l.Close() }()
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		res, err := l.Allow(ctx, "1.2.3.4")
		require.NoError(t, err)
		assert.True(t, res.Allowed)
		assert.Equal(t, 3, res.Limit)
		assert.Equal(t, 2-i, res.Remaining)
	}

	res, err := l.Allow(ctx, "1.2.3.4")
	require.NoError(t, err)
	assert.False(t, res.Allowed)
	assert.Equal(t, time.Minute, res.RetryAfter)
}

func TestMemoryLimiterKeysIndependent(t *testing.T) {
	l, _ := newClockedLimiter(1, time.Minute)
	defer func() { _ = l.Close() }()
	ctx := context.Background()

	res, err := l.Allow(ctx, "1.2.3.4")
	require.NoError(t, err)
	assert.True(t, res.Allowed)

	res, err = l.Allow(ctx, "5.6.7.8")
	require.NoError(t, err)
	assert.True(t, res.Allowed)

	res, err = l.Allow(ctx, "1.2.3.4")
	require.NoError(t, err)
	assert.False(t, res.Allowed)
}

func TestMemoryLimiterWindowSlides(t *testing.T) {
	l, now := newClockedLimiter(2, time.Minute)
	defer func() { _ = l.Close() }()
	ctx := context.Background()

	_, err := l.Allow(ctx, "client")
	require.NoError(t, err)
	_, err = l.Allow(ctx, "client")
	require.NoError(t, err)

	res, err := l.Allow(ctx, "client")
	require.NoError(t, err)
	assert.False(t, res.Allowed)

	// Advance past the window; the slots free up
	*now = now.Add(61 * time.Second)
	res, err = l.Allow(ctx, "client")
	require.NoError(t, err)
	assert.True(t, res.Allowed)
	assert.Equal(t, 1, res.Remaining)
}

func TestMemoryLimiterCleanupDropsIdleWindows(t *testing.T) {
	l, now := newClockedLimiter(5, time.Minute)
	defer func() { _ = l.Close() }()

	_, err := l.Allow(context.Background(), "client")
	require.NoError(t, err)

	*now = now.Add(2 * time.Minute)
	l.cleanup()

	l.mu.Lock()
	defer l.mu.Unlock()
	assert.Empty(t, l.windows)
}
