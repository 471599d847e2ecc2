package ratelimit

import (
	"context"
	"sync"
	"time"
)

// cleanupInterval controls how often idle client windows are dropped
const cleanupInterval = time.Minute

// MemoryLimiter is an in-memory sliding window limiter. Each key keeps
// the timestamps of its requests inside the current window.
type MemoryLimiter struct {
	mu      sync.Mutex
	windows map[string][]time.Time
	limit   int
	window  time.Duration
	done    chan struct{}

	// now is swappable for tests
	now func() time.Time
}

// NewMemoryLimiter creates an in-memory limiter allowing limit
// requests per window per key.
func NewMemoryLimiter(limit int, window time.Duration) *MemoryLimiter {
	l := &MemoryLimiter{
		windows: make(map[string][]time.Time),
		limit:   limit,
		window:  window,
		done:    make(chan struct{}),
		now:     time.Now,
	}
	go l.cleanupLoop()
	return l
}

// Allow records the request if the key is under its limit
func (l *MemoryLimiter) Allow(_ context.Context, key string) (*Result, error) {
	now := l.now()
	windowStart := now.Add(-l.window)

	l.mu.Lock()
	defer l.mu.Unlock()

	requests := pruneBefore(l.windows[key], windowStart)

	result := &Result{
		Limit:     l.limit,
		ResetTime: now.Add(l.window),
	}

	if len(requests) >= l.limit {
		// Oldest surviving request leaving the window frees a slot
		reset := requests[0].Add(l.window)
		result.RetryAfter = reset.Sub(now)
		if result.RetryAfter < 0 {
			result.RetryAfter = 0
		}
		result.ResetTime = reset
		l.windows[key] = requests
		return result, nil
	}

	requests = append(requests, now)
	l.windows[key] = requests
	result.Allowed = true
	result.Remaining = l.limit - len(requests)
	if len(requests) > 0 {
		result.ResetTime = requests[0].Add(l.window)
	}
	return result, nil
}

// pruneBefore drops timestamps at or before the cutoff
func pruneBefore(requests []time.Time, cutoff time.Time) []time.Time {
	keep := 0
	for keep < len(requests) && !requests[keep].After(cutoff) {
		keep++
	}
	return requests[keep:]
}

// cleanupLoop drops windows whose requests have all expired
func (l *MemoryLimiter) cleanupLoop() {
	ticker := time.NewTicker(cleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			l.cleanup()
		case <-l.done:
			return
		}
	}
}

func (l *MemoryLimiter) cleanup() {
	cutoff := l.now().Add(-l.window)

	l.mu.Lock()
	defer l.mu.Unlock()

	for key, requests := range l.windows {
		if pruned := pruneBefore(requests, cutoff); len(pruned) == 0 {
			delete(l.windows, key)
		} else {
			l.windows[key] = pruned
		}
	}
}

// Close stops the cleanup loop
func (l *MemoryLimiter) Close() error {
	close(l.done)
	return nil
}
