package ratelimit

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// MemoryLimiter keeps a request log per key in process memory.
type MemoryLimiter struct {
	mu   sync.Mutex
	logs map[string][]time.Time
	now  func() time.Time
	log  *slog.Logger
}

// NewMemoryLimiter returns an in-memory limiter implementation.
func NewMemoryLimiter(log *slog.Logger) *MemoryLimiter {
	if log == nil {
		log = slog.Default()
	}

	return &MemoryLimiter{
		logs: make(map[string][]time.Time),
		now:  time.Now,
		log:  log,
	}
}

// Check enforces a sliding-window limit for the provided key.
func (m *MemoryLimiter) Check(_ context.Context, key string, limit int, window time.Duration) (*Result, error) {
	now := m.now()

	m.mu.Lock()
	defer m.mu.Unlock()

	requests := dropBefore(m.logs[key], now.Add(-window))
	if len(requests) >= limit {
		m.logs[key] = requests
		result := &Result{Allowed: false, ResetAt: now.Add(window)}
		if len(requests) > 0 {
			result.ResetAt = requests[0].Add(window)
		}
		return result, ErrLimitExceeded
	}

	requests = append(requests, now)
	m.logs[key] = requests

	return &Result{
		Allowed:   true,
		Remaining: limit - len(requests),
		ResetAt:   requests[0].Add(window),
	}, nil
}

// Cleanup forgets keys with no request newer than maxAge.
func (m *MemoryLimiter) Cleanup(maxAge time.Duration) int {
	if maxAge <= 0 {
		return 0
	}

	cutoff := m.now().Add(-maxAge)

	m.mu.Lock()
	defer m.mu.Unlock()

	removed := 0
	for key, requests := range m.logs {
		if len(requests) == 0 || requests[len(requests)-1].Before(cutoff) {
			delete(m.logs, key)
			removed++
		}
	}
	return removed
}

// Len is the number of tracked keys.
func (m *MemoryLimiter) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.logs)
}

// dropBefore removes timestamps older than start; requests is sorted.
func dropBefore(requests []time.Time, start time.Time) []time.Time {
	i := 0
	for i < len(requests) && requests[i].Before(start) {
		i++
	}
	if i == 0 {
		return requests
	}
	return append(requests[:0], requests[i:]...)
}
