// Package ratelimit provides sliding-window request limiters shared by all
// handlers of a process, or by all processes when backed by redis.
package ratelimit

import (
	"context"
	"sync"
	"time"
)

// Limiter admits at most limit events per key within any window-long span.
// When an event is rejected, retryAfter is how long until the oldest
// counted event leaves the window.
type Limiter interface {
	Allow(ctx context.Context, key string, limit int, window time.Duration) (allowed bool, retryAfter time.Duration, err error)
}

// Memory is an in-process Limiter keeping a timestamp log per key.
type Memory struct {
	mu   sync.Mutex
	logs map[string][]time.Time
	now  func() time.Time
}

func NewMemory(now func() time.Time) *Memory {
	if now == nil {
		now = time.Now
	}
	return &Memory{logs: make(map[string][]time.Time), now: now}
}

func (m *Memory) Allow(_ context.Context, key string, limit int, window time.Duration) (bool, time.Duration, error) {
	now := m.now()
	start := now.Add(-window)

	m.mu.Lock()
	defer m.mu.Unlock()

	log := m.logs[key]
	kept := log[:0]
	for _, t := range log {
		if t.After(start) {
			kept = append(kept, t)
		}
	}

	if len(kept) >= limit {
		m.logs[key] = kept
		return false, kept[0].Add(window).Sub(now), nil
	}
	m.logs[key] = append(kept, now)
	return true, 0, nil
}

// Sweep drops keys whose whole log has left window.
func (m *Memory) Sweep(window time.Duration) {
	start := m.now().Add(-window)
	m.mu.Lock()
	defer m.mu.Unlock()
	for key, log := range m.logs {
		if len(log) == 0 || !log[len(log)-1].After(start) {
			delete(m.logs, key)
		}
	}
}
