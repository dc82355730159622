package ratelimit

import (
	"context"
	"sync"
	"time"
)

type window struct {
	count   int
	resetAt time.Time
}

// MemoryLimiter keeps counters in process memory. Counters are lost on
// restart and are not shared between instances.
type MemoryLimiter struct {
	mu      sync.Mutex
	windows map[string]*window
	now     func() time.Time
}

func NewMemoryLimiter() *MemoryLimiter {
	return &MemoryLimiter{
		windows: make(map[string]*window),
		now:     time.Now,
	}
}

func (m *MemoryLimiter) Allow(_ context.Context, subject, route string, rule Rule) (Decision, error) {
	k := key(subject, route)
	now := m.now()

	m.mu.Lock()
	defer m.mu.Unlock()

	w, ok := m.windows[k]
	if !ok || now.After(w.resetAt) {
		m.windows[k] = &window{count: 1, resetAt: now.Add(rule.Window)}
		return Decision{Allowed: true}, nil
	}

	if w.count >= rule.Max {
		return Decision{Allowed: false, RetryAfter: w.resetAt.Sub(now)}, nil
	}

	w.count++
	return Decision{Allowed: true}, nil
}

// Sweep removes windows whose reset time has passed.
func (m *MemoryLimiter) Sweep(_ context.Context) (int, error) {
	now := m.now()

	m.mu.Lock()
	defer m.mu.Unlock()

	n := 0
	for k, w := range m.windows {
		if now.After(w.resetAt) {
			delete(m.windows, k)
			n++
		}
	}
	return n, nil
}

// Len returns the number of tracked windows.
func (m *MemoryLimiter) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.windows)
}
