package ratelimit

import (
	"context"
	"sync"
	"time"
)

type window struct {
	count   int64
	started time.Time
}

// MemoryLimiter is a process-local fixed-window attempt counter. It does not
// survive restarts and under-counts when the service runs more than one
// instance; deployments that scale horizontally should use RedisLimiter.
type MemoryLimiter struct {
	mu          sync.Mutex
	windows     map[string]*window
	maxAttempts int64
	windowLen   time.Duration
	now         func() time.Time
}

// NewMemoryLimiter creates an in-process AttemptLimiter.
func NewMemoryLimiter() *MemoryLimiter {
	return &MemoryLimiter{
		windows:     make(map[string]*window),
		maxAttempts: DefaultMaxAttempts,
		windowLen:   DefaultWindow,
		now:         time.Now,
	}
}

// Allow reports whether the pair is under the attempt limit.
func (l *MemoryLimiter) Allow(_ context.Context, clientIP, email string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	w := l.current(clientIP, email)
	if w == nil {
		return true
	}
	return w.count < l.maxAttempts
}

// Fail records a failed attempt for the pair.
func (l *MemoryLimiter) Fail(_ context.Context, clientIP, email string) {
	l.mu.Lock()
	defer l.mu.Unlock()

	key := attemptKey(clientIP, email)
	w := l.current(clientIP, email)
	if w == nil {
		w = &window{started: l.now()}
		l.windows[key] = w
	}
	w.count++
}

// Reset clears the attempt counter for the pair.
func (l *MemoryLimiter) Reset(_ context.Context, clientIP, email string) {
	l.mu.Lock()
	defer l.mu.Unlock()

	delete(l.windows, attemptKey(clientIP, email))
}

// current returns the live window for the pair, expiring stale ones.
// Callers must hold l.mu.
func (l *MemoryLimiter) current(clientIP, email string) *window {
	key := attemptKey(clientIP, email)
	w, ok := l.windows[key]
	if !ok {
		return nil
	}
	if l.now().Sub(w.started) >= l.windowLen {
		delete(l.windows, key)
		return nil
	}
	return w
}
