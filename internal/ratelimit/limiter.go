// Package ratelimit throttles failed login attempts per (client IP, email)
// pair over a fixed rolling window.
package ratelimit

import (
	"context"
	"time"
)

const (
	// DefaultMaxAttempts is the number of failed attempts allowed per window.
	DefaultMaxAttempts = 5

	// DefaultWindow is the length of the attempt window.
	DefaultWindow = 15 * time.Minute
)

// AttemptLimiter tracks failed login attempts. Implementations fail open:
// when the backing store is unreachable, Allow reports true rather than
// locking every user out.
type AttemptLimiter interface {
	// Allow reports whether another attempt is permitted for the pair.
	Allow(ctx context.Context, clientIP, email string) bool

	// Fail records a failed attempt for the pair.
	Fail(ctx context.Context, clientIP, email string)

	// Reset clears the attempt counter, typically after a successful login.
	Reset(ctx context.Context, clientIP, email string)
}

func attemptKey(clientIP, email string) string {
	return "login_attempts:" + clientIP + ":" + email
}
