package ratelimit

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/taskflow-dev/taskflow-api/internal/logger"
)

// RedisLimiter is a fixed-window attempt counter held in Redis, so the limit
// holds across server instances and process restarts.
type RedisLimiter struct {
	client      *redis.Client
	maxAttempts int64
	window      time.Duration
}

// NewRedisLimiter creates an AttemptLimiter backed by the given Redis client.
func NewRedisLimiter(client *redis.Client) *RedisLimiter {
	return &RedisLimiter{
		client:      client,
		maxAttempts: DefaultMaxAttempts,
		window:      DefaultWindow,
	}
}

// Allow reports whether the pair is under the attempt limit. Redis errors
// fail open with a warning.
func (l *RedisLimiter) Allow(ctx context.Context, clientIP, email string) bool {
	count, err := l.client.Get(ctx, attemptKey(clientIP, email)).Int64()
	if err == redis.Nil {
		return true
	}
	if err != nil {
		logger.Warn("attempt limiter read failed, allowing request", zap.Error(err))
		return true
	}
	return count < l.maxAttempts
}

// Fail increments the attempt counter, starting the window on the first
// failure.
func (l *RedisLimiter) Fail(ctx context.Context, clientIP, email string) {
	key := attemptKey(clientIP, email)
	count, err := l.client.Incr(ctx, key).Result()
	if err != nil {
		logger.Warn("attempt limiter increment failed", zap.Error(err))
		return
	}
	if count == 1 {
		if err := l.client.Expire(ctx, key, l.window).Err(); err != nil {
			logger.Warn("attempt limiter expire failed", zap.Error(err))
		}
	}
}

// Reset clears the attempt counter for the pair.
func (l *RedisLimiter) Reset(ctx context.Context, clientIP, email string) {
	if err := l.client.Del(ctx, attemptKey(clientIP, email)).Err(); err != nil {
		logger.Warn("attempt limiter reset failed", zap.Error(err))
	}
}
