package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const rateLimitPrefix = "ratelimit:"

// RateLimiter is a fixed one-minute window counter shared by all instances
type RateLimiter struct {
	client            *Client
	name              string
	requestsPerMinute int
	burst             int
}

// NewRateLimiter creates a limiter allowing requestsPerMinute+burst hits per key and window.
// name separates the counters of limiters sharing one Redis.
func NewRateLimiter(client *Client, name string, requestsPerMinute, burst int) *RateLimiter {
	return &RateLimiter{
		client:            client,
		name:              name,
		requestsPerMinute: requestsPerMinute,
		burst:             burst,
	}
}

// Allow counts one hit for key and reports (allowed, remaining, resetTime, error)
func (r *RateLimiter) Allow(ctx context.Context, key string) (bool, int, time.Time, error) {
	windowStart := time.Now().Truncate(time.Minute)
	windowEnd := windowStart.Add(time.Minute)
	fullKey := fmt.Sprintf("%s%s:%s:%d", rateLimitPrefix, r.name, key, windowStart.Unix())

	pipe := r.client.rdb.Pipeline()

	incrCmd := pipe.Incr(ctx, fullKey)
	pipe.ExpireNX(ctx, fullKey, time.Minute)

	_, err := pipe.Exec(ctx)
	if err != nil && err != redis.Nil {
		return false, 0, time.Time{}, fmt.Errorf("failed to execute rate limit check: %w", err)
	}

	count := incrCmd.Val()
	limit := int64(r.requestsPerMinute + r.burst)
	remaining := int(limit - count)
	if remaining < 0 {
		remaining = 0
	}

	return count <= limit, remaining, windowEnd, nil
}

// Limit returns the number of hits allowed per window
func (r *RateLimiter) Limit() int {
	return r.requestsPerMinute + r.burst
}
