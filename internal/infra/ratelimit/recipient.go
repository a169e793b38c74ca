package ratelimit

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"time"

	"smsnotify/internal/domain/otp"

	"github.com/redis/go-redis/v9"
)

const keyPrefix = "smsnotify:otp:issue:"

var _ otp.IssueLimiter = (*RedisRecipientLimiter)(nil)

// RedisRecipientLimiter caps how many codes one subject can request per
// window using Redis sorted sets. Each issue is a member scored by its
// timestamp, giving a sliding window.
type RedisRecipientLimiter struct {
	client    *redis.Client
	maxIssues int
	window    time.Duration
	now       func() time.Time
}

// NewRedisRecipientLimiter creates a new Redis-based per-subject limiter.
func NewRedisRecipientLimiter(client *redis.Client, maxIssues int, window time.Duration) *RedisRecipientLimiter {
	if window <= 0 {
		window = time.Hour
	}
	return &RedisRecipientLimiter{
		client:    client,
		maxIssues: maxIssues,
		window:    window,
		now:       time.Now,
	}
}

// Allow checks whether a new code may be issued to subject and records the
// attempt when it may. A non-positive limit disables limiting.
func (r *RedisRecipientLimiter) Allow(ctx context.Context, subject string) (bool, error) {
	if r.maxIssues <= 0 {
		return true, nil
	}

	key := keyPrefix + subject
	now := r.now()
	windowStart := now.Add(-r.window)

	pipe := r.client.Pipeline()
	pipe.ZRemRangeByScore(ctx, key, "-inf", fmt.Sprintf("%d", windowStart.UnixNano()))
	countCmd := pipe.ZCard(ctx, key)
	if _, err := pipe.Exec(ctx); err != nil {
		return false, fmt.Errorf("checking issue rate limit: %w", err)
	}

	if countCmd.Val() >= int64(r.maxIssues) {
		return false, nil
	}

	// Random suffix keeps concurrent issues in the same nanosecond distinct.
	randBytes := make([]byte, 4)
	_, _ = rand.Read(randBytes)
	member := redis.Z{
		Score:  float64(now.UnixNano()),
		Member: fmt.Sprintf("%d:%s", now.UnixNano(), hex.EncodeToString(randBytes)),
	}

	pipe = r.client.Pipeline()
	pipe.ZAdd(ctx, key, member)
	pipe.Expire(ctx, key, r.window+time.Minute)
	if _, err := pipe.Exec(ctx); err != nil {
		return false, fmt.Errorf("recording issue: %w", err)
	}

	return true, nil
}
