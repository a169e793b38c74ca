package otpstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"smsnotify/internal/domain/otp"

	"github.com/redis/go-redis/v9"
)

const (
	keyPrefix = "smsnotify:otp:challenge:"

	// maxTxRetries bounds optimistic retries when another writer touches the key.
	maxTxRetries = 10

	// DefaultRetention keeps terminal records around after expiry so that
	// late verifications still see a finished challenge.
	DefaultRetention = time.Hour
)

// ErrContention is returned when an update kept losing to concurrent writers.
var ErrContention = errors.New("otp challenge update contention")

var _ otp.Store = (*RedisStore)(nil)

// RedisStore implements otp.Store on Redis. Each subject is one JSON value;
// updates use WATCH/MULTI so concurrent writers for a subject serialize.
type RedisStore struct {
	client    *redis.Client
	retention time.Duration
}

// NewRedisStore creates a Redis-backed challenge store.
func NewRedisStore(client *redis.Client, retention time.Duration) *RedisStore {
	if retention <= 0 {
		retention = DefaultRetention
	}
	return &RedisStore{client: client, retention: retention}
}

// Update runs fn inside an optimistic transaction on the subject's key.
func (s *RedisStore) Update(ctx context.Context, subject string, fn otp.UpdateFunc) error {
	key := keyPrefix + subject

	txf := func(tx *redis.Tx) error {
		current, err := load(ctx, tx, key)
		if err != nil {
			return err
		}

		next, err := fn(current)
		if err != nil {
			return err
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			if next == nil {
				pipe.Del(ctx, key)
				return nil
			}
			data, err := json.Marshal(next)
			if err != nil {
				return fmt.Errorf("marshaling challenge: %w", err)
			}
			pipe.Set(ctx, key, data, s.ttl(next))
			return nil
		})
		return err
	}

	for range maxTxRetries {
		err := s.client.Watch(ctx, txf, key)
		if errors.Is(err, redis.TxFailedErr) {
			continue
		}
		return err
	}
	return fmt.Errorf("%w: %s", ErrContention, subject)
}

// Get returns the subject's challenge, or nil if none exists.
func (s *RedisStore) Get(ctx context.Context, subject string) (*otp.Challenge, error) {
	return load(ctx, s.client, keyPrefix+subject)
}

// ttl is derived from the challenge itself so it does not depend on the
// wall clock of the writer.
func (s *RedisStore) ttl(c *otp.Challenge) time.Duration {
	lifetime := c.ExpiresAt.Sub(c.IssuedAt)
	if lifetime < 0 {
		lifetime = 0
	}
	return lifetime + s.retention
}

func load(ctx context.Context, r redis.Cmdable, key string) (*otp.Challenge, error) {
	data, err := r.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading challenge: %w", err)
	}

	var c otp.Challenge
	if err := json.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("parsing challenge: %w", err)
	}
	return &c, nil
}
