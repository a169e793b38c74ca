package otp

import "context"

// IssueLimiter defines the contract for per-subject issue rate limiting.
// Implementations live in infra/ratelimit/.
type IssueLimiter interface {
	// Allow checks whether a new code can be issued to the given subject.
	// Returns true if issuing is allowed, false if rate limited.
	Allow(ctx context.Context, subject string) (bool, error)
}
