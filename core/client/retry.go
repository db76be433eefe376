package client

import (
	"context"
	"time"
)

const (
	DefaultMaxAttempts = 3
	DefaultBaseDelay   = time.Second
	DefaultMaxDelay    = 16 * time.Second

	// RateLimitBaseDelay and RateLimitMaxDelay shape the extra wait after a 429.
	RateLimitBaseDelay = 5 * time.Second
	RateLimitMaxDelay  = 30 * time.Second

	// JitterWindow is the upper bound of the uniform jitter added to every wait.
	JitterWindow = 500 * time.Millisecond
)

// Budget bounds one logical call. Zero fields take the package defaults.
type Budget struct {
	// MaxAttempts is the total number of requests, the first one included.
	MaxAttempts int
	BaseDelay   time.Duration
	MaxDelay    time.Duration
}

func (b Budget) withDefaults() Budget {
	if b.MaxAttempts <= 0 {
		b.MaxAttempts = DefaultMaxAttempts
	}
	if b.BaseDelay <= 0 {
		b.BaseDelay = DefaultBaseDelay
	}
	if b.MaxDelay <= 0 {
		b.MaxDelay = DefaultMaxDelay
	}
	return b
}

// Backoff returns the wait before attempt n+1: min(MaxDelay, BaseDelay·2^n +
// jitter). jitter is expected in [0, JitterWindow).
func (b Budget) Backoff(n int, jitter time.Duration) time.Duration {
	return exponential(b.BaseDelay, b.MaxDelay, n, jitter)
}

// RateLimitBackoff returns the extra wait after a 429 observed on attempt n.
func RateLimitBackoff(n int, jitter time.Duration) time.Duration {
	return exponential(RateLimitBaseDelay, RateLimitMaxDelay, n, jitter)
}

func exponential(base, limit time.Duration, n int, jitter time.Duration) time.Duration {
	if n < 0 {
		n = 0
	}
	// Past 2^30 any realistic base exceeds the cap.
	if n > 30 || base > limit>>n {
		return limit
	}
	if delay := base<<n + jitter; delay < limit {
		return delay
	}
	return limit
}

// Sleeper waits for d or until ctx is done, whichever comes first. It returns
// ctx.Err() when the wait was cut short.
type Sleeper func(ctx context.Context, d time.Duration) error

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}

	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
