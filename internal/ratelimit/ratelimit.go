// Package ratelimit throttles repeated login attempts per origin key
// using a fixed window. Counters live behind the CounterStore
// interface: the in-memory store is correct for a single instance
// only; multi-instance deployments must use the shared Redis store or
// the window is counted per instance instead of globally.
package ratelimit

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/ervipinsingh/spice-drama-admin/internal/types"
)

// CounterStore counts attempts per key within a fixed window. The
// window starts at the first attempt for a key and is reset lazily:
// once it elapses the next Increment starts a fresh bucket at one.
type CounterStore interface {
	// Increment adds one attempt for key and returns the new count.
	// A missing or expired bucket is created with the given window.
	Increment(ctx context.Context, key string, window time.Duration) (int64, error)

	// Count returns the current attempt count for key, zero when the
	// bucket is absent or its window has elapsed.
	Count(ctx context.Context, key string) (int64, error)
}

// LoginLimiter applies the fixed-window policy. Callers Check before
// verifying credentials and Record after every checked attempt,
// success or failure, so guessing is throttled regardless of outcome.
type LoginLimiter struct {
	store       CounterStore
	maxAttempts int64
	window      time.Duration
	logger      *slog.Logger
}

func NewLoginLimiter(store CounterStore, maxAttempts int, window time.Duration, logger *slog.Logger) *LoginLimiter {
	return &LoginLimiter{
		store:       store,
		maxAttempts: int64(maxAttempts),
		window:      window,
		logger:      logger,
	}
}

// Window returns the configured window, used for Retry-After hints.
func (l *LoginLimiter) Window() time.Duration {
	return l.window
}

// Check returns types.ErrTooManyAttempts once the key has used up its
// attempts for the current window.
func (l *LoginLimiter) Check(ctx context.Context, key string) error {
	count, err := l.store.Count(ctx, key)
	if err != nil {
		return fmt.Errorf("rate limit check for %q: %w", key, types.ErrInternal)
	}
	if count >= l.maxAttempts {
		l.logger.WarnContext(ctx, "Login attempt rate limited",
			slog.String("origin", key),
			slog.Int64("count", count),
		)
		return types.ErrTooManyAttempts
	}
	return nil
}

// Record counts one attempt against key.
func (l *LoginLimiter) Record(ctx context.Context, key string) error {
	if _, err := l.store.Increment(ctx, key, l.window); err != nil {
		return fmt.Errorf("rate limit record for %q: %w", key, types.ErrInternal)
	}
	return nil
}
