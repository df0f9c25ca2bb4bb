package sync

// retry.go wraps a single delivery attempt with a fixed retry budget and
// linear back-off. It is independent of the worker pool so the two compose
// for any delivery domain and test in isolation.

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"
)

// ErrRetryExhausted marks an error returned after the full retry budget was
// spent. The wrapped chain still carries the last attempt's error.
var ErrRetryExhausted = errors.New("retry budget exhausted")

// Retry runs fn up to maxAttempts times, waiting baseDelay × attemptNumber
// between failed attempts. The final failed attempt returns immediately
// without waiting, wrapped in ErrRetryExhausted. Application-level failures
// surfaced as errors by fn retry identically to transport failures; fn must
// therefore be safe to repeat (the CRM upsert is idempotent by contract).
func Retry[T any](ctx context.Context, label string, maxAttempts int, baseDelay time.Duration, fn func(ctx context.Context) (T, error)) (T, error) {
	var zero T
	if maxAttempts < 1 {
		maxAttempts = 1
	}

	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		v, err := fn(ctx)
		if err == nil {
			if attempt > 1 {
				slog.Info("delivery recovered", "unit", label, "attempt", attempt)
			}
			return v, nil
		}
		lastErr = err
		slog.Warn("delivery attempt failed",
			"unit", label,
			"attempt", attempt,
			"max_attempts", maxAttempts,
			"error", err,
		)

		if attempt == maxAttempts {
			break
		}

		select {
		case <-ctx.Done():
			return zero, fmt.Errorf("%s: %w", label, ctx.Err())
		case <-time.After(time.Duration(attempt) * baseDelay):
		}
	}

	return zero, fmt.Errorf("%s: %w after %d attempts: %w", label, ErrRetryExhausted, maxAttempts, lastErr)
}
