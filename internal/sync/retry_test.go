package sync

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"
)

func TestRetry_SucceedsFirstAttempt(t *testing.T) {
	calls := 0
	got, err := Retry(context.Background(), "unit", 3, time.Millisecond, func(ctx context.Context) (string, error) {
		calls++
		return "done", nil
	})
	if err != nil {
		t.Fatalf("Retry error = %v", err)
	}
	if got != "done" || calls != 1 {
		t.Errorf("got %q after %d calls, want done after 1", got, calls)
	}
}

func TestRetry_RecoversAfterFailures(t *testing.T) {
	calls := 0
	got, err := Retry(context.Background(), "unit", 3, time.Millisecond, func(ctx context.Context) (int, error) {
		calls++
		if calls < 3 {
			return 0, errors.New("transient")
		}
		return 42, nil
	})
	if err != nil {
		t.Fatalf("Retry error = %v", err)
	}
	if got != 42 || calls != 3 {
		t.Errorf("got %d after %d calls, want 42 after 3", got, calls)
	}
}

func TestRetry_ExhaustionAttemptCountAndLastError(t *testing.T) {
	calls := 0
	_, err := Retry(context.Background(), "unit", 3, time.Millisecond, func(ctx context.Context) (int, error) {
		calls++
		return 0, fmt.Errorf("attempt %d failed", calls)
	})

	if calls != 3 {
		t.Errorf("task attempted %d times, want exactly 3", calls)
	}
	if !errors.Is(err, ErrRetryExhausted) {
		t.Errorf("error = %v, want ErrRetryExhausted in chain", err)
	}
	// The final error carries the last attempt's failure, not an earlier one.
	if got := err.Error(); !strings.Contains(got, "attempt 3 failed") {
		t.Errorf("error %q does not carry the last attempt's failure", got)
	}
	if got := err.Error(); strings.Contains(got, "attempt 1 failed") || strings.Contains(got, "attempt 2 failed") {
		t.Errorf("error %q carries an earlier attempt's failure", got)
	}
}

func TestRetry_LinearBackoff(t *testing.T) {
	const base = 20 * time.Millisecond

	start := time.Now()
	_, err := Retry(context.Background(), "unit", 3, base, func(ctx context.Context) (int, error) {
		return 0, errors.New("always fails")
	})
	elapsed := time.Since(start)

	if err == nil {
		t.Fatal("expected exhaustion error")
	}
	// Waits are base×1 + base×2 between the three attempts; the final
	// failure returns immediately.
	wantMin := 3 * base
	if elapsed < wantMin {
		t.Errorf("elapsed %v, want at least %v of back-off", elapsed, wantMin)
	}
	if elapsed > wantMin+6*base {
		t.Errorf("elapsed %v, suggests a wait after the final attempt", elapsed)
	}
}

func TestRetry_ContextCancelledDuringBackoff(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	calls := 0
	done := make(chan error, 1)
	go func() {
		_, err := Retry(ctx, "unit", 5, time.Hour, func(ctx context.Context) (int, error) {
			calls++
			return 0, errors.New("fail")
		})
		done <- err
	}()

	time.Sleep(20 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		if !errors.Is(err, context.Canceled) {
			t.Errorf("error = %v, want context.Canceled", err)
		}
		if calls != 1 {
			t.Errorf("task ran %d times before cancellation, want 1", calls)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Retry did not honor context cancellation during back-off")
	}
}
