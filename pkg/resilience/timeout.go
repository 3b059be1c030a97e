package resilience

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	apperrors "github.com/Adithya-Monish-Kumar-K/fastspell/pkg/errors"
)

// WithTimeout runs fn under a context cancelled after timeout and stops
// waiting once it expires. An expired deadline matches both
// apperrors.ErrTimeout and context.DeadlineExceeded. fn keeps running in the
// background until it notices its context is done.
func WithTimeout(ctx context.Context, timeout time.Duration, name string, fn func(ctx context.Context) error) error {
	if timeout <= 0 {
		return fn(ctx)
	}
	timeoutCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	start := time.Now()
	done := make(chan error, 1)
	go func() {
		done <- fn(timeoutCtx)
	}()
	select {
	case err := <-done:
		return err
	case <-timeoutCtx.Done():
		if ctx.Err() != nil {
			return fmt.Errorf("%s: cancelled after %v: %w", name, time.Since(start).Round(time.Millisecond), ctx.Err())
		}
		slog.Default().With("component", "resilience").Warn("operation timed out",
			"operation", name,
			"limit", timeout,
		)
		return fmt.Errorf("%s: %w after %v: %w", name, apperrors.ErrTimeout, timeout, context.DeadlineExceeded)
	}
}
