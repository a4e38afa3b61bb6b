package resilience

import (
	"context"
	"log/slog"
	"math"
	"time"
)

// RetryPolicy retries transient failures with exponential backoff. It carries
// no state across calls; every Execute gets its own attempt counter.
type RetryPolicy struct {
	MaxRetries int           // retries after the initial attempt
	BaseDelay  time.Duration // delay before the first retry
	MaxDelay   time.Duration // cap applied to the computed delay
	Multiplier float64       // exponential backoff multiplier

	// Retryable classifies failures. A nil classifier retries everything.
	Retryable func(error) bool
}

// DefaultRetryPolicy mirrors the defaults used around the payment gateway.
func DefaultRetryPolicy(retryable func(error) bool) RetryPolicy {
	return RetryPolicy{
		MaxRetries: 2,
		BaseDelay:  time.Second,
		MaxDelay:   60 * time.Second,
		Multiplier: 2.0,
		Retryable:  retryable,
	}
}

// Delay returns the backoff before the retry following the given attempt
// (attempt 0 is the initial call): min(base × multiplier^attempt, max).
func (p RetryPolicy) Delay(attempt int) time.Duration {
	d := time.Duration(float64(p.BaseDelay) * math.Pow(p.Multiplier, float64(attempt)))
	if d > p.MaxDelay {
		return p.MaxDelay
	}
	return d
}

// Execute runs fn, retrying retryable failures up to MaxRetries times
// (MaxRetries+1 total attempts). Non-retryable failures propagate immediately
// without consuming a retry. The inter-attempt wait is a scheduled timer, not
// a spin, and aborts early if ctx is cancelled.
func (p RetryPolicy) Execute(ctx context.Context, fn func(ctx context.Context) error) error {
	var lastErr error

	for attempt := 0; attempt <= p.MaxRetries; attempt++ {
		err := fn(ctx)
		if err == nil {
			if attempt > 0 {
				slog.InfoContext(ctx, "retry_succeeded", "attempt", attempt)
			}
			return nil
		}
		if p.Retryable != nil && !p.Retryable(err) {
			return err
		}
		lastErr = err

		if attempt == p.MaxRetries {
			slog.ErrorContext(ctx, "retry_exhausted",
				"attempts", attempt+1,
				"error", err,
			)
			break
		}

		delay := p.Delay(attempt)
		slog.WarnContext(ctx, "retry_attempt",
			"attempt", attempt+1,
			"max_retries", p.MaxRetries,
			"delay", delay,
			"error", err,
		)
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(delay):
		}
	}
	return lastErr
}
