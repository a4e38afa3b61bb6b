package resilience

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errTransient = errors.New("transient failure")
var errPermanent = errors.New("permanent failure")

func fastPolicy(maxRetries int) RetryPolicy {
	return RetryPolicy{
		MaxRetries: maxRetries,
		BaseDelay:  time.Millisecond,
		MaxDelay:   5 * time.Millisecond,
		Multiplier: 2.0,
		Retryable:  func(err error) bool { return errors.Is(err, errTransient) },
	}
}

func TestDelaySchedule(t *testing.T) {
	p := RetryPolicy{
		MaxRetries: 2,
		BaseDelay:  time.Second,
		MaxDelay:   60 * time.Second,
		Multiplier: 2.0,
	}
	assert.Equal(t, 1*time.Second, p.Delay(0))
	assert.Equal(t, 2*time.Second, p.Delay(1))
	assert.Equal(t, 4*time.Second, p.Delay(2))
}

func TestDelayCappedAtMax(t *testing.T) {
	p := RetryPolicy{BaseDelay: time.Second, MaxDelay: 3 * time.Second, Multiplier: 2.0}
	assert.Equal(t, 2*time.Second, p.Delay(1))
	assert.Equal(t, 3*time.Second, p.Delay(2))
	assert.Equal(t, 3*time.Second, p.Delay(10))
}

func TestRetrySucceedsAfterTransientFailures(t *testing.T) {
	p := fastPolicy(2)
	calls := 0

	err := p.Execute(context.Background(), func(context.Context) error {
		calls++
		if calls < 3 {
			return errTransient
		}
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 3, calls)
}

func TestRetryExhaustionPropagatesLastError(t *testing.T) {
	p := fastPolicy(2)
	calls := 0

	err := p.Execute(context.Background(), func(context.Context) error {
		calls++
		return errTransient
	})
	require.ErrorIs(t, err, errTransient)
	assert.Equal(t, 3, calls, "max_retries+1 total attempts")
}

func TestNonRetryableFailsImmediately(t *testing.T) {
	p := fastPolicy(5)
	calls := 0

	err := p.Execute(context.Background(), func(context.Context) error {
		calls++
		return errPermanent
	})
	require.ErrorIs(t, err, errPermanent)
	assert.Equal(t, 1, calls)
}

func TestRetryStopsOnContextCancellation(t *testing.T) {
	p := RetryPolicy{
		MaxRetries: 5,
		BaseDelay:  time.Hour, // the wait should be interrupted, never served
		MaxDelay:   time.Hour,
		Multiplier: 2.0,
	}
	ctx, cancel := context.WithCancel(context.Background())
	calls := 0

	go func() {
		time.Sleep(10 * time.Millisecond)
		cancel()
	}()

	err := p.Execute(ctx, func(context.Context) error {
		calls++
		return errTransient
	})
	require.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, calls)
}

func TestNilClassifierRetriesEverything(t *testing.T) {
	p := RetryPolicy{MaxRetries: 1, BaseDelay: time.Millisecond, MaxDelay: time.Millisecond, Multiplier: 1.0}
	calls := 0

	_ = p.Execute(context.Background(), func(context.Context) error {
		calls++
		return errPermanent
	})
	assert.Equal(t, 2, calls)
}
