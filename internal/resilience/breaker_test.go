package resilience

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errDownstream = errors.New("downstream blew up")

func failing(context.Context) error { return errDownstream }
func succeeding(context.Context) error { return nil }

func newTestBreaker(threshold int, cooldown time.Duration) (*Breaker, *time.Time) {
	now := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	b := NewBreaker("test", threshold, cooldown)
	b.now = func() time.Time { return now }
	return b, &now
}

func TestBreakerOpensAtThreshold(t *testing.T) {
	ctx := context.Background()
	b, _ := newTestBreaker(2, time.Minute)

	require.ErrorIs(t, b.Execute(ctx, failing), errDownstream)
	assert.Equal(t, StateClosed, b.State())

	require.ErrorIs(t, b.Execute(ctx, failing), errDownstream)
	assert.Equal(t, StateOpen, b.State())
}

func TestBreakerRejectsWhileOpen(t *testing.T) {
	ctx := context.Background()
	b, _ := newTestBreaker(2, time.Minute)

	_ = b.Execute(ctx, failing)
	_ = b.Execute(ctx, failing)

	called := false
	err := b.Execute(ctx, func(context.Context) error {
		called = true
		return nil
	})
	require.ErrorIs(t, err, ErrCircuitOpen)
	assert.False(t, called, "wrapped call must not execute while open")
}

func TestBreakerHalfOpenSuccessCloses(t *testing.T) {
	ctx := context.Background()
	b, now := newTestBreaker(2, time.Minute)

	_ = b.Execute(ctx, failing)
	_ = b.Execute(ctx, failing)
	*now = now.Add(61 * time.Second)

	require.NoError(t, b.Execute(ctx, succeeding))
	assert.Equal(t, StateClosed, b.State())
	assert.Equal(t, 0, b.Stats().FailureCount)
}

func TestBreakerHalfOpenFailureReopens(t *testing.T) {
	ctx := context.Background()
	b, now := newTestBreaker(2, time.Minute)

	_ = b.Execute(ctx, failing)
	_ = b.Execute(ctx, failing)
	*now = now.Add(61 * time.Second)

	// A single failed trial reopens; the threshold does not apply again.
	require.ErrorIs(t, b.Execute(ctx, failing), errDownstream)
	assert.Equal(t, StateOpen, b.State())

	require.ErrorIs(t, b.Execute(ctx, succeeding), ErrCircuitOpen)
}

func TestBreakerSuccessResetsFailureCount(t *testing.T) {
	ctx := context.Background()
	b, _ := newTestBreaker(3, time.Minute)

	_ = b.Execute(ctx, failing)
	_ = b.Execute(ctx, failing)
	require.NoError(t, b.Execute(ctx, succeeding))
	assert.Equal(t, 0, b.Stats().FailureCount)

	// The burst has to be consecutive to trip the breaker.
	_ = b.Execute(ctx, failing)
	_ = b.Execute(ctx, failing)
	assert.Equal(t, StateClosed, b.State())
}

func TestBreakerReset(t *testing.T) {
	ctx := context.Background()
	b, _ := newTestBreaker(1, time.Hour)

	_ = b.Execute(ctx, failing)
	require.Equal(t, StateOpen, b.State())

	b.Reset()
	assert.Equal(t, StateClosed, b.State())
	require.NoError(t, b.Execute(ctx, succeeding))
}

func TestBreakerStats(t *testing.T) {
	ctx := context.Background()
	b, _ := newTestBreaker(5, time.Minute)

	stats := b.Stats()
	assert.Equal(t, "test", stats.Name)
	assert.Equal(t, StateClosed, stats.State)
	assert.Equal(t, 5, stats.FailureThreshold)
	assert.Nil(t, stats.LastFailureTime)
	assert.Nil(t, stats.LastSuccessTime)

	_ = b.Execute(ctx, failing)
	_ = b.Execute(ctx, succeeding)

	stats = b.Stats()
	assert.NotNil(t, stats.LastFailureTime)
	assert.NotNil(t, stats.LastSuccessTime)
}
