package ratelimit

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeClock lets tests advance the window deterministically.
type fakeClock struct {
	t time.Time
}

func (c *fakeClock) now() time.Time          { return c.t }
func (c *fakeClock) advance(d time.Duration) { c.t = c.t.Add(d) }

func newTestLimiter(rate, burst int) (*Limiter, *fakeClock) {
	clock := &fakeClock{t: time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)}
	l := New(rate, burst)
	l.now = clock.now
	return l, clock
}

func TestLimiterAdmitsWithinLimit(t *testing.T) {
	l, _ := newTestLimiter(10, 2)
	for i := 0; i < 12; i++ {
		require.NoError(t, l.Check("user:1", "create_order"))
	}
}

func TestLimiterRejectsOverLimit(t *testing.T) {
	l, _ := newTestLimiter(5, 1)

	for i := 0; i < 6; i++ {
		require.NoError(t, l.Check("user:1", "create_order"))
	}

	err := l.Check("user:1", "create_order")
	var lErr *LimitExceededError
	require.ErrorAs(t, err, &lErr)
	assert.Greater(t, lErr.RetryAfter, time.Duration(0))
}

func TestLimiterIsolationPerIdentifierAndEndpoint(t *testing.T) {
	l, _ := newTestLimiter(5, 0)

	for i := 0; i < 5; i++ {
		require.NoError(t, l.Check("user:1", "create_order"))
	}
	require.Error(t, l.Check("user:1", "create_order"))

	// A different identifier or endpoint is unaffected.
	require.NoError(t, l.Check("user:2", "create_order"))
	require.NoError(t, l.Check("user:1", "list_orders"))
}

func TestLimiterSlidingWindow(t *testing.T) {
	l, clock := newTestLimiter(2, 0)

	require.NoError(t, l.Check("user:1", "ep"))
	clock.advance(30 * time.Second)
	require.NoError(t, l.Check("user:1", "ep"))
	require.Error(t, l.Check("user:1", "ep"))

	// The first request ages out of the trailing window; one slot frees up.
	clock.advance(31 * time.Second)
	require.NoError(t, l.Check("user:1", "ep"))
	require.Error(t, l.Check("user:1", "ep"))
}

func TestLimiterRetryAfterTracksOldestRequest(t *testing.T) {
	l, clock := newTestLimiter(1, 0)

	require.NoError(t, l.Check("user:1", "ep"))
	clock.advance(20 * time.Second)

	err := l.Check("user:1", "ep")
	var lErr *LimitExceededError
	require.ErrorAs(t, err, &lErr)
	// window(60) - age(20) + 1 = 41s
	assert.Equal(t, 41*time.Second, lErr.RetryAfter)
}

func TestLimiterReset(t *testing.T) {
	l, _ := newTestLimiter(2, 0)

	require.NoError(t, l.Check("user:1", "ep"))
	require.NoError(t, l.Check("user:1", "ep"))
	require.Error(t, l.Check("user:1", "ep"))

	l.Reset("user:1", "ep")
	require.NoError(t, l.Check("user:1", "ep"))
}

func TestDisabledLimiterAdmitsEverything(t *testing.T) {
	l := NewDisabled()
	for i := 0; i < 1000; i++ {
		require.NoError(t, l.Check("user:1", "ep"))
	}
}
