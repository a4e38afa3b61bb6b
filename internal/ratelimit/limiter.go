// Package ratelimit implements a sliding-window request limiter keyed by
// (identifier, endpoint). A fixed 60s window holds the timestamps of admitted
// requests; old entries are pruned lazily on each check, so a key whose
// timestamps have all aged out costs nothing.
package ratelimit

import (
	"fmt"
	"log/slog"
	"sync"
	"time"
)

// Window is the trailing interval requests are counted over.
const Window = 60 * time.Second

// LimitExceededError carries the retry hint for a rejected request.
type LimitExceededError struct {
	RetryAfter time.Duration
}

func (e *LimitExceededError) Error() string {
	return fmt.Sprintf("rate limit exceeded, retry after %ds", int(e.RetryAfter.Seconds()))
}

// Limiter admits at most requestsPerMinute+burst requests per key within the
// trailing window. Safe for concurrent use.
type Limiter struct {
	requestsPerMinute int
	burst             int
	enabled           bool

	mu       sync.Mutex
	requests map[string][]time.Time

	now func() time.Time // injectable for tests
}

// New constructs an enabled limiter.
func New(requestsPerMinute, burst int) *Limiter {
	return &Limiter{
		requestsPerMinute: requestsPerMinute,
		burst:             burst,
		enabled:           true,
		requests:          make(map[string][]time.Time),
		now:               time.Now,
	}
}

// NewDisabled constructs a limiter that admits everything. Used when rate
// limiting is switched off in configuration.
func NewDisabled() *Limiter {
	l := New(0, 0)
	l.enabled = false
	return l
}

func key(identifier, endpoint string) string {
	return identifier + ":" + endpoint
}

// Check admits or rejects a request for the given identifier and endpoint.
// On rejection the returned error is a *LimitExceededError whose RetryAfter
// is the time until the oldest in-window request ages out, rounded up to at
// least one second. Admitted requests are recorded immediately; the
// check-then-record sequence is atomic per key.
func (l *Limiter) Check(identifier, endpoint string) error {
	if !l.enabled {
		return nil
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	k := key(identifier, endpoint)
	window := l.prune(k, now)

	if len(window) >= l.requestsPerMinute+l.burst {
		oldest := window[0]
		retryAfter := Window - now.Sub(oldest) + time.Second
		if retryAfter < time.Second {
			retryAfter = time.Second
		}
		slog.Warn("rate_limit_exceeded",
			"identifier", identifier,
			"endpoint", endpoint,
			"request_count", len(window),
			"max_requests", l.requestsPerMinute+l.burst,
		)
		return &LimitExceededError{RetryAfter: retryAfter.Truncate(time.Second)}
	}

	l.requests[k] = append(window, now)
	return nil
}

// Reset clears the recorded history for one (identifier, endpoint) pair.
func (l *Limiter) Reset(identifier, endpoint string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.requests, key(identifier, endpoint))
}

// prune drops timestamps older than the window and returns the survivors.
// The key is removed entirely when nothing survives. Caller holds l.mu.
func (l *Limiter) prune(k string, now time.Time) []time.Time {
	window := l.requests[k]
	cutoff := now.Add(-Window)
	i := 0
	for i < len(window) && !window[i].After(cutoff) {
		i++
	}
	window = window[i:]
	if len(window) == 0 {
		delete(l.requests, k)
		return nil
	}
	l.requests[k] = window
	return window
}
