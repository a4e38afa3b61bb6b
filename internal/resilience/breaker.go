// Package resilience contains the fault-isolation primitives used around
// calls to unreliable external services: a circuit breaker and an
// exponential-backoff retry policy. Both are generic; nothing in this package
// knows about payments or orders.
package resilience

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"
)

// State is the circuit breaker state.
type State string

const (
	StateClosed   State = "closed"
	StateOpen     State = "open"
	StateHalfOpen State = "half_open"
)

// ErrCircuitOpen is returned without attempting the wrapped call while the
// circuit is open. Callers can distinguish "service known-bad" from an
// ordinary downstream failure with errors.Is.
var ErrCircuitOpen = errors.New("circuit breaker is open")

// BreakerStats is a point-in-time snapshot for observability endpoints.
type BreakerStats struct {
	Name             string     `json:"name"`
	State            State      `json:"state"`
	FailureCount     int        `json:"failure_count"`
	FailureThreshold int        `json:"failure_threshold"`
	LastFailureTime  *time.Time `json:"last_failure_time,omitempty"`
	LastSuccessTime  *time.Time `json:"last_success_time,omitempty"`
}

// Breaker protects a dependency from failure bursts.
//
// CLOSED passes calls through and counts consecutive failures; reaching the
// threshold opens the circuit. OPEN rejects calls until the cooldown elapses;
// the transition to HALF_OPEN happens on the next call attempt, not
// preemptively. In HALF_OPEN a single trial runs: success closes the circuit,
// any failure reopens it immediately.
type Breaker struct {
	name             string
	failureThreshold int
	cooldown         time.Duration

	mu              sync.Mutex
	state           State
	failureCount    int
	trialInFlight   bool
	lastFailureTime time.Time
	lastSuccessTime time.Time

	now func() time.Time // injectable for tests
}

// NewBreaker constructs a closed breaker. name appears in logs and stats.
func NewBreaker(name string, failureThreshold int, cooldown time.Duration) *Breaker {
	return &Breaker{
		name:             name,
		failureThreshold: failureThreshold,
		cooldown:         cooldown,
		state:            StateClosed,
		now:              time.Now,
	}
}

// Execute runs fn under the breaker. The breaker lock is not held while fn
// runs, so slow downstream calls do not serialize unrelated callers; only the
// admission check and the bookkeeping are synchronized.
func (b *Breaker) Execute(ctx context.Context, fn func(ctx context.Context) error) error {
	if err := b.admit(); err != nil {
		return err
	}

	err := fn(ctx)
	if err != nil {
		b.onFailure()
		return err
	}
	b.onSuccess()
	return nil
}

// admit decides whether a call may proceed and performs the OPEN → HALF_OPEN
// transition when the cooldown has elapsed.
func (b *Breaker) admit() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	switch b.state {
	case StateClosed:
		return nil
	case StateHalfOpen:
		// Exactly one trial call probes the dependency at a time.
		if b.trialInFlight {
			return fmt.Errorf("%w: %s", ErrCircuitOpen, b.name)
		}
		b.trialInFlight = true
		return nil
	}
	if b.now().Sub(b.lastFailureTime) < b.cooldown {
		slog.Warn("circuit_breaker_open", "name", b.name, "failure_count", b.failureCount)
		return fmt.Errorf("%w: %s", ErrCircuitOpen, b.name)
	}
	slog.Info("circuit_breaker_half_open", "name", b.name, "failure_count", b.failureCount)
	b.state = StateHalfOpen
	b.trialInFlight = true
	return nil
}

func (b *Breaker) onSuccess() {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.failureCount = 0
	b.lastSuccessTime = b.now()
	b.trialInFlight = false
	if b.state == StateHalfOpen {
		slog.Info("circuit_breaker_closed", "name", b.name)
		b.state = StateClosed
	}
}

func (b *Breaker) onFailure() {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.failureCount++
	b.lastFailureTime = b.now()
	b.trialInFlight = false

	// A single failed trial in HALF_OPEN reopens; the threshold only applies
	// while CLOSED.
	if b.state == StateHalfOpen || b.failureCount >= b.failureThreshold {
		if b.state != StateOpen {
			slog.Error("circuit_breaker_opened",
				"name", b.name,
				"failure_count", b.failureCount,
				"threshold", b.failureThreshold,
			)
			b.state = StateOpen
		}
	}
}

// Reset forces the breaker back to CLOSED with zero counters. Administrative
// override; safe to call in any state.
func (b *Breaker) Reset() {
	b.mu.Lock()
	defer b.mu.Unlock()

	slog.Info("circuit_breaker_reset", "name", b.name)
	b.state = StateClosed
	b.failureCount = 0
	b.trialInFlight = false
	b.lastFailureTime = time.Time{}
	b.lastSuccessTime = time.Time{}
}

// State returns the current state.
func (b *Breaker) State() State {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.state
}

// Stats returns a snapshot of the breaker for observability.
func (b *Breaker) Stats() BreakerStats {
	b.mu.Lock()
	defer b.mu.Unlock()

	stats := BreakerStats{
		Name:             b.name,
		State:            b.state,
		FailureCount:     b.failureCount,
		FailureThreshold: b.failureThreshold,
	}
	if !b.lastFailureTime.IsZero() {
		t := b.lastFailureTime
		stats.LastFailureTime = &t
	}
	if !b.lastSuccessTime.IsZero() {
		t := b.lastSuccessTime
		stats.LastSuccessTime = &t
	}
	return stats
}
