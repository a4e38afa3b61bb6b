// Package audit defines the durable audit trail of order status changes.
//
// Every admin transition appends one immutable event carrying who did it and
// the OpenTelemetry trace that was active, so an order's history can be
// replayed and correlated with distributed traces.
package audit

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/trace"
)

// Event is a single row in the order_events table: one status change.
type Event struct {
	// OrderID joins the event with business data.
	OrderID string

	// FromStatus and ToStatus capture the transition that was applied.
	FromStatus string
	ToStatus   string

	// ActorID and ActorRole identify the admin or staff user who acted.
	ActorID   int64
	ActorRole string

	// TraceID and SpanID are the W3C identifiers of the span active when the
	// event was recorded; empty when no span was active (e.g. in tests).
	TraceID string
	SpanID  string

	RecordedAt time.Time
}

// Recorder is the port for persisting audit events. The service layer
// depends on this abstraction, not on SQLite directly.
type Recorder interface {
	// Record appends an event. The log is append-only; events are never
	// updated or deleted.
	Record(ctx context.Context, e *Event) error
}

// NewEvent builds an Event for a transition, extracting trace identifiers
// from the active span in ctx.
func NewEvent(ctx context.Context, orderID, fromStatus, toStatus string, actorID int64, actorRole string) *Event {
	e := &Event{
		OrderID:    orderID,
		FromStatus: fromStatus,
		ToStatus:   toStatus,
		ActorID:    actorID,
		ActorRole:  actorRole,
		RecordedAt: time.Now().UTC(),
	}
	if sc := trace.SpanFromContext(ctx).SpanContext(); sc.IsValid() {
		e.TraceID = sc.TraceID().String()
		e.SpanID = sc.SpanID().String()
	}
	return e
}
