// Package sqlite provides a SQLite-backed implementation of audit.Recorder.
//
// WAL mode is enabled on Open so readers never block the writer: the admin
// endpoints may read an order's history while a transition is being recorded.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jcmexdev/bakeryspot/internal/audit"

	// Pure-Go SQLite driver; no CGO, so Alpine/scratch images build cleanly.
	_ "modernc.org/sqlite"
)

// schema is the DDL applied once on startup. The table is append-only: each
// row is an immutable status-change event.
const schema = `
CREATE TABLE IF NOT EXISTS order_events (
    id          INTEGER PRIMARY KEY AUTOINCREMENT,

    -- Business identifier; not UNIQUE, one row per transition.
    order_id    TEXT NOT NULL,

    from_status TEXT NOT NULL,
    to_status   TEXT NOT NULL,

    -- Who performed the transition.
    actor_id    INTEGER NOT NULL,
    actor_role  TEXT NOT NULL,

    -- W3C trace/span IDs from the active OTel span, for trace correlation.
    trace_id    TEXT NOT NULL DEFAULT '',
    span_id     TEXT NOT NULL DEFAULT '',

    -- RFC3339 stored as TEXT, the SQLite idiom.
    recorded_at TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_order_events_order_id ON order_events(order_id, recorded_at);
CREATE INDEX IF NOT EXISTS idx_order_events_trace_id ON order_events(trace_id);
`

// Recorder is the SQLite implementation of audit.Recorder.
type Recorder struct {
	db *sql.DB
}

var _ audit.Recorder = (*Recorder)(nil)

// Open opens (or creates) the database at path and applies the schema.
func Open(path string) (*Recorder, error) {
	// WAL for concurrent readers; busy_timeout waits on locks instead of
	// failing immediately.
	dsn := fmt.Sprintf("file:%s?_pragma=journal_mode(WAL)&_pragma=foreign_keys(on)&_pragma=busy_timeout(5000)", path)

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("audit: open %q: %w", path, err)
	}

	// SQLite performs best with a single writer connection.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("audit: apply schema: %w", err)
	}
	return &Recorder{db: db}, nil
}

// Close releases the database connection.
func (r *Recorder) Close() error {
	return r.db.Close()
}

// Record appends an event. Safe for concurrent use.
func (r *Recorder) Record(ctx context.Context, e *audit.Event) error {
	const q = `
		INSERT INTO order_events
			(order_id, from_status, to_status, actor_id, actor_role, trace_id, span_id, recorded_at)
		VALUES
			(?, ?, ?, ?, ?, ?, ?, ?)`

	_, err := r.db.ExecContext(ctx, q,
		e.OrderID,
		e.FromStatus,
		e.ToStatus,
		e.ActorID,
		e.ActorRole,
		e.TraceID,
		e.SpanID,
		e.RecordedAt.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("audit: record event for order %q: %w", e.OrderID, err)
	}
	return nil
}

// History returns all events for an order, oldest first.
func (r *Recorder) History(ctx context.Context, orderID string) ([]audit.Event, error) {
	const q = `
		SELECT order_id, from_status, to_status, actor_id, actor_role, trace_id, span_id, recorded_at
		FROM order_events
		WHERE order_id = ?
		ORDER BY id ASC`

	rows, err := r.db.QueryContext(ctx, q, orderID)
	if err != nil {
		return nil, fmt.Errorf("audit: history for order %q: %w", orderID, err)
	}
	defer rows.Close()

	var out []audit.Event
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *e)
	}
	return out, rows.Err()
}

// Latest returns the most recent event for an order, or nil when the order
// has no recorded transitions.
func (r *Recorder) Latest(ctx context.Context, orderID string) (*audit.Event, error) {
	const q = `
		SELECT order_id, from_status, to_status, actor_id, actor_role, trace_id, span_id, recorded_at
		FROM order_events
		WHERE order_id = ?
		ORDER BY id DESC
		LIMIT 1`

	row := r.db.QueryRowContext(ctx, q, orderID)
	e, err := scanEvent(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("audit: latest for order %q: %w", orderID, err)
	}
	return e, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanEvent(s scanner) (*audit.Event, error) {
	var e audit.Event
	var recordedAt string
	if err := s.Scan(
		&e.OrderID, &e.FromStatus, &e.ToStatus,
		&e.ActorID, &e.ActorRole, &e.TraceID, &e.SpanID, &recordedAt,
	); err != nil {
		return nil, err
	}
	t, err := time.Parse(time.RFC3339Nano, recordedAt)
	if err != nil {
		return nil, fmt.Errorf("audit: parse time %q: %w", recordedAt, err)
	}
	e.RecordedAt = t
	return &e, nil
}
