package sqlite

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jcmexdev/bakeryspot/internal/audit"
)

func openTestRecorder(t *testing.T) *Recorder {
	t.Helper()
	r, err := Open(filepath.Join(t.TempDir(), "audit.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = r.Close() })
	return r
}

func TestRecordAndHistory(t *testing.T) {
	ctx := context.Background()
	r := openTestRecorder(t)

	e1 := audit.NewEvent(ctx, "order-1", "pending", "confirmed", 42, "admin")
	e2 := audit.NewEvent(ctx, "order-1", "confirmed", "preparing", 42, "admin")
	require.NoError(t, r.Record(ctx, e1))
	require.NoError(t, r.Record(ctx, e2))
	require.NoError(t, r.Record(ctx, audit.NewEvent(ctx, "order-2", "pending", "cancelled", 7, "staff")))

	history, err := r.History(ctx, "order-1")
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, "confirmed", history[0].ToStatus)
	assert.Equal(t, "preparing", history[1].ToStatus)
	assert.Equal(t, int64(42), history[0].ActorID)
}

func TestLatest(t *testing.T) {
	ctx := context.Background()
	r := openTestRecorder(t)

	latest, err := r.Latest(ctx, "unknown")
	require.NoError(t, err)
	assert.Nil(t, latest)

	require.NoError(t, r.Record(ctx, audit.NewEvent(ctx, "order-1", "pending", "confirmed", 1, "admin")))
	require.NoError(t, r.Record(ctx, audit.NewEvent(ctx, "order-1", "confirmed", "cancelled", 1, "admin")))

	latest, err = r.Latest(ctx, "order-1")
	require.NoError(t, err)
	require.NotNil(t, latest)
	assert.Equal(t, "cancelled", latest.ToStatus)
}
