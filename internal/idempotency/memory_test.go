package idempotency

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(ttl time.Duration) (*MemoryStore, *time.Time) {
	now := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	s := NewMemoryStore(ttl)
	s.now = func() time.Time { return now }
	return s, &now
}

func TestMemoryStoreSetAndGet(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestStore(time.Minute)

	require.NoError(t, s.Set(ctx, "k1", []byte(`{"order_id":"abc"}`)))

	payload, ok, err := s.Get(ctx, "k1")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, []byte(`{"order_id":"abc"}`), payload)
}

func TestMemoryStoreMiss(t *testing.T) {
	s, _ := newTestStore(time.Minute)

	_, ok, err := s.Get(context.Background(), "unknown")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestMemoryStoreExpiry(t *testing.T) {
	ctx := context.Background()
	s, now := newTestStore(time.Minute)

	require.NoError(t, s.Set(ctx, "k1", []byte("v")))

	*now = now.Add(59 * time.Second)
	_, ok, _ := s.Get(ctx, "k1")
	assert.True(t, ok)

	*now = now.Add(2 * time.Second)
	_, ok, _ = s.Get(ctx, "k1")
	assert.False(t, ok)

	exists, err := s.Exists(ctx, "k1")
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestMemoryStoreOverwriteRestartsTTL(t *testing.T) {
	ctx := context.Background()
	s, now := newTestStore(time.Minute)

	require.NoError(t, s.Set(ctx, "k1", []byte("first")))
	*now = now.Add(50 * time.Second)
	require.NoError(t, s.Set(ctx, "k1", []byte("second")))

	*now = now.Add(50 * time.Second)
	payload, ok, _ := s.Get(ctx, "k1")
	require.True(t, ok)
	assert.Equal(t, []byte("second"), payload)
}

func TestMemoryStoreSetPurgesExpired(t *testing.T) {
	ctx := context.Background()
	s, now := newTestStore(time.Minute)

	require.NoError(t, s.Set(ctx, "old", []byte("v")))
	*now = now.Add(2 * time.Minute)
	require.NoError(t, s.Set(ctx, "fresh", []byte("v")))

	s.mu.RLock()
	_, oldPresent := s.entries["old"]
	s.mu.RUnlock()
	assert.False(t, oldPresent)
}

func TestMemoryStoreKeysDoNotInterfere(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestStore(time.Minute)

	require.NoError(t, s.Set(ctx, "k1", []byte("one")))
	require.NoError(t, s.Set(ctx, "k2", []byte("two")))

	p1, _, _ := s.Get(ctx, "k1")
	p2, _, _ := s.Get(ctx, "k2")
	assert.Equal(t, []byte("one"), p1)
	assert.Equal(t, []byte("two"), p2)
}

func TestValidateKey(t *testing.T) {
	assert.NoError(t, ValidateKey("valid-key-123"))
	assert.NoError(t, ValidateKey(strings.Repeat("a", 255)))
	assert.ErrorIs(t, ValidateKey(""), ErrInvalidKey)
	assert.ErrorIs(t, ValidateKey(strings.Repeat("a", 256)), ErrInvalidKey)
}
