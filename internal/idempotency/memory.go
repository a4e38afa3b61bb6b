package idempotency

import (
	"context"
	"sync"
	"time"
)

type entry struct {
	payload   []byte
	createdAt time.Time
	expiresAt time.Time
}

// MemoryStore is the in-process Store implementation. Entries past expiry are
// logically absent even before they are physically purged; Set amortizes the
// cleanup by sweeping the whole map.
type MemoryStore struct {
	mu      sync.RWMutex
	entries map[string]entry
	ttl     time.Duration

	now func() time.Time // injectable for tests
}

var _ Store = (*MemoryStore)(nil)

// NewMemoryStore creates a store whose entries live for ttl.
func NewMemoryStore(ttl time.Duration) *MemoryStore {
	return &MemoryStore{
		entries: make(map[string]entry),
		ttl:     ttl,
		now:     time.Now,
	}
}

// Get returns the payload stored for key, evicting it lazily if expired.
func (s *MemoryStore) Get(_ context.Context, key string) ([]byte, bool, error) {
	s.mu.RLock()
	e, ok := s.entries[key]
	s.mu.RUnlock()
	if !ok {
		return nil, false, nil
	}
	if s.now().After(e.expiresAt) {
		s.mu.Lock()
		// Re-check under the write lock: a concurrent Set may have refreshed it.
		if cur, ok := s.entries[key]; ok && s.now().After(cur.expiresAt) {
			delete(s.entries, key)
		}
		s.mu.Unlock()
		return nil, false, nil
	}
	return e.payload, true, nil
}

// Set stores payload under key with a fresh TTL, overwriting any previous
// entry, then sweeps expired entries store-wide.
func (s *MemoryStore) Set(_ context.Context, key string, payload []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	s.entries[key] = entry{
		payload:   payload,
		createdAt: now,
		expiresAt: now.Add(s.ttl),
	}
	for k, e := range s.entries {
		if now.After(e.expiresAt) {
			delete(s.entries, k)
		}
	}
	return nil
}

// Exists reports whether key holds an unexpired entry.
func (s *MemoryStore) Exists(ctx context.Context, key string) (bool, error) {
	_, ok, err := s.Get(ctx, key)
	return ok, err
}
