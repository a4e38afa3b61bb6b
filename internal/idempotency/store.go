// Package idempotency provides the TTL-keyed response cache that gives order
// creation exactly-once semantics under client retries.
//
// A key's stored payload is immutable until it expires: replays must see the
// exact bytes produced by the first execution. Two implementations share the
// Store interface: an in-process map (default) and a Redis-backed variant for
// deployments that already run Redis.
package idempotency

import (
	"context"
	"errors"
)

// DefaultTTL is how long a cached response is replayable (24h).
const DefaultTTLSeconds = 86400

// MaxKeyLength bounds client-supplied keys.
const MaxKeyLength = 255

// ErrInvalidKey marks a malformed key: empty or longer than MaxKeyLength.
// This is a usage error, distinct from a cache miss.
var ErrInvalidKey = errors.New("idempotency key must be between 1 and 255 characters")

// ValidateKey rejects empty keys and keys over MaxKeyLength characters.
func ValidateKey(key string) error {
	if len(key) == 0 || len(key) > MaxKeyLength {
		return ErrInvalidKey
	}
	return nil
}

// Store maps idempotency keys to previously produced response payloads.
//
// Get returns (payload, true) only for present, unexpired entries. Set
// overwrites any previous entry for the key and restarts its TTL.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, payload []byte) error
	Exists(ctx context.Context, key string) (bool, error)
}
