package idempotency

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisStore is a Redis-backed Store. Expiry is delegated to Redis TTLs, so
// there is no sweep to run. Keys are namespaced per service to avoid
// collisions on a shared instance.
type RedisStore struct {
	client      *redis.Client
	serviceName string
	ttl         time.Duration
}

var _ Store = (*RedisStore)(nil)

// NewRedisStore connects to addr and namespaces keys under serviceName.
func NewRedisStore(addr, serviceName string, ttl time.Duration) *RedisStore {
	return &RedisStore{
		client:      redis.NewClient(&redis.Options{Addr: addr}),
		serviceName: serviceName,
		ttl:         ttl,
	}
}

func (s *RedisStore) redisKey(key string) string {
	return fmt.Sprintf("%s:idempotency:%s", s.serviceName, key)
}

func (s *RedisStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	payload, err := s.client.Get(ctx, s.redisKey(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("idempotency: redis get: %w", err)
	}
	return payload, true, nil
}

func (s *RedisStore) Set(ctx context.Context, key string, payload []byte) error {
	if err := s.client.Set(ctx, s.redisKey(key), payload, s.ttl).Err(); err != nil {
		return fmt.Errorf("idempotency: redis set: %w", err)
	}
	return nil
}

func (s *RedisStore) Exists(ctx context.Context, key string) (bool, error) {
	n, err := s.client.Exists(ctx, s.redisKey(key)).Result()
	if err != nil {
		return false, fmt.Errorf("idempotency: redis exists: %w", err)
	}
	return n > 0, nil
}

// Close releases the underlying Redis connection.
func (s *RedisStore) Close() error {
	return s.client.Close()
}
