package repositories

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

const idempotencyKeyPrefix = "devicepay:origination:idem:"

// redisIdempotencyStore implements IdempotencyStore on Redis SETNX.
// The reservation only fences concurrent retries; the durable guarantee
// is the unique idempotency_key column on the loans table.
type redisIdempotencyStore struct {
	client *redis.Client
}

// NewIdempotencyStore creates a new Redis-backed idempotency store
func NewIdempotencyStore(client *redis.Client) IdempotencyStore {
	return &redisIdempotencyStore{client: client}
}

// Reserve acquires the key for this caller. Returns false when another
// request already holds it.
func (s *redisIdempotencyStore) Reserve(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	return s.client.SetNX(ctx, idempotencyKeyPrefix+key, 1, ttl).Result()
}

// Release frees a reservation after a failed origination so the caller
// can retry with the same key.
func (s *redisIdempotencyStore) Release(ctx context.Context, key string) error {
	return s.client.Del(ctx, idempotencyKeyPrefix+key).Err()
}
