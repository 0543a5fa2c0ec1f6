package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const redisIdempotencyPrefix = "idempotency:"

// RedisIdempotencyStore shares cached responses between API replicas.
// Expiry is left to Redis.
type RedisIdempotencyStore struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisIdempotencyStore(client *redis.Client, ttl time.Duration) *RedisIdempotencyStore {
	return &RedisIdempotencyStore{client: client, ttl: ttl}
}

func (s *RedisIdempotencyStore) Get(ctx context.Context, key string) (*CachedResponse, bool, error) {
	data, err := s.client.Get(ctx, redisIdempotencyPrefix+key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("failed to read idempotency key: %w", err)
	}

	var cached CachedResponse
	if err := json.Unmarshal(data, &cached); err != nil {
		return nil, false, fmt.Errorf("failed to decode cached response: %w", err)
	}
	return &cached, true, nil
}

func (s *RedisIdempotencyStore) Set(ctx context.Context, key string, response *CachedResponse) error {
	response.CreatedAt = time.Now()
	data, err := json.Marshal(response)
	if err != nil {
		return fmt.Errorf("failed to encode cached response: %w", err)
	}
	if err := s.client.Set(ctx, redisIdempotencyPrefix+key, data, s.ttl).Err(); err != nil {
		return fmt.Errorf("failed to store idempotency key: %w", err)
	}
	return nil
}

func (s *RedisIdempotencyStore) Stop() {}
