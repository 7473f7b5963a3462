package ratelimit

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

const redisKeyPrefix = "ratelimit:"

// RedisStore is a fixed-window counter store backed by Redis, shared across
// service instances.
type RedisStore struct {
	client *redis.Client
	limit  int64
	window time.Duration
}

// NewRedisStore creates a store allowing limit requests per window.
func NewRedisStore(client *redis.Client, limit int, window time.Duration) *RedisStore {
	return &RedisStore{
		client: client,
		limit:  int64(limit),
		window: window,
	}
}

// Check implements Store.
func (r *RedisStore) Check(ctx context.Context, key string) (Result, error) {
	redisKey := redisKeyPrefix + key

	count, err := r.client.Incr(ctx, redisKey).Result()
	if err != nil {
		return Result{}, err
	}
	if count == 1 {
		// First hit opens the window.
		if err := r.client.Expire(ctx, redisKey, r.window).Err(); err != nil {
			return Result{}, err
		}
	}

	if count <= r.limit {
		return Result{}, nil
	}

	retryAfter := r.window
	if ttl, err := r.client.TTL(ctx, redisKey).Result(); err == nil && ttl > 0 {
		retryAfter = ttl
	}
	return Result{Limited: true, RetryAfter: retryAfter}, nil
}

var _ Store = (*RedisStore)(nil)
