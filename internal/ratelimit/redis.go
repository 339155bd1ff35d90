package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisCounter keeps window counters in Redis.
type RedisCounter struct {
	client *redis.Client
}

// NewRedisCounter connects to redisURL (redis://host:port/db) and pings it.
func NewRedisCounter(ctx context.Context, redisURL string) (*RedisCounter, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse redis url: %w", err)
	}

	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}
	return &RedisCounter{client: client}, nil
}

// NewRedisCounterFromClient wraps an existing client.
func NewRedisCounterFromClient(client *redis.Client) *RedisCounter {
	return &RedisCounter{client: client}
}

// Incr increments key and sets its expiry on first use.
func (c *RedisCounter) Incr(ctx context.Context, key string, ttl time.Duration) (int64, error) {
	n, err := c.client.Incr(ctx, key).Result()
	if err != nil {
		return 0, fmt.Errorf("failed to increment %s: %w", key, err)
	}
	if n == 1 {
		if err := c.client.Expire(ctx, key, ttl).Err(); err != nil {
			return n, fmt.Errorf("failed to set expiry on %s: %w", key, err)
		}
	}
	return n, nil
}

func (c *RedisCounter) Close() error {
	return c.client.Close()
}
