// internal/common/database/redis.go
package database

import (
	"context"
	"fmt"
	"time"

	"visaverse-copilot/internal/common/config"

	"github.com/redis/go-redis/v9"
)

// RedisClient wraps the Redis client used by the request rate limiter.
type RedisClient struct {
	Client *redis.Client
}

// NewRedis creates a new Redis client. No connection is made until the
// first command or Ping.
func NewRedis(cfg config.RedisConfig) *RedisClient {
	rdb := redis.NewClient(&redis.Options{
		Addr:         cfg.Address,
		Password:     cfg.Password,
		DB:           cfg.DB,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
		PoolSize:     10,
		MinIdleConns: 2,
	})
	return &RedisClient{Client: rdb}
}

// Ping tests the Redis connection.
func (c *RedisClient) Ping(ctx context.Context) error {
	if err := c.Client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis ping failed: %w", err)
	}
	return nil
}

func (c *RedisClient) Close() error {
	if c.Client != nil {
		return c.Client.Close()
	}
	return nil
}

// IncrWindow increments the counter for key and starts its expiry on the
// first hit of a window. It returns the count after the increment and the
// time left in the window.
func (c *RedisClient) IncrWindow(ctx context.Context, key string, window time.Duration) (int64, time.Duration, error) {
	count, err := c.Client.Incr(ctx, key).Result()
	if err != nil {
		return 0, 0, fmt.Errorf("redis window increment failed: %w", err)
	}
	if count == 1 {
		if err := c.Client.Expire(ctx, key, window).Err(); err != nil {
			return 0, 0, fmt.Errorf("redis window expire failed: %w", err)
		}
		return count, window, nil
	}
	ttl, err := c.Client.PTTL(ctx, key).Result()
	if err != nil {
		return 0, 0, fmt.Errorf("redis window ttl failed: %w", err)
	}
	if ttl < 0 {
		// key lost its expiry; start a fresh window
		_ = c.Client.Expire(ctx, key, window).Err()
		ttl = window
	}
	return count, ttl, nil
}
