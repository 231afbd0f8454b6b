// Package cache stores LLM extraction replies so repeated uploads of the same
// conversation do not pay for a second model call.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// ErrMiss is returned when a key is not cached.
var ErrMiss = errors.New("cache miss")

// Cache is the subset the extractor relies on.
type Cache interface {
	GetJSON(ctx context.Context, key string, dest any) error
	SetJSON(ctx context.Context, key string, value any, ttl time.Duration) error
}

// Redis wraps a go-redis client with a key prefix.
type Redis struct {
	client    *redis.Client
	keyPrefix string
}

// NewRedis connects using a redis:// URL and verifies the connection.
func NewRedis(ctx context.Context, url, keyPrefix string) (*Redis, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return &Redis{client: client, keyPrefix: keyPrefix}, nil
}

// NewRedisFromClient wraps an existing client.
func NewRedisFromClient(client *redis.Client, keyPrefix string) *Redis {
	return &Redis{client: client, keyPrefix: keyPrefix}
}

func (c *Redis) key(k string) string {
	return c.keyPrefix + k
}

// GetJSON loads and decodes a cached value. A missing key yields ErrMiss.
func (c *Redis) GetJSON(ctx context.Context, key string, dest any) error {
	data, err := c.client.Get(ctx, c.key(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return ErrMiss
	}
	if err != nil {
		return fmt.Errorf("redis get: %w", err)
	}
	if err := json.Unmarshal(data, dest); err != nil {
		return fmt.Errorf("decode cached value: %w", err)
	}
	return nil
}

// SetJSON encodes and stores a value. A zero ttl keeps it forever.
func (c *Redis) SetJSON(ctx context.Context, key string, value any, ttl time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("encode cache value: %w", err)
	}
	if err := c.client.Set(ctx, c.key(key), data, ttl).Err(); err != nil {
		return fmt.Errorf("redis set: %w", err)
	}
	return nil
}

// Close closes the underlying connection pool.
func (c *Redis) Close() error {
	return c.client.Close()
}

// Nop never stores anything.
type Nop struct{}

func (Nop) GetJSON(context.Context, string, any) error { return ErrMiss }

func (Nop) SetJSON(context.Context, string, any, time.Duration) error { return nil }
