// Package storage wraps Redis as a small JSON key-value store.
package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/bytedance/sonic"
	"github.com/redis/go-redis/v9"
)

var ErrNotFound = errors.New("key not found")

// RedisStorage stores JSON values under a fixed key prefix
type RedisStorage struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

// NewRedisStorage connects to redisURL and verifies the connection
func NewRedisStorage(ctx context.Context, redisURL, prefix string, ttl time.Duration) (*RedisStorage, error) {
	if redisURL == "" {
		return nil, fmt.Errorf("REDIS_URL is required")
	}

	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse REDIS_URL: %w", err)
	}

	client := redis.NewClient(opts)

	// Test connection
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &RedisStorage{client: client, prefix: prefix, ttl: ttl}, nil
}

// Key returns the full Redis key for id
func (r *RedisStorage) Key(id string) string {
	return r.prefix + id
}

// Set stores data with the storage TTL
func (r *RedisStorage) Set(ctx context.Context, id string, data any) error {
	jsonData, err := sonic.Marshal(data)
	if err != nil {
		return fmt.Errorf("failed to marshal value: %w", err)
	}

	if err := r.client.Set(ctx, r.Key(id), jsonData, r.ttl).Err(); err != nil {
		return fmt.Errorf("failed to set value: %w", err)
	}
	return nil
}

// GetAndTouch reads a value and extends its TTL
func (r *RedisStorage) GetAndTouch(ctx context.Context, id string, dest any) error {
	var (
		s   string
		err error
	)
	if r.ttl > 0 {
		s, err = r.client.GetEx(ctx, r.Key(id), r.ttl).Result()
	} else {
		s, err = r.client.Get(ctx, r.Key(id)).Result()
	}
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return fmt.Errorf("%w: %s", ErrNotFound, id)
		}
		return fmt.Errorf("failed to GETEX: %w", err)
	}
	if err := sonic.UnmarshalString(s, dest); err != nil {
		return fmt.Errorf("failed to unmarshal value: %w", err)
	}
	return nil
}

// Delete removes a single key
func (r *RedisStorage) Delete(ctx context.Context, id string) error {
	if err := r.client.Del(ctx, r.Key(id)).Err(); err != nil {
		return fmt.Errorf("failed to delete key: %w", err)
	}
	return nil
}

// DeleteMatching removes every key under prefix+pattern
func (r *RedisStorage) DeleteMatching(ctx context.Context, pattern string) (int, error) {
	iter := r.client.Scan(ctx, 0, r.Key(pattern), 100).Iterator()
	var keys []string
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return 0, fmt.Errorf("failed to scan keys: %w", err)
	}
	if len(keys) == 0 {
		return 0, nil
	}
	if err := r.client.Del(ctx, keys...).Err(); err != nil {
		return 0, fmt.Errorf("failed to delete keys: %w", err)
	}
	return len(keys), nil
}

// TTL returns the remaining lifetime of a key
func (r *RedisStorage) TTL(ctx context.Context, id string) (time.Duration, error) {
	ttl, err := r.client.TTL(ctx, r.Key(id)).Result()
	if err != nil {
		return 0, fmt.Errorf("failed to get TTL: %w", err)
	}
	return ttl, nil
}

// Ping tests Redis connection
func (r *RedisStorage) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

// Close closes the Redis connection
func (r *RedisStorage) Close() error {
	return r.client.Close()
}
