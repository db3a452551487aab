// Package redis provides a Redis-backed implementation of the store.KVStore
// interface used to share rate-limit records across proxy instances.
package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/harshraj001/cors-ninja/pkg/store"
)

// RedisStore implements the store.KVStore interface using Redis
type RedisStore struct {
	client *redis.Client
	config *store.Config
}

// New creates a new Redis store instance and verifies connectivity
func New(config *store.Config) (*RedisStore, error) {
	if config == nil {
		config = store.DefaultConfig()
	}

	if config.Address == "" {
		return nil, fmt.Errorf("redis address is required")
	}

	opts := &redis.Options{
		Addr:     config.Address,
		Password: config.Password,
		DB:       config.Database,
	}
	if config.Timeout > 0 {
		opts.DialTimeout = config.Timeout
		opts.ReadTimeout = config.Timeout
		opts.WriteTimeout = config.Timeout
	}

	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &RedisStore{
		client: client,
		config: config,
	}, nil
}

// getKey returns the full key with prefix
func (rs *RedisStore) getKey(key string) string {
	if rs.config.KeyPrefix == "" {
		return key
	}
	return rs.config.KeyPrefix + ":" + key
}

// Get retrieves a value by key. Returns nil if the key doesn't exist.
func (rs *RedisStore) Get(ctx context.Context, key string) ([]byte, error) {
	result, err := rs.client.Get(ctx, rs.getKey(key)).Result()
	if err != nil {
		if err == redis.Nil {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get key %s: %w", key, err)
	}

	return []byte(result), nil
}

// Set stores a value by key with optional TTL
func (rs *RedisStore) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if err := rs.client.Set(ctx, rs.getKey(key), value, ttl).Err(); err != nil {
		return fmt.Errorf("failed to set key %s: %w", key, err)
	}
	return nil
}

// Delete removes a key from storage
func (rs *RedisStore) Delete(ctx context.Context, key string) error {
	if err := rs.client.Del(ctx, rs.getKey(key)).Err(); err != nil {
		return fmt.Errorf("failed to delete key %s: %w", key, err)
	}
	return nil
}

// Exists checks if a key exists in storage
func (rs *RedisStore) Exists(ctx context.Context, key string) (bool, error) {
	result, err := rs.client.Exists(ctx, rs.getKey(key)).Result()
	if err != nil {
		return false, fmt.Errorf("failed to check existence of key %s: %w", key, err)
	}
	return result > 0, nil
}

// TTL returns the remaining time to live for a key.
// Returns -1 if key has no expiration, -2 if key doesn't exist.
func (rs *RedisStore) TTL(ctx context.Context, key string) (time.Duration, error) {
	result, err := rs.client.TTL(ctx, rs.getKey(key)).Result()
	if err != nil {
		return 0, fmt.Errorf("failed to get TTL for key %s: %w", key, err)
	}
	return normalizeTTL(result), nil
}

// normalizeTTL converts the client's sentinel replies to the interface's
// second-scale sentinels. Redis replies -2 for a missing key and -1 for a key
// without expiration; the client surfaces those as raw durations (-2ns/-1ns).
func normalizeTTL(result time.Duration) time.Duration {
	if result < 0 {
		if result == -2*time.Nanosecond || result == -2*time.Second {
			return -2 * time.Second
		}
		if result == -1*time.Nanosecond || result == -1*time.Second {
			return -1 * time.Second
		}
	}
	return result
}

// Close closes the store connection and releases resources
func (rs *RedisStore) Close() error {
	if rs.client != nil {
		return rs.client.Close()
	}
	return nil
}

// Health returns the health status of the store
func (rs *RedisStore) Health(ctx context.Context) store.HealthStatus {
	health := store.HealthStatus{
		Status:    "healthy",
		Message:   "Redis store is operational",
		Timestamp: time.Now(),
		Details: map[string]interface{}{
			"type":     "redis",
			"address":  rs.config.Address,
			"database": rs.config.Database,
		},
	}

	if err := rs.client.Ping(ctx).Err(); err != nil {
		health.Status = "unhealthy"
		health.Message = fmt.Sprintf("Redis connection failed: %v", err)
		health.Details["error"] = err.Error()
	}

	return health
}
