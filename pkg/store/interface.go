package store

import (
	"context"
	"time"
)

// KVStore defines the interface for the key-value backend used by the rate
// limiter. Implementations are expected to be safe for concurrent use and to
// expire keys after their TTL elapses. The store is best-effort: no
// transactional or compare-and-swap semantics are provided.
type KVStore interface {
	// Get retrieves a value by key.
	// Returns nil if the key doesn't exist.
	Get(ctx context.Context, key string) ([]byte, error)

	// Set stores a value by key with optional TTL.
	// If ttl is 0, the key will not expire.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error

	// Delete removes a key from storage.
	Delete(ctx context.Context, key string) error

	// Exists checks if a key exists in storage.
	Exists(ctx context.Context, key string) (bool, error)

	// TTL returns the remaining time to live for a key.
	// Returns -1 if key has no expiration, -2 if key doesn't exist.
	TTL(ctx context.Context, key string) (time.Duration, error)

	// Close closes the store connection and releases resources.
	Close() error

	// Health returns the health status of the store.
	Health(ctx context.Context) HealthStatus
}

// HealthStatus represents the health status of a store
type HealthStatus struct {
	Status    string                 `json:"status"`
	Message   string                 `json:"message,omitempty"`
	Details   map[string]interface{} `json:"details,omitempty"`
	Timestamp time.Time              `json:"timestamp"`
}

// Config represents the configuration for a store
type Config struct {
	// Type specifies the store type (memory, redis)
	Type string `yaml:"type" json:"type"`

	// Address is the connection address for remote stores
	Address string `yaml:"address" json:"address"`

	// Database number for stores that support multiple databases
	Database int `yaml:"database" json:"database"`

	// Password for authentication
	Password string `yaml:"password" json:"password"`

	// Timeout for operations
	Timeout time.Duration `yaml:"timeout" json:"timeout"`

	// KeyPrefix for all keys stored by this instance
	KeyPrefix string `yaml:"key_prefix" json:"key_prefix"`
}

// DefaultConfig returns a default store configuration
func DefaultConfig() *Config {
	return &Config{
		Type:      "memory",
		Address:   "",
		Database:  0,
		Password:  "",
		Timeout:   5 * time.Second,
		KeyPrefix: "",
	}
}
