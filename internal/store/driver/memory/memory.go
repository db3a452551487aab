// Package memory provides an in-process implementation of the store.KVStore
// interface. It is intended for development and tests; a multi-instance
// deployment should use the redis driver so the rate-limit records are shared.
package memory

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/harshraj001/cors-ninja/pkg/store"
)

var errClosed = errors.New("memory store is closed")

// MemoryStore implements the store.KVStore interface using an in-memory map
type MemoryStore struct {
	mu     sync.RWMutex
	data   map[string]*entry
	config *store.Config
	stopCh chan struct{}
	closed bool
}

type entry struct {
	value     []byte
	expiresAt time.Time
	hasExpiry bool
}

// New creates a new in-memory store instance
func New(config *store.Config) (*MemoryStore, error) {
	if config == nil {
		config = store.DefaultConfig()
	}

	ms := &MemoryStore{
		data:   make(map[string]*entry),
		config: config,
		stopCh: make(chan struct{}),
	}

	go ms.cleanupLoop()

	return ms, nil
}

// getKey returns the full key with prefix
func (ms *MemoryStore) getKey(key string) string {
	if ms.config.KeyPrefix == "" {
		return key
	}
	return ms.config.KeyPrefix + ":" + key
}

// Get retrieves a value by key. Returns nil if the key doesn't exist.
func (ms *MemoryStore) Get(ctx context.Context, key string) ([]byte, error) {
	ms.mu.RLock()
	defer ms.mu.RUnlock()

	if ms.closed {
		return nil, errClosed
	}

	e, exists := ms.data[ms.getKey(key)]
	if !exists || e.expired(time.Now()) {
		return nil, nil
	}

	value := make([]byte, len(e.value))
	copy(value, e.value)
	return value, nil
}

// Set stores a value by key with optional TTL
func (ms *MemoryStore) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	ms.mu.Lock()
	defer ms.mu.Unlock()

	if ms.closed {
		return errClosed
	}

	stored := make([]byte, len(value))
	copy(stored, value)

	e := &entry{
		value:     stored,
		hasExpiry: ttl > 0,
	}
	if ttl > 0 {
		e.expiresAt = time.Now().Add(ttl)
	}

	ms.data[ms.getKey(key)] = e
	return nil
}

// Delete removes a key from storage
func (ms *MemoryStore) Delete(ctx context.Context, key string) error {
	ms.mu.Lock()
	defer ms.mu.Unlock()

	if ms.closed {
		return errClosed
	}

	delete(ms.data, ms.getKey(key))
	return nil
}

// Exists checks if a key exists in storage
func (ms *MemoryStore) Exists(ctx context.Context, key string) (bool, error) {
	ms.mu.RLock()
	defer ms.mu.RUnlock()

	if ms.closed {
		return false, errClosed
	}

	e, exists := ms.data[ms.getKey(key)]
	return exists && !e.expired(time.Now()), nil
}

// TTL returns the remaining time to live for a key.
// Returns -1 if key has no expiration, -2 if key doesn't exist.
func (ms *MemoryStore) TTL(ctx context.Context, key string) (time.Duration, error) {
	ms.mu.RLock()
	defer ms.mu.RUnlock()

	if ms.closed {
		return 0, errClosed
	}

	now := time.Now()
	e, exists := ms.data[ms.getKey(key)]
	if !exists || e.expired(now) {
		return -2 * time.Second, nil
	}
	if !e.hasExpiry {
		return -1 * time.Second, nil
	}

	ttl := e.expiresAt.Sub(now)
	if ttl < 0 {
		ttl = 0
	}
	return ttl, nil
}

// Close stops the cleanup goroutine and clears the store
func (ms *MemoryStore) Close() error {
	ms.mu.Lock()
	defer ms.mu.Unlock()

	if !ms.closed {
		close(ms.stopCh)
		ms.closed = true
	}
	ms.data = make(map[string]*entry)
	return nil
}

// Health returns the health status of the memory store
func (ms *MemoryStore) Health(ctx context.Context) store.HealthStatus {
	ms.mu.RLock()
	defer ms.mu.RUnlock()

	return store.HealthStatus{
		Status:    "healthy",
		Message:   "memory store is operational",
		Timestamp: time.Now(),
		Details: map[string]interface{}{
			"type":       "memory",
			"keys_count": len(ms.data),
		},
	}
}

func (e *entry) expired(now time.Time) bool {
	return e.hasExpiry && now.After(e.expiresAt)
}

// cleanupLoop removes expired entries periodically
func (ms *MemoryStore) cleanupLoop() {
	ticker := time.NewTicker(1 * time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			ms.performCleanup()
		case <-ms.stopCh:
			return
		}
	}
}

func (ms *MemoryStore) performCleanup() {
	ms.mu.Lock()
	defer ms.mu.Unlock()

	now := time.Now()
	for key, e := range ms.data {
		if e.expired(now) {
			delete(ms.data, key)
		}
	}
}
