// Package ratelimit implements the per-client sliding-window rate limiter.
//
// Each client key maps to a JSON record in the shared key-value store holding
// the timestamps of its requests inside the active window. The
// check-then-write sequence is intentionally not transactional: concurrent
// requests racing on the same key may both pass even when the combined count
// exceeds the ceiling. The store is best-effort, so store failures degrade
// the limiter to allow-all instead of failing the request.
package ratelimit

import (
	"context"
	"encoding/json"
	"time"

	"go.uber.org/zap"

	"github.com/harshraj001/cors-ninja/pkg/store"
)

const (
	// Window is the duration of the sliding window.
	Window = 60 * time.Second

	// RecordTTL is the idle expiry applied to every persisted record.
	RecordTTL = 60 * time.Second

	keyPrefix = "ratelimit:"
)

// record is the persisted per-client state: a monotonically-appended list of
// request timestamps (milliseconds since epoch) and a cumulative count.
type record struct {
	Count      int64   `json:"count"`
	Timestamps []int64 `json:"timestamps"`
}

// Decision represents the outcome of a rate limit check
type Decision struct {
	// Allowed reports whether the request may proceed.
	Allowed bool

	// Limit is the configured per-window ceiling.
	Limit int

	// Remaining is the number of requests left in the current window.
	Remaining int

	// FailedOpen is set when the store was unavailable and the limiter
	// allowed the request without consulting it.
	FailedOpen bool
}

// SlidingWindowLimiter checks and records requests against a per-client
// sliding time window persisted in a shared key-value store.
type SlidingWindowLimiter struct {
	store  store.KVStore
	limit  int
	logger *zap.Logger
}

// NewSlidingWindowLimiter creates a new limiter backed by kv. A nil kv is
// tolerated: the limiter then fails open on every check.
func NewSlidingWindowLimiter(kv store.KVStore, requestsPerMinute int, logger *zap.Logger) *SlidingWindowLimiter {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SlidingWindowLimiter{
		store:  kv,
		limit:  requestsPerMinute,
		logger: logger,
	}
}

// Allow checks whether a request from the given client key is inside the
// configured ceiling and, if so, records it. A rejected request is not
// recorded and does not count against the window.
func (l *SlidingWindowLimiter) Allow(ctx context.Context, clientKey string) Decision {
	if l.store == nil {
		l.logger.Warn("rate limit store not available, allowing request",
			zap.String("client", clientKey))
		return Decision{Allowed: true, Limit: l.limit, Remaining: l.limit, FailedOpen: true}
	}

	key := keyPrefix + clientKey
	now := time.Now()

	rec := l.fetch(ctx, key, clientKey)
	rec.prune(now)

	if len(rec.Timestamps) >= l.limit {
		return Decision{Allowed: false, Limit: l.limit, Remaining: 0}
	}

	rec.Timestamps = append(rec.Timestamps, now.UnixMilli())
	rec.Count++

	data, err := json.Marshal(rec)
	if err == nil {
		err = l.store.Set(ctx, key, data, RecordTTL)
	}
	if err != nil {
		// The check already passed; a failed write only loses this
		// request from the window.
		l.logger.Warn("failed to persist rate limit record, allowing request",
			zap.String("client", clientKey),
			zap.Error(err))
		return Decision{Allowed: true, Limit: l.limit, Remaining: l.remaining(rec), FailedOpen: true}
	}

	return Decision{Allowed: true, Limit: l.limit, Remaining: l.remaining(rec)}
}

// fetch loads the stored record for key. An absent record, a store read
// failure, or malformed stored JSON all yield an empty record.
func (l *SlidingWindowLimiter) fetch(ctx context.Context, key, clientKey string) *record {
	data, err := l.store.Get(ctx, key)
	if err != nil {
		l.logger.Warn("failed to read rate limit record, treating as empty",
			zap.String("client", clientKey),
			zap.Error(err))
		return &record{}
	}
	if data == nil {
		return &record{}
	}

	rec := &record{}
	if err := json.Unmarshal(data, rec); err != nil {
		l.logger.Warn("malformed rate limit record, treating as empty",
			zap.String("client", clientKey),
			zap.Error(err))
		return &record{}
	}
	return rec
}

// prune drops timestamps that have aged out of the window ending at now
func (r *record) prune(now time.Time) {
	cutoff := now.Add(-Window).UnixMilli()
	kept := r.Timestamps[:0]
	for _, ts := range r.Timestamps {
		if ts > cutoff {
			kept = append(kept, ts)
		}
	}
	r.Timestamps = kept
}

func (l *SlidingWindowLimiter) remaining(rec *record) int {
	remaining := l.limit - len(rec.Timestamps)
	if remaining < 0 {
		remaining = 0
	}
	return remaining
}

// Limit returns the configured per-window ceiling
func (l *SlidingWindowLimiter) Limit() int {
	return l.limit
}
