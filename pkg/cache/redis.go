package cache

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

// Redis is a TTL'd store backed by a shared Redis instance, for hosts that
// run multiple API replicas. Values are stored as JSON. Redis errors are
// treated as cache misses; a flaky cache must never fail a search.
type Redis[T any] struct {
	rdb    *redis.Client
	prefix string
	ttl    time.Duration
	logger *slog.Logger
}

// NewRedis creates a Redis-backed store. Keys are stored as prefix+key.
// A non-positive ttl falls back to DefaultTTL.
func NewRedis[T any](rdb *redis.Client, prefix string, ttl time.Duration, logger *slog.Logger) *Redis[T] {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Redis[T]{rdb: rdb, prefix: prefix, ttl: ttl, logger: logger}
}

// Get returns the stored value for key, if present.
func (c *Redis[T]) Get(ctx context.Context, key string) (T, bool) {
	var zero T
	b, err := c.rdb.Get(ctx, c.prefix+key).Bytes()
	if err != nil {
		if err != redis.Nil {
			c.logger.Warn("redis get failed, treating as miss", "key", key, "err", err)
		}
		return zero, false
	}
	var val T
	if err := json.Unmarshal(b, &val); err != nil {
		c.logger.Warn("redis entry undecodable, treating as miss", "key", key, "err", err)
		return zero, false
	}
	return val, true
}

// Set stores val under key for the store's TTL.
func (c *Redis[T]) Set(ctx context.Context, key string, val T) {
	b, err := json.Marshal(val)
	if err != nil {
		c.logger.Warn("redis set skipped, value not marshalable", "key", key, "err", err)
		return
	}
	if err := c.rdb.Set(ctx, c.prefix+key, b, c.ttl).Err(); err != nil {
		c.logger.Warn("redis set failed", "key", key, "err", err)
	}
}
