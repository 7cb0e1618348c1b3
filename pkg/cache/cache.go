// Package cache provides small TTL'd key-value stores used to hold resolved
// listing details between evaluation passes. The host constructs a store and
// owns its time-to-live; consumers see it as an opaque collaborator.
package cache

import (
	"context"
	"sync"
	"time"
)

// DefaultTTL is the detail-cache time-to-live used by the host unless
// configured otherwise.
const DefaultTTL = 5 * time.Minute

type entry[T any] struct {
	val     T
	expires time.Time
}

// TTL is an in-memory store with per-entry expiry. Safe for concurrent use.
type TTL[T any] struct {
	mu      sync.RWMutex
	ttl     time.Duration
	entries map[string]entry[T]
	now     func() time.Time // for testing
}

// NewTTL creates an in-memory store with the given time-to-live.
// A non-positive ttl falls back to DefaultTTL.
func NewTTL[T any](ttl time.Duration) *TTL[T] {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &TTL[T]{
		ttl:     ttl,
		entries: make(map[string]entry[T]),
		now:     time.Now,
	}
}

// Get returns the stored value for key, if present and unexpired.
func (c *TTL[T]) Get(_ context.Context, key string) (T, bool) {
	c.mu.RLock()
	e, ok := c.entries[key]
	c.mu.RUnlock()
	if !ok || c.now().After(e.expires) {
		var zero T
		return zero, false
	}
	return e.val, true
}

// Set stores val under key for the store's TTL. Expired entries are swept
// lazily on write.
func (c *TTL[T]) Set(_ context.Context, key string, val T) {
	now := c.now()
	c.mu.Lock()
	for k, e := range c.entries {
		if now.After(e.expires) {
			delete(c.entries, k)
		}
	}
	c.entries[key] = entry[T]{val: val, expires: now.Add(c.ttl)}
	c.mu.Unlock()
}

// Len returns the number of entries, including any not yet swept.
func (c *TTL[T]) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}
