package cache

import (
	"context"
	"testing"
	"time"
)

func TestTTLGetSet(t *testing.T) {
	ctx := context.Background()
	c := NewTTL[string](time.Minute)

	if _, ok := c.Get(ctx, "missing"); ok {
		t.Error("Get on empty store returned ok")
	}

	c.Set(ctx, "a", "one")
	got, ok := c.Get(ctx, "a")
	if !ok || got != "one" {
		t.Errorf("Get = (%q, %v), want (one, true)", got, ok)
	}
}

func TestTTLExpiry(t *testing.T) {
	ctx := context.Background()
	now := time.Now()
	c := NewTTL[int](time.Minute)
	c.now = func() time.Time { return now }

	c.Set(ctx, "k", 42)
	if _, ok := c.Get(ctx, "k"); !ok {
		t.Fatal("entry missing before expiry")
	}

	now = now.Add(2 * time.Minute)
	if _, ok := c.Get(ctx, "k"); ok {
		t.Error("entry survived past TTL")
	}

	// Expired entries are swept on the next write.
	c.Set(ctx, "other", 1)
	if c.Len() != 1 {
		t.Errorf("Len = %d after sweep, want 1", c.Len())
	}
}

func TestTTLStoresNilPointer(t *testing.T) {
	ctx := context.Background()
	c := NewTTL[*int](time.Minute)

	// A stored nil is a valid entry, distinct from a miss.
	c.Set(ctx, "none", nil)
	got, ok := c.Get(ctx, "none")
	if !ok || got != nil {
		t.Errorf("Get = (%v, %v), want (nil, true)", got, ok)
	}
}

func TestTTLDefault(t *testing.T) {
	c := NewTTL[int](0)
	if c.ttl != DefaultTTL {
		t.Errorf("ttl = %v, want %v", c.ttl, DefaultTTL)
	}
}
