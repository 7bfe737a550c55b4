// Package snapshot provides read-through caches over externally owned data.
//
// A snapshot may lag behind writes made by other processes by at most its
// TTL. Writes made through this process are applied to the snapshot
// directly so that back-to-back scans see each other.
package snapshot

import (
	"context"
	"sync"
	"time"
)

// Loader fetches a fresh value from the backing store
type Loader[T any] func(ctx context.Context) (T, error)

// Cache holds one value loaded on demand and reloaded once older than TTL.
// A TTL of zero reloads on every Get.
type Cache[T any] struct {
	mu       sync.Mutex
	load     Loader[T]
	ttl      time.Duration
	now      func() time.Time
	value    T
	loadedAt time.Time
	valid    bool
}

// New creates a cache around load
func New[T any](load Loader[T], ttl time.Duration) *Cache[T] {
	return &Cache[T]{
		load: load,
		ttl:  ttl,
		now:  time.Now,
	}
}

// SetClock replaces the wall clock, mostly for tests
func (c *Cache[T]) SetClock(now func() time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = now
}

// Get returns the cached value, loading it when missing or stale.
// On a failed reload the error is returned and the old value is kept.
func (c *Cache[T]) Get(ctx context.Context) (T, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.fresh() {
		return c.value, nil
	}

	v, err := c.load(ctx)
	if err != nil {
		var zero T
		return zero, err
	}
	c.value = v
	c.loadedAt = c.now()
	c.valid = true
	return v, nil
}

// Update applies fn to the cached value if one is held.
// It never triggers a load.
func (c *Cache[T]) Update(fn func(T) T) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.valid {
		c.value = fn(c.value)
	}
}

// Invalidate forces the next Get to reload
func (c *Cache[T]) Invalidate() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.valid = false
}

// Age returns how old the held value is, or -1 when nothing is held
func (c *Cache[T]) Age() time.Duration {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.valid {
		return -1
	}
	return c.now().Sub(c.loadedAt)
}

func (c *Cache[T]) fresh() bool {
	if !c.valid {
		return false
	}
	return c.ttl > 0 && c.now().Sub(c.loadedAt) < c.ttl
}
