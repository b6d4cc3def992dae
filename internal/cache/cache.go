// Package cache provides a bounded, expiring, least-recently-used cache.
package cache

import (
	"sync"
	"time"

	"github.com/hashicorp/golang-lru/v2/simplelru"
)

type entry[V any] struct {
	value    V
	storedAt time.Time
}

// Cache is a fixed-capacity LRU cache whose entries expire after a TTL.
// A zero TTL disables expiry. Safe for concurrent use.
type Cache[K comparable, V any] struct {
	mu  sync.Mutex
	lru *simplelru.LRU[K, entry[V]]
	ttl time.Duration
	now func() time.Time
}

// Option configures a Cache.
type Option[K comparable, V any] func(*Cache[K, V])

// WithClock replaces the time source, for tests.
func WithClock[K comparable, V any](now func() time.Time) Option[K, V] {
	return func(c *Cache[K, V]) {
		c.now = now
	}
}

// New creates a cache holding at most size entries.
func New[K comparable, V any](size int, ttl time.Duration, opts ...Option[K, V]) (*Cache[K, V], error) {
	lru, err := simplelru.NewLRU[K, entry[V]](size, nil)
	if err != nil {
		return nil, err
	}
	if ttl < 0 {
		ttl = 0
	}

	c := &Cache[K, V]{
		lru: lru,
		ttl: ttl,
		now: time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Get returns the value for key. Expired entries are removed and reported as misses.
func (c *Cache[K, V]) Get(key K) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	var zero V
	e, ok := c.lru.Get(key)
	if !ok {
		return zero, false
	}
	if c.expired(e) {
		c.lru.Remove(key)
		return zero, false
	}
	return e.value, true
}

// Put stores value under key, evicting the least recently used entry when full.
func (c *Cache[K, V]) Put(key K, value V) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.lru.Add(key, entry[V]{value: value, storedAt: c.now()})
}

// Remove deletes key, reporting whether it was present.
func (c *Cache[K, V]) Remove(key K) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.lru.Remove(key)
}

// Len returns the number of stored entries, including any not yet observed as expired.
func (c *Cache[K, V]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.lru.Len()
}

// Purge removes every entry.
func (c *Cache[K, V]) Purge() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.lru.Purge()
}

func (c *Cache[K, V]) expired(e entry[V]) bool {
	return c.ttl > 0 && c.now().Sub(e.storedAt) >= c.ttl
}
