// Package cache is a small in-process TTL cache.
package cache

import (
	"sync"
	"time"
)

type Cache[K comparable, V any] struct {
	mu  sync.RWMutex
	ttl time.Duration
	now func() time.Time
	m   map[K]entry[V]
}

type entry[V any] struct {
	val V
	exp time.Time
}

func New[K comparable, V any](ttl time.Duration) *Cache[K, V] {
	if ttl <= 0 {
		ttl = 5 * time.Second
	}

	return &Cache[K, V]{
		ttl: ttl,
		now: time.Now,
		m:   make(map[K]entry[V]),
	}
}

func (c *Cache[K, V]) Get(key K) (V, bool) {
	now := c.now()
	c.mu.RLock()
	e, ok := c.m[key]
	c.mu.RUnlock()

	if !ok {
		var zero V
		return zero, false
	}

	if now.After(e.exp) {
		c.mu.Lock()
		// another writer may have refreshed it meanwhile
		if cur, still := c.m[key]; still && now.After(cur.exp) {
			delete(c.m, key)
		}
		c.mu.Unlock()

		var zero V
		return zero, false
	}

	return e.val, true
}

func (c *Cache[K, V]) Set(key K, val V) {
	c.mu.Lock()
	c.m[key] = entry[V]{val: val, exp: c.now().Add(c.ttl)}
	c.mu.Unlock()
}
