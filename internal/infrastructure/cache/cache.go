// Package cache holds the advisory read-through cache for the
// reconciliation read path. It never holds authoritative state: every
// caller must stay correct when entries are missing or evicted at any
// point.
package cache

import (
	"sync"
	"time"
)

// Clock is injected so expiry is deterministic under test.
type Clock interface {
	Now() time.Time
}

type realClock struct{}

func (realClock) Now() time.Time { return time.Now() }

// RealClock returns the wall clock.
func RealClock() Clock { return realClock{} }

type entry struct {
	value     interface{}
	expiresAt time.Time
}

// TTLCache is a capacity-bounded map with per-instance TTL. Constructed
// per process and passed by reference; never package-global.
type TTLCache struct {
	mu       sync.RWMutex
	clock    Clock
	ttl      time.Duration
	capacity int
	entries  map[string]entry
}

func NewTTLCache(clock Clock, ttl time.Duration, capacity int) *TTLCache {
	if capacity <= 0 {
		capacity = 256
	}
	return &TTLCache{
		clock:    clock,
		ttl:      ttl,
		capacity: capacity,
		entries:  make(map[string]entry),
	}
}

func (c *TTLCache) Get(key string) (interface{}, bool) {
	c.mu.RLock()
	e, ok := c.entries[key]
	c.mu.RUnlock()
	if !ok {
		return nil, false
	}
	if c.clock.Now().After(e.expiresAt) {
		c.mu.Lock()
		delete(c.entries, key)
		c.mu.Unlock()
		return nil, false
	}
	return e.value, true
}

func (c *TTLCache) Set(key string, value interface{}) {
	now := c.clock.Now()

	c.mu.Lock()
	defer c.mu.Unlock()

	if len(c.entries) >= c.capacity {
		c.evictLocked(now)
	}

	c.entries[key] = entry{value: value, expiresAt: now.Add(c.ttl)}
}

// evictLocked drops expired entries first, then the soonest-to-expire
// entry if the cache is still full.
func (c *TTLCache) evictLocked(now time.Time) {
	for key, e := range c.entries {
		if now.After(e.expiresAt) {
			delete(c.entries, key)
		}
	}
	if len(c.entries) < c.capacity {
		return
	}

	var oldestKey string
	var oldestExpiry time.Time
	for key, e := range c.entries {
		if oldestKey == "" || e.expiresAt.Before(oldestExpiry) {
			oldestKey = key
			oldestExpiry = e.expiresAt
		}
	}
	delete(c.entries, oldestKey)
}

func (c *TTLCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}
