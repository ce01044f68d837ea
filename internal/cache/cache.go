// Package cache provides a TTL-bound, capacity-bounded key/value store used
// by every layer of the engine to avoid recomputation.
package cache

import (
	"sync"
	"time"
)

// DefaultCapacity bounds the cache when none is given.
const DefaultCapacity = 1000

type entry struct {
	value    any
	storedAt time.Time
	ttl      time.Duration
	timer    *time.Timer
}

// Cache is a mutex-guarded store with per-entry TTL and insertion-order
// eviction once capacity is reached. Eviction timers are best-effort; the
// read path independently verifies entry age, so a stalled timer can never
// cause a stale read, only a late physical eviction.
type Cache struct {
	mu       sync.Mutex
	entries  map[string]*entry
	order    []string // insertion order, oldest first
	capacity int

	now func() time.Time // injectable for simulated-clock tests
}

// New creates a cache. capacity <= 0 selects DefaultCapacity.
func New(capacity int) *Cache {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &Cache{
		entries:  make(map[string]*entry),
		capacity: capacity,
		now:      time.Now,
	}
}

// Set stores value under key. ttl <= 0 means the entry never expires via
// timer but remains subject to capacity eviction. Overwriting a key refreshes
// its insertion position.
func (c *Cache) Set(key string, value any, ttl time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if old, ok := c.entries[key]; ok {
		if old.timer != nil {
			old.timer.Stop()
		}
		c.removeFromOrder(key)
	} else if len(c.entries) >= c.capacity {
		// Evict the oldest-inserted entry to make room.
		oldest := c.order[0]
		c.deleteLocked(oldest)
	}

	e := &entry{value: value, storedAt: c.now(), ttl: ttl}
	if ttl > 0 {
		stored := e.storedAt
		e.timer = time.AfterFunc(ttl, func() {
			c.expire(key, stored)
		})
	}
	c.entries[key] = e
	c.order = append(c.order, key)
}

// Get returns the value for key. An entry older than its TTL is lazily
// deleted and reported absent, whether or not its timer has fired.
func (c *Cache) Get(key string) (any, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if !ok {
		return nil, false
	}
	if c.expired(e) {
		c.deleteLocked(key)
		return nil, false
	}
	return e.value, true
}

// Has reports whether key holds a live entry, applying the same lazy
// expiry as Get.
func (c *Cache) Has(key string) bool {
	_, ok := c.Get(key)
	return ok
}

// Delete removes key if present.
func (c *Cache) Delete(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.deleteLocked(key)
}

// Clear removes every entry and stops all pending timers.
func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, e := range c.entries {
		if e.timer != nil {
			e.timer.Stop()
		}
	}
	c.entries = make(map[string]*entry)
	c.order = c.order[:0]
}

// Len returns the number of stored entries, expired or not.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// expire is the timer callback. The storedAt check ensures a timer belonging
// to an overwritten entry cannot delete its replacement.
func (c *Cache) expire(key string, storedAt time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if e, ok := c.entries[key]; ok && e.storedAt.Equal(storedAt) {
		c.deleteLocked(key)
	}
}

func (c *Cache) expired(e *entry) bool {
	if e.ttl <= 0 {
		return false
	}
	return c.now().Sub(e.storedAt) > e.ttl
}

func (c *Cache) deleteLocked(key string) {
	e, ok := c.entries[key]
	if !ok {
		return
	}
	if e.timer != nil {
		e.timer.Stop()
	}
	delete(c.entries, key)
	c.removeFromOrder(key)
}

func (c *Cache) removeFromOrder(key string) {
	for i, k := range c.order {
		if k == key {
			c.order = append(c.order[:i], c.order[i+1:]...)
			return
		}
	}
}
