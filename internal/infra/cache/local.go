package cache

import (
	"sync/atomic"
	"time"

	expirable "github.com/hashicorp/golang-lru/v2/expirable"
)

const (
	// DefaultLocalCapacity bounds the in-process fallback cache.
	DefaultLocalCapacity = 1000

	// DefaultLocalBackstopTTL ages out entries that were stored without an
	// explicit TTL. Per-entry TTLs shorter than this are enforced on read.
	DefaultLocalBackstopTTL = time.Hour
)

// LocalCache is the bounded, TTL-aware in-process fallback tier.
// Capacity eviction follows LRU order; per-entry expiry is enforced at read
// time, and expired entries are purged on first observation.
type LocalCache struct {
	lru       *expirable.LRU[string, Entry]
	evictions atomic.Int64
	now       func() time.Time
}

// NewLocalCache creates a local fallback cache with the given capacity and
// backstop TTL. Non-positive arguments fall back to the defaults.
func NewLocalCache(capacity int, backstopTTL time.Duration) *LocalCache {
	if capacity <= 0 {
		capacity = DefaultLocalCapacity
	}
	if backstopTTL <= 0 {
		backstopTTL = DefaultLocalBackstopTTL
	}
	c := &LocalCache{now: time.Now}
	c.lru = expirable.NewLRU[string, Entry](capacity, func(key string, value Entry) {
		c.evictions.Add(1)
	}, backstopTTL)
	return c
}

// Get returns the value for key, or false on miss. An entry read at or past
// its expiry is treated as a miss and purged.
func (c *LocalCache) Get(key string) ([]byte, bool) {
	entry, ok := c.lru.Get(key)
	if !ok {
		return nil, false
	}
	if entry.expired(c.now()) {
		c.lru.Remove(key)
		return nil, false
	}
	return entry.Value, true
}

// Set stores value under key with the given TTL. A non-positive TTL stores
// the entry with no per-entry expiry (the LRU backstop still applies).
func (c *LocalCache) Set(key string, value []byte, ttl time.Duration) {
	entry := Entry{Value: value}
	if ttl > 0 {
		entry.ExpiresAt = c.now().Add(ttl)
	}
	c.lru.Add(key, entry)
}

// Delete removes key from the cache. Returns true if the key was present.
func (c *LocalCache) Delete(key string) bool {
	return c.lru.Remove(key)
}

// Len returns the current number of entries, including not-yet-purged
// expired ones.
func (c *LocalCache) Len() int {
	return c.lru.Len()
}

// Evictions returns the cumulative number of evicted entries.
func (c *LocalCache) Evictions() int64 {
	return c.evictions.Load()
}
