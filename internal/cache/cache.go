// Package cache provides the bounded, process-lifetime result cache used by
// the aggregation engine.
package cache

import (
	"sync"
	"sync/atomic"

	lru "github.com/hashicorp/golang-lru/v2"
)

const (
	// DefaultMaxEntries bounds the number of cached result lists.
	DefaultMaxEntries = 200

	// DefaultEvictBatch is how many of the oldest entries are dropped at once.
	DefaultEvictBatch = 50
)

// Stats is a point-in-time view of cache activity.
type Stats struct {
	Entries   int    `json:"entries"`
	Hits      uint64 `json:"hits"`
	Misses    uint64 `json:"misses"`
	Evictions uint64 `json:"evictions"`
}

// Cache maps string keys to values with no expiry. When a Put pushes it past
// maxEntries, the evictBatch oldest-inserted entries are dropped together.
//
// Reads use Peek and rewrites replace the value in its slot, so neither
// reorders entries: eviction follows first insertion order.
type Cache[V any] struct {
	maxEntries int
	evictBatch int

	mu      sync.Mutex // serializes Put so the length check and batch eviction are atomic
	entries *lru.Cache[string, *slot[V]]

	hits      atomic.Uint64
	misses    atomic.Uint64
	evictions atomic.Uint64
}

// slot holds a value so it can be replaced without touching list order.
type slot[V any] struct {
	value atomic.Pointer[V]
}

// New creates a cache. Non-positive arguments fall back to the defaults, and
// evictBatch is clamped to maxEntries.
func New[V any](maxEntries, evictBatch int) *Cache[V] {
	if maxEntries <= 0 {
		maxEntries = DefaultMaxEntries
	}
	if evictBatch <= 0 {
		evictBatch = DefaultEvictBatch
	}
	if evictBatch > maxEntries {
		evictBatch = maxEntries
	}
	// One slot of headroom: the underlying LRU must never evict on its own.
	entries, _ := lru.New[string, *slot[V]](maxEntries + 1)
	return &Cache[V]{
		maxEntries: maxEntries,
		evictBatch: evictBatch,
		entries:    entries,
	}
}

// Get returns the value stored under key.
func (c *Cache[V]) Get(key string) (V, bool) {
	s, ok := c.entries.Peek(key)
	if !ok {
		c.misses.Add(1)
		var zero V
		return zero, false
	}
	c.hits.Add(1)
	return *s.value.Load(), true
}

// Put stores value under key. An existing key keeps its place in the
// eviction order and only its value is replaced.
func (c *Cache[V]) Put(key string, value V) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if s, ok := c.entries.Peek(key); ok {
		s.value.Store(&value)
		return
	}
	s := &slot[V]{}
	s.value.Store(&value)
	c.entries.Add(key, s)
	if c.entries.Len() <= c.maxEntries {
		return
	}
	for i := 0; i < c.evictBatch; i++ {
		if _, _, ok := c.entries.RemoveOldest(); !ok {
			break
		}
		c.evictions.Add(1)
	}
}

// Len returns the number of entries.
func (c *Cache[V]) Len() int {
	return c.entries.Len()
}

// Keys returns the keys from oldest to newest.
func (c *Cache[V]) Keys() []string {
	return c.entries.Keys()
}

// Purge drops every entry.
func (c *Cache[V]) Purge() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries.Purge()
}

// Stats returns counters since creation.
func (c *Cache[V]) Stats() Stats {
	return Stats{
		Entries:   c.entries.Len(),
		Hits:      c.hits.Load(),
		Misses:    c.misses.Load(),
		Evictions: c.evictions.Load(),
	}
}
