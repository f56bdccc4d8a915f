package velocity

import (
	"fmt"
	"hash/fnv"
	"sync"
	"time"

	"github.com/felixgeelhaar/pulse/pkg/domain/tracker"
)

// DefaultTTL is how long a cached velocity result stays valid.
const DefaultTTL = 5 * time.Minute

// Cache is a bounded TTL map over computed velocity results, keyed by
// (aggregation type, parameter hash). Last writer wins per key. Safe for
// concurrent use.
type Cache struct {
	mu      sync.Mutex
	ttl     time.Duration
	entries map[string]cacheEntry
	clock   func() time.Time
}

type cacheEntry struct {
	value   any
	expires time.Time
}

// NewCache creates a cache with the given TTL; zero means DefaultTTL.
func NewCache(ttl time.Duration) *Cache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Cache{
		ttl:     ttl,
		entries: make(map[string]cacheEntry),
		clock:   time.Now,
	}
}

// get returns the unexpired value for key, if any.
func (c *Cache) get(key string) (any, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries[key]
	if !ok {
		return nil, false
	}
	if c.clock().After(e.expires) {
		delete(c.entries, key)
		return nil, false
	}
	return e.value, true
}

// set stores a value under key.
func (c *Cache) set(key string, value any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = cacheEntry{value: value, expires: c.clock().Add(c.ttl)}
}

// Invalidate drops one key.
func (c *Cache) Invalidate(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, key)
}

// Flush drops every entry. Wired to configuration-changed and
// snapshot-reloaded events.
func (c *Cache) Flush() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]cacheEntry)
}

// Len reports the number of live entries, expired or not.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// cacheGet is a typed read; a nil cache never hits.
func cacheGet[T any](c *Cache, aggregation, params string) (T, bool) {
	var zero T
	if c == nil {
		return zero, false
	}
	v, ok := c.get(aggregation + ":" + params)
	if !ok {
		return zero, false
	}
	typed, ok := v.(T)
	if !ok {
		return zero, false
	}
	return typed, true
}

// cacheSet is a typed write; a nil cache drops the value.
func cacheSet[T any](c *Cache, aggregation, params string, value T) {
	if c == nil {
		return
	}
	c.set(aggregation+":"+params, value)
}

// sprintKey hashes the identity-relevant parts of an issue set into a
// stable cache key.
func sprintKey(issues []tracker.Issue) string {
	h := fnv.New64a()
	for i := range issues {
		fmt.Fprintf(h, "%d:%s;", issues[i].ID, issues[i].State)
	}
	return fmt.Sprintf("%x", h.Sum64())
}
