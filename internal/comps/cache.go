package comps

import (
	"strings"
	"sync"
	"time"

	"recovery-engine/internal/models"
)

type cacheEntry struct {
	result    models.CompResult
	expiresAt time.Time
}

// Cache memoizes comp results for a fixed TTL. Eviction is lazy: an expired
// entry is removed on the Get that observes it. Safe for concurrent use.
type Cache struct {
	mu      sync.Mutex
	ttl     time.Duration
	entries map[string]cacheEntry
	now     func() time.Time
}

func NewCache(ttl time.Duration) *Cache {
	return &Cache{
		ttl:     ttl,
		entries: make(map[string]cacheEntry),
		now:     time.Now,
	}
}

// Key normalizes a product identifier and display name into the cache key.
// Two products that normalize identically legitimately share one result.
func Key(upc, name string) string {
	return strings.ToLower(strings.TrimSpace(upc)) + "|" + strings.ToLower(strings.TrimSpace(name))
}

func (c *Cache) Get(key string) (models.CompResult, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.entries[key]
	if !ok {
		return models.CompResult{}, false
	}
	if c.now().After(entry.expiresAt) {
		delete(c.entries, key)
		return models.CompResult{}, false
	}
	return entry.result, true
}

func (c *Cache) Put(key string, result models.CompResult) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries[key] = cacheEntry{
		result:    result,
		expiresAt: c.now().Add(c.ttl),
	}
}

// Len reports the number of stored entries, including any not yet evicted.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// SetNowFunc overrides the clock. Used in tests.
func (c *Cache) SetNowFunc(now func() time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = now
}
