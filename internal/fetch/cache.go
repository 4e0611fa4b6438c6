package fetch

import (
	"sync"
	"time"

	"github.com/leadlens/leadlens/internal/assess"
)

// Cache is a time-bounded store of normalized documents keyed by fetch mode
// plus lower-cased normalized URL, so quick and full retrievals never share
// an entry. Entries are never mutated after insertion; a re-fetch after
// expiry replaces the entry wholesale. Concurrent writers racing to populate
// the same cold key are harmless: last writer wins and both values represent
// the same content.
type Cache struct {
	mu      sync.RWMutex
	ttl     time.Duration
	clock   assess.Clock
	entries map[string]cacheEntry
}

type cacheEntry struct {
	doc       assess.Document
	expiresAt time.Time
}

// NewCache builds a cache with the given TTL window. A zero or negative TTL
// disables caching entirely.
func NewCache(ttl time.Duration, clock assess.Clock) *Cache {
	return &Cache{
		ttl:     ttl,
		clock:   clock,
		entries: make(map[string]cacheEntry),
	}
}

// Get returns the cached document for key if present and unexpired.
func (c *Cache) Get(key string) (assess.Document, bool) {
	if c == nil || c.ttl <= 0 {
		return assess.Document{}, false
	}
	c.mu.RLock()
	entry, ok := c.entries[key]
	c.mu.RUnlock()
	if !ok || c.clock.Now().After(entry.expiresAt) {
		return assess.Document{}, false
	}
	return entry.doc, true
}

// Put stores doc under key for one TTL window.
func (c *Cache) Put(key string, doc assess.Document) {
	if c == nil || c.ttl <= 0 {
		return
	}
	c.mu.Lock()
	c.entries[key] = cacheEntry{
		doc:       doc,
		expiresAt: c.clock.Now().Add(c.ttl),
	}
	c.mu.Unlock()
}
