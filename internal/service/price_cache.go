package service

import (
	"sync"
	"time"
)

// PriceCache is an in-memory quote cache shared by the price service.
// Entries past their TTL are reported as stale rather than evicted, so
// callers can fall back to the last known quote when the market data
// provider is unreachable.
type PriceCache struct {
	mu      sync.Mutex
	ttl     time.Duration
	entries map[string]cacheEntry
}

type cacheEntry struct {
	price     float64
	fetchedAt time.Time
}

// NewPriceCache creates a PriceCache whose entries are considered fresh
// for the given TTL.
func NewPriceCache(ttl time.Duration) *PriceCache {
	return &PriceCache{
		ttl:     ttl,
		entries: make(map[string]cacheEntry),
	}
}

// Get returns the cached price for key, whether it is still fresh, and
// whether an entry exists at all.
func (c *PriceCache) Get(key string) (price float64, fresh bool, ok bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.entries[key]
	if !ok {
		return 0, false, false
	}
	return entry.price, time.Since(entry.fetchedAt) < c.ttl, true
}

// Set stores a freshly fetched price for key.
func (c *PriceCache) Set(key string, price float64) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries[key] = cacheEntry{price: price, fetchedAt: time.Now()}
}
