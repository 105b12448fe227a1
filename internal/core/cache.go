package core

import "sync"

// DetailCache is the read-through cache of product details keyed by ASIN.
// Entries are stored and returned as deep copies.
type DetailCache struct {
	mu      sync.RWMutex
	entries map[string]ProductDetails
}

// NewDetailCache returns an empty cache.
func NewDetailCache() *DetailCache {
	return &DetailCache{entries: make(map[string]ProductDetails)}
}

// Get returns a copy of the entry for asin.
func (c *DetailCache) Get(asin string) (ProductDetails, bool) {
	c.mu.RLock()
	d, ok := c.entries[asin]
	c.mu.RUnlock()
	if !ok {
		return ProductDetails{}, false
	}
	return d.Clone(), true
}

// Put stores a copy of d under asin.
func (c *DetailCache) Put(asin string, d ProductDetails) {
	d = d.Clone()
	c.mu.Lock()
	c.entries[asin] = d
	c.mu.Unlock()
}

// Delete drops the entry for asin.
func (c *DetailCache) Delete(asin string) {
	c.mu.Lock()
	delete(c.entries, asin)
	c.mu.Unlock()
}

// Len returns the number of cached ASINs.
func (c *DetailCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}
