package identity

import "sync"

// Entry is one cached resolution. Found=false records a confirmed miss:
// resolution was attempted, failed, and must not be retried.
type Entry struct {
	URL   string `json:"badge_url,omitempty"`
	Found bool   `json:"found"`
}

// ResolutionCache maps canonical names to resolution results.
// Entries are write-once and never evicted; the cache lives as long as its resolver.
type ResolutionCache struct {
	mu      sync.RWMutex
	entries map[string]Entry
}

// NewResolutionCache creates an empty cache.
func NewResolutionCache() *ResolutionCache {
	return &ResolutionCache{entries: make(map[string]Entry)}
}

// Get returns the entry for name and whether one exists.
func (c *ResolutionCache) Get(name string) (Entry, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	e, ok := c.entries[name]
	return e, ok
}

// Store records e for name unless an entry already exists.
// It returns the entry now in the cache and whether e was the one written.
func (c *ResolutionCache) Store(name string, e Entry) (Entry, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if existing, ok := c.entries[name]; ok {
		return existing, false
	}
	c.entries[name] = e
	return e, true
}

// Len returns the number of cached names.
func (c *ResolutionCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}
