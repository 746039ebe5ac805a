package matches

import "sync"

// Library holds the current catalog and lets a reload swap it atomically.
type Library struct {
	mu      sync.RWMutex
	catalog *Catalog
}

// NewLibrary creates a library serving catalog (nil is an empty catalog).
func NewLibrary(catalog *Catalog) *Library {
	if catalog == nil {
		catalog = NewCatalog(nil)
	}
	return &Library{catalog: catalog}
}

// Current returns the catalog in use.
func (l *Library) Current() *Catalog {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.catalog
}

// Replace swaps in a freshly loaded catalog. Empty catalogs are ignored so a
// failed reload keeps the last good data.
func (l *Library) Replace(catalog *Catalog) bool {
	if catalog.Len() == 0 {
		return false
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	l.catalog = catalog
	return true
}
