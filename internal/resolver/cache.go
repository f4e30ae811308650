// internal/resolver/cache.go
package resolver

import "sync/atomic"

// NameCache remembers the first printer name resolved in this process.
// It is written at most once; later stores are ignored and every reader
// sees the first value.
type NameCache struct {
	name atomic.Pointer[string]
}

// NewNameCache creates an empty cache
func NewNameCache() *NameCache {
	return &NameCache{}
}

// Load returns the cached name, if any
func (c *NameCache) Load() (string, bool) {
	p := c.name.Load()
	if p == nil {
		return "", false
	}
	return *p, true
}

// Store records name unless a value is already present and returns the
// value that is in effect afterwards.
func (c *NameCache) Store(name string) string {
	if c.name.CompareAndSwap(nil, &name) {
		return name
	}
	return *c.name.Load()
}
