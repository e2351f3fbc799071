package catalog

import "github.com/nodeforge-editor/nodeforge/internal/host"

// HandleCache maps stable keys to weak handle references. The host
// owns handle lifetimes; the cache only stores (id, generation) pairs
// and lazily evicts entries whose handle no longer resolves.
//
// Lookups and stores are plain map operations with no critical section
// spanning a host call, which keeps re-entrant discovery-during-
// configuration safe under the single-caller execution model. Growth
// is unbounded by design: the key space is bounded by the host's total
// operation count.
type HandleCache struct {
	registry *host.Registry
	entries  map[string]host.HandleRef
}

// NewHandleCache creates an empty cache resolving against the given
// registry.
func NewHandleCache(registry *host.Registry) *HandleCache {
	return &HandleCache{
		registry: registry,
		entries:  make(map[string]host.HandleRef),
	}
}

// Get returns the live handle for a key. A stored reference that no
// longer resolves is removed before the miss is reported, so dead
// entries never accumulate behind hits.
func (c *HandleCache) Get(key string) *host.OperationHandle {
	ref, ok := c.entries[key]
	if !ok {
		return nil
	}
	h := c.registry.ResolveHandle(ref)
	if h == nil {
		delete(c.entries, key)
		return nil
	}
	return h
}

// Put stores a reference for a key, unconditionally overwriting any
// previous entry. Last writer wins: successive discovery passes may
// legitimately yield different live handles for the same logical
// operation after a catalog refresh.
func (c *HandleCache) Put(key string, ref host.HandleRef) {
	c.entries[key] = ref
}

// Len returns the number of entries currently stored, dead or alive.
func (c *HandleCache) Len() int {
	return len(c.entries)
}
