// Package streetcache stores the named roads found for a neighborhood so
// repeated resolutions in the same neighborhood skip the network.
package streetcache

import (
	"context"
	"sync"

	"mxaddress/internal/address/keys"
	"mxaddress/internal/address/models"
)

// Key identifies a neighborhood.
type Key struct {
	State        keys.Key
	Municipality keys.Key
	Neighborhood keys.Key
}

// NewKey canonicalizes the place names into a cache key.
func NewKey(state, municipality, neighborhood string) Key {
	return Key{
		State:        keys.CanonicalState(state),
		Municipality: keys.Normalize(municipality),
		Neighborhood: keys.Normalize(neighborhood),
	}
}

func (k Key) String() string {
	return k.State + "|" + k.Municipality + "|" + k.Neighborhood
}

// MemoryCache keeps entries for the process lifetime. An empty result is
// cached like any other so a neighborhood without roads is not re-queried.
// Concurrent writers for one key are last-writer-wins.
type MemoryCache struct {
	mu      sync.RWMutex
	entries map[Key][]models.StreetSegment
}

func NewMemoryCache() *MemoryCache {
	return &MemoryCache{entries: make(map[Key][]models.StreetSegment)}
}

func (c *MemoryCache) Get(_ context.Context, key Key) ([]models.StreetSegment, bool, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	segments, ok := c.entries[key]
	if !ok {
		return nil, false, nil
	}
	out := make([]models.StreetSegment, len(segments))
	copy(out, segments)
	return out, true, nil
}

func (c *MemoryCache) Set(_ context.Context, key Key, segments []models.StreetSegment) error {
	stored := make([]models.StreetSegment, len(segments))
	copy(stored, segments)

	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = stored
	return nil
}

// Len returns the number of cached neighborhoods.
func (c *MemoryCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}
