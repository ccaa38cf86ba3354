package ontology

import (
	"context"
	"fmt"
	"sync/atomic"

	lru "github.com/hashicorp/golang-lru/v2"
	"golang.org/x/sync/singleflight"
)

// CacheStats reports cache effectiveness
type CacheStats struct {
	Items     int
	Hits      uint64
	Misses    uint64
	Evictions uint64
}

// CachedStore memoizes neighborhoods of an immutable backing store.
// Concurrent misses for the same concept share one backend query.
type CachedStore struct {
	backend Store
	lru     *lru.Cache[string, []Triple]
	group   singleflight.Group

	hits      atomic.Uint64
	misses    atomic.Uint64
	evictions atomic.Uint64
}

// NewCachedStore wraps backend with an LRU of size entries
func NewCachedStore(backend Store, size int) (*CachedStore, error) {
	c := &CachedStore{backend: backend}
	cache, err := lru.NewWithEvict[string, []Triple](size, func(string, []Triple) {
		c.evictions.Add(1)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create neighborhood cache: %w", err)
	}
	c.lru = cache
	return c, nil
}

// Neighborhood implements Store. Errors are not cached.
func (c *CachedStore) Neighborhood(ctx context.Context, concept string) ([]Triple, error) {
	if triples, ok := c.lru.Get(concept); ok {
		c.hits.Add(1)
		return cloneTriples(triples), nil
	}
	c.misses.Add(1)

	// The shared query outlives any one caller; each caller still gives up
	// when its own context ends.
	shared := context.WithoutCancel(ctx)
	ch := c.group.DoChan(concept, func() (interface{}, error) {
		triples, err := c.backend.Neighborhood(shared, concept)
		if err != nil {
			return nil, err
		}
		c.lru.Add(concept, triples)
		return triples, nil
	})
	select {
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return cloneTriples(res.Val.([]Triple)), nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// FailureLabels implements Store; the catalog is not cached
func (c *CachedStore) FailureLabels(ctx context.Context) ([]string, error) {
	return c.backend.FailureLabels(ctx)
}

// Purge drops every cached neighborhood
func (c *CachedStore) Purge() {
	c.lru.Purge()
}

// Stats returns a snapshot of cache counters
func (c *CachedStore) Stats() CacheStats {
	return CacheStats{
		Items:     c.lru.Len(),
		Hits:      c.hits.Load(),
		Misses:    c.misses.Load(),
		Evictions: c.evictions.Load(),
	}
}

func cloneTriples(in []Triple) []Triple {
	out := make([]Triple, len(in))
	copy(out, in)
	return out
}
