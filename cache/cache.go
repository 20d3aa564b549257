// Package cache keeps the index listings discovered for each requesting
// identity so that opening a catalog does not hit the remote directory every
// time.
//
// Entries expire after a period without access and the least recently
// accessed entries are evicted once the configured size is exceeded. An
// expired or evicted entry is indistinguishable from one that was never
// stored.
package cache

import (
	"sync"
	"time"

	"github.com/hashicorp/golang-lru/v2/simplelru"
	"github.com/prometheus/client_golang/prometheus"
)

// Key identifies one cached listing: who asked and for which catalog.
type Key struct {
	Identity string
	Catalog  string
}

// String renders the key as "identity-catalog".
func (k Key) String() string {
	return k.Identity + "-" + k.Catalog
}

// Config contains settings for an IndexCache.
type Config struct {
	// Expiration is how long an entry survives without being read.
	// Zero makes every entry expire immediately.
	Expiration time.Duration

	// MaxEntries bounds the number of cached listings.
	// If 0 or negative, nothing is retained.
	MaxEntries int

	// Name labels the cache metrics. OPTIONAL.
	Name string

	// Registerer receives the cache metrics.
	// OPTIONAL: If nil, metrics are created but not registered.
	Registerer prometheus.Registerer

	// Now returns the current time. OPTIONAL: Uses time.Now if nil.
	Now func() time.Time
}

type entry struct {
	indexes  IndexSet
	deadline time.Time
}

// IndexCache is an access-expiring, size-bounded map from Key to IndexSet.
// It is safe for concurrent use.
type IndexCache struct {
	mu  sync.Mutex
	lru *simplelru.LRU[Key, *entry] // nil when MaxEntries <= 0

	ttl     time.Duration
	now     func() time.Time
	metrics *metrics
}

// New creates an IndexCache from cfg.
func New(cfg Config) *IndexCache {
	now := cfg.Now
	if now == nil {
		now = time.Now
	}

	c := &IndexCache{
		ttl:     cfg.Expiration,
		now:     now,
		metrics: newMetrics(cfg.Name, cfg.Registerer),
	}
	if cfg.MaxEntries > 0 {
		// NewLRU only fails for non-positive sizes.
		c.lru, _ = simplelru.NewLRU[Key, *entry](cfg.MaxEntries, nil)
	}
	return c
}

// Get returns a copy of the listing stored for key.
// A hit restarts the entry's expiration window.
func (c *IndexCache) Get(key Key) (IndexSet, bool) {
	c.metrics.requests.Inc()

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.lru == nil {
		return nil, false
	}
	e, ok := c.lru.Get(key)
	if !ok {
		return nil, false
	}

	now := c.now()
	if !now.Before(e.deadline) {
		c.lru.Remove(key)
		c.metrics.entries.Set(float64(c.lru.Len()))
		return nil, false
	}
	e.deadline = now.Add(c.ttl)

	c.metrics.hits.Inc()
	return e.indexes.Clone(), true
}

// Put stores a copy of indexes under key, replacing any previous listing.
func (c *IndexCache) Put(key Key, indexes IndexSet) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.lru == nil {
		return
	}
	evicted := c.lru.Add(key, &entry{
		indexes:  indexes.Clone(),
		deadline: c.now().Add(c.ttl),
	})
	if evicted {
		c.metrics.evictions.Inc()
	}
	c.metrics.entries.Set(float64(c.lru.Len()))
}

// Invalidate drops the listing stored for key, if any.
func (c *IndexCache) Invalidate(key Key) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.lru == nil {
		return
	}
	c.lru.Remove(key)
	c.metrics.entries.Set(float64(c.lru.Len()))
}

// InvalidateCatalog drops the listings of every identity for catalog.
func (c *IndexCache) InvalidateCatalog(catalog string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.lru == nil {
		return
	}
	for _, key := range c.lru.Keys() {
		if key.Catalog == catalog {
			c.lru.Remove(key)
		}
	}
	c.metrics.entries.Set(float64(c.lru.Len()))
}

// Len returns the number of stored listings, expired ones included until
// they are next accessed.
func (c *IndexCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.lru == nil {
		return 0
	}
	return c.lru.Len()
}
