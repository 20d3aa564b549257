package cache

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2024, 1, 15, 10, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

func TestKeyString(t *testing.T) {
	key := Key{Identity: "alice", Catalog: "splunk"}
	if got := key.String(); got != "alice-splunk" {
		t.Errorf("String() = %q, want %q", got, "alice-splunk")
	}
}

func TestGetPut(t *testing.T) {
	c := New(Config{Expiration: time.Minute, MaxEntries: 10})
	key := Key{Identity: "alice", Catalog: "splunk"}

	if _, ok := c.Get(key); ok {
		t.Fatal("Expected miss on empty cache")
	}

	c.Put(key, NewIndexSet("main", "_internal"))

	got, ok := c.Get(key)
	if !ok {
		t.Fatal("Expected hit after Put")
	}
	if diff := cmp.Diff([]string{"_internal", "main"}, got.Names()); diff != "" {
		t.Errorf("Get() mismatch (-want +got):\n%s", diff)
	}
}

func TestIdentitiesAreIsolated(t *testing.T) {
	c := New(Config{Expiration: time.Minute, MaxEntries: 10})

	c.Put(Key{Identity: "alice", Catalog: "splunk"}, NewIndexSet("main"))

	if _, ok := c.Get(Key{Identity: "bob", Catalog: "splunk"}); ok {
		t.Error("Listing of alice must not be visible to bob")
	}
	if _, ok := c.Get(Key{Identity: "alice", Catalog: "other"}); ok {
		t.Error("Listing of one catalog must not be visible to another")
	}
}

func TestStoredSetIsCopied(t *testing.T) {
	c := New(Config{Expiration: time.Minute, MaxEntries: 10})
	key := Key{Identity: "alice", Catalog: "splunk"}

	indexes := NewIndexSet("main")
	c.Put(key, indexes)
	indexes["injected"] = struct{}{}

	got, _ := c.Get(key)
	got["also_injected"] = struct{}{}

	again, _ := c.Get(key)
	if diff := cmp.Diff([]string{"main"}, again.Names()); diff != "" {
		t.Errorf("Cached set was mutated through a caller's copy (-want +got):\n%s", diff)
	}
}

func TestExpireAfterAccess(t *testing.T) {
	clock := newFakeClock()
	c := New(Config{Expiration: 10 * time.Minute, MaxEntries: 10, Now: clock.Now})
	key := Key{Identity: "alice", Catalog: "splunk"}

	c.Put(key, NewIndexSet("main"))

	// Each read restarts the window, so the entry outlives its first deadline.
	for i := 0; i < 3; i++ {
		clock.Advance(9 * time.Minute)
		if _, ok := c.Get(key); !ok {
			t.Fatalf("Read %d: expected hit within access window", i)
		}
	}

	clock.Advance(10 * time.Minute)
	if _, ok := c.Get(key); ok {
		t.Fatal("Expected miss after a full window without access")
	}
	if c.Len() != 0 {
		t.Errorf("Expired entry should be removed, Len() = %d", c.Len())
	}
}

func TestZeroExpirationNeverHits(t *testing.T) {
	c := New(Config{Expiration: 0, MaxEntries: 10})
	key := Key{Identity: "alice", Catalog: "splunk"}

	c.Put(key, NewIndexSet("main"))
	if _, ok := c.Get(key); ok {
		t.Error("Expected zero expiration to expire entries immediately")
	}
}

func TestNonPositiveMaxEntriesRetainsNothing(t *testing.T) {
	for _, size := range []int{0, -1} {
		t.Run(fmt.Sprintf("size=%d", size), func(t *testing.T) {
			c := New(Config{Expiration: time.Minute, MaxEntries: size})
			key := Key{Identity: "alice", Catalog: "splunk"}

			c.Put(key, NewIndexSet("main"))
			if _, ok := c.Get(key); ok {
				t.Error("Expected miss")
			}
			c.Invalidate(key)
			c.InvalidateCatalog("splunk")
			if c.Len() != 0 {
				t.Errorf("Len() = %d, want 0", c.Len())
			}
		})
	}
}

func TestEvictsLeastRecentlyAccessed(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := New(Config{Expiration: time.Hour, MaxEntries: 2, Name: "test", Registerer: reg})

	alice := Key{Identity: "alice", Catalog: "splunk"}
	bob := Key{Identity: "bob", Catalog: "splunk"}
	carol := Key{Identity: "carol", Catalog: "splunk"}

	c.Put(alice, NewIndexSet("a"))
	c.Put(bob, NewIndexSet("b"))

	// Touch alice so bob becomes the eviction candidate.
	if _, ok := c.Get(alice); !ok {
		t.Fatal("Expected hit for alice")
	}
	c.Put(carol, NewIndexSet("c"))

	if _, ok := c.Get(bob); ok {
		t.Error("Expected bob to be evicted")
	}
	if _, ok := c.Get(alice); !ok {
		t.Error("Expected alice to survive eviction")
	}
	if _, ok := c.Get(carol); !ok {
		t.Error("Expected carol to be present")
	}
	if got := testutil.ToFloat64(c.metrics.evictions); got != 1 {
		t.Errorf("evictions = %v, want 1", got)
	}
}

func TestInvalidate(t *testing.T) {
	c := New(Config{Expiration: time.Minute, MaxEntries: 10})
	key := Key{Identity: "alice", Catalog: "splunk"}

	c.Put(key, NewIndexSet("main"))
	c.Invalidate(key)

	if _, ok := c.Get(key); ok {
		t.Error("Expected miss after Invalidate")
	}

	// Invalidating an absent key is a no-op.
	c.Invalidate(Key{Identity: "nobody", Catalog: "splunk"})
}

func TestInvalidateCatalog(t *testing.T) {
	c := New(Config{Expiration: time.Minute, MaxEntries: 10})

	c.Put(Key{Identity: "alice", Catalog: "splunk"}, NewIndexSet("a"))
	c.Put(Key{Identity: "bob", Catalog: "splunk"}, NewIndexSet("b"))
	c.Put(Key{Identity: "alice", Catalog: "audit"}, NewIndexSet("c"))

	c.InvalidateCatalog("splunk")

	if c.Len() != 1 {
		t.Fatalf("Len() = %d, want 1", c.Len())
	}
	if _, ok := c.Get(Key{Identity: "alice", Catalog: "audit"}); !ok {
		t.Error("Listing of another catalog should survive")
	}
}

func TestMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := New(Config{Expiration: time.Minute, MaxEntries: 10, Name: "metrics", Registerer: reg})
	key := Key{Identity: "alice", Catalog: "splunk"}

	c.Get(key)
	c.Put(key, NewIndexSet("main"))
	c.Get(key)

	if got := testutil.ToFloat64(c.metrics.requests); got != 2 {
		t.Errorf("requests = %v, want 2", got)
	}
	if got := testutil.ToFloat64(c.metrics.hits); got != 1 {
		t.Errorf("hits = %v, want 1", got)
	}
	if got := testutil.ToFloat64(c.metrics.entries); got != 1 {
		t.Errorf("entries = %v, want 1", got)
	}

	// Two caches can share a registerer when their names differ.
	New(Config{Expiration: time.Minute, MaxEntries: 10, Name: "other", Registerer: reg})
}

func TestMetricsReregisteredName(t *testing.T) {
	reg := prometheus.NewRegistry()
	cfg := Config{Expiration: time.Minute, MaxEntries: 10, Name: "prod", Registerer: reg}
	key := Key{Identity: "alice", Catalog: "prod"}

	first := New(cfg)
	first.Get(key)

	second := New(cfg)
	second.Get(key)

	if second.metrics.requests != first.metrics.requests {
		t.Error("A cache rebuilt under the same name must reuse the registered counter")
	}
	if got := testutil.ToFloat64(second.metrics.requests); got != 2 {
		t.Errorf("requests = %v, want 2", got)
	}
	if got, err := testutil.GatherAndCount(reg, "airport_splunk_index_cache_requests_total"); err != nil || got != 1 {
		t.Errorf("registered request series = %d (%v), want 1", got, err)
	}
}

func TestConcurrentAccess(t *testing.T) {
	c := New(Config{Expiration: time.Minute, MaxEntries: 8})

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			key := Key{Identity: fmt.Sprintf("user%d", i%10), Catalog: "splunk"}
			c.Put(key, NewIndexSet("main", fmt.Sprintf("idx%d", i)))
			c.Get(key)
			if i%3 == 0 {
				c.Invalidate(key)
			}
		}(i)
	}
	wg.Wait()

	if c.Len() > 8 {
		t.Errorf("Len() = %d exceeds MaxEntries", c.Len())
	}
}
