package directory

import (
	"context"
	"sync"

	"github.com/hugr-lab/airport-splunk/cache"
)

// Fake is an in-memory directory. It records every call so tests can
// assert how often the remote side was consulted.
type Fake struct {
	mu           sync.Mutex
	indexes      cache.IndexSet
	connectErr   error
	listErr      error
	deleteEffect bool

	connects []string
	lists    int
	deletes  []string
}

// NewFake returns a directory holding names. Deletes take effect.
func NewFake(names ...string) *Fake {
	return &Fake{
		indexes:      cache.NewIndexSet(names...),
		deleteEffect: true,
	}
}

// SetConnectError makes every subsequent Connect fail with err (nil clears).
func (f *Fake) SetConnectError(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.connectErr = err
}

// SetListError makes every subsequent ListIndexes fail with err (nil clears).
func (f *Fake) SetListError(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.listErr = err
}

// SetDeleteEffect controls whether DeleteIndex removes the index. A remote
// system that silently ignores deletes is modelled with false.
func (f *Fake) SetDeleteEffect(effective bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deleteEffect = effective
}

// Add creates indexes behind the back of any cached listing.
func (f *Fake) Add(names ...string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, name := range names {
		f.indexes[name] = struct{}{}
	}
}

// Indexes returns the current remote state.
func (f *Fake) Indexes() cache.IndexSet {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.indexes.Clone()
}

// Connects returns the identities of all Connect calls, in order.
func (f *Fake) Connects() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.connects...)
}

// Lists returns how many times ListIndexes was called.
func (f *Fake) Lists() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.lists
}

// Deletes returns the names passed to DeleteIndex, in order.
func (f *Fake) Deletes() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.deletes...)
}

// Connect implements Connector.
func (f *Fake) Connect(ctx context.Context, identity string) (Conn, error) {
	f.mu.Lock()
	f.connects = append(f.connects, identity)
	err := f.connectErr
	f.mu.Unlock()

	if err != nil {
		return nil, err
	}
	return fakeConn{f: f}, nil
}

type fakeConn struct {
	f *Fake
}

func (c fakeConn) ListIndexes(ctx context.Context) (cache.IndexSet, error) {
	c.f.mu.Lock()
	defer c.f.mu.Unlock()

	c.f.lists++
	if c.f.listErr != nil {
		return nil, c.f.listErr
	}
	return c.f.indexes.Clone(), nil
}

func (c fakeConn) DeleteIndex(ctx context.Context, name string) {
	c.f.mu.Lock()
	defer c.f.mu.Unlock()

	c.f.deletes = append(c.f.deletes, name)
	if c.f.deleteEffect {
		delete(c.f.indexes, name)
	}
}
