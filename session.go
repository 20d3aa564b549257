package splunk

import (
	"context"
	"maps"
	"slices"
	"sync"

	"github.com/apache/arrow-go/v18/arrow/memory"

	"github.com/hugr-lab/airport-splunk/cache"
	"github.com/hugr-lab/airport-splunk/catalog"
	"github.com/hugr-lab/airport-splunk/directory"
	"github.com/hugr-lab/airport-splunk/internal/recovery"
	"github.com/hugr-lab/airport-splunk/internal/serialize"
)

// Session is the view of one catalog for one identity. Its table registry is
// fixed when the session is opened; later cache changes do not affect it.
type Session struct {
	plugin   *Plugin
	identity string

	mu     sync.Mutex
	tables map[string]*Table // nil value: known, not yet materialized
}

func newSession(p *Plugin, identity string, indexes cache.IndexSet) *Session {
	tables := make(map[string]*Table, len(indexes)+1)
	tables[SPLTableName] = nil
	for name := range indexes {
		tables[name] = nil
	}

	p.logger.Debug("Session opened", "identity", identity, "tables", len(tables))
	return &Session{
		plugin:   p,
		identity: identity,
		tables:   tables,
	}
}

// Name returns the catalog name.
func (s *Session) Name() string {
	return s.plugin.config.Name
}

// Identity returns the identity the session was opened for.
func (s *Session) Identity() string {
	return s.identity
}

// TypeName returns "splunk".
func (s *Session) TypeName() string {
	return TypeName
}

// ShowInInformationSchema is always true.
func (s *Session) ShowInInformationSchema() bool {
	return true
}

// IsMutable reports whether the catalog is configured as writable.
func (s *Session) IsMutable() bool {
	return s.plugin.config.IsWritable()
}

// LookupTable returns the handle of a registered table, building it on first
// use. Names that were not registered at open time are reported absent.
func (s *Session) LookupTable(name string) (*Table, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	t, ok := s.tables[name]
	if !ok {
		return nil, false
	}
	if t == nil {
		t = newTable(s.plugin.config, s.identity, name, s.plugin.scan, s.plugin.logger)
		s.tables[name] = t
	}
	return t, true
}

// TableNames returns the registered table names, sorted.
func (s *Session) TableNames() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Sorted(maps.Keys(s.tables))
}

// CreateNewTable prepares a write into a new index. The identity's cached
// listing is invalidated so the next session sees the index; this session's
// registry is left as is. Partition columns are ignored.
func (s *Session) CreateNewTable(name string, partitionColumns []string, strategy StorageStrategy) (*WriterFactory, error) {
	if !s.IsMutable() {
		return nil, &WriteUnsupportedError{Catalog: s.Name()}
	}

	s.plugin.invalidate(s.identity)
	s.plugin.logger.Debug("Table creation prepared",
		"identity", s.identity,
		"index", name,
		"partition_columns", len(partitionColumns),
		"temporary", strategy.Temporary,
	)
	return newWriterFactory(name, s.plugin.config, WriteCreate, s.plugin.newWriter, s.plugin.logger), nil
}

// ModifyTable prepares an append into an existing index.
func (s *Session) ModifyTable(name string) *WriterFactory {
	return newWriterFactory(name, s.plugin.config, WriteInsert, s.plugin.newWriter, s.plugin.logger)
}

// DropTable asks Splunk to delete an index over a fresh connection. Splunk
// does not confirm deletes, so with caching enabled the identity's entry is
// replaced by a listing taken right after the request. Apart from names
// that cannot denote an index, only a failed connection is reported.
func (s *Session) DropTable(ctx context.Context, name string) error {
	p := s.plugin

	if name == SPLTableName {
		return ErrSPLTableDrop
	}
	if err := directory.ValidateIndexName(name); err != nil {
		return err
	}

	conn, err := p.connect(ctx, s.identity)
	if err != nil {
		return err
	}

	if err := recovery.Do(p.logger, "delete index", func() error {
		conn.DeleteIndex(ctx, name)
		return nil
	}); err != nil {
		p.logger.Warn("Index delete failed", "identity", s.identity, "index", name, "error", err)
	}

	if p.cache == nil {
		return nil
	}

	key := p.key(s.identity)
	p.cache.Invalidate(key)

	indexes, err := p.list(ctx, conn)
	if err != nil {
		p.logger.Warn("Failed to refresh index cache after drop",
			"identity", s.identity,
			"index", name,
			"error", err,
		)
		return nil
	}
	p.cache.Put(key, indexes)

	if indexes.Has(name) {
		p.logger.Info("Dropped index is still listed", "identity", s.identity, "index", name)
	}
	return nil
}

// Schema exposes the session as a catalog.DynamicSchema.
func (s *Session) Schema() catalog.DynamicSchema {
	return &sessionSchema{session: s}
}

// Snapshot renders the session's tables as a zstd-compressed Arrow IPC
// listing.
func (s *Session) Snapshot(ctx context.Context, allocator memory.Allocator) ([]byte, error) {
	return serialize.Snapshot(ctx, s.Name(), []catalog.Schema{s.Schema()}, allocator)
}
