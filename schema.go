package splunk

import (
	"context"
	"fmt"

	"github.com/apache/arrow-go/v18/arrow"

	"github.com/hugr-lab/airport-splunk/catalog"
)

// sessionSchema adapts a Session to the catalog contracts. The schema is
// named after the catalog.
type sessionSchema struct {
	session *Session
}

func (s *sessionSchema) Name() string {
	return s.session.Name()
}

func (s *sessionSchema) Comment() string {
	return "Splunk indexes visible to " + s.session.Identity()
}

func (s *sessionSchema) Tables(ctx context.Context) ([]catalog.Table, error) {
	names := s.session.TableNames()
	tables := make([]catalog.Table, 0, len(names))
	for _, name := range names {
		if t, ok := s.session.LookupTable(name); ok {
			tables = append(tables, t)
		}
	}
	return tables, nil
}

func (s *sessionSchema) Table(ctx context.Context, name string) (catalog.Table, error) {
	t, ok := s.session.LookupTable(name)
	if !ok {
		return nil, nil
	}
	return t, nil
}

// CreateTable prepares the new index and returns a handle for it. The handle
// is not added to the session's registry. The Arrow schema is ignored;
// indexes always expose IndexSchema.
func (s *sessionSchema) CreateTable(ctx context.Context, name string, schema *arrow.Schema, opts catalog.CreateTableOptions) (catalog.Table, error) {
	if existing, ok := s.session.LookupTable(name); ok {
		if opts.OnConflict == catalog.OnConflictIgnore {
			return existing, nil
		}
		return nil, fmt.Errorf("table %s: %w", name, catalog.ErrAlreadyExists)
	}

	if _, err := s.session.CreateNewTable(name, opts.PartitionColumns, StorageStrategy{}); err != nil {
		return nil, err
	}

	p := s.session.plugin
	return newTable(p.config, s.session.identity, name, p.scan, p.logger), nil
}

func (s *sessionSchema) DropTable(ctx context.Context, name string, opts catalog.DropTableOptions) error {
	if name == SPLTableName {
		return ErrSPLTableDrop
	}
	if _, ok := s.session.LookupTable(name); !ok {
		if opts.IgnoreNotFound {
			return nil
		}
		return fmt.Errorf("table %s: %w", name, catalog.ErrNotFound)
	}
	return s.session.DropTable(ctx, name)
}

var _ catalog.DynamicSchema = (*sessionSchema)(nil)
