// Package catalog defines the contracts a host query engine uses to browse and
// mutate the tables exposed by a remote data source.
//
// The host (an Airport Flight server attached by DuckDB) calls these
// interfaces on request goroutines, so implementations MUST be goroutine-safe
// and respect context cancellation where they block.
package catalog

import (
	"context"
)

// Catalog is the top-level metadata container the host attaches.
type Catalog interface {
	// Schemas returns all schemas visible to the requesting identity.
	// The identity travels in the context (see auth.IdentityFromContext).
	// Returns empty slice (not nil) if no schemas are available.
	Schemas(ctx context.Context) ([]Schema, error)

	// Schema returns a specific schema by name.
	// Returns (nil, nil) if the schema doesn't exist (not an error).
	Schema(ctx context.Context, name string) (Schema, error)
}

// NamedCatalog is a Catalog the host can route to by name when several
// catalogs are served side by side.
type NamedCatalog interface {
	Catalog

	// Name returns the configured catalog name. MUST be stable.
	Name() string
}

// Schema is a set of tables visible under one catalog for one identity.
type Schema interface {
	// Name returns the schema name. MUST return non-empty string.
	Name() string

	// Comment returns optional schema documentation.
	Comment() string

	// Tables returns all tables in this schema.
	// Returns empty slice (not nil) if no tables are available.
	Tables(ctx context.Context) ([]Table, error)

	// Table returns a specific table by name.
	// Returns (nil, nil) if the table doesn't exist (not an error).
	Table(ctx context.Context, name string) (Table, error)
}
