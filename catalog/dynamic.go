package catalog

import (
	"context"
	"errors"

	"github.com/apache/arrow-go/v18/arrow"
)

// Sentinel errors for DDL operations.
var (
	// ErrAlreadyExists is returned when creating an object that already exists.
	ErrAlreadyExists = errors.New("already exists")

	// ErrNotFound is returned when an object doesn't exist.
	ErrNotFound = errors.New("not found")

	// ErrNotWritable is returned when a mutation targets a read-only catalog.
	ErrNotWritable = errors.New("catalog is not writable")
)

// OnConflict specifies behavior when an object already exists.
type OnConflict string

const (
	// OnConflictError returns an error if the object exists.
	OnConflictError OnConflict = "error"

	// OnConflictIgnore silently succeeds if the object exists.
	OnConflictIgnore OnConflict = "ignore"
)

// CreateTableOptions configures table creation behavior.
type CreateTableOptions struct {
	// OnConflict specifies behavior when table already exists.
	// Default is OnConflictError.
	OnConflict OnConflict

	// Comment is optional documentation for the table.
	Comment string

	// PartitionColumns requested by the host. Sources that cannot
	// partition report none back.
	PartitionColumns []string
}

// DropTableOptions configures table deletion behavior.
type DropTableOptions struct {
	// IgnoreNotFound suppresses error if table doesn't exist.
	IgnoreNotFound bool
}

// DynamicSchema extends Schema with table management operations.
type DynamicSchema interface {
	Schema

	// CreateTable creates a new table in the schema.
	// Returns ErrAlreadyExists if table exists and OnConflict is OnConflictError.
	// Returns an error matching ErrNotWritable for read-only catalogs.
	CreateTable(ctx context.Context, name string, schema *arrow.Schema, opts CreateTableOptions) (Table, error)

	// DropTable removes a table from the schema.
	// Returns ErrNotFound if table doesn't exist and IgnoreNotFound is false.
	DropTable(ctx context.Context, name string, opts DropTableOptions) error
}
