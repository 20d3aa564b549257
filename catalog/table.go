package catalog

import (
	"context"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
)

// Table represents a queryable table backed by a remote collection.
type Table interface {
	// Name returns the table name. MUST return non-empty string.
	Name() string

	// Comment returns optional table documentation.
	Comment() string

	// ArrowSchema returns the columns the table is guaranteed to expose.
	// Remote log collections may carry more fields than this; the scan
	// decides the final schema of the returned reader.
	ArrowSchema() *arrow.Schema

	// Scan executes a scan operation and returns a RecordReader.
	// Caller MUST call reader.Release() to free memory.
	Scan(ctx context.Context, opts *ScanOptions) (array.RecordReader, error)
}
