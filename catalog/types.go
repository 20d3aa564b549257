package catalog

import (
	"time"
)

// ScanOptions provides options for table scans.
type ScanOptions struct {
	// Columns to return. If nil/empty, return all columns.
	Columns []string

	// Limit is maximum rows to return.
	// If 0 or negative, no limit.
	Limit int64

	// BatchSize is hint for RecordReader batch size.
	// Implementations MAY ignore this hint.
	BatchSize int

	// Query is a free-form query in the remote system's language.
	// Only meaningful for tables that accept ad-hoc queries.
	Query string

	// Earliest and Latest bound the event time range of the scan.
	// Zero values mean the catalog's configured defaults.
	Earliest time.Time
	Latest   time.Time
}
