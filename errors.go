package splunk

import (
	"errors"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/hugr-lab/airport-splunk/catalog"
)

// Standard errors returned by the splunk package.
var (
	// ErrNilPlugin is returned when registering a nil plugin.
	ErrNilPlugin = errors.New("plugin cannot be nil")

	// ErrCatalogNotFound is returned when a named catalog is not registered.
	ErrCatalogNotFound = errors.New("catalog not found")

	// ErrScanUnavailable is returned by Table.Scan when no scan function
	// was configured.
	ErrScanUnavailable = errors.New("scan is not configured")

	// ErrQueryRequired is returned when the spl table is scanned without a query.
	ErrQueryRequired = errors.New("the spl table requires a query")

	// ErrSPLTableDrop is returned when dropping the spl table.
	ErrSPLTableDrop = errors.New("the spl table cannot be dropped")
)

// ConnectionError reports that the remote directory could not be reached or
// rejected the credentials while opening a catalog.
type ConnectionError struct {
	Catalog string
	Err     error
}

func (e *ConnectionError) Error() string {
	return "unable to connect to Splunk: " + e.Catalog + " " + e.Err.Error()
}

func (e *ConnectionError) Unwrap() error {
	return e.Err
}

// GRPCStatus maps the error to codes.Unavailable.
func (e *ConnectionError) GRPCStatus() *status.Status {
	return status.New(codes.Unavailable, e.Error())
}

// WriteUnsupportedError reports a table creation on a read-only catalog.
type WriteUnsupportedError struct {
	Catalog string
}

func (e *WriteUnsupportedError) Error() string {
	return e.Catalog + " is not writable"
}

// Is matches catalog.ErrNotWritable.
func (e *WriteUnsupportedError) Is(target error) bool {
	return target == catalog.ErrNotWritable
}

// GRPCStatus maps the error to codes.FailedPrecondition.
func (e *WriteUnsupportedError) GRPCStatus() *status.Status {
	return status.New(codes.FailedPrecondition, e.Error())
}

// ErrDuplicateCatalog is returned when two plugins share a catalog name.
type ErrDuplicateCatalog struct {
	Name string
}

func (e ErrDuplicateCatalog) Error() string {
	return "duplicate catalog name: " + e.Name
}
