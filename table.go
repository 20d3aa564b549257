package splunk

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"

	"github.com/hugr-lab/airport-splunk/catalog"
	"github.com/hugr-lab/airport-splunk/internal/msgpack"
	"github.com/hugr-lab/airport-splunk/internal/recovery"
)

// SPLTableName is the table that is always present in a session. Scanning it
// runs a free-form SPL query instead of reading a single index.
const SPLTableName = "spl"

// Table types reported in listings.
const (
	IndexTableType = "TABLE"
	QueryTableType = "QUERY"
)

// Columns every Splunk event carries.
var eventFields = []arrow.Field{
	{Name: "_time", Type: arrow.FixedWidthTypes.Timestamp_us, Nullable: true},
	{Name: "_raw", Type: arrow.BinaryTypes.String, Nullable: true},
	{Name: "host", Type: arrow.BinaryTypes.String, Nullable: true},
	{Name: "index", Type: arrow.BinaryTypes.String, Nullable: true},
	{Name: "source", Type: arrow.BinaryTypes.String, Nullable: true},
	{Name: "sourcetype", Type: arrow.BinaryTypes.String, Nullable: true},
}

// IndexSchema is the Arrow schema of an index table.
var IndexSchema = arrow.NewSchema(eventFields, nil)

// SPLSchema is the Arrow schema of the spl table.
var SPLSchema = arrow.NewSchema(
	append([]arrow.Field{{Name: "spl", Type: arrow.BinaryTypes.String, Nullable: false}}, eventFields...),
	nil,
)

// ScanSpec is everything needed to build a read path for one table.
// It travels to the scan side as a Flight ticket.
type ScanSpec struct {
	Catalog      string `msgpack:"catalog"`
	Index        string `msgpack:"index"`
	Identity     string `msgpack:"identity"`
	EarliestTime string `msgpack:"earliest"`
	LatestTime   string `msgpack:"latest"`
	Query        string `msgpack:"query,omitempty"`

	config *Config
}

// Config returns the catalog configuration the spec was built from.
// Nil for specs decoded from a ticket.
func (s ScanSpec) Config() *Config {
	return s.config
}

// IsQuery reports whether the spec targets the spl table.
func (s ScanSpec) IsQuery() bool {
	return s.Index == SPLTableName
}

// Ticket encodes the spec. Credentials are never part of a ticket.
func (s ScanSpec) Ticket() ([]byte, error) {
	return msgpack.Encode(s)
}

// DecodeTicket decodes a ticket produced by ScanSpec.Ticket.
func DecodeTicket(ticket []byte) (ScanSpec, error) {
	var spec ScanSpec
	if err := msgpack.Decode(ticket, &spec); err != nil {
		return ScanSpec{}, fmt.Errorf("invalid scan ticket: %w", err)
	}
	if spec.Catalog == "" || spec.Index == "" {
		return ScanSpec{}, fmt.Errorf("invalid scan ticket: catalog and index are required")
	}
	return spec, nil
}

// ScanFunc streams the events selected by spec. It is supplied by the host
// that owns the search transport.
type ScanFunc func(ctx context.Context, spec ScanSpec, opts *catalog.ScanOptions) (array.RecordReader, error)

// Table is a materialized table handle. It is immutable.
type Table struct {
	spec   ScanSpec
	schema *arrow.Schema
	scan   ScanFunc
	logger *slog.Logger
}

func newTable(cfg *Config, identity, name string, scan ScanFunc, logger *slog.Logger) *Table {
	schema := IndexSchema
	if name == SPLTableName {
		schema = SPLSchema
	}
	return &Table{
		spec: ScanSpec{
			Catalog:      cfg.Name,
			Index:        name,
			Identity:     identity,
			EarliestTime: cfg.EarliestTime,
			LatestTime:   cfg.LatestTime,
			config:       cfg,
		},
		schema: schema,
		scan:   scan,
		logger: logger,
	}
}

func (t *Table) Name() string {
	return t.spec.Index
}

func (t *Table) Comment() string {
	if t.spec.IsQuery() {
		return "Free-form SPL search over " + t.spec.Catalog
	}
	return ""
}

// Catalog returns the name of the owning catalog.
func (t *Table) Catalog() string {
	return t.spec.Catalog
}

// Spec returns the table's scan specification.
func (t *Table) Spec() ScanSpec {
	return t.spec
}

func (t *Table) ArrowSchema() *arrow.Schema {
	return t.schema
}

// TableType reports QUERY for the spl table and TABLE for indexes.
func (t *Table) TableType() string {
	if t.spec.IsQuery() {
		return QueryTableType
	}
	return IndexTableType
}

// Scan hands the table's spec, narrowed by opts, to the configured ScanFunc.
func (t *Table) Scan(ctx context.Context, opts *catalog.ScanOptions) (array.RecordReader, error) {
	if t.scan == nil {
		return nil, ErrScanUnavailable
	}
	if opts == nil {
		opts = &catalog.ScanOptions{}
	}

	spec := t.spec
	if spec.IsQuery() {
		if opts.Query == "" {
			return nil, ErrQueryRequired
		}
		spec.Query = opts.Query
	}
	if !opts.Earliest.IsZero() {
		spec.EarliestTime = strconv.FormatInt(opts.Earliest.Unix(), 10)
	}
	if !opts.Latest.IsZero() {
		spec.LatestTime = strconv.FormatInt(opts.Latest.Unix(), 10)
	}

	return recovery.Value(t.logger, "scan "+spec.Index, func() (array.RecordReader, error) {
		return t.scan(ctx, spec, opts)
	})
}

var _ catalog.Table = (*Table)(nil)
