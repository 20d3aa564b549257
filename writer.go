package splunk

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/apache/arrow-go/v18/arrow"

	"github.com/hugr-lab/airport-splunk/internal/recovery"
)

// Operator is the upstream producer of the rows a Writer consumes.
type Operator interface {
	Schema() *arrow.Schema
}

// WriteMode distinguishes writes into a new table from appends.
type WriteMode int

const (
	WriteCreate WriteMode = iota
	WriteInsert
)

func (m WriteMode) String() string {
	switch m {
	case WriteCreate:
		return "create"
	case WriteInsert:
		return "insert"
	default:
		return fmt.Sprintf("WriteMode(%d)", int(m))
	}
}

// StorageStrategy is the host's hint on how a created table is stored.
// Splunk indexes are always persistent, so Temporary is only recorded.
type StorageStrategy struct {
	Temporary bool
}

// Writer consumes rows from an Operator into one index.
type Writer interface {
	Child() Operator
	Target() string
	Mode() WriteMode
}

// WriterConstructor builds the Writer for a write into tables.
// tables always holds exactly one name.
type WriterConstructor func(child Operator, tables []string, cfg *Config, mode WriteMode) (Writer, error)

// IndexWriter is the default Writer: a descriptor binding a child operator
// to the target index.
type IndexWriter struct {
	child  Operator
	index  string
	config *Config
	mode   WriteMode
}

// NewIndexWriter is the default WriterConstructor.
func NewIndexWriter(child Operator, tables []string, cfg *Config, mode WriteMode) (Writer, error) {
	if child == nil {
		return nil, errors.New("writer requires a child operator")
	}
	if len(tables) != 1 {
		return nil, fmt.Errorf("writer requires exactly one target table, got %d", len(tables))
	}
	return &IndexWriter{
		child:  child,
		index:  tables[0],
		config: cfg,
		mode:   mode,
	}, nil
}

func (w *IndexWriter) Child() Operator { return w.child }
func (w *IndexWriter) Target() string  { return w.index }
func (w *IndexWriter) Mode() WriteMode { return w.mode }
func (w *IndexWriter) Config() *Config { return w.config }

// WriterFactory defers writer construction until the host has planned the
// operator that produces the rows.
type WriterFactory struct {
	Tables []string
	Config *Config
	Mode   WriteMode

	construct WriterConstructor
	logger    *slog.Logger
}

func newWriterFactory(name string, cfg *Config, mode WriteMode, construct WriterConstructor, logger *slog.Logger) *WriterFactory {
	if construct == nil {
		construct = NewIndexWriter
	}
	return &WriterFactory{
		Tables:    []string{name},
		Config:    cfg,
		Mode:      mode,
		construct: construct,
		logger:    logger,
	}
}

// NewWriter builds a Writer fed by child.
func (f *WriterFactory) NewWriter(child Operator) (Writer, error) {
	return recovery.Value(f.logger, "writer "+f.Mode.String(), func() (Writer, error) {
		return f.construct(child, f.Tables, f.Config, f.Mode)
	})
}

// PartitionColumns is always empty; indexes cannot be partitioned.
func (f *WriterFactory) PartitionColumns() []string {
	return []string{}
}
