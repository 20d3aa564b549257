// Package serialize renders catalog listings as Arrow IPC streams, the
// format Flight SQL clients expect from GetTables, and compresses them for
// transfer or storage.
package serialize

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/ipc"
	"github.com/apache/arrow-go/v18/arrow/memory"

	"github.com/hugr-lab/airport-splunk/catalog"
)

// DefaultTableType is reported for tables that don't declare a type.
const DefaultTableType = "TABLE"

// TypedTable is implemented by tables that report a table type other than
// DefaultTableType.
type TypedTable interface {
	TableType() string
}

// ListingSchema is the Flight SQL GetTables layout.
var ListingSchema = arrow.NewSchema([]arrow.Field{
	{Name: "catalog_name", Type: arrow.BinaryTypes.String, Nullable: true},
	{Name: "db_schema_name", Type: arrow.BinaryTypes.String, Nullable: false},
	{Name: "table_name", Type: arrow.BinaryTypes.String, Nullable: false},
	{Name: "table_type", Type: arrow.BinaryTypes.String, Nullable: false},
}, nil)

// Entry is one row of a listing.
type Entry struct {
	Catalog string
	Schema  string
	Table   string
	Type    string
}

// Listing writes one row per table of schemas as an Arrow IPC stream.
// An empty catalogName is written as null.
func Listing(ctx context.Context, catalogName string, schemas []catalog.Schema, allocator memory.Allocator) ([]byte, error) {
	if allocator == nil {
		allocator = memory.DefaultAllocator
	}

	builder := array.NewRecordBuilder(allocator, ListingSchema)
	defer builder.Release()

	catalogs := builder.Field(0).(*array.StringBuilder)
	schemaNames := builder.Field(1).(*array.StringBuilder)
	tableNames := builder.Field(2).(*array.StringBuilder)
	tableTypes := builder.Field(3).(*array.StringBuilder)

	for _, schema := range schemas {
		tables, err := schema.Tables(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to get tables for schema %s: %w", schema.Name(), err)
		}

		for _, table := range tables {
			if catalogName == "" {
				catalogs.AppendNull()
			} else {
				catalogs.Append(catalogName)
			}
			schemaNames.Append(schema.Name())
			tableNames.Append(table.Name())

			tableType := DefaultTableType
			if typed, ok := table.(TypedTable); ok {
				tableType = typed.TableType()
			}
			tableTypes.Append(tableType)
		}
	}

	record := builder.NewRecord()
	defer record.Release()

	var buf bytes.Buffer
	writer := ipc.NewWriter(&buf, ipc.WithSchema(ListingSchema), ipc.WithAllocator(allocator))
	if err := writer.Write(record); err != nil {
		_ = writer.Close()
		return nil, fmt.Errorf("failed to write IPC record: %w", err)
	}
	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("failed to close IPC writer: %w", err)
	}

	return buf.Bytes(), nil
}

// ReadListing decodes a stream produced by Listing.
func ReadListing(data []byte, allocator memory.Allocator) ([]Entry, error) {
	if allocator == nil {
		allocator = memory.DefaultAllocator
	}

	reader, err := ipc.NewReader(bytes.NewReader(data), ipc.WithSchema(ListingSchema), ipc.WithAllocator(allocator))
	if err != nil {
		return nil, fmt.Errorf("failed to open IPC stream: %w", err)
	}
	defer reader.Release()

	var entries []Entry
	for reader.Next() {
		record := reader.Record()
		catalogs := record.Column(0).(*array.String)
		schemas := record.Column(1).(*array.String)
		tables := record.Column(2).(*array.String)
		types := record.Column(3).(*array.String)

		for i := 0; i < int(record.NumRows()); i++ {
			entry := Entry{
				Schema: schemas.Value(i),
				Table:  tables.Value(i),
				Type:   types.Value(i),
			}
			if catalogs.IsValid(i) {
				entry.Catalog = catalogs.Value(i)
			}
			entries = append(entries, entry)
		}
	}
	if err := reader.Err(); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("failed to read IPC stream: %w", err)
	}
	return entries, nil
}

// Snapshot is Listing followed by ZStandard compression.
func Snapshot(ctx context.Context, catalogName string, schemas []catalog.Schema, allocator memory.Allocator) ([]byte, error) {
	data, err := Listing(ctx, catalogName, schemas, allocator)
	if err != nil {
		return nil, err
	}

	compressor, err := NewCompressor()
	if err != nil {
		return nil, err
	}
	defer compressor.Close()

	return compressor.Compress(data), nil
}

// ReadSnapshot reverses Snapshot.
func ReadSnapshot(data []byte, allocator memory.Allocator) ([]Entry, error) {
	decompressor, err := NewDecompressor()
	if err != nil {
		return nil, err
	}
	defer decompressor.Close()

	raw, err := decompressor.Decompress(data)
	if err != nil {
		return nil, err
	}
	return ReadListing(raw, allocator)
}
