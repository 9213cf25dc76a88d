// Package table lays transcribed Exodus results out as columns and writes
// them as Arrow IPC streams or CSV.
package table

import (
	"errors"
	"fmt"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/memory"

	"github.com/robert-malhotra/go-exodus/exodus"
)

var (
	ErrEmpty        = errors.New("no columns")
	ErrNotColumn    = errors.New("array is not one-dimensional")
	ErrLength       = errors.New("column lengths differ")
	ErrDuplicateCol = errors.New("duplicate column name")
)

// Converter turns mappings into Arrow records.
type Converter struct {
	allocator memory.Allocator
}

// NewConverter returns a Converter using the default allocator.
func NewConverter() *Converter {
	return &Converter{allocator: memory.DefaultAllocator}
}

// NewConverterWithAllocator returns a Converter that allocates from mem.
func NewConverterWithAllocator(mem memory.Allocator) *Converter {
	return &Converter{allocator: mem}
}

// FromMappings builds one float64 column per name, taking the mappings in
// order and each mapping in its table order. Every array must be rank 1 and
// all columns must have the same length. The caller releases the record.
func (c *Converter) FromMappings(ms ...*exodus.Mapping) (arrow.Record, error) {
	var (
		fields []arrow.Field
		cols   []*exodus.Array
		rows   = -1
		seen   = make(map[string]bool)
	)
	for _, m := range ms {
		if m == nil {
			continue
		}
		for name, a := range m.All() {
			if seen[name] {
				return nil, fmt.Errorf("%w: %q", ErrDuplicateCol, name)
			}
			seen[name] = true
			if a.Rank() != 1 {
				return nil, fmt.Errorf("%w: %q has shape %v", ErrNotColumn, name, a.Shape)
			}
			if rows >= 0 && a.Len() != rows {
				return nil, fmt.Errorf("%w: %q has %d rows, want %d", ErrLength, name, a.Len(), rows)
			}
			rows = a.Len()
			fields = append(fields, arrow.Field{Name: name, Type: arrow.PrimitiveTypes.Float64})
			cols = append(cols, a)
		}
	}
	if len(cols) == 0 {
		return nil, ErrEmpty
	}

	builder := array.NewRecordBuilder(c.allocator, arrow.NewSchema(fields, nil))
	defer builder.Release()

	for i, a := range cols {
		builder.Field(i).(*array.Float64Builder).AppendValues(a.Data, nil)
	}
	return builder.NewRecord(), nil
}

// FromMappings converts with the default allocator.
func FromMappings(ms ...*exodus.Mapping) (arrow.Record, error) {
	return NewConverter().FromMappings(ms...)
}
