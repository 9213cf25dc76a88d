// Package cdf parses the header of classic netCDF files (CDF-1, CDF-2, CDF-5).
//
// Only the header is decoded: dimensions, attributes and variable
// descriptors. Variable data is left to the container reader; the header is
// what carries the dimension table (num_nodes, num_nod_var, len_name,
// time_step, ...) that a generic variable API does not expose.
//
// # Layout
//
//	header    = magic numrecs dim_list gatt_list var_list
//	magic     = 'C' 'D' 'F' version
//	dim_list  = ABSENT | NC_DIMENSION nelems [dim ...]
//	dim       = name dim_length
//	att       = name nc_type nelems [values ...]
//	var       = name nelems [dimid ...] vatt_list nc_type vsize begin
//
// All integers are big-endian. Names and attribute values are padded to a
// 4-byte boundary. begin is 4 bytes in CDF-1 and 8 bytes otherwise; counts
// and dimension ids widen to 8 bytes in CDF-5.
package cdf

import (
	"errors"
	"fmt"
	"io"

	binpkg "github.com/robert-malhotra/go-exodus/internal/binary"
	"github.com/robert-malhotra/go-exodus/internal/format"
)

// List tags.
const (
	tagAbsent    = 0x00
	tagDimension = 0x0A
	tagVariable  = 0x0B
	tagAttribute = 0x0C
)

// maxListLen bounds list lengths read from untrusted headers.
const maxListLen = 1 << 20

// Errors
var (
	ErrNotClassic    = errors.New("not a classic netCDF file")
	ErrInvalidHeader = errors.New("invalid netCDF header")
)

// Type is a netCDF external data type.
type Type uint32

const (
	Byte   Type = 1
	Char   Type = 2
	Short  Type = 3
	Int    Type = 4
	Float  Type = 5
	Double Type = 6
	UByte  Type = 7
	UShort Type = 8
	UInt   Type = 9
	Int64  Type = 10
	UInt64 Type = 11
)

// Size returns the width in bytes of one element, or 0 for unknown types.
func (t Type) Size() int {
	switch t {
	case Byte, Char, UByte:
		return 1
	case Short, UShort:
		return 2
	case Int, Float, UInt:
		return 4
	case Double, Int64, UInt64:
		return 8
	default:
		return 0
	}
}

// String returns the CDL name of the type.
func (t Type) String() string {
	switch t {
	case Byte:
		return "byte"
	case Char:
		return "char"
	case Short:
		return "short"
	case Int:
		return "int"
	case Float:
		return "float"
	case Double:
		return "double"
	case UByte:
		return "ubyte"
	case UShort:
		return "ushort"
	case UInt:
		return "uint"
	case Int64:
		return "int64"
	case UInt64:
		return "uint64"
	default:
		return fmt.Sprintf("type(%d)", uint32(t))
	}
}

// Dimension is a named axis. A zero Len marks the record (unlimited) dimension.
type Dimension struct {
	Name string
	Len  uint64
}

// IsRecord reports whether d is the unlimited dimension.
func (d Dimension) IsRecord() bool {
	return d.Len == 0
}

// Attribute is a header attribute with its raw, padded-off value bytes.
type Attribute struct {
	Name  string
	Type  Type
	Count uint64
	Raw   []byte
}

// Text returns the value of a char attribute.
func (a Attribute) Text() (string, bool) {
	if a.Type != Char {
		return "", false
	}
	return string(a.Raw), true
}

// Variable is a variable descriptor.
type Variable struct {
	Name   string
	DimIDs []int
	Attrs  []Attribute
	Type   Type
	VSize  uint64
	Begin  uint64
}

// Header is a decoded classic netCDF header.
type Header struct {
	Kind    format.Kind
	NumRecs uint64
	Dims    []Dimension
	Attrs   []Attribute
	Vars    []Variable
}

// ReadHeader decodes the header of a classic netCDF file.
func ReadHeader(r io.ReaderAt) (*Header, error) {
	info, err := format.Detect(r)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNotClassic, err)
	}
	if !info.Kind.IsClassic() {
		return nil, fmt.Errorf("%w: found %s", ErrNotClassic, info.Kind)
	}

	cfg := binpkg.DefaultConfig()
	switch info.Kind {
	case format.Offset64:
		cfg.OffsetSize = 8
	case format.Data64:
		cfg.OffsetSize = 8
		cfg.CountSize = 8
	}

	br := binpkg.NewReader(r, cfg).At(4)
	h := &Header{Kind: info.Kind}

	if h.NumRecs, err = br.ReadCount(); err != nil {
		return nil, fmt.Errorf("reading numrecs: %w", err)
	}
	if h.Dims, err = readDims(br); err != nil {
		return nil, fmt.Errorf("reading dimensions: %w", err)
	}
	if h.Attrs, err = readAttrs(br); err != nil {
		return nil, fmt.Errorf("reading global attributes: %w", err)
	}
	if h.Vars, err = readVars(br, len(h.Dims)); err != nil {
		return nil, fmt.Errorf("reading variables: %w", err)
	}
	return h, nil
}

// readListHead reads a list tag and element count, accepting ABSENT.
func readListHead(br *binpkg.Reader, want uint32) (uint64, error) {
	tag, err := br.ReadUint32()
	if err != nil {
		return 0, err
	}
	n, err := br.ReadCount()
	if err != nil {
		return 0, err
	}
	switch {
	case tag == tagAbsent:
		if n != 0 {
			return 0, fmt.Errorf("%w: ABSENT list with %d elements", ErrInvalidHeader, n)
		}
		return 0, nil
	case tag != want:
		return 0, fmt.Errorf("%w: list tag 0x%x, expected 0x%x", ErrInvalidHeader, tag, want)
	case n > maxListLen:
		return 0, fmt.Errorf("%w: list of %d elements", ErrInvalidHeader, n)
	}
	return n, nil
}

func readName(br *binpkg.Reader) (string, error) {
	n, err := br.ReadCount()
	if err != nil {
		return "", err
	}
	if n > maxListLen {
		return "", fmt.Errorf("%w: name of %d bytes", ErrInvalidHeader, n)
	}
	b, err := br.ReadPadded(int(n))
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func readDims(br *binpkg.Reader) ([]Dimension, error) {
	n, err := readListHead(br, tagDimension)
	if err != nil {
		return nil, err
	}
	dims := make([]Dimension, 0, n)
	for i := uint64(0); i < n; i++ {
		name, err := readName(br)
		if err != nil {
			return nil, fmt.Errorf("dimension %d name: %w", i, err)
		}
		length, err := br.ReadCount()
		if err != nil {
			return nil, fmt.Errorf("dimension %q length: %w", name, err)
		}
		dims = append(dims, Dimension{Name: name, Len: length})
	}
	return dims, nil
}

func readAttrs(br *binpkg.Reader) ([]Attribute, error) {
	n, err := readListHead(br, tagAttribute)
	if err != nil {
		return nil, err
	}
	attrs := make([]Attribute, 0, n)
	for i := uint64(0); i < n; i++ {
		name, err := readName(br)
		if err != nil {
			return nil, fmt.Errorf("attribute %d name: %w", i, err)
		}
		typ, err := br.ReadUint32()
		if err != nil {
			return nil, fmt.Errorf("attribute %q type: %w", name, err)
		}
		t := Type(typ)
		if t.Size() == 0 {
			return nil, fmt.Errorf("%w: attribute %q has type %d", ErrInvalidHeader, name, typ)
		}
		count, err := br.ReadCount()
		if err != nil {
			return nil, fmt.Errorf("attribute %q count: %w", name, err)
		}
		if count > maxListLen {
			return nil, fmt.Errorf("%w: attribute %q has %d values", ErrInvalidHeader, name, count)
		}
		raw, err := br.ReadPadded(int(count) * t.Size())
		if err != nil {
			return nil, fmt.Errorf("attribute %q values: %w", name, err)
		}
		attrs = append(attrs, Attribute{Name: name, Type: t, Count: count, Raw: raw})
	}
	return attrs, nil
}

func readVars(br *binpkg.Reader, numDims int) ([]Variable, error) {
	n, err := readListHead(br, tagVariable)
	if err != nil {
		return nil, err
	}
	vars := make([]Variable, 0, n)
	for i := uint64(0); i < n; i++ {
		name, err := readName(br)
		if err != nil {
			return nil, fmt.Errorf("variable %d name: %w", i, err)
		}
		rank, err := br.ReadCount()
		if err != nil {
			return nil, fmt.Errorf("variable %q rank: %w", name, err)
		}
		if rank > uint64(numDims) {
			return nil, fmt.Errorf("%w: variable %q has rank %d with %d dimensions", ErrInvalidHeader, name, rank, numDims)
		}
		v := Variable{Name: name, DimIDs: make([]int, rank)}
		for j := range v.DimIDs {
			id, err := br.ReadCount()
			if err != nil {
				return nil, fmt.Errorf("variable %q dimid %d: %w", name, j, err)
			}
			if id >= uint64(numDims) {
				return nil, fmt.Errorf("%w: variable %q references dimension %d", ErrInvalidHeader, name, id)
			}
			v.DimIDs[j] = int(id)
		}
		if v.Attrs, err = readAttrs(br); err != nil {
			return nil, fmt.Errorf("variable %q attributes: %w", name, err)
		}
		typ, err := br.ReadUint32()
		if err != nil {
			return nil, fmt.Errorf("variable %q type: %w", name, err)
		}
		v.Type = Type(typ)
		if v.Type.Size() == 0 {
			return nil, fmt.Errorf("%w: variable %q has type %d", ErrInvalidHeader, name, typ)
		}
		if v.VSize, err = br.ReadCount(); err != nil {
			return nil, fmt.Errorf("variable %q vsize: %w", name, err)
		}
		if v.Begin, err = br.ReadOffset(); err != nil {
			return nil, fmt.Errorf("variable %q begin: %w", name, err)
		}
		vars = append(vars, v)
	}
	return vars, nil
}

// Dimension returns the length of the named dimension. The record dimension
// reports the current record count.
func (h *Header) Dimension(name string) (uint64, bool) {
	for _, d := range h.Dims {
		if d.Name == name {
			if d.IsRecord() {
				return h.NumRecs, true
			}
			return d.Len, true
		}
	}
	return 0, false
}

// Variable returns the descriptor of the named variable.
func (h *Header) Variable(name string) (*Variable, bool) {
	for i := range h.Vars {
		if h.Vars[i].Name == name {
			return &h.Vars[i], true
		}
	}
	return nil, false
}

// IsRecordVar reports whether v varies along the record dimension.
func (h *Header) IsRecordVar(v *Variable) bool {
	return len(v.DimIDs) > 0 && h.Dims[v.DimIDs[0]].IsRecord()
}

// Shape returns the current extent of v, with the record dimension sized to
// the record count.
func (h *Header) Shape(v *Variable) []uint64 {
	shape := make([]uint64, len(v.DimIDs))
	for i, id := range v.DimIDs {
		d := h.Dims[id]
		if d.IsRecord() {
			shape[i] = h.NumRecs
		} else {
			shape[i] = d.Len
		}
	}
	return shape
}

// DimNames returns the dimension names of v in order.
func (h *Header) DimNames(v *Variable) []string {
	names := make([]string, len(v.DimIDs))
	for i, id := range v.DimIDs {
		names[i] = h.Dims[id].Name
	}
	return names
}

// Attr returns the named global attribute.
func (h *Header) Attr(name string) (*Attribute, bool) {
	for i := range h.Attrs {
		if h.Attrs[i].Name == name {
			return &h.Attrs[i], true
		}
	}
	return nil, false
}
