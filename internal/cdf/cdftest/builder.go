// Package cdftest builds small classic netCDF files in memory for tests.
package cdftest

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/robert-malhotra/go-exodus/internal/cdf"
)

type dim struct {
	name   string
	length int
}

type attr struct {
	name  string
	value string
}

type variable struct {
	name  string
	typ   cdf.Type
	dims  []int
	data  []byte
	attrs []attr
}

// File accumulates dimensions, attributes and variables and encodes them as
// a CDF-1 or CDF-2 file.
type File struct {
	version byte
	numRecs int
	dims    []dim
	attrs   []attr
	vars    []*variable
}

// New returns an empty file of the given classic version (1 or 2).
func New(version byte) *File {
	if version != 1 && version != 2 {
		panic(fmt.Sprintf("cdftest: unsupported version %d", version))
	}
	return &File{version: version}
}

// AddDim adds a dimension. A zero length declares the record dimension.
func (f *File) AddDim(name string, length int) *File {
	f.dims = append(f.dims, dim{name: name, length: length})
	return f
}

// SetNumRecs sets the record count written to the header.
func (f *File) SetNumRecs(n int) *File {
	f.numRecs = n
	return f
}

// AddTextAttr adds a global char attribute.
func (f *File) AddTextAttr(name, value string) *File {
	f.attrs = append(f.attrs, attr{name: name, value: value})
	return f
}

// AddVar adds a variable. data must be []byte for Char, []int32 for Int,
// []float32 for Float or []float64 for Double, holding every element of the
// variable (all records for record variables) in row-major order.
func (f *File) AddVar(name string, typ cdf.Type, dims []string, data any) *File {
	v := &variable{name: name, typ: typ}
	for _, d := range dims {
		v.dims = append(v.dims, f.dimID(d))
	}
	v.data = encode(typ, data)
	f.vars = append(f.vars, v)
	return f
}

// AddVarAttr adds a char attribute to the most recently added variable.
func (f *File) AddVarAttr(name, value string) *File {
	v := f.vars[len(f.vars)-1]
	v.attrs = append(v.attrs, attr{name: name, value: value})
	return f
}

func (f *File) dimID(name string) int {
	for i, d := range f.dims {
		if d.name == name {
			return i
		}
	}
	panic(fmt.Sprintf("cdftest: unknown dimension %q", name))
}

func encode(typ cdf.Type, data any) []byte {
	var buf bytes.Buffer
	switch typ {
	case cdf.Char, cdf.Byte:
		buf.Write(data.([]byte))
	case cdf.Int:
		binary.Write(&buf, binary.BigEndian, data.([]int32))
	case cdf.Float:
		binary.Write(&buf, binary.BigEndian, data.([]float32))
	case cdf.Double:
		binary.Write(&buf, binary.BigEndian, data.([]float64))
	default:
		panic(fmt.Sprintf("cdftest: unsupported type %s", typ))
	}
	return buf.Bytes()
}

func (f *File) isRecord(v *variable) bool {
	return len(v.dims) > 0 && f.dims[v.dims[0]].length == 0
}

// slabSize is the unpadded size of one record (or the whole variable).
func (f *File) slabSize(v *variable) int {
	n := v.typ.Size()
	for i, id := range v.dims {
		if i == 0 && f.isRecord(v) {
			continue
		}
		n *= f.dims[id].length
	}
	return n
}

func pad4(n int) int {
	return (n + 3) &^ 3
}

// Bytes encodes the file.
func (f *File) Bytes() []byte {
	var recordVars []*variable
	for _, v := range f.vars {
		if f.isRecord(v) {
			recordVars = append(recordVars, v)
		}
	}

	// The header size does not depend on begin values.
	begins := make([]uint64, len(f.vars))
	headerLen := len(f.header(begins))

	next := uint64(headerLen)
	for i, v := range f.vars {
		if f.isRecord(v) {
			continue
		}
		begins[i] = next
		next += uint64(pad4(f.slabSize(v)))
	}
	recSize := 0
	for i, v := range f.vars {
		if !f.isRecord(v) {
			continue
		}
		begins[i] = next + uint64(recSize)
		recSize += f.recordStride(v, len(recordVars))
	}

	var out bytes.Buffer
	out.Write(f.header(begins))
	for _, v := range f.vars {
		if f.isRecord(v) {
			continue
		}
		out.Write(v.data)
		out.Write(make([]byte, pad4(len(v.data))-len(v.data)))
	}
	for r := 0; r < f.numRecs; r++ {
		for _, v := range recordVars {
			size := f.slabSize(v)
			start := r * size
			end := start + size
			if end > len(v.data) {
				panic(fmt.Sprintf("cdftest: variable %q has no data for record %d", v.name, r))
			}
			out.Write(v.data[start:end])
			out.Write(make([]byte, f.recordStride(v, len(recordVars))-size))
		}
	}
	return out.Bytes()
}

// recordStride is the per-record footprint of v. A lone record variable is
// not padded.
func (f *File) recordStride(v *variable, numRecordVars int) int {
	if numRecordVars == 1 {
		return f.slabSize(v)
	}
	return pad4(f.slabSize(v))
}

func (f *File) header(begins []uint64) []byte {
	var b bytes.Buffer
	put32 := func(v uint32) { binary.Write(&b, binary.BigEndian, v) }
	putName := func(s string) {
		put32(uint32(len(s)))
		b.WriteString(s)
		b.Write(make([]byte, pad4(len(s))-len(s)))
	}
	putAttrs := func(attrs []attr) {
		if len(attrs) == 0 {
			put32(0)
			put32(0)
			return
		}
		put32(0x0C)
		put32(uint32(len(attrs)))
		for _, a := range attrs {
			putName(a.name)
			put32(uint32(cdf.Char))
			put32(uint32(len(a.value)))
			b.WriteString(a.value)
			b.Write(make([]byte, pad4(len(a.value))-len(a.value)))
		}
	}

	b.Write([]byte{'C', 'D', 'F', f.version})
	put32(uint32(f.numRecs))

	if len(f.dims) == 0 {
		put32(0)
		put32(0)
	} else {
		put32(0x0A)
		put32(uint32(len(f.dims)))
		for _, d := range f.dims {
			putName(d.name)
			put32(uint32(d.length))
		}
	}

	putAttrs(f.attrs)

	if len(f.vars) == 0 {
		put32(0)
		put32(0)
		return b.Bytes()
	}
	put32(0x0B)
	put32(uint32(len(f.vars)))
	for i, v := range f.vars {
		putName(v.name)
		put32(uint32(len(v.dims)))
		for _, id := range v.dims {
			put32(uint32(id))
		}
		putAttrs(v.attrs)
		put32(uint32(v.typ))
		put32(uint32(pad4(f.slabSize(v))))
		if f.version == 1 {
			if begins[i] > math.MaxUint32 {
				panic("cdftest: CDF-1 offset overflow")
			}
			put32(uint32(begins[i]))
		} else {
			binary.Write(&b, binary.BigEndian, begins[i])
		}
	}
	return b.Bytes()
}

// WriteFile encodes the file into dir/name and returns the path.
func (f *File) WriteFile(t testing.TB, dir, name string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, f.Bytes(), 0o644); err != nil {
		t.Fatalf("writing %s: %v", path, err)
	}
	return path
}

// Names packs names into NUL-padded fixed-width records, the layout Exodus
// uses for name_nod_var and name_elem_var.
func Names(width int, names ...string) []byte {
	out := make([]byte, width*len(names))
	for i, n := range names {
		if len(n) > width {
			panic(fmt.Sprintf("cdftest: name %q longer than %d", n, width))
		}
		copy(out[i*width:], n)
	}
	return out
}
