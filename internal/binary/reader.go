// Package binary provides positioned reads of the fixed-width fields found in
// netCDF headers (big-endian) and HDF5 superblocks (little-endian).
package binary

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
)

// ErrInvalidSize is returned when an invalid offset or count size is specified.
var ErrInvalidSize = errors.New("invalid offset/count size: must be 4 or 8")

// Reader reads netCDF header fields whose width depends on the file version.
// CDF-1 uses 4-byte offsets, CDF-2 8-byte offsets, and CDF-5 widens element
// counts to 8 bytes as well.
type Reader struct {
	r          io.ReaderAt
	order      binary.ByteOrder
	offsetSize int
	countSize  int
	pos        int64
}

// Config holds reader configuration, typically derived from the magic bytes.
type Config struct {
	ByteOrder  binary.ByteOrder
	OffsetSize int // 4 or 8 bytes
	CountSize  int // 4 or 8 bytes
}

// DefaultConfig returns the CDF-1 configuration: big-endian, 4-byte offsets
// and counts. It is also sufficient for reading the magic number.
func DefaultConfig() Config {
	return Config{
		ByteOrder:  binary.BigEndian,
		OffsetSize: 4,
		CountSize:  4,
	}
}

// Validate reports whether the configured field widths are supported.
func (c Config) Validate() error {
	if (c.OffsetSize != 4 && c.OffsetSize != 8) || (c.CountSize != 4 && c.CountSize != 8) {
		return ErrInvalidSize
	}
	return nil
}

// NewReader creates a binary reader with the given configuration.
func NewReader(r io.ReaderAt, cfg Config) *Reader {
	return &Reader{
		r:          r,
		order:      cfg.ByteOrder,
		offsetSize: cfg.OffsetSize,
		countSize:  cfg.CountSize,
	}
}

// At returns a new reader positioned at the given offset.
// The new reader shares the underlying io.ReaderAt but has independent position.
func (r *Reader) At(offset int64) *Reader {
	return &Reader{
		r:          r.r,
		order:      r.order,
		offsetSize: r.offsetSize,
		countSize:  r.countSize,
		pos:        offset,
	}
}

// Pos returns the current read position.
func (r *Reader) Pos() int64 {
	return r.pos
}

// ReadBytes reads exactly n bytes from the current position.
// A short read is reported as io.ErrUnexpectedEOF.
func (r *Reader) ReadBytes(n int) ([]byte, error) {
	if n <= 0 {
		return nil, nil
	}
	buf := make([]byte, n)
	got, err := r.r.ReadAt(buf, r.pos)
	if got < n {
		if err == nil || err == io.EOF {
			err = io.ErrUnexpectedEOF
		}
		return nil, fmt.Errorf("reading %d bytes at offset %d: %w", n, r.pos, err)
	}
	r.pos += int64(n)
	return buf, nil
}

// ReadUint8 reads an unsigned 8-bit integer.
func (r *Reader) ReadUint8() (uint8, error) {
	buf, err := r.ReadBytes(1)
	if err != nil {
		return 0, err
	}
	return buf[0], nil
}

// ReadUint32 reads an unsigned 32-bit integer.
func (r *Reader) ReadUint32() (uint32, error) {
	buf, err := r.ReadBytes(4)
	if err != nil {
		return 0, err
	}
	return r.order.Uint32(buf), nil
}

// ReadUint64 reads an unsigned 64-bit integer.
func (r *Reader) ReadUint64() (uint64, error) {
	buf, err := r.ReadBytes(8)
	if err != nil {
		return 0, err
	}
	return r.order.Uint64(buf), nil
}

// ReadOffset reads a file offset using the configured offset size.
func (r *Reader) ReadOffset() (uint64, error) {
	return r.readUintN(r.offsetSize)
}

// ReadCount reads an element count using the configured count size.
func (r *Reader) ReadCount() (uint64, error) {
	return r.readUintN(r.countSize)
}

func (r *Reader) readUintN(n int) (uint64, error) {
	switch n {
	case 4:
		v, err := r.ReadUint32()
		return uint64(v), err
	case 8:
		return r.ReadUint64()
	default:
		return 0, ErrInvalidSize
	}
}

// ReadPadded reads n bytes and then skips to the next 4-byte boundary,
// the padding rule netCDF applies to names and attribute values.
func (r *Reader) ReadPadded(n int) ([]byte, error) {
	buf, err := r.ReadBytes(n)
	if err != nil {
		return nil, err
	}
	r.Align(4)
	return buf, nil
}

// Skip advances the position by n bytes.
func (r *Reader) Skip(n int64) {
	r.pos += n
}

// Align advances the position to the next multiple of alignment.
// If already aligned, the position is unchanged.
func (r *Reader) Align(alignment int64) {
	if alignment <= 1 {
		return
	}
	if remainder := r.pos % alignment; remainder != 0 {
		r.pos += alignment - remainder
	}
}
