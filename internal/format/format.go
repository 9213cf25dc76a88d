// Package format identifies the container flavour of a netCDF file.
//
// Exodus II results are written either as classic netCDF (CDF-1, the 64-bit
// offset CDF-2, or the 64-bit data CDF-5) or as netCDF-4, which is an HDF5
// file underneath. Classic files start with the bytes "CDF" followed by a
// version byte. HDF5 files carry an 8-byte signature at offset 0 or at one of
// the user-block offsets 512, 1024 and 2048.
package format

import (
	"bytes"
	"errors"
	"fmt"
	"io"
)

// Kind is the container flavour of a file.
type Kind int

const (
	Unknown Kind = iota
	Classic      // CDF-1
	Offset64     // CDF-2
	Data64       // CDF-5
	HDF5         // netCDF-4
)

// ErrUnknown is returned when no known magic number is found.
var ErrUnknown = errors.New("not a netCDF file: no classic magic or HDF5 signature")

// hdf5Signature is 0x89 H D F \r \n 0x1a \n.
var hdf5Signature = []byte{0x89, 'H', 'D', 'F', '\r', '\n', 0x1a, '\n'}

// Possible HDF5 superblock locations (searched in order)
var hdf5Offsets = []int64{0, 512, 1024, 2048}

var classicMagic = []byte{'C', 'D', 'F'}

// Info describes a detected container.
type Info struct {
	Kind Kind

	// SuperblockVersion is the HDF5 superblock version (HDF5 only).
	SuperblockVersion uint8

	// Offset is where the magic or signature was found.
	Offset int64
}

// String returns the conventional name of the container flavour.
func (k Kind) String() string {
	switch k {
	case Classic:
		return "CDF-1"
	case Offset64:
		return "CDF-2"
	case Data64:
		return "CDF-5"
	case HDF5:
		return "HDF5"
	default:
		return "unknown"
	}
}

// IsClassic reports whether k is one of the classic CDF versions.
func (k Kind) IsClassic() bool {
	return k == Classic || k == Offset64 || k == Data64
}

// Detect reads the magic bytes of r and reports the container flavour.
func Detect(r io.ReaderAt) (Info, error) {
	head := make([]byte, 4)
	n, err := r.ReadAt(head, 0)
	if err != nil && err != io.EOF {
		return Info{}, fmt.Errorf("reading magic: %w", err)
	}
	if n == 4 && bytes.Equal(head[:3], classicMagic) {
		switch head[3] {
		case 1:
			return Info{Kind: Classic}, nil
		case 2:
			return Info{Kind: Offset64}, nil
		case 5:
			return Info{Kind: Data64}, nil
		default:
			return Info{}, fmt.Errorf("%w: classic version byte %d", ErrUnknown, head[3])
		}
	}

	sig := make([]byte, len(hdf5Signature)+1)
	for _, offset := range hdf5Offsets {
		n, err := r.ReadAt(sig, offset)
		if err != nil && err != io.EOF {
			return Info{}, fmt.Errorf("reading signature at %d: %w", offset, err)
		}
		if n < len(hdf5Signature) {
			// File ends before this offset; later offsets are further out.
			break
		}
		if !bytes.Equal(sig[:len(hdf5Signature)], hdf5Signature) {
			continue
		}
		info := Info{Kind: HDF5, Offset: offset}
		if n > len(hdf5Signature) {
			info.SuperblockVersion = sig[len(hdf5Signature)]
		}
		return info, nil
	}

	return Info{}, ErrUnknown
}
