package format

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"

	binpkg "github.com/robert-malhotra/go-exodus/internal/binary"
)

// Superblock errors
var (
	ErrNotHDF5            = errors.New("not an HDF5 container")
	ErrUnsupportedVersion = errors.New("unsupported superblock version")
)

// Superblock holds the container-level fields of a netCDF-4 file.
type Superblock struct {
	Version    uint8
	OffsetSize uint8 // bytes per file address
	LengthSize uint8 // bytes per object length

	BaseAddress uint64
	EOFAddress  uint64
}

/*
Superblock layouts after the 8-byte signature (O = size of offsets):

v0/v1: version, free-space version, root symbol table version, reserved,
       shared header version, size of offsets, size of lengths, reserved,
       group leaf K (2), group internal K (2), flags (4),
       [v1: indexed storage K (2), reserved (2)],
       base address (O), free-space address (O), EOF address (O), ...
v2/v3: version, size of offsets, size of lengths, flags,
       base address (O), extension address (O), EOF address (O), ...
*/

// ReadSuperblock parses the superblock of an HDF5 container found by Detect.
func ReadSuperblock(r io.ReaderAt, info Info) (*Superblock, error) {
	if info.Kind != HDF5 {
		return nil, ErrNotHDF5
	}

	// Field widths are unknown until read; the fixed part is byte-sized.
	br := binpkg.NewReader(r, binpkg.Config{ByteOrder: binary.LittleEndian, OffsetSize: 8, CountSize: 8}).
		At(info.Offset + int64(len(hdf5Signature)))

	version, err := br.ReadUint8()
	if err != nil {
		return nil, fmt.Errorf("reading superblock version: %w", err)
	}

	sb := &Superblock{Version: version}
	var addrStart int64
	switch version {
	case 0, 1:
		fixed, err := br.ReadBytes(15)
		if err != nil {
			return nil, fmt.Errorf("reading superblock: %w", err)
		}
		sb.OffsetSize, sb.LengthSize = fixed[4], fixed[5]
		addrStart = br.Pos()
		if version == 1 {
			addrStart += 4
		}
	case 2, 3:
		fixed, err := br.ReadBytes(3)
		if err != nil {
			return nil, fmt.Errorf("reading superblock: %w", err)
		}
		sb.OffsetSize, sb.LengthSize = fixed[0], fixed[1]
		addrStart = br.Pos()
	default:
		return nil, fmt.Errorf("%w: %d", ErrUnsupportedVersion, version)
	}

	cfg := binpkg.Config{
		ByteOrder:  binary.LittleEndian,
		OffsetSize: int(sb.OffsetSize),
		CountSize:  int(sb.LengthSize),
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("superblock field sizes %d/%d: %w", sb.OffsetSize, sb.LengthSize, err)
	}

	ar := binpkg.NewReader(r, cfg).At(addrStart)
	if sb.BaseAddress, err = ar.ReadOffset(); err != nil {
		return nil, fmt.Errorf("reading base address: %w", err)
	}
	ar.Skip(int64(cfg.OffsetSize)) // free-space or extension address
	if sb.EOFAddress, err = ar.ReadOffset(); err != nil {
		return nil, fmt.Errorf("reading EOF address: %w", err)
	}
	return sb, nil
}
