package exodus

import (
	"errors"
	"fmt"
	"os"
	"slices"
	"strings"

	"github.com/batchatco/go-native-netcdf/netcdf"
	"github.com/batchatco/go-native-netcdf/netcdf/api"
	"go.uber.org/zap"

	"github.com/robert-malhotra/go-exodus/internal/cdf"
	"github.com/robert-malhotra/go-exodus/internal/format"
)

// File is an open Exodus II result file. It implements Source.
//
// A File is not safe for concurrent use.
type File struct {
	path   string
	nc     api.Group
	kind   format.Kind
	header *cdf.Header        // classic files only
	sb     *format.Superblock // netCDF-4 files only
	vars   []string
	index  map[string]bool
	logger *zap.Logger
	closed bool
}

// Dimension is a named netCDF dimension.
type Dimension struct {
	Name string
	Len  int

	// Unlimited marks the record dimension; Len is then the record count.
	Unlimited bool
}

// Info summarizes the container of an open File.
type Info struct {
	// Format is one of "CDF-1", "CDF-2", "CDF-5" or "HDF5".
	Format string

	// Title is the global title attribute written by the simulation code
	// (classic only).
	Title string

	// Dimensions lists the file's dimensions in definition order. It is
	// only populated for classic files.
	Dimensions []Dimension

	// NumRecords is the length of the record dimension (classic only).
	NumRecords int

	// SuperblockVersion, AddressSize and EOFAddress describe the HDF5
	// container of a netCDF-4 file.
	SuperblockVersion int
	AddressSize       int
	EOFAddress        uint64
}

// VariableInfo describes one variable of a File.
type VariableInfo struct {
	Name       string
	Dimensions []string
	Shape      []int

	// TimeVarying marks variables stored along the time_step record
	// dimension. It is only known for classic files.
	TimeVarying bool
}

// Open opens the Exodus file at path.
func Open(path string, opts ...OpenOption) (*File, error) {
	o := defaultOpenOptions()
	for _, opt := range opts {
		opt(o)
	}
	log := o.logger.With(zap.String("path", path))

	c, err := sniff(path)
	if err != nil {
		return nil, err
	}
	fi := c.info
	log.Debug("detected container",
		zap.Stringer("format", fi.Kind),
		zap.Int64("offset", fi.Offset))

	nc, err := netcdf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}

	vars := nc.ListVariables()
	index := make(map[string]bool, len(vars))
	for _, v := range vars {
		index[v] = true
	}
	log.Debug("opened file", zap.Int("variables", len(vars)))

	return &File{
		path:   path,
		nc:     nc,
		kind:   fi.Kind,
		header: c.header,
		sb:     c.sb,
		vars:   vars,
		index:  index,
		logger: log,
	}, nil
}

type container struct {
	info   format.Info
	header *cdf.Header
	sb     *format.Superblock
}

// sniff identifies the container and parses its header so dimensions and
// superblock fields can be reported without decoding any data.
func sniff(path string) (container, error) {
	f, err := os.Open(path)
	if err != nil {
		return container{}, err
	}
	defer f.Close()

	fi, err := format.Detect(f)
	if err != nil {
		if errors.Is(err, format.ErrUnknown) {
			return container{}, fmt.Errorf("%w: %s: %v", ErrNotExodus, path, err)
		}
		return container{}, fmt.Errorf("reading %s: %w", path, err)
	}
	c := container{info: fi}

	if fi.Kind.IsClassic() {
		if c.header, err = cdf.ReadHeader(f); err != nil {
			return container{}, fmt.Errorf("%w: %s: %v", ErrNotExodus, path, err)
		}
		return c, nil
	}
	if c.sb, err = format.ReadSuperblock(f, fi); err != nil {
		return container{}, fmt.Errorf("%w: %s: %v", ErrNotExodus, path, err)
	}
	return c, nil
}

// Path returns the path the file was opened with.
func (f *File) Path() string {
	return f.path
}

// Close releases the underlying container. Closing twice is a no-op.
func (f *File) Close() error {
	if f.closed {
		return nil
	}
	f.closed = true
	f.nc.Close()
	f.logger.Debug("closed file")
	return nil
}

// Variables returns the names of all variables in file order.
func (f *File) Variables() []string {
	return slices.Clone(f.vars)
}

// Info reports the container format together with the classic dimensions or
// the HDF5 superblock fields.
func (f *File) Info() Info {
	info := Info{Format: f.kind.String()}
	if f.sb != nil {
		info.SuperblockVersion = int(f.sb.Version)
		info.AddressSize = int(f.sb.OffsetSize)
		info.EOFAddress = f.sb.EOFAddress
	}
	if f.header == nil {
		return info
	}
	info.NumRecords = int(f.header.NumRecs)
	if a, ok := f.header.Attr("title"); ok {
		if title, ok := a.Text(); ok {
			info.Title = strings.TrimRight(title, "\x00 ")
		}
	}
	for _, d := range f.header.Dims {
		n, _ := f.header.Dimension(d.Name)
		info.Dimensions = append(info.Dimensions, Dimension{
			Name:      d.Name,
			Len:       int(n),
			Unlimited: d.IsRecord(),
		})
	}
	return info
}

// Describe returns the dimensions and shape of the variable key. Classic
// files answer from the header; netCDF-4 files read the variable.
func (f *File) Describe(key string) (VariableInfo, error) {
	if f.closed {
		return VariableInfo{}, ErrClosed
	}
	if !f.index[key] {
		return VariableInfo{}, &MissingVariableError{Key: key}
	}
	vi := VariableInfo{Name: key}
	if f.header != nil {
		if v, ok := f.header.Variable(key); ok {
			vi.Dimensions = f.header.DimNames(v)
			vi.TimeVarying = f.header.IsRecordVar(v)
			for _, n := range f.header.Shape(v) {
				vi.Shape = append(vi.Shape, int(n))
			}
			return vi, nil
		}
	}

	v, err := f.nc.GetVariable(key)
	if err != nil {
		return VariableInfo{}, fmt.Errorf("reading %s: %w", key, err)
	}
	vi.Dimensions = slices.Clone(v.Dimensions)
	if a, err := arrayFromValues(v.Values); err == nil {
		vi.Shape = a.Shape
	} else if recs, err := recordsFromValues(v.Values); err == nil {
		vi.Shape = []int{len(recs)}
	}
	return vi, nil
}

// Has implements Source.
func (f *File) Has(key string) bool {
	return !f.closed && f.index[key]
}

// NameTable implements Source.
func (f *File) NameTable(key string) ([]NameRecord, error) {
	v, err := f.variable(key)
	if err != nil {
		return nil, err
	}
	recs, err := recordsFromValues(v.Values)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", key, err)
	}
	return recs, nil
}

// Array implements Source.
func (f *File) Array(key string) (*Array, error) {
	v, err := f.variable(key)
	if err != nil {
		return nil, err
	}
	a, err := arrayFromValues(v.Values)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", key, err)
	}
	f.logger.Debug("read array", zap.String("key", key), zap.Ints("shape", a.Shape))
	return a, nil
}

func (f *File) variable(key string) (*api.Variable, error) {
	if f.closed {
		return nil, ErrClosed
	}
	if !f.index[key] {
		return nil, &MissingVariableError{Key: key}
	}
	v, err := f.nc.GetVariable(key)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", key, err)
	}
	return v, nil
}
