package cdf_test

import (
	"bytes"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/robert-malhotra/go-exodus/internal/cdf"
	"github.com/robert-malhotra/go-exodus/internal/cdf/cdftest"
	"github.com/robert-malhotra/go-exodus/internal/format"
)

func TestReadHeaderExodusLayout(t *testing.T) {
	for _, version := range []byte{1, 2} {
		fixture := cdftest.Exodus{
			NodeNames: []string{"Ar", "em"},
			ElemNames: []string{"Ar+_density"},
			Steps:     3,
			Nodes:     5,
		}
		data := fixture.Build(version).Bytes()

		h, err := cdf.ReadHeader(bytes.NewReader(data))
		require.NoError(t, err, "version %d", version)

		if version == 1 {
			assert.Equal(t, format.Classic, h.Kind)
		} else {
			assert.Equal(t, format.Offset64, h.Kind)
		}
		assert.EqualValues(t, 3, h.NumRecs)

		n, ok := h.Dimension("num_nodes")
		require.True(t, ok)
		assert.EqualValues(t, 5, n)

		n, ok = h.Dimension("time_step")
		require.True(t, ok)
		assert.EqualValues(t, 3, n, "record dimension reports the record count")

		n, ok = h.Dimension("num_nod_var")
		require.True(t, ok)
		assert.EqualValues(t, 2, n)

		_, ok = h.Dimension("num_side_sets")
		assert.False(t, ok)

		title, ok := h.Attr("title")
		require.True(t, ok)
		text, ok := title.Text()
		require.True(t, ok)
		assert.Equal(t, "cdftest exodus fixture", text)

		names, ok := h.Variable("name_nod_var")
		require.True(t, ok)
		assert.Equal(t, cdf.Char, names.Type)
		assert.Equal(t, []uint64{2, cdftest.NameWidth}, h.Shape(names))
		assert.False(t, h.IsRecordVar(names))

		vals, ok := h.Variable("vals_nod_var2")
		require.True(t, ok)
		assert.Equal(t, cdf.Double, vals.Type)
		assert.True(t, h.IsRecordVar(vals))
		assert.Equal(t, []uint64{3, 5}, h.Shape(vals))
		assert.Equal(t, []string{"time_step", "num_nodes"}, h.DimNames(vals))
		assert.EqualValues(t, 5*8, vals.VSize)

		elem, ok := h.Variable("vals_elem_var1eb1")
		require.True(t, ok)
		assert.Equal(t, []uint64{3, 4}, h.Shape(elem))

		// Variable data must start after the header and inside the file.
		for _, v := range h.Vars {
			assert.Less(t, v.Begin, uint64(len(data)), v.Name)
		}
	}
}

func TestReadHeaderNonRecordData(t *testing.T) {
	f := cdftest.New(1).
		AddDim("n", 3).
		AddVar("x", cdf.Double, []string{"n"}, []float64{1, 2, 3}).
		AddVarAttr("units", "m")
	data := f.Bytes()

	h, err := cdf.ReadHeader(bytes.NewReader(data))
	require.NoError(t, err)
	require.Len(t, h.Vars, 1)

	v := h.Vars[0]
	require.Len(t, v.Attrs, 1)
	units, ok := v.Attrs[0].Text()
	require.True(t, ok)
	assert.Equal(t, "m", units)

	// The single variable is the last thing in the file.
	assert.EqualValues(t, len(data)-24, v.Begin)
}

func TestReadHeaderEmpty(t *testing.T) {
	h, err := cdf.ReadHeader(bytes.NewReader(cdftest.New(2).Bytes()))
	require.NoError(t, err)
	assert.Empty(t, h.Dims)
	assert.Empty(t, h.Attrs)
	assert.Empty(t, h.Vars)
}

func TestReadHeaderErrors(t *testing.T) {
	valid := cdftest.Exodus{NodeNames: []string{"u"}, Steps: 1, Nodes: 2}.Build(1).Bytes()

	tests := []struct {
		name    string
		content []byte
		want    error
	}{
		{"not netcdf", []byte("hello world"), cdf.ErrNotClassic},
		{"hdf5", append([]byte{0x89, 'H', 'D', 'F', '\r', '\n', 0x1a, '\n'}, make([]byte, 8)...), cdf.ErrNotClassic},
		{"bad dimension tag", append([]byte{'C', 'D', 'F', 1, 0, 0, 0, 0, 0, 0, 0, 0x0B}, make([]byte, 4)...), cdf.ErrInvalidHeader},
		{"absent list with elements", []byte{'C', 'D', 'F', 1, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 1}, cdf.ErrInvalidHeader},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := cdf.ReadHeader(bytes.NewReader(tt.content))
			require.Error(t, err)
			assert.True(t, errors.Is(err, tt.want), "got %v", err)
		})
	}

	t.Run("truncated", func(t *testing.T) {
		for _, n := range []int{6, 20, 60, len(valid) / 2} {
			_, err := cdf.ReadHeader(bytes.NewReader(valid[:n]))
			assert.Error(t, err, "truncated at %d", n)
		}
	})
}

func TestTypeSize(t *testing.T) {
	assert.Equal(t, 1, cdf.Char.Size())
	assert.Equal(t, 2, cdf.Short.Size())
	assert.Equal(t, 4, cdf.Float.Size())
	assert.Equal(t, 8, cdf.Double.Size())
	assert.Equal(t, 8, cdf.Int64.Size())
	assert.Equal(t, 0, cdf.Type(42).Size())
	assert.Equal(t, "double", cdf.Double.String())
	assert.Equal(t, "type(42)", cdf.Type(42).String())
}
