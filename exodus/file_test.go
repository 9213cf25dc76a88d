package exodus_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/robert-malhotra/go-exodus/exodus"
	"github.com/robert-malhotra/go-exodus/internal/cdf/cdftest"
)

func skipIfNoTestdata(t *testing.T, pattern string) []string {
	t.Helper()
	matches, _ := filepath.Glob(filepath.Join("testdata", pattern))
	if len(matches) == 0 {
		t.Skipf("no test files matching testdata/%s", pattern)
	}
	return matches
}

func writeFixture(t *testing.T, fx cdftest.Exodus, version byte) string {
	t.Helper()
	return fx.Build(version).WriteFile(t, t.TempDir(), "fixture.e")
}

var plasma = cdftest.Exodus{
	NodeNames: []string{"Ar", "em", "potential"},
	ElemNames: []string{"Ar+_density"},
	Steps:     3,
	Nodes:     5,
}

func TestOpenAndTranscribe(t *testing.T) {
	for _, version := range []byte{1, 2} {
		path := writeFixture(t, plasma, version)

		f, err := exodus.Open(path)
		require.NoError(t, err, "version %d", version)
		defer f.Close()

		node, err := exodus.Transcribe(f, exodus.Node)
		require.NoError(t, err)
		assert.Equal(t, plasma.NodeNames, node.Names())

		for v, name := range plasma.NodeNames {
			a, ok := node.Get(name)
			require.True(t, ok, name)
			assert.Equal(t, []int{plasma.Steps, plasma.Nodes}, a.Shape)

			last, err := a.Step(-1)
			require.NoError(t, err)
			for n := 0; n < plasma.Nodes; n++ {
				assert.Equal(t, cdftest.NodeValue(v, plasma.Steps-1, n), last.Data[n])
			}
		}

		elem, err := exodus.Transcribe(f, exodus.Elem)
		require.NoError(t, err)
		a, ok := elem.Get("Ar+_density")
		require.True(t, ok)
		assert.Equal(t, []int{plasma.Steps, plasma.Elems()}, a.Shape)
		v, err := a.At(1, 2)
		require.NoError(t, err)
		assert.Equal(t, cdftest.ElemValue(0, 1, 2), v)
	}
}

func TestOpenSingleStepIsNormalized(t *testing.T) {
	fx := plasma
	fx.Steps = 1
	f, err := exodus.Open(writeFixture(t, fx, 1))
	require.NoError(t, err)
	defer f.Close()

	node, elem, err := exodus.TranscribeAll(f)
	require.NoError(t, err)

	em, _ := node.Get("em")
	assert.Equal(t, []int{fx.Nodes}, em.Shape)
	assert.Equal(t, cdftest.NodeValue(1, 0, 4), em.Data[4])

	dens, _ := elem.Get("Ar+_density")
	assert.Equal(t, []int{fx.Elems()}, dens.Shape)
}

func TestFileMeshHelpers(t *testing.T) {
	f, err := exodus.Open(writeFixture(t, plasma, 2))
	require.NoError(t, err)
	defer f.Close()

	times, err := exodus.Times(f)
	require.NoError(t, err)
	require.Len(t, times, plasma.Steps)
	for s, tm := range times {
		assert.InDelta(t, cdftest.TimeValue(s), tm, 1e-15)
	}

	coords, err := exodus.Coordinates(f)
	require.NoError(t, err)
	assert.Equal(t, []string{"x"}, coords.Names())
	x, _ := coords.Get("x")
	assert.Equal(t, cdftest.CoordValue(4), x.Data[4])
}

func TestFileInfo(t *testing.T) {
	f, err := exodus.Open(writeFixture(t, plasma, 2))
	require.NoError(t, err)
	defer f.Close()

	info := f.Info()
	assert.Equal(t, "CDF-2", info.Format)
	assert.Equal(t, "cdftest exodus fixture", info.Title)
	assert.Equal(t, plasma.Steps, info.NumRecords)

	dims := make(map[string]exodus.Dimension)
	for _, d := range info.Dimensions {
		dims[d.Name] = d
	}
	assert.Equal(t, exodus.Dimension{Name: "time_step", Len: plasma.Steps, Unlimited: true}, dims["time_step"])
	assert.Equal(t, plasma.Nodes, dims["num_nodes"].Len)
	assert.Equal(t, len(plasma.NodeNames), dims["num_nod_var"].Len)
	assert.Equal(t, cdftest.NameWidth, dims["len_name"].Len)

	assert.Contains(t, f.Variables(), "vals_nod_var3")
	assert.Contains(t, f.Variables(), "vals_elem_var1eb1")
	assert.True(t, f.Has("name_elem_var"))
	assert.False(t, f.Has("vals_nod_var4"))

	vi, err := f.Describe("vals_nod_var2")
	require.NoError(t, err)
	assert.Equal(t, []string{"time_step", "num_nodes"}, vi.Dimensions)
	assert.Equal(t, []int{plasma.Steps, plasma.Nodes}, vi.Shape)
	assert.True(t, vi.TimeVarying)

	vi, err = f.Describe("coordx")
	require.NoError(t, err)
	assert.Equal(t, []int{plasma.Nodes}, vi.Shape)
	assert.False(t, vi.TimeVarying)

	_, err = f.Describe("vals_nod_var9")
	assert.ErrorIs(t, err, exodus.ErrMissingVariable)
}

func TestFileSourceErrors(t *testing.T) {
	f, err := exodus.Open(writeFixture(t, plasma, 1))
	require.NoError(t, err)
	defer f.Close()

	_, err = f.Array("vals_nod_var9")
	assert.ErrorIs(t, err, exodus.ErrMissingVariable)

	_, err = f.NameTable("name_side_var")
	assert.ErrorIs(t, err, exodus.ErrMissingVariable)

	_, err = f.Array("name_nod_var")
	assert.Error(t, err, "char variables are not numeric")
}

func TestFileClose(t *testing.T) {
	f, err := exodus.Open(writeFixture(t, plasma, 1))
	require.NoError(t, err)

	require.NoError(t, f.Close())
	require.NoError(t, f.Close(), "second close is a no-op")

	assert.False(t, f.Has("name_nod_var"))
	_, err = f.Array("vals_nod_var1")
	assert.ErrorIs(t, err, exodus.ErrClosed)
	_, err = f.NameTable("name_nod_var")
	assert.ErrorIs(t, err, exodus.ErrClosed)
	_, err = f.Describe("vals_nod_var1")
	assert.ErrorIs(t, err, exodus.ErrClosed)
}

func TestOpenRejects(t *testing.T) {
	dir := t.TempDir()

	text := filepath.Join(dir, "notes.txt")
	require.NoError(t, os.WriteFile(text, []byte("not a mesh file at all"), 0o644))
	_, err := exodus.Open(text)
	assert.ErrorIs(t, err, exodus.ErrNotExodus)

	_, err = exodus.Open(filepath.Join(dir, "missing.e"))
	assert.ErrorIs(t, err, os.ErrNotExist)

	truncated := filepath.Join(dir, "truncated.e")
	data := plasma.Build(1).Bytes()
	require.NoError(t, os.WriteFile(truncated, data[:40], 0o644))
	_, err = exodus.Open(truncated)
	assert.ErrorIs(t, err, exodus.ErrNotExodus)
}

func TestOpenLogs(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	path := writeFixture(t, plasma, 1)

	f, err := exodus.Open(path, exodus.WithLogger(zap.New(core)))
	require.NoError(t, err)
	require.NoError(t, f.Close())

	detected := logs.FilterMessage("detected container").All()
	require.Len(t, detected, 1)
	assert.Equal(t, "CDF-1", detected[0].ContextMap()["format"])
	assert.Equal(t, path, detected[0].ContextMap()["path"])
	assert.Equal(t, 1, logs.FilterMessage("closed file").Len())
}

func TestOpenTestdata(t *testing.T) {
	for _, path := range skipIfNoTestdata(t, "*.e") {
		t.Run(filepath.Base(path), func(t *testing.T) {
			f, err := exodus.Open(path)
			require.NoError(t, err)
			defer f.Close()

			for _, fam := range exodus.Families() {
				key, _ := fam.NameTableKey()
				if !f.Has(key) {
					continue
				}
				m, err := exodus.Transcribe(f, fam)
				require.NoError(t, err)
				assert.Positive(t, m.Len())
			}
		})
	}
}
