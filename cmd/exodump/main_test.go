package main

import (
	"bytes"
	encsv "encoding/csv"
	"os"
	"path/filepath"
	"strconv"
	"testing"

	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/ipc"
	"github.com/klauspost/compress/zstd"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/robert-malhotra/go-exodus/exodus"
	"github.com/robert-malhotra/go-exodus/internal/cdf/cdftest"
	"github.com/robert-malhotra/go-exodus/table"
)

func TestMain(m *testing.M) {
	// zstd decoders keep pooled workers alive until garbage collected.
	goleak.VerifyTestMain(m, goleak.IgnoreAnyContainingPkg("github.com/klauspost/compress/zstd"))
}

var fixture = cdftest.Exodus{
	NodeNames: []string{"Ar", "em"},
	ElemNames: []string{"Ar+_density"},
	Steps:     3,
	Nodes:     4,
}

func fixturePath(t *testing.T) string {
	t.Helper()
	return fixture.Build(1).WriteFile(t, t.TempDir(), "run.e")
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func readCSV(t *testing.T, data string) [][]string {
	t.Helper()
	rows, err := encsv.NewReader(bytes.NewBufferString(data)).ReadAll()
	require.NoError(t, err)
	return rows
}

func cell(t *testing.T, s string) float64 {
	t.Helper()
	v, err := strconv.ParseFloat(s, 64)
	require.NoError(t, err)
	return v
}

func TestInfo(t *testing.T) {
	out, err := execute(t, "info", fixturePath(t))
	require.NoError(t, err)

	assert.Contains(t, out, "Format: CDF-1")
	assert.Contains(t, out, "Title: cdftest exodus fixture")
	assert.Contains(t, out, "time-varying")
	assert.Contains(t, out, "time_step")
	assert.Contains(t, out, "(unlimited)")
	assert.Contains(t, out, "vals_nod_var2")
	assert.Contains(t, out, "(time_step, num_nodes)")
	assert.Contains(t, out, "[3 4]")
}

func TestInfoRejectsNonNetCDF(t *testing.T) {
	path := filepath.Join(t.TempDir(), "notes.txt")
	require.NoError(t, os.WriteFile(path, []byte("hello"), 0o644))

	_, err := execute(t, "info", path)
	assert.ErrorIs(t, err, exodus.ErrNotExodus)
}

func TestNames(t *testing.T) {
	path := fixturePath(t)

	out, err := execute(t, "names", path)
	require.NoError(t, err)
	assert.Contains(t, out, "vals_nod_var1")
	assert.Contains(t, out, "em")
	assert.NotContains(t, out, "(missing)")

	out, err = execute(t, "names", path, "--family", "elem")
	require.NoError(t, err)
	assert.Contains(t, out, "vals_elem_var1eb1")
	assert.Contains(t, out, "Ar+_density")

	_, err = execute(t, "names", path, "--family", "side")
	assert.ErrorIs(t, err, exodus.ErrUnknownFamily)
}

func TestExportCSV(t *testing.T) {
	out, err := execute(t, "export", fixturePath(t), "--coordinates")
	require.NoError(t, err)

	rows := readCSV(t, out)
	require.Len(t, rows, fixture.Nodes+1)
	assert.Equal(t, []string{"x", "Ar", "em"}, rows[0])

	last := fixture.Steps - 1
	for n := 0; n < fixture.Nodes; n++ {
		assert.Equal(t, cdftest.CoordValue(n), cell(t, rows[n+1][0]))
		assert.Equal(t, cdftest.NodeValue(0, last, n), cell(t, rows[n+1][1]))
		assert.Equal(t, cdftest.NodeValue(1, last, n), cell(t, rows[n+1][2]))
	}
}

func TestExportSelectAndStep(t *testing.T) {
	out, err := execute(t, "export", fixturePath(t), "--vars", "em", "--step", "0")
	require.NoError(t, err)

	rows := readCSV(t, out)
	assert.Equal(t, []string{"em"}, rows[0])
	assert.Equal(t, cdftest.NodeValue(1, 0, 2), cell(t, rows[3][0]))

	_, err = execute(t, "export", fixturePath(t), "--vars", "potential")
	assert.ErrorIs(t, err, exodus.ErrMissingVariable)

	_, err = execute(t, "export", fixturePath(t), "--step", "7")
	assert.Error(t, err)
}

func TestExportSingleStepFile(t *testing.T) {
	single := fixture
	single.Steps = 1
	path := single.Build(1).WriteFile(t, t.TempDir(), "single.e")

	out, err := execute(t, "export", path, "--step", "0")
	require.NoError(t, err)
	rows := readCSV(t, out)
	assert.Equal(t, cdftest.NodeValue(1, 0, 3), cell(t, rows[4][1]))

	out, err = execute(t, "export", path, "--step", "7")
	assert.ErrorContains(t, err, "out of range")
	assert.Empty(t, out)
}

func TestExportElemWithCoordinatesFails(t *testing.T) {
	_, err := execute(t, "export", fixturePath(t), "--family", "elem", "--coordinates")
	assert.ErrorIs(t, err, table.ErrLength)
}

func TestExportArrow(t *testing.T) {
	dest := filepath.Join(t.TempDir(), "elem.arrow")
	_, err := execute(t, "export", fixturePath(t), "--family", "elem", "--format", "arrow", "--compress", "-o", dest)
	require.NoError(t, err)

	data, err := os.ReadFile(dest)
	require.NoError(t, err)
	reader, err := ipc.NewReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer reader.Release()

	require.True(t, reader.Next())
	rec := reader.Record()
	assert.Equal(t, "Ar+_density", rec.Schema().Field(0).Name)
	vals := rec.Column(0).(*array.Float64).Float64Values()
	require.Len(t, vals, fixture.Elems())
	assert.Equal(t, cdftest.ElemValue(0, fixture.Steps-1, 1), vals[1])
}

func TestExportZstdCSV(t *testing.T) {
	dest := filepath.Join(t.TempDir(), "nodes.csv.zst")
	_, err := execute(t, "export", fixturePath(t), "-o", dest)
	require.NoError(t, err)

	compressed, err := os.ReadFile(dest)
	require.NoError(t, err)
	dec, err := zstd.NewReader(nil)
	require.NoError(t, err)
	defer dec.Close()
	plain, err := dec.DecodeAll(compressed, nil)
	require.NoError(t, err)

	rows := readCSV(t, string(plain))
	assert.Equal(t, []string{"Ar", "em"}, rows[0])
	assert.Len(t, rows, fixture.Nodes+1)
}

func TestExportConfigFile(t *testing.T) {
	dir := t.TempDir()
	dest := filepath.Join(dir, "out.csv")
	cfgPath := filepath.Join(dir, "export.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte(`
family: node
variables: [em]
step: 1
coordinates: true
output: `+dest+`
`), 0o644))

	_, err := execute(t, "export", fixturePath(t), "--config", cfgPath)
	require.NoError(t, err)

	data, err := os.ReadFile(dest)
	require.NoError(t, err)
	rows := readCSV(t, string(data))
	assert.Equal(t, []string{"x", "em"}, rows[0])
	assert.Equal(t, cdftest.NodeValue(1, 1, 0), cell(t, rows[1][1]))

	// Flags win over the profile.
	out, err := execute(t, "export", fixturePath(t), "--config", cfgPath, "-o", "-", "--step", "2")
	require.NoError(t, err)
	rows = readCSV(t, out)
	assert.Equal(t, cdftest.NodeValue(1, 2, 0), cell(t, rows[1][1]))
}

func TestExportInvalidOptions(t *testing.T) {
	_, err := execute(t, "export", fixturePath(t), "--format", "parquet")
	assert.Error(t, err)

	_, err = execute(t, "export", fixturePath(t), "--compress")
	assert.Error(t, err, "buffer compression needs arrow output")

	_, err = execute(t, "export", fixturePath(t), "--config", filepath.Join(t.TempDir(), "none.yaml"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}
