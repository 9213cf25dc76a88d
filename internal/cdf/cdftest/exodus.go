package cdftest

import (
	"fmt"

	"github.com/robert-malhotra/go-exodus/internal/cdf"
)

// NameWidth is the len_name dimension used by the Exodus fixtures.
const NameWidth = 33

// Exodus describes a one-block, one-dimensional Exodus II result file.
type Exodus struct {
	NodeNames []string
	ElemNames []string
	Steps     int
	Nodes     int
}

// NodeValue is the fixture value of node variable v at step s and node n.
func NodeValue(v, s, n int) float64 {
	return float64(v*1000 + s*100 + n)
}

// ElemValue is the fixture value of element variable v at step s and element e.
func ElemValue(v, s, e int) float64 {
	return -float64(v*1000 + s*100 + e)
}

// TimeValue is the fixture time of step s.
func TimeValue(s int) float64 {
	return 1e-6 * float64(s+1)
}

// CoordValue is the fixture x coordinate of node n.
func CoordValue(n int) float64 {
	return 0.5 * float64(n)
}

// Elems is the element count of the single block.
func (e Exodus) Elems() int {
	return e.Nodes - 1
}

// Build lays the description out the way Exodus writers do: a record
// dimension time_step, one vals_nod_var<i> per node variable and one
// vals_elem_var<i>eb1 per element variable.
func (e Exodus) Build(version byte) *File {
	f := New(version).
		AddDim("len_name", NameWidth).
		AddDim("time_step", 0).
		AddDim("num_dim", 1).
		AddDim("num_nodes", e.Nodes).
		AddDim("num_elem", e.Elems()).
		AddDim("num_el_blk", 1).
		AddDim("num_el_in_blk1", e.Elems()).
		SetNumRecs(e.Steps).
		AddTextAttr("title", "cdftest exodus fixture")

	if len(e.NodeNames) > 0 {
		f.AddDim("num_nod_var", len(e.NodeNames))
	}
	if len(e.ElemNames) > 0 {
		f.AddDim("num_elem_var", len(e.ElemNames))
	}

	times := make([]float64, e.Steps)
	for s := range times {
		times[s] = TimeValue(s)
	}
	f.AddVar("time_whole", cdf.Double, []string{"time_step"}, times)

	coords := make([]float64, e.Nodes)
	for n := range coords {
		coords[n] = CoordValue(n)
	}
	f.AddVar("coordx", cdf.Double, []string{"num_nodes"}, coords)

	if len(e.NodeNames) > 0 {
		f.AddVar("name_nod_var", cdf.Char, []string{"num_nod_var", "len_name"}, Names(NameWidth, e.NodeNames...))
		for v := range e.NodeNames {
			vals := make([]float64, 0, e.Steps*e.Nodes)
			for s := 0; s < e.Steps; s++ {
				for n := 0; n < e.Nodes; n++ {
					vals = append(vals, NodeValue(v, s, n))
				}
			}
			f.AddVar(fmt.Sprintf("vals_nod_var%d", v+1), cdf.Double, []string{"time_step", "num_nodes"}, vals)
		}
	}

	if len(e.ElemNames) > 0 {
		f.AddVar("name_elem_var", cdf.Char, []string{"num_elem_var", "len_name"}, Names(NameWidth, e.ElemNames...))
		for v := range e.ElemNames {
			vals := make([]float64, 0, e.Steps*e.Elems())
			for s := 0; s < e.Steps; s++ {
				for el := 0; el < e.Elems(); el++ {
					vals = append(vals, ElemValue(v, s, el))
				}
			}
			f.AddVar(fmt.Sprintf("vals_elem_var%deb1", v+1), cdf.Double, []string{"time_step", "num_el_in_blk1"}, vals)
		}
	}
	return f
}
