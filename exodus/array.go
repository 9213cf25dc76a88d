package exodus

import (
	"fmt"
	"slices"
)

// Array is a dense, row-major numeric array.
type Array struct {
	Shape []int
	Data  []float64
}

// NewArray returns an array of the given shape backed by data. The length of
// data must equal the product of shape; a nil or empty shape is a scalar.
func NewArray(data []float64, shape ...int) (*Array, error) {
	n := 1
	for _, d := range shape {
		if d < 0 {
			return nil, fmt.Errorf("negative dimension in shape %v", shape)
		}
		n *= d
	}
	if n != len(data) {
		return nil, fmt.Errorf("shape %v holds %d elements, got %d", shape, n, len(data))
	}
	return &Array{Shape: slices.Clone(shape), Data: data}, nil
}

// Rank returns the number of dimensions.
func (a *Array) Rank() int {
	return len(a.Shape)
}

// Len returns the total number of elements.
func (a *Array) Len() int {
	return len(a.Data)
}

// At returns the element at the given index, one coordinate per dimension.
func (a *Array) At(idx ...int) (float64, error) {
	if len(idx) != len(a.Shape) {
		return 0, fmt.Errorf("index %v has rank %d, array has rank %d", idx, len(idx), len(a.Shape))
	}
	flat := 0
	for i, x := range idx {
		if x < 0 || x >= a.Shape[i] {
			return 0, fmt.Errorf("index %v out of range for shape %v", idx, a.Shape)
		}
		flat = flat*a.Shape[i] + x
	}
	return a.Data[flat], nil
}

// Row returns the sub-array at index i of the leading dimension. The result
// shares storage with a.
func (a *Array) Row(i int) (*Array, error) {
	if len(a.Shape) == 0 {
		return nil, fmt.Errorf("cannot index a scalar")
	}
	if i < 0 || i >= a.Shape[0] {
		return nil, fmt.Errorf("row %d out of range [0, %d)", i, a.Shape[0])
	}
	stride := 1
	for _, d := range a.Shape[1:] {
		stride *= d
	}
	return &Array{
		Shape: slices.Clone(a.Shape[1:]),
		Data:  a.Data[i*stride : (i+1)*stride : (i+1)*stride],
	}, nil
}

// Step returns time step i of a (time_step, n) result array. Negative i
// counts back from the last step.
func (a *Array) Step(i int) (*Array, error) {
	if len(a.Shape) != 2 {
		return nil, fmt.Errorf("time step of rank-%d array: want rank 2", len(a.Shape))
	}
	if i < 0 {
		i += a.Shape[0]
	}
	return a.Row(i)
}

// Normalize collapses a degenerate leading dimension. Results written by
// one-dimensional or single-step simulations are stored as a (1, n) row; they
// come back as (n,). Arrays of rank below 2, or whose first dimension is not
// 1, or whose second dimension is empty, are returned unchanged.
func (a *Array) Normalize() *Array {
	if len(a.Shape) < 2 || a.Shape[0] != 1 || a.Shape[1] < 1 {
		return a
	}
	return &Array{Shape: slices.Clone(a.Shape[1:]), Data: a.Data}
}

// Float64s returns a copy of the flat data.
func (a *Array) Float64s() []float64 {
	return slices.Clone(a.Data)
}

// Equal reports whether a and b have the same shape and contents.
func (a *Array) Equal(b *Array) bool {
	if a == nil || b == nil {
		return a == b
	}
	return slices.Equal(a.Shape, b.Shape) && slices.Equal(a.Data, b.Data)
}

func (a *Array) String() string {
	return fmt.Sprintf("Array%v", a.Shape)
}
