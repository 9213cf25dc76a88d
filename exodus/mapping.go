package exodus

import (
	"fmt"
	"iter"
	"slices"
)

// Mapping is an ordered set of named arrays. Names keep the order in which
// they appear in the file's name table.
type Mapping struct {
	names  []string
	arrays map[string]*Array
}

func newMapping(capacity int) *Mapping {
	return &Mapping{
		names:  make([]string, 0, capacity),
		arrays: make(map[string]*Array, capacity),
	}
}

// set inserts or replaces name. A replaced name keeps its original position.
func (m *Mapping) set(name string, a *Array) {
	if _, ok := m.arrays[name]; !ok {
		m.names = append(m.names, name)
	}
	m.arrays[name] = a
}

// Len returns the number of names.
func (m *Mapping) Len() int {
	return len(m.names)
}

// Names returns the names in table order.
func (m *Mapping) Names() []string {
	return slices.Clone(m.names)
}

// Get returns the array stored under name.
func (m *Mapping) Get(name string) (*Array, bool) {
	a, ok := m.arrays[name]
	return a, ok
}

// Has reports whether name is present.
func (m *Mapping) Has(name string) bool {
	_, ok := m.arrays[name]
	return ok
}

// All iterates over names and arrays in table order.
func (m *Mapping) All() iter.Seq2[string, *Array] {
	return func(yield func(string, *Array) bool) {
		for _, name := range m.names {
			if !yield(name, m.arrays[name]) {
				return
			}
		}
	}
}

// Select returns a new mapping holding only the given names, in the order
// given. Unknown names yield a MissingVariableError.
func (m *Mapping) Select(names ...string) (*Mapping, error) {
	out := newMapping(len(names))
	for i, name := range names {
		a, ok := m.arrays[name]
		if !ok {
			return nil, &MissingVariableError{Key: name, Name: name, Position: i}
		}
		out.set(name, a)
	}
	return out, nil
}

// Equal reports whether m and o hold the same names in the same order with
// equal arrays.
func (m *Mapping) Equal(o *Mapping) bool {
	if m == nil || o == nil {
		return m == o
	}
	if !slices.Equal(m.names, o.names) {
		return false
	}
	for _, name := range m.names {
		if !m.arrays[name].Equal(o.arrays[name]) {
			return false
		}
	}
	return true
}

// Step returns a mapping holding time step i of every (time_step, n) array.
// Arrays of rank 0 or 1 come from single-step files, so for them only step 0
// (or -1) exists and they are kept as they are.
func (m *Mapping) Step(i int) (*Mapping, error) {
	out := newMapping(len(m.names))
	for _, name := range m.names {
		a := m.arrays[name]
		if a.Rank() < 2 {
			if i != 0 && i != -1 {
				return nil, fmt.Errorf("%q: row %d out of range [0, 1)", name, i)
			}
			out.set(name, a)
			continue
		}
		s, err := a.Step(i)
		if err != nil {
			return nil, fmt.Errorf("%q: %w", name, err)
		}
		out.set(name, s)
	}
	return out, nil
}
