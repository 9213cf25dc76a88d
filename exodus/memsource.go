package exodus

import (
	"fmt"
	"slices"
)

// MemSource is an in-memory Source for data that is already resident, such
// as arrays produced by another reader or assembled in tests.
type MemSource struct {
	tables map[string][]NameRecord
	arrays map[string]*Array
	order  []string
}

// NewMemSource returns an empty MemSource.
func NewMemSource() *MemSource {
	return &MemSource{
		tables: make(map[string][]NameRecord),
		arrays: make(map[string]*Array),
	}
}

func (s *MemSource) track(key string) {
	if _, ok := s.tables[key]; ok {
		return
	}
	if _, ok := s.arrays[key]; ok {
		return
	}
	s.order = append(s.order, key)
}

// SetNameTable stores a name table under key.
func (s *MemSource) SetNameTable(key string, table []NameRecord) *MemSource {
	s.track(key)
	s.tables[key] = table
	return s
}

// SetNames stores names as a name table under key.
func (s *MemSource) SetNames(key string, names ...string) *MemSource {
	return s.SetNameTable(key, recordsFromStrings(names))
}

// SetArray stores an array under key.
func (s *MemSource) SetArray(key string, a *Array) *MemSource {
	s.track(key)
	s.arrays[key] = a
	return s
}

// Variables returns every key in insertion order.
func (s *MemSource) Variables() []string {
	return slices.Clone(s.order)
}

// NameTable implements Source.
func (s *MemSource) NameTable(key string) ([]NameRecord, error) {
	t, ok := s.tables[key]
	if !ok {
		if _, isArray := s.arrays[key]; isArray {
			return nil, fmt.Errorf("%s is numeric, not a name table", key)
		}
		return nil, &MissingVariableError{Key: key}
	}
	return t, nil
}

// Has implements Source.
func (s *MemSource) Has(key string) bool {
	if _, ok := s.tables[key]; ok {
		return true
	}
	_, ok := s.arrays[key]
	return ok
}

// Array implements Source.
func (s *MemSource) Array(key string) (*Array, error) {
	a, ok := s.arrays[key]
	if !ok {
		if _, isTable := s.tables[key]; isTable {
			return nil, fmt.Errorf("%s is a name table, not numeric", key)
		}
		return nil, &MissingVariableError{Key: key}
	}
	return a, nil
}
