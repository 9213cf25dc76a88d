package exodus

import (
	"errors"
	"fmt"
)

// Source is read access to the variables of an open Exodus dataset.
type Source interface {
	// NameTable returns the rows of a char name table such as name_nod_var.
	NameTable(key string) ([]NameRecord, error)

	// Has reports whether a variable named key exists.
	Has(key string) bool

	// Array returns the full contents of a numeric variable.
	Array(key string) (*Array, error)
}

// keyPair ties a decoded name to the storage key synthesized for it.
type keyPair struct {
	key      string
	name     string
	position int
}

// Transcribe builds the mapping from human-readable name to result array for
// one family.
//
// The family's name table is decoded and the name at position i is paired
// with the storage key prefix+(i+1)+suffix. Every key is checked before any
// array is read, and arrays stored as a degenerate (1, n) row come back as
// (n,). The result is all or nothing: on error no mapping is returned.
func Transcribe(src Source, family Family, opts ...Option) (*Mapping, error) {
	conv, err := family.convention()
	if err != nil {
		return nil, err
	}
	o := defaultOptions()
	for _, opt := range opts {
		opt(o)
	}

	names, err := readNames(src, conv)
	if err != nil {
		return nil, err
	}

	pairs, err := pairKeys(conv, names, o.allowOverride)
	if err != nil {
		return nil, err
	}

	for _, p := range pairs {
		if !src.Has(p.key) {
			return nil, &MissingVariableError{Key: p.key, Name: p.name, Position: p.position}
		}
	}

	m := newMapping(len(pairs))
	for _, p := range pairs {
		a, err := src.Array(p.key)
		if err != nil {
			if errors.Is(err, ErrMissingVariable) {
				return nil, &MissingVariableError{Key: p.key, Name: p.name, Position: p.position}
			}
			return nil, fmt.Errorf("reading %s (%q): %w", p.key, p.name, err)
		}
		m.set(p.name, a.Normalize())
	}
	return m, nil
}

// readNames decodes the name table of conv. A family with no variables has
// no name table at all, which is reported as a MissingVariableError.
func readNames(src Source, conv convention) ([]string, error) {
	if !src.Has(conv.nameTable) {
		return nil, &MissingVariableError{Key: conv.nameTable}
	}
	table, err := src.NameTable(conv.nameTable)
	if err != nil {
		return nil, fmt.Errorf("reading %s name table %s: %w", conv.name, conv.nameTable, err)
	}
	names, err := DecodeNames(table)
	if err != nil {
		return nil, fmt.Errorf("decoding %s: %w", conv.nameTable, err)
	}
	return names, nil
}

func pairKeys(conv convention, names []string, allowOverride bool) ([]keyPair, error) {
	seen := make(map[string]int, len(names))
	pairs := make([]keyPair, len(names))
	for i, name := range names {
		if first, ok := seen[name]; ok && !allowOverride {
			return nil, &DuplicateNameError{Name: name, First: first, Second: i}
		}
		seen[name] = i
		pairs[i] = keyPair{key: conv.key(i), name: name, position: i}
	}
	return pairs, nil
}

// StorageKeys returns the decoded names of a family paired with their
// synthesized storage keys, without reading any arrays.
func StorageKeys(src Source, family Family) (names, keys []string, err error) {
	conv, err := family.convention()
	if err != nil {
		return nil, nil, err
	}
	names, err = readNames(src, conv)
	if err != nil {
		return nil, nil, err
	}
	keys = make([]string, len(names))
	for i := range names {
		keys[i] = conv.key(i)
	}
	return names, keys, nil
}

// TranscribeAll transcribes the node and element families of src. The caller
// keeps ownership of src and closes it.
//
// A file without element results has no name_elem_var at all; the element
// mapping is then empty rather than an error. A missing node name table is
// still reported, as is any other element failure.
func TranscribeAll(src Source, opts ...Option) (node, elem *Mapping, err error) {
	node, err = Transcribe(src, Node, opts...)
	if err != nil {
		return nil, nil, err
	}
	conv, err := Elem.convention()
	if err != nil {
		return nil, nil, err
	}
	if !src.Has(conv.nameTable) {
		return node, newMapping(0), nil
	}
	elem, err = Transcribe(src, Elem, opts...)
	if err != nil {
		return nil, nil, err
	}
	return node, elem, nil
}
