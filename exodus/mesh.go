package exodus

import "fmt"

// Well-known Exodus variables outside the result families.
const (
	TimeKey       = "time_whole"
	coordKey      = "coord" // legacy packed (num_dim, num_nodes) coordinates
	coordKeyXYZ   = "coordx"
	coordNamesKey = "coor_names"
)

var axisNames = []string{"x", "y", "z"}

// Times returns the simulation time of every stored step.
func Times(src Source) ([]float64, error) {
	if !src.Has(TimeKey) {
		return nil, &MissingVariableError{Key: TimeKey}
	}
	a, err := src.Array(TimeKey)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", TimeKey, err)
	}
	a = a.Normalize()
	if a.Rank() > 1 {
		return nil, fmt.Errorf("%s has shape %v, want rank 1", TimeKey, a.Shape)
	}
	return a.Float64s(), nil
}

// Coordinates returns the nodal coordinates as a mapping with keys "x", "y"
// and "z" for each axis present. Files using the packed legacy "coord"
// variable are split into the same per-axis arrays.
func Coordinates(src Source) (*Mapping, error) {
	m := newMapping(len(axisNames))
	for _, axis := range axisNames {
		key := "coord" + axis
		if !src.Has(key) {
			continue
		}
		a, err := src.Array(key)
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", key, err)
		}
		m.set(axis, a.Normalize())
	}
	if m.Len() > 0 {
		return m, nil
	}

	if !src.Has(coordKey) {
		return nil, &MissingVariableError{Key: coordKeyXYZ}
	}
	packed, err := src.Array(coordKey)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", coordKey, err)
	}
	if packed.Rank() != 2 || packed.Shape[0] > len(axisNames) {
		return nil, fmt.Errorf("%s has shape %v, want (num_dim, num_nodes)", coordKey, packed.Shape)
	}
	for i := 0; i < packed.Shape[0]; i++ {
		row, err := packed.Row(i)
		if err != nil {
			return nil, err
		}
		m.set(axisNames[i], row)
	}
	return m, nil
}

// CoordinateNames returns the axis labels stored in coor_names, if any.
func CoordinateNames(src Source) ([]string, error) {
	if !src.Has(coordNamesKey) {
		return nil, &MissingVariableError{Key: coordNamesKey}
	}
	table, err := src.NameTable(coordNamesKey)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", coordNamesKey, err)
	}
	return DecodeNames(table)
}
