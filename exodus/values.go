package exodus

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
)

var errNotNumeric = errors.New("variable is not numeric")

// arrayFromValues flattens the nested slices returned by the container
// reader into a row-major Array. A scalar yields a rank-0 array.
func arrayFromValues(v any) (*Array, error) {
	if v == nil {
		return nil, fmt.Errorf("%w: no values", errNotNumeric)
	}
	rv := reflect.ValueOf(v)

	var shape []int
	t := rv.Type()
	for t.Kind() == reflect.Slice {
		shape = append(shape, 0)
		t = t.Elem()
	}
	if !isNumericKind(t.Kind()) {
		return nil, fmt.Errorf("%w: element type %s", errNotNumeric, t)
	}

	// Take each extent from the first element along that axis.
	cur := rv
	for i := range shape {
		shape[i] = cur.Len()
		if cur.Len() == 0 {
			break
		}
		cur = cur.Index(0)
	}

	n := 1
	for _, d := range shape {
		n *= d
	}
	data := make([]float64, 0, n)
	data, err := flatten(rv, shape, data)
	if err != nil {
		return nil, err
	}
	return &Array{Shape: shape, Data: data}, nil
}

func flatten(rv reflect.Value, shape []int, out []float64) ([]float64, error) {
	if len(shape) == 0 {
		return append(out, toFloat(rv)), nil
	}
	if rv.Len() != shape[0] {
		return nil, fmt.Errorf("ragged array: extent %d, want %d", rv.Len(), shape[0])
	}
	if len(shape) == 1 {
		for i := 0; i < rv.Len(); i++ {
			out = append(out, toFloat(rv.Index(i)))
		}
		return out, nil
	}
	var err error
	for i := 0; i < rv.Len(); i++ {
		if out, err = flatten(rv.Index(i), shape[1:], out); err != nil {
			return nil, err
		}
	}
	return out, nil
}

func isNumericKind(k reflect.Kind) bool {
	switch k {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return true
	}
	return false
}

func toFloat(v reflect.Value) float64 {
	switch v.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return float64(v.Int())
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return float64(v.Uint())
	default:
		return v.Float()
	}
}

// recordsFromValues converts the value of a char variable into name records.
// Readers return fixed-width char tables either as one string per row or as
// raw bytes; both are accepted.
func recordsFromValues(v any) ([]NameRecord, error) {
	switch vals := v.(type) {
	case string:
		return []NameRecord{NameRecord(vals)}, nil
	case []string:
		return recordsFromStrings(vals), nil
	case [][]string:
		recs := make([]NameRecord, len(vals))
		for i, row := range vals {
			recs[i] = NameRecord(strings.Join(row, ""))
		}
		return recs, nil
	case []byte:
		return []NameRecord{NameRecord(vals)}, nil
	case [][]byte:
		recs := make([]NameRecord, len(vals))
		for i, row := range vals {
			recs[i] = NameRecord(row)
		}
		return recs, nil
	case []int8:
		return []NameRecord{int8Record(vals)}, nil
	case [][]int8:
		recs := make([]NameRecord, len(vals))
		for i, row := range vals {
			recs[i] = int8Record(row)
		}
		return recs, nil
	default:
		return nil, fmt.Errorf("unsupported name table type %T", v)
	}
}

func int8Record(row []int8) NameRecord {
	rec := make(NameRecord, len(row))
	for i, c := range row {
		rec[i] = byte(c)
	}
	return rec
}
