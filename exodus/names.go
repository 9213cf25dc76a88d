package exodus

import (
	"bytes"
	"strings"
	"unicode/utf8"
)

// NameRecord is one fixed-width row of an Exodus name table. The name ends at
// the first NUL byte; the remaining bytes are padding.
type NameRecord []byte

// DecodeNames converts a name table into trimmed strings, one per record and
// in record order. Record order matters: it is the position later used to
// synthesize storage keys.
//
// Each record is cut at its first NUL and the text before it must be valid
// UTF-8, so multi-byte names such as "Δt" are accepted. A DecodeError gives
// the record and the byte offset of the first invalid sequence.
func DecodeNames(table []NameRecord) ([]string, error) {
	names := make([]string, len(table))
	for i, rec := range table {
		name, err := decodeRecord(rec)
		if err != nil {
			err.Record = i
			return nil, err
		}
		names[i] = name
	}
	return names, nil
}

func decodeRecord(rec NameRecord) (string, *DecodeError) {
	if end := bytes.IndexByte(rec, 0); end >= 0 {
		rec = rec[:end]
	}
	for off := 0; off < len(rec); {
		r, size := utf8.DecodeRune(rec[off:])
		if r == utf8.RuneError && size <= 1 {
			return "", &DecodeError{Offset: off, Byte: rec[off]}
		}
		off += size
	}
	return strings.TrimSpace(string(rec)), nil
}

// recordsFromStrings wraps already-decoded strings so they pass through
// DecodeNames unchanged.
func recordsFromStrings(ss []string) []NameRecord {
	recs := make([]NameRecord, len(ss))
	for i, s := range ss {
		recs[i] = NameRecord(s)
	}
	return recs
}
