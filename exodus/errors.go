// Package exodus transcribes Exodus II result files into named arrays.
package exodus

import (
	"errors"
	"fmt"
)

// Common errors
var (
	ErrDecode          = errors.New("invalid name record")
	ErrUnknownFamily   = errors.New("unrecognized variable family")
	ErrMissingVariable = errors.New("variable not found")
	ErrDuplicateName   = errors.New("duplicate variable name")
	ErrClosed          = errors.New("file is closed")
	ErrNotExodus       = errors.New("not a netCDF file")
)

// DecodeError reports a name record whose bytes are not valid UTF-8.
type DecodeError struct {
	Record int // index of the record in its table
	Offset int // byte offset of the first invalid byte
	Byte   byte
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("%v: record %d byte %d (0x%02x)", ErrDecode, e.Record, e.Offset, e.Byte)
}

func (e *DecodeError) Unwrap() error { return ErrDecode }

// ConfigurationError reports a variable family outside {node, elem}.
type ConfigurationError struct {
	Family string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("%v: %q", ErrUnknownFamily, e.Family)
}

func (e *ConfigurationError) Unwrap() error { return ErrUnknownFamily }

// MissingVariableError reports a synthesized storage key absent from the source.
type MissingVariableError struct {
	Key      string
	Name     string
	Position int // 0-based position of Name in its name table
}

func (e *MissingVariableError) Error() string {
	if e.Name == "" {
		return fmt.Sprintf("%v: %s", ErrMissingVariable, e.Key)
	}
	return fmt.Sprintf("%v: %s (for %q at position %d)", ErrMissingVariable, e.Key, e.Name, e.Position)
}

func (e *MissingVariableError) Unwrap() error { return ErrMissingVariable }

// DuplicateNameError reports a name that appears twice in one name table.
type DuplicateNameError struct {
	Name   string
	First  int
	Second int
}

func (e *DuplicateNameError) Error() string {
	return fmt.Sprintf("%v: %q at positions %d and %d", ErrDuplicateName, e.Name, e.First, e.Second)
}

func (e *DuplicateNameError) Unwrap() error { return ErrDuplicateName }
