package exodus

import (
	"fmt"
	"strconv"
)

// Family selects which class of Exodus results to transcribe.
type Family int

const (
	Node Family = iota + 1 // node-centred results (vals_nod_var<i>)
	Elem                   // element-centred results of block 1 (vals_elem_var<i>eb1)
)

// convention is the fixed naming scheme of one family.
type convention struct {
	name      string
	nameTable string
	prefix    string
	suffix    string
}

var conventions = map[Family]convention{
	Node: {name: "node", nameTable: "name_nod_var", prefix: "vals_nod_var", suffix: ""},
	Elem: {name: "elem", nameTable: "name_elem_var", prefix: "vals_elem_var", suffix: "eb1"},
}

// Families lists every supported family in a stable order.
func Families() []Family {
	return []Family{Node, Elem}
}

// ParseFamily maps "node" or "elem" to a Family.
func ParseFamily(s string) (Family, error) {
	for _, f := range Families() {
		if conventions[f].name == s {
			return f, nil
		}
	}
	return 0, &ConfigurationError{Family: s}
}

func (f Family) convention() (convention, error) {
	c, ok := conventions[f]
	if !ok {
		return convention{}, &ConfigurationError{Family: f.String()}
	}
	return c, nil
}

// String returns the family's conventional name.
func (f Family) String() string {
	if c, ok := conventions[f]; ok {
		return c.name
	}
	return fmt.Sprintf("Family(%d)", int(f))
}

// NameTableKey returns the variable holding the family's name table.
func (f Family) NameTableKey() (string, error) {
	c, err := f.convention()
	if err != nil {
		return "", err
	}
	return c.nameTable, nil
}

// StorageKey returns the storage key for the name at 0-based position i.
// Exodus numbers variables from 1.
func (f Family) StorageKey(i int) (string, error) {
	c, err := f.convention()
	if err != nil {
		return "", err
	}
	return c.key(i), nil
}

func (c convention) key(i int) string {
	return c.prefix + strconv.Itoa(i+1) + c.suffix
}

// MarshalText implements encoding.TextMarshaler.
func (f Family) MarshalText() ([]byte, error) {
	c, err := f.convention()
	if err != nil {
		return nil, err
	}
	return []byte(c.name), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (f *Family) UnmarshalText(text []byte) error {
	parsed, err := ParseFamily(string(text))
	if err != nil {
		return err
	}
	*f = parsed
	return nil
}
