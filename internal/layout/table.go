// =============================================================================
// IPM to XML Converter - Field Definition Table
// =============================================================================
//
// A Table describes every data element the message codec may meet in a
// layout: its wire type, how its length is encoded and its maximum length.
// Tables are loaded from YAML, XLSX or CSV resources by the tables package
// and checked by the validation package before use.
//
// =============================================================================

package layout

import (
	"errors"
	"fmt"
	"sort"
)

// FieldType is the wire representation of a data element.
type FieldType string

const (
	TypeNumeric      FieldType = "n"
	TypeAlphaNumeric FieldType = "an"
	TypeCharacter    FieldType = "ans"
	TypeBinary       FieldType = "b"
)

// LengthType is how a data element's length is carried on the wire.
type LengthType string

const (
	Fixed  LengthType = "fixed"
	LLVar  LengthType = "llvar"
	LLLVar LengthType = "lllvar"
)

// PrefixDigits returns the number of length-prefix digits for the length
// type, or -1 when the type is unknown.
func (lt LengthType) PrefixDigits() int {
	switch lt {
	case Fixed:
		return 0
	case LLVar:
		return 2
	case LLLVar:
		return 3
	}
	return -1
}

// SubfieldsPDS marks a data element whose value is a private-data subfield
// set.
const SubfieldsPDS = "pds"

// FieldDefinition describes one data element.
type FieldDefinition struct {
	// Index is the data element number (2-128).
	Index int `yaml:"index" toml:"index"`

	// Name is informational only.
	Name string `yaml:"name" toml:"name"`

	Type FieldType `yaml:"type" toml:"type"`

	Length LengthType `yaml:"length" toml:"length"`

	// MaxLength is the exact length of a fixed field and the upper bound of
	// a variable one. Binary lengths are in bytes.
	MaxLength int `yaml:"max" toml:"max"`

	// Subfields is SubfieldsPDS when the value carries a nested set.
	Subfields string `yaml:"subfields,omitempty" toml:"subfields"`
}

// Table is an immutable set of field definitions keyed by index.
type Table struct {
	Name   string
	fields map[int]FieldDefinition
}

// ErrDuplicateField is returned by NewTable when an index is defined twice.
var ErrDuplicateField = errors.New("duplicate field definition")

// NewTable builds a Table from a list of definitions.
func NewTable(name string, defs []FieldDefinition) (*Table, error) {
	t := &Table{Name: name, fields: make(map[int]FieldDefinition, len(defs))}
	for _, d := range defs {
		if _, dup := t.fields[d.Index]; dup {
			return nil, fmt.Errorf("table %s: field %d: %w", name, d.Index, ErrDuplicateField)
		}
		t.fields[d.Index] = d
	}
	return t, nil
}

// Field returns the definition for index, if any.
func (t *Table) Field(index int) (FieldDefinition, bool) {
	d, ok := t.fields[index]
	return d, ok
}

// Definitions returns every definition in ascending index order.
func (t *Table) Definitions() []FieldDefinition {
	out := make([]FieldDefinition, 0, len(t.fields))
	for _, d := range t.fields {
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Index < out[j].Index })
	return out
}

// Len returns the number of definitions.
func (t *Table) Len() int { return len(t.fields) }
