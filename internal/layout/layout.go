// =============================================================================
// IPM to XML Converter - Layout Module
// =============================================================================
//
// A Layout is the pair {charset, field-definition table} needed to decode one
// variant of an IPM batch file. It is chosen once, before any file is read,
// and passed explicitly to every component that depends on it.
//
// SUPPORTED LAYOUTS:
//   | Layout  | Field charset | Subfield charset | Table              |
//   |---------|---------------|------------------|--------------------|
//   | Generic | ISO-8859-1    | identity         | (none)             |
//   | Text    | ISO-8859-1    | identity         | mastercard-ascii   |
//   | EBCDIC  | IBM-1047      | IBM-1047         | mastercard-ebcdic  |
//
// =============================================================================

package layout

import (
	"fmt"
	"strings"
)

// Layout selects the charset and field-definition table for a batch file.
type Layout int

const (
	// Generic is the unset layout. It has no field-definition table, so any
	// attempt to build a codec for it is a configuration error.
	Generic Layout = iota

	// Text is the MasterCard pre-edit (7-bit text) variant.
	Text

	// EBCDIC is the MasterCard mainframe variant.
	EBCDIC
)

// Parse maps a user-supplied encoding name to a Layout.
//
// ACCEPTED NAMES (case-insensitive):
//   - "ascii", "text"  -> Text
//   - "ebcdic"         -> EBCDIC
//   - "", "generic"    -> Generic
func Parse(name string) (Layout, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "generic":
		return Generic, nil
	case "ascii", "text":
		return Text, nil
	case "ebcdic":
		return EBCDIC, nil
	}
	return Generic, fmt.Errorf("unknown encoding %q (expected ascii or ebcdic)", name)
}

// String returns the canonical encoding name of the layout.
func (l Layout) String() string {
	switch l {
	case Text:
		return "ascii"
	case EBCDIC:
		return "ebcdic"
	default:
		return "generic"
	}
}

// TableName returns the name of the field-definition table used by the
// layout, or an empty string for the generic layout.
func (l Layout) TableName() string {
	switch l {
	case Text:
		return "mastercard-ascii"
	case EBCDIC:
		return "mastercard-ebcdic"
	default:
		return ""
	}
}

// Charset returns the transcoder applied to MTIs, length prefixes and
// character data elements.
func (l Layout) Charset() Transcoder {
	if l == EBCDIC {
		return IBM1047
	}
	return Latin1
}

// SubfieldCharset returns the transcoder applied inside private-data
// subfield sets.
func (l Layout) SubfieldCharset() Transcoder {
	if l == EBCDIC {
		return IBM1047
	}
	return Identity
}
