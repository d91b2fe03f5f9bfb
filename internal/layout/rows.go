package layout

import (
	"fmt"
	"strconv"
	"strings"
)

// =============================================================================
// TABULAR TABLE SOURCES
// =============================================================================
//
// Field tables may be maintained as spreadsheets (XLSX or CSV). Both parsers
// hand their rows to TableFromRows, which maps columns to definitions.
//
//   | Column A | Column B              | Column C | Column D | Column E | Column F  |
//   |----------|-----------------------|----------|----------|----------|-----------|
//   | Index    | Name                  | Type     | Length   | Max      | Subfields |
//   | 2        | Primary Account Number| n        | LLVAR    | 19       |           |
//   | 48       | Additional Data       | ans      | LLLVAR   | 999      | pds       |
//
// =============================================================================

// TableColumns defines which spreadsheet columns hold which attribute.
// Column indices are 0-based (A=0, B=1, ...).
type TableColumns struct {
	IndexColumn     int
	NameColumn      int
	TypeColumn      int
	LengthColumn    int
	MaxLengthColumn int
	SubfieldsColumn int

	// DataStartRow is the first row holding a definition (0-based).
	DataStartRow int
}

// DefaultTableColumns returns the A-F layout shown above with one header row.
func DefaultTableColumns() TableColumns {
	return TableColumns{
		IndexColumn:     0,
		NameColumn:      1,
		TypeColumn:      2,
		LengthColumn:    3,
		MaxLengthColumn: 4,
		SubfieldsColumn: 5,
		DataStartRow:    1,
	}
}

// TableFromRows builds a Table from spreadsheet rows. Empty rows are
// skipped; row numbers in errors are 1-based.
func TableFromRows(name string, rows [][]string, columns TableColumns) (*Table, error) {
	var defs []FieldDefinition

	for i := columns.DataStartRow; i < len(rows); i++ {
		row := rows[i]
		if isRowEmpty(row) {
			continue
		}

		def, err := parseRow(row, columns)
		if err != nil {
			return nil, fmt.Errorf("table %s: row %d: %w", name, i+1, err)
		}
		defs = append(defs, def)
	}

	return NewTable(name, defs)
}

func parseRow(row []string, columns TableColumns) (FieldDefinition, error) {
	cell := func(index int) string {
		if index >= 0 && index < len(row) {
			return strings.TrimSpace(row[index])
		}
		return ""
	}

	index, err := strconv.Atoi(cell(columns.IndexColumn))
	if err != nil {
		return FieldDefinition{}, fmt.Errorf("index %q: %w", cell(columns.IndexColumn), err)
	}
	maxLength, err := strconv.Atoi(cell(columns.MaxLengthColumn))
	if err != nil {
		return FieldDefinition{}, fmt.Errorf("max length %q: %w", cell(columns.MaxLengthColumn), err)
	}

	return FieldDefinition{
		Index:     index,
		Name:      cell(columns.NameColumn),
		Type:      normalizeFieldType(cell(columns.TypeColumn)),
		Length:    normalizeLengthType(cell(columns.LengthColumn)),
		MaxLength: maxLength,
		Subfields: strings.ToLower(cell(columns.SubfieldsColumn)),
	}, nil
}

// normalizeFieldType maps spreadsheet spellings to a FieldType. Unknown
// values pass through unchanged so that validation can report them.
func normalizeFieldType(value string) FieldType {
	switch strings.ToLower(value) {
	case "n", "num", "numeric":
		return TypeNumeric
	case "an", "alphanumeric":
		return TypeAlphaNumeric
	case "ans", "char", "character", "text":
		return TypeCharacter
	case "b", "bin", "binary":
		return TypeBinary
	}
	return FieldType(value)
}

func normalizeLengthType(value string) LengthType {
	switch strings.ToLower(value) {
	case "fixed", "f", "":
		return Fixed
	case "llvar", "ll":
		return LLVar
	case "lllvar", "lll":
		return LLLVar
	}
	return LengthType(value)
}

func isRowEmpty(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}
