// =============================================================================
// IPM to XML Converter - XLSX Field Table Parser
// =============================================================================
//
// Field-definition tables are often maintained by operations staff in Excel.
// This module reads such a workbook and turns its first sheet into a
// layout.Table. See layout.TableColumns for the expected column layout.
//
// CUSTOMIZATION:
//   - Pass a custom layout.TableColumns to ParseWithColumns for workbooks
//     whose columns are arranged differently
//   - Use SheetName to read a sheet other than the first one
//
// =============================================================================

package xlsxparser

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/ginjaninja78/IPM-to-XML-conversion/internal/layout"
)

// Options controls how a workbook is read.
type Options struct {
	// Columns maps spreadsheet columns to definition attributes.
	Columns layout.TableColumns

	// SheetName selects the sheet to read. Empty means the first sheet.
	SheetName string
}

// DefaultOptions returns the default options.
func DefaultOptions() Options {
	return Options{Columns: layout.DefaultTableColumns()}
}

// Parse reads an XLSX field-table workbook. The table is named after the
// file, without its extension.
func Parse(path string) (*layout.Table, error) {
	return ParseWithOptions(path, DefaultOptions())
}

// ParseWithOptions reads an XLSX workbook using custom options.
func ParseWithOptions(path string, options Options) (*layout.Table, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open field table workbook: %w", err)
	}
	defer f.Close()

	return parseWorkbook(f, tableName(path), options)
}

// ParseReader reads an XLSX workbook from r.
func ParseReader(r io.Reader, name string, options Options) (*layout.Table, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to open field table workbook: %w", err)
	}
	defer f.Close()

	return parseWorkbook(f, name, options)
}

func parseWorkbook(f *excelize.File, name string, options Options) (*layout.Table, error) {
	sheet := options.SheetName
	if sheet == "" {
		sheet = f.GetSheetName(0)
	}
	if sheet == "" {
		return nil, fmt.Errorf("workbook has no sheets")
	}

	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("failed to read rows from sheet %q: %w", sheet, err)
	}

	return layout.TableFromRows(name, rows, options.Columns)
}

func tableName(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
