// =============================================================================
// IPM to XML Converter - CSV Field Table Parser
// =============================================================================
//
// Reads a field-definition table exported as CSV. The columns are the same as
// for XLSX workbooks (see layout.TableColumns); only the container differs.
//
// FEATURES:
//   - Comma, semicolon, pipe or tab delimiters
//   - Comment lines starting with '#'
//   - Variable column counts (trailing empty cells may be omitted)
//
// =============================================================================

package csvparser

import (
	"bufio"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/ginjaninja78/IPM-to-XML-conversion/internal/layout"
)

// Settings controls how the CSV is read.
type Settings struct {
	// Delimiter separates fields: ",", ";", "|", "tab". Default ",".
	Delimiter string

	// Columns maps CSV columns to definition attributes.
	Columns layout.TableColumns
}

// DefaultSettings returns the default settings.
func DefaultSettings() Settings {
	return Settings{Delimiter: ",", Columns: layout.DefaultTableColumns()}
}

// Parse reads a CSV field table. The table is named after the file,
// without its extension.
func Parse(filePath string, settings Settings) (*layout.Table, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	base := filepath.Base(filePath)
	return ParseReader(bufio.NewReader(file), strings.TrimSuffix(base, filepath.Ext(base)), settings)
}

// ParseReader reads a CSV field table from r.
func ParseReader(r io.Reader, name string, settings Settings) (*layout.Table, error) {
	reader := csv.NewReader(r)
	configureReader(reader, settings)

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV: %w", err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("CSV file is empty")
	}

	return layout.TableFromRows(name, rows, settings.Columns)
}

// configureReader configures the CSV reader based on the settings.
func configureReader(reader *csv.Reader, settings Settings) {
	switch settings.Delimiter {
	case "\\t", "\t", "tab", "TAB":
		reader.Comma = '\t'
	case "|", "pipe", "PIPE":
		reader.Comma = '|'
	case ";", "semicolon":
		reader.Comma = ';'
	default:
		reader.Comma = ','
	}

	reader.Comment = '#'
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true
}
