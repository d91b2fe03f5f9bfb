// =============================================================================
// IPM to XML Converter - Field Table Loader
// =============================================================================
//
// Every layout names a field-definition table. The loader finds it, parses it
// and validates it. Any failure is a *layout.ConfigurationError, raised before
// a single file is processed.
//
// LOOKUP ORDER:
//   1. If Dir is empty, the tables embedded in the binary are used.
//   2. Otherwise <Dir>/<table>.yaml, .yml, .xlsx and .csv are tried in that
//      order; the first one that exists wins.
//
// =============================================================================

package tables

import (
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/ginjaninja78/IPM-to-XML-conversion/internal/csvparser"
	"github.com/ginjaninja78/IPM-to-XML-conversion/internal/layout"
	"github.com/ginjaninja78/IPM-to-XML-conversion/internal/validation"
	"github.com/ginjaninja78/IPM-to-XML-conversion/internal/xlsxparser"
)

//go:embed *.yaml
var embedded embed.FS

// extensions are tried in order when loading from a directory.
var extensions = []string{".yaml", ".yml", ".xlsx", ".csv"}

// document is the YAML shape of a table resource.
type document struct {
	Name   string                   `yaml:"name"`
	Fields []layout.FieldDefinition `yaml:"fields"`
}

// Loader loads field-definition tables.
type Loader struct {
	// Dir holds table resources. Empty means the embedded defaults.
	Dir string
}

// Load returns the validated table for l.
func (ld Loader) Load(l layout.Layout) (*layout.Table, error) {
	name := l.TableName()
	if name == "" {
		return nil, &layout.ConfigurationError{Layout: l, Err: layout.ErrNoTable}
	}

	var (
		t   *layout.Table
		err error
	)
	if ld.Dir == "" {
		t, err = loadEmbedded(name)
	} else {
		t, err = loadFromDir(ld.Dir, name)
	}
	if err != nil {
		return nil, &layout.ConfigurationError{Layout: l, Err: err}
	}

	if result := validation.ValidateTable(t); !result.IsValid {
		return nil, &layout.ConfigurationError{Layout: l, Err: result.Err()}
	}
	return t, nil
}

func loadEmbedded(name string) (*layout.Table, error) {
	data, err := embedded.ReadFile(name + ".yaml")
	if err != nil {
		return nil, fmt.Errorf("field table %s: %w", name, err)
	}
	return ParseYAML(data)
}

func loadFromDir(dir, name string) (*layout.Table, error) {
	for _, ext := range extensions {
		path := filepath.Join(dir, name+ext)
		if _, err := os.Stat(path); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return nil, err
		}

		switch ext {
		case ".xlsx":
			return xlsxparser.Parse(path)
		case ".csv":
			return csvparser.Parse(path, csvparser.DefaultSettings())
		default:
			data, err := os.ReadFile(path)
			if err != nil {
				return nil, err
			}
			return ParseYAML(data)
		}
	}
	return nil, fmt.Errorf("field table %s not found in %s: %w", name, dir, fs.ErrNotExist)
}

// ParseYAML parses a YAML table resource.
func ParseYAML(data []byte) (*layout.Table, error) {
	var doc document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse field table: %w", err)
	}
	return layout.NewTable(doc.Name, doc.Fields)
}
