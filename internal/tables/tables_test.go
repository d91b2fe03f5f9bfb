package tables

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"testing"

	"github.com/ginjaninja78/IPM-to-XML-conversion/internal/layout"
)

func TestLoadEmbedded(t *testing.T) {
	for _, l := range []layout.Layout{layout.Text, layout.EBCDIC} {
		tbl, err := Loader{}.Load(l)
		if err != nil {
			t.Fatalf("Load(%s): %v", l, err)
		}
		if tbl.Name != l.TableName() {
			t.Errorf("Name = %q, want %q", tbl.Name, l.TableName())
		}
		for _, index := range []int{2, 24, 48, 63, 71} {
			if _, ok := tbl.Field(index); !ok {
				t.Errorf("%s: field %d not defined", l, index)
			}
		}
		if d, _ := tbl.Field(48); d.Subfields != layout.SubfieldsPDS {
			t.Errorf("%s: field 48 should carry private data", l)
		}
	}
}

func TestLoadGeneric(t *testing.T) {
	_, err := Loader{}.Load(layout.Generic)

	var cfgErr *layout.ConfigurationError
	if !errors.As(err, &cfgErr) {
		t.Fatalf("expected ConfigurationError, got %v", err)
	}
	if !errors.Is(err, layout.ErrNoTable) {
		t.Errorf("expected ErrNoTable, got %v", err)
	}
}

func TestLoadMissingFromDir(t *testing.T) {
	_, err := Loader{Dir: t.TempDir()}.Load(layout.EBCDIC)

	var cfgErr *layout.ConfigurationError
	if !errors.As(err, &cfgErr) {
		t.Fatalf("expected ConfigurationError, got %v", err)
	}
	if !errors.Is(err, fs.ErrNotExist) {
		t.Errorf("expected fs.ErrNotExist, got %v", err)
	}
}

func TestLoadFromDirYAML(t *testing.T) {
	dir := t.TempDir()
	data := []byte(`name: mastercard-ascii
fields:
  - {index: 24, name: Function Code, type: n, length: fixed, max: 3}
  - {index: 63, name: Transaction Life Cycle ID, type: ans, length: lllvar, max: 16}
`)
	if err := os.WriteFile(filepath.Join(dir, "mastercard-ascii.yml"), data, 0644); err != nil {
		t.Fatal(err)
	}

	tbl, err := Loader{Dir: dir}.Load(layout.Text)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if tbl.Len() != 2 {
		t.Errorf("Len = %d, want 2", tbl.Len())
	}
}

func TestLoadFromDirCSV(t *testing.T) {
	dir := t.TempDir()
	data := "Index,Name,Type,Length,Max\n24,Function Code,n,fixed,3\n"
	if err := os.WriteFile(filepath.Join(dir, "mastercard-ebcdic.csv"), []byte(data), 0644); err != nil {
		t.Fatal(err)
	}

	tbl, err := Loader{Dir: dir}.Load(layout.EBCDIC)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if _, ok := tbl.Field(24); !ok {
		t.Error("field 24 should be defined")
	}
}

func TestLoadInvalidTable(t *testing.T) {
	dir := t.TempDir()
	data := []byte(`name: mastercard-ascii
fields:
  - {index: 1, name: Bitmap, type: b, length: fixed, max: 8}
`)
	if err := os.WriteFile(filepath.Join(dir, "mastercard-ascii.yaml"), data, 0644); err != nil {
		t.Fatal(err)
	}

	_, err := Loader{Dir: dir}.Load(layout.Text)
	var cfgErr *layout.ConfigurationError
	if !errors.As(err, &cfgErr) {
		t.Fatalf("expected ConfigurationError, got %v", err)
	}
}

func TestParseYAMLSyntaxError(t *testing.T) {
	if _, err := ParseYAML([]byte("fields: [")); err == nil {
		t.Fatal("expected a parse error")
	}
}
