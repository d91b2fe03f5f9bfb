package csvparser

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ginjaninja78/IPM-to-XML-conversion/internal/layout"
)

func TestParseReader(t *testing.T) {
	in := `Index,Name,Type,Length,Max,Subfields
# clearing data elements
2,Primary Account Number,n,llvar,19
24,Function Code,n,fixed,3,

48,Additional Data,ans,lllvar,999,pds
`
	tbl, err := ParseReader(strings.NewReader(in), "t", DefaultSettings())
	if err != nil {
		t.Fatalf("ParseReader: %v", err)
	}
	if tbl.Len() != 3 {
		t.Fatalf("Len = %d, want 3", tbl.Len())
	}
	de48, ok := tbl.Field(48)
	if !ok || de48.Subfields != layout.SubfieldsPDS || de48.MaxLength != 999 {
		t.Errorf("field 48 = %+v", de48)
	}
}

func TestParsePipeDelimited(t *testing.T) {
	path := filepath.Join(t.TempDir(), "mastercard-ebcdic.csv")
	data := "Index|Name|Type|Length|Max\n71|Message Number|n|fixed|8\n"
	if err := os.WriteFile(path, []byte(data), 0644); err != nil {
		t.Fatal(err)
	}

	tbl, err := Parse(path, Settings{Delimiter: "|", Columns: layout.DefaultTableColumns()})
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if tbl.Name != "mastercard-ebcdic" {
		t.Errorf("Name = %q", tbl.Name)
	}
	if d, ok := tbl.Field(71); !ok || d.MaxLength != 8 {
		t.Errorf("field 71 = %+v", d)
	}
}

func TestParseEmpty(t *testing.T) {
	if _, err := ParseReader(strings.NewReader(""), "t", DefaultSettings()); err == nil {
		t.Fatal("expected an error for an empty CSV")
	}
}
