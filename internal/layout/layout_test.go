package layout

import (
	"errors"
	"testing"
)

func TestParse(t *testing.T) {
	tests := []struct {
		in      string
		want    Layout
		wantErr bool
	}{
		{"ascii", Text, false},
		{"TEXT", Text, false},
		{"ebcdic", EBCDIC, false},
		{" EBCDIC ", EBCDIC, false},
		{"", Generic, false},
		{"generic", Generic, false},
		{"utf-16", Generic, true},
	}

	for _, tt := range tests {
		got, err := Parse(tt.in)
		if (err != nil) != tt.wantErr {
			t.Fatalf("Parse(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
		}
		if got != tt.want {
			t.Errorf("Parse(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestLayoutProfiles(t *testing.T) {
	if Text.TableName() != "mastercard-ascii" || EBCDIC.TableName() != "mastercard-ebcdic" {
		t.Fatalf("unexpected table names %q %q", Text.TableName(), EBCDIC.TableName())
	}
	if Generic.TableName() != "" {
		t.Errorf("generic layout should have no table, got %q", Generic.TableName())
	}
	if Text.Charset() != Latin1 || EBCDIC.Charset() != IBM1047 {
		t.Error("unexpected field charsets")
	}
	if Text.SubfieldCharset() != Identity || EBCDIC.SubfieldCharset() != IBM1047 {
		t.Error("unexpected subfield charsets")
	}
}

func TestIBM1047RoundTrip(t *testing.T) {
	in := "1644 697 ABCxyz 0123456789 ./-&"

	enc, err := IBM1047.Encode(in)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	// EBCDIC digits live at 0xF0-0xF9.
	if enc[0] != 0xF1 || enc[1] != 0xF6 || enc[2] != 0xF4 || enc[3] != 0xF4 {
		t.Fatalf("unexpected EBCDIC bytes % X", enc[:4])
	}

	out, err := IBM1047.Decode(enc)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if out != in {
		t.Errorf("round trip = %q, want %q", out, in)
	}
}

func TestIBM1047AllBytesRoundTrip(t *testing.T) {
	all := make([]byte, 256)
	for i := range all {
		all[i] = byte(i)
	}
	s, err := IBM1047.Decode(all)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	back, err := IBM1047.Encode(s)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	for i := range all {
		if back[i] != all[i] {
			t.Fatalf("byte %#x came back as %#x", all[i], back[i])
		}
	}
}

func TestEncodeUnmappable(t *testing.T) {
	_, err := IBM1047.Encode("price €5")
	if !errors.Is(err, ErrUnmappable) {
		t.Fatalf("expected ErrUnmappable, got %v", err)
	}
}

func TestNewTableRejectsDuplicates(t *testing.T) {
	_, err := NewTable("dup", []FieldDefinition{
		{Index: 2, Type: TypeNumeric, Length: LLVar, MaxLength: 19},
		{Index: 2, Type: TypeNumeric, Length: LLVar, MaxLength: 19},
	})
	if !errors.Is(err, ErrDuplicateField) {
		t.Fatalf("expected ErrDuplicateField, got %v", err)
	}
}

func TestTableDefinitionsSorted(t *testing.T) {
	tbl, err := NewTable("t", []FieldDefinition{
		{Index: 48, Type: TypeCharacter, Length: LLLVar, MaxLength: 999},
		{Index: 3, Type: TypeNumeric, Length: Fixed, MaxLength: 6},
		{Index: 24, Type: TypeNumeric, Length: Fixed, MaxLength: 3},
	})
	if err != nil {
		t.Fatal(err)
	}
	defs := tbl.Definitions()
	if len(defs) != 3 || defs[0].Index != 3 || defs[1].Index != 24 || defs[2].Index != 48 {
		t.Errorf("unexpected order: %+v", defs)
	}
	if _, ok := tbl.Field(24); !ok {
		t.Error("field 24 should be defined")
	}
	if _, ok := tbl.Field(7); ok {
		t.Error("field 7 should not be defined")
	}
}

func TestPrefixDigits(t *testing.T) {
	if Fixed.PrefixDigits() != 0 || LLVar.PrefixDigits() != 2 || LLLVar.PrefixDigits() != 3 {
		t.Error("unexpected prefix digits")
	}
	if LengthType("llllvar").PrefixDigits() != -1 {
		t.Error("unknown length type should report -1")
	}
}
