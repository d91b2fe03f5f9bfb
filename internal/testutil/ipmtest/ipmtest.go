// Package ipmtest builds IPM frames and batch files for tests.
package ipmtest

import (
	"encoding/binary"
	"encoding/hex"
	"fmt"
	"sort"
	"testing"

	"github.com/ginjaninja78/IPM-to-XML-conversion/internal/layout"
	"github.com/ginjaninja78/IPM-to-XML-conversion/internal/pds"
	"github.com/ginjaninja78/IPM-to-XML-conversion/internal/tables"
)

// TextHeaderSize is the physical header that precedes the first frame of a
// text batch file.
const TextHeaderSize = 132

// Msg describes one frame to build.
type Msg struct {
	MTI    string
	Fields map[int]string

	// PDS, when set, is encoded into data element 48 and replaces
	// Fields[48].
	PDS []pds.Subfield
}

// Table loads the embedded field table for l.
func Table(t testing.TB, l layout.Layout) *layout.Table {
	t.Helper()
	tbl, err := tables.Loader{}.Load(l)
	if err != nil {
		t.Fatalf("load table: %v", err)
	}
	return tbl
}

// Frame encodes m under l.
func Frame(t testing.TB, l layout.Layout, m Msg) []byte {
	t.Helper()
	b, err := Encode(Table(t, l), l, m)
	if err != nil {
		t.Fatalf("encode frame: %v", err)
	}
	return b
}

// Encode encodes m with tbl and the charsets of l.
func Encode(tbl *layout.Table, l layout.Layout, m Msg) ([]byte, error) {
	charset := l.Charset()

	fields := make(map[int][]byte, len(m.Fields)+1)
	for index, value := range m.Fields {
		def, ok := tbl.Field(index)
		if !ok {
			return nil, fmt.Errorf("field %d not in table", index)
		}
		var raw []byte
		var err error
		if def.Type == layout.TypeBinary {
			raw, err = hex.DecodeString(value)
		} else {
			raw, err = charset.Encode(value)
		}
		if err != nil {
			return nil, fmt.Errorf("field %d: %w", index, err)
		}
		fields[index] = raw
	}
	if m.PDS != nil {
		raw, err := pds.ForLayout(l).Encode(m.PDS)
		if err != nil {
			return nil, err
		}
		fields[48] = raw
	}

	indexes := make([]int, 0, len(fields))
	for index := range fields {
		indexes = append(indexes, index)
	}
	sort.Ints(indexes)

	bitmapSize := 8
	if len(indexes) > 0 && indexes[len(indexes)-1] > 64 {
		bitmapSize = 16
	}
	bm := make([]byte, bitmapSize)
	if bitmapSize == 16 {
		bm[0] |= 0x80
	}

	out, err := charset.Encode(m.MTI)
	if err != nil {
		return nil, err
	}

	var body []byte
	for _, index := range indexes {
		def, _ := tbl.Field(index)
		raw := fields[index]
		bm[(index-1)/8] |= 0x80 >> (uint(index-1) % 8)

		switch def.Length {
		case layout.Fixed:
			if len(raw) != def.MaxLength {
				return nil, fmt.Errorf("field %d: fixed length %d, got %d", index, def.MaxLength, len(raw))
			}
		default:
			prefix, err := charset.Encode(fmt.Sprintf("%0*d", def.Length.PrefixDigits(), len(raw)))
			if err != nil {
				return nil, err
			}
			body = append(body, prefix...)
		}
		body = append(body, raw...)
	}

	out = append(out, bm...)
	return append(out, body...), nil
}

// Header is a file header message (MTI 1644, function code 697).
func Header() Msg {
	return Msg{
		MTI:    "1644",
		Fields: map[int]string{24: "697", 71: "00000001"},
		PDS: []pds.Subfield{
			{Index: 105, Value: "0020001234567890123456789"},
		},
	}
}

// Trailer is a file trailer message (MTI 1644, function code 695).
func Trailer() Msg {
	return Msg{
		MTI:    "1644",
		Fields: map[int]string{24: "695", 71: "00000099"},
	}
}

// Presentment is a first presentment with life-cycle id cycle.
func Presentment(cycle string) Msg {
	return Msg{
		MTI: "1240",
		Fields: map[int]string{
			2:  "5412345678901234",
			3:  "000000",
			4:  "000000012345",
			24: "200",
			49: "986",
			63: cycle,
			71: "00000002",
		},
		PDS: []pds.Subfield{
			{Index: 23, Value: "CT6"},
			{Index: 158, Value: "MCC1234567890A"},
		},
	}
}

// Malformed is an MTI-shaped span whose bitmap announces every data element
// but whose first length prefix is not numeric.
func Malformed(t testing.TB, l layout.Layout) []byte {
	t.Helper()
	mti, err := l.Charset().Encode("1240")
	if err != nil {
		t.Fatal(err)
	}
	out := append(mti, make([]byte, 16)...)
	for i := 4; i < len(out); i++ {
		out[i] = 0xFF
	}
	space, _ := l.Charset().Encode("    ")
	return append(out, space...)
}

// TextBatch lays frames out as a pre-edit text file: a fixed physical header
// followed by the frames back to back.
func TextBatch(frames ...[]byte) []byte {
	out := make([]byte, TextHeaderSize)
	for i := range out {
		out[i] = ' '
	}
	for _, f := range frames {
		out = append(out, f...)
	}
	return out
}

// EBCDICBatch lays frames out as a mainframe file, each record preceded by a
// 4-byte big-endian record descriptor word.
func EBCDICBatch(frames ...[]byte) []byte {
	var out []byte
	for _, f := range frames {
		var rdw [4]byte
		binary.BigEndian.PutUint32(rdw[:], uint32(len(f)))
		out = append(out, rdw[:]...)
		out = append(out, f...)
	}
	return out
}
