package scanner_test

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/ginjaninja78/IPM-to-XML-conversion/internal/codec"
	"github.com/ginjaninja78/IPM-to-XML-conversion/internal/layout"
	"github.com/ginjaninja78/IPM-to-XML-conversion/internal/scanner"
	"github.com/ginjaninja78/IPM-to-XML-conversion/internal/testutil/ipmtest"
)

func newScanner(t *testing.T, l layout.Layout) *scanner.Scanner {
	t.Helper()
	p, err := scanner.PolicyFor(l)
	if err != nil {
		t.Fatal(err)
	}
	return scanner.New(codec.New(ipmtest.Table(t, l), l), p)
}

func mtis(res *scanner.Result) []string {
	var out []string
	for _, f := range res.Frames {
		if f.Corrupted() {
			out = append(out, "corrupted")
			continue
		}
		out = append(out, f.Message.Fields[0])
	}
	return out
}

func TestScanWellFormed(t *testing.T) {
	for _, l := range []layout.Layout{layout.Text, layout.EBCDIC} {
		t.Run(l.String(), func(t *testing.T) {
			frames := [][]byte{
				ipmtest.Frame(t, l, ipmtest.Header()),
				ipmtest.Frame(t, l, ipmtest.Presentment("C1")),
				ipmtest.Frame(t, l, ipmtest.Presentment("C2")),
				ipmtest.Frame(t, l, ipmtest.Trailer()),
			}
			buf := ipmtest.TextBatch(frames...)
			if l == layout.EBCDIC {
				buf = ipmtest.EBCDICBatch(frames...)
			}

			res, err := newScanner(t, l).Scan(buf)
			if err != nil {
				t.Fatalf("Scan: %v", err)
			}

			got := strings.Join(mtis(res), ",")
			if got != "1644,1240,1240,1644" {
				t.Fatalf("frames = %s", got)
			}
			if res.Decoded != 4 || res.Corrupted != 0 || res.Trailing != 0 {
				t.Errorf("decoded=%d corrupted=%d trailing=%d", res.Decoded, res.Corrupted, res.Trailing)
			}
			if res.Frames[2].Message.Fields[63] != "C2" {
				t.Errorf("third frame cycle = %q", res.Frames[2].Message.Fields[63])
			}
		})
	}
}

func TestScanCursorAfterSuccess(t *testing.T) {
	l := layout.EBCDIC
	a := ipmtest.Frame(t, l, ipmtest.Header())
	b := ipmtest.Frame(t, l, ipmtest.Presentment("C1"))
	buf := append(append([]byte{}, a...), b...)

	res, err := newScanner(t, l).Scan(buf)
	if err != nil {
		t.Fatalf("Scan: %v", err)
	}
	if len(res.Frames) != 2 {
		t.Fatalf("got %d frames, want 2", len(res.Frames))
	}
	// Frames are back to back: the second starts one past the first's end.
	if res.Frames[0].Offset != 0 || res.Frames[1].Offset != len(a) {
		t.Errorf("offsets = %d, %d; want 0, %d", res.Frames[0].Offset, res.Frames[1].Offset, len(a))
	}
	if res.Frames[1].Length != len(b) {
		t.Errorf("length = %d, want %d", res.Frames[1].Length, len(b))
	}
}

func TestScanMalformedMiddleFrame(t *testing.T) {
	for _, l := range []layout.Layout{layout.Text, layout.EBCDIC} {
		t.Run(l.String(), func(t *testing.T) {
			frames := [][]byte{
				ipmtest.Frame(t, l, ipmtest.Header()),
				ipmtest.Frame(t, l, ipmtest.Presentment("C1")),
				ipmtest.Malformed(t, l),
				ipmtest.Frame(t, l, ipmtest.Presentment("C2")),
				ipmtest.Frame(t, l, ipmtest.Trailer()),
			}
			buf := ipmtest.TextBatch(frames...)
			if l == layout.EBCDIC {
				buf = ipmtest.EBCDICBatch(frames...)
			}

			res, err := newScanner(t, l).Scan(buf)
			if err != nil {
				t.Fatalf("Scan: %v", err)
			}

			got := strings.Join(mtis(res), ",")
			if got != "1644,1240,corrupted,1240,1644" {
				t.Fatalf("frames = %s", got)
			}

			bad := res.Frames[2]
			if !errors.Is(bad.Err, codec.ErrInvalidLength) {
				t.Errorf("placeholder error = %v", bad.Err)
			}
			text := bad.Message.Fields[1]
			if !strings.HasPrefix(text, "corrupted [") || !strings.HasSuffix(text, "]") {
				t.Errorf("placeholder field 1 = %q", text)
			}
			if len(bad.Message.Fields) != 1 {
				t.Errorf("placeholder should hold one field, got %v", bad.Message.Fields)
			}
			if res.Frames[3].Message.Fields[63] != "C2" {
				t.Errorf("frame after the corruption lost data: %v", res.Frames[3].Message.Fields)
			}
		})
	}
}

func TestScanEmptyInputs(t *testing.T) {
	tests := []struct {
		name   string
		layout layout.Layout
		buf    []byte
	}{
		{"ebcdic empty", layout.EBCDIC, nil},
		{"ebcdic no MTI", layout.EBCDIC, bytes.Repeat([]byte{0x40, 0xC1, 0xF5}, 200)},
		{"text empty", layout.Text, nil},
		{"text header only", layout.Text, ipmtest.TextBatch()},
		{"text below minimum", layout.Text, ipmtest.TextBatch([]byte("1644AAAAAAAAAAAAAAAA"))},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := newScanner(t, tt.layout).Scan(tt.buf)
			if err != nil {
				t.Fatalf("Scan: %v", err)
			}
			if len(res.Frames) != 0 {
				t.Errorf("expected no frames, got %d", len(res.Frames))
			}
		})
	}
}

func TestScanTextCeiling(t *testing.T) {
	// Garbage well past the ceiling, then a valid frame that is never reached.
	l := layout.Text
	garbage := bytes.Repeat([]byte("Z"), scanner.TextCeiling)
	buf := append(ipmtest.TextBatch(garbage), ipmtest.Frame(t, l, ipmtest.Header())...)

	_, err := newScanner(t, l).Scan(buf)
	if !errors.Is(err, scanner.ErrNoMessages) {
		t.Fatalf("expected ErrNoMessages, got %v", err)
	}
}

func TestScanTextResyncBeforeCeiling(t *testing.T) {
	l := layout.Text
	garbage := bytes.Repeat([]byte("Z"), 50)
	buf := ipmtest.TextBatch(garbage, ipmtest.Frame(t, l, ipmtest.Header()))

	res, err := newScanner(t, l).Scan(buf)
	if err != nil {
		t.Fatalf("Scan: %v", err)
	}
	if got := strings.Join(mtis(res), ","); got != "corrupted,1644" {
		t.Fatalf("frames = %s", got)
	}
	if res.Frames[0].Offset != ipmtest.TextHeaderSize || res.Frames[0].Length != 50 {
		t.Errorf("placeholder span = %d+%d", res.Frames[0].Offset, res.Frames[0].Length)
	}
}

func TestScanTruncatedLastFrame(t *testing.T) {
	for _, l := range []layout.Layout{layout.Text, layout.EBCDIC} {
		t.Run(l.String(), func(t *testing.T) {
			last := ipmtest.Frame(t, l, ipmtest.Presentment("C2"))
			last = last[:len(last)-10]
			frames := [][]byte{
				ipmtest.Frame(t, l, ipmtest.Header()),
				ipmtest.Frame(t, l, ipmtest.Presentment("C1")),
				last,
			}
			buf := ipmtest.TextBatch(frames...)
			if l == layout.EBCDIC {
				buf = ipmtest.EBCDICBatch(frames...)
			}

			res, err := newScanner(t, l).Scan(buf)
			if err != nil {
				t.Fatalf("Scan: %v", err)
			}
			if got := strings.Join(mtis(res), ","); got != "1644,1240,corrupted" {
				t.Fatalf("frames = %s", got)
			}
			if res.Corrupted != 1 {
				t.Errorf("Corrupted = %d, want 1", res.Corrupted)
			}
			if l == layout.Text {
				f := res.Frames[2]
				if f.Offset != len(buf)-len(last) || f.Length != len(last) || res.Trailing != 0 {
					t.Errorf("placeholder span = %d+%d, trailing %d", f.Offset, f.Length, res.Trailing)
				}
			}
		})
	}
}

func TestScanTextTrailingPadding(t *testing.T) {
	l := layout.Text
	buf := ipmtest.TextBatch(
		ipmtest.Frame(t, l, ipmtest.Header()),
		ipmtest.Frame(t, l, ipmtest.Trailer()),
		bytes.Repeat([]byte{'@'}, 64),
	)

	res, err := newScanner(t, l).Scan(buf)
	if err != nil {
		t.Fatalf("Scan: %v", err)
	}
	if res.Corrupted != 0 {
		t.Errorf("padding should not produce placeholders, got %d", res.Corrupted)
	}
	if res.Trailing != 64 {
		t.Errorf("Trailing = %d, want 64", res.Trailing)
	}
}

func TestScanCoalescedRunWithoutFiller(t *testing.T) {
	buf := make([]byte, 40)
	d := &stubDecoder{buf: buf, ok: map[int]bool{0: true}, size: 10}
	p := scanner.Policy{Remaining: 4, Recovery: scanner.Recovery{Advance: 1, Coalesce: true}}

	res, err := scanner.New(d, p).Scan(buf)
	if err != nil {
		t.Fatalf("Scan: %v", err)
	}
	if res.Decoded != 1 || res.Corrupted != 1 || res.Trailing != 0 {
		t.Fatalf("decoded=%d corrupted=%d trailing=%d", res.Decoded, res.Corrupted, res.Trailing)
	}
	if f := res.Frames[1]; f.Offset != 10 || f.Length != 30 {
		t.Errorf("placeholder span = %d+%d, want 10+30", f.Offset, f.Length)
	}
}

// stubDecoder fails everywhere except at the offsets listed in ok, where it
// consumes size bytes.
type stubDecoder struct {
	buf  []byte
	ok   map[int]bool
	size int
}

func (d *stubDecoder) Decode(b []byte) (*codec.Message, int, error) {
	offset := len(d.buf) - len(b)
	if d.ok[offset] {
		return &codec.Message{Fields: map[int]string{0: "1240"}}, d.size, nil
	}
	return nil, 0, errors.New("bad frame")
}

func TestScanCustomPolicy(t *testing.T) {
	buf := make([]byte, 100)
	d := &stubDecoder{buf: buf, ok: map[int]bool{10: true, 40: true}, size: 20}
	p := scanner.Policy{Start: 10, Remaining: 0, Recovery: scanner.Recovery{Advance: 5}}

	res, err := scanner.New(d, p).Scan(buf)
	if err != nil {
		t.Fatalf("Scan: %v", err)
	}
	// 10 ok -> 30 fail -> 35 fail -> 40 ok -> 60, 65, ..., 95 fail.
	if res.Decoded != 2 {
		t.Errorf("Decoded = %d, want 2", res.Decoded)
	}
	if res.Corrupted != 10 {
		t.Errorf("Corrupted = %d, want 10", res.Corrupted)
	}
	if res.Frames[1].Offset != 30 || res.Frames[1].Length != 5 {
		t.Errorf("first placeholder = %d+%d", res.Frames[1].Offset, res.Frames[1].Length)
	}
}

func TestScanZeroLengthDecode(t *testing.T) {
	buf := make([]byte, 10)
	d := &stubDecoder{buf: buf, ok: map[int]bool{0: true}, size: 0}
	p := scanner.Policy{Remaining: 8, Recovery: scanner.Recovery{Advance: 1}}

	res, err := scanner.New(d, p).Scan(buf)
	if err != nil {
		t.Fatalf("Scan: %v", err)
	}
	if res.Decoded != 0 || res.Corrupted != 2 {
		t.Errorf("decoded=%d corrupted=%d, want 0 and 2", res.Decoded, res.Corrupted)
	}
}
