package layout

import (
	"errors"
	"fmt"
	"strings"

	"golang.org/x/text/encoding/charmap"
)

// ErrUnmappable is returned when a character has no representation in the
// target code page.
var ErrUnmappable = errors.New("character not representable in code page")

// Transcoder converts between wire bytes and Go strings.
type Transcoder interface {
	Decode(b []byte) (string, error)
	Encode(s string) ([]byte, error)
}

var (
	// Identity passes bytes through unchanged.
	Identity Transcoder = identity{}

	// Latin1 is ISO-8859-1.
	Latin1 Transcoder = codePage{name: "ISO-8859-1", cm: charmap.ISO8859_1}

	// IBM1047 is the EBCDIC Latin-1/Open Systems code page used by
	// mainframe clearing files.
	IBM1047 Transcoder = codePage{name: "IBM-1047", cm: charmap.CodePage1047}
)

type identity struct{}

func (identity) Decode(b []byte) (string, error) { return string(b), nil }

func (identity) Encode(s string) ([]byte, error) { return []byte(s), nil }

// codePage is a single-byte code page. Decoding and encoding are done one
// byte at a time so a round trip is exact: a rune with no mapping is an
// error, never a replacement character.
type codePage struct {
	name string
	cm   *charmap.Charmap
}

func (c codePage) Decode(b []byte) (string, error) {
	var sb strings.Builder
	sb.Grow(len(b))
	for _, x := range b {
		sb.WriteRune(c.cm.DecodeByte(x))
	}
	return sb.String(), nil
}

func (c codePage) Encode(s string) ([]byte, error) {
	out := make([]byte, 0, len(s))
	for i, r := range s {
		x, ok := c.cm.EncodeRune(r)
		if !ok {
			return nil, fmt.Errorf("%s: rune %q at offset %d: %w", c.name, r, i, ErrUnmappable)
		}
		out = append(out, x)
	}
	return out, nil
}

func (c codePage) String() string { return c.name }
