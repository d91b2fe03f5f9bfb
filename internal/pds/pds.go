// =============================================================================
// IPM to XML Converter - Private Data Subfield Codec
// =============================================================================
//
// Private data subfields (PDS) are a tag-length-value set packed into a single
// data element (DE48 in clearing files). Each entry is:
//
//   | 4 digits | 3 digits     | N bytes |
//   | tag      | value length | value   |
//
// Entries are concatenated with no delimiter. A non-numeric tag means the
// decoder has lost synchronization with the data and the whole set is
// rejected.
//
// =============================================================================

package pds

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/ginjaninja78/IPM-to-XML-conversion/internal/layout"
)

const (
	tagLength    = 4
	lengthLength = 3

	// MaxTag is the largest tag a 4-digit header can carry.
	MaxTag = 9999

	// MaxValueLength is the largest value a 3-digit header can carry.
	MaxValueLength = 999
)

var (
	// ErrCorrupted is returned when a tag header is not numeric.
	ErrCorrupted = errors.New("ISO Message may be corrupted")

	// ErrInvalidLength is returned when a length header is not numeric.
	ErrInvalidLength = errors.New("invalid subfield length")

	// ErrTruncated is returned when a header or value runs past the buffer.
	ErrTruncated = errors.New("subfield truncated")

	// ErrOutOfRange is returned by Encode for tags or values that do not fit
	// their fixed-width headers.
	ErrOutOfRange = errors.New("subfield out of range")
)

// Subfield is one (tag, value) entry.
type Subfield struct {
	Index int
	Value string
}

// Codec encodes and decodes subfield sets under one transcoder.
type Codec struct {
	charset layout.Transcoder
}

// New returns a Codec using the given transcoder.
func New(charset layout.Transcoder) *Codec {
	return &Codec{charset: charset}
}

// ForLayout returns a Codec using the layout's subfield charset.
func ForLayout(l layout.Layout) *Codec {
	return New(l.SubfieldCharset())
}

// Decode reads entries until b is exhausted. A repeated tag keeps the last
// value.
func (c *Codec) Decode(b []byte) (map[int]string, error) {
	out := make(map[int]string)
	pos := 0

	for pos < len(b) {
		if len(b)-pos < tagLength+lengthLength {
			return nil, fmt.Errorf("header at offset %d: %w", pos, ErrTruncated)
		}

		tag, err := c.charset.Decode(b[pos : pos+tagLength])
		if err != nil {
			return nil, err
		}
		index, ok := digits(tag)
		if !ok {
			return nil, fmt.Errorf("%w. Invalid field index: %s", ErrCorrupted, tag)
		}
		pos += tagLength

		rawLen, err := c.charset.Decode(b[pos : pos+lengthLength])
		if err != nil {
			return nil, err
		}
		n, ok := digits(rawLen)
		if !ok {
			return nil, fmt.Errorf("subfield %04d: %w: %q", index, ErrInvalidLength, rawLen)
		}
		pos += lengthLength

		if len(b)-pos < n {
			return nil, fmt.Errorf("subfield %04d: want %d bytes, have %d: %w", index, n, len(b)-pos, ErrTruncated)
		}
		value, err := c.charset.Decode(b[pos : pos+n])
		if err != nil {
			return nil, err
		}
		pos += n

		out[index] = value
	}

	return out, nil
}

// Encode writes entries in the order given.
func (c *Codec) Encode(fields []Subfield) ([]byte, error) {
	var out []byte

	for _, f := range fields {
		if f.Index < 0 || f.Index > MaxTag {
			return nil, fmt.Errorf("subfield %d: tag: %w", f.Index, ErrOutOfRange)
		}
		value, err := c.charset.Encode(f.Value)
		if err != nil {
			return nil, fmt.Errorf("subfield %04d: %w", f.Index, err)
		}
		if len(value) > MaxValueLength {
			return nil, fmt.Errorf("subfield %04d: %d bytes: %w", f.Index, len(value), ErrOutOfRange)
		}

		header, err := c.charset.Encode(fmt.Sprintf("%04d%03d", f.Index, len(value)))
		if err != nil {
			return nil, err
		}
		out = append(out, header...)
		out = append(out, value...)
	}

	return out, nil
}

// digits parses s as an unsigned decimal number made only of ASCII digits.
func digits(s string) (int, bool) {
	if s == "" {
		return 0, false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return 0, false
		}
	}
	n, err := strconv.Atoi(s)
	return n, err == nil
}
