// =============================================================================
// IPM to XML Converter - Message Codec
// =============================================================================
//
// The message codec decodes one framed ISO 8583 message from the front of a
// byte buffer, driven by a field-definition table.
//
// WIRE FORMAT:
//   | MTI     | Primary bitmap | Secondary bitmap       | Data elements ...  |
//   | 4 chars | 8 bytes binary | 8 bytes, if bit 1 set  | ascending order    |
//
//   Characters (MTI, length prefixes, n/an/ans values) are in the layout
//   charset: ISO-8859-1 for text files, IBM-1047 for EBCDIC files. Binary
//   elements are raw bytes.
//
// The codec reports how many bytes the message occupied so that the frame
// scanner can continue right after it.
//
// =============================================================================

package codec

import (
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/ginjaninja78/IPM-to-XML-conversion/internal/layout"
	"github.com/ginjaninja78/IPM-to-XML-conversion/internal/pds"
)

// MTILength is the size of the message type indicator.
const MTILength = 4

// Message is one decoded message.
type Message struct {
	// Fields holds every present data element by index; index 0 is the MTI.
	Fields map[int]string

	// Private holds the decoded subfield set of the private-data element, or
	// nil when the message has none.
	Private map[int]string

	// PrivateIndex is the data element Private was decoded from.
	PrivateIndex int
}

// Codec decodes messages for one layout.
type Codec struct {
	table     *layout.Table
	charset   layout.Transcoder
	subfields *pds.Codec
}

// New returns a Codec for the given table and layout.
func New(table *layout.Table, l layout.Layout) *Codec {
	return &Codec{
		table:     table,
		charset:   l.Charset(),
		subfields: pds.ForLayout(l),
	}
}

// Decode decodes the message at the front of buf.
//
// RETURNS:
//   - The decoded message.
//   - The number of bytes the message occupied.
//   - A *FieldError naming the element that could not be decoded.
func (c *Codec) Decode(buf []byte) (*Message, int, error) {
	if len(buf) < MTILength {
		return nil, 0, &FieldError{Field: 0, Err: ErrInsufficientData}
	}

	mti, err := c.charset.Decode(buf[:MTILength])
	if err != nil {
		return nil, 0, &FieldError{Field: 0, Err: err}
	}
	if !isDigits(mti) {
		return nil, 0, &FieldError{Field: 0, Err: fmt.Errorf("%w: %q", ErrInvalidMTI, mti)}
	}
	offset := MTILength

	bm, n, err := readBitmap(buf[offset:])
	if err != nil {
		return nil, 0, &FieldError{Field: 1, Err: err}
	}
	offset += n

	msg := &Message{Fields: map[int]string{0: mti}}

	for field := 2; field <= bm.maxField(); field++ {
		if !bm.isSet(field) {
			continue
		}

		def, ok := c.table.Field(field)
		if !ok {
			return nil, 0, &FieldError{Field: field, Err: ErrUndefinedField}
		}

		raw, consumed, err := c.readField(def, buf[offset:])
		if err != nil {
			return nil, 0, &FieldError{Field: field, Err: err}
		}
		offset += consumed

		value, err := c.fieldValue(def, raw)
		if err != nil {
			return nil, 0, &FieldError{Field: field, Err: err}
		}
		msg.Fields[field] = value

		if def.Subfields == layout.SubfieldsPDS {
			private, err := c.subfields.Decode(raw)
			if err != nil {
				return nil, 0, &FieldError{Field: field, Err: fmt.Errorf("%w: %v", ErrSubfields, err)}
			}
			msg.Private = private
			msg.PrivateIndex = field
		}
	}

	return msg, offset, nil
}

// readField reads the length prefix, if any, and slices the element's raw
// content. It returns the content and the total bytes used.
func (c *Codec) readField(def layout.FieldDefinition, data []byte) ([]byte, int, error) {
	prefix := def.Length.PrefixDigits()
	if prefix < 0 {
		return nil, 0, fmt.Errorf("unsupported length type %q", def.Length)
	}

	length := def.MaxLength
	if prefix > 0 {
		if len(data) < prefix {
			return nil, 0, ErrInsufficientData
		}
		digits, err := c.charset.Decode(data[:prefix])
		if err != nil {
			return nil, 0, err
		}
		if !isDigits(digits) {
			return nil, 0, fmt.Errorf("%w: prefix %q", ErrInvalidLength, digits)
		}
		length = atoi(digits)
		if length > def.MaxLength {
			return nil, 0, fmt.Errorf("%w: %d > %d", ErrFieldTooLong, length, def.MaxLength)
		}
	}

	if len(data) < prefix+length {
		return nil, 0, fmt.Errorf("%w: want %d bytes, have %d", ErrInsufficientData, prefix+length, len(data))
	}
	return data[prefix : prefix+length], prefix + length, nil
}

// fieldValue renders raw element content as text.
func (c *Codec) fieldValue(def layout.FieldDefinition, raw []byte) (string, error) {
	if def.Type == layout.TypeBinary {
		return strings.ToUpper(hex.EncodeToString(raw)), nil
	}

	value, err := c.charset.Decode(raw)
	if err != nil {
		return "", err
	}
	if def.Type == layout.TypeNumeric && strings.Trim(value, "0123456789") != "" {
		return "", fmt.Errorf("%w: numeric value %q", ErrInvalidFormat, value)
	}
	return value, nil
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

// atoi converts a string already checked by isDigits.
func atoi(s string) int {
	n := 0
	for i := 0; i < len(s); i++ {
		n = n*10 + int(s[i]-'0')
	}
	return n
}
