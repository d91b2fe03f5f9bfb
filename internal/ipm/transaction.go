// =============================================================================
// IPM to XML Converter - Transaction Model
// =============================================================================
//
// A Transaction wraps one frame of a batch file. It is one of:
//
//   - Plain:            data elements only.
//   - WithPrivateData:  data elements plus the decoded subfield set of the
//                       private-data element (DE48), held as a nested
//                       Transaction.
//   - Corrupted:        a frame that failed to decode. It holds only the
//                       descriptive field 1 and the captured error.
//
// A nested private-data Transaction is built from a flat subfield map and can
// never own another one, so the model is at most two levels deep.
//
// Transactions are immutable once built.
//
// =============================================================================

package ipm

import (
	"sort"

	"github.com/ginjaninja78/IPM-to-XML-conversion/internal/codec"
	"github.com/ginjaninja78/IPM-to-XML-conversion/internal/scanner"
)

// Well-known data elements and values.
const (
	// FieldFunctionCode is DE24, the function code.
	FieldFunctionCode = 24

	// FieldPrivateData is DE48, the additional data element carrying PDS.
	FieldPrivateData = 48

	// FieldLifeCycle is DE63, the transaction life cycle id. Every clearing
	// transaction carries it.
	FieldLifeCycle = 63

	// MTIFileControl is the message type of file headers and trailers.
	MTIFileControl = "1644"

	// FunctionHeader and FunctionTrailer are the DE24 values of the file
	// header and file trailer.
	FunctionHeader  = "697"
	FunctionTrailer = "695"
)

// Transaction is one decoded or corrupted message.
type Transaction struct {
	fields       map[int]Field
	private      *Transaction
	privateIndex int
	nested       bool
	err          error
}

// NewTransaction builds a Transaction from a decoded message.
func NewTransaction(msg *codec.Message) *Transaction {
	t := &Transaction{fields: make(map[int]Field, len(msg.Fields))}
	for index, value := range msg.Fields {
		t.fields[index] = Field{index: index, value: value}
	}
	if msg.Private != nil {
		t.private = newPrivateData(msg.Private)
		t.privateIndex = msg.PrivateIndex
		if t.privateIndex == 0 {
			t.privateIndex = FieldPrivateData
		}
	}
	return t
}

// FromFrame builds a Transaction from a scanned frame. A corrupted frame
// becomes a corrupted Transaction holding the frame's descriptive field.
func FromFrame(f scanner.Frame) *Transaction {
	if !f.Corrupted() {
		return NewTransaction(f.Message)
	}
	t := &Transaction{fields: make(map[int]Field, 1), err: f.Err}
	if f.Message != nil {
		if v, ok := f.Message.Fields[1]; ok {
			t.fields[1] = Field{index: 1, value: v}
		}
	}
	return t
}

func newPrivateData(subfields map[int]string) *Transaction {
	t := &Transaction{fields: make(map[int]Field, len(subfields)), nested: true}
	for index, value := range subfields {
		t.fields[index] = Field{index: index, value: value, private: true}
	}
	return t
}

// MTI returns the message type indicator, or "" for a corrupted frame.
func (t *Transaction) MTI() string { return t.fields[0].value }

// Field returns data element i. A missing element is returned absent.
func (t *Transaction) Field(i int) Field {
	if f, ok := t.fields[i]; ok {
		return f
	}
	return Field{index: i, private: t.nested}
}

// Has reports whether data element i is present.
func (t *Transaction) Has(i int) bool { return t.fields[i].Present() }

// Indexes returns the present indexes in ascending order.
func (t *Transaction) Indexes() []int {
	out := make([]int, 0, len(t.fields))
	for i := range t.fields {
		out = append(out, i)
	}
	sort.Ints(out)
	return out
}

// Fields returns the present fields in ascending index order.
func (t *Transaction) Fields() []Field {
	indexes := t.Indexes()
	out := make([]Field, len(indexes))
	for n, i := range indexes {
		out[n] = t.fields[i]
	}
	return out
}

// Len returns the number of present fields.
func (t *Transaction) Len() int { return len(t.fields) }

// PrivateData returns the nested subfield set, or nil.
func (t *Transaction) PrivateData() *Transaction { return t.private }

// PrivateIndex returns the data element the nested set was decoded from, or
// 0 when there is none.
func (t *Transaction) PrivateIndex() int { return t.privateIndex }

// Nested reports whether data element i is rendered from the nested set.
func (t *Transaction) Nested(i int) bool {
	return t.private != nil && i == t.privateIndex
}

// PDS returns private data subfield i. It is absent when the transaction has
// no nested set or the set lacks i.
func (t *Transaction) PDS(i int) Field {
	if t.private == nil {
		return Field{index: i, private: true}
	}
	return t.private.Field(i)
}

// Corrupted reports whether the frame failed to decode.
func (t *Transaction) Corrupted() bool { return t.err != nil }

// Err returns the decode failure of a corrupted frame.
func (t *Transaction) Err() error { return t.err }

// Depth returns 1 for a plain or corrupted transaction and 2 when it owns a
// nested set.
func (t *Transaction) Depth() int {
	if t.private == nil {
		return 1
	}
	return 1 + t.private.Depth()
}

// IsHeader reports whether t is a file header message.
func (t *Transaction) IsHeader() bool {
	return !t.Corrupted() && t.MTI() == MTIFileControl && t.Field(FieldFunctionCode).String() == FunctionHeader
}

// IsTrailer reports whether t is a file trailer message.
func (t *Transaction) IsTrailer() bool {
	return !t.Corrupted() && t.MTI() == MTIFileControl && t.Field(FieldFunctionCode).String() == FunctionTrailer
}
