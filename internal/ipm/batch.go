package ipm

import (
	"github.com/ginjaninja78/IPM-to-XML-conversion/internal/scanner"
)

// FrameSource locates and decodes the frames of a batch file.
type FrameSource interface {
	Scan(buf []byte) (*scanner.Result, error)
}

// Batch is one decoded IPM file.
type Batch struct {
	name    string
	header  *Transaction
	trailer *Transaction
	body    []*Transaction

	frames    int
	corrupted int
	skipped   int
	trailing  int
}

// NewBatch scans data and classifies its frames.
//
// Frames are classified in input order:
//   - A file header (MTI 1644, DE24 697). When several are present the last
//     one is kept.
//   - A file trailer (MTI 1644, DE24 695), last one kept.
//   - Body: a corrupted frame, or any other frame carrying DE63.
//   - Everything else is skipped and counted.
//
// RETURNS:
//   - A *BatchError wrapping ErrEmptyName, ErrNoHeader or the scan failure.
func NewBatch(name string, data []byte, src FrameSource) (*Batch, error) {
	if name == "" {
		return nil, &BatchError{Err: ErrEmptyName}
	}

	res, err := src.Scan(data)
	if err != nil {
		return nil, &BatchError{Name: name, Err: err}
	}

	b := &Batch{
		name:     name,
		frames:   len(res.Frames),
		trailing: res.Trailing,
	}
	for _, f := range res.Frames {
		b.classify(FromFrame(f))
	}

	if b.header == nil {
		return nil, &BatchError{Name: name, Err: ErrNoHeader}
	}
	return b, nil
}

func (b *Batch) classify(t *Transaction) {
	switch {
	case t.Corrupted():
		b.corrupted++
		b.body = append(b.body, t)
	case t.IsHeader():
		if b.header != nil {
			b.skipped++
		}
		b.header = t
	case t.IsTrailer():
		if b.trailer != nil {
			b.skipped++
		}
		b.trailer = t
	case t.Has(FieldLifeCycle):
		b.body = append(b.body, t)
	default:
		b.skipped++
	}
}

// Name returns the batch name.
func (b *Batch) Name() string { return b.name }

// Header returns the file header.
func (b *Batch) Header() *Transaction { return b.header }

// Trailer returns the file trailer, or nil when the file has none.
func (b *Batch) Trailer() *Transaction { return b.trailer }

// Body returns the body transactions in input order.
func (b *Batch) Body() []*Transaction {
	out := make([]*Transaction, len(b.body))
	copy(out, b.body)
	return out
}

// Len returns the number of body transactions.
func (b *Batch) Len() int { return len(b.body) }

// Frames returns the number of frames the scan produced.
func (b *Batch) Frames() int { return b.frames }

// Corrupted returns the number of corrupted body transactions.
func (b *Batch) Corrupted() int { return b.corrupted }

// Skipped returns the number of decoded frames that were neither header,
// trailer nor body.
func (b *Batch) Skipped() int { return b.skipped }

// TrailingBytes returns the number of bytes after the last frame that were
// not part of any frame.
func (b *Batch) TrailingBytes() int { return b.trailing }
