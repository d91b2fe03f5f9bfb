// =============================================================================
// IPM to XML Converter - Frame Scanner
// =============================================================================
//
// IPM batch files are an undelimited stream of messages. The scanner walks
// the stream with a cursor, asks the message codec to decode a frame at the
// cursor, and decides where to look next.
//
// One state machine serves every layout. A Policy supplies what differs:
//
//   | Policy | Start | Candidate offsets        | After a failure         |
//   |--------|-------|--------------------------|-------------------------|
//   | Text   | 132   | every offset             | +1, runs coalesced      |
//   | EBCDIC | 0     | offsets holding a known  | +2, one placeholder per |
//   |        |       | MTI (1240/1442/1644/1740)| failure                 |
//
// INVARIANTS:
//   - After a successful decode the cursor is one past the frame's last byte.
//   - A decode failure never escapes: it becomes a corrupted placeholder,
//     including a damaged frame at the very end of the buffer.
//   - The only fatal outcome is a text file whose first 396 bytes hold no
//     decodable frame.
//
// =============================================================================

package scanner

import (
	"errors"
	"fmt"

	"github.com/ginjaninja78/IPM-to-XML-conversion/internal/codec"
)

var (
	// ErrNoMessages is returned when the resynchronization ceiling is reached
	// before any frame has been decoded.
	ErrNoMessages = errors.New("no messages found")

	// errNoProgress is recorded when a decoder reports success without
	// consuming any bytes.
	errNoProgress = errors.New("decoder consumed no bytes")
)

// Decoder decodes the frame at the front of a buffer.
type Decoder interface {
	Decode(buf []byte) (*codec.Message, int, error)
}

// Frame is one decoded or corrupted span of the input.
type Frame struct {
	// Offset is where the span starts in the input.
	Offset int

	// Length is the number of bytes the span covers.
	Length int

	// Message is the decoded message. For a corrupted span it holds a
	// single descriptive field (index 1).
	Message *codec.Message

	// Err is the decode failure of a corrupted span.
	Err error
}

// Corrupted reports whether the frame failed to decode.
func (f Frame) Corrupted() bool { return f.Err != nil }

// Result is the outcome of scanning one buffer.
type Result struct {
	Frames []Frame

	// Decoded and Corrupted count the frames of each kind.
	Decoded   int
	Corrupted int

	// Trailing is the number of bytes at the end of the buffer that were not
	// part of any frame.
	Trailing int
}

func (r *Result) add(f Frame) {
	r.Frames = append(r.Frames, f)
	if f.Corrupted() {
		r.Corrupted++
	} else {
		r.Decoded++
	}
}

// Scanner locates frames in a buffer.
type Scanner struct {
	decoder Decoder
	policy  Policy
}

// New returns a Scanner using d to decode frames found under p.
func New(d Decoder, p Policy) *Scanner {
	return &Scanner{decoder: d, policy: p}
}

// Policy returns the scanner's policy.
func (s *Scanner) Policy() Policy { return s.policy }

// Scan walks buf and returns every frame found, in input order.
func (s *Scanner) Scan(buf []byte) (*Result, error) {
	p := s.policy
	res := &Result{}
	cursor := p.Start

	// pending is an open run of consecutive failures (Coalesce only).
	var pending *Frame

	for len(buf)-cursor > p.Remaining {
		if p.Detect != nil && !p.Detect(buf, cursor) {
			cursor++
			continue
		}

		msg, n, err := s.decoder.Decode(buf[cursor:])
		if err == nil && n <= 0 {
			err = errNoProgress
		}
		if err == nil {
			if pending != nil {
				pending.Length = cursor - pending.Offset
				res.add(*pending)
				pending = nil
			}
			res.add(Frame{Offset: cursor, Length: n, Message: msg})
			cursor += n
			continue
		}

		if p.Recovery.Ceiling > 0 && cursor == p.Recovery.Ceiling && res.Decoded == 0 {
			return nil, fmt.Errorf("%w within the first %d bytes", ErrNoMessages, p.Recovery.Ceiling)
		}

		switch {
		case !p.Recovery.Coalesce:
			res.add(placeholder(cursor, p.Recovery.Advance, err))
		case pending == nil:
			f := placeholder(cursor, 0, err)
			pending = &f
		}
		cursor += p.Recovery.Advance
	}

	switch {
	case pending != nil && p.Recovery.Filler != nil && p.Recovery.Filler(buf[pending.Offset:]):
		res.Trailing = len(buf) - pending.Offset
	case pending != nil:
		pending.Length = len(buf) - pending.Offset
		res.add(*pending)
	case cursor < len(buf):
		res.Trailing = len(buf) - cursor
	}

	return res, nil
}

// placeholder builds the corrupted frame recorded for a decode failure.
func placeholder(offset, length int, err error) Frame {
	return Frame{
		Offset: offset,
		Length: length,
		Message: &codec.Message{
			Fields: map[int]string{1: fmt.Sprintf("corrupted [%v]", err)},
		},
		Err: err,
	}
}
