package scanner

import (
	"bytes"
	"fmt"

	"github.com/ginjaninja78/IPM-to-XML-conversion/internal/codec"
	"github.com/ginjaninja78/IPM-to-XML-conversion/internal/layout"
)

// Text file constants.
const (
	// TextHeaderSize is the fixed physical header before the first frame.
	TextHeaderSize = 132

	// TextMinRemaining is the number of bytes that must be left for another
	// frame to be attempted.
	TextMinRemaining = 20

	// TextCeiling is the cursor at which a text scan with no decoded frame
	// gives up.
	TextCeiling = 396
)

// EBCDICAdvance is how far the EBCDIC scan moves after a failed decode.
const EBCDICAdvance = 2

// KnownMTIs are the message types that start a frame in an EBCDIC file.
var KnownMTIs = []string{"1240", "1442", "1644", "1740"}

// Policy parameterizes the scan state machine.
type Policy struct {
	// Name is used in log output.
	Name string

	// Start is the initial cursor.
	Start int

	// Remaining: a frame is attempted only while more than Remaining bytes
	// are left after the cursor.
	Remaining int

	// Detect reports whether a frame may start at cursor. Nil means any
	// offset is a candidate.
	Detect func(buf []byte, cursor int) bool

	Recovery Recovery
}

// Recovery describes what happens after a failed decode.
type Recovery struct {
	// Advance is how far the cursor moves.
	Advance int

	// Ceiling, when positive, is the cursor at which a failure with no
	// frame decoded so far aborts the scan with ErrNoMessages.
	Ceiling int

	// Coalesce merges failures at consecutive attempts into one corrupted
	// frame. The frame is recorded when the scan resynchronizes or, for a
	// run that reaches the end of the buffer, when the scan stops.
	Coalesce bool

	// Filler reports whether a run that reaches the end of the buffer is
	// padding rather than a damaged frame. Filler is reported as trailing
	// bytes. Nil means every run is a corrupted frame.
	Filler func(run []byte) bool
}

// TextPolicy scans pre-edit text files.
func TextPolicy() Policy {
	return Policy{
		Name:      "text",
		Start:     TextHeaderSize,
		Remaining: TextMinRemaining,
		Recovery: Recovery{
			Advance:  1,
			Ceiling:  TextCeiling,
			Coalesce: true,
			Filler:   textFiller,
		},
	}
}

// textFiller treats a run as padding unless it starts with an MTI-shaped
// group of digits.
func textFiller(run []byte) bool {
	if len(run) < codec.MTILength {
		return true
	}
	for _, c := range run[:codec.MTILength] {
		if c < '0' || c > '9' {
			return true
		}
	}
	return false
}

// EBCDICPolicy scans mainframe files for the IBM-1047 encoding of
// KnownMTIs.
func EBCDICPolicy() Policy {
	mtis := make([][]byte, 0, len(KnownMTIs))
	for _, mti := range KnownMTIs {
		b, err := layout.IBM1047.Encode(mti)
		if err != nil {
			// Digits are always representable.
			panic(err)
		}
		mtis = append(mtis, b)
	}

	return Policy{
		Name:      "ebcdic",
		Start:     0,
		Remaining: codec.MTILength,
		Detect: func(buf []byte, cursor int) bool {
			if cursor+codec.MTILength > len(buf) {
				return false
			}
			window := buf[cursor : cursor+codec.MTILength]
			for _, mti := range mtis {
				if bytes.Equal(window, mti) {
					return true
				}
			}
			return false
		},
		Recovery: Recovery{Advance: EBCDICAdvance},
	}
}

// PolicyFor returns the scan policy for l.
func PolicyFor(l layout.Layout) (Policy, error) {
	switch l {
	case layout.Text:
		return TextPolicy(), nil
	case layout.EBCDIC:
		return EBCDICPolicy(), nil
	}
	return Policy{}, fmt.Errorf("no scan policy for layout %s", l)
}
