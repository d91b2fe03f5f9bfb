package codec

import (
	"errors"
	"fmt"
)

var (
	ErrInsufficientData = errors.New("insufficient data")
	ErrInvalidMTI       = errors.New("invalid MTI")
	ErrUndefinedField   = errors.New("field not defined in layout")
	ErrInvalidLength    = errors.New("invalid field length")
	ErrFieldTooLong     = errors.New("field exceeds maximum length")
	ErrInvalidFormat    = errors.New("invalid field format")
	ErrSubfields        = errors.New("invalid private data subfields")
)

// FieldError reports which data element a decode failed on. Field 0 is the
// MTI and field 1 the bitmap.
type FieldError struct {
	Field int
	Err   error
}

func (fe *FieldError) Error() string {
	return fmt.Sprintf("field %d: %v", fe.Field, fe.Err)
}

func (fe *FieldError) Unwrap() error { return fe.Err }
