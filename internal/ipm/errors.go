package ipm

import (
	"errors"
	"fmt"
)

var (
	// ErrEmptyName is returned when a batch is built without a name.
	ErrEmptyName = errors.New("batch name is empty")

	// ErrNoHeader is returned when no file header message was found.
	ErrNoHeader = errors.New("no header message found")

	// ErrSubfieldRange is returned by Field.Subfield for an invalid range.
	ErrSubfieldRange = errors.New("invalid subfield range")
)

// BatchError is a fatal error for one batch file.
type BatchError struct {
	Name string
	Err  error
}

func (e *BatchError) Error() string {
	if e.Name == "" {
		return fmt.Sprintf("batch: %v", e.Err)
	}
	return fmt.Sprintf("batch %s: %v", e.Name, e.Err)
}

func (e *BatchError) Unwrap() error { return e.Err }

// FieldFormatError is returned by strict typed accessors when a present value
// does not match the requested format.
type FieldFormatError struct {
	Index   int
	Value   string
	Pattern string
	Err     error
}

func (e *FieldFormatError) Error() string {
	return fmt.Sprintf("field %d: value %q does not match %q: %v", e.Index, e.Value, e.Pattern, e.Err)
}

func (e *FieldFormatError) Unwrap() error { return e.Err }
