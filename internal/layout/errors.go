package layout

import (
	"errors"
	"fmt"
)

// ErrNoTable is returned for a layout that has no field-definition table.
var ErrNoTable = errors.New("layout has no field-definition table")

// ConfigurationError is a fatal error raised before any file is processed,
// e.g. a missing or invalid field-definition table.
type ConfigurationError struct {
	Layout Layout
	Err    error
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("configuration error for layout %s: %v", e.Layout, e.Err)
}

func (e *ConfigurationError) Unwrap() error { return e.Err }
