// =============================================================================
// IPM to XML Converter - Field Table Validation
// =============================================================================
//
// This module checks a field-definition table before the message codec is
// built from it. A table that fails validation is a configuration error: no
// file is processed with it.
//
// RULES (severity "error" unless noted):
//   - index:       data element numbers are 2-128 (1 is the bitmap)
//   - type:        n, an, ans or b
//   - length:      fixed, llvar or lllvar
//   - max:         > 0, <= 99 for llvar, <= 999 for lllvar
//   - subfields:   only "pds", only on variable-length character elements,
//                  at most one element per table
//   - name:        empty names are reported as a warning
//
// ERROR HANDLING:
//   - Errors are collected, not returned one at a time
//   - Warnings never make a table invalid unless TreatWarningsAsErrors is set
//
// =============================================================================

package validation

import (
	"fmt"
	"strings"

	"github.com/ginjaninja78/IPM-to-XML-conversion/internal/layout"
)

// =============================================================================
// VALIDATION ERROR TYPES
// =============================================================================

// Severity levels.
const (
	SeverityError   = "error"
	SeverityWarning = "warning"
)

// ValidationError is one rule violation.
type ValidationError struct {
	// Severity is SeverityError or SeverityWarning.
	Severity string

	// Table is the name of the table being validated.
	Table string

	// Field is the data element index the rule applies to.
	Field int

	// Rule is the name of the violated rule.
	Rule string

	// Message is a human-readable description.
	Message string
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	return fmt.Sprintf("[%s] table %s, field %d (%s): %s",
		strings.ToUpper(e.Severity), e.Table, e.Field, e.Rule, e.Message)
}

// =============================================================================
// VALIDATION RESULT
// =============================================================================

// ValidationResult contains the results of validating one table.
type ValidationResult struct {
	// IsValid is true if there are no fatal errors.
	IsValid bool

	// Errors contains all validation errors, warnings included.
	Errors []*ValidationError

	ErrorCount   int
	WarningCount int

	// FieldsValidated is the number of definitions checked.
	FieldsValidated int
}

// Err returns nil for a valid result, or an error listing every violation.
func (r *ValidationResult) Err() error {
	if r.IsValid {
		return nil
	}
	return fmt.Errorf("field table validation failed:\n%s", FormatErrors(r.Errors))
}

// =============================================================================
// VALIDATOR
// =============================================================================

// ValidationOptions contains options for validation.
type ValidationOptions struct {
	// StopOnFirstError stops validation after the first fatal error.
	StopOnFirstError bool

	// TreatWarningsAsErrors makes warnings invalidate the table.
	TreatWarningsAsErrors bool
}

// DefaultValidationOptions returns the default validation options.
func DefaultValidationOptions() ValidationOptions {
	return ValidationOptions{}
}

// Validator checks field-definition tables.
type Validator struct {
	options ValidationOptions
}

// NewValidator creates a Validator with default options.
func NewValidator() *Validator {
	return &Validator{options: DefaultValidationOptions()}
}

// NewValidatorWithOptions creates a Validator with custom options.
func NewValidatorWithOptions(options ValidationOptions) *Validator {
	return &Validator{options: options}
}

// ValidateTable validates t with default options.
func ValidateTable(t *layout.Table) *ValidationResult {
	return NewValidator().Validate(t)
}

// Validate checks every definition in t.
func (v *Validator) Validate(t *layout.Table) *ValidationResult {
	result := &ValidationResult{
		IsValid: true,
		Errors:  make([]*ValidationError, 0),
	}

	pdsFields := 0
	for _, def := range t.Definitions() {
		result.FieldsValidated++

		if def.Subfields == layout.SubfieldsPDS {
			pdsFields++
			if pdsFields > 1 {
				v.add(result, &ValidationError{
					Severity: SeverityError,
					Table:    t.Name,
					Field:    def.Index,
					Rule:     "subfields",
					Message:  "only one private-data element is allowed per table",
				})
			}
		}

		for _, err := range v.ValidateField(t.Name, def) {
			v.add(result, err)
			if v.options.StopOnFirstError && !result.IsValid {
				return result
			}
		}
	}

	if result.FieldsValidated == 0 {
		v.add(result, &ValidationError{
			Severity: SeverityError,
			Table:    t.Name,
			Rule:     "fields",
			Message:  "table defines no fields",
		})
	}

	return result
}

// ValidateField checks a single definition.
func (v *Validator) ValidateField(table string, def layout.FieldDefinition) []*ValidationError {
	var errors []*ValidationError

	fail := func(rule, format string, args ...interface{}) {
		errors = append(errors, &ValidationError{
			Severity: SeverityError,
			Table:    table,
			Field:    def.Index,
			Rule:     rule,
			Message:  fmt.Sprintf(format, args...),
		})
	}

	if def.Index < 2 || def.Index > 128 {
		fail("index", "index must be between 2 and 128")
	}

	switch def.Type {
	case layout.TypeNumeric, layout.TypeAlphaNumeric, layout.TypeCharacter, layout.TypeBinary:
	default:
		fail("type", "unknown field type %q", def.Type)
	}

	switch def.Length {
	case layout.Fixed:
	case layout.LLVar:
		if def.MaxLength > 99 {
			fail("max", "llvar maximum %d exceeds 99", def.MaxLength)
		}
	case layout.LLLVar:
		if def.MaxLength > 999 {
			fail("max", "lllvar maximum %d exceeds 999", def.MaxLength)
		}
	default:
		fail("length", "unknown length type %q", def.Length)
	}

	if def.MaxLength <= 0 {
		fail("max", "maximum length must be positive")
	}

	if def.Subfields != "" {
		switch {
		case def.Subfields != layout.SubfieldsPDS:
			fail("subfields", "unknown subfield format %q", def.Subfields)
		case def.Length == layout.Fixed:
			fail("subfields", "private data must be variable length")
		case def.Type != layout.TypeCharacter && def.Type != layout.TypeAlphaNumeric:
			fail("subfields", "private data must be a character element")
		}
	}

	if strings.TrimSpace(def.Name) == "" {
		errors = append(errors, &ValidationError{
			Severity: SeverityWarning,
			Table:    table,
			Field:    def.Index,
			Rule:     "name",
			Message:  "field has no name",
		})
	}

	return errors
}

// add records err in result and updates the counters.
func (v *Validator) add(result *ValidationResult, err *ValidationError) {
	result.Errors = append(result.Errors, err)

	if err.Severity == SeverityError {
		result.ErrorCount++
		result.IsValid = false
		return
	}

	result.WarningCount++
	if v.options.TreatWarningsAsErrors {
		result.IsValid = false
	}
}

// =============================================================================
// ERROR FORMATTING
// =============================================================================

// FormatErrors formats validation errors for display or logging.
func FormatErrors(errors []*ValidationError) string {
	if len(errors) == 0 {
		return "No validation errors."
	}

	var builder strings.Builder
	for i, err := range errors {
		builder.WriteString(fmt.Sprintf("%d. %s\n", i+1, err.Error()))
	}
	return builder.String()
}
