package ipm

import (
	"fmt"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/shopspring/decimal"
)

// Rendering tags.
const (
	TagMTI     = "mti"
	TagElement = "de"
	TagPDS     = "pds"
)

// Field is one value of a Transaction. The zero value of a missing field has
// an empty value and reports Present() == false.
type Field struct {
	index   int
	value   string
	private bool
}

// Index returns the data element or subfield number. Index 0 is the MTI.
func (f Field) Index() int { return f.index }

// String returns the raw value, or "" when the field is absent.
func (f Field) String() string { return f.value }

// Present reports whether the field carries a value.
func (f Field) Present() bool { return f.value != "" }

// Private reports whether the field belongs to a private-data subfield set.
func (f Field) Private() bool { return f.private }

// Tag returns the element name the field is rendered under. Index 0 is
// always the MTI tag, subfield sets included.
func (f Field) Tag() string {
	switch {
	case f.index == 0:
		return TagMTI
	case f.private:
		return TagPDS
	}
	return TagElement
}

// Flag returns the first character of the value.
func (f Field) Flag() (rune, bool) {
	if f.value == "" {
		return 0, false
	}
	r, _ := utf8.DecodeRuneInString(f.value)
	return r, true
}

// Number parses the value as a base-10 integer. Absent or unparsable values
// yield 0.
func (f Field) Number() int64 {
	n, err := strconv.ParseInt(strings.TrimSpace(f.value), 10, 64)
	if err != nil {
		return 0
	}
	return n
}

// Currency reads the value as an amount in minor units and returns it scaled
// by 10^-scale, rounded half to even at scale decimal places.
//
// PARAMETERS:
//   - scale: number of minor-unit digits (the currency exponent). Negative
//     scales are treated as 0.
//
// RETURNS:
//   - The amount. Absent or unparsable values yield zero at that scale.
func (f Field) Currency(scale int) decimal.Decimal {
	if scale < 0 {
		scale = 0
	}
	zero := decimal.New(0, -int32(scale))

	v := strings.TrimSpace(f.value)
	if v == "" {
		return zero
	}
	d, err := decimal.NewFromString(v)
	if err != nil {
		return zero
	}
	return d.Shift(-int32(scale)).RoundBank(int32(scale))
}

// CurrencyScale is Currency with the scale given as text, as found in
// currency exponent data elements. An unparsable scale is treated as 0.
func (f Field) CurrencyScale(scale string) decimal.Decimal {
	s, err := strconv.Atoi(strings.TrimSpace(scale))
	if err != nil {
		s = 0
	}
	return f.Currency(s)
}

// CurrencyExponent is Currency with the scale read from another field.
func (f Field) CurrencyExponent(exponent Field) decimal.Decimal {
	return f.Currency(int(exponent.Number()))
}

// datePattern maps date pattern tokens to Go reference layout elements.
// Longer tokens come first so "yyyy" wins over "yy".
var datePattern = strings.NewReplacer(
	"yyyy", "2006",
	"yy", "06",
	"MM", "01",
	"dd", "02",
	"HH", "15",
	"mm", "04",
	"ss", "05",
)

// Date parses the value with pattern, which is either a Go reference layout
// or a token pattern such as "yyMMdd" or "yyyyMMddHHmmss".
//
// RETURNS:
//   - The parsed time (UTC) and true.
//   - The zero time, false and a nil error when the field is absent.
//   - A *FieldFormatError when a present value does not match.
func (f Field) Date(pattern string) (time.Time, bool, error) {
	if f.value == "" {
		return time.Time{}, false, nil
	}
	t, err := time.Parse(datePattern.Replace(pattern), f.value)
	if err != nil {
		return time.Time{}, false, &FieldFormatError{
			Index:   f.index,
			Value:   f.value,
			Pattern: pattern,
			Err:     err,
		}
	}
	return t, true, nil
}

// Subfield returns characters start through end (1-based, inclusive) of the
// value as a field with the same index. When the value is shorter than end
// the result is absent.
func (f Field) Subfield(start, end int) (Field, error) {
	if start < 1 || end < start {
		return Field{}, fmt.Errorf("%w: %d-%d", ErrSubfieldRange, start, end)
	}

	sub := Field{index: f.index, private: f.private}
	runes := []rune(f.value)
	if len(runes) < end {
		return sub, nil
	}
	sub.value = string(runes[start-1 : end])
	return sub, nil
}
