package dataset

import (
	"math"
	"regexp"
	"strconv"
	"strings"

	errs "github.com/uniadvisor/uniadvisor/internal/errors"
)

// Number is an optional numeric field. The zero value is absent, which is
// distinct from a present zero.
type Number struct {
	Value float64
	Valid bool
}

// Some returns a present Number.
func Some(v float64) Number {
	return Number{Value: v, Valid: true}
}

// Or returns the value, or def when absent.
func (n Number) Or(def float64) float64 {
	if !n.Valid {
		return def
	}
	return n.Value
}

// String renders the value so that parsing it again yields the same Number.
// Absent values render as "N/A".
func (n Number) String() string {
	if !n.Valid {
		return "N/A"
	}
	return strconv.FormatFloat(n.Value, 'f', -1, 64)
}

var numberPattern = regexp.MustCompile(`\d+\.\d+|\d+`)

// feePattern accepts plain decimal notation only; hex floats, "Inf" and
// "NaN" are not fees.
var feePattern = regexp.MustCompile(`^[+-]?(\d+\.?\d*|\.\d+)([eE][+-]?\d+)?$`)

// ParseFees parses a tuition fee after stripping thousands separators.
// Empty input is absent without error; anything else that is not a finite
// decimal number is absent with a *errors.FieldParseError.
func ParseFees(raw string) (Number, error) {
	s := strings.TrimSpace(strings.ReplaceAll(raw, ",", ""))
	if s == "" {
		return Number{}, nil
	}
	if !feePattern.MatchString(s) {
		return Number{}, errs.NewFieldParseError(ColTuitionFees, raw, strconv.ErrSyntax)
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return Number{}, errs.NewFieldParseError(ColTuitionFees, raw, err)
	}
	if math.IsInf(v, 0) {
		return Number{}, errs.NewFieldParseError(ColTuitionFees, raw, strconv.ErrSyntax)
	}
	return Some(v), nil
}

// ExtractNumber returns the first number embedded in free text such as
// "Minimum 6.5 overall" or "3.0 GPA". Text without digits is absent with a
// *errors.FieldParseError naming field.
func ExtractNumber(field, raw string) (Number, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return Number{}, nil
	}
	m := numberPattern.FindString(s)
	if m == "" {
		return Number{}, errs.NewFieldParseError(field, raw, strconv.ErrSyntax)
	}
	v, err := strconv.ParseFloat(m, 64)
	if err != nil {
		return Number{}, errs.NewFieldParseError(field, raw, err)
	}
	return Some(v), nil
}
