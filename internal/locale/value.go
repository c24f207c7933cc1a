// Package locale parses numbers and dates written in the Brazilian source
// format (comma decimal separator, day/month/year dates).
package locale

import (
	"errors"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"
)

var (
	ErrInvalidDecimal = errors.New("invalid decimal")
	ErrInvalidDate    = errors.New("invalid date")
)

// ParseError is the typed failure returned for a value that cannot be parsed.
type ParseError struct {
	Kind  error
	Input string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("%v: %q", e.Kind, e.Input)
}

func (e *ParseError) Unwrap() error { return e.Kind }

// decimalPattern admits an optionally signed run of digits with at most one
// fractional part. Exponents, hex floats and digit grouping are rejected.
var decimalPattern = regexp.MustCompile(`^[+-]?[0-9]+([.,][0-9]+)?$`)

const (
	sourceDateLayout = "2/1/2006"
	isoDateLayout    = "2006-01-02"
)

// ParseDecimal parses a plain decimal written with a comma (or period)
// separator. Only finite values are accepted.
func ParseDecimal(text string) (float64, error) {
	s := strings.TrimSpace(text)
	if !decimalPattern.MatchString(s) {
		return 0, &ParseError{Kind: ErrInvalidDecimal, Input: text}
	}
	s = strings.Replace(s, ",", ".", 1)

	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, &ParseError{Kind: ErrInvalidDecimal, Input: text}
	}
	return v, nil
}

// ParseQuantity parses a non-negative whole number, tolerating a zero
// fractional part such as "3,0".
func ParseQuantity(text string) (int, error) {
	v, err := ParseDecimal(text)
	if err != nil {
		return 0, err
	}
	if v < 0 || v != math.Trunc(v) || v > math.MaxInt32 {
		return 0, &ParseError{Kind: ErrInvalidDecimal, Input: text}
	}
	return int(v), nil
}

// ParseDate expects DD/MM/YYYY (leading zeros optional).
func ParseDate(text string) (Date, error) {
	s := strings.TrimSpace(text)
	t, err := time.Parse(sourceDateLayout, s)
	if err != nil {
		return Date{}, &ParseError{Kind: ErrInvalidDate, Input: text}
	}
	return Date{t}, nil
}

// Date is a calendar date rendered as YYYY-MM-DD.
type Date struct {
	time.Time
}

func (d Date) String() string {
	return d.Format(isoDateLayout)
}

func (d Date) MarshalJSON() ([]byte, error) {
	return []byte(`"` + d.String() + `"`), nil
}
