package aggregator

import (
	"errors"
	"fmt"
	"strings"
)

// Parse failures, wrapped in a *ParseError that locates them.
var (
	ErrEmptyFile         = errors.New("file is empty")
	ErrMissingDateColumn = errors.New(`missing "Giorno" column`)
	ErrNoValueColumns    = errors.New("no value columns besides Giorno")
	ErrInvalidDate       = errors.New("invalid date, expected DD/MM/YYYY")
	ErrInvalidNumber     = errors.New("invalid number")
	ErrTooManyFields     = errors.New("row has more fields than the header")
	ErrMultipleMonths    = errors.New("file spans more than one month")
	ErrDuplicateDay      = errors.New("day appears more than once")
)

// ParseError reports a malformed input file. Line and Column are zero values
// when the failure concerns the file as a whole.
type ParseError struct {
	Source string
	Line   int
	Column string
	Value  string
	Err    error
}

func (e *ParseError) Error() string {
	var b strings.Builder
	b.WriteString(e.Source)
	if e.Line > 0 {
		fmt.Fprintf(&b, ": line %d", e.Line)
	}
	if e.Column != "" {
		fmt.Fprintf(&b, ", column %q", e.Column)
	}
	fmt.Fprintf(&b, ": %v", e.Err)
	if e.Value != "" {
		fmt.Fprintf(&b, " (%q)", e.Value)
	}
	return b.String()
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// NoDataError reports that no file had a row in the selected year.
type NoDataError struct {
	Year int
}

func (e *NoDataError) Error() string {
	return fmt.Sprintf("no data found for year %d", e.Year)
}
