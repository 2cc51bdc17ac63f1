package exporter

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// Extensions of the supported export formats.
const (
	ExtXLSX = "xlsx"
	ExtCSV  = "csv"
)

// Content types of the supported export formats.
const (
	ContentTypeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	ContentTypeCSV  = "text/csv; charset=utf-8"
)

// Filename returns the download name for a year, e.g. riepilogo_2025.xlsx.
func Filename(year int, ext string) string {
	return fmt.Sprintf("riepilogo_%d.%s", year, ext)
}

// FormatAmount renders d with a comma decimal separator and dot thousands
// grouping: 1234.5 becomes "1.234,50". At least two decimals are shown and no
// significant digit is dropped, so 0.005 stays "0,005" and rendered cells
// add up to rendered totals.
func FormatAmount(d decimal.Decimal) string {
	s := d.StringFixed(max(2, decimalPlaces(d)))

	sign := ""
	if strings.HasPrefix(s, "-") {
		sign, s = "-", s[1:]
	}
	intPart, fracPart, _ := strings.Cut(s, ".")

	return sign + groupThousands(intPart) + "," + fracPart
}

// FormatMultiplier renders the multiplier as typed, keeping at least one
// decimal: 1 is "1,0", 2.25 is "2,25".
func FormatMultiplier(d decimal.Decimal) string {
	s := d.String()
	if !strings.Contains(s, ".") {
		s += ".0"
	}
	return strings.Replace(s, ".", ",", 1)
}

// decimalPlaces counts the significant fractional digits of d.
func decimalPlaces(d decimal.Decimal) int32 {
	_, frac, ok := strings.Cut(d.String(), ".")
	if !ok {
		return 0
	}
	return int32(len(frac))
}

func groupThousands(digits string) string {
	if len(digits) <= 3 {
		return digits
	}

	var b strings.Builder
	head := len(digits) % 3
	if head > 0 {
		b.WriteString(digits[:head])
	}
	for i := head; i < len(digits); i += 3 {
		if b.Len() > 0 {
			b.WriteByte('.')
		}
		b.WriteString(digits[i : i+3])
	}
	return b.String()
}
