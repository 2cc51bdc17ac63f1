package testutil

import (
	"io"
	"strings"
)

// MonthCSV builds a monthly input file in the semicolon dialect: a Giorno
// column followed by value columns, with comma decimals left to the caller.
type MonthCSV struct {
	header []string
	rows   [][]string
}

// NewMonthCSV starts a file whose value columns are named columns.
func NewMonthCSV(columns ...string) *MonthCSV {
	return &MonthCSV{header: append([]string{"Giorno"}, columns...)}
}

// Row appends a data row: the date in DD/MM/YYYY, then one cell per column.
func (m *MonthCSV) Row(date string, values ...string) *MonthCSV {
	m.rows = append(m.rows, append([]string{date}, values...))
	return m
}

// String renders the file with CRLF line endings, as spreadsheet exports do.
func (m *MonthCSV) String() string {
	var b strings.Builder
	b.WriteString(strings.Join(m.header, ";"))
	b.WriteString("\r\n")
	for _, row := range m.rows {
		b.WriteString(strings.Join(row, ";"))
		b.WriteString("\r\n")
	}
	return b.String()
}

// Bytes renders the file as UTF-8 bytes.
func (m *MonthCSV) Bytes() []byte {
	return []byte(m.String())
}

// Reader renders the file as a reader.
func (m *MonthCSV) Reader() io.Reader {
	return strings.NewReader(m.String())
}

// January2025 is one of the two reference months: days 1 and 2 worth 10 and 20.
func January2025() *MonthCSV {
	return NewMonthCSV("Valore").
		Row("01/01/2025", "10").
		Row("02/01/2025", "20")
}

// February2025 is the other reference month: day 1 worth 5.
func February2025() *MonthCSV {
	return NewMonthCSV("Valore").
		Row("01/02/2025", "5")
}
