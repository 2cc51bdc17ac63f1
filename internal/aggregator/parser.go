package aggregator

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/shopspring/decimal"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// ParseMonthlyRecord reads one semicolon-separated file with a Giorno column
// in DD/MM/YYYY and numeric value columns using comma decimals. Every data
// row is parsed, whatever its year; filtering happens in Series.
func ParseMonthlyRecord(name string, r io.Reader) (*MonthlyRecord, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, &ParseError{Source: name, Err: fmt.Errorf("read: %w", err)}
	}

	reader := csv.NewReader(decodeText(data))
	reader.Comma = ';'
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return nil, &ParseError{Source: name, Err: ErrEmptyFile}
	}
	if err != nil {
		return nil, csvError(name, err)
	}

	dateIdx := -1
	var valueIdx []int
	record := &MonthlyRecord{Source: name}
	for i, h := range header {
		h = strings.TrimSpace(h)
		if h == DateColumn && dateIdx < 0 {
			dateIdx = i
			continue
		}
		valueIdx = append(valueIdx, i)
		record.Columns = append(record.Columns, h)
	}

	if dateIdx < 0 {
		return nil, &ParseError{Source: name, Line: 1, Column: DateColumn, Err: ErrMissingDateColumn}
	}
	if len(valueIdx) == 0 {
		return nil, &ParseError{Source: name, Line: 1, Err: ErrNoValueColumns}
	}

	for {
		fields, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, csvError(name, err)
		}

		line, _ := reader.FieldPos(0)
		if len(fields) > len(header) {
			// trailing delimiters are tolerated, extra data is not
			for _, extra := range fields[len(header):] {
				if strings.TrimSpace(extra) != "" {
					return nil, &ParseError{Source: name, Line: line, Err: ErrTooManyFields}
				}
			}
		}

		rawDate := strings.TrimSpace(cell(fields, dateIdx))
		if rawDate == "" {
			continue
		}
		date, err := time.Parse(dateLayout, rawDate)
		if err != nil {
			return nil, &ParseError{Source: name, Line: line, Column: DateColumn, Value: rawDate, Err: ErrInvalidDate}
		}

		entry := DailyEntry{Date: date, Line: line, Values: make([]decimal.NullDecimal, len(valueIdx))}
		for j, idx := range valueIdx {
			raw := cell(fields, idx)
			v, err := ParseAmount(raw)
			if err != nil {
				return nil, &ParseError{Source: name, Line: line, Column: record.Columns[j], Value: strings.TrimSpace(raw), Err: ErrInvalidNumber}
			}
			entry.Values[j] = v
		}
		record.Entries = append(record.Entries, entry)
	}

	return record, nil
}

// ParseAmount parses an Italian-style number: comma decimals with optional
// dot thousands grouping ("1.234,56"). A bare dot is only accepted as
// grouping ("1.234" is 1234). An empty cell yields an invalid NullDecimal.
func ParseAmount(s string) (decimal.NullDecimal, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.NullDecimal{}, nil
	}

	intPart, fracPart, hasComma := strings.Cut(s, ",")
	if strings.Contains(fracPart, ",") || strings.Contains(fracPart, ".") {
		return decimal.NullDecimal{}, ErrInvalidNumber
	}
	if hasComma && fracPart == "" {
		return decimal.NullDecimal{}, ErrInvalidNumber
	}

	if strings.Contains(intPart, ".") {
		if !validGrouping(intPart) {
			return decimal.NullDecimal{}, ErrInvalidNumber
		}
		intPart = strings.ReplaceAll(intPart, ".", "")
	}

	normalized := intPart
	if hasComma {
		normalized += "." + fracPart
	}

	d, err := decimal.NewFromString(normalized)
	if err != nil {
		return decimal.NullDecimal{}, ErrInvalidNumber
	}
	return decimal.NewNullDecimal(d), nil
}

// validGrouping reports whether s is an optionally signed integer written in
// dot-separated groups of three digits after a leading group of one to three.
func validGrouping(s string) bool {
	s = strings.TrimLeft(s, "+-")
	groups := strings.Split(s, ".")
	for i, g := range groups {
		if i == 0 && (len(g) < 1 || len(g) > 3) {
			return false
		}
		if i > 0 && len(g) != 3 {
			return false
		}
		for _, c := range g {
			if c < '0' || c > '9' {
				return false
			}
		}
	}
	return true
}

// decodeText strips a UTF-8 BOM and decodes anything that is not valid UTF-8
// as Windows-1252, the usual encoding of Italian spreadsheet exports.
func decodeText(data []byte) io.Reader {
	data = bytes.TrimPrefix(data, utf8BOM)
	if utf8.Valid(data) {
		return bytes.NewReader(data)
	}
	return transform.NewReader(bytes.NewReader(data), charmap.Windows1252.NewDecoder())
}

func cell(fields []string, idx int) string {
	if idx < len(fields) {
		return fields[idx]
	}
	return ""
}

func csvError(name string, err error) error {
	var perr *csv.ParseError
	if errors.As(err, &perr) {
		return &ParseError{Source: name, Line: perr.Line, Err: perr.Err}
	}
	return &ParseError{Source: name, Err: err}
}
