package exporter

import (
	"encoding/csv"
	"fmt"
	"io"

	"riepilogo/internal/aggregator"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// CSVWriter writes a consolidated table in the semicolon dialect.
type CSVWriter struct {
	// BOMPrefix adds a UTF-8 BOM so Excel recognizes the encoding
	BOMPrefix bool
}

// NewCSVWriter creates a CSV writer that emits a BOM.
func NewCSVWriter() *CSVWriter {
	return &CSVWriter{BOMPrefix: true}
}

// Write writes the header row, the 31 day rows and the monthly totals row.
// Blank cells stay empty.
func (cw *CSVWriter) Write(w io.Writer, table *aggregator.ConsolidatedTable) error {
	if table == nil {
		return fmt.Errorf("nil table")
	}

	if cw.BOMPrefix {
		if _, err := w.Write(utf8BOM); err != nil {
			return fmt.Errorf("failed to write BOM: %w", err)
		}
	}

	writer := csv.NewWriter(w)
	writer.Comma = ';'
	writer.UseCRLF = true

	if err := writer.Write(table.Headers()); err != nil {
		return fmt.Errorf("failed to write headers: %w", err)
	}

	for i, row := range table.Rows() {
		record := make([]string, 0, len(row.Cells)+1)
		record = append(record, row.Label)
		for _, c := range row.Cells {
			if c == nil {
				record = append(record, "")
				continue
			}
			record = append(record, FormatAmount(*c))
		}
		if err := writer.Write(record); err != nil {
			return fmt.Errorf("failed to write record %d: %w", i, err)
		}
	}

	writer.Flush()
	return writer.Error()
}
