package exporter

import (
	"fmt"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"riepilogo/internal/aggregator"
	"riepilogo/internal/config"
)

// Sheet names of the generated workbook.
const (
	SummarySheet    = "Riepilogo"
	ParametersSheet = "Parametri"
)

const (
	headerFill = "#4472C4"
	// two decimals at least, more when the value has them
	amountNumFmt = "#,##0.00########"
)

// Meta describes the run that produced a table. It fills the Parametri sheet.
type Meta struct {
	Files       int
	Skipped     []string
	GeneratedAt time.Time
}

// XLSXWriter renders a consolidated table as an Excel workbook.
type XLSXWriter struct {
	now func() time.Time
}

// NewXLSXWriter creates a workbook writer.
func NewXLSXWriter() *XLSXWriter {
	return &XLSXWriter{now: time.Now}
}

type xlsxStyles struct {
	header      int
	amount      int
	totalLabel  int
	totalAmount int
}

// Write builds the workbook in memory and returns its bytes.
func (xw *XLSXWriter) Write(table *aggregator.ConsolidatedTable, meta Meta) ([]byte, error) {
	if table == nil {
		return nil, fmt.Errorf("nil table")
	}
	if meta.GeneratedAt.IsZero() {
		meta.GeneratedAt = xw.now()
	}

	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", SummarySheet); err != nil {
		return nil, fmt.Errorf("rename sheet: %w", err)
	}

	styles, err := newStyles(f)
	if err != nil {
		return nil, err
	}

	if err := writeSummarySheet(f, table, styles); err != nil {
		return nil, err
	}
	if err := writeParametersSheet(f, table, meta, styles); err != nil {
		return nil, err
	}

	if err := f.SetDocProps(&excelize.DocProperties{
		Title:       fmt.Sprintf("Riepilogo %d", table.Year),
		Subject:     "Riepilogo multi-mese",
		Creator:     config.AppName,
		Created:     meta.GeneratedAt.UTC().Format(time.RFC3339),
		Description: fmt.Sprintf("Anno %d, moltiplicatore x%s", table.Year, FormatMultiplier(table.Multiplier)),
		Language:    "it-IT",
	}); err != nil {
		return nil, fmt.Errorf("set document properties: %w", err)
	}
	f.SetActiveSheet(0)

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("write workbook: %w", err)
	}
	return buf.Bytes(), nil
}

func newStyles(f *excelize.File) (xlsxStyles, error) {
	var s xlsxStyles
	var err error

	s.header, err = f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Color: "#FFFFFF"},
		Fill: excelize.Fill{
			Type:    "pattern",
			Color:   []string{headerFill},
			Pattern: 1,
		},
		Alignment: &excelize.Alignment{
			Horizontal: "center",
			Vertical:   "center",
		},
	})
	if err != nil {
		return s, fmt.Errorf("header style: %w", err)
	}

	numFmt := amountNumFmt
	s.amount, err = f.NewStyle(&excelize.Style{CustomNumFmt: &numFmt})
	if err != nil {
		return s, fmt.Errorf("amount style: %w", err)
	}

	s.totalLabel, err = f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Border: []excelize.Border{
			{Type: "top", Color: "000000", Style: 1},
		},
	})
	if err != nil {
		return s, fmt.Errorf("total label style: %w", err)
	}

	s.totalAmount, err = f.NewStyle(&excelize.Style{
		CustomNumFmt: &numFmt,
		Font:         &excelize.Font{Bold: true},
		Border: []excelize.Border{
			{Type: "top", Color: "000000", Style: 1},
		},
	})
	if err != nil {
		return s, fmt.Errorf("total amount style: %w", err)
	}

	return s, nil
}

func writeSummarySheet(f *excelize.File, table *aggregator.ConsolidatedTable, styles xlsxStyles) error {
	sheet := SummarySheet
	headers := table.Headers()

	for i, h := range headers {
		cell, err := excelize.CoordinatesToCellName(i+1, 1)
		if err != nil {
			return err
		}
		if err := f.SetCellStr(sheet, cell, h); err != nil {
			return err
		}
	}
	lastCol, err := excelize.ColumnNumberToName(len(headers))
	if err != nil {
		return err
	}
	if err := f.SetCellStyle(sheet, "A1", lastCol+"1", styles.header); err != nil {
		return err
	}

	for r, row := range table.Rows() {
		rowNum := r + 2

		label, _ := excelize.CoordinatesToCellName(1, rowNum)
		if row.IsTotal {
			if err := f.SetCellStr(sheet, label, row.Label); err != nil {
				return err
			}
		} else if err := f.SetCellInt(sheet, label, int64(r+1)); err != nil {
			return err
		}

		for c, value := range row.Cells {
			if value == nil {
				continue
			}
			cell, err := excelize.CoordinatesToCellName(c+2, rowNum)
			if err != nil {
				return err
			}
			if err := f.SetCellFloat(sheet, cell, value.InexactFloat64(), -1, 64); err != nil {
				return err
			}
		}

		style := styles.amount
		if row.IsTotal {
			style = styles.totalAmount
			if err := f.SetCellStyle(sheet, label, label, styles.totalLabel); err != nil {
				return err
			}
		}
		first, _ := excelize.CoordinatesToCellName(2, rowNum)
		last, _ := excelize.CoordinatesToCellName(len(headers), rowNum)
		if err := f.SetCellStyle(sheet, first, last, style); err != nil {
			return err
		}
	}

	if err := f.SetColWidth(sheet, "A", "A", 18); err != nil {
		return err
	}
	if err := f.SetColWidth(sheet, "B", lastCol, 14); err != nil {
		return err
	}
	if err := f.SetColWidth(sheet, lastCol, lastCol, 18); err != nil {
		return err
	}

	return f.SetPanes(sheet, &excelize.Panes{
		Freeze:      true,
		XSplit:      1,
		YSplit:      1,
		TopLeftCell: "B2",
		ActivePane:  "bottomRight",
	})
}

func writeParametersSheet(f *excelize.File, table *aggregator.ConsolidatedTable, meta Meta, styles xlsxStyles) error {
	sheet := ParametersSheet
	if _, err := f.NewSheet(sheet); err != nil {
		return fmt.Errorf("create sheet: %w", err)
	}

	skipped := "-"
	if len(meta.Skipped) > 0 {
		skipped = strings.Join(meta.Skipped, ", ")
	}

	rows := [][]any{
		{"Parametro", "Valore"},
		{"Anno", table.Year},
		{"Moltiplicatore", table.Multiplier.InexactFloat64()},
		{"File elaborati", meta.Files},
		{"File senza dati per l'anno", skipped},
		{"Mesi nel riepilogo", len(table.Columns)},
		{"Generato il", meta.GeneratedAt.Format("02/01/2006 15:04:05")},
	}
	for i, row := range rows {
		cell, _ := excelize.CoordinatesToCellName(1, i+1)
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return err
		}
	}

	if err := f.SetCellStyle(sheet, "A1", "B1", styles.header); err != nil {
		return err
	}
	return f.SetColWidth(sheet, "A", "B", 28)
}
