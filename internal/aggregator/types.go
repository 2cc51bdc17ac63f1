package aggregator

import (
	"fmt"
	"io"
	"time"

	"github.com/shopspring/decimal"
)

// Labels shared by every rendering of a consolidated table.
const (
	DateColumn        = "Giorno"
	MonthlyTotalLabel = "TOTALE MENSILE"
	GrandTotalLabel   = "TOTALE GENERALE"
)

// DaysInTable is the number of day rows, whatever the month length.
const DaysInTable = 31

// dateLayout accepts both 1/2/2025 and 01/02/2025.
const dateLayout = "2/1/2006"

// Period identifies one output column.
type Period struct {
	Year  int
	Month time.Month
}

// PeriodOf returns the period containing t.
func PeriodOf(t time.Time) Period {
	return Period{Year: t.Year(), Month: t.Month()}
}

// Label renders the period as MM/YYYY.
func (p Period) Label() string {
	return fmt.Sprintf("%02d/%04d", int(p.Month), p.Year)
}

func (p Period) String() string {
	return p.Label()
}

// Before reports whether p is chronologically earlier than o.
func (p Period) Before(o Period) bool {
	if p.Year != o.Year {
		return p.Year < o.Year
	}
	return p.Month < o.Month
}

// Input is one uploaded or discovered file.
type Input struct {
	Name   string
	Reader io.Reader
}

// Options controls a run.
type Options struct {
	Year       int
	Multiplier decimal.Decimal
}

// DailyEntry is one data row of a monthly file. Empty value cells are kept
// as invalid NullDecimals and contribute nothing to the sum.
type DailyEntry struct {
	Date   time.Time
	Values []decimal.NullDecimal
	Line   int
}

// Sum adds every present value of the row.
func (e DailyEntry) Sum() decimal.Decimal {
	total := decimal.Zero
	for _, v := range e.Values {
		if v.Valid {
			total = total.Add(v.Decimal)
		}
	}
	return total
}

// MonthlyRecord is the parsed content of one file.
type MonthlyRecord struct {
	Source  string
	Columns []string
	Entries []DailyEntry
}

// MonthSeries maps day of month to the scaled daily total for one period.
type MonthSeries struct {
	Period Period
	Source string
	Days   map[int]decimal.Decimal
}

// Column is one period of the consolidated table. Values is indexed by day-1;
// nil marks a day absent from the source file.
type Column struct {
	Period Period
	Values [DaysInTable]*decimal.Decimal
	Total  decimal.Decimal
}

// ConsolidatedTable is the day-by-month grid with its totals.
type ConsolidatedTable struct {
	Year       int
	Multiplier decimal.Decimal
	Columns    []Column
	GrandTotal decimal.Decimal
}

// TableRow is one rendered row: a label and one cell per header after the
// first. Nil cells are blank.
type TableRow struct {
	Label   string
	IsTotal bool
	Cells   []*decimal.Decimal
}

// Headers returns the index header, the period labels and the grand total header.
func (t *ConsolidatedTable) Headers() []string {
	headers := make([]string, 0, len(t.Columns)+2)
	headers = append(headers, DateColumn)
	for _, c := range t.Columns {
		headers = append(headers, c.Period.Label())
	}
	return append(headers, GrandTotalLabel)
}

// Rows renders days 1 to 31 followed by the monthly totals row. The grand
// total column is blank everywhere except on the totals row.
func (t *ConsolidatedTable) Rows() []TableRow {
	rows := make([]TableRow, 0, DaysInTable+1)

	for day := 1; day <= DaysInTable; day++ {
		cells := make([]*decimal.Decimal, len(t.Columns)+1)
		for i := range t.Columns {
			cells[i] = t.Columns[i].Values[day-1]
		}
		rows = append(rows, TableRow{Label: fmt.Sprintf("%d", day), Cells: cells})
	}

	totals := make([]*decimal.Decimal, len(t.Columns)+1)
	for i := range t.Columns {
		total := t.Columns[i].Total
		totals[i] = &total
	}
	grand := t.GrandTotal
	totals[len(t.Columns)] = &grand

	return append(rows, TableRow{Label: MonthlyTotalLabel, IsTotal: true, Cells: totals})
}

// Value returns the cell for day in the column of period, if present.
func (t *ConsolidatedTable) Value(p Period, day int) (decimal.Decimal, bool) {
	if day < 1 || day > DaysInTable {
		return decimal.Decimal{}, false
	}
	for _, c := range t.Columns {
		if c.Period == p && c.Values[day-1] != nil {
			return *c.Values[day-1], true
		}
	}
	return decimal.Decimal{}, false
}
