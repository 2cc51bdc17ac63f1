package aggregator

import (
	"slices"

	"github.com/shopspring/decimal"
)

// Series filters the record to year and turns it into a day-indexed series
// of scaled daily totals. ok is false when no entry falls in year. The
// period comes from the first surviving entry; a later entry in another
// month, or a repeated day, is a ParseError.
func (r *MonthlyRecord) Series(year int, multiplier decimal.Decimal) (series *MonthSeries, ok bool, err error) {
	for _, e := range r.Entries {
		if e.Date.Year() != year {
			continue
		}

		if series == nil {
			series = &MonthSeries{
				Period: PeriodOf(e.Date),
				Source: r.Source,
				Days:   make(map[int]decimal.Decimal),
			}
		}

		if p := PeriodOf(e.Date); p != series.Period {
			return nil, false, &ParseError{
				Source: r.Source,
				Line:   e.Line,
				Column: DateColumn,
				Value:  e.Date.Format("02/01/2006"),
				Err:    ErrMultipleMonths,
			}
		}

		day := e.Date.Day()
		if _, dup := series.Days[day]; dup {
			return nil, false, &ParseError{
				Source: r.Source,
				Line:   e.Line,
				Column: DateColumn,
				Value:  e.Date.Format("02/01/2006"),
				Err:    ErrDuplicateDay,
			}
		}
		series.Days[day] = e.Sum().Mul(multiplier)
	}

	if series == nil {
		return nil, false, nil
	}
	return series, true, nil
}

// BuildTable consolidates month series into the day-by-month grid. When two
// series share a period the later one wins. An empty input yields a
// *NoDataError for year.
func BuildTable(series []*MonthSeries, year int, multiplier decimal.Decimal) (*ConsolidatedTable, error) {
	byPeriod := make(map[Period]*MonthSeries, len(series))
	for _, s := range series {
		if s != nil {
			byPeriod[s.Period] = s
		}
	}
	if len(byPeriod) == 0 {
		return nil, &NoDataError{Year: year}
	}

	periods := make([]Period, 0, len(byPeriod))
	for p := range byPeriod {
		periods = append(periods, p)
	}
	slices.SortFunc(periods, func(a, b Period) int {
		switch {
		case a.Before(b):
			return -1
		case b.Before(a):
			return 1
		}
		return 0
	})

	table := &ConsolidatedTable{
		Year:       year,
		Multiplier: multiplier,
		Columns:    make([]Column, len(periods)),
		GrandTotal: decimal.Zero,
	}

	for i, p := range periods {
		col := Column{Period: p, Total: decimal.Zero}
		for day, v := range byPeriod[p].Days {
			if day < 1 || day > DaysInTable {
				continue
			}
			value := v
			col.Values[day-1] = &value
			col.Total = col.Total.Add(v)
		}
		table.Columns[i] = col
		table.GrandTotal = table.GrandTotal.Add(col.Total)
	}

	return table, nil
}
