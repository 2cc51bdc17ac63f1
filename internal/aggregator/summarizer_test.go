package aggregator

import (
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"riepilogo/internal/shared/testutil"
)

func mustRecord(t *testing.T, name string, csv *testutil.MonthCSV) *MonthlyRecord {
	t.Helper()
	record, err := ParseMonthlyRecord(name, csv.Reader())
	require.NoError(t, err)
	return record
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestSeries(t *testing.T) {
	record := mustRecord(t, "mix.csv", testutil.NewMonthCSV("A", "B").
		Row("31/12/2024", "100", "100").
		Row("01/01/2025", "1", "2").
		Row("15/01/2025", "0,5", ""))

	series, ok, err := record.Series(2025, dec("2"))
	require.NoError(t, err)
	require.True(t, ok)

	assert.Equal(t, Period{Year: 2025, Month: time.January}, series.Period)
	assert.Equal(t, "mix.csv", series.Source)
	assert.Len(t, series.Days, 2)
	assert.True(t, dec("6").Equal(series.Days[1]))
	assert.True(t, dec("1").Equal(series.Days[15]))
}

func TestSeriesNoRowsInYear(t *testing.T) {
	record := mustRecord(t, "old.csv", testutil.NewMonthCSV("A").Row("01/01/2023", "1"))

	series, ok, err := record.Series(2025, dec("1"))
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Nil(t, series)
}

func TestSeriesErrors(t *testing.T) {
	t.Run("several months", func(t *testing.T) {
		record := mustRecord(t, "two.csv", testutil.NewMonthCSV("A").
			Row("01/01/2025", "1").
			Row("01/02/2025", "1"))

		_, _, err := record.Series(2025, dec("1"))
		assert.ErrorIs(t, err, ErrMultipleMonths)

		var perr *ParseError
		require.ErrorAs(t, err, &perr)
		assert.Equal(t, 3, perr.Line)
		assert.Equal(t, "01/02/2025", perr.Value)
	})

	t.Run("other month outside the year is ignored", func(t *testing.T) {
		record := mustRecord(t, "edge.csv", testutil.NewMonthCSV("A").
			Row("01/01/2025", "1").
			Row("01/12/2024", "1"))

		_, ok, err := record.Series(2025, dec("1"))
		assert.NoError(t, err)
		assert.True(t, ok)
	})

	t.Run("repeated day", func(t *testing.T) {
		record := mustRecord(t, "dup.csv", testutil.NewMonthCSV("A").
			Row("01/01/2025", "1").
			Row("1/1/2025", "1"))

		_, _, err := record.Series(2025, dec("1"))
		assert.ErrorIs(t, err, ErrDuplicateDay)
	})
}

func TestBuildTableReferenceMonths(t *testing.T) {
	jan, _, err := mustRecord(t, "gen.csv", testutil.January2025()).Series(2025, dec("2"))
	require.NoError(t, err)
	feb, _, err := mustRecord(t, "feb.csv", testutil.February2025()).Series(2025, dec("2"))
	require.NoError(t, err)

	// given out of order on purpose
	table, err := BuildTable([]*MonthSeries{feb, jan}, 2025, dec("2"))
	require.NoError(t, err)

	assert.Equal(t, []string{"Giorno", "01/2025", "02/2025", "TOTALE GENERALE"}, table.Headers())

	janP := Period{Year: 2025, Month: time.January}
	febP := Period{Year: 2025, Month: time.February}

	v, ok := table.Value(janP, 1)
	assert.True(t, ok)
	assert.True(t, dec("20").Equal(v))
	v, _ = table.Value(janP, 2)
	assert.True(t, dec("40").Equal(v))
	v, _ = table.Value(febP, 1)
	assert.True(t, dec("10").Equal(v))

	assert.True(t, dec("60").Equal(table.Columns[0].Total))
	assert.True(t, dec("10").Equal(table.Columns[1].Total))
	assert.True(t, dec("70").Equal(table.GrandTotal))

	rows := table.Rows()
	require.Len(t, rows, 32)

	assert.Equal(t, "1", rows[0].Label)
	require.Len(t, rows[0].Cells, 3)
	assert.Nil(t, rows[0].Cells[2], "grand total column is blank on day rows")

	// absent days are blank, not zero
	assert.Nil(t, rows[1].Cells[1])
	assert.Nil(t, rows[30].Cells[0])
	_, ok = table.Value(febP, 2)
	assert.False(t, ok)

	last := rows[31]
	assert.Equal(t, "TOTALE MENSILE", last.Label)
	assert.True(t, last.IsTotal)
	assert.True(t, dec("60").Equal(*last.Cells[0]))
	assert.True(t, dec("10").Equal(*last.Cells[1]))
	assert.True(t, dec("70").Equal(*last.Cells[2]))
}

func TestBuildTableOrdersAcrossYears(t *testing.T) {
	mk := func(year int, month time.Month) *MonthSeries {
		return &MonthSeries{Period: Period{Year: year, Month: month}, Days: map[int]decimal.Decimal{1: dec("1")}}
	}

	table, err := BuildTable([]*MonthSeries{mk(2025, 3), mk(2024, 12), mk(2025, 1)}, 2025, dec("1"))
	require.NoError(t, err)

	assert.Equal(t, []string{"12/2024", "01/2025", "03/2025"}, table.Headers()[1:4])
}

func TestBuildTableLaterSeriesWins(t *testing.T) {
	p := Period{Year: 2025, Month: time.May}
	first := &MonthSeries{Period: p, Source: "a.csv", Days: map[int]decimal.Decimal{1: dec("1")}}
	second := &MonthSeries{Period: p, Source: "b.csv", Days: map[int]decimal.Decimal{2: dec("5")}}

	table, err := BuildTable([]*MonthSeries{first, second}, 2025, dec("1"))
	require.NoError(t, err)

	require.Len(t, table.Columns, 1)
	_, ok := table.Value(p, 1)
	assert.False(t, ok)
	assert.True(t, dec("5").Equal(table.GrandTotal))
}

func TestBuildTableNoData(t *testing.T) {
	_, err := BuildTable(nil, 2026, dec("1"))

	var noData *NoDataError
	require.ErrorAs(t, err, &noData)
	assert.Equal(t, 2026, noData.Year)
	assert.Equal(t, "no data found for year 2026", err.Error())
}

func TestMultiplierScalesEverything(t *testing.T) {
	csv := testutil.NewMonthCSV("A", "B").
		Row("01/04/2025", "1,25", "3").
		Row("07/04/2025", "2", "0,1").
		Row("30/04/2025", "10", "")

	build := func(m decimal.Decimal) *ConsolidatedTable {
		series, _, err := mustRecord(t, "apr.csv", csv).Series(2025, m)
		require.NoError(t, err)
		table, err := BuildTable([]*MonthSeries{series}, 2025, m)
		require.NoError(t, err)
		return table
	}

	base := build(dec("1"))
	for _, k := range []string{"0", "0,1", "2", "3,7"} {
		factor := dec(strings.Replace(k, ",", ".", 1))
		scaled := build(factor)

		assert.True(t, base.GrandTotal.Mul(factor).Equal(scaled.GrandTotal), "k=%s", k)
		assert.True(t, base.Columns[0].Total.Mul(factor).Equal(scaled.Columns[0].Total), "k=%s", k)
		for day := 0; day < DaysInTable; day++ {
			b, s := base.Columns[0].Values[day], scaled.Columns[0].Values[day]
			if b == nil {
				assert.Nil(t, s)
				continue
			}
			require.NotNil(t, s)
			assert.True(t, b.Mul(factor).Equal(*s), "k=%s day=%d", k, day+1)
		}
	}
}

func TestPeriod(t *testing.T) {
	p := Period{Year: 2025, Month: time.March}

	assert.Equal(t, "03/2025", p.Label())
	assert.Equal(t, "03/2025", p.String())
	assert.True(t, Period{Year: 2024, Month: time.December}.Before(p))
	assert.True(t, Period{Year: 2025, Month: time.February}.Before(p))
	assert.False(t, p.Before(p))
	assert.Equal(t, p, PeriodOf(time.Date(2025, time.March, 9, 0, 0, 0, 0, time.UTC)))
}
