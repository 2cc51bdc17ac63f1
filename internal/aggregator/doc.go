// Package aggregator builds the multi-month daily summary.
//
// Each input is a semicolon-separated file exported from a spreadsheet:
//
//	Giorno;Cassa;POS
//	01/01/2025;10;0
//	02/01/2025;12,50;7,50
//
// A file contributes one column to the consolidated table: its rows in the
// selected year are summed across value columns, scaled by the multiplier and
// indexed by day of month. Columns are sorted chronologically and labeled
// MM/YYYY. Days 1 to 31 form the rows, followed by TOTALE MENSILE; the
// TOTALE GENERALE column is only filled on that last row.
//
// Arithmetic uses shopspring/decimal, so totals are exact for the decimal
// values found in the files.
//
// Aggregator.Run returns a Result instead of an error. Callers switch on
// Result.Status: a malformed file aborts the run with a *ParseError, a
// selection with no rows yields a *NoDataError, and files with no rows in
// the selected year are listed in Result.Skipped.
package aggregator
