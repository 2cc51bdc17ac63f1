// Package shared holds code used by several riepilogo packages that belongs to
// no single layer.
//
// The testutil subpackage provides:
//
//   - BufferedSlogHandler, a slog.Handler that captures records for assertions
//   - MonthCSV, a builder for semicolon-separated monthly input files
//
// Example usage:
//
//	func TestSomething(t *testing.T) {
//	    logger, logs := testutil.NewTestLogger(t)
//	    csv := testutil.NewMonthCSV("Cassa", "POS").
//	        Row("01/01/2025", "10", "0").
//	        String()
//	    ...
//	    testutil.AssertNoErrors(t, logs)
//	}
//
// Nothing in this tree may import testutil outside of _test.go files.
package shared
