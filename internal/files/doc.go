// Package files locates monthly input files on disk and writes results.
//
// Discovery finds CSV files in a directory and merges them with explicitly
// named files, in a stable order:
//
//	inputs, err := files.NewDiscovery(".").CollectInputs("mesi", []string{"extra.csv"})
//
// Manager writes output files atomically, so an interrupted run never leaves
// a truncated workbook behind:
//
//	err := files.NewManager(".").WriteFile("out/riepilogo_2025.xlsx", data)
package files
