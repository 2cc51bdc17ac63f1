// Package exporter renders a consolidated summary table for download.
//
// XLSXWriter produces the workbook offered by the web page and the CLI:
//
//	data, err := exporter.NewXLSXWriter().Write(table, exporter.Meta{Files: 2})
//	name := exporter.Filename(table.Year, exporter.ExtXLSX) // riepilogo_2025.xlsx
//
// CSVWriter writes the same grid in the input dialect (semicolons, comma
// decimals, UTF-8 BOM) so spreadsheets open it without an import wizard.
//
// FormatAmount and FormatMultiplier render numbers in Italian notation for
// the HTML page, the CLI and the CSV output.
package exporter
