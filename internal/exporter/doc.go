// Package exporter renders analysis results as report files.
//
// Three formats are supported:
//
//	- json: the AnalysisResult document, indented
//	- csv:  a summary block followed by the cash-flow schedule, UTF-8 with
//	        a BOM so spreadsheet tools pick the right encoding
//	- xlsx: one workbook with Summary, CashFlows, Risks and Scenarios sheets
//
// Money and scores are printed with two decimals through shopspring/decimal so
// the reports match the rounded values of the result.
//
// CSVWriter writes arbitrary record sets under a base directory; the CLI uses
// it with BatchHeaders and BatchRecord for the summary of a batch run.
//
// Example usage:
//
//	f, _ := os.Create("report.xlsx")
//	defer f.Close()
//	err := exporter.Export(f, exporter.FormatXLSX, result)
package exporter
