package exporter

import (
	"fmt"
	"io"

	"feasibility/internal/feasibility"

	"github.com/xuri/excelize/v2"
)

// Workbook sheet names
const (
	SheetSummary   = "Summary"
	SheetCashFlows = "CashFlows"
	SheetRisks     = "Risks"
	SheetScenarios = "Scenarios"
)

// WriteAnalysisXLSX writes the analysis as a workbook with one sheet per section
func WriteAnalysisXLSX(out io.Writer, result *feasibility.AnalysisResult) error {
	if result == nil {
		return fmt.Errorf("no analysis result to export")
	}

	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", SheetSummary); err != nil {
		return fmt.Errorf("failed to rename sheet: %w", err)
	}
	if err := writeSheet(f, SheetSummary, []string{"Metric", "Value"}, summaryRows(result)); err != nil {
		return err
	}

	if err := addSheet(f, SheetCashFlows, cashFlowHeaders, cashFlowRows(result)); err != nil {
		return err
	}

	risks := riskRows(result)
	if err := addSheet(f, SheetRisks, riskHeaders, risks); err != nil {
		return err
	}
	if len(result.Risk.EarlyWarnings) > 0 {
		start := len(risks) + 3
		warnings := make([][]string, 0, len(result.Risk.EarlyWarnings))
		for _, w := range result.Risk.EarlyWarnings {
			warnings = append(warnings, []string{w})
		}
		if err := writeRows(f, SheetRisks, start, append([][]string{{"Early Warnings"}}, warnings...)); err != nil {
			return err
		}
	}

	scenarios := scenarioRows(result)
	if err := addSheet(f, SheetScenarios, scenarioHeaders, scenarios); err != nil {
		return err
	}
	start := len(scenarios) + 3
	if err := writeRows(f, SheetScenarios, start, append([][]string{rateHeaders}, rateRows(result)...)); err != nil {
		return err
	}

	f.SetActiveSheet(0)
	if _, err := f.WriteTo(out); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}

func addSheet(f *excelize.File, name string, headers []string, rows [][]string) error {
	if _, err := f.NewSheet(name); err != nil {
		return fmt.Errorf("failed to create sheet %s: %w", name, err)
	}
	return writeSheet(f, name, headers, rows)
}

func writeSheet(f *excelize.File, name string, headers []string, rows [][]string) error {
	return writeRows(f, name, 1, append([][]string{headers}, rows...))
}

// writeRows writes rows starting at the 1-based row index start
func writeRows(f *excelize.File, sheet string, start int, rows [][]string) error {
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, start+i)
		if err != nil {
			return err
		}
		values := make([]interface{}, len(row))
		for j, v := range row {
			values[j] = v
		}
		if err := f.SetSheetRow(sheet, cell, &values); err != nil {
			return fmt.Errorf("failed to write %s row %d: %w", sheet, start+i, err)
		}
	}
	return nil
}
