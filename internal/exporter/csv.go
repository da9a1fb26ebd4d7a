package exporter

import (
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"feasibility/internal/feasibility"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// CSVWriter provides CSV export functionality
type CSVWriter struct {
	baseDir string
	logger  *slog.Logger
}

// NewCSVWriter creates a CSV writer. Relative paths resolve against baseDir.
func NewCSVWriter(baseDir string, logger *slog.Logger) *CSVWriter {
	if logger == nil {
		logger = slog.Default()
	}
	return &CSVWriter{baseDir: baseDir, logger: logger}
}

// WriteOptions configures CSV writing behavior
type WriteOptions struct {
	Headers   []string
	Records   [][]string
	Append    bool
	BOMPrefix bool // Add UTF-8 BOM for Excel compatibility
}

// WriteCSV writes data to a CSV file with the given options
func (w *CSVWriter) WriteCSV(filePath string, options WriteOptions) error {
	fullPath := w.resolvePath(filePath)

	w.logger.Info("writing csv file",
		slog.String("file_path", filePath),
		slog.String("full_path", fullPath),
		slog.Int("record_count", len(options.Records)))

	if err := os.MkdirAll(filepath.Dir(fullPath), 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	flags := os.O_CREATE | os.O_WRONLY
	if options.Append {
		flags |= os.O_APPEND
	} else {
		flags |= os.O_TRUNC
	}

	file, err := os.OpenFile(fullPath, flags, 0644)
	if err != nil {
		return fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	if options.BOMPrefix && !options.Append {
		if _, err := file.Write(utf8BOM); err != nil {
			return fmt.Errorf("failed to write BOM: %w", err)
		}
	}

	writer := csv.NewWriter(file)
	if !options.Append && len(options.Headers) > 0 {
		if err := writer.Write(options.Headers); err != nil {
			return fmt.Errorf("failed to write headers: %w", err)
		}
	}
	for i, record := range options.Records {
		if err := writer.Write(record); err != nil {
			return fmt.Errorf("failed to write record %d: %w", i, err)
		}
	}
	writer.Flush()

	return writer.Error()
}

// WriteAnalysis writes the analysis report to a file
func (w *CSVWriter) WriteAnalysis(filePath string, result *feasibility.AnalysisResult) error {
	fullPath := w.resolvePath(filePath)
	if err := os.MkdirAll(filepath.Dir(fullPath), 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	file, err := os.Create(fullPath)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	if err := WriteAnalysisCSV(file, result); err != nil {
		file.Close()
		return err
	}

	w.logger.Info("analysis csv written",
		slog.String("project_id", result.ProjectID),
		slog.String("full_path", fullPath))
	return file.Close()
}

// WriteAnalysisCSV writes the summary block, the cash-flow schedule, the risk
// categories, the rate scenarios and the alternative scenarios, separated by
// blank records
func WriteAnalysisCSV(out io.Writer, result *feasibility.AnalysisResult) error {
	if result == nil {
		return fmt.Errorf("no analysis result to export")
	}
	if _, err := out.Write(utf8BOM); err != nil {
		return fmt.Errorf("failed to write BOM: %w", err)
	}

	writer := csv.NewWriter(out)
	sections := []struct {
		headers []string
		rows    [][]string
	}{
		{[]string{"Metric", "Value"}, summaryRows(result)},
		{cashFlowHeaders, cashFlowRows(result)},
		{riskHeaders, riskRows(result)},
		{rateHeaders, rateRows(result)},
		{scenarioHeaders, scenarioRows(result)},
	}

	for i, section := range sections {
		if i > 0 {
			if err := writer.Write([]string{}); err != nil {
				return fmt.Errorf("failed to write separator: %w", err)
			}
		}
		if err := writer.Write(section.headers); err != nil {
			return fmt.Errorf("failed to write headers: %w", err)
		}
		if err := writer.WriteAll(section.rows); err != nil {
			return fmt.Errorf("failed to write records: %w", err)
		}
	}

	writer.Flush()
	return writer.Error()
}

// resolvePath resolves relative paths against the base directory
func (w *CSVWriter) resolvePath(filePath string) string {
	if filepath.IsAbs(filePath) || w.baseDir == "" {
		return filePath
	}
	return filepath.Join(w.baseDir, filePath)
}
