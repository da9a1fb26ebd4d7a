package exporter

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"feasibility/internal/feasibility"
	"feasibility/internal/shared/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func analyze(t *testing.T, project feasibility.Project) *feasibility.AnalysisResult {
	t.Helper()

	logger, _ := testutil.NewTestLogger(t)
	engine, err := feasibility.NewEngine(feasibility.DefaultConfig(), logger,
		feasibility.WithClock(func() time.Time { return time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC) }))
	require.NoError(t, err)

	result, err := engine.RunAnalysis(context.Background(), project, feasibility.ModeBase)
	require.NoError(t, err)
	return result
}

func readCSV(t *testing.T, data []byte) [][]string {
	t.Helper()

	require.True(t, bytes.HasPrefix(data, utf8BOM), "missing BOM")
	r := csv.NewReader(bytes.NewReader(data[len(utf8BOM):]))
	r.FieldsPerRecord = -1
	records, err := r.ReadAll()
	require.NoError(t, err)
	return records
}

func lookup(records [][]string, label string) (string, bool) {
	for _, rec := range records {
		if len(rec) == 2 && rec[0] == label {
			return rec[1], true
		}
	}
	return "", false
}

func TestWriteAnalysisCSV(t *testing.T) {
	result := analyze(t, testutil.FlatProject())

	var buf bytes.Buffer
	require.NoError(t, WriteAnalysisCSV(&buf, result))
	records := readCSV(t, buf.Bytes())

	assert.Equal(t, []string{"Metric", "Value"}, records[0])

	tests := []struct {
		label string
		want  string
	}{
		{"Project", "flat-30k"},
		{"Mode", "base"},
		{"Assessment Date", "2025-03-01T00:00:00Z"},
		{"Overall Score", "72.49"},
		{"Recommendation", "recommended"},
		{"NPV", "19781.30"},
	}
	for _, tt := range tests {
		got, ok := lookup(records, tt.label)
		require.True(t, ok, tt.label)
		assert.Equal(t, tt.want, got, tt.label)
	}

	var flows [][]string
	for i, rec := range records {
		if len(rec) == 3 && rec[0] == "Period" {
			flows = records[i+1 : i+1+len(result.CashFlows.Flows)]
			break
		}
	}
	require.Len(t, flows, 6)
	assert.Equal(t, []string{"0", "-100000.00", "-100000.00"}, flows[0])
	assert.Equal(t, []string{"5", "30000.00", "50000.00"}, flows[5])
}

func TestWriteAnalysisCSV_NilResult(t *testing.T) {
	assert.Error(t, WriteAnalysisCSV(&bytes.Buffer{}, nil))
	assert.Error(t, WriteAnalysisXLSX(&bytes.Buffer{}, nil))
}

func TestWriteAnalysisXLSX(t *testing.T) {
	result := analyze(t, testutil.FlatProject())

	var buf bytes.Buffer
	require.NoError(t, WriteAnalysisXLSX(&buf, result))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{SheetSummary, SheetCashFlows, SheetRisks, SheetScenarios}, f.GetSheetList())

	score, err := f.GetCellValue(SheetSummary, "B5")
	require.NoError(t, err)
	assert.Equal(t, "72.49", score)

	rows, err := f.GetRows(SheetCashFlows)
	require.NoError(t, err)
	require.Len(t, rows, 7)
	assert.Equal(t, cashFlowHeaders, rows[0])

	risks, err := f.GetRows(SheetRisks)
	require.NoError(t, err)
	assert.Equal(t, riskHeaders, risks[0])
	assert.Equal(t, "market", risks[1][0])

	scenarios, err := f.GetRows(SheetScenarios)
	require.NoError(t, err)
	assert.Equal(t, scenarioHeaders, scenarios[0])
	assert.Len(t, scenarios[1], len(scenarioHeaders))
}

func TestExport(t *testing.T) {
	result := analyze(t, testutil.DecliningProject())

	for _, format := range []Format{FormatJSON, FormatCSV, FormatXLSX} {
		t.Run(string(format), func(t *testing.T) {
			var buf bytes.Buffer
			require.NoError(t, Export(&buf, format, result))
			assert.NotZero(t, buf.Len())

			if format == FormatJSON {
				var decoded feasibility.AnalysisResult
				require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
				assert.Equal(t, feasibility.NotRecommended, decoded.Recommendation)
			}
		})
	}

	assert.Error(t, Export(&bytes.Buffer{}, Format("pdf"), result))
}

func TestCSVWriter_Files(t *testing.T) {
	logger, logs := testutil.NewTestLogger(t)
	dir := t.TempDir()
	w := NewCSVWriter(dir, logger)

	result := analyze(t, testutil.RevenueDrivenProject())
	require.NoError(t, w.WriteAnalysis(filepath.Join("reports", "driver.csv"), result))
	assert.True(t, logs.ContainsMessage("analysis csv written"))

	data, err := os.ReadFile(filepath.Join(dir, "reports", "driver.csv"))
	require.NoError(t, err)
	project, ok := lookup(readCSV(t, data), "Project")
	require.True(t, ok)
	assert.Equal(t, "driver-250k", project)

	path := filepath.Join(dir, "table.csv")
	require.NoError(t, w.WriteCSV(path, WriteOptions{
		Headers:   []string{"mode", "score"},
		Records:   [][]string{{"base", "72.49"}},
		BOMPrefix: true,
	}))
	require.NoError(t, w.WriteCSV(path, WriteOptions{
		Records: [][]string{{"aggressive", "80.62"}},
		Append:  true,
	}))

	records := readCSV(t, mustRead(t, path))
	assert.Equal(t, [][]string{{"mode", "score"}, {"base", "72.49"}, {"aggressive", "80.62"}}, records)
}

func mustRead(t *testing.T, path string) []byte {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	return data
}

func TestBatchRecord(t *testing.T) {
	result := analyze(t, testutil.FlatProject())

	rec := BatchRecord("flat.yaml", result, nil)
	require.Len(t, rec, len(BatchHeaders))
	assert.Equal(t, []string{"flat-30k", "flat.yaml", "base", "72.49", "recommended"}, rec[:5])
	assert.Equal(t, "19781.30", rec[6])
	assert.Empty(t, rec[8])

	failed := BatchRecord("broken.json", nil, errors.New("failed to parse project"))
	require.Len(t, failed, len(BatchHeaders))
	assert.Equal(t, "broken.json", failed[1])
	assert.Equal(t, "failed to parse project", failed[8])
	assert.Empty(t, failed[3])
}
