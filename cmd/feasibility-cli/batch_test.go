package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"feasibility/internal/shared/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBatch_AllProjects(t *testing.T) {
	dir := t.TempDir()
	projects := filepath.Join(dir, "projects")
	require.NoError(t, os.Mkdir(projects, 0755))
	writeYAMLProject(t, projects, testutil.FlatProject())
	writeJSONProject(t, projects, testutil.DecliningProject())
	require.NoError(t, os.WriteFile(filepath.Join(projects, "README.md"), []byte("ignored"), 0644))
	out := filepath.Join(dir, "reports")

	stdout, _, err := runCLI(t, "batch", "--dir", projects, "--out", out, "--workers", "2")
	require.NoError(t, err)

	assert.Contains(t, stdout, "flat-30k")
	assert.Contains(t, stdout, "72.49")
	assert.Contains(t, stdout, "declining-500k")
	assert.Contains(t, stdout, "33.92")

	assert.FileExists(t, filepath.Join(out, "flat-30k.csv"))
	assert.FileExists(t, filepath.Join(out, "declining-500k.csv"))

	summary, err := os.ReadFile(filepath.Join(out, batchSummaryFile))
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(strings.TrimPrefix(string(summary), "\xEF\xBB\xBF")), "\n")
	require.Len(t, lines, 3)
	assert.True(t, strings.HasPrefix(lines[0], "Project,Source,Mode,Overall Score"))
	assert.True(t, strings.HasPrefix(lines[1], "declining-500k,declining-500k.json,base,33.92,not_recommended"))
	assert.True(t, strings.HasPrefix(lines[2], "flat-30k,flat-30k.yaml,base,72.49,recommended"))
}

func TestBatch_PartialFailure(t *testing.T) {
	dir := t.TempDir()
	writeYAMLProject(t, dir, testutil.FlatProject())
	require.NoError(t, os.WriteFile(filepath.Join(dir, "broken.json"), []byte("{"), 0644))
	out := filepath.Join(dir, "out")

	stdout, _, err := runCLI(t, "batch", "-d", dir, "-o", out, "-f", "json")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "1 of 2 projects failed")
	assert.Contains(t, stdout, "failed")

	assert.FileExists(t, filepath.Join(out, "flat-30k.json"))
	assert.NoFileExists(t, filepath.Join(out, "broken.json"))

	summary, err := os.ReadFile(filepath.Join(out, batchSummaryFile))
	require.NoError(t, err)
	assert.Contains(t, string(summary), "broken.json")
	assert.Contains(t, string(summary), "failed to parse project")
}

func TestBatch_NonFiniteInputFailsOneProject(t *testing.T) {
	dir := t.TempDir()
	writeYAMLProject(t, dir, testutil.FlatProject())
	nan := []byte(`id: nan-risk
initial_investment: 1000
net_cash_flows: [500, 500, 500]
expected_lifespan_years: 3
discount_rate: 8
risk_factors:
  - category: market
    probability: .nan
    impact: 0.5
`)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "nan-risk.yaml"), nan, 0644))
	out := filepath.Join(dir, "out")

	_, _, err := runCLI(t, "batch", "-d", dir, "-o", out, "-f", "json")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "1 of 2 projects failed")
	assert.FileExists(t, filepath.Join(out, "flat-30k.json"))

	summary, err := os.ReadFile(filepath.Join(out, batchSummaryFile))
	require.NoError(t, err)
	assert.Contains(t, string(summary), "riskFactors.probability must be a finite number")
}

func TestBatch_Errors(t *testing.T) {
	empty := t.TempDir()

	tests := []struct {
		name          string
		args          []string
		errorContains string
	}{
		{"empty directory", []string{"batch", "-d", empty, "-o", filepath.Join(empty, "out")}, "no project files found"},
		{"missing directory", []string{"batch", "-d", filepath.Join(empty, "absent")}, "failed to read directory"},
		{"bad workers", []string{"batch", "-d", empty, "-w", "0"}, "--workers"},
		{"bad format", []string{"batch", "-d", empty, "-f", "pdf"}, "unsupported format"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := runCLI(t, tt.args...)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errorContains)
		})
	}
}
