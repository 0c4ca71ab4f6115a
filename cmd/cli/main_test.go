package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/fatih/color"
	json "github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "aivaceo/internal/errors"
)

func init() {
	color.NoColor = true
}

func writeCSV(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "people.csv")
	content := "name,age,score,city\nann,20,1,Oslo\nbob,21,2,Oslo\ncid,22,3,Rome\ndee,23,4,Rome\neve,1000,5,Lima\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestOverviewTable(t *testing.T) {
	out, err := run(t, "overview", "--file", writeCSV(t))
	require.NoError(t, err)
	assert.Contains(t, out, "=== people.csv ===")
	assert.Contains(t, out, "Data quality score")
	assert.Contains(t, out, "100.0%")
	assert.Contains(t, out, "numeric")
}

func TestOverviewJSON(t *testing.T) {
	out, err := run(t, "overview", "--file", writeCSV(t), "--json")
	require.NoError(t, err)
	var overview map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(out), &overview))
	assert.Equal(t, float64(5), overview["rows"])
	assert.Equal(t, float64(4), overview["columns"])
}

func TestColumnCommand(t *testing.T) {
	path := writeCSV(t)

	out, err := run(t, "column", "age", "--file", path)
	require.NoError(t, err)
	assert.Contains(t, out, "=== age (numeric) ===")
	assert.Contains(t, out, "Outliers")
	assert.Contains(t, out, "1 (20.0%)")

	out, err = run(t, "column", "city", "--file", path)
	require.NoError(t, err)
	assert.Contains(t, out, "Top values")
	assert.Contains(t, out, "Oslo")

	_, err = run(t, "column", "height", "--file", path)
	assert.True(t, apperrors.HasCode(err, apperrors.CodeColumnNotFound))
}

func TestCorrelationsCommand(t *testing.T) {
	out, err := run(t, "correlations", "--file", writeCSV(t), "--threshold", "0")
	require.NoError(t, err)
	assert.Contains(t, out, "Correlations (2 numeric columns)")
	assert.Contains(t, out, "age")
	assert.Contains(t, out, "score")
}

func TestPatternsAndInsights(t *testing.T) {
	path := writeCSV(t)

	out, err := run(t, "patterns", "--file", path)
	require.NoError(t, err)
	assert.Contains(t, out, "Potential ID columns")
	assert.Contains(t, out, "Value patterns")

	out, err = run(t, "insights", "--file", path, "--json")
	require.NoError(t, err)
	var insights []map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(out), &insights))
	assert.NotEmpty(t, insights)
	assert.LessOrEqual(t, len(insights), 10)
}

func TestDemoSource(t *testing.T) {
	out, err := run(t, "overview", "--demo", "--rows", "50", "--json")
	require.NoError(t, err)
	var overview map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(out), &overview))
	assert.Equal(t, float64(53), overview["rows"])

	_, err = run(t, "overview", "--demo", "--demo-table", "orders")
	assert.True(t, apperrors.HasCode(err, apperrors.CodeInvalidInput))
}

func TestSourceSelection(t *testing.T) {
	_, err := run(t, "overview")
	assert.True(t, apperrors.HasCode(err, apperrors.CodeInvalidInput))

	_, err = run(t, "overview", "--demo", "--file", writeCSV(t))
	assert.True(t, apperrors.HasCode(err, apperrors.CodeInvalidInput))

	_, err = run(t, "overview", "--query", "select 1")
	assert.True(t, apperrors.HasCode(err, apperrors.CodeInvalidInput))
}

func TestQuerySource(t *testing.T) {
	dsn := filepath.Join(t.TempDir(), "scan.db")
	out, err := run(t, "overview", "--driver", "sqlite", "--dsn", dsn, "--json",
		"--query", "select 1.5 as amount, 'north' as region union all select 2.5, 'south'")
	require.NoError(t, err)
	var overview map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(out), &overview))
	assert.Equal(t, float64(2), overview["rows"])
}

func TestReportCommand(t *testing.T) {
	path := writeCSV(t)

	out, err := run(t, "report", "--file", path)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "# Data Scan Report: people.csv"))

	target := filepath.Join(t.TempDir(), "report.html")
	out, err = run(t, "report", "--file", path, "--format", "html", "--out", target)
	require.NoError(t, err)
	assert.Contains(t, out, "Report written to")
	html, err := os.ReadFile(target)
	require.NoError(t, err)
	assert.Contains(t, string(html), "<html")

	_, err = run(t, "report", "--file", path, "--format", "pdf")
	assert.True(t, apperrors.HasCode(err, apperrors.CodeInvalidInput))
}

func TestChartCommand(t *testing.T) {
	path := writeCSV(t)
	dir := t.TempDir()

	svg := filepath.Join(dir, "age.svg")
	_, err := run(t, "chart", "column", "age", "--file", path, "--out", svg)
	require.NoError(t, err)
	data, err := os.ReadFile(svg)
	require.NoError(t, err)
	assert.Contains(t, string(data), "<svg")

	png := filepath.Join(dir, "compare.png")
	_, err = run(t, "chart", "compare", "age", "score", "--file", path, "--out", png, "--type", "line")
	require.NoError(t, err)
	data, err = os.ReadFile(png)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(data, []byte("\x89PNG")))

	out, err := run(t, "chart", "types", "--file", path)
	require.NoError(t, err)
	assert.Contains(t, out, `"kind": "pie"`)

	_, err = run(t, "chart", "missing", "--file", path)
	assert.True(t, apperrors.HasCode(err, apperrors.CodeInsufficientData))

	_, err = run(t, "chart", "compare", "age", "--file", path)
	assert.True(t, apperrors.HasCode(err, apperrors.CodeInvalidInput))

	_, err = run(t, "chart", "radar", "--file", path)
	assert.True(t, apperrors.HasCode(err, apperrors.CodeInvalidInput))
}
