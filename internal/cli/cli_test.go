package cli

import (
	"bytes"
	"encoding/csv"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/goccy/go-json"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const schedule = `Investment Name,Fund,Cost,Fair Value,Status,Valuation Date
First,A,100,150,unrealized,2020-01-01
Second,A,200,180,realized,2021-01-01
Third,B,"$50",0,realized,2022-06-30
Broken,B,n/a,1,,2022-06-30
`

// writeSchedule stores the schedule in a fresh directory and runs the test from it
func writeSchedule(t *testing.T, content string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "schedule.csv")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	for _, key := range []string{"PEM_GRPC_ADDR", "PEM_HTTP_ADDR", "LOG_LEVEL", "PEM_CURRENCY", "PEM_IRR_MAX_ITERATIONS", "PEM_SHUTDOWN_TIMEOUT"} {
		t.Setenv(key, "")
	}
	t.Setenv("PEM_AS_OF", "2023-01-01")
	t.Chdir(dir)
	return path
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out, errOut bytes.Buffer
	cmd := NewRootCommand()
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestCompute_Table(t *testing.T) {
	path := writeSchedule(t, schedule)

	out, err := run(t, "compute", path)
	require.NoError(t, err)

	assert.Contains(t, out, "As of 2023-01-01")
	assert.Contains(t, out, "$350.00")
	assert.Contains(t, out, "$330.00")
	assert.Contains(t, out, "1 row(s) rejected")
	assert.Contains(t, out, `sheet "schedule" row 4: cost: cannot parse "n/a"`)
}

func TestCompute_JSON(t *testing.T) {
	path := writeSchedule(t, schedule)

	out, err := run(t, "compute", path, "--format", "json", "--fund", "A", "--top", "1")
	require.NoError(t, err)

	var body map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &body))

	portfolio := body["portfolio"].(map[string]any)
	assert.Equal(t, float64(2), portfolio["count"])
	assert.Equal(t, "300", portfolio["total_cost"])
	assert.InDelta(t, 1.1, portfolio["moic"], 1e-12)
	assert.Equal(t, "solved", portfolio["irr_status"])
	assert.Len(t, body["top_by_moic"], 1)
	assert.Len(t, body["rejected"], 1)
}

func TestCompute_CSV(t *testing.T) {
	path := writeSchedule(t, schedule)

	out, err := run(t, "compute", path, "--format", "csv", "--status", "realized", "--year-from", "2022")
	require.NoError(t, err)

	rows, err := csv.NewReader(strings.NewReader(out)).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "Third", rows[1][0])
}

func TestCompute_Errors(t *testing.T) {
	tests := []struct {
		name    string
		content string
		args    []string
		errMsg  string
	}{
		{name: "Unknown format", content: schedule, args: []string{"--format", "xml"}, errMsg: `unknown format "xml"`},
		{name: "Unknown status", content: schedule, args: []string{"--status", "pending"}, errMsg: "invalid status"},
		{name: "Unknown period", content: schedule, args: []string{"--period", "week"}, errMsg: "invalid period"},
		{name: "Unknown currency", content: schedule, args: []string{"--currency", "zzz"}, errMsg: `unknown currency "ZZZ"`},
		{name: "Malformed as-of", content: schedule, args: []string{"--as-of", "01/01/2023"}, errMsg: "invalid --as-of"},
		{name: "Unrecognized schema", content: "Foo,Bar\n1,2\n", errMsg: "no schema profile matched"},
		{name: "Empty file", content: "", errMsg: "is empty"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeSchedule(t, tt.content)

			_, err := run(t, append([]string{"compute", path}, tt.args...)...)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errMsg)
		})
	}
}

func TestCompute_MissingFile(t *testing.T) {
	writeSchedule(t, schedule)

	_, err := run(t, "compute", "does-not-exist.csv")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to open")
}

func TestReadSheet(t *testing.T) {
	sheet, err := ReadSheet(strings.NewReader("\ufeffName , Fund\nAlpha,A\nBeta\n"), "manual")
	require.NoError(t, err)

	assert.Equal(t, "manual", sheet.Name)
	assert.Equal(t, []string{"Name", "Fund"}, sheet.Columns)
	require.Len(t, sheet.Rows, 2)
	assert.Equal(t, "A", sheet.Rows[0]["Fund"])
	_, ok := sheet.Rows[1]["Fund"]
	assert.False(t, ok, "missing trailing cells are left out")
}

func TestAmountFormatter(t *testing.T) {
	tests := []struct {
		currency string
		amount   string
		want     string
	}{
		{"USD", "1234.5", "$1,234.50"},
		{"USD", "0.005", "$0.01"},
		{"JPY", "1500", "1,500"},
	}

	for _, tt := range tests {
		t.Run(tt.currency+" "+tt.amount, func(t *testing.T) {
			f, err := newAmountFormatter(tt.currency)
			require.NoError(t, err)
			assert.Contains(t, f.Format(decimal.RequireFromString(tt.amount)), tt.want)
		})
	}
}
