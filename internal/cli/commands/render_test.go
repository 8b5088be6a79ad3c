package commands

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/windql-lang/windql/internal/engine"
)

func sampleResult() *engine.Result {
	return &engine.Result{
		Columns: []string{"name", "sal"},
		Rows: []map[string]any{
			{"name": "ann", "sal": 100.0},
			{"name": "bob", "sal": nil},
		},
	}
}

func TestRenderTable(t *testing.T) {
	buf := new(bytes.Buffer)
	require.NoError(t, renderResult(buf, sampleResult(), "table"))

	out := buf.String()
	assert.Contains(t, out, "ann")
	assert.Contains(t, out, "NULL")
	assert.Contains(t, out, "(2 rows)")
}

func TestRenderTableEmpty(t *testing.T) {
	buf := new(bytes.Buffer)
	res := &engine.Result{Columns: []string{"a"}}
	require.NoError(t, renderResult(buf, res, "table"))
	assert.Contains(t, buf.String(), "(0 rows)")
}

func TestRenderJSON(t *testing.T) {
	buf := new(bytes.Buffer)
	require.NoError(t, renderResult(buf, sampleResult(), "json"))

	out := buf.String()
	assert.Contains(t, out, `"name": "ann"`)
	assert.Contains(t, out, `"sal": null`)
}

func TestRenderCSV(t *testing.T) {
	buf := new(bytes.Buffer)
	require.NoError(t, renderResult(buf, sampleResult(), "csv"))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "name,sal", lines[0])
	assert.Equal(t, "ann,100", lines[1])
}

func TestRenderMarkdown(t *testing.T) {
	buf := new(bytes.Buffer)
	require.NoError(t, renderResult(buf, sampleResult(), "md"))

	out := buf.String()
	assert.Contains(t, out, "| name | sal |")
	assert.Contains(t, out, "| --- | --- |")
	assert.Contains(t, out, "| ann | 100 |")
}

func TestRenderUnknownFormat(t *testing.T) {
	err := renderResult(new(bytes.Buffer), sampleResult(), "xml")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "xml")
}

func TestQueryTextSources(t *testing.T) {
	text, err := queryText([]string{"select", "a", "from", "t"}, "", strings.NewReader(""))
	require.NoError(t, err)
	assert.Equal(t, "select a from t", text)

	text, err = queryText(nil, "", strings.NewReader("from t select a"))
	require.NoError(t, err)
	assert.Equal(t, "from t select a", text)

	_, err = queryText(nil, "", strings.NewReader("   \n"))
	require.Error(t, err)

	_, err = queryText(nil, "/does/not/exist.wql", nil)
	require.Error(t, err)
}

func TestNewVersionCommand(t *testing.T) {
	cmd := NewVersionCommand("1.2.3", "2026-01-01", "abc123")
	buf := new(bytes.Buffer)
	cmd.SetOut(buf)
	cmd.SetErr(buf)

	require.NoError(t, cmd.Execute())
	assert.Contains(t, buf.String(), "WindQL v1.2.3")
	assert.Contains(t, buf.String(), "abc123")
}

func TestParseCommandPrintsAST(t *testing.T) {
	cmd := NewParseCommand()
	buf := new(bytes.Buffer)
	cmd.SetOut(buf)
	cmd.SetErr(buf)
	cmd.SetArgs([]string{"select a from t where b > 1"})

	require.NoError(t, cmd.Execute())
	assert.Contains(t, buf.String(), `"Column": "a"`)
}

func TestParseCommandReportsDiagnostics(t *testing.T) {
	cmd := NewParseCommand()
	buf := new(bytes.Buffer)
	cmd.SetOut(buf)
	cmd.SetErr(buf)
	cmd.SetArgs([]string{"select from"})

	err := cmd.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse failed")
	assert.Contains(t, err.Error(), "parse error in")
}

func TestParseCommandPrintsAllDiagnostics(t *testing.T) {
	cmd := NewParseCommand()
	buf := new(bytes.Buffer)
	cmd.SetOut(buf)
	cmd.SetErr(buf)
	// Two defects: the argument list breaks off at FROM and the call is
	// never closed. Both diagnostics must appear, not just the first.
	cmd.SetArgs([]string{"select substr(a, from emp"})

	err := cmd.Execute()
	require.Error(t, err)
	assert.GreaterOrEqual(t, strings.Count(err.Error(), "parse error in"), 2)
}
