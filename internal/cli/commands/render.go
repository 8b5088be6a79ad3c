package commands

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cast"

	"github.com/windql-lang/windql/internal/engine"
)

func renderResult(w io.Writer, res *engine.Result, format string) error {
	switch format {
	case "json":
		return renderJSON(w, res)
	case "csv":
		return renderCSV(w, res)
	case "md", "markdown":
		return renderMarkdown(w, res)
	case "", "table":
		return renderTable(w, res)
	default:
		return fmt.Errorf("unknown output format %q (table|json|csv|md)", format)
	}
}

func renderTable(w io.Writer, res *engine.Result) error {
	if len(res.Rows) == 0 {
		_, _ = fmt.Fprintln(w, "(0 rows)")
		return nil
	}

	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)

	headerRow := make(table.Row, len(res.Columns))
	for i, col := range res.Columns {
		headerRow[i] = col
	}
	t.AppendHeader(headerRow)

	for _, r := range res.Rows {
		row := make(table.Row, len(res.Columns))
		for i, col := range res.Columns {
			row[i] = formatValue(r[col])
		}
		t.AppendRow(row)
	}

	t.Render()
	_, _ = fmt.Fprintf(w, "(%d rows)\n", len(res.Rows))
	return nil
}

func renderJSON(w io.Writer, res *engine.Result) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(res.Rows)
}

func renderCSV(w io.Writer, res *engine.Result) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(res.Columns); err != nil {
		return err
	}
	record := make([]string, len(res.Columns))
	for _, r := range res.Rows {
		for i, col := range res.Columns {
			record[i] = cast.ToString(r[col])
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func renderMarkdown(w io.Writer, res *engine.Result) error {
	if len(res.Rows) == 0 {
		_, _ = fmt.Fprintln(w, "(0 rows)")
		return nil
	}

	_, _ = fmt.Fprintf(w, "| %s |\n", strings.Join(res.Columns, " | "))
	seps := make([]string, len(res.Columns))
	for i := range seps {
		seps[i] = "---"
	}
	_, _ = fmt.Fprintf(w, "| %s |\n", strings.Join(seps, " | "))

	values := make([]string, len(res.Columns))
	for _, r := range res.Rows {
		for i, col := range res.Columns {
			values[i] = formatValue(r[col])
		}
		_, _ = fmt.Fprintf(w, "| %s |\n", strings.Join(values, " | "))
	}
	return nil
}

func formatValue(v any) string {
	if v == nil {
		return "NULL"
	}
	return fmt.Sprintf("%v", v)
}
