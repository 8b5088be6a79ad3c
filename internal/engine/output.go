package engine

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cast"

	"github.com/windql-lang/windql/pkg/parser"
)

// writeOutput honors the INTO clause: result rows go to Path as JSON-lines
// or CSV. SERDE and RECORDWRITER class names are recorded for the external
// writer; LOAD INTO TABLE is external and only logged.
func (e *Engine) writeOutput(spec *parser.OutputSpec, result *Result, log *slog.Logger) error {
	format := "jsonl"
	if spec.Format != "" {
		format = spec.Format
	}

	if spec.SerDe != "" {
		log.Info("output serde selected",
			"serde", spec.SerDe,
			"recordwriter", spec.RecordWriter,
			"properties", len(spec.SerDeProps))
	}

	file, err := os.Create(spec.Path)
	if err != nil {
		return fmt.Errorf("create %s: %w", spec.Path, err)
	}
	defer file.Close()

	switch format {
	case "jsonl":
		enc := json.NewEncoder(file)
		for _, row := range result.Rows {
			if err := enc.Encode(row); err != nil {
				return fmt.Errorf("write %s: %w", spec.Path, err)
			}
		}

	case "csv":
		w := csv.NewWriter(file)
		if err := w.Write(result.Columns); err != nil {
			return fmt.Errorf("write %s: %w", spec.Path, err)
		}
		record := make([]string, len(result.Columns))
		for _, row := range result.Rows {
			for i, col := range result.Columns {
				record[i] = cast.ToString(row[col])
			}
			if err := w.Write(record); err != nil {
				return fmt.Errorf("write %s: %w", spec.Path, err)
			}
		}
		w.Flush()
		if err := w.Error(); err != nil {
			return fmt.Errorf("write %s: %w", spec.Path, err)
		}

	default:
		return fmt.Errorf("unsupported output format %q", format)
	}

	log.Info("output written", "path", spec.Path, "format", format, "rows", len(result.Rows))

	if spec.LoadTable != "" {
		log.Info("load into table requested; loading is external",
			"table", spec.LoadTable,
			"partition", spec.LoadPartition,
			"overwrite", spec.Overwrite)
	}
	return nil
}
