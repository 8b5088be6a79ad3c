// Package source reads input rows for query execution: local parquet and
// JSON-lines files, plus the catalog contract for external table inputs.
package source

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/windql-lang/windql/pkg/ptf"
)

// Source reads a full input into memory.
type Source interface {
	Read() ([]ptf.Row, *ptf.Shape, error)
}

// Open selects a reader from file-spec parameters. The path parameter is
// mandatory; format defaults from the file extension.
func Open(params map[string]string) (Source, error) {
	path := params["path"]
	if path == "" {
		return nil, fmt.Errorf("file input requires a path parameter")
	}

	format := params["format"]
	if format == "" {
		switch strings.ToLower(filepath.Ext(path)) {
		case ".parquet":
			format = "parquet"
		case ".jsonl", ".json", ".ndjson":
			format = "jsonl"
		}
	}

	switch format {
	case "parquet":
		return &ParquetSource{Path: path}, nil
	case "jsonl":
		return &JSONLSource{Path: path}, nil
	default:
		return nil, fmt.Errorf("unsupported input format %q for %s", format, path)
	}
}
