package source

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/windql-lang/windql/pkg/ptf"
)

// JSONLSource reads a JSON-lines file: one object per line, blank lines
// ignored. It backs tests and the REPL; parquet is the primary input format.
type JSONLSource struct {
	Path string
}

// Read loads every row of the file. The shape is inferred from the first
// row, columns in name order since JSON objects carry none.
func (s *JSONLSource) Read() ([]ptf.Row, *ptf.Shape, error) {
	file, err := os.Open(s.Path)
	if err != nil {
		return nil, nil, fmt.Errorf("open %s: %w", s.Path, err)
	}
	defer file.Close()

	var rows []ptf.Row
	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 0, 1024*1024), 16*1024*1024)

	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		row := make(ptf.Row)
		if err := json.Unmarshal([]byte(line), &row); err != nil {
			return nil, nil, fmt.Errorf("%s:%d: %w", s.Path, lineNo, err)
		}
		rows = append(rows, row)
	}
	if err := scanner.Err(); err != nil {
		return nil, nil, fmt.Errorf("read %s: %w", s.Path, err)
	}

	return rows, inferShape(rows), nil
}

func inferShape(rows []ptf.Row) *ptf.Shape {
	shape := ptf.NewShape()
	if len(rows) == 0 {
		return shape
	}

	names := make([]string, 0, len(rows[0]))
	for name := range rows[0] {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		shape.Add(name, goTypeName(rows[0][name]))
	}
	return shape
}

func goTypeName(v any) string {
	switch v.(type) {
	case bool:
		return "boolean"
	case float64:
		return "double"
	case string:
		return "string"
	case nil:
		return "null"
	default:
		return "object"
	}
}
