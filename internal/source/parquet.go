package source

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/parquet-go/parquet-go"

	"github.com/windql-lang/windql/pkg/ptf"
)

// ParquetSource reads a local parquet file fully into memory. Rows come back
// as maps keyed by column name; the shape is derived from the file schema.
type ParquetSource struct {
	Path string
}

// Read loads every row of the file.
func (s *ParquetSource) Read() ([]ptf.Row, *ptf.Shape, error) {
	file, err := os.Open(s.Path)
	if err != nil {
		return nil, nil, fmt.Errorf("open %s: %w", s.Path, err)
	}
	defer file.Close()

	stat, err := file.Stat()
	if err != nil {
		return nil, nil, fmt.Errorf("stat %s: %w", s.Path, err)
	}

	pqFile, err := parquet.OpenFile(file, stat.Size())
	if err != nil {
		return nil, nil, fmt.Errorf("open parquet %s: %w", s.Path, err)
	}

	reader := parquet.NewReader(pqFile)
	defer reader.Close()

	var rows []ptf.Row
	for {
		row := make(ptf.Row)
		if err := reader.Read(&row); err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, nil, fmt.Errorf("read %s: %w", s.Path, err)
		}
		rows = append(rows, row)
	}

	return rows, shapeOf(pqFile.Schema()), nil
}

// shapeOf maps the parquet schema to the engine's column description.
func shapeOf(schema *parquet.Schema) *ptf.Shape {
	shape := ptf.NewShape()
	for _, field := range schema.Fields() {
		shape.Add(field.Name(), typeName(field.Type().Kind()))
	}
	return shape
}

func typeName(kind parquet.Kind) string {
	switch kind {
	case parquet.Boolean:
		return "boolean"
	case parquet.Int32:
		return "int"
	case parquet.Int64:
		return "bigint"
	case parquet.Float:
		return "float"
	case parquet.Double:
		return "double"
	case parquet.ByteArray, parquet.FixedLenByteArray:
		return "string"
	default:
		return "binary"
	}
}
