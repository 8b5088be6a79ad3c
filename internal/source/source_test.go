package source_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/parquet-go/parquet-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/windql-lang/windql/internal/source"
)

func TestOpenDispatch(t *testing.T) {
	tests := []struct {
		name    string
		params  map[string]string
		want    any
		wantErr bool
	}{
		{
			name:   "parquet by extension",
			params: map[string]string{"path": "/data/emp.parquet"},
			want:   &source.ParquetSource{},
		},
		{
			name:   "jsonl by extension",
			params: map[string]string{"path": "/data/emp.jsonl"},
			want:   &source.JSONLSource{},
		},
		{
			name:   "explicit format wins",
			params: map[string]string{"path": "/data/emp.dat", "format": "jsonl"},
			want:   &source.JSONLSource{},
		},
		{
			name:    "missing path",
			params:  map[string]string{"format": "jsonl"},
			wantErr: true,
		},
		{
			name:    "unknown format",
			params:  map[string]string{"path": "/data/emp.dat"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			src, err := source.Open(tt.params)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.IsType(t, tt.want, src)
		})
	}
}

func TestJSONLSourceRead(t *testing.T) {
	path := filepath.Join(t.TempDir(), "emp.jsonl")
	content := `{"name": "ann", "sal": 100}

{"name": "bob", "sal": 200}
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	rows, shape, err := (&source.JSONLSource{Path: path}).Read()
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "ann", rows[0]["name"])
	assert.Equal(t, 200.0, rows[1]["sal"])

	assert.Equal(t, []string{"name", "sal"}, shape.Names())
	assert.Equal(t, "double", shape.Type("sal"))
}

func TestJSONLSourceBadLine(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.jsonl")
	require.NoError(t, os.WriteFile(path, []byte("{\"a\": 1}\nnot json\n"), 0o644))

	_, _, err := (&source.JSONLSource{Path: path}).Read()
	require.Error(t, err)
	assert.Contains(t, err.Error(), ":2:")
}

func TestParquetSourceRoundTrip(t *testing.T) {
	type rec struct {
		Name string  `parquet:"name"`
		Sal  float64 `parquet:"sal"`
	}

	path := filepath.Join(t.TempDir(), "emp.parquet")
	file, err := os.Create(path)
	require.NoError(t, err)

	writer := parquet.NewWriter(file, parquet.SchemaOf(rec{}))
	require.NoError(t, writer.Write(rec{Name: "ann", Sal: 100}))
	require.NoError(t, writer.Write(rec{Name: "bob", Sal: 200}))
	require.NoError(t, writer.Close())
	require.NoError(t, file.Close())

	rows, shape, err := (&source.ParquetSource{Path: path}).Read()
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "ann", rows[0]["name"])

	assert.True(t, shape.Has("sal"))
	assert.Equal(t, "double", shape.Type("sal"))
}

func TestNoCatalog(t *testing.T) {
	var cat source.Catalog = source.NoCatalog{}

	_, _, err := cat.Table("db1", "emp")
	require.Error(t, err)
	assert.ErrorIs(t, err, source.ErrNoCatalog)
	assert.Contains(t, err.Error(), "db1.emp")

	_, _, err = cat.Query("select 1")
	assert.ErrorIs(t, err, source.ErrNoCatalog)
}
