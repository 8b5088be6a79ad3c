package parser_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/windql-lang/windql/pkg/parser"
)

// ---------- WINDOW Clause ----------

func TestWindowClause(t *testing.T) {
	q := mustParse(t, `
		select sum(sal) over (w1), rank() over (w2) from emp
		window w1 as (partition by dept order by sal rows between unbounded preceding and current row),
		       w2 as (partition by dept order by sal desc)`)

	require.Len(t, q.Windows, 2)

	w1 := q.Windows[0]
	assert.Equal(t, "w1", w1.Name)
	require.Len(t, w1.Spec.PartitionBy, 1)
	require.Len(t, w1.Spec.OrderBy, 1)
	require.NotNil(t, w1.Spec.Frame)
	assert.Equal(t, parser.FrameRows, w1.Spec.Frame.Type)

	w2 := q.Windows[1]
	assert.Equal(t, "w2", w2.Name)
	assert.Nil(t, w2.Spec.Frame)
	assert.True(t, w2.Spec.OrderBy[0].Desc)

	sum := q.Select.Columns[0].Expr.(*parser.FuncCall)
	require.NotNil(t, sum.Over)
	assert.Equal(t, "w1", sum.Over.Name)
}

func TestOverWithNamedRefAndOverride(t *testing.T) {
	q := mustParse(t, `
		select sum(sal) over (w rows between 2 preceding and 2 following) from emp
		window w as (partition by dept order by sal)`)

	over := q.Select.Columns[0].Expr.(*parser.FuncCall).Over
	require.NotNil(t, over)
	assert.Equal(t, "w", over.Name)
	require.NotNil(t, over.Frame)
	assert.Equal(t, 2, over.Frame.Start.Offset)
	assert.Equal(t, parser.BoundPreceding, over.Frame.Start.Type)
	assert.Equal(t, parser.BoundFollowing, over.Frame.End.Type)
}

func TestEmptyOverSpec(t *testing.T) {
	q := mustParse(t, "select rank() over () from emp")
	over := q.Select.Columns[0].Expr.(*parser.FuncCall).Over
	require.NotNil(t, over)
	assert.Empty(t, over.Name)
	assert.Empty(t, over.PartitionBy)
	assert.Nil(t, over.Frame)
}

// ---------- Frames ----------

func TestRowsFrameBounds(t *testing.T) {
	tests := []struct {
		name      string
		frame     string
		wantStart parser.BoundType
		wantEnd   parser.BoundType
	}{
		{
			name:      "unbounded both sides",
			frame:     "rows between unbounded preceding and unbounded following",
			wantStart: parser.BoundUnboundedPreceding,
			wantEnd:   parser.BoundUnboundedFollowing,
		},
		{
			name:      "running frame",
			frame:     "rows between unbounded preceding and current row",
			wantStart: parser.BoundUnboundedPreceding,
			wantEnd:   parser.BoundCurrentRow,
		},
		{
			name:      "sliding frame",
			frame:     "rows between 3 preceding and 3 following",
			wantStart: parser.BoundPreceding,
			wantEnd:   parser.BoundFollowing,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q := mustParse(t, "select sum(sal) over (partition by dept order by sal "+tt.frame+") from emp")
			frame := q.Select.Columns[0].Expr.(*parser.FuncCall).Over.Frame
			require.NotNil(t, frame)
			assert.Equal(t, parser.FrameRows, frame.Type)
			assert.Equal(t, tt.wantStart, frame.Start.Type)
			assert.Equal(t, tt.wantEnd, frame.End.Type)
		})
	}
}

func TestRangeFrameWithValueBounds(t *testing.T) {
	q := mustParse(t, `
		select sum(sal) over (partition by dept order by sal
			range between sal less 100 and sal more 50) from emp`)

	frame := q.Select.Columns[0].Expr.(*parser.FuncCall).Over.Frame
	require.NotNil(t, frame)
	assert.Equal(t, parser.FrameRange, frame.Type)

	start := frame.Start
	assert.Equal(t, parser.BoundValue, start.Type)
	assert.Equal(t, parser.DirLess, start.Direction)
	assert.Equal(t, 100.0, start.ValueOffset)
	ref, ok := start.ValueExpr.(*parser.ColumnRef)
	require.True(t, ok)
	assert.Equal(t, "sal", ref.Column)

	end := frame.End
	assert.Equal(t, parser.BoundValue, end.Type)
	assert.Equal(t, parser.DirMore, end.Direction)
	assert.Equal(t, 50.0, end.ValueOffset)
}

func TestRangeFrameWithRowStyleBounds(t *testing.T) {
	q := mustParse(t, `
		select sum(sal) over (order by sal range between 10 preceding and current row) from emp`)

	frame := q.Select.Columns[0].Expr.(*parser.FuncCall).Over.Frame
	require.NotNil(t, frame)
	assert.Equal(t, parser.FrameRange, frame.Type)
	assert.Equal(t, parser.BoundPreceding, frame.Start.Type)
	assert.Equal(t, 10, frame.Start.Offset)
	assert.Equal(t, parser.BoundCurrentRow, frame.End.Type)
}

func TestFrameErrors(t *testing.T) {
	tests := []struct {
		name  string
		query string
	}{
		{
			name:  "missing between",
			query: "select sum(sal) over (order by sal rows 3 preceding) from emp",
		},
		{
			name:  "missing and",
			query: "select sum(sal) over (rows between 1 preceding 1 following) from emp",
		},
		{
			name:  "value bound in rows frame",
			query: "select sum(sal) over (order by sal rows between sal less 100 and current row) from emp",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := parser.Parse(tt.query, testResolver)
			require.Error(t, err)
		})
	}
}

// ---------- Output Clause ----------

func TestOutputClauseFull(t *testing.T) {
	q := mustParse(t, `
		select a from emp
		into path='/tmp/out'
		serde 'org.example.LazySerDe'
		with serdeproperties('field.delim'=',', 'escape.delim'='\\')
		recordwriter 'org.example.TextWriter'
		load overwrite into table db1.results partition 'dt=2026-08-30'`)

	out := q.Output
	require.NotNil(t, out)
	assert.Equal(t, "/tmp/out", out.Path)
	assert.Equal(t, "org.example.LazySerDe", out.SerDe)
	require.Len(t, out.SerDeProps, 2)
	assert.Equal(t, "field.delim", out.SerDeProps[0].Name)
	assert.Equal(t, ",", out.SerDeProps[0].Value)
	assert.Equal(t, "org.example.TextWriter", out.RecordWriter)
	assert.Empty(t, out.Format)
	assert.Equal(t, "db1.results", out.LoadTable)
	assert.Equal(t, "dt=2026-08-30", out.LoadPartition)
	assert.True(t, out.Overwrite)
}

func TestOutputClauseFormatVariant(t *testing.T) {
	q := mustParse(t, "select a from emp into path='/tmp/out' serde 'org.example.SerDe' format 'jsonl'")
	out := q.Output
	require.NotNil(t, out)
	assert.Equal(t, "jsonl", out.Format)
	assert.Empty(t, out.RecordWriter)
	assert.False(t, out.Overwrite)
}

func TestOutputClausePathOnly(t *testing.T) {
	q := mustParse(t, "select a from emp into path='/tmp/out'")
	require.NotNil(t, q.Output)
	assert.Equal(t, "/tmp/out", q.Output.Path)
	assert.Empty(t, q.Output.SerDe)
}

func TestOutputClauseErrors(t *testing.T) {
	tests := []struct {
		name  string
		query string
	}{
		{name: "missing path value", query: "select a from emp into path="},
		{name: "serde without writer or format", query: "select a from emp into path='/o' serde 'x'"},
		{name: "load without table", query: "select a from emp into path='/o' load into table"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := parser.Parse(tt.query, testResolver)
			require.Error(t, err)
		})
	}
}
