package parser_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/windql-lang/windql/pkg/parser"
	"github.com/windql-lang/windql/pkg/token"
)

// stubResolver registers a fixed set of window-function names.
type stubResolver struct {
	windowed map[string]bool
}

func (r stubResolver) IsWindowFunction(name string) bool {
	return r.windowed[strings.ToLower(name)]
}

var testResolver = stubResolver{windowed: map[string]bool{
	"rank": true, "denserank": true, "rownumber": true,
	"sum": true, "avg": true, "count": true, "min": true, "max": true,
	"lead": true, "lag": true, "first_value": true, "last_value": true,
	"ntile": true,
}}

func mustParse(t *testing.T, query string) *parser.Query {
	t.Helper()
	q, err := parser.Parse(query, testResolver)
	require.NoError(t, err, "query: %s", query)
	require.NotNil(t, q)
	return q
}

// ---------- Query Forms ----------

func TestQueryFormsEquivalent(t *testing.T) {
	a := mustParse(t, "select name, sal from emp where sal > 100")
	b := mustParse(t, "from emp select name, sal where sal > 100")
	assert.Equal(t, a, b)
}

func TestParseDeterministic(t *testing.T) {
	const query = "select rank() over (partition by dept order by sal desc) from emp"
	first := mustParse(t, query)
	second := mustParse(t, query)
	assert.Equal(t, first, second)
}

func TestSelectAliases(t *testing.T) {
	q := mustParse(t, "select sal as salary, name from emp")
	require.Len(t, q.Select.Columns, 2)
	assert.Equal(t, "salary", q.Select.Columns[0].Alias)
	assert.Empty(t, q.Select.Columns[1].Alias)
}

// ---------- Window-function Disambiguation ----------

func TestWindowFunctionDisambiguation(t *testing.T) {
	tests := []struct {
		name     string
		query    string
		windowed bool
	}{
		{
			name:     "registered name with parens",
			query:    "select rank() over (partition by dept) from emp",
			windowed: true,
		},
		{
			name:     "registered name without over stays a call",
			query:    "select count(sal) from emp",
			windowed: false,
		},
		{
			name:     "unregistered function is a plain expression",
			query:    "select substr(name, 1, 3) from emp",
			windowed: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q := mustParse(t, tt.query)
			fn, ok := q.Select.Columns[0].Expr.(*parser.FuncCall)
			require.True(t, ok)
			assert.Equal(t, tt.windowed, fn.Over != nil)
		})
	}
}

func TestRegisteredNameWithoutParensIsColumn(t *testing.T) {
	q := mustParse(t, "select rank from emp")
	ref, ok := q.Select.Columns[0].Expr.(*parser.ColumnRef)
	require.True(t, ok)
	assert.Equal(t, "rank", ref.Column)
}

func TestFuncCallKinds(t *testing.T) {
	q := mustParse(t, "select count(*), count(distinct dept), sum(sal) over (partition by dept) from emp")
	require.Len(t, q.Select.Columns, 3)

	star := q.Select.Columns[0].Expr.(*parser.FuncCall)
	assert.Equal(t, parser.FuncStar, star.Kind())

	distinct := q.Select.Columns[1].Expr.(*parser.FuncCall)
	assert.Equal(t, parser.FuncDistinct, distinct.Kind())

	windowed := q.Select.Columns[2].Expr.(*parser.FuncCall)
	assert.Equal(t, parser.WindowFunc, windowed.Kind())
}

// ---------- Expressions ----------

func TestComparisonChainsLeft(t *testing.T) {
	q := mustParse(t, "select a < b < c from t")
	outer, ok := q.Select.Columns[0].Expr.(*parser.BinaryExpr)
	require.True(t, ok)
	assert.Equal(t, token.LT, outer.Op)

	inner, ok := outer.Left.(*parser.BinaryExpr)
	require.True(t, ok, "left operand must be the first comparison")
	assert.Equal(t, token.LT, inner.Op)

	right, ok := outer.Right.(*parser.ColumnRef)
	require.True(t, ok)
	assert.Equal(t, "c", right.Column)
}

func TestArithmeticPrecedence(t *testing.T) {
	q := mustParse(t, "select a + b * c from t")
	add, ok := q.Select.Columns[0].Expr.(*parser.BinaryExpr)
	require.True(t, ok)
	assert.Equal(t, token.PLUS, add.Op)

	mul, ok := add.Right.(*parser.BinaryExpr)
	require.True(t, ok)
	assert.Equal(t, token.STAR, mul.Op)
}

func TestBitwisePrecedence(t *testing.T) {
	q := mustParse(t, "select a & b | c from t")
	or, ok := q.Select.Columns[0].Expr.(*parser.BinaryExpr)
	require.True(t, ok)
	assert.Equal(t, token.PIPE, or.Op)

	and, ok := or.Left.(*parser.BinaryExpr)
	require.True(t, ok)
	assert.Equal(t, token.AMP, and.Op)
}

func TestBooleanPrecedence(t *testing.T) {
	q := mustParse(t, "select a = 1 or b = 2 and c = 3 from t")
	or, ok := q.Select.Columns[0].Expr.(*parser.BinaryExpr)
	require.True(t, ok)
	assert.Equal(t, token.OR, or.Op)

	and, ok := or.Right.(*parser.BinaryExpr)
	require.True(t, ok, "AND must bind tighter than OR")
	assert.Equal(t, token.AND, and.Op)
}

func TestBetweenLowering(t *testing.T) {
	q := mustParse(t, "select a between 1 and 10 from t")
	fn, ok := q.Select.Columns[0].Expr.(*parser.FuncCall)
	require.True(t, ok)
	assert.Equal(t, "between", fn.Name)
	require.Len(t, fn.Args, 4)

	flag := fn.Args[0].(*parser.Literal)
	assert.Equal(t, parser.LiteralBool, flag.Kind)
	assert.Equal(t, "true", flag.Value)
}

func TestNotBetweenCarriesPolarity(t *testing.T) {
	q := mustParse(t, "select a not between 1 and 10 from t")
	fn, ok := q.Select.Columns[0].Expr.(*parser.FuncCall)
	require.True(t, ok, "NOT BETWEEN must not be wrapped in NOT")
	assert.Equal(t, "between", fn.Name)
	require.Len(t, fn.Args, 4)
	assert.Equal(t, "false", fn.Args[0].(*parser.Literal).Value)
}

func TestInLowering(t *testing.T) {
	q := mustParse(t, "select dept in ('a', 'b', 'c') from emp")
	fn, ok := q.Select.Columns[0].Expr.(*parser.FuncCall)
	require.True(t, ok)
	assert.Equal(t, "in", fn.Name)
	assert.Len(t, fn.Args, 4)
}

func TestNotInWrapsInNot(t *testing.T) {
	q := mustParse(t, "select dept not in ('a', 'b') from emp")
	not, ok := q.Select.Columns[0].Expr.(*parser.UnaryExpr)
	require.True(t, ok)
	assert.Equal(t, token.NOT, not.Op)

	fn, ok := not.Expr.(*parser.FuncCall)
	require.True(t, ok)
	assert.Equal(t, "in", fn.Name)
}

func TestNotLikeWrapsInNot(t *testing.T) {
	q := mustParse(t, "select name not like 'J%' from emp")
	not, ok := q.Select.Columns[0].Expr.(*parser.UnaryExpr)
	require.True(t, ok)
	assert.Equal(t, token.NOT, not.Op)

	like, ok := not.Expr.(*parser.BinaryExpr)
	require.True(t, ok)
	assert.Equal(t, token.LIKE, like.Op)
}

func TestCaseLowering(t *testing.T) {
	t.Run("with operand", func(t *testing.T) {
		q := mustParse(t, "select case dept when 'eng' then 1 else 0 end from emp")
		fn := q.Select.Columns[0].Expr.(*parser.FuncCall)
		assert.Equal(t, "case", fn.Name)
		assert.Len(t, fn.Args, 4) // operand, when, then, else
	})

	t.Run("without operand", func(t *testing.T) {
		q := mustParse(t, "select case when sal > 10 then 'hi' when sal > 5 then 'mid' end from emp")
		fn := q.Select.Columns[0].Expr.(*parser.FuncCall)
		assert.Equal(t, "when", fn.Name)
		assert.Len(t, fn.Args, 4) // two when/then pairs
	})

	t.Run("missing when is an error", func(t *testing.T) {
		_, err := parser.Parse("select case dept else 0 end from emp", testResolver)
		require.Error(t, err)
	})
}

func TestIsNull(t *testing.T) {
	q := mustParse(t, "select a is null, b is not null from t")
	first := q.Select.Columns[0].Expr.(*parser.IsNullExpr)
	assert.False(t, first.Not)
	second := q.Select.Columns[1].Expr.(*parser.IsNullExpr)
	assert.True(t, second.Not)
}

func TestPostfixAccess(t *testing.T) {
	q := mustParse(t, "select t.col, addr.city.zip, xs[0] from t")

	ref := q.Select.Columns[0].Expr.(*parser.ColumnRef)
	assert.Equal(t, "t", ref.Table)
	assert.Equal(t, "col", ref.Column)

	field := q.Select.Columns[1].Expr.(*parser.FieldAccess)
	assert.Equal(t, "zip", field.Field)

	idx := q.Select.Columns[2].Expr.(*parser.IndexExpr)
	zero := idx.Index.(*parser.Literal)
	assert.Equal(t, "0", zero.Value)
}

func TestLiteralKinds(t *testing.T) {
	q := mustParse(t, "select 1, 1.5, 10L, 5S, 2Y, 'x', true, null from t")
	kinds := []parser.LiteralKind{
		parser.LiteralInt, parser.LiteralNumber, parser.LiteralBigint,
		parser.LiteralSmallint, parser.LiteralTinyint, parser.LiteralString,
		parser.LiteralBool, parser.LiteralNull,
	}
	require.Len(t, q.Select.Columns, len(kinds))
	for i, want := range kinds {
		lit, ok := q.Select.Columns[i].Expr.(*parser.Literal)
		require.True(t, ok, "column %d", i)
		assert.Equal(t, want, lit.Kind, "column %d", i)
	}
}

// ---------- Table Specifications ----------

func TestHiveTableSpec(t *testing.T) {
	q := mustParse(t, "from db1.emp partition by dept order by sal desc, name select a")
	spec, ok := q.Input.(*parser.HiveTableSpec)
	require.True(t, ok)
	assert.Equal(t, "db1", spec.Db)
	assert.Equal(t, "emp", spec.Table)
	require.Len(t, spec.PartitionBy, 1)
	require.Len(t, spec.OrderBy, 2)
	assert.True(t, spec.OrderBy[0].Desc)
	assert.False(t, spec.OrderBy[1].Desc)
}

func TestHdfsFileSpec(t *testing.T) {
	q := mustParse(t, "from hdfs(path='/data/emp', keyclass='o.a.h.io.Text') partition by dept select a")
	spec, ok := q.Input.(*parser.HdfsFileSpec)
	require.True(t, ok)
	require.Len(t, spec.Params, 2)
	assert.Equal(t, "path", spec.Params[0].Name)
	assert.Equal(t, "/data/emp", spec.Params[0].Value)
}

// Parameter names live in their own namespace: path, format and table are
// keywords elsewhere in the grammar but legal as hdfs parameter names.
func TestHdfsParamKeywordNames(t *testing.T) {
	q := mustParse(t, "from hdfs(path='/data/emp.jsonl', format='jsonl', table='emp') select a")
	spec, ok := q.Input.(*parser.HdfsFileSpec)
	require.True(t, ok)
	require.Len(t, spec.Params, 3)
	assert.Equal(t, "path", spec.Params[0].Name)
	assert.Equal(t, "format", spec.Params[1].Name)
	assert.Equal(t, "jsonl", spec.Params[1].Value)
	assert.Equal(t, "table", spec.Params[2].Name)
}

func TestRawQuerySpec(t *testing.T) {
	q := mustParse(t, "from `select * from emp where sal > 0` partition by dept select a")
	spec, ok := q.Input.(*parser.RawQuerySpec)
	require.True(t, ok)
	assert.Equal(t, "select * from emp where sal > 0", spec.Query)
	require.Len(t, spec.PartitionBy, 1)
}

func TestNestedTableFuncSpec(t *testing.T) {
	q := mustParse(t, "from noop(emp partition by dept order by sal, 10, 'mode') select a")
	outer, ok := q.Input.(*parser.TableFuncSpec)
	require.True(t, ok)
	assert.Equal(t, "noop", outer.Name)
	require.Len(t, outer.Args, 2)

	inner, ok := outer.Input.(*parser.HiveTableSpec)
	require.True(t, ok)
	assert.Equal(t, "emp", inner.Table)
	require.Len(t, inner.PartitionBy, 1)
	require.Len(t, inner.OrderBy, 1)
}

func TestTableFuncChain(t *testing.T) {
	q := mustParse(t, "from outertf(innertf(emp partition by dept) partition by dept) select a")
	outer := q.Input.(*parser.TableFuncSpec)
	assert.Equal(t, "outertf", outer.Name)
	inner := outer.Input.(*parser.TableFuncSpec)
	assert.Equal(t, "innertf", inner.Name)
	_, ok := inner.Input.(*parser.HiveTableSpec)
	assert.True(t, ok)
}

// The trailing-comma predicate must hand the comma back to the argument list
// when what follows is not a column reference.
func TestSuffixCommaPredicate(t *testing.T) {
	p := parser.NewParser("from noop(emp order by sal, 42) select a", testResolver)
	q, err := p.Parse()
	require.NoError(t, err)
	assert.Empty(t, p.ParseErrors(), "a rewound lookahead must leave no diagnostics")

	spec := q.Input.(*parser.TableFuncSpec)
	require.Len(t, spec.Args, 1)
	inner := spec.Input.(*parser.HiveTableSpec)
	require.Len(t, inner.OrderBy, 1)
}

// ---------- Errors ----------

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name  string
		query string
	}{
		{name: "empty select list", query: "select from emp"},
		{name: "missing from", query: "select a"},
		{name: "trailing garbage", query: "select a from emp emp2 emp3("},
		{name: "bad where", query: "select a from emp where"},
		{name: "unclosed call", query: "select substr(a from emp"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q, err := parser.Parse(tt.query, testResolver)
			require.Error(t, err)
			assert.Nil(t, q)
		})
	}
}

func TestParseErrorPosition(t *testing.T) {
	_, err := parser.Parse("select a from emp where (sal > ", testResolver)
	require.Error(t, err)
	var perr *parser.ParseError
	require.ErrorAs(t, err, &perr)
	assert.Contains(t, perr.Error(), "line")
}

func TestParseErrorsJoined(t *testing.T) {
	p := parser.NewParser("select a from emp", testResolver)
	_, err := p.Parse()
	require.NoError(t, err)
	assert.Empty(t, p.ParseErrors())
}
