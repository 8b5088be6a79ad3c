package parser

import "github.com/windql-lang/windql/pkg/token"

// Expr is an expression node.
type Expr interface {
	exprNode()
}

// TableSpec is an input specification in the FROM clause.
type TableSpec interface {
	tableSpecNode()
	// Suffix returns the optional PARTITION BY / ORDER BY suffix of the spec.
	Suffix() *SpecSuffix
}

// ---------- Query ----------

// Query is the root node. Both surface forms (SELECT ... FROM ... and
// FROM ... SELECT ...) produce this exact shape.
type Query struct {
	Input   TableSpec
	Select  *SelectList
	Where   Expr         // optional
	Windows []*WindowDef // optional WINDOW clause entries
	Output  *OutputSpec  // optional INTO clause
}

// SelectList is the list of select columns.
type SelectList struct {
	Columns []*SelectColumn
}

// SelectColumn is one select-list entry: a general expression or a windowed
// function call, with an optional alias.
type SelectColumn struct {
	Expr  Expr
	Alias string
}

// ---------- Table specifications ----------

// SpecSuffix is the optional PARTITION BY / ORDER BY suffix every table
// specification form may carry.
type SpecSuffix struct {
	PartitionBy []*ColumnRef
	OrderBy     []*OrderColumn
}

// Suffix implements TableSpec.
func (s *SpecSuffix) Suffix() *SpecSuffix { return s }

// OrderColumn is one ORDER BY entry.
type OrderColumn struct {
	Column *ColumnRef
	Desc   bool
}

// TableFuncSpec is a table-function invocation. Its first argument is the
// upstream table specification; further arguments are scalar expressions.
type TableFuncSpec struct {
	SpecSuffix
	Name  string
	Input TableSpec
	Args  []Expr
}

func (*TableFuncSpec) tableSpecNode() {}

// RawQuerySpec is an embedded pass-through query, forwarded verbatim to the
// external engine.
type RawQuerySpec struct {
	SpecSuffix
	Query string
}

func (*RawQuerySpec) tableSpecNode() {}

// HdfsFileSpec is a file input location given as name=value parameters.
type HdfsFileSpec struct {
	SpecSuffix
	Params []Param
}

func (*HdfsFileSpec) tableSpecNode() {}

// Param is a name=value pair in an HDFS file spec or SERDEPROPERTIES list.
type Param struct {
	Name  string
	Value string
}

// HiveTableSpec is a one- or two-part table reference.
type HiveTableSpec struct {
	SpecSuffix
	Db    string // optional
	Table string
}

func (*HiveTableSpec) tableSpecNode() {}

// ---------- Window specifications ----------

// WindowDef is a named window definition: WINDOW name AS (spec).
type WindowDef struct {
	Name string
	Spec *WindowSpec
}

// WindowSpec is an OVER (...) clause body or a WINDOW definition body.
// Name refers to a named window; any locally present partition/order/frame
// overrides the referenced definition wholesale during resolution.
type WindowSpec struct {
	Name        string
	PartitionBy []*ColumnRef
	OrderBy     []*OrderColumn
	Frame       *FrameSpec
}

// FrameType distinguishes row-count frames from value frames.
type FrameType int

// Frame types.
const (
	FrameRows FrameType = iota
	FrameRange
)

func (t FrameType) String() string {
	if t == FrameRange {
		return "RANGE"
	}
	return "ROWS"
}

// FrameSpec is a window frame: ROWS BETWEEN a AND b or RANGE BETWEEN a AND b.
type FrameSpec struct {
	Type  FrameType
	Start *FrameBound
	End   *FrameBound
}

// BoundType is the kind of a frame boundary.
type BoundType int

// Frame boundary kinds.
const (
	BoundUnboundedPreceding BoundType = iota
	BoundUnboundedFollowing
	BoundCurrentRow
	BoundPreceding // n PRECEDING
	BoundFollowing // n FOLLOWING
	BoundValue     // expr LESS|MORE n (RANGE frames only)
)

func (t BoundType) String() string {
	switch t {
	case BoundUnboundedPreceding:
		return "UNBOUNDED PRECEDING"
	case BoundUnboundedFollowing:
		return "UNBOUNDED FOLLOWING"
	case BoundCurrentRow:
		return "CURRENT ROW"
	case BoundPreceding:
		return "PRECEDING"
	case BoundFollowing:
		return "FOLLOWING"
	case BoundValue:
		return "VALUE"
	}
	return "BOUND"
}

// Direction gives the widening direction of a value boundary.
type Direction int

// Value-boundary directions. LESS widens the preceding side (include rows
// whose order value is within the offset below), MORE the following side.
const (
	DirLess Direction = iota
	DirMore
)

// FrameBound is one endpoint of a frame.
// For BoundPreceding/BoundFollowing, Offset holds the row count.
// For BoundValue, ValueExpr/ValueOffset/Direction describe the value bound.
type FrameBound struct {
	Type        BoundType
	Offset      int
	ValueExpr   Expr
	ValueOffset float64
	Direction   Direction
}

// ---------- Output specification ----------

// OutputSpec is the structured result of the INTO clause. Writing output is
// the caller's concern; the parser only produces the spec.
type OutputSpec struct {
	Path          string
	SerDe         string  // optional
	SerDeProps    []Param // optional WITH SERDEPROPERTIES(...)
	RecordWriter  string  // mutually exclusive with Format
	Format        string
	LoadTable     string // optional LOAD INTO TABLE target
	LoadPartition string // optional PARTITION 'spec'
	Overwrite     bool
}

// ---------- Expressions ----------

// ColumnRef is a (possibly qualified) column reference.
type ColumnRef struct {
	Table  string // optional qualifier
	Column string
}

func (*ColumnRef) exprNode() {}

// LiteralKind is the type of a literal value.
type LiteralKind int

// Literal kinds.
const (
	LiteralNumber LiteralKind = iota // decimal or scientific
	LiteralInt
	LiteralBigint   // 10L
	LiteralSmallint // 10S
	LiteralTinyint  // 10Y
	LiteralString
	LiteralBool
	LiteralNull
)

// Literal is a literal value. Charset is set for charset-prefixed string
// literals (_utf8'x').
type Literal struct {
	Kind    LiteralKind
	Value   string
	Charset string
}

func (*Literal) exprNode() {}

// BinaryExpr is a binary operation. Comparison operators chain
// left-associatively: a < b < c parses as (a<b)<c.
type BinaryExpr struct {
	Left  Expr
	Op    token.TokenType
	Right Expr
}

func (*BinaryExpr) exprNode() {}

// UnaryExpr is a prefix operation: NOT, unary +, unary -, ~.
type UnaryExpr struct {
	Op   token.TokenType
	Expr Expr
}

func (*UnaryExpr) exprNode() {}

// IsNullExpr is expr IS [NOT] NULL.
type IsNullExpr struct {
	Expr Expr
	Not  bool
}

func (*IsNullExpr) exprNode() {}

// FieldAccess is expr.field on a non-column expression.
type FieldAccess struct {
	Expr  Expr
	Field string
}

func (*FieldAccess) exprNode() {}

// IndexExpr is expr[index].
type IndexExpr struct {
	Expr  Expr
	Index Expr
}

func (*IndexExpr) exprNode() {}

// ParenExpr is a parenthesized expression.
type ParenExpr struct {
	Expr Expr
}

func (*ParenExpr) exprNode() {}

// FuncKind is the shape of a function call node.
type FuncKind int

// Function call shapes. The windowed variants apply when Over is present.
const (
	Func FuncKind = iota
	FuncDistinct
	FuncStar
	WindowFunc
	WindowFuncDistinct
	WindowFuncStar
)

// FuncCall is a function invocation: plain, DISTINCT, star, or windowed.
// BETWEEN, CASE and WHEN lower to FuncCall nodes with fixed argument shapes:
//
//	a BETWEEN lo AND hi     -> FuncCall{Name:"between", Args:[true, a, lo, hi]}
//	a NOT BETWEEN lo AND hi -> FuncCall{Name:"between", Args:[false, a, lo, hi]}
//	CASE e WHEN v THEN r... -> FuncCall{Name:"case", Args:[e, v, r, ..., else?]}
//	CASE WHEN c THEN r...   -> FuncCall{Name:"when", Args:[c, r, ..., else?]}
//	a IN (x, y)             -> FuncCall{Name:"in", Args:[a, x, y]}
type FuncCall struct {
	Name     string
	Distinct bool
	Star     bool
	Args     []Expr
	Over     *WindowSpec
}

func (*FuncCall) exprNode() {}

// Kind returns the three-way (six with OVER) shape of the call.
func (f *FuncCall) Kind() FuncKind {
	windowed := f.Over != nil
	switch {
	case f.Star && windowed:
		return WindowFuncStar
	case f.Star:
		return FuncStar
	case f.Distinct && windowed:
		return WindowFuncDistinct
	case f.Distinct:
		return FuncDistinct
	case windowed:
		return WindowFunc
	default:
		return Func
	}
}
