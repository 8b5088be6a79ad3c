package engine

import (
	"fmt"

	"github.com/expr-lang/expr/vm"

	"github.com/windql-lang/windql/pkg/parser"
	"github.com/windql-lang/windql/pkg/ptf"
	"github.com/windql-lang/windql/pkg/window"
)

// Binding turns a parsed query into an executable plan: every window
// specification resolved, every expression compiled, the effective partition
// and order keys agreed on. All failures surface here, before row one.

type plan struct {
	cols      []*planColumn
	where     *vm.Program
	partCols  []string
	orderCols []*parser.OrderColumn
}

// planColumn is one select-list entry: either a compiled scalar expression
// or a windowed function with its resolved spec and frame evaluator.
type planColumn struct {
	name string

	prog *vm.Program // scalar path

	winFn    ptf.WindowFunc // windowed path
	res      *window.Resolved
	frame    *window.FrameEval
	args     []*vm.Program
	distinct bool
	star     bool
}

func (p *plan) windowedCount() int {
	n := 0
	for _, c := range p.cols {
		if c.winFn != nil {
			n++
		}
	}
	return n
}

func (p *plan) columnNames() []string {
	names := make([]string, len(p.cols))
	for i, c := range p.cols {
		names[i] = c.name
	}
	return names
}

// bind compiles the query into a plan.
func (e *Engine) bind(q *parser.Query) (*plan, error) {
	named := make(map[string]*parser.WindowSpec, len(q.Windows))
	for _, def := range q.Windows {
		if _, dup := named[def.Name]; dup {
			return nil, fmt.Errorf("window %s defined twice", def.Name)
		}
		named[def.Name] = def.Spec
	}

	p := &plan{}
	if suffix := effectiveSuffix(q.Input); suffix != nil {
		for _, ref := range suffix.PartitionBy {
			p.partCols = append(p.partCols, ref.Column)
		}
		p.orderCols = suffix.OrderBy
	}

	for i, col := range q.Select.Columns {
		pc, err := e.bindColumn(col, named, i)
		if err != nil {
			return nil, err
		}
		if pc.winFn != nil {
			if err := p.adoptKeys(pc.res); err != nil {
				return nil, fmt.Errorf("column %s: %w", pc.name, err)
			}
		}
		p.cols = append(p.cols, pc)
	}

	if q.Where != nil {
		prog, err := window.Compile(q.Where)
		if err != nil {
			return nil, fmt.Errorf("where: %w", err)
		}
		p.where = prog
	}
	return p, nil
}

func (e *Engine) bindColumn(col *parser.SelectColumn, named map[string]*parser.WindowSpec, idx int) (*planColumn, error) {
	pc := &planColumn{name: columnName(col, idx)}

	fn, ok := col.Expr.(*parser.FuncCall)
	if ok && fn.Over != nil {
		winFn, known := e.reg.WindowFunction(fn.Name)
		if !known {
			return nil, fmt.Errorf("unknown window function %s", fn.Name)
		}
		pc.winFn = winFn
		pc.distinct = fn.Distinct
		pc.star = fn.Star

		res, err := window.Resolve(fn.Over, named)
		if err != nil {
			return nil, fmt.Errorf("column %s: %w", pc.name, err)
		}
		pc.res = res

		if pc.frame, err = window.NewFrameEval(res); err != nil {
			return nil, fmt.Errorf("column %s: %w", pc.name, err)
		}

		for _, arg := range fn.Args {
			prog, err := window.Compile(arg)
			if err != nil {
				return nil, fmt.Errorf("column %s: %w", pc.name, err)
			}
			pc.args = append(pc.args, prog)
		}
		return pc, nil
	}

	prog, err := window.Compile(col.Expr)
	if err != nil {
		return nil, fmt.Errorf("column %s: %w", pc.name, err)
	}
	pc.prog = prog
	return pc, nil
}

// adoptKeys folds one resolved window into the plan's effective partition
// and order keys. Partitioning happens once per query, so every window must
// agree with the keys already adopted (from the input suffix or an earlier
// window); frames may differ freely.
func (p *plan) adoptKeys(res *window.Resolved) error {
	if len(res.PartitionBy) > 0 {
		cols := make([]string, len(res.PartitionBy))
		for i, ref := range res.PartitionBy {
			cols[i] = ref.Column
		}
		if len(p.partCols) == 0 {
			p.partCols = cols
		} else if !sameStrings(p.partCols, cols) {
			return fmt.Errorf("conflicting PARTITION BY %v vs %v", p.partCols, cols)
		}
	}

	if len(res.OrderBy) > 0 {
		if len(p.orderCols) == 0 {
			p.orderCols = res.OrderBy
		} else if !sameOrder(p.orderCols, res.OrderBy) {
			return fmt.Errorf("conflicting ORDER BY specifications")
		}
	}
	return nil
}

// checkShape validates windowed columns against the input shape. A RANGE
// frame with distance or value bounds measures offsets in the order column's
// value space, so the column must carry a numeric type. Columns the shape
// does not describe pass; their values are checked during evaluation.
func (p *plan) checkShape(shape *ptf.Shape) error {
	if shape == nil {
		return nil
	}
	for _, c := range p.cols {
		if c.winFn == nil || !c.frame.NeedsNumericOrder() {
			continue
		}
		col := c.res.OrderColumn()
		if typ := shape.Type(col); typ != "" && !numericType(typ) {
			return fmt.Errorf("column %s: order column %s has type %s, RANGE distance frames need a numeric ordering",
				c.name, col, typ)
		}
	}
	return nil
}

func numericType(t string) bool {
	switch t {
	case "int", "bigint", "float", "double":
		return true
	}
	return false
}

func sameStrings(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func sameOrder(a, b []*parser.OrderColumn) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i].Column.Column != b[i].Column.Column || a[i].Desc != b[i].Desc {
			return false
		}
	}
	return true
}

// effectiveSuffix finds the partition/order suffix governing the input:
// the innermost non-empty suffix in a table-function nesting, since the
// partitioning written on a function's input is what the function consumes.
func effectiveSuffix(spec parser.TableSpec) *parser.SpecSuffix {
	if fn, ok := spec.(*parser.TableFuncSpec); ok {
		if inner := effectiveSuffix(fn.Input); inner != nil {
			return inner
		}
	}
	s := spec.Suffix()
	if s != nil && (len(s.PartitionBy) > 0 || len(s.OrderBy) > 0) {
		return s
	}
	return nil
}

// columnName picks the output name: alias, then column name, then function
// name, then a positional fallback.
func columnName(col *parser.SelectColumn, idx int) string {
	if col.Alias != "" {
		return col.Alias
	}
	switch e := col.Expr.(type) {
	case *parser.ColumnRef:
		return e.Column
	case *parser.FuncCall:
		return e.Name
	default:
		return fmt.Sprintf("_col%d", idx)
	}
}

// evalConstArgs evaluates table-function arguments against an empty row;
// they must be constant expressions.
func evalConstArgs(exprs []parser.Expr) ([]any, error) {
	args := make([]any, len(exprs))
	for i, ex := range exprs {
		prog, err := window.Compile(ex)
		if err != nil {
			return nil, err
		}
		if args[i], err = window.Eval(prog, nil); err != nil {
			return nil, err
		}
	}
	return args, nil
}
