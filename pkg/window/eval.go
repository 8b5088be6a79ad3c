package window

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"
	"github.com/spf13/cast"

	"github.com/windql-lang/windql/pkg/parser"
	"github.com/windql-lang/windql/pkg/token"
)

// Expression evaluation. AST expressions are translated to expr-lang source,
// compiled once, and run against a per-row environment. The same machinery
// serves WHERE predicates, projections and RANGE value bounds.

// ExprSource translates an AST expression into expr-lang source.
func ExprSource(e parser.Expr) (string, error) {
	var b strings.Builder
	if err := writeExpr(&b, e); err != nil {
		return "", err
	}
	return b.String(), nil
}

// Compile translates and compiles an AST expression. Unknown columns
// evaluate to nil rather than failing, matching SQL null propagation.
func Compile(e parser.Expr) (*vm.Program, error) {
	src, err := ExprSource(e)
	if err != nil {
		return nil, err
	}
	// expr-lang ships a compile-time concat builtin (array concatenation)
	// that would shadow the env-supplied SQL scalar of the same name.
	prog, err := expr.Compile(src,
		expr.AllowUndefinedVariables(),
		expr.DisableBuiltin("concat"),
	)
	if err != nil {
		return nil, fmt.Errorf("compile %q: %w", src, err)
	}
	return prog, nil
}

// Eval runs a compiled expression against one row.
func Eval(prog *vm.Program, row map[string]any) (any, error) {
	return expr.Run(prog, Env(row))
}

// EvalNumber runs a compiled expression and coerces the result numerically.
func EvalNumber(prog *vm.Program, row map[string]any) (float64, error) {
	v, err := Eval(prog, row)
	if err != nil {
		return 0, err
	}
	return cast.ToFloat64E(v)
}

// Env builds the evaluation environment for one row: the row's columns plus
// the built-in scalar functions. Functions shadow a column of the same name.
func Env(row map[string]any) map[string]any {
	env := make(map[string]any, len(row)+len(stdFuncs))
	for k, v := range row {
		env[k] = v
	}
	for k, v := range stdFuncs {
		env[k] = v
	}
	return env
}

func writeExpr(b *strings.Builder, e parser.Expr) error {
	switch n := e.(type) {
	case *parser.ColumnRef:
		b.WriteString(n.Column)

	case *parser.Literal:
		switch n.Kind {
		case parser.LiteralString:
			b.WriteString(strconv.Quote(n.Value))
		case parser.LiteralNull:
			b.WriteString("nil")
		default:
			b.WriteString(n.Value)
		}

	case *parser.ParenExpr:
		b.WriteByte('(')
		if err := writeExpr(b, n.Expr); err != nil {
			return err
		}
		b.WriteByte(')')

	case *parser.BinaryExpr:
		return writeBinary(b, n)

	case *parser.UnaryExpr:
		switch n.Op {
		case token.NOT:
			return writeCall(b, "!", n.Expr)
		case token.MINUS:
			return writeCall(b, "-", n.Expr)
		case token.TILDE:
			return writeCall(b, "bnot", n.Expr)
		default: // unary plus is a no-op
			return writeExpr(b, n.Expr)
		}

	case *parser.IsNullExpr:
		b.WriteByte('(')
		if err := writeExpr(b, n.Expr); err != nil {
			return err
		}
		if n.Not {
			b.WriteString(" != nil)")
		} else {
			b.WriteString(" == nil)")
		}

	case *parser.FieldAccess:
		if err := writeExpr(b, n.Expr); err != nil {
			return err
		}
		b.WriteByte('.')
		b.WriteString(n.Field)

	case *parser.IndexExpr:
		if err := writeExpr(b, n.Expr); err != nil {
			return err
		}
		b.WriteByte('[')
		if err := writeExpr(b, n.Index); err != nil {
			return err
		}
		b.WriteByte(']')

	case *parser.FuncCall:
		return writeFunc(b, n)

	default:
		return fmt.Errorf("cannot evaluate %T", e)
	}
	return nil
}

var binaryOps = map[token.TokenType]string{
	token.EQ:      "==",
	token.NE:      "!=",
	token.LT:      "<",
	token.LE:      "<=",
	token.GT:      ">",
	token.GE:      ">=",
	token.AND:     "&&",
	token.OR:      "||",
	token.PLUS:    "+",
	token.MINUS:   "-",
	token.STAR:    "*",
	token.SLASH:   "/",
	token.PERCENT: "%",
}

// Operators without an expr-lang counterpart run as built-in functions.
var binaryFuncs = map[token.TokenType]string{
	token.LIKE:   "like",
	token.RLIKE:  "rlike",
	token.REGEXP: "rlike",
	token.PIPE:   "bor",
	token.AMP:    "band",
	token.CARET:  "bxor",
	token.DIV:    "div",
}

func writeBinary(b *strings.Builder, n *parser.BinaryExpr) error {
	if op, ok := binaryOps[n.Op]; ok {
		b.WriteByte('(')
		if err := writeExpr(b, n.Left); err != nil {
			return err
		}
		b.WriteString(" " + op + " ")
		if err := writeExpr(b, n.Right); err != nil {
			return err
		}
		b.WriteByte(')')
		return nil
	}
	if fn, ok := binaryFuncs[n.Op]; ok {
		return writeCallN(b, fn, n.Left, n.Right)
	}
	return fmt.Errorf("cannot evaluate operator %s", n.Op)
}

func writeFunc(b *strings.Builder, n *parser.FuncCall) error {
	switch n.Name {
	case "between":
		// Args: polarity flag, operand, lo, hi.
		if len(n.Args) != 4 {
			return fmt.Errorf("between: want 4 args, got %d", len(n.Args))
		}
		flag, ok := n.Args[0].(*parser.Literal)
		if !ok {
			return fmt.Errorf("between: malformed polarity flag")
		}
		if flag.Value == "false" {
			return writeCallN(b, "!between", n.Args[1], n.Args[2], n.Args[3])
		}
		return writeCallN(b, "between", n.Args[1], n.Args[2], n.Args[3])

	case "in":
		if len(n.Args) < 2 {
			return fmt.Errorf("in: want at least 2 args, got %d", len(n.Args))
		}
		b.WriteByte('(')
		if err := writeExpr(b, n.Args[0]); err != nil {
			return err
		}
		b.WriteString(" in [")
		for i, a := range n.Args[1:] {
			if i > 0 {
				b.WriteString(", ")
			}
			if err := writeExpr(b, a); err != nil {
				return err
			}
		}
		b.WriteString("])")
		return nil

	case "case":
		if len(n.Args) < 3 {
			return fmt.Errorf("case: want operand and at least one pair")
		}
		return writeCase(b, n.Args[0], n.Args[1:])

	case "when":
		if len(n.Args) < 2 {
			return fmt.Errorf("when: want at least one pair")
		}
		return writeCase(b, nil, n.Args)

	default:
		if n.Star || n.Distinct {
			return fmt.Errorf("%s: aggregate call shapes are not scalar expressions", n.Name)
		}
		b.WriteString(n.Name)
		b.WriteByte('(')
		for i, a := range n.Args {
			if i > 0 {
				b.WriteString(", ")
			}
			if err := writeExpr(b, a); err != nil {
				return err
			}
		}
		b.WriteByte(')')
		return nil
	}
}

// writeCase emits nested conditionals. With an operand each branch tests
// equality against it; without, each condition stands alone. Pairs are
// (test, result)...; a trailing unpaired argument is the ELSE result.
func writeCase(b *strings.Builder, operand parser.Expr, rest []parser.Expr) error {
	if len(rest) == 0 {
		b.WriteString("nil")
		return nil
	}
	if len(rest) == 1 { // ELSE
		return writeExpr(b, rest[0])
	}

	b.WriteByte('(')
	if operand != nil {
		b.WriteByte('(')
		if err := writeExpr(b, operand); err != nil {
			return err
		}
		b.WriteString(" == ")
		if err := writeExpr(b, rest[0]); err != nil {
			return err
		}
		b.WriteByte(')')
	} else if err := writeExpr(b, rest[0]); err != nil {
		return err
	}
	b.WriteString(" ? ")
	if err := writeExpr(b, rest[1]); err != nil {
		return err
	}
	b.WriteString(" : ")
	if err := writeCase(b, operand, rest[2:]); err != nil {
		return err
	}
	b.WriteByte(')')
	return nil
}

func writeCall(b *strings.Builder, prefix string, arg parser.Expr) error {
	b.WriteString(prefix)
	b.WriteByte('(')
	if err := writeExpr(b, arg); err != nil {
		return err
	}
	b.WriteByte(')')
	return nil
}

func writeCallN(b *strings.Builder, fn string, args ...parser.Expr) error {
	b.WriteString(fn)
	b.WriteByte('(')
	for i, a := range args {
		if i > 0 {
			b.WriteString(", ")
		}
		if err := writeExpr(b, a); err != nil {
			return err
		}
	}
	b.WriteByte(')')
	return nil
}

// ---------- Built-in scalar functions ----------

var stdFuncs = map[string]any{
	"like":     sqlLike,
	"rlike":    sqlRLike,
	"between":  sqlBetween,
	"div":      sqlDiv,
	"band":     func(a, b any) int64 { return cast.ToInt64(a) & cast.ToInt64(b) },
	"bor":      func(a, b any) int64 { return cast.ToInt64(a) | cast.ToInt64(b) },
	"bxor":     func(a, b any) int64 { return cast.ToInt64(a) ^ cast.ToInt64(b) },
	"bnot":     func(a any) int64 { return ^cast.ToInt64(a) },
	"upper":    func(s any) string { return strings.ToUpper(cast.ToString(s)) },
	"lower":    func(s any) string { return strings.ToLower(cast.ToString(s)) },
	"length":   func(s any) int { return len(cast.ToString(s)) },
	"abs":      func(v any) float64 { return math.Abs(cast.ToFloat64(v)) },
	"round":    func(v any) float64 { return math.Round(cast.ToFloat64(v)) },
	"concat":   sqlConcat,
	"coalesce": sqlCoalesce,
	"substr":   sqlSubstr,
}

func sqlLike(s, pattern any) (bool, error) {
	var re strings.Builder
	re.WriteString("^")
	for _, r := range cast.ToString(pattern) {
		switch r {
		case '%':
			re.WriteString(".*")
		case '_':
			re.WriteString(".")
		default:
			re.WriteString(regexp.QuoteMeta(string(r)))
		}
	}
	re.WriteString("$")
	return regexp.MatchString(re.String(), cast.ToString(s))
}

func sqlRLike(s, pattern any) (bool, error) {
	return regexp.MatchString(cast.ToString(pattern), cast.ToString(s))
}

func sqlBetween(v, lo, hi any) bool {
	fv, errV := cast.ToFloat64E(v)
	fl, errL := cast.ToFloat64E(lo)
	fh, errH := cast.ToFloat64E(hi)
	if errV == nil && errL == nil && errH == nil {
		return fv >= fl && fv <= fh
	}
	s := cast.ToString(v)
	return s >= cast.ToString(lo) && s <= cast.ToString(hi)
}

func sqlDiv(a, b any) (int64, error) {
	d := cast.ToInt64(b)
	if d == 0 {
		return 0, fmt.Errorf("division by zero")
	}
	return cast.ToInt64(a) / d, nil
}

func sqlConcat(parts ...any) string {
	var b strings.Builder
	for _, p := range parts {
		b.WriteString(cast.ToString(p))
	}
	return b.String()
}

func sqlCoalesce(vals ...any) any {
	for _, v := range vals {
		if v != nil {
			return v
		}
	}
	return nil
}

// sqlSubstr follows SQL conventions: 1-based start, optional length.
func sqlSubstr(s any, start any, length ...any) string {
	str := cast.ToString(s)
	from := cast.ToInt(start)
	if from < 1 {
		from = 1
	}
	if from > len(str) {
		return ""
	}
	out := str[from-1:]
	if len(length) > 0 {
		n := cast.ToInt(length[0])
		if n < len(out) {
			if n < 0 {
				n = 0
			}
			out = out[:n]
		}
	}
	return out
}
