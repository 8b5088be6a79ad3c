package parser

import (
	"fmt"
	"strings"

	"github.com/windql-lang/windql/pkg/token"
)

// Atom parsing: literals, column references, function calls, CASE forms,
// parenthesized expressions.
//
// Grammar:
//
//	atom       → NUMBER | STRING | CHARSETLIT | TRUE | FALSE | NULL
//	           | case_expr | IDENT | func_call | "(" expr ")"
//	func_call  → IDENT "(" ("*" | [DISTINCT] expr_list | ε) ")"
//	case_expr  → CASE [expr] (WHEN expr THEN expr)+ [ELSE expr] END

// parseAtom parses a primary expression.
func (p *Parser) parseAtom() Expr {
	switch p.cur().Type {
	case token.NUMBER:
		lit := numberLiteral(p.cur().Literal)
		p.advance()
		return lit

	case token.STRING:
		lit := &Literal{Kind: LiteralString, Value: p.cur().Literal}
		p.advance()
		return lit

	case token.CHARSETLIT:
		lit := charsetLiteral(p.cur().Literal)
		p.advance()
		return lit

	case token.TRUE:
		p.advance()
		return &Literal{Kind: LiteralBool, Value: "true"}

	case token.FALSE:
		p.advance()
		return &Literal{Kind: LiteralBool, Value: "false"}

	case token.NULL:
		p.advance()
		return &Literal{Kind: LiteralNull, Value: "null"}

	case token.CASE:
		return p.parseCaseExpr()

	case token.IDENT:
		name := p.cur().Literal
		p.advance()
		if p.check(token.LPAREN) {
			return p.parseCallArgs(name)
		}
		return &ColumnRef{Column: name}

	case token.LPAREN:
		p.advance()
		inner := p.parseExpression()
		p.expect("parenExpression", token.RPAREN)
		return &ParenExpr{Expr: inner}

	default:
		p.addError("atom", fmt.Sprintf("unexpected token in expression: %s", p.cur().Type))
		p.advance()
		return nil
	}
}

// parseCallArgs parses the argument list of a function call whose name has
// already been consumed. Three shapes: name(*), name([DISTINCT] args...),
// name().
func (p *Parser) parseCallArgs(name string) *FuncCall {
	fn := &FuncCall{Name: asciiLower(name)}

	p.expect("functionCall", token.LPAREN)

	if p.check(token.STAR) {
		fn.Star = true
		p.advance()
	} else if !p.check(token.RPAREN) {
		if p.match(token.DISTINCT) {
			fn.Distinct = true
		}
		for {
			arg := p.parseExpression()
			fn.Args = append(fn.Args, arg)
			if !p.match(token.COMMA) {
				break
			}
		}
	}

	p.expect("functionCall", token.RPAREN)
	return fn
}

// parseCaseExpr parses both CASE forms and lowers them to a flat call node.
// With an operand the node is tagged "case"; without, "when". At least one
// WHEN/THEN pair is mandatory.
func (p *Parser) parseCaseExpr() Expr {
	p.expect("caseExpression", token.CASE)

	fn := &FuncCall{Name: "when"}
	if !p.check(token.WHEN) {
		fn.Name = "case"
		fn.Args = append(fn.Args, p.parseExpression())
	}

	pairs := 0
	for p.match(token.WHEN) {
		fn.Args = append(fn.Args, p.parseExpression())
		p.expect("caseExpression", token.THEN)
		fn.Args = append(fn.Args, p.parseExpression())
		pairs++
	}
	if pairs == 0 {
		p.addError("caseExpression", "at least one WHEN ... THEN ... is required")
	}

	if p.match(token.ELSE) {
		fn.Args = append(fn.Args, p.parseExpression())
	}
	p.expect("caseExpression", token.END)

	return fn
}

// numberLiteral classifies a NUMBER token literal into its literal kind.
// A trailing L/S/Y width suffix is stripped into the kind.
func numberLiteral(text string) *Literal {
	if len(text) > 1 {
		switch text[len(text)-1] {
		case 'l', 'L':
			return &Literal{Kind: LiteralBigint, Value: text[:len(text)-1]}
		case 's', 'S':
			return &Literal{Kind: LiteralSmallint, Value: text[:len(text)-1]}
		case 'y', 'Y':
			return &Literal{Kind: LiteralTinyint, Value: text[:len(text)-1]}
		}
	}
	if strings.ContainsAny(text, ".eE") {
		return &Literal{Kind: LiteralNumber, Value: text}
	}
	return &Literal{Kind: LiteralInt, Value: text}
}

// charsetLiteral splits a CHARSETLIT token ("_utf8'text") into charset and
// decoded value. The lexer guarantees exactly one quote separator.
func charsetLiteral(text string) *Literal {
	idx := strings.IndexByte(text, '\'')
	if idx < 0 {
		return &Literal{Kind: LiteralString, Value: text}
	}
	return &Literal{
		Kind:    LiteralString,
		Value:   text[idx+1:],
		Charset: text[:idx],
	}
}
