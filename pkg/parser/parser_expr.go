package parser

import "github.com/windql-lang/windql/pkg/token"

// Expression parsing: an explicit cascade, one function per precedence level,
// lowest binding first:
//
//	or_expr       → and_expr (OR and_expr)*
//	and_expr      → not_expr (AND not_expr)*
//	not_expr      → NOT not_expr | cmp_expr
//	cmp_expr      → bitor_expr (cmp_op bitor_expr | [NOT] IN/BETWEEN/LIKE-family)*
//	bitor_expr    → bitand_expr ("|" bitand_expr)*
//	bitand_expr   → add_expr ("&" add_expr)*
//	add_expr      → mul_expr (("+"|"-") mul_expr)*
//	mul_expr      → xor_expr (("*"|"/"|"%"|DIV) xor_expr)*
//	xor_expr      → null_expr ("^" null_expr)*
//	null_expr     → unary_expr (IS [NOT] NULL)*
//	unary_expr    → ("+"|"-"|"~") unary_expr | postfix_expr
//	postfix_expr  → atom ("." IDENT | "[" expr "]")*
//
// Comparison operators chain left-associatively: each application wraps the
// previously built expression as its left operand, so a < b < c parses as
// (a<b)<c. This matches the language, not mathematical chaining; do not "fix".

// parseExpression parses a full expression.
func (p *Parser) parseExpression() Expr {
	return p.parseOrExpr()
}

func (p *Parser) parseOrExpr() Expr {
	left := p.parseAndExpr()
	for p.check(token.OR) {
		p.advance()
		right := p.parseAndExpr()
		left = &BinaryExpr{Left: left, Op: token.OR, Right: right}
	}
	return left
}

func (p *Parser) parseAndExpr() Expr {
	left := p.parseNotExpr()
	for p.check(token.AND) {
		p.advance()
		right := p.parseNotExpr()
		left = &BinaryExpr{Left: left, Op: token.AND, Right: right}
	}
	return left
}

func (p *Parser) parseNotExpr() Expr {
	// NOT followed by a negatable infix operator belongs to the comparison
	// level (a NOT LIKE b); only a leading NOT is a prefix here.
	if p.check(token.NOT) {
		p.advance()
		return &UnaryExpr{Op: token.NOT, Expr: p.parseNotExpr()}
	}
	return p.parseCmpExpr()
}

// parseCmpExpr handles the comparison family: relational operators, IN,
// BETWEEN, LIKE/RLIKE/REGEXP and their NOT forms. All chain on the left.
func (p *Parser) parseCmpExpr() Expr {
	left := p.parseBitOrExpr()

	for {
		switch p.cur().Type {
		case token.EQ, token.NE, token.LT, token.GT, token.LE, token.GE:
			op := p.cur().Type
			p.advance()
			right := p.parseBitOrExpr()
			left = &BinaryExpr{Left: left, Op: op, Right: right}

		case token.IN:
			p.advance()
			left = p.parseInExpr(left)

		case token.BETWEEN:
			p.advance()
			left = p.parseBetweenExpr(left, true)

		case token.LIKE, token.RLIKE, token.REGEXP:
			op := p.cur().Type
			p.advance()
			right := p.parseBitOrExpr()
			left = &BinaryExpr{Left: left, Op: op, Right: right}

		case token.NOT:
			switch p.peek().Type {
			case token.IN:
				p.advance()
				p.advance()
				left = &UnaryExpr{Op: token.NOT, Expr: p.parseInExpr(left)}
			case token.BETWEEN:
				p.advance()
				p.advance()
				// Polarity is baked into the BETWEEN node itself, not a
				// wrapping NOT.
				left = p.parseBetweenExpr(left, false)
			case token.LIKE, token.RLIKE, token.REGEXP:
				p.advance()
				op := p.cur().Type
				p.advance()
				right := p.parseBitOrExpr()
				left = &UnaryExpr{Op: token.NOT, Expr: &BinaryExpr{Left: left, Op: op, Right: right}}
			default:
				return left
			}

		default:
			return left
		}
	}
}

// parseInExpr parses "(expr, ...)" after IN, lowering to an n-ary call:
// a IN (x, y) -> in(a, x, y).
func (p *Parser) parseInExpr(left Expr) Expr {
	fn := &FuncCall{Name: "in", Args: []Expr{left}}
	p.expect("inExpression", token.LPAREN)
	for {
		fn.Args = append(fn.Args, p.parseExpression())
		if !p.match(token.COMMA) {
			break
		}
	}
	p.expect("inExpression", token.RPAREN)
	return fn
}

// parseBetweenExpr parses "lo AND hi" after [NOT] BETWEEN. The polarity flag
// is encoded as the leading boolean argument:
// a BETWEEN 1 AND 10 -> between(true, a, 1, 10); NOT BETWEEN carries false.
// Bounds parse above AND so the separator is not captured.
func (p *Parser) parseBetweenExpr(left Expr, polarity bool) Expr {
	lo := p.parseBitOrExpr()
	p.expect("betweenExpression", token.AND)
	hi := p.parseBitOrExpr()

	flag := "false"
	if polarity {
		flag = "true"
	}
	return &FuncCall{
		Name: "between",
		Args: []Expr{&Literal{Kind: LiteralBool, Value: flag}, left, lo, hi},
	}
}

func (p *Parser) parseBitOrExpr() Expr {
	left := p.parseBitAndExpr()
	for p.check(token.PIPE) {
		p.advance()
		right := p.parseBitAndExpr()
		left = &BinaryExpr{Left: left, Op: token.PIPE, Right: right}
	}
	return left
}

func (p *Parser) parseBitAndExpr() Expr {
	left := p.parseAddExpr()
	for p.check(token.AMP) {
		p.advance()
		right := p.parseAddExpr()
		left = &BinaryExpr{Left: left, Op: token.AMP, Right: right}
	}
	return left
}

func (p *Parser) parseAddExpr() Expr {
	left := p.parseMulExpr()
	for p.check(token.PLUS) || p.check(token.MINUS) {
		op := p.cur().Type
		p.advance()
		right := p.parseMulExpr()
		left = &BinaryExpr{Left: left, Op: op, Right: right}
	}
	return left
}

func (p *Parser) parseMulExpr() Expr {
	left := p.parseXorExpr()
	for p.check(token.STAR) || p.check(token.SLASH) || p.check(token.PERCENT) || p.check(token.DIV) {
		op := p.cur().Type
		p.advance()
		right := p.parseXorExpr()
		left = &BinaryExpr{Left: left, Op: op, Right: right}
	}
	return left
}

func (p *Parser) parseXorExpr() Expr {
	left := p.parseNullCheckExpr()
	for p.check(token.CARET) {
		p.advance()
		right := p.parseNullCheckExpr()
		left = &BinaryExpr{Left: left, Op: token.CARET, Right: right}
	}
	return left
}

func (p *Parser) parseNullCheckExpr() Expr {
	left := p.parseUnaryExpr()
	for p.check(token.IS) {
		p.advance()
		not := p.match(token.NOT)
		p.expect("nullCheck", token.NULL)
		left = &IsNullExpr{Expr: left, Not: not}
	}
	return left
}

func (p *Parser) parseUnaryExpr() Expr {
	switch p.cur().Type {
	case token.PLUS, token.MINUS, token.TILDE:
		op := p.cur().Type
		p.advance()
		return &UnaryExpr{Op: op, Expr: p.parseUnaryExpr()}
	}
	return p.parsePostfixExpr()
}

// parsePostfixExpr parses dot and bracket access. A single dot on a bare
// column reference qualifies it; further dots become field accesses.
func (p *Parser) parsePostfixExpr() Expr {
	expr := p.parseAtom()

	for {
		switch {
		case p.check(token.DOT) && p.checkPeek(token.IDENT):
			p.advance()
			field := p.cur().Literal
			p.advance()
			if ref, ok := expr.(*ColumnRef); ok && ref.Table == "" {
				expr = &ColumnRef{Table: ref.Column, Column: field}
			} else {
				expr = &FieldAccess{Expr: expr, Field: field}
			}
		case p.check(token.LBRACKET):
			p.advance()
			idx := p.parseExpression()
			p.expect("indexAccess", token.RBRACKET)
			expr = &IndexExpr{Expr: expr, Index: idx}
		default:
			return expr
		}
	}
}
