// Package parser implements the windowing query language: a hand-written
// recursive-descent parser over a pre-lexed token buffer.
//
// # Usage
//
//	q, err := parser.Parse("select sum(a) over w from t window w as (partition by b)", registry)
//	if err != nil {
//	    // handle error
//	}
//
// # Grammar Overview
//
//	query      → SELECT select_list FROM table_spec [WHERE expr] [window_clause] [into_clause] EOF
//	           | FROM table_spec SELECT select_list [WHERE expr] [window_clause] [into_clause] EOF
//
// Both forms produce an identical Query tree. See each file for the detailed
// grammar rules of that section.
//
// Lookahead decisions are made with bounded peeks plus, where the grammar
// needs a syntactic predicate, an explicit try-and-rewind sub-parse over the
// token buffer. Predicates are pure: a failed probe restores both the cursor
// and the diagnostic buffer.
package parser

import (
	"fmt"
	"strings"

	"github.com/windql-lang/windql/pkg/token"
)

// FunctionResolver answers the parser's semantic predicates. It is consulted
// to decide whether name(...) in a select column is a windowed function call.
type FunctionResolver interface {
	IsWindowFunction(name string) bool
}

// Parser parses a query into an AST.
type Parser struct {
	tokens []token.Token
	pos    int
	reg    FunctionResolver
	errors []error
}

// NewParser creates a parser for the given query text. Lexing happens
// eagerly; a lexical error is recorded and surfaces from Parse.
func NewParser(query string, reg FunctionResolver) *Parser {
	tokens, err := Lex(query)
	p := &Parser{tokens: tokens, reg: reg}
	if err != nil {
		p.errors = append(p.errors, err)
	}
	if len(p.tokens) == 0 || p.tokens[len(p.tokens)-1].Type != token.EOF {
		p.tokens = append(p.tokens, token.Token{Type: token.EOF})
	}
	return p
}

// Parse parses the query text and returns the AST.
func Parse(query string, reg FunctionResolver) (*Query, error) {
	p := NewParser(query, reg)
	return p.Parse()
}

// Parse runs the top-level query rule. On failure it returns no AST and the
// first error; all accumulated diagnostics are available via ParseErrors.
func (p *Parser) Parse() (*Query, error) {
	if len(p.errors) > 0 {
		return nil, p.errors[0]
	}

	q := &Query{}

	switch p.cur().Type {
	case token.SELECT:
		p.advance()
		q.Select = p.parseSelectList()
		p.expect("query", token.FROM)
		q.Input = p.parseTableSpec()
	case token.FROM:
		p.advance()
		q.Input = p.parseTableSpec()
		p.expect("query", token.SELECT)
		q.Select = p.parseSelectList()
	default:
		p.addError("query", fmt.Sprintf("expected SELECT or FROM, found %s", p.cur().Type))
		return nil, p.errors[0]
	}

	if len(p.errors) > 0 {
		return nil, p.errors[0]
	}

	if p.match(token.WHERE) {
		q.Where = p.parseExpression()
	}
	if p.check(token.WINDOW) {
		q.Windows = p.parseWindowClause()
	}
	if p.check(token.INTO) {
		q.Output = p.parseOutputSpec()
	}
	p.expect("query", token.EOF)

	if len(p.errors) > 0 {
		return nil, p.errors[0]
	}
	return q, nil
}

// ParseErrors returns all accumulated diagnostics joined by newlines, or the
// empty string when parsing succeeded. This is the single error-reporting
// channel for embedding callers.
func (p *Parser) ParseErrors() string {
	if len(p.errors) == 0 {
		return ""
	}
	msgs := make([]string, len(p.errors))
	for i, err := range p.errors {
		msgs[i] = err.Error()
	}
	return strings.Join(msgs, "\n")
}

// ---------- Token cursor ----------

func (p *Parser) cur() token.Token {
	return p.tokens[p.pos]
}

func (p *Parser) peek() token.Token {
	return p.at(p.pos + 1)
}

func (p *Parser) at(i int) token.Token {
	if i >= len(p.tokens) {
		return p.tokens[len(p.tokens)-1] // EOF
	}
	return p.tokens[i]
}

// advance moves to the next token. It never moves past EOF.
func (p *Parser) advance() {
	if p.pos < len(p.tokens)-1 {
		p.pos++
	}
}

// check returns true if the current token is of the given type.
func (p *Parser) check(t token.TokenType) bool {
	return p.cur().Type == t
}

// checkPeek returns true if the lookahead token is of the given type.
func (p *Parser) checkPeek(t token.TokenType) bool {
	return p.peek().Type == t
}

// match consumes the current token if it matches and returns true.
func (p *Parser) match(t token.TokenType) bool {
	if p.check(t) {
		p.advance()
		return true
	}
	return false
}

// expect consumes the current token if it matches, otherwise records an error.
func (p *Parser) expect(rule string, t token.TokenType) bool {
	if p.check(t) {
		p.advance()
		return true
	}
	p.addError(rule, fmt.Sprintf(errUnexpectedToken, p.cur().Type, t))
	return false
}

// addError records a parse error at the current token.
func (p *Parser) addError(rule, msg string) {
	p.errors = append(p.errors, &ParseError{
		Rule:    rule,
		Tok:     p.cur(),
		Message: msg,
	})
}

// ---------- Syntactic predicates ----------

// marker saves the cursor and the diagnostic count so a trial parse can be
// rolled back without side effects.
type marker struct {
	pos  int
	nerr int
}

func (p *Parser) mark() marker {
	return marker{pos: p.pos, nerr: len(p.errors)}
}

func (p *Parser) rewind(m marker) {
	p.pos = m.pos
	p.errors = p.errors[:m.nerr]
}

// tryColumnRef is the trailing-comma predicate: it attempts to parse
// "COMMA columnRef" and reports whether that succeeded. On failure nothing
// is consumed and no diagnostics are kept.
func (p *Parser) tryColumnRef() (*ColumnRef, bool) {
	m := p.mark()
	if !p.match(token.COMMA) {
		return nil, false
	}
	ref := p.parseColumnRef()
	if ref == nil || len(p.errors) > m.nerr {
		p.rewind(m)
		return nil, false
	}
	return ref, true
}

// parseColumnRef parses identifier[.identifier].
func (p *Parser) parseColumnRef() *ColumnRef {
	if !p.check(token.IDENT) {
		p.addError("columnRef", fmt.Sprintf(errUnexpectedToken, p.cur().Type, token.IDENT))
		return nil
	}
	first := p.cur().Literal
	p.advance()

	if p.check(token.DOT) && p.checkPeek(token.IDENT) {
		p.advance()
		second := p.cur().Literal
		p.advance()
		return &ColumnRef{Table: first, Column: second}
	}
	return &ColumnRef{Column: first}
}

// ---------- Select list ----------

// parseSelectList parses select_col ("," select_col)*.
func (p *Parser) parseSelectList() *SelectList {
	list := &SelectList{}
	for {
		col := p.parseSelectColumn()
		if col != nil {
			list.Columns = append(list.Columns, col)
		}
		if !p.match(token.COMMA) {
			break
		}
	}
	if len(list.Columns) == 0 {
		p.addError("selectList", "at least one select column is required")
	}
	return list
}

// parseSelectColumn distinguishes a windowed function call from a general
// expression: the leading identifier must be a registered window-function
// name AND be immediately followed by '('. Two tokens of lookahead plus the
// registry predicate.
func (p *Parser) parseSelectColumn() *SelectColumn {
	col := &SelectColumn{}

	if p.check(token.IDENT) && p.checkPeek(token.LPAREN) &&
		p.reg != nil && p.reg.IsWindowFunction(p.cur().Literal) {
		col.Expr = p.parseWindowFuncCall()
	} else {
		col.Expr = p.parseExpression()
	}

	if p.match(token.AS) {
		if p.check(token.IDENT) {
			col.Alias = p.cur().Literal
			p.advance()
		} else {
			p.addError("selectColumn", "expected alias after AS")
		}
	}
	return col
}

// parseWindowFuncCall parses name(args) [OVER (window_spec)].
func (p *Parser) parseWindowFuncCall() Expr {
	name := p.cur().Literal
	p.advance()
	fn := p.parseCallArgs(name)
	if p.match(token.OVER) {
		p.expect("windowFunction", token.LPAREN)
		fn.Over = p.parseWindowSpec()
		p.expect("windowFunction", token.RPAREN)
	}
	return fn
}
