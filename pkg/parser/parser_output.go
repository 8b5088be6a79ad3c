package parser

import (
	"fmt"

	"github.com/windql-lang/windql/pkg/token"
)

// Output clause parsing.
//
// Grammar:
//
//	into_clause → INTO PATH "=" STRING [serde_part] [load_part]
//	serde_part  → SERDE STRING [WITH SERDEPROPERTIES "(" props ")"]
//	              (RECORDWRITER STRING | FORMAT STRING)
//	props       → STRING "=" STRING ("," STRING "=" STRING)*
//	load_part   → LOAD [OVERWRITE] INTO TABLE IDENT ["." IDENT]
//	              [PARTITION STRING]
//
// When SERDE is present exactly one of RECORDWRITER or FORMAT must follow.

// parseOutputSpec parses the INTO clause.
func (p *Parser) parseOutputSpec() *OutputSpec {
	p.expect("output", token.INTO)
	p.expect("output", token.PATH)
	p.expect("output", token.EQ)

	out := &OutputSpec{}
	if p.check(token.STRING) {
		out.Path = p.cur().Literal
		p.advance()
	} else {
		p.addError("output", "expected string literal for output path")
	}

	if p.match(token.SERDE) {
		out.SerDe = p.stringLit("output", "SERDE class")

		if p.check(token.WITH) && p.checkPeek(token.SERDEPROPERTIES) {
			p.advance()
			p.advance()
			out.SerDeProps = p.parseSerDeProps()
		}

		switch {
		case p.match(token.RECORDWRITER):
			out.RecordWriter = p.stringLit("output", "RECORDWRITER class")
		case p.match(token.FORMAT):
			out.Format = p.stringLit("output", "output format")
		default:
			p.addError("output", "SERDE requires a RECORDWRITER or FORMAT clause")
		}
	}

	if p.match(token.LOAD) {
		out.Overwrite = p.match(token.OVERWRITE)
		p.expect("output", token.INTO)
		p.expect("output", token.TABLE)

		if p.check(token.IDENT) {
			out.LoadTable = p.cur().Literal
			p.advance()
			if p.check(token.DOT) && p.checkPeek(token.IDENT) {
				p.advance()
				out.LoadTable += "." + p.cur().Literal
				p.advance()
			}
		} else {
			p.addError("output", "expected table name after INTO TABLE")
		}

		if p.match(token.PARTITION) {
			out.LoadPartition = p.stringLit("output", "partition specification")
		}
	}
	return out
}

// parseSerDeProps parses "(" 'key'='value' ("," 'key'='value')* ")".
func (p *Parser) parseSerDeProps() []Param {
	p.expect("serdeProperties", token.LPAREN)

	var props []Param
	for {
		if !p.check(token.STRING) {
			p.addError("serdeProperties", fmt.Sprintf(errUnexpectedToken, p.cur().Type, token.STRING))
			break
		}
		prop := Param{Name: p.cur().Literal}
		p.advance()
		p.expect("serdeProperties", token.EQ)
		prop.Value = p.stringLit("serdeProperties", "property value")
		props = append(props, prop)
		if !p.match(token.COMMA) {
			break
		}
	}

	p.expect("serdeProperties", token.RPAREN)
	return props
}

// stringLit consumes a STRING token and returns its value, recording an
// error when the current token is anything else.
func (p *Parser) stringLit(rule, what string) string {
	if p.check(token.STRING) {
		s := p.cur().Literal
		p.advance()
		return s
	}
	p.addError(rule, fmt.Sprintf("expected string literal for %s", what))
	return ""
}
