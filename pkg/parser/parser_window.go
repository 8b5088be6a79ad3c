package parser

import (
	"fmt"
	"strconv"

	"github.com/windql-lang/windql/pkg/token"
)

// Window clause and window specification parsing.
//
// Grammar:
//
//	window_clause → WINDOW window_def ("," window_def)*
//	window_def    → IDENT AS "(" window_spec ")"
//	window_spec   → [IDENT] [PARTITION BY cols] [ORDER BY ords] [frame]
//	frame         → ROWS BETWEEN row_bound AND row_bound
//	              | RANGE BETWEEN value_bound AND value_bound
//	row_bound     → UNBOUNDED (PRECEDING|FOLLOWING) | CURRENT ROW
//	              | NUMBER (PRECEDING|FOLLOWING)
//	value_bound   → row_bound | expr (LESS|MORE) NUMBER
//
// The optional leading identifier in window_spec names a previously defined
// window; it is unambiguous because everything that may follow it inside the
// parentheses is a keyword.

// parseWindowClause parses the WINDOW clause into named definitions.
func (p *Parser) parseWindowClause() []*WindowDef {
	p.expect("windowClause", token.WINDOW)

	var defs []*WindowDef
	for {
		def := p.parseWindowDef()
		if def != nil {
			defs = append(defs, def)
		}
		if !p.match(token.COMMA) {
			break
		}
	}
	return defs
}

// parseWindowDef parses IDENT AS "(" window_spec ")".
func (p *Parser) parseWindowDef() *WindowDef {
	if !p.check(token.IDENT) {
		p.addError("windowDefinition", fmt.Sprintf(errUnexpectedToken, p.cur().Type, token.IDENT))
		return nil
	}
	def := &WindowDef{Name: p.cur().Literal}
	p.advance()

	p.expect("windowDefinition", token.AS)
	p.expect("windowDefinition", token.LPAREN)
	def.Spec = p.parseWindowSpec()
	p.expect("windowDefinition", token.RPAREN)
	return def
}

// parseWindowSpec parses the body of an OVER (...) clause or a window
// definition. All parts are optional; an empty spec is legal.
func (p *Parser) parseWindowSpec() *WindowSpec {
	spec := &WindowSpec{}

	if p.check(token.IDENT) {
		spec.Name = p.cur().Literal
		p.advance()
	}

	if p.check(token.PARTITION) && p.checkPeek(token.BY) {
		p.advance()
		p.advance()
		ref := p.parseColumnRef()
		if ref != nil {
			spec.PartitionBy = append(spec.PartitionBy, ref)
		}
		for {
			ref, ok := p.tryColumnRef()
			if !ok {
				break
			}
			spec.PartitionBy = append(spec.PartitionBy, ref)
		}
	}

	if p.check(token.ORDER) && p.checkPeek(token.BY) {
		p.advance()
		p.advance()
		spec.OrderBy = append(spec.OrderBy, p.parseOrderColumn())
		for {
			col, ok := p.tryOrderColumn()
			if !ok {
				break
			}
			spec.OrderBy = append(spec.OrderBy, col)
		}
	}

	if p.check(token.ROWS) || p.check(token.RANGE) {
		spec.Frame = p.parseFrameSpec()
	}
	return spec
}

// parseFrameSpec parses ROWS or RANGE BETWEEN bound AND bound.
func (p *Parser) parseFrameSpec() *FrameSpec {
	frame := &FrameSpec{Type: FrameRows}
	if p.match(token.RANGE) {
		frame.Type = FrameRange
	} else {
		p.expect("frame", token.ROWS)
	}

	p.expect("frame", token.BETWEEN)
	frame.Start = p.parseFrameBound(frame.Type)
	p.expect("frame", token.AND)
	frame.End = p.parseFrameBound(frame.Type)
	return frame
}

// parseFrameBound parses one frame endpoint. Value bounds (expr LESS|MORE n)
// are accepted only inside RANGE frames.
func (p *Parser) parseFrameBound(ft FrameType) *FrameBound {
	switch p.cur().Type {
	case token.UNBOUNDED:
		p.advance()
		if p.match(token.FOLLOWING) {
			return &FrameBound{Type: BoundUnboundedFollowing}
		}
		p.expect("frameBound", token.PRECEDING)
		return &FrameBound{Type: BoundUnboundedPreceding}

	case token.CURRENT:
		p.advance()
		p.expect("frameBound", token.ROW)
		return &FrameBound{Type: BoundCurrentRow}

	case token.NUMBER:
		// A bare number is a row-count or value-distance bound. In RANGE
		// frames the number may instead begin a value-bound expression, so
		// probe for the LESS/MORE form first.
		if ft == FrameRange {
			if b, ok := p.tryValueBound(); ok {
				return b
			}
		}
		n, err := strconv.Atoi(p.cur().Literal)
		if err != nil || n < 0 {
			p.addError("frameBound", fmt.Sprintf("frame offset must be a non-negative integer, got %q", p.cur().Literal))
		}
		p.advance()
		if p.match(token.FOLLOWING) {
			return &FrameBound{Type: BoundFollowing, Offset: n}
		}
		p.expect("frameBound", token.PRECEDING)
		return &FrameBound{Type: BoundPreceding, Offset: n}

	default:
		if ft == FrameRange {
			if b, ok := p.tryValueBound(); ok {
				return b
			}
		}
		p.addError("frameBound", fmt.Sprintf("unexpected token in frame bound: %s", p.cur().Type))
		p.advance()
		return &FrameBound{Type: BoundCurrentRow}
	}
}

// tryValueBound probes for "expr (LESS|MORE) NUMBER". Pure on failure.
func (p *Parser) tryValueBound() (*FrameBound, bool) {
	m := p.mark()
	expr := p.parseExpression()
	if expr == nil || len(p.errors) > m.nerr {
		p.rewind(m)
		return nil, false
	}

	b := &FrameBound{Type: BoundValue, ValueExpr: expr}
	switch p.cur().Type {
	case token.LESS:
		b.Direction = DirLess
	case token.MORE:
		b.Direction = DirMore
	default:
		p.rewind(m)
		return nil, false
	}
	p.advance()

	if !p.check(token.NUMBER) {
		p.rewind(m)
		return nil, false
	}
	off, err := strconv.ParseFloat(p.cur().Literal, 64)
	if err != nil || off < 0 {
		p.rewind(m)
		return nil, false
	}
	b.ValueOffset = off
	p.advance()
	return b, true
}
