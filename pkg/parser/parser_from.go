package parser

import (
	"fmt"

	"github.com/windql-lang/windql/pkg/token"
)

// Table specification parsing. Four mutually exclusive forms, disambiguated
// on the first one or two tokens:
//
//	table_spec → IDENT "(" table_spec ("," expr)* ")" suffix   table function
//	           | RAWQUERY suffix                               embedded query
//	           | HDFS "(" param ("," param)* ")" suffix        file location
//	           | IDENT ["." IDENT] suffix                      db.table
//	param      → IDENT "=" (STRING | NUMBER)
//	suffix     → [PARTITION BY col ("," col)*] [ORDER BY ord ("," ord)*]
//
// A COMMA in the suffix lists is consumed only when the trailing-comma
// predicate confirms it starts another column.

// parseTableSpec parses one of the four table specification forms.
func (p *Parser) parseTableSpec() TableSpec {
	switch {
	case p.check(token.IDENT) && p.checkPeek(token.LPAREN):
		return p.parseTableFuncSpec()

	case p.check(token.RAWQUERY):
		spec := &RawQuerySpec{Query: p.cur().Literal}
		p.advance()
		p.parseSpecSuffix(&spec.SpecSuffix)
		return spec

	case p.check(token.HDFS):
		return p.parseHdfsFileSpec()

	case p.check(token.IDENT):
		first := p.cur().Literal
		p.advance()
		spec := &HiveTableSpec{Table: first}
		if p.check(token.DOT) && p.checkPeek(token.IDENT) {
			p.advance()
			spec.Db = first
			spec.Table = p.cur().Literal
			p.advance()
		}
		p.parseSpecSuffix(&spec.SpecSuffix)
		return spec

	default:
		p.addError("tableSpec", fmt.Sprintf("expected table specification, found %s", p.cur().Type))
		return nil
	}
}

// parseTableFuncSpec parses a table-function invocation. The first argument
// is a nested table specification; remaining arguments are expressions.
func (p *Parser) parseTableFuncSpec() TableSpec {
	spec := &TableFuncSpec{Name: asciiLower(p.cur().Literal)}
	p.advance()
	p.expect("tableFunction", token.LPAREN)

	spec.Input = p.parseTableSpec()

	for p.match(token.COMMA) {
		spec.Args = append(spec.Args, p.parseExpression())
	}

	p.expect("tableFunction", token.RPAREN)
	p.parseSpecSuffix(&spec.SpecSuffix)
	return spec
}

// parseHdfsFileSpec parses HDFS(name=value, ...).
func (p *Parser) parseHdfsFileSpec() TableSpec {
	spec := &HdfsFileSpec{}
	p.advance() // consume HDFS
	p.expect("hdfsFile", token.LPAREN)

	for {
		param, ok := p.parseParam("hdfsFile")
		if !ok {
			break
		}
		spec.Params = append(spec.Params, param)
		if !p.match(token.COMMA) {
			break
		}
	}

	p.expect("hdfsFile", token.RPAREN)
	if len(spec.Params) == 0 {
		p.addError("hdfsFile", "at least one name=value parameter is required")
	}
	p.parseSpecSuffix(&spec.SpecSuffix)
	return spec
}

// parseParam parses name "=" (STRING | NUMBER). Parameter names live in
// their own namespace, so keywords (path, format, table) are accepted as
// names via their literal text.
func (p *Parser) parseParam(rule string) (Param, bool) {
	if !p.check(token.IDENT) && !token.IsKeyword(p.cur().Type) {
		p.addError(rule, fmt.Sprintf(errUnexpectedToken, p.cur().Type, token.IDENT))
		return Param{}, false
	}
	param := Param{Name: asciiLower(p.cur().Literal)}
	p.advance()
	p.expect(rule, token.EQ)
	switch p.cur().Type {
	case token.STRING, token.NUMBER:
		param.Value = p.cur().Literal
		p.advance()
	default:
		p.addError(rule, fmt.Sprintf("expected literal value for parameter %s", param.Name))
		return Param{}, false
	}
	return param, true
}

// parseSpecSuffix parses the optional PARTITION BY / ORDER BY suffix shared
// by all table specification forms.
func (p *Parser) parseSpecSuffix(s *SpecSuffix) {
	if p.check(token.PARTITION) && p.checkPeek(token.BY) {
		p.advance()
		p.advance()
		ref := p.parseColumnRef()
		if ref != nil {
			s.PartitionBy = append(s.PartitionBy, ref)
		}
		for {
			ref, ok := p.tryColumnRef()
			if !ok {
				break
			}
			s.PartitionBy = append(s.PartitionBy, ref)
		}
	}

	if p.check(token.ORDER) && p.checkPeek(token.BY) {
		p.advance()
		p.advance()
		s.OrderBy = append(s.OrderBy, p.parseOrderColumn())
		for {
			col, ok := p.tryOrderColumn()
			if !ok {
				break
			}
			s.OrderBy = append(s.OrderBy, col)
		}
	}
}

// parseOrderColumn parses columnRef [ASC|DESC].
func (p *Parser) parseOrderColumn() *OrderColumn {
	col := &OrderColumn{Column: p.parseColumnRef()}
	if p.match(token.DESC) {
		col.Desc = true
	} else {
		p.match(token.ASC)
	}
	return col
}

// tryOrderColumn is the trailing-comma predicate for ORDER BY lists: a pure
// probe for "COMMA orderColumn" that consumes nothing on failure.
func (p *Parser) tryOrderColumn() (*OrderColumn, bool) {
	m := p.mark()
	if !p.match(token.COMMA) {
		return nil, false
	}
	col := p.parseOrderColumn()
	if col.Column == nil || len(p.errors) > m.nerr {
		p.rewind(m)
		return nil, false
	}
	return col, true
}
