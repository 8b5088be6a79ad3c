package parser

import (
	"fmt"

	"github.com/windql-lang/windql/pkg/token"
)

// ParseError is a parsing error with rule and position information.
type ParseError struct {
	Rule    string // grammar rule that failed
	Tok     token.Token
	Message string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse error in %s at line %d, column %d: %s",
		e.Rule, e.Tok.Pos.Line, e.Tok.Pos.Column, e.Message)
}

// LexError is a lexical analysis error. It is fatal: tokenization stops at
// the offending character.
type LexError struct {
	Pos     token.Position
	Message string
}

func (e *LexError) Error() string {
	return fmt.Sprintf("lex error at line %d, column %d: %s", e.Pos.Line, e.Pos.Column, e.Message)
}

// Common error message formats.
const (
	errUnexpectedToken    = "unexpected token %s, expected %s"
	errUnterminatedString = "unterminated string literal"
	errUnterminatedRaw    = "unterminated raw query literal"
	errUnterminatedBlock  = "unterminated block comment"
)
