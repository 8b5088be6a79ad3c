// Package token defines the lexical tokens of the windowing query language.
package token

import "fmt"

// TokenType identifies the type of a lexical token.
//
//nolint:revive // token.TokenType stutters but is clear and widely used
type TokenType int32

const (
	// Special tokens
	EOF TokenType = iota
	ILLEGAL

	// Literals
	IDENT      // identifier
	NUMBER     // 123, 45.67, 1e10, 10L, 5S, 2Y
	STRING     // 'hello'
	CHARSETLIT // _utf8'hello'
	RAWQUERY   // `select ...` embedded pass-through query

	// Operators and delimiters
	PLUS     // +
	MINUS    // -
	STAR     // *
	SLASH    // /
	PERCENT  // %
	AMP      // &
	PIPE     // |
	CARET    // ^
	TILDE    // ~
	EQ       // =
	NE       // != or <>
	LT       // <
	GT       // >
	LE       // <=
	GE       // >=
	DOT      // .
	COMMA    // ,
	LPAREN   // (
	RPAREN   // )
	LBRACKET // [
	RBRACKET // ]

	// Keywords (alphabetical)
	AND
	AS
	ASC
	BETWEEN
	BY
	CASE
	CURRENT
	DESC
	DISTINCT
	DIV
	ELSE
	END
	FALSE
	FOLLOWING
	FORMAT
	FROM
	HDFS
	IN
	INTO
	IS
	LESS
	LIKE
	LOAD
	MORE
	NOT
	NULL
	OR
	ORDER
	OVER
	OVERWRITE
	PARTITION
	PATH
	PRECEDING
	RANGE
	RECORDWRITER
	REGEXP
	RLIKE
	ROW
	ROWS
	SELECT
	SERDE
	SERDEPROPERTIES
	TABLE
	THEN
	TRUE
	UNBOUNDED
	WHEN
	WHERE
	WINDOW
	WITH
)

// Token is a lexical token with position information.
type Token struct {
	Type    TokenType
	Literal string
	Pos     Position
}

// String returns a human-readable representation of the token type.
func (t TokenType) String() string {
	if name, ok := tokenNames[t]; ok {
		return name
	}
	return fmt.Sprintf("TOKEN(%d)", t)
}

var tokenNames = map[TokenType]string{
	EOF:     "EOF",
	ILLEGAL: "ILLEGAL",

	IDENT:      "IDENT",
	NUMBER:     "NUMBER",
	STRING:     "STRING",
	CHARSETLIT: "CHARSETLIT",
	RAWQUERY:   "RAWQUERY",

	PLUS:     "+",
	MINUS:    "-",
	STAR:     "*",
	SLASH:    "/",
	PERCENT:  "%",
	AMP:      "&",
	PIPE:     "|",
	CARET:    "^",
	TILDE:    "~",
	EQ:       "=",
	NE:       "!=",
	LT:       "<",
	GT:       ">",
	LE:       "<=",
	GE:       ">=",
	DOT:      ".",
	COMMA:    ",",
	LPAREN:   "(",
	RPAREN:   ")",
	LBRACKET: "[",
	RBRACKET: "]",

	AND:             "AND",
	AS:              "AS",
	ASC:             "ASC",
	BETWEEN:         "BETWEEN",
	BY:              "BY",
	CASE:            "CASE",
	CURRENT:         "CURRENT",
	DESC:            "DESC",
	DISTINCT:        "DISTINCT",
	DIV:             "DIV",
	ELSE:            "ELSE",
	END:             "END",
	FALSE:           "FALSE",
	FOLLOWING:       "FOLLOWING",
	FORMAT:          "FORMAT",
	FROM:            "FROM",
	HDFS:            "HDFS",
	IN:              "IN",
	INTO:            "INTO",
	IS:              "IS",
	LESS:            "LESS",
	LIKE:            "LIKE",
	LOAD:            "LOAD",
	MORE:            "MORE",
	NOT:             "NOT",
	NULL:            "NULL",
	OR:              "OR",
	ORDER:           "ORDER",
	OVER:            "OVER",
	OVERWRITE:       "OVERWRITE",
	PARTITION:       "PARTITION",
	PATH:            "PATH",
	PRECEDING:       "PRECEDING",
	RANGE:           "RANGE",
	RECORDWRITER:    "RECORDWRITER",
	REGEXP:          "REGEXP",
	RLIKE:           "RLIKE",
	ROW:             "ROW",
	ROWS:            "ROWS",
	SELECT:          "SELECT",
	SERDE:           "SERDE",
	SERDEPROPERTIES: "SERDEPROPERTIES",
	TABLE:           "TABLE",
	THEN:            "THEN",
	TRUE:            "TRUE",
	UNBOUNDED:       "UNBOUNDED",
	WHEN:            "WHEN",
	WHERE:           "WHERE",
	WINDOW:          "WINDOW",
	WITH:            "WITH",
}

// keywords maps lowercased keyword strings to their token types.
// Lookup is a fixed-string match over ASCII-lowercased input so keyword
// recognition stays locale-independent.
var keywords = map[string]TokenType{
	"and":             AND,
	"as":              AS,
	"asc":             ASC,
	"between":         BETWEEN,
	"by":              BY,
	"case":            CASE,
	"current":         CURRENT,
	"desc":            DESC,
	"distinct":        DISTINCT,
	"div":             DIV,
	"else":            ELSE,
	"end":             END,
	"false":           FALSE,
	"following":       FOLLOWING,
	"format":          FORMAT,
	"from":            FROM,
	"hdfs":            HDFS,
	"in":              IN,
	"into":            INTO,
	"is":              IS,
	"less":            LESS,
	"like":            LIKE,
	"load":            LOAD,
	"more":            MORE,
	"not":             NOT,
	"null":            NULL,
	"or":              OR,
	"order":           ORDER,
	"over":            OVER,
	"overwrite":       OVERWRITE,
	"partition":       PARTITION,
	"path":            PATH,
	"preceding":       PRECEDING,
	"range":           RANGE,
	"recordwriter":    RECORDWRITER,
	"regexp":          REGEXP,
	"rlike":           RLIKE,
	"row":             ROW,
	"rows":            ROWS,
	"select":          SELECT,
	"serde":           SERDE,
	"serdeproperties": SERDEPROPERTIES,
	"table":           TABLE,
	"then":            THEN,
	"true":            TRUE,
	"unbounded":       UNBOUNDED,
	"when":            WHEN,
	"where":           WHERE,
	"window":          WINDOW,
	"with":            WITH,
}

// LookupIdent returns the token type for the given identifier.
// The identifier must already be ASCII-lowercased by the caller.
func LookupIdent(ident string) TokenType {
	if tok, ok := keywords[ident]; ok {
		return tok
	}
	return IDENT
}

// IsKeyword reports whether the token type is a keyword.
func IsKeyword(t TokenType) bool {
	return t >= AND && t <= WITH
}

// IsOperator reports whether the token type is an operator or delimiter.
func IsOperator(t TokenType) bool {
	return t >= PLUS && t <= RBRACKET
}
