package parser_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/windql-lang/windql/pkg/parser"
	"github.com/windql-lang/windql/pkg/token"
)

func lexTypes(t *testing.T, input string) []token.TokenType {
	t.Helper()
	toks, err := parser.Lex(input)
	require.NoError(t, err)
	types := make([]token.TokenType, len(toks))
	for i, tok := range toks {
		types[i] = tok.Type
	}
	return types
}

func TestLexOperators(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []token.TokenType
	}{
		{
			name:  "arithmetic",
			input: "+ - * / %",
			want:  []token.TokenType{token.PLUS, token.MINUS, token.STAR, token.SLASH, token.PERCENT, token.EOF},
		},
		{
			name:  "comparison pairs",
			input: "< <= > >= = <> !=",
			want:  []token.TokenType{token.LT, token.LE, token.GT, token.GE, token.EQ, token.NE, token.NE, token.EOF},
		},
		{
			name:  "bitwise and grouping",
			input: "& | ^ ~ ( ) [ ] . ,",
			want: []token.TokenType{
				token.AMP, token.PIPE, token.CARET, token.TILDE,
				token.LPAREN, token.RPAREN, token.LBRACKET, token.RBRACKET,
				token.DOT, token.COMMA, token.EOF,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, lexTypes(t, tt.input))
		})
	}
}

func TestLexKeywordsCaseInsensitive(t *testing.T) {
	for _, input := range []string{"select", "SELECT", "SeLeCt"} {
		toks, err := parser.Lex(input)
		require.NoError(t, err)
		require.Len(t, toks, 2)
		assert.Equal(t, token.SELECT, toks[0].Type)
	}
}

func TestLexLogicalKeywords(t *testing.T) {
	want := []token.TokenType{
		token.IDENT, token.AND, token.IDENT, token.OR, token.NOT, token.IDENT, token.EOF,
	}
	assert.Equal(t, want, lexTypes(t, "a and b or not c"))
}

func TestLexStrings(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{name: "plain", input: "'hello'", want: "hello"},
		{name: "doubled quote", input: "'it''s'", want: "it's"},
		{name: "backslash escapes", input: `'a\nb\tc'`, want: "a\nb\tc"},
		{name: "escaped quote", input: `'a\'b'`, want: "a'b"},
		{name: "escaped backslash", input: `'a\\b'`, want: `a\b`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			toks, err := parser.Lex(tt.input)
			require.NoError(t, err)
			require.Equal(t, token.STRING, toks[0].Type)
			assert.Equal(t, tt.want, toks[0].Literal)
		})
	}
}

func TestLexUnterminatedString(t *testing.T) {
	_, err := parser.Lex("'never closed")
	require.Error(t, err)
	var lexErr *parser.LexError
	require.ErrorAs(t, err, &lexErr)
	assert.Contains(t, err.Error(), "unterminated")
}

func TestLexCharsetLiteral(t *testing.T) {
	toks, err := parser.Lex("_utf8'héllo'")
	require.NoError(t, err)
	require.Equal(t, token.CHARSETLIT, toks[0].Type)
	assert.Equal(t, "_utf8'héllo", toks[0].Literal)
}

func TestLexRawQuery(t *testing.T) {
	toks, err := parser.Lex("from `select * from emp` select a")
	require.NoError(t, err)
	require.Equal(t, token.RAWQUERY, toks[1].Type)
	assert.Equal(t, "select * from emp", toks[1].Literal)
}

func TestLexNumbers(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{input: "42", want: "42"},
		{input: "3.14", want: "3.14"},
		{input: "1e9", want: "1e9"},
		{input: "2.5E-3", want: "2.5E-3"},
		{input: "10L", want: "10L"},
		{input: "7S", want: "7S"},
		{input: "3Y", want: "3Y"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			toks, err := parser.Lex(tt.input)
			require.NoError(t, err)
			require.Equal(t, token.NUMBER, toks[0].Type)
			assert.Equal(t, tt.want, toks[0].Literal)
		})
	}
}

func TestLexComments(t *testing.T) {
	toks, err := parser.Lex("select -- trailing\n/* block\ncomment */ a")
	require.NoError(t, err)
	require.Len(t, toks, 3)
	assert.Equal(t, token.SELECT, toks[0].Type)
	assert.Equal(t, token.IDENT, toks[1].Type)
}

func TestLexUnterminatedBlockComment(t *testing.T) {
	_, err := parser.Lex("select /* oops")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unterminated")
}

func TestLexPositions(t *testing.T) {
	toks, err := parser.Lex("select\n  a")
	require.NoError(t, err)
	require.Len(t, toks, 3)
	assert.Equal(t, 1, toks[0].Pos.Line)
	assert.Equal(t, 1, toks[0].Pos.Column)
	assert.Equal(t, 2, toks[1].Pos.Line)
	assert.Equal(t, 3, toks[1].Pos.Column)
}

func TestLexIllegalCharacter(t *testing.T) {
	_, err := parser.Lex("select a ! b")
	require.Error(t, err)
}

// Lexing is stateless across calls: the same input always yields the same
// token stream.
func TestLexDeterministic(t *testing.T) {
	const input = "select sum(a) over w from t where b > 10"
	first, err := parser.Lex(input)
	require.NoError(t, err)
	second, err := parser.Lex(input)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}
