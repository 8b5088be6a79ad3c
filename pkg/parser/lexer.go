package parser

import (
	"strings"

	"github.com/windql-lang/windql/pkg/token"
)

// Lexer tokenizes query text.
type Lexer struct {
	input   string
	pos     int  // current position in input
	readPos int  // reading position (after current char)
	ch      byte // current char under examination
	line    int  // current line number (1-based)
	col     int  // current column number (1-based)

	err *LexError // first lexical error, if any
}

// NewLexer creates a new Lexer for the given input.
func NewLexer(input string) *Lexer {
	l := &Lexer{
		input: input,
		line:  1,
		col:   0,
	}
	l.readChar()
	return l
}

// Lex tokenizes the whole input into an indexable token buffer. The buffer
// always ends with an EOF token. On an unrecognized character or unterminated
// literal it returns the tokens read so far and a *LexError.
func Lex(input string) ([]token.Token, error) {
	l := NewLexer(input)
	var tokens []token.Token
	for {
		tok := l.NextToken()
		if l.err != nil {
			return tokens, l.err
		}
		tokens = append(tokens, tok)
		if tok.Type == token.EOF {
			return tokens, nil
		}
	}
}

// readChar advances to the next character.
func (l *Lexer) readChar() {
	if l.readPos >= len(l.input) {
		l.ch = 0 // ASCII NUL = EOF
	} else {
		l.ch = l.input[l.readPos]
	}
	l.pos = l.readPos
	l.readPos++

	if l.ch == '\n' {
		l.line++
		l.col = 0
	} else {
		l.col++
	}
}

// peekChar returns the next character without advancing.
func (l *Lexer) peekChar() byte {
	if l.readPos >= len(l.input) {
		return 0
	}
	return l.input[l.readPos]
}

// currentPos returns the current position.
func (l *Lexer) currentPos() token.Position {
	return token.Position{
		Line:   l.line,
		Column: l.col,
		Offset: l.pos,
	}
}

// NextToken returns the next token. After a lexical error it returns an
// ILLEGAL token; the error itself is reported through Lex.
func (l *Lexer) NextToken() token.Token {
	l.skipWhitespaceAndComments()
	if l.err != nil {
		return token.Token{Type: token.ILLEGAL, Pos: l.err.Pos}
	}

	pos := l.currentPos()

	var tok token.Token
	tok.Pos = pos

	switch l.ch {
	case 0:
		tok.Type = token.EOF
		tok.Literal = ""
		return tok
	case '+':
		tok = l.newToken(token.PLUS, "+")
	case '-':
		tok = l.newToken(token.MINUS, "-")
	case '*':
		tok = l.newToken(token.STAR, "*")
	case '/':
		tok = l.newToken(token.SLASH, "/")
	case '%':
		tok = l.newToken(token.PERCENT, "%")
	case '&':
		tok = l.newToken(token.AMP, "&")
	case '|':
		tok = l.newToken(token.PIPE, "|")
	case '^':
		tok = l.newToken(token.CARET, "^")
	case '~':
		tok = l.newToken(token.TILDE, "~")
	case '=':
		tok = l.newToken(token.EQ, "=")
	case '<':
		switch l.peekChar() {
		case '=':
			l.readChar()
			tok = token.Token{Type: token.LE, Literal: "<=", Pos: pos}
		case '>':
			l.readChar()
			tok = token.Token{Type: token.NE, Literal: "<>", Pos: pos}
		default:
			tok = l.newToken(token.LT, "<")
		}
	case '>':
		if l.peekChar() == '=' {
			l.readChar()
			tok = token.Token{Type: token.GE, Literal: ">=", Pos: pos}
		} else {
			tok = l.newToken(token.GT, ">")
		}
	case '!':
		if l.peekChar() == '=' {
			l.readChar()
			tok = token.Token{Type: token.NE, Literal: "!=", Pos: pos}
		} else {
			l.fail(pos, "unexpected character '!'")
			return token.Token{Type: token.ILLEGAL, Literal: "!", Pos: pos}
		}
	case '.':
		tok = l.newToken(token.DOT, ".")
	case ',':
		tok = l.newToken(token.COMMA, ",")
	case '(':
		tok = l.newToken(token.LPAREN, "(")
	case ')':
		tok = l.newToken(token.RPAREN, ")")
	case '[':
		tok = l.newToken(token.LBRACKET, "[")
	case ']':
		tok = l.newToken(token.RBRACKET, "]")
	case '\'':
		lit, ok := l.readString()
		if !ok {
			l.fail(pos, errUnterminatedString)
			return token.Token{Type: token.ILLEGAL, Pos: pos}
		}
		return token.Token{Type: token.STRING, Literal: lit, Pos: pos}
	case '`':
		lit, ok := l.readRawQuery()
		if !ok {
			l.fail(pos, errUnterminatedRaw)
			return token.Token{Type: token.ILLEGAL, Pos: pos}
		}
		return token.Token{Type: token.RAWQUERY, Literal: lit, Pos: pos}
	default:
		switch {
		case isLetter(l.ch) || l.ch == '_':
			lit := l.readIdentifier()
			// Charset-prefixed string literal: _utf8'text'
			if lit[0] == '_' && l.ch == '\'' {
				s, ok := l.readString()
				if !ok {
					l.fail(pos, errUnterminatedString)
					return token.Token{Type: token.ILLEGAL, Pos: pos}
				}
				return token.Token{Type: token.CHARSETLIT, Literal: lit + "'" + s, Pos: pos}
			}
			typ := token.LookupIdent(asciiLower(lit))
			return token.Token{Type: typ, Literal: lit, Pos: pos}
		case isDigit(l.ch):
			return token.Token{Type: token.NUMBER, Literal: l.readNumber(), Pos: pos}
		default:
			l.fail(pos, "unexpected character "+string(rune(l.ch)))
			return token.Token{Type: token.ILLEGAL, Literal: string(l.ch), Pos: pos}
		}
	}

	l.readChar()
	return tok
}

// newToken creates a single-position token.
func (l *Lexer) newToken(t token.TokenType, literal string) token.Token {
	return token.Token{Type: t, Literal: literal, Pos: l.currentPos()}
}

func (l *Lexer) fail(pos token.Position, msg string) {
	if l.err == nil {
		l.err = &LexError{Pos: pos, Message: msg}
	}
}

// skipWhitespaceAndComments skips whitespace, line comments and block comments.
func (l *Lexer) skipWhitespaceAndComments() {
	for {
		for l.ch == ' ' || l.ch == '\t' || l.ch == '\n' || l.ch == '\r' {
			l.readChar()
		}

		if l.ch == '-' && l.peekChar() == '-' {
			for l.ch != '\n' && l.ch != 0 {
				l.readChar()
			}
			continue
		}

		if l.ch == '/' && l.peekChar() == '*' {
			pos := l.currentPos()
			l.readChar() // skip '/'
			l.readChar() // skip '*'
			closed := false
			for l.ch != 0 {
				if l.ch == '*' && l.peekChar() == '/' {
					l.readChar()
					l.readChar()
					closed = true
					break
				}
				l.readChar()
			}
			if !closed {
				l.fail(pos, errUnterminatedBlock)
				return
			}
			continue
		}

		break
	}
}

// readString reads a single-quoted string literal. A doubled quote and a
// backslash-escaped quote both escape: 'it''s' and 'it\'s' -> it's.
func (l *Lexer) readString() (string, bool) {
	l.readChar() // skip opening quote

	var result strings.Builder
	for l.ch != 0 {
		switch l.ch {
		case '\'':
			if l.peekChar() == '\'' {
				result.WriteByte('\'')
				l.readChar()
				l.readChar()
			} else {
				l.readChar() // skip closing quote
				return result.String(), true
			}
		case '\\':
			next := l.peekChar()
			switch next {
			case 'n':
				result.WriteByte('\n')
			case 't':
				result.WriteByte('\t')
			case 'r':
				result.WriteByte('\r')
			case '\'', '\\':
				result.WriteByte(next)
			default:
				result.WriteByte('\\')
				result.WriteByte(next)
			}
			l.readChar()
			l.readChar()
		default:
			result.WriteByte(l.ch)
			l.readChar()
		}
	}
	return "", false
}

// readRawQuery reads a backtick-delimited embedded query. The content is kept
// verbatim; it is passed through to the external engine unparsed.
func (l *Lexer) readRawQuery() (string, bool) {
	l.readChar() // skip opening backtick
	start := l.pos
	for l.ch != '`' {
		if l.ch == 0 {
			return "", false
		}
		l.readChar()
	}
	content := l.input[start:l.pos]
	l.readChar() // skip closing backtick
	return content, true
}

// readIdentifier reads an unquoted identifier.
func (l *Lexer) readIdentifier() string {
	start := l.pos
	for isLetter(l.ch) || isDigit(l.ch) || l.ch == '_' {
		l.readChar()
	}
	return l.input[start:l.pos]
}

// readNumber reads a numeric literal: integer, decimal, scientific, or an
// integer with a width suffix (10L bigint, 5S smallint, 2Y tinyint).
func (l *Lexer) readNumber() string {
	start := l.pos

	for isDigit(l.ch) {
		l.readChar()
	}

	if l.ch == '.' && isDigit(l.peekChar()) {
		l.readChar() // skip '.'
		for isDigit(l.ch) {
			l.readChar()
		}
	} else if isSuffix(l.ch) && !isLetter(l.peekChar()) && !isDigit(l.peekChar()) && l.peekChar() != '_' {
		l.readChar()
		return l.input[start:l.pos]
	}

	if l.ch == 'e' || l.ch == 'E' {
		if isDigit(l.peekChar()) || ((l.peekChar() == '+' || l.peekChar() == '-') && l.readPos+1 < len(l.input) && isDigit(l.input[l.readPos+1])) {
			l.readChar() // skip 'e' or 'E'
			if l.ch == '+' || l.ch == '-' {
				l.readChar()
			}
			for isDigit(l.ch) {
				l.readChar()
			}
		}
	}

	return l.input[start:l.pos]
}

func isSuffix(ch byte) bool {
	switch ch {
	case 'l', 'L', 's', 'S', 'y', 'Y':
		return true
	}
	return false
}

// isLetter reports whether ch is an ASCII letter.
func isLetter(ch byte) bool {
	return 'a' <= ch && ch <= 'z' || 'A' <= ch && ch <= 'Z'
}

// isDigit reports whether ch is an ASCII digit.
func isDigit(ch byte) bool {
	return ch >= '0' && ch <= '9'
}

// asciiLower lowercases ASCII letters only, so keyword recognition does not
// depend on locale-sensitive case folding.
func asciiLower(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		c := s[i]
		if 'A' <= c && c <= 'Z' {
			c += 'a' - 'A'
		}
		b.WriteByte(c)
	}
	return b.String()
}
