package lexer

import (
	"fmt"
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"

	"github.com/leengari/labcheck/internal/value"
)

type TokenType int

const (
	// Special
	ILLEGAL TokenType = iota
	EOF

	// Literals
	IDENTIFIER // İletkenlik, Toplam Fosfor
	NUMBER     // 500, 12.5, 12,5

	// Arithmetic
	PLUS     // +
	MINUS    // -
	ASTERISK // *
	SLASH    // /

	// Comparison
	GT  // >
	GTE // >=
	LT  // <
	LTE // <=
	EQ  // == or =
	NEQ // != or <>

	// Punctuation
	PAREN_OPEN  // (
	PAREN_CLOSE // )
)

var tokenNames = map[TokenType]string{
	ILLEGAL:     "ILLEGAL",
	EOF:         "EOF",
	IDENTIFIER:  "IDENTIFIER",
	NUMBER:      "NUMBER",
	PLUS:        "+",
	MINUS:       "-",
	ASTERISK:    "*",
	SLASH:       "/",
	GT:          ">",
	GTE:         ">=",
	LT:          "<",
	LTE:         "<=",
	EQ:          "==",
	NEQ:         "!=",
	PAREN_OPEN:  "(",
	PAREN_CLOSE: ")",
}

func (t TokenType) String() string {
	if name, ok := tokenNames[t]; ok {
		return name
	}
	return fmt.Sprintf("TokenType(%d)", int(t))
}

// IsComparison reports whether the token is one of the six comparison operators
func (t TokenType) IsComparison() bool {
	switch t {
	case GT, GTE, LT, LTE, EQ, NEQ:
		return true
	}
	return false
}

type Token struct {
	Type    TokenType
	Literal string
	Pos     int // rune offset of the first character
}

func (t Token) String() string {
	return fmt.Sprintf("Token(%s, %q)", t.Type, t.Literal)
}

// Error describes a character the lexer could not turn into a token
type Error struct {
	Pos int
	Msg string
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s at position %d", e.Msg, e.Pos)
}

type Lexer struct {
	input        []rune
	position     int  // current position in input (points to current char)
	readPosition int  // current reading position in input (after current char)
	ch           rune // current char under examination
}

func New(input string) *Lexer {
	l := &Lexer{input: []rune(input)}
	l.readChar()
	return l
}

func (l *Lexer) readChar() {
	if l.readPosition >= len(l.input) {
		l.ch = 0
	} else {
		l.ch = l.input[l.readPosition]
	}
	l.position = l.readPosition
	l.readPosition += 1
}

func (l *Lexer) peekChar() rune {
	if l.readPosition >= len(l.input) {
		return 0
	}
	return l.input[l.readPosition]
}

func (l *Lexer) NextToken() Token {
	var tok Token

	l.skipWhitespace()
	pos := l.position

	switch l.ch {
	case '+':
		tok = newToken(PLUS, "+", pos)
	case '-':
		tok = newToken(MINUS, "-", pos)
	case '*':
		tok = newToken(ASTERISK, "*", pos)
	case '/':
		tok = newToken(SLASH, "/", pos)
	case '(':
		tok = newToken(PAREN_OPEN, "(", pos)
	case ')':
		tok = newToken(PAREN_CLOSE, ")", pos)
	case '>':
		if l.peekChar() == '=' {
			l.readChar()
			tok = newToken(GTE, ">=", pos)
		} else {
			tok = newToken(GT, ">", pos)
		}
	case '<':
		switch l.peekChar() {
		case '=':
			l.readChar()
			tok = newToken(LTE, "<=", pos)
		case '>':
			l.readChar()
			tok = newToken(NEQ, "<>", pos)
		default:
			tok = newToken(LT, "<", pos)
		}
	case '=':
		if l.peekChar() == '=' {
			l.readChar()
			tok = newToken(EQ, "==", pos)
		} else {
			tok = newToken(EQ, "=", pos)
		}
	case '!':
		if l.peekChar() == '=' {
			l.readChar()
			tok = newToken(NEQ, "!=", pos)
		} else {
			tok = newToken(ILLEGAL, "!", pos)
		}
	case '"', '`':
		quote := l.ch
		lit, ok := l.readQuoted()
		if !ok {
			return newToken(ILLEGAL, string(quote)+lit, pos)
		}
		return newToken(IDENTIFIER, norm.NFC.String(lit), pos)
	case 0:
		if l.position >= len(l.input) {
			return newToken(EOF, "", pos)
		}
		tok = newToken(ILLEGAL, string(l.ch), pos)
	default:
		lit := l.readWord()
		if isNumeral(lit) {
			if _, err := ParseNumber(lit); err != nil {
				return newToken(ILLEGAL, lit, pos)
			}
			return newToken(NUMBER, lit, pos)
		}
		return newToken(IDENTIFIER, norm.NFC.String(lit), pos)
	}

	l.readChar()
	return tok
}

func (l *Lexer) skipWhitespace() {
	for unicode.IsSpace(l.ch) {
		l.readChar()
	}
}

// readWord consumes the maximal run up to the next operator, parenthesis or
// quote. Internal spaces belong to the word so "Toplam Fosfor" is one name.
// The sign of an exponent stays in a numeral: "1e-3" is one word.
func (l *Lexer) readWord() string {
	position := l.position
	for l.ch != 0 && (!isDelimiter(l.ch) || l.atExponentSign(position)) {
		l.readChar()
	}
	return strings.TrimRightFunc(string(l.input[position:l.position]), unicode.IsSpace)
}

func (l *Lexer) atExponentSign(start int) bool {
	if l.ch != '+' && l.ch != '-' {
		return false
	}
	if l.position-start < 2 || !isDigit(l.peekChar()) {
		return false
	}
	prev := l.input[l.position-1]
	if prev != 'e' && prev != 'E' {
		return false
	}
	return isNumeral(string(l.input[start:l.position]))
}

func (l *Lexer) readQuoted() (string, bool) {
	quote := l.ch
	position := l.position + 1
	for {
		l.readChar()
		if l.ch == quote || l.position >= len(l.input) {
			break
		}
	}
	lit := string(l.input[position:min(l.position, len(l.input))])

	if l.ch != quote {
		return lit, false
	}
	// Consume the closing quote
	l.readChar()

	return strings.TrimSpace(lit), true
}

func newToken(tokenType TokenType, literal string, pos int) Token {
	return Token{Type: tokenType, Literal: literal, Pos: pos}
}

func isDelimiter(ch rune) bool {
	switch ch {
	case '+', '-', '*', '/', '(', ')', '<', '>', '=', '!', '"', '`':
		return true
	}
	return false
}

func isDigit(ch rune) bool {
	return '0' <= ch && ch <= '9'
}

// isNumeral reports whether a word is meant as a number: it starts with a
// digit (or ".digit") and holds only digits, separators and an exponent.
// Digit-led words with other letters ("5 Günlük BOİ") are names.
func isNumeral(lit string) bool {
	r := []rune(lit)
	if len(r) == 0 {
		return false
	}
	if !isDigit(r[0]) && !(r[0] == '.' && len(r) > 1 && isDigit(r[1])) {
		return false
	}
	for _, c := range r {
		switch {
		case isDigit(c), c == '.', c == ',', c == 'e', c == 'E', c == '+', c == '-':
		default:
			return false
		}
	}
	return true
}

// ParseNumber converts a NUMBER literal into a float. Literals follow the
// same locale rules as cell text, so "12,5" and "1.000,5" read the same in
// a formula as in a table.
func ParseNumber(lit string) (float64, error) {
	n := value.ParseString(lit)
	if !n.Present {
		return 0, fmt.Errorf("invalid number %q", lit)
	}
	return n.Value, nil
}

// Tokenize lexes the whole input, stopping at the first illegal token
func Tokenize(input string) ([]Token, error) {
	l := New(input)
	var tokens []Token
	for {
		tok := l.NextToken()
		if tok.Type == EOF {
			break
		}
		if tok.Type == ILLEGAL {
			return nil, illegalTokenError(tok)
		}
		tokens = append(tokens, tok)
	}
	return tokens, nil
}

func illegalTokenError(tok Token) *Error {
	switch {
	case tok.Literal == "!":
		return &Error{Pos: tok.Pos, Msg: "unexpected '!' (did you mean '!=')"}
	case strings.HasPrefix(tok.Literal, `"`), strings.HasPrefix(tok.Literal, "`"):
		return &Error{Pos: tok.Pos, Msg: fmt.Sprintf("unterminated quoted name %s", tok.Literal)}
	case isNumeral(tok.Literal):
		return &Error{Pos: tok.Pos, Msg: fmt.Sprintf("invalid number %q", tok.Literal)}
	default:
		return &Error{Pos: tok.Pos, Msg: fmt.Sprintf("illegal character %q", tok.Literal)}
	}
}
