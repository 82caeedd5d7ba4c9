package parser

import (
	"errors"
	"fmt"
	"unicode/utf8"

	"github.com/leengari/labcheck/internal/parser/ast"
	"github.com/leengari/labcheck/internal/parser/lexer"
)

// ErrNoComparison marks formulas whose top level is not a comparison
var ErrNoComparison = errors.New("formula must contain exactly one comparison")

// ParseError reports a malformed formula and where it went wrong
type ParseError struct {
	Source string
	Pos    int // rune offset into Source
	Msg    string
	Err    error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse error at position %d in %q: %s", e.Pos, e.Source, e.Msg)
}

func (e *ParseError) Unwrap() error { return e.Err }

// Parse turns formula text into an expression tree whose root is a comparison
func Parse(source string) (ast.Expression, error) {
	tokens, err := lexer.Tokenize(source)
	if err != nil {
		var lexErr *lexer.Error
		if errors.As(err, &lexErr) {
			return nil, &ParseError{Source: source, Pos: lexErr.Pos, Msg: lexErr.Msg, Err: err}
		}
		return nil, &ParseError{Source: source, Msg: err.Error(), Err: err}
	}

	p := New(tokens)
	p.source = source
	return p.Parse()
}

type Parser struct {
	tokens  []lexer.Token
	curPos  int
	curTok  lexer.Token
	peekTok lexer.Token
	source  string
	eofPos  int
}

func New(tokens []lexer.Token) *Parser {
	p := &Parser{tokens: tokens, curPos: 0}
	if n := len(tokens); n > 0 {
		last := tokens[n-1]
		p.eofPos = last.Pos + utf8.RuneCountInString(last.Literal)
	}
	// Read two tokens to set curTok and peekTok
	p.nextToken()
	p.nextToken()
	return p
}

func (p *Parser) nextToken() {
	p.curTok = p.peekTok
	if p.curPos < len(p.tokens) {
		p.peekTok = p.tokens[p.curPos]
		p.curPos++
	} else {
		p.peekTok = lexer.Token{Type: lexer.EOF, Pos: p.eofPos}
	}
}

func (p *Parser) errorf(pos int, format string, args ...interface{}) *ParseError {
	return &ParseError{Source: p.source, Pos: pos, Msg: fmt.Sprintf(format, args...)}
}

// Parse consumes every token and validates the comparison shape
func (p *Parser) Parse() (ast.Expression, error) {
	if p.curTok.Type == lexer.EOF {
		return nil, p.errorf(0, "empty formula")
	}

	expr, err := p.parseComparison()
	if err != nil {
		return nil, err
	}

	switch p.curTok.Type {
	case lexer.EOF:
	case lexer.PAREN_CLOSE:
		return nil, p.errorf(p.curTok.Pos, "unbalanced parentheses: unexpected )")
	default:
		return nil, p.errorf(p.curTok.Pos, "unexpected %s after expression", describe(p.curTok))
	}

	cmp, ok := expr.(*ast.ComparisonExpression)
	if !ok {
		return nil, &ParseError{Source: p.source, Pos: 0, Msg: ErrNoComparison.Error(), Err: ErrNoComparison}
	}
	if nested := findComparison(cmp.Left, cmp.Right); nested != nil {
		return nil, &ParseError{
			Source: p.source,
			Pos:    nested.Pos,
			Msg:    "comparison is only allowed at the top level",
			Err:    ErrNoComparison,
		}
	}
	return cmp, nil
}

// comparison := additive ( cmp-op additive )?
func (p *Parser) parseComparison() (ast.Expression, error) {
	left, err := p.parseAdditive()
	if err != nil {
		return nil, err
	}

	if !p.curTok.Type.IsComparison() {
		return left, nil
	}

	opTok := p.curTok
	p.nextToken()
	right, err := p.parseAdditive()
	if err != nil {
		return nil, err
	}

	if p.curTok.Type.IsComparison() {
		return nil, p.errorf(p.curTok.Pos, "chained comparison %s is not allowed", p.curTok.Literal)
	}

	return &ast.ComparisonExpression{
		Left:     left,
		Operator: opTok.Type.String(),
		Right:    right,
		Pos:      opTok.Pos,
	}, nil
}

// additive := multiplicative ( ('+' | '-') multiplicative )*
func (p *Parser) parseAdditive() (ast.Expression, error) {
	left, err := p.parseMultiplicative()
	if err != nil {
		return nil, err
	}

	for p.curTok.Type == lexer.PLUS || p.curTok.Type == lexer.MINUS {
		op := p.curTok.Literal
		p.nextToken()
		right, err := p.parseMultiplicative()
		if err != nil {
			return nil, err
		}
		left = &ast.BinaryExpression{Left: left, Operator: op, Right: right}
	}
	return left, nil
}

// multiplicative := unary ( ('*' | '/') unary )*
func (p *Parser) parseMultiplicative() (ast.Expression, error) {
	left, err := p.parseUnary()
	if err != nil {
		return nil, err
	}

	for p.curTok.Type == lexer.ASTERISK || p.curTok.Type == lexer.SLASH {
		op := p.curTok.Literal
		p.nextToken()
		right, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		left = &ast.BinaryExpression{Left: left, Operator: op, Right: right}
	}
	return left, nil
}

// unary := '-'? primary
func (p *Parser) parseUnary() (ast.Expression, error) {
	if p.curTok.Type != lexer.MINUS {
		return p.parsePrimary()
	}
	p.nextToken()
	operand, err := p.parsePrimary()
	if err != nil {
		return nil, err
	}
	return &ast.UnaryExpression{Operator: "-", Operand: operand}, nil
}

// primary := NUMBER | IDENTIFIER | '(' expr ')'
func (p *Parser) parsePrimary() (ast.Expression, error) {
	switch p.curTok.Type {
	case lexer.NUMBER:
		lit := p.curTok.Literal
		val, err := lexer.ParseNumber(lit)
		if err != nil {
			return nil, p.errorf(p.curTok.Pos, "invalid number %s", lit)
		}
		p.nextToken()
		return &ast.NumberLiteral{TokenLiteralValue: lit, Value: val}, nil

	case lexer.IDENTIFIER:
		if p.curTok.Literal == "" {
			return nil, p.errorf(p.curTok.Pos, "empty variable name")
		}
		id := &ast.Identifier{Name: p.curTok.Literal, Pos: p.curTok.Pos}
		p.nextToken()
		return id, nil

	case lexer.PAREN_OPEN:
		open := p.curTok.Pos
		p.nextToken()
		expr, err := p.parseComparison()
		if err != nil {
			return nil, err
		}
		if p.curTok.Type != lexer.PAREN_CLOSE {
			return nil, p.errorf(open, "unbalanced parentheses: ( is never closed")
		}
		p.nextToken()
		return expr, nil

	case lexer.EOF:
		return nil, p.errorf(p.curTok.Pos, "unexpected end of formula")

	default:
		return nil, p.errorf(p.curTok.Pos, "unexpected %s", describe(p.curTok))
	}
}

func findComparison(exprs ...ast.Expression) *ast.ComparisonExpression {
	var found *ast.ComparisonExpression
	for _, expr := range exprs {
		ast.Walk(expr, func(e ast.Expression) bool {
			if c, ok := e.(*ast.ComparisonExpression); ok && found == nil {
				found = c
			}
			return found == nil
		})
	}
	return found
}

func describe(tok lexer.Token) string {
	switch tok.Type {
	case lexer.IDENTIFIER:
		return fmt.Sprintf("name %q", tok.Literal)
	case lexer.NUMBER:
		return fmt.Sprintf("number %s", tok.Literal)
	case lexer.EOF:
		return "end of formula"
	default:
		return fmt.Sprintf("operator %s", tok.Literal)
	}
}
