package ast

import (
	"fmt"
	"strconv"
	"strings"
)

// Node is the base interface for all AST nodes
type Node interface {
	TokenLiteral() string
	String() string
}

// Expression represents a value or operation
type Expression interface {
	Node
	expressionNode()
}

// Identifier is a variable reference resolved against a VariableContext
type Identifier struct {
	Name string
	Pos  int
}

func (i *Identifier) expressionNode()      {}
func (i *Identifier) TokenLiteral() string { return i.Name }
func (i *Identifier) String() string {
	if strings.ContainsAny(i.Name, "+-*/<>=!()") {
		return "`" + i.Name + "`"
	}
	return i.Name
}

// NumberLiteral is a numeric constant as written in the formula
type NumberLiteral struct {
	TokenLiteralValue string // "12,5"
	Value             float64
}

func (n *NumberLiteral) expressionNode()      {}
func (n *NumberLiteral) TokenLiteral() string { return n.TokenLiteralValue }
func (n *NumberLiteral) String() string       { return strconv.FormatFloat(n.Value, 'f', -1, 64) }

// UnaryExpression: -Operand
type UnaryExpression struct {
	Operator string
	Operand  Expression
}

func (e *UnaryExpression) expressionNode()      {}
func (e *UnaryExpression) TokenLiteral() string { return e.Operator }
func (e *UnaryExpression) String() string {
	return fmt.Sprintf("(%s%s)", e.Operator, e.Operand.String())
}

// BinaryExpression: Left Operator Right for + - * /
type BinaryExpression struct {
	Left     Expression
	Operator string
	Right    Expression
}

func (e *BinaryExpression) expressionNode()      {}
func (e *BinaryExpression) TokenLiteral() string { return e.Operator }
func (e *BinaryExpression) String() string {
	return fmt.Sprintf("(%s %s %s)", e.Left.String(), e.Operator, e.Right.String())
}

// ComparisonExpression: Left Operator Right for > >= < <= == !=.
// Operator is always the canonical spelling, aliases are resolved by the parser.
type ComparisonExpression struct {
	Left     Expression
	Operator string
	Right    Expression
	Pos      int // rune offset of the operator
}

func (e *ComparisonExpression) expressionNode()      {}
func (e *ComparisonExpression) TokenLiteral() string { return e.Operator }
func (e *ComparisonExpression) String() string {
	return fmt.Sprintf("%s %s %s", e.Left.String(), e.Operator, e.Right.String())
}

// Walk visits expr and its children depth-first, left to right.
// Returning false from fn stops descent into that node's children.
func Walk(expr Expression, fn func(Expression) bool) {
	if expr == nil || !fn(expr) {
		return
	}
	switch e := expr.(type) {
	case *UnaryExpression:
		Walk(e.Operand, fn)
	case *BinaryExpression:
		Walk(e.Left, fn)
		Walk(e.Right, fn)
	case *ComparisonExpression:
		Walk(e.Left, fn)
		Walk(e.Right, fn)
	}
}

// Variables returns the distinct identifier names in order of first appearance
func Variables(expr Expression) []string {
	var names []string
	seen := make(map[string]bool)
	Walk(expr, func(e Expression) bool {
		if id, ok := e.(*Identifier); ok && !seen[id.Name] {
			seen[id.Name] = true
			names = append(names, id.Name)
		}
		return true
	})
	return names
}
