package evaluator

import (
	"fmt"
	"math"

	"github.com/leengari/labcheck/internal/parser/ast"
)

// Eval computes the numeric value of an arithmetic expression in ctx
func Eval(expr ast.Expression, ctx map[string]float64) (float64, error) {
	switch e := expr.(type) {
	case *ast.NumberLiteral:
		return e.Value, nil

	case *ast.Identifier:
		v, ok := ctx[e.Name]
		if !ok {
			return 0, fmt.Errorf("%w: %s", ErrUnresolvedVariable, e.Name)
		}
		return v, nil

	case *ast.UnaryExpression:
		v, err := Eval(e.Operand, ctx)
		if err != nil {
			return 0, err
		}
		return -v, nil

	case *ast.BinaryExpression:
		left, err := Eval(e.Left, ctx)
		if err != nil {
			return 0, err
		}
		right, err := Eval(e.Right, ctx)
		if err != nil {
			return 0, err
		}
		return arithmetic(left, e.Operator, right)

	case *ast.ComparisonExpression:
		return 0, fmt.Errorf("comparison %q used as a number", e.String())

	default:
		return 0, fmt.Errorf("unsupported expression type %T", expr)
	}
}

func arithmetic(left float64, op string, right float64) (float64, error) {
	var out float64
	switch op {
	case "+":
		out = left + right
	case "-":
		out = left - right
	case "*":
		out = left * right
	case "/":
		if right == 0 {
			return 0, ErrDivisionByZero
		}
		out = left / right
	default:
		return 0, fmt.Errorf("unsupported arithmetic operator %s", op)
	}

	if math.IsNaN(out) || math.IsInf(out, 0) {
		return 0, ErrNonFinite
	}
	return out, nil
}

// Compare evaluates both sides of a comparison in ctx and applies the operator
func Compare(cmp *ast.ComparisonExpression, ctx map[string]float64) (bool, error) {
	left, err := Eval(cmp.Left, ctx)
	if err != nil {
		return false, err
	}
	right, err := Eval(cmp.Right, ctx)
	if err != nil {
		return false, err
	}

	switch cmp.Operator {
	case ">":
		return left > right, nil
	case ">=":
		return left >= right, nil
	case "<":
		return left < right, nil
	case "<=":
		return left <= right, nil
	case "==":
		return left == right, nil
	case "!=":
		return left != right, nil
	default:
		return false, fmt.Errorf("unsupported comparison operator %s", cmp.Operator)
	}
}
