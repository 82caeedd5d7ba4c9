package ast

import (
	"reflect"
	"testing"
)

func TestString(t *testing.T) {
	expr := &ComparisonExpression{
		Left: &BinaryExpression{
			Left:     &Identifier{Name: "Toplam Fosfor"},
			Operator: "*",
			Right:    &NumberLiteral{TokenLiteralValue: "2", Value: 2},
		},
		Operator: ">",
		Right:    &UnaryExpression{Operator: "-", Operand: &Identifier{Name: "Nitrat-N"}},
	}

	want := "(Toplam Fosfor * 2) > (-`Nitrat-N`)"
	if got := expr.String(); got != want {
		t.Errorf("expected %q, got %q", want, got)
	}
}

func TestVariablesKeepsFirstAppearanceOrder(t *testing.T) {
	expr := &ComparisonExpression{
		Left: &BinaryExpression{
			Left:     &Identifier{Name: "B"},
			Operator: "+",
			Right:    &Identifier{Name: "A"},
		},
		Operator: ">",
		Right:    &Identifier{Name: "B"},
	}

	got := Variables(expr)
	want := []string{"B", "A"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("expected %v, got %v", want, got)
	}
}

func TestWalkStopsDescent(t *testing.T) {
	expr := &BinaryExpression{
		Left:     &UnaryExpression{Operator: "-", Operand: &Identifier{Name: "hidden"}},
		Operator: "+",
		Right:    &Identifier{Name: "visible"},
	}

	var seen []string
	Walk(expr, func(e Expression) bool {
		if _, ok := e.(*UnaryExpression); ok {
			return false
		}
		if id, ok := e.(*Identifier); ok {
			seen = append(seen, id.Name)
		}
		return true
	})

	if len(seen) != 1 || seen[0] != "visible" {
		t.Errorf("expected only [visible], got %v", seen)
	}
}
