package evaluator

import (
	"errors"
	"fmt"
	"strings"

	"github.com/leengari/labcheck/internal/domain/formula"
)

// ErrNonFinite marks an arithmetic result that is NaN or infinite. The
// evaluator skips the affected cell instead of failing the formula.
var ErrNonFinite = errors.New("non-finite arithmetic result")

// ErrDivisionByZero is a specific non-finite case
var ErrDivisionByZero = fmt.Errorf("division by zero: %w", ErrNonFinite)

// ErrUnresolvedVariable is returned when a context lacks a referenced variable
var ErrUnresolvedVariable = errors.New("unresolved variable")

// ShapeError reports a formula whose variables do not fit its type
// (CELL_VALIDATION needs exactly one, RELATIONAL exactly two)
type ShapeError struct {
	FormulaID string
	Type      formula.Type
	Variables []string
	Reason    string
}

func (e *ShapeError) Error() string {
	var parts []string

	parts = append(parts, fmt.Sprintf("formula %s", e.FormulaID))

	if e.Type != "" {
		parts = append(parts, fmt.Sprintf("(%s)", e.Type))
	}

	parts = append(parts, e.Reason)

	if len(e.Variables) > 0 {
		parts = append(parts, fmt.Sprintf("variables=[%s]", strings.Join(e.Variables, ", ")))
	}

	return strings.Join(parts, " - ")
}

func newVariableCountError(f *formula.Formula, vars []string, want int) *ShapeError {
	return &ShapeError{
		FormulaID: f.ID,
		Type:      f.Type,
		Variables: vars,
		Reason:    fmt.Sprintf("expected %d distinct variable(s), found %d", want, len(vars)),
	}
}

func newUnknownTypeError(f *formula.Formula) *ShapeError {
	return &ShapeError{
		FormulaID: f.ID,
		Type:      f.Type,
		Reason:    fmt.Sprintf("unknown formula type %q", string(f.Type)),
	}
}
