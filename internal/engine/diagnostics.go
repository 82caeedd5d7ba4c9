package engine

import (
	"errors"
	"fmt"

	"github.com/leengari/labcheck/internal/evaluator"
	"github.com/leengari/labcheck/internal/parser"
)

// DiagnosticKind classifies a problem that kept part of the input out of the result
type DiagnosticKind string

const (
	KindParseError     DiagnosticKind = "parse_error"
	KindShapeError     DiagnosticKind = "shape_error"
	KindInvalidFormula DiagnosticKind = "invalid_formula" // a wire record with a bad type or no id
	KindInvalidTable   DiagnosticKind = "invalid_table"
	KindInputTooLarge  DiagnosticKind = "input_too_large"
)

// Diagnostic is a non-fatal problem scoped to one formula or to the table
type Diagnostic struct {
	FormulaID string         `json:"formulaId,omitempty"`
	Kind      DiagnosticKind `json:"kind"`
	Message   string         `json:"message"`
	Position  *int           `json:"position,omitempty"` // rune offset for parse errors
}

func (d Diagnostic) String() string {
	if d.FormulaID == "" {
		return fmt.Sprintf("%s: %s", d.Kind, d.Message)
	}
	return fmt.Sprintf("%s [%s]: %s", d.Kind, d.FormulaID, d.Message)
}

// formulaDiagnostic classifies a compile error
func formulaDiagnostic(formulaID string, err error) Diagnostic {
	var perr *parser.ParseError
	if errors.As(err, &perr) {
		pos := perr.Pos
		return Diagnostic{FormulaID: formulaID, Kind: KindParseError, Message: perr.Error(), Position: &pos}
	}

	var serr *evaluator.ShapeError
	if errors.As(err, &serr) {
		return Diagnostic{FormulaID: formulaID, Kind: KindShapeError, Message: serr.Error()}
	}

	return Diagnostic{FormulaID: formulaID, Kind: KindShapeError, Message: err.Error()}
}
