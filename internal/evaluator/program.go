package evaluator

import (
	"errors"

	"github.com/leengari/labcheck/internal/domain/formula"
	"github.com/leengari/labcheck/internal/index"
	"github.com/leengari/labcheck/internal/parser"
	"github.com/leengari/labcheck/internal/parser/ast"
)

// Hit is the verdict of one formula for one (row, sample column) pair.
// Left and Right carry the raw variable values that were compared; Right is
// nil for CELL_VALIDATION formulas.
type Hit struct {
	Row     int
	Column  string
	Flagged bool
	Left    *float64
	Right   *float64
}

// Evaluation is everything one formula produced against one table
type Evaluation struct {
	Hits    []Hit
	Skipped int // (row, column) pairs dropped because of non-finite arithmetic
}

// Flagged returns only the hits whose comparison held
func (e Evaluation) Flagged() []Hit {
	out := make([]Hit, 0, len(e.Hits))
	for _, h := range e.Hits {
		if h.Flagged {
			out = append(out, h)
		}
	}
	return out
}

// Program is a compiled formula ready to run against any index
type Program struct {
	Formula   formula.Formula
	Expr      *ast.ComparisonExpression
	Variables []string // distinct names, first appearance order
}

// Compile parses the formula text and checks that the number of referenced
// variables matches the formula type. Errors are *parser.ParseError or *ShapeError.
func Compile(f formula.Formula) (*Program, error) {
	expr, err := parser.Parse(f.Formula)
	if err != nil {
		return nil, err
	}
	cmp, ok := expr.(*ast.ComparisonExpression)
	if !ok {
		return nil, &parser.ParseError{Source: f.Formula, Msg: parser.ErrNoComparison.Error(), Err: parser.ErrNoComparison}
	}

	vars := ast.Variables(cmp)
	switch f.Type {
	case formula.CellValidation:
		if len(vars) != 1 {
			return nil, newVariableCountError(&f, vars, 1)
		}
	case formula.Relational:
		if len(vars) != 2 {
			return nil, newVariableCountError(&f, vars, 2)
		}
	default:
		return nil, newUnknownTypeError(&f)
	}

	return &Program{Formula: f, Expr: cmp, Variables: vars}, nil
}

// Evaluate runs the program over every sample column of idx
func (p *Program) Evaluate(idx *index.Index) Evaluation {
	var ev Evaluation
	if idx == nil || idx.Empty() {
		return ev
	}

	for _, col := range idx.SampleColumns {
		switch p.Formula.Type {
		case formula.CellValidation:
			p.evaluateCell(idx, col, &ev)
		case formula.Relational:
			p.evaluateRelational(idx, col, &ev)
		}
	}
	return ev
}

func (p *Program) evaluateCell(idx *index.Index, col string, ev *Evaluation) {
	name := p.Variables[0]
	entry, ok := idx.Lookup(col, name)
	if !ok {
		return
	}

	flagged, err := Compare(p.Expr, map[string]float64{name: entry.Value})
	if err != nil {
		if errors.Is(err, ErrNonFinite) {
			ev.Skipped++
		}
		return
	}

	left := entry.Value
	ev.Hits = append(ev.Hits, Hit{Row: entry.Row, Column: col, Flagged: flagged, Left: &left})
}

func (p *Program) evaluateRelational(idx *index.Index, col string, ev *Evaluation) {
	first, ok := idx.Lookup(col, p.Variables[0])
	if !ok {
		return
	}
	second, ok := idx.Lookup(col, p.Variables[1])
	if !ok {
		return
	}

	ctx := map[string]float64{
		p.Variables[0]: first.Value,
		p.Variables[1]: second.Value,
	}
	flagged, err := Compare(p.Expr, ctx)
	if err != nil {
		if errors.Is(err, ErrNonFinite) {
			ev.Skipped++
		}
		return
	}

	left, right := first.Value, second.Value
	ev.Hits = append(ev.Hits,
		Hit{Row: first.Row, Column: col, Flagged: flagged, Left: &left, Right: &right},
		Hit{Row: second.Row, Column: col, Flagged: flagged, Left: &left, Right: &right},
	)
}
