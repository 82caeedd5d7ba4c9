package highlight

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/leengari/labcheck/internal/domain/formula"
	"github.com/leengari/labcheck/internal/domain/table"
	"github.com/leengari/labcheck/internal/evaluator"
)

// MessageSeparator joins the per-formula messages of one cell
const MessageSeparator = "; "

// FormulaDetail records one formula's contribution to a highlighted cell
type FormulaDetail struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Formula     string   `json:"formula"`
	LeftResult  *float64 `json:"leftResult,omitempty"`
	RightResult *float64 `json:"rightResult,omitempty"`
	Color       string   `json:"color"`
}

// HighlightedCell is the merged verdict of every formula that flagged one cell
type HighlightedCell struct {
	Row            string          `json:"row"`
	Col            string          `json:"col"`
	Color          string          `json:"color"`
	Message        string          `json:"message"`
	FormulaIDs     []string        `json:"formulaIds"`
	FormulaDetails []FormulaDetail `json:"formulaDetails"`
}

type cellKey struct {
	row int
	col string
}

type cellState struct {
	key      cellKey
	colPos   int
	cell     HighlightedCell
	messages []string
	ids      map[string]bool
}

// Aggregator merges flagged hits of many formulas into one record per cell.
// Formulas must be added in the caller's active-formula order; the first
// formula to flag a cell decides its color. An Aggregator is not safe for
// concurrent use and is meant to live for a single evaluation.
type Aggregator struct {
	cells     map[cellKey]*cellState
	columnPos func(string) int
}

// NewAggregator creates an aggregator. columnPos orders output columns; it may
// be nil, in which case columns sort by name.
func NewAggregator(columnPos func(string) int) *Aggregator {
	return &Aggregator{
		cells:     make(map[cellKey]*cellState),
		columnPos: columnPos,
	}
}

// Add records the flagged hits of one formula. Unflagged hits are ignored.
func (a *Aggregator) Add(f formula.Formula, hits []evaluator.Hit) {
	for _, h := range hits {
		if !h.Flagged {
			continue
		}
		key := cellKey{row: h.Row, col: h.Column}
		st, ok := a.cells[key]
		if !ok {
			st = &cellState{
				key:    key,
				colPos: a.position(h.Column),
				cell: HighlightedCell{
					Row:   table.RowID(h.Row),
					Col:   h.Column,
					Color: f.Color,
				},
				ids: make(map[string]bool),
			}
			a.cells[key] = st
		}
		if st.ids[f.ID] {
			continue
		}
		st.ids[f.ID] = true
		st.cell.FormulaIDs = append(st.cell.FormulaIDs, f.ID)
		st.cell.FormulaDetails = append(st.cell.FormulaDetails, detail(f, h))
		st.messages = append(st.messages, Message(f, h))
	}
}

// Cells returns the merged records ordered by row, then by column position
func (a *Aggregator) Cells() []HighlightedCell {
	states := make([]*cellState, 0, len(a.cells))
	for _, st := range a.cells {
		states = append(states, st)
	}
	sort.Slice(states, func(i, j int) bool {
		si, sj := states[i], states[j]
		if si.key.row != sj.key.row {
			return si.key.row < sj.key.row
		}
		if si.colPos != sj.colPos {
			return si.colPos < sj.colPos
		}
		return si.key.col < sj.key.col
	})

	out := make([]HighlightedCell, len(states))
	for i, st := range states {
		cell := st.cell
		cell.Message = strings.Join(st.messages, MessageSeparator)
		out[i] = cell
	}
	return out
}

// Len is the number of distinct highlighted cells so far
func (a *Aggregator) Len() int {
	return len(a.cells)
}

func (a *Aggregator) position(col string) int {
	if a.columnPos == nil {
		return 0
	}
	return a.columnPos(col)
}

func detail(f formula.Formula, h evaluator.Hit) FormulaDetail {
	d := FormulaDetail{
		ID:      f.ID,
		Name:    f.Name,
		Formula: f.Formula,
		Color:   f.Color,
	}
	if f.Type == formula.Relational {
		d.LeftResult = copyFloat(h.Left)
		d.RightResult = copyFloat(h.Right)
	}
	return d
}

// Message renders the text a formula contributes to a flagged cell
func Message(f formula.Formula, h evaluator.Hit) string {
	name := f.Name
	if name == "" {
		name = f.ID
	}
	switch {
	case f.Type == formula.Relational && h.Left != nil && h.Right != nil:
		return fmt.Sprintf("%s: %s (%s vs %s)", name, f.Formula, formatNumber(*h.Left), formatNumber(*h.Right))
	case h.Left != nil:
		return fmt.Sprintf("%s: %s (value %s)", name, f.Formula, formatNumber(*h.Left))
	default:
		return fmt.Sprintf("%s: %s", name, f.Formula)
	}
}

func formatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func copyFloat(v *float64) *float64 {
	if v == nil {
		return nil
	}
	c := *v
	return &c
}
