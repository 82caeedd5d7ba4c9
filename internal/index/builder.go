package index

import (
	"log/slog"
	"strings"

	"golang.org/x/text/unicode/norm"

	"github.com/leengari/labcheck/internal/domain/table"
	"github.com/leengari/labcheck/internal/value"
)

// Entry is the normalized value of one variable in one sample column,
// together with the data row it came from
type Entry struct {
	Value float64
	Row   int
}

// Index maps variable names to their per-sample-column values
type Index struct {
	VariableColumn int                         // -1 when the table has no Variable column
	SampleColumns  []string                    // every other column, in table order
	Rows           map[string][]int            // variable name -> data rows (ascending)
	PerColumn      map[string]map[string]Entry // sample column -> variable name -> entry

	columnPos map[string]int
}

// Empty reports whether there is nothing for a formula to reference
func (idx *Index) Empty() bool {
	return idx.VariableColumn < 0 || len(idx.Rows) == 0
}

// Lookup returns the entry for variable in column
func (idx *Index) Lookup(column, variable string) (Entry, bool) {
	e, ok := idx.PerColumn[column][variable]
	return e, ok
}

// Context returns the VariableContext of one sample column.
// The returned map is a copy and may be modified by the caller.
func (idx *Index) Context(column string) map[string]float64 {
	entries := idx.PerColumn[column]
	ctx := make(map[string]float64, len(entries))
	for name, e := range entries {
		ctx[name] = e.Value
	}
	return ctx
}

// ColumnPosition returns the position of a column in the original table, or -1
func (idx *Index) ColumnPosition(column string) int {
	if pos, ok := idx.columnPos[column]; ok {
		return pos
	}
	return -1
}

// VariableName canonicalizes a cell or identifier used as a variable name
func VariableName(s string) string {
	return norm.NFC.String(strings.TrimSpace(s))
}

// Build scans the table once and records, for every sample column, the
// normalized value of every variable. A later row with a finite value for
// the same variable and column replaces the earlier one (last write wins).
func Build(t *table.DataTable, logger *slog.Logger) *Index {
	if logger == nil {
		logger = slog.Default()
	}

	idx := &Index{
		VariableColumn: t.VariableColumn(),
		Rows:           make(map[string][]int),
		PerColumn:      make(map[string]map[string]Entry),
		columnPos:      make(map[string]int, len(t.Columns)),
	}

	for pos, col := range t.Columns {
		idx.columnPos[col] = pos
	}

	if idx.VariableColumn < 0 {
		logger.Debug("table has no Variable column",
			slog.Int("columns", len(t.Columns)))
		return idx
	}

	for pos, col := range t.Columns {
		if pos == idx.VariableColumn {
			continue
		}
		idx.SampleColumns = append(idx.SampleColumns, col)
		idx.PerColumn[col] = make(map[string]Entry)
	}

	overwritten := 0
	for rowPos, row := range t.Data {
		if idx.VariableColumn >= len(row) {
			continue
		}
		name := VariableName(row[idx.VariableColumn].Text())
		if name == "" {
			continue
		}
		idx.Rows[name] = append(idx.Rows[name], rowPos)

		for pos, col := range t.Columns {
			if pos == idx.VariableColumn || pos >= len(row) {
				continue
			}
			n := value.Normalize(row[pos])
			if !n.Present {
				continue
			}
			if _, dup := idx.PerColumn[col][name]; dup {
				overwritten++
			}
			idx.PerColumn[col][name] = Entry{Value: n.Value, Row: rowPos}
		}
	}

	logger.Debug("variable index built",
		slog.Int("variables", len(idx.Rows)),
		slog.Int("sample_columns", len(idx.SampleColumns)),
		slog.Int("overwritten_values", overwritten))

	return idx
}
