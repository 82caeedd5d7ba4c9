package table

import (
	"errors"
	"fmt"
	"strings"
)

// VariableColumnName is the header (compared case-insensitively) that holds
// variable names in a long-format laboratory table
const VariableColumnName = "Variable"

// ErrRaggedRow is returned by Validate when a row does not line up with the header
var ErrRaggedRow = errors.New("row length does not match column count")

// ErrDuplicateColumn is returned by Validate when two columns share a name
var ErrDuplicateColumn = errors.New("duplicate column name")

// DataTable is a snapshot of an uploaded table: one row per variable,
// one column per sample occasion plus the Variable column.
type DataTable struct {
	Columns []string `json:"columns"`
	Data    [][]Cell `json:"data"`
}

// Validate checks that column names are unique and that every row has
// exactly one cell per column
func (t *DataTable) Validate() error {
	seen := make(map[string]int, len(t.Columns))
	for i, name := range t.Columns {
		if first, ok := seen[name]; ok {
			return fmt.Errorf("column %d %q repeats column %d: %w", i, name, first, ErrDuplicateColumn)
		}
		seen[name] = i
	}
	for i, row := range t.Data {
		if len(row) != len(t.Columns) {
			return fmt.Errorf("row %d has %d cells, want %d: %w", i, len(row), len(t.Columns), ErrRaggedRow)
		}
	}
	return nil
}

// VariableColumn returns the index of the Variable column or -1 if the
// table has none. The first matching header wins.
func (t *DataTable) VariableColumn() int {
	for i, name := range t.Columns {
		if strings.EqualFold(strings.TrimSpace(name), VariableColumnName) {
			return i
		}
	}
	return -1
}

// CellCount is rows × columns, used for input-size ceilings
func (t *DataTable) CellCount() int {
	return len(t.Data) * len(t.Columns)
}

// RowID formats the identifier the UI uses for a data row
func RowID(row int) string {
	return fmt.Sprintf("row-%d", row)
}
