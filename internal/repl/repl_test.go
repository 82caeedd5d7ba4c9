package repl

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leengari/labcheck/internal/domain/formula"
	"github.com/leengari/labcheck/internal/domain/table"
	"github.com/leengari/labcheck/internal/engine"
)

func newSession() *Session {
	return &Session{
		Engine: engine.New(nil, engine.Options{}),
		Table: &table.DataTable{
			Columns: []string{"Variable", "S1", "S2"},
			Data: [][]table.Cell{
				{table.String("A"), table.Number(10), table.Number(1)},
				{table.String("B"), table.Number(5), table.Number(2)},
			},
		},
		Formulas: []formula.Formula{
			{ID: "a-high", Name: "A high", Formula: "A > 5", Type: formula.CellValidation, Color: "red", Active: true},
		},
	}
}

func run(s *Session, input string) string {
	var out bytes.Buffer
	Start(strings.NewReader(input), &out, s)
	return out.String()
}

func TestAdHocCellFormula(t *testing.T) {
	out := run(newSession(), "A > 5\nexit\n")

	assert.Contains(t, out, "adhoc-1")
	assert.Contains(t, out, "row-0")
	assert.Contains(t, out, "(value 10)")
	assert.Contains(t, out, "(1 highlighted cells)")
}

func TestAdHocRelationalInferred(t *testing.T) {
	s := newSession()
	var out bytes.Buffer
	s.Handle(&out, "A > B")

	assert.Contains(t, out.String(), "(10 vs 5)")
	assert.Contains(t, out.String(), "(2 highlighted cells)")
}

func TestPrefixesForceType(t *testing.T) {
	s := newSession()

	f, err := s.adHocFormula("rel: A > 1")
	require.NoError(t, err)
	assert.Equal(t, formula.Relational, f.Type)
	assert.Equal(t, "A > 1", f.Formula)

	f, err = s.adHocFormula("CELL: A > B")
	require.NoError(t, err)
	assert.Equal(t, formula.CellValidation, f.Type)
	assert.Equal(t, "adhoc-2", f.ID)

	// a forced type that does not fit is reported by the engine
	var out bytes.Buffer
	s.Handle(&out, "rel: A > 1")
	assert.Contains(t, out.String(), "shape_error")
}

func TestParseErrorIsPrinted(t *testing.T) {
	out := run(newSession(), "A >< B\n\\q\n")
	assert.Contains(t, out, "Error: parse error at position 3")
}

func TestRunLoadedFormulas(t *testing.T) {
	s := newSession()
	var out bytes.Buffer
	s.Handle(&out, ":run")

	assert.Contains(t, out.String(), "a-high")
	assert.Contains(t, out.String(), "(1 highlighted cells)")
}

func TestListCommands(t *testing.T) {
	s := newSession()

	var out bytes.Buffer
	s.Handle(&out, ":columns")
	assert.Contains(t, out.String(), "Variable")
	assert.Contains(t, out.String(), "S2")

	out.Reset()
	s.Handle(&out, ":formulas")
	assert.Contains(t, out.String(), "a-high")
	assert.Contains(t, out.String(), "CELL_VALIDATION")

	out.Reset()
	s.Handle(&out, ":nope")
	assert.Contains(t, out.String(), "Unknown command")
}

func TestLoadCommands(t *testing.T) {
	dir := t.TempDir()
	tablePath := filepath.Join(dir, "t.json")
	require.NoError(t, os.WriteFile(tablePath, []byte(`{"columns": ["Variable", "S1"], "data": [["pH", "9,0"]]}`), 0o600))
	formulaPath := filepath.Join(dir, "f.yaml")
	require.NoError(t, os.WriteFile(formulaPath, []byte("- {id: ph, formula: 'pH > 8,5', type: CELL_VALIDATION, color: red}\n"), 0o600))

	s := &Session{}
	out := run(s, ":load "+tablePath+"\n:formulas "+formulaPath+"\n:run\n")

	assert.Contains(t, out, "Loaded 1 rows, 2 columns.")
	assert.Contains(t, out, "Loaded 1 formulas.")
	assert.Contains(t, out, "row-0")
}

func TestNoTable(t *testing.T) {
	var out bytes.Buffer
	(&Session{Engine: engine.New(nil, engine.Options{})}).Handle(&out, "A > 1")
	assert.Contains(t, out.String(), "No table loaded")
}

func TestPrintResultEmpty(t *testing.T) {
	var out bytes.Buffer
	PrintResult(&out, engine.Result{})
	assert.Equal(t, "(no highlighted cells)\n", out.String())
}
