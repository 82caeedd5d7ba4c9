package evaluator

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leengari/labcheck/internal/domain/formula"
	"github.com/leengari/labcheck/internal/domain/table"
	"github.com/leengari/labcheck/internal/index"
	"github.com/leengari/labcheck/internal/parser"
)

func cellFormula(id, text string) formula.Formula {
	return formula.Formula{ID: id, Name: id, Formula: text, Type: formula.CellValidation, Color: "red", Active: true}
}

func relFormula(id, text string) formula.Formula {
	return formula.Formula{ID: id, Name: id, Formula: text, Type: formula.Relational, Color: "blue", Active: true}
}

func buildIndex(columns []string, rows ...[]table.Cell) *index.Index {
	return index.Build(&table.DataTable{Columns: columns, Data: rows}, nil)
}

func TestCellValidationThreshold(t *testing.T) {
	idx := buildIndex([]string{"Variable", "Nisan 22"},
		[]table.Cell{table.String("İletkenlik"), table.Number(600)},
	)

	prog, err := Compile(cellFormula("f1", "İletkenlik > 500"))
	require.NoError(t, err)

	flagged := prog.Evaluate(idx).Flagged()
	require.Len(t, flagged, 1)
	assert.Equal(t, 0, flagged[0].Row)
	assert.Equal(t, "Nisan 22", flagged[0].Column)
	require.NotNil(t, flagged[0].Left)
	assert.Equal(t, 600.0, *flagged[0].Left)
	assert.Nil(t, flagged[0].Right)
}

func TestCellValidationNonTrigger(t *testing.T) {
	idx := buildIndex([]string{"Variable", "Nisan 22"},
		[]table.Cell{table.String("İletkenlik"), table.Number(400)},
	)

	prog, err := Compile(cellFormula("f1", "İletkenlik > 500"))
	require.NoError(t, err)

	ev := prog.Evaluate(idx)
	assert.Empty(t, ev.Flagged())
	require.Len(t, ev.Hits, 1)
	assert.False(t, ev.Hits[0].Flagged)
}

func TestCellValidationAcrossColumns(t *testing.T) {
	idx := buildIndex([]string{"S1", "Variable", "S2", "S3"},
		[]table.Cell{table.Number(7.9), table.String("pH"), table.String("9,1"), table.Null()},
		[]table.Cell{table.Number(1), table.String("Sıcaklık"), table.Number(30), table.Number(31)},
	)

	prog, err := Compile(cellFormula("ph", "pH >= 8,5"))
	require.NoError(t, err)

	ev := prog.Evaluate(idx)
	require.Len(t, ev.Hits, 2, "S3 has no pH value")
	flagged := ev.Flagged()
	require.Len(t, flagged, 1)
	assert.Equal(t, "S2", flagged[0].Column)
}

func TestLocaleCellMatchesLiteral(t *testing.T) {
	idx := buildIndex([]string{"Variable", "A", "B"},
		[]table.Cell{table.String("KOİ"), table.String("12,5"), table.Number(12.5)},
	)

	prog, err := Compile(cellFormula("f", "KOİ == 12.5"))
	require.NoError(t, err)

	flagged := prog.Evaluate(idx).Flagged()
	require.Len(t, flagged, 2)
	assert.Equal(t, "A", flagged[0].Column)
	assert.Equal(t, "B", flagged[1].Column)
}

func TestRelational(t *testing.T) {
	idx := buildIndex([]string{"Variable", "S1"},
		[]table.Cell{table.String("A"), table.Number(10)},
		[]table.Cell{table.String("B"), table.Number(5)},
	)

	prog, err := Compile(relFormula("r", "A > B"))
	require.NoError(t, err)

	flagged := prog.Evaluate(idx).Flagged()
	require.Len(t, flagged, 2)

	assert.Equal(t, 0, flagged[0].Row)
	assert.Equal(t, 1, flagged[1].Row)
	for _, h := range flagged {
		assert.Equal(t, "S1", h.Column)
		require.NotNil(t, h.Left)
		require.NotNil(t, h.Right)
		assert.Equal(t, 10.0, *h.Left)
		assert.Equal(t, 5.0, *h.Right)
	}
}

func TestRelationalNeedsBothValues(t *testing.T) {
	idx := buildIndex([]string{"Variable", "S1", "S2"},
		[]table.Cell{table.String("Toplam Fosfor"), table.Number(1), table.Number(1)},
		[]table.Cell{table.String("Ortofosfat"), table.Number(2), table.Null()},
	)

	prog, err := Compile(relFormula("r", "Ortofosfat > Toplam Fosfor"))
	require.NoError(t, err)

	ev := prog.Evaluate(idx)
	require.Len(t, ev.Hits, 2, "only S1 has both values")
	assert.Equal(t, "S1", ev.Hits[0].Column)
	assert.Equal(t, 1, ev.Hits[0].Row, "first variable in the text comes first")
	assert.Equal(t, 2.0, *ev.Hits[0].Left)
	assert.Equal(t, 1.0, *ev.Hits[0].Right)
}

func TestDivisionByZeroSkipsCell(t *testing.T) {
	idx := buildIndex([]string{"Variable", "S1", "S2"},
		[]table.Cell{table.String("A"), table.Number(10), table.Number(10)},
		[]table.Cell{table.String("B"), table.Number(0), table.Number(2)},
	)

	prog, err := Compile(relFormula("r", "A / B > 1"))
	require.NoError(t, err)

	ev := prog.Evaluate(idx)
	assert.Equal(t, 1, ev.Skipped)
	flagged := ev.Flagged()
	require.Len(t, flagged, 2)
	assert.Equal(t, "S2", flagged[0].Column)
}

func TestUnresolvedVariableYieldsNothing(t *testing.T) {
	idx := buildIndex([]string{"Variable", "S1"},
		[]table.Cell{table.String("A"), table.Number(10)},
	)

	prog, err := Compile(cellFormula("f", "Bulanıklık > 5"))
	require.NoError(t, err)

	ev := prog.Evaluate(idx)
	assert.Empty(t, ev.Hits)
	assert.Zero(t, ev.Skipped)
}

func TestNoVariableColumnYieldsNothing(t *testing.T) {
	idx := buildIndex([]string{"Name", "S1"},
		[]table.Cell{table.String("A"), table.Number(10)},
	)

	prog, err := Compile(cellFormula("f", "A > 5"))
	require.NoError(t, err)
	assert.Empty(t, prog.Evaluate(idx).Hits)
}

func TestCompileErrors(t *testing.T) {
	t.Run("parse error", func(t *testing.T) {
		_, err := Compile(relFormula("bad", "A >< B"))
		var perr *parser.ParseError
		assert.True(t, errors.As(err, &perr))
	})

	t.Run("cell validation with two variables", func(t *testing.T) {
		_, err := Compile(cellFormula("bad", "A > B"))
		var serr *ShapeError
		require.True(t, errors.As(err, &serr))
		assert.Equal(t, "bad", serr.FormulaID)
		assert.Equal(t, []string{"A", "B"}, serr.Variables)
	})

	t.Run("relational with one variable", func(t *testing.T) {
		_, err := Compile(relFormula("bad", "A > 5"))
		var serr *ShapeError
		assert.True(t, errors.As(err, &serr))
	})

	t.Run("constant formula", func(t *testing.T) {
		_, err := Compile(cellFormula("bad", "1 > 0"))
		var serr *ShapeError
		assert.True(t, errors.As(err, &serr))
	})

	t.Run("unknown type", func(t *testing.T) {
		f := cellFormula("bad", "A > 5")
		f.Type = "RANGE"
		_, err := Compile(f)
		var serr *ShapeError
		require.True(t, errors.As(err, &serr))
		assert.Contains(t, serr.Error(), "unknown formula type")
	})
}

func TestSameVariableTwiceIsCellValidation(t *testing.T) {
	idx := buildIndex([]string{"Variable", "S1"},
		[]table.Cell{table.String("A"), table.Number(4)},
	)

	prog, err := Compile(cellFormula("sq", "A * A > 10"))
	require.NoError(t, err)
	assert.Len(t, prog.Evaluate(idx).Flagged(), 1)
}
