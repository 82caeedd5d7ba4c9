package writer

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leengari/labcheck/internal/engine"
	"github.com/leengari/labcheck/internal/highlight"
)

func sampleResult() engine.Result {
	return engine.Result{
		Cells: []highlight.HighlightedCell{{
			Row:        "row-0",
			Col:        "Nisan 22",
			Color:      "red",
			Message:    "Conductivity: İletkenlik > 500 (value 600)",
			FormulaIDs: []string{"cond"},
		}},
	}
}

func TestSaveResult(t *testing.T) {
	path := filepath.Join(t.TempDir(), "result.json")

	require.NoError(t, SaveResult(path, sampleResult(), nil))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	var got engine.Result
	require.NoError(t, json.Unmarshal(data, &got))
	require.Len(t, got.Cells, 1)
	assert.Equal(t, "red", got.Cells[0].Color)

	_, err = os.Stat(path + ".tmp")
	assert.True(t, os.IsNotExist(err), "temp file is renamed away")
}

func TestSaveResultRemovesTempOnFailure(t *testing.T) {
	// a non-empty directory cannot be replaced by a file
	path := filepath.Join(t.TempDir(), "result.json")
	require.NoError(t, os.MkdirAll(filepath.Join(path, "keep"), 0o755))

	err := SaveResult(path, sampleResult(), nil)
	require.Error(t, err)

	_, statErr := os.Stat(path + ".tmp")
	assert.True(t, os.IsNotExist(statErr), "temp file is cleaned up")
}

func TestWriteResultKeepsOperators(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteResult(&buf, sampleResult()))
	assert.Contains(t, buf.String(), "İletkenlik > 500")
}

func TestWriteExport(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteExport(&buf, sampleResult().Cells))

	var cells []highlight.ExportCell
	require.NoError(t, json.Unmarshal(buf.Bytes(), &cells))
	assert.Equal(t, []highlight.ExportCell{{
		Row:     "row-0",
		Col:     "Nisan 22",
		Color:   "red",
		Message: "Conductivity: İletkenlik > 500 (value 600)",
	}}, cells)
	assert.NotContains(t, buf.String(), "formulaIds")
}
