package writer

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"

	"github.com/leengari/labcheck/internal/engine"
	"github.com/leengari/labcheck/internal/highlight"
	"github.com/leengari/labcheck/internal/storage"
)

// WriteResult encodes the result as indented JSON
func WriteResult(w io.Writer, result engine.Result) error {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(result); err != nil {
		return fmt.Errorf("failed to encode result: %w", err)
	}
	return nil
}

// SaveResult persists the result atomically
func SaveResult(path string, result engine.Result, logger *slog.Logger) error {
	if logger == nil {
		logger = slog.Default()
	}

	data, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal result: %w", err)
	}

	if err := storage.WriteAtomic(path, data); err != nil {
		return err
	}

	logger.Info("Result saved successfully",
		slog.String("path", path),
		slog.Int("highlighted_cells", len(result.Cells)),
		slog.Int("diagnostics", len(result.Diagnostics)),
	)

	return nil
}

// WriteExport encodes the {row, col, color, message} tuples used by report export
func WriteExport(w io.Writer, cells []highlight.HighlightedCell) error {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(highlight.ForExport(cells)); err != nil {
		return fmt.Errorf("failed to encode export: %w", err)
	}
	return nil
}
