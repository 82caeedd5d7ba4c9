package storage

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/leengari/labcheck/internal/domain/table"
)

// LoadTable picks a loader by file extension (.json, .xlsx)
func LoadTable(path string, logger *slog.Logger) (*table.DataTable, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return LoadTableJSON(path, logger)
	case ".xlsx", ".xlsm":
		return LoadTableXLSX(path, "", logger)
	default:
		return nil, fmt.Errorf("unsupported table format %q", filepath.Ext(path))
	}
}

// LoadTableJSON reads a {"columns": [...], "data": [[...]]} document
func LoadTableJSON(path string, logger *slog.Logger) (*table.DataTable, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read table: %w", err)
	}

	var t table.DataTable
	if err := json.Unmarshal(data, &t); err != nil {
		return nil, fmt.Errorf("failed to parse table %s: %w", path, err)
	}
	if err := t.Validate(); err != nil {
		return nil, fmt.Errorf("table %s: %w", path, err)
	}

	logTable(logger, path, &t)
	return &t, nil
}

// LoadTableXLSX reads one sheet of a workbook; an empty sheet name means the first sheet
func LoadTableXLSX(path, sheet string, logger *slog.Logger) (*table.DataTable, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer file.Close()

	t, err := ReadTableXLSX(file, sheet)
	if err != nil {
		return nil, fmt.Errorf("workbook %s: %w", path, err)
	}

	logTable(logger, path, t)
	return t, nil
}

// ReadTableXLSX converts a sheet into a DataTable. The first row is the
// header; blank headers become Column_n and short rows are padded with null.
func ReadTableXLSX(r io.Reader, sheet string) (*table.DataTable, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	if sheet == "" {
		sheet = f.GetSheetName(0)
	}
	if sheet == "" {
		return nil, fmt.Errorf("no sheets")
	}

	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("sheet %q is empty", sheet)
	}

	width := 0
	for _, row := range rows {
		width = max(width, len(row))
	}

	t := &table.DataTable{
		Columns: make([]string, width),
		Data:    make([][]table.Cell, 0, len(rows)-1),
	}
	for i := range t.Columns {
		h := ""
		if i < len(rows[0]) {
			h = strings.TrimSpace(rows[0][i])
		}
		if h == "" {
			h = fmt.Sprintf("Column_%d", i+1)
		}
		t.Columns[i] = h
	}

	for _, row := range rows[1:] {
		cells := make([]table.Cell, width)
		for i := range cells {
			if i < len(row) && strings.TrimSpace(row[i]) != "" {
				cells[i] = table.String(row[i])
			} else {
				cells[i] = table.Null()
			}
		}
		t.Data = append(t.Data, cells)
	}

	if err := t.Validate(); err != nil {
		return nil, err
	}
	return t, nil
}

func logTable(logger *slog.Logger, path string, t *table.DataTable) {
	if logger == nil {
		logger = slog.Default()
	}
	logger.Info("table loaded",
		slog.String("path", path),
		slog.Int("columns", len(t.Columns)),
		slog.Int("rows", len(t.Data)),
	)
}
