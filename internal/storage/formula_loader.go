package storage

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/leengari/labcheck/internal/domain/formula"
)

// LoadFormulas reads a formula set from a .yaml, .yml or .json file, or from
// every such file in a directory (in file name order). A file may hold either
// a {formulas: [...]} document or a bare list.
func LoadFormulas(path string, logger *slog.Logger) ([]formula.Formula, error) {
	if logger == nil {
		logger = slog.Default()
	}

	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("failed to stat formulas: %w", err)
	}
	if !info.IsDir() {
		return loadFormulaFile(path, logger)
	}

	entries, err := os.ReadDir(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read formula directory: %w", err)
	}

	var names []string
	for _, entry := range entries {
		if entry.IsDir() || !isFormulaFile(entry.Name()) {
			continue
		}
		names = append(names, entry.Name())
	}
	sort.Strings(names)

	var (
		all  []formula.Formula
		seen = make(map[string]string)
	)
	for _, name := range names {
		fs, err := loadFormulaFile(filepath.Join(path, name), logger)
		if err != nil {
			return nil, err
		}
		for _, f := range fs {
			if prev, ok := seen[f.ID]; ok {
				return nil, fmt.Errorf("formula id %q defined in both %s and %s", f.ID, prev, name)
			}
			seen[f.ID] = name
		}
		all = append(all, fs...)
	}

	logger.Info("formula directory loaded",
		slog.String("path", path),
		slog.Int("files", len(names)),
		slog.Int("formulas", len(all)),
	)
	return all, nil
}

// ParseFormulas decodes a formula set document; JSON is accepted as YAML
func ParseFormulas(data []byte) ([]formula.Formula, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, err
	}
	if len(doc.Content) == 0 {
		return nil, nil
	}

	var records []FormulaRecord
	root := doc.Content[0]
	switch root.Kind {
	case yaml.SequenceNode:
		if err := root.Decode(&records); err != nil {
			return nil, err
		}
	case yaml.MappingNode:
		var file FormulaFile
		if err := root.Decode(&file); err != nil {
			return nil, err
		}
		records = file.Formulas
	default:
		return nil, fmt.Errorf("line %d: expected a list of formulas or a mapping with a formulas key", root.Line)
	}

	return ToFormulas(records)
}

// SaveFormulas writes formulas as a YAML formula set
func SaveFormulas(path string, formulas []formula.Formula) error {
	file := FormulaFile{Formulas: make([]FormulaRecord, len(formulas))}
	for i, f := range formulas {
		file.Formulas[i] = RecordOf(f)
	}

	data, err := yaml.Marshal(file)
	if err != nil {
		return fmt.Errorf("failed to marshal formulas: %w", err)
	}
	return WriteAtomic(path, data)
}

func loadFormulaFile(path string, logger *slog.Logger) ([]formula.Formula, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read formulas: %w", err)
	}

	formulas, err := ParseFormulas(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse formulas %s: %w", path, err)
	}

	logger.Debug("formula file loaded",
		slog.String("path", path),
		slog.Int("formulas", len(formulas)),
	)
	return formulas, nil
}

func isFormulaFile(name string) bool {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".yaml", ".yml", ".json":
		return true
	}
	return false
}
