package storage

import (
	"fmt"

	"github.com/leengari/labcheck/internal/domain/formula"
)

// FormulaFile is the on-disk shape of a formula set (YAML or JSON)
type FormulaFile struct {
	Name     string          `json:"name,omitempty" yaml:"name,omitempty"`
	Formulas []FormulaRecord `json:"formulas" yaml:"formulas"`
}

// FormulaRecord mirrors formula.Formula but lets files omit the active flag
// and spell the type in any case.
type FormulaRecord struct {
	ID          string        `json:"id" yaml:"id"`
	Name        string        `json:"name" yaml:"name"`
	Description string        `json:"description,omitempty" yaml:"description,omitempty"`
	Formula     string        `json:"formula" yaml:"formula"`
	Type        string        `json:"type" yaml:"type"`
	Color       string        `json:"color" yaml:"color"`
	Active      *bool         `json:"active,omitempty" yaml:"active,omitempty"`
	Scope       formula.Scope `json:"scope" yaml:"scope"`
}

// ToFormula converts the record; a missing active flag means active
func (r FormulaRecord) ToFormula() (formula.Formula, error) {
	typ, err := formula.ParseType(r.Type)
	if err != nil {
		return formula.Formula{}, fmt.Errorf("formula %q: %w", r.ID, err)
	}
	if r.ID == "" {
		return formula.Formula{}, fmt.Errorf("formula %q has no id", r.Formula)
	}

	active := true
	if r.Active != nil {
		active = *r.Active
	}

	return formula.Formula{
		ID:          r.ID,
		Name:        r.Name,
		Description: r.Description,
		Formula:     r.Formula,
		Type:        typ,
		Color:       r.Color,
		Active:      active,
		Scope:       r.Scope,
	}, nil
}

// RecordOf converts a formula into its file and wire form
func RecordOf(f formula.Formula) FormulaRecord {
	active := f.Active
	return FormulaRecord{
		ID:          f.ID,
		Name:        f.Name,
		Description: f.Description,
		Formula:     f.Formula,
		Type:        string(f.Type),
		Color:       f.Color,
		Active:      &active,
		Scope:       f.Scope,
	}
}

// ToFormulas converts records in order and rejects repeated ids
func ToFormulas(records []FormulaRecord) ([]formula.Formula, error) {
	out := make([]formula.Formula, 0, len(records))
	ids := make(map[string]bool, len(records))
	for _, r := range records {
		f, err := r.ToFormula()
		if err != nil {
			return nil, err
		}
		if ids[f.ID] {
			return nil, fmt.Errorf("duplicate formula id %q", f.ID)
		}
		ids[f.ID] = true
		out = append(out, f)
	}
	return out, nil
}
