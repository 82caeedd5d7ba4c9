package formula

import (
	"fmt"
	"strings"
)

// Type selects the evaluation semantics of a formula
type Type string

const (
	// CellValidation compares one variable against a threshold
	CellValidation Type = "CELL_VALIDATION"
	// Relational compares two variables with each other
	Relational Type = "RELATIONAL"
)

// ParseType accepts the canonical names case-insensitively
func ParseType(s string) (Type, error) {
	switch Type(strings.ToUpper(strings.TrimSpace(s))) {
	case CellValidation:
		return CellValidation, nil
	case Relational:
		return Relational, nil
	default:
		return "", fmt.Errorf("unknown formula type %q", s)
	}
}

// ScopeKind says whether a formula is shared by a workspace or bound to one table
type ScopeKind string

const (
	ScopeWorkspace ScopeKind = "workspace"
	ScopeTable     ScopeKind = "table"
)

// Scope binds a formula to a workspace or a single table
type Scope struct {
	Kind        ScopeKind `json:"kind" yaml:"kind"`
	WorkspaceID string    `json:"workspaceId,omitempty" yaml:"workspaceId,omitempty"`
	TableID     string    `json:"tableId,omitempty" yaml:"tableId,omitempty"`
}

// Formula is a read-only snapshot of a stored rule
type Formula struct {
	ID          string `json:"id" yaml:"id"`
	Name        string `json:"name" yaml:"name"`
	Description string `json:"description,omitempty" yaml:"description,omitempty"`
	Formula     string `json:"formula" yaml:"formula"`
	Type        Type   `json:"type" yaml:"type"`
	Color       string `json:"color" yaml:"color"`
	Active      bool   `json:"active" yaml:"active"`
	Scope       Scope  `json:"scope" yaml:"scope"`
}

// AppliesTo reports whether the formula should run against the given table.
// Workspace formulas (and formulas with no scope at all) apply everywhere;
// table formulas only to their own table. An empty tableID matches any formula.
func (f *Formula) AppliesTo(tableID string) bool {
	if tableID == "" {
		return true
	}
	if f.Scope.Kind != ScopeTable {
		return true
	}
	return f.Scope.TableID == tableID
}

// Select returns the active formulas that apply to tableID, keeping input order
func Select(formulas []Formula, tableID string) []Formula {
	out := make([]Formula, 0, len(formulas))
	for _, f := range formulas {
		if f.Active && f.AppliesTo(tableID) {
			out = append(out, f)
		}
	}
	return out
}
