package network

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/leengari/labcheck/internal/domain/formula"
	"github.com/leengari/labcheck/internal/domain/table"
	"github.com/leengari/labcheck/internal/engine"
	"github.com/leengari/labcheck/internal/storage"
)

// ErrSetsNotConfigured is returned by set operations when the service has no registry
var ErrSetsNotConfigured = errors.New("formula sets are not configured")

// Request is an evaluation request as it arrives over the wire. Besides inline
// formulas it may name a stored formula set; the set's formulas run first.
// Inline formulas use the same record form as formula set files, so a missing
// active flag means active and the type is matched case-insensitively.
type Request struct {
	TableID    string                  `json:"tableId,omitempty"`
	Table      *table.DataTable        `json:"table"`
	Formulas   []storage.FormulaRecord `json:"formulas"`
	FormulaSet string                  `json:"formulaSet,omitempty"`
	Command    string                  `json:"command,omitempty"`
}

// Response wraps a Result or an error message
type Response struct {
	*engine.Result
	Error string `json:"error,omitempty"`
}

// Service is the transport-independent part shared by the TCP and HTTP servers
type Service struct {
	Engine *engine.Engine
	Sets   *storage.Registry // optional
	Logger *slog.Logger
}

// NewService wires an engine and an optional formula-set registry
func NewService(eng *engine.Engine, sets *storage.Registry, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{Engine: eng, Sets: sets, Logger: logger}
}

// Resolve turns a wire request into an engine request
func (s *Service) Resolve(req Request) (engine.Request, error) {
	inline, err := storage.ToFormulas(req.Formulas)
	if err != nil {
		return engine.Request{}, err
	}

	out := engine.Request{TableID: req.TableID, Table: req.Table, Formulas: inline}
	if req.FormulaSet == "" {
		return out, nil
	}
	if s.Sets == nil {
		return out, ErrSetsNotConfigured
	}

	stored, err := s.Sets.Get(req.FormulaSet)
	if err != nil {
		return out, err
	}
	out.Formulas = append(append([]formula.Formula{}, stored...), inline...)
	return out, nil
}

// Evaluate resolves and runs a request
func (s *Service) Evaluate(req Request) (engine.Result, error) {
	resolved, err := s.Resolve(req)
	if err != nil {
		return engine.Result{}, err
	}
	return s.Engine.Evaluate(resolved), nil
}

// Validate converts and compiles each record and returns the diagnostics of
// those that failed
func (s *Service) Validate(records []storage.FormulaRecord) []engine.Diagnostic {
	diags := []engine.Diagnostic{}
	for _, r := range records {
		f, err := r.ToFormula()
		if err != nil {
			diags = append(diags, engine.Diagnostic{FormulaID: r.ID, Kind: engine.KindInvalidFormula, Message: err.Error()})
			continue
		}
		if d := s.Engine.Validate(f); d != nil {
			diags = append(diags, *d)
		}
	}
	return diags
}

// SaveSet stores records as the named formula set. Nothing is written when a
// record fails to validate; the diagnostics are returned instead.
func (s *Service) SaveSet(name string, records []storage.FormulaRecord) ([]engine.Diagnostic, error) {
	if s.Sets == nil {
		return nil, ErrSetsNotConfigured
	}

	if diags := s.Validate(records); len(diags) > 0 {
		return diags, nil
	}
	formulas, err := storage.ToFormulas(records)
	if err != nil {
		return nil, err
	}

	if err := s.Sets.Put(name, formulas); err != nil {
		return nil, fmt.Errorf("save formula set %q: %w", name, err)
	}
	s.Logger.Info("formula set saved", slog.String("set", name), slog.Int("formulas", len(formulas)))
	return nil, nil
}
