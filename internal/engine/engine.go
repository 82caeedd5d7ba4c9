package engine

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/leengari/labcheck/internal/domain/formula"
	"github.com/leengari/labcheck/internal/domain/table"
	"github.com/leengari/labcheck/internal/evaluator"
	"github.com/leengari/labcheck/internal/highlight"
	"github.com/leengari/labcheck/internal/index"
)

// DefaultMaxCells caps rows × columns of a single evaluated table
const DefaultMaxCells = 1_000_000

// Options tune an Engine
type Options struct {
	MaxCells int // <= 0 means DefaultMaxCells
}

// Request is one "apply formulas" call
type Request struct {
	TableID  string            `json:"tableId,omitempty"`
	Table    *table.DataTable  `json:"table"`
	Formulas []formula.Formula `json:"formulas"`
}

// Result is the merged highlight set plus anything that was skipped
type Result struct {
	Cells       []highlight.HighlightedCell `json:"cells"`
	Diagnostics []Diagnostic                `json:"diagnostics,omitempty"`
}

// Engine is the main entry point for formula evaluation.
// It keeps no state between calls; observers are registered during setup,
// after that an Engine may be shared across goroutines.
type Engine struct {
	logger    *slog.Logger
	opts      Options
	observers []Observer // Observers for lifecycle events
}

// New creates a new Engine instance
func New(logger *slog.Logger, opts Options) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	if opts.MaxCells <= 0 {
		opts.MaxCells = DefaultMaxCells
	}
	return &Engine{
		logger:    logger,
		opts:      opts,
		observers: make([]Observer, 0),
	}
}

// Evaluate runs every active, in-scope formula against the table and merges
// the verdicts. It never fails: malformed formulas and oversized or ragged
// tables are reported as diagnostics.
func (e *Engine) Evaluate(req Request) Result {
	runID := uuid.New().String()
	result := Result{Cells: []highlight.HighlightedCell{}}

	e.notify(Event{Type: EventEvaluateStart, RunID: runID, Data: map[string]interface{}{
		"table_id": req.TableID,
		"formulas": len(req.Formulas),
	}})

	if req.Table == nil {
		req.Table = &table.DataTable{}
	}

	if cells := req.Table.CellCount(); cells > e.opts.MaxCells {
		result.Diagnostics = append(result.Diagnostics, Diagnostic{
			Kind:    KindInputTooLarge,
			Message: fmt.Sprintf("table has %d cells, limit is %d", cells, e.opts.MaxCells),
		})
		e.logger.Warn("table too large, skipping evaluation",
			slog.String("run_id", runID),
			slog.Int("cells", cells),
			slog.Int("max_cells", e.opts.MaxCells))
		e.finish(runID, result)
		return result
	}

	if err := req.Table.Validate(); err != nil {
		result.Diagnostics = append(result.Diagnostics, Diagnostic{Kind: KindInvalidTable, Message: err.Error()})
		e.logger.Warn("invalid table, skipping evaluation", slog.String("run_id", runID), slog.Any("error", err))
		e.finish(runID, result)
		return result
	}

	// 1. Compile
	e.notify(Event{Type: EventCompileStart, RunID: runID})
	programs, diags := e.compile(req.Formulas, req.TableID)
	result.Diagnostics = append(result.Diagnostics, diags...)
	e.notify(Event{Type: EventCompileEnd, RunID: runID, Data: map[string]interface{}{
		"compiled": len(programs),
		"rejected": len(diags),
	}})

	// 2. Index
	idx := index.Build(req.Table, e.logger)
	e.notify(Event{Type: EventIndexBuilt, RunID: runID, Data: map[string]interface{}{
		"variables":      len(idx.Rows),
		"sample_columns": len(idx.SampleColumns),
	}})

	// 3. Evaluate + aggregate in formula order
	agg := highlight.NewAggregator(idx.ColumnPosition)
	for _, prog := range programs {
		ev := prog.Evaluate(idx)
		if ev.Skipped > 0 {
			e.logger.Debug("cells skipped on non-finite arithmetic",
				slog.String("run_id", runID),
				slog.String("formula_id", prog.Formula.ID),
				slog.Int("skipped", ev.Skipped))
		}
		agg.Add(prog.Formula, ev.Hits)
	}
	result.Cells = agg.Cells()

	e.finish(runID, result)
	return result
}

// Validate compiles a single formula without evaluating it. The CRUD layer
// calls this before saving a formula.
func (e *Engine) Validate(f formula.Formula) *Diagnostic {
	if _, err := evaluator.Compile(f); err != nil {
		d := formulaDiagnostic(f.ID, err)
		return &d
	}
	return nil
}

func (e *Engine) compile(formulas []formula.Formula, tableID string) ([]*evaluator.Program, []Diagnostic) {
	var (
		programs []*evaluator.Program
		diags    []Diagnostic
	)
	for _, f := range formula.Select(formulas, tableID) {
		prog, err := evaluator.Compile(f)
		if err != nil {
			e.logger.Info("formula rejected",
				slog.String("formula_id", f.ID),
				slog.String("formula", f.Formula),
				slog.Any("error", err))
			diags = append(diags, formulaDiagnostic(f.ID, err))
			continue
		}
		programs = append(programs, prog)
	}
	return programs, diags
}

func (e *Engine) finish(runID string, result Result) {
	e.notify(Event{Type: EventEvaluateEnd, RunID: runID, Data: map[string]interface{}{
		"highlighted_cells": len(result.Cells),
		"diagnostics":       len(result.Diagnostics),
	}})
}

// AddObserver registers an observer to receive lifecycle events
func (e *Engine) AddObserver(observer Observer) {
	e.observers = append(e.observers, observer)
}

// RemoveObserver unregisters an observer
func (e *Engine) RemoveObserver(observer Observer) {
	for i, o := range e.observers {
		if o == observer {
			e.observers = append(e.observers[:i], e.observers[i+1:]...)
			return
		}
	}
}

// notify sends an event to all registered observers
func (e *Engine) notify(event Event) {
	event.Timestamp = time.Now()
	for _, observer := range e.observers {
		observer.OnEvent(event)
	}
}

// EvaluateAll is Evaluate with default options and no scope filtering
func EvaluateAll(formulas []formula.Formula, t *table.DataTable) Result {
	return New(nil, Options{}).Evaluate(Request{Table: t, Formulas: formulas})
}
