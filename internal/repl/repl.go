package repl

import (
	"bufio"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"text/tabwriter"

	"github.com/leengari/labcheck/internal/domain/formula"
	"github.com/leengari/labcheck/internal/domain/table"
	"github.com/leengari/labcheck/internal/engine"
	"github.com/leengari/labcheck/internal/parser"
	"github.com/leengari/labcheck/internal/parser/ast"
	"github.com/leengari/labcheck/internal/storage"
)

// AdHocColor is the highlight color of formulas typed at the prompt
const AdHocColor = "yellow"

// Session holds the table and formula set a REPL works against
type Session struct {
	Engine   *engine.Engine
	Table    *table.DataTable
	Formulas []formula.Formula
	Logger   *slog.Logger

	adHoc int
}

// Start reads commands from in until EOF, exit or \q
func Start(in io.Reader, out io.Writer, s *Session) {
	scanner := bufio.NewScanner(in)
	fmt.Fprintln(out, "Welcome to labcheck")
	fmt.Fprintln(out, "Type a formula, ':help' for commands, 'exit' or '\\q' to quit.")

	if s.Engine == nil {
		s.Engine = engine.New(s.Logger, engine.Options{})
	}

	for {
		fmt.Fprint(out, "> ")
		if !scanner.Scan() {
			fmt.Fprintln(out)
			return
		}
		line := strings.TrimSpace(scanner.Text())

		if line == "" {
			continue
		}

		if line == "exit" || line == "\\q" {
			break
		}

		s.Handle(out, line)
	}
}

// Handle runs a single command line
func (s *Session) Handle(out io.Writer, line string) {
	switch {
	case line == ":help":
		printHelp(out)

	case line == ":columns":
		if s.Table == nil {
			fmt.Fprintln(out, "No table loaded. Use ':load <path>'.")
			return
		}
		for i, col := range s.Table.Columns {
			fmt.Fprintf(out, "  %d  %s\n", i, col)
		}

	case line == ":formulas" || line == "ls" || line == "list":
		PrintFormulas(out, s.Formulas)

	case line == ":run":
		s.run(out, s.Formulas)

	case strings.HasPrefix(line, ":load "):
		path := strings.TrimSpace(strings.TrimPrefix(line, ":load "))
		t, err := storage.LoadTable(path, s.Logger)
		if err != nil {
			fmt.Fprintf(out, "Error: %v\n", err)
			return
		}
		s.Table = t
		fmt.Fprintf(out, "Loaded %d rows, %d columns.\n", len(t.Data), len(t.Columns))

	case strings.HasPrefix(line, ":formulas "):
		path := strings.TrimSpace(strings.TrimPrefix(line, ":formulas "))
		fs, err := storage.LoadFormulas(path, s.Logger)
		if err != nil {
			fmt.Fprintf(out, "Error: %v\n", err)
			return
		}
		s.Formulas = fs
		fmt.Fprintf(out, "Loaded %d formulas.\n", len(fs))

	case strings.HasPrefix(line, ":"):
		fmt.Fprintf(out, "Unknown command %q. Type ':help'.\n", line)

	default:
		f, err := s.adHocFormula(line)
		if err != nil {
			fmt.Fprintf(out, "Error: %v\n", err)
			return
		}
		s.run(out, []formula.Formula{f})
	}
}

func (s *Session) run(out io.Writer, formulas []formula.Formula) {
	if s.Table == nil {
		fmt.Fprintln(out, "No table loaded. Use ':load <path>'.")
		return
	}
	PrintResult(out, s.Engine.Evaluate(engine.Request{Table: s.Table, Formulas: formulas}))
}

// adHocFormula builds a formula from typed text. "cell:" and "rel:" force the
// type; otherwise it is inferred from the number of distinct variables.
func (s *Session) adHocFormula(line string) (formula.Formula, error) {
	var typ formula.Type
	text := line
	switch {
	case hasPrefixFold(line, "cell:"):
		typ, text = formula.CellValidation, strings.TrimSpace(line[len("cell:"):])
	case hasPrefixFold(line, "rel:"):
		typ, text = formula.Relational, strings.TrimSpace(line[len("rel:"):])
	}

	if typ == "" {
		expr, err := parser.Parse(text)
		if err != nil {
			return formula.Formula{}, err
		}
		if len(ast.Variables(expr)) == 2 {
			typ = formula.Relational
		} else {
			typ = formula.CellValidation
		}
	}

	s.adHoc++
	id := fmt.Sprintf("adhoc-%d", s.adHoc)
	return formula.Formula{
		ID:      id,
		Name:    id,
		Formula: text,
		Type:    typ,
		Color:   AdHocColor,
		Active:  true,
	}, nil
}

func hasPrefixFold(s, prefix string) bool {
	return len(s) >= len(prefix) && strings.EqualFold(s[:len(prefix)], prefix)
}

func printHelp(out io.Writer) {
	fmt.Fprintln(out, `Commands:
  <formula>          evaluate a formula, e.g. İletkenlik > 500
  cell: <formula>    evaluate as CELL_VALIDATION
  rel: <formula>     evaluate as RELATIONAL
  :run               evaluate the loaded formula set
  :load <path>       load a table (.json, .xlsx)
  :formulas [path]   list the formula set, or load one
  :columns           list table columns
  exit, \q           quit`)
}

// PrintFormulas lists a formula set
func PrintFormulas(w io.Writer, formulas []formula.Formula) {
	if len(formulas) == 0 {
		fmt.Fprintln(w, "No formulas loaded.")
		return
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tTYPE\tACTIVE\tCOLOR\tFORMULA")
	fmt.Fprintln(tw, "---\t---\t---\t---\t---")
	for _, f := range formulas {
		fmt.Fprintf(tw, "%s\t%s\t%t\t%s\t%s\n", f.ID, f.Type, f.Active, f.Color, f.Formula)
	}
	tw.Flush()
}

// PrintResult renders highlighted cells as a table followed by diagnostics
func PrintResult(w io.Writer, res engine.Result) {
	for _, d := range res.Diagnostics {
		fmt.Fprintf(w, "Error: %s\n", d)
	}

	if len(res.Cells) == 0 {
		fmt.Fprintln(w, "(no highlighted cells)")
		return
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)

	// Header
	fmt.Fprintln(tw, "ROW\tCOLUMN\tCOLOR\tFORMULAS\tMESSAGE")

	// Separator
	fmt.Fprintln(tw, "---\t---\t---\t---\t---")

	// Rows
	for _, c := range res.Cells {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", c.Row, c.Col, c.Color, strings.Join(c.FormulaIDs, ","), c.Message)
	}
	tw.Flush()

	fmt.Fprintf(w, "(%d highlighted cells)\n", len(res.Cells))
}
