package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/leengari/labcheck/internal/domain/formula"
	"github.com/leengari/labcheck/internal/domain/table"
	"github.com/leengari/labcheck/internal/engine"
	"github.com/leengari/labcheck/internal/repl"
	"github.com/leengari/labcheck/internal/storage"
	"github.com/leengari/labcheck/internal/storage/writer"
)

func newEvalCmd(a *app) *cobra.Command {
	var (
		tablePath    string
		sheet        string
		formulasPath string
		tableID      string
		savePath     string
		export       bool
	)

	cmd := &cobra.Command{
		Use:   "eval",
		Short: "Evaluate a formula set against a table",
		Example: `  labcheck eval --table water.xlsx --formulas formulas.yaml
  labcheck eval --table water.json --formulas formulas/ -o json --save result.json`,
		Args: cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			t, err := loadTable(a, tablePath, sheet)
			if err != nil {
				return err
			}

			var formulas []formula.Formula
			if formulasPath != "" {
				formulas, err = storage.LoadFormulas(formulasPath, a.logger)
				if err != nil {
					return err
				}
			}

			result := a.engine().Evaluate(engine.Request{TableID: tableID, Table: t, Formulas: formulas})

			if savePath != "" {
				if err := writer.SaveResult(savePath, result, a.logger); err != nil {
					return err
				}
			}

			switch {
			case export:
				return writer.WriteExport(a.stdout, result.Cells)
			case a.output == "json":
				return writer.WriteResult(a.stdout, result)
			default:
				repl.PrintResult(a.stdout, result)
				return nil
			}
		},
	}

	cmd.Flags().StringVarP(&tablePath, "table", "t", "", "Table file (.json, .xlsx)")
	cmd.Flags().StringVar(&sheet, "sheet", "", "Worksheet name for .xlsx tables (default first sheet)")
	cmd.Flags().StringVarP(&formulasPath, "formulas", "f", "", "Formula set file or directory")
	cmd.Flags().StringVar(&tableID, "table-id", "", "Table id used to filter table-scoped formulas")
	cmd.Flags().StringVar(&savePath, "save", "", "Also write the JSON result to this file")
	cmd.Flags().BoolVar(&export, "export", false, "Print {row, col, color, message} tuples for report export")
	_ = cmd.MarkFlagRequired("table")

	return cmd
}

func loadTable(a *app, path, sheet string) (*table.DataTable, error) {
	var (
		t   *table.DataTable
		err error
	)
	if sheet != "" {
		t, err = storage.LoadTableXLSX(path, sheet, a.logger)
	} else {
		t, err = storage.LoadTable(path, a.logger)
	}
	if err != nil {
		return nil, fmt.Errorf("load table: %w", err)
	}
	return t, nil
}
