package cli

import (
	"github.com/spf13/cobra"

	"github.com/leengari/labcheck/internal/repl"
	"github.com/leengari/labcheck/internal/storage"
)

func newReplCmd(a *app) *cobra.Command {
	var (
		tablePath    string
		sheet        string
		formulasPath string
	)

	cmd := &cobra.Command{
		Use:   "repl",
		Short: "Type formulas interactively against a table",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			s := &repl.Session{Engine: a.engine(), Logger: a.logger}

			if tablePath != "" {
				t, err := loadTable(a, tablePath, sheet)
				if err != nil {
					return err
				}
				s.Table = t
			}
			if formulasPath != "" {
				fs, err := storage.LoadFormulas(formulasPath, a.logger)
				if err != nil {
					return err
				}
				s.Formulas = fs
			}

			repl.Start(a.stdin, a.stdout, s)
			return nil
		},
	}

	cmd.Flags().StringVarP(&tablePath, "table", "t", "", "Table file to load at startup")
	cmd.Flags().StringVar(&sheet, "sheet", "", "Worksheet name for .xlsx tables")
	cmd.Flags().StringVarP(&formulasPath, "formulas", "f", "", "Formula set to load at startup")

	return cmd
}
