package cli

import (
	"errors"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/leengari/labcheck/internal/engine"
	"github.com/leengari/labcheck/internal/storage"
)

// errInvalidFormulas makes validate exit non-zero after printing its report
var errInvalidFormulas = errors.New("formula set has invalid formulas")

func newValidateCmd(a *app) *cobra.Command {
	var (
		saveSet string
		setsDir string
	)

	cmd := &cobra.Command{
		Use:   "validate <formulas>",
		Short: "Check that every formula in a set compiles",
		Example: `  labcheck validate formulas.yaml
  labcheck validate formulas/ --save-set water --sets-dir /srv/labcheck/sets`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Flags().Changed("sets-dir") {
				a.cfg.Server.SetsDir = setsDir
			}
			if saveSet != "" && a.cfg.Server.SetsDir == "" {
				return fmt.Errorf("--save-set needs --sets-dir or server.sets_dir")
			}

			formulas, err := storage.LoadFormulas(args[0], a.logger)
			if err != nil {
				return err
			}

			eng := a.engine()
			diags := []engine.Diagnostic{}
			for _, f := range formulas {
				if d := eng.Validate(f); d != nil {
					diags = append(diags, *d)
				}
			}

			// only a clean set is stored
			saved := ""
			if saveSet != "" && len(diags) == 0 {
				if err := storage.NewRegistry(a.cfg.Server.SetsDir, a.logger).Put(saveSet, formulas); err != nil {
					return err
				}
				saved = saveSet
			}

			if a.output == "json" {
				report := map[string]interface{}{
					"formulas":    len(formulas),
					"valid":       len(diags) == 0,
					"diagnostics": diags,
				}
				if saved != "" {
					report["savedAs"] = saved
				}
				if err := a.printJSON(report); err != nil {
					return err
				}
			} else {
				tw := tabwriter.NewWriter(a.stdout, 0, 0, 2, ' ', 0)
				fmt.Fprintln(tw, "FORMULA\tKIND\tPOSITION\tMESSAGE")
				for _, d := range diags {
					pos := "-"
					if d.Position != nil {
						pos = fmt.Sprint(*d.Position)
					}
					fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", d.FormulaID, d.Kind, pos, d.Message)
				}
				tw.Flush()
				fmt.Fprintf(a.stdout, "%d formulas, %d invalid\n", len(formulas), len(diags))
				if saved != "" {
					fmt.Fprintf(a.stdout, "saved as formula set %q\n", saved)
				}
			}

			if len(diags) > 0 {
				return errInvalidFormulas
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&saveSet, "save-set", "", "Store the set under this name when every formula is valid")
	cmd.Flags().StringVar(&setsDir, "sets-dir", "", "Directory of named formula sets (overrides server.sets_dir)")

	return cmd
}
