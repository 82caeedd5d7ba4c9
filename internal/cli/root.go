package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/leengari/labcheck/internal/config"
	"github.com/leengari/labcheck/internal/engine"
	"github.com/leengari/labcheck/internal/logging"
)

var (
	version = "dev"
	commit  = "none"
)

// app carries what PersistentPreRunE resolved to the subcommands
type app struct {
	cfg        config.Config
	configPath string
	logger     *slog.Logger
	closeFn    func()
	output     string
	stdin      io.Reader
	stdout     io.Writer
}

func (a *app) engine() *engine.Engine {
	eng := engine.New(a.logger, engine.Options{MaxCells: a.cfg.Engine.MaxCells})
	eng.AddObserver(engine.NewLoggingObserver(a.logger))
	return eng
}

func (a *app) printJSON(v interface{}) error {
	enc := json.NewEncoder(a.stdout)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// Execute runs the CLI and returns the process exit code
func Execute() int {
	rootCmd := newRootCmd(os.Stdin, os.Stdout)
	if err := rootCmd.Execute(); err != nil {
		output, _ := rootCmd.PersistentFlags().GetString("output")
		if output == "json" {
			_ = json.NewEncoder(os.Stdout).Encode(map[string]string{"error": err.Error()})
		} else {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
		return 1
	}
	return 0
}

func newRootCmd(stdin io.Reader, stdout io.Writer) *cobra.Command {
	var logLevel string
	a := &app{stdin: stdin, stdout: stdout, closeFn: func() {}}

	rootCmd := &cobra.Command{
		Use:           "labcheck",
		Short:         "Evaluate lab-data formulas against tables",
		Long:          "Command-line interface for the labcheck formula evaluation engine.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(a.configPath)
			if err != nil {
				return err
			}

			// Apply precedence: flag > env > file > default
			if cmd.Flags().Changed("log-level") {
				if _, err := config.ParseLevel(logLevel); err != nil {
					return err
				}
				cfg.Log.Level = logLevel
			}

			if a.output != "table" && a.output != "json" {
				return fmt.Errorf("unsupported output format %q: use 'table' or 'json'", a.output)
			}

			a.cfg = cfg
			a.logger, a.closeFn = logging.SetupLogger(cfg.Log)
			slog.SetDefault(a.logger)
			return nil
		},
		PersistentPostRun: func(_ *cobra.Command, _ []string) {
			a.closeFn()
		},
	}

	rootCmd.PersistentFlags().StringVarP(&a.configPath, "config", "c", "labcheck.yaml", "Path to the config file")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "Log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVarP(&a.output, "output", "o", "table", "Output format (table, json)")

	rootCmd.AddCommand(newEvalCmd(a))
	rootCmd.AddCommand(newValidateCmd(a))
	rootCmd.AddCommand(newReplCmd(a))
	rootCmd.AddCommand(newServeCmd(a))
	rootCmd.AddCommand(newConfigCmd(a))
	rootCmd.AddCommand(newVersionCmd(a))

	return rootCmd
}
