package main

import (
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/sem0ark/soltree/internal/config"
	"github.com/sem0ark/soltree/internal/logging"
	"github.com/sem0ark/soltree/pkg/errutil"
)

var configFile string

// NewRootCmd creates the root command for the soltree CLI.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "soltree",
		Short: "Compile and evaluate solution-tree decision configurations",
		Long: `soltree compiles a JSON decision-tree configuration against a small
structural schema language, then evaluates host values against the
compiled tree.`,
	}

	cmd.PersistentFlags().StringVar(&configFile, "config", "", "config file path")
	cmd.AddCommand(newValidateCmd())
	cmd.AddCommand(newEvalCmd())

	return cmd
}

// loadLogger wires up the CLI's config-driven logger once per command run.
func loadLogger(cmd *cobra.Command) *slog.Logger {
	cfg, err := config.Load(configFile, cmd.Flags())
	if err != nil {
		logger := logging.Setup("soltree", "dev", "json", nil)
		errutil.LogError(logger, "failed to load CLI configuration, using defaults", err)
		return logger
	}
	return logging.Setup("soltree", "dev", cfg.LogFormat, nil)
}
