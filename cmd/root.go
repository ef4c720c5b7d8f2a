package cmd

import (
	"fmt"
	"log/slog"

	"github.com/sanjoy16/C-Autograder-Pro/internal/config"
	"github.com/sanjoy16/C-Autograder-Pro/internal/logging"
	"github.com/spf13/cobra"
)

var cfgFile string

func NewRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:          "autograder",
		Short:        "Compile, test and score C submissions",
		SilenceUsage: true,
	}
	root.PersistentFlags().StringVar(&cfgFile, "config", "autograder.yaml", "config file path")
	root.AddCommand(newGradeCmd())
	root.AddCommand(newReportCmd())
	root.AddCommand(newRubricCmd())
	return root
}

// loadConfig reads the config file, builds the logger and exports secrets.
// A missing default config file means defaults; a missing file named with
// --config is an error.
func loadConfig(cmd *cobra.Command) (*config.Config, *slog.Logger, error) {
	cfg, err := config.LoadOrDefault(cfgFile, cmd.Flags().Changed("config"))
	if err != nil {
		return nil, nil, fmt.Errorf("loading config: %w", err)
	}
	logger := logging.New(logging.Options{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: cmd.ErrOrStderr(),
	})
	if err := cfg.LoadSecrets(); err != nil {
		logger.Warn("could not load secrets", "error", err)
	}
	return cfg, logger, nil
}
