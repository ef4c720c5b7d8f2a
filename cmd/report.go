package cmd

import (
	"fmt"
	"path/filepath"

	"github.com/sanjoy16/C-Autograder-Pro/internal/report"
	"github.com/spf13/cobra"
)

var flagFormat string

func newReportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "report [run-dir|submission-dir]",
		Short: "Re-render stored reports",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := report.ValidateFormat(flagFormat); err != nil {
				return err
			}
			cfg, _, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			dir := filepath.Join(cfg.Results.Dir, "latest")
			if len(args) > 0 {
				dir = args[0]
			}
			resolved, err := filepath.EvalSymlinks(dir)
			if err != nil {
				return fmt.Errorf("resolving report dir: %w", err)
			}
			return report.Generate(resolved, flagFormat, cfg.Scoring.Weights, cmd.OutOrStdout())
		},
	}
	cmd.Flags().StringVar(&flagFormat, "format", "table", "output format (table, markdown, json)")
	return cmd
}
