package cmd

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/sanjoy16/C-Autograder-Pro/internal/validation"
	"github.com/spf13/cobra"
)

func newRubricCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "rubric",
		Short: "Show the scoring rubric",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, _, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			w := cfg.Scoring.Weights
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "COMPONENT\tMAX\tMEASURES")
			fmt.Fprintln(tw, strings.Repeat("-", 60))
			for _, c := range validation.Rubric(w) {
				fmt.Fprintf(tw, "%s\t%g\t%s\n", c.Name, c.Max, c.Description)
			}
			fmt.Fprintf(tw, "TOTAL\t%g\t\n", validation.RubricTotal(w))
			fmt.Fprintf(tw, "\nTest timeout: %s per run\n", cfg.Scoring.TestTimeout)
			return tw.Flush()
		},
	}
}
