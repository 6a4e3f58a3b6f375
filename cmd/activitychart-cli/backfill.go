// ABOUTME: Backfill command that recomputes every chart of a user.
package main

import (
	"fmt"

	"github.com/claude/activitychart/internal/models"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var (
	backfillSource        string
	backfillFullPrecision bool
)

var backfillCmd = &cobra.Command{
	Use:   "backfill <user_id>",
	Short: "Recompute charts for every activity of a user",
	Long: `Recompute charts for every activity listed for a user in all_activities.

Activities are processed one at a time. A failing activity is reported and
the run continues.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var source models.Source
		if backfillSource != "" {
			s, err := models.ParseSource(backfillSource)
			if err != nil {
				return err
			}
			source = s
		}

		e, err := openEngine(cmd.Context())
		if err != nil {
			return err
		}
		defer e.close()

		stats, err := e.calc.Backfill(cmd.Context(), args[0], source, backfillFullPrecision)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "%d activities: %s, %s, %s\n",
			stats.Activities,
			color.GreenString("%d computed", stats.Computed),
			color.YellowString("%d empty", stats.Empty),
			color.RedString("%d failed", stats.Failed))
		for _, f := range stats.Failures {
			fmt.Fprintln(out, color.New(color.Faint).Sprint("  "+f))
		}
		return nil
	},
}

func init() {
	backfillCmd.Flags().StringVarP(&backfillSource, "source", "s", "", "limit to one source")
	backfillCmd.Flags().BoolVar(&backfillFullPrecision, "full-precision", false, "keep up to 10000 points per chart")
}
