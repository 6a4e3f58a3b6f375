// ABOUTME: Recompute command for a single activity chart.
package main

import (
	"fmt"

	"github.com/claude/activitychart/internal/chart"
	"github.com/claude/activitychart/internal/models"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var (
	recomputeUser          string
	recomputeFullPrecision bool
)

var recomputeCmd = &cobra.Command{
	Use:   "recompute <source> <activity_id>",
	Short: "Compute and store the chart for one activity",
	Long: `Compute the chart for one activity and store it, replacing any previous chart.

Sources: garmin, strava, polar, strava_gpx, zepp_gpx, healthkit, biopeak_app

Without --user the owner is looked up in all_activities, then the source's
sample table, then its summary table.`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		source, err := models.ParseSource(args[0])
		if err != nil {
			return err
		}

		e, err := openEngine(cmd.Context())
		if err != nil {
			return err
		}
		defer e.close()

		res, err := e.calc.Calculate(cmd.Context(), chart.Request{
			UserID:        recomputeUser,
			ActivityID:    args[1],
			Source:        source,
			InternalCall:  true,
			FullPrecision: recomputeFullPrecision,
		})
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		if !res.Success {
			fmt.Fprintln(out, color.YellowString("%s/%s: %s", source, args[1], res.Message))
			return nil
		}
		fmt.Fprintf(out, "%s %s/%s for %s: %d points\n",
			color.GreenString("stored"), source, args[1], res.UserID, res.Points)
		return nil
	},
}

func init() {
	recomputeCmd.Flags().StringVarP(&recomputeUser, "user", "u", "", "owner (looked up when omitted)")
	recomputeCmd.Flags().BoolVar(&recomputeFullPrecision, "full-precision", false, "keep up to 10000 points")
}
