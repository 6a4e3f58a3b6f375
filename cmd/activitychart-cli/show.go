// ABOUTME: Show command printing a stored chart and GPS summary.
// ABOUTME: Also holds the duration, distance and pace formatters.
package main

import (
	"encoding/json"
	"fmt"
	"io"
	"math"
	"time"

	"github.com/claude/activitychart/internal/models"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var (
	showUser   string
	showPoints bool
	showJSON   bool
)

var showCmd = &cobra.Command{
	Use:   "show <source> <activity_id>",
	Short: "Print a stored chart",
	Long: `Print the stored chart and GPS summary for an activity.

OUTPUT:

  Summary stats by default. --points adds one tab-separated line per point
  (time_s, distance_m, hr, speed_ms, pace_min_km). --json prints the raw
  record instead.`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		source, err := models.ParseSource(args[0])
		if err != nil {
			return err
		}
		if showUser == "" {
			return fmt.Errorf("--user is required")
		}

		e, err := openEngine(cmd.Context())
		if err != nil {
			return err
		}
		defer e.close()

		key := models.ActivityKey{UserID: showUser, Source: source, ActivityID: args[1]}
		rec, err := e.reader.GetChart(cmd.Context(), key)
		if err != nil {
			return err
		}
		if rec == nil {
			return fmt.Errorf("no chart stored for %s", key)
		}
		coords, err := e.reader.GetCoordinates(cmd.Context(), key)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		if showJSON {
			enc := json.NewEncoder(out)
			enc.SetIndent("", "  ")
			return enc.Encode(rec)
		}
		printSummary(out, rec, coords)
		if showPoints {
			printPoints(out, rec.Series)
		}
		return nil
	},
}

func init() {
	showCmd.Flags().StringVarP(&showUser, "user", "u", "", "owner")
	showCmd.Flags().BoolVar(&showPoints, "points", false, "print every point")
	showCmd.Flags().BoolVar(&showJSON, "json", false, "print the raw record as JSON")
}

func printSummary(w io.Writer, rec *models.ChartRecord, coords *models.CoordinateRecord) {
	bold := color.New(color.Bold)
	faint := color.New(color.Faint)

	bold.Fprintf(w, "%s\n", rec.ActivityKey)
	fmt.Fprintf(w, "  points     %d %s\n", rec.DataPointsCount, faint.Sprintf("(updated %s)", rec.UpdatedAt.Format(time.RFC3339)))
	fmt.Fprintf(w, "  duration   %s\n", formatDuration(rec.DurationSeconds))
	fmt.Fprintf(w, "  distance   %s\n", formatDistance(rec.TotalDistanceMeters))
	fmt.Fprintf(w, "  avg speed  %s\n", formatFloat(rec.AvgSpeedMS, "m/s"))
	fmt.Fprintf(w, "  avg pace   %s\n", formatPace(rec.AvgPaceMinKm))
	fmt.Fprintf(w, "  heart rate %s avg, %s max\n", formatInt(rec.AvgHeartRate), formatInt(rec.MaxHeartRate))
	if coords != nil {
		fmt.Fprintf(w, "  gps        %d of %d points from %.5f,%.5f\n",
			coords.SampledPoints, coords.TotalPoints, coords.StartingLatitude, coords.StartingLongitude)
	}
}

func printPoints(w io.Writer, points []models.SeriesPoint) {
	for _, p := range points {
		fmt.Fprintf(w, "%.1f\t%s\t%s\t%s\t%s\n", p.TimeS,
			formatFloat(p.DistanceM, ""), formatInt(p.HR), formatFloat(p.SpeedMS, ""), formatFloat(p.PaceMinKm, ""))
	}
}

func formatDuration(sec *float64) string {
	if sec == nil {
		return "-"
	}
	return time.Duration(*sec * float64(time.Second)).Round(time.Second).String()
}

func formatDistance(m *float64) string {
	if m == nil {
		return "-"
	}
	return fmt.Sprintf("%.2f km", *m/1000)
}

// formatPace renders minutes per km as m:ss.
func formatPace(p *float64) string {
	if p == nil || *p <= 0 {
		return "-"
	}
	mins := math.Floor(*p)
	secs := math.Round((*p - mins) * 60)
	if secs == 60 {
		mins, secs = mins+1, 0
	}
	return fmt.Sprintf("%d:%02d /km", int(mins), int(secs))
}

func formatFloat(v *float64, unit string) string {
	if v == nil {
		return "-"
	}
	if unit == "" {
		return fmt.Sprintf("%.2f", *v)
	}
	return fmt.Sprintf("%.2f %s", *v, unit)
}

func formatInt(v *int) string {
	if v == nil {
		return "-"
	}
	return fmt.Sprintf("%d", *v)
}
