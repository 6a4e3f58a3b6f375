// Package series turns provider-neutral samples into the normalized chart
// series, its summary statistics, and the reduced forms that get stored.
package series

import (
	"math"
	"sort"
	"time"

	"github.com/claude/activitychart/internal/models"
)

// BuildOptions controls gap-filling.
type BuildOptions struct {
	// MaxSpeedMS is the highest plausible speed derived from distance deltas.
	// Faster derived speeds are replaced by the activity average. Zero disables the check.
	MaxSpeedMS float64
}

// PaceFromSpeed converts m/s to min/km. Returns nil for non-positive speeds.
func PaceFromSpeed(speed float64) *float64 {
	if speed <= 0 || math.IsNaN(speed) || math.IsInf(speed, 0) {
		return nil
	}
	return models.Float(1000 / (speed * 60))
}

// SpeedFromPace converts min/km to m/s. Returns nil for non-positive paces.
func SpeedFromPace(pace float64) *float64 {
	if pace <= 0 || math.IsNaN(pace) || math.IsInf(pace, 0) {
		return nil
	}
	return models.Float(1000 / (pace * 60))
}

// Build converts samples into a time-ordered series and fills missing
// speed and pace values in one forward pass.
func Build(samples []models.Sample, opts BuildOptions) []models.SeriesPoint {
	if len(samples) == 0 {
		return nil
	}

	origin := firstTimestamp(samples)
	points := make([]models.SeriesPoint, len(samples))
	for i, s := range samples {
		p := models.SeriesPoint{
			TimeS:     resolveTime(s, i, origin),
			DistanceM: finite(s.DistanceM),
			SpeedMS:   finite(s.SpeedMS),
			PaceMinKm: finite(s.PaceMinKm),
		}
		if hr := finite(s.HeartRate); hr != nil && *hr > 0 {
			p.HR = models.Int(int(math.Round(*hr)))
		}
		points[i] = p
	}

	sort.SliceStable(points, func(a, b int) bool {
		return points[a].TimeS < points[b].TimeS
	})

	fillGaps(points, averageSpeed(points), opts)
	return points
}

// resolveTime prefers an explicit elapsed offset, then the offset from the
// earliest absolute timestamp, then the row index.
func resolveTime(s models.Sample, index int, origin *time.Time) float64 {
	if e := finite(s.Elapsed); e != nil && *e >= 0 {
		return *e
	}
	if s.Timestamp != nil && origin != nil {
		return s.Timestamp.Sub(*origin).Seconds()
	}
	return float64(index)
}

func firstTimestamp(samples []models.Sample) *time.Time {
	var first *time.Time
	for _, s := range samples {
		if s.Timestamp == nil {
			continue
		}
		if first == nil || s.Timestamp.Before(*first) {
			first = s.Timestamp
		}
	}
	return first
}

// averageSpeed is the whole-activity speed used to replace implausible
// derived values. Nil when distance or duration is unknown.
func averageSpeed(points []models.SeriesPoint) *float64 {
	var maxDist, maxTime float64
	for _, p := range points {
		if p.DistanceM != nil && *p.DistanceM > maxDist {
			maxDist = *p.DistanceM
		}
		if p.TimeS > maxTime {
			maxTime = p.TimeS
		}
	}
	if maxDist <= 0 || maxTime <= 0 {
		return nil
	}
	return models.Float(maxDist / maxTime)
}

func fillGaps(points []models.SeriesPoint, avg *float64, opts BuildOptions) {
	for i := range points {
		cur := &points[i]

		if i > 0 && !positive(cur.SpeedMS) && !positive(cur.PaceMinKm) {
			prev := points[i-1]
			dt := cur.TimeS - prev.TimeS
			if cur.DistanceM != nil && prev.DistanceM != nil && dt > 0 {
				// Distance going backwards is a recording glitch; leave speed unset.
				if dd := *cur.DistanceM - *prev.DistanceM; dd >= 0 {
					sp := dd / dt
					if opts.MaxSpeedMS > 0 && sp > opts.MaxSpeedMS && avg != nil {
						sp = *avg
					}
					cur.SpeedMS = models.Float(sp)
				}
			}
		}

		if !positive(cur.SpeedMS) && positive(cur.PaceMinKm) {
			cur.SpeedMS = SpeedFromPace(*cur.PaceMinKm)
		}
		if positive(cur.SpeedMS) {
			cur.PaceMinKm = PaceFromSpeed(*cur.SpeedMS)
		} else if cur.PaceMinKm != nil && *cur.PaceMinKm <= 0 {
			cur.PaceMinKm = nil
		}
	}
}

func positive(v *float64) bool {
	return v != nil && *v > 0
}

func finite(v *float64) *float64 {
	if v == nil || math.IsNaN(*v) || math.IsInf(*v, 0) {
		return nil
	}
	return v
}
