package series

import (
	"math"

	"github.com/claude/activitychart/internal/models"
)

// Summarize computes the summary statistics for a built series. A field is
// left nil when the series has nothing to support it.
func Summarize(points []models.SeriesPoint) models.Stats {
	var st models.Stats

	var duration float64
	for _, p := range points {
		duration = math.Max(duration, p.TimeS)
	}
	if duration > 0 {
		st.DurationSeconds = models.Float(duration)
	}

	st.TotalDistanceMeters = totalDistance(points)

	var speedSum float64
	var speedN int
	for _, p := range points {
		if p.SpeedMS != nil && *p.SpeedMS >= 0 {
			speedSum += *p.SpeedMS
			speedN++
		}
	}
	if speedN > 0 && speedSum > 0 {
		st.AvgSpeedMS = models.Float(speedSum / float64(speedN))
	} else if duration > 0 && st.TotalDistanceMeters != nil {
		st.AvgSpeedMS = models.Float(*st.TotalDistanceMeters / duration)
	}

	if st.AvgSpeedMS != nil {
		st.AvgPaceMinKm = PaceFromSpeed(*st.AvgSpeedMS)
	} else if duration > 0 && st.TotalDistanceMeters != nil {
		st.AvgPaceMinKm = models.Float((duration / 60) / (*st.TotalDistanceMeters / 1000))
	}

	var hrSum, hrN, hrMax int
	for _, p := range points {
		if p.HR == nil || *p.HR <= 0 {
			continue
		}
		hrSum += *p.HR
		hrN++
		hrMax = max(hrMax, *p.HR)
	}
	if hrN > 0 {
		st.AvgHeartRate = models.Int(int(math.Round(float64(hrSum) / float64(hrN))))
		st.MaxHeartRate = models.Int(hrMax)
	}

	return st
}

// totalDistance is the largest cumulative distance seen, or the sum of
// per-point speeds taken as one-second intervals when no distance exists.
func totalDistance(points []models.SeriesPoint) *float64 {
	var maxDist float64
	var haveDist bool
	for _, p := range points {
		if p.DistanceM != nil {
			haveDist = true
			maxDist = math.Max(maxDist, *p.DistanceM)
		}
	}
	if haveDist {
		if maxDist > 0 {
			return models.Float(maxDist)
		}
		return nil
	}

	var sum float64
	for _, p := range points {
		if p.SpeedMS != nil && *p.SpeedMS > 0 {
			sum += *p.SpeedMS
		}
	}
	if sum > 0 {
		return models.Float(sum)
	}
	return nil
}
