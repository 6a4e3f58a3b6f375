package series

import (
	"math"

	"github.com/claude/activitychart/internal/models"
)

// Mode names the reduction applied to a series.
type Mode string

const (
	ModeNone   Mode = "none"
	ModeStride Mode = "stride"
	ModeLTTB   Mode = "lttb"
)

// Limits are the point-count thresholds for Reduce.
type Limits struct {
	MaxPoints            int // stride target when full precision is off
	FullPrecisionCeiling int // largest full-precision series kept as is
	LTTBTarget           int // LTTB output size above the ceiling
}

// Reduce picks the reduction for a series. Without full precision, series
// longer than MaxPoints are stride-decimated. With full precision, only
// series longer than FullPrecisionCeiling are reduced, using LTTB.
func Reduce(points []models.SeriesPoint, fullPrecision bool, lim Limits) ([]models.SeriesPoint, Mode) {
	switch {
	case !fullPrecision && len(points) > lim.MaxPoints:
		return Stride(points, lim.MaxPoints), ModeStride
	case fullPrecision && len(points) > lim.FullPrecisionCeiling:
		return LTTB(points, lim.LTTBTarget), ModeLTTB
	default:
		return points, ModeNone
	}
}

// Stride keeps every Nth element, N = ceil(len/limit), and always keeps the
// last element.
func Stride[T any](in []T, limit int) []T {
	if limit <= 0 || len(in) <= limit {
		return in
	}
	step := int(math.Ceil(float64(len(in)) / float64(limit)))
	out := make([]T, 0, limit+1)
	last := -1
	for i := 0; i < len(in); i += step {
		out = append(out, in[i])
		last = i
	}
	if last != len(in)-1 {
		out = append(out, in[len(in)-1])
	}
	return out
}

// chartValue is the y-axis value LTTB preserves: pace, else heart rate.
func chartValue(p models.SeriesPoint) float64 {
	if p.PaceMinKm != nil && *p.PaceMinKm > 0 {
		return *p.PaceMinKm
	}
	if p.HR != nil {
		return float64(*p.HR)
	}
	return 0
}

// LTTB reduces points to target using Largest-Triangle-Three-Buckets with
// the point index as x. The first and last points are always kept.
func LTTB(points []models.SeriesPoint, target int) []models.SeriesPoint {
	n := len(points)
	if target <= 2 || n <= target {
		return points
	}

	out := make([]models.SeriesPoint, 0, target)
	out = append(out, points[0])
	bucket := float64(n-2) / float64(target-2)
	a := 0

	for i := 0; i < target-2; i++ {
		avgStart := int(math.Floor(float64(i+1)*bucket)) + 1
		avgEnd := min(int(math.Floor(float64(i+2)*bucket))+1, n)
		var avgX, avgY float64
		if avgStart >= avgEnd {
			avgX, avgY = float64(n-1), chartValue(points[n-1])
		} else {
			for j := avgStart; j < avgEnd; j++ {
				avgX += float64(j)
				avgY += chartValue(points[j])
			}
			cnt := float64(avgEnd - avgStart)
			avgX /= cnt
			avgY /= cnt
		}

		from := int(math.Floor(float64(i)*bucket)) + 1
		to := min(int(math.Floor(float64(i+1)*bucket))+1, n-1)
		ax, ay := float64(a), chartValue(points[a])

		best, bestArea := from, -1.0
		for j := from; j < to; j++ {
			area := math.Abs((ax-avgX)*(chartValue(points[j])-ay) - (ax-float64(j))*(avgY-ay))
			if area > bestArea {
				best, bestArea = j, area
			}
		}
		out = append(out, points[best])
		a = best
	}

	return append(out, points[n-1])
}
