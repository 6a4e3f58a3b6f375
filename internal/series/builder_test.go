package series

import (
	"math"
	"slices"
	"testing"
	"time"

	"github.com/claude/activitychart/internal/models"
)

func elapsed(t, dist float64) models.Sample {
	return models.Sample{Elapsed: models.Float(t), DistanceM: models.Float(dist)}
}

func checkDuality(t *testing.T, points []models.SeriesPoint) {
	t.Helper()
	for i, p := range points {
		if p.SpeedMS == nil || p.PaceMinKm == nil {
			continue
		}
		if want := 1000 / (*p.SpeedMS * 60); math.Abs(*p.PaceMinKm-want) > 1e-9 {
			t.Errorf("point %d pace = %v, want %v", i, *p.PaceMinKm, want)
		}
	}
}

// TestBuildMonotonicTime verifies out-of-order rows come back sorted so
// chart consumers can rely on non-decreasing time.
func TestBuildMonotonicTime(t *testing.T) {
	in := []models.Sample{elapsed(10, 30), elapsed(0, 0), elapsed(5, 15), elapsed(5, 15), elapsed(20, 60)}

	out := Build(in, BuildOptions{})

	if len(out) != 5 {
		t.Fatalf("len = %d, want 5", len(out))
	}
	for i := 1; i < len(out); i++ {
		if out[i-1].TimeS > out[i].TimeS {
			t.Errorf("time[%d] = %v before %v", i, out[i].TimeS, out[i-1].TimeS)
		}
	}
}

// TestBuildTimeFromTimestamps verifies absolute timestamps become offsets
// from the earliest row when no elapsed field is present.
func TestBuildTimeFromTimestamps(t *testing.T) {
	base := time.Date(2024, 5, 1, 7, 0, 0, 0, time.UTC)
	ts := func(d time.Duration) *time.Time { v := base.Add(d); return &v }

	out := Build([]models.Sample{
		{Timestamp: ts(0)},
		{Timestamp: ts(90 * time.Second)},
		{Timestamp: ts(3 * time.Minute)},
	}, BuildOptions{})

	if got, want := times(out), []float64{0, 90, 180}; !slices.Equal(got, want) {
		t.Errorf("times = %v, want %v", got, want)
	}
}

// TestBuildIndexFallback verifies rows with no time information fall back
// to their ordinal position instead of failing.
func TestBuildIndexFallback(t *testing.T) {
	out := Build([]models.Sample{{HeartRate: models.Float(120)}, {HeartRate: models.Float(125)}, {}}, BuildOptions{})
	if got, want := times(out), []float64{0, 1, 2}; !slices.Equal(got, want) {
		t.Errorf("times = %v, want %v", got, want)
	}
	if out[0].HR == nil || *out[0].HR != 120 {
		t.Errorf("hr[0] = %v, want 120", out[0].HR)
	}
}

// TestBuildClampsImplausibleSpeed verifies a 50 m/s jump derived from a
// 50 m delta over one second is replaced by the activity average speed.
func TestBuildClampsImplausibleSpeed(t *testing.T) {
	in := []models.Sample{elapsed(0, 0), elapsed(1, 50)}
	for s := 2; s <= 100; s++ {
		in = append(in, elapsed(float64(s), 50+3*float64(s-1)))
	}

	out := Build(in, BuildOptions{MaxSpeedMS: 10})

	avg := (50 + 3*99.0) / 100
	if out[1].SpeedMS == nil || math.Abs(*out[1].SpeedMS-avg) > 1e-9 {
		t.Errorf("speed[1] = %v, want average %v", out[1].SpeedMS, avg)
	}
	if out[2].SpeedMS == nil || math.Abs(*out[2].SpeedMS-3) > 1e-9 {
		t.Errorf("speed[2] = %v, want 3", out[2].SpeedMS)
	}
	checkDuality(t, out)
}

// TestBuildNegativeDistanceDelta verifies a backwards distance step leaves
// speed unset instead of producing a negative speed.
func TestBuildNegativeDistanceDelta(t *testing.T) {
	out := Build([]models.Sample{elapsed(0, 100), elapsed(10, 90), elapsed(20, 130)}, BuildOptions{})

	if out[1].SpeedMS != nil || out[1].PaceMinKm != nil {
		t.Errorf("point 1 speed/pace = %v/%v, want nil", out[1].SpeedMS, out[1].PaceMinKm)
	}
	if out[2].SpeedMS == nil || math.Abs(*out[2].SpeedMS-4) > 1e-9 {
		t.Errorf("speed[2] = %v, want 4", out[2].SpeedMS)
	}
}

// TestBuildPaceSpeedDuality verifies speed-only, pace-only and
// distance-only rows all end up with consistent speed and pace.
func TestBuildPaceSpeedDuality(t *testing.T) {
	out := Build([]models.Sample{
		{Elapsed: models.Float(0), SpeedMS: models.Float(2.5)},
		{Elapsed: models.Float(10), PaceMinKm: models.Float(5)},
		{Elapsed: models.Float(20), DistanceM: models.Float(0)},
		{Elapsed: models.Float(30), DistanceM: models.Float(35)},
		{Elapsed: models.Float(40), SpeedMS: models.Float(3), PaceMinKm: models.Float(9)},
	}, BuildOptions{MaxSpeedMS: 10})

	if out[0].PaceMinKm == nil {
		t.Error("pace[0] not derived from speed")
	}
	if out[1].SpeedMS == nil || math.Abs(*out[1].SpeedMS-1000/300.0) > 1e-9 {
		t.Errorf("speed[1] = %v, want %v", out[1].SpeedMS, 1000/300.0)
	}
	if out[3].SpeedMS == nil || math.Abs(*out[3].SpeedMS-3.5) > 1e-9 {
		t.Errorf("speed[3] = %v, want 3.5", out[3].SpeedMS)
	}
	checkDuality(t, out)
}

func times(points []models.SeriesPoint) []float64 {
	out := make([]float64, len(points))
	for i, p := range points {
		out[i] = p.TimeS
	}
	return out
}

// TestPaceFromSpeed verifies the conversion and its nil cases.
func TestPaceFromSpeed(t *testing.T) {
	if p := PaceFromSpeed(1000.0 / 300); p == nil || math.Abs(*p-5) > 1e-9 {
		t.Errorf("PaceFromSpeed(3.33) = %v, want 5", p)
	}
	if p := PaceFromSpeed(0); p != nil {
		t.Errorf("PaceFromSpeed(0) = %v, want nil", *p)
	}
	if p := PaceFromSpeed(math.NaN()); p != nil {
		t.Errorf("PaceFromSpeed(NaN) = %v, want nil", *p)
	}
	if s := SpeedFromPace(-1); s != nil {
		t.Errorf("SpeedFromPace(-1) = %v, want nil", *s)
	}
}
