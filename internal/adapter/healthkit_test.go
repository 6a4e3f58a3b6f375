package adapter

import (
	"math"
	"testing"
	"time"

	"github.com/claude/activitychart/internal/models"
	"github.com/claude/activitychart/internal/series"
)

var hkStart = time.Date(2024, 9, 14, 8, 0, 0, 0, time.UTC)

func qty(offsetSec float64, v float64) models.HealthKitQuantity {
	return models.HealthKitQuantity{
		Timestamp: models.FlexTime{Time: hkStart.Add(time.Duration(offsetSec * float64(time.Second)))},
		Value:     v,
	}
}

func loc(offsetSec float64, lat, lon float64) models.HealthKitLocation {
	return models.HealthKitLocation{
		Latitude:  lat,
		Longitude: lon,
		Timestamp: models.FlexTime{Time: hkStart.Add(time.Duration(offsetSec * float64(time.Second)))},
	}
}

func workout(duration, distance float64, raw models.HealthKitRaw) *models.HealthKitWorkout {
	start := hkStart
	return &models.HealthKitWorkout{
		DurationSeconds: duration,
		DistanceMeters:  distance,
		StartTime:       &start,
		Raw:             raw,
	}
}

// TestHealthKitInterpolation verifies that with only energy and heart-rate
// streams, distance is spread linearly over the duration and every point
// gets the average speed.
func TestHealthKitInterpolation(t *testing.T) {
	var raw models.HealthKitRaw
	for s := 0.0; s <= 1500; s += 60 {
		raw.Series.HeartRate = append(raw.Series.HeartRate, qty(s, 150))
	}
	for s := 30.0; s < 1500; s += 60 {
		raw.Series.Energy = append(raw.Series.Energy, qty(s, 12))
	}

	res := healthKit{opts: testOptions()}.Adapt(Input{Workout: workout(1500, 5000, raw)})
	if res.Method != "linear_interpolation" {
		t.Errorf("method = %q, want linear_interpolation", res.Method)
	}

	points := series.Build(res.Samples, series.BuildOptions{MaxSpeedMS: 10})
	if len(points) != 51 {
		t.Fatalf("points = %d, want 51", len(points))
	}
	for i, p := range points {
		if p.DistanceM == nil || math.Abs(*p.DistanceM-5000*p.TimeS/1500) > 1e-6 {
			t.Errorf("point %d distance = %v, want %v", i, p.DistanceM, 5000*p.TimeS/1500)
		}
		if p.SpeedMS == nil || math.Abs(*p.SpeedMS-5000.0/1500) > 1e-9 {
			t.Errorf("point %d speed = %v, want %v", i, p.SpeedMS, 5000.0/1500)
		}
	}
}

// TestHealthKitAverageSpeedCopied verifies each sample gets its own copy of
// the average speed so editing one point never moves the others.
func TestHealthKitAverageSpeedCopied(t *testing.T) {
	raw := models.HealthKitRaw{Series: models.HealthKitSeries{
		HeartRate: []models.HealthKitQuantity{qty(0, 140), qty(60, 150), qty(120, 155)},
	}}

	res := healthKit{opts: testOptions()}.Adapt(Input{Workout: workout(120, 400, raw)})
	if len(res.Samples) != 3 {
		t.Fatalf("samples = %d, want 3", len(res.Samples))
	}
	if res.Samples[0].SpeedMS == nil || res.Samples[0].SpeedMS == res.Samples[1].SpeedMS {
		t.Fatalf("samples share the average speed pointer")
	}
	*res.Samples[0].SpeedMS = 0
	if *res.Samples[1].SpeedMS == 0 {
		t.Errorf("editing sample 0 changed sample 1")
	}
}

// TestHealthKitGPSRescale verifies a GPS track summing to 4800 m is scaled
// onto the reported 5000 m total.
func TestHealthKitGPSRescale(t *testing.T) {
	step := 100.0 / 6371000 * 180 / math.Pi // 100 m of latitude
	var raw models.HealthKitRaw
	for i := 0; i <= 48; i++ {
		raw.Locations = append(raw.Locations, loc(float64(i)*25, 47+float64(i)*step, 8))
	}

	res := healthKit{opts: testOptions()}.Adapt(Input{Workout: workout(1200, 5000, raw)})

	if res.Method != "gps_haversine" {
		t.Errorf("method = %q, want gps_haversine", res.Method)
	}
	if len(res.Samples) != 49 {
		t.Fatalf("samples = %d, want 49", len(res.Samples))
	}
	if len(res.Track) != 49 {
		t.Errorf("track = %d, want 49", len(res.Track))
	}
	for i, s := range res.Samples {
		if want := float64(i) * 100 * 5000 / 4800; math.Abs(*s.DistanceM-want) > 0.01 {
			t.Errorf("sample %d distance = %v, want %v", i, *s.DistanceM, want)
		}
	}
	if got, want := res.Samples[1].SpeedMS, 100*5000.0/4800/25; got == nil || math.Abs(*got-want) > 0.001 {
		t.Errorf("speed[1] = %v, want %v", got, want)
	}
}

// TestHealthKitDistanceKeepsRoute verifies a workout with both a distance
// stream and a GPS route builds its timeline from distance but still
// returns the route for the coordinate summary.
func TestHealthKitDistanceKeepsRoute(t *testing.T) {
	var raw models.HealthKitRaw
	for i := 0; i < 30; i++ {
		raw.Series.Distance = append(raw.Series.Distance, qty(float64(i)*10, float64(i)*30))
		raw.Locations = append(raw.Locations, loc(float64(i)*10, 47+float64(i)*0.0003, 8))
	}

	res := healthKit{opts: testOptions()}.Adapt(Input{Workout: workout(290, 870, raw)})

	if res.Method != "distance_samples_cumulative" {
		t.Errorf("method = %q, want distance_samples_cumulative", res.Method)
	}
	if len(res.Samples) != 30 {
		t.Errorf("samples = %d, want 30", len(res.Samples))
	}
	if len(res.Track) != 30 {
		t.Fatalf("track = %d, want 30", len(res.Track))
	}
	if res.Track[0] != (models.LatLon{47, 8}) {
		t.Errorf("track[0] = %v, want [47 8]", res.Track[0])
	}
}

// TestHealthKitSingleLocationRoute verifies a lone GPS fix is kept as the
// route even though the timeline comes from interpolation.
func TestHealthKitSingleLocationRoute(t *testing.T) {
	raw := models.HealthKitRaw{
		Locations: []models.HealthKitLocation{loc(5, 47.1, 8.2)},
		Series: models.HealthKitSeries{
			HeartRate: []models.HealthKitQuantity{qty(0, 140), qty(60, 150)},
		},
	}

	res := healthKit{opts: testOptions()}.Adapt(Input{Workout: workout(60, 200, raw)})

	if res.Method != "linear_interpolation" {
		t.Errorf("method = %q, want linear_interpolation", res.Method)
	}
	if len(res.Track) != 1 || res.Track[0] != (models.LatLon{47.1, 8.2}) {
		t.Errorf("track = %v, want [[47.1 8.2]]", res.Track)
	}
}

// TestHealthKitDistanceIncremental verifies per-sample deltas are folded
// into a running total.
func TestHealthKitDistanceIncremental(t *testing.T) {
	raw := models.HealthKitRaw{Series: models.HealthKitSeries{Distance: []models.HealthKitQuantity{
		qty(0, 0), qty(10, 30), qty(20, 25), qty(30, 35),
	}}}

	res := healthKit{opts: testOptions()}.Adapt(Input{Workout: workout(30, 90, raw)})

	if res.Method != "distance_samples_incremental" {
		t.Errorf("method = %q, want distance_samples_incremental", res.Method)
	}
	want := []float64{0, 30, 55, 90}
	if len(res.Samples) != len(want) {
		t.Fatalf("samples = %d, want %d", len(res.Samples), len(want))
	}
	for i, s := range res.Samples {
		if *s.DistanceM != want[i] {
			t.Errorf("distance[%d] = %v, want %v", i, *s.DistanceM, want[i])
		}
	}
	if got := res.Samples[2].SpeedMS; got == nil || math.Abs(*got-2.5) > 1e-9 {
		t.Errorf("speed[2] = %v, want 2.5", got)
	}
}

// TestHealthKitDistanceSpeedBand verifies a derived speed outside the
// plausible band is replaced by the activity average.
func TestHealthKitDistanceSpeedBand(t *testing.T) {
	raw := models.HealthKitRaw{Series: models.HealthKitSeries{Distance: []models.HealthKitQuantity{
		qty(0, 0), qty(10, 30), qty(20, 230), qty(30, 260), qty(40, 260),
	}}}

	res := healthKit{opts: testOptions()}.Adapt(Input{Workout: workout(40, 260, raw)})

	if res.Method != "distance_samples_cumulative" {
		t.Errorf("method = %q, want distance_samples_cumulative", res.Method)
	}
	for _, tt := range []struct {
		i    int
		want float64
		why  string
	}{
		{1, 3.0, "in band"},
		{2, 6.5, "20 m/s replaced by average"},
		{4, 6.5, "standstill below band replaced by average"},
	} {
		if got := res.Samples[tt.i].SpeedMS; got == nil || math.Abs(*got-tt.want) > 1e-9 {
			t.Errorf("speed[%d] = %v, want %v (%s)", tt.i, got, tt.want, tt.why)
		}
	}
}

// TestHealthKitSpeedBandWithoutReportedTotal verifies that when the workout
// reports no distance, out-of-band speeds fall back to the average of the
// reconstructed distance instead of being left for the builder to derive.
func TestHealthKitSpeedBandWithoutReportedTotal(t *testing.T) {
	raw := models.HealthKitRaw{Series: models.HealthKitSeries{Distance: []models.HealthKitQuantity{
		qty(0, 0), qty(10, 30), qty(20, 60), qty(30, 61), qty(40, 91),
	}}}

	res := healthKit{opts: testOptions()}.Adapt(Input{Workout: workout(40, 0, raw)})

	wantAvg := 91.0 / 40
	if got := res.Samples[3].SpeedMS; got == nil || math.Abs(*got-wantAvg) > 1e-9 {
		t.Fatalf("adapter speed[3] = %v, want %v", got, wantAvg)
	}

	points := series.Build(res.Samples, series.BuildOptions{MaxSpeedMS: 10})
	if got := points[3].SpeedMS; got == nil || math.Abs(*got-wantAvg) > 1e-9 {
		t.Errorf("built speed[3] = %v, want %v", got, wantAvg)
	}
}

// TestHealthKitHRSnapWindow verifies heart rate is matched only within the
// snap window and left nil beyond it.
func TestHealthKitHRSnapWindow(t *testing.T) {
	raw := models.HealthKitRaw{Series: models.HealthKitSeries{
		Distance:  []models.HealthKitQuantity{qty(0, 0), qty(100, 300), qty(200, 600)},
		HeartRate: []models.HealthKitQuantity{qty(8, 131), qty(190, 160)},
	}}
	opts := testOptions()
	opts.DensifyMinPoints = 0

	res := healthKit{opts: opts}.Adapt(Input{Workout: workout(200, 600, raw)})

	if len(res.Samples) != 3 {
		t.Fatalf("samples = %d, want 3", len(res.Samples))
	}
	if hr := res.Samples[0].HeartRate; hr == nil || *hr != 131 {
		t.Errorf("hr[0] = %v, want 131", hr)
	}
	if hr := res.Samples[1].HeartRate; hr != nil {
		t.Errorf("hr[1] = %v, want nil", *hr)
	}
	if hr := res.Samples[2].HeartRate; hr == nil || *hr != 160 {
		t.Errorf("hr[2] = %v, want 160", hr)
	}
}

// TestHealthKitDensify verifies a sparse timeline is filled in from a denser
// heart-rate stream without duplicating rows that already exist.
func TestHealthKitDensify(t *testing.T) {
	raw := models.HealthKitRaw{Series: models.HealthKitSeries{
		Distance: []models.HealthKitQuantity{qty(0, 0), qty(300, 900), qty(600, 1800)},
	}}
	for s := 0.0; s <= 600; s += 20 {
		raw.Series.HeartRate = append(raw.Series.HeartRate, qty(s+2, 140))
	}

	res := healthKit{opts: testOptions()}.Adapt(Input{Workout: workout(600, 1800, raw)})

	// 31 heart-rate samples, three of which sit within 5 s of a distance row.
	if len(res.Samples) != 3+28 {
		t.Fatalf("samples = %d, want 31", len(res.Samples))
	}
	for i := 1; i < len(res.Samples); i++ {
		if *res.Samples[i-1].Elapsed > *res.Samples[i].Elapsed {
			t.Errorf("elapsed[%d] = %v after %v", i, *res.Samples[i].Elapsed, *res.Samples[i-1].Elapsed)
		}
	}
	for i, s := range res.Samples {
		if s.HeartRate == nil {
			t.Errorf("sample %d has no heart rate", i)
		}
	}
}

// TestHealthKitNoWorkout verifies a missing workout adapts to nothing.
func TestHealthKitNoWorkout(t *testing.T) {
	res := healthKit{opts: testOptions()}.Adapt(Input{})
	if len(res.Samples) != 0 {
		t.Errorf("samples = %d, want 0", len(res.Samples))
	}
}
