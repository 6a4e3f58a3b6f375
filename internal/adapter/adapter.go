// Package adapter maps each provider's raw rows onto the provider-neutral
// sample type consumed by the series builder.
package adapter

import (
	"fmt"
	"time"

	"github.com/claude/activitychart/internal/config"
	"github.com/claude/activitychart/internal/models"
	"github.com/claude/activitychart/internal/series"
)

// Input is everything fetched for one activity. Detail-row sources fill
// Rows; the phone-health source fills Workout.
type Input struct {
	Rows    []models.RawSample
	Workout *models.HealthKitWorkout
}

// Result is the adapted activity.
type Result struct {
	Samples []models.Sample
	Track   []models.LatLon
	Method  string // timeline technique, reported for logging
}

// Adapter converts one provider's raw shape into samples.
type Adapter interface {
	Adapt(in Input) Result
}

// Options are the tunables shared by the adapters.
type Options struct {
	SpeedBand        config.SpeedBand
	GPSSpeedBand     config.SpeedBand
	HRSnapWindow     time.Duration
	DensifyMinPoints int
}

// OptionsFromConfig builds adapter options from chart settings.
func OptionsFromConfig(c config.ChartConfig) Options {
	return Options{
		SpeedBand:        c.SpeedBand,
		GPSSpeedBand:     c.GPSSpeedBand,
		HRSnapWindow:     time.Duration(c.HRSnapWindowSeconds * float64(time.Second)),
		DensifyMinPoints: c.DensifyMinPoints,
	}
}

// For returns the adapter for a source.
func For(source models.Source, opts Options) (Adapter, error) {
	switch source {
	case models.SourceGarmin, models.SourceStrava, models.SourcePolar:
		return telemetry{}, nil
	case models.SourceStravaGPX, models.SourceZeppGPX:
		return gpx{}, nil
	case models.SourceHealthKit:
		return healthKit{opts: opts}, nil
	case models.SourceBioPeak:
		return snapshot{}, nil
	default:
		return nil, fmt.Errorf("no adapter for source %q", source)
	}
}

// telemetry passes device rows through. Elapsed time comes from the first
// populated duration column.
type telemetry struct{}

func (telemetry) Adapt(in Input) Result {
	res := Result{Method: "telemetry"}
	for _, r := range in.Rows {
		s := mapRow(r)
		s.Elapsed = firstOf(r.ElapsedSeconds, r.TimerSeconds, r.MovingSeconds)
		res.Samples = append(res.Samples, s)
	}
	res.Track = track(in.Rows)
	return res
}

// snapshot maps in-app performance snapshots, which already carry elapsed
// time, cumulative distance, speed, pace and heart rate.
type snapshot struct{}

func (snapshot) Adapt(in Input) Result {
	res := Result{Method: "snapshot"}
	for _, r := range in.Rows {
		s := mapRow(r)
		s.Elapsed = r.ElapsedSeconds
		res.Samples = append(res.Samples, s)
	}
	res.Track = track(in.Rows)
	return res
}

// gpx converts wall-clock rows into offsets from the first timestamp. When
// the file carried no distances, distance is accumulated from the track.
type gpx struct{}

func (gpx) Adapt(in Input) Result {
	res := Result{Method: "gpx"}
	var origin *time.Time
	for _, r := range in.Rows {
		if r.Timestamp != nil && (origin == nil || r.Timestamp.Before(*origin)) {
			origin = r.Timestamp
		}
	}

	haveDistance := false
	for _, r := range in.Rows {
		if r.DistanceM != nil {
			haveDistance = true
			break
		}
	}

	var cum float64
	var prev *models.LatLon
	for _, r := range in.Rows {
		s := mapRow(r)
		s.Elapsed = r.ElapsedSeconds
		if s.Elapsed == nil && r.Timestamp != nil && origin != nil {
			s.Elapsed = models.Float(r.Timestamp.Sub(*origin).Seconds())
		}
		if !haveDistance {
			if p, ok := position(r); ok {
				if prev != nil {
					cum += series.Haversine(*prev, p)
				}
				prev = &p
				s.DistanceM = models.Float(cum)
				res.Method = "gpx_track_distance"
			}
		}
		res.Samples = append(res.Samples, s)
	}
	res.Track = track(in.Rows)
	return res
}

func mapRow(r models.RawSample) models.Sample {
	s := models.Sample{
		Timestamp: r.Timestamp,
		DistanceM: r.DistanceM,
		HeartRate: r.HeartRate,
		SpeedMS:   r.SpeedMS,
		PaceMinKm: r.PaceMinKm,
	}
	if p, ok := position(r); ok {
		s.Lat, s.Lon = models.Float(p.Lat()), models.Float(p.Lon())
	}
	return s
}

func position(r models.RawSample) (models.LatLon, bool) {
	if r.Latitude == nil || r.Longitude == nil {
		return models.LatLon{}, false
	}
	if !series.ValidCoordinate(*r.Latitude, *r.Longitude) {
		return models.LatLon{}, false
	}
	return models.LatLon{*r.Latitude, *r.Longitude}, true
}

func track(rows []models.RawSample) []models.LatLon {
	var out []models.LatLon
	for _, r := range rows {
		if p, ok := position(r); ok {
			out = append(out, p)
		}
	}
	return out
}

func firstOf(vals ...*float64) *float64 {
	for _, v := range vals {
		if v != nil {
			return v
		}
	}
	return nil
}
