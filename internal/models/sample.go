package models

import "time"

// RawSample is one detail row as stored by a provider sync. Each provider
// populates a different subset of fields; absent columns stay nil.
type RawSample struct {
	Timestamp      *time.Time
	ElapsedSeconds *float64 // time_seconds, duration_in_seconds or snapshot offset
	TimerSeconds   *float64
	MovingSeconds  *float64
	DistanceM      *float64
	HeartRate      *float64
	SpeedMS        *float64
	PaceMinKm      *float64
	Latitude       *float64
	Longitude      *float64
}

// Sample is the provider-neutral row produced by a source adapter.
type Sample struct {
	Elapsed   *float64
	Timestamp *time.Time
	DistanceM *float64
	HeartRate *float64
	SpeedMS   *float64
	PaceMinKm *float64
	Lat       *float64
	Lon       *float64
}

// LatLon is a coordinate pair, encoded as [lat, lon].
type LatLon [2]float64

func (p LatLon) Lat() float64 { return p[0] }
func (p LatLon) Lon() float64 { return p[1] }

// SeriesPoint is one sample of the normalized chart series.
type SeriesPoint struct {
	TimeS     float64  `json:"time_s"`
	DistanceM *float64 `json:"distance_m"`
	HR        *int     `json:"hr"`
	SpeedMS   *float64 `json:"speed_ms"`
	PaceMinKm *float64 `json:"pace_min_km"`
}

// Stats are the summary values stored alongside a series. Nil means no
// supporting data.
type Stats struct {
	DurationSeconds     *float64 `json:"duration_seconds"`
	TotalDistanceMeters *float64 `json:"total_distance_meters"`
	AvgSpeedMS          *float64 `json:"avg_speed_ms"`
	AvgPaceMinKm        *float64 `json:"avg_pace_min_km"`
	AvgHeartRate        *int     `json:"avg_heart_rate"`
	MaxHeartRate        *int     `json:"max_heart_rate"`
}

// Float returns a pointer to v.
func Float(v float64) *float64 { return &v }

// Int returns a pointer to v.
func Int(v int) *int { return &v }
