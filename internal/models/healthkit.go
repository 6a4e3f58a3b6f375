package models

import "time"

// HealthKitWorkout is a phone-health workout with its raw sub-streams, as
// stored in healthkit_activities.raw_data.
type HealthKitWorkout struct {
	DurationSeconds float64
	DistanceMeters  float64
	StartTime       *time.Time
	Raw             HealthKitRaw
}

// HealthKitRaw is the JSON document captured at sync time.
type HealthKitRaw struct {
	Locations []HealthKitLocation `json:"locations"`
	Series    HealthKitSeries     `json:"series"`
}

// HealthKitSeries holds the quantity streams. Each stream has its own cadence.
type HealthKitSeries struct {
	HeartRate []HealthKitQuantity `json:"heartRate"`
	Energy    []HealthKitQuantity `json:"energy"`
	Distance  []HealthKitQuantity `json:"distance"`
}

type HealthKitQuantity struct {
	Timestamp FlexTime `json:"timestamp"`
	Value     float64  `json:"value"`
}

type HealthKitLocation struct {
	Latitude  float64  `json:"latitude"`
	Longitude float64  `json:"longitude"`
	Timestamp FlexTime `json:"timestamp"`
}
