package models

import (
	"time"

	"github.com/google/uuid"
)

// ChartRecord is the persisted chart for one activity.
type ChartRecord struct {
	ID uuid.UUID `json:"id"`
	ActivityKey
	Series          []SeriesPoint `json:"series_data"`
	DataPointsCount int           `json:"data_points_count"`
	Stats
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// BoundingBox is [[minLat, minLon], [maxLat, maxLon]].
type BoundingBox [2]LatLon

// CoordinateRecord is the persisted, downsampled GPS track for one activity.
type CoordinateRecord struct {
	ActivityKey
	Coordinates       []LatLon    `json:"coordinates"`
	TotalPoints       int         `json:"total_points"`
	SampledPoints     int         `json:"sampled_points"`
	StartingLatitude  float64     `json:"starting_latitude"`
	StartingLongitude float64     `json:"starting_longitude"`
	BoundingBox       BoundingBox `json:"bounding_box"`
	UpdatedAt         time.Time   `json:"updated_at"`
}

// ActivitySummary is the per-activity totals row from a provider summary table.
type ActivitySummary struct {
	DurationSeconds *float64
	DistanceMeters  *float64
	StartTime       *time.Time
}

// ActivityRef names one activity listed in the unified activities table.
type ActivityRef struct {
	Source     Source
	ActivityID string
}
