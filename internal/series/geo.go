package series

import (
	"math"

	"github.com/claude/activitychart/internal/models"
)

const earthRadiusMeters = 6371000.0

// Haversine returns the great-circle distance between two points in meters.
func Haversine(a, b models.LatLon) float64 {
	lat1 := a.Lat() * math.Pi / 180
	lat2 := b.Lat() * math.Pi / 180
	dLat := (b.Lat() - a.Lat()) * math.Pi / 180
	dLon := (b.Lon() - a.Lon()) * math.Pi / 180

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1)*math.Cos(lat2)*math.Sin(dLon/2)*math.Sin(dLon/2)
	return earthRadiusMeters * 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))
}

// ValidCoordinate reports whether lat/lon form a usable position.
func ValidCoordinate(lat, lon float64) bool {
	if math.IsNaN(lat) || math.IsNaN(lon) || math.IsInf(lat, 0) || math.IsInf(lon, 0) {
		return false
	}
	return lat >= -90 && lat <= 90 && lon >= -180 && lon <= 180
}

// BuildCoordinates downsamples a track and derives its start point and
// bounding box from the sampled set. Returns nil for an empty track.
func BuildCoordinates(key models.ActivityKey, track []models.LatLon, maxPoints int) *models.CoordinateRecord {
	if len(track) == 0 {
		return nil
	}
	sampled := Stride(track, maxPoints)

	lo, hi := sampled[0], sampled[0]
	for _, p := range sampled[1:] {
		lo = models.LatLon{math.Min(lo[0], p[0]), math.Min(lo[1], p[1])}
		hi = models.LatLon{math.Max(hi[0], p[0]), math.Max(hi[1], p[1])}
	}

	return &models.CoordinateRecord{
		ActivityKey:       key,
		Coordinates:       sampled,
		TotalPoints:       len(track),
		SampledPoints:     len(sampled),
		StartingLatitude:  sampled[0].Lat(),
		StartingLongitude: sampled[0].Lon(),
		BoundingBox:       models.BoundingBox{lo, hi},
	}
}
