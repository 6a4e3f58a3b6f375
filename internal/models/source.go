package models

import "fmt"

// Source identifies the provider an activity was synced from.
type Source string

const (
	SourceGarmin    Source = "garmin"
	SourceStrava    Source = "strava"
	SourcePolar     Source = "polar"
	SourceStravaGPX Source = "strava_gpx"
	SourceZeppGPX   Source = "zepp_gpx"
	SourceHealthKit Source = "healthkit"
	SourceBioPeak   Source = "biopeak_app"
)

// AllSources lists every supported source in a stable order.
var AllSources = []Source{
	SourceGarmin, SourceStrava, SourcePolar, SourceStravaGPX,
	SourceZeppGPX, SourceHealthKit, SourceBioPeak,
}

// Valid reports whether s is a known source.
func (s Source) Valid() bool {
	for _, known := range AllSources {
		if s == known {
			return true
		}
	}
	return false
}

// ParseSource converts a request value into a Source.
func ParseSource(v string) (Source, error) {
	s := Source(v)
	if !s.Valid() {
		return "", fmt.Errorf("unknown activity source %q", v)
	}
	return s, nil
}

// ActivityKey is the (user, source, activity) triple that owns chart and
// coordinate records.
type ActivityKey struct {
	UserID     string `json:"user_id"`
	Source     Source `json:"activity_source"`
	ActivityID string `json:"activity_id"`
}

func (k ActivityKey) String() string {
	return fmt.Sprintf("%s/%s/%s", k.UserID, k.Source, k.ActivityID)
}
