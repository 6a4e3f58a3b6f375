// Package schema describes where each provider keeps its activity rows and
// builds the queries both stores run against them.
package schema

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/claude/activitychart/internal/models"
	"github.com/google/uuid"
)

// Dialect captures the SQL differences between Postgres and SQLite.
type Dialect struct {
	Placeholder func(n int) string
	// Epoch converts a timestamp column into fractional Unix seconds.
	Epoch func(col string) string
}

var Postgres = Dialect{
	Placeholder: func(n int) string { return "$" + strconv.Itoa(n) },
	Epoch:       func(col string) string { return "EXTRACT(EPOCH FROM " + col + ")" },
}

var SQLite = Dialect{
	Placeholder: func(int) string { return "?" },
	Epoch:       func(col string) string { return "((julianday(" + col + ") - 2440587.5) * 86400.0)" },
}

// TimeKind says how a detail table stores its absolute sample time.
type TimeKind int

const (
	TimeNone TimeKind = iota
	TimeUnixSeconds
	TimeTimestamp
)

// SourceTables maps one source onto its tables. Empty column names mean the
// provider does not record that value.
type SourceTables struct {
	Detail    string
	DetailID  string
	OwnerJoin string // join that supplies o.user_id when the detail table lacks one
	NumericID bool
	UUIDID    bool
	Order     string

	Time      string
	TimeKind  TimeKind
	Elapsed   string
	Timer     string
	Moving    string
	Distance  string
	HeartRate string
	Speed     string
	Pace      string
	Lat       string
	Lon       string

	Summary   string
	SummaryID string
}

var telemetryColumns = SourceTables{
	Time:      "sample_timestamp",
	TimeKind:  TimeUnixSeconds,
	Distance:  "total_distance_in_meters",
	HeartRate: "heart_rate",
	Speed:     "speed_meters_per_second",
	Lat:       "latitude_in_degree",
	Lon:       "longitude_in_degree",
	Order:     "sample_timestamp",
}

func with(base SourceTables, f func(*SourceTables)) SourceTables {
	f(&base)
	return base
}

var tables = map[models.Source]SourceTables{
	models.SourceGarmin: with(telemetryColumns, func(t *SourceTables) {
		t.Detail, t.DetailID = "garmin_activity_details", "activity_id"
		t.Timer, t.Moving = "timer_duration_in_seconds", "moving_duration_in_seconds"
		t.Summary, t.SummaryID = "garmin_activities", "activity_id"
	}),
	models.SourcePolar: with(telemetryColumns, func(t *SourceTables) {
		t.Detail, t.DetailID = "polar_activity_details", "activity_id"
		t.Elapsed = "duration_in_seconds"
		t.Summary, t.SummaryID = "polar_activities", "activity_id"
	}),
	models.SourceStrava: {
		Detail: "strava_activity_details", DetailID: "strava_activity_id", NumericID: true,
		Order:    "time_seconds",
		Elapsed:  "time_seconds",
		Distance: "distance", HeartRate: "heartrate", Speed: "velocity_smooth",
		Lat: "latitude", Lon: "longitude",
		Summary: "strava_activities", SummaryID: "strava_activity_id",
	},
	models.SourceStravaGPX: with(telemetryColumns, func(t *SourceTables) {
		t.Detail, t.DetailID = "strava_gpx_activity_details", "activity_id"
		t.TimeKind = TimeTimestamp
		t.Summary, t.SummaryID = "strava_gpx_activities", "activity_id"
	}),
	models.SourceZeppGPX: with(telemetryColumns, func(t *SourceTables) {
		t.Detail, t.DetailID = "zepp_gpx_activity_details", "activity_id"
		t.TimeKind = TimeTimestamp
		t.Elapsed = "duration_in_seconds"
		t.Summary, t.SummaryID = "zepp_gpx_activities", "activity_id"
	}),
	models.SourceBioPeak: {
		Detail: "performance_snapshots", DetailID: "session_id", UUIDID: true,
		OwnerJoin: "JOIN training_sessions o ON o.id = d.session_id",
		Order:     "snapshot_at_duration_seconds",
		Elapsed:   "snapshot_at_duration_seconds",
		Distance:  "snapshot_at_distance_meters", HeartRate: "current_heart_rate",
		Speed: "current_speed_ms", Pace: "current_pace_min_km",
		Lat: "latitude", Lon: "longitude",
		Summary: "training_sessions", SummaryID: "id",
	},
	models.SourceHealthKit: {
		Summary: "healthkit_activities", SummaryID: "healthkit_uuid",
	},
}

// For returns the table layout of a source.
func For(source models.Source) (SourceTables, error) {
	t, ok := tables[source]
	if !ok {
		return SourceTables{}, fmt.Errorf("no tables for source %q", source)
	}
	return t, nil
}

// HasDetail reports whether the source keeps per-sample rows.
func (t SourceTables) HasDetail() bool {
	return t.Detail != ""
}

// IDArg converts an activity id into the query argument for the source.
// ok is false when the id cannot match any row.
func (t SourceTables) IDArg(activityID string) (arg any, ok bool) {
	switch {
	case t.NumericID:
		n, err := strconv.ParseInt(activityID, 10, 64)
		if err != nil {
			return nil, false
		}
		return n, true
	case t.UUIDID:
		if _, err := uuid.Parse(activityID); err != nil {
			return nil, false
		}
		return activityID, true
	default:
		return activityID, true
	}
}

// NumColumns is the number of columns PageQuery selects.
const NumColumns = 10

// PageQuery selects one page of detail rows as fractional-second epoch time
// followed by elapsed, timer, moving, distance, heart rate, speed, pace,
// latitude and longitude. Arguments: user id, activity id, limit, offset.
func (t SourceTables) PageQuery(d Dialect) string {
	num := func(col string) string {
		if col == "" {
			return "NULL"
		}
		return "CAST(d." + col + " AS DOUBLE PRECISION)"
	}
	var ts string
	switch t.TimeKind {
	case TimeUnixSeconds:
		ts = num(t.Time)
	case TimeTimestamp:
		ts = d.Epoch("d." + t.Time)
	default:
		ts = "NULL"
	}

	cols := []string{ts, num(t.Elapsed), num(t.Timer), num(t.Moving), num(t.Distance),
		num(t.HeartRate), num(t.Speed), num(t.Pace), num(t.Lat), num(t.Lon)}

	return fmt.Sprintf("SELECT %s FROM %s d %s WHERE %s = %s AND d.%s = %s ORDER BY d.%s ASC LIMIT %s OFFSET %s",
		strings.Join(cols, ", "), t.Detail, t.OwnerJoin, t.ownerColumn(), d.Placeholder(1),
		t.DetailID, d.Placeholder(2), t.Order, d.Placeholder(3), d.Placeholder(4))
}

// DetailOwnerQuery finds the owner through the detail table. Argument: activity id.
func (t SourceTables) DetailOwnerQuery(d Dialect) string {
	return fmt.Sprintf("SELECT %s FROM %s d %s WHERE d.%s = %s LIMIT 1",
		t.ownerColumn(), t.Detail, t.OwnerJoin, t.DetailID, d.Placeholder(1))
}

// SummaryOwnerQuery finds the owner through the summary table. Argument: activity id.
func (t SourceTables) SummaryOwnerQuery(d Dialect) string {
	return fmt.Sprintf("SELECT user_id FROM %s WHERE %s = %s LIMIT 1",
		t.Summary, t.SummaryID, d.Placeholder(1))
}

func (t SourceTables) ownerColumn() string {
	if t.OwnerJoin != "" {
		return "o.user_id"
	}
	return "d.user_id"
}

// UnifiedOwnerQuery finds the owner in all_activities. Arguments: source, activity id.
func UnifiedOwnerQuery(d Dialect) string {
	return fmt.Sprintf("SELECT user_id FROM all_activities WHERE activity_source = %s AND activity_id = %s LIMIT 1",
		d.Placeholder(1), d.Placeholder(2))
}

// ListActivitiesQuery lists a user's activities, optionally for one source.
// Arguments: user id, source ("" for all).
func ListActivitiesQuery(d Dialect) string {
	return fmt.Sprintf(`SELECT activity_source, activity_id FROM all_activities
		WHERE user_id = %s AND (%s = '' OR activity_source = %s)
		ORDER BY activity_source, activity_id`,
		d.Placeholder(1), d.Placeholder(2), d.Placeholder(3))
}
