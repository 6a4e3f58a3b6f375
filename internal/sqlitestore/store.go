// Package sqlitestore is a single-file chart store for local runs and tests.
// It keeps the provider tables and chart tables in one SQLite database.
package sqlitestore

import (
	"context"
	"database/sql"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/claude/activitychart/internal/chart"
	"github.com/claude/activitychart/internal/models"
	"github.com/claude/activitychart/internal/schema"
	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

//go:embed schema.sql
var schemaSQL string

// timeLayout is fixed-width so text ordering matches time ordering.
const timeLayout = "2006-01-02T15:04:05.000000Z"

// Store implements the chart store on SQLite.
type Store struct {
	db *sql.DB
}

var (
	_ chart.Store  = (*Store)(nil)
	_ chart.Reader = (*Store)(nil)
)

// Open opens (or creates) the database at path and applies the schema.
func Open(path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating db dir %s: %w", dir, err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening sqlite db: %w", err)
	}
	// One writer keeps the read-then-write chart upsert serialized.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schemaSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}
	return &Store{db: db}, nil
}

// DB exposes the handle for seeding provider tables.
func (s *Store) DB() *sql.DB {
	return s.db
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) FindUnifiedOwner(ctx context.Context, source models.Source, activityID string) (string, error) {
	return s.queryOwner(ctx, schema.UnifiedOwnerQuery(schema.SQLite), string(source), activityID)
}

func (s *Store) FindDetailOwner(ctx context.Context, source models.Source, activityID string) (string, error) {
	t, err := schema.For(source)
	if err != nil {
		return "", err
	}
	if !t.HasDetail() {
		return "", nil
	}
	id, ok := t.IDArg(activityID)
	if !ok {
		return "", nil
	}
	return s.queryOwner(ctx, t.DetailOwnerQuery(schema.SQLite), id)
}

func (s *Store) FindSummaryOwner(ctx context.Context, source models.Source, activityID string) (string, error) {
	t, err := schema.For(source)
	if err != nil {
		return "", err
	}
	id, ok := t.IDArg(activityID)
	if !ok {
		return "", nil
	}
	return s.queryOwner(ctx, t.SummaryOwnerQuery(schema.SQLite), id)
}

func (s *Store) queryOwner(ctx context.Context, query string, args ...any) (string, error) {
	var owner string
	err := s.db.QueryRowContext(ctx, query, args...).Scan(&owner)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("querying owner: %w", err)
	}
	return owner, nil
}

func (s *Store) FetchSamplePage(ctx context.Context, key models.ActivityKey, offset, limit int) ([]models.RawSample, error) {
	t, err := schema.For(key.Source)
	if err != nil {
		return nil, err
	}
	if !t.HasDetail() {
		return nil, nil
	}
	id, ok := t.IDArg(key.ActivityID)
	if !ok {
		return nil, nil
	}

	rows, err := s.db.QueryContext(ctx, t.PageQuery(schema.SQLite), key.UserID, id, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("querying %s: %w", t.Detail, err)
	}
	defer rows.Close()

	var out []models.RawSample
	for rows.Next() {
		var r schema.RawRow
		if err := rows.Scan(r.Targets()...); err != nil {
			return nil, fmt.Errorf("scanning %s: %w", t.Detail, err)
		}
		out = append(out, r.Sample())
	}
	return out, rows.Err()
}

func (s *Store) GetHealthKitWorkout(ctx context.Context, key models.ActivityKey) (*models.HealthKitWorkout, error) {
	var (
		duration, distance sql.NullFloat64
		start, raw         sql.NullString
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT duration_seconds, distance_meters, start_time, raw_data
		 FROM healthkit_activities WHERE user_id = ? AND healthkit_uuid = ?`,
		key.UserID, key.ActivityID).Scan(&duration, &distance, &start, &raw)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("querying healthkit workout: %w", err)
	}

	w := &models.HealthKitWorkout{DurationSeconds: duration.Float64, DistanceMeters: distance.Float64}
	if start.Valid && start.String != "" {
		ts, err := models.ParseFlexTime(start.String)
		if err != nil {
			return nil, fmt.Errorf("parsing start_time: %w", err)
		}
		w.StartTime = &ts
	}
	if raw.Valid && raw.String != "" {
		if err := json.Unmarshal([]byte(raw.String), &w.Raw); err != nil {
			return nil, fmt.Errorf("decoding healthkit raw_data: %w", err)
		}
	}
	return w, nil
}

func (s *Store) ListActivities(ctx context.Context, userID string, source models.Source) ([]models.ActivityRef, error) {
	rows, err := s.db.QueryContext(ctx, schema.ListActivitiesQuery(schema.SQLite), userID, string(source), string(source))
	if err != nil {
		return nil, fmt.Errorf("listing activities: %w", err)
	}
	defer rows.Close()

	var out []models.ActivityRef
	for rows.Next() {
		var src, id string
		if err := rows.Scan(&src, &id); err != nil {
			return nil, fmt.Errorf("scanning activity: %w", err)
		}
		out = append(out, models.ActivityRef{Source: models.Source(src), ActivityID: id})
	}
	return out, rows.Err()
}

// SaveChart updates the existing chart row for the key or inserts a new one.
func (s *Store) SaveChart(ctx context.Context, rec *models.ChartRecord) error {
	series, err := json.Marshal(rec.Series)
	if err != nil {
		return fmt.Errorf("encoding series: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning chart tx: %w", err)
	}
	defer tx.Rollback()

	now := time.Now().UTC()
	var existing, created string
	err = tx.QueryRowContext(ctx,
		`SELECT id, created_at FROM activity_chart_data
		 WHERE user_id = ? AND activity_source = ? AND activity_id = ?
		 ORDER BY updated_at DESC LIMIT 1`,
		rec.UserID, string(rec.Source), rec.ActivityID).Scan(&existing, &created)

	switch {
	case errors.Is(err, sql.ErrNoRows):
		if rec.ID == uuid.Nil {
			rec.ID = uuid.New()
		}
		_, err = tx.ExecContext(ctx,
			`INSERT INTO activity_chart_data (id, user_id, activity_source, activity_id,
			 series_data, data_points_count, duration_seconds, total_distance_meters,
			 avg_speed_ms, avg_pace_min_km, avg_heart_rate, max_heart_rate, created_at, updated_at)
			 VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?,?)`,
			rec.ID.String(), rec.UserID, string(rec.Source), rec.ActivityID,
			string(series), rec.DataPointsCount, rec.DurationSeconds, rec.TotalDistanceMeters,
			rec.AvgSpeedMS, rec.AvgPaceMinKm, rec.AvgHeartRate, rec.MaxHeartRate,
			now.Format(timeLayout), now.Format(timeLayout))
		if err != nil {
			return fmt.Errorf("inserting chart: %w", err)
		}
		rec.CreatedAt = now
	case err != nil:
		return fmt.Errorf("looking up chart: %w", err)
	default:
		id, err := uuid.Parse(existing)
		if err != nil {
			return fmt.Errorf("parsing chart id: %w", err)
		}
		rec.ID = id
		_, err = tx.ExecContext(ctx,
			`UPDATE activity_chart_data SET
			 series_data = ?, data_points_count = ?, duration_seconds = ?,
			 total_distance_meters = ?, avg_speed_ms = ?, avg_pace_min_km = ?,
			 avg_heart_rate = ?, max_heart_rate = ?, updated_at = ?
			 WHERE id = ?`,
			string(series), rec.DataPointsCount, rec.DurationSeconds,
			rec.TotalDistanceMeters, rec.AvgSpeedMS, rec.AvgPaceMinKm,
			rec.AvgHeartRate, rec.MaxHeartRate, now.Format(timeLayout), existing)
		if err != nil {
			return fmt.Errorf("updating chart: %w", err)
		}
		rec.CreatedAt, _ = time.Parse(timeLayout, created)
	}
	rec.UpdatedAt = now

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing chart: %w", err)
	}
	return nil
}

func (s *Store) GetChart(ctx context.Context, key models.ActivityKey) (*models.ChartRecord, error) {
	rec := &models.ChartRecord{ActivityKey: key}
	var (
		id, series, created, updated string
		avgHR, maxHR                 sql.NullInt64
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT id, series_data, data_points_count, duration_seconds, total_distance_meters,
		 avg_speed_ms, avg_pace_min_km, avg_heart_rate, max_heart_rate, created_at, updated_at
		 FROM activity_chart_data
		 WHERE user_id = ? AND activity_source = ? AND activity_id = ?
		 ORDER BY updated_at DESC LIMIT 1`,
		key.UserID, string(key.Source), key.ActivityID,
	).Scan(&id, &series, &rec.DataPointsCount, &rec.DurationSeconds, &rec.TotalDistanceMeters,
		&rec.AvgSpeedMS, &rec.AvgPaceMinKm, &avgHR, &maxHR, &created, &updated)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("querying chart: %w", err)
	}

	if rec.ID, err = uuid.Parse(id); err != nil {
		return nil, fmt.Errorf("parsing chart id: %w", err)
	}
	if err := json.Unmarshal([]byte(series), &rec.Series); err != nil {
		return nil, fmt.Errorf("decoding series: %w", err)
	}
	rec.AvgHeartRate = nullInt(avgHR)
	rec.MaxHeartRate = nullInt(maxHR)
	rec.CreatedAt, _ = time.Parse(timeLayout, created)
	rec.UpdatedAt, _ = time.Parse(timeLayout, updated)
	return rec, nil
}

// UpsertCoordinates writes the sampled track, replacing any previous one.
func (s *Store) UpsertCoordinates(ctx context.Context, rec *models.CoordinateRecord) error {
	coords, err := json.Marshal(rec.Coordinates)
	if err != nil {
		return fmt.Errorf("encoding coordinates: %w", err)
	}
	bbox, err := json.Marshal(rec.BoundingBox)
	if err != nil {
		return fmt.Errorf("encoding bounding box: %w", err)
	}

	now := time.Now().UTC()
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO activity_coordinates (user_id, activity_source, activity_id,
		 coordinates, total_points, sampled_points, starting_latitude, starting_longitude,
		 bounding_box, created_at, updated_at)
		 VALUES (?,?,?,?,?,?,?,?,?,?,?)
		 ON CONFLICT (user_id, activity_source, activity_id) DO UPDATE SET
		   coordinates = excluded.coordinates,
		   total_points = excluded.total_points,
		   sampled_points = excluded.sampled_points,
		   starting_latitude = excluded.starting_latitude,
		   starting_longitude = excluded.starting_longitude,
		   bounding_box = excluded.bounding_box,
		   updated_at = excluded.updated_at`,
		rec.UserID, string(rec.Source), rec.ActivityID,
		string(coords), rec.TotalPoints, rec.SampledPoints,
		rec.StartingLatitude, rec.StartingLongitude, string(bbox),
		now.Format(timeLayout), now.Format(timeLayout))
	if err != nil {
		return fmt.Errorf("upserting coordinates: %w", err)
	}
	rec.UpdatedAt = now
	return nil
}

func (s *Store) GetCoordinates(ctx context.Context, key models.ActivityKey) (*models.CoordinateRecord, error) {
	rec := &models.CoordinateRecord{ActivityKey: key}
	var (
		coords, updated string
		bbox            sql.NullString
		lat, lon        sql.NullFloat64
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT coordinates, total_points, sampled_points, starting_latitude,
		 starting_longitude, bounding_box, updated_at
		 FROM activity_coordinates
		 WHERE user_id = ? AND activity_source = ? AND activity_id = ?`,
		key.UserID, string(key.Source), key.ActivityID,
	).Scan(&coords, &rec.TotalPoints, &rec.SampledPoints, &lat, &lon, &bbox, &updated)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("querying coordinates: %w", err)
	}

	if err := json.Unmarshal([]byte(coords), &rec.Coordinates); err != nil {
		return nil, fmt.Errorf("decoding coordinates: %w", err)
	}
	if bbox.Valid && bbox.String != "" {
		if err := json.Unmarshal([]byte(bbox.String), &rec.BoundingBox); err != nil {
			return nil, fmt.Errorf("decoding bounding box: %w", err)
		}
	}
	rec.StartingLatitude, rec.StartingLongitude = lat.Float64, lon.Float64
	rec.UpdatedAt, _ = time.Parse(timeLayout, updated)
	return rec, nil
}

func nullInt(v sql.NullInt64) *int {
	if !v.Valid {
		return nil
	}
	n := int(v.Int64)
	return &n
}
