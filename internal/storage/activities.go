package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/claude/activitychart/internal/models"
	"github.com/claude/activitychart/internal/schema"
	"github.com/jackc/pgx/v5"
)

// FindUnifiedOwner looks the activity up in all_activities.
func (db *DB) FindUnifiedOwner(ctx context.Context, source models.Source, activityID string) (string, error) {
	return db.queryOwner(ctx, schema.UnifiedOwnerQuery(schema.Postgres), string(source), activityID)
}

// FindDetailOwner looks the activity up in the source's detail table.
func (db *DB) FindDetailOwner(ctx context.Context, source models.Source, activityID string) (string, error) {
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
	return db.queryOwner(ctx, t.DetailOwnerQuery(schema.Postgres), id)
}

// FindSummaryOwner looks the activity up in the source's summary table.
func (db *DB) FindSummaryOwner(ctx context.Context, source models.Source, activityID string) (string, error) {
	t, err := schema.For(source)
	if err != nil {
		return "", err
	}
	id, ok := t.IDArg(activityID)
	if !ok {
		return "", nil
	}
	return db.queryOwner(ctx, t.SummaryOwnerQuery(schema.Postgres), id)
}

func (db *DB) queryOwner(ctx context.Context, query string, args ...any) (string, error) {
	var owner string
	err := db.Pool.QueryRow(ctx, query, args...).Scan(&owner)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("querying owner: %w", err)
	}
	return owner, nil
}

// FetchSamplePage returns one page of detail rows in time order.
func (db *DB) FetchSamplePage(ctx context.Context, key models.ActivityKey, offset, limit int) ([]models.RawSample, error) {
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

	rows, err := db.Pool.Query(ctx, t.PageQuery(schema.Postgres), key.UserID, id, limit, offset)
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

// GetHealthKitWorkout loads a phone-health workout with its raw streams.
// Returns nil when the workout does not exist.
func (db *DB) GetHealthKitWorkout(ctx context.Context, key models.ActivityKey) (*models.HealthKitWorkout, error) {
	var (
		duration, distance *float64
		start              *time.Time
		raw                []byte
	)
	err := db.Pool.QueryRow(ctx,
		`SELECT duration_seconds, distance_meters, start_time, raw_data
		 FROM healthkit_activities
		 WHERE user_id = $1 AND healthkit_uuid = $2`,
		key.UserID, key.ActivityID).Scan(&duration, &distance, &start, &raw)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("querying healthkit workout: %w", err)
	}
	return decodeHealthKit(duration, distance, start, raw)
}

func decodeHealthKit(duration, distance *float64, start *time.Time, raw []byte) (*models.HealthKitWorkout, error) {
	w := &models.HealthKitWorkout{StartTime: start}
	if duration != nil {
		w.DurationSeconds = *duration
	}
	if distance != nil {
		w.DistanceMeters = *distance
	}
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &w.Raw); err != nil {
			return nil, fmt.Errorf("decoding healthkit raw_data: %w", err)
		}
	}
	return w, nil
}

// ListActivities lists a user's activities from all_activities. An empty
// source lists every source.
func (db *DB) ListActivities(ctx context.Context, userID string, source models.Source) ([]models.ActivityRef, error) {
	rows, err := db.Pool.Query(ctx, schema.ListActivitiesQuery(schema.Postgres), userID, string(source), string(source))
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
