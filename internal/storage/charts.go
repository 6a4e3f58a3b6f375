package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/claude/activitychart/internal/models"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// SaveChart replaces the chart stored for rec's key, or inserts one.
// activity_chart_data has no unique key on the activity, so the lookup and
// write run in one transaction. Two concurrent saves for the same activity can
// still both insert; readers take the most recently updated row.
func (db *DB) SaveChart(ctx context.Context, rec *models.ChartRecord) error {
	series, err := json.Marshal(rec.Series)
	if err != nil {
		return fmt.Errorf("encoding series: %w", err)
	}

	tx, err := db.Pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("beginning chart tx: %w", err)
	}
	defer tx.Rollback(ctx)

	var existing uuid.UUID
	err = tx.QueryRow(ctx,
		`SELECT id FROM activity_chart_data
		 WHERE user_id = $1 AND activity_source = $2 AND activity_id = $3
		 ORDER BY updated_at DESC LIMIT 1`,
		rec.UserID, string(rec.Source), rec.ActivityID).Scan(&existing)

	switch {
	case errors.Is(err, pgx.ErrNoRows):
		if rec.ID == uuid.Nil {
			rec.ID = uuid.New()
		}
		err = tx.QueryRow(ctx,
			`INSERT INTO activity_chart_data (id, user_id, activity_source, activity_id,
			 series_data, data_points_count, duration_seconds, total_distance_meters,
			 avg_speed_ms, avg_pace_min_km, avg_heart_rate, max_heart_rate)
			 VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12)
			 RETURNING created_at, updated_at`,
			rec.ID, rec.UserID, string(rec.Source), rec.ActivityID,
			series, rec.DataPointsCount, rec.DurationSeconds, rec.TotalDistanceMeters,
			rec.AvgSpeedMS, rec.AvgPaceMinKm, rec.AvgHeartRate, rec.MaxHeartRate,
		).Scan(&rec.CreatedAt, &rec.UpdatedAt)
		if err != nil {
			return fmt.Errorf("inserting chart: %w", err)
		}
	case err != nil:
		return fmt.Errorf("looking up chart: %w", err)
	default:
		rec.ID = existing
		err = tx.QueryRow(ctx,
			`UPDATE activity_chart_data SET
			 series_data = $2, data_points_count = $3, duration_seconds = $4,
			 total_distance_meters = $5, avg_speed_ms = $6, avg_pace_min_km = $7,
			 avg_heart_rate = $8, max_heart_rate = $9, updated_at = NOW()
			 WHERE id = $1
			 RETURNING created_at, updated_at`,
			rec.ID, series, rec.DataPointsCount, rec.DurationSeconds,
			rec.TotalDistanceMeters, rec.AvgSpeedMS, rec.AvgPaceMinKm,
			rec.AvgHeartRate, rec.MaxHeartRate,
		).Scan(&rec.CreatedAt, &rec.UpdatedAt)
		if err != nil {
			return fmt.Errorf("updating chart: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("committing chart: %w", err)
	}
	return nil
}

// GetChart returns the latest chart for key, or nil when none exists.
func (db *DB) GetChart(ctx context.Context, key models.ActivityKey) (*models.ChartRecord, error) {
	rec := &models.ChartRecord{ActivityKey: key}
	var series []byte
	err := db.Pool.QueryRow(ctx,
		`SELECT id, series_data, data_points_count, duration_seconds, total_distance_meters,
		 avg_speed_ms, avg_pace_min_km, avg_heart_rate, max_heart_rate, created_at, updated_at
		 FROM activity_chart_data
		 WHERE user_id = $1 AND activity_source = $2 AND activity_id = $3
		 ORDER BY updated_at DESC LIMIT 1`,
		key.UserID, string(key.Source), key.ActivityID,
	).Scan(&rec.ID, &series, &rec.DataPointsCount, &rec.DurationSeconds, &rec.TotalDistanceMeters,
		&rec.AvgSpeedMS, &rec.AvgPaceMinKm, &rec.AvgHeartRate, &rec.MaxHeartRate,
		&rec.CreatedAt, &rec.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("querying chart: %w", err)
	}
	if err := json.Unmarshal(series, &rec.Series); err != nil {
		return nil, fmt.Errorf("decoding series: %w", err)
	}
	return rec, nil
}
