package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/claude/activitychart/internal/models"
	"github.com/jackc/pgx/v5"
)

// UpsertCoordinates writes the sampled track, replacing any previous one.
func (db *DB) UpsertCoordinates(ctx context.Context, rec *models.CoordinateRecord) error {
	coords, err := json.Marshal(rec.Coordinates)
	if err != nil {
		return fmt.Errorf("encoding coordinates: %w", err)
	}
	bbox, err := json.Marshal(rec.BoundingBox)
	if err != nil {
		return fmt.Errorf("encoding bounding box: %w", err)
	}

	err = db.Pool.QueryRow(ctx,
		`INSERT INTO activity_coordinates (user_id, activity_source, activity_id,
		 coordinates, total_points, sampled_points, starting_latitude, starting_longitude, bounding_box)
		 VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
		 ON CONFLICT (user_id, activity_source, activity_id) DO UPDATE SET
		   coordinates = EXCLUDED.coordinates,
		   total_points = EXCLUDED.total_points,
		   sampled_points = EXCLUDED.sampled_points,
		   starting_latitude = EXCLUDED.starting_latitude,
		   starting_longitude = EXCLUDED.starting_longitude,
		   bounding_box = EXCLUDED.bounding_box,
		   updated_at = NOW()
		 RETURNING updated_at`,
		rec.UserID, string(rec.Source), rec.ActivityID,
		coords, rec.TotalPoints, rec.SampledPoints,
		rec.StartingLatitude, rec.StartingLongitude, bbox,
	).Scan(&rec.UpdatedAt)
	if err != nil {
		return fmt.Errorf("upserting coordinates: %w", err)
	}
	return nil
}

// GetCoordinates returns the stored track for key, or nil when none exists.
func (db *DB) GetCoordinates(ctx context.Context, key models.ActivityKey) (*models.CoordinateRecord, error) {
	rec := &models.CoordinateRecord{ActivityKey: key}
	var coords, bbox []byte
	err := db.Pool.QueryRow(ctx,
		`SELECT coordinates, total_points, sampled_points, starting_latitude,
		 starting_longitude, bounding_box, updated_at
		 FROM activity_coordinates
		 WHERE user_id = $1 AND activity_source = $2 AND activity_id = $3`,
		key.UserID, string(key.Source), key.ActivityID,
	).Scan(&coords, &rec.TotalPoints, &rec.SampledPoints, &rec.StartingLatitude,
		&rec.StartingLongitude, &bbox, &rec.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("querying coordinates: %w", err)
	}
	if err := json.Unmarshal(coords, &rec.Coordinates); err != nil {
		return nil, fmt.Errorf("decoding coordinates: %w", err)
	}
	if len(bbox) > 0 {
		if err := json.Unmarshal(bbox, &rec.BoundingBox); err != nil {
			return nil, fmt.Errorf("decoding bounding box: %w", err)
		}
	}
	return rec, nil
}
