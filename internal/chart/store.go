package chart

import (
	"context"

	"github.com/claude/activitychart/internal/models"
)

// Store is the row-level storage the engine reads from and writes to.
// Lookups that find nothing return a zero value and a nil error.
type Store interface {
	// FindUnifiedOwner looks the activity up in the cross-provider activity list.
	FindUnifiedOwner(ctx context.Context, source models.Source, activityID string) (string, error)
	// FindDetailOwner looks the activity up in the source's sample table.
	FindDetailOwner(ctx context.Context, source models.Source, activityID string) (string, error)
	// FindSummaryOwner looks the activity up in the source's summary table.
	FindSummaryOwner(ctx context.Context, source models.Source, activityID string) (string, error)

	// FetchSamplePage returns up to limit detail rows starting at offset,
	// ordered by the source's natural time column.
	FetchSamplePage(ctx context.Context, key models.ActivityKey, offset, limit int) ([]models.RawSample, error)
	GetHealthKitWorkout(ctx context.Context, key models.ActivityKey) (*models.HealthKitWorkout, error)
	ListActivities(ctx context.Context, userID string, source models.Source) ([]models.ActivityRef, error)

	// SaveChart replaces or inserts the chart for rec's key.
	SaveChart(ctx context.Context, rec *models.ChartRecord) error
	UpsertCoordinates(ctx context.Context, rec *models.CoordinateRecord) error
}

// Reader serves persisted records to dashboards.
type Reader interface {
	GetChart(ctx context.Context, key models.ActivityKey) (*models.ChartRecord, error)
	GetCoordinates(ctx context.Context, key models.ActivityKey) (*models.CoordinateRecord, error)
}

// Notifier triggers derived-analytics recomputation after a chart is saved.
type Notifier interface {
	Notify(ctx context.Context, key models.ActivityKey) error
}
