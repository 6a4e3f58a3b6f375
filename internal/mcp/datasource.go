package mcp

import (
	"context"

	"github.com/claude/activitychart/internal/chart"
	"github.com/claude/activitychart/internal/models"
)

// DataSource abstracts the engine for MCP tools. Local (in-process) and
// HTTPClient (remote via REST API) both satisfy it.
type DataSource interface {
	Calculate(ctx context.Context, req chart.Request) (*chart.Result, error)
	Backfill(ctx context.Context, userID string, source models.Source, fullPrecision bool) (*chart.BackfillStats, error)
	GetChart(ctx context.Context, key models.ActivityKey) (*models.ChartRecord, error)
	GetCoordinates(ctx context.Context, key models.ActivityKey) (*models.CoordinateRecord, error)
}

// Local serves tools from an in-process calculator and store.
type Local struct {
	*chart.Calculator
	chart.Reader
}

// Compile-time check: Local satisfies DataSource.
var _ DataSource = Local{}
