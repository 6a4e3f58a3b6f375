package mcp

import (
	"context"
	"errors"
	"time"

	"github.com/claude/activitychart/internal/chart"
	"github.com/claude/activitychart/internal/models"
	"github.com/mark3labs/mcp-go/mcp"
)

func sourceEnum() []string {
	out := make([]string, len(models.AllSources))
	for i, s := range models.AllSources {
		out[i] = string(s)
	}
	return out
}

// --- Tool definitions ---

var toolCalculateChart = mcp.NewTool("calculate_activity_chart",
	mcp.WithDescription("Compute and store the chart for one activity. Resolves the owner when user_id is omitted, normalizes the provider samples, fills speed/pace gaps and downsamples long series. Returns the stored point count, or success=false when the activity has no samples."),
	mcp.WithString("activity_id", mcp.Required(), mcp.Description("Provider activity id")),
	mcp.WithString("activity_source", mcp.Required(), mcp.Description("Provider"), mcp.Enum(sourceEnum()...)),
	mcp.WithString("user_id", mcp.Description("Owner. Looked up when omitted.")),
	mcp.WithBoolean("full_precision", mcp.Description("Keep up to 10000 points instead of 2000; larger series are reduced with LTTB.")),
)

var toolGetChart = mcp.NewTool("get_activity_chart",
	mcp.WithDescription("Read the stored chart for an activity: summary stats (duration, distance, average speed/pace, average/max heart rate) and point count. Set include_series to also return the points."),
	mcp.WithString("activity_id", mcp.Required(), mcp.Description("Provider activity id")),
	mcp.WithString("activity_source", mcp.Required(), mcp.Description("Provider"), mcp.Enum(sourceEnum()...)),
	mcp.WithString("user_id", mcp.Required(), mcp.Description("Owner")),
	mcp.WithBoolean("include_series", mcp.Description("Include the series points. Defaults to false.")),
)

var toolGetCoordinates = mcp.NewTool("get_activity_coordinates",
	mcp.WithDescription("Read the stored GPS track summary for an activity: sampled coordinates, start point and bounding box."),
	mcp.WithString("activity_id", mcp.Required(), mcp.Description("Provider activity id")),
	mcp.WithString("activity_source", mcp.Required(), mcp.Description("Provider"), mcp.Enum(sourceEnum()...)),
	mcp.WithString("user_id", mcp.Required(), mcp.Description("Owner")),
)

var toolBackfillCharts = mcp.NewTool("backfill_activity_charts",
	mcp.WithDescription("Recompute charts for every listed activity of a user, optionally for one provider. Returns computed/empty/failed counts."),
	mcp.WithString("user_id", mcp.Required(), mcp.Description("Owner")),
	mcp.WithString("activity_source", mcp.Description("Limit to one provider"), mcp.Enum(sourceEnum()...)),
)

// --- Tool handlers ---

func (h *handlers) calculateChart(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	creq := chart.Request{
		ActivityID:    req.GetString("activity_id", ""),
		Source:        models.Source(req.GetString("activity_source", "")),
		UserID:        req.GetString("user_id", ""),
		FullPrecision: req.GetBool("full_precision", false),
	}

	res, err := h.ds.Calculate(ctx, creq)
	if err != nil {
		var vErr *chart.ValidationError
		if !errors.As(err, &vErr) {
			h.log.Error("mcp calculate_activity_chart", "error", err)
		}
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(res)
}

// chartSummary is the get_activity_chart payload.
type chartSummary struct {
	models.ActivityKey
	DataPointsCount int `json:"data_points_count"`
	models.Stats
	UpdatedAt time.Time            `json:"updated_at"`
	Series    []models.SeriesPoint `json:"series_data,omitempty"`
}

func (h *handlers) getChart(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	key, errResult := keyFromRequest(req)
	if errResult != nil {
		return errResult, nil
	}

	rec, err := h.ds.GetChart(ctx, key)
	if err != nil {
		h.log.Error("mcp get_activity_chart", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}
	if rec == nil {
		return mcp.NewToolResultError("no chart stored for " + key.String()), nil
	}

	out := chartSummary{
		ActivityKey:     rec.ActivityKey,
		DataPointsCount: rec.DataPointsCount,
		Stats:           rec.Stats,
		UpdatedAt:       rec.UpdatedAt,
	}
	if req.GetBool("include_series", false) {
		out.Series = rec.Series
	}
	return jsonResult(out)
}

func (h *handlers) getCoordinates(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	key, errResult := keyFromRequest(req)
	if errResult != nil {
		return errResult, nil
	}

	rec, err := h.ds.GetCoordinates(ctx, key)
	if err != nil {
		h.log.Error("mcp get_activity_coordinates", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}
	if rec == nil {
		return mcp.NewToolResultError("no coordinates stored for " + key.String()), nil
	}
	return jsonResult(rec)
}

func (h *handlers) backfillCharts(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	userID, err := req.RequireString("user_id")
	if err != nil || userID == "" {
		return mcp.NewToolResultError("user_id parameter is required"), nil
	}
	source := models.Source(req.GetString("activity_source", ""))
	if source != "" && !source.Valid() {
		return mcp.NewToolResultError("unknown activity_source " + string(source)), nil
	}

	stats, err := h.ds.Backfill(ctx, userID, source, false)
	if err != nil {
		h.log.Error("mcp backfill_activity_charts", "error", err)
		return mcp.NewToolResultError("backfill failed: " + err.Error()), nil
	}
	return jsonResult(stats)
}

func keyFromRequest(req mcp.CallToolRequest) (models.ActivityKey, *mcp.CallToolResult) {
	activityID, err := req.RequireString("activity_id")
	if err != nil || activityID == "" {
		return models.ActivityKey{}, mcp.NewToolResultError("activity_id parameter is required")
	}
	source, err := models.ParseSource(req.GetString("activity_source", ""))
	if err != nil {
		return models.ActivityKey{}, mcp.NewToolResultError(err.Error())
	}
	userID, err := req.RequireString("user_id")
	if err != nil || userID == "" {
		return models.ActivityKey{}, mcp.NewToolResultError("user_id parameter is required")
	}
	return models.ActivityKey{UserID: userID, Source: source, ActivityID: activityID}, nil
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	result, err := mcp.NewToolResultJSON(v)
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return result, nil
}
