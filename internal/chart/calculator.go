// Package chart computes activity charts: it resolves the owning user,
// loads raw samples, normalizes and reduces the series, persists it, and
// triggers downstream recomputation.
package chart

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/claude/activitychart/internal/adapter"
	"github.com/claude/activitychart/internal/config"
	"github.com/claude/activitychart/internal/models"
	"github.com/claude/activitychart/internal/series"
	"github.com/google/uuid"
)

// NoDataMessage is returned when an activity has no usable samples.
const NoDataMessage = "No detail rows found"

// Request asks for one activity's chart to be (re)computed.
type Request struct {
	UserID        string        `json:"user_id,omitempty"`
	ActivityID    string        `json:"activity_id"`
	Source        models.Source `json:"activity_source"`
	InternalCall  bool          `json:"internal_call,omitempty"`
	FullPrecision bool          `json:"full_precision,omitempty"`
}

// Validate checks the required fields.
func (r Request) Validate() error {
	if r.ActivityID == "" || r.Source == "" {
		return &ValidationError{Err: ErrMissingFields}
	}
	if !r.Source.Valid() {
		return &ValidationError{Err: fmt.Errorf("unknown activity_source %q", r.Source)}
	}
	return nil
}

// Result is the outcome of a computation. Success is false only when the
// activity had no usable data.
type Result struct {
	Success    bool          `json:"success"`
	UserID     string        `json:"user_id,omitempty"`
	ActivityID string        `json:"activity_id,omitempty"`
	Source     models.Source `json:"activity_source,omitempty"`
	Points     int           `json:"points,omitempty"`
	Message    string        `json:"message,omitempty"`
}

// Calculator runs the chart pipeline.
type Calculator struct {
	resolver *Resolver
	store    Store
	notifier Notifier
	cfg      config.ChartConfig
	opts     adapter.Options
	log      *slog.Logger
}

// NewCalculator creates a Calculator. notifier may be nil.
func NewCalculator(store Store, notifier Notifier, cfg config.ChartConfig, log *slog.Logger) *Calculator {
	cfg = cfg.WithDefaults()
	return &Calculator{
		resolver: NewResolver(store, cfg.PageSize),
		store:    store,
		notifier: notifier,
		cfg:      cfg,
		opts:     adapter.OptionsFromConfig(cfg),
		log:      log,
	}
}

// Calculate computes and stores the chart for one activity.
func (c *Calculator) Calculate(ctx context.Context, req Request) (*Result, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	start := time.Now()

	userID, err := c.resolver.ResolveUser(ctx, req.Source, req.ActivityID, req.UserID)
	if err != nil {
		return nil, err
	}
	key := models.ActivityKey{UserID: userID, Source: req.Source, ActivityID: req.ActivityID}

	in, err := c.resolver.Load(ctx, key)
	if err != nil {
		return nil, err
	}
	ad, err := adapter.For(req.Source, c.opts)
	if err != nil {
		return nil, err
	}
	adapted := ad.Adapt(in)
	if len(adapted.Samples) == 0 {
		c.log.Info("no chart data", "activity", key.String())
		return &Result{Success: false, Message: NoDataMessage}, nil
	}

	points := series.Build(adapted.Samples, series.BuildOptions{MaxSpeedMS: c.cfg.SpeedBand.Max})
	stats := series.Summarize(points)

	reduced, mode := series.Reduce(points, req.FullPrecision, series.Limits{
		MaxPoints:            c.cfg.MaxPoints,
		FullPrecisionCeiling: c.cfg.FullPrecisionCeiling,
		LTTBTarget:           c.cfg.LTTBTarget,
	})
	if mode == series.ModeLTTB {
		c.log.Warn("large series, applying lttb", "activity", key.String(), "points", len(points), "target", c.cfg.LTTBTarget)
	}

	rec := &models.ChartRecord{
		ID:              uuid.New(),
		ActivityKey:     key,
		Series:          reduced,
		DataPointsCount: len(reduced),
		Stats:           stats,
	}
	if err := c.store.SaveChart(ctx, rec); err != nil {
		return nil, fmt.Errorf("saving chart: %w", err)
	}

	if coords := series.BuildCoordinates(key, adapted.Track, c.cfg.CoordinateMaxPoints); coords != nil {
		if err := c.store.UpsertCoordinates(ctx, coords); err != nil {
			return nil, fmt.Errorf("saving coordinates: %w", err)
		}
	}

	c.enrich(ctx, key)

	c.log.Info("chart computed",
		"activity", key.String(),
		"method", adapted.Method,
		"raw_points", len(points),
		"points", len(reduced),
		"mode", string(mode),
		"gps_points", len(adapted.Track),
		"internal_call", req.InternalCall,
		"duration", time.Since(start).String(),
	)

	return &Result{
		Success:    true,
		UserID:     userID,
		ActivityID: req.ActivityID,
		Source:     req.Source,
		Points:     len(reduced),
	}, nil
}

// enrich runs the downstream recomputation. Failures are logged only; the
// chart is already stored.
func (c *Calculator) enrich(ctx context.Context, key models.ActivityKey) {
	if c.notifier == nil {
		return
	}
	if err := c.notifier.Notify(context.WithoutCancel(ctx), key); err != nil {
		c.log.Warn("downstream recompute failed", "activity", key.String(), "error", err)
	}
}
