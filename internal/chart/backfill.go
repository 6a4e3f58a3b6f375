package chart

import (
	"context"
	"fmt"

	"github.com/claude/activitychart/internal/models"
)

// BackfillStats tracks a bulk recomputation.
type BackfillStats struct {
	Activities int      `json:"activities"`
	Computed   int      `json:"computed"`
	Empty      int      `json:"empty"`
	Failed     int      `json:"failed"`
	Failures   []string `json:"failures,omitempty"`
}

// Backfill recomputes every activity listed for userID, optionally limited
// to one source. Activities are processed one at a time; a failing activity
// is recorded and the run continues.
func (c *Calculator) Backfill(ctx context.Context, userID string, source models.Source, fullPrecision bool) (*BackfillStats, error) {
	if userID == "" {
		return nil, &ValidationError{Err: fmt.Errorf("user_id is required")}
	}
	if source != "" && !source.Valid() {
		return nil, &ValidationError{Err: fmt.Errorf("unknown activity_source %q", source)}
	}

	refs, err := c.store.ListActivities(ctx, userID, source)
	if err != nil {
		return nil, fmt.Errorf("listing activities: %w", err)
	}

	stats := &BackfillStats{Activities: len(refs)}
	for _, ref := range refs {
		if err := ctx.Err(); err != nil {
			return stats, err
		}
		res, err := c.Calculate(ctx, Request{
			UserID:        userID,
			ActivityID:    ref.ActivityID,
			Source:        ref.Source,
			InternalCall:  true,
			FullPrecision: fullPrecision,
		})
		switch {
		case err != nil:
			stats.Failed++
			stats.Failures = append(stats.Failures, fmt.Sprintf("%s/%s: %v", ref.Source, ref.ActivityID, err))
			c.log.Warn("backfill activity failed", "source", ref.Source, "activity_id", ref.ActivityID, "error", err)
		case !res.Success:
			stats.Empty++
		default:
			stats.Computed++
		}
	}

	c.log.Info("backfill complete",
		"user_id", userID,
		"activities", stats.Activities,
		"computed", stats.Computed,
		"empty", stats.Empty,
		"failed", stats.Failed,
	)
	return stats, nil
}
