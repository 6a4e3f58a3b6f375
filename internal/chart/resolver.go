package chart

import (
	"context"
	"fmt"

	"github.com/claude/activitychart/internal/adapter"
	"github.com/claude/activitychart/internal/models"
)

// Resolver finds the owner of an activity and loads its raw data.
type Resolver struct {
	store    Store
	pageSize int
}

// NewResolver creates a Resolver that pages through detail rows pageSize at a time.
func NewResolver(store Store, pageSize int) *Resolver {
	if pageSize <= 0 {
		pageSize = 1000
	}
	return &Resolver{store: store, pageSize: pageSize}
}

// ResolveUser returns userID when set, otherwise the first owner found in
// the unified table, the detail table, then the summary table.
func (r *Resolver) ResolveUser(ctx context.Context, source models.Source, activityID, userID string) (string, error) {
	if userID != "" {
		return userID, nil
	}

	lookups := []struct {
		name string
		find func(context.Context, models.Source, string) (string, error)
	}{
		{"unified", r.store.FindUnifiedOwner},
		{"detail", r.store.FindDetailOwner},
		{"summary", r.store.FindSummaryOwner},
	}
	for _, l := range lookups {
		owner, err := l.find(ctx, source, activityID)
		if err != nil {
			return "", fmt.Errorf("looking up owner in %s table: %w", l.name, err)
		}
		if owner != "" {
			return owner, nil
		}
	}
	return "", &ResolutionError{Source: source, ActivityID: activityID}
}

// FetchAll reads every detail row for key, one page at a time, until a
// short page signals the end.
func (r *Resolver) FetchAll(ctx context.Context, key models.ActivityKey) ([]models.RawSample, error) {
	var all []models.RawSample
	for offset := 0; ; offset += r.pageSize {
		page, err := r.store.FetchSamplePage(ctx, key, offset, r.pageSize)
		if err != nil {
			return nil, fmt.Errorf("fetching samples at offset %d: %w", offset, err)
		}
		all = append(all, page...)
		if len(page) < r.pageSize {
			return all, nil
		}
	}
}

// Load fetches the adapter input for key.
func (r *Resolver) Load(ctx context.Context, key models.ActivityKey) (adapter.Input, error) {
	if key.Source == models.SourceHealthKit {
		w, err := r.store.GetHealthKitWorkout(ctx, key)
		if err != nil {
			return adapter.Input{}, fmt.Errorf("fetching healthkit workout: %w", err)
		}
		return adapter.Input{Workout: w}, nil
	}
	rows, err := r.FetchAll(ctx, key)
	if err != nil {
		return adapter.Input{}, err
	}
	return adapter.Input{Rows: rows}, nil
}
