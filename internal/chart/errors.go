package chart

import (
	"errors"
	"fmt"

	"github.com/claude/activitychart/internal/models"
)

// ErrMissingFields is returned for requests without an activity id or source.
var ErrMissingFields = errors.New("activity_id and activity_source are required")

// ValidationError marks a request the caller must fix.
type ValidationError struct {
	Err error
}

func (e *ValidationError) Error() string { return e.Err.Error() }
func (e *ValidationError) Unwrap() error { return e.Err }

// ResolutionError is returned when no table names an owner for the activity.
type ResolutionError struct {
	Source     models.Source
	ActivityID string
}

func (e *ResolutionError) Error() string {
	return fmt.Sprintf("unable to resolve user_id for %s activity %s", e.Source, e.ActivityID)
}
