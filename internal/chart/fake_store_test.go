package chart

import (
	"context"
	"io"
	"log/slog"
	"sync"

	"github.com/claude/activitychart/internal/models"
)

// memStore is an in-memory Store for engine tests.
type memStore struct {
	mu sync.Mutex

	unified map[string]string // "source/id" -> user
	detail  map[string]string
	summary map[string]string

	rows      map[models.ActivityKey][]models.RawSample
	workouts  map[models.ActivityKey]*models.HealthKitWorkout
	listed    []models.ActivityRef
	pageCalls int
	lookups   []string

	charts map[models.ActivityKey]*models.ChartRecord
	coords map[models.ActivityKey]*models.CoordinateRecord
	saves  int
}

func newMemStore() *memStore {
	return &memStore{
		unified:  map[string]string{},
		detail:   map[string]string{},
		summary:  map[string]string{},
		rows:     map[models.ActivityKey][]models.RawSample{},
		workouts: map[models.ActivityKey]*models.HealthKitWorkout{},
		charts:   map[models.ActivityKey]*models.ChartRecord{},
		coords:   map[models.ActivityKey]*models.CoordinateRecord{},
	}
}

func ref(source models.Source, id string) string { return string(source) + "/" + id }

func (m *memStore) FindUnifiedOwner(_ context.Context, s models.Source, id string) (string, error) {
	m.lookups = append(m.lookups, "unified")
	return m.unified[ref(s, id)], nil
}

func (m *memStore) FindDetailOwner(_ context.Context, s models.Source, id string) (string, error) {
	m.lookups = append(m.lookups, "detail")
	return m.detail[ref(s, id)], nil
}

func (m *memStore) FindSummaryOwner(_ context.Context, s models.Source, id string) (string, error) {
	m.lookups = append(m.lookups, "summary")
	return m.summary[ref(s, id)], nil
}

func (m *memStore) FetchSamplePage(_ context.Context, key models.ActivityKey, offset, limit int) ([]models.RawSample, error) {
	m.pageCalls++
	rows := m.rows[key]
	if offset >= len(rows) {
		return nil, nil
	}
	return rows[offset:min(offset+limit, len(rows))], nil
}

func (m *memStore) GetHealthKitWorkout(_ context.Context, key models.ActivityKey) (*models.HealthKitWorkout, error) {
	return m.workouts[key], nil
}

func (m *memStore) ListActivities(_ context.Context, _ string, source models.Source) ([]models.ActivityRef, error) {
	var out []models.ActivityRef
	for _, r := range m.listed {
		if source == "" || r.Source == source {
			out = append(out, r)
		}
	}
	return out, nil
}

func (m *memStore) SaveChart(_ context.Context, rec *models.ChartRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.saves++
	cp := *rec
	if prev, ok := m.charts[rec.ActivityKey]; ok {
		cp.ID = prev.ID
	}
	m.charts[rec.ActivityKey] = &cp
	return nil
}

func (m *memStore) UpsertCoordinates(_ context.Context, rec *models.CoordinateRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *rec
	m.coords[rec.ActivityKey] = &cp
	return nil
}

type fakeNotifier struct {
	calls []models.ActivityKey
	err   error
}

func (f *fakeNotifier) Notify(_ context.Context, key models.ActivityKey) error {
	f.calls = append(f.calls, key)
	return f.err
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
