package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/claude/activitychart/internal/chart"
	"github.com/claude/activitychart/internal/models"
	"github.com/getsentry/sentry-go"
	"github.com/go-chi/chi/v5"
)

func (s *Server) handleCalculate(w http.ResponseWriter, r *http.Request) {
	var req chart.Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON: " + err.Error()})
		return
	}

	res, err := s.calc.Calculate(r.Context(), req)
	if err != nil {
		var vErr *chart.ValidationError
		if errors.As(err, &vErr) {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": vErr.Error()})
			return
		}
		s.internalError(w, r, err, "source", req.Source, "activity_id", req.ActivityID)
		return
	}

	writeJSON(w, http.StatusOK, res)
}

type backfillRequest struct {
	UserID        string        `json:"user_id"`
	Source        models.Source `json:"activity_source,omitempty"`
	FullPrecision bool          `json:"full_precision,omitempty"`
}

func (s *Server) handleBackfill(w http.ResponseWriter, r *http.Request) {
	var req backfillRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON: " + err.Error()})
		return
	}
	if req.UserID == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "user_id is required"})
		return
	}
	if req.Source != "" && !req.Source.Valid() {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "unknown activity_source " + string(req.Source)})
		return
	}

	stats, err := s.calc.Backfill(r.Context(), req.UserID, req.Source, req.FullPrecision)
	if err != nil {
		s.internalError(w, r, err, "user_id", req.UserID)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

func (s *Server) handleGetChart(w http.ResponseWriter, r *http.Request) {
	key, ok := activityKey(w, r)
	if !ok {
		return
	}
	rec, err := s.reader.GetChart(r.Context(), key)
	if err != nil {
		s.internalError(w, r, err, "activity", key.String())
		return
	}
	if rec == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "chart not found"})
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

func (s *Server) handleGetCoordinates(w http.ResponseWriter, r *http.Request) {
	key, ok := activityKey(w, r)
	if !ok {
		return
	}
	rec, err := s.reader.GetCoordinates(r.Context(), key)
	if err != nil {
		s.internalError(w, r, err, "activity", key.String())
		return
	}
	if rec == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "coordinates not found"})
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()
	if err := s.db.Ping(ctx); err != nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable", "error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// activityKey reads {source}/{activityID} and the user_id query parameter.
func activityKey(w http.ResponseWriter, r *http.Request) (models.ActivityKey, bool) {
	source, err := models.ParseSource(chi.URLParam(r, "source"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return models.ActivityKey{}, false
	}
	userID := r.URL.Query().Get("user_id")
	if userID == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "user_id parameter required"})
		return models.ActivityKey{}, false
	}
	return models.ActivityKey{UserID: userID, Source: source, ActivityID: chi.URLParam(r, "activityID")}, true
}

// internalError logs, reports to Sentry and writes the 500 body.
func (s *Server) internalError(w http.ResponseWriter, r *http.Request, err error, attrs ...any) {
	s.log.Error("request failed", append(attrs, "path", r.URL.Path, "error", err)...)
	if hub := sentry.GetHubFromContext(r.Context()); hub != nil {
		hub.CaptureException(err)
	}
	writeJSON(w, http.StatusInternalServerError, map[string]any{"success": false, "error": err.Error()})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
