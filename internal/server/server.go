package server

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/claude/activitychart/internal/chart"
	"github.com/claude/activitychart/internal/models"
	sentryhttp "github.com/getsentry/sentry-go/http"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"tailscale.com/client/local"
)

// Calculator runs chart computations.
type Calculator interface {
	Calculate(ctx context.Context, req chart.Request) (*chart.Result, error)
	Backfill(ctx context.Context, userID string, source models.Source, fullPrecision bool) (*chart.BackfillStats, error)
}

// Pinger reports store connectivity for the health check.
type Pinger interface {
	Ping(ctx context.Context) error
}

// whoIsFunc maps a remote address to a caller login.
type whoIsFunc func(ctx context.Context, remoteAddr string) (string, error)

// Server holds dependencies for HTTP handlers.
type Server struct {
	calc   Calculator
	reader chart.Reader
	db     Pinger
	log    *slog.Logger
	apiKey string
	whoIs  whoIsFunc
	router chi.Router
}

// New creates a new Server with all routes configured.
func New(calc Calculator, reader chart.Reader, db Pinger, apiKey string, log *slog.Logger) *Server {
	s := &Server{
		calc:   calc,
		reader: reader,
		db:     db,
		log:    log,
		apiKey: apiKey,
		router: chi.NewRouter(),
	}
	s.routes()
	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) routes() {
	s.router.Use(middleware.Recoverer)
	s.router.Use(s.callerIdentity)
	s.router.Use(RequestLogging(s.log))
	s.router.Use(sentryhttp.New(sentryhttp.Options{Repanic: true}).Handle)
	s.router.Use(CORS)

	s.router.Get("/healthz", s.handleHealth)

	s.router.Route("/api/v1", func(r chi.Router) {
		r.Use(APIKeyAuth(s.apiKey))
		r.Post("/activity-chart", s.handleCalculate)
		r.Post("/charts/backfill", s.handleBackfill)
		r.Get("/charts/{source}/{activityID}", s.handleGetChart)
		r.Get("/coordinates/{source}/{activityID}", s.handleGetCoordinates)
	})
}

// SetMCP mounts the MCP endpoint at /mcp behind the API key.
func (s *Server) SetMCP(h http.Handler) {
	s.router.Group(func(r chi.Router) {
		r.Use(APIKeyAuth(s.apiKey))
		r.Mount("/mcp", h)
	})
}

// SetTailscale resolves callers through the tailnet so request logs carry
// the caller's login.
func (s *Server) SetTailscale(lc *local.Client) {
	s.whoIs = func(ctx context.Context, remoteAddr string) (string, error) {
		who, err := lc.WhoIs(ctx, remoteAddr)
		if err != nil {
			return "", err
		}
		if who.UserProfile == nil {
			return "", nil
		}
		return who.UserProfile.LoginName, nil
	}
}
