package mcp

import (
	"log/slog"
	"net/http"

	"github.com/mark3labs/mcp-go/server"
)

// New creates an MCP server with all tools and resources registered.
func New(ds DataSource, version string, log *slog.Logger) *server.MCPServer {
	s := server.NewMCPServer("activitychart", version,
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
		server.WithInstructions("Activity chart server. Computes normalized time series (time, distance, heart rate, speed, pace) for workouts from any connected provider and reads back stored charts and GPS tracks."),
	)

	h := &handlers{ds: ds, log: log}

	s.AddTools(
		server.ServerTool{Tool: toolCalculateChart, Handler: h.calculateChart},
		server.ServerTool{Tool: toolGetChart, Handler: h.getChart},
		server.ServerTool{Tool: toolGetCoordinates, Handler: h.getCoordinates},
		server.ServerTool{Tool: toolBackfillCharts, Handler: h.backfillCharts},
	)

	s.AddResources(
		server.ServerResource{Resource: resSources, Handler: h.sources},
	)

	return s
}

// HTTPHandler serves s over streamable HTTP for mounting on the API server.
func HTTPHandler(s *server.MCPServer) http.Handler {
	return server.NewStreamableHTTPServer(s, server.WithStateLess(true))
}

// handlers holds dependencies for MCP tool/resource handlers.
type handlers struct {
	ds  DataSource
	log *slog.Logger
}
