package mcp

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/claude/activitychart/internal/chart"
	"github.com/claude/activitychart/internal/models"
)

// HTTPClient implements DataSource by calling the activitychart REST API.
// Used for remote MCP mode where the binary runs locally (stdio) but the
// engine and database live on the server.
type HTTPClient struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

// Compile-time check: HTTPClient satisfies DataSource.
var _ DataSource = (*HTTPClient)(nil)

// NewHTTPClient creates an HTTPClient targeting the given base URL.
func NewHTTPClient(baseURL, apiKey string) *HTTPClient {
	return &HTTPClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: 120 * time.Second},
	}
}

// apiError is an error body returned by the server.
type apiError struct {
	Error string `json:"error"`
}

func (c *HTTPClient) do(ctx context.Context, method, path string, params url.Values, in, out any) (int, error) {
	u := c.baseURL + path
	if len(params) > 0 {
		u += "?" + params.Encode()
	}

	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return 0, fmt.Errorf("httpclient: encode request: %w", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, body)
	if err != nil {
		return 0, fmt.Errorf("httpclient: create request: %w", err)
	}
	req.Header.Set("X-API-Key", c.apiKey)
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, fmt.Errorf("httpclient: %s: %w", path, err)
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return resp.StatusCode, fmt.Errorf("httpclient: read body: %w", err)
	}

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return resp.StatusCode, nil
	case resp.StatusCode != http.StatusOK:
		var e apiError
		if json.Unmarshal(data, &e) == nil && e.Error != "" {
			if resp.StatusCode == http.StatusBadRequest {
				return resp.StatusCode, &chart.ValidationError{Err: errors.New(e.Error)}
			}
			return resp.StatusCode, fmt.Errorf("httpclient: %s returned %d: %s", path, resp.StatusCode, e.Error)
		}
		return resp.StatusCode, fmt.Errorf("httpclient: %s returned %d: %s", path, resp.StatusCode, data)
	}

	if err := json.Unmarshal(data, out); err != nil {
		return resp.StatusCode, fmt.Errorf("httpclient: decode %s: %w", path, err)
	}
	return resp.StatusCode, nil
}

func keyPath(prefix string, key models.ActivityKey) (string, url.Values) {
	path := prefix + "/" + url.PathEscape(string(key.Source)) + "/" + url.PathEscape(key.ActivityID)
	return path, url.Values{"user_id": {key.UserID}}
}

func (c *HTTPClient) Calculate(ctx context.Context, req chart.Request) (*chart.Result, error) {
	var res chart.Result
	if _, err := c.do(ctx, http.MethodPost, "/api/v1/activity-chart", nil, req, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

func (c *HTTPClient) Backfill(ctx context.Context, userID string, source models.Source, fullPrecision bool) (*chart.BackfillStats, error) {
	in := map[string]any{"user_id": userID, "activity_source": source, "full_precision": fullPrecision}
	var stats chart.BackfillStats
	if _, err := c.do(ctx, http.MethodPost, "/api/v1/charts/backfill", nil, in, &stats); err != nil {
		return nil, err
	}
	return &stats, nil
}

func (c *HTTPClient) GetChart(ctx context.Context, key models.ActivityKey) (*models.ChartRecord, error) {
	path, params := keyPath("/api/v1/charts", key)
	var rec models.ChartRecord
	status, err := c.do(ctx, http.MethodGet, path, params, nil, &rec)
	if err != nil || status == http.StatusNotFound {
		return nil, err
	}
	return &rec, nil
}

func (c *HTTPClient) GetCoordinates(ctx context.Context, key models.ActivityKey) (*models.CoordinateRecord, error) {
	path, params := keyPath("/api/v1/coordinates", key)
	var rec models.CoordinateRecord
	status, err := c.do(ctx, http.MethodGet, path, params, nil, &rec)
	if err != nil || status == http.StatusNotFound {
		return nil, err
	}
	return &rec, nil
}
