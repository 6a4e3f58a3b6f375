// Package enrich calls the downstream services that recompute derived
// analytics (best segments, aggregate statistics) for an activity.
package enrich

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/claude/activitychart/internal/config"
	"github.com/claude/activitychart/internal/models"
	"golang.org/x/sync/errgroup"
)

// Target is one downstream endpoint.
type Target struct {
	Name string
	URL  string
}

// Client posts the activity key to every configured target in parallel.
type Client struct {
	targets    []Target
	apiKey     string
	timeout    time.Duration
	httpClient *http.Client
}

// NewClient creates a client for the configured endpoints. Targets with an
// empty URL are skipped.
func NewClient(cfg config.DownstreamConfig) *Client {
	var targets []Target
	if cfg.BestSegmentsURL != "" {
		targets = append(targets, Target{Name: "best_segments", URL: cfg.BestSegmentsURL})
	}
	if cfg.StatisticsURL != "" {
		targets = append(targets, Target{Name: "statistics", URL: cfg.StatisticsURL})
	}
	timeout := cfg.Timeout()
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		targets:    targets,
		apiKey:     cfg.APIKey,
		timeout:    timeout,
		httpClient: &http.Client{},
	}
}

// Targets returns the endpoints this client calls.
func (c *Client) Targets() []Target {
	return c.targets
}

type payload struct {
	ActivityID string        `json:"activity_id"`
	UserID     string        `json:"user_id"`
	Source     models.Source `json:"activity_source"`
}

// Notify calls every target concurrently, each under its own timeout, and
// waits for all of them. Calls are not retried. The returned error joins
// every failure.
func (c *Client) Notify(ctx context.Context, key models.ActivityKey) error {
	data, err := json.Marshal(payload{ActivityID: key.ActivityID, UserID: key.UserID, Source: key.Source})
	if err != nil {
		return fmt.Errorf("marshaling payload: %w", err)
	}

	errs := make([]error, len(c.targets))
	var g errgroup.Group
	for i, t := range c.targets {
		g.Go(func() error {
			if err := c.post(ctx, t, data); err != nil {
				errs[i] = fmt.Errorf("%s: %w", t.Name, err)
			}
			return nil
		})
	}
	_ = g.Wait()
	return errors.Join(errs...)
}

func (c *Client) post(ctx context.Context, t Target, data []byte) error {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, t.URL, bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
		req.Header.Set("apikey", c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("status %d: %s", resp.StatusCode, body)
	}
	return nil
}
