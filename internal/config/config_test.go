package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

const validYAML = `
server:
  host: "0.0.0.0"
  port: 8080
database:
  host: "localhost"
  port: 5432
  name: "activitychart"
  user: "charts"
  password: "secret"
  sslmode: "disable"
auth:
  api_key: "test-key-123"
downstream:
  best_segments_url: "http://segments.internal/recompute"
`

func writeTemp(t *testing.T, content string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

// TestLoadValid verifies that a well-formed YAML config loads with all fields populated.
func TestLoadValid(t *testing.T) {
	cfg, err := Load(writeTemp(t, validYAML))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Server.Port != 8080 {
		t.Errorf("server.port = %d, want 8080", cfg.Server.Port)
	}
	if cfg.Database.Name != "activitychart" {
		t.Errorf("database.name = %q, want %q", cfg.Database.Name, "activitychart")
	}
	if cfg.Auth.APIKey != "test-key-123" {
		t.Errorf("auth.api_key = %q, want %q", cfg.Auth.APIKey, "test-key-123")
	}
	if cfg.Downstream.BestSegmentsURL != "http://segments.internal/recompute" {
		t.Errorf("downstream.best_segments_url = %q", cfg.Downstream.BestSegmentsURL)
	}
}

// TestChartDefaults verifies that an absent chart section yields the standard
// paging and downsampling limits rather than zeros that would break paging.
func TestChartDefaults(t *testing.T) {
	cfg, err := Load(writeTemp(t, validYAML))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Chart != DefaultChart() {
		t.Errorf("chart = %+v, want %+v", cfg.Chart, DefaultChart())
	}
	if cfg.Downstream.Timeout() != 10*time.Second {
		t.Errorf("downstream timeout = %v, want 10s", cfg.Downstream.Timeout())
	}
}

// TestChartOverrides verifies that configured speed bands replace the defaults
// while untouched fields keep theirs.
func TestChartOverrides(t *testing.T) {
	cfg, err := Load(writeTemp(t, validYAML+`
chart:
  page_size: 500
  speed_band: {min: 0.2, max: 4}
`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Chart.PageSize != 500 {
		t.Errorf("page_size = %d, want 500", cfg.Chart.PageSize)
	}
	if cfg.Chart.SpeedBand != (SpeedBand{Min: 0.2, Max: 4}) {
		t.Errorf("speed_band = %+v", cfg.Chart.SpeedBand)
	}
	if cfg.Chart.GPSSpeedBand != (SpeedBand{Min: 0.3, Max: 12}) {
		t.Errorf("gps_speed_band = %+v, want default", cfg.Chart.GPSSpeedBand)
	}
}

// TestInvalidSpeedBand verifies that an inverted band is rejected at load time.
func TestInvalidSpeedBand(t *testing.T) {
	_, err := Load(writeTemp(t, validYAML+`
chart:
  gps_speed_band: {min: 5, max: 1}
`))
	if err == nil {
		t.Fatal("expected validation error for inverted speed band")
	}
}

// TestEnvOverride verifies that ACTIVITYCHART_ env vars take precedence over YAML values.
func TestEnvOverride(t *testing.T) {
	t.Setenv("ACTIVITYCHART_DB_HOST", "override-host")
	t.Setenv("ACTIVITYCHART_DB_PORT", "9999")
	t.Setenv("ACTIVITYCHART_AUTH_API_KEY", "env-key")
	t.Setenv("ACTIVITYCHART_STATISTICS_URL", "http://stats.internal")

	cfg, err := Load(writeTemp(t, validYAML))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Database.Host != "override-host" {
		t.Errorf("database.host = %q, want %q", cfg.Database.Host, "override-host")
	}
	if cfg.Database.Port != 9999 {
		t.Errorf("database.port = %d, want 9999", cfg.Database.Port)
	}
	if cfg.Auth.APIKey != "env-key" {
		t.Errorf("auth.api_key = %q, want %q", cfg.Auth.APIKey, "env-key")
	}
	if cfg.Downstream.StatisticsURL != "http://stats.internal" {
		t.Errorf("downstream.statistics_url = %q", cfg.Downstream.StatisticsURL)
	}
	if cfg.Database.Name != "activitychart" {
		t.Errorf("database.name = %q, want %q", cfg.Database.Name, "activitychart")
	}
}

// TestValidationMissingAPIKey verifies that a missing API key is rejected.
func TestValidationMissingAPIKey(t *testing.T) {
	yaml := `
server:
  port: 8080
database:
  host: "localhost"
  port: 5432
  name: "activitychart"
  user: "charts"
auth: {}
`
	_, err := Load(writeTemp(t, yaml))
	if err == nil {
		t.Fatal("expected validation error for missing api_key")
	}
}

// TestValidationTailscaleHostname verifies tsnet cannot start without a hostname.
func TestValidationTailscaleHostname(t *testing.T) {
	_, err := Load(writeTemp(t, validYAML+`
tailscale:
  enabled: true
`))
	if err == nil {
		t.Fatal("expected validation error for missing tailscale hostname")
	}
}

// TestDSN verifies the PostgreSQL connection string is built correctly.
func TestDSN(t *testing.T) {
	d := DatabaseConfig{Host: "localhost", Port: 5432, Name: "db", User: "u", Password: "p"}
	if want := "postgres://u:p@localhost:5432/db?sslmode=disable"; d.DSN() != want {
		t.Errorf("DSN() = %q, want %q", d.DSN(), want)
	}
}

// TestLoadMissingFile verifies that a missing config file returns a clear error.
func TestLoadMissingFile(t *testing.T) {
	if _, err := Load("/nonexistent/config.yaml"); err == nil {
		t.Fatal("expected error for missing file")
	}
}
