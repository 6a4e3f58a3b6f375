package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Server     ServerConfig     `yaml:"server"`
	Database   DatabaseConfig   `yaml:"database"`
	Auth       AuthConfig       `yaml:"auth"`
	Tailscale  TailscaleConfig  `yaml:"tailscale"`
	Sentry     SentryConfig     `yaml:"sentry"`
	Chart      ChartConfig      `yaml:"chart"`
	Downstream DownstreamConfig `yaml:"downstream"`
}

type ServerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

type DatabaseConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Name     string `yaml:"name"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	SSLMode  string `yaml:"sslmode"`
}

type AuthConfig struct {
	APIKey string `yaml:"api_key"`
}

type TailscaleConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Hostname string `yaml:"hostname"`
	StateDir string `yaml:"state_dir"`
}

// SentryConfig enables error reporting when DSN is set.
type SentryConfig struct {
	DSN         string `yaml:"dsn"`
	Environment string `yaml:"environment"`
}

// SpeedBand is an inclusive range of plausible speeds in m/s.
type SpeedBand struct {
	Min float64 `yaml:"min"`
	Max float64 `yaml:"max"`
}

// Contains reports whether v lies within the band.
func (b SpeedBand) Contains(v float64) bool {
	return v >= b.Min && v <= b.Max
}

// ChartConfig tunes the chart computation. Zero fields take defaults.
type ChartConfig struct {
	PageSize             int       `yaml:"page_size"`
	MaxPoints            int       `yaml:"max_points"`
	FullPrecisionCeiling int       `yaml:"full_precision_ceiling"`
	LTTBTarget           int       `yaml:"lttb_target"`
	CoordinateMaxPoints  int       `yaml:"coordinate_max_points"`
	HRSnapWindowSeconds  float64   `yaml:"hr_snap_window_seconds"`
	DensifyMinPoints     int       `yaml:"densify_min_points"`
	SpeedBand            SpeedBand `yaml:"speed_band"`
	GPSSpeedBand         SpeedBand `yaml:"gps_speed_band"`
}

// DownstreamConfig points at the enrichment endpoints called after a chart is saved.
// An empty URL disables that call.
type DownstreamConfig struct {
	BestSegmentsURL string `yaml:"best_segments_url"`
	StatisticsURL   string `yaml:"statistics_url"`
	APIKey          string `yaml:"api_key"`
	TimeoutSeconds  int    `yaml:"timeout_seconds"`
}

// Timeout returns the per-call timeout.
func (d DownstreamConfig) Timeout() time.Duration {
	return time.Duration(d.TimeoutSeconds) * time.Second
}

// DefaultChart returns the chart settings used when the config leaves them unset.
func DefaultChart() ChartConfig {
	return ChartConfig{
		PageSize:             1000,
		MaxPoints:            2000,
		FullPrecisionCeiling: 10000,
		LTTBTarget:           5000,
		CoordinateMaxPoints:  2000,
		HRSnapWindowSeconds:  30,
		DensifyMinPoints:     20,
		SpeedBand:            SpeedBand{Min: 0.5, Max: 10},
		GPSSpeedBand:         SpeedBand{Min: 0.3, Max: 12},
	}
}

// WithDefaults fills zero fields from DefaultChart.
func (c ChartConfig) WithDefaults() ChartConfig {
	d := DefaultChart()
	if c.PageSize == 0 {
		c.PageSize = d.PageSize
	}
	if c.MaxPoints == 0 {
		c.MaxPoints = d.MaxPoints
	}
	if c.FullPrecisionCeiling == 0 {
		c.FullPrecisionCeiling = d.FullPrecisionCeiling
	}
	if c.LTTBTarget == 0 {
		c.LTTBTarget = d.LTTBTarget
	}
	if c.CoordinateMaxPoints == 0 {
		c.CoordinateMaxPoints = d.CoordinateMaxPoints
	}
	if c.HRSnapWindowSeconds == 0 {
		c.HRSnapWindowSeconds = d.HRSnapWindowSeconds
	}
	if c.DensifyMinPoints == 0 {
		c.DensifyMinPoints = d.DensifyMinPoints
	}
	if c.SpeedBand == (SpeedBand{}) {
		c.SpeedBand = d.SpeedBand
	}
	if c.GPSSpeedBand == (SpeedBand{}) {
		c.GPSSpeedBand = d.GPSSpeedBand
	}
	return c
}

// DSN returns a PostgreSQL connection string.
func (d DatabaseConfig) DSN() string {
	sslmode := d.SSLMode
	if sslmode == "" {
		sslmode = "disable"
	}
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.Name, sslmode)
}

// Load reads config from a YAML file, then applies environment variable overrides.
// Env vars use the prefix ACTIVITYCHART_:
//
//	ACTIVITYCHART_SERVER_HOST, ACTIVITYCHART_SERVER_PORT,
//	ACTIVITYCHART_DB_HOST, ACTIVITYCHART_DB_PORT, ACTIVITYCHART_DB_NAME,
//	ACTIVITYCHART_DB_USER, ACTIVITYCHART_DB_PASSWORD, ACTIVITYCHART_DB_SSLMODE,
//	ACTIVITYCHART_AUTH_API_KEY, ACTIVITYCHART_SENTRY_DSN,
//	ACTIVITYCHART_BEST_SEGMENTS_URL, ACTIVITYCHART_STATISTICS_URL,
//	ACTIVITYCHART_DOWNSTREAM_API_KEY
func Load(path string) (*Config, error) {
	cfg := &Config{}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	applyEnvOverrides(cfg)
	cfg.Chart = cfg.Chart.WithDefaults()
	if cfg.Downstream.TimeoutSeconds == 0 {
		cfg.Downstream.TimeoutSeconds = 10
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation: %w", err)
	}

	return cfg, nil
}

func applyEnvOverrides(cfg *Config) {
	setString := func(key string, dst *string) {
		if v := os.Getenv(key); v != "" {
			*dst = v
		}
	}
	setInt := func(key string, dst *int) {
		if v := os.Getenv(key); v != "" {
			if n, err := strconv.Atoi(v); err == nil {
				*dst = n
			}
		}
	}

	setString("ACTIVITYCHART_SERVER_HOST", &cfg.Server.Host)
	setInt("ACTIVITYCHART_SERVER_PORT", &cfg.Server.Port)
	setString("ACTIVITYCHART_DB_HOST", &cfg.Database.Host)
	setInt("ACTIVITYCHART_DB_PORT", &cfg.Database.Port)
	setString("ACTIVITYCHART_DB_NAME", &cfg.Database.Name)
	setString("ACTIVITYCHART_DB_USER", &cfg.Database.User)
	setString("ACTIVITYCHART_DB_PASSWORD", &cfg.Database.Password)
	setString("ACTIVITYCHART_DB_SSLMODE", &cfg.Database.SSLMode)
	setString("ACTIVITYCHART_AUTH_API_KEY", &cfg.Auth.APIKey)
	setString("ACTIVITYCHART_SENTRY_DSN", &cfg.Sentry.DSN)
	setString("ACTIVITYCHART_BEST_SEGMENTS_URL", &cfg.Downstream.BestSegmentsURL)
	setString("ACTIVITYCHART_STATISTICS_URL", &cfg.Downstream.StatisticsURL)
	setString("ACTIVITYCHART_DOWNSTREAM_API_KEY", &cfg.Downstream.APIKey)
}

func (c *Config) validate() error {
	if c.Server.Port == 0 {
		return fmt.Errorf("server.port is required")
	}
	if c.Database.Host == "" {
		return fmt.Errorf("database.host is required")
	}
	if c.Database.Port == 0 {
		return fmt.Errorf("database.port is required")
	}
	if c.Database.Name == "" {
		return fmt.Errorf("database.name is required")
	}
	if c.Database.User == "" {
		return fmt.Errorf("database.user is required")
	}
	if c.Auth.APIKey == "" {
		return fmt.Errorf("auth.api_key is required")
	}
	if c.Tailscale.Enabled && c.Tailscale.Hostname == "" {
		return fmt.Errorf("tailscale.hostname is required when tailscale is enabled")
	}
	if err := c.Chart.validate(); err != nil {
		return err
	}
	return nil
}

func (c ChartConfig) validate() error {
	if c.LTTBTarget < 3 {
		return fmt.Errorf("chart.lttb_target must be at least 3")
	}
	if c.FullPrecisionCeiling < c.LTTBTarget {
		return fmt.Errorf("chart.full_precision_ceiling must not be below chart.lttb_target")
	}
	for name, b := range map[string]SpeedBand{"chart.speed_band": c.SpeedBand, "chart.gps_speed_band": c.GPSSpeedBand} {
		if b.Min < 0 || b.Max <= b.Min {
			return fmt.Errorf("%s: min must be >= 0 and below max", name)
		}
	}
	return nil
}
