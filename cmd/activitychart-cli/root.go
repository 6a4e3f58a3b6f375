// ABOUTME: Root command, persistent flags, and engine setup.
// ABOUTME: Opens either the Postgres store or a local SQLite file.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/claude/activitychart/internal/chart"
	"github.com/claude/activitychart/internal/config"
	"github.com/claude/activitychart/internal/enrich"
	"github.com/claude/activitychart/internal/sqlitestore"
	"github.com/claude/activitychart/internal/storage"
	"github.com/spf13/cobra"
)

var (
	configPath string
	sqlitePath string
	noEnrich   bool
	verbose    bool
)

var rootCmd = &cobra.Command{
	Use:   "activitychart-cli",
	Short: "Compute and inspect activity charts",
	Long: `activitychart-cli runs the chart engine outside the HTTP service.

It reads provider samples from the service's Postgres database (settings from
--config) or from a local SQLite file holding the same tables (--sqlite), and
writes charts and GPS track summaries back to the same store.

EXAMPLES:

  activitychart-cli recompute garmin 12345678           # owner is looked up
  activitychart-cli recompute strava 987 --full-precision
  activitychart-cli backfill user-1 --source polar
  activitychart-cli show garmin 12345678 --user user-1
  activitychart-cli --sqlite export.db recompute zepp_gpx z-1
  activitychart-cli migrate`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "config.yaml", "path to config file")
	rootCmd.PersistentFlags().StringVar(&sqlitePath, "sqlite", "", "use a local SQLite database instead of Postgres")
	rootCmd.PersistentFlags().BoolVar(&noEnrich, "no-enrich", false, "skip downstream recompute calls")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "log engine progress")

	rootCmd.AddCommand(recomputeCmd, backfillCmd, showCmd, migrateCmd, mcpCmd)
}

// engine bundles the calculator with the store it writes to.
type engine struct {
	calc   *chart.Calculator
	reader chart.Reader
	close  func()
}

func newLogger() *slog.Logger {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelInfo
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

// openEngine opens the configured store. In SQLite mode the config file is
// optional and only its chart section is used.
func openEngine(ctx context.Context) (*engine, error) {
	log := newLogger()

	if sqlitePath != "" {
		chartCfg := config.DefaultChart()
		if cfg, err := config.Load(configPath); err == nil {
			chartCfg = cfg.Chart
		}
		store, err := sqlitestore.Open(sqlitePath)
		if err != nil {
			return nil, err
		}
		return &engine{
			calc:   chart.NewCalculator(store, nil, chartCfg, log),
			reader: store,
			close:  func() { store.Close() },
		}, nil
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	db, err := storage.New(ctx, cfg.Database.DSN())
	if err != nil {
		return nil, fmt.Errorf("connecting database: %w", err)
	}

	var notifier chart.Notifier
	if client := enrich.NewClient(cfg.Downstream); !noEnrich && len(client.Targets()) > 0 {
		notifier = client
	}
	return &engine{
		calc:   chart.NewCalculator(db, notifier, cfg.Chart, log),
		reader: db,
		close:  db.Close,
	}, nil
}
