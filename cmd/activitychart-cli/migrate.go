// ABOUTME: Migrate command for the Postgres schema or a new SQLite file.
package main

import (
	"fmt"

	"github.com/claude/activitychart/internal/config"
	"github.com/claude/activitychart/internal/sqlitestore"
	"github.com/claude/activitychart/internal/storage"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var migrationsPath string

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply database migrations",
	Long: `Apply pending migrations to the Postgres database from --config.

With --sqlite the local schema is created instead; it is applied on every
open, so this only creates the file.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()

		if sqlitePath != "" {
			store, err := sqlitestore.Open(sqlitePath)
			if err != nil {
				return err
			}
			defer store.Close()
			fmt.Fprintln(out, color.GreenString("schema ready in %s", sqlitePath))
			return nil
		}

		cfg, err := config.Load(configPath)
		if err != nil {
			return err
		}
		if err := storage.RunMigrations(cfg.Database.DSN(), migrationsPath); err != nil {
			return err
		}
		fmt.Fprintln(out, color.GreenString("migrations applied to %s", cfg.Database.Name))
		return nil
	},
}

func init() {
	migrateCmd.Flags().StringVar(&migrationsPath, "migrations", "migrations", "path to migrations directory")
}
