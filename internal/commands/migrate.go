package commands

import (
	"database/sql"
	"errors"
	"fmt"
	"os"

	_ "github.com/jackc/pgx/v5/stdlib" // registers "pgx" driver for database/sql
	"github.com/spf13/cobra"

	"github.com/pkordes/eldplan/internal/config"
	"github.com/pkordes/eldplan/migrations"
)

var (
	migrateDSN  string
	migrateDown bool
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply the Postgres schema for the trip slot store",
	Long: `migrate applies every pending migration to the database in DATABASE_URL
(or --database-url). With --down it rolls back the most recent one.
The SQLite store creates its own table and needs no migration.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}
		logger := newLogger(os.Stdout, cfg.LogLevel)

		dsn := migrateDSN
		if dsn == "" {
			dsn = cfg.DatabaseURL
		}
		if dsn == "" {
			return errors.New("commands.migrate: DATABASE_URL or --database-url is required")
		}

		db, err := sql.Open("pgx", dsn)
		if err != nil {
			return fmt.Errorf("commands.migrate: open: %w", err)
		}
		defer db.Close()

		provider, err := migrations.NewProvider(db)
		if err != nil {
			return fmt.Errorf("commands.migrate: provider: %w", err)
		}

		ctx := cmd.Context()
		if migrateDown {
			res, err := provider.Down(ctx)
			if err != nil {
				return fmt.Errorf("commands.migrate: down: %w", err)
			}
			logger.Info("migration rolled back", "version", res.Source.Version, "duration_ms", res.Duration.Milliseconds())
			return nil
		}

		results, err := provider.Up(ctx)
		if err != nil {
			return fmt.Errorf("commands.migrate: up: %w", err)
		}
		for _, res := range results {
			logger.Info("migration applied", "version", res.Source.Version, "path", res.Source.Path, "duration_ms", res.Duration.Milliseconds())
		}
		if len(results) == 0 {
			logger.Info("schema up to date")
		}
		return nil
	},
}

func init() {
	migrateCmd.Flags().StringVar(&migrateDSN, "database-url", "", "Postgres connection string (defaults to DATABASE_URL)")
	migrateCmd.Flags().BoolVar(&migrateDown, "down", false, "roll back the most recent migration")
}
