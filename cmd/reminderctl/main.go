// Command reminderctl is the operational CLI for the reminder backend.
//
// Usage:
//
//	reminderctl sweep
//	reminderctl migrate up
//	reminderctl migrate down
//	reminderctl migrate status
package main

import (
	"database/sql"
	"fmt"
	"log/slog"
	"os"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/joho/godotenv"
	"github.com/pressly/goose/v3"
	"github.com/spf13/cobra"

	"github.com/wanderlist-app/reminder-api/internal/adapters/fcm"
	postgres "github.com/wanderlist-app/reminder-api/internal/adapters/postgres"
	pgnotifstore "github.com/wanderlist-app/reminder-api/internal/adapters/postgres/notifstore"
	pgtripstore "github.com/wanderlist-app/reminder-api/internal/adapters/postgres/tripstore"
	pguserstore "github.com/wanderlist-app/reminder-api/internal/adapters/postgres/userstore"
	"github.com/wanderlist-app/reminder-api/internal/app/reminders"
	platformclock "github.com/wanderlist-app/reminder-api/internal/platform/clock"
	"github.com/wanderlist-app/reminder-api/internal/platform/config"
	"github.com/wanderlist-app/reminder-api/migrations"
)

var logger = slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))

func main() {
	// Load .env if present
	_ = godotenv.Load(".env")

	root := &cobra.Command{
		Use:   "reminderctl",
		Short: "Trip reminder backend operational CLI",
	}

	root.AddCommand(sweepCmd())
	root.AddCommand(migrateCmd())

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

// sweepCmd runs exactly one reminder sweep and exits. Hosts without a
// long-running process (cron, scheduled jobs) invoke this on their timer.
func sweepCmd() *cobra.Command {
	var dryRun bool
	cmd := &cobra.Command{
		Use:   "sweep",
		Short: "Run one reminder sweep over all trips",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			if cfg.StorageBackend != "postgres" {
				return fmt.Errorf("sweep requires STORAGE_BACKEND=postgres")
			}

			ctx := cmd.Context()
			pool, err := postgres.NewPool(ctx, cfg.DatabaseURL, postgres.PoolOptions{})
			if err != nil {
				return err
			}
			defer pool.Close()

			gateway := fcm.NewClient(cfg.FCMSendURL, cfg.FCMServerKey, cfg.FCMRateLimitPerMin, logger)

			svc := reminders.NewService(
				pgtripstore.NewStore(pool),
				pguserstore.NewStore(pool),
				pgnotifstore.NewStore(pool),
				gateway,
				platformclock.NewSystemClock(),
				logger,
			)
			svc.Concurrency = cfg.SweepConcurrency
			svc.DryRun = dryRun
			if dryRun {
				logger.Info("dry run: due reminders are logged, nothing is sent or recorded")
			}

			stats, err := svc.Sweep(ctx)
			if err != nil {
				return err
			}
			logger.Info("sweep finished",
				"trips", stats.Trips,
				"recipients", stats.Recipients,
				"sent", stats.Sent,
				"skipped", stats.Skipped,
				"failed", stats.Failed,
			)
			return nil
		},
	}
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "evaluate and log without sending pushes")
	return cmd
}

func migrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Manage database schema migrations",
	}
	cmd.AddCommand(
		migrateSubCmd("up", "Apply all pending migrations", goose.Up),
		migrateSubCmd("down", "Roll back the most recent migration", goose.Down),
		migrateSubCmd("status", "Print migration status", goose.Status),
	)
	return cmd
}

func migrateSubCmd(use, short string, fn func(*sql.DB, string, ...goose.OptionsFunc) error) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		RunE: func(cmd *cobra.Command, args []string) error {
			dsn := os.Getenv("DATABASE_URL")
			if dsn == "" {
				return fmt.Errorf("DATABASE_URL must be set")
			}
			db, err := sql.Open("pgx", dsn)
			if err != nil {
				return fmt.Errorf("open database: %w", err)
			}
			defer db.Close()
			if err := db.PingContext(cmd.Context()); err != nil {
				return fmt.Errorf("ping database: %w", err)
			}

			goose.SetBaseFS(migrations.FS)
			if err := goose.SetDialect("postgres"); err != nil {
				return err
			}
			return fn(db, ".")
		},
	}
}

