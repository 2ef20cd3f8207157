// Command api serves the push relay endpoint and runs the trip-reminder sweep
// worker. Its sole responsibility is wiring dependencies together; no business
// logic belongs here.
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/wanderlist-app/reminder-api/internal/adapters/fcm"
	"github.com/wanderlist-app/reminder-api/internal/adapters/httpapi"
	memnotifstore "github.com/wanderlist-app/reminder-api/internal/adapters/memory/notifstore"
	mempushgateway "github.com/wanderlist-app/reminder-api/internal/adapters/memory/pushgateway"
	memtripstore "github.com/wanderlist-app/reminder-api/internal/adapters/memory/tripstore"
	memuserstore "github.com/wanderlist-app/reminder-api/internal/adapters/memory/userstore"
	postgres "github.com/wanderlist-app/reminder-api/internal/adapters/postgres"
	pgnotifstore "github.com/wanderlist-app/reminder-api/internal/adapters/postgres/notifstore"
	pgtripstore "github.com/wanderlist-app/reminder-api/internal/adapters/postgres/tripstore"
	pguserstore "github.com/wanderlist-app/reminder-api/internal/adapters/postgres/userstore"
	"github.com/wanderlist-app/reminder-api/internal/app/relay"
	"github.com/wanderlist-app/reminder-api/internal/app/reminders"
	platformclock "github.com/wanderlist-app/reminder-api/internal/platform/clock"
	"github.com/wanderlist-app/reminder-api/internal/platform/config"
	notifstoreport "github.com/wanderlist-app/reminder-api/internal/ports/out/notifstore"
	pushgatewayport "github.com/wanderlist-app/reminder-api/internal/ports/out/pushgateway"
	tripstoreport "github.com/wanderlist-app/reminder-api/internal/ports/out/tripstore"
	userstoreport "github.com/wanderlist-app/reminder-api/internal/ports/out/userstore"
)

func main() {
	// Load .env if present
	_ = godotenv.Load(".env")

	cfg, err := config.Load()
	if err != nil {
		slog.Error("configuration error", "error", err)
		os.Exit(1)
	}

	var logLevel slog.Level
	if err := logLevel.UnmarshalText([]byte(cfg.LogLevel)); err != nil {
		logLevel = slog.LevelInfo
	}
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: logLevel}))
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var (
		tripStore  tripstoreport.Store
		userStore  userstoreport.Store
		notifStore notifstoreport.Store
	)

	switch cfg.StorageBackend {
	case "postgres":
		pool, err := postgres.NewPool(ctx, cfg.DatabaseURL, postgres.PoolOptions{})
		if err != nil {
			logger.Error("postgres setup failed", "error", err)
			os.Exit(1)
		}
		defer pool.Close()
		logger.Info("database connection established")

		tripStore = pgtripstore.NewStore(pool)
		userStore = pguserstore.NewStore(pool)
		notifStore = pgnotifstore.NewStore(pool)
	default:
		tripStore = memtripstore.NewStore()
		userStore = memuserstore.NewStore()
		notifStore = memnotifstore.NewStore()
	}

	var gateway pushgatewayport.Gateway
	if cfg.FCMServerKey != "" {
		gateway = fcm.NewClient(cfg.FCMSendURL, cfg.FCMServerKey, cfg.FCMRateLimitPerMin, logger)
	} else {
		// Only reachable with the memory backend; config.Load rejects a
		// postgres backend without credentials. Sends are recorded in memory
		// so local development works end to end without a push project.
		gateway = mempushgateway.NewGateway()
		logger.Warn("FCM_SERVER_KEY not set, pushes are recorded in memory only")
	}

	clk := platformclock.NewSystemClock()

	remindersSvc := reminders.NewService(tripStore, userStore, notifStore, gateway, clk, logger)
	remindersSvc.Concurrency = cfg.SweepConcurrency
	go reminders.StartWorker(ctx, remindersSvc, cfg.SweepInterval, logger)

	relaySvc := relay.NewService(gateway)
	handler := httpapi.NewRouter(relaySvc, httpapi.RouterOptions{
		Logger:      logger,
		CORSOrigins: cfg.CORSOrigins,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      10 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		logger.Info("api listening", "addr", srv.Addr, "backend", cfg.StorageBackend)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("listen failed", "error", err)
			os.Exit(1)
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = srv.Shutdown(shutdownCtx)
}
