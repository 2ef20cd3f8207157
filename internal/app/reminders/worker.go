package reminders

import (
	"context"
	"log/slog"
	"time"
)

// StartWorker runs the sweep on a fixed interval until ctx is cancelled.
// Intended to be called with `go`. Sweeps do not overlap: the next tick waits
// for the previous sweep to return.
func StartWorker(ctx context.Context, svc *Service, interval time.Duration, logger *slog.Logger) {
	if logger == nil {
		logger = slog.Default()
	}
	logger.Info("reminder sweep worker started", "interval", interval)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			stats, err := svc.Sweep(ctx)
			if err != nil {
				logger.Error("sweep failed", "error", err)
				continue
			}
			// Every sweep reports its counters; quiet ones at debug so a
			// minutely interval does not flood the info log.
			level := slog.LevelInfo
			if stats.Sent+stats.Failed == 0 {
				level = slog.LevelDebug
			}
			logger.Log(ctx, level, "sweep finished",
				"trips", stats.Trips,
				"recipients", stats.Recipients,
				"sent", stats.Sent,
				"skipped", stats.Skipped,
				"failed", stats.Failed,
			)
		case <-ctx.Done():
			logger.Info("reminder sweep worker stopped")
			return
		}
	}
}
