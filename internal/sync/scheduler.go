package sync

// scheduler.go provides background scheduling for periodic sync runs.
//
// The scheduler runs all three domains immediately on start, then every
// interval. It is long-running and context-aware for graceful shutdown.
// Individual run failures are logged but never stop the scheduler; a run
// skipped because one is already in flight is logged at debug level.

import (
	"context"
	"errors"
	"log/slog"
	"time"
)

// StartScheduler runs periodic syncs until ctx is cancelled. interval must
// be positive; callers disable scheduling by not starting it.
func (s *Service) StartScheduler(ctx context.Context, interval time.Duration) {
	slog.Info("sync scheduler started", "interval", interval)

	s.runScheduled(ctx)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			slog.Info("sync scheduler stopped")
			return
		case <-ticker.C:
			s.runScheduled(ctx)
		}
	}
}

// runScheduled performs one full cycle: products, then price lists, then
// images.
func (s *Service) runScheduled(ctx context.Context) {
	for _, run := range []struct {
		domain string
		fn     func(context.Context) (RunSummary, error)
	}{
		{DomainProducts, s.SyncProducts},
		{DomainPriceLists, s.SyncPriceLists},
		{DomainImages, s.SyncImages},
	} {
		start := time.Now()
		sum, err := run.fn(ctx)
		switch {
		case errors.Is(err, ErrSyncInProgress):
			slog.Debug("scheduled sync skipped, run already in flight", "domain", run.domain)
		case err != nil:
			slog.Error("scheduled sync failed", "domain", run.domain, "error", err)
		default:
			slog.Info("scheduled sync completed",
				"domain", run.domain,
				"succeeded", sum.Succeeded,
				"failed", sum.Failed,
				"duration_ms", time.Since(start).Milliseconds(),
			)
		}
	}
}
