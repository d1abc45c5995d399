// Package watcher warns holders whose seats are about to be released. It never
// changes a hold: expiry itself is the hold store's TTL.
package watcher

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/metinatakli/cinema-booking-core/internal/clock"
	"github.com/metinatakli/cinema-booking-core/internal/domain"
	"github.com/metinatakli/cinema-booking-core/internal/lock"
	"golang.org/x/time/rate"
)

const (
	DefaultInterval  = time.Minute
	DefaultThreshold = 120 * time.Second
	DefaultRate      = 20

	scanLockKey = "watcher:expiry-scan"
)

type Config struct {
	Interval  time.Duration
	Threshold time.Duration
	// Rate caps notifications per second across all holders.
	Rate float64
	// Locker, when set, lets only one replica scan per tick.
	Locker domain.Locker
}

type ExpiryWatcher struct {
	holds    domain.HoldStore
	notifier domain.Notifier
	clock    clock.Clock
	logger   *slog.Logger
	limiter  *rate.Limiter
	locker   domain.Locker

	interval  time.Duration
	threshold time.Duration
}

func New(
	holds domain.HoldStore,
	notifier domain.Notifier,
	clk clock.Clock,
	logger *slog.Logger,
	cfg Config) *ExpiryWatcher {

	if cfg.Interval <= 0 {
		cfg.Interval = DefaultInterval
	}

	if cfg.Threshold <= 0 {
		cfg.Threshold = DefaultThreshold
	}

	limit := rate.Limit(cfg.Rate)
	if cfg.Rate <= 0 {
		limit = rate.Inf
	}

	return &ExpiryWatcher{
		holds:     holds,
		notifier:  notifier,
		clock:     clk,
		logger:    logger,
		limiter:   rate.NewLimiter(limit, 1),
		locker:    cfg.Locker,
		interval:  cfg.Interval,
		threshold: cfg.Threshold,
	}
}

// Run scans on every tick until ctx is done.
func (w *ExpiryWatcher) Run(ctx context.Context) {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	w.logger.Info("expiry watcher started", "interval", w.interval, "threshold", w.threshold)

	for {
		select {
		case <-ctx.Done():
			w.logger.Info("expiry watcher stopped")
			return
		case <-ticker.C:
			w.scan(ctx)
		}
	}
}

func (w *ExpiryWatcher) scan(ctx context.Context) {
	if w.locker == nil {
		w.RunOnce(ctx)
		return
	}

	err := lock.RunExclusive(ctx, w.locker, scanLockKey, w.interval, 0, func(ctx context.Context) error {
		w.RunOnce(ctx)
		return nil
	})

	switch {
	case errors.Is(err, domain.ErrLockTimeout):
		w.logger.DebugContext(ctx, "expiry scan skipped, another replica holds the lock")
	case err != nil:
		w.logger.WarnContext(ctx, "expiry scan lock failed", "error", err)
	}
}

// RunOnce warns every holder whose hold expires within the threshold and has
// not been warned yet. It returns how many warnings went out. Failures are
// logged and skipped.
func (w *ExpiryWatcher) RunOnce(ctx context.Context) int {
	holds, err := w.holds.ExpiringWithin(ctx, w.threshold)
	if err != nil {
		w.logger.WarnContext(ctx, "failed to scan expiring holds", "error", err)
		return 0
	}

	sent := 0

	for _, hold := range holds {
		remaining := hold.TimeRemaining(w.clock.Now())
		if remaining <= 0 {
			continue
		}

		// the marker outlives the hold so a slow scan cannot warn twice
		first, err := w.holds.MarkWarned(ctx, hold.ID, remaining+w.interval)
		if err != nil {
			w.logger.WarnContext(ctx, "failed to mark hold as warned", "holdId", hold.ID, "error", err)
			continue
		}

		if !first {
			continue
		}

		if err := w.limiter.Wait(ctx); err != nil {
			return sent
		}

		if err := w.notifier.Notify(ctx, warning(hold)); err != nil {
			w.logger.WarnContext(ctx, "failed to send expiry warning", "holdId", hold.ID, "error", err)
			continue
		}

		w.logger.DebugContext(ctx, "expiry warning sent", "holdId", hold.ID, "remaining", remaining)
		sent++
	}

	return sent
}

func warning(hold domain.Hold) domain.Notification {
	return domain.Notification{
		Kind:       domain.NotifyHoldExpiring,
		HolderID:   hold.HolderID,
		Email:      hold.ContactEmail,
		HoldID:     hold.ID,
		ShowtimeID: hold.ShowtimeID,
		MovieName:  hold.MovieName,
		SeatIDs:    hold.SeatIDs(),
		ExpiresAt:  hold.ExpiresAt,
	}
}
