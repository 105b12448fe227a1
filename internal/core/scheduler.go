package core

// scheduler.go runs the session maintenance loop: idle sessions are evicted
// from memory and, for backends that need it, expired snapshots are purged.
// Failures are logged and never stop the loop.

import (
	"context"
	"log/slog"
	"time"

	"github.com/JonMunkholm/listingdesk/internal/storage"
)

// DefaultReapInterval is used when StartReaper gets a non-positive interval.
const DefaultReapInterval = 5 * time.Minute

// StartReaper blocks, running one maintenance pass every interval until ctx
// is cancelled.
func (m *SessionManager) StartReaper(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = DefaultReapInterval
	}
	slog.Info("session reaper started", "interval", interval, "idle_timeout", m.opts.IdleTimeout)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			slog.Info("session reaper stopped")
			return
		case <-ticker.C:
			m.runMaintenance(ctx)
		}
	}
}

// runMaintenance performs one reap and purge cycle.
func (m *SessionManager) runMaintenance(ctx context.Context) {
	start := time.Now()

	reaped := m.Reap()
	if reaped > 0 {
		slog.Info("idle sessions evicted", "evicted", reaped, "remaining", m.Len())
	}

	if p, ok := m.store.(storage.Purger); ok {
		purged, err := p.PurgeExpired(ctx)
		if err != nil {
			slog.Error("snapshot purge failed", "error", err)
		} else if purged > 0 {
			slog.Info("expired snapshots purged", "rows", purged)
		}
	}

	slog.Debug("session maintenance completed", "duration_ms", time.Since(start).Milliseconds())
}
