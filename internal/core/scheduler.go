package core

// scheduler.go runs background maintenance:
//  1. Drop export drafts idle for longer than the draft TTL
//  2. Purge expired sessions from the store
//
// The sweeper is long-running and context-aware for graceful shutdown. It
// logs failures but never stops the application.

import (
	"context"
	"log/slog"
	"time"
)

// DefaultSweepInterval is used when StartDraftSweeper gets a non-positive
// interval.
const DefaultSweepInterval = 5 * time.Minute

// StartDraftSweeper removes expired drafts and sessions immediately, then
// every interval, until ctx is cancelled.
func (s *Service) StartDraftSweeper(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = DefaultSweepInterval
	}
	slog.Info("draft sweeper started",
		"interval", interval,
		"draft_ttl", s.opts.DraftTTL,
	)

	s.runSweep(ctx)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			slog.Info("draft sweeper stopped")
			return
		case <-ticker.C:
			s.runSweep(ctx)
		}
	}
}

// runSweep performs one sweep cycle.
func (s *Service) runSweep(ctx context.Context) {
	start := time.Now()
	now := s.now()

	if removed := s.SweepDrafts(now); removed > 0 {
		slog.Info("expired export drafts removed",
			"drafts_removed", removed,
			"drafts_live", s.DraftCount(),
		)
	}

	purged, err := s.PurgeExpiredSessions(ctx)
	if err != nil {
		if ctx.Err() == nil {
			slog.Error("session purge failed", "error", err)
		}
	} else if purged > 0 {
		slog.Info("expired sessions purged", "sessions_purged", purged)
	}

	slog.Debug("sweep completed", "duration_ms", time.Since(start).Milliseconds())
}
