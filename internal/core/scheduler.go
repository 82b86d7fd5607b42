package core

import (
	"context"
	"log/slog"
	"time"
)

// RefreshStore finds stored recipes due for a refresh and records each
// attempt. *store.Store satisfies it.
type RefreshStore interface {
	StaleSourceURLs(ctx context.Context, before time.Time, limit int) ([]string, error)
	MarkRefreshAttempted(ctx context.Context, sourceURLs []string, at time.Time) error
}

// RefreshScheduler re-imports stored recipes whose last import is older than
// maxAge, so edits on the source site or video reach the store.
type RefreshScheduler struct {
	importer *ImportService
	store    RefreshStore
	interval time.Duration
	maxAge   time.Duration
	batch    int
	workers  int
	logger   *slog.Logger
}

func NewRefreshScheduler(importer *ImportService, st RefreshStore, interval, maxAge time.Duration, workers int, logger *slog.Logger) *RefreshScheduler {
	if logger == nil {
		logger = slog.Default()
	}
	return &RefreshScheduler{
		importer: importer,
		store:    st,
		interval: interval,
		maxAge:   maxAge,
		batch:    100,
		workers:  workers,
		logger:   logger,
	}
}

// Start runs the refresh loop in the background until ctx is done. A
// non-positive interval leaves the scheduler idle.
func (s *RefreshScheduler) Start(ctx context.Context) {
	if s.interval <= 0 {
		s.logger.Info("refresh: disabled", "interval", s.interval)
		return
	}
	go s.run(ctx)
}

func (s *RefreshScheduler) run(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	// Run immediately on startup
	s.RefreshOnce(ctx)

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.RefreshOnce(ctx)
		}
	}
}

// RefreshOnce re-imports one batch of stale recipes and returns the outcomes.
func (s *RefreshScheduler) RefreshOnce(ctx context.Context) []ImportOutcome {
	urls, err := s.store.StaleSourceURLs(ctx, time.Now().Add(-s.maxAge), s.batch)
	if err != nil {
		s.logger.Error("refresh: failed to list stale recipes", "error", err)
		return nil
	}
	if len(urls) == 0 {
		return nil
	}
	// every attempt counts, failed or not
	if err := s.store.MarkRefreshAttempted(ctx, urls, time.Now()); err != nil {
		s.logger.Warn("refresh: failed to record attempt", "error", err)
	}

	outcomes := s.importer.ImportMany(ctx, urls, s.workers)
	failed := 0
	for _, o := range outcomes {
		if o.Error != "" {
			failed++
			s.logger.Warn("refresh: re-import failed", "url", o.URL, "kind", o.Kind, "error", o.Error)
		}
	}
	s.logger.Info("refresh: batch done", "recipes", len(outcomes), "failed", failed)
	return outcomes
}
