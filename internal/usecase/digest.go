package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"ContentForge/internal/feed"
	"ContentForge/internal/ports"
)

// DigestRunner drives the daily-digest path: fetch all feeds, keep the last
// 24 hours, and hand the aggregate to the orchestrator's digest mode.
type DigestRunner struct {
	source       ports.FeedSource
	orchestrator *Orchestrator
	logger       *slog.Logger
}

// NewDigestRunner wires the feed source and orchestrator.
func NewDigestRunner(source ports.FeedSource, orchestrator *Orchestrator, logger *slog.Logger) *DigestRunner {
	return &DigestRunner{source: source, orchestrator: orchestrator, logger: logger}
}

// RunDaily produces at most one digest article for the given day and returns
// its id. ErrDigestExists and ErrNoDigestItems are expected idle outcomes.
func (d *DigestRunner) RunDaily(ctx context.Context, now time.Time) (string, error) {
	items, summaries, err := d.source.Fetch(ctx)
	if err != nil {
		return "", fmt.Errorf("fetch feeds: %w", err)
	}

	if d.logger != nil {
		for _, summary := range summaries {
			d.logger.Debug("feed fetched", "feed", summary.Feed, "items", summary.Count)
		}
	}

	recent := feed.FilterRecent(items, now, feed.DigestWindow)
	return d.orchestrator.GenerateDigest(ctx, recent, now)
}
