package feed

import (
	"sort"
	"time"

	"ContentForge/internal/domain"
)

const (
	// RecencyWindow bounds items admitted to the standard aggregation pass.
	RecencyWindow = 7 * 24 * time.Hour
	// DigestWindow bounds items admitted to the daily digest.
	DigestWindow = 24 * time.Hour
)

// FilterRecent keeps items published within [now-window, now], newest first.
// Items whose publish date could not be parsed carry the zero time and are
// always excluded.
func FilterRecent(items []domain.FeedItem, now time.Time, window time.Duration) []domain.FeedItem {
	cutoff := now.Add(-window)

	recent := make([]domain.FeedItem, 0, len(items))
	for _, item := range items {
		if item.PublishedAt.IsZero() {
			continue
		}
		if item.PublishedAt.Before(cutoff) || item.PublishedAt.After(now) {
			continue
		}
		recent = append(recent, item)
	}

	sort.SliceStable(recent, func(i, j int) bool {
		return recent[i].PublishedAt.After(recent[j].PublishedAt)
	})

	return recent
}
