package domain

import "time"

// FeedItem is a normalized entry extracted from a syndication feed.
// Items are ephemeral: they live for one fetch cycle and are never persisted.
type FeedItem struct {
	Title       string
	Link        string
	Description string
	PublishedAt time.Time
	Source      string
	Category    string
}

// FeedSummary reports how many items a single feed produced in a fetch cycle.
// Counts are taken before recency filtering so operators see total fetched.
type FeedSummary struct {
	Feed  string
	Count int
}
