package feed

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"golang.org/x/sync/errgroup"

	"ContentForge/internal/config"
	"ContentForge/internal/domain"
	"ContentForge/internal/ports"
)

const acceptHeader = "application/rss+xml, application/xml, text/xml, */*"

// Fetcher pulls all configured feeds concurrently. A failing feed contributes
// zero items and a warning; it never fails the cycle. No state survives
// between cycles: every call is a full re-fetch.
type Fetcher struct {
	client *http.Client
	feeds  []config.FeedConfig
	logger *slog.Logger
}

var _ ports.FeedSource = (*Fetcher)(nil)

// NewFetcher wires an HTTP client; a nil client gets a 20s timeout default.
func NewFetcher(client *http.Client, feeds []config.FeedConfig, logger *slog.Logger) *Fetcher {
	if client == nil {
		client = &http.Client{Timeout: 20 * time.Second}
	}
	return &Fetcher{client: client, feeds: feeds, logger: logger}
}

// Fetch fans out over the configured sources and returns the merged item list
// plus a per-feed count summary (counted before any recency filtering).
func (f *Fetcher) Fetch(ctx context.Context) ([]domain.FeedItem, []domain.FeedSummary, error) {
	perFeed := make([][]domain.FeedItem, len(f.feeds))

	var g errgroup.Group
	for i, src := range f.feeds {
		i, src := i, src
		g.Go(func() error {
			items, err := f.fetchOne(ctx, src)
			if err != nil {
				f.warn("feed fetch failed", "feed", src.Name, "url", src.URL, "error", err)
				return nil
			}
			perFeed[i] = items
			return nil
		})
	}
	_ = g.Wait()

	var aggregated []domain.FeedItem
	summaries := make([]domain.FeedSummary, 0, len(f.feeds))
	for i, src := range f.feeds {
		aggregated = append(aggregated, perFeed[i]...)
		summaries = append(summaries, domain.FeedSummary{Feed: src.Name, Count: len(perFeed[i])})
	}

	f.debug("fetch cycle done", "feeds", len(f.feeds), "items", len(aggregated))
	return aggregated, summaries, nil
}

func (f *Fetcher) fetchOne(ctx context.Context, src config.FeedConfig) ([]domain.FeedItem, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, src.URL, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("User-Agent", "ContentForge/1.0")
	req.Header.Set("Accept", acceptHeader)

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request feed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("feed returned %s", resp.Status)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}

	items, format := parseFeed(string(body), src.Name, src.Category)
	f.debug("feed parsed", "feed", src.Name, "format", formatName(format), "items", len(items))
	return items, nil
}

func formatName(format feedFormat) string {
	switch format {
	case formatRSS:
		return "rss"
	case formatAtom:
		return "atom"
	default:
		return "empty"
	}
}

func (f *Fetcher) warn(msg string, args ...any) {
	if f.logger != nil {
		f.logger.Warn(msg, args...)
	}
}

func (f *Fetcher) debug(msg string, args ...any) {
	if f.logger != nil {
		f.logger.Debug(msg, args...)
	}
}
