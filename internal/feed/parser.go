package feed

import (
	"regexp"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"ContentForge/internal/domain"
)

// feedFormat tags which dialect produced the items of a parse pass.
type feedFormat int

const (
	formatEmpty feedFormat = iota
	formatRSS
	formatAtom
)

var (
	itemExpr     = tagExpr("item")
	entryExpr    = tagExpr("entry")
	titleExpr    = tagExpr("title")
	linkExpr     = tagExpr("link")
	descExpr     = tagExpr("description")
	pubDateExpr  = tagExpr("pubDate")
	summaryExpr  = tagExpr("summary")
	updatedExpr  = tagExpr("updated")
	atomHrefExpr = regexp.MustCompile(`(?is)<link[^>]*href\s*=\s*["']([^"']+)["']`)
	cdataExpr    = regexp.MustCompile(`(?is)<!\[CDATA\[(.*?)\]\]>`)
	spaceExpr    = regexp.MustCompile(`\s+`)
)

func tagExpr(tag string) *regexp.Regexp {
	return regexp.MustCompile(`(?is)<` + tag + `(?:\s[^>]*)?>(.*?)</` + tag + `>`)
}

// parseFeed extracts items from either feed dialect. RSS <item> blocks are
// tried first; when none match, Atom <entry> blocks are attempted. Parsing
// never fails: unmatched input yields an empty result.
func parseFeed(body, source, category string) ([]domain.FeedItem, feedFormat) {
	if items := parseRSSItems(body, source, category); len(items) > 0 {
		return items, formatRSS
	}
	if items := parseAtomEntries(body, source, category); len(items) > 0 {
		return items, formatAtom
	}
	return nil, formatEmpty
}

func parseRSSItems(body, source, category string) []domain.FeedItem {
	var items []domain.FeedItem
	for _, match := range itemExpr.FindAllStringSubmatch(body, -1) {
		block := match[1]

		title := cleanText(extract(titleExpr, block))
		link := extractLink(extract(linkExpr, block))
		if title == "" || link == "" {
			continue
		}

		items = append(items, domain.FeedItem{
			Title:       title,
			Link:        link,
			Description: cleanText(extract(descExpr, block)),
			PublishedAt: parsePublishTime(extract(pubDateExpr, block)),
			Source:      source,
			Category:    category,
		})
	}
	return items
}

func parseAtomEntries(body, source, category string) []domain.FeedItem {
	var items []domain.FeedItem
	for _, match := range entryExpr.FindAllStringSubmatch(body, -1) {
		block := match[1]

		title := cleanText(extract(titleExpr, block))
		link := extractAtomLink(block)
		if title == "" || link == "" {
			continue
		}

		items = append(items, domain.FeedItem{
			Title:       title,
			Link:        link,
			Description: cleanText(extract(summaryExpr, block)),
			PublishedAt: parsePublishTime(extract(updatedExpr, block)),
			Source:      source,
			Category:    category,
		})
	}
	return items
}

func extract(expr *regexp.Regexp, block string) string {
	if match := expr.FindStringSubmatch(block); match != nil {
		return match[1]
	}
	return ""
}

func extractLink(raw string) string {
	return strings.TrimSpace(unwrapCDATA(raw))
}

func extractAtomLink(block string) string {
	if match := atomHrefExpr.FindStringSubmatch(block); match != nil {
		return strings.TrimSpace(match[1])
	}
	return ""
}

// cleanText unwraps CDATA sections, strips residual markup and entities, and
// collapses whitespace runs into single spaces.
func cleanText(raw string) string {
	text := unwrapCDATA(raw)
	if doc, err := goquery.NewDocumentFromReader(strings.NewReader(text)); err == nil {
		text = doc.Text()
	}
	return strings.TrimSpace(spaceExpr.ReplaceAllString(text, " "))
}

func unwrapCDATA(raw string) string {
	return cdataExpr.ReplaceAllString(raw, "$1")
}

var dateLayouts = []string{
	time.RFC1123Z,
	time.RFC1123,
	time.RFC822Z,
	time.RFC822,
	time.RFC3339,
	"Mon, 2 Jan 2006 15:04:05 -0700",
	"2006-01-02T15:04:05Z",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// parsePublishTime tries the known feed date layouts; unparseable values
// produce the zero time, which downstream filtering treats as out-of-window.
func parsePublishTime(raw string) time.Time {
	value := strings.TrimSpace(unwrapCDATA(raw))
	if value == "" {
		return time.Time{}
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t
		}
	}
	return time.Time{}
}
