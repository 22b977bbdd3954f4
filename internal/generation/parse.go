package generation

import (
	"encoding/json"
	"errors"
	"regexp"
	"strings"
)

// ParseKind tags which branch of the fallback chain produced a draft.
type ParseKind int

const (
	// ParseStructured means the reply was valid JSON per the requested schema.
	ParseStructured ParseKind = iota
	// ParseTagged means the tag-delimited fallback dialect matched.
	ParseTagged
)

// ErrUnparseable is returned when neither response dialect matched. Callers
// persist a diagnostic record before propagating it.
var ErrUnparseable = errors.New("generation response matched no known dialect")

// ArticleDraft is the normalized generation output, identical in shape no
// matter which dialect the service replied in.
type ArticleDraft struct {
	Title        string   `json:"title"`
	Summary      string   `json:"summary"`
	Content      string   `json:"content"`
	KeyTakeaways []string `json:"keyTakeaways"`
	Tags         []string `json:"tags"`
	Categories   []string `json:"categories"`
}

var (
	fencedExpr   = regexp.MustCompile("(?s)^```(?:json)?\\s*(.*?)\\s*```$")
	preambleExpr = regexp.MustCompile(`(?is)^.*?</think>`)
)

var taggedFields = map[string]*regexp.Regexp{
	"title":        taggedExpr("Title"),
	"summary":      taggedExpr("Summary"),
	"content":      taggedExpr("Content"),
	"keyTakeaways": taggedExpr("KeyTakeaways"),
	"tags":         taggedExpr("Tags"),
}

func taggedExpr(tag string) *regexp.Regexp {
	return regexp.MustCompile(`(?is)<` + tag + `>(.*?)(?:</` + tag + `>|<[A-Z]|$)`)
}

// ParseArticleResponse normalizes a generation reply. Strict JSON (optionally
// fenced in a markdown code block) is tried first; the tag-delimited text
// dialect second, after discarding any reasoning preamble terminated by
// </think>. ErrUnparseable is returned when neither matches.
func ParseArticleResponse(raw string) (ArticleDraft, ParseKind, error) {
	if draft, ok := parseStructured(raw); ok {
		return draft, ParseStructured, nil
	}
	if draft, ok := parseTagged(raw); ok {
		return draft, ParseTagged, nil
	}
	return ArticleDraft{}, 0, ErrUnparseable
}

func parseStructured(raw string) (ArticleDraft, bool) {
	cleaned := strings.TrimSpace(raw)
	if match := fencedExpr.FindStringSubmatch(cleaned); match != nil {
		cleaned = match[1]
	}

	var draft ArticleDraft
	if err := json.Unmarshal([]byte(cleaned), &draft); err != nil {
		return ArticleDraft{}, false
	}
	if draft.Content == "" && draft.Summary == "" {
		return ArticleDraft{}, false
	}
	return draft, true
}

func parseTagged(raw string) (ArticleDraft, bool) {
	text := preambleExpr.ReplaceAllString(raw, "")

	values := map[string]string{}
	for field, expr := range taggedFields {
		if match := expr.FindStringSubmatch(text); match != nil {
			values[field] = strings.TrimSpace(match[1])
		}
	}

	if values["content"] == "" {
		return ArticleDraft{}, false
	}

	return ArticleDraft{
		Title:        values["title"],
		Summary:      values["summary"],
		Content:      values["content"],
		KeyTakeaways: splitList(values["keyTakeaways"]),
		Tags:         splitList(values["tags"]),
	}, true
}

// splitList turns a newline- or comma-separated block into trimmed entries,
// dropping leading list markers.
func splitList(block string) []string {
	if block == "" {
		return nil
	}

	sep := "\n"
	if !strings.Contains(block, "\n") {
		sep = ","
	}

	var entries []string
	for _, part := range strings.Split(block, sep) {
		entry := strings.TrimSpace(part)
		entry = strings.TrimLeft(entry, "-*• \t")
		entry = strings.TrimSpace(entry)
		if entry != "" {
			entries = append(entries, entry)
		}
	}
	return entries
}
