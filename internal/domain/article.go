package domain

import "time"

// ArticleStatus enumerates editorial lifecycle states. StatusError marks
// diagnostic records persisted when a generation response could not be parsed;
// they share the article store so failures stay inspectable.
type ArticleStatus string

const (
	ArticleStatusDraft     ArticleStatus = "draft"
	ArticleStatusPublished ArticleStatus = "published"
	ArticleStatusArchived  ArticleStatus = "archived"
	ArticleStatusError     ArticleStatus = "error"
)

// DigestCategory marks articles produced by the daily digest path. At most
// one digest article may exist per calendar day.
const DigestCategory = "digest"

// Citation references a source the generation service reported using.
type Citation struct {
	Source string `json:"source"`
	URL    string `json:"url"`
	Quote  string `json:"quote,omitempty"`
}

// GeneratedArticle is the persisted output of one generation run.
// An article is publicly visible only when Status is published and IsActive
// is true; both conditions are enforced at query time.
type GeneratedArticle struct {
	ID           string
	Title        string
	Content      string
	Summary      string
	Category     string
	Tags         []string
	Status       ArticleStatus
	KeyTakeaways []string
	Citations    []Citation
	Engine       string
	GeneratedAt  time.Time
	RawOutput    string
	JobID        string
	PublishedAt  *time.Time
	ReadingTime  int
	IsActive     bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Completion is the normalized reply of the external generation service.
type Completion struct {
	Content   string
	Citations []string
}
