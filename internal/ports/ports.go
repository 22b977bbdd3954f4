package ports

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"ContentForge/internal/domain"
)

var (
	// ErrJobNotFound is returned when a job id matches no active row.
	ErrJobNotFound = errors.New("job not found")
	// ErrArticleNotFound is returned when an article id matches no active row.
	ErrArticleNotFound = errors.New("article not found")
	// ErrIllegalTransition is returned when a status update does not match the
	// allowed lifecycle edges (pending->processing, processing->completed|failed).
	ErrIllegalTransition = errors.New("illegal job status transition")
)

// FeedSource pulls normalized items from all configured syndication feeds.
// Individual feed failures degrade the item set; they never surface as an error.
type FeedSource interface {
	Fetch(ctx context.Context) ([]domain.FeedItem, []domain.FeedSummary, error)
}

// JobStore persists the scheduled-generation queue.
type JobStore interface {
	Create(ctx context.Context, job domain.ScheduledJob) (domain.ScheduledJob, error)
	Update(ctx context.Context, id string, patch domain.JobPatch) error
	SoftDelete(ctx context.Context, id string) error
	GetDue(ctx context.Context, now time.Time) ([]domain.ScheduledJob, error)
	GetUpcoming(ctx context.Context, now time.Time, days int) ([]domain.ScheduledJob, error)
	Stats(ctx context.Context, now time.Time) (domain.JobStats, error)

	// UpdateStatus is reserved for the batch processor and orchestrator; it is
	// the only path that moves a job through its lifecycle and attaches the
	// resulting article id or failure message.
	UpdateStatus(ctx context.Context, id string, status domain.JobStatus, articleID, errMsg string) error
}

// ArticleStore persists generated articles and diagnostic records.
type ArticleStore interface {
	Create(ctx context.Context, article domain.GeneratedArticle) (domain.GeneratedArticle, error)
	GetByID(ctx context.Context, id string) (domain.GeneratedArticle, error)
	Publish(ctx context.Context, id string) error
	Archive(ctx context.Context, id string) error
	SoftDelete(ctx context.Context, id string) error
	ListPublished(ctx context.Context, limit int) ([]domain.GeneratedArticle, error)
	HasDigestForDay(ctx context.Context, day time.Time) (bool, error)
}

// GenerateParams carries one request to the external generation service.
type GenerateParams struct {
	Prompt string
	System string
	Schema json.RawMessage
}

// Generator drives the external text-generation service.
type Generator interface {
	Complete(ctx context.Context, params GenerateParams) (domain.Completion, error)
}

// Notifier posts operator-facing run summaries to an out-of-band channel.
type Notifier interface {
	PublishSummary(ctx context.Context, summary string) error
}

// Scheduler controls when the batch entrypoint executes.
type Scheduler interface {
	Start(ctx context.Context, job func(time.Time)) error
	Stop(ctx context.Context) error
}
