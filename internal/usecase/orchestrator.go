package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"ContentForge/internal/briefs"
	"ContentForge/internal/domain"
	"ContentForge/internal/generation"
	"ContentForge/internal/ports"
	"ContentForge/internal/sanitize"
)

const (
	// Corruption tripwires, not stylistic minimums: sanitized output this
	// short means the model reply was junk or the sanitizer ate it.
	minContentLength = 100
	minSummaryLength = 50

	wordsPerMinute = 200
)

var (
	// ErrDigestExists signals the at-most-one-digest-per-day invariant held.
	ErrDigestExists = errors.New("digest already generated today")
	// ErrNoDigestItems signals an empty recency window; no digest is produced.
	ErrNoDigestItems = errors.New("no recent feed items for digest")
)

// GenerateRequest describes one generation run. JobID is empty for ad-hoc
// (operator "generate now") invocations.
type GenerateRequest struct {
	Title        string
	Category     string
	CustomPrompt string
	JobID        string
}

// OrchestratorDeps wires driven adapters into the orchestrator.
type OrchestratorDeps struct {
	Generator ports.Generator
	Articles  ports.ArticleStore
	Jobs      ports.JobStore
	Briefs    *briefs.Registry
	Engine    string
	Logger    *slog.Logger
}

// Orchestrator turns a generation request into a persisted draft article:
// brief resolution, prompt composition, the external service call, response
// parsing with fallback, sanitization, validation, and persistence.
type Orchestrator struct {
	generator ports.Generator
	articles  ports.ArticleStore
	jobs      ports.JobStore
	briefs    *briefs.Registry
	engine    string
	logger    *slog.Logger
}

// NewOrchestrator constructs the orchestration component.
func NewOrchestrator(deps OrchestratorDeps) *Orchestrator {
	reg := deps.Briefs
	if reg == nil {
		reg = briefs.NewRegistry()
	}
	return &Orchestrator{
		generator: deps.Generator,
		articles:  deps.Articles,
		jobs:      deps.Jobs,
		briefs:    reg,
		engine:    deps.Engine,
		logger:    deps.Logger,
	}
}

// Generate runs one title-driven generation. For job-originated runs the job
// is patched to completed (with the article id) or failed (with the error
// message); either way the error is still returned to the caller.
func (o *Orchestrator) Generate(ctx context.Context, req GenerateRequest) (string, error) {
	articleID, err := o.run(ctx, req)

	if req.JobID != "" {
		status, article, message := domain.JobStatusCompleted, articleID, ""
		if err != nil {
			status, article, message = domain.JobStatusFailed, "", err.Error()
		}
		if statusErr := o.jobs.UpdateStatus(ctx, req.JobID, status, article, message); statusErr != nil {
			o.warn("job status update failed", "job", req.JobID, "status", status, "error", statusErr)
		}
	}

	return articleID, err
}

func (o *Orchestrator) run(ctx context.Context, req GenerateRequest) (string, error) {
	brief := o.briefs.Resolve(req.Category, req.CustomPrompt)

	completion, err := o.generator.Complete(ctx, ports.GenerateParams{
		Prompt: articlePrompt(req.Title, brief),
		Schema: generation.ArticleSchema,
	})
	if err != nil {
		return "", fmt.Errorf("generation call: %w", err)
	}

	draft, kind, err := generation.ParseArticleResponse(completion.Content)
	if err != nil {
		o.persistDiagnostic(ctx, req, completion.Content)
		return "", fmt.Errorf("parse generation response: %w", err)
	}

	article, err := o.buildArticle(req.Title, req.Category, req.JobID, draft, completion)
	if err != nil {
		return "", err
	}

	created, err := o.articles.Create(ctx, article)
	if err != nil {
		return "", fmt.Errorf("persist article: %w", err)
	}

	o.debug("article generated", "title", req.Title, "article", created.ID,
		"parse", parseKindName(kind), "readingTime", created.ReadingTime)
	return created.ID, nil
}

// buildArticle validates and sanitizes a draft and assembles the persistent
// record.
func (o *Orchestrator) buildArticle(title, category, jobID string, draft generation.ArticleDraft, completion domain.Completion) (domain.GeneratedArticle, error) {
	if draft.Content == "" {
		return domain.GeneratedArticle{}, fmt.Errorf("generation response missing content")
	}
	if draft.Summary == "" {
		return domain.GeneratedArticle{}, fmt.Errorf("generation response missing summary")
	}

	content := sanitize.Clean(draft.Content)
	summary := sanitize.Clean(draft.Summary)

	if len(content) < minContentLength {
		return domain.GeneratedArticle{}, fmt.Errorf("sanitized content implausibly short (%d chars)", len(content))
	}
	if len(summary) < minSummaryLength {
		return domain.GeneratedArticle{}, fmt.Errorf("sanitized summary implausibly short (%d chars)", len(summary))
	}

	return domain.GeneratedArticle{
		Title:        title,
		Content:      content,
		Summary:      summary,
		Category:     category,
		Tags:         draft.Tags,
		Status:       domain.ArticleStatusDraft,
		KeyTakeaways: draft.KeyTakeaways,
		Citations:    numberCitations(completion.Citations),
		Engine:       o.engine,
		GeneratedAt:  time.Now().UTC(),
		RawOutput:    completion.Content,
		JobID:        jobID,
		ReadingTime:  readingTime(content),
	}, nil
}

// persistDiagnostic stores an error-status record carrying the raw model
// output, so parse failures stay inspectable from the same article store.
func (o *Orchestrator) persistDiagnostic(ctx context.Context, req GenerateRequest, rawOutput string) {
	_, err := o.articles.Create(ctx, domain.GeneratedArticle{
		Title:       "Generation failed: " + req.Title,
		Category:    req.Category,
		Status:      domain.ArticleStatusError,
		Engine:      o.engine,
		GeneratedAt: time.Now().UTC(),
		RawOutput:   rawOutput,
		JobID:       req.JobID,
	})
	if err != nil {
		o.warn("diagnostic record not persisted", "title", req.Title, "error", err)
	}
}

// GenerateDigest synthesizes one daily-summary article from pre-aggregated
// feed items. It shares the sanitizer and article store with the per-title
// path but bypasses the job queue entirely.
func (o *Orchestrator) GenerateDigest(ctx context.Context, items []domain.FeedItem, now time.Time) (string, error) {
	if len(items) == 0 {
		return "", ErrNoDigestItems
	}

	exists, err := o.articles.HasDigestForDay(ctx, now)
	if err != nil {
		return "", fmt.Errorf("check existing digest: %w", err)
	}
	if exists {
		return "", ErrDigestExists
	}

	completion, err := o.generator.Complete(ctx, ports.GenerateParams{
		Prompt: digestPrompt(items),
		System: digestSystemInstruction,
		Schema: generation.DigestSchema,
	})
	if err != nil {
		return "", fmt.Errorf("digest generation call: %w", err)
	}

	draft, _, err := generation.ParseArticleResponse(completion.Content)
	if err != nil {
		o.persistDiagnostic(ctx, GenerateRequest{Title: digestFallbackTitle(now), Category: domain.DigestCategory}, completion.Content)
		return "", fmt.Errorf("parse digest response: %w", err)
	}

	title := strings.TrimSpace(draft.Title)
	if title == "" {
		title = digestFallbackTitle(now)
	}

	article, err := o.buildArticle(title, domain.DigestCategory, "", draft, completion)
	if err != nil {
		return "", err
	}
	if len(draft.Categories) > 0 {
		article.Tags = append(article.Tags, draft.Categories...)
	}

	created, err := o.articles.Create(ctx, article)
	if err != nil {
		return "", fmt.Errorf("persist digest: %w", err)
	}

	o.debug("digest generated", "article", created.ID, "items", len(items))
	return created.ID, nil
}

func digestFallbackTitle(now time.Time) string {
	return "Daily Digest for " + now.Format("January 2, 2006")
}

// numberCitations converts raw citation URLs to persisted records labeled
// Source 1..N in reply order.
func numberCitations(urls []string) []domain.Citation {
	if len(urls) == 0 {
		return nil
	}
	citations := make([]domain.Citation, 0, len(urls))
	for i, u := range urls {
		citations = append(citations, domain.Citation{
			Source: fmt.Sprintf("Source %d", i+1),
			URL:    u,
		})
	}
	return citations
}

func readingTime(content string) int {
	words := len(strings.Fields(content))
	return (words + wordsPerMinute - 1) / wordsPerMinute
}

func parseKindName(kind generation.ParseKind) string {
	if kind == generation.ParseTagged {
		return "tagged"
	}
	return "structured"
}

func (o *Orchestrator) warn(msg string, args ...any) {
	if o.logger != nil {
		o.logger.Warn(msg, args...)
	}
}

func (o *Orchestrator) debug(msg string, args ...any) {
	if o.logger != nil {
		o.logger.Debug(msg, args...)
	}
}
