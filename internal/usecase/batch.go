package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"ContentForge/internal/domain"
	"ContentForge/internal/ports"
)

// JobResult records one job's outcome inside a batch. JobID is empty for the
// no-jobs-due fallback run.
type JobResult struct {
	JobID     string
	Title     string
	Status    domain.JobStatus
	ArticleID string
	Error     string
}

// BatchResult aggregates one timer-driven batch execution.
type BatchResult struct {
	Processed  int
	Successful int
	Failed     int
	Results    []JobResult
}

// BatchProcessor drains the due-job queue on each timer tick. Jobs run
// sequentially, oldest due first; one job's failure is recorded and the loop
// continues. Priority is stored for operator views only and never reorders
// work.
type BatchProcessor struct {
	jobs         ports.JobStore
	orchestrator *Orchestrator
	topics       []string
	logger       *slog.Logger
}

// NewBatchProcessor wires the job store, the orchestrator, and the rotating
// default-topic list used when nothing is due.
func NewBatchProcessor(jobs ports.JobStore, orchestrator *Orchestrator, topics []string, logger *slog.Logger) *BatchProcessor {
	return &BatchProcessor{jobs: jobs, orchestrator: orchestrator, topics: topics, logger: logger}
}

// Run executes one batch. The due set is read exactly once at batch start, so
// no job is processed twice within a cycle.
func (b *BatchProcessor) Run(ctx context.Context, now time.Time) (BatchResult, error) {
	due, err := b.jobs.GetDue(ctx, now)
	if err != nil {
		return BatchResult{}, fmt.Errorf("load due jobs: %w", err)
	}

	if len(due) == 0 {
		return b.runFallback(ctx, now)
	}

	var result BatchResult
	for _, job := range due {
		outcome := b.processJob(ctx, job)
		result.Processed++
		if outcome.Status == domain.JobStatusCompleted {
			result.Successful++
		} else {
			result.Failed++
		}
		result.Results = append(result.Results, outcome)
	}

	b.info("batch done", "processed", result.Processed,
		"successful", result.Successful, "failed", result.Failed)
	return result, nil
}

func (b *BatchProcessor) processJob(ctx context.Context, job domain.ScheduledJob) JobResult {
	outcome := JobResult{JobID: job.ID, Title: job.Title}

	if err := b.jobs.UpdateStatus(ctx, job.ID, domain.JobStatusProcessing, "", ""); err != nil {
		b.warn("job not transitioned to processing", "job", job.ID, "error", err)
		outcome.Status = domain.JobStatusFailed
		outcome.Error = err.Error()
		return outcome
	}

	articleID, err := b.orchestrator.Generate(ctx, GenerateRequest{
		Title:        job.Title,
		Category:     job.Category,
		CustomPrompt: job.CustomPrompt,
		JobID:        job.ID,
	})
	if err != nil {
		b.warn("job generation failed", "job", job.ID, "title", job.Title, "error", err)
		outcome.Status = domain.JobStatusFailed
		outcome.Error = err.Error()
		return outcome
	}

	outcome.Status = domain.JobStatusCompleted
	outcome.ArticleID = articleID
	return outcome
}

// runFallback generates one article from the rotating default-topic list,
// keyed off the day of the month. It bypasses the job queue entirely and only
// triggers on an empty due set.
func (b *BatchProcessor) runFallback(ctx context.Context, now time.Time) (BatchResult, error) {
	if len(b.topics) == 0 {
		return BatchResult{}, nil
	}

	title := b.topics[(now.Day()-1)%len(b.topics)]
	b.info("no jobs due, generating default topic", "title", title)

	outcome := JobResult{Title: title}
	result := BatchResult{Processed: 1}

	articleID, err := b.orchestrator.Generate(ctx, GenerateRequest{Title: title})
	if err != nil {
		outcome.Status = domain.JobStatusFailed
		outcome.Error = err.Error()
		result.Failed = 1
	} else {
		outcome.Status = domain.JobStatusCompleted
		outcome.ArticleID = articleID
		result.Successful = 1
	}

	result.Results = append(result.Results, outcome)
	return result, nil
}

func (b *BatchProcessor) info(msg string, args ...any) {
	if b.logger != nil {
		b.logger.Info(msg, args...)
	}
}

func (b *BatchProcessor) warn(msg string, args ...any) {
	if b.logger != nil {
		b.logger.Warn(msg, args...)
	}
}
