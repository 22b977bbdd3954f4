package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"ContentForge/internal/domain"
	"ContentForge/internal/ports"
)

const (
	upcomingDays      = 7
	maxUpcomingListed = 3
)

// Runner wires the timer driver to the batch processor and the daily digest,
// and publishes an operator summary after every batch.
type Runner struct {
	driver     ports.Scheduler
	batch      *BatchProcessor
	digest     *DigestRunner
	jobs       ports.JobStore
	notifier   ports.Notifier
	digestHour int
	location   *time.Location
	logger     *slog.Logger
}

// RunnerDeps configures the scheduler wiring. Digest, Jobs, and Notifier are
// optional.
type RunnerDeps struct {
	Driver     ports.Scheduler
	Batch      *BatchProcessor
	Digest     *DigestRunner
	Jobs       ports.JobStore
	Notifier   ports.Notifier
	DigestHour int
	Location   *time.Location
	Logger     *slog.Logger
}

// NewRunner returns a helper to start/stop the recurring pipeline.
func NewRunner(deps RunnerDeps) *Runner {
	loc := deps.Location
	if loc == nil {
		loc = time.UTC
	}
	return &Runner{
		driver:     deps.Driver,
		batch:      deps.Batch,
		digest:     deps.Digest,
		jobs:       deps.Jobs,
		notifier:   deps.Notifier,
		digestHour: deps.DigestHour,
		location:   loc,
		logger:     deps.Logger,
	}
}

// Start registers the pipeline with the timer driver.
func (r *Runner) Start(ctx context.Context) error {
	if r.driver == nil || r.batch == nil {
		return nil
	}

	return r.driver.Start(ctx, func(trigger time.Time) {
		r.RunCycle(ctx, trigger)
	})
}

// Stop gracefully tears down the underlying timer.
func (r *Runner) Stop(ctx context.Context) error {
	if r.driver == nil {
		return nil
	}
	return r.driver.Stop(ctx)
}

// RunCycle executes one timer tick: the batch, the operator notification, and
// the digest when the configured hour has arrived.
func (r *Runner) RunCycle(ctx context.Context, trigger time.Time) {
	now := trigger.In(r.location)

	result, err := r.batch.Run(ctx, now)
	if err != nil {
		r.error("batch run failed", "error", err)
	} else if result.Processed > 0 {
		r.notify(ctx, formatBatchSummary(result)+r.queueStatus(ctx, now))
	}

	if r.digest == nil || now.Hour() != r.digestHour {
		return
	}

	articleID, err := r.digest.RunDaily(ctx, now)
	if err != nil {
		if errors.Is(err, ErrDigestExists) || errors.Is(err, ErrNoDigestItems) {
			r.debug("digest skipped", "reason", err)
			return
		}
		r.error("digest run failed", "error", err)
		return
	}

	r.notify(ctx, fmt.Sprintf("Daily digest generated (%s)\n", articleID))
}

func (r *Runner) notify(ctx context.Context, summary string) {
	if r.notifier == nil {
		return
	}
	if err := r.notifier.PublishSummary(ctx, summary); err != nil {
		r.error("summary notification failed", "error", err)
	}
}

// queueStatus appends the queue's shape to the operator summary: pending and
// overdue counts plus the next few scheduled titles.
func (r *Runner) queueStatus(ctx context.Context, now time.Time) string {
	if r.jobs == nil {
		return ""
	}

	var b strings.Builder

	stats, err := r.jobs.Stats(ctx, now)
	if err != nil {
		r.error("job stats failed", "error", err)
	} else {
		fmt.Fprintf(&b, "Queue: %d pending, %d overdue, %d due this week\n",
			stats.ByStatus[domain.JobStatusPending], stats.Overdue, stats.UpcomingWeek)
	}

	upcoming, err := r.jobs.GetUpcoming(ctx, now, upcomingDays)
	if err != nil {
		r.error("upcoming jobs lookup failed", "error", err)
		return b.String()
	}
	for i, job := range upcoming {
		if i == maxUpcomingListed {
			break
		}
		fmt.Fprintf(&b, "- upcoming %s: %s\n",
			job.ScheduledFor.In(r.location).Format("Jan 2 15:04"), job.Title)
	}

	return b.String()
}

// formatBatchSummary renders a batch outcome as a short operator message.
func formatBatchSummary(result BatchResult) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Batch run: %d processed, %d successful, %d failed\n",
		result.Processed, result.Successful, result.Failed)

	for _, outcome := range result.Results {
		fmt.Fprintf(&b, "- %s: %s", outcome.Title, outcome.Status)
		if outcome.Error != "" {
			fmt.Fprintf(&b, " (%s)", outcome.Error)
		}
		b.WriteString("\n")
	}

	return b.String()
}

func (r *Runner) error(msg string, args ...any) {
	if r.logger != nil {
		r.logger.Error(msg, args...)
	}
}

func (r *Runner) debug(msg string, args ...any) {
	if r.logger != nil {
		r.logger.Debug(msg, args...)
	}
}
