package usecase

import (
	"context"
	"strings"
	"testing"
	"time"

	"ContentForge/internal/domain"
	"ContentForge/internal/ports"
)

func TestBatchIsolatesFailingJob(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	now := time.Now()
	jobs := newMemJobStore()
	articles := newMemArticleStore()

	gen := &stubGenerator{complete: func(_ context.Context, params ports.GenerateParams) (domain.Completion, error) {
		if strings.Contains(params.Prompt, "Rigged Job") {
			return domain.Completion{Content: "total nonsense, no dialect matches"}, nil
		}
		return domain.Completion{Content: goodArticleJSON()}, nil
	}}

	first, _ := jobs.Create(ctx, domain.ScheduledJob{Title: "First Job", ScheduledFor: now.Add(-3 * time.Hour)})
	rigged, _ := jobs.Create(ctx, domain.ScheduledJob{Title: "Rigged Job", ScheduledFor: now.Add(-2 * time.Hour)})
	last, _ := jobs.Create(ctx, domain.ScheduledJob{Title: "Last Job", ScheduledFor: now.Add(-1 * time.Hour)})

	orch := newTestOrchestrator(jobs, articles, gen)
	batch := NewBatchProcessor(jobs, orch, nil, nil)

	result, err := batch.Run(ctx, now)
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}

	if result.Processed != 3 || result.Successful != 2 || result.Failed != 1 {
		t.Fatalf("unexpected counts: %+v", result)
	}
	if len(result.Results) != 3 {
		t.Fatalf("expected 3 results, got %d", len(result.Results))
	}

	if result.Results[0].JobID != first.ID || result.Results[1].JobID != rigged.ID || result.Results[2].JobID != last.ID {
		t.Fatalf("jobs not processed oldest due first: %+v", result.Results)
	}

	if result.Results[1].Status != domain.JobStatusFailed || result.Results[1].Error == "" {
		t.Fatalf("rigged job outcome wrong: %+v", result.Results[1])
	}
	if result.Results[0].Status != domain.JobStatusCompleted || result.Results[2].Status != domain.JobStatusCompleted {
		t.Fatalf("healthy jobs affected by the failure: %+v", result.Results)
	}

	if jobs.get(first.ID).Status != domain.JobStatusCompleted {
		t.Fatal("first job not completed in store")
	}
	if jobs.get(rigged.ID).Status != domain.JobStatusFailed {
		t.Fatal("rigged job not failed in store")
	}
	if jobs.get(last.ID).Status != domain.JobStatusCompleted {
		t.Fatal("last job not completed in store")
	}
}

func TestBatchDueSetCorrectness(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	now := time.Now()
	jobs := newMemJobStore()

	due, _ := jobs.Create(ctx, domain.ScheduledJob{Title: "Due", ScheduledFor: now.Add(-time.Minute)})
	_, _ = jobs.Create(ctx, domain.ScheduledJob{Title: "Future", ScheduledFor: now.Add(time.Hour)})
	deleted, _ := jobs.Create(ctx, domain.ScheduledJob{Title: "Deleted", ScheduledFor: now.Add(-time.Hour)})
	_ = jobs.SoftDelete(ctx, deleted.ID)
	done, _ := jobs.Create(ctx, domain.ScheduledJob{Title: "Done", ScheduledFor: now.Add(-time.Hour)})
	_ = jobs.UpdateStatus(ctx, done.ID, domain.JobStatusProcessing, "", "")
	_ = jobs.UpdateStatus(ctx, done.ID, domain.JobStatusCompleted, "a1", "")

	got, err := jobs.GetDue(ctx, now)
	if err != nil {
		t.Fatalf("GetDue: %v", err)
	}
	if len(got) != 1 || got[0].ID != due.ID {
		t.Fatalf("due set wrong: %+v", got)
	}
}

func TestBatchEqualDueTimesAreDeterministic(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	now := time.Now()
	when := now.Add(-time.Hour)

	jobs := newMemJobStore()
	a, _ := jobs.Create(ctx, domain.ScheduledJob{Title: "Created First", ScheduledFor: when})
	b, _ := jobs.Create(ctx, domain.ScheduledJob{Title: "Created Second", ScheduledFor: when})

	for i := 0; i < 5; i++ {
		got, err := jobs.GetDue(ctx, now)
		if err != nil {
			t.Fatalf("GetDue: %v", err)
		}
		if len(got) != 2 || got[0].ID != a.ID || got[1].ID != b.ID {
			t.Fatalf("order not stable on run %d: %+v", i, got)
		}
	}
}

func TestBatchFallbackWhenNothingDue(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	now := time.Now()
	jobs := newMemJobStore()
	articles := newMemArticleStore()

	gen := &stubGenerator{complete: func(context.Context, ports.GenerateParams) (domain.Completion, error) {
		return domain.Completion{Content: goodArticleJSON()}, nil
	}}

	topics := []string{"Topic A", "Topic B", "Topic C"}
	orch := newTestOrchestrator(jobs, articles, gen)
	batch := NewBatchProcessor(jobs, orch, topics, nil)

	result, err := batch.Run(ctx, now)
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}

	if result.Processed != 1 || result.Successful != 1 {
		t.Fatalf("fallback counts wrong: %+v", result)
	}
	wantTitle := topics[(now.Day()-1)%len(topics)]
	if result.Results[0].Title != wantTitle {
		t.Fatalf("fallback topic not keyed off day-of-month: got %q want %q", result.Results[0].Title, wantTitle)
	}
	if result.Results[0].JobID != "" {
		t.Fatal("fallback run must bypass the job queue")
	}
}

func TestBatchFallbackSkippedWhenJobsDue(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	now := time.Now()
	jobs := newMemJobStore()
	articles := newMemArticleStore()

	gen := &stubGenerator{complete: func(context.Context, ports.GenerateParams) (domain.Completion, error) {
		return domain.Completion{Content: goodArticleJSON()}, nil
	}}

	job, _ := jobs.Create(ctx, domain.ScheduledJob{Title: "Real Job", ScheduledFor: now.Add(-time.Minute)})

	orch := newTestOrchestrator(jobs, articles, gen)
	batch := NewBatchProcessor(jobs, orch, []string{"Fallback Topic"}, nil)

	result, err := batch.Run(ctx, now)
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}
	if result.Processed != 1 || result.Results[0].JobID != job.ID {
		t.Fatalf("fallback must not trigger when jobs are due: %+v", result)
	}
}

func TestBatchNoTopicsNoFallback(t *testing.T) {
	t.Parallel()

	gen := &stubGenerator{complete: func(context.Context, ports.GenerateParams) (domain.Completion, error) {
		t.Error("generator must not be called")
		return domain.Completion{}, nil
	}}

	jobs := newMemJobStore()
	orch := newTestOrchestrator(jobs, newMemArticleStore(), gen)
	batch := NewBatchProcessor(jobs, orch, nil, nil)

	result, err := batch.Run(context.Background(), time.Now())
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}
	if result.Processed != 0 {
		t.Fatalf("expected an idle batch, got %+v", result)
	}
}
