package usecase

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"ContentForge/internal/domain"
	"ContentForge/internal/ports"
)

// memJobStore mirrors the Postgres repository's transition rules so batch and
// orchestrator behavior can be exercised without a database.
type memJobStore struct {
	mu    sync.Mutex
	seq   int
	jobs  map[string]*domain.ScheduledJob
	order map[string]int
}

func newMemJobStore() *memJobStore {
	return &memJobStore{jobs: map[string]*domain.ScheduledJob{}, order: map[string]int{}}
}

func (s *memJobStore) Create(_ context.Context, job domain.ScheduledJob) (domain.ScheduledJob, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.seq++
	if job.ID == "" {
		job.ID = fmt.Sprintf("job-%d", s.seq)
	}
	if job.Priority == "" {
		job.Priority = domain.PriorityMedium
	}
	job.Status = domain.JobStatusPending
	job.IsActive = true
	job.CreatedAt = time.Now().UTC()

	stored := job
	s.jobs[job.ID] = &stored
	s.order[job.ID] = s.seq
	return job, nil
}

func (s *memJobStore) Update(_ context.Context, id string, patch domain.JobPatch) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	job, ok := s.jobs[id]
	if !ok || !job.IsActive {
		return ports.ErrJobNotFound
	}

	if patch.Title != nil {
		job.Title = *patch.Title
	}
	if patch.Category != nil {
		job.Category = *patch.Category
	}
	if patch.CustomPrompt != nil {
		job.CustomPrompt = *patch.CustomPrompt
	}
	if patch.ScheduledFor != nil {
		job.ScheduledFor = *patch.ScheduledFor
	}
	if patch.Priority != nil {
		job.Priority = *patch.Priority
	}
	if patch.Notes != nil {
		job.Notes = *patch.Notes
	}
	return nil
}

func (s *memJobStore) SoftDelete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	job, ok := s.jobs[id]
	if !ok || !job.IsActive {
		return ports.ErrJobNotFound
	}
	job.IsActive = false
	return nil
}

func (s *memJobStore) GetDue(_ context.Context, now time.Time) ([]domain.ScheduledJob, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var due []domain.ScheduledJob
	for _, job := range s.jobs {
		if job.IsActive && job.Status == domain.JobStatusPending && !job.ScheduledFor.After(now) {
			due = append(due, *job)
		}
	}

	sort.SliceStable(due, func(i, j int) bool {
		if !due[i].ScheduledFor.Equal(due[j].ScheduledFor) {
			return due[i].ScheduledFor.Before(due[j].ScheduledFor)
		}
		return s.order[due[i].ID] < s.order[due[j].ID]
	})
	return due, nil
}

func (s *memJobStore) GetUpcoming(_ context.Context, now time.Time, days int) ([]domain.ScheduledJob, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	horizon := now.Add(time.Duration(days) * 24 * time.Hour)
	var upcoming []domain.ScheduledJob
	for _, job := range s.jobs {
		if job.IsActive && job.Status == domain.JobStatusPending &&
			job.ScheduledFor.After(now) && !job.ScheduledFor.After(horizon) {
			upcoming = append(upcoming, *job)
		}
	}

	sort.SliceStable(upcoming, func(i, j int) bool {
		return upcoming[i].ScheduledFor.Before(upcoming[j].ScheduledFor)
	})
	return upcoming, nil
}

func (s *memJobStore) Stats(_ context.Context, now time.Time) (domain.JobStats, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	stats := domain.JobStats{
		ByStatus:   map[domain.JobStatus]int{},
		ByCategory: map[string]int{},
		ByPriority: map[domain.JobPriority]int{},
	}
	for _, job := range s.jobs {
		if !job.IsActive {
			continue
		}
		stats.Total++
		stats.ByStatus[job.Status]++
		stats.ByCategory[job.Category]++
		stats.ByPriority[job.Priority]++
		if job.Status != domain.JobStatusPending {
			continue
		}
		if job.ScheduledFor.Before(now) {
			stats.Overdue++
		}
		if !job.ScheduledFor.Before(now) && job.ScheduledFor.Before(now.Add(24*time.Hour)) {
			stats.DueToday++
		}
		if !job.ScheduledFor.Before(now) && job.ScheduledFor.Before(now.Add(7*24*time.Hour)) {
			stats.UpcomingWeek++
		}
	}
	return stats, nil
}

func (s *memJobStore) UpdateStatus(_ context.Context, id string, status domain.JobStatus, articleID, errMsg string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	job, ok := s.jobs[id]
	if !ok || !job.IsActive {
		return ports.ErrJobNotFound
	}

	var prior domain.JobStatus
	switch status {
	case domain.JobStatusProcessing:
		prior = domain.JobStatusPending
	case domain.JobStatusCompleted, domain.JobStatusFailed:
		prior = domain.JobStatusProcessing
	default:
		return ports.ErrIllegalTransition
	}
	if job.Status != prior {
		return fmt.Errorf("%w: %s requires status %s", ports.ErrIllegalTransition, status, prior)
	}

	job.Status = status
	if articleID != "" {
		job.ArticleID = articleID
	}
	if errMsg != "" {
		job.ErrorMessage = errMsg
	}
	return nil
}

func (s *memJobStore) get(id string) domain.ScheduledJob {
	s.mu.Lock()
	defer s.mu.Unlock()
	if job, ok := s.jobs[id]; ok {
		return *job
	}
	return domain.ScheduledJob{}
}

// memArticleStore captures persisted articles in memory.
type memArticleStore struct {
	mu       sync.Mutex
	seq      int
	articles map[string]*domain.GeneratedArticle
}

func newMemArticleStore() *memArticleStore {
	return &memArticleStore{articles: map[string]*domain.GeneratedArticle{}}
}

func (s *memArticleStore) Create(_ context.Context, article domain.GeneratedArticle) (domain.GeneratedArticle, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.seq++
	if article.ID == "" {
		article.ID = fmt.Sprintf("article-%d", s.seq)
	}
	article.IsActive = true
	if article.GeneratedAt.IsZero() {
		article.GeneratedAt = time.Now().UTC()
	}

	stored := article
	s.articles[article.ID] = &stored
	return article, nil
}

func (s *memArticleStore) GetByID(_ context.Context, id string) (domain.GeneratedArticle, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if article, ok := s.articles[id]; ok && article.IsActive {
		return *article, nil
	}
	return domain.GeneratedArticle{}, ports.ErrArticleNotFound
}

func (s *memArticleStore) Publish(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	article, ok := s.articles[id]
	if !ok || !article.IsActive || article.Status != domain.ArticleStatusDraft {
		return ports.ErrArticleNotFound
	}
	now := time.Now().UTC()
	article.Status = domain.ArticleStatusPublished
	article.PublishedAt = &now
	return nil
}

func (s *memArticleStore) Archive(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	article, ok := s.articles[id]
	if !ok || !article.IsActive {
		return ports.ErrArticleNotFound
	}
	article.Status = domain.ArticleStatusArchived
	return nil
}

func (s *memArticleStore) SoftDelete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	article, ok := s.articles[id]
	if !ok || !article.IsActive {
		return ports.ErrArticleNotFound
	}
	article.IsActive = false
	return nil
}

func (s *memArticleStore) ListPublished(_ context.Context, limit int) ([]domain.GeneratedArticle, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var published []domain.GeneratedArticle
	for _, article := range s.articles {
		if article.IsActive && article.Status == domain.ArticleStatusPublished {
			published = append(published, *article)
		}
	}
	if limit > 0 && len(published) > limit {
		published = published[:limit]
	}
	return published, nil
}

func (s *memArticleStore) HasDigestForDay(_ context.Context, day time.Time) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, article := range s.articles {
		if article.IsActive && article.Category == domain.DigestCategory &&
			sameDay(article.GeneratedAt, day) {
			return true, nil
		}
	}
	return false, nil
}

func (s *memArticleStore) all() []domain.GeneratedArticle {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []domain.GeneratedArticle
	for _, article := range s.articles {
		out = append(out, *article)
	}
	return out
}

func sameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

// stubGenerator delegates to a configurable function.
type stubGenerator struct {
	complete func(ctx context.Context, params ports.GenerateParams) (domain.Completion, error)
	calls    int
}

func (g *stubGenerator) Complete(ctx context.Context, params ports.GenerateParams) (domain.Completion, error) {
	g.calls++
	return g.complete(ctx, params)
}

// goodArticleJSON builds a schema-conformant reply long enough to clear the
// sanitizer tripwires.
func goodArticleJSON() string {
	content := ""
	for i := 0; i < 30; i++ {
		content += "A thorough paragraph that explains the topic in sufficient depth for readers. "
	}
	return fmt.Sprintf(`{"summary":%q,"content":%q,"keyTakeaways":["one","two","three"],"tags":["a","b","c","d","e"]}`,
		"A complete summary that comfortably clears the fifty character minimum.", content)
}
