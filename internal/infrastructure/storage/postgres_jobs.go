package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"

	"ContentForge/internal/domain"
	"ContentForge/internal/ports"
)

var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

var jobColumns = []string{
	"id", "title", "category", "custom_prompt", "scheduled_for", "priority",
	"status", "created_by", "notes", "article_id", "error_message",
	"is_active", "created_at", "updated_at",
}

// JobRepository persists the scheduled-generation queue in Postgres.
type JobRepository struct {
	db *sql.DB
}

var _ ports.JobStore = (*JobRepository)(nil)

// NewJobRepository wires a sql.DB implementation.
func NewJobRepository(db *sql.DB) *JobRepository {
	return &JobRepository{db: db}
}

// Create inserts a new job in pending state.
func (r *JobRepository) Create(ctx context.Context, job domain.ScheduledJob) (domain.ScheduledJob, error) {
	if job.ID == "" {
		job.ID = uuid.NewString()
	}
	if job.Priority == "" {
		job.Priority = domain.PriorityMedium
	}
	job.Status = domain.JobStatusPending
	job.IsActive = true

	now := time.Now().UTC()
	job.CreatedAt = now
	job.UpdatedAt = now

	query := psql.Insert("scheduled_jobs").
		Columns(jobColumns...).
		Values(job.ID, job.Title, job.Category, job.CustomPrompt, job.ScheduledFor,
			job.Priority, job.Status, job.CreatedBy, job.Notes, nullable(job.ArticleID),
			nullable(job.ErrorMessage), job.IsActive, job.CreatedAt, job.UpdatedAt)

	if _, err := query.RunWith(r.db).ExecContext(ctx); err != nil {
		return domain.ScheduledJob{}, fmt.Errorf("insert job: %w", err)
	}

	return job, nil
}

// Update applies a partial patch. Lifecycle status is deliberately not
// patchable here; it moves only through UpdateStatus.
func (r *JobRepository) Update(ctx context.Context, id string, patch domain.JobPatch) error {
	query := psql.Update("scheduled_jobs").
		Set("updated_at", time.Now().UTC()).
		Where(sq.Eq{"id": id, "is_active": true})

	if patch.Title != nil {
		query = query.Set("title", *patch.Title)
	}
	if patch.Category != nil {
		query = query.Set("category", *patch.Category)
	}
	if patch.CustomPrompt != nil {
		query = query.Set("custom_prompt", *patch.CustomPrompt)
	}
	if patch.ScheduledFor != nil {
		query = query.Set("scheduled_for", *patch.ScheduledFor)
	}
	if patch.Priority != nil {
		query = query.Set("priority", *patch.Priority)
	}
	if patch.Notes != nil {
		query = query.Set("notes", *patch.Notes)
	}

	result, err := query.RunWith(r.db).ExecContext(ctx)
	if err != nil {
		return fmt.Errorf("update job: %w", err)
	}

	return requireRow(result, ports.ErrJobNotFound)
}

// SoftDelete hides a job from every query without erasing its history.
func (r *JobRepository) SoftDelete(ctx context.Context, id string) error {
	result, err := psql.Update("scheduled_jobs").
		Set("is_active", false).
		Set("updated_at", time.Now().UTC()).
		Where(sq.Eq{"id": id, "is_active": true}).
		RunWith(r.db).ExecContext(ctx)
	if err != nil {
		return fmt.Errorf("soft delete job: %w", err)
	}

	return requireRow(result, ports.ErrJobNotFound)
}

// GetDue returns all active pending jobs whose scheduled time has arrived,
// oldest due first so overdue backlog drains in FIFO order. Ties on
// scheduled_for break deterministically on created_at, then id.
func (r *JobRepository) GetDue(ctx context.Context, now time.Time) ([]domain.ScheduledJob, error) {
	query := psql.Select(jobColumns...).
		From("scheduled_jobs").
		Where(sq.Eq{"is_active": true, "status": domain.JobStatusPending}).
		Where(sq.LtOrEq{"scheduled_for": now}).
		OrderBy("scheduled_for ASC", "created_at ASC", "id ASC")

	return r.queryJobs(ctx, query)
}

// GetUpcoming returns active pending jobs due within the next `days` days.
func (r *JobRepository) GetUpcoming(ctx context.Context, now time.Time, days int) ([]domain.ScheduledJob, error) {
	horizon := now.Add(time.Duration(days) * 24 * time.Hour)

	query := psql.Select(jobColumns...).
		From("scheduled_jobs").
		Where(sq.Eq{"is_active": true, "status": domain.JobStatusPending}).
		Where(sq.Gt{"scheduled_for": now}).
		Where(sq.LtOrEq{"scheduled_for": horizon}).
		OrderBy("scheduled_for ASC", "created_at ASC", "id ASC")

	return r.queryJobs(ctx, query)
}

// Stats aggregates queue state for operator dashboards. Due-today and
// upcoming-week are rolling windows anchored at now.
func (r *JobRepository) Stats(ctx context.Context, now time.Time) (domain.JobStats, error) {
	stats := domain.JobStats{
		ByStatus:   map[domain.JobStatus]int{},
		ByCategory: map[string]int{},
		ByPriority: map[domain.JobPriority]int{},
	}

	if err := r.countBy(ctx, "status", func(key string, count int) {
		stats.ByStatus[domain.JobStatus(key)] = count
		stats.Total += count
	}); err != nil {
		return domain.JobStats{}, err
	}

	if err := r.countBy(ctx, "category", func(key string, count int) {
		stats.ByCategory[key] = count
	}); err != nil {
		return domain.JobStats{}, err
	}

	if err := r.countBy(ctx, "priority", func(key string, count int) {
		stats.ByPriority[domain.JobPriority(key)] = count
	}); err != nil {
		return domain.JobStats{}, err
	}

	pending := sq.Eq{"is_active": true, "status": domain.JobStatusPending}

	overdue, err := r.countWhere(ctx, sq.And{pending, sq.Lt{"scheduled_for": now}})
	if err != nil {
		return domain.JobStats{}, err
	}
	stats.Overdue = overdue

	dueToday, err := r.countWhere(ctx, sq.And{pending,
		sq.GtOrEq{"scheduled_for": now},
		sq.Lt{"scheduled_for": now.Add(24 * time.Hour)}})
	if err != nil {
		return domain.JobStats{}, err
	}
	stats.DueToday = dueToday

	upcomingWeek, err := r.countWhere(ctx, sq.And{pending,
		sq.GtOrEq{"scheduled_for": now},
		sq.Lt{"scheduled_for": now.Add(7 * 24 * time.Hour)}})
	if err != nil {
		return domain.JobStats{}, err
	}
	stats.UpcomingWeek = upcomingWeek

	return stats, nil
}

// UpdateStatus moves a job along its lifecycle. The prior-status condition is
// part of the WHERE clause, so an out-of-order transition touches no rows.
func (r *JobRepository) UpdateStatus(ctx context.Context, id string, status domain.JobStatus, articleID, errMsg string) error {
	prior, ok := legalPrior(status)
	if !ok {
		return fmt.Errorf("%w: no edge into %s", ports.ErrIllegalTransition, status)
	}

	query := psql.Update("scheduled_jobs").
		Set("status", status).
		Set("updated_at", time.Now().UTC()).
		Where(sq.Eq{"id": id, "is_active": true, "status": prior})

	if articleID != "" {
		query = query.Set("article_id", articleID)
	}
	if errMsg != "" {
		query = query.Set("error_message", errMsg)
	}

	result, err := query.RunWith(r.db).ExecContext(ctx)
	if err != nil {
		return fmt.Errorf("update job status: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected > 0 {
		return nil
	}

	exists, err := r.exists(ctx, id)
	if err != nil {
		return err
	}
	if !exists {
		return ports.ErrJobNotFound
	}
	return fmt.Errorf("%w: %s requires status %s", ports.ErrIllegalTransition, status, prior)
}

// legalPrior returns the only status a job may hold before entering the
// target status.
func legalPrior(target domain.JobStatus) (domain.JobStatus, bool) {
	switch target {
	case domain.JobStatusProcessing:
		return domain.JobStatusPending, true
	case domain.JobStatusCompleted, domain.JobStatusFailed:
		return domain.JobStatusProcessing, true
	default:
		return "", false
	}
}

func (r *JobRepository) exists(ctx context.Context, id string) (bool, error) {
	var count int
	err := psql.Select("COUNT(*)").
		From("scheduled_jobs").
		Where(sq.Eq{"id": id, "is_active": true}).
		RunWith(r.db).QueryRowContext(ctx).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("check job existence: %w", err)
	}
	return count > 0, nil
}

func (r *JobRepository) countBy(ctx context.Context, column string, collect func(key string, count int)) error {
	rows, err := psql.Select(column, "COUNT(*)").
		From("scheduled_jobs").
		Where(sq.Eq{"is_active": true}).
		GroupBy(column).
		RunWith(r.db).QueryContext(ctx)
	if err != nil {
		return fmt.Errorf("count jobs by %s: %w", column, err)
	}
	defer rows.Close()

	for rows.Next() {
		var key string
		var count int
		if err := rows.Scan(&key, &count); err != nil {
			return fmt.Errorf("scan %s count: %w", column, err)
		}
		collect(key, count)
	}

	if err := rows.Err(); err != nil {
		return fmt.Errorf("iterate %s counts: %w", column, err)
	}
	return nil
}

func (r *JobRepository) countWhere(ctx context.Context, where sq.Sqlizer) (int, error) {
	var count int
	err := psql.Select("COUNT(*)").
		From("scheduled_jobs").
		Where(where).
		RunWith(r.db).QueryRowContext(ctx).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count jobs: %w", err)
	}
	return count, nil
}

func (r *JobRepository) queryJobs(ctx context.Context, query sq.SelectBuilder) ([]domain.ScheduledJob, error) {
	rows, err := query.RunWith(r.db).QueryContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("query jobs: %w", err)
	}
	defer rows.Close()

	var jobs []domain.ScheduledJob
	for rows.Next() {
		job, err := scanJob(rows)
		if err != nil {
			return nil, err
		}
		jobs = append(jobs, job)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate jobs: %w", err)
	}
	return jobs, nil
}

func scanJob(rows *sql.Rows) (domain.ScheduledJob, error) {
	var job domain.ScheduledJob
	var customPrompt, createdBy, notes, articleID, errorMessage sql.NullString

	err := rows.Scan(&job.ID, &job.Title, &job.Category, &customPrompt,
		&job.ScheduledFor, &job.Priority, &job.Status, &createdBy, &notes,
		&articleID, &errorMessage, &job.IsActive, &job.CreatedAt, &job.UpdatedAt)
	if err != nil {
		return domain.ScheduledJob{}, fmt.Errorf("scan job: %w", err)
	}

	job.CustomPrompt = customPrompt.String
	job.CreatedBy = createdBy.String
	job.Notes = notes.String
	job.ArticleID = articleID.String
	job.ErrorMessage = errorMessage.String
	return job, nil
}

func nullable(value string) any {
	if value == "" {
		return nil
	}
	return value
}

func requireRow(result sql.Result, missing error) error {
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return missing
	}
	return nil
}
