package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/lib/pq"

	"ContentForge/internal/domain"
	"ContentForge/internal/ports"
)

var articleColumns = []string{
	"id", "title", "content", "summary", "category", "tags", "status",
	"key_takeaways", "citations", "engine", "generated_at", "raw_output",
	"job_id", "published_at", "reading_time", "is_active", "created_at", "updated_at",
}

// ArticleRepository persists generated articles (and diagnostic error records)
// in Postgres.
type ArticleRepository struct {
	db *sql.DB
}

var _ ports.ArticleStore = (*ArticleRepository)(nil)

// NewArticleRepository wires a sql.DB implementation.
func NewArticleRepository(db *sql.DB) *ArticleRepository {
	return &ArticleRepository{db: db}
}

// Create inserts a generated article.
func (r *ArticleRepository) Create(ctx context.Context, article domain.GeneratedArticle) (domain.GeneratedArticle, error) {
	if article.ID == "" {
		article.ID = uuid.NewString()
	}
	article.IsActive = true

	now := time.Now().UTC()
	article.CreatedAt = now
	article.UpdatedAt = now
	if article.GeneratedAt.IsZero() {
		article.GeneratedAt = now
	}

	citations, err := json.Marshal(article.Citations)
	if err != nil {
		return domain.GeneratedArticle{}, fmt.Errorf("marshal citations: %w", err)
	}

	query := psql.Insert("generated_articles").
		Columns(articleColumns...).
		Values(article.ID, article.Title, article.Content, article.Summary,
			article.Category, pq.Array(article.Tags), article.Status,
			pq.Array(article.KeyTakeaways), citations, article.Engine,
			article.GeneratedAt, article.RawOutput, nullable(article.JobID),
			article.PublishedAt, article.ReadingTime, article.IsActive,
			article.CreatedAt, article.UpdatedAt)

	if _, err := query.RunWith(r.db).ExecContext(ctx); err != nil {
		return domain.GeneratedArticle{}, fmt.Errorf("insert article: %w", err)
	}

	return article, nil
}

// GetByID loads a single active article.
func (r *ArticleRepository) GetByID(ctx context.Context, id string) (domain.GeneratedArticle, error) {
	rows, err := psql.Select(articleColumns...).
		From("generated_articles").
		Where(sq.Eq{"id": id, "is_active": true}).
		RunWith(r.db).QueryContext(ctx)
	if err != nil {
		return domain.GeneratedArticle{}, fmt.Errorf("query article: %w", err)
	}
	defer rows.Close()

	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return domain.GeneratedArticle{}, fmt.Errorf("iterate article: %w", err)
		}
		return domain.GeneratedArticle{}, ports.ErrArticleNotFound
	}

	return scanArticle(rows)
}

// Publish promotes a draft to published and stamps publishedAt.
func (r *ArticleRepository) Publish(ctx context.Context, id string) error {
	now := time.Now().UTC()
	result, err := psql.Update("generated_articles").
		Set("status", domain.ArticleStatusPublished).
		Set("published_at", now).
		Set("updated_at", now).
		Where(sq.Eq{"id": id, "is_active": true, "status": domain.ArticleStatusDraft}).
		RunWith(r.db).ExecContext(ctx)
	if err != nil {
		return fmt.Errorf("publish article: %w", err)
	}

	return requireRow(result, ports.ErrArticleNotFound)
}

// Archive retires a published or draft article from public listings.
func (r *ArticleRepository) Archive(ctx context.Context, id string) error {
	result, err := psql.Update("generated_articles").
		Set("status", domain.ArticleStatusArchived).
		Set("updated_at", time.Now().UTC()).
		Where(sq.Eq{"id": id, "is_active": true}).
		Where(sq.Eq{"status": []domain.ArticleStatus{domain.ArticleStatusDraft, domain.ArticleStatusPublished}}).
		RunWith(r.db).ExecContext(ctx)
	if err != nil {
		return fmt.Errorf("archive article: %w", err)
	}

	return requireRow(result, ports.ErrArticleNotFound)
}

// SoftDelete hides an article from every query without erasing it.
func (r *ArticleRepository) SoftDelete(ctx context.Context, id string) error {
	result, err := psql.Update("generated_articles").
		Set("is_active", false).
		Set("updated_at", time.Now().UTC()).
		Where(sq.Eq{"id": id, "is_active": true}).
		RunWith(r.db).ExecContext(ctx)
	if err != nil {
		return fmt.Errorf("soft delete article: %w", err)
	}

	return requireRow(result, ports.ErrArticleNotFound)
}

// ListPublished returns publicly visible articles, newest first. The filter
// is the visibility invariant: status published and is_active true. Draft and
// diagnostic error records never appear here by construction.
func (r *ArticleRepository) ListPublished(ctx context.Context, limit int) ([]domain.GeneratedArticle, error) {
	query := psql.Select(articleColumns...).
		From("generated_articles").
		Where(sq.Eq{"is_active": true, "status": domain.ArticleStatusPublished}).
		OrderBy("published_at DESC")
	if limit > 0 {
		query = query.Limit(uint64(limit))
	}

	rows, err := query.RunWith(r.db).QueryContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("query published articles: %w", err)
	}
	defer rows.Close()

	var articles []domain.GeneratedArticle
	for rows.Next() {
		article, err := scanArticle(rows)
		if err != nil {
			return nil, err
		}
		articles = append(articles, article)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate articles: %w", err)
	}
	return articles, nil
}

// HasDigestForDay reports whether a digest article was already generated on
// the given calendar day. The digest path checks this explicitly to keep the
// at-most-one-per-day invariant.
func (r *ArticleRepository) HasDigestForDay(ctx context.Context, day time.Time) (bool, error) {
	dayStart := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, day.Location())

	var count int
	err := psql.Select("COUNT(*)").
		From("generated_articles").
		Where(sq.Eq{"is_active": true, "category": domain.DigestCategory}).
		Where(sq.GtOrEq{"generated_at": dayStart}).
		Where(sq.Lt{"generated_at": dayStart.Add(24 * time.Hour)}).
		RunWith(r.db).QueryRowContext(ctx).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("count digests: %w", err)
	}

	return count > 0, nil
}

func scanArticle(rows *sql.Rows) (domain.GeneratedArticle, error) {
	var article domain.GeneratedArticle
	var jobID sql.NullString
	var publishedAt sql.NullTime
	var citations []byte

	err := rows.Scan(&article.ID, &article.Title, &article.Content, &article.Summary,
		&article.Category, pq.Array(&article.Tags), &article.Status,
		pq.Array(&article.KeyTakeaways), &citations, &article.Engine,
		&article.GeneratedAt, &article.RawOutput, &jobID, &publishedAt,
		&article.ReadingTime, &article.IsActive, &article.CreatedAt, &article.UpdatedAt)
	if err != nil {
		return domain.GeneratedArticle{}, fmt.Errorf("scan article: %w", err)
	}

	if len(citations) > 0 {
		if err := json.Unmarshal(citations, &article.Citations); err != nil {
			return domain.GeneratedArticle{}, fmt.Errorf("unmarshal citations: %w", err)
		}
	}
	article.JobID = jobID.String
	if publishedAt.Valid {
		article.PublishedAt = &publishedAt.Time
	}

	return article, nil
}
