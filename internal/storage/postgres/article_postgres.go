package postgres

import (
	"context"
	"errors"
	"time"

	"CivicLearn/internal/app_errors"
	"CivicLearn/internal/models"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type ArticlePostgres struct {
	db *pgxpool.Pool
}

func NewArticlePostgres(db *pgxpool.Pool) *ArticlePostgres {
	return &ArticlePostgres{db: db}
}

const articleColumns = `id, title, slug, content, author_id, created_at, updated_at`

// CreateArticle returns ErrDuplicateSlug when the slug is taken.
func (r *ArticlePostgres) CreateArticle(ctx context.Context, a *models.Article) error {
	now := time.Now().UTC()
	query := `
		INSERT INTO articles (title, slug, content, author_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $5)
		RETURNING id, created_at, updated_at
	`
	err := r.db.QueryRow(ctx, query, a.Title, a.Slug, a.Content, a.AuthorID, now).Scan(&a.ID, &a.CreatedAt, &a.UpdatedAt)
	if err != nil && isUniqueViolation(err) {
		return app_errors.ErrDuplicateSlug
	}
	return err
}

func (r *ArticlePostgres) SlugExists(ctx context.Context, slug string) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM articles WHERE slug = $1)`, slug).Scan(&exists)
	return exists, err
}

func (r *ArticlePostgres) ArticleBySlug(ctx context.Context, slug string) (*models.Article, error) {
	rows, err := r.db.Query(ctx, `SELECT `+articleColumns+` FROM articles WHERE slug = $1`, slug)
	if err != nil {
		return nil, err
	}
	a, err := pgx.CollectExactlyOneRow(rows, pgx.RowToStructByPos[models.Article])
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, app_errors.ErrArticleNotFound
		}
		return nil, err
	}
	return &a, nil
}

// Articles lists newest first; limit <= 0 means all.
func (r *ArticlePostgres) Articles(ctx context.Context, limit int) ([]models.Article, error) {
	query := `SELECT ` + articleColumns + ` FROM articles ORDER BY created_at DESC`
	args := []any{}
	if limit > 0 {
		query += ` LIMIT $1`
		args = append(args, limit)
	}
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, pgx.RowToStructByPos[models.Article])
}
