package article

import (
	"CivicLearn/internal/app_errors"
	"CivicLearn/internal/models"
	"CivicLearn/pkg/logger"
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode"

	"github.com/google/uuid"
)

const (
	LatestCount     = 3
	maxSlugAttempts = 100
)

type articleRepo interface {
	CreateArticle(ctx context.Context, a *models.Article) error
	SlugExists(ctx context.Context, slug string) (bool, error)
	ArticleBySlug(ctx context.Context, slug string) (*models.Article, error)
	Articles(ctx context.Context, limit int) ([]models.Article, error)
}

type ArticleService struct {
	log  logger.Log
	repo articleRepo
}

func NewArticleService(log logger.Log, repo articleRepo) *ArticleService {
	return &ArticleService{log: log, repo: repo}
}

// Slugify lowercases the title, keeps letters and digits and joins
// everything else into single hyphens.
func Slugify(title string) string {
	var b strings.Builder
	pendingDash := false
	for _, r := range strings.ToLower(title) {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			if pendingDash && b.Len() > 0 {
				b.WriteByte('-')
			}
			pendingDash = false
			b.WriteRune(r)
		case r == '\'' || r == '’':
			// apostrophes vanish: "citizen's" -> "citizens"
		default:
			pendingDash = true
		}
	}
	if b.Len() == 0 {
		return "article"
	}
	return b.String()
}

func (s *ArticleService) uniqueSlug(ctx context.Context, title string) (string, error) {
	base := Slugify(title)
	candidate := base
	for i := 1; i <= maxSlugAttempts; i++ {
		exists, err := s.repo.SlugExists(ctx, candidate)
		if err != nil {
			return "", err
		}
		if !exists {
			return candidate, nil
		}
		candidate = fmt.Sprintf("%s-%d", base, i)
	}
	return base + "-" + uuid.NewString()[:8], nil
}

func (s *ArticleService) Create(ctx context.Context, authorID uuid.UUID, title, content string) (*models.Article, error) {
	a := &models.Article{
		Title:    strings.TrimSpace(title),
		Content:  content,
		AuthorID: authorID,
	}
	// a concurrent writer can still take the slug between the check and the
	// insert; retry once with a fresh lookup
	for try := 0; try < 2; try++ {
		slug, err := s.uniqueSlug(ctx, a.Title)
		if err != nil {
			return nil, err
		}
		a.Slug = slug
		err = s.repo.CreateArticle(ctx, a)
		if err == nil {
			s.log.Info("article published", "slug", a.Slug)
			return a, nil
		}
		if !errors.Is(err, app_errors.ErrDuplicateSlug) {
			return nil, err
		}
	}
	return nil, app_errors.ErrDuplicateSlug
}

func (s *ArticleService) Latest(ctx context.Context) ([]models.Article, error) {
	return s.repo.Articles(ctx, LatestCount)
}

func (s *ArticleService) All(ctx context.Context) ([]models.Article, error) {
	return s.repo.Articles(ctx, 0)
}

func (s *ArticleService) BySlug(ctx context.Context, slug string) (*models.Article, error) {
	return s.repo.ArticleBySlug(ctx, slug)
}
