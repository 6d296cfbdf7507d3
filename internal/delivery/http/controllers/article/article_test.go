package article

import (
	"CivicLearn/internal/app_errors"
	"CivicLearn/internal/delivery/http/controllers/middleware"
	"CivicLearn/internal/delivery/http/validation"
	"CivicLearn/internal/models"
	"CivicLearn/pkg/logger"
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

type fakeArticles struct {
	bySlug map[string]models.Article
}

func (f *fakeArticles) Create(_ context.Context, authorID uuid.UUID, title, content string) (*models.Article, error) {
	a := models.Article{ID: uuid.New(), AuthorID: authorID, Title: title, Content: content, Slug: "new-article"}
	f.bySlug[a.Slug] = a
	return &a, nil
}

func (f *fakeArticles) Latest(context.Context) ([]models.Article, error) { return nil, nil }

func (f *fakeArticles) All(context.Context) ([]models.Article, error) { return nil, nil }

func (f *fakeArticles) BySlug(_ context.Context, slug string) (*models.Article, error) {
	a, ok := f.bySlug[slug]
	if !ok {
		return nil, app_errors.ErrArticleNotFound
	}
	return &a, nil
}

func TestArticleRoutes(t *testing.T) {
	gin.SetMode(gin.TestMode)
	validation.Register()

	svc := &fakeArticles{bySlug: map[string]models.Article{}}
	h := NewArticleHandler(logger.NewNop(), svc)
	r := gin.New()
	r.GET("/articles", h.All)
	r.GET("/articles/:slug", h.BySlug)
	r.POST("/articles", func(c *gin.Context) {
		c.Set(middleware.ClientIDCtx, uuid.New())
		c.Next()
	}, h.Create)

	tests := []struct {
		name   string
		method string
		path   string
		body   string
		want   int
		substr string
	}{
		{"empty list renders array", http.MethodGet, "/articles", "", http.StatusOK, `"articles":[]`},
		{"bad slug", http.MethodGet, "/articles/Not_A_Slug", "", http.StatusBadRequest, "slug"},
		{"unknown slug", http.MethodGet, "/articles/missing", "", http.StatusNotFound, app_errors.ErrArticleNotFound.Error()},
		{"blank title", http.MethodPost, "/articles", `{"title":"   ","content":"x"}`, http.StatusBadRequest, "title"},
		{"create", http.MethodPost, "/articles", `{"title":"New article","content":"Body"}`, http.StatusCreated, `"slug":"new-article"`},
		{"created is readable", http.MethodGet, "/articles/new-article", "", http.StatusOK, "New article"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			r.ServeHTTP(w, httptest.NewRequest(tt.method, tt.path, strings.NewReader(tt.body)))
			assert.Equal(t, tt.want, w.Code, w.Body.String())
			assert.Contains(t, w.Body.String(), tt.substr)
		})
	}
}
