package article

import (
	"CivicLearn/internal/delivery/http/controllers/middleware"
	"CivicLearn/internal/delivery/http/controllers/response"
	"CivicLearn/internal/models"
	"CivicLearn/pkg/logger"
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type ArticleService interface {
	Create(ctx context.Context, authorID uuid.UUID, title, content string) (*models.Article, error)
	Latest(ctx context.Context) ([]models.Article, error)
	All(ctx context.Context) ([]models.Article, error)
	BySlug(ctx context.Context, slug string) (*models.Article, error)
}

type ArticleHandler struct {
	log     logger.Log
	service ArticleService
}

func NewArticleHandler(l logger.Log, s ArticleService) *ArticleHandler {
	return &ArticleHandler{log: l, service: s}
}

func (h *ArticleHandler) Latest(c *gin.Context) {
	h.list(c, h.service.Latest)
}

func (h *ArticleHandler) All(c *gin.Context) {
	h.list(c, h.service.All)
}

func (h *ArticleHandler) list(c *gin.Context, load func(context.Context) ([]models.Article, error)) {
	articles, err := load(c.Request.Context())
	if err != nil {
		response.Error(c, h.log, "error listing articles", err)
		return
	}
	if articles == nil {
		articles = []models.Article{}
	}
	c.JSON(http.StatusOK, gin.H{"articles": articles})
}

type slugURI struct {
	Slug string `uri:"slug" binding:"required,slug,max=200"`
}

func (h *ArticleHandler) BySlug(c *gin.Context) {
	var uri slugURI
	if err := c.ShouldBindUri(&uri); err != nil {
		response.BindError(c, err)
		return
	}
	article, err := h.service.BySlug(c.Request.Context(), uri.Slug)
	if err != nil {
		response.Error(c, h.log, "error retrieving article", err)
		return
	}
	c.JSON(http.StatusOK, article)
}

type articleRequest struct {
	Title   string `json:"title" binding:"required,notblank,max=200"`
	Content string `json:"content" binding:"required,notblank"`
}

func (h *ArticleHandler) Create(c *gin.Context) {
	var input articleRequest
	if err := c.ShouldBindJSON(&input); err != nil {
		response.BindError(c, err)
		return
	}
	authorID, ok := middleware.UserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not authenticated"})
		return
	}
	article, err := h.service.Create(c.Request.Context(), authorID, input.Title, input.Content)
	if err != nil {
		response.Error(c, h.log, "error creating article", err)
		return
	}
	c.JSON(http.StatusCreated, article)
}
