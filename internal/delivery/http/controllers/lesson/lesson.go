package lesson

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

type LessonService interface {
	Lessons(ctx context.Context, moduleID, userID uuid.UUID) ([]models.LessonSummary, error)
	Lesson(ctx context.Context, lessonID, userID uuid.UUID) (*models.LessonDetail, error)
}

type LessonHandler struct {
	log     logger.Log
	service LessonService
}

func NewLessonHandler(log logger.Log, s LessonService) *LessonHandler {
	return &LessonHandler{log: log, service: s}
}

func (h *LessonHandler) ModuleLessons(c *gin.Context) {
	moduleID, ok := response.PathUUID(c, "module_id")
	if !ok {
		return
	}
	userID, ok := middleware.UserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not authenticated"})
		return
	}

	lessons, err := h.service.Lessons(c.Request.Context(), moduleID, userID)
	if err != nil {
		response.Error(c, h.log, "error listing lessons", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"lessons": lessons})
}

func (h *LessonHandler) LessonDetail(c *gin.Context) {
	lessonID, ok := response.PathUUID(c, "lesson_id")
	if !ok {
		return
	}
	userID, ok := middleware.UserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not authenticated"})
		return
	}

	detail, err := h.service.Lesson(c.Request.Context(), lessonID, userID)
	if err != nil {
		response.Error(c, h.log, "error retrieving lesson", err)
		return
	}
	c.JSON(http.StatusOK, detail)
}
