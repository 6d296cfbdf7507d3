package lesson

import (
	"CivicLearn/internal/delivery/http/controllers/middleware"
	"CivicLearn/internal/delivery/http/controllers/response"
	"CivicLearn/internal/models"
	"CivicLearn/internal/service/lesson/progress"
	"CivicLearn/pkg/logger"
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type ProgressService interface {
	SubmitLesson(ctx context.Context, userID, lessonID uuid.UUID, sub models.Submission) (*progress.Result, error)
	SubmitProgress(ctx context.Context, userID, progressID uuid.UUID, sub models.Submission) (*progress.Result, error)
	LessonState(ctx context.Context, userID, lessonID uuid.UUID) (*progress.Result, error)
	CourseProgress(ctx context.Context, userID, courseID uuid.UUID) (*progress.CourseSummary, error)
	Reconcile(ctx context.Context, userID, courseID uuid.UUID) (*progress.CourseSummary, error)
}

type ProgressHandler struct {
	log     logger.Log
	service ProgressService
}

func NewProgressHandler(log logger.Log, service ProgressService) *ProgressHandler {
	return &ProgressHandler{log, service}
}

type submitRequest struct {
	LessonID uuid.UUID         `json:"lesson_id" binding:"required"`
	Answers  models.Submission `json:"answers" binding:"required"`
}

// Submit grades an attempt. A gated attempt is still a 200 with blocked set.
func (h *ProgressHandler) Submit(c *gin.Context) {
	var req submitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BindError(c, err)
		return
	}
	userID, ok := middleware.UserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not authenticated"})
		return
	}

	res, err := h.service.SubmitLesson(c.Request.Context(), userID, req.LessonID, req.Answers)
	if err != nil {
		response.Error(c, h.log, "error submitting lesson", err)
		return
	}
	c.JSON(http.StatusOK, res)
}

type updateRequest struct {
	Answers models.Submission `json:"answers" binding:"required"`
}

func (h *ProgressHandler) Update(c *gin.Context) {
	progressID, ok := response.PathUUID(c, "progress_id")
	if !ok {
		return
	}
	var req updateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BindError(c, err)
		return
	}
	userID, ok := middleware.UserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not authenticated"})
		return
	}

	res, err := h.service.SubmitProgress(c.Request.Context(), userID, progressID, req.Answers)
	if err != nil {
		response.Error(c, h.log, "error updating lesson progress", err)
		return
	}
	c.JSON(http.StatusOK, res)
}

func (h *ProgressHandler) ByLesson(c *gin.Context) {
	lessonID, ok := response.PathUUID(c, "lesson_id")
	if !ok {
		return
	}
	userID, ok := middleware.UserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not authenticated"})
		return
	}

	res, err := h.service.LessonState(c.Request.Context(), userID, lessonID)
	if err != nil {
		response.Error(c, h.log, "error retrieving lesson progress", err)
		return
	}
	c.JSON(http.StatusOK, res)
}

func (h *ProgressHandler) CourseProgress(c *gin.Context) {
	h.courseSummary(c, "error retrieving course progress", h.service.CourseProgress)
}

func (h *ProgressHandler) Reconcile(c *gin.Context) {
	h.courseSummary(c, "error reconciling course progress", h.service.Reconcile)
}

func (h *ProgressHandler) courseSummary(c *gin.Context, msg string, load func(context.Context, uuid.UUID, uuid.UUID) (*progress.CourseSummary, error)) {
	courseID, ok := response.PathUUID(c, "course_id")
	if !ok {
		return
	}
	userID, ok := middleware.UserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not authenticated"})
		return
	}

	summary, err := load(c.Request.Context(), userID, courseID)
	if err != nil {
		response.Error(c, h.log, msg, err)
		return
	}
	c.JSON(http.StatusOK, summary)
}
