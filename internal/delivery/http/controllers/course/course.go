package course

import (
	"CivicLearn/internal/delivery/http/controllers/middleware"
	"CivicLearn/internal/delivery/http/controllers/response"
	"CivicLearn/internal/models"
	"CivicLearn/pkg/logger"
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type CourseService interface {
	Courses(ctx context.Context, limit, offset int) ([]models.CoursePreview, int, error)
	Course(ctx context.Context, id uuid.UUID) (*models.CoursePreview, error)
	Search(ctx context.Context, query string, limit, offset int) ([]models.CoursePreview, int, error)
	Enroll(ctx context.Context, userID, courseID uuid.UUID) (*models.Enrollment, error)
	MyCourses(ctx context.Context, userID uuid.UUID) ([]models.EnrolledCourse, error)
	Modules(ctx context.Context, courseID, userID uuid.UUID) ([]models.ModuleSummary, error)
}

type CourseHandler struct {
	log     logger.Log
	service CourseService
}

func NewCourseHandler(log logger.Log, s CourseService) *CourseHandler {
	return &CourseHandler{
		log:     log,
		service: s,
	}
}

type listResponse struct {
	Courses []models.CoursePreview `json:"courses"`
	Total   int                    `json:"total"`
}

func (h *CourseHandler) ListCourses(c *gin.Context) {
	var page response.Pagination
	if err := c.ShouldBindQuery(&page); err != nil {
		response.BindError(c, err)
		return
	}

	courses, total, err := h.service.Courses(c.Request.Context(), page.Limit, page.Offset)
	if err != nil {
		response.Error(c, h.log, "error listing courses", err)
		return
	}
	c.JSON(http.StatusOK, listResponse{Courses: courses, Total: total})
}

type searchQuery struct {
	response.Pagination
	Query string `form:"q" binding:"required,notblank,max=200"`
}

func (h *CourseHandler) SearchCourses(c *gin.Context) {
	var q searchQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		response.BindError(c, err)
		return
	}

	courses, total, err := h.service.Search(c.Request.Context(), strings.TrimSpace(q.Query), q.Limit, q.Offset)
	if err != nil {
		response.Error(c, h.log, "error searching courses", err)
		return
	}
	c.JSON(http.StatusOK, listResponse{Courses: courses, Total: total})
}

func (h *CourseHandler) CourseByID(c *gin.Context) {
	courseID, ok := response.PathUUID(c, "course_id")
	if !ok {
		return
	}

	course, err := h.service.Course(c.Request.Context(), courseID)
	if err != nil {
		response.Error(c, h.log, "error retrieving course", err)
		return
	}
	c.JSON(http.StatusOK, course)
}

func (h *CourseHandler) Enroll(c *gin.Context) {
	courseID, ok := response.PathUUID(c, "course_id")
	if !ok {
		return
	}
	userID, ok := middleware.UserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not authenticated"})
		return
	}

	enrollment, err := h.service.Enroll(c.Request.Context(), userID, courseID)
	if err != nil {
		response.Error(c, h.log, "error enrolling in course", err)
		return
	}
	c.JSON(http.StatusCreated, enrollment)
}

func (h *CourseHandler) MyCourses(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not authenticated"})
		return
	}

	courses, err := h.service.MyCourses(c.Request.Context(), userID)
	if err != nil {
		response.Error(c, h.log, "error listing enrolled courses", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"courses": courses})
}

func (h *CourseHandler) Modules(c *gin.Context) {
	courseID, ok := response.PathUUID(c, "course_id")
	if !ok {
		return
	}
	userID, ok := middleware.UserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not authenticated"})
		return
	}

	modules, err := h.service.Modules(c.Request.Context(), courseID, userID)
	if err != nil {
		response.Error(c, h.log, "error listing modules", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"modules": modules})
}
