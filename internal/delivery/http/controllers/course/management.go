package course

import (
	"CivicLearn/internal/delivery/http/controllers/middleware"
	"CivicLearn/internal/delivery/http/controllers/response"
	"CivicLearn/internal/models"
	"CivicLearn/pkg/logger"
	"context"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const maxCourseImageBytes = 5 << 20

type ManagementService interface {
	CreateCourse(ctx context.Context, authorID uuid.UUID, title, description string) (*models.Course, error)
	UpdateCourse(ctx context.Context, id uuid.UUID, title, description string) (*models.Course, error)
	Publish(ctx context.Context, id uuid.UUID) (*models.Course, error)
	Unpublish(ctx context.Context, id uuid.UUID) (*models.Course, error)
	UploadCourseImage(ctx context.Context, courseID uuid.UUID, filename string, reader io.Reader, size int64, contentType string) (string, error)
	CreateModule(ctx context.Context, module models.Module) (*models.Module, error)
}

type ManagementHandler struct {
	log     logger.Log
	service ManagementService
}

func NewManagementHandler(l logger.Log, s ManagementService) *ManagementHandler {
	return &ManagementHandler{
		log:     l,
		service: s,
	}
}

type courseRequest struct {
	Title       string `json:"title" binding:"required,notblank,max=200"`
	Description string `json:"description" binding:"required"`
}

func (h *ManagementHandler) CreateCourse(c *gin.Context) {
	var input courseRequest
	if err := c.ShouldBindJSON(&input); err != nil {
		response.BindError(c, err)
		return
	}
	authorID, ok := middleware.UserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	course, err := h.service.CreateCourse(c.Request.Context(), authorID, input.Title, input.Description)
	if err != nil {
		response.Error(c, h.log, "error creating course", err)
		return
	}
	c.JSON(http.StatusCreated, course)
}

func (h *ManagementHandler) UpdateCourse(c *gin.Context) {
	courseID, ok := response.PathUUID(c, "course_id")
	if !ok {
		return
	}
	var input courseRequest
	if err := c.ShouldBindJSON(&input); err != nil {
		response.BindError(c, err)
		return
	}

	course, err := h.service.UpdateCourse(c.Request.Context(), courseID, input.Title, input.Description)
	if err != nil {
		response.Error(c, h.log, "error updating course", err)
		return
	}
	c.JSON(http.StatusOK, course)
}

func (h *ManagementHandler) PublishCourse(c *gin.Context) {
	h.changeStatus(c, h.service.Publish)
}

func (h *ManagementHandler) UnpublishCourse(c *gin.Context) {
	h.changeStatus(c, h.service.Unpublish)
}

func (h *ManagementHandler) changeStatus(c *gin.Context, change func(context.Context, uuid.UUID) (*models.Course, error)) {
	courseID, ok := response.PathUUID(c, "course_id")
	if !ok {
		return
	}
	course, err := change(c.Request.Context(), courseID)
	if err != nil {
		response.Error(c, h.log, "error changing course status", err)
		return
	}
	c.JSON(http.StatusOK, course)
}

func (h *ManagementHandler) UploadCourseImage(c *gin.Context) {
	courseID, ok := response.PathUUID(c, "course_id")
	if !ok {
		return
	}
	upload, ok := response.FormFile(c, "file", maxCourseImageBytes)
	if !ok {
		return
	}
	defer upload.File.Close()

	url, err := h.service.UploadCourseImage(c.Request.Context(), courseID, upload.Filename, upload.File, upload.Size, upload.ContentType)
	if err != nil {
		response.Error(c, h.log, "error uploading course image", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"image_url": url})
}

type moduleRequest struct {
	Title       string `json:"title" binding:"required,notblank,max=200"`
	Description string `json:"description"`
	Order       int    `json:"order" binding:"min=1"`
}

func (h *ManagementHandler) CreateModule(c *gin.Context) {
	courseID, ok := response.PathUUID(c, "course_id")
	if !ok {
		return
	}
	var input moduleRequest
	if err := c.ShouldBindJSON(&input); err != nil {
		response.BindError(c, err)
		return
	}

	module, err := h.service.CreateModule(c.Request.Context(), models.Module{
		CourseID:    courseID,
		Title:       input.Title,
		Description: input.Description,
		Order:       input.Order,
	})
	if err != nil {
		response.Error(c, h.log, "error creating module", err)
		return
	}
	c.JSON(http.StatusCreated, module)
}
