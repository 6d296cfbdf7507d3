package lesson

import (
	"CivicLearn/internal/delivery/http/controllers/response"
	"CivicLearn/internal/models"
	lessonmgmt "CivicLearn/internal/service/lesson/management"
	"CivicLearn/pkg/logger"
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	maxResourceBytes  = 50 << 20
	maxBadgeIconBytes = 1 << 20
)

type ManagementService interface {
	CreateLesson(ctx context.Context, lesson models.Lesson) (*models.Lesson, error)
	CreateQuestion(ctx context.Context, q models.Question) (*models.Question, error)
	UploadResource(ctx context.Context, lessonID uuid.UUID, file lessonmgmt.Upload) (string, error)
	CreateBadge(ctx context.Context, badge models.Badge, icon *lessonmgmt.Upload) (*models.Badge, error)
}

type ManagementHandler struct {
	log     logger.Log
	service ManagementService
}

func NewManagementHandler(l logger.Log, s ManagementService) *ManagementHandler {
	return &ManagementHandler{log: l, service: s}
}

type lessonRequest struct {
	Title    string `json:"title" binding:"required,notblank,max=200"`
	Content  string `json:"content"`
	VideoURL string `json:"video_url" binding:"omitempty,url"`
	Order    int    `json:"order" binding:"min=1"`
}

func (h *ManagementHandler) CreateLesson(c *gin.Context) {
	moduleID, ok := response.PathUUID(c, "module_id")
	if !ok {
		return
	}
	var input lessonRequest
	if err := c.ShouldBindJSON(&input); err != nil {
		response.BindError(c, err)
		return
	}

	lesson, err := h.service.CreateLesson(c.Request.Context(), models.Lesson{
		ModuleID: moduleID,
		Title:    input.Title,
		Content:  input.Content,
		VideoURL: input.VideoURL,
		Order:    input.Order,
	})
	if err != nil {
		response.Error(c, h.log, "error creating lesson", err)
		return
	}
	c.JSON(http.StatusCreated, lesson)
}

type answerRequest struct {
	Text      string `json:"text" binding:"required,notblank"`
	IsCorrect bool   `json:"is_correct"`
}

type questionRequest struct {
	Text                  string          `json:"text" binding:"required,notblank"`
	Order                 int             `json:"order" binding:"min=1"`
	AllowsMultipleAnswers bool            `json:"allows_multiple_answers"`
	Answers               []answerRequest `json:"answers" binding:"required,min=2,dive"`
}

func (h *ManagementHandler) CreateQuestion(c *gin.Context) {
	lessonID, ok := response.PathUUID(c, "lesson_id")
	if !ok {
		return
	}
	var input questionRequest
	if err := c.ShouldBindJSON(&input); err != nil {
		response.BindError(c, err)
		return
	}

	q := models.Question{
		LessonID:              lessonID,
		Text:                  input.Text,
		Order:                 input.Order,
		AllowsMultipleAnswers: input.AllowsMultipleAnswers,
		Answers:               make([]models.Answer, 0, len(input.Answers)),
	}
	for _, a := range input.Answers {
		q.Answers = append(q.Answers, models.Answer{Text: a.Text, IsCorrect: a.IsCorrect})
	}

	created, err := h.service.CreateQuestion(c.Request.Context(), q)
	if err != nil {
		response.Error(c, h.log, "error creating question", err)
		return
	}
	c.JSON(http.StatusCreated, created)
}

func (h *ManagementHandler) UploadResource(c *gin.Context) {
	lessonID, ok := response.PathUUID(c, "lesson_id")
	if !ok {
		return
	}
	upload, ok := response.FormFile(c, "file", maxResourceBytes)
	if !ok {
		return
	}
	defer upload.File.Close()

	url, err := h.service.UploadResource(c.Request.Context(), lessonID, lessonmgmt.Upload{
		Filename:    upload.Filename,
		Reader:      upload.File,
		Size:        upload.Size,
		ContentType: upload.ContentType,
	})
	if err != nil {
		response.Error(c, h.log, "error uploading lesson resource", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"resource_url": url})
}

type badgeForm struct {
	Name        string `form:"name" binding:"required,notblank,max=100"`
	Description string `form:"description"`
}

// CreateBadge takes a multipart form; the icon part is optional.
func (h *ManagementHandler) CreateBadge(c *gin.Context) {
	moduleID, ok := response.PathUUID(c, "module_id")
	if !ok {
		return
	}
	var input badgeForm
	if err := c.ShouldBind(&input); err != nil {
		response.BindError(c, err)
		return
	}

	var icon *lessonmgmt.Upload
	if _, err := c.FormFile("icon"); err == nil {
		upload, ok := response.FormFile(c, "icon", maxBadgeIconBytes)
		if !ok {
			return
		}
		defer upload.File.Close()
		icon = &lessonmgmt.Upload{
			Filename:    upload.Filename,
			Reader:      upload.File,
			Size:        upload.Size,
			ContentType: upload.ContentType,
		}
	} else if !errors.Is(err, http.ErrMissingFile) && !errors.Is(err, http.ErrNotMultipart) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid icon upload"})
		return
	}

	badge, err := h.service.CreateBadge(c.Request.Context(), models.Badge{
		ModuleID:    moduleID,
		Name:        input.Name,
		Description: input.Description,
	}, icon)
	if err != nil {
		response.Error(c, h.log, "error creating badge", err)
		return
	}
	c.JSON(http.StatusCreated, badge)
}
