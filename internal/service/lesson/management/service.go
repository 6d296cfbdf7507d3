package management

import (
	"CivicLearn/internal/app_errors"
	"CivicLearn/internal/models"
	"CivicLearn/pkg/logger"
	"context"
	"errors"
	"io"
	"strings"

	"github.com/google/uuid"
)

type lessonRepo interface {
	ModuleByID(ctx context.Context, id uuid.UUID) (*models.Module, error)
	LessonByID(ctx context.Context, id uuid.UUID) (*models.Lesson, error)
	CreateLesson(ctx context.Context, lesson *models.Lesson) error
	CreateQuestion(ctx context.Context, q *models.Question) error
	SetResourceKey(ctx context.Context, lessonID uuid.UUID, key string) error
	CreateBadge(ctx context.Context, b *models.Badge) error
}

type objectStore interface {
	Upload(ctx context.Context, ownerID uuid.UUID, filename string, reader io.Reader, size int64, contentType string) (string, error)
	URL(ctx context.Context, objectKey string) (string, error)
	Delete(ctx context.Context, objectKey string) error
}

// Upload is a file handed over by the transport layer.
type Upload struct {
	Filename    string
	Reader      io.Reader
	Size        int64
	ContentType string
}

type ManagementService struct {
	log        logger.Log
	lessonRepo lessonRepo
	resources  objectStore
	badgeIcons objectStore
}

func NewManagementService(l logger.Log, lessonRepo lessonRepo, resources, badgeIcons objectStore) *ManagementService {
	return &ManagementService{
		log:        l,
		lessonRepo: lessonRepo,
		resources:  resources,
		badgeIcons: badgeIcons,
	}
}

func (s *ManagementService) CreateLesson(ctx context.Context, lesson models.Lesson) (*models.Lesson, error) {
	module, err := s.lessonRepo.ModuleByID(ctx, lesson.ModuleID)
	if err != nil {
		return nil, err
	}
	lesson.CourseID = module.CourseID
	lesson.Title = strings.TrimSpace(lesson.Title)
	if err := s.lessonRepo.CreateLesson(ctx, &lesson); err != nil {
		return nil, err
	}
	return &lesson, nil
}

// ValidateQuestion enforces the write-time answer rules: at least one
// correct answer, and exactly one unless the question allows several.
func ValidateQuestion(q models.Question) error {
	correct := 0
	for _, a := range q.Answers {
		if a.IsCorrect {
			correct++
		}
	}
	switch {
	case correct == 0:
		return app_errors.ErrNoCorrectAnswer
	case correct > 1 && !q.AllowsMultipleAnswers:
		return app_errors.ErrMultipleCorrectAnswers
	}
	return nil
}

func (s *ManagementService) CreateQuestion(ctx context.Context, q models.Question) (*models.Question, error) {
	if err := ValidateQuestion(q); err != nil {
		return nil, err
	}
	if _, err := s.lessonRepo.LessonByID(ctx, q.LessonID); err != nil {
		return nil, err
	}
	for i := range q.Answers {
		if q.Answers[i].Order == 0 {
			q.Answers[i].Order = i + 1
		}
	}
	if err := s.lessonRepo.CreateQuestion(ctx, &q); err != nil {
		return nil, err
	}
	return &q, nil
}

func (s *ManagementService) UploadResource(ctx context.Context, lessonID uuid.UUID, file Upload) (string, error) {
	lesson, err := s.lessonRepo.LessonByID(ctx, lessonID)
	if err != nil {
		return "", err
	}
	key, err := s.resources.Upload(ctx, lessonID, file.Filename, file.Reader, file.Size, file.ContentType)
	if err != nil {
		s.log.ErrorErr("failed to upload lesson resource", err, "lesson_id", lessonID)
		return "", err
	}
	if err := s.lessonRepo.SetResourceKey(ctx, lessonID, key); err != nil {
		_ = s.resources.Delete(ctx, key)
		return "", err
	}
	if lesson.ResourceObjectKey != nil {
		if err := s.resources.Delete(ctx, *lesson.ResourceObjectKey); err != nil {
			s.log.ErrorErr("failed to delete previous lesson resource", err, "lesson_id", lessonID)
		}
	}
	return s.resources.URL(ctx, key)
}

// CreateBadge attaches the module's badge. icon is optional.
func (s *ManagementService) CreateBadge(ctx context.Context, badge models.Badge, icon *Upload) (*models.Badge, error) {
	if _, err := s.lessonRepo.ModuleByID(ctx, badge.ModuleID); err != nil {
		return nil, err
	}

	if icon != nil {
		key, err := s.badgeIcons.Upload(ctx, badge.ModuleID, icon.Filename, icon.Reader, icon.Size, icon.ContentType)
		if err != nil {
			return nil, err
		}
		badge.IconObjectKey = &key
	}

	if err := s.lessonRepo.CreateBadge(ctx, &badge); err != nil {
		if badge.IconObjectKey != nil {
			_ = s.badgeIcons.Delete(ctx, *badge.IconObjectKey)
		}
		if errors.Is(err, app_errors.ErrBadgeExists) {
			return nil, err
		}
		s.log.ErrorErr("failed to create badge", err, "module_id", badge.ModuleID)
		return nil, err
	}

	if badge.IconObjectKey != nil {
		if url, err := s.badgeIcons.URL(ctx, *badge.IconObjectKey); err == nil {
			badge.IconURL = url
		}
	}
	return &badge, nil
}
