package management

import (
	"CivicLearn/internal/app_errors"
	"CivicLearn/internal/models"
	"CivicLearn/pkg/logger"
	"context"
	"fmt"
	"io"
	"mime"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

const maxImageSizeBytes = 5 << 20

type courseRepo interface {
	CreateCourse(ctx context.Context, course *models.Course) error
	UpdateCourse(ctx context.Context, course *models.Course) error
	CourseByID(ctx context.Context, id uuid.UUID) (*models.Course, error)
	ChangeStatus(ctx context.Context, id uuid.UUID, status string) error
	SetImageKey(ctx context.Context, id uuid.UUID, key string) error
	CreateModule(ctx context.Context, module *models.Module) error
}

type courseIndex interface {
	Index(ctx context.Context, course models.Course) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type imageStore interface {
	Upload(ctx context.Context, ownerID uuid.UUID, filename string, reader io.Reader, size int64, contentType string) (string, error)
	URL(ctx context.Context, objectKey string) (string, error)
	Delete(ctx context.Context, objectKey string) error
}

// ManagementService is the admin side of the catalog.
type ManagementService struct {
	log        logger.Log
	courseRepo courseRepo
	index      courseIndex
	images     imageStore
}

// index may be nil when search is disabled.
func NewManagementService(log logger.Log, courseRepo courseRepo, index courseIndex, images imageStore) *ManagementService {
	return &ManagementService{
		log:        log,
		courseRepo: courseRepo,
		index:      index,
		images:     images,
	}
}

func (s *ManagementService) CreateCourse(ctx context.Context, authorID uuid.UUID, title, description string) (*models.Course, error) {
	course := &models.Course{
		Title:       strings.TrimSpace(title),
		Description: description,
		Status:      models.StatusDraft,
		AuthorID:    authorID,
	}
	if err := s.courseRepo.CreateCourse(ctx, course); err != nil {
		return nil, err
	}
	s.log.Info("course created", "course_id", course.ID, "author_id", authorID)
	return course, nil
}

func (s *ManagementService) UpdateCourse(ctx context.Context, id uuid.UUID, title, description string) (*models.Course, error) {
	course, err := s.courseRepo.CourseByID(ctx, id)
	if err != nil {
		return nil, err
	}
	course.Title = strings.TrimSpace(title)
	course.Description = description
	if err := s.courseRepo.UpdateCourse(ctx, course); err != nil {
		return nil, err
	}
	if course.Status == models.StatusPublished {
		s.reindex(ctx, *course)
	}
	return course, nil
}

func (s *ManagementService) Publish(ctx context.Context, id uuid.UUID) (*models.Course, error) {
	course, err := s.courseRepo.CourseByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.courseRepo.ChangeStatus(ctx, id, models.StatusPublished); err != nil {
		return nil, err
	}
	course.Status = models.StatusPublished
	s.reindex(ctx, *course)
	s.log.Info("course published", "course_id", id)
	return course, nil
}

func (s *ManagementService) Unpublish(ctx context.Context, id uuid.UUID) (*models.Course, error) {
	course, err := s.courseRepo.CourseByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.courseRepo.ChangeStatus(ctx, id, models.StatusDraft); err != nil {
		return nil, err
	}
	course.Status = models.StatusDraft
	if s.index != nil {
		if err := s.index.Delete(ctx, id); err != nil {
			s.log.ErrorErr("unpublish: failed to drop course from index", err, "course_id", id)
		}
	}
	return course, nil
}

// reindex failures are logged only; the database stays the source of truth
// and search falls back to it.
func (s *ManagementService) reindex(ctx context.Context, course models.Course) {
	if s.index == nil {
		return
	}
	if err := s.index.Index(ctx, course); err != nil {
		s.log.ErrorErr("failed to index course", err, "course_id", course.ID)
	}
}

func (s *ManagementService) UploadCourseImage(
	ctx context.Context,
	courseID uuid.UUID,
	filename string,
	reader io.Reader,
	size int64,
	contentType string,
) (string, error) {
	course, err := s.courseRepo.CourseByID(ctx, courseID)
	if err != nil {
		return "", err
	}
	if size > maxImageSizeBytes {
		return "", fmt.Errorf("%w: image larger than %d bytes", app_errors.ErrInvalidObject, maxImageSizeBytes)
	}
	if contentType == "" {
		contentType = mime.TypeByExtension(strings.ToLower(filepath.Ext(filename)))
	}
	if !strings.HasPrefix(contentType, "image/") {
		return "", fmt.Errorf("%w: not an image", app_errors.ErrInvalidObject)
	}

	objectKey, err := s.images.Upload(ctx, courseID, filename, reader, size, contentType)
	if err != nil {
		s.log.ErrorErr("failed to upload course image", err)
		return "", err
	}
	if err := s.courseRepo.SetImageKey(ctx, courseID, objectKey); err != nil {
		_ = s.images.Delete(ctx, objectKey)
		return "", err
	}
	if course.ImageObjectKey != nil {
		if err := s.images.Delete(ctx, *course.ImageObjectKey); err != nil {
			s.log.ErrorErr("failed to delete previous course image", err)
		}
	}
	return s.images.URL(ctx, objectKey)
}

func (s *ManagementService) CreateModule(ctx context.Context, module models.Module) (*models.Module, error) {
	if _, err := s.courseRepo.CourseByID(ctx, module.CourseID); err != nil {
		return nil, err
	}
	module.Title = strings.TrimSpace(module.Title)
	if err := s.courseRepo.CreateModule(ctx, &module); err != nil {
		return nil, err
	}
	return &module, nil
}
