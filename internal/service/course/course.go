package course

import (
	"CivicLearn/internal/app_errors"
	"CivicLearn/internal/models"
	"CivicLearn/pkg/logger"
	"context"
	"fmt"

	"github.com/google/uuid"
)

const (
	DefaultPageSize = 20
	MaxPageSize     = 100
)

type courseRepo interface {
	CourseByID(ctx context.Context, id uuid.UUID) (*models.Course, error)
	PublishedPreviews(ctx context.Context, limit, offset int) ([]models.CoursePreview, int, error)
	PreviewsByIDs(ctx context.Context, ids []uuid.UUID) ([]models.CoursePreview, error)
	SearchPreviews(ctx context.Context, query string, limit int) ([]models.CoursePreview, error)
	Enroll(ctx context.Context, userID, courseID uuid.UUID) (*models.Enrollment, error)
	EnrolledCourses(ctx context.Context, userID uuid.UUID) ([]models.EnrolledCourse, error)
	ModulesByCourse(ctx context.Context, courseID, userID uuid.UUID) ([]models.ModuleSummary, error)
}

type searchIndex interface {
	Search(ctx context.Context, query string, limit, offset int) ([]uuid.UUID, int, error)
}

type imageStore interface {
	URL(ctx context.Context, objectKey string) (string, error)
}

type CourseService struct {
	log        logger.Log
	courseRepo courseRepo
	search     searchIndex
	images     imageStore
}

// NewCourseService builds the learner-facing catalog. search may be nil, in
// which case text search runs against the database.
func NewCourseService(log logger.Log, courseRepo courseRepo, search searchIndex, images imageStore) *CourseService {
	return &CourseService{
		log:        log,
		courseRepo: courseRepo,
		search:     search,
		images:     images,
	}
}

func clampPage(limit, offset int) (int, int) {
	if limit <= 0 {
		limit = DefaultPageSize
	}
	if limit > MaxPageSize {
		limit = MaxPageSize
	}
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}

func (s *CourseService) withImage(ctx context.Context, p *models.CoursePreview) {
	if p.ImageKey == nil {
		return
	}
	url, err := s.images.URL(ctx, *p.ImageKey)
	if err != nil {
		s.log.ErrorErr("course preview: failed to presign image", err, "course_id", p.ID)
		return
	}
	p.ImageURL = url
}

func (s *CourseService) withImages(ctx context.Context, previews []models.CoursePreview) []models.CoursePreview {
	if previews == nil {
		return []models.CoursePreview{}
	}
	for i := range previews {
		s.withImage(ctx, &previews[i])
	}
	return previews
}

func (s *CourseService) Courses(ctx context.Context, limit, offset int) ([]models.CoursePreview, int, error) {
	limit, offset = clampPage(limit, offset)
	previews, total, err := s.courseRepo.PublishedPreviews(ctx, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	return s.withImages(ctx, previews), total, nil
}

// Course returns a published course. Drafts are reported as missing.
func (s *CourseService) Course(ctx context.Context, id uuid.UUID) (*models.CoursePreview, error) {
	previews, err := s.courseRepo.PreviewsByIDs(ctx, []uuid.UUID{id})
	if err != nil {
		return nil, err
	}
	if len(previews) == 0 {
		return nil, app_errors.ErrCourseNotFound
	}
	s.withImage(ctx, &previews[0])
	return &previews[0], nil
}

func (s *CourseService) Search(ctx context.Context, query string, limit, offset int) ([]models.CoursePreview, int, error) {
	limit, offset = clampPage(limit, offset)

	if s.search != nil {
		ids, total, err := s.search.Search(ctx, query, limit, offset)
		if err == nil {
			previews, err := s.courseRepo.PreviewsByIDs(ctx, ids)
			if err != nil {
				return nil, 0, fmt.Errorf("search: load previews: %w", err)
			}
			return s.withImages(ctx, previews), total, nil
		}
		s.log.ErrorErr("search: index unavailable, falling back to database", err)
	}

	previews, err := s.courseRepo.SearchPreviews(ctx, query, limit+offset)
	if err != nil {
		return nil, 0, err
	}
	total := len(previews)
	if offset >= len(previews) {
		return []models.CoursePreview{}, total, nil
	}
	return s.withImages(ctx, previews[offset:]), total, nil
}

func (s *CourseService) Enroll(ctx context.Context, userID, courseID uuid.UUID) (*models.Enrollment, error) {
	course, err := s.courseRepo.CourseByID(ctx, courseID)
	if err != nil {
		return nil, err
	}
	if course.Status != models.StatusPublished {
		return nil, app_errors.ErrCourseNotPublished
	}
	enrollment, err := s.courseRepo.Enroll(ctx, userID, courseID)
	if err != nil {
		return nil, err
	}
	s.log.Info("user enrolled", "user_id", userID, "course_id", courseID)
	return enrollment, nil
}

func (s *CourseService) MyCourses(ctx context.Context, userID uuid.UUID) ([]models.EnrolledCourse, error) {
	enrolled, err := s.courseRepo.EnrolledCourses(ctx, userID)
	if err != nil {
		return nil, err
	}
	if enrolled == nil {
		return []models.EnrolledCourse{}, nil
	}
	for i := range enrolled {
		s.withImage(ctx, &enrolled[i].Course)
	}
	return enrolled, nil
}

func (s *CourseService) Modules(ctx context.Context, courseID, userID uuid.UUID) ([]models.ModuleSummary, error) {
	if _, err := s.courseRepo.CourseByID(ctx, courseID); err != nil {
		return nil, err
	}
	modules, err := s.courseRepo.ModulesByCourse(ctx, courseID, userID)
	if err != nil {
		return nil, err
	}
	if modules == nil {
		return []models.ModuleSummary{}, nil
	}
	return modules, nil
}
