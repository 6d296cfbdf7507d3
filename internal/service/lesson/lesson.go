package lesson

import (
	"CivicLearn/internal/app_errors"
	"CivicLearn/internal/models"
	"CivicLearn/pkg/logger"
	"context"
	"time"

	"github.com/google/uuid"
)

type lessonRepo interface {
	LessonByID(ctx context.Context, id uuid.UUID) (*models.Lesson, error)
	ModuleByID(ctx context.Context, id uuid.UUID) (*models.Module, error)
	LessonsByModule(ctx context.Context, moduleID, userID uuid.UUID) ([]models.LessonSummary, error)
	PreviousLesson(ctx context.Context, lesson models.Lesson) (*models.LessonRef, error)
	IsLessonCompleted(ctx context.Context, userID, lessonID uuid.UUID) (bool, error)
	Questions(ctx context.Context, lessonID uuid.UUID) ([]models.Question, error)
	RecordActivity(ctx context.Context, a *models.LearningActivity) error
}

type resourceStore interface {
	URL(ctx context.Context, objectKey string) (string, error)
}

type LessonService struct {
	log        logger.Log
	lessonRepo lessonRepo
	resources  resourceStore
	now        func() time.Time
}

func NewLessonService(l logger.Log, lessonRepo lessonRepo, resources resourceStore) *LessonService {
	return &LessonService{
		log:        l,
		lessonRepo: lessonRepo,
		resources:  resources,
		now:        time.Now,
	}
}

func (s *LessonService) Lessons(ctx context.Context, moduleID, userID uuid.UUID) ([]models.LessonSummary, error) {
	if _, err := s.lessonRepo.ModuleByID(ctx, moduleID); err != nil {
		return nil, err
	}
	return s.lessonRepo.LessonsByModule(ctx, moduleID, userID)
}

// Lesson opens a lesson for the user. The previous lesson of the module must
// be completed first unless this one already is.
func (s *LessonService) Lesson(ctx context.Context, lessonID, userID uuid.UUID) (*models.LessonDetail, error) {
	lesson, err := s.lessonRepo.LessonByID(ctx, lessonID)
	if err != nil {
		return nil, err
	}

	completed, err := s.lessonRepo.IsLessonCompleted(ctx, userID, lessonID)
	if err != nil {
		return nil, err
	}
	if !completed {
		prev, err := s.lessonRepo.PreviousLesson(ctx, *lesson)
		if err != nil {
			return nil, err
		}
		if prev != nil {
			prevDone, err := s.lessonRepo.IsLessonCompleted(ctx, userID, prev.ID)
			if err != nil {
				return nil, err
			}
			if !prevDone {
				return nil, app_errors.ErrPreviousLessonIncomplete
			}
		}
	}

	questions, err := s.lessonRepo.Questions(ctx, lessonID)
	if err != nil {
		return nil, err
	}
	detail := &models.LessonDetail{
		Lesson:    *lesson,
		Questions: make([]models.PublicQuestion, 0, len(questions)),
		Completed: completed,
	}
	for _, q := range questions {
		detail.Questions = append(detail.Questions, q.Public())
	}

	if lesson.ResourceObjectKey != nil {
		url, err := s.resources.URL(ctx, *lesson.ResourceObjectKey)
		if err != nil {
			s.log.ErrorErr("lesson detail: failed to presign resource", err, "lesson_id", lessonID)
		} else {
			detail.ResourceURL = url
		}
	}

	s.recordView(ctx, userID, lesson)
	return detail, nil
}

func (s *LessonService) recordView(ctx context.Context, userID uuid.UUID, lesson *models.Lesson) {
	lessonID, moduleID, courseID := lesson.ID, lesson.ModuleID, lesson.CourseID
	err := s.lessonRepo.RecordActivity(ctx, &models.LearningActivity{
		UserID:    userID,
		Type:      models.ActivityViewLesson,
		LessonID:  &lessonID,
		ModuleID:  &moduleID,
		CourseID:  &courseID,
		CreatedAt: s.now().UTC(),
	})
	if err != nil {
		s.log.ErrorErr("failed to record lesson view", err, "lesson_id", lesson.ID, "user_id", userID)
	}
}
