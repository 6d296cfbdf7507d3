package progress

import (
	"context"

	"CivicLearn/internal/models"

	"github.com/google/uuid"
)

type quizReader interface {
	Course(ctx context.Context, courseID uuid.UUID) (*models.Course, error)
	Module(ctx context.Context, moduleID uuid.UUID) (*models.Module, error)
	Lesson(ctx context.Context, lessonID uuid.UUID) (*models.Lesson, error)
	Questions(ctx context.Context, lessonID uuid.UUID) ([]models.Question, error)
	NextLesson(ctx context.Context, lesson models.Lesson) (*models.LessonRef, error)
	CourseModuleIDs(ctx context.Context, courseID uuid.UUID) ([]uuid.UUID, error)
}

type progressRepo interface {
	// LockLessonProgress gets or creates the row for (user, lesson) and holds
	// it for the rest of the transaction.
	LockLessonProgress(ctx context.Context, userID, lessonID uuid.UUID) (*models.LessonProgress, error)
	LessonProgressByID(ctx context.Context, id uuid.UUID) (*models.LessonProgress, error)
	SaveLessonProgress(ctx context.Context, p *models.LessonProgress) error

	LockModuleProgress(ctx context.Context, userID, moduleID uuid.UUID) (*models.ModuleProgress, error)
	SaveModuleProgress(ctx context.Context, p *models.ModuleProgress) error
	ModuleLessonCounts(ctx context.Context, userID, moduleID uuid.UUID) (total, completed int, err error)

	LockCourseProgress(ctx context.Context, userID, courseID uuid.UUID) (*models.CourseProgress, error)
	FindCourseProgress(ctx context.Context, userID, courseID uuid.UUID) (*models.CourseProgress, error)
	SaveCourseProgress(ctx context.Context, p *models.CourseProgress) error
	CourseModuleCounts(ctx context.Context, userID, courseID uuid.UUID) (total, completed int, err error)
}

type rewardRepo interface {
	CreateCertificate(ctx context.Context, cert *models.Certificate) error
	AwardModuleBadge(ctx context.Context, userID, moduleID uuid.UUID) (bool, error)
	RecordActivity(ctx context.Context, a *models.LearningActivity) error
}

// Repo is everything the state machine touches inside one transaction.
type Repo interface {
	quizReader
	progressRepo
	rewardRepo
}

// Store runs fn inside a single transaction. Rows locked through Repo stay
// locked until fn returns; a non-nil error rolls everything back.
type Store interface {
	WithTx(ctx context.Context, fn func(repo Repo) error) error
}
