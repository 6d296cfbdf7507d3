package progress

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"CivicLearn/internal/app_errors"
	"CivicLearn/internal/models"
	"CivicLearn/pkg/logger"

	"github.com/google/uuid"
)

// Result is returned for every submission, whichever branch was taken.
type Result struct {
	Progress         models.LessonProgress `json:"progress"`
	Percentage       float64               `json:"percentage"`
	Passed           bool                  `json:"passed"`
	NextLessonID     *uuid.UUID            `json:"next_lesson_id"`
	NextLessonTitle  *string               `json:"next_lesson_title"`
	RetryAllowed     bool                  `json:"retry_allowed"`
	Blocked          bool                  `json:"blocked"`
	UnlockAt         *time.Time            `json:"unlock_at"`
	SecondsRemaining int64                 `json:"seconds_remaining"`
	ModuleCompleted  bool                  `json:"module_completed"`
	CourseCompleted  bool                  `json:"course_completed"`
	CertificateCode  *string               `json:"certificate_code,omitempty"`
}

type LessonProgressService struct {
	log     logger.Log
	store   Store
	policy  Policy
	now     func() time.Time
	newCode func() string
}

func NewLessonProgressService(log logger.Log, store Store, policy Policy) *LessonProgressService {
	return &LessonProgressService{
		log:     log,
		store:   store,
		policy:  policy,
		now:     func() time.Time { return time.Now().UTC() },
		newCode: newCertificateCode,
	}
}

func (s *LessonProgressService) SubmitLesson(ctx context.Context, userID, lessonID uuid.UUID, sub models.Submission) (*Result, error) {
	var res *Result
	err := s.store.WithTx(ctx, func(repo Repo) error {
		lesson, err := repo.Lesson(ctx, lessonID)
		if err != nil {
			return err
		}
		lp, err := repo.LockLessonProgress(ctx, userID, lessonID)
		if err != nil {
			return fmt.Errorf("load lesson progress: %w", err)
		}
		res, err = s.attempt(ctx, repo, *lesson, *lp, sub)
		return err
	})
	if err != nil {
		return nil, err
	}
	return res, nil
}

// SubmitProgress submits against an existing progress record owned by userID.
func (s *LessonProgressService) SubmitProgress(ctx context.Context, userID, progressID uuid.UUID, sub models.Submission) (*Result, error) {
	var res *Result
	err := s.store.WithTx(ctx, func(repo Repo) error {
		existing, err := repo.LessonProgressByID(ctx, progressID)
		if err != nil {
			return err
		}
		if existing.UserID != userID {
			return app_errors.ErrProgressNotFound
		}
		lesson, err := repo.Lesson(ctx, existing.LessonID)
		if err != nil {
			return err
		}
		lp, err := repo.LockLessonProgress(ctx, userID, lesson.ID)
		if err != nil {
			return fmt.Errorf("load lesson progress: %w", err)
		}
		res, err = s.attempt(ctx, repo, *lesson, *lp, sub)
		return err
	})
	if err != nil {
		return nil, err
	}
	return res, nil
}

// LessonState returns the (lazily created) progress for a lesson together with
// the gate state, without attempting anything.
func (s *LessonProgressService) LessonState(ctx context.Context, userID, lessonID uuid.UUID) (*Result, error) {
	var res *Result
	err := s.store.WithTx(ctx, func(repo Repo) error {
		lesson, err := repo.Lesson(ctx, lessonID)
		if err != nil {
			return err
		}
		lp, err := repo.LockLessonProgress(ctx, userID, lessonID)
		if err != nil {
			return fmt.Errorf("load lesson progress: %w", err)
		}
		questions, err := repo.Questions(ctx, lessonID)
		if err != nil {
			return err
		}
		now := s.now()
		res = &Result{
			Progress:   *lp,
			Percentage: percentageOf(lp.Score, len(questions)),
			Passed:     lp.Completed,
		}
		res.Blocked = !s.policy.CanAttempt(*lp, now)
		s.annotateGate(res, *lp, now)
		return s.attachNext(ctx, repo, res, *lesson)
	})
	if err != nil {
		return nil, err
	}
	return res, nil
}

func (s *LessonProgressService) attempt(ctx context.Context, repo Repo, lesson models.Lesson, lp models.LessonProgress, sub models.Submission) (*Result, error) {
	now := s.now()

	if err := s.policy.Check(lp, now); err != nil {
		var limitErr *AttemptLimitError
		if !errors.As(err, &limitErr) {
			return nil, err
		}
		s.log.Info("lesson attempt blocked",
			"user_id", lp.UserID, "lesson_id", lesson.ID, "unlock_at", limitErr.UnlockAt)
		unlockAt := limitErr.UnlockAt
		return &Result{
			Progress:         lp,
			Blocked:          true,
			UnlockAt:         &unlockAt,
			SecondsRemaining: limitErr.SecondsRemaining,
		}, nil
	}

	questions, err := repo.Questions(ctx, lesson.ID)
	if err != nil {
		return nil, err
	}
	grade := GradeQuiz(questions, sub, s.policy.PassPercentage)

	wasCompleted := lp.Completed
	lp.Attempts++
	lp.LastAttemptedAt = &now
	lp.Score = grade.Score
	lp.PointsAwarded = grade.Score
	if grade.Passed && !lp.Completed {
		lp.Completed = true
		lp.CompletedAt = &now
	}
	if err := repo.SaveLessonProgress(ctx, &lp); err != nil {
		return nil, fmt.Errorf("save lesson progress: %w", err)
	}

	activity := models.ActivityFailQuiz
	if grade.Passed {
		activity = models.ActivityPassQuiz
	}
	if err := s.record(ctx, repo, lp.UserID, activity, &lesson, map[string]any{
		"score": grade.Score, "total": grade.Total, "attempt": lp.Attempts,
	}); err != nil {
		return nil, err
	}

	res := &Result{
		Progress:   lp,
		Percentage: grade.Percentage,
		Passed:     grade.Passed,
	}

	if !wasCompleted && lp.Completed {
		s.log.Info("lesson completed", "user_id", lp.UserID, "lesson_id", lesson.ID)
		if err := s.record(ctx, repo, lp.UserID, models.ActivityCompleteLesson, &lesson, nil); err != nil {
			return nil, err
		}
		outcome, err := s.evaluateModule(ctx, repo, lp.UserID, lesson.ModuleID, now)
		if err != nil {
			return nil, err
		}
		res.ModuleCompleted = outcome.ModuleCompleted
		res.CourseCompleted = outcome.CourseCompleted
		res.CertificateCode = outcome.CertificateCode
	}

	s.annotateGate(res, lp, now)
	if err := s.attachNext(ctx, repo, res, lesson); err != nil {
		return nil, err
	}
	return res, nil
}

func (s *LessonProgressService) annotateGate(res *Result, lp models.LessonProgress, now time.Time) {
	canAttempt := s.policy.CanAttempt(lp, now)
	res.RetryAllowed = !res.Passed && canAttempt
	// a completed lesson can still be inside its cooldown window
	if !canAttempt {
		unlockAt, remaining := s.policy.cooldown(lp, now)
		res.UnlockAt = &unlockAt
		res.SecondsRemaining = remaining
	}
}

func (s *LessonProgressService) attachNext(ctx context.Context, repo Repo, res *Result, lesson models.Lesson) error {
	next, err := repo.NextLesson(ctx, lesson)
	if err != nil {
		if errors.Is(err, app_errors.ErrLessonNotFound) {
			return nil
		}
		return fmt.Errorf("resolve next lesson: %w", err)
	}
	if next != nil {
		res.NextLessonID = &next.ID
		res.NextLessonTitle = &next.Title
	}
	return nil
}

func (s *LessonProgressService) record(ctx context.Context, repo Repo, userID uuid.UUID, kind string, lesson *models.Lesson, meta map[string]any) error {
	a := &models.LearningActivity{
		UserID:    userID,
		Type:      kind,
		Metadata:  meta,
		CreatedAt: s.now(),
	}
	if lesson != nil {
		a.LessonID = &lesson.ID
		a.ModuleID = &lesson.ModuleID
		a.CourseID = &lesson.CourseID
	}
	if err := repo.RecordActivity(ctx, a); err != nil {
		return fmt.Errorf("record %s activity: %w", kind, err)
	}
	return nil
}

func newCertificateCode() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")
}
