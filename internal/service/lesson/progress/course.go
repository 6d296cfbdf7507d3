package progress

import (
	"context"
	"errors"
	"fmt"

	"CivicLearn/internal/app_errors"
	"CivicLearn/internal/models"

	"github.com/google/uuid"
)

type CourseSummary struct {
	Progress         models.CourseProgress `json:"progress"`
	TotalModules     int                   `json:"total_modules"`
	CompletedModules int                   `json:"completed_modules"`
}

func (s *LessonProgressService) CourseProgress(ctx context.Context, userID, courseID uuid.UUID) (*CourseSummary, error) {
	var summary *CourseSummary
	err := s.store.WithTx(ctx, func(repo Repo) error {
		if _, err := repo.Course(ctx, courseID); err != nil {
			return err
		}
		cp, err := repo.FindCourseProgress(ctx, userID, courseID)
		if err != nil {
			if !errors.Is(err, app_errors.ErrProgressNotFound) {
				return err
			}
			cp = &models.CourseProgress{UserID: userID, CourseID: courseID}
		}
		total, done, err := repo.CourseModuleCounts(ctx, userID, courseID)
		if err != nil {
			return err
		}
		summary = &CourseSummary{Progress: *cp, TotalModules: total, CompletedModules: done}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return summary, nil
}

// Reconcile rebuilds module and course completion from the lesson rows and
// issues the certificate if one is due. Safe to call any number of times.
func (s *LessonProgressService) Reconcile(ctx context.Context, userID, courseID uuid.UUID) (*CourseSummary, error) {
	var summary *CourseSummary
	err := s.store.WithTx(ctx, func(repo Repo) error {
		if _, err := repo.Course(ctx, courseID); err != nil {
			return err
		}
		now := s.now()

		moduleIDs, err := repo.CourseModuleIDs(ctx, courseID)
		if err != nil {
			return err
		}
		for _, moduleID := range moduleIDs {
			if _, err := s.completeModule(ctx, repo, userID, moduleID, now); err != nil {
				return fmt.Errorf("reconcile module %s: %w", moduleID, err)
			}
		}

		if _, _, err := s.evaluateCourse(ctx, repo, userID, courseID, now); err != nil {
			return err
		}
		cp, err := repo.LockCourseProgress(ctx, userID, courseID)
		if err != nil {
			return err
		}
		if cp.Completed {
			if _, err := s.issueCertificate(ctx, repo, cp, now); err != nil {
				return err
			}
		}

		total, done, err := repo.CourseModuleCounts(ctx, userID, courseID)
		if err != nil {
			return err
		}
		summary = &CourseSummary{Progress: *cp, TotalModules: total, CompletedModules: done}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return summary, nil
}
