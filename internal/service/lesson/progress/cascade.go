package progress

import (
	"context"
	"fmt"
	"time"

	"CivicLearn/internal/models"

	"github.com/google/uuid"
)

type CascadeOutcome struct {
	ModuleCompleted bool
	CourseCompleted bool
	CertificateCode *string
}

// evaluateModule marks the module complete once every lesson in it is, then
// moves on to the owning course. Already completed modules are left alone.
func (s *LessonProgressService) evaluateModule(ctx context.Context, repo Repo, userID, moduleID uuid.UUID, now time.Time) (CascadeOutcome, error) {
	var out CascadeOutcome

	completed, err := s.completeModule(ctx, repo, userID, moduleID, now)
	if err != nil || !completed {
		return out, err
	}
	out.ModuleCompleted = true

	module, err := repo.Module(ctx, moduleID)
	if err != nil {
		return out, err
	}
	courseDone, code, err := s.evaluateCourse(ctx, repo, userID, module.CourseID, now)
	if err != nil {
		return out, err
	}
	out.CourseCompleted = courseDone
	out.CertificateCode = code
	return out, nil
}

// completeModule reports whether this call flipped the module to completed.
func (s *LessonProgressService) completeModule(ctx context.Context, repo Repo, userID, moduleID uuid.UUID, now time.Time) (bool, error) {
	mp, err := repo.LockModuleProgress(ctx, userID, moduleID)
	if err != nil {
		return false, fmt.Errorf("load module progress: %w", err)
	}
	if mp.Completed {
		return false, nil
	}

	total, done, err := repo.ModuleLessonCounts(ctx, userID, moduleID)
	if err != nil {
		return false, err
	}
	if total == 0 || done < total {
		return false, nil
	}

	mp.Completed = true
	mp.CompletedAt = &now
	if err := repo.SaveModuleProgress(ctx, mp); err != nil {
		return false, fmt.Errorf("save module progress: %w", err)
	}

	awarded, err := repo.AwardModuleBadge(ctx, userID, moduleID)
	if err != nil {
		return false, fmt.Errorf("award badge: %w", err)
	}
	s.log.Info("module completed", "user_id", userID, "module_id", moduleID, "badge_awarded", awarded)

	if err := repo.RecordActivity(ctx, &models.LearningActivity{
		UserID:    userID,
		Type:      models.ActivityCompleteModule,
		ModuleID:  &moduleID,
		CreatedAt: now,
	}); err != nil {
		return false, fmt.Errorf("record module activity: %w", err)
	}
	return true, nil
}

// evaluateCourse reports whether this call completed the course, and the
// certificate code issued for it.
func (s *LessonProgressService) evaluateCourse(ctx context.Context, repo Repo, userID, courseID uuid.UUID, now time.Time) (bool, *string, error) {
	cp, err := repo.LockCourseProgress(ctx, userID, courseID)
	if err != nil {
		return false, nil, fmt.Errorf("load course progress: %w", err)
	}
	if cp.Completed {
		return false, cp.CertificateCode, nil
	}

	total, done, err := repo.CourseModuleCounts(ctx, userID, courseID)
	if err != nil {
		return false, nil, err
	}
	if total == 0 || done < total {
		return false, nil, nil
	}

	cp.Completed = true
	cp.CompletedAt = &now
	if err := repo.SaveCourseProgress(ctx, cp); err != nil {
		return false, nil, fmt.Errorf("save course progress: %w", err)
	}
	if err := repo.RecordActivity(ctx, &models.LearningActivity{
		UserID:    userID,
		Type:      models.ActivityCompleteCourse,
		CourseID:  &courseID,
		CreatedAt: now,
	}); err != nil {
		return false, nil, fmt.Errorf("record course activity: %w", err)
	}
	s.log.Info("course completed", "user_id", userID, "course_id", courseID)

	code, err := s.issueCertificate(ctx, repo, cp, now)
	if err != nil {
		return false, nil, err
	}
	return true, &code, nil
}
