package progress

import (
	"context"
	"fmt"
	"time"

	"CivicLearn/internal/models"
)

// issueCertificate sets the certificate code on a completed course once.
// Later calls return the existing code unchanged.
func (s *LessonProgressService) issueCertificate(ctx context.Context, repo Repo, cp *models.CourseProgress, now time.Time) (string, error) {
	if cp.CertificateCode != nil {
		return *cp.CertificateCode, nil
	}

	code := s.newCode()
	cp.CertificateCode = &code
	cp.CertificateIssued = true
	if err := repo.SaveCourseProgress(ctx, cp); err != nil {
		return "", fmt.Errorf("save certificate code: %w", err)
	}
	if err := repo.CreateCertificate(ctx, &models.Certificate{
		UserID:   cp.UserID,
		CourseID: cp.CourseID,
		Code:     code,
		IssuedAt: now,
	}); err != nil {
		return "", fmt.Errorf("create certificate: %w", err)
	}

	s.log.Info("certificate issued", "user_id", cp.UserID, "course_id", cp.CourseID)
	return code, nil
}
