package models

import (
	"time"

	"github.com/google/uuid"
)

type LessonProgress struct {
	ID              uuid.UUID  `json:"id"`
	UserID          uuid.UUID  `json:"user_id"`
	LessonID        uuid.UUID  `json:"lesson_id"`
	Completed       bool       `json:"completed"`
	Score           int        `json:"score"`
	PointsAwarded   int        `json:"points_awarded"`
	Attempts        int        `json:"attempts"`
	LastAttemptedAt *time.Time `json:"last_attempted_at"`
	CompletedAt     *time.Time `json:"completed_at"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
}

type ModuleProgress struct {
	ID          uuid.UUID  `json:"id"`
	UserID      uuid.UUID  `json:"user_id"`
	ModuleID    uuid.UUID  `json:"module_id"`
	Completed   bool       `json:"completed"`
	CompletedAt *time.Time `json:"completed_at"`
}

type CourseProgress struct {
	ID                uuid.UUID  `json:"id"`
	UserID            uuid.UUID  `json:"user_id"`
	CourseID          uuid.UUID  `json:"course_id"`
	Completed         bool       `json:"completed"`
	CompletedAt       *time.Time `json:"completed_at"`
	CertificateIssued bool       `json:"certificate_issued"`
	CertificateCode   *string    `json:"certificate_code"`
}

type Certificate struct {
	ID          uuid.UUID `json:"id"`
	UserID      uuid.UUID `json:"user_id"`
	CourseID    uuid.UUID `json:"course_id"`
	CourseTitle string    `json:"course_title,omitempty"`
	Username    string    `json:"username,omitempty"`
	Code        string    `json:"code"`
	IssuedAt    time.Time `json:"issued_at"`
}
