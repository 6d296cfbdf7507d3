package models

import (
	"time"

	"github.com/google/uuid"
)

const (
	StatusDraft     = "draft"
	StatusPublished = "published"
)

type Course struct {
	ID             uuid.UUID `json:"id"`
	Title          string    `json:"title"`
	Description    string    `json:"description"`
	ImageObjectKey *string   `json:"-"`
	Status         string    `json:"status"`
	AuthorID       uuid.UUID `json:"author_id"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

type CoursePreview struct {
	ID           uuid.UUID `json:"id"`
	Title        string    `json:"title"`
	Description  string    `json:"description"`
	ImageKey     *string   `json:"-"`
	ImageURL     string    `json:"image_url,omitempty"`
	TotalModules int       `json:"total_modules"`
	TotalLessons int       `json:"total_lessons"`
	CreatedAt    time.Time `json:"created_at"`
}

type Enrollment struct {
	ID         uuid.UUID `json:"id"`
	UserID     uuid.UUID `json:"user_id"`
	CourseID   uuid.UUID `json:"course_id"`
	Active     bool      `json:"active"`
	EnrolledAt time.Time `json:"enrolled_at"`
}

type EnrolledCourse struct {
	Course          CoursePreview `json:"course"`
	EnrolledAt      time.Time     `json:"enrolled_at"`
	Completed       bool          `json:"completed"`
	CompletedAt     *time.Time    `json:"completed_at"`
	CertificateCode *string       `json:"certificate_code"`
}
