package models

import (
	"time"

	"github.com/google/uuid"
)

type Lesson struct {
	ID                uuid.UUID `json:"id"`
	ModuleID          uuid.UUID `json:"module_id"`
	CourseID          uuid.UUID `json:"course_id"`
	Title             string    `json:"title"`
	Content           string    `json:"content"`
	VideoURL          string    `json:"video_url,omitempty"`
	Order             int       `json:"order"`
	ResourceObjectKey *string   `json:"-"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`
}

// LessonRef is the minimal pointer used for navigation between lessons.
type LessonRef struct {
	ID    uuid.UUID `json:"id"`
	Title string    `json:"title"`
}

type LessonSummary struct {
	ID        uuid.UUID `json:"id"`
	Title     string    `json:"title"`
	Order     int       `json:"order"`
	Completed bool      `json:"completed"`
}

type LessonDetail struct {
	Lesson      Lesson           `json:"lesson"`
	Questions   []PublicQuestion `json:"questions"`
	ResourceURL string           `json:"resource_url,omitempty"`
	Completed   bool             `json:"completed"`
}
