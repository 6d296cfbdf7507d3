package models

import (
	"time"

	"github.com/google/uuid"
)

const (
	ActivityViewLesson     = "view_lesson"
	ActivityStartQuiz      = "start_quiz"
	ActivityCompleteLesson = "complete_lesson"
	ActivityPassQuiz       = "pass_quiz"
	ActivityFailQuiz       = "fail_quiz"
	ActivityCompleteModule = "complete_module"
	ActivityCompleteCourse = "complete_course"
)

type LearningActivity struct {
	ID        uuid.UUID      `json:"id"`
	UserID    uuid.UUID      `json:"user_id"`
	Type      string         `json:"type"`
	LessonID  *uuid.UUID     `json:"lesson_id,omitempty"`
	ModuleID  *uuid.UUID     `json:"module_id,omitempty"`
	CourseID  *uuid.UUID     `json:"course_id,omitempty"`
	Metadata  map[string]any `json:"metadata,omitempty"`
	CreatedAt time.Time      `json:"created_at"`
}

type Badge struct {
	ID            uuid.UUID `json:"id"`
	ModuleID      uuid.UUID `json:"module_id"`
	Name          string    `json:"name"`
	Description   string    `json:"description"`
	IconObjectKey *string   `json:"-"`
	IconURL       string    `json:"icon_url,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
}

type UserBadge struct {
	Badge     Badge     `json:"badge"`
	AwardedAt time.Time `json:"awarded_at"`
}

type Achievements struct {
	TotalPoints      int           `json:"total_points"`
	Badges           []UserBadge   `json:"badges"`
	Certificates     []Certificate `json:"certificates"`
	LessonsCompleted int           `json:"lessons_completed"`
	ModulesCompleted int           `json:"modules_completed"`
	CoursesEnrolled  int           `json:"courses_enrolled"`
	StreakDays       int           `json:"streak_days"`
}
