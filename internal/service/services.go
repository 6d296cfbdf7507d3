package service

import (
	"CivicLearn/internal/service/achievement"
	"CivicLearn/internal/service/article"
	"CivicLearn/internal/service/auth"
	"CivicLearn/internal/service/course"
	coursemgmt "CivicLearn/internal/service/course/management"
	"CivicLearn/internal/service/directory"
	"CivicLearn/internal/service/lesson"
	lessonmgmt "CivicLearn/internal/service/lesson/management"
	"CivicLearn/internal/service/lesson/progress"
)

type Collection struct {
	Auth        *auth.AuthService
	Course      *course.CourseService
	CourseAdmin *coursemgmt.ManagementService
	Lesson      *lesson.LessonService
	LessonAdmin *lessonmgmt.ManagementService
	Progress    *progress.LessonProgressService
	Achievement *achievement.AchievementService
	Directory   *directory.DirectoryService
	Article     *article.ArticleService
}
