package http

import (
	"CivicLearn/internal/delivery/http/controllers"
	"CivicLearn/internal/delivery/http/controllers/achievement"
	"CivicLearn/internal/delivery/http/controllers/article"
	"CivicLearn/internal/delivery/http/controllers/auth"
	"CivicLearn/internal/delivery/http/controllers/course"
	"CivicLearn/internal/delivery/http/controllers/directory"
	"CivicLearn/internal/delivery/http/controllers/lesson"
	"CivicLearn/internal/delivery/http/controllers/middleware"
	"CivicLearn/internal/delivery/http/validation"
	"CivicLearn/internal/models"
	"CivicLearn/internal/service"
	"CivicLearn/pkg/logger"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

type Options struct {
	AllowedOrigins []string
	SecureCookies  bool
	Probes         map[string]controllers.Probe
}

func InitRoutes(l logger.Log, u service.Collection, opts Options) *gin.Engine {
	validation.Register()

	r := gin.New()
	r.Use(gin.Recovery())

	config := cors.Config{
		AllowOrigins:     opts.AllowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}

	r.Use(cors.New(config))

	statusController := controllers.NewStatusHandler(opts.Probes)
	authMiddleware := middleware.NewAuthMiddlewareProvider(l, u.Auth)
	authController := auth.NewAuthHandler(l, u.Auth, opts.SecureCookies)
	courseController := course.NewCourseHandler(l, u.Course)
	courseAdminController := course.NewManagementHandler(l, u.CourseAdmin)
	lessonController := lesson.NewLessonHandler(l, u.Lesson)
	lessonAdminController := lesson.NewManagementHandler(l, u.LessonAdmin)
	progressController := lesson.NewProgressHandler(l, u.Progress)
	achievementController := achievement.NewAchievementHandler(l, u.Achievement)
	directoryController := directory.NewDirectoryHandler(l, u.Directory)
	articleController := article.NewArticleHandler(l, u.Article)

	requireAuth := authMiddleware.AuthMiddleware

	v1 := r.Group("/v1", middleware.LoggingMiddleware(l))
	{
		v1.GET("/status", statusController.Status)
		v1.GET("/ready", statusController.Ready)

		authGroup := v1.Group("/auth")
		{
			authGroup.POST("/register", authController.Register)
			authGroup.POST("/login", authController.Login)
			authGroup.POST("/refresh", authController.Refresh)
			authGroup.POST("/logout", requireAuth, authController.Logout)
		}

		me := v1.Group("/me", requireAuth)
		{
			me.GET("", authController.Me)
			me.PATCH("/profile-picture", authController.UploadProfilePicture)
			me.GET("/courses", courseController.MyCourses)
		}

		courses := v1.Group("/courses")
		{
			courses.GET("", courseController.ListCourses)
			courses.GET("/search", courseController.SearchCourses)
			courses.GET("/:course_id", courseController.CourseByID)

			learner := courses.Group("", requireAuth)
			{
				learner.POST("/:course_id/enroll", courseController.Enroll)
				learner.GET("/:course_id/modules", courseController.Modules)
				learner.GET("/:course_id/progress", progressController.CourseProgress)
				learner.POST("/:course_id/progress/reconcile", progressController.Reconcile)
			}
		}

		v1.GET("/modules/:module_id/lessons", requireAuth, lessonController.ModuleLessons)
		v1.GET("/lessons/:lesson_id", requireAuth, lessonController.LessonDetail)

		lessonProgress := v1.Group("/lesson-progress", requireAuth)
		{
			lessonProgress.POST("/submit", progressController.Submit)
			lessonProgress.GET("/by-lesson/:lesson_id", progressController.ByLesson)
			lessonProgress.PUT("/:progress_id", progressController.Update)
		}

		v1.GET("/achievements", requireAuth, achievementController.Summary)
		v1.GET("/certificates", requireAuth, achievementController.Certificates)
		v1.GET("/certificates/:code", achievementController.VerifyCertificate)

		dir := v1.Group("/directory")
		{
			dir.GET("/counties", directoryController.Counties)
			dir.GET("/counties/:county_id/constituencies", directoryController.Constituencies)
			dir.GET("/positions", directoryController.Positions)
			dir.GET("/leaders", directoryController.Leaders)
			dir.GET("/elections", directoryController.Elections)
			dir.GET("/elections/:election_id/candidates", directoryController.Candidates)
			dir.GET("/search", directoryController.Search)
		}

		articles := v1.Group("/articles")
		{
			articles.GET("", articleController.All)
			articles.GET("/latest", articleController.Latest)
			articles.GET("/:slug", articleController.BySlug)
		}

		admin := v1.Group("/admin", requireAuth, middleware.RequireRoles(models.AdminRole))
		{
			admin.POST("/courses", courseAdminController.CreateCourse)
			admin.PUT("/courses/:course_id", courseAdminController.UpdateCourse)
			admin.PATCH("/courses/:course_id/publish", courseAdminController.PublishCourse)
			admin.PATCH("/courses/:course_id/unpublish", courseAdminController.UnpublishCourse)
			admin.PUT("/courses/:course_id/image", courseAdminController.UploadCourseImage)
			admin.POST("/courses/:course_id/modules", courseAdminController.CreateModule)

			admin.POST("/modules/:module_id/lessons", lessonAdminController.CreateLesson)
			admin.POST("/modules/:module_id/badge", lessonAdminController.CreateBadge)
			admin.POST("/lessons/:lesson_id/questions", lessonAdminController.CreateQuestion)
			admin.PUT("/lessons/:lesson_id/resource", lessonAdminController.UploadResource)

			admin.POST("/directory/counties", directoryController.CreateCounty)
			admin.POST("/directory/constituencies", directoryController.CreateConstituency)
			admin.POST("/directory/positions", directoryController.CreatePosition)
			admin.POST("/directory/leaders", directoryController.CreateLeader)
			admin.POST("/directory/elections", directoryController.CreateElection)
			admin.POST("/directory/elections/:election_id/candidates", directoryController.CreateCandidate)

			admin.POST("/articles", articleController.Create)
		}
	}
	return r
}
