package app

import (
	"CivicLearn/internal/app/server"
	"CivicLearn/internal/config"
	"CivicLearn/internal/delivery/http"
	"CivicLearn/internal/delivery/http/controllers"
	"CivicLearn/internal/models"
	"CivicLearn/internal/service"
	"CivicLearn/internal/service/achievement"
	"CivicLearn/internal/service/article"
	"CivicLearn/internal/service/auth"
	"CivicLearn/internal/service/course"
	coursemgmt "CivicLearn/internal/service/course/management"
	"CivicLearn/internal/service/directory"
	"CivicLearn/internal/service/lesson"
	lessonmgmt "CivicLearn/internal/service/lesson/management"
	"CivicLearn/internal/service/lesson/progress"
	"CivicLearn/internal/storage/elastic"
	"CivicLearn/internal/storage/minio_storage"
	"CivicLearn/internal/storage/postgres"
	"CivicLearn/internal/storage/redis_cache"
	"CivicLearn/pkg/logger"
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
)

const startupTimeout = 30 * time.Second

// courseSearch stays a nil interface when search is disabled so services can
// test for it directly.
type courseSearch interface {
	Search(ctx context.Context, query string, limit, offset int) ([]uuid.UUID, int, error)
	Index(ctx context.Context, c models.Course) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type directoryCache interface {
	Get(ctx context.Context, key string, dst any) (bool, error)
	Set(ctx context.Context, key string, value any) error
	InvalidatePrefix(ctx context.Context, prefix string) error
}

func Run(cfg *config.Config) {
	log := logger.New(cfg.Env)
	defer log.Sync()
	log.Info("starting civiclearn", "env", cfg.Env)

	ctx, cancel := context.WithTimeout(context.Background(), startupTimeout)
	defer cancel()

	pg, err := postgres.NewPostgresPool(cfg.Postgres.User, cfg.Postgres.Password, cfg.Postgres.Host, cfg.Postgres.Port, cfg.Postgres.DBName)
	if err != nil {
		log.FatalErr("error connecting to database", err)
	}
	defer pg.Close()

	if cfg.Postgres.Migrate {
		if err := pg.Migrate(ctx); err != nil {
			log.FatalErr("error applying schema", err)
		}
	}

	resourcesBucket := cfg.Minio.Bucket(config.BucketResources)
	avatarsBucket := cfg.Minio.Bucket(config.BucketAvatars)
	badgesBucket := cfg.Minio.Bucket(config.BucketBadges)
	coursesBucket := cfg.Minio.Bucket(config.BucketCourses)

	objects, err := minio_storage.NewMinioStorage(ctx, cfg.Minio.Endpoint, cfg.Minio.AccessKey, cfg.Minio.SecretKey, cfg.Minio.UseSSL,
		resourcesBucket.Name, avatarsBucket.Name, badgesBucket.Name, coursesBucket.Name)
	if err != nil {
		log.FatalErr("error connecting to object storage", err)
	}
	resources := minio_storage.NewObjectStorage(objects, resourcesBucket.Name, minio_storage.KindLessonResource, resourcesBucket.PresignTTL)
	avatars := minio_storage.NewObjectStorage(objects, avatarsBucket.Name, minio_storage.KindProfilePicture, avatarsBucket.PresignTTL)
	badgeIcons := minio_storage.NewObjectStorage(objects, badgesBucket.Name, minio_storage.KindBadgeIcon, badgesBucket.PresignTTL)
	courseImages := minio_storage.NewObjectStorage(objects, coursesBucket.Name, minio_storage.KindCourseImage, coursesBucket.PresignTTL)

	probes := map[string]controllers.Probe{
		"postgres": pg.Pool.Ping,
		"minio":    objects.Ping,
	}

	search := newCourseSearch(ctx, log, cfg.ES)
	dirCache := newDirectoryCache(ctx, log, cfg.Redis, probes)

	userRepo := postgres.NewUserPostgres(pg.Pool)
	tokenRepo := postgres.NewTokensPostgres(pg.Pool)
	courseRepo := postgres.NewCoursePostgres(pg.Pool)
	lessonRepo := postgres.NewLessonPostgres(pg.Pool)
	achievementRepo := postgres.NewAchievementPostgres(pg.Pool)
	directoryRepo := postgres.NewDirectoryPostgres(pg.Pool)
	articleRepo := postgres.NewArticlePostgres(pg.Pool)

	jwtManager := auth.NewJWTManager(cfg.JWT.SecretKey, cfg.JWT.Issuer, cfg.JWT.AccessTTL, cfg.JWT.RefreshTTL)
	policy := progress.Policy{
		MaxAttempts:    cfg.Progress.MaxAttempts,
		Cooldown:       cfg.Progress.Cooldown,
		PassPercentage: cfg.Progress.PassPercentage,
	}

	u := service.Collection{
		Auth:        auth.NewAuthService(log, jwtManager, userRepo, tokenRepo, avatars),
		Course:      course.NewCourseService(log, courseRepo, search, courseImages),
		CourseAdmin: coursemgmt.NewManagementService(log, courseRepo, search, courseImages),
		Lesson:      lesson.NewLessonService(log, lessonRepo, resources),
		LessonAdmin: lessonmgmt.NewManagementService(log, lessonRepo, resources, badgeIcons),
		Progress:    progress.NewLessonProgressService(log, progressStore{pg: postgres.NewProgressPostgres(pg.Pool)}, policy),
		Achievement: achievement.NewAchievementService(log, achievementRepo, badgeIcons),
		Directory:   directory.NewDirectoryService(log, directoryRepo, dirCache),
		Article:     article.NewArticleService(log, articleRepo),
	}

	r := http.InitRoutes(log, u, http.Options{
		AllowedOrigins: cfg.HTTPServer.AllowedOrigins,
		SecureCookies:  cfg.HTTPServer.SecureCookies,
		Probes:         probes,
	})

	srv := server.New(cfg.HTTPServer.Address, cfg.HTTPServer.Timeout, cfg.HTTPServer.IdleTimeout, r)
	srv.Start()
	log.Info("http server started", "address", cfg.HTTPServer.Address)

	interrupt := make(chan os.Signal, 1)
	signal.Notify(interrupt, os.Interrupt, syscall.SIGTERM)

	select {
	case s := <-interrupt:
		log.Info("app signal", "signal", s.String())
	case err := <-srv.Notify():
		if err != nil {
			log.ErrorErr("http server stopped", err)
		}
	}
	if err := srv.Shutdown(); err != nil {
		log.ErrorErr("http server shutdown", err)
	}
}

// newCourseSearch returns nil when elasticsearch is disabled or unreachable;
// the catalog then searches postgres.
func newCourseSearch(ctx context.Context, log logger.Log, cfg config.ES) courseSearch {
	if !cfg.Enabled {
		log.Info("elasticsearch disabled, course search uses postgres")
		return nil
	}
	client, err := elastic.NewElasticClient(cfg.Username, cfg.Password, cfg.Hosts)
	if err != nil {
		log.ErrorErr("elasticsearch client", err)
		return nil
	}
	cs := elastic.NewCourseSearch(client, cfg.Index)
	if err := cs.EnsureIndex(ctx); err != nil {
		log.ErrorErr("elasticsearch index setup failed, course search uses postgres", err, "index", cfg.Index)
		return nil
	}
	return cs
}

func newDirectoryCache(ctx context.Context, log logger.Log, cfg config.Redis, probes map[string]controllers.Probe) directoryCache {
	if !cfg.Enabled {
		log.Info("redis disabled, directory reads are uncached")
		return redis_cache.Nop{}
	}
	rdb, err := redis_cache.NewClient(ctx, cfg.Addr, cfg.Password, cfg.DB)
	if err != nil {
		log.ErrorErr("redis unavailable, directory reads are uncached", err, "addr", cfg.Addr)
		return redis_cache.Nop{}
	}
	probes["redis"] = func(ctx context.Context) error { return rdb.Ping(ctx).Err() }
	return redis_cache.New(rdb, "civiclearn", cfg.TTL)
}

// progressStore runs the progress state machine on a postgres transaction.
type progressStore struct {
	pg *postgres.ProgressPostgres
}

func (s progressStore) WithTx(ctx context.Context, fn func(repo progress.Repo) error) error {
	return s.pg.InTx(ctx, func(tx *postgres.ProgressTx) error {
		return fn(tx)
	})
}
