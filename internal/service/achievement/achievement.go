package achievement

import (
	"CivicLearn/internal/models"
	"CivicLearn/pkg/logger"
	"context"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

// streakWindow is the first stretch of activity read for a streak. It
// doubles until the streak ends inside it.
const streakWindow = 90 * 24 * time.Hour

type achievementRepo interface {
	Counts(ctx context.Context, userID uuid.UUID) (models.Achievements, error)
	UserBadges(ctx context.Context, userID uuid.UUID) ([]models.UserBadge, error)
	Certificates(ctx context.Context, userID uuid.UUID) ([]models.Certificate, error)
	CertificateByCode(ctx context.Context, code string) (*models.Certificate, error)
	ActivityDays(ctx context.Context, userID uuid.UUID, since time.Time) ([]time.Time, error)
}

type iconStore interface {
	URL(ctx context.Context, objectKey string) (string, error)
}

type AchievementService struct {
	log   logger.Log
	repo  achievementRepo
	icons iconStore
	now   func() time.Time
}

func NewAchievementService(log logger.Log, repo achievementRepo, icons iconStore) *AchievementService {
	return &AchievementService{log: log, repo: repo, icons: icons, now: time.Now}
}

// Summary gathers every part of the achievement view concurrently.
func (s *AchievementService) Summary(ctx context.Context, userID uuid.UUID) (*models.Achievements, error) {
	var (
		counts models.Achievements
		badges []models.UserBadge
		certs  []models.Certificate
		streak int
	)
	now := s.now().UTC()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		counts, err = s.repo.Counts(gctx, userID)
		return err
	})
	g.Go(func() error {
		var err error
		badges, err = s.repo.UserBadges(gctx, userID)
		return err
	})
	g.Go(func() error {
		var err error
		certs, err = s.repo.Certificates(gctx, userID)
		return err
	})
	g.Go(func() error {
		var err error
		streak, err = s.streak(gctx, userID, now)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	for i := range badges {
		s.withIcon(ctx, &badges[i].Badge)
	}
	if badges == nil {
		badges = []models.UserBadge{}
	}
	if certs == nil {
		certs = []models.Certificate{}
	}

	counts.Badges = badges
	counts.Certificates = certs
	counts.StreakDays = streak
	return &counts, nil
}

func (s *AchievementService) streak(ctx context.Context, userID uuid.UUID, now time.Time) (int, error) {
	for window := streakWindow; ; window *= 2 {
		since := truncateDay(now).Add(-window)
		days, err := s.repo.ActivityDays(ctx, userID, since)
		if err != nil {
			return 0, err
		}
		n, oldest := streakRun(days, now)
		if n == 0 || oldest.After(since) {
			return n, nil
		}
	}
}

func (s *AchievementService) withIcon(ctx context.Context, b *models.Badge) {
	if b.IconObjectKey == nil {
		return
	}
	url, err := s.icons.URL(ctx, *b.IconObjectKey)
	if err != nil {
		s.log.ErrorErr("failed to presign badge icon", err, "badge_id", b.ID)
		return
	}
	b.IconURL = url
}

func (s *AchievementService) Certificates(ctx context.Context, userID uuid.UUID) ([]models.Certificate, error) {
	return s.repo.Certificates(ctx, userID)
}

func (s *AchievementService) VerifyCertificate(ctx context.Context, code string) (*models.Certificate, error) {
	return s.repo.CertificateByCode(ctx, code)
}

// Streak counts consecutive UTC days with activity ending today, or ending
// yesterday when there is nothing yet today. days may be in any order and
// contain duplicates.
func Streak(days []time.Time, now time.Time) int {
	n, _ := streakRun(days, now)
	return n
}

// streakRun also returns the oldest day counted in the streak.
func streakRun(days []time.Time, now time.Time) (int, time.Time) {
	seen := make(map[time.Time]struct{}, len(days))
	for _, d := range days {
		seen[truncateDay(d)] = struct{}{}
	}

	day := truncateDay(now)
	if _, ok := seen[day]; !ok {
		day = day.AddDate(0, 0, -1)
	}
	streak := 0
	for {
		if _, ok := seen[day]; !ok {
			return streak, day.AddDate(0, 0, 1)
		}
		streak++
		day = day.AddDate(0, 0, -1)
	}
}

func truncateDay(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
