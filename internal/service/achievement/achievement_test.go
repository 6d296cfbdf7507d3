package achievement

import (
	"CivicLearn/internal/app_errors"
	"CivicLearn/internal/models"
	"CivicLearn/pkg/logger"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func day(s string) time.Time {
	t, err := time.Parse("2006-01-02 15:04", s)
	if err != nil {
		panic(err)
	}
	return t
}

func TestStreak(t *testing.T) {
	now := day("2026-03-10 09:00")

	tests := []struct {
		name string
		days []time.Time
		want int
	}{
		{"no activity", nil, 0},
		{"today only", []time.Time{day("2026-03-10 08:00")}, 1},
		{"three days ending today", []time.Time{day("2026-03-10 00:00"), day("2026-03-09 00:00"), day("2026-03-08 23:59")}, 3},
		{"starts from yesterday", []time.Time{day("2026-03-09 00:00"), day("2026-03-08 00:00")}, 2},
		{"gap breaks streak", []time.Time{day("2026-03-10 00:00"), day("2026-03-08 00:00")}, 1},
		{"only two days ago", []time.Time{day("2026-03-08 00:00")}, 0},
		{"duplicates and order", []time.Time{day("2026-03-09 10:00"), day("2026-03-10 01:00"), day("2026-03-09 02:00")}, 2},
		{"across month boundary", []time.Time{day("2026-03-01 00:00"), day("2026-02-28 00:00")}, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Streak(tt.days, now))
		})
	}

	assert.Equal(t, 2, Streak([]time.Time{day("2026-03-01 00:00"), day("2026-02-28 00:00")}, day("2026-03-01 12:00")))
}

type fakeRepo struct {
	counts    models.Achievements
	badges    []models.UserBadge
	certs     []models.Certificate
	days      []time.Time
	countsErr error
	dayReads  int
}

func (f *fakeRepo) Counts(context.Context, uuid.UUID) (models.Achievements, error) {
	return f.counts, f.countsErr
}

func (f *fakeRepo) UserBadges(context.Context, uuid.UUID) ([]models.UserBadge, error) {
	return f.badges, nil
}

func (f *fakeRepo) Certificates(context.Context, uuid.UUID) ([]models.Certificate, error) {
	return f.certs, nil
}

func (f *fakeRepo) CertificateByCode(_ context.Context, code string) (*models.Certificate, error) {
	for _, c := range f.certs {
		if c.Code == code {
			return &c, nil
		}
	}
	return nil, app_errors.ErrCertificateNotFound
}

func (f *fakeRepo) ActivityDays(_ context.Context, _ uuid.UUID, since time.Time) ([]time.Time, error) {
	f.dayReads++
	var out []time.Time
	for _, d := range f.days {
		if !d.Before(since) {
			out = append(out, d)
		}
	}
	return out, nil
}

func TestSummaryStreakLongerThanFirstWindow(t *testing.T) {
	now := day("2026-03-10 09:00")
	repo := &fakeRepo{}
	for i := 0; i < 400; i++ {
		repo.days = append(repo.days, now.AddDate(0, 0, -i))
	}
	svc := NewAchievementService(logger.NewNop(), repo, fakeIcons{})
	svc.now = func() time.Time { return now }

	got, err := svc.Summary(context.Background(), uuid.New())
	require.NoError(t, err)
	assert.Equal(t, 400, got.StreakDays)
	assert.Greater(t, repo.dayReads, 1)
}

type fakeIcons struct{}

func (fakeIcons) URL(_ context.Context, key string) (string, error) { return "https://objects.test/" + key, nil }

func TestSummary(t *testing.T) {
	icon := "badges/m/1.png"
	now := day("2026-03-10 09:00")
	repo := &fakeRepo{
		counts: models.Achievements{TotalPoints: 12, LessonsCompleted: 4, ModulesCompleted: 1, CoursesEnrolled: 2},
		badges: []models.UserBadge{{Badge: models.Badge{Name: "Citizen", IconObjectKey: &icon}}},
		certs:  []models.Certificate{{Code: "abc"}},
		days:   []time.Time{now, now.AddDate(0, 0, -1)},
	}
	svc := NewAchievementService(logger.NewNop(), repo, fakeIcons{})
	svc.now = func() time.Time { return now }

	got, err := svc.Summary(context.Background(), uuid.New())
	require.NoError(t, err)
	assert.Equal(t, 12, got.TotalPoints)
	assert.Equal(t, 4, got.LessonsCompleted)
	assert.Equal(t, 2, got.StreakDays)
	require.Len(t, got.Badges, 1)
	assert.Equal(t, "https://objects.test/badges/m/1.png", got.Badges[0].Badge.IconURL)
	assert.Len(t, got.Certificates, 1)

	cert, err := svc.VerifyCertificate(context.Background(), "abc")
	require.NoError(t, err)
	assert.Equal(t, "abc", cert.Code)
	_, err = svc.VerifyCertificate(context.Background(), "nope")
	assert.ErrorIs(t, err, app_errors.ErrCertificateNotFound)
}

func TestSummaryEmptyListsAndErrors(t *testing.T) {
	svc := NewAchievementService(logger.NewNop(), &fakeRepo{}, fakeIcons{})
	got, err := svc.Summary(context.Background(), uuid.New())
	require.NoError(t, err)
	assert.NotNil(t, got.Badges)
	assert.NotNil(t, got.Certificates)

	boom := errors.New("db down")
	svc = NewAchievementService(logger.NewNop(), &fakeRepo{countsErr: boom}, fakeIcons{})
	_, err = svc.Summary(context.Background(), uuid.New())
	assert.ErrorIs(t, err, boom)
}
