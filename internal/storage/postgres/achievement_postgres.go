package postgres

import (
	"context"
	"errors"
	"time"

	"CivicLearn/internal/app_errors"
	"CivicLearn/internal/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type AchievementPostgres struct {
	db *pgxpool.Pool
}

func NewAchievementPostgres(db *pgxpool.Pool) *AchievementPostgres {
	return &AchievementPostgres{db: db}
}

// Counts fills the numeric part of the achievement summary.
func (r *AchievementPostgres) Counts(ctx context.Context, userID uuid.UUID) (models.Achievements, error) {
	query := `
		SELECT
			(SELECT COALESCE(sum(points_awarded), 0) FROM lesson_progress WHERE user_id = $1),
			(SELECT count(*) FROM lesson_progress WHERE user_id = $1 AND completed),
			(SELECT count(*) FROM module_progress WHERE user_id = $1 AND completed),
			(SELECT count(*) FROM enrollments WHERE user_id = $1 AND active)
	`
	var c models.Achievements
	err := r.db.QueryRow(ctx, query, userID).Scan(&c.TotalPoints, &c.LessonsCompleted, &c.ModulesCompleted, &c.CoursesEnrolled)
	return c, err
}

func (r *AchievementPostgres) UserBadges(ctx context.Context, userID uuid.UUID) ([]models.UserBadge, error) {
	query := `
		SELECT b.id, b.module_id, b.name, b.description, b.icon_object_key, b.created_at, ub.awarded_at
		FROM user_badges ub
		JOIN badges b ON b.id = ub.badge_id
		WHERE ub.user_id = $1
		ORDER BY ub.awarded_at DESC
	`
	rows, err := r.db.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	badges := make([]models.UserBadge, 0)
	for rows.Next() {
		var ub models.UserBadge
		b := &ub.Badge
		if err := rows.Scan(&b.ID, &b.ModuleID, &b.Name, &b.Description, &b.IconObjectKey, &b.CreatedAt, &ub.AwardedAt); err != nil {
			return nil, err
		}
		badges = append(badges, ub)
	}
	return badges, rows.Err()
}

const certificateSelect = `
	SELECT ce.id, ce.user_id, ce.course_id, c.title, u.username, ce.code, ce.issued_at
	FROM certificates ce
	JOIN courses c ON c.id = ce.course_id
	JOIN users u ON u.id = ce.user_id
`

func scanCertificate(row pgx.Row) (models.Certificate, error) {
	var c models.Certificate
	err := row.Scan(&c.ID, &c.UserID, &c.CourseID, &c.CourseTitle, &c.Username, &c.Code, &c.IssuedAt)
	return c, err
}

func (r *AchievementPostgres) Certificates(ctx context.Context, userID uuid.UUID) ([]models.Certificate, error) {
	rows, err := r.db.Query(ctx, certificateSelect+` WHERE ce.user_id = $1 ORDER BY ce.issued_at DESC`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	certs := make([]models.Certificate, 0)
	for rows.Next() {
		c, err := scanCertificate(rows)
		if err != nil {
			return nil, err
		}
		certs = append(certs, c)
	}
	return certs, rows.Err()
}

func (r *AchievementPostgres) CertificateByCode(ctx context.Context, code string) (*models.Certificate, error) {
	c, err := scanCertificate(r.db.QueryRow(ctx, certificateSelect+` WHERE ce.code = $1`, code))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, app_errors.ErrCertificateNotFound
		}
		return nil, err
	}
	return &c, nil
}

// ActivityDays returns the distinct UTC days with activity since the given
// time, newest first.
func (r *AchievementPostgres) ActivityDays(ctx context.Context, userID uuid.UUID, since time.Time) ([]time.Time, error) {
	query := `
		SELECT DISTINCT (created_at AT TIME ZONE 'UTC')::date AS day
		FROM learning_activities
		WHERE user_id = $1 AND created_at >= $2
		ORDER BY day DESC
	`
	rows, err := r.db.Query(ctx, query, userID, since)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, pgx.RowTo[time.Time])
}
