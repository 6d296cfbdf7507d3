package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"CivicLearn/internal/app_errors"
	"CivicLearn/internal/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type ProgressPostgres struct {
	db *pgxpool.Pool
}

func NewProgressPostgres(db *pgxpool.Pool) *ProgressPostgres {
	return &ProgressPostgres{db: db}
}

// InTx runs fn in a read-committed transaction. Progress rows are locked with
// SELECT ... FOR UPDATE by the ProgressTx methods, so concurrent submissions
// for the same user and lesson queue behind each other.
func (r *ProgressPostgres) InTx(ctx context.Context, fn func(tx *ProgressTx) error) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if err := fn(&ProgressTx{q: tx, catalog: catalogReader{q: tx}}); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

type ProgressTx struct {
	q       querier
	catalog catalogReader
}

func (t *ProgressTx) Course(ctx context.Context, courseID uuid.UUID) (*models.Course, error) {
	return t.catalog.course(ctx, courseID)
}

func (t *ProgressTx) Module(ctx context.Context, moduleID uuid.UUID) (*models.Module, error) {
	return t.catalog.module(ctx, moduleID)
}

func (t *ProgressTx) Lesson(ctx context.Context, lessonID uuid.UUID) (*models.Lesson, error) {
	return t.catalog.lesson(ctx, lessonID)
}

func (t *ProgressTx) Questions(ctx context.Context, lessonID uuid.UUID) ([]models.Question, error) {
	return t.catalog.questions(ctx, lessonID)
}

func (t *ProgressTx) NextLesson(ctx context.Context, lesson models.Lesson) (*models.LessonRef, error) {
	query := `
		SELECT l.id, l.title
		FROM lessons l
		JOIN modules m ON m.id = l.module_id
		WHERE m.course_id = $1
		  AND (m.module_order, l.lesson_order) > (
		      SELECT cm.module_order, $3::int FROM modules cm WHERE cm.id = $2
		  )
		ORDER BY m.module_order, l.lesson_order
		LIMIT 1
	`
	var ref models.LessonRef
	err := t.q.QueryRow(ctx, query, lesson.CourseID, lesson.ModuleID, lesson.Order).Scan(&ref.ID, &ref.Title)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &ref, nil
}

func (t *ProgressTx) CourseModuleIDs(ctx context.Context, courseID uuid.UUID) ([]uuid.UUID, error) {
	rows, err := t.q.Query(ctx, `SELECT id FROM modules WHERE course_id = $1 ORDER BY module_order`, courseID)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, pgx.RowTo[uuid.UUID])
}

const lessonProgressColumns = `id, user_id, lesson_id, completed, score, points_awarded, attempts,
		last_attempted_at, completed_at, created_at, updated_at`

func scanLessonProgress(row pgx.Row) (*models.LessonProgress, error) {
	var p models.LessonProgress
	err := row.Scan(&p.ID, &p.UserID, &p.LessonID, &p.Completed, &p.Score, &p.PointsAwarded, &p.Attempts,
		&p.LastAttemptedAt, &p.CompletedAt, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, app_errors.ErrProgressNotFound
		}
		return nil, err
	}
	return &p, nil
}

func (t *ProgressTx) LockLessonProgress(ctx context.Context, userID, lessonID uuid.UUID) (*models.LessonProgress, error) {
	insert := `
		INSERT INTO lesson_progress (user_id, lesson_id)
		VALUES ($1, $2)
		ON CONFLICT (user_id, lesson_id) DO NOTHING
	`
	if _, err := t.q.Exec(ctx, insert, userID, lessonID); err != nil {
		return nil, fmt.Errorf("failed to create lesson progress: %w", err)
	}
	query := `SELECT ` + lessonProgressColumns + ` FROM lesson_progress
		WHERE user_id = $1 AND lesson_id = $2 FOR UPDATE`
	return scanLessonProgress(t.q.QueryRow(ctx, query, userID, lessonID))
}

func (t *ProgressTx) LessonProgressByID(ctx context.Context, id uuid.UUID) (*models.LessonProgress, error) {
	query := `SELECT ` + lessonProgressColumns + ` FROM lesson_progress WHERE id = $1`
	return scanLessonProgress(t.q.QueryRow(ctx, query, id))
}

func (t *ProgressTx) SaveLessonProgress(ctx context.Context, p *models.LessonProgress) error {
	query := `
		UPDATE lesson_progress
		SET completed = $2, score = $3, points_awarded = $4, attempts = $5,
		    last_attempted_at = $6, completed_at = $7, updated_at = $8
		WHERE id = $1
		RETURNING updated_at
	`
	now := time.Now().UTC()
	err := t.q.QueryRow(ctx, query, p.ID, p.Completed, p.Score, p.PointsAwarded, p.Attempts,
		p.LastAttemptedAt, p.CompletedAt, now).Scan(&p.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return app_errors.ErrProgressNotFound
		}
		return err
	}
	return nil
}

func (t *ProgressTx) LockModuleProgress(ctx context.Context, userID, moduleID uuid.UUID) (*models.ModuleProgress, error) {
	insert := `
		INSERT INTO module_progress (user_id, module_id)
		VALUES ($1, $2)
		ON CONFLICT (user_id, module_id) DO NOTHING
	`
	if _, err := t.q.Exec(ctx, insert, userID, moduleID); err != nil {
		return nil, fmt.Errorf("failed to create module progress: %w", err)
	}
	query := `
		SELECT id, user_id, module_id, completed, completed_at
		FROM module_progress
		WHERE user_id = $1 AND module_id = $2
		FOR UPDATE
	`
	var p models.ModuleProgress
	err := t.q.QueryRow(ctx, query, userID, moduleID).Scan(&p.ID, &p.UserID, &p.ModuleID, &p.Completed, &p.CompletedAt)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (t *ProgressTx) SaveModuleProgress(ctx context.Context, p *models.ModuleProgress) error {
	_, err := t.q.Exec(ctx,
		`UPDATE module_progress SET completed = $2, completed_at = $3 WHERE id = $1`,
		p.ID, p.Completed, p.CompletedAt)
	return err
}

func (t *ProgressTx) ModuleLessonCounts(ctx context.Context, userID, moduleID uuid.UUID) (total, completed int, err error) {
	query := `
		SELECT count(l.id), count(lp.id)
		FROM lessons l
		LEFT JOIN lesson_progress lp
		       ON lp.lesson_id = l.id AND lp.user_id = $1 AND lp.completed
		WHERE l.module_id = $2
	`
	err = t.q.QueryRow(ctx, query, userID, moduleID).Scan(&total, &completed)
	return
}

const courseProgressColumns = `id, user_id, course_id, completed, completed_at, certificate_issued, certificate_code`

func scanCourseProgress(row pgx.Row) (*models.CourseProgress, error) {
	var p models.CourseProgress
	err := row.Scan(&p.ID, &p.UserID, &p.CourseID, &p.Completed, &p.CompletedAt, &p.CertificateIssued, &p.CertificateCode)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, app_errors.ErrProgressNotFound
		}
		return nil, err
	}
	return &p, nil
}

func (t *ProgressTx) LockCourseProgress(ctx context.Context, userID, courseID uuid.UUID) (*models.CourseProgress, error) {
	insert := `
		INSERT INTO course_progress (user_id, course_id)
		VALUES ($1, $2)
		ON CONFLICT (user_id, course_id) DO NOTHING
	`
	if _, err := t.q.Exec(ctx, insert, userID, courseID); err != nil {
		return nil, fmt.Errorf("failed to create course progress: %w", err)
	}
	query := `SELECT ` + courseProgressColumns + ` FROM course_progress
		WHERE user_id = $1 AND course_id = $2 FOR UPDATE`
	return scanCourseProgress(t.q.QueryRow(ctx, query, userID, courseID))
}

func (t *ProgressTx) FindCourseProgress(ctx context.Context, userID, courseID uuid.UUID) (*models.CourseProgress, error) {
	query := `SELECT ` + courseProgressColumns + ` FROM course_progress WHERE user_id = $1 AND course_id = $2`
	return scanCourseProgress(t.q.QueryRow(ctx, query, userID, courseID))
}

// SaveCourseProgress never overwrites an existing certificate code.
func (t *ProgressTx) SaveCourseProgress(ctx context.Context, p *models.CourseProgress) error {
	query := `
		UPDATE course_progress
		SET completed = $2, completed_at = $3, certificate_issued = $4,
		    certificate_code = COALESCE(certificate_code, $5)
		WHERE id = $1
	`
	_, err := t.q.Exec(ctx, query, p.ID, p.Completed, p.CompletedAt, p.CertificateIssued, p.CertificateCode)
	return err
}

func (t *ProgressTx) CourseModuleCounts(ctx context.Context, userID, courseID uuid.UUID) (total, completed int, err error) {
	query := `
		SELECT count(m.id), count(mp.id)
		FROM modules m
		LEFT JOIN module_progress mp
		       ON mp.module_id = m.id AND mp.user_id = $1 AND mp.completed
		WHERE m.course_id = $2
	`
	err = t.q.QueryRow(ctx, query, userID, courseID).Scan(&total, &completed)
	return
}

func (t *ProgressTx) CreateCertificate(ctx context.Context, cert *models.Certificate) error {
	query := `
		INSERT INTO certificates (user_id, course_id, code, issued_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (user_id, course_id) DO NOTHING
		RETURNING id
	`
	err := t.q.QueryRow(ctx, query, cert.UserID, cert.CourseID, cert.Code, cert.IssuedAt).Scan(&cert.ID)
	if err != nil && !errors.Is(err, pgx.ErrNoRows) {
		return err
	}
	return nil
}

func (t *ProgressTx) AwardModuleBadge(ctx context.Context, userID, moduleID uuid.UUID) (bool, error) {
	query := `
		INSERT INTO user_badges (user_id, badge_id)
		SELECT $1, b.id FROM badges b WHERE b.module_id = $2
		ON CONFLICT (user_id, badge_id) DO NOTHING
	`
	tag, err := t.q.Exec(ctx, query, userID, moduleID)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

func (t *ProgressTx) RecordActivity(ctx context.Context, a *models.LearningActivity) error {
	return insertActivity(ctx, t.q, a)
}

func insertActivity(ctx context.Context, q querier, a *models.LearningActivity) error {
	var meta []byte
	if len(a.Metadata) > 0 {
		var err error
		if meta, err = json.Marshal(a.Metadata); err != nil {
			return fmt.Errorf("marshal activity metadata: %w", err)
		}
	}
	if a.CreatedAt.IsZero() {
		a.CreatedAt = time.Now().UTC()
	}
	query := `
		INSERT INTO learning_activities (user_id, activity_type, lesson_id, module_id, course_id, metadata, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id
	`
	return q.QueryRow(ctx, query, a.UserID, a.Type, a.LessonID, a.ModuleID, a.CourseID, meta, a.CreatedAt).Scan(&a.ID)
}
