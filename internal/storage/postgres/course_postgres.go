package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"CivicLearn/internal/app_errors"
	"CivicLearn/internal/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type CoursePostgres struct {
	db      *pgxpool.Pool
	catalog catalogReader
}

func NewCoursePostgres(db *pgxpool.Pool) *CoursePostgres {
	return &CoursePostgres{db: db, catalog: catalogReader{q: db}}
}

func (r *CoursePostgres) CreateCourse(ctx context.Context, course *models.Course) error {
	now := time.Now().UTC()
	if course.Status == "" {
		course.Status = models.StatusDraft
	}
	query := `
		INSERT INTO courses (title, description, status, author_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $5)
		RETURNING id, created_at, updated_at
	`
	return r.db.QueryRow(ctx, query, course.Title, course.Description, course.Status, course.AuthorID, now).
		Scan(&course.ID, &course.CreatedAt, &course.UpdatedAt)
}

func (r *CoursePostgres) UpdateCourse(ctx context.Context, course *models.Course) error {
	query := `
		UPDATE courses SET title = $2, description = $3, updated_at = $4
		WHERE id = $1
		RETURNING updated_at
	`
	err := r.db.QueryRow(ctx, query, course.ID, course.Title, course.Description, time.Now().UTC()).Scan(&course.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return app_errors.ErrCourseNotFound
	}
	return err
}

func (r *CoursePostgres) CourseByID(ctx context.Context, id uuid.UUID) (*models.Course, error) {
	return r.catalog.course(ctx, id)
}

func (r *CoursePostgres) ChangeStatus(ctx context.Context, id uuid.UUID, status string) error {
	tag, err := r.db.Exec(ctx, `UPDATE courses SET status = $2, updated_at = $3 WHERE id = $1`, id, status, time.Now().UTC())
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return app_errors.ErrCourseNotFound
	}
	return nil
}

func (r *CoursePostgres) SetImageKey(ctx context.Context, id uuid.UUID, key string) error {
	tag, err := r.db.Exec(ctx, `UPDATE courses SET image_object_key = $2, updated_at = $3 WHERE id = $1`, id, key, time.Now().UTC())
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return app_errors.ErrCourseNotFound
	}
	return nil
}

const previewSelect = `
	SELECT c.id, c.title, c.description, c.image_object_key, c.created_at,
	       (SELECT count(*) FROM modules m WHERE m.course_id = c.id),
	       (SELECT count(*) FROM lessons l JOIN modules m ON m.id = l.module_id WHERE m.course_id = c.id)
	FROM courses c
`

func collectPreviews(rows pgx.Rows) ([]models.CoursePreview, error) {
	defer rows.Close()
	var out []models.CoursePreview
	for rows.Next() {
		var p models.CoursePreview
		if err := rows.Scan(&p.ID, &p.Title, &p.Description, &p.ImageKey, &p.CreatedAt,
			&p.TotalModules, &p.TotalLessons); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (r *CoursePostgres) PublishedPreviews(ctx context.Context, limit, offset int) ([]models.CoursePreview, int, error) {
	var total int
	if err := r.db.QueryRow(ctx, `SELECT count(*) FROM courses WHERE status = $1`, models.StatusPublished).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := r.db.Query(ctx, previewSelect+`
		WHERE c.status = $1
		ORDER BY c.created_at DESC
		LIMIT $2 OFFSET $3`, models.StatusPublished, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to query courses: %w", err)
	}
	previews, err := collectPreviews(rows)
	return previews, total, err
}

// PreviewsByIDs keeps the order of ids and skips unpublished courses.
func (r *CoursePostgres) PreviewsByIDs(ctx context.Context, ids []uuid.UUID) ([]models.CoursePreview, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	rows, err := r.db.Query(ctx, previewSelect+`
		JOIN unnest($1::uuid[]) WITH ORDINALITY AS ids(id, pos) ON ids.id = c.id
		WHERE c.status = $2
		ORDER BY ids.pos`, ids, models.StatusPublished)
	if err != nil {
		return nil, err
	}
	return collectPreviews(rows)
}

func (r *CoursePostgres) SearchPreviews(ctx context.Context, query string, limit int) ([]models.CoursePreview, error) {
	rows, err := r.db.Query(ctx, previewSelect+`
		WHERE c.status = $1 AND (c.title ILIKE '%' || $2 || '%' OR c.description ILIKE '%' || $2 || '%')
		ORDER BY c.created_at DESC
		LIMIT $3`, models.StatusPublished, query, limit)
	if err != nil {
		return nil, err
	}
	return collectPreviews(rows)
}

func (r *CoursePostgres) Enroll(ctx context.Context, userID, courseID uuid.UUID) (*models.Enrollment, error) {
	query := `
		INSERT INTO enrollments (user_id, course_id)
		VALUES ($1, $2)
		RETURNING id, user_id, course_id, active, enrolled_at
	`
	var e models.Enrollment
	err := r.db.QueryRow(ctx, query, userID, courseID).Scan(&e.ID, &e.UserID, &e.CourseID, &e.Active, &e.EnrolledAt)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, app_errors.ErrAlreadyEnrolled
		}
		return nil, fmt.Errorf("failed to enroll: %w", err)
	}
	return &e, nil
}

func (r *CoursePostgres) EnrolledCourses(ctx context.Context, userID uuid.UUID) ([]models.EnrolledCourse, error) {
	query := `
		SELECT c.id, c.title, c.description, c.image_object_key, c.created_at,
		       (SELECT count(*) FROM modules m WHERE m.course_id = c.id),
		       (SELECT count(*) FROM lessons l JOIN modules m ON m.id = l.module_id WHERE m.course_id = c.id),
		       e.enrolled_at, COALESCE(cp.completed, FALSE), cp.completed_at, cp.certificate_code
		FROM enrollments e
		JOIN courses c ON c.id = e.course_id
		LEFT JOIN course_progress cp ON cp.course_id = c.id AND cp.user_id = e.user_id
		WHERE e.user_id = $1 AND e.active
		ORDER BY e.enrolled_at DESC
	`
	rows, err := r.db.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query enrolled courses: %w", err)
	}
	defer rows.Close()

	var out []models.EnrolledCourse
	for rows.Next() {
		var e models.EnrolledCourse
		if err := rows.Scan(&e.Course.ID, &e.Course.Title, &e.Course.Description, &e.Course.ImageKey, &e.Course.CreatedAt,
			&e.Course.TotalModules, &e.Course.TotalLessons,
			&e.EnrolledAt, &e.Completed, &e.CompletedAt, &e.CertificateCode); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

func (r *CoursePostgres) CreateModule(ctx context.Context, module *models.Module) error {
	now := time.Now().UTC()
	query := `
		INSERT INTO modules (course_id, title, description, module_order, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $5)
		RETURNING id, created_at, updated_at
	`
	err := r.db.QueryRow(ctx, query, module.CourseID, module.Title, module.Description, module.Order, now).
		Scan(&module.ID, &module.CreatedAt, &module.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return app_errors.ErrDuplicateModule
		}
		return err
	}
	return nil
}

func (r *CoursePostgres) ModuleByID(ctx context.Context, id uuid.UUID) (*models.Module, error) {
	return r.catalog.module(ctx, id)
}

func (r *CoursePostgres) ModulesByCourse(ctx context.Context, courseID, userID uuid.UUID) ([]models.ModuleSummary, error) {
	query := `
		SELECT m.id, m.course_id, m.title, m.description, m.module_order, m.created_at, m.updated_at,
		       (SELECT count(*) FROM lessons l WHERE l.module_id = m.id),
		       COALESCE(mp.completed, FALSE)
		FROM modules m
		LEFT JOIN module_progress mp ON mp.module_id = m.id AND mp.user_id = $2
		WHERE m.course_id = $1
		ORDER BY m.module_order
	`
	rows, err := r.db.Query(ctx, query, courseID, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	modules := make([]models.ModuleSummary, 0)
	for rows.Next() {
		var s models.ModuleSummary
		if err := rows.Scan(&s.ID, &s.CourseID, &s.Title, &s.Description, &s.Order, &s.CreatedAt, &s.UpdatedAt,
			&s.TotalLessons, &s.Completed); err != nil {
			return nil, err
		}
		modules = append(modules, s)
	}
	return modules, rows.Err()
}
