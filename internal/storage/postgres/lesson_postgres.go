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

type LessonPostgres struct {
	db      *pgxpool.Pool
	catalog catalogReader
}

func NewLessonPostgres(db *pgxpool.Pool) *LessonPostgres {
	return &LessonPostgres{db: db, catalog: catalogReader{q: db}}
}

func (r *LessonPostgres) CreateLesson(ctx context.Context, lesson *models.Lesson) error {
	now := time.Now().UTC()
	query := `
		INSERT INTO lessons (module_id, title, content, video_url, lesson_order, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $6)
		RETURNING id, created_at, updated_at
	`
	err := r.db.QueryRow(ctx, query, lesson.ModuleID, lesson.Title, lesson.Content, lesson.VideoURL, lesson.Order, now).
		Scan(&lesson.ID, &lesson.CreatedAt, &lesson.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return app_errors.ErrDuplicateLesson
		}
		return err
	}
	return nil
}

func (r *LessonPostgres) LessonByID(ctx context.Context, id uuid.UUID) (*models.Lesson, error) {
	return r.catalog.lesson(ctx, id)
}

func (r *LessonPostgres) ModuleByID(ctx context.Context, id uuid.UUID) (*models.Module, error) {
	return r.catalog.module(ctx, id)
}

func (r *LessonPostgres) LessonsByModule(ctx context.Context, moduleID, userID uuid.UUID) ([]models.LessonSummary, error) {
	query := `
		SELECT l.id, l.title, l.lesson_order, COALESCE(lp.completed, FALSE)
		FROM lessons l
		LEFT JOIN lesson_progress lp ON lp.lesson_id = l.id AND lp.user_id = $2
		WHERE l.module_id = $1
		ORDER BY l.lesson_order
	`
	rows, err := r.db.Query(ctx, query, moduleID, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	lessons := make([]models.LessonSummary, 0)
	for rows.Next() {
		var s models.LessonSummary
		if err := rows.Scan(&s.ID, &s.Title, &s.Order, &s.Completed); err != nil {
			return nil, err
		}
		lessons = append(lessons, s)
	}
	return lessons, rows.Err()
}

// PreviousLesson returns the lesson right before this one in the same module, or nil.
func (r *LessonPostgres) PreviousLesson(ctx context.Context, lesson models.Lesson) (*models.LessonRef, error) {
	query := `
		SELECT id, title FROM lessons
		WHERE module_id = $1 AND lesson_order < $2
		ORDER BY lesson_order DESC
		LIMIT 1
	`
	var ref models.LessonRef
	err := r.db.QueryRow(ctx, query, lesson.ModuleID, lesson.Order).Scan(&ref.ID, &ref.Title)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &ref, nil
}

func (r *LessonPostgres) IsLessonCompleted(ctx context.Context, userID, lessonID uuid.UUID) (bool, error) {
	var completed bool
	err := r.db.QueryRow(ctx,
		`SELECT completed FROM lesson_progress WHERE user_id = $1 AND lesson_id = $2`,
		userID, lessonID).Scan(&completed)
	if errors.Is(err, pgx.ErrNoRows) {
		return false, nil
	}
	return completed, err
}

func (r *LessonPostgres) Questions(ctx context.Context, lessonID uuid.UUID) ([]models.Question, error) {
	return r.catalog.questions(ctx, lessonID)
}

// CreateQuestion stores the question with all its answers atomically.
func (r *LessonPostgres) CreateQuestion(ctx context.Context, q *models.Question) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	insertQuestion := `
		INSERT INTO questions (lesson_id, text, question_order, allows_multiple_answers)
		VALUES ($1, $2, $3, $4)
		RETURNING id
	`
	err = tx.QueryRow(ctx, insertQuestion, q.LessonID, q.Text, q.Order, q.AllowsMultipleAnswers).Scan(&q.ID)
	if err != nil {
		if isUniqueViolation(err) {
			return app_errors.ErrDuplicateQuestion
		}
		if pgErr := UnwrapPgError(err); pgErr != nil && pgErr.Code == "23503" {
			return app_errors.ErrLessonNotFound
		}
		return fmt.Errorf("failed to insert question: %w", err)
	}

	insertAnswer := `
		INSERT INTO answers (question_id, text, is_correct, answer_order)
		VALUES ($1, $2, $3, $4)
		RETURNING id
	`
	for i := range q.Answers {
		a := &q.Answers[i]
		a.QuestionID = q.ID
		if err = tx.QueryRow(ctx, insertAnswer, q.ID, a.Text, a.IsCorrect, a.Order).Scan(&a.ID); err != nil {
			return fmt.Errorf("failed to insert answer: %w", err)
		}
	}

	return tx.Commit(ctx)
}

func (r *LessonPostgres) SetResourceKey(ctx context.Context, lessonID uuid.UUID, key string) error {
	tag, err := r.db.Exec(ctx,
		`UPDATE lessons SET resource_object_key = $2, updated_at = $3 WHERE id = $1`,
		lessonID, key, time.Now().UTC())
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return app_errors.ErrLessonNotFound
	}
	return nil
}

func (r *LessonPostgres) CreateBadge(ctx context.Context, b *models.Badge) error {
	query := `
		INSERT INTO badges (module_id, name, description, icon_object_key)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at
	`
	err := r.db.QueryRow(ctx, query, b.ModuleID, b.Name, b.Description, b.IconObjectKey).Scan(&b.ID, &b.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return app_errors.ErrBadgeExists
		}
		return err
	}
	return nil
}

func (r *LessonPostgres) RecordActivity(ctx context.Context, a *models.LearningActivity) error {
	return insertActivity(ctx, r.db, a)
}
