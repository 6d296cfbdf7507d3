package postgres

import (
	"context"
	"errors"

	"CivicLearn/internal/app_errors"
	"CivicLearn/internal/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// catalogReader holds the course/module/lesson lookups shared by the plain
// repositories and the progress transaction.
type catalogReader struct {
	q querier
}

const courseColumns = `id, title, description, image_object_key, status, author_id, created_at, updated_at`

func scanCourse(row pgx.Row) (*models.Course, error) {
	var c models.Course
	err := row.Scan(&c.ID, &c.Title, &c.Description, &c.ImageObjectKey, &c.Status, &c.AuthorID, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, app_errors.ErrCourseNotFound
		}
		return nil, err
	}
	return &c, nil
}

func (r catalogReader) course(ctx context.Context, id uuid.UUID) (*models.Course, error) {
	return scanCourse(r.q.QueryRow(ctx, `SELECT `+courseColumns+` FROM courses WHERE id = $1`, id))
}

const moduleColumns = `id, course_id, title, description, module_order, created_at, updated_at`

func scanModule(row pgx.Row) (models.Module, error) {
	var m models.Module
	err := row.Scan(&m.ID, &m.CourseID, &m.Title, &m.Description, &m.Order, &m.CreatedAt, &m.UpdatedAt)
	return m, err
}

func (r catalogReader) module(ctx context.Context, id uuid.UUID) (*models.Module, error) {
	m, err := scanModule(r.q.QueryRow(ctx, `SELECT `+moduleColumns+` FROM modules WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, app_errors.ErrModuleNotFound
		}
		return nil, err
	}
	return &m, nil
}

const lessonColumns = `l.id, l.module_id, m.course_id, l.title, l.content, l.video_url, l.lesson_order,
		l.resource_object_key, l.created_at, l.updated_at`

func scanLesson(row pgx.Row) (models.Lesson, error) {
	var l models.Lesson
	err := row.Scan(&l.ID, &l.ModuleID, &l.CourseID, &l.Title, &l.Content, &l.VideoURL, &l.Order,
		&l.ResourceObjectKey, &l.CreatedAt, &l.UpdatedAt)
	return l, err
}

func (r catalogReader) lesson(ctx context.Context, id uuid.UUID) (*models.Lesson, error) {
	query := `SELECT ` + lessonColumns + ` FROM lessons l JOIN modules m ON m.id = l.module_id WHERE l.id = $1`
	l, err := scanLesson(r.q.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, app_errors.ErrLessonNotFound
		}
		return nil, err
	}
	return &l, nil
}

// questions returns the lesson's questions in order, each with its answers in order.
func (r catalogReader) questions(ctx context.Context, lessonID uuid.UUID) ([]models.Question, error) {
	query := `
		SELECT q.id, q.lesson_id, q.text, q.question_order, q.allows_multiple_answers,
		       a.id, a.text, a.is_correct, a.answer_order
		FROM questions q
		LEFT JOIN answers a ON a.question_id = q.id
		WHERE q.lesson_id = $1
		ORDER BY q.question_order, a.answer_order
	`
	rows, err := r.q.Query(ctx, query, lessonID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var questions []models.Question
	for rows.Next() {
		var q models.Question
		var answerID *uuid.UUID
		var answerText *string
		var isCorrect *bool
		var answerOrder *int
		if err := rows.Scan(&q.ID, &q.LessonID, &q.Text, &q.Order, &q.AllowsMultipleAnswers,
			&answerID, &answerText, &isCorrect, &answerOrder); err != nil {
			return nil, err
		}
		if n := len(questions); n == 0 || questions[n-1].ID != q.ID {
			q.Answers = []models.Answer{}
			questions = append(questions, q)
		}
		if answerID != nil {
			cur := &questions[len(questions)-1]
			cur.Answers = append(cur.Answers, models.Answer{
				ID:         *answerID,
				QuestionID: cur.ID,
				Text:       *answerText,
				IsCorrect:  *isCorrect,
				Order:      *answerOrder,
			})
		}
	}
	return questions, rows.Err()
}
