package progress

import (
	"testing"

	"CivicLearn/internal/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func multiQuestion(correct ...bool) models.Question {
	q := models.Question{ID: uuid.New(), AllowsMultipleAnswers: true}
	for i, c := range correct {
		q.Answers = append(q.Answers, models.Answer{ID: uuid.New(), QuestionID: q.ID, IsCorrect: c, Order: i + 1})
	}
	return q
}

func TestGradeQuiz_SingleAnswer(t *testing.T) {
	q := singleQuestion(uuid.New(), 2)
	right, wrong := correctID(q), wrongID(q)

	tests := []struct {
		name string
		sel  *models.AnswerSelection
		want int
	}{
		{"correct id", ptr(models.Single(right)), 1},
		{"wrong id", ptr(models.Single(wrong)), 0},
		{"omitted", nil, 0},
		{"list with correct id", ptr(models.Multiple(right)), 0},
		{"invalid shape", &models.AnswerSelection{Invalid: true}, 0},
		{"unknown id", ptr(models.Single(uuid.New())), 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sub := models.Submission{}
			if tt.sel != nil {
				sub[q.ID] = *tt.sel
			}
			g := GradeQuiz([]models.Question{q}, sub, DefaultPassPercentage)
			assert.Equal(t, tt.want, g.Score)
			assert.Equal(t, 1, g.Total)
		})
	}
}

func TestGradeQuiz_MultipleAnswers(t *testing.T) {
	q := multiQuestion(true, false, true)
	a, b, c := q.Answers[0].ID, q.Answers[1].ID, q.Answers[2].ID

	tests := []struct {
		name string
		sel  models.AnswerSelection
		want int
	}{
		{"exact set", models.Multiple(a, c), 1},
		{"exact set reordered", models.Multiple(c, a), 1},
		{"duplicates collapse", models.Multiple(a, c, a), 1},
		{"subset", models.Multiple(a), 0},
		{"superset", models.Multiple(a, b, c), 0},
		{"disjoint", models.Multiple(b), 0},
		{"empty", models.Multiple(), 0},
		{"partially invalid", models.AnswerSelection{IDs: []uuid.UUID{a, c}, Multi: true, Invalid: true}, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := GradeQuiz([]models.Question{q}, models.Submission{q.ID: tt.sel}, DefaultPassPercentage)
			assert.Equal(t, tt.want, g.Score)
		})
	}
}

func TestGradeQuiz_MultipleScalarCountsAsOneElementSet(t *testing.T) {
	q := multiQuestion(false, true)
	g := GradeQuiz([]models.Question{q}, models.Submission{q.ID: models.Single(q.Answers[1].ID)}, DefaultPassPercentage)
	assert.Equal(t, 1, g.Score)
}

func TestGradeQuiz_NoCorrectAnswersNeverScores(t *testing.T) {
	q := multiQuestion(false, false)
	for _, sel := range []models.AnswerSelection{
		models.Multiple(),
		models.Multiple(q.Answers[0].ID),
		models.Multiple(q.Answers[0].ID, q.Answers[1].ID),
	} {
		g := GradeQuiz([]models.Question{q}, models.Submission{q.ID: sel}, DefaultPassPercentage)
		assert.Equal(t, 0, g.Score)
	}
}

func TestGradeQuiz_Percentages(t *testing.T) {
	lessonID := uuid.New()
	four := []models.Question{
		singleQuestion(lessonID, 1), singleQuestion(lessonID, 2),
		singleQuestion(lessonID, 3), singleQuestion(lessonID, 1),
	}
	sub := models.Submission{
		four[0].ID: models.Single(correctID(four[0])),
		four[1].ID: models.Single(correctID(four[1])),
		four[2].ID: models.Single(correctID(four[2])),
		four[3].ID: models.Single(wrongID(four[3])),
	}

	g := GradeQuiz(four, sub, DefaultPassPercentage)
	assert.Equal(t, Grade{Score: 3, Total: 4, Percentage: 75, Passed: true}, g)

	three := four[:3]
	sub = models.Submission{
		three[0].ID: models.Single(correctID(three[0])),
		three[1].ID: models.Single(correctID(three[1])),
	}
	g = GradeQuiz(three, sub, DefaultPassPercentage)
	assert.Equal(t, 66.67, g.Percentage)
	assert.False(t, g.Passed)
}

func TestGradeQuiz_ZeroQuestions(t *testing.T) {
	g := GradeQuiz(nil, models.Submission{uuid.New(): models.Single(uuid.New())}, DefaultPassPercentage)
	assert.Equal(t, Grade{}, g)
}

func ptr[T any](v T) *T { return &v }
