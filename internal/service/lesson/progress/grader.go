package progress

import (
	"math"

	"CivicLearn/internal/models"

	"github.com/google/uuid"
)

type Grade struct {
	Score      int     `json:"score"`
	Total      int     `json:"total"`
	Percentage float64 `json:"percentage"`
	Passed     bool    `json:"passed"`
}

// GradeQuiz scores a submission against the lesson's questions. Each question
// is worth one point. Malformed selections score zero for their question.
func GradeQuiz(questions []models.Question, sub models.Submission, passMark float64) Grade {
	g := Grade{Total: len(questions)}
	for _, q := range questions {
		sel, ok := sub[q.ID]
		if !ok {
			continue
		}
		if questionCorrect(q, sel) {
			g.Score++
		}
	}
	if g.Total == 0 {
		return g
	}
	exact := float64(g.Score) / float64(g.Total) * 100
	g.Passed = exact >= passMark
	g.Percentage = round2(exact)
	return g
}

func questionCorrect(q models.Question, sel models.AnswerSelection) bool {
	if sel.Invalid {
		return false
	}
	correct := q.CorrectAnswerIDs()

	if !q.AllowsMultipleAnswers {
		if sel.Multi || len(sel.IDs) != 1 {
			return false
		}
		_, ok := correct[sel.IDs[0]]
		return ok
	}

	if len(correct) == 0 {
		return false
	}
	submitted := make(map[uuid.UUID]struct{}, len(sel.IDs))
	for _, id := range sel.IDs {
		submitted[id] = struct{}{}
	}
	if len(submitted) != len(correct) {
		return false
	}
	for id := range submitted {
		if _, ok := correct[id]; !ok {
			return false
		}
	}
	return true
}

func percentageOf(score, total int) float64 {
	if total == 0 {
		return 0
	}
	return round2(float64(score) / float64(total) * 100)
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
