package models

import (
	"encoding/json"

	"github.com/google/uuid"
)

type Question struct {
	ID                    uuid.UUID `json:"id"`
	LessonID              uuid.UUID `json:"lesson_id"`
	Text                  string    `json:"text"`
	Order                 int       `json:"order"`
	AllowsMultipleAnswers bool      `json:"allows_multiple_answers"`
	Answers               []Answer  `json:"answers"`
}

type Answer struct {
	ID         uuid.UUID `json:"id"`
	QuestionID uuid.UUID `json:"question_id"`
	Text       string    `json:"text"`
	IsCorrect  bool      `json:"is_correct"`
	Order      int       `json:"order"`
}

// PublicQuestion is the learner facing view of a question: correctness is stripped.
type PublicQuestion struct {
	ID                    uuid.UUID      `json:"id"`
	Text                  string         `json:"text"`
	Order                 int            `json:"order"`
	AllowsMultipleAnswers bool           `json:"allows_multiple_answers"`
	Answers               []PublicAnswer `json:"answers"`
}

type PublicAnswer struct {
	ID    uuid.UUID `json:"id"`
	Text  string    `json:"text"`
	Order int       `json:"order"`
}

func (q Question) Public() PublicQuestion {
	answers := make([]PublicAnswer, 0, len(q.Answers))
	for _, a := range q.Answers {
		answers = append(answers, PublicAnswer{ID: a.ID, Text: a.Text, Order: a.Order})
	}
	return PublicQuestion{
		ID:                    q.ID,
		Text:                  q.Text,
		Order:                 q.Order,
		AllowsMultipleAnswers: q.AllowsMultipleAnswers,
		Answers:               answers,
	}
}

// CorrectAnswerIDs returns the set of answers marked correct.
func (q Question) CorrectAnswerIDs() map[uuid.UUID]struct{} {
	set := make(map[uuid.UUID]struct{})
	for _, a := range q.Answers {
		if a.IsCorrect {
			set[a.ID] = struct{}{}
		}
	}
	return set
}

// Submission maps a question id to the answer(s) picked for it.
type Submission map[uuid.UUID]AnswerSelection

// UnmarshalJSON skips keys that are not question ids, so one stray key
// costs nothing but its own entry.
func (s *Submission) UnmarshalJSON(data []byte) error {
	var raw map[string]AnswerSelection
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if raw == nil {
		*s = nil
		return nil
	}

	sub := make(Submission, len(raw))
	for key, sel := range raw {
		id, err := uuid.Parse(key)
		if err != nil {
			continue
		}
		sub[id] = sel
	}
	*s = sub
	return nil
}

// AnswerSelection holds either a single answer id or a list of them.
// Decoding never fails on a bad shape, it only marks the selection invalid
// so that grading can score that question as zero.
type AnswerSelection struct {
	IDs     []uuid.UUID
	Multi   bool
	Invalid bool
}

func Single(id uuid.UUID) AnswerSelection {
	return AnswerSelection{IDs: []uuid.UUID{id}}
}

func Multiple(ids ...uuid.UUID) AnswerSelection {
	return AnswerSelection{IDs: ids, Multi: true}
}

func (s *AnswerSelection) UnmarshalJSON(data []byte) error {
	*s = AnswerSelection{}

	var one string
	if err := json.Unmarshal(data, &one); err == nil {
		id, err := uuid.Parse(one)
		if err != nil {
			s.Invalid = true
			return nil
		}
		s.IDs = []uuid.UUID{id}
		return nil
	}

	var many []json.RawMessage
	if err := json.Unmarshal(data, &many); err == nil {
		s.Multi = true
		for _, raw := range many {
			var str string
			if err := json.Unmarshal(raw, &str); err != nil {
				s.Invalid = true
				continue
			}
			id, err := uuid.Parse(str)
			if err != nil {
				s.Invalid = true
				continue
			}
			s.IDs = append(s.IDs, id)
		}
		return nil
	}

	s.Invalid = true
	return nil
}

func (s AnswerSelection) MarshalJSON() ([]byte, error) {
	if !s.Multi && len(s.IDs) == 1 {
		return json.Marshal(s.IDs[0])
	}
	ids := s.IDs
	if ids == nil {
		ids = []uuid.UUID{}
	}
	return json.Marshal(ids)
}
