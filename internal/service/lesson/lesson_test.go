package lesson

import (
	"CivicLearn/internal/app_errors"
	"CivicLearn/internal/models"
	"CivicLearn/pkg/logger"
	"context"
	"encoding/json"
	"sort"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeLessons struct {
	mu         sync.Mutex
	module     models.Module
	lessons    []models.Lesson
	questions  map[uuid.UUID][]models.Question
	completed  map[uuid.UUID]bool
	activities []models.LearningActivity
}

func newFakeLessons(n int) *fakeLessons {
	f := &fakeLessons{
		module:    models.Module{ID: uuid.New(), CourseID: uuid.New(), Order: 1},
		questions: map[uuid.UUID][]models.Question{},
		completed: map[uuid.UUID]bool{},
	}
	for i := 1; i <= n; i++ {
		f.lessons = append(f.lessons, models.Lesson{
			ID: uuid.New(), ModuleID: f.module.ID, CourseID: f.module.CourseID, Title: "Lesson", Order: i,
		})
	}
	return f
}

func (f *fakeLessons) LessonByID(_ context.Context, id uuid.UUID) (*models.Lesson, error) {
	for _, l := range f.lessons {
		if l.ID == id {
			cp := l
			return &cp, nil
		}
	}
	return nil, app_errors.ErrLessonNotFound
}

func (f *fakeLessons) ModuleByID(_ context.Context, id uuid.UUID) (*models.Module, error) {
	if id != f.module.ID {
		return nil, app_errors.ErrModuleNotFound
	}
	cp := f.module
	return &cp, nil
}

func (f *fakeLessons) LessonsByModule(_ context.Context, moduleID, _ uuid.UUID) ([]models.LessonSummary, error) {
	out := []models.LessonSummary{}
	for _, l := range f.lessons {
		out = append(out, models.LessonSummary{ID: l.ID, Title: l.Title, Order: l.Order, Completed: f.completed[l.ID]})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Order < out[j].Order })
	return out, nil
}

func (f *fakeLessons) PreviousLesson(_ context.Context, lesson models.Lesson) (*models.LessonRef, error) {
	var prev *models.LessonRef
	best := 0
	for _, l := range f.lessons {
		if l.Order < lesson.Order && l.Order > best {
			best = l.Order
			prev = &models.LessonRef{ID: l.ID, Title: l.Title}
		}
	}
	return prev, nil
}

func (f *fakeLessons) IsLessonCompleted(_ context.Context, _, lessonID uuid.UUID) (bool, error) {
	return f.completed[lessonID], nil
}

func (f *fakeLessons) Questions(_ context.Context, lessonID uuid.UUID) ([]models.Question, error) {
	return f.questions[lessonID], nil
}

func (f *fakeLessons) RecordActivity(_ context.Context, a *models.LearningActivity) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.activities = append(f.activities, *a)
	return nil
}

type fakeResources struct{}

func (fakeResources) URL(_ context.Context, key string) (string, error) {
	return "https://objects.test/" + key, nil
}

func TestLessonRequiresPreviousCompletion(t *testing.T) {
	ctx := context.Background()
	repo := newFakeLessons(2)
	svc := NewLessonService(logger.NewNop(), repo, fakeResources{})
	user := uuid.New()
	first, second := repo.lessons[0], repo.lessons[1]

	_, err := svc.Lesson(ctx, second.ID, user)
	assert.ErrorIs(t, err, app_errors.ErrPreviousLessonIncomplete)

	_, err = svc.Lesson(ctx, first.ID, user)
	require.NoError(t, err, "first lesson has no predecessor")

	repo.completed[first.ID] = true
	detail, err := svc.Lesson(ctx, second.ID, user)
	require.NoError(t, err)
	assert.False(t, detail.Completed)
}

func TestLessonAlreadyCompletedSkipsPrerequisite(t *testing.T) {
	repo := newFakeLessons(2)
	svc := NewLessonService(logger.NewNop(), repo, fakeResources{})
	repo.completed[repo.lessons[1].ID] = true

	detail, err := svc.Lesson(context.Background(), repo.lessons[1].ID, uuid.New())
	require.NoError(t, err)
	assert.True(t, detail.Completed)
}

func TestLessonDetailHidesCorrectAnswersAndRecordsView(t *testing.T) {
	repo := newFakeLessons(1)
	key := "lessons/x/1.pdf"
	repo.lessons[0].ResourceObjectKey = &key
	lessonID := repo.lessons[0].ID
	repo.questions[lessonID] = []models.Question{{
		ID: uuid.New(), LessonID: lessonID, Text: "Who appoints the CS?", Order: 1,
		Answers: []models.Answer{
			{ID: uuid.New(), Text: "The President", IsCorrect: true, Order: 1},
			{ID: uuid.New(), Text: "The Senate", Order: 2},
		},
	}}
	svc := NewLessonService(logger.NewNop(), repo, fakeResources{})
	user := uuid.New()

	detail, err := svc.Lesson(context.Background(), lessonID, user)
	require.NoError(t, err)
	assert.Equal(t, "https://objects.test/lessons/x/1.pdf", detail.ResourceURL)

	raw, err := json.Marshal(detail)
	require.NoError(t, err)
	assert.NotContains(t, string(raw), "is_correct")

	require.Len(t, repo.activities, 1)
	assert.Equal(t, models.ActivityViewLesson, repo.activities[0].Type)
	assert.Equal(t, user, repo.activities[0].UserID)
}

func TestLessonsUnknownModule(t *testing.T) {
	repo := newFakeLessons(1)
	svc := NewLessonService(logger.NewNop(), repo, fakeResources{})

	_, err := svc.Lessons(context.Background(), uuid.New(), uuid.New())
	assert.ErrorIs(t, err, app_errors.ErrModuleNotFound)

	lessons, err := svc.Lessons(context.Background(), repo.module.ID, uuid.New())
	require.NoError(t, err)
	assert.Len(t, lessons, 1)
}
