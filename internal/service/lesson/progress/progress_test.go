package progress

import (
	"context"
	"errors"
	"testing"
	"time"

	"CivicLearn/internal/app_errors"
	"CivicLearn/internal/models"
	"CivicLearn/pkg/logger"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type clock struct{ t time.Time }

func (c *clock) now() time.Time { return c.t }
func (c *clock) advance(d time.Duration) { c.t = c.t.Add(d) }

func newTestService(store *memStore) (*LessonProgressService, *clock) {
	c := &clock{t: time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)}
	svc := NewLessonProgressService(logger.NewNop(), store, DefaultPolicy())
	svc.now = c.now
	return svc, c
}

func passing(store *memStore, lessonID uuid.UUID) models.Submission {
	sub := models.Submission{}
	for _, q := range store.data.questions[lessonID] {
		sub[q.ID] = models.Single(correctID(q))
	}
	return sub
}

func failing(store *memStore, lessonID uuid.UUID) models.Submission {
	sub := models.Submission{}
	for _, q := range store.data.questions[lessonID] {
		sub[q.ID] = models.Single(wrongID(q))
	}
	return sub
}

func TestSubmitLesson_ThreeOfFourPasses(t *testing.T) {
	store := newMemStore()
	_, lessons := store.addCourse(1, 2)
	lesson := lessons[0][0]
	qs := []models.Question{
		singleQuestion(lesson.ID, 1), singleQuestion(lesson.ID, 2),
		singleQuestion(lesson.ID, 3), singleQuestion(lesson.ID, 1),
	}
	store.data.questions[lesson.ID] = qs

	svc, c := newTestService(store)
	userID := uuid.New()
	sub := models.Submission{
		qs[0].ID: models.Single(correctID(qs[0])),
		qs[1].ID: models.Single(correctID(qs[1])),
		qs[2].ID: models.Single(correctID(qs[2])),
		qs[3].ID: models.Multiple(correctID(qs[3])),
	}

	res, err := svc.SubmitLesson(context.Background(), userID, lesson.ID, sub)
	require.NoError(t, err)

	assert.Equal(t, 3, res.Progress.Score)
	assert.Equal(t, 3, res.Progress.PointsAwarded)
	assert.Equal(t, 75.0, res.Percentage)
	assert.True(t, res.Passed)
	assert.True(t, res.Progress.Completed)
	require.NotNil(t, res.Progress.CompletedAt)
	assert.Equal(t, c.t, *res.Progress.CompletedAt)
	assert.Equal(t, 1, res.Progress.Attempts)
	assert.False(t, res.RetryAllowed)
	assert.False(t, res.Blocked)
	assert.Nil(t, res.UnlockAt)
	require.NotNil(t, res.NextLessonID)
	assert.Equal(t, lessons[0][1].ID, *res.NextLessonID)
	assert.False(t, res.ModuleCompleted)
}

func TestSubmitLesson_CooldownAfterThreeFailures(t *testing.T) {
	store := newMemStore()
	_, lessons := store.addCourse(1, 1)
	lesson := lessons[0][0]
	svc, c := newTestService(store)
	userID := uuid.New()
	ctx := context.Background()

	for i := 1; i <= 3; i++ {
		res, err := svc.SubmitLesson(ctx, userID, lesson.ID, failing(store, lesson.ID))
		require.NoError(t, err)
		assert.Equal(t, i, res.Progress.Attempts)
		assert.False(t, res.Passed)
		assert.Equal(t, i < 3, res.RetryAllowed)
		if i < 3 {
			c.advance(time.Minute)
		}
	}
	t0 := c.t

	c.advance(time.Hour)
	res, err := svc.SubmitLesson(ctx, userID, lesson.ID, passing(store, lesson.ID))
	require.NoError(t, err)
	assert.True(t, res.Blocked)
	assert.False(t, res.RetryAllowed)
	assert.False(t, res.Passed)
	assert.Equal(t, 0.0, res.Percentage)
	assert.Nil(t, res.NextLessonID)
	require.NotNil(t, res.UnlockAt)
	assert.Equal(t, t0.Add(12*time.Hour), *res.UnlockAt)
	assert.Equal(t, int64(11*time.Hour/time.Second), res.SecondsRemaining)
	assert.Equal(t, 3, store.data.lessonProgress[userKey{userID, lesson.ID}].Attempts)
	assert.False(t, store.data.lessonProgress[userKey{userID, lesson.ID}].Completed)

	c.t = t0.Add(13 * time.Hour)
	res, err = svc.SubmitLesson(ctx, userID, lesson.ID, passing(store, lesson.ID))
	require.NoError(t, err)
	assert.False(t, res.Blocked)
	assert.True(t, res.Passed)
	assert.Equal(t, 4, res.Progress.Attempts)
}

func TestSubmitLesson_CompletionNeverReverts(t *testing.T) {
	store := newMemStore()
	_, lessons := store.addCourse(2, 1)
	lesson := lessons[0][0]
	svc, c := newTestService(store)
	userID := uuid.New()
	ctx := context.Background()

	first, err := svc.SubmitLesson(ctx, userID, lesson.ID, passing(store, lesson.ID))
	require.NoError(t, err)
	completedAt := *first.Progress.CompletedAt

	c.advance(time.Hour)
	second, err := svc.SubmitLesson(ctx, userID, lesson.ID, failing(store, lesson.ID))
	require.NoError(t, err)

	assert.True(t, second.Progress.Completed)
	require.NotNil(t, second.Progress.CompletedAt)
	assert.Equal(t, completedAt, *second.Progress.CompletedAt)
	assert.Equal(t, 0, second.Progress.Score, "latest attempt wins for score")
	assert.False(t, second.Passed)
	assert.False(t, second.ModuleCompleted, "cascade only runs on the completing attempt")
}

func TestLessonState_CompletedLessonInCooldownReportsUnlock(t *testing.T) {
	store := newMemStore()
	_, lessons := store.addCourse(1, 1)
	lesson := lessons[0][0]
	svc, c := newTestService(store)
	userID := uuid.New()
	ctx := context.Background()

	_, err := svc.SubmitLesson(ctx, userID, lesson.ID, passing(store, lesson.ID))
	require.NoError(t, err)
	c.advance(time.Minute)
	_, err = svc.SubmitLesson(ctx, userID, lesson.ID, failing(store, lesson.ID))
	require.NoError(t, err)
	_, err = svc.SubmitLesson(ctx, userID, lesson.ID, failing(store, lesson.ID))
	require.NoError(t, err)
	last := c.t

	c.advance(time.Hour)
	state, err := svc.LessonState(ctx, userID, lesson.ID)
	require.NoError(t, err)
	assert.True(t, state.Progress.Completed)
	assert.True(t, state.Blocked)
	assert.False(t, state.RetryAllowed)
	require.NotNil(t, state.UnlockAt)
	assert.Equal(t, last.Add(12*time.Hour), *state.UnlockAt)
	assert.Equal(t, int64(11*time.Hour/time.Second), state.SecondsRemaining)
}

func TestSubmitLesson_CourseCompletionIssuesCertificateOnce(t *testing.T) {
	store := newMemStore()
	course, lessons := store.addCourse(3, 2)
	badgeID := uuid.New()
	store.data.badges[lessons[0][0].ModuleID] = badgeID
	svc, _ := newTestService(store)
	userID := uuid.New()
	ctx := context.Background()

	var last *Result
	for m, moduleLessons := range lessons {
		for i, l := range moduleLessons {
			res, err := svc.SubmitLesson(ctx, userID, l.ID, passing(store, l.ID))
			require.NoError(t, err)
			lastInModule := i == len(moduleLessons)-1
			assert.Equal(t, lastInModule, res.ModuleCompleted)
			assert.Equal(t, lastInModule && m == len(lessons)-1, res.CourseCompleted)
			last = res
		}
	}

	require.NotNil(t, last.CertificateCode)
	assert.Len(t, *last.CertificateCode, 32)
	assert.Nil(t, last.NextLessonID)

	cp := store.data.courseProgress[userKey{userID, course.ID}]
	assert.True(t, cp.Completed)
	assert.True(t, cp.CertificateIssued)
	assert.Equal(t, *last.CertificateCode, *cp.CertificateCode)
	assert.Len(t, store.data.certificates, 1)
	assert.True(t, store.data.userBadges[userKey{userID, badgeID}])

	for i := 0; i < 2; i++ {
		summary, err := svc.Reconcile(ctx, userID, course.ID)
		require.NoError(t, err)
		assert.Equal(t, *last.CertificateCode, *summary.Progress.CertificateCode)
		assert.Equal(t, 3, summary.CompletedModules)
	}
	assert.Len(t, store.data.certificates, 1)
}

func TestEvaluateCourse_Idempotent(t *testing.T) {
	store := newMemStore()
	course, lessons := store.addCourse(1, 1)
	svc, c := newTestService(store)
	userID := uuid.New()
	ctx := context.Background()

	_, err := svc.SubmitLesson(ctx, userID, lessons[0][0].ID, passing(store, lessons[0][0].ID))
	require.NoError(t, err)
	code := *store.data.courseProgress[userKey{userID, course.ID}].CertificateCode

	for i := 0; i < 2; i++ {
		err := store.WithTx(ctx, func(repo Repo) error {
			done, got, err := svc.evaluateCourse(ctx, repo, userID, course.ID, c.now())
			require.NoError(t, err)
			assert.False(t, done)
			require.NotNil(t, got)
			assert.Equal(t, code, *got)
			return nil
		})
		require.NoError(t, err)
	}
	assert.Len(t, store.data.certificates, 1)
}

func TestCascade_EmptyAggregatesNeverComplete(t *testing.T) {
	store := newMemStore()
	course, lessons := store.addCourse(1, 1)
	empty := models.Module{ID: uuid.New(), CourseID: course.ID, Order: 2}
	store.data.modules[empty.ID] = empty
	svc, _ := newTestService(store)
	userID := uuid.New()
	ctx := context.Background()

	res, err := svc.SubmitLesson(ctx, userID, lessons[0][0].ID, passing(store, lessons[0][0].ID))
	require.NoError(t, err)
	assert.True(t, res.ModuleCompleted)
	assert.False(t, res.CourseCompleted)

	summary, err := svc.Reconcile(ctx, userID, course.ID)
	require.NoError(t, err)
	assert.False(t, summary.Progress.Completed)
	assert.Equal(t, 2, summary.TotalModules)
	assert.Equal(t, 1, summary.CompletedModules)
	assert.False(t, store.data.moduleProgress[userKey{userID, empty.ID}].Completed)

	bare := models.Course{ID: uuid.New()}
	store.data.courses[bare.ID] = bare
	summary, err = svc.Reconcile(ctx, userID, bare.ID)
	require.NoError(t, err)
	assert.False(t, summary.Progress.Completed)
	assert.Nil(t, summary.Progress.CertificateCode)
}

func TestSubmitLesson_FailedCascadeRollsBack(t *testing.T) {
	store := newMemStore()
	_, lessons := store.addCourse(1, 1)
	lesson := lessons[0][0]
	svc, _ := newTestService(store)
	userID := uuid.New()
	ctx := context.Background()

	store.failSaveCourse = errors.New("disk full")
	_, err := svc.SubmitLesson(ctx, userID, lesson.ID, passing(store, lesson.ID))
	require.Error(t, err)
	_, exists := store.data.lessonProgress[userKey{userID, lesson.ID}]
	assert.False(t, exists)
	assert.Empty(t, store.data.activities)

	store.failSaveCourse = nil
	res, err := svc.SubmitLesson(ctx, userID, lesson.ID, passing(store, lesson.ID))
	require.NoError(t, err)
	assert.Equal(t, 1, res.Progress.Attempts)
	assert.True(t, res.CourseCompleted)
}

func TestSubmitLesson_ZeroQuestionLessonNeverCompletes(t *testing.T) {
	store := newMemStore()
	_, lessons := store.addCourse(1, 1)
	lesson := lessons[0][0]
	store.data.questions[lesson.ID] = nil
	svc, _ := newTestService(store)

	res, err := svc.SubmitLesson(context.Background(), uuid.New(), lesson.ID, models.Submission{})
	require.NoError(t, err)
	assert.Equal(t, 0.0, res.Percentage)
	assert.False(t, res.Passed)
	assert.False(t, res.Progress.Completed)
	assert.Equal(t, 1, res.Progress.Attempts)
}

func TestSubmitLesson_UnknownLesson(t *testing.T) {
	svc, _ := newTestService(newMemStore())
	_, err := svc.SubmitLesson(context.Background(), uuid.New(), uuid.New(), models.Submission{})
	assert.ErrorIs(t, err, app_errors.ErrLessonNotFound)
}

func TestSubmitProgress(t *testing.T) {
	store := newMemStore()
	_, lessons := store.addCourse(1, 1)
	lesson := lessons[0][0]
	svc, _ := newTestService(store)
	owner := uuid.New()
	ctx := context.Background()

	state, err := svc.LessonState(ctx, owner, lesson.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, state.Progress.Attempts)
	assert.True(t, state.RetryAllowed)
	assert.False(t, state.Blocked)

	_, err = svc.SubmitProgress(ctx, uuid.New(), state.Progress.ID, passing(store, lesson.ID))
	assert.ErrorIs(t, err, app_errors.ErrProgressNotFound)

	_, err = svc.SubmitProgress(ctx, owner, uuid.New(), passing(store, lesson.ID))
	assert.ErrorIs(t, err, app_errors.ErrProgressNotFound)

	res, err := svc.SubmitProgress(ctx, owner, state.Progress.ID, passing(store, lesson.ID))
	require.NoError(t, err)
	assert.Equal(t, state.Progress.ID, res.Progress.ID)
	assert.True(t, res.Passed)
}

func TestSubmitLesson_RecordsActivity(t *testing.T) {
	store := newMemStore()
	_, lessons := store.addCourse(1, 1)
	lesson := lessons[0][0]
	svc, _ := newTestService(store)
	userID := uuid.New()
	ctx := context.Background()

	_, err := svc.SubmitLesson(ctx, userID, lesson.ID, failing(store, lesson.ID))
	require.NoError(t, err)
	_, err = svc.SubmitLesson(ctx, userID, lesson.ID, passing(store, lesson.ID))
	require.NoError(t, err)

	var kinds []string
	for _, a := range store.data.activities {
		kinds = append(kinds, a.Type)
	}
	assert.Equal(t, []string{
		models.ActivityFailQuiz,
		models.ActivityPassQuiz,
		models.ActivityCompleteLesson,
		models.ActivityCompleteModule,
		models.ActivityCompleteCourse,
	}, kinds)
}

func TestCourseProgress_NotStarted(t *testing.T) {
	store := newMemStore()
	course, _ := store.addCourse(2, 1)
	svc, _ := newTestService(store)

	summary, err := svc.CourseProgress(context.Background(), uuid.New(), course.ID)
	require.NoError(t, err)
	assert.False(t, summary.Progress.Completed)
	assert.Equal(t, 2, summary.TotalModules)
	assert.Equal(t, 0, summary.CompletedModules)

	_, err = svc.CourseProgress(context.Background(), uuid.New(), uuid.New())
	assert.ErrorIs(t, err, app_errors.ErrCourseNotFound)
}
