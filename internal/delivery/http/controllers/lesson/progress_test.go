package lesson

import (
	"CivicLearn/internal/app_errors"
	"CivicLearn/internal/delivery/http/controllers/middleware"
	"CivicLearn/internal/delivery/http/validation"
	"CivicLearn/internal/models"
	"CivicLearn/internal/service/lesson/progress"
	"CivicLearn/pkg/logger"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeProgress struct {
	lessonID   uuid.UUID
	progressID uuid.UUID
	blocked    bool
	got        models.Submission
}

func (f *fakeProgress) SubmitLesson(_ context.Context, userID, lessonID uuid.UUID, sub models.Submission) (*progress.Result, error) {
	if lessonID != f.lessonID {
		return nil, app_errors.ErrLessonNotFound
	}
	f.got = sub
	if f.blocked {
		unlock := time.Now().Add(11 * time.Hour)
		return &progress.Result{
			Progress:         models.LessonProgress{UserID: userID, LessonID: lessonID, Attempts: 3},
			Blocked:          true,
			UnlockAt:         &unlock,
			SecondsRemaining: int64((11 * time.Hour).Seconds()),
		}, nil
	}
	return &progress.Result{
		Progress:   models.LessonProgress{UserID: userID, LessonID: lessonID, Attempts: 1, Score: 3, Completed: true},
		Percentage: 75,
		Passed:     true,
	}, nil
}

func (f *fakeProgress) SubmitProgress(ctx context.Context, userID, progressID uuid.UUID, sub models.Submission) (*progress.Result, error) {
	if progressID != f.progressID {
		return nil, fmt.Errorf("load progress: %w", app_errors.ErrProgressNotFound)
	}
	return f.SubmitLesson(ctx, userID, f.lessonID, sub)
}

func (f *fakeProgress) LessonState(_ context.Context, userID, lessonID uuid.UUID) (*progress.Result, error) {
	return &progress.Result{Progress: models.LessonProgress{UserID: userID, LessonID: lessonID}, RetryAllowed: true}, nil
}

func (f *fakeProgress) CourseProgress(_ context.Context, userID, courseID uuid.UUID) (*progress.CourseSummary, error) {
	return &progress.CourseSummary{Progress: models.CourseProgress{UserID: userID, CourseID: courseID}, TotalModules: 3}, nil
}

func (f *fakeProgress) Reconcile(ctx context.Context, userID, courseID uuid.UUID) (*progress.CourseSummary, error) {
	return f.CourseProgress(ctx, userID, courseID)
}

func newProgressRouter(svc ProgressService, userID uuid.UUID) *gin.Engine {
	gin.SetMode(gin.TestMode)
	validation.Register()
	r := gin.New()
	h := NewProgressHandler(logger.NewNop(), svc)
	r.Use(func(c *gin.Context) {
		c.Set(middleware.ClientIDCtx, userID)
		c.Next()
	})
	r.POST("/lesson-progress/submit", h.Submit)
	r.PUT("/lesson-progress/:progress_id", h.Update)
	r.GET("/lesson-progress/by-lesson/:lesson_id", h.ByLesson)
	r.GET("/courses/:course_id/progress", h.CourseProgress)
	return r
}

func send(r http.Handler, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestSubmitDecodesAnswerShapes(t *testing.T) {
	svc := &fakeProgress{lessonID: uuid.New()}
	r := newProgressRouter(svc, uuid.New())

	q1, q2, q3 := uuid.New(), uuid.New(), uuid.New()
	a1, a2, a3 := uuid.New(), uuid.New(), uuid.New()
	body := fmt.Sprintf(`{"lesson_id":%q,"answers":{%q:%q,%q:[%q,%q],%q:42}}`,
		svc.lessonID, q1, a1, q2, a2, a3, q3)

	w := send(r, http.MethodPost, "/lesson-progress/submit", body)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	require.Len(t, svc.got, 3)
	assert.Equal(t, models.Single(a1), svc.got[q1])
	assert.Equal(t, models.Multiple(a2, a3), svc.got[q2])
	assert.True(t, svc.got[q3].Invalid)

	var res progress.Result
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &res))
	assert.True(t, res.Passed)
	assert.Equal(t, 75.0, res.Percentage)
}

func TestSubmitIgnoresUnknownAnswerKeys(t *testing.T) {
	svc := &fakeProgress{lessonID: uuid.New()}
	r := newProgressRouter(svc, uuid.New())

	q, a := uuid.New(), uuid.New()
	body := fmt.Sprintf(`{"lesson_id":%q,"answers":{%q:%q,"1":%q}}`, svc.lessonID, q, a, a)

	w := send(r, http.MethodPost, "/lesson-progress/submit", body)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, models.Submission{q: models.Single(a)}, svc.got)
}

func TestSubmitBlockedIsNotAnError(t *testing.T) {
	svc := &fakeProgress{lessonID: uuid.New(), blocked: true}
	r := newProgressRouter(svc, uuid.New())

	w := send(r, http.MethodPost, "/lesson-progress/submit", fmt.Sprintf(`{"lesson_id":%q,"answers":{}}`, svc.lessonID))
	require.Equal(t, http.StatusOK, w.Code)

	var res progress.Result
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &res))
	assert.True(t, res.Blocked)
	assert.False(t, res.RetryAllowed)
	require.NotNil(t, res.UnlockAt)
	assert.Equal(t, int64(11*3600), res.SecondsRemaining)
}

func TestSubmitErrors(t *testing.T) {
	svc := &fakeProgress{lessonID: uuid.New(), progressID: uuid.New()}
	r := newProgressRouter(svc, uuid.New())

	tests := []struct {
		name   string
		method string
		path   string
		body   string
		want   int
	}{
		{"missing lesson id", http.MethodPost, "/lesson-progress/submit", `{"answers":{}}`, http.StatusBadRequest},
		{"missing answers", http.MethodPost, "/lesson-progress/submit", fmt.Sprintf(`{"lesson_id":%q}`, svc.lessonID), http.StatusBadRequest},
		{"null answers", http.MethodPost, "/lesson-progress/submit", fmt.Sprintf(`{"lesson_id":%q,"answers":null}`, svc.lessonID), http.StatusBadRequest},
		{"unknown lesson", http.MethodPost, "/lesson-progress/submit", fmt.Sprintf(`{"lesson_id":%q,"answers":{}}`, uuid.New()), http.StatusNotFound},
		{"unknown progress", http.MethodPut, "/lesson-progress/" + uuid.NewString(), `{"answers":{}}`, http.StatusNotFound},
		{"malformed progress id", http.MethodPut, "/lesson-progress/abc", `{"answers":{}}`, http.StatusBadRequest},
		{"known progress", http.MethodPut, "/lesson-progress/" + svc.progressID.String(), `{"answers":{}}`, http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := send(r, tt.method, tt.path, tt.body)
			assert.Equal(t, tt.want, w.Code, w.Body.String())
		})
	}
}

func TestByLessonAndCourseProgress(t *testing.T) {
	userID := uuid.New()
	r := newProgressRouter(&fakeProgress{}, userID)

	lessonID := uuid.New()
	w := send(r, http.MethodGet, "/lesson-progress/by-lesson/"+lessonID.String(), "")
	require.Equal(t, http.StatusOK, w.Code)
	var res progress.Result
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &res))
	assert.Equal(t, lessonID, res.Progress.LessonID)
	assert.True(t, res.RetryAllowed)

	w = send(r, http.MethodGet, "/courses/"+uuid.NewString()+"/progress", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"total_modules":3`)
}
