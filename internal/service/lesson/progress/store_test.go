package progress

import (
	"context"
	"sort"
	"sync"

	"CivicLearn/internal/app_errors"
	"CivicLearn/internal/models"

	"github.com/google/uuid"
)

type userKey struct {
	user uuid.UUID
	id   uuid.UUID
}

type memData struct {
	courses        map[uuid.UUID]models.Course
	modules        map[uuid.UUID]models.Module
	lessons        map[uuid.UUID]models.Lesson
	questions      map[uuid.UUID][]models.Question
	lessonProgress map[userKey]models.LessonProgress
	moduleProgress map[userKey]models.ModuleProgress
	courseProgress map[userKey]models.CourseProgress
	badges         map[uuid.UUID]uuid.UUID
	userBadges     map[userKey]bool
	certificates   []models.Certificate
	activities     []models.LearningActivity
}

func (d memData) clone() memData {
	c := memData{
		courses:        copyMap(d.courses),
		modules:        copyMap(d.modules),
		lessons:        copyMap(d.lessons),
		questions:      copyMap(d.questions),
		lessonProgress: copyMap(d.lessonProgress),
		moduleProgress: copyMap(d.moduleProgress),
		courseProgress: copyMap(d.courseProgress),
		badges:         copyMap(d.badges),
		userBadges:     copyMap(d.userBadges),
	}
	c.certificates = append([]models.Certificate(nil), d.certificates...)
	c.activities = append([]models.LearningActivity(nil), d.activities...)
	return c
}

func copyMap[K comparable, V any](m map[K]V) map[K]V {
	out := make(map[K]V, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

// memStore serializes transactions with a mutex and rolls back by restoring
// a snapshot taken on begin.
type memStore struct {
	mu   sync.Mutex
	data memData

	failSaveCourse error
}

func newMemStore() *memStore {
	return &memStore{data: memData{
		courses:        map[uuid.UUID]models.Course{},
		modules:        map[uuid.UUID]models.Module{},
		lessons:        map[uuid.UUID]models.Lesson{},
		questions:      map[uuid.UUID][]models.Question{},
		lessonProgress: map[userKey]models.LessonProgress{},
		moduleProgress: map[userKey]models.ModuleProgress{},
		courseProgress: map[userKey]models.CourseProgress{},
		badges:         map[uuid.UUID]uuid.UUID{},
		userBadges:     map[userKey]bool{},
	}}
}

func (m *memStore) WithTx(ctx context.Context, fn func(repo Repo) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	snapshot := m.data.clone()
	if err := fn(&memTx{store: m}); err != nil {
		m.data = snapshot
		return err
	}
	return nil
}

func (m *memStore) addCourse(modules, lessonsPerModule int) (models.Course, [][]models.Lesson) {
	course := models.Course{ID: uuid.New(), Title: "Civics 101", Status: models.StatusPublished}
	m.data.courses[course.ID] = course

	var all [][]models.Lesson
	for i := 0; i < modules; i++ {
		mod := models.Module{ID: uuid.New(), CourseID: course.ID, Order: i + 1}
		m.data.modules[mod.ID] = mod
		var lessons []models.Lesson
		for j := 0; j < lessonsPerModule; j++ {
			l := models.Lesson{ID: uuid.New(), ModuleID: mod.ID, CourseID: course.ID, Order: j + 1, Title: "lesson"}
			m.data.lessons[l.ID] = l
			q := singleQuestion(l.ID, 1)
			m.data.questions[l.ID] = []models.Question{q}
			lessons = append(lessons, l)
		}
		all = append(all, lessons)
	}
	return course, all
}

type memTx struct {
	store *memStore
}

func (t *memTx) d() *memData { return &t.store.data }

func (t *memTx) Course(ctx context.Context, courseID uuid.UUID) (*models.Course, error) {
	c, ok := t.d().courses[courseID]
	if !ok {
		return nil, app_errors.ErrCourseNotFound
	}
	return &c, nil
}

func (t *memTx) Module(ctx context.Context, moduleID uuid.UUID) (*models.Module, error) {
	m, ok := t.d().modules[moduleID]
	if !ok {
		return nil, app_errors.ErrModuleNotFound
	}
	return &m, nil
}

func (t *memTx) Lesson(ctx context.Context, lessonID uuid.UUID) (*models.Lesson, error) {
	l, ok := t.d().lessons[lessonID]
	if !ok {
		return nil, app_errors.ErrLessonNotFound
	}
	return &l, nil
}

func (t *memTx) Questions(ctx context.Context, lessonID uuid.UUID) ([]models.Question, error) {
	return t.d().questions[lessonID], nil
}

func (t *memTx) NextLesson(ctx context.Context, lesson models.Lesson) (*models.LessonRef, error) {
	type pos struct {
		module, lesson int
		l              models.Lesson
	}
	var ordered []pos
	for _, l := range t.d().lessons {
		if l.CourseID != lesson.CourseID {
			continue
		}
		ordered = append(ordered, pos{t.d().modules[l.ModuleID].Order, l.Order, l})
	}
	sort.Slice(ordered, func(i, j int) bool {
		if ordered[i].module != ordered[j].module {
			return ordered[i].module < ordered[j].module
		}
		return ordered[i].lesson < ordered[j].lesson
	})
	cur := t.d().modules[lesson.ModuleID].Order
	for _, p := range ordered {
		if p.module > cur || (p.module == cur && p.lesson > lesson.Order) {
			return &models.LessonRef{ID: p.l.ID, Title: p.l.Title}, nil
		}
	}
	return nil, nil
}

func (t *memTx) CourseModuleIDs(ctx context.Context, courseID uuid.UUID) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	for _, m := range t.d().modules {
		if m.CourseID == courseID {
			ids = append(ids, m.ID)
		}
	}
	return ids, nil
}

func (t *memTx) LockLessonProgress(ctx context.Context, userID, lessonID uuid.UUID) (*models.LessonProgress, error) {
	k := userKey{userID, lessonID}
	lp, ok := t.d().lessonProgress[k]
	if !ok {
		lp = models.LessonProgress{ID: uuid.New(), UserID: userID, LessonID: lessonID}
		t.d().lessonProgress[k] = lp
	}
	return &lp, nil
}

func (t *memTx) LessonProgressByID(ctx context.Context, id uuid.UUID) (*models.LessonProgress, error) {
	for _, lp := range t.d().lessonProgress {
		if lp.ID == id {
			return &lp, nil
		}
	}
	return nil, app_errors.ErrProgressNotFound
}

func (t *memTx) SaveLessonProgress(ctx context.Context, p *models.LessonProgress) error {
	t.d().lessonProgress[userKey{p.UserID, p.LessonID}] = *p
	return nil
}

func (t *memTx) LockModuleProgress(ctx context.Context, userID, moduleID uuid.UUID) (*models.ModuleProgress, error) {
	k := userKey{userID, moduleID}
	mp, ok := t.d().moduleProgress[k]
	if !ok {
		mp = models.ModuleProgress{ID: uuid.New(), UserID: userID, ModuleID: moduleID}
		t.d().moduleProgress[k] = mp
	}
	return &mp, nil
}

func (t *memTx) SaveModuleProgress(ctx context.Context, p *models.ModuleProgress) error {
	t.d().moduleProgress[userKey{p.UserID, p.ModuleID}] = *p
	return nil
}

func (t *memTx) ModuleLessonCounts(ctx context.Context, userID, moduleID uuid.UUID) (int, int, error) {
	var total, done int
	for _, l := range t.d().lessons {
		if l.ModuleID != moduleID {
			continue
		}
		total++
		if t.d().lessonProgress[userKey{userID, l.ID}].Completed {
			done++
		}
	}
	return total, done, nil
}

func (t *memTx) LockCourseProgress(ctx context.Context, userID, courseID uuid.UUID) (*models.CourseProgress, error) {
	k := userKey{userID, courseID}
	cp, ok := t.d().courseProgress[k]
	if !ok {
		cp = models.CourseProgress{ID: uuid.New(), UserID: userID, CourseID: courseID}
		t.d().courseProgress[k] = cp
	}
	return &cp, nil
}

func (t *memTx) FindCourseProgress(ctx context.Context, userID, courseID uuid.UUID) (*models.CourseProgress, error) {
	cp, ok := t.d().courseProgress[userKey{userID, courseID}]
	if !ok {
		return nil, app_errors.ErrProgressNotFound
	}
	return &cp, nil
}

func (t *memTx) SaveCourseProgress(ctx context.Context, p *models.CourseProgress) error {
	if t.store.failSaveCourse != nil {
		return t.store.failSaveCourse
	}
	t.d().courseProgress[userKey{p.UserID, p.CourseID}] = *p
	return nil
}

func (t *memTx) CourseModuleCounts(ctx context.Context, userID, courseID uuid.UUID) (int, int, error) {
	var total, done int
	for _, m := range t.d().modules {
		if m.CourseID != courseID {
			continue
		}
		total++
		if t.d().moduleProgress[userKey{userID, m.ID}].Completed {
			done++
		}
	}
	return total, done, nil
}

func (t *memTx) CreateCertificate(ctx context.Context, cert *models.Certificate) error {
	t.d().certificates = append(t.d().certificates, *cert)
	return nil
}

func (t *memTx) AwardModuleBadge(ctx context.Context, userID, moduleID uuid.UUID) (bool, error) {
	badgeID, ok := t.d().badges[moduleID]
	if !ok {
		return false, nil
	}
	k := userKey{userID, badgeID}
	if t.d().userBadges[k] {
		return false, nil
	}
	t.d().userBadges[k] = true
	return true, nil
}

func (t *memTx) RecordActivity(ctx context.Context, a *models.LearningActivity) error {
	t.d().activities = append(t.d().activities, *a)
	return nil
}

// singleQuestion builds a single answer question whose answer at index
// correct (1-based) is the right one, out of three.
func singleQuestion(lessonID uuid.UUID, correct int) models.Question {
	q := models.Question{ID: uuid.New(), LessonID: lessonID}
	for i := 1; i <= 3; i++ {
		q.Answers = append(q.Answers, models.Answer{ID: uuid.New(), QuestionID: q.ID, IsCorrect: i == correct, Order: i})
	}
	return q
}

func correctID(q models.Question) uuid.UUID {
	for _, a := range q.Answers {
		if a.IsCorrect {
			return a.ID
		}
	}
	return uuid.Nil
}

func wrongID(q models.Question) uuid.UUID {
	for _, a := range q.Answers {
		if !a.IsCorrect {
			return a.ID
		}
	}
	return uuid.Nil
}
