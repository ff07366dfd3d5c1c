package retention_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sechenov-plus/quiz-lambda/internal/config"
	"github.com/sechenov-plus/quiz-lambda/internal/event"
	"github.com/sechenov-plus/quiz-lambda/internal/quiz"
	"github.com/sechenov-plus/quiz-lambda/internal/quiz/memstore"
	"github.com/sechenov-plus/quiz-lambda/internal/retention"
)

var now = time.Date(2026, 5, 10, 12, 0, 0, 0, time.UTC)

type seeded struct {
	store *memstore.Store
	old   quiz.QuizAttempt
	fresh quiz.QuizAttempt
}

func seed(t *testing.T) seeded {
	t.Helper()
	store := memstore.New()
	subject := store.AddSubject("anatomy")
	qs := store.AddQuestions(subject.ID, nil, 3, true)
	ids := []uuid.UUID{qs[0].ID, qs[1].ID, qs[2].ID}

	completed := now.Add(-72*time.Hour + time.Hour)
	old := store.AddAttempt(quiz.QuizAttempt{
		UserID:      uuid.New(),
		Mode:        quiz.ModeRandom30,
		StartedAt:   now.Add(-72 * time.Hour),
		CompletedAt: &completed,
		IsCompleted: true,
	}, ids)
	fresh := store.AddAttempt(quiz.QuizAttempt{
		UserID:    uuid.New(),
		Mode:      quiz.ModeRandom30,
		StartedAt: now.Add(-24 * time.Hour),
	}, ids[:2])
	return seeded{store: store, old: old, fresh: fresh}
}

func TestRun_DeletesOnlyExpiredAttempts(t *testing.T) {
	s := seed(t)
	events := &event.Recorder{}
	svc := retention.NewService(s.store.Repository(), 48*time.Hour, events, func() time.Time { return now })

	report, err := svc.Run(context.Background(), retention.TriggerCron)
	require.NoError(t, err)

	assert.Equal(t, int64(1), report.DeletedAttempts)
	assert.Equal(t, int64(3), report.DeletedAnswers)
	assert.Equal(t, now.Add(-48*time.Hour), report.Cutoff)
	assert.Equal(t, 2, report.RetentionDays)

	_, ok := s.store.Attempt(s.old.ID)
	assert.False(t, ok)
	assert.Empty(t, s.store.Answers(s.old.ID))
	_, ok = s.store.Attempt(s.fresh.ID)
	assert.True(t, ok)
	assert.Len(t, s.store.Answers(s.fresh.ID), 2)

	again, err := svc.Run(context.Background(), retention.TriggerCron)
	require.NoError(t, err)
	assert.Zero(t, again.DeletedAttempts)
	assert.Zero(t, again.DeletedAnswers)
	assert.Equal(t, 1, s.store.CountAttempts())

	recorded := events.Events()
	require.Len(t, recorded, 2)
	assert.Equal(t, event.RetentionCompletedKey, recorded[0].RoutingKey)
	assert.Equal(t, "cron", recorded[0].Payload.(event.RetentionCompleted).Trigger)
}

func TestRun_DefaultWindow(t *testing.T) {
	s := seed(t)
	svc := retention.NewService(s.store.Repository(), 0, nil, func() time.Time { return now })

	report, err := svc.Run(context.Background(), retention.TriggerSchedule)
	require.NoError(t, err)
	assert.Equal(t, 2, report.RetentionDays)
	assert.Equal(t, int64(1), report.DeletedAttempts)
}

func TestRun_UsesSettingsRetentionWindow(t *testing.T) {
	s := seed(t)
	window := config.Settings{RetentionDays: 4}.RetentionWindow()
	svc := retention.NewService(s.store.Repository(), window, nil, func() time.Time { return now })

	report, err := svc.Run(context.Background(), retention.TriggerSchedule)
	require.NoError(t, err)
	assert.Equal(t, now.Add(-96*time.Hour), report.Cutoff)
	assert.Equal(t, 4, report.RetentionDays)
	assert.Zero(t, report.DeletedAttempts)
	_, ok := s.store.Attempt(s.old.ID)
	assert.True(t, ok)
}

func TestRun_PropagatesPurgeError(t *testing.T) {
	s := seed(t)
	s.store.FailOn("DeleteAttemptsStartedBefore", errors.New("lock timeout"))
	svc := retention.NewService(s.store.Repository(), 48*time.Hour, nil, func() time.Time { return now })

	_, err := svc.Run(context.Background(), retention.TriggerCron)
	assert.Error(t, err)
	assert.Equal(t, 2, s.store.CountAttempts())
}

func TestRoutes_Guards(t *testing.T) {
	s := seed(t)
	svc := retention.NewService(s.store.Repository(), 48*time.Hour, nil, func() time.Time { return now })
	r := chi.NewRouter()
	r.Mount("/admin", retention.Routes(retention.NewHandler(svc), "migrate-me", "cron-secret"))

	serve := func(req *http.Request) *httptest.ResponseRecorder {
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, req)
		return rec
	}

	rec := serve(httptest.NewRequest(http.MethodPost, "/admin/apply-cleanup-migration?token=wrong", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	req := httptest.NewRequest(http.MethodGet, "/admin/cleanup-old-attempts", nil)
	req.Header.Set("Authorization", "Bearer nope")
	assert.Equal(t, http.StatusUnauthorized, serve(req).Code)
	assert.Equal(t, 2, s.store.CountAttempts())

	rec = serve(httptest.NewRequest(http.MethodPost, "/admin/apply-cleanup-migration?token=migrate-me", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"success":true,"deletedAttempts":1,"deletedAnswers":3,"cutoff":"2026-05-08T12:00:00Z","retentionDays":2}`, rec.Body.String())

	req = httptest.NewRequest(http.MethodGet, "/admin/cleanup-old-attempts", nil)
	req.Header.Set("Authorization", "Bearer cron-secret")
	rec = serve(req)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"deletedAttempts":0`)
}

func TestRoutes_EmptySecretsDisableEndpoints(t *testing.T) {
	s := seed(t)
	svc := retention.NewService(s.store.Repository(), 48*time.Hour, nil, func() time.Time { return now })
	r := chi.NewRouter()
	r.Mount("/admin", retention.Routes(retention.NewHandler(svc), "", ""))

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/admin/apply-cleanup-migration?token=", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	req := httptest.NewRequest(http.MethodGet, "/admin/cleanup-old-attempts", nil)
	req.Header.Set("Authorization", "Bearer ")
	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, 2, s.store.CountAttempts())
}
