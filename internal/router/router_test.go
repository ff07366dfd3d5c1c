package router_test

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sechenov-plus/quiz-lambda/internal/auth"
	"github.com/sechenov-plus/quiz-lambda/internal/quiz"
	"github.com/sechenov-plus/quiz-lambda/internal/quiz/memstore"
	"github.com/sechenov-plus/quiz-lambda/internal/ratelimit"
	"github.com/sechenov-plus/quiz-lambda/internal/retention"
	"github.com/sechenov-plus/quiz-lambda/internal/router"
	"github.com/sechenov-plus/quiz-lambda/internal/user"
)

func newServer(t *testing.T) (http.Handler, *memstore.Store) {
	t.Helper()
	auth.InitWithSecret("router-test-secret")

	store := memstore.New()
	qc := quiz.NewQuizContainer(store.Repository(), nil, quiz.ServiceConfig{ResumeRetries: 1})
	rc := retention.NewRetentionContainer(store.Repository(), 48*time.Hour, nil)

	limiter, err := ratelimit.New(ratelimit.Config{Requests: 2, Window: time.Minute})
	require.NoError(t, err)

	h := router.New(router.RouterConfig{
		UserHandler:      user.NewUserContainer(store.Users()).Handler,
		AuthHandler:      auth.NewHandler(""),
		QuizHandler:      qc.Handler,
		QuizAdminHandler: qc.AdminHandler,
		RetentionHandler: rc.Handler,
		Limiter:          limiter,
		AllowedOrigins:   "*",
		MigrationToken:   "migrate",
		CronSecret:       "cron",
	})
	return h, store
}

func bearer(t *testing.T, id uuid.UUID, role auth.Role, status auth.Status) string {
	t.Helper()
	tok, err := auth.GenerateJWT(id.String(), role, status, time.Hour)
	require.NoError(t, err)
	return "Bearer " + tok
}

func call(h http.Handler, method, target, authz, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if authz != "" {
		req.Header.Set("Authorization", authz)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestRouter_Access(t *testing.T) {
	h, store := newServer(t)
	subject := store.AddSubject("anatomy")
	store.AddQuestions(subject.ID, nil, 3, true)
	body := `{"mode":"RANDOM_30","subjectId":"` + subject.ID.String() + `"}`

	approved := bearer(t, uuid.New(), auth.RoleStudent, auth.StatusApproved)
	pending := bearer(t, uuid.New(), auth.RoleStudent, auth.StatusPending)
	admin := bearer(t, uuid.New(), auth.RoleAdmin, auth.StatusPending)

	assert.Equal(t, http.StatusOK, call(h, http.MethodGet, "/health", "", "").Code)
	assert.Equal(t, http.StatusUnauthorized, call(h, http.MethodPost, "/quiz/start", "", body).Code)
	assert.Equal(t, http.StatusForbidden, call(h, http.MethodPost, "/quiz/start", pending, body).Code)
	assert.Equal(t, http.StatusCreated, call(h, http.MethodPost, "/quiz/start", admin, body).Code)

	assert.Equal(t, http.StatusForbidden, call(h, http.MethodGet, "/admin/quiz/questions", approved, "").Code)
	assert.Equal(t, http.StatusOK, call(h, http.MethodGet, "/admin/quiz/questions", admin, "").Code)
	assert.Equal(t, http.StatusOK, call(h, http.MethodGet, "/subjects", approved, "").Code)

	assert.Equal(t, http.StatusUnauthorized, call(h, http.MethodGet, "/admin/cleanup-old-attempts", approved, "").Code)
	assert.Equal(t, http.StatusOK, call(h, http.MethodGet, "/admin/cleanup-old-attempts", "Bearer cron", "").Code)
	assert.Equal(t, http.StatusOK, call(h, http.MethodPost, "/admin/apply-cleanup-migration?token=migrate", "", "").Code)
}

func TestRouter_RateLimitsStart(t *testing.T) {
	h, store := newServer(t)
	subject := store.AddSubject("anatomy")
	store.AddQuestions(subject.ID, nil, 3, true)
	body := `{"mode":"RANDOM_30","subjectId":"` + subject.ID.String() + `"}`
	student := bearer(t, uuid.New(), auth.RoleStudent, auth.StatusApproved)

	assert.Equal(t, http.StatusCreated, call(h, http.MethodPost, "/quiz/start", student, body).Code)
	assert.Equal(t, http.StatusCreated, call(h, http.MethodPost, "/quiz/start", student, body).Code)
	rec := call(h, http.MethodPost, "/quiz/start", student, body)
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, 2, store.CountAttempts())

	assert.Equal(t, http.StatusOK, call(h, http.MethodGet, "/quiz/my-results", student, "").Code)
}

func TestRouter_CurrentUser(t *testing.T) {
	h, store := newServer(t)
	u := store.AddUser(user.User{Email: "student@sechenov.plus", Name: "Student", Role: auth.RoleStudent, Status: auth.StatusApproved})

	rec := call(h, http.MethodGet, "/users/me", bearer(t, u.ID, auth.RoleStudent, auth.StatusApproved), "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "student@sechenov.plus")

	rec = call(h, http.MethodGet, "/users/me", bearer(t, uuid.New(), auth.RoleStudent, auth.StatusApproved), "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
