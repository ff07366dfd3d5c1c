package quiz_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sechenov-plus/quiz-lambda/internal/auth"
	"github.com/sechenov-plus/quiz-lambda/internal/quiz"
	"github.com/sechenov-plus/quiz-lambda/internal/quiz/memstore"
)

type routes struct {
	store  *memstore.Store
	router http.Handler
}

func newRoutes(t *testing.T) *routes {
	t.Helper()
	store := memstore.New()
	c := quiz.NewQuizContainer(store.Repository(), nil, quiz.ServiceConfig{
		ResumeRetries:    2,
		ResumeRetryDelay: time.Millisecond,
		Shuffle:          noShuffle,
	})

	r := chi.NewRouter()
	r.Mount("/quiz", quiz.Routes(c.Handler, c.AdminHandler, nil))
	r.Mount("/admin/quiz", quiz.AdminRoutes(c.AdminHandler))
	return &routes{store: store, router: r}
}

func (rt *routes) do(ctx context.Context, method, target string, body interface{}) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	switch b := body.(type) {
	case nil:
	case string:
		buf.WriteString(b)
	default:
		_ = json.NewEncoder(&buf).Encode(b)
	}
	req := httptest.NewRequest(method, target, &buf).WithContext(ctx)
	rec := httptest.NewRecorder()
	rt.router.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder, dst interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), dst))
}

func TestHandler_StartSubmitAndReview(t *testing.T) {
	rt := newRoutes(t)
	subject := rt.store.AddSubject("physiology")
	qs := rt.store.AddQuestions(subject.ID, nil, 2, true)
	student := asUser(uuid.New(), auth.RoleStudent)

	rec := rt.do(student, http.MethodPost, "/quiz/start", map[string]string{
		"mode":      "RANDOM_30",
		"subjectId": subject.ID.String(),
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var started quiz.StartAttemptResponse
	decode(t, rec, &started)
	assert.Equal(t, 2, started.TotalQuestions)
	assert.NotContains(t, rec.Body.String(), "correctAnswer")

	rec = rt.do(student, http.MethodGet, "/quiz/take?attemptId="+started.AttemptID.String(), nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = rt.do(student, http.MethodPost, "/quiz/submit", map[string]interface{}{
		"attemptId": started.AttemptID,
		"answers": []map[string]interface{}{
			{"questionId": qs[0].ID, "userAnswer": "A", "timeSpent": 12},
			{"questionId": qs[1].ID, "userAnswer": nil, "timeSpent": 3},
		},
		"timeSpent": 40,
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var result quiz.AttemptView
	decode(t, rec, &result)
	assert.Equal(t, float64(50), result.Score)
	assert.Equal(t, 1, result.SkippedAnswers)

	rec = rt.do(student, http.MethodPost, "/quiz/submit", map[string]interface{}{
		"attemptId": started.AttemptID,
		"answers":   []interface{}{},
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.JSONEq(t, `{"error":"attempt already completed"}`, rec.Body.String())

	rec = rt.do(student, http.MethodGet, "/quiz/attempt?attemptId="+started.AttemptID.String(), nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"correctAnswer":"A"`)

	rec = rt.do(student, http.MethodGet, "/quiz/my-results?page=1&limit=5", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var page quiz.ResultsPage
	decode(t, rec, &page)
	assert.Equal(t, int64(1), page.Total)
	assert.Equal(t, 5, page.Limit)
}

func TestHandler_ErrorStatuses(t *testing.T) {
	rt := newRoutes(t)
	subject := rt.store.AddSubject("histology")
	qs := rt.store.AddQuestions(subject.ID, nil, 1, true)
	owner := uuid.New()
	a := rt.store.AddAttempt(quiz.QuizAttempt{UserID: owner, Mode: quiz.ModeRandom30, StartedAt: time.Now()}, []uuid.UUID{qs[0].ID})
	inactive := rt.store.AddBlock(subject.ID, "hidden", false)
	student := asUser(uuid.New(), auth.RoleStudent)

	cases := []struct {
		name   string
		ctx    context.Context
		method string
		target string
		body   interface{}
		status int
	}{
		{"malformed body", student, http.MethodPost, "/quiz/start", "{", http.StatusBadRequest},
		{"unknown mode rejected by validator", student, http.MethodPost, "/quiz/start", map[string]string{"mode": "DAILY"}, http.StatusBadRequest},
		{"missing block id", student, http.MethodPost, "/quiz/start", map[string]string{"mode": "BLOCK"}, http.StatusBadRequest},
		{"unknown block", student, http.MethodPost, "/quiz/start", map[string]string{"mode": "BLOCK", "blockId": uuid.NewString()}, http.StatusNotFound},
		{"inactive block", student, http.MethodPost, "/quiz/start", map[string]string{"mode": "BLOCK", "blockId": inactive.ID.String()}, http.StatusBadRequest},
		{"no claims", context.Background(), http.MethodPost, "/quiz/start", map[string]string{"mode": "RANDOM_30", "subjectId": subject.ID.String()}, http.StatusUnauthorized},
		{"take without id", student, http.MethodGet, "/quiz/take", nil, http.StatusBadRequest},
		{"take of missing attempt", student, http.MethodGet, "/quiz/take?attemptId=" + uuid.NewString(), nil, http.StatusNotFound},
		{"take of foreign attempt", student, http.MethodGet, "/quiz/take?attemptId=" + a.ID.String(), nil, http.StatusForbidden},
		{"attempt with bad id", student, http.MethodGet, "/quiz/attempt?attemptId=xyz", nil, http.StatusBadRequest},
		{"submit foreign attempt", student, http.MethodPost, "/quiz/submit", map[string]interface{}{"attemptId": a.ID, "answers": []interface{}{}}, http.StatusForbidden},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := rt.do(tc.ctx, tc.method, tc.target, tc.body)
			assert.Equal(t, tc.status, rec.Code, rec.Body.String())
			assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
		})
	}
	assert.Equal(t, 1, rt.store.CountAttempts())
}

func TestHandler_ValidationErrorListsFields(t *testing.T) {
	rt := newRoutes(t)
	rec := rt.do(asUser(uuid.New(), auth.RoleStudent), http.MethodPost, "/quiz/submit", map[string]interface{}{
		"attemptId": "not-a-uuid",
		"answers":   []map[string]interface{}{{"questionId": "", "timeSpent": -1}},
	})
	require.Equal(t, http.StatusBadRequest, rec.Code)

	var body struct {
		Error  string            `json:"error"`
		Fields map[string]string `json:"fields"`
	}
	decode(t, rec, &body)
	assert.Equal(t, "validation failed", body.Error)
	assert.Equal(t, "uuid", body.Fields["attemptId"])
	assert.Equal(t, "required", body.Fields["answers[0].questionId"])
	assert.Equal(t, "gte", body.Fields["answers[0].timeSpent"])
}

func TestAdminHandler_QuestionBank(t *testing.T) {
	rt := newRoutes(t)
	subject := rt.store.AddSubject("biochem")
	admin := asUser(uuid.New(), auth.RoleAdmin)

	rec := rt.do(admin, http.MethodPost, "/admin/quiz/blocks", map[string]interface{}{
		"subjectId": subject.ID,
		"title":     "Enzymes",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var block quiz.QuizBlock
	decode(t, rec, &block)
	assert.True(t, block.IsActive)

	question := map[string]interface{}{
		"subjectId":     subject.ID,
		"blockId":       block.ID,
		"questionText":  "Which enzymes are proteases?",
		"optionA":       "trypsin",
		"optionB":       "amylase",
		"optionC":       "pepsin",
		"correctAnswer": "c,a",
		"difficulty":    "HARD",
	}
	rec = rt.do(admin, http.MethodPost, "/admin/quiz/questions", question)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var created quiz.QuizQuestion
	decode(t, rec, &created)
	assert.Equal(t, "A,C", created.CorrectAnswer)
	assert.True(t, created.IsActive)

	question["correctAnswer"] = "D"
	rec = rt.do(admin, http.MethodPost, "/admin/quiz/questions", question)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	question["correctAnswer"] = "A"
	rec = rt.do(admin, http.MethodPut, "/admin/quiz/questions/"+created.ID.String(), question)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "A", rt.store.Question(created.ID).CorrectAnswer)

	rec = rt.do(admin, http.MethodGet, "/admin/quiz/questions?blockId="+block.ID.String(), nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var listed []quiz.QuizQuestion
	decode(t, rec, &listed)
	assert.Len(t, listed, 1)

	rec = rt.do(admin, http.MethodDelete, "/admin/quiz/questions/"+created.ID.String(), nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.False(t, rt.store.Question(created.ID).IsActive)

	rec = rt.do(admin, http.MethodDelete, "/admin/quiz/questions/"+uuid.NewString(), nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = rt.do(admin, http.MethodPut, "/admin/quiz/blocks/"+block.ID.String(), map[string]interface{}{
		"subjectId": subject.ID,
		"title":     "Enzymes II",
		"isActive":  false,
	})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.False(t, rt.store.Block(block.ID).IsActive)

	rec = rt.do(admin, http.MethodGet, "/quiz/blocks?subjectId="+subject.ID.String(), nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var active []quiz.QuizBlock
	decode(t, rec, &active)
	assert.Empty(t, active)
}

func TestAdminHandler_BlockFromAnotherSubject(t *testing.T) {
	rt := newRoutes(t)
	s1 := rt.store.AddSubject("one")
	s2 := rt.store.AddSubject("two")
	b := rt.store.AddBlock(s2.ID, "elsewhere", true)

	rec := rt.do(asUser(uuid.New(), auth.RoleAdmin), http.MethodPost, "/admin/quiz/questions", map[string]interface{}{
		"subjectId":     s1.ID,
		"blockId":       b.ID,
		"questionText":  "?",
		"optionA":       "x",
		"optionB":       "y",
		"correctAnswer": "A",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.JSONEq(t, `{"error":"block belongs to another subject"}`, rec.Body.String())
}
