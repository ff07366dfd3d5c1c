package quiz

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/sechenov-plus/quiz-lambda/internal/config"
)

type Handler struct {
	service QuizService
}

func NewHandler(s QuizService) *Handler {
	return &Handler{service: s}
}

// statusFor maps service errors to HTTP status codes. Anything unknown is a
// 500 with a generic message.
func statusFor(err error) (int, string) {
	switch {
	case errors.Is(err, ErrUnauthorized):
		return http.StatusUnauthorized, "unauthorized"
	case errors.Is(err, ErrForbidden):
		return http.StatusForbidden, "forbidden"
	case errors.Is(err, ErrAttemptNotFound),
		errors.Is(err, ErrBlockNotFound),
		errors.Is(err, ErrSubjectNotFound),
		errors.Is(err, ErrQuestionNotFound):
		return http.StatusNotFound, err.Error()
	case errors.Is(err, ErrInvalidID),
		errors.Is(err, ErrInvalidMode),
		errors.Is(err, ErrSubjectRequired),
		errors.Is(err, ErrBlockRequired),
		errors.Is(err, ErrBlockInactive),
		errors.Is(err, ErrNoQuestions),
		errors.Is(err, ErrAttemptCompleted),
		errors.Is(err, ErrInvalidAnswers),
		errors.Is(err, ErrDuplicateAnswer),
		errors.Is(err, ErrInvalidCorrectKey),
		errors.Is(err, ErrBlockSubjectMismatch):
		return http.StatusBadRequest, err.Error()
	case errors.Is(err, ErrSubmissionFailed):
		return http.StatusInternalServerError, ErrSubmissionFailed.Error()
	}
	return http.StatusInternalServerError, "internal server error"
}

func writeError(w http.ResponseWriter, err error) {
	status, msg := statusFor(err)
	config.Error(w, status, msg)
}

func (h *Handler) StartAttempt(w http.ResponseWriter, r *http.Request) {
	log := config.WithContext(r.Context())

	var req StartAttemptRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.WithError(err).Warn("Invalid request body to start quiz")
		config.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := config.Validate.Struct(req); err != nil {
		config.ValidationError(w, err)
		return
	}

	resp, err := h.service.StartAttempt(r.Context(), req)
	if err != nil {
		writeError(w, err)
		return
	}

	config.JSON(w, http.StatusCreated, resp)
}

func (h *Handler) GetTakeView(w http.ResponseWriter, r *http.Request) {
	attemptID := r.URL.Query().Get("attemptId")
	if attemptID == "" {
		config.Error(w, http.StatusBadRequest, "attemptId is required")
		return
	}

	resp, err := h.service.GetTakeView(r.Context(), attemptID)
	if err != nil {
		writeError(w, err)
		return
	}

	config.JSON(w, http.StatusOK, resp)
}

func (h *Handler) SubmitAttempt(w http.ResponseWriter, r *http.Request) {
	log := config.WithContext(r.Context())

	var req SubmitAttemptRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.WithError(err).Warn("Invalid request body to submit quiz")
		config.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := config.Validate.Struct(req); err != nil {
		config.ValidationError(w, err)
		return
	}

	resp, err := h.service.SubmitAttempt(r.Context(), req)
	if err != nil {
		writeError(w, err)
		return
	}

	config.JSON(w, http.StatusOK, resp)
}

func (h *Handler) GetAttempt(w http.ResponseWriter, r *http.Request) {
	attemptID := r.URL.Query().Get("attemptId")
	if attemptID == "" {
		config.Error(w, http.StatusBadRequest, "attemptId is required")
		return
	}

	resp, err := h.service.GetAttempt(r.Context(), attemptID)
	if err != nil {
		writeError(w, err)
		return
	}

	config.JSON(w, http.StatusOK, resp)
}

func queryInt(r *http.Request, key string) int {
	v, err := strconv.Atoi(r.URL.Query().Get(key))
	if err != nil {
		return 0
	}
	return v
}

func (h *Handler) ListMyResults(w http.ResponseWriter, r *http.Request) {
	resp, err := h.service.ListMyResults(r.Context(), queryInt(r, "page"), queryInt(r, "limit"))
	if err != nil {
		writeError(w, err)
		return
	}

	config.JSON(w, http.StatusOK, resp)
}
