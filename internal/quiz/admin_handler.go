package quiz

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/sechenov-plus/quiz-lambda/internal/config"
)

type AdminHandler struct {
	service AdminService
}

func NewAdminHandler(s AdminService) *AdminHandler {
	return &AdminHandler{service: s}
}

func (h *AdminHandler) ListSubjects(w http.ResponseWriter, r *http.Request) {
	subjects, err := h.service.ListSubjects(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	config.JSON(w, http.StatusOK, subjects)
}

// ListActiveBlocks is the student-facing block catalogue.
func (h *AdminHandler) ListActiveBlocks(w http.ResponseWriter, r *http.Request) {
	blocks, err := h.service.ListBlocks(r.Context(), r.URL.Query().Get("subjectId"), true)
	if err != nil {
		writeError(w, err)
		return
	}
	config.JSON(w, http.StatusOK, blocks)
}

func (h *AdminHandler) ListBlocks(w http.ResponseWriter, r *http.Request) {
	blocks, err := h.service.ListBlocks(r.Context(), r.URL.Query().Get("subjectId"), false)
	if err != nil {
		writeError(w, err)
		return
	}
	config.JSON(w, http.StatusOK, blocks)
}

func decodeInput(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		config.WithContext(r.Context()).WithError(err).Warn("Invalid request body")
		config.Error(w, http.StatusBadRequest, "invalid request body")
		return false
	}
	if err := config.Validate.Struct(dst); err != nil {
		config.ValidationError(w, err)
		return false
	}
	return true
}

func (h *AdminHandler) CreateBlock(w http.ResponseWriter, r *http.Request) {
	var in BlockInput
	if !decodeInput(w, r, &in) {
		return
	}
	b, err := h.service.CreateBlock(r.Context(), in)
	if err != nil {
		writeError(w, err)
		return
	}
	config.JSON(w, http.StatusCreated, b)
}

func (h *AdminHandler) UpdateBlock(w http.ResponseWriter, r *http.Request) {
	var in BlockInput
	if !decodeInput(w, r, &in) {
		return
	}
	b, err := h.service.UpdateBlock(r.Context(), chi.URLParam(r, "id"), in)
	if err != nil {
		writeError(w, err)
		return
	}
	config.JSON(w, http.StatusOK, b)
}

func (h *AdminHandler) ListQuestions(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	questions, err := h.service.ListQuestions(r.Context(), q.Get("subjectId"), q.Get("blockId"))
	if err != nil {
		writeError(w, err)
		return
	}
	config.JSON(w, http.StatusOK, questions)
}

func (h *AdminHandler) CreateQuestion(w http.ResponseWriter, r *http.Request) {
	var in QuestionInput
	if !decodeInput(w, r, &in) {
		return
	}
	q, err := h.service.CreateQuestion(r.Context(), in)
	if err != nil {
		writeError(w, err)
		return
	}
	config.JSON(w, http.StatusCreated, q)
}

func (h *AdminHandler) UpdateQuestion(w http.ResponseWriter, r *http.Request) {
	var in QuestionInput
	if !decodeInput(w, r, &in) {
		return
	}
	q, err := h.service.UpdateQuestion(r.Context(), chi.URLParam(r, "id"), in)
	if err != nil {
		writeError(w, err)
		return
	}
	config.JSON(w, http.StatusOK, q)
}

func (h *AdminHandler) DeleteQuestion(w http.ResponseWriter, r *http.Request) {
	if err := h.service.DeactivateQuestion(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
