package retention

import (
	"net/http"

	"github.com/sechenov-plus/quiz-lambda/internal/config"
)

type Handler struct {
	service Service
}

func NewHandler(s Service) *Handler {
	return &Handler{service: s}
}

type cleanupResponse struct {
	Success bool `json:"success"`
	*Report
}

func (h *Handler) run(w http.ResponseWriter, r *http.Request, trigger Trigger) {
	report, err := h.service.Run(r.Context(), trigger)
	if err != nil {
		config.Error(w, http.StatusInternalServerError, "cleanup failed")
		return
	}
	config.JSON(w, http.StatusOK, cleanupResponse{Success: true, Report: report})
}

// ApplyCleanupMigration clears the backlog of expired attempts. Running it
// again only removes what expired since.
func (h *Handler) ApplyCleanupMigration(w http.ResponseWriter, r *http.Request) {
	h.run(w, r, TriggerMigration)
}

func (h *Handler) CleanupOldAttempts(w http.ResponseWriter, r *http.Request) {
	h.run(w, r, TriggerCron)
}
