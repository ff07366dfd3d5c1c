package quiz

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// Routes mounts the student quiz endpoints. limit wraps the endpoints that
// create or mutate attempts; pass nil to skip rate limiting.
func Routes(h *Handler, catalogue *AdminHandler, limit func(http.Handler) http.Handler) http.Handler {
	r := chi.NewRouter()

	r.Group(func(r chi.Router) {
		if limit != nil {
			r.Use(limit)
		}
		r.Post("/start", h.StartAttempt)
		r.Post("/submit", h.SubmitAttempt)
	})

	r.Get("/take", h.GetTakeView)
	r.Get("/attempt", h.GetAttempt)
	r.Get("/my-results", h.ListMyResults)
	r.Get("/blocks", catalogue.ListActiveBlocks)
	return r
}

func AdminRoutes(h *AdminHandler) http.Handler {
	r := chi.NewRouter()

	r.Get("/blocks", h.ListBlocks)
	r.Post("/blocks", h.CreateBlock)
	r.Put("/blocks/{id}", h.UpdateBlock)

	r.Get("/questions", h.ListQuestions)
	r.Post("/questions", h.CreateQuestion)
	r.Put("/questions/{id}", h.UpdateQuestion)
	r.Delete("/questions/{id}", h.DeleteQuestion)
	return r
}
