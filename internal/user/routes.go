package user

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// Routes serves the caller's own profile. The router applies AuthMiddleware.
func Routes(h *Handler) http.Handler {
	r := chi.NewRouter()

	r.Get("/me", h.GetUser)
	return r
}
