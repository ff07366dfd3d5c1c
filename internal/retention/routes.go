package retention

import (
	"github.com/go-chi/chi/v5"

	"github.com/sechenov-plus/quiz-lambda/internal/auth"
)

// Routes mounts the cleanup triggers. Each has its own shared secret.
func Routes(h *Handler, migrationToken, cronSecret string) chi.Router {
	r := chi.NewRouter()

	r.With(auth.QueryTokenGuard(migrationToken)).Post("/apply-cleanup-migration", h.ApplyCleanupMigration)
	r.With(auth.BearerSecretGuard(cronSecret)).Get("/cleanup-old-attempts", h.CleanupOldAttempts)
	return r
}
