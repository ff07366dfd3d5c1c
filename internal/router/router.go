package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	httpSwagger "github.com/swaggo/http-swagger"

	_ "github.com/sechenov-plus/quiz-lambda/docs"
	"github.com/sechenov-plus/quiz-lambda/internal/auth"
	"github.com/sechenov-plus/quiz-lambda/internal/config"
	"github.com/sechenov-plus/quiz-lambda/internal/middlewares"
	"github.com/sechenov-plus/quiz-lambda/internal/quiz"
	"github.com/sechenov-plus/quiz-lambda/internal/ratelimit"
	"github.com/sechenov-plus/quiz-lambda/internal/retention"
	"github.com/sechenov-plus/quiz-lambda/internal/user"
)

type RouterConfig struct {
	UserHandler      *user.Handler
	AuthHandler      *auth.Handler
	QuizHandler      *quiz.Handler
	QuizAdminHandler *quiz.AdminHandler
	RetentionHandler *retention.Handler
	Limiter          *ratelimit.Limiter
	AllowedOrigins   string
	MigrationToken   string
	CronSecret       string
}

func New(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middlewares.CorsMiddleware(cfg.AllowedOrigins))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		config.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Get("/swagger/*", httpSwagger.WrapHandler)

	r.Post("/auth/logout", cfg.AuthHandler.Logout)
	r.Mount("/admin", retention.Routes(cfg.RetentionHandler, cfg.MigrationToken, cfg.CronSecret))

	var limit func(http.Handler) http.Handler
	if cfg.Limiter != nil {
		limit = cfg.Limiter.Handler
	}

	r.Group(func(r chi.Router) {
		r.Use(auth.AuthMiddleware)

		r.Mount("/users", user.Routes(cfg.UserHandler))
		r.Get("/subjects", cfg.QuizAdminHandler.ListSubjects)

		r.With(auth.RequireApproved).Mount("/quiz", quiz.Routes(cfg.QuizHandler, cfg.QuizAdminHandler, limit))
		r.With(auth.RequireAdmin).Mount("/admin/quiz", quiz.AdminRoutes(cfg.QuizAdminHandler))
	})
	return r
}
