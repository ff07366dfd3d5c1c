package container

import (
	"context"
	"errors"
	"fmt"

	"github.com/sechenov-plus/quiz-lambda/internal/auth"
	"github.com/sechenov-plus/quiz-lambda/internal/config"
	"github.com/sechenov-plus/quiz-lambda/internal/event"
	"github.com/sechenov-plus/quiz-lambda/internal/quiz"
	"github.com/sechenov-plus/quiz-lambda/internal/quiz/memstore"
	"github.com/sechenov-plus/quiz-lambda/internal/ratelimit"
	"github.com/sechenov-plus/quiz-lambda/internal/retention"
	"github.com/sechenov-plus/quiz-lambda/internal/router"
	"github.com/sechenov-plus/quiz-lambda/internal/user"
)

type Container struct {
	Settings           config.Settings
	UserContainer      *user.UserContainer
	QuizContainer      *quiz.QuizContainer
	RetentionContainer *retention.RetentionContainer
	AuthHandler        *auth.Handler
	Publisher          event.Publisher
	Limiter            *ratelimit.Limiter
}

// New wires every dependency from the environment. Without DATABASE_DSN it
// falls back to the in-memory store.
func New(ctx context.Context) (*Container, error) {
	config.Init()
	s := config.LoadSettings()
	auth.InitWithSecret(s.JWTSecret)

	quizRepo, userRepo, err := repositories(ctx, s)
	if err != nil {
		return nil, err
	}

	publisher, err := event.NewPublisher(s.RabbitMQURI)
	if err != nil {
		config.WithContext(ctx).WithError(err).Warn("Event broker unavailable, events will be dropped")
		publisher = event.NopPublisher{}
	}

	limiter, err := ratelimit.New(ratelimit.Config{
		Requests: s.RateLimitRequests,
		Window:   s.RateLimitWindow,
		RedisURL: s.RedisURL,
	})
	if err != nil {
		return nil, err
	}

	return &Container{
		Settings:      s,
		UserContainer: user.NewUserContainer(userRepo),
		QuizContainer: quiz.NewQuizContainer(quizRepo, publisher, quiz.ServiceConfig{
			ResumeRetries:    s.ResumeRetries,
			ResumeRetryDelay: s.ResumeRetryDelay,
		}),
		RetentionContainer: retention.NewRetentionContainer(quizRepo, s.RetentionWindow(), publisher),
		AuthHandler:        auth.NewHandler(s.CookieDomain),
		Publisher:          publisher,
		Limiter:            limiter,
	}, nil
}

// NewRetention wires only what the scheduled cleanup needs.
func NewRetention(ctx context.Context) (*retention.RetentionContainer, event.Publisher, error) {
	config.Init()
	s := config.LoadSettings()

	quizRepo, _, err := repositories(ctx, s)
	if err != nil {
		return nil, nil, err
	}
	publisher, err := event.NewPublisher(s.RabbitMQURI)
	if err != nil {
		config.WithContext(ctx).WithError(err).Warn("Event broker unavailable, events will be dropped")
		publisher = event.NopPublisher{}
	}
	return retention.NewRetentionContainer(quizRepo, s.RetentionWindow(), publisher), publisher, nil
}

func repositories(ctx context.Context, s config.Settings) (quiz.QuizRepository, user.UserRepository, error) {
	if s.DatabaseDSN == "" {
		config.WithContext(ctx).Warn("DATABASE_DSN is empty, using in-memory store")
		store := memstore.New()
		return store.Repository(), store.Users(), nil
	}

	if err := config.Connect(ctx, s.DatabaseDSN); err != nil {
		return nil, nil, fmt.Errorf("failed to connect to DB: %w", err)
	}
	if s.AutoMigrate {
		models := append(quiz.Models(), &user.User{})
		if err := config.Migrate(config.DB, models...); err != nil {
			return nil, nil, fmt.Errorf("failed to migrate: %w", err)
		}
	}
	return quiz.NewRepository(config.DB), user.NewRepository(config.DB), nil
}

func (c *Container) RouterConfig() router.RouterConfig {
	return router.RouterConfig{
		UserHandler:      c.UserContainer.Handler,
		AuthHandler:      c.AuthHandler,
		QuizHandler:      c.QuizContainer.Handler,
		QuizAdminHandler: c.QuizContainer.AdminHandler,
		RetentionHandler: c.RetentionContainer.Handler,
		Limiter:          c.Limiter,
		AllowedOrigins:   c.Settings.AllowedOrigins,
		MigrationToken:   c.Settings.AdminMigrationToken,
		CronSecret:       c.Settings.CronSecret,
	}
}

func (c *Container) Close() error {
	return errors.Join(c.Publisher.Close(), c.Limiter.Close())
}
