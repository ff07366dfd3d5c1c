package quiz

import "github.com/sechenov-plus/quiz-lambda/internal/event"

type QuizContainer struct {
	Repo         QuizRepository
	Service      QuizService
	Handler      *Handler
	AdminHandler *AdminHandler
}

func NewQuizContainer(repo QuizRepository, publisher event.Publisher, cfg ServiceConfig) *QuizContainer {
	service := NewService(repo, publisher, cfg)

	return &QuizContainer{
		Repo:         repo,
		Service:      service,
		Handler:      NewHandler(service),
		AdminHandler: NewAdminHandler(NewAdminService(repo)),
	}
}
