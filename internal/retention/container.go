package retention

import (
	"time"

	"github.com/sechenov-plus/quiz-lambda/internal/event"
)

type RetentionContainer struct {
	Service Service
	Handler *Handler
}

func NewRetentionContainer(purger Purger, window time.Duration, publisher event.Publisher) *RetentionContainer {
	service := NewService(purger, window, publisher, time.Now)

	return &RetentionContainer{
		Service: service,
		Handler: NewHandler(service),
	}
}
