package container_test

import (
	"context"
	"testing"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sechenov-plus/quiz-lambda/internal/container"
	"github.com/sechenov-plus/quiz-lambda/internal/retention"
)

func TestNew_InMemory(t *testing.T) {
	t.Setenv("JWT_SECRET", "container-test-secret")
	t.Setenv("DATABASE_DSN", "")
	t.Setenv("REDIS_URL", "")
	t.Setenv("RABBITMQ_URI", "")
	t.Setenv("RETENTION_DAYS", "5")

	c, err := container.New(context.Background())
	require.NoError(t, err)

	cfg := c.RouterConfig()
	assert.NotNil(t, cfg.QuizHandler)
	assert.NotNil(t, cfg.RetentionHandler)
	assert.Same(t, c.Limiter, cfg.Limiter)

	report, err := c.RetentionContainer.Service.Run(context.Background(), retention.TriggerCron)
	require.NoError(t, err)
	assert.Equal(t, 5, report.RetentionDays)

	assert.NoError(t, c.Close())
}

func TestClose_ClosesLimiter(t *testing.T) {
	t.Setenv("JWT_SECRET", "container-test-secret")
	t.Setenv("DATABASE_DSN", "")
	t.Setenv("RABBITMQ_URI", "")
	// Never dialled: the client connects lazily.
	t.Setenv("REDIS_URL", "redis://127.0.0.1:6390/0")

	c, err := container.New(context.Background())
	require.NoError(t, err)

	require.NoError(t, c.Close())
	assert.ErrorIs(t, c.Limiter.Close(), redis.ErrClosed)
}
