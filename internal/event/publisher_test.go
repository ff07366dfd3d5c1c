package event_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sechenov-plus/quiz-lambda/internal/event"
)

func TestNewPublisherWithoutURIIsNop(t *testing.T) {
	p, err := event.NewPublisher("")
	require.NoError(t, err)

	_, ok := p.(event.NopPublisher)
	assert.True(t, ok)
	assert.NoError(t, p.Publish(context.Background(), event.AttemptCompletedKey, struct{}{}))
	assert.NoError(t, p.Close())
}

func TestRecorder(t *testing.T) {
	rec := &event.Recorder{}
	require.NoError(t, rec.Publish(context.Background(), event.RetentionCompletedKey, event.RetentionCompleted{DeletedAttempts: 2}))

	events := rec.Events()
	require.Len(t, events, 1)
	assert.Equal(t, event.RetentionCompletedKey, events[0].RoutingKey)
	assert.Equal(t, int64(2), events[0].Payload.(event.RetentionCompleted).DeletedAttempts)

	rec.Err = errors.New("broker down")
	assert.Error(t, rec.Publish(context.Background(), event.RetentionCompletedKey, nil))
	assert.Len(t, rec.Events(), 1)
}
