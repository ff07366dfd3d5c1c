package memstore_test

import (
	"context"
	"math"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sechenov-plus/quiz-lambda/internal/quiz"
	"github.com/sechenov-plus/quiz-lambda/internal/quiz/memstore"
)

func TestListCompletedAttempts_OutOfRangeOffsets(t *testing.T) {
	store := memstore.New()
	subject := store.AddSubject("anatomy")
	qs := store.AddQuestions(subject.ID, nil, 1, true)
	userID := uuid.New()
	done := time.Now()
	for i := 0; i < 2; i++ {
		store.AddAttempt(quiz.QuizAttempt{UserID: userID, Mode: quiz.ModeRandom30, StartedAt: done, CompletedAt: &done, IsCompleted: true}, []uuid.UUID{qs[0].ID})
	}
	repo := store.Repository()

	negative, total, err := repo.ListCompletedAttempts(context.Background(), userID, -40, 20)
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	assert.Len(t, negative, 2)

	wrapped, _, err := repo.ListCompletedAttempts(context.Background(), userID, 1, math.MaxInt)
	require.NoError(t, err)
	assert.Len(t, wrapped, 1)
}
