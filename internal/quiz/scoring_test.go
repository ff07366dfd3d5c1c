package quiz_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/sechenov-plus/quiz-lambda/internal/quiz"
)

func strPtr(s string) *string { return &s }

func TestNormalizeAnswer(t *testing.T) {
	cases := map[string]string{
		"A":        "A",
		"b":        "B",
		"B,A":      "A,B",
		" c , a,b": "A,B,C",
		"A,,B,":    "A,B",
		"":         "",
		" , ":      "",
	}
	for in, want := range cases {
		assert.Equal(t, want, quiz.NormalizeAnswer(in), "input %q", in)
	}
}

func TestIsCorrectAnswer(t *testing.T) {
	assert.True(t, quiz.IsCorrectAnswer("B,A", "A,B"))
	assert.True(t, quiz.IsCorrectAnswer("c", "C"))
	assert.False(t, quiz.IsCorrectAnswer("A", "A,B"))
	assert.False(t, quiz.IsCorrectAnswer("A,B,C", "A,B"))
	assert.False(t, quiz.IsCorrectAnswer("", ""))
}

func TestScorePercent(t *testing.T) {
	assert.Equal(t, 0.0, quiz.ScorePercent(0, 0))
	assert.Equal(t, 100.0, quiz.ScorePercent(30, 30))
	assert.Equal(t, 67.0, quiz.ScorePercent(2, 3))
	assert.Equal(t, 33.0, quiz.ScorePercent(1, 3))
	assert.Equal(t, 50.0, quiz.ScorePercent(15, 30))
}

func TestTally(t *testing.T) {
	var tally quiz.Tally

	assert.True(t, tally.Add(strPtr("B,A"), "A,B"))
	assert.False(t, tally.Add(strPtr("C"), "A"))
	assert.False(t, tally.Add(nil, "A"))
	assert.False(t, tally.Add(strPtr("  "), "A"))

	assert.Equal(t, 1, tally.Correct)
	assert.Equal(t, 1, tally.Wrong)
	assert.Equal(t, 2, tally.Skipped, "empty answers are skipped, not wrong")
	assert.Equal(t, 4, tally.Total())
}

func TestIsMultipleChoice(t *testing.T) {
	assert.False(t, quiz.IsMultipleChoice("A"))
	assert.True(t, quiz.IsMultipleChoice("B, D"))
}
