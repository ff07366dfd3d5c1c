package quiz

import (
	"math"
	"sort"
	"strings"
)

// NormalizeAnswer turns "b, A" into "A,B": tokens are trimmed, upper-cased,
// sorted and rejoined. Empty tokens are dropped.
func NormalizeAnswer(raw string) string {
	parts := strings.Split(raw, ",")
	tokens := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.ToUpper(strings.TrimSpace(p))
		if p != "" {
			tokens = append(tokens, p)
		}
	}
	sort.Strings(tokens)
	return strings.Join(tokens, ",")
}

func IsSkipped(userAnswer *string) bool {
	return userAnswer == nil || NormalizeAnswer(*userAnswer) == ""
}

// IsCorrectAnswer compares order-independently, so "B,A" matches "A,B".
func IsCorrectAnswer(userAnswer, correctAnswer string) bool {
	u := NormalizeAnswer(userAnswer)
	return u != "" && u == NormalizeAnswer(correctAnswer)
}

func IsMultipleChoice(correctAnswer string) bool {
	return strings.Contains(NormalizeAnswer(correctAnswer), ",")
}

// ScorePercent is correct/total as a whole percentage.
func ScorePercent(correct, total int) float64 {
	if total <= 0 {
		return 0
	}
	return math.Round(float64(correct) / float64(total) * 100)
}

type Tally struct {
	Correct int
	Wrong   int
	Skipped int
}

func (t Tally) Total() int {
	return t.Correct + t.Wrong + t.Skipped
}

func (t *Tally) Add(userAnswer *string, correctAnswer string) (correct bool) {
	switch {
	case IsSkipped(userAnswer):
		t.Skipped++
		return false
	case IsCorrectAnswer(*userAnswer, correctAnswer):
		t.Correct++
		return true
	default:
		t.Wrong++
		return false
	}
}
