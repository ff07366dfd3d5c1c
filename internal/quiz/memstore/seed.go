package memstore

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/sechenov-plus/quiz-lambda/internal/quiz"
	"github.com/sechenov-plus/quiz-lambda/internal/user"
)

func (s *Store) AddUser(u user.User) user.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	s.data.users[u.ID] = u
	return u
}

func (s *Store) AddSubject(name string) quiz.Subject {
	s.mu.Lock()
	defer s.mu.Unlock()
	sub := quiz.Subject{ID: uuid.New(), Name: name, Slug: name, CreatedAt: s.now()}
	s.data.subjects[sub.ID] = sub
	return sub
}

func (s *Store) AddBlock(subjectID uuid.UUID, title string, active bool) quiz.QuizBlock {
	b := quiz.QuizBlock{ID: uuid.New(), SubjectID: subjectID, Title: title, IsActive: active}
	_ = s.Repository().CreateBlock(context.Background(), &b)
	return b
}

// AddQuestions seeds n questions with correct answer "A". A nil blockID
// leaves them unlinked.
func (s *Store) AddQuestions(subjectID uuid.UUID, blockID *uuid.UUID, n int, active bool) []quiz.QuizQuestion {
	out := make([]quiz.QuizQuestion, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, s.AddQuestion(quiz.QuizQuestion{
			SubjectID:     subjectID,
			BlockID:       blockID,
			OrderIndex:    i,
			QuestionText:  fmt.Sprintf("Question %d", i+1),
			OptionA:       "first",
			OptionB:       "second",
			CorrectAnswer: "A",
			Difficulty:    quiz.DifficultyMedium,
			IsActive:      active,
		}))
	}
	return out
}

func (s *Store) AddQuestion(q quiz.QuizQuestion) quiz.QuizQuestion {
	_ = s.Repository().CreateQuestion(context.Background(), &q)
	return q
}

// AddAttempt stores an attempt with placeholder answers for the given
// questions, bypassing the service.
func (s *Store) AddAttempt(a quiz.QuizAttempt, questionIDs []uuid.UUID) quiz.QuizAttempt {
	answers := make([]quiz.QuizAnswer, len(questionIDs))
	for i, id := range questionIDs {
		answers[i] = quiz.QuizAnswer{QuestionID: id, Position: i}
	}
	a.TotalQuestions = len(questionIDs)
	_ = s.Repository().CreateAttempt(context.Background(), &a, answers)
	return a
}

func (s *Store) Attempt(id uuid.UUID) (quiz.QuizAttempt, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.data.attempts[id]
	return a, ok
}

func (s *Store) Answers(attemptID uuid.UUID) []quiz.QuizAnswer {
	s.mu.Lock()
	defer s.mu.Unlock()
	return (&repo{s: s, inTx: true}).attemptAnswers(attemptID)
}

func (s *Store) Question(id uuid.UUID) quiz.QuizQuestion {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.data.questions[id]
}

func (s *Store) Block(id uuid.UUID) quiz.QuizBlock {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.data.blocks[id]
}

func (s *Store) CountAttempts() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.data.attempts)
}

func (s *Store) CountAnswers() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.data.answers)
}

// SetClock replaces the store clock used for created/updated timestamps.
func (s *Store) SetClock(now func() time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.now = now
}
