package quiz

import (
	"time"

	"github.com/google/uuid"
)

type StartAttemptRequest struct {
	Mode      Mode   `json:"mode" validate:"required,oneof=RANDOM_30 BLOCK"`
	BlockID   string `json:"blockId,omitempty" validate:"omitempty,uuid"`
	SubjectID string `json:"subjectId,omitempty" validate:"omitempty,uuid"`
}

type SubmittedAnswer struct {
	QuestionID string  `json:"questionId" validate:"required,uuid"`
	UserAnswer *string `json:"userAnswer"`
	TimeSpent  int     `json:"timeSpent" validate:"gte=0"`
}

type SubmitAttemptRequest struct {
	AttemptID string            `json:"attemptId" validate:"required,uuid"`
	Answers   []SubmittedAnswer `json:"answers" validate:"dive"`
	TimeSpent int               `json:"timeSpent" validate:"gte=0"`
}

type Option struct {
	Key  string `json:"key"`
	Text string `json:"text"`
}

// QuestionView is what students see. CorrectAnswer and Explanation are only
// filled in once the attempt is completed.
type QuestionView struct {
	ID             uuid.UUID  `json:"id"`
	Position       int        `json:"position"`
	QuestionText   string     `json:"questionText"`
	QuestionImage  *string    `json:"questionImage,omitempty"`
	Options        []Option   `json:"options"`
	Difficulty     Difficulty `json:"difficulty"`
	MultipleChoice bool       `json:"multipleChoice"`
	CorrectAnswer  *string    `json:"correctAnswer,omitempty"`
	Explanation    *string    `json:"explanation,omitempty"`
}

type StartAttemptResponse struct {
	AttemptID      uuid.UUID      `json:"attemptId"`
	Mode           Mode           `json:"mode"`
	TotalQuestions int            `json:"totalQuestions"`
	StartedAt      time.Time      `json:"startedAt"`
	Questions      []QuestionView `json:"questions"`
}

type TakeViewResponse struct {
	AttemptID      uuid.UUID      `json:"attemptId"`
	Mode           Mode           `json:"mode"`
	SubjectID      *uuid.UUID     `json:"subjectId,omitempty"`
	BlockID        *uuid.UUID     `json:"blockId,omitempty"`
	TotalQuestions int            `json:"totalQuestions"`
	IsCompleted    bool           `json:"isCompleted"`
	StartedAt      time.Time      `json:"startedAt"`
	Questions      []QuestionView `json:"questions"`
}

type AnswerView struct {
	QuestionID uuid.UUID    `json:"questionId"`
	Position   int          `json:"position"`
	UserAnswer *string      `json:"userAnswer"`
	IsCorrect  bool         `json:"isCorrect"`
	TimeSpent  int          `json:"timeSpent"`
	Question   QuestionView `json:"question"`
}

type AttemptView struct {
	ID             uuid.UUID    `json:"id"`
	UserID         uuid.UUID    `json:"userId"`
	Mode           Mode         `json:"mode"`
	SubjectID      *uuid.UUID   `json:"subjectId,omitempty"`
	SubjectName    string       `json:"subjectName,omitempty"`
	BlockID        *uuid.UUID   `json:"blockId,omitempty"`
	BlockTitle     string       `json:"blockTitle,omitempty"`
	TotalQuestions int          `json:"totalQuestions"`
	CorrectAnswers int          `json:"correctAnswers"`
	WrongAnswers   int          `json:"wrongAnswers"`
	SkippedAnswers int          `json:"skippedAnswers"`
	Score          float64      `json:"score"`
	TimeSpent      int          `json:"timeSpent"`
	IsCompleted    bool         `json:"isCompleted"`
	StartedAt      time.Time    `json:"startedAt"`
	CompletedAt    *time.Time   `json:"completedAt,omitempty"`
	Answers        []AnswerView `json:"answers,omitempty"`
}

type ResultsPage struct {
	Items []AttemptView `json:"items"`
	Page  int           `json:"page"`
	Limit int           `json:"limit"`
	Total int64         `json:"total"`
}

type QuestionInput struct {
	SubjectID     string     `json:"subjectId" validate:"required,uuid"`
	BlockID       *string    `json:"blockId,omitempty" validate:"omitempty,uuid"`
	OrderIndex    int        `json:"orderIndex" validate:"gte=0"`
	QuestionText  string     `json:"questionText" validate:"required"`
	QuestionImage *string    `json:"questionImage,omitempty" validate:"omitempty,url"`
	OptionA       string     `json:"optionA" validate:"required"`
	OptionB       string     `json:"optionB" validate:"required"`
	OptionC       *string    `json:"optionC,omitempty"`
	OptionD       *string    `json:"optionD,omitempty"`
	OptionE       *string    `json:"optionE,omitempty"`
	CorrectAnswer string     `json:"correctAnswer" validate:"required"`
	Explanation   *string    `json:"explanation,omitempty"`
	Difficulty    Difficulty `json:"difficulty,omitempty" validate:"omitempty,oneof=EASY MEDIUM HARD"`
	IsActive      *bool      `json:"isActive,omitempty"`
}

type BlockInput struct {
	SubjectID   string  `json:"subjectId" validate:"required,uuid"`
	Title       string  `json:"title" validate:"required,max=200"`
	Description *string `json:"description,omitempty"`
	OrderIndex  int     `json:"orderIndex" validate:"gte=0"`
	IsActive    *bool   `json:"isActive,omitempty"`
}

type QuestionFilter struct {
	SubjectID *uuid.UUID
	BlockID   *uuid.UUID
}

// Viewer is the identity a read is performed for.
type Viewer struct {
	UserID  uuid.UUID
	IsAdmin bool
}

func (v Viewer) CanRead(a *QuizAttempt) bool {
	return v.IsAdmin || a.UserID == v.UserID
}
