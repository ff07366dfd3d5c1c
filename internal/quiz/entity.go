package quiz

import (
	"time"

	"github.com/google/uuid"
)

type Subject struct {
	ID        uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	Name      string    `gorm:"type:text;not null" json:"name"`
	Slug      string    `gorm:"type:text;uniqueIndex;not null" json:"slug"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updatedAt"`
}

type QuizBlock struct {
	ID           uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	SubjectID    uuid.UUID `gorm:"type:uuid;not null;index" json:"subjectId"`
	Title        string    `gorm:"type:text;not null" json:"title"`
	Description  *string   `gorm:"type:text" json:"description,omitempty"`
	OrderIndex   int       `gorm:"not null;default:0" json:"orderIndex"`
	IsActive     bool      `gorm:"not null" json:"isActive"`
	AttemptCount int       `gorm:"not null;default:0" json:"attemptCount"`
	AverageScore float64   `gorm:"not null;default:0" json:"averageScore"`
	CreatedAt    time.Time `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt    time.Time `gorm:"autoUpdateTime" json:"updatedAt"`
}

// QuizQuestion holds up to five options. CorrectAnswer is a single letter
// or a comma-joined set for multi-select questions.
type QuizQuestion struct {
	ID            uuid.UUID  `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	SubjectID     uuid.UUID  `gorm:"type:uuid;not null;index:idx_question_subject_active" json:"subjectId"`
	BlockID       *uuid.UUID `gorm:"type:uuid;index" json:"blockId,omitempty"`
	OrderIndex    int        `gorm:"not null;default:0" json:"orderIndex"`
	QuestionText  string     `gorm:"type:text;not null" json:"questionText"`
	QuestionImage *string    `gorm:"type:text" json:"questionImage,omitempty"`
	OptionA       string     `gorm:"type:text;not null" json:"optionA"`
	OptionB       string     `gorm:"type:text;not null" json:"optionB"`
	OptionC       *string    `gorm:"type:text" json:"optionC,omitempty"`
	OptionD       *string    `gorm:"type:text" json:"optionD,omitempty"`
	OptionE       *string    `gorm:"type:text" json:"optionE,omitempty"`
	CorrectAnswer string     `gorm:"type:text;not null" json:"correctAnswer"`
	Explanation   *string    `gorm:"type:text" json:"explanation,omitempty"`
	Difficulty    Difficulty `gorm:"type:text;not null;default:'MEDIUM'" json:"difficulty"`
	IsActive      bool       `gorm:"not null;index:idx_question_subject_active" json:"isActive"`
	ShowCount     int        `gorm:"not null;default:0" json:"showCount"`
	CorrectCount  int        `gorm:"not null;default:0" json:"correctCount"`
	WrongCount    int        `gorm:"not null;default:0" json:"wrongCount"`
	CreatedAt     time.Time  `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt     time.Time  `gorm:"autoUpdateTime" json:"updatedAt"`
}

type QuizAttempt struct {
	ID             uuid.UUID  `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	UserID         uuid.UUID  `gorm:"type:uuid;not null;index:idx_attempt_user_completed" json:"userId"`
	Mode           Mode       `gorm:"type:text;not null" json:"mode"`
	SubjectID      *uuid.UUID `gorm:"type:uuid;index" json:"subjectId,omitempty"`
	BlockID        *uuid.UUID `gorm:"type:uuid;index" json:"blockId,omitempty"`
	TotalQuestions int        `gorm:"not null;default:0" json:"totalQuestions"`
	CorrectAnswers int        `gorm:"not null;default:0" json:"correctAnswers"`
	WrongAnswers   int        `gorm:"not null;default:0" json:"wrongAnswers"`
	SkippedAnswers int        `gorm:"not null;default:0" json:"skippedAnswers"`
	Score          float64    `gorm:"not null;default:0" json:"score"`
	TimeSpent      int        `gorm:"not null;default:0" json:"timeSpent"`
	IsCompleted    bool       `gorm:"not null;index:idx_attempt_user_completed" json:"isCompleted"`
	StartedAt      time.Time  `gorm:"not null;index" json:"startedAt"`
	CompletedAt    *time.Time `json:"completedAt,omitempty"`

	Subject *Subject     `gorm:"foreignKey:SubjectID" json:"-"`
	Block   *QuizBlock   `gorm:"foreignKey:BlockID" json:"-"`
	Answers []QuizAnswer `gorm:"foreignKey:AttemptID" json:"-"`
}

// QuizAnswer rows are created as placeholders when the attempt starts, one
// per drawn question, and filled in once at submission.
type QuizAnswer struct {
	ID         uuid.UUID     `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	AttemptID  uuid.UUID     `gorm:"type:uuid;not null;uniqueIndex:idx_answer_attempt_question" json:"attemptId"`
	QuestionID uuid.UUID     `gorm:"type:uuid;not null;uniqueIndex:idx_answer_attempt_question" json:"questionId"`
	Position   int           `gorm:"not null" json:"position"`
	UserAnswer *string       `gorm:"type:text" json:"userAnswer"`
	IsCorrect  bool          `gorm:"not null" json:"isCorrect"`
	TimeSpent  int           `gorm:"not null;default:0" json:"timeSpent"`
	CreatedAt  time.Time     `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt  time.Time     `gorm:"autoUpdateTime" json:"updatedAt"`
	Question   *QuizQuestion `gorm:"foreignKey:QuestionID" json:"-"`
}

// Models lists the tables owned by this package, for migration.
func Models() []interface{} {
	return []interface{}{&Subject{}, &QuizBlock{}, &QuizQuestion{}, &QuizAttempt{}, &QuizAnswer{}}
}
