package event

import "time"

const (
	AttemptCompletedKey   = "quiz.attempt.completed"
	RetentionCompletedKey = "quiz.retention.completed"
)

type AttemptCompleted struct {
	AttemptID      string    `json:"attemptId"`
	UserID         string    `json:"userId"`
	Mode           string    `json:"mode"`
	SubjectID      string    `json:"subjectId,omitempty"`
	BlockID        string    `json:"blockId,omitempty"`
	TotalQuestions int       `json:"totalQuestions"`
	CorrectAnswers int       `json:"correctAnswers"`
	Score          float64   `json:"score"`
	CompletedAt    time.Time `json:"completedAt"`
}

type RetentionCompleted struct {
	Trigger         string    `json:"trigger"`
	DeletedAttempts int64     `json:"deletedAttempts"`
	DeletedAnswers  int64     `json:"deletedAnswers"`
	Cutoff          time.Time `json:"cutoff"`
}

type envelope struct {
	Type       string      `json:"type"`
	OccurredAt time.Time   `json:"occurredAt"`
	Payload    interface{} `json:"payload"`
}
