package quiz

import "errors"

var (
	ErrUnauthorized         = errors.New("unauthorized")
	ErrForbidden            = errors.New("forbidden")
	ErrInvalidID            = errors.New("invalid id format")
	ErrInvalidMode          = errors.New("invalid quiz mode")
	ErrSubjectRequired      = errors.New("subjectId is required for RANDOM_30 mode")
	ErrBlockRequired        = errors.New("blockId is required for BLOCK mode")
	ErrSubjectNotFound      = errors.New("subject not found")
	ErrBlockNotFound        = errors.New("block not found")
	ErrBlockInactive        = errors.New("block inactive")
	ErrNoQuestions          = errors.New("no questions available for this quiz")
	ErrQuestionNotFound     = errors.New("question not found")
	ErrAttemptNotFound      = errors.New("attempt not found")
	ErrAttemptCompleted     = errors.New("attempt already completed")
	ErrInvalidAnswers       = errors.New("answers reference questions outside this attempt")
	ErrDuplicateAnswer      = errors.New("duplicate answer for question")
	ErrInvalidCorrectKey    = errors.New("correct answer must reference existing options A-E")
	ErrBlockSubjectMismatch = errors.New("block belongs to another subject")
	ErrSubmissionFailed     = errors.New("failed to submit quiz")
)
