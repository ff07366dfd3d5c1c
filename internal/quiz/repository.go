package quiz

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type QuizRepository interface {
	// Transaction runs fn against a repository bound to one database
	// transaction. Any error returned by fn rolls the whole unit back.
	Transaction(ctx context.Context, fn func(tx QuizRepository) error) error

	ListSubjects(ctx context.Context) ([]Subject, error)
	FindSubject(ctx context.Context, id uuid.UUID) (*Subject, error)

	FindBlock(ctx context.Context, id uuid.UUID) (*QuizBlock, error)
	ListBlocks(ctx context.Context, subjectID *uuid.UUID, onlyActive bool) ([]QuizBlock, error)
	CreateBlock(ctx context.Context, b *QuizBlock) error
	UpdateBlock(ctx context.Context, b *QuizBlock) error
	// RefreshBlockStats recomputes the block average from every completed
	// attempt and bumps its attempt counter.
	RefreshBlockStats(ctx context.Context, blockID uuid.UUID) error

	FindQuestion(ctx context.Context, id uuid.UUID) (*QuizQuestion, error)
	ListQuestions(ctx context.Context, filter QuestionFilter) ([]QuizQuestion, error)
	// ListActiveSubjectQuestions returns active questions of a subject in
	// creation order. limit <= 0 means no limit.
	ListActiveSubjectQuestions(ctx context.Context, subjectID uuid.UUID, limit int) ([]QuizQuestion, error)
	ListActiveBlockQuestions(ctx context.Context, blockID uuid.UUID) ([]QuizQuestion, error)
	CountBlockQuestions(ctx context.Context, blockID uuid.UUID) (int64, error)
	FindQuestionsByIDs(ctx context.Context, ids []uuid.UUID) ([]QuizQuestion, error)
	CreateQuestion(ctx context.Context, q *QuizQuestion) error
	UpdateQuestion(ctx context.Context, q *QuizQuestion) error
	IncrementShowCount(ctx context.Context, questionIDs []uuid.UUID) error
	IncrementAnswerCounters(ctx context.Context, correctIDs, wrongIDs []uuid.UUID) error

	CreateAttempt(ctx context.Context, a *QuizAttempt, answers []QuizAnswer) error
	// FindAttempt loads the attempt with its answers ordered by position,
	// each joined to its question.
	FindAttempt(ctx context.Context, id uuid.UUID) (*QuizAttempt, error)
	// UpdateAnswers writes user answer, correctness and time spent for each
	// row keyed by (attemptID, questionID).
	UpdateAnswers(ctx context.Context, attemptID uuid.UUID, answers []QuizAnswer) error
	// CompleteAttempt stores the final tallies. It returns
	// ErrAttemptCompleted when the attempt was already completed.
	CompleteAttempt(ctx context.Context, a *QuizAttempt) error
	ListCompletedAttempts(ctx context.Context, userID uuid.UUID, offset, limit int) ([]QuizAttempt, int64, error)
	// DeleteAttemptsStartedBefore removes answers and then attempts started
	// before cutoff.
	DeleteAttemptsStartedBefore(ctx context.Context, cutoff time.Time) (attempts, answers int64, err error)
}

type quizRepository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) QuizRepository {
	return &quizRepository{db: db}
}

func (r *quizRepository) Transaction(ctx context.Context, fn func(tx QuizRepository) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&quizRepository{db: tx})
	})
}

func notFound(err, sentinel error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return sentinel
	}
	return err
}

func (r *quizRepository) ListSubjects(ctx context.Context) ([]Subject, error) {
	var subjects []Subject
	if err := r.db.WithContext(ctx).Order("name ASC").Find(&subjects).Error; err != nil {
		return nil, err
	}
	return subjects, nil
}

func (r *quizRepository) FindSubject(ctx context.Context, id uuid.UUID) (*Subject, error) {
	var s Subject
	if err := r.db.WithContext(ctx).First(&s, "id = ?", id).Error; err != nil {
		return nil, notFound(err, ErrSubjectNotFound)
	}
	return &s, nil
}

func (r *quizRepository) FindBlock(ctx context.Context, id uuid.UUID) (*QuizBlock, error) {
	var b QuizBlock
	if err := r.db.WithContext(ctx).First(&b, "id = ?", id).Error; err != nil {
		return nil, notFound(err, ErrBlockNotFound)
	}
	return &b, nil
}

func (r *quizRepository) ListBlocks(ctx context.Context, subjectID *uuid.UUID, onlyActive bool) ([]QuizBlock, error) {
	q := r.db.WithContext(ctx).Model(&QuizBlock{})
	if subjectID != nil {
		q = q.Where("subject_id = ?", *subjectID)
	}
	if onlyActive {
		q = q.Where("is_active = ?", true)
	}
	var blocks []QuizBlock
	if err := q.Order("order_index ASC, created_at ASC").Find(&blocks).Error; err != nil {
		return nil, err
	}
	return blocks, nil
}

func (r *quizRepository) CreateBlock(ctx context.Context, b *QuizBlock) error {
	return r.db.WithContext(ctx).Create(b).Error
}

func (r *quizRepository) UpdateBlock(ctx context.Context, b *QuizBlock) error {
	return r.db.WithContext(ctx).Save(b).Error
}

func (r *quizRepository) RefreshBlockStats(ctx context.Context, blockID uuid.UUID) error {
	avg := r.db.Model(&QuizAttempt{}).
		Select("COALESCE(AVG(score), 0)").
		Where("block_id = ? AND is_completed = ?", blockID, true)

	res := r.db.WithContext(ctx).Model(&QuizBlock{}).
		Where("id = ?", blockID).
		Updates(map[string]interface{}{
			"average_score": gorm.Expr("(?)", avg),
			"attempt_count": gorm.Expr("attempt_count + 1"),
			"updated_at":    time.Now(),
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrBlockNotFound
	}
	return nil
}

func (r *quizRepository) FindQuestion(ctx context.Context, id uuid.UUID) (*QuizQuestion, error) {
	var q QuizQuestion
	if err := r.db.WithContext(ctx).First(&q, "id = ?", id).Error; err != nil {
		return nil, notFound(err, ErrQuestionNotFound)
	}
	return &q, nil
}

func (r *quizRepository) ListQuestions(ctx context.Context, filter QuestionFilter) ([]QuizQuestion, error) {
	q := r.db.WithContext(ctx).Model(&QuizQuestion{})
	if filter.SubjectID != nil {
		q = q.Where("subject_id = ?", *filter.SubjectID)
	}
	if filter.BlockID != nil {
		q = q.Where("block_id = ?", *filter.BlockID)
	}
	var questions []QuizQuestion
	if err := q.Order("order_index ASC, created_at ASC, id ASC").Find(&questions).Error; err != nil {
		return nil, err
	}
	return questions, nil
}

func (r *quizRepository) ListActiveSubjectQuestions(ctx context.Context, subjectID uuid.UUID, limit int) ([]QuizQuestion, error) {
	q := r.db.WithContext(ctx).
		Where("subject_id = ? AND is_active = ?", subjectID, true).
		Order("created_at ASC, id ASC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	var questions []QuizQuestion
	if err := q.Find(&questions).Error; err != nil {
		return nil, err
	}
	return questions, nil
}

func (r *quizRepository) ListActiveBlockQuestions(ctx context.Context, blockID uuid.UUID) ([]QuizQuestion, error) {
	var questions []QuizQuestion
	if err := r.db.WithContext(ctx).
		Where("block_id = ? AND is_active = ?", blockID, true).
		Order("order_index ASC, created_at ASC, id ASC").
		Find(&questions).Error; err != nil {
		return nil, err
	}
	return questions, nil
}

func (r *quizRepository) CountBlockQuestions(ctx context.Context, blockID uuid.UUID) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&QuizQuestion{}).Where("block_id = ?", blockID).Count(&n).Error
	return n, err
}

func (r *quizRepository) FindQuestionsByIDs(ctx context.Context, ids []uuid.UUID) ([]QuizQuestion, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var questions []QuizQuestion
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&questions).Error; err != nil {
		return nil, err
	}
	return questions, nil
}

func (r *quizRepository) CreateQuestion(ctx context.Context, q *QuizQuestion) error {
	return r.db.WithContext(ctx).Create(q).Error
}

func (r *quizRepository) UpdateQuestion(ctx context.Context, q *QuizQuestion) error {
	return r.db.WithContext(ctx).Save(q).Error
}

func (r *quizRepository) IncrementShowCount(ctx context.Context, questionIDs []uuid.UUID) error {
	if len(questionIDs) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Model(&QuizQuestion{}).
		Where("id IN ?", questionIDs).
		UpdateColumn("show_count", gorm.Expr("show_count + 1")).Error
}

func (r *quizRepository) IncrementAnswerCounters(ctx context.Context, correctIDs, wrongIDs []uuid.UUID) error {
	if len(correctIDs) > 0 {
		if err := r.db.WithContext(ctx).Model(&QuizQuestion{}).
			Where("id IN ?", correctIDs).
			UpdateColumn("correct_count", gorm.Expr("correct_count + 1")).Error; err != nil {
			return err
		}
	}
	if len(wrongIDs) > 0 {
		if err := r.db.WithContext(ctx).Model(&QuizQuestion{}).
			Where("id IN ?", wrongIDs).
			UpdateColumn("wrong_count", gorm.Expr("wrong_count + 1")).Error; err != nil {
			return err
		}
	}
	return nil
}

func (r *quizRepository) CreateAttempt(ctx context.Context, a *QuizAttempt, answers []QuizAnswer) error {
	db := r.db.WithContext(ctx)
	if err := db.Omit("Subject", "Block", "Answers").Create(a).Error; err != nil {
		return err
	}
	for i := range answers {
		answers[i].AttemptID = a.ID
	}
	if len(answers) == 0 {
		return nil
	}
	return db.Omit("Question").CreateInBatches(&answers, 100).Error
}

func (r *quizRepository) FindAttempt(ctx context.Context, id uuid.UUID) (*QuizAttempt, error) {
	var a QuizAttempt
	err := r.db.WithContext(ctx).
		Preload("Subject").
		Preload("Block").
		Preload("Answers", func(db *gorm.DB) *gorm.DB {
			return db.Order("position ASC")
		}).
		Preload("Answers.Question").
		First(&a, "id = ?", id).Error
	if err != nil {
		return nil, notFound(err, ErrAttemptNotFound)
	}
	return &a, nil
}

// UpdateAnswers issues one UPDATE ... FROM (VALUES ...) statement for the
// whole submission.
func (r *quizRepository) UpdateAnswers(ctx context.Context, attemptID uuid.UUID, answers []QuizAnswer) error {
	if len(answers) == 0 {
		return nil
	}

	rows := make([]string, 0, len(answers))
	args := make([]interface{}, 0, len(answers)*4+1)
	for _, a := range answers {
		rows = append(rows, "(?::uuid, ?::text, ?::boolean, ?::integer)")
		args = append(args, a.QuestionID, a.UserAnswer, a.IsCorrect, a.TimeSpent)
	}
	args = append(args, attemptID)

	sql := fmt.Sprintf(`UPDATE quiz_answers AS qa
SET user_answer = v.user_answer, is_correct = v.is_correct, time_spent = v.time_spent, updated_at = NOW()
FROM (VALUES %s) AS v(question_id, user_answer, is_correct, time_spent)
WHERE qa.question_id = v.question_id AND qa.attempt_id = ?`, strings.Join(rows, ", "))

	res := r.db.WithContext(ctx).Exec(sql, args...)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected != int64(len(answers)) {
		return fmt.Errorf("updated %d of %d answers: %w", res.RowsAffected, len(answers), ErrInvalidAnswers)
	}
	return nil
}

func (r *quizRepository) CompleteAttempt(ctx context.Context, a *QuizAttempt) error {
	res := r.db.WithContext(ctx).Model(&QuizAttempt{}).
		Where("id = ? AND is_completed = ?", a.ID, false).
		Updates(map[string]interface{}{
			"correct_answers": a.CorrectAnswers,
			"wrong_answers":   a.WrongAnswers,
			"skipped_answers": a.SkippedAnswers,
			"score":           a.Score,
			"time_spent":      a.TimeSpent,
			"completed_at":    a.CompletedAt,
			"is_completed":    true,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrAttemptCompleted
	}
	return nil
}

func (r *quizRepository) ListCompletedAttempts(ctx context.Context, userID uuid.UUID, offset, limit int) ([]QuizAttempt, int64, error) {
	base := r.db.WithContext(ctx).Model(&QuizAttempt{}).
		Where("user_id = ? AND is_completed = ?", userID, true)

	var total int64
	if err := base.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var attempts []QuizAttempt
	if err := base.Session(&gorm.Session{}).
		Preload("Subject").
		Preload("Block").
		Order("completed_at DESC").
		Offset(offset).
		Limit(limit).
		Find(&attempts).Error; err != nil {
		return nil, 0, err
	}
	return attempts, total, nil
}

func (r *quizRepository) DeleteAttemptsStartedBefore(ctx context.Context, cutoff time.Time) (int64, int64, error) {
	var attempts, answers int64
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		expired := tx.Model(&QuizAttempt{}).Select("id").Where("started_at < ?", cutoff)

		res := tx.Where("attempt_id IN (?)", expired).Delete(&QuizAnswer{})
		if res.Error != nil {
			return res.Error
		}
		answers = res.RowsAffected

		res = tx.Where("started_at < ?", cutoff).Delete(&QuizAttempt{})
		if res.Error != nil {
			return res.Error
		}
		attempts = res.RowsAffected
		return nil
	})
	if err != nil {
		return 0, 0, err
	}
	return attempts, answers, nil
}
