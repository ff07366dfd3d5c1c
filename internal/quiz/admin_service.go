package quiz

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"github.com/sechenov-plus/quiz-lambda/internal/config"
)

// AdminService manages the question bank. Callers are expected to be admins;
// the router enforces it.
type AdminService interface {
	ListSubjects(ctx context.Context) ([]Subject, error)
	ListBlocks(ctx context.Context, subjectID string, onlyActive bool) ([]QuizBlock, error)
	CreateBlock(ctx context.Context, in BlockInput) (*QuizBlock, error)
	UpdateBlock(ctx context.Context, id string, in BlockInput) (*QuizBlock, error)
	ListQuestions(ctx context.Context, subjectID, blockID string) ([]QuizQuestion, error)
	CreateQuestion(ctx context.Context, in QuestionInput) (*QuizQuestion, error)
	UpdateQuestion(ctx context.Context, id string, in QuestionInput) (*QuizQuestion, error)
	DeactivateQuestion(ctx context.Context, id string) error
}

type adminService struct {
	repo QuizRepository
}

func NewAdminService(repo QuizRepository) AdminService {
	return &adminService{repo: repo}
}

func optionalUUID(raw string) (*uuid.UUID, error) {
	if raw == "" {
		return nil, nil
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return nil, ErrInvalidID
	}
	return &id, nil
}

func (s *adminService) ListSubjects(ctx context.Context) ([]Subject, error) {
	subjects, err := s.repo.ListSubjects(ctx)
	if err != nil {
		config.WithContext(ctx).WithError(err).Error("Failed to list subjects")
		return nil, err
	}
	return subjects, nil
}

func (s *adminService) ListBlocks(ctx context.Context, subjectID string, onlyActive bool) ([]QuizBlock, error) {
	sid, err := optionalUUID(subjectID)
	if err != nil {
		return nil, err
	}
	blocks, err := s.repo.ListBlocks(ctx, sid, onlyActive)
	if err != nil {
		config.WithContext(ctx).WithError(err).Error("Failed to list blocks")
		return nil, err
	}
	return blocks, nil
}

func (s *adminService) ensureSubject(ctx context.Context, raw string) (uuid.UUID, error) {
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, ErrInvalidID
	}
	if _, err := s.repo.FindSubject(ctx, id); err != nil {
		return uuid.Nil, err
	}
	return id, nil
}

func (s *adminService) CreateBlock(ctx context.Context, in BlockInput) (*QuizBlock, error) {
	log := config.WithContext(ctx)
	subjectID, err := s.ensureSubject(ctx, in.SubjectID)
	if err != nil {
		return nil, err
	}

	b := &QuizBlock{
		ID:          uuid.New(),
		SubjectID:   subjectID,
		Title:       strings.TrimSpace(in.Title),
		Description: in.Description,
		OrderIndex:  in.OrderIndex,
		IsActive:    in.IsActive == nil || *in.IsActive,
	}
	if err := s.repo.CreateBlock(ctx, b); err != nil {
		log.WithError(err).Error("Failed to create block")
		return nil, err
	}
	log.WithField("block_id", b.ID).Info("Quiz block created")
	return b, nil
}

func (s *adminService) UpdateBlock(ctx context.Context, id string, in BlockInput) (*QuizBlock, error) {
	log := config.WithContext(ctx)
	blockID, err := uuid.Parse(id)
	if err != nil {
		return nil, ErrInvalidID
	}
	b, err := s.repo.FindBlock(ctx, blockID)
	if err != nil {
		return nil, err
	}
	subjectID, err := s.ensureSubject(ctx, in.SubjectID)
	if err != nil {
		return nil, err
	}

	b.SubjectID = subjectID
	b.Title = strings.TrimSpace(in.Title)
	b.Description = in.Description
	b.OrderIndex = in.OrderIndex
	if in.IsActive != nil {
		b.IsActive = *in.IsActive
	}
	if err := s.repo.UpdateBlock(ctx, b); err != nil {
		log.WithError(err).Error("Failed to update block")
		return nil, err
	}
	return b, nil
}

func (s *adminService) ListQuestions(ctx context.Context, subjectID, blockID string) ([]QuizQuestion, error) {
	sid, err := optionalUUID(subjectID)
	if err != nil {
		return nil, err
	}
	bid, err := optionalUUID(blockID)
	if err != nil {
		return nil, err
	}
	return s.repo.ListQuestions(ctx, QuestionFilter{SubjectID: sid, BlockID: bid})
}

// validateCorrectAnswer normalizes key and checks that every letter names a
// filled-in option.
func validateCorrectAnswer(in QuestionInput) (string, error) {
	key := NormalizeAnswer(in.CorrectAnswer)
	if key == "" {
		return "", ErrInvalidCorrectKey
	}
	present := map[string]bool{"A": in.OptionA != "", "B": in.OptionB != ""}
	for letter, opt := range map[string]*string{"C": in.OptionC, "D": in.OptionD, "E": in.OptionE} {
		present[letter] = opt != nil && *opt != ""
	}
	for _, letter := range strings.Split(key, ",") {
		if !present[letter] {
			return "", ErrInvalidCorrectKey
		}
	}
	return key, nil
}

func (s *adminService) applyInput(ctx context.Context, q *QuizQuestion, in QuestionInput) error {
	subjectID, err := s.ensureSubject(ctx, in.SubjectID)
	if err != nil {
		return err
	}
	key, err := validateCorrectAnswer(in)
	if err != nil {
		return err
	}

	var blockID *uuid.UUID
	if in.BlockID != nil && *in.BlockID != "" {
		blockID, err = optionalUUID(*in.BlockID)
		if err != nil {
			return err
		}
		b, err := s.repo.FindBlock(ctx, *blockID)
		if err != nil {
			return err
		}
		if b.SubjectID != subjectID {
			return ErrBlockSubjectMismatch
		}
	}

	difficulty := in.Difficulty
	if difficulty == "" {
		difficulty = DifficultyMedium
	}

	q.SubjectID = subjectID
	q.BlockID = blockID
	q.OrderIndex = in.OrderIndex
	q.QuestionText = strings.TrimSpace(in.QuestionText)
	q.QuestionImage = in.QuestionImage
	q.OptionA = in.OptionA
	q.OptionB = in.OptionB
	q.OptionC = in.OptionC
	q.OptionD = in.OptionD
	q.OptionE = in.OptionE
	q.CorrectAnswer = key
	q.Explanation = in.Explanation
	q.Difficulty = difficulty
	if in.IsActive != nil {
		q.IsActive = *in.IsActive
	}
	return nil
}

func (s *adminService) CreateQuestion(ctx context.Context, in QuestionInput) (*QuizQuestion, error) {
	log := config.WithContext(ctx)
	q := &QuizQuestion{ID: uuid.New(), IsActive: true}
	if err := s.applyInput(ctx, q, in); err != nil {
		return nil, err
	}
	if err := s.repo.CreateQuestion(ctx, q); err != nil {
		log.WithError(err).Error("Failed to create question")
		return nil, err
	}
	log.WithField("question_id", q.ID).Info("Quiz question created")
	return q, nil
}

func (s *adminService) UpdateQuestion(ctx context.Context, id string, in QuestionInput) (*QuizQuestion, error) {
	log := config.WithContext(ctx)
	qid, err := uuid.Parse(id)
	if err != nil {
		return nil, ErrInvalidID
	}
	q, err := s.repo.FindQuestion(ctx, qid)
	if err != nil {
		return nil, err
	}
	if err := s.applyInput(ctx, q, in); err != nil {
		return nil, err
	}
	if err := s.repo.UpdateQuestion(ctx, q); err != nil {
		log.WithError(err).Error("Failed to update question")
		return nil, err
	}
	return q, nil
}

// DeactivateQuestion hides a question from new attempts. Rows are kept
// because finished attempts still reference them.
func (s *adminService) DeactivateQuestion(ctx context.Context, id string) error {
	qid, err := uuid.Parse(id)
	if err != nil {
		return ErrInvalidID
	}
	q, err := s.repo.FindQuestion(ctx, qid)
	if err != nil {
		return err
	}
	q.IsActive = false
	if err := s.repo.UpdateQuestion(ctx, q); err != nil {
		config.WithContext(ctx).WithError(err).Error("Failed to deactivate question")
		return err
	}
	return nil
}
