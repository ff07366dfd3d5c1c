package quiz

import (
	"context"
	"errors"
	"math"
	"math/rand/v2"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/sechenov-plus/quiz-lambda/internal/auth"
	"github.com/sechenov-plus/quiz-lambda/internal/config"
	"github.com/sechenov-plus/quiz-lambda/internal/event"
)

const (
	DefaultResultsLimit = 20
	MaxResultsLimit     = 100
)

type QuizService interface {
	StartAttempt(ctx context.Context, req StartAttemptRequest) (*StartAttemptResponse, error)
	GetTakeView(ctx context.Context, attemptID string) (*TakeViewResponse, error)
	SubmitAttempt(ctx context.Context, req SubmitAttemptRequest) (*AttemptView, error)
	GetAttempt(ctx context.Context, attemptID string) (*AttemptView, error)
	ListMyResults(ctx context.Context, page, limit int) (*ResultsPage, error)
}

type ServiceConfig struct {
	// ResumeRetries is the number of lookups the take-view makes before
	// reporting a freshly created attempt as missing.
	ResumeRetries    int
	ResumeRetryDelay time.Duration
	Shuffle          func([]QuizQuestion)
	Now              func() time.Time
}

type quizService struct {
	repo      QuizRepository
	publisher event.Publisher
	cfg       ServiceConfig
}

func NewService(repo QuizRepository, publisher event.Publisher, cfg ServiceConfig) QuizService {
	if cfg.ResumeRetries <= 0 {
		cfg.ResumeRetries = config.DefaultResumeRetries
	}
	if cfg.ResumeRetryDelay < 0 {
		cfg.ResumeRetryDelay = 0
	}
	if cfg.Shuffle == nil {
		cfg.Shuffle = shuffleQuestions
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	if publisher == nil {
		publisher = event.NopPublisher{}
	}
	return &quizService{repo: repo, publisher: publisher, cfg: cfg}
}

func shuffleQuestions(qs []QuizQuestion) {
	rand.Shuffle(len(qs), func(i, j int) { qs[i], qs[j] = qs[j], qs[i] })
}

func currentViewer(ctx context.Context, log logrus.FieldLogger, action string) (Viewer, error) {
	claims, err := auth.GetUserClaimsFromContext(ctx)
	if err != nil {
		log.WithError(err).Warnf("Attempt to %s without authentication", action)
		return Viewer{}, ErrUnauthorized
	}
	id, err := uuid.Parse(claims.UserID)
	if err != nil {
		log.WithError(err).Warnf("Malformed user id while trying to %s", action)
		return Viewer{}, ErrUnauthorized
	}
	return Viewer{UserID: id, IsAdmin: claims.IsAdmin()}, nil
}

func parseUUID(log logrus.FieldLogger, id string, entityName string) (uuid.UUID, error) {
	parsedID, err := uuid.Parse(id)
	if err != nil {
		log.WithError(err).Warnf("Invalid %s ID", entityName)
		return uuid.Nil, ErrInvalidID
	}
	return parsedID, nil
}

func (s *quizService) StartAttempt(ctx context.Context, req StartAttemptRequest) (*StartAttemptResponse, error) {
	log := config.WithContext(ctx)
	viewer, err := currentViewer(ctx, log, "start quiz")
	if err != nil {
		return nil, err
	}

	attempt := &QuizAttempt{
		ID:        uuid.New(),
		UserID:    viewer.UserID,
		Mode:      req.Mode,
		StartedAt: s.cfg.Now(),
	}

	questions, err := s.selectQuestions(ctx, log, req, attempt)
	if err != nil {
		return nil, err
	}
	if len(questions) == 0 {
		log.WithFields(logrus.Fields{
			"mode":       req.Mode,
			"subject_id": req.SubjectID,
			"block_id":   req.BlockID,
		}).Warn("No questions available for quiz")
		return nil, ErrNoQuestions
	}
	attempt.TotalQuestions = len(questions)

	answers := make([]QuizAnswer, len(questions))
	ids := make([]uuid.UUID, len(questions))
	for i, q := range questions {
		answers[i] = QuizAnswer{
			ID:         uuid.New(),
			AttemptID:  attempt.ID,
			QuestionID: q.ID,
			Position:   i,
		}
		ids[i] = q.ID
	}

	err = s.repo.Transaction(ctx, func(tx QuizRepository) error {
		if err := tx.CreateAttempt(ctx, attempt, answers); err != nil {
			return err
		}
		return tx.IncrementShowCount(ctx, ids)
	})
	if err != nil {
		log.WithError(err).WithField("user_id", viewer.UserID).Error("Failed to create quiz attempt")
		return nil, err
	}

	views := make([]QuestionView, len(questions))
	for i := range questions {
		views[i] = questionView(&questions[i], i, false)
	}

	log.WithFields(logrus.Fields{
		"attempt_id": attempt.ID,
		"mode":       attempt.Mode,
		"questions":  attempt.TotalQuestions,
	}).Info("Quiz attempt started")

	return &StartAttemptResponse{
		AttemptID:      attempt.ID,
		Mode:           attempt.Mode,
		TotalQuestions: attempt.TotalQuestions,
		StartedAt:      attempt.StartedAt,
		Questions:      views,
	}, nil
}

func (s *quizService) selectQuestions(ctx context.Context, log logrus.FieldLogger, req StartAttemptRequest, attempt *QuizAttempt) ([]QuizQuestion, error) {
	switch req.Mode {
	case ModeRandom30:
		if req.SubjectID == "" {
			return nil, ErrSubjectRequired
		}
		subjectID, err := parseUUID(log, req.SubjectID, "subject")
		if err != nil {
			return nil, err
		}
		attempt.SubjectID = &subjectID

		questions, err := s.repo.ListActiveSubjectQuestions(ctx, subjectID, RandomDrawSize)
		if err != nil {
			log.WithError(err).Error("Failed to load subject questions")
			return nil, err
		}
		s.cfg.Shuffle(questions)
		return questions, nil

	case ModeBlock:
		if req.BlockID == "" {
			return nil, ErrBlockRequired
		}
		blockID, err := parseUUID(log, req.BlockID, "block")
		if err != nil {
			return nil, err
		}

		block, err := s.repo.FindBlock(ctx, blockID)
		if err != nil {
			if !errors.Is(err, ErrBlockNotFound) {
				log.WithError(err).Error("Failed to load quiz block")
			}
			return nil, err
		}
		if !block.IsActive {
			log.WithField("block_id", blockID).Warn("Attempt to start inactive block")
			return nil, ErrBlockInactive
		}
		attempt.BlockID = &block.ID
		attempt.SubjectID = &block.SubjectID

		linked, err := s.repo.CountBlockQuestions(ctx, block.ID)
		if err != nil {
			log.WithError(err).Error("Failed to count block questions")
			return nil, err
		}
		if linked == 0 {
			log.WithField("block_id", block.ID).Warn("Block has no linked questions, falling back to subject questions")
			return s.repo.ListActiveSubjectQuestions(ctx, block.SubjectID, 0)
		}
		return s.repo.ListActiveBlockQuestions(ctx, block.ID)
	}
	return nil, ErrInvalidMode
}

// findAttemptWithRetry tolerates a read path that lags behind the write
// that created the attempt.
func (s *quizService) findAttemptWithRetry(ctx context.Context, log logrus.FieldLogger, id uuid.UUID) (*QuizAttempt, error) {
	var attempt *QuizAttempt
	find := func() error {
		found, err := s.repo.FindAttempt(ctx, id)
		if err != nil {
			if errors.Is(err, ErrAttemptNotFound) {
				return err
			}
			return backoff.Permanent(err)
		}
		attempt = found
		return nil
	}

	policy := backoff.WithContext(
		backoff.WithMaxRetries(backoff.NewConstantBackOff(s.cfg.ResumeRetryDelay), uint64(s.cfg.ResumeRetries-1)),
		ctx,
	)
	retry := 0
	err := backoff.RetryNotify(find, policy, func(error, time.Duration) {
		retry++
		log.WithField("attempt_id", id).Debugf("Attempt not visible yet, retry %d", retry)
	})
	if err != nil {
		return nil, err
	}
	return attempt, nil
}

func (s *quizService) GetTakeView(ctx context.Context, attemptID string) (*TakeViewResponse, error) {
	log := config.WithContext(ctx)
	viewer, err := currentViewer(ctx, log, "resume quiz")
	if err != nil {
		return nil, err
	}
	id, err := parseUUID(log, attemptID, "attempt")
	if err != nil {
		return nil, err
	}

	attempt, err := s.findAttemptWithRetry(ctx, log, id)
	if err != nil {
		if errors.Is(err, ErrAttemptNotFound) {
			log.WithField("attempt_id", id).Warn("Attempt not found after retries")
		} else {
			log.WithError(err).Error("Failed to load attempt")
		}
		return nil, err
	}
	if !viewer.CanRead(attempt) {
		log.WithFields(logrus.Fields{
			"attempt_id": id,
			"user_id":    viewer.UserID,
		}).Warn("Attempt does not belong to user")
		return nil, ErrForbidden
	}

	views := make([]QuestionView, 0, len(attempt.Answers))
	for _, ans := range attempt.Answers {
		if ans.Question == nil {
			log.WithField("question_id", ans.QuestionID).Warn("Answer row without question")
			continue
		}
		views = append(views, questionView(ans.Question, ans.Position, false))
	}

	return &TakeViewResponse{
		AttemptID:      attempt.ID,
		Mode:           attempt.Mode,
		SubjectID:      attempt.SubjectID,
		BlockID:        attempt.BlockID,
		TotalQuestions: attempt.TotalQuestions,
		IsCompleted:    attempt.IsCompleted,
		StartedAt:      attempt.StartedAt,
		Questions:      views,
	}, nil
}

// indexSubmission maps submitted answers by question and rejects answers for
// questions the attempt does not contain.
func indexSubmission(attempt *QuizAttempt, submitted []SubmittedAnswer) (map[uuid.UUID]SubmittedAnswer, error) {
	inAttempt := make(map[uuid.UUID]struct{}, len(attempt.Answers))
	for _, a := range attempt.Answers {
		inAttempt[a.QuestionID] = struct{}{}
	}

	byQuestion := make(map[uuid.UUID]SubmittedAnswer, len(submitted))
	for _, sa := range submitted {
		qid, err := uuid.Parse(sa.QuestionID)
		if err != nil {
			return nil, ErrInvalidID
		}
		if _, ok := inAttempt[qid]; !ok {
			return nil, ErrInvalidAnswers
		}
		if _, dup := byQuestion[qid]; dup {
			return nil, ErrDuplicateAnswer
		}
		byQuestion[qid] = sa
	}
	return byQuestion, nil
}

func (s *quizService) SubmitAttempt(ctx context.Context, req SubmitAttemptRequest) (*AttemptView, error) {
	log := config.WithContext(ctx)
	viewer, err := currentViewer(ctx, log, "submit quiz")
	if err != nil {
		return nil, err
	}
	id, err := parseUUID(log, req.AttemptID, "attempt")
	if err != nil {
		return nil, err
	}
	log = log.WithField("attempt_id", id)

	attempt, err := s.repo.FindAttempt(ctx, id)
	if err != nil {
		if !errors.Is(err, ErrAttemptNotFound) {
			log.WithError(err).Error("Failed to load attempt for submission")
		}
		return nil, err
	}
	if attempt.UserID != viewer.UserID {
		log.WithField("user_id", viewer.UserID).Warn("Attempt to submit foreign quiz attempt")
		return nil, ErrForbidden
	}
	if attempt.IsCompleted {
		log.Warn("Attempt already completed")
		return nil, ErrAttemptCompleted
	}

	submitted, err := indexSubmission(attempt, req.Answers)
	if err != nil {
		log.WithError(err).Warn("Invalid quiz submission")
		return nil, err
	}

	ids := make([]uuid.UUID, len(attempt.Answers))
	for i, a := range attempt.Answers {
		ids[i] = a.QuestionID
	}
	questions, err := s.repo.FindQuestionsByIDs(ctx, ids)
	if err != nil {
		log.WithError(err).Error("Failed to load correct answers")
		return nil, ErrSubmissionFailed
	}
	byID := make(map[uuid.UUID]*QuizQuestion, len(questions))
	for i := range questions {
		byID[questions[i].ID] = &questions[i]
	}

	var (
		tally      Tally
		correctIDs []uuid.UUID
		wrongIDs   []uuid.UUID
		totalTime  int
	)
	updates := make([]QuizAnswer, len(attempt.Answers))
	for i := range attempt.Answers {
		ans := &attempt.Answers[i]
		q, ok := byID[ans.QuestionID]
		if !ok {
			log.WithField("question_id", ans.QuestionID).Error("Question of attempt no longer exists")
			return nil, ErrSubmissionFailed
		}

		sa, answered := submitted[ans.QuestionID]
		var userAnswer *string
		if answered && !IsSkipped(sa.UserAnswer) {
			normalized := NormalizeAnswer(*sa.UserAnswer)
			userAnswer = &normalized
		}

		ans.UserAnswer = userAnswer
		ans.TimeSpent = sa.TimeSpent
		ans.IsCorrect = tally.Add(userAnswer, q.CorrectAnswer)
		ans.Question = q
		totalTime += sa.TimeSpent

		switch {
		case ans.IsCorrect:
			correctIDs = append(correctIDs, q.ID)
		case userAnswer != nil:
			wrongIDs = append(wrongIDs, q.ID)
		}
		updates[i] = *ans
	}

	now := s.cfg.Now()
	attempt.CorrectAnswers = tally.Correct
	attempt.WrongAnswers = tally.Wrong
	attempt.SkippedAnswers = tally.Skipped
	attempt.Score = ScorePercent(tally.Correct, attempt.TotalQuestions)
	attempt.TimeSpent = req.TimeSpent
	if attempt.TimeSpent == 0 {
		attempt.TimeSpent = totalTime
	}
	attempt.CompletedAt = &now
	attempt.IsCompleted = true

	err = s.repo.Transaction(ctx, func(tx QuizRepository) error {
		if err := tx.CompleteAttempt(ctx, attempt); err != nil {
			return err
		}
		if err := tx.UpdateAnswers(ctx, attempt.ID, updates); err != nil {
			return err
		}
		if err := tx.IncrementAnswerCounters(ctx, correctIDs, wrongIDs); err != nil {
			return err
		}
		if attempt.BlockID != nil {
			return tx.RefreshBlockStats(ctx, *attempt.BlockID)
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, ErrAttemptCompleted) {
			log.Warn("Attempt completed concurrently")
			return nil, ErrAttemptCompleted
		}
		log.WithError(err).Error("Failed to submit quiz attempt")
		return nil, ErrSubmissionFailed
	}

	log.WithFields(logrus.Fields{
		"score":   attempt.Score,
		"correct": tally.Correct,
		"wrong":   tally.Wrong,
		"skipped": tally.Skipped,
	}).Info("Quiz attempt submitted")

	s.publishCompleted(ctx, log, attempt)

	view := attemptDetail(attempt)
	return &view, nil
}

func (s *quizService) publishCompleted(ctx context.Context, log logrus.FieldLogger, a *QuizAttempt) {
	ev := event.AttemptCompleted{
		AttemptID:      a.ID.String(),
		UserID:         a.UserID.String(),
		Mode:           string(a.Mode),
		TotalQuestions: a.TotalQuestions,
		CorrectAnswers: a.CorrectAnswers,
		Score:          a.Score,
		CompletedAt:    *a.CompletedAt,
	}
	if a.SubjectID != nil {
		ev.SubjectID = a.SubjectID.String()
	}
	if a.BlockID != nil {
		ev.BlockID = a.BlockID.String()
	}
	if err := s.publisher.Publish(ctx, event.AttemptCompletedKey, ev); err != nil {
		log.WithError(err).Warn("Failed to publish attempt completed event")
	}
}

func (s *quizService) GetAttempt(ctx context.Context, attemptID string) (*AttemptView, error) {
	log := config.WithContext(ctx)
	viewer, err := currentViewer(ctx, log, "read quiz attempt")
	if err != nil {
		return nil, err
	}
	id, err := parseUUID(log, attemptID, "attempt")
	if err != nil {
		return nil, err
	}

	attempt, err := s.repo.FindAttempt(ctx, id)
	if err != nil {
		if !errors.Is(err, ErrAttemptNotFound) {
			log.WithError(err).Error("Failed to load attempt")
		}
		return nil, err
	}
	if !viewer.CanRead(attempt) {
		log.WithFields(logrus.Fields{
			"attempt_id": id,
			"user_id":    viewer.UserID,
		}).Warn("Attempt does not belong to user")
		return nil, ErrForbidden
	}

	view := attemptDetail(attempt)
	return &view, nil
}

func (s *quizService) ListMyResults(ctx context.Context, page, limit int) (*ResultsPage, error) {
	log := config.WithContext(ctx)
	viewer, err := currentViewer(ctx, log, "list quiz results")
	if err != nil {
		return nil, err
	}

	if page < 1 {
		page = 1
	}
	if limit <= 0 {
		limit = DefaultResultsLimit
	}
	if limit > MaxResultsLimit {
		limit = MaxResultsLimit
	}

	// Pages past the addressable range are empty rather than wrapping the
	// offset negative.
	if page-1 > math.MaxInt/limit {
		return &ResultsPage{Items: []AttemptView{}, Page: page, Limit: limit}, nil
	}

	attempts, total, err := s.repo.ListCompletedAttempts(ctx, viewer.UserID, (page-1)*limit, limit)
	if err != nil {
		log.WithError(err).Error("Failed to list quiz results")
		return nil, err
	}

	items := make([]AttemptView, len(attempts))
	for i := range attempts {
		items[i] = attemptSummary(&attempts[i])
	}
	return &ResultsPage{Items: items, Page: page, Limit: limit, Total: total}, nil
}
