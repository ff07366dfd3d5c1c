// Package memstore is an in-memory implementation of the quiz and user
// repositories. It backs the tests and local runs without DATABASE_DSN.
package memstore

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/sechenov-plus/quiz-lambda/internal/quiz"
	"github.com/sechenov-plus/quiz-lambda/internal/user"
)

type tables struct {
	users     map[uuid.UUID]user.User
	subjects  map[uuid.UUID]quiz.Subject
	blocks    map[uuid.UUID]quiz.QuizBlock
	questions map[uuid.UUID]quiz.QuizQuestion
	attempts  map[uuid.UUID]quiz.QuizAttempt
	answers   map[uuid.UUID]quiz.QuizAnswer
	// seq preserves insertion order for questions, standing in for created_at.
	seq     map[uuid.UUID]int
	nextSeq int
}

func newTables() *tables {
	return &tables{
		users:     map[uuid.UUID]user.User{},
		subjects:  map[uuid.UUID]quiz.Subject{},
		blocks:    map[uuid.UUID]quiz.QuizBlock{},
		questions: map[uuid.UUID]quiz.QuizQuestion{},
		attempts:  map[uuid.UUID]quiz.QuizAttempt{},
		answers:   map[uuid.UUID]quiz.QuizAnswer{},
		seq:       map[uuid.UUID]int{},
	}
}

func (t *tables) clone() *tables {
	c := newTables()
	for k, v := range t.users {
		c.users[k] = v
	}
	for k, v := range t.subjects {
		c.subjects[k] = v
	}
	for k, v := range t.blocks {
		c.blocks[k] = v
	}
	for k, v := range t.questions {
		c.questions[k] = v
	}
	for k, v := range t.attempts {
		c.attempts[k] = v
	}
	for k, v := range t.answers {
		c.answers[k] = v
	}
	for k, v := range t.seq {
		c.seq[k] = v
	}
	c.nextSeq = t.nextSeq
	return c
}

// Store owns the data. Every repository method takes the store lock unless
// it runs inside Transaction, which holds the lock for the whole unit.
type Store struct {
	mu    sync.Mutex
	data  *tables
	fails map[string]error
	now   func() time.Time
}

func New() *Store {
	return &Store{data: newTables(), fails: map[string]error{}, now: time.Now}
}

// FailOn makes the named repository method return err until cleared with a
// nil err.
func (s *Store) FailOn(method string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err == nil {
		delete(s.fails, method)
		return
	}
	s.fails[method] = err
}

// Repository returns a quiz.QuizRepository view of the store.
func (s *Store) Repository() quiz.QuizRepository {
	return &repo{s: s}
}

// Users returns a user.UserRepository view of the store.
func (s *Store) Users() user.UserRepository {
	return &repo{s: s}
}

type repo struct {
	s    *Store
	inTx bool
}

func (r *repo) lock() func() {
	if r.inTx {
		return func() {}
	}
	r.s.mu.Lock()
	return r.s.mu.Unlock
}

func (r *repo) fail(method string) error {
	return r.s.fails[method]
}

func (r *repo) Transaction(ctx context.Context, fn func(tx quiz.QuizRepository) error) error {
	if r.inTx {
		return fn(r)
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	snapshot := r.s.data.clone()
	if err := fn(&repo{s: r.s, inTx: true}); err != nil {
		r.s.data = snapshot
		return err
	}
	return nil
}

func (r *repo) FindByID(_ context.Context, id uuid.UUID) (*user.User, error) {
	defer r.lock()()
	u, ok := r.s.data.users[id]
	if !ok {
		return nil, user.ErrUserNotFound
	}
	return &u, nil
}

func (r *repo) ListSubjects(context.Context) ([]quiz.Subject, error) {
	defer r.lock()()
	out := make([]quiz.Subject, 0, len(r.s.data.subjects))
	for _, s := range r.s.data.subjects {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (r *repo) FindSubject(_ context.Context, id uuid.UUID) (*quiz.Subject, error) {
	defer r.lock()()
	s, ok := r.s.data.subjects[id]
	if !ok {
		return nil, quiz.ErrSubjectNotFound
	}
	return &s, nil
}

func (r *repo) FindBlock(_ context.Context, id uuid.UUID) (*quiz.QuizBlock, error) {
	defer r.lock()()
	b, ok := r.s.data.blocks[id]
	if !ok {
		return nil, quiz.ErrBlockNotFound
	}
	return &b, nil
}

func (r *repo) ListBlocks(_ context.Context, subjectID *uuid.UUID, onlyActive bool) ([]quiz.QuizBlock, error) {
	defer r.lock()()
	out := []quiz.QuizBlock{}
	for _, b := range r.s.data.blocks {
		if subjectID != nil && b.SubjectID != *subjectID {
			continue
		}
		if onlyActive && !b.IsActive {
			continue
		}
		out = append(out, b)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].OrderIndex < out[j].OrderIndex })
	return out, nil
}

func (r *repo) CreateBlock(_ context.Context, b *quiz.QuizBlock) error {
	defer r.lock()()
	if err := r.fail("CreateBlock"); err != nil {
		return err
	}
	if b.ID == uuid.Nil {
		b.ID = uuid.New()
	}
	now := r.s.now()
	b.CreatedAt, b.UpdatedAt = now, now
	r.s.data.blocks[b.ID] = *b
	return nil
}

func (r *repo) UpdateBlock(_ context.Context, b *quiz.QuizBlock) error {
	defer r.lock()()
	if _, ok := r.s.data.blocks[b.ID]; !ok {
		return quiz.ErrBlockNotFound
	}
	b.UpdatedAt = r.s.now()
	r.s.data.blocks[b.ID] = *b
	return nil
}

func (r *repo) RefreshBlockStats(_ context.Context, blockID uuid.UUID) error {
	defer r.lock()()
	if err := r.fail("RefreshBlockStats"); err != nil {
		return err
	}
	b, ok := r.s.data.blocks[blockID]
	if !ok {
		return quiz.ErrBlockNotFound
	}
	var sum float64
	var n int
	for _, a := range r.s.data.attempts {
		if a.BlockID != nil && *a.BlockID == blockID && a.IsCompleted {
			sum += a.Score
			n++
		}
	}
	b.AverageScore = 0
	if n > 0 {
		b.AverageScore = sum / float64(n)
	}
	b.AttemptCount++
	b.UpdatedAt = r.s.now()
	r.s.data.blocks[blockID] = b
	return nil
}

func (r *repo) FindQuestion(_ context.Context, id uuid.UUID) (*quiz.QuizQuestion, error) {
	defer r.lock()()
	q, ok := r.s.data.questions[id]
	if !ok {
		return nil, quiz.ErrQuestionNotFound
	}
	return &q, nil
}

func (r *repo) sortedQuestions(keep func(q quiz.QuizQuestion) bool, byOrderIndex bool) []quiz.QuizQuestion {
	out := []quiz.QuizQuestion{}
	for _, q := range r.s.data.questions {
		if keep(q) {
			out = append(out, q)
		}
	}
	seq := r.s.data.seq
	sort.Slice(out, func(i, j int) bool {
		if byOrderIndex && out[i].OrderIndex != out[j].OrderIndex {
			return out[i].OrderIndex < out[j].OrderIndex
		}
		return seq[out[i].ID] < seq[out[j].ID]
	})
	return out
}

func (r *repo) ListQuestions(_ context.Context, filter quiz.QuestionFilter) ([]quiz.QuizQuestion, error) {
	defer r.lock()()
	return r.sortedQuestions(func(q quiz.QuizQuestion) bool {
		if filter.SubjectID != nil && q.SubjectID != *filter.SubjectID {
			return false
		}
		if filter.BlockID != nil && (q.BlockID == nil || *q.BlockID != *filter.BlockID) {
			return false
		}
		return true
	}, true), nil
}

func (r *repo) ListActiveSubjectQuestions(_ context.Context, subjectID uuid.UUID, limit int) ([]quiz.QuizQuestion, error) {
	defer r.lock()()
	out := r.sortedQuestions(func(q quiz.QuizQuestion) bool {
		return q.SubjectID == subjectID && q.IsActive
	}, false)
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *repo) ListActiveBlockQuestions(_ context.Context, blockID uuid.UUID) ([]quiz.QuizQuestion, error) {
	defer r.lock()()
	return r.sortedQuestions(func(q quiz.QuizQuestion) bool {
		return q.BlockID != nil && *q.BlockID == blockID && q.IsActive
	}, true), nil
}

func (r *repo) CountBlockQuestions(_ context.Context, blockID uuid.UUID) (int64, error) {
	defer r.lock()()
	var n int64
	for _, q := range r.s.data.questions {
		if q.BlockID != nil && *q.BlockID == blockID {
			n++
		}
	}
	return n, nil
}

func (r *repo) FindQuestionsByIDs(_ context.Context, ids []uuid.UUID) ([]quiz.QuizQuestion, error) {
	defer r.lock()()
	out := make([]quiz.QuizQuestion, 0, len(ids))
	for _, id := range ids {
		if q, ok := r.s.data.questions[id]; ok {
			out = append(out, q)
		}
	}
	return out, nil
}

func (r *repo) CreateQuestion(_ context.Context, q *quiz.QuizQuestion) error {
	defer r.lock()()
	if err := r.fail("CreateQuestion"); err != nil {
		return err
	}
	if q.ID == uuid.Nil {
		q.ID = uuid.New()
	}
	now := r.s.now()
	q.CreatedAt, q.UpdatedAt = now, now
	r.s.data.questions[q.ID] = *q
	r.s.data.nextSeq++
	r.s.data.seq[q.ID] = r.s.data.nextSeq
	return nil
}

func (r *repo) UpdateQuestion(_ context.Context, q *quiz.QuizQuestion) error {
	defer r.lock()()
	if _, ok := r.s.data.questions[q.ID]; !ok {
		return quiz.ErrQuestionNotFound
	}
	q.UpdatedAt = r.s.now()
	r.s.data.questions[q.ID] = *q
	return nil
}

func (r *repo) IncrementShowCount(_ context.Context, ids []uuid.UUID) error {
	defer r.lock()()
	if err := r.fail("IncrementShowCount"); err != nil {
		return err
	}
	for _, id := range ids {
		if q, ok := r.s.data.questions[id]; ok {
			q.ShowCount++
			r.s.data.questions[id] = q
		}
	}
	return nil
}

func (r *repo) IncrementAnswerCounters(_ context.Context, correctIDs, wrongIDs []uuid.UUID) error {
	defer r.lock()()
	if err := r.fail("IncrementAnswerCounters"); err != nil {
		return err
	}
	for _, id := range correctIDs {
		if q, ok := r.s.data.questions[id]; ok {
			q.CorrectCount++
			r.s.data.questions[id] = q
		}
	}
	for _, id := range wrongIDs {
		if q, ok := r.s.data.questions[id]; ok {
			q.WrongCount++
			r.s.data.questions[id] = q
		}
	}
	return nil
}

func (r *repo) CreateAttempt(_ context.Context, a *quiz.QuizAttempt, answers []quiz.QuizAnswer) error {
	defer r.lock()()
	if err := r.fail("CreateAttempt"); err != nil {
		return err
	}
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	stored := *a
	stored.Subject, stored.Block, stored.Answers = nil, nil, nil
	r.s.data.attempts[a.ID] = stored

	if err := r.fail("CreateAnswers"); err != nil {
		return err
	}
	seen := map[uuid.UUID]bool{}
	for i := range answers {
		ans := answers[i]
		if seen[ans.QuestionID] {
			return quiz.ErrDuplicateAnswer
		}
		seen[ans.QuestionID] = true
		if ans.ID == uuid.Nil {
			ans.ID = uuid.New()
			answers[i].ID = ans.ID
		}
		ans.AttemptID = a.ID
		answers[i].AttemptID = a.ID
		ans.Question = nil
		r.s.data.answers[ans.ID] = ans
	}
	return nil
}

func (r *repo) attemptAnswers(attemptID uuid.UUID) []quiz.QuizAnswer {
	var out []quiz.QuizAnswer
	for _, ans := range r.s.data.answers {
		if ans.AttemptID == attemptID {
			out = append(out, ans)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Position < out[j].Position })
	return out
}

func (r *repo) join(a quiz.QuizAttempt, withAnswers bool) quiz.QuizAttempt {
	if a.SubjectID != nil {
		if s, ok := r.s.data.subjects[*a.SubjectID]; ok {
			a.Subject = &s
		}
	}
	if a.BlockID != nil {
		if b, ok := r.s.data.blocks[*a.BlockID]; ok {
			a.Block = &b
		}
	}
	if withAnswers {
		a.Answers = r.attemptAnswers(a.ID)
		for i := range a.Answers {
			if q, ok := r.s.data.questions[a.Answers[i].QuestionID]; ok {
				a.Answers[i].Question = &q
			}
		}
	}
	return a
}

func (r *repo) FindAttempt(_ context.Context, id uuid.UUID) (*quiz.QuizAttempt, error) {
	defer r.lock()()
	if err := r.fail("FindAttempt"); err != nil {
		return nil, err
	}
	a, ok := r.s.data.attempts[id]
	if !ok {
		return nil, quiz.ErrAttemptNotFound
	}
	joined := r.join(a, true)
	return &joined, nil
}

func (r *repo) UpdateAnswers(_ context.Context, attemptID uuid.UUID, answers []quiz.QuizAnswer) error {
	defer r.lock()()
	if err := r.fail("UpdateAnswers"); err != nil {
		return err
	}
	byQuestion := map[uuid.UUID]uuid.UUID{}
	for id, ans := range r.s.data.answers {
		if ans.AttemptID == attemptID {
			byQuestion[ans.QuestionID] = id
		}
	}
	for _, upd := range answers {
		id, ok := byQuestion[upd.QuestionID]
		if !ok {
			return quiz.ErrInvalidAnswers
		}
		row := r.s.data.answers[id]
		row.UserAnswer = upd.UserAnswer
		row.IsCorrect = upd.IsCorrect
		row.TimeSpent = upd.TimeSpent
		row.UpdatedAt = r.s.now()
		r.s.data.answers[id] = row
	}
	return nil
}

func (r *repo) CompleteAttempt(_ context.Context, a *quiz.QuizAttempt) error {
	defer r.lock()()
	if err := r.fail("CompleteAttempt"); err != nil {
		return err
	}
	stored, ok := r.s.data.attempts[a.ID]
	if !ok {
		return quiz.ErrAttemptNotFound
	}
	if stored.IsCompleted {
		return quiz.ErrAttemptCompleted
	}
	stored.CorrectAnswers = a.CorrectAnswers
	stored.WrongAnswers = a.WrongAnswers
	stored.SkippedAnswers = a.SkippedAnswers
	stored.Score = a.Score
	stored.TimeSpent = a.TimeSpent
	stored.CompletedAt = a.CompletedAt
	stored.IsCompleted = true
	r.s.data.attempts[a.ID] = stored
	return nil
}

func (r *repo) ListCompletedAttempts(_ context.Context, userID uuid.UUID, offset, limit int) ([]quiz.QuizAttempt, int64, error) {
	defer r.lock()()
	var all []quiz.QuizAttempt
	for _, a := range r.s.data.attempts {
		if a.UserID == userID && a.IsCompleted {
			all = append(all, a)
		}
	}
	sort.Slice(all, func(i, j int) bool { return all[i].CompletedAt.After(*all[j].CompletedAt) })

	total := int64(len(all))
	if offset < 0 {
		offset = 0
	}
	if offset >= len(all) {
		return []quiz.QuizAttempt{}, total, nil
	}
	end := offset + limit
	if limit <= 0 || end > len(all) || end < offset {
		end = len(all)
	}
	page := make([]quiz.QuizAttempt, 0, end-offset)
	for _, a := range all[offset:end] {
		page = append(page, r.join(a, false))
	}
	return page, total, nil
}

func (r *repo) DeleteAttemptsStartedBefore(_ context.Context, cutoff time.Time) (int64, int64, error) {
	defer r.lock()()
	if err := r.fail("DeleteAttemptsStartedBefore"); err != nil {
		return 0, 0, err
	}
	expired := map[uuid.UUID]bool{}
	for id, a := range r.s.data.attempts {
		if a.StartedAt.Before(cutoff) {
			expired[id] = true
		}
	}
	var answers int64
	for id, ans := range r.s.data.answers {
		if expired[ans.AttemptID] {
			delete(r.s.data.answers, id)
			answers++
		}
	}
	for id := range expired {
		delete(r.s.data.attempts, id)
	}
	return int64(len(expired)), answers, nil
}
