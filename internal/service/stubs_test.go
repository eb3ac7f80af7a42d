package service

import (
	"context"
	"errors"
	"sync"
	"testing"

	"stackit/internal/models"
	"stackit/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// questionRepoStub is a stub for repository.QuestionRepository.
type questionRepoStub struct {
	createFn         func(context.Context, *models.Question) error
	getByIDFn        func(context.Context, uint) (*models.Question, error)
	listFn           func(context.Context) ([]*models.Question, error)
	incrementLikesFn func(context.Context, uint) (*models.Question, error)
}

func (s *questionRepoStub) Create(ctx context.Context, q *models.Question) error {
	return s.createFn(ctx, q)
}
func (s *questionRepoStub) GetByID(ctx context.Context, id uint) (*models.Question, error) {
	return s.getByIDFn(ctx, id)
}
func (s *questionRepoStub) List(ctx context.Context) ([]*models.Question, error) {
	return s.listFn(ctx)
}
func (s *questionRepoStub) IncrementLikes(ctx context.Context, id uint) (*models.Question, error) {
	return s.incrementLikesFn(ctx, id)
}

func noopQuestionRepo() *questionRepoStub {
	return &questionRepoStub{
		createFn: func(_ context.Context, _ *models.Question) error { return nil },
		getByIDFn: func(_ context.Context, id uint) (*models.Question, error) {
			return &models.Question{ID: id}, nil
		},
		listFn: func(_ context.Context) ([]*models.Question, error) { return nil, nil },
		incrementLikesFn: func(_ context.Context, id uint) (*models.Question, error) {
			return &models.Question{ID: id, Likes: 1}, nil
		},
	}
}

// tagRepoStub is a stub for repository.TagRepository.
type tagRepoStub struct {
	findByNamesFn  func(context.Context, []string) ([]models.Tag, error)
	ensureTagsFn   func(context.Context, []string) (int, error)
	linkQuestionFn func(context.Context, uint, []uint) error
	directoryFn    func(context.Context) ([]repository.TagEntry, error)
}

func (s *tagRepoStub) FindByNames(ctx context.Context, names []string) ([]models.Tag, error) {
	return s.findByNamesFn(ctx, names)
}
func (s *tagRepoStub) EnsureTags(ctx context.Context, names []string) (int, error) {
	return s.ensureTagsFn(ctx, names)
}
func (s *tagRepoStub) LinkQuestion(ctx context.Context, questionID uint, tagIDs []uint) error {
	return s.linkQuestionFn(ctx, questionID, tagIDs)
}
func (s *tagRepoStub) Directory(ctx context.Context) ([]repository.TagEntry, error) {
	return s.directoryFn(ctx)
}

func noopTagRepo() *tagRepoStub {
	return &tagRepoStub{
		findByNamesFn:  func(_ context.Context, _ []string) ([]models.Tag, error) { return nil, nil },
		ensureTagsFn:   func(_ context.Context, _ []string) (int, error) { return 0, nil },
		linkQuestionFn: func(_ context.Context, _ uint, _ []uint) error { return nil },
		directoryFn:    func(_ context.Context) ([]repository.TagEntry, error) { return nil, nil },
	}
}

// answerRepoStub is a stub for repository.AnswerRepository.
type answerRepoStub struct {
	createFn         func(context.Context, *models.Answer) error
	getByIDFn        func(context.Context, uint) (*models.Answer, error)
	listByQuestionFn func(context.Context, uint) ([]*models.Answer, error)
	applyVoteFn      func(context.Context, uint, int) (*models.Answer, error)
	acceptFn         func(context.Context, uint, uint) error
}

func (s *answerRepoStub) Create(ctx context.Context, a *models.Answer) error {
	return s.createFn(ctx, a)
}
func (s *answerRepoStub) GetByID(ctx context.Context, id uint) (*models.Answer, error) {
	return s.getByIDFn(ctx, id)
}
func (s *answerRepoStub) ListByQuestion(ctx context.Context, questionID uint) ([]*models.Answer, error) {
	return s.listByQuestionFn(ctx, questionID)
}
func (s *answerRepoStub) ApplyVote(ctx context.Context, id uint, delta int) (*models.Answer, error) {
	return s.applyVoteFn(ctx, id, delta)
}
func (s *answerRepoStub) Accept(ctx context.Context, questionID, answerID uint) error {
	return s.acceptFn(ctx, questionID, answerID)
}

func noopAnswerRepo() *answerRepoStub {
	return &answerRepoStub{
		createFn: func(_ context.Context, _ *models.Answer) error { return nil },
		getByIDFn: func(_ context.Context, id uint) (*models.Answer, error) {
			return &models.Answer{ID: id}, nil
		},
		listByQuestionFn: func(_ context.Context, _ uint) ([]*models.Answer, error) { return nil, nil },
		applyVoteFn: func(_ context.Context, id uint, _ int) (*models.Answer, error) {
			return &models.Answer{ID: id}, nil
		},
		acceptFn: func(_ context.Context, _, _ uint) error { return nil },
	}
}

// noticeRepoStub records pushed notices in memory.
type noticeRepoStub struct {
	mu      sync.Mutex
	pushed  map[uint][]models.Notice
	pushErr error
	nextID  uint
}

func newNoticeRepoStub() *noticeRepoStub {
	return &noticeRepoStub{pushed: make(map[uint][]models.Notice)}
}

func (s *noticeRepoStub) Push(_ context.Context, userID uint, n *models.Notice) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.pushErr != nil {
		return s.pushErr
	}
	s.nextID++
	n.ID = s.nextID
	s.pushed[userID] = append(s.pushed[userID], *n)
	return nil
}
func (s *noticeRepoStub) ListForUser(_ context.Context, userID uint) ([]models.Notice, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]models.Notice{}, s.pushed[userID]...), nil
}
func (s *noticeRepoStub) MarkRead(_ context.Context, userID, noticeID uint) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.pushed[userID] {
		if s.pushed[userID][i].ID == noticeID {
			s.pushed[userID][i].Read = true
			return nil
		}
	}
	return models.NewNotFoundError("Notice", noticeID)
}
func (s *noticeRepoStub) MarkAllRead(_ context.Context, userID uint) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var n int64
	for i := range s.pushed[userID] {
		if !s.pushed[userID][i].Read {
			s.pushed[userID][i].Read = true
			n++
		}
	}
	return n, nil
}

func (s *noticeRepoStub) total() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, list := range s.pushed {
		n += len(list)
	}
	return n
}

func (s *noticeRepoStub) forUser(userID uint) []models.Notice {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]models.Notice{}, s.pushed[userID]...)
}

// publisherStub captures realtime deliveries.
type publisherStub struct {
	mu     sync.Mutex
	events map[uint][]any
	err    error
}

func (p *publisherStub) PublishNotice(_ context.Context, userID uint, payload any) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.events == nil {
		p.events = make(map[uint][]any)
	}
	p.events[userID] = append(p.events[userID], payload)
	return p.err
}

func assertCode(t *testing.T, err error, code string) {
	t.Helper()
	require.Error(t, err)
	var appErr *models.AppError
	require.True(t, errors.As(err, &appErr), "expected AppError, got %T: %v", err, err)
	assert.Equal(t, code, appErr.Code)
}

func assertValidationError(t *testing.T, err error) {
	t.Helper()
	assertCode(t, err, models.CodeValidation)
}
