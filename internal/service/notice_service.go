package service

import (
	"context"
	"log/slog"
	"time"

	"stackit/internal/featureflags"
	"stackit/internal/middleware"
	"stackit/internal/models"
	"stackit/internal/observability"
	"stackit/internal/repository"
)

// NoticePublisher delivers a stored notice to the recipient's live streams.
type NoticePublisher interface {
	PublishNotice(ctx context.Context, userID uint, payload any) error
}

// NoticeService appends notices to users' boxes and serves them back.
type NoticeService struct {
	repo      repository.NoticeRepository
	publisher NoticePublisher
	flags     *featureflags.Manager
}

// NoticeInput describes one event to record in RecipientID's box.
type NoticeInput struct {
	RecipientID uint
	NotifierID  uint
	Kind        string
	QuestionID  uint
	AnswerID    *uint
}

// NoticeEvent is the realtime payload for a freshly stored notice.
type NoticeEvent struct {
	ID         uint      `json:"id"`
	Kind       string    `json:"kind"`
	QuestionID uint      `json:"questionId"`
	AnswersID  *uint     `json:"answersId"`
	NotifierID uint      `json:"notifierId"`
	Read       bool      `json:"read"`
	CreatedAt  time.Time `json:"createdAt"`
}

// NewNoticeService creates a NoticeService; publisher and flags may be nil.
func NewNoticeService(repo repository.NoticeRepository, publisher NoticePublisher, flags *featureflags.Manager) *NoticeService {
	return &NoticeService{repo: repo, publisher: publisher, flags: flags}
}

// Push records a notice. Failures are logged and counted, never returned: the
// operation that triggered the notice has already succeeded.
func (s *NoticeService) Push(ctx context.Context, in NoticeInput) {
	logger := middleware.Logger.With(
		slog.String("kind", in.Kind),
		slog.Uint64("recipient_id", uint64(in.RecipientID)),
		slog.Uint64("question_id", uint64(in.QuestionID)),
	)

	if !models.ValidNoticeKind(in.Kind) || in.RecipientID == 0 || in.QuestionID == 0 {
		observability.NoticesTotal.WithLabelValues(in.Kind, observability.NoticeFailed).Inc()
		logger.ErrorContext(ctx, "rejected malformed notice")
		return
	}

	notice := &models.Notice{
		Kind:       in.Kind,
		QuestionID: in.QuestionID,
		AnswerID:   in.AnswerID,
		NotifierID: in.NotifierID,
	}
	if err := s.repo.Push(ctx, in.RecipientID, notice); err != nil {
		observability.NoticesTotal.WithLabelValues(in.Kind, observability.NoticeFailed).Inc()
		logger.ErrorContext(ctx, "failed to push notice", slog.String("error", err.Error()))
		return
	}
	observability.NoticesTotal.WithLabelValues(in.Kind, observability.NoticeDelivered).Inc()

	if s.publisher == nil || !s.flags.Enabled(featureflags.RealtimeNotices, in.RecipientID) {
		return
	}
	event := NoticeEvent{
		ID:         notice.ID,
		Kind:       notice.Kind,
		QuestionID: notice.QuestionID,
		AnswersID:  notice.AnswerID,
		NotifierID: notice.NotifierID,
		Read:       notice.Read,
		CreatedAt:  notice.CreatedAt,
	}
	if err := s.publisher.PublishNotice(ctx, in.RecipientID, event); err != nil {
		logger.WarnContext(ctx, "failed to publish realtime notice", slog.String("error", err.Error()))
	}
}

// ListNotices returns the user's notices; a user who never received one gets an empty list.
func (s *NoticeService) ListNotices(ctx context.Context, userID uint) ([]NoticeView, error) {
	notices, err := s.repo.ListForUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	out := make([]NoticeView, 0, len(notices))
	for _, n := range notices {
		out = append(out, noticeView(n))
	}
	return out, nil
}

func (s *NoticeService) MarkRead(ctx context.Context, userID, noticeID uint) error {
	return s.repo.MarkRead(ctx, userID, noticeID)
}

func (s *NoticeService) MarkAllRead(ctx context.Context, userID uint) (int64, error) {
	return s.repo.MarkAllRead(ctx, userID)
}
