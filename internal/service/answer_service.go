package service

import (
	"context"
	"strings"

	"stackit/internal/models"
	"stackit/internal/observability"
	"stackit/internal/repository"
	"stackit/internal/validation"

	"go.opentelemetry.io/otel/attribute"
)

type AnswerService struct {
	answerRepo   repository.AnswerRepository
	questionRepo repository.QuestionRepository
	notices      *NoticeService
}

type CreateAnswerInput struct {
	AuthorID   uint
	QuestionID uint
	Content    string
}

type VoteInput struct {
	UserID   uint
	AnswerID uint
	VoteType string
}

type ApproveInput struct {
	UserID   uint
	AnswerID uint
}

func NewAnswerService(
	answerRepo repository.AnswerRepository,
	questionRepo repository.QuestionRepository,
	notices *NoticeService,
) *AnswerService {
	return &AnswerService{
		answerRepo:   answerRepo,
		questionRepo: questionRepo,
		notices:      notices,
	}
}

func (s *AnswerService) notify(ctx context.Context, in NoticeInput) {
	if s.notices == nil || in.RecipientID == in.NotifierID {
		return
	}
	s.notices.Push(ctx, in)
}

// CreateAnswer posts an answer and tells the question's author about it.
func (s *AnswerService) CreateAnswer(ctx context.Context, in CreateAnswerInput) (*AnswerRecord, error) {
	ctx = repository.UsePrimary(ctx)
	if strings.TrimSpace(in.Content) == "" || in.QuestionID == 0 {
		return nil, models.NewValidationError(validation.MsgAnswerFieldsRequired)
	}

	question, err := s.questionRepo.GetByID(ctx, in.QuestionID)
	if err != nil {
		return nil, err
	}

	answer := &models.Answer{
		Content:    in.Content,
		AuthorID:   in.AuthorID,
		QuestionID: question.ID,
	}
	if err := s.answerRepo.Create(ctx, answer); err != nil {
		return nil, err
	}
	observability.AnswersCreated.Inc()

	s.notify(ctx, NoticeInput{
		RecipientID: question.AuthorID,
		NotifierID:  in.AuthorID,
		Kind:        models.NoticeKindAnswer,
		QuestionID:  question.ID,
		AnswerID:    &answer.ID,
	})

	stored, err := s.answerRepo.GetByID(ctx, answer.ID)
	if err != nil {
		return nil, err
	}
	record := answerRecord(stored)
	return &record, nil
}

// Vote moves an answer's score by one, never below zero. Only upvotes from
// someone other than the author produce a notice.
func (s *AnswerService) Vote(ctx context.Context, in VoteInput) (result *VoteResult, err error) {
	ctx, span := observability.StartServiceSpan(ctx, "AnswerService", "Vote",
		attribute.Int64("answer.id", int64(in.AnswerID)),
		attribute.String("vote.type", in.VoteType),
	)
	defer func() { span.End(err) }()

	delta, ok := models.VoteDelta(in.VoteType)
	if !ok {
		return nil, models.NewValidationError(validation.MsgInvalidVoteType)
	}

	answer, err := s.answerRepo.ApplyVote(ctx, in.AnswerID, delta)
	if err != nil {
		return nil, err
	}
	observability.VotesTotal.WithLabelValues(in.VoteType).Inc()
	span.AddAttributes(attribute.Int("answer.votes", answer.Votes))

	if in.VoteType == models.VoteUp {
		s.notify(ctx, NoticeInput{
			RecipientID: answer.AuthorID,
			NotifierID:  in.UserID,
			Kind:        models.NoticeKindVote,
			QuestionID:  answer.QuestionID,
			AnswerID:    &answer.ID,
		})
	}

	return &VoteResult{Votes: answer.Votes, Answer: answerRecord(answer)}, nil
}

// Approve makes the answer the question's single accepted answer. Only the
// question's author may approve.
func (s *AnswerService) Approve(ctx context.Context, in ApproveInput) (acceptedID uint, err error) {
	ctx, span := observability.StartServiceSpan(ctx, "AnswerService", "Approve",
		attribute.Int64("answer.id", int64(in.AnswerID)),
		attribute.Int64("user.id", int64(in.UserID)),
	)
	defer func() { span.End(err) }()
	ctx = repository.UsePrimary(ctx)

	answer, err := s.answerRepo.GetByID(ctx, in.AnswerID)
	if err != nil {
		return 0, err
	}
	question, err := s.questionRepo.GetByID(ctx, answer.QuestionID)
	if err != nil {
		return 0, err
	}
	if question.AuthorID != in.UserID {
		return 0, models.NewForbiddenError("Only the question author can approve an answer")
	}

	if err := s.answerRepo.Accept(ctx, question.ID, answer.ID); err != nil {
		return 0, err
	}
	observability.AnswersAccepted.Inc()

	s.notify(ctx, NoticeInput{
		RecipientID: answer.AuthorID,
		NotifierID:  in.UserID,
		Kind:        models.NoticeKindAccept,
		QuestionID:  question.ID,
		AnswerID:    &answer.ID,
	})
	return answer.ID, nil
}

// GetAnswer returns the answer together with its question.
func (s *AnswerService) GetAnswer(ctx context.Context, id uint) (*AnswerLookup, error) {
	answer, err := s.answerRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	question, err := s.questionRepo.GetByID(ctx, answer.QuestionID)
	if err != nil {
		return nil, err
	}
	return &AnswerLookup{
		Answer: answerRecord(answer),
		Question: QuestionBrief{
			ID:               question.ID,
			Title:            question.Title,
			Description:      question.Description,
			AuthorID:         question.AuthorID,
			AcceptedAnswerID: question.AcceptedAnswerID,
		},
	}, nil
}
