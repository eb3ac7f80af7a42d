package service

import (
	"context"
	"strings"
	"time"

	"stackit/internal/featureflags"
	"stackit/internal/models"
	"stackit/internal/observability"
	"stackit/internal/repository"
	"stackit/internal/validation"
)

type QuestionService struct {
	questionRepo repository.QuestionRepository
	tagRepo      repository.TagRepository
	answerRepo   repository.AnswerRepository
	notices      *NoticeService
	flags        *featureflags.Manager
	now          func() time.Time
}

type CreateQuestionInput struct {
	AuthorID    uint
	Title       string
	Description string
	Tags        []string
}

type LikeQuestionInput struct {
	UserID     uint
	QuestionID uint
}

func NewQuestionService(
	questionRepo repository.QuestionRepository,
	tagRepo repository.TagRepository,
	answerRepo repository.AnswerRepository,
	notices *NoticeService,
	flags *featureflags.Manager,
) *QuestionService {
	return &QuestionService{
		questionRepo: questionRepo,
		tagRepo:      tagRepo,
		answerRepo:   answerRepo,
		notices:      notices,
		flags:        flags,
		now:          time.Now,
	}
}

// CreateQuestion stores a question under the directory's canonical tag names.
// Unknown tags reject the whole submission before anything is written.
func (s *QuestionService) CreateQuestion(ctx context.Context, in CreateQuestionInput) (*QuestionRecord, error) {
	ctx = repository.UsePrimary(ctx)
	fields, err := validation.NormalizeQuestion(in.Title, in.Description, in.Tags)
	if err != nil {
		return nil, models.NewValidationError(err.Error())
	}

	tags, err := s.tagRepo.FindByNames(ctx, fields.Tags)
	if err != nil {
		return nil, err
	}
	if missing := missingTags(fields.Tags, tags); len(missing) > 0 {
		return nil, models.NewInvalidTagError(missing)
	}

	question := &models.Question{
		Title:       fields.Title,
		Description: fields.Description,
		AuthorID:    in.AuthorID,
	}
	if err := s.questionRepo.Create(ctx, question); err != nil {
		return nil, err
	}
	observability.QuestionsCreated.Inc()

	tagIDs := make([]uint, 0, len(tags))
	for _, t := range tags {
		tagIDs = append(tagIDs, t.ID)
	}
	if err := s.tagRepo.LinkQuestion(ctx, question.ID, tagIDs); err != nil {
		return nil, err
	}

	stored, err := s.questionRepo.GetByID(ctx, question.ID)
	if err != nil {
		return nil, err
	}
	record := questionRecord(stored)
	return &record, nil
}

// missingTags returns the requested names with no case-insensitive match in found.
func missingTags(requested []string, found []models.Tag) []string {
	known := make(map[string]bool, len(found))
	for _, t := range found {
		known[strings.ToLower(t.Name)] = true
	}
	var missing []string
	for _, name := range requested {
		if !known[strings.ToLower(name)] {
			missing = append(missing, name)
		}
	}
	return missing
}

// ListQuestions returns every question newest first, projected for the listing page.
func (s *QuestionService) ListQuestions(ctx context.Context) ([]QuestionSummary, error) {
	questions, err := s.questionRepo.List(ctx)
	if err != nil {
		return nil, err
	}

	now := s.now()
	out := make([]QuestionSummary, 0, len(questions))
	for _, q := range questions {
		name := displayName(q.Author.Username)
		rank := q.Author.Rank
		if rank == "" {
			rank = models.RankNewbie
		}
		out = append(out, QuestionSummary{
			ID:      q.ID,
			Title:   q.Title,
			Excerpt: Excerpt(PlainText(q.Description), excerptLen),
			Tags:    q.TagNames(),
			Author: AuthorBadge{
				Name:   name,
				Avatar: Initials(q.Author.Username),
				Rank:   rank,
			},
			Answers:           q.AnswerCount,
			Votes:             q.Likes,
			Views:             q.AnswerCount + q.Likes,
			CreatedAt:         RelativeTime(q.CreatedAt, now),
			HasAcceptedAnswer: q.HasAcceptedAnswer(),
		})
	}
	return out, nil
}

// GetQuestionDetail returns the question with its answers ranked accepted-first,
// then by votes, then newest.
func (s *QuestionService) GetQuestionDetail(ctx context.Context, id uint) (*QuestionDetail, error) {
	q, err := s.questionRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	list, err := s.answerRepo.ListByQuestion(ctx, id)
	if err != nil {
		return nil, err
	}

	detail := &QuestionDetail{
		Question: QuestionDetailHead{
			ID:               q.ID,
			Title:            q.Title,
			Description:      PlainText(q.Description),
			Author:           displayName(q.Author.Username),
			CreatedAt:        q.CreatedAt,
			Tags:             q.TagNames(),
			AnswerCount:      len(list),
			Likes:            q.Likes,
			AcceptedAnswerID: q.AcceptedAnswerID,
		},
		Answers: make([]AnswerDetailEntry, 0, len(list)),
	}
	for _, a := range list {
		detail.Answers = append(detail.Answers, AnswerDetailEntry{
			ID:         a.ID,
			Content:    PlainText(a.Content),
			Author:     displayName(a.Author.Username),
			CreatedAt:  a.CreatedAt,
			Votes:      a.Votes,
			IsAccepted: a.IsAccepted,
		})
	}
	return detail, nil
}

// ListTags returns the tag directory with each tag's question ids.
func (s *QuestionService) ListTags(ctx context.Context) ([]repository.TagEntry, error) {
	return s.tagRepo.Directory(ctx)
}

// LikeQuestion adds one like and returns the new count. Likes are not deduplicated.
func (s *QuestionService) LikeQuestion(ctx context.Context, in LikeQuestionInput) (int, error) {
	q, err := s.questionRepo.IncrementLikes(ctx, in.QuestionID)
	if err != nil {
		return 0, err
	}
	observability.LikesTotal.Inc()

	if s.notices != nil && q.AuthorID != in.UserID {
		if s.flags.Enabled(featureflags.LikeNotices, q.AuthorID) {
			s.notices.Push(ctx, NoticeInput{
				RecipientID: q.AuthorID,
				NotifierID:  in.UserID,
				Kind:        models.NoticeKindLike,
				QuestionID:  q.ID,
			})
		} else {
			observability.NoticesTotal.WithLabelValues(models.NoticeKindLike, observability.NoticeSkipped).Inc()
		}
	}
	return q.Likes, nil
}
