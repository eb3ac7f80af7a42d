package service

import (
	"context"
	"errors"
	"testing"

	"stackit/internal/featureflags"
	"stackit/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNoticeService_PushPublishesRealtime(t *testing.T) {
	t.Parallel()

	repo := newNoticeRepoStub()
	pub := &publisherStub{}
	svc := NewNoticeService(repo, pub, featureflags.NewManager(""))

	answerID := uint(8)
	svc.Push(context.Background(), NoticeInput{
		RecipientID: 1, NotifierID: 2, Kind: models.NoticeKindAnswer, QuestionID: 4, AnswerID: &answerID,
	})

	require.Len(t, repo.forUser(1), 1)
	require.Len(t, pub.events[1], 1)
	event := pub.events[1][0].(NoticeEvent)
	assert.Equal(t, models.NoticeKindAnswer, event.Kind)
	assert.Equal(t, uint(4), event.QuestionID)
	assert.Equal(t, &answerID, event.AnswersID)
}

func TestNoticeService_PushRespectsRealtimeFlag(t *testing.T) {
	t.Parallel()

	repo := newNoticeRepoStub()
	pub := &publisherStub{}
	svc := NewNoticeService(repo, pub, featureflags.NewManager("realtime_notices=off"))

	svc.Push(context.Background(), NoticeInput{RecipientID: 1, NotifierID: 2, Kind: models.NoticeKindLike, QuestionID: 4})
	assert.Len(t, repo.forUser(1), 1)
	assert.Empty(t, pub.events)
}

func TestNoticeService_PushSwallowsFailures(t *testing.T) {
	t.Parallel()

	repo := newNoticeRepoStub()
	repo.pushErr = errors.New("write failed")
	pub := &publisherStub{}
	svc := NewNoticeService(repo, pub, featureflags.NewManager(""))

	assert.NotPanics(t, func() {
		svc.Push(context.Background(), NoticeInput{RecipientID: 1, NotifierID: 2, Kind: models.NoticeKindVote, QuestionID: 4})
	})
	assert.Empty(t, pub.events, "failed notices are not published")

	repo.pushErr = nil
	pub.err = errors.New("redis down")
	svc.Push(context.Background(), NoticeInput{RecipientID: 1, NotifierID: 2, Kind: models.NoticeKindVote, QuestionID: 4})
	assert.Len(t, repo.forUser(1), 1)
}

func TestNoticeService_PushRejectsMalformedInput(t *testing.T) {
	t.Parallel()

	repo := newNoticeRepoStub()
	svc := NewNoticeService(repo, nil, nil)

	svc.Push(context.Background(), NoticeInput{RecipientID: 1, Kind: "poke", QuestionID: 4})
	svc.Push(context.Background(), NoticeInput{Kind: models.NoticeKindLike, QuestionID: 4})
	svc.Push(context.Background(), NoticeInput{RecipientID: 1, Kind: models.NoticeKindLike})
	assert.Zero(t, repo.total())
}

func TestNoticeService_ListAndMarkRead(t *testing.T) {
	t.Parallel()

	repo := newNoticeRepoStub()
	svc := NewNoticeService(repo, nil, nil)
	ctx := context.Background()

	empty, err := svc.ListNotices(ctx, 1)
	require.NoError(t, err)
	assert.NotNil(t, empty)
	assert.Empty(t, empty)

	answerID := uint(3)
	svc.Push(ctx, NoticeInput{RecipientID: 1, NotifierID: 2, Kind: models.NoticeKindAnswer, QuestionID: 4, AnswerID: &answerID})
	svc.Push(ctx, NoticeInput{RecipientID: 1, NotifierID: 2, Kind: models.NoticeKindLike, QuestionID: 4})

	list, err := svc.ListNotices(ctx, 1)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, &NoticeTarget{ID: 4}, list[0].QuestionID)
	assert.Equal(t, &NoticeTarget{ID: 3}, list[0].AnswersID)
	assert.Nil(t, list[1].AnswersID)
	assert.Equal(t, "Unknown", list[1].Notifier.Username)

	require.NoError(t, svc.MarkRead(ctx, 1, list[0].ID))
	assertCode(t, svc.MarkRead(ctx, 2, list[0].ID), models.CodeNotFound)

	n, err := svc.MarkAllRead(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
}
