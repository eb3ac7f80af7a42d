package repository

import (
	"context"
	"testing"

	"stackit/internal/database"
	"stackit/internal/models"
	"stackit/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type fixture struct {
	db        *gorm.DB
	users     UserRepository
	tags      TagRepository
	questions QuestionRepository
	answers   AnswerRepository
	notices   NoticeRepository
}

func newFixture(t *testing.T) *fixture {
	db := testutil.NewSQLiteDB(t)
	return &fixture{
		db:        db,
		users:     NewUserRepository(db),
		tags:      NewTagRepository(db),
		questions: NewQuestionRepository(db),
		answers:   NewAnswerRepository(db),
		notices:   NewNoticeRepository(db),
	}
}

func (f *fixture) question(t *testing.T, author *models.User, title string, tags ...models.Tag) *models.Question {
	t.Helper()
	q := &models.Question{Title: title, Description: "<p>" + title + "</p>", AuthorID: author.ID}
	require.NoError(t, f.questions.Create(context.Background(), q))
	ids := make([]uint, 0, len(tags))
	for _, tag := range tags {
		ids = append(ids, tag.ID)
	}
	require.NoError(t, f.tags.LinkQuestion(context.Background(), q.ID, ids))
	return q
}

func (f *fixture) answer(t *testing.T, author *models.User, q *models.Question, content string) *models.Answer {
	t.Helper()
	a := &models.Answer{Content: content, AuthorID: author.ID, QuestionID: q.ID}
	require.NoError(t, f.answers.Create(context.Background(), a))
	return a
}

func TestUserRepository_CreateConflictAndLookups(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	ada := testutil.CreateUser(t, f.db, "ada", "Secret-pass-123")

	dup := &models.User{Username: "ada", Email: "other@example.com", Password: "x"}
	err := f.users.Create(ctx, dup)
	require.Error(t, err)
	assert.Equal(t, models.CodeConflict, models.CodeOf(err))

	byEmail, err := f.users.GetByEmail(ctx, ada.Email)
	require.NoError(t, err)
	require.NotNil(t, byEmail)
	assert.Equal(t, ada.ID, byEmail.ID)

	missing, err := f.users.GetByUsername(ctx, "nobody")
	assert.NoError(t, err)
	assert.Nil(t, missing)
}

func TestUserRepository_UpdateRankAndOwnedContent(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	ada := testutil.CreateUser(t, f.db, "ada", "Secret-pass-123")
	bob := testutil.CreateUser(t, f.db, "bob", "Secret-pass-123")

	updated, err := f.users.UpdateRank(ctx, ada.ID, models.RankGuru)
	require.NoError(t, err)
	assert.Equal(t, models.RankGuru, updated.Rank)

	_, err = f.users.UpdateRole(ctx, 9999, models.RoleAdmin)
	assert.Equal(t, models.CodeNotFound, models.CodeOf(err))

	q1 := f.question(t, ada, "first")
	q2 := f.question(t, ada, "second")
	a := f.answer(t, ada, f.question(t, bob, "bob asks"), "ada answers")

	qs, as, err := f.users.OwnedContent(ctx, ada.ID)
	require.NoError(t, err)
	assert.Equal(t, []uint{q1.ID, q2.ID}, qs)
	assert.Equal(t, []uint{a.ID}, as)

	qs, as, err = f.users.OwnedContent(ctx, 4242)
	require.NoError(t, err)
	assert.Empty(t, qs)
	assert.Empty(t, as)
}

func TestTagRepository_CaseInsensitiveLookupAndEnsure(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	created, err := f.tags.EnsureTags(ctx, []string{"React", "Node.js", "react", " "})
	require.NoError(t, err)
	assert.Equal(t, 2, created)

	created, err = f.tags.EnsureTags(ctx, []string{"REACT", "Docker"})
	require.NoError(t, err)
	assert.Equal(t, 1, created)

	found, err := f.tags.FindByNames(ctx, []string{"react", "NODE.JS", "rust"})
	require.NoError(t, err)
	require.Len(t, found, 2)
	assert.Equal(t, "React", found[0].Name)
	assert.Equal(t, "Node.js", found[1].Name)
}

func TestTagRepository_LinkQuestionIsSetAdd(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	ada := testutil.CreateUser(t, f.db, "ada", "Secret-pass-123")
	tags := testutil.CreateTags(t, f.db, "Go", "SQL", "Unused")
	q := f.question(t, ada, "joins", tags[0], tags[1])

	require.NoError(t, f.tags.LinkQuestion(ctx, q.ID, []uint{tags[0].ID}))

	dir, err := f.tags.Directory(ctx)
	require.NoError(t, err)
	require.Len(t, dir, 3)
	assert.Equal(t, "Go", dir[0].Name)
	assert.Equal(t, []uint{q.ID}, dir[0].Questions)
	assert.Equal(t, []uint{q.ID}, dir[1].Questions)
	assert.Equal(t, []uint{}, dir[2].Questions)
}

func TestQuestionRepository_DetailsAndListing(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	ada := testutil.CreateUser(t, f.db, "ada", "Secret-pass-123")
	bob := testutil.CreateUser(t, f.db, "bob", "Secret-pass-123")
	tags := testutil.CreateTags(t, f.db, "JavaScript", "CSS")

	older := f.question(t, ada, "older", tags[1], tags[0])
	newer := f.question(t, bob, "newer", tags[0])
	f.answer(t, bob, older, "one")
	f.answer(t, ada, older, "two")

	got, err := f.questions.GetByID(ctx, older.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, got.AnswerCount)
	assert.Equal(t, "ada", got.Author.Username)
	assert.Equal(t, []string{"CSS", "JavaScript"}, got.TagNames())
	assert.False(t, got.HasAcceptedAnswer())

	list, err := f.questions.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, newer.ID, list[0].ID)
	assert.Equal(t, 0, list[0].AnswerCount)
	assert.Equal(t, 2, list[1].AnswerCount)

	_, err = f.questions.GetByID(ctx, 999)
	assert.Equal(t, models.CodeNotFound, models.CodeOf(err))
}

func TestQuestionRepository_IncrementLikes(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	ada := testutil.CreateUser(t, f.db, "ada", "Secret-pass-123")
	q := f.question(t, ada, "likeable")

	for i := 1; i <= 3; i++ {
		got, err := f.questions.IncrementLikes(ctx, q.ID)
		require.NoError(t, err)
		assert.Equal(t, i, got.Likes)
	}

	_, err := f.questions.IncrementLikes(ctx, 999)
	assert.Equal(t, models.CodeNotFound, models.CodeOf(err))
}

func TestAnswerRepository_VoteFloorsAtZero(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	ada := testutil.CreateUser(t, f.db, "ada", "Secret-pass-123")
	a := f.answer(t, ada, f.question(t, ada, "q"), "a")

	got, err := f.answers.ApplyVote(ctx, a.ID, -1)
	require.NoError(t, err)
	assert.Equal(t, 0, got.Votes)

	got, err = f.answers.ApplyVote(ctx, a.ID, 1)
	require.NoError(t, err)
	assert.Equal(t, 1, got.Votes)
	assert.Equal(t, "ada", got.Author.Username)

	got, err = f.answers.ApplyVote(ctx, a.ID, -1)
	require.NoError(t, err)
	assert.Equal(t, 0, got.Votes)
}

func TestAnswerRepository_AcceptKeepsSingleAcceptedAnswer(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	ada := testutil.CreateUser(t, f.db, "ada", "Secret-pass-123")
	bob := testutil.CreateUser(t, f.db, "bob", "Secret-pass-123")
	q := f.question(t, ada, "which one")
	first := f.answer(t, bob, q, "first")
	second := f.answer(t, bob, q, "second")
	third := f.answer(t, bob, q, "third")

	_, err := f.answers.ApplyVote(ctx, third.ID, 1)
	require.NoError(t, err)

	require.NoError(t, f.answers.Accept(ctx, q.ID, first.ID))
	require.NoError(t, f.answers.Accept(ctx, q.ID, second.ID))

	list, err := f.answers.ListByQuestion(ctx, q.ID)
	require.NoError(t, err)
	require.Len(t, list, 3)
	assert.Equal(t, second.ID, list[0].ID)
	assert.Equal(t, third.ID, list[1].ID)
	assert.Equal(t, first.ID, list[2].ID)

	accepted := 0
	for _, a := range list {
		if a.IsAccepted {
			accepted++
		}
	}
	assert.Equal(t, 1, accepted)

	stored, err := f.questions.GetByID(ctx, q.ID)
	require.NoError(t, err)
	require.NotNil(t, stored.AcceptedAnswerID)
	assert.Equal(t, second.ID, *stored.AcceptedAnswerID)

	other := f.question(t, bob, "unrelated")
	err = f.answers.Accept(ctx, other.ID, first.ID)
	assert.Equal(t, models.CodeNotFound, models.CodeOf(err))
}

func TestNoticeRepository_PushListAndRead(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	ada := testutil.CreateUser(t, f.db, "ada", "Secret-pass-123")
	bob := testutil.CreateUser(t, f.db, "bob", "Secret-pass-123")
	q := f.question(t, ada, "notify me")
	a := f.answer(t, bob, q, "answer")

	empty, err := f.notices.ListForUser(ctx, ada.ID)
	require.NoError(t, err)
	assert.Empty(t, empty)

	require.NoError(t, f.notices.Push(ctx, ada.ID, &models.Notice{
		Kind: models.NoticeKindAnswer, QuestionID: q.ID, AnswerID: &a.ID, NotifierID: bob.ID,
	}))
	require.NoError(t, f.notices.Push(ctx, ada.ID, &models.Notice{
		Kind: models.NoticeKindLike, QuestionID: q.ID, NotifierID: bob.ID,
	}))

	var boxes int64
	require.NoError(t, f.db.Model(&models.NoticeBox{}).Where("user_id = ?", ada.ID).Count(&boxes).Error)
	assert.Equal(t, int64(1), boxes)

	list, err := f.notices.ListForUser(ctx, ada.ID)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, models.NoticeKindAnswer, list[0].Kind)
	require.NotNil(t, list[0].AnswerID)
	assert.Equal(t, a.ID, *list[0].AnswerID)
	assert.Equal(t, "bob", list[0].Notifier.Username)
	require.NotNil(t, list[0].Question)
	assert.Equal(t, "notify me", list[0].Question.Title)
	assert.False(t, list[0].Read)
	assert.Equal(t, models.NoticeKindLike, list[1].Kind)
	assert.Nil(t, list[1].AnswerID)

	err = f.notices.MarkRead(ctx, bob.ID, list[0].ID)
	assert.Equal(t, models.CodeNotFound, models.CodeOf(err))
	require.NoError(t, f.notices.MarkRead(ctx, ada.ID, list[0].ID))

	n, err := f.notices.MarkAllRead(ctx, ada.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	list, err = f.notices.ListForUser(ctx, ada.ID)
	require.NoError(t, err)
	for _, notice := range list {
		assert.True(t, notice.Read)
	}
}

func TestReadDB_PrimaryPinBypassesLaggingReplica(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	// An empty replica stands in for one that has not caught up yet.
	database.SetReadDB(testutil.NewSQLiteDB(t))
	t.Cleanup(func() { database.SetReadDB(nil) })

	ada := testutil.CreateUser(t, f.db, "ada", "Secret-pass-123")
	q := &models.Question{Title: "lag", Description: "<p>lag</p>", AuthorID: ada.ID}
	require.NoError(t, f.questions.Create(ctx, q))

	_, err := f.questions.GetByID(ctx, q.ID)
	assert.Equal(t, models.CodeNotFound, models.CodeOf(err))

	got, err := f.questions.GetByID(UsePrimary(ctx), q.ID)
	require.NoError(t, err)
	assert.Equal(t, "lag", got.Title)
	assert.Equal(t, "ada", got.Author.Username)
}
