package seed

import (
	"context"
	"testing"

	"stackit/internal/models"
	"stackit/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTags_Idempotent(t *testing.T) {
	t.Parallel()
	db := testutil.NewSQLiteDB(t)
	ctx := context.Background()

	created, err := Tags(ctx, db)
	require.NoError(t, err)
	assert.Equal(t, len(PredefinedTags), created)

	created, err = Tags(ctx, db)
	require.NoError(t, err)
	assert.Zero(t, created)

	var count int64
	require.NoError(t, db.Model(&models.Tag{}).Count(&count).Error)
	assert.Equal(t, int64(len(PredefinedTags)), count)

	var node models.Tag
	require.NoError(t, db.Where("name = ?", "Node.js").First(&node).Error)
}

func TestTags_KeepsExistingSpelling(t *testing.T) {
	t.Parallel()
	db := testutil.NewSQLiteDB(t)
	testutil.CreateTags(t, db, "react")

	created, err := Tags(context.Background(), db)
	require.NoError(t, err)
	assert.Equal(t, len(PredefinedTags)-1, created)

	var names []string
	require.NoError(t, db.Model(&models.Tag{}).Where("LOWER(name) = ?", "react").Pluck("name", &names).Error)
	assert.Equal(t, []string{"react"}, names)
}

func TestFactory_CreatesLinkedContent(t *testing.T) {
	t.Parallel()
	db := testutil.NewSQLiteDB(t)
	tags := testutil.CreateTags(t, db, "Go", "SQL")

	f, err := NewFactory(db, SeedOptions{SkipBcrypt: true, Seed: 42})
	require.NoError(t, err)

	author, err := f.CreateUser()
	require.NoError(t, err)
	assert.NotZero(t, author.ID)
	assert.Equal(t, models.RankNewbie, author.Rank)

	q, err := f.CreateQuestion(author, tags)
	require.NoError(t, err)
	assert.LessOrEqual(t, len(q.Title), models.MaxQuestionTitleLen)

	var links int64
	require.NoError(t, db.Model(&models.QuestionTag{}).Where("question_id = ?", q.ID).Count(&links).Error)
	assert.Equal(t, int64(2), links)

	a, err := f.CreateAnswer(q, author, func(a *models.Answer) { a.Votes = 3 })
	require.NoError(t, err)
	assert.Equal(t, 3, a.Votes)
	assert.Equal(t, q.ID, a.QuestionID)
}

func TestDemo_SeedsConsistentForum(t *testing.T) {
	t.Parallel()
	db := testutil.NewSQLiteDB(t)

	err := Demo(context.Background(), db, Options{
		NumUsers:           4,
		NumQuestions:       6,
		AnswersPerQuestion: 2,
		Factory:            SeedOptions{SkipBcrypt: true, Seed: 7},
	})
	require.NoError(t, err)

	var users, questions, answers int64
	require.NoError(t, db.Model(&models.User{}).Count(&users).Error)
	require.NoError(t, db.Model(&models.Question{}).Count(&questions).Error)
	require.NoError(t, db.Model(&models.Answer{}).Count(&answers).Error)
	assert.Equal(t, int64(4), users)
	assert.Equal(t, int64(6), questions)
	assert.Equal(t, int64(12), answers)

	var accepted []models.Answer
	require.NoError(t, db.Where("is_accepted = ?", true).Find(&accepted).Error)
	assert.Len(t, accepted, 2)
	for _, a := range accepted {
		var q models.Question
		require.NoError(t, db.First(&q, a.QuestionID).Error)
		require.NotNil(t, q.AcceptedAnswerID)
		assert.Equal(t, a.ID, *q.AcceptedAnswerID)
	}

	require.NoError(t, ClearAll(db))
	require.NoError(t, db.Model(&models.Question{}).Count(&questions).Error)
	assert.Zero(t, questions)
	var tagCount int64
	require.NoError(t, db.Model(&models.Tag{}).Count(&tagCount).Error)
	assert.Equal(t, int64(len(PredefinedTags)), tagCount)
}
