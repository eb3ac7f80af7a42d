package repository

import (
	"context"
	"strings"
	"testing"

	"stackit/internal/cache"
	"stackit/internal/models"
	"stackit/internal/testutil"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestTagRepository_EnsureTagsRejectsLongNames(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	tooLong := strings.Repeat("x", models.MaxTagNameLen+1)
	created, err := f.tags.EnsureTags(ctx, []string{"Go", tooLong})
	require.Error(t, err)
	assert.Equal(t, models.CodeValidation, models.CodeOf(err))
	assert.Zero(t, created)

	var count int64
	require.NoError(t, f.db.Model(&models.Tag{}).Count(&count).Error)
	assert.Zero(t, count, "a rejected batch must not write any tag")

	created, err = f.tags.EnsureTags(ctx, []string{strings.Repeat("y", models.MaxTagNameLen)})
	require.NoError(t, err)
	assert.Equal(t, 1, created)
}

func TestTagRepository_DirectoryNeverCachesPreLinkRead(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	cache.SetClient(redis.NewClient(&redis.Options{Addr: mr.Addr()}))
	t.Cleanup(func() {
		_ = cache.GetClient().Close()
		cache.SetClient(nil)
		mr.Close()
	})

	f := newFixture(t)
	ctx := context.Background()

	ada := testutil.CreateUser(t, f.db, "ada", "Secret-pass-123")
	tags := testutil.CreateTags(t, f.db, "React")
	q := &models.Question{Title: "hooks", Description: "<p>hooks</p>", AuthorID: ada.ID}
	require.NoError(t, f.questions.Create(ctx, q))

	// Link the question right after the directory has read the join table,
	// so the in-flight fill holds a snapshot without it.
	linked := false
	require.NoError(t, f.db.Callback().Query().After("gorm:query").Register("test:link_mid_directory", func(tx *gorm.DB) {
		if linked || tx.Statement.Table != "question_tags" {
			return
		}
		linked = true
		require.NoError(t, f.tags.LinkQuestion(context.Background(), q.ID, []uint{tags[0].ID}))
	}))

	stale, err := f.tags.Directory(ctx)
	require.NoError(t, err)
	require.True(t, linked)
	require.Len(t, stale, 1)
	assert.Empty(t, stale[0].Questions)

	fresh, err := f.tags.Directory(ctx)
	require.NoError(t, err)
	require.Len(t, fresh, 1)
	assert.Equal(t, []uint{q.ID}, fresh[0].Questions)
}
