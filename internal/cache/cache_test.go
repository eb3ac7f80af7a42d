package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type cachedTag struct {
	ID   uint   `json:"id"`
	Name string `json:"name"`
}

func withMiniredis(t *testing.T) *miniredis.Miniredis {
	t.Helper()
	mr, err := miniredis.Run()
	require.NoError(t, err)
	SetClient(redis.NewClient(&redis.Options{Addr: mr.Addr()}))
	t.Cleanup(func() {
		_ = client.Close()
		SetClient(nil)
		mr.Close()
	})
	return mr
}

func TestAside_WithoutRedisCallsFetch(t *testing.T) {
	SetClient(nil)
	calls := 0
	var dest cachedTag
	err := Aside(context.Background(), "k", &dest, time.Minute, func() error {
		calls++
		dest = cachedTag{ID: 1, Name: "Go"}
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 1, calls)
	assert.Equal(t, "Go", dest.Name)
}

func TestAside_PopulatesAndHits(t *testing.T) {
	mr := withMiniredis(t)
	ctx := context.Background()
	calls := 0
	fetch := func(dest *[]cachedTag) func() error {
		return func() error {
			calls++
			*dest = []cachedTag{{ID: 1, Name: "React"}, {ID: 2, Name: "JWT"}}
			return nil
		}
	}

	key, ok := TagsDirectoryKey(ctx)
	require.True(t, ok)
	assert.Equal(t, TagsKey+":0", key)

	var first []cachedTag
	require.NoError(t, Aside(ctx, key, &first, TagsTTL, fetch(&first)))
	assert.True(t, mr.Exists(key))
	assert.Greater(t, mr.TTL(key), time.Duration(0))

	var second []cachedTag
	require.NoError(t, Aside(ctx, key, &second, TagsTTL, fetch(&second)))
	assert.Equal(t, 1, calls, "second read must be served from cache")
	assert.Equal(t, first, second)

	InvalidateTags(ctx)
	next, ok := TagsDirectoryKey(ctx)
	require.True(t, ok)
	assert.Equal(t, TagsKey+":1", next)

	var third []cachedTag
	require.NoError(t, Aside(ctx, next, &third, TagsTTL, fetch(&third)))
	assert.Equal(t, 2, calls, "a new generation must refetch")
}

func TestTagsDirectoryKey_BypassesOnUnreadableGeneration(t *testing.T) {
	mr := withMiniredis(t)
	require.NoError(t, mr.Set(TagsGenKey, "not-a-number"))

	_, ok := TagsDirectoryKey(context.Background())
	assert.False(t, ok)
}

func TestAside_FetchErrorIsNotCached(t *testing.T) {
	mr := withMiniredis(t)
	boom := errors.New("db down")

	var dest cachedTag
	err := Aside(context.Background(), UserKey(9), &dest, UserTTL, func() error { return boom })
	assert.ErrorIs(t, err, boom)
	assert.False(t, mr.Exists(UserKey(9)))
}

func TestAside_CorruptEntryRefetches(t *testing.T) {
	mr := withMiniredis(t)
	require.NoError(t, mr.Set(UserKey(3), "{not json"))

	var dest cachedTag
	calls := 0
	err := Aside(context.Background(), UserKey(3), &dest, UserTTL, func() error {
		calls++
		dest = cachedTag{ID: 3, Name: "fresh"}
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 1, calls)
	assert.Equal(t, "fresh", dest.Name)
}

func TestUserKey(t *testing.T) {
	assert.Equal(t, "user:42", UserKey(42))
}
