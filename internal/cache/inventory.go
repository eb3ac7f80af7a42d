package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"stackit/internal/middleware"

	"github.com/redis/go-redis/v9"
)

const (
	UserKeyPrefix = "user:%d"
	TagsKey       = "tags:directory"
	TagsGenKey    = "tags:gen"
)

const (
	UserTTL = 5 * time.Minute
	TagsTTL = 10 * time.Minute
)

func UserKey(userID uint) string {
	return fmt.Sprintf(UserKeyPrefix, userID)
}

// Aside reads key into dest; on a miss it calls fetch (which must populate
// dest) and stores the result with ttl. Cache failures never fail the read.
func Aside(ctx context.Context, key string, dest any, ttl time.Duration, fetch func() error) error {
	if client == nil {
		return fetch()
	}

	raw, err := client.Get(ctx, key).Bytes()
	switch {
	case err == nil:
		if jsonErr := json.Unmarshal(raw, dest); jsonErr == nil {
			return nil
		}
		middleware.Logger.WarnContext(ctx, "discarding undecodable cache entry", "key", key)
	case !errors.Is(err, redis.Nil):
		middleware.Logger.WarnContext(ctx, "cache read failed", "key", key, "error", err.Error())
	}

	if err := fetch(); err != nil {
		return err
	}

	if payload, err := json.Marshal(dest); err == nil {
		if setErr := client.Set(ctx, key, payload, ttl).Err(); setErr != nil {
			middleware.Logger.WarnContext(ctx, "cache write failed", "key", key, "error", setErr.Error())
		}
	}
	return nil
}

func Invalidate(ctx context.Context, key string) {
	if client != nil {
		client.Del(ctx, key)
	}
}

func InvalidateUser(ctx context.Context, userID uint) {
	Invalidate(ctx, UserKey(userID))
}

// TagsDirectoryKey returns the directory key for the current tag generation.
// ok is false when the generation cannot be read and the cache must be bypassed.
func TagsDirectoryKey(ctx context.Context) (key string, ok bool) {
	if client == nil {
		return TagsKey, true
	}
	gen, err := client.Get(ctx, TagsGenKey).Int64()
	if err != nil && !errors.Is(err, redis.Nil) {
		middleware.Logger.WarnContext(ctx, "tag generation read failed", "error", err.Error())
		return "", false
	}
	return fmt.Sprintf("%s:%d", TagsKey, gen), true
}

// InvalidateTags moves the directory to a new generation. A fill that read the
// store before the bump lands under the old key and is never served again.
func InvalidateTags(ctx context.Context) {
	if client == nil {
		return
	}
	if err := client.Incr(ctx, TagsGenKey).Err(); err != nil {
		middleware.Logger.WarnContext(ctx, "tag generation bump failed", "error", err.Error())
	}
}
