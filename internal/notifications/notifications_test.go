package notifications

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testEventuallyTimeout = time.Second
	testPollInterval      = 10 * time.Millisecond
)

func newRedis(t *testing.T) *redis.Client {
	t.Helper()
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return rdb
}

func TestUserChannel(t *testing.T) {
	t.Parallel()
	assert.Equal(t, "notifications:user:1", UserChannel(1))
	assert.Equal(t, "notifications:user:100", UserChannel(100))

	id, ok := ParseUserChannel("notifications:user:42")
	assert.True(t, ok)
	assert.Equal(t, uint(42), id)

	for _, bad := range []string{"notifications:user:", "notifications:user:x", "chat:conv:1", "notifications:user:0"} {
		_, ok := ParseUserChannel(bad)
		assert.False(t, ok, bad)
	}
}

func TestNotifier_NilRedisIsNoop(t *testing.T) {
	n := NewNotifier(nil)
	assert.False(t, n.Enabled())
	assert.NoError(t, n.PublishUser(context.Background(), 1, "payload"))
	assert.NoError(t, n.StartPatternSubscriber(context.Background(), func(string, string) {
		t.Fatal("no messages expected")
	}))
}

func TestHub_RegisterLimitsAndUnregister(t *testing.T) {
	hub := NewHub()

	clients := make([]*Client, 0, maxConnsPerUser)
	for i := 0; i < maxConnsPerUser; i++ {
		c, err := hub.Register(7, nil)
		require.NoError(t, err)
		clients = append(clients, c)
	}
	_, err := hub.Register(7, nil)
	assert.ErrorIs(t, err, ErrUserConnsLimit)
	assert.Equal(t, maxConnsPerUser, hub.Connections(7))

	for _, c := range clients {
		hub.UnregisterClient(c)
		hub.UnregisterClient(c)
	}
	assert.Equal(t, 0, hub.Connections(7))

	require.NoError(t, hub.Shutdown(context.Background()))
	_, err = hub.Register(7, nil)
	assert.ErrorIs(t, err, ErrHubClosed)
}

func TestHub_BroadcastTargetsOneUser(t *testing.T) {
	hub := NewHub()
	a, err := hub.Register(1, nil)
	require.NoError(t, err)
	b, err := hub.Register(2, nil)
	require.NoError(t, err)

	assert.Equal(t, 1, hub.Broadcast(1, "hello"))
	assert.Equal(t, 0, hub.Broadcast(3, "nobody"))

	assert.Equal(t, []byte("hello"), <-a.Send)
	assert.Empty(t, b.Send)
}

func TestClient_TrySendDropsWhenFull(t *testing.T) {
	hub := NewHub()
	c, err := hub.Register(1, nil)
	require.NoError(t, err)

	for i := 0; i < sendBuffer; i++ {
		require.True(t, c.TrySend([]byte("x")))
	}
	assert.False(t, c.TrySend([]byte("overflow")))
	assert.Len(t, c.Send, sendBuffer)

	c.closeSend()
	assert.False(t, c.TrySend([]byte("after close")))
}

func TestHub_ShutdownClosesSendQueues(t *testing.T) {
	hub := NewHub()
	a, err := hub.Register(1, nil)
	require.NoError(t, err)
	b, err := hub.Register(2, nil)
	require.NoError(t, err)
	require.True(t, a.TrySend([]byte("queued")))

	require.NoError(t, hub.Shutdown(context.Background()))
	require.NoError(t, hub.Shutdown(context.Background()))

	// Queued messages drain before the closed signal reaches WritePump.
	assert.Equal(t, []byte("queued"), <-a.Send)
	_, open := <-a.Send
	assert.False(t, open)
	_, open = <-b.Send
	assert.False(t, open)

	assert.False(t, a.TrySend([]byte("late")))
	assert.Equal(t, 0, hub.Connections(1))
	a.closeSend()
}

func TestDispatcher_LocalHubWithoutRedis(t *testing.T) {
	hub := NewHub()
	c, err := hub.Register(5, nil)
	require.NoError(t, err)

	d := NewDispatcher(hub, NewNotifier(nil))
	require.NoError(t, d.PublishNotice(context.Background(), 5, map[string]any{"kind": "vote"}))

	var got Event
	require.NoError(t, json.Unmarshal(<-c.Send, &got))
	assert.Equal(t, EventNotice, got.Type)
	assert.Equal(t, "vote", got.Payload.(map[string]any)["kind"])
}

func TestDispatcher_FansOutThroughRedis(t *testing.T) {
	rdb := newRedis(t)
	hub := NewHub()
	notifier := NewNotifier(rdb)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	require.NoError(t, hub.StartWiring(ctx, notifier))

	c, err := hub.Register(9, nil)
	require.NoError(t, err)

	d := NewDispatcher(hub, notifier)
	require.NoError(t, d.PublishNotice(ctx, 9, map[string]any{"kind": "answer"}))

	var raw []byte
	require.Eventually(t, func() bool {
		select {
		case raw = <-c.Send:
			return true
		default:
			return false
		}
	}, testEventuallyTimeout, testPollInterval)
	assert.Contains(t, string(raw), `"type":"notice"`)
	assert.Contains(t, string(raw), `"kind":"answer"`)
}
