package notifications

import (
	"log/slog"
	"sync"
	"time"

	"stackit/internal/middleware"
	"stackit/internal/observability"

	"github.com/gofiber/websocket/v2"
)

const (
	// Time allowed to write a message to the peer.
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer.
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer.
	maxMessageSize = 16384

	sendBuffer = 256
)

var droppedNotice = []byte(`{"type":"notices_dropped","payload":{"reason":"buffer_full"}}`)

// Client is one WebSocket stream of a signed-in user.
type Client struct {
	hub *Hub

	// The websocket connection; nil in unit tests.
	Conn *websocket.Conn

	// Buffered channel of outbound messages.
	Send chan []byte

	UserID uint

	closeOnce sync.Once
}

func (c *Client) closeSend() {
	c.closeOnce.Do(func() { close(c.Send) })
}

func newClient(hub *Hub, conn *websocket.Conn, userID uint) *Client {
	return &Client{
		hub:    hub,
		Conn:   conn,
		UserID: userID,
		Send:   make(chan []byte, sendBuffer),
	}
}

// ReadPump drains the connection so control frames are processed, and unregisters
// the client when the peer goes away. Clients have nothing to say on this stream.
func (c *Client) ReadPump() {
	defer func() {
		c.hub.UnregisterClient(c)
		_ = c.Conn.Close()
	}()

	c.Conn.SetReadLimit(maxMessageSize)
	_ = c.Conn.SetReadDeadline(time.Now().Add(pongWait))
	c.Conn.SetPongHandler(func(string) error {
		return c.Conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		if _, _, err := c.Conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				middleware.Logger.Warn("notice stream read failed",
					slog.Uint64("user_id", uint64(c.UserID)),
					slog.String("error", err.Error()),
				)
			}
			return
		}
	}
}

// WritePump pumps messages from the hub to the websocket connection.
func (c *Client) WritePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.Conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.Send:
			_ = c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				// The hub shut down.
				_ = c.Conn.WriteMessage(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseGoingAway, "Server shutting down"))
				return
			}
			if err := c.Conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}

		case <-ticker.C:
			_ = c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// TrySend queues message without blocking; a full buffer drops it and tells the
// client to re-fetch its notices.
func (c *Client) TrySend(message []byte) bool {
	defer func() {
		if r := recover(); r != nil {
			observability.WebSocketBackpressureDrops.WithLabelValues(c.hub.Name(), "closed").Inc()
		}
	}()

	select {
	case c.Send <- message:
		return true
	default:
	}

	observability.WebSocketBackpressureDrops.WithLabelValues(c.hub.Name(), "full").Inc()
	middleware.Logger.Warn("notice stream buffer full, dropped message",
		slog.Uint64("user_id", uint64(c.UserID)),
	)
	select {
	case c.Send <- droppedNotice:
	default:
	}
	return false
}
