package notifications

import (
	"context"
	"encoding/json"
	"fmt"
)

// EventNotice is the event type carried by every notice pushed to a stream.
const EventNotice = "notice"

// Event is the envelope written to WebSocket clients.
type Event struct {
	Type    string `json:"type"`
	Payload any    `json:"payload"`
}

// Dispatcher routes a user's events through Redis when available so every
// instance's hub sees them, and straight into the local hub otherwise.
type Dispatcher struct {
	hub      *Hub
	notifier *Notifier
}

// NewDispatcher creates a Dispatcher; either argument may be nil.
func NewDispatcher(hub *Hub, notifier *Notifier) *Dispatcher {
	return &Dispatcher{hub: hub, notifier: notifier}
}

// PublishNotice wraps payload in a notice event and delivers it to userID.
func (d *Dispatcher) PublishNotice(ctx context.Context, userID uint, payload any) error {
	return d.Publish(ctx, userID, Event{Type: EventNotice, Payload: payload})
}

func (d *Dispatcher) Publish(ctx context.Context, userID uint, event Event) error {
	raw, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal %s event: %w", event.Type, err)
	}

	if d.notifier.Enabled() {
		return d.notifier.PublishUser(ctx, userID, string(raw))
	}
	if d.hub != nil {
		d.hub.Broadcast(userID, string(raw))
	}
	return nil
}
