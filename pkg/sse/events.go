package sse

import (
	"context"

	"github.com/quangdang48/cinehub-notify/pkg/broadcast"
	"github.com/quangdang48/cinehub-notify/pkg/notifications"
)

// EventType discriminates the events a Client emits.
type EventType string

const (
	// EventConnected fires when the server acknowledges the connection
	// with a control frame carrying the assigned client id.
	EventConnected EventType = "connected"
	// EventNotification fires for each decoded notification frame.
	EventNotification EventType = "notification"
	// EventDisconnected fires when the connection drops or is closed.
	EventDisconnected EventType = "disconnected"
)

// Event is published to subscribers on every connection state change and
// inbound notification. Exactly one of the payload fields is meaningful
// per type: ClientID for EventConnected, Notification for
// EventNotification, Err for EventDisconnected (nil on an explicit
// Disconnect call).
type Event struct {
	Type         EventType
	ClientID     string
	Notification *notifications.Notification
	Err          error
}

// Subscriber receives stream events.
type Subscriber = broadcast.Subscriber[Event]

// Subscribe registers an independent consumer of stream events. The
// subscription ends when ctx is cancelled, the subscriber is closed, or
// the client is closed. Slow consumers drop events rather than blocking
// the read loop.
func (c *Client) Subscribe(ctx context.Context) Subscriber {
	return c.events.Subscribe(ctx)
}

func (c *Client) publish(ev Event) {
	c.events.Publish(broadcast.Message[Event]{Data: ev})
}
