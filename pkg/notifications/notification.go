package notifications

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Kind classifies a notification. Beyond the four base severities the
// backend emits open-ended domain subtypes such as "admin.user_subscribed";
// those are stored as-is.
type Kind string

const (
	KindInfo    Kind = "info"
	KindSuccess Kind = "success"
	KindWarning Kind = "warning"
	KindError   Kind = "error"

	// KindConnected is a control frame assigning the server-side client
	// identifier. It configures connection state and is never stored.
	KindConnected Kind = "connected"
)

// IsControl reports whether the kind describes a control frame rather
// than a user-visible notification.
func (k Kind) IsControl() bool {
	return k == KindConnected
}

// Notification is the core domain model shared by the live stream, the
// history endpoint and the bounded store.
type Notification struct {
	ID        string         `json:"id"`
	Kind      Kind           `json:"type"`
	Title     string         `json:"title,omitempty"`
	Message   string         `json:"message,omitempty"`
	Timestamp time.Time      `json:"timestamp"`
	Read      bool           `json:"read"`
	Metadata  map[string]any `json:"metadata,omitempty"` // opaque to the store
}

// MarkAsRead marks the notification as read.
func (n *Notification) MarkAsRead() {
	n.Read = true
}

// Normalize fills the fields a producer may omit: a synthesized ID and a
// receipt timestamp. Callers decide the read flag; live frames always
// arrive unread.
func (n *Notification) Normalize(now time.Time) {
	if n.ID == "" {
		n.ID = NewID()
	}
	if n.Timestamp.IsZero() {
		n.Timestamp = now
	}
}

// NewID synthesizes a client-side notification identifier for frames
// that arrive without one.
func NewID() string {
	return fmt.Sprintf("notif-%s", uuid.New().String())
}
