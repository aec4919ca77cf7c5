package center

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/quangdang48/cinehub-notify/pkg/api"
	"github.com/quangdang48/cinehub-notify/pkg/logger"
	"github.com/quangdang48/cinehub-notify/pkg/notifications"
	"github.com/quangdang48/cinehub-notify/pkg/sse"
)

// Config holds the facade settings.
type Config struct {
	// AutoConnect opens the stream connection at construction time.
	AutoConnect bool `env:"NOTIFY_AUTO_CONNECT" envDefault:"true"`
}

// Center is the single surface presentation code talks to. It composes
// the stream client, the bounded store and the REST client: live frames
// feed the store through an internal subscription, the history snapshot
// is reconciled in once per session, and all read/unread mutations go
// through here.
//
// A Center is constructed explicitly on session start and torn down with
// Close on session end; there is no package-level singleton, so tests
// and multiple admin sessions each get an isolated instance.
type Center struct {
	stream *sse.Client
	api    *api.Client
	store  *notifications.Store
	logger *slog.Logger

	seedOnce sync.Once
	feedSub  sse.Subscriber
	feedDone chan struct{}
}

// Option configures a Center.
type Option func(*Center)

// WithLogger sets the logger for the Center.
func WithLogger(log *slog.Logger) Option {
	return func(c *Center) {
		if log != nil {
			c.logger = log
		}
	}
}

// WithStore injects a pre-built store, e.g. one with a custom cap.
func WithStore(store *notifications.Store) Option {
	return func(c *Center) {
		if store != nil {
			c.store = store
		}
	}
}

// New creates the facade and starts feeding the store from the stream.
// ctx bounds the facade lifetime: when it is cancelled, or Close is
// called, the internal subscription ends and the connection is torn
// down. With cfg.AutoConnect the stream is opened immediately.
func New(ctx context.Context, cfg Config, stream *sse.Client, apiClient *api.Client, opts ...Option) *Center {
	c := &Center{
		stream:   stream,
		api:      apiClient,
		store:    notifications.NewStore(),
		logger:   slog.Default(),
		feedDone: make(chan struct{}),
	}
	for _, opt := range opts {
		opt(c)
	}

	c.feedSub = stream.Subscribe(ctx)
	go c.feed()

	if cfg.AutoConnect {
		c.Connect(ctx)
	}
	return c
}

// feed moves live notifications from the stream into the store. Control
// and disconnect events carry no record and pass through untouched.
func (c *Center) feed() {
	defer close(c.feedDone)
	for msg := range c.feedSub.Receive() {
		if msg.Data.Type == sse.EventNotification && msg.Data.Notification != nil {
			c.store.Prepend(*msg.Data.Notification)
		}
	}
}

// Connect opens the stream connection and, on the first call, seeds the
// store with a history snapshot. The seed and the live stream race by
// design; SetInitial's only-if-empty guard keeps the snapshot from
// clobbering already-received live notifications.
func (c *Center) Connect(ctx context.Context) {
	c.stream.Connect(ctx)
	c.seedOnce.Do(func() {
		go c.seedHistory(ctx)
	})
}

// Disconnect closes the stream connection and disables reconnection.
func (c *Center) Disconnect() {
	c.stream.Disconnect()
}

// Close tears the facade down: disconnects the stream and ends the
// internal store feed. Safe to call on all exit paths.
func (c *Center) Close() error {
	c.stream.Disconnect()
	err := c.feedSub.Close()
	<-c.feedDone
	return err
}

// seedHistory fetches the initial snapshot. Failures degrade silently:
// the badge simply shows whatever the store already holds.
func (c *Center) seedHistory(ctx context.Context) {
	records, err := c.api.History(ctx, 0, 0, api.HistoryOptions{})
	if err != nil {
		c.logger.LogAttrs(ctx, slog.LevelWarn, "Notification history fetch failed",
			logger.Error(err),
		)
		return
	}
	c.store.SetInitial(records, false)
}

// RefreshNotifications forces a history reload and replaces the store
// contents with the fetched snapshot, bypassing the only-if-empty guard.
func (c *Center) RefreshNotifications(ctx context.Context) error {
	records, err := c.api.History(ctx, 0, 0, api.HistoryOptions{})
	if err != nil {
		return fmt.Errorf("refresh notifications: %w", err)
	}
	c.store.SetInitial(records, true)
	return nil
}

// MarkAsRead marks a single notification as read. Unknown ids are a
// no-op.
func (c *Center) MarkAsRead(id string) {
	c.store.MarkRead(id)
}

// MarkAllAsRead marks every notification as read.
func (c *Center) MarkAllAsRead() {
	c.store.MarkAllRead()
}

// ClearNotifications empties the store.
func (c *Center) ClearNotifications() {
	c.store.Clear()
}

// Notifications returns the current list, newest first.
func (c *Center) Notifications() []notifications.Notification {
	return c.store.List()
}

// UnreadCount returns the number of unread notifications.
func (c *Center) UnreadCount() int {
	return c.store.UnreadCount()
}

// Connected reports the live connection state.
func (c *Center) Connected() bool {
	return c.stream.Connected()
}

// ClientID returns the server-assigned connection identifier, empty
// until the connected control frame arrives.
func (c *Center) ClientID() string {
	return c.stream.ClientID()
}

// Events exposes the stream event subscription so independent consumers
// (badge, toasts) can observe connection state and inbound records.
func (c *Center) Events(ctx context.Context) sse.Subscriber {
	return c.stream.Subscribe(ctx)
}
