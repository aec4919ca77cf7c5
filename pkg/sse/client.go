package sse

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/quangdang48/cinehub-notify/pkg/broadcast"
	"github.com/quangdang48/cinehub-notify/pkg/logger"
	"github.com/quangdang48/cinehub-notify/pkg/notifications"
)

// maxFrameSize bounds a single stream frame. Anything larger is treated
// as a read error and triggers a reconnect.
const maxFrameSize = 1 << 20

// Client owns at most one active server-push connection to the
// notification stream endpoint. It decodes inbound frames, publishes
// them as events and reconnects automatically after transport failures
// until Disconnect is called.
type Client struct {
	cfg     Config
	http    *http.Client
	backoff BackoffStrategy
	logger  *slog.Logger
	events  *broadcast.MemoryBroadcaster[Event]

	mu              sync.Mutex
	shouldReconnect bool
	connected       bool
	clientID        string
	attempts        int
	gen             uint64 // connection generation, guards stale callbacks
	baseCtx         context.Context
	cancel          context.CancelFunc
	retryTimer      *time.Timer
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient injects a custom HTTP client.
func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) {
		if httpClient != nil {
			c.http = httpClient
		}
	}
}

// WithBackoff overrides the reconnect delay strategy.
func WithBackoff(strategy BackoffStrategy) Option {
	return func(c *Client) {
		if strategy != nil {
			c.backoff = strategy
		}
	}
}

// WithLogger sets the logger for the Client.
func WithLogger(log *slog.Logger) Option {
	return func(c *Client) {
		if log != nil {
			c.logger = log
		}
	}
}

// New creates a stream client. Without WithBackoff the client retries at
// the fixed Config.ReconnectDelay interval, matching the dashboard's
// historical 5s-forever behavior.
func New(cfg Config, opts ...Option) (*Client, error) {
	if cfg.StreamURL == "" {
		return nil, ErrEmptyStreamURL
	}
	if cfg.ReconnectDelay <= 0 {
		cfg.ReconnectDelay = 5 * time.Second
	}
	if cfg.EventBuffer <= 0 {
		cfg.EventBuffer = 64
	}

	c := &Client{
		cfg: cfg,
		// Streaming responses must not be bounded by a client timeout.
		http:    &http.Client{},
		backoff: FixedBackoff{Interval: cfg.ReconnectDelay},
		logger:  slog.Default(),
		events:  broadcast.NewMemoryBroadcaster[Event](cfg.EventBuffer),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Connect opens a new stream connection, closing any existing connection
// and cancelling any pending reconnect timer first. Reconnection stays
// enabled until Disconnect. The provided context bounds the whole
// connection lifecycle including future reconnects.
func (c *Client) Connect(ctx context.Context) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.stopRetryLocked()
	c.closeStreamLocked()
	c.shouldReconnect = true
	c.attempts = 0
	c.baseCtx = ctx
	c.startLocked()
}

// Disconnect closes the connection, disables reconnection and resets the
// connection state. Any in-flight reconnect timer is invalidated so it
// cannot resurrect a connection afterwards.
func (c *Client) Disconnect() {
	c.mu.Lock()
	c.shouldReconnect = false
	c.stopRetryLocked()
	c.closeStreamLocked()
	c.gen++ // invalidates callbacks from the torn-down connection
	wasConnected := c.connected
	c.connected = false
	c.clientID = ""
	c.mu.Unlock()

	if wasConnected {
		c.publish(Event{Type: EventDisconnected})
	}
}

// Close disconnects and closes all event subscribers.
func (c *Client) Close() error {
	c.Disconnect()
	return c.events.Close()
}

// Connected reports whether the stream connection is currently open.
func (c *Client) Connected() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.connected
}

// ClientID returns the server-assigned connection identifier, or the
// empty string before the connected control frame arrives.
func (c *Client) ClientID() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.clientID
}

// startLocked begins a new connection generation. Callers hold c.mu.
func (c *Client) startLocked() {
	if c.baseCtx.Err() != nil {
		c.shouldReconnect = false
		return
	}
	c.gen++
	ctx, cancel := context.WithCancel(c.baseCtx)
	c.cancel = cancel
	go c.run(ctx, c.gen)
}

func (c *Client) stopRetryLocked() {
	if c.retryTimer != nil {
		c.retryTimer.Stop()
		c.retryTimer = nil
	}
}

func (c *Client) closeStreamLocked() {
	if c.cancel != nil {
		c.cancel()
		c.cancel = nil
	}
}

func (c *Client) run(ctx context.Context, gen uint64) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.cfg.StreamURL, nil)
	if err != nil {
		c.handleFailure(gen, err)
		return
	}
	req.Header.Set("Accept", "text/event-stream")
	req.Header.Set("Cache-Control", "no-cache")
	if c.cfg.Token != "" {
		req.Header.Set("Authorization", "Bearer "+c.cfg.Token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return // torn down by Disconnect or a fresh Connect
		}
		c.handleFailure(gen, err)
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		c.handleFailure(gen, fmt.Errorf("%w: %d", ErrUnexpectedStatus, resp.StatusCode))
		return
	}

	if !c.markConnected(gen) {
		return // superseded while dialing
	}

	err = c.readLoop(resp.Body)
	if ctx.Err() != nil {
		return
	}
	if err == nil {
		err = ErrStreamClosed
	}
	c.handleFailure(gen, err)
}

// markConnected flips the state to connected unless the generation was
// superseded while the dial was in flight.
func (c *Client) markConnected(gen uint64) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if gen != c.gen || !c.shouldReconnect {
		return false
	}
	c.connected = true
	c.attempts = 0
	return true
}

// readLoop consumes the event stream line by line. Frames are the
// JSON-encoded payload of data lines; event, id, retry and comment lines
// carry nothing in this protocol and are skipped.
func (c *Client) readLoop(body io.Reader) error {
	scanner := bufio.NewScanner(body)
	scanner.Buffer(make([]byte, 0, 16*1024), maxFrameSize)

	var data []byte
	for scanner.Scan() {
		line := scanner.Text()
		switch {
		case line == "":
			if len(data) > 0 {
				c.dispatch(data)
				data = nil
			}
		case strings.HasPrefix(line, "data:"):
			chunk := strings.TrimPrefix(strings.TrimPrefix(line, "data:"), " ")
			if len(data) > 0 {
				data = append(data, '\n')
			}
			data = append(data, chunk...)
		}
	}
	return scanner.Err()
}

// wireFrame is the duck-typed JSON payload of a stream frame. Message
// and Content are aliases, the backend has emitted both over time.
type wireFrame struct {
	ID        string         `json:"id"`
	Type      string         `json:"type"`
	Title     string         `json:"title"`
	Message   string         `json:"message"`
	Content   string         `json:"content"`
	Timestamp string         `json:"timestamp"`
	Metadata  map[string]any `json:"metadata"`
}

// dispatch decodes a single frame. Malformed payloads are logged and
// dropped without touching the connection.
func (c *Client) dispatch(data []byte) {
	var frame wireFrame
	if err := json.Unmarshal(data, &frame); err != nil {
		c.logger.LogAttrs(context.Background(), slog.LevelWarn, "Dropping malformed stream frame",
			logger.Error(err),
		)
		return
	}
	if frame.Type == "" {
		c.logger.LogAttrs(context.Background(), slog.LevelWarn, "Dropping stream frame without type")
		return
	}

	kind := notifications.Kind(frame.Type)
	if kind.IsControl() {
		c.mu.Lock()
		c.clientID = frame.ID
		c.mu.Unlock()
		c.publish(Event{Type: EventConnected, ClientID: frame.ID})
		return
	}

	message := frame.Message
	if message == "" {
		message = frame.Content
	}
	var ts time.Time
	if frame.Timestamp != "" {
		if parsed, err := time.Parse(time.RFC3339, frame.Timestamp); err == nil {
			ts = parsed
		}
	}

	n := notifications.Notification{
		ID:        frame.ID,
		Kind:      kind,
		Title:     frame.Title,
		Message:   message,
		Timestamp: ts,
		Read:      false,
		Metadata:  frame.Metadata,
	}
	n.Normalize(time.Now())

	c.publish(Event{Type: EventNotification, Notification: &n})
}

// handleFailure records a dropped connection and schedules a single
// reconnect attempt when reconnection is still wanted. The generation
// check discards callbacks from superseded connections; the single
// pending timer prevents double-scheduling when several errors fire
// before it elapses.
func (c *Client) handleFailure(gen uint64, err error) {
	c.mu.Lock()
	if gen != c.gen {
		c.mu.Unlock()
		return
	}
	c.connected = false

	retry := c.shouldReconnect && c.retryTimer == nil
	if retry {
		c.attempts++
		if c.cfg.MaxAttempts > 0 && c.attempts > c.cfg.MaxAttempts {
			retry = false
			c.shouldReconnect = false
		}
	}

	var delay time.Duration
	if retry {
		delay = c.backoff.NextInterval(c.attempts)
		c.retryTimer = time.AfterFunc(delay, func() { c.reconnect(gen) })
	}
	attempt := c.attempts
	c.mu.Unlock()

	c.logger.LogAttrs(context.Background(), slog.LevelWarn, "Notification stream dropped",
		logger.Error(err),
		slog.Int("attempt", attempt),
		slog.Duration("retry_in", delay),
	)
	c.publish(Event{Type: EventDisconnected, Err: err})
}

func (c *Client) reconnect(gen uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.retryTimer = nil
	if !c.shouldReconnect || gen != c.gen {
		return
	}
	c.startLocked()
}
