package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/quangdang48/cinehub-notify/pkg/notifications"
)

// Client talks to the notification REST endpoints: the paginated history
// resource and the outbound send/delete actions.
type Client struct {
	cfg  Config
	http *http.Client
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

// New creates a REST client for the notification endpoints.
func New(cfg Config, opts ...Option) (*Client, error) {
	if cfg.BaseURL == "" {
		return nil, ErrEmptyBaseURL
	}
	if cfg.HistoryPage <= 0 {
		cfg.HistoryPage = 1
	}
	if cfg.HistoryLimit <= 0 {
		cfg.HistoryLimit = 20
	}
	if cfg.RequestTimeout <= 0 {
		cfg.RequestTimeout = 10 * time.Second
	}

	c := &Client{
		cfg:  cfg,
		http: &http.Client{Timeout: cfg.RequestTimeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// HistoryOptions narrows a history query.
type HistoryOptions struct {
	Kind         notifications.Kind
	TargetUserID string
	Sort         string
}

// historyItem is the wire shape of a stored notification. CreatedAt is
// the server-side creation time and becomes the notification timestamp.
type historyItem struct {
	ID        string         `json:"id"`
	Type      string         `json:"type"`
	Title     string         `json:"title"`
	Message   string         `json:"message"`
	Content   string         `json:"content"`
	CreatedAt string         `json:"createdAt"`
	Metadata  map[string]any `json:"metadata"`
}

// History fetches one page of the notification history. Records come
// back read (history is definitionally already seen) and ordered as the
// server returned them. Page and limit fall back to the configured
// defaults when zero.
func (c *Client) History(ctx context.Context, page, limit int, opts HistoryOptions) ([]notifications.Notification, error) {
	if page <= 0 {
		page = c.cfg.HistoryPage
	}
	if limit <= 0 {
		limit = c.cfg.HistoryLimit
	}

	q := url.Values{}
	q.Set("page", strconv.Itoa(page))
	q.Set("limit", strconv.Itoa(limit))
	if opts.Kind != "" {
		q.Set("type", string(opts.Kind))
	}
	if opts.TargetUserID != "" {
		q.Set("targetUserId", opts.TargetUserID)
	}
	if opts.Sort != "" {
		q.Set("sort", opts.Sort)
	}

	body, err := c.get(ctx, c.cfg.BaseURL+"?"+q.Encode())
	if err != nil {
		return nil, err
	}

	items, err := extractHistoryItems(body)
	if err != nil {
		return nil, err
	}

	records := make([]notifications.Notification, 0, len(items))
	for _, item := range items {
		records = append(records, item.toNotification())
	}
	return records, nil
}

// extractHistoryItems defends against both envelope shapes the backend
// has shipped: flat {"data": [...]} and nested {"data": {"data": [...]}}.
// A bare top-level array is accepted as well.
func extractHistoryItems(body []byte) ([]historyItem, error) {
	var items []historyItem
	if err := json.Unmarshal(body, &items); err == nil {
		return items, nil
	}

	var envelope struct {
		Data json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil || len(envelope.Data) == 0 {
		return nil, ErrUnexpectedPayload
	}

	if err := json.Unmarshal(envelope.Data, &items); err == nil {
		return items, nil
	}

	var nested struct {
		Data []historyItem `json:"data"`
	}
	if err := json.Unmarshal(envelope.Data, &nested); err != nil {
		return nil, ErrUnexpectedPayload
	}
	return nested.Data, nil
}

func (item historyItem) toNotification() notifications.Notification {
	message := item.Message
	if message == "" {
		message = item.Content
	}
	var ts time.Time
	if item.CreatedAt != "" {
		if parsed, err := time.Parse(time.RFC3339, item.CreatedAt); err == nil {
			ts = parsed
		}
	}
	n := notifications.Notification{
		ID:        item.ID,
		Kind:      notifications.Kind(item.Type),
		Title:     item.Title,
		Message:   message,
		Timestamp: ts,
		Read:      true,
		Metadata:  item.Metadata,
	}
	n.Normalize(time.Now())
	return n
}

// SendRequest is the body of an outbound notification action.
type SendRequest struct {
	Kind     notifications.Kind `json:"type"`
	Title    string             `json:"title,omitempty"`
	Message  string             `json:"message,omitempty"`
	Metadata map[string]any     `json:"metadata,omitempty"`
}

// Broadcast sends a notification to every connected client.
func (c *Client) Broadcast(ctx context.Context, req SendRequest) error {
	return c.send(ctx, "broadcast", c.cfg.BaseURL+"/broadcast", req)
}

// SendToClient targets a single stream connection by its server-assigned
// client identifier.
func (c *Client) SendToClient(ctx context.Context, clientID string, req SendRequest) error {
	payload := struct {
		ClientID string `json:"clientId"`
		SendRequest
	}{ClientID: clientID, SendRequest: req}
	return c.send(ctx, "send to client", c.cfg.BaseURL+"/send/client", payload)
}

// SendToUser targets every connection of one user.
func (c *Client) SendToUser(ctx context.Context, userID string, req SendRequest) error {
	payload := struct {
		UserID string `json:"userId"`
		SendRequest
	}{UserID: userID, SendRequest: req}
	return c.send(ctx, "send to user", c.cfg.BaseURL+"/send/user", payload)
}

// SendToUsers targets every connection of a set of users.
func (c *Client) SendToUsers(ctx context.Context, userIDs []string, req SendRequest) error {
	payload := struct {
		UserIDs []string `json:"userIds"`
		SendRequest
	}{UserIDs: userIDs, SendRequest: req}
	return c.send(ctx, "send to users", c.cfg.BaseURL+"/send/users", payload)
}

// Delete removes a stored notification by id.
func (c *Client) Delete(ctx context.Context, id string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, c.cfg.BaseURL+"/"+url.PathEscape(id), nil)
	if err != nil {
		return &SendError{Op: "delete", Err: err}
	}
	return c.do("delete", req)
}

func (c *Client) get(ctx context.Context, rawURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("api: build history request: %w", err)
	}
	c.authorize(req)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("api: history request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("api: history request: unexpected status %d", resp.StatusCode)
	}
	return io.ReadAll(resp.Body)
}

func (c *Client) send(ctx context.Context, op, rawURL string, payload any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return &SendError{Op: op, Err: err}
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, rawURL, bytes.NewReader(body))
	if err != nil {
		return &SendError{Op: op, Err: err}
	}
	req.Header.Set("Content-Type", "application/json")
	return c.do(op, req)
}

func (c *Client) do(op string, req *http.Request) error {
	c.authorize(req)

	resp, err := c.http.Do(req)
	if err != nil {
		return &SendError{Op: op, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &SendError{Op: op, StatusCode: resp.StatusCode}
	}
	return nil
}

func (c *Client) authorize(req *http.Request) {
	if c.cfg.Token != "" {
		req.Header.Set("Authorization", "Bearer "+c.cfg.Token)
	}
}
