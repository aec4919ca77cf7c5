package sse

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quangdang48/cinehub-notify/pkg/notifications"
)

func writeData(t *testing.T, w http.ResponseWriter, payload string) {
	t.Helper()
	_, err := fmt.Fprintf(w, "data: %s\n\n", payload)
	require.NoError(t, err)
	w.(http.Flusher).Flush()
}

func newTestClient(t *testing.T, streamURL string, opts ...Option) *Client {
	t.Helper()
	opts = append([]Option{WithBackoff(FixedBackoff{Interval: 20 * time.Millisecond})}, opts...)
	client, err := New(Config{StreamURL: streamURL}, opts...)
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })
	return client
}

// nextEvent waits for the next event of the given type, skipping others.
func nextEvent(t *testing.T, sub Subscriber, want EventType) Event {
	t.Helper()
	deadline := time.After(3 * time.Second)
	for {
		select {
		case msg, ok := <-sub.Receive():
			require.True(t, ok, "event subscription closed")
			if msg.Data.Type == want {
				return msg.Data
			}
		case <-deadline:
			t.Fatalf("timed out waiting for %s event", want)
		}
	}
}

func TestNew_RequiresStreamURL(t *testing.T) {
	_, err := New(Config{})
	assert.ErrorIs(t, err, ErrEmptyStreamURL)
}

func TestClient_StreamScenario(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/event-stream")
		w.WriteHeader(http.StatusOK)
		writeData(t, w, `{"type":"success","title":"X"}`)
		writeData(t, w, `{"type":"connected","id":"abc123"}`)
		writeData(t, w, `{"type":"error","message":"Y"}`)
		<-r.Context().Done()
	}))
	t.Cleanup(srv.Close)

	client := newTestClient(t, srv.URL)
	sub := client.Subscribe(context.Background())
	client.Connect(context.Background())

	first := nextEvent(t, sub, EventNotification)
	require.NotNil(t, first.Notification)
	assert.Equal(t, notifications.KindSuccess, first.Notification.Kind)
	assert.Equal(t, "X", first.Notification.Title)
	assert.False(t, first.Notification.Read)
	assert.NotEmpty(t, first.Notification.ID)

	connected := nextEvent(t, sub, EventConnected)
	assert.Equal(t, "abc123", connected.ClientID)
	assert.Equal(t, "abc123", client.ClientID())

	second := nextEvent(t, sub, EventNotification)
	require.NotNil(t, second.Notification)
	assert.Equal(t, notifications.KindError, second.Notification.Kind)
	assert.Equal(t, "Y", second.Notification.Message)

	assert.True(t, client.Connected())
}

func TestClient_MalformedFramesAreDropped(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/event-stream")
		w.WriteHeader(http.StatusOK)
		writeData(t, w, `this is not json`)
		writeData(t, w, `{"title":"frame without a type"}`)
		writeData(t, w, `{"type":"info","title":"survivor"}`)
		<-r.Context().Done()
	}))
	t.Cleanup(srv.Close)

	client := newTestClient(t, srv.URL)
	sub := client.Subscribe(context.Background())
	client.Connect(context.Background())

	// Only the valid frame surfaces, and the connection stays open.
	ev := nextEvent(t, sub, EventNotification)
	assert.Equal(t, "survivor", ev.Notification.Title)
	assert.True(t, client.Connected())
}

func TestClient_ContentFallbackAndTimestamp(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/event-stream")
		w.WriteHeader(http.StatusOK)
		writeData(t, w, `{"id":"notif-7","type":"warning","content":"body from content","timestamp":"2026-08-30T10:00:00Z"}`)
		<-r.Context().Done()
	}))
	t.Cleanup(srv.Close)

	client := newTestClient(t, srv.URL)
	sub := client.Subscribe(context.Background())
	client.Connect(context.Background())

	ev := nextEvent(t, sub, EventNotification)
	assert.Equal(t, "notif-7", ev.Notification.ID)
	assert.Equal(t, "body from content", ev.Notification.Message)
	assert.Equal(t, time.Date(2026, 8, 30, 10, 0, 0, 0, time.UTC), ev.Notification.Timestamp)
}

func TestClient_ReconnectsAfterDrop(t *testing.T) {
	var conns atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		n := conns.Add(1)
		w.Header().Set("Content-Type", "text/event-stream")
		w.WriteHeader(http.StatusOK)
		if n == 1 {
			// First connection drops straight away.
			w.(http.Flusher).Flush()
			return
		}
		writeData(t, w, `{"type":"info","title":"after reconnect"}`)
		<-r.Context().Done()
	}))
	t.Cleanup(srv.Close)

	client := newTestClient(t, srv.URL)
	sub := client.Subscribe(context.Background())
	client.Connect(context.Background())

	dropped := nextEvent(t, sub, EventDisconnected)
	assert.Error(t, dropped.Err)

	ev := nextEvent(t, sub, EventNotification)
	assert.Equal(t, "after reconnect", ev.Notification.Title)
	assert.GreaterOrEqual(t, conns.Load(), int32(2))
}

func TestClient_DisconnectSuppressesPendingReconnect(t *testing.T) {
	var conns atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conns.Add(1)
		w.Header().Set("Content-Type", "text/event-stream")
		w.WriteHeader(http.StatusOK)
		w.(http.Flusher).Flush()
	}))
	t.Cleanup(srv.Close)

	client := newTestClient(t, srv.URL, WithBackoff(FixedBackoff{Interval: 100 * time.Millisecond}))
	sub := client.Subscribe(context.Background())
	client.Connect(context.Background())

	// Wait for the drop; a reconnect is now scheduled.
	nextEvent(t, sub, EventDisconnected)

	client.Disconnect()
	seen := conns.Load()

	// Let the timer window pass; no new connection may appear.
	time.Sleep(300 * time.Millisecond)
	assert.Equal(t, seen, conns.Load())
	assert.False(t, client.Connected())
	assert.Empty(t, client.ClientID())
}

func TestClient_UnexpectedStatusTriggersRetry(t *testing.T) {
	var conns atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if conns.Add(1) == 1 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.Header().Set("Content-Type", "text/event-stream")
		w.WriteHeader(http.StatusOK)
		writeData(t, w, `{"type":"info","title":"recovered"}`)
		<-r.Context().Done()
	}))
	t.Cleanup(srv.Close)

	client := newTestClient(t, srv.URL)
	sub := client.Subscribe(context.Background())
	client.Connect(context.Background())

	dropped := nextEvent(t, sub, EventDisconnected)
	assert.ErrorIs(t, dropped.Err, ErrUnexpectedStatus)

	ev := nextEvent(t, sub, EventNotification)
	assert.Equal(t, "recovered", ev.Notification.Title)
}

func TestClient_MaxAttemptsStopsRetrying(t *testing.T) {
	var conns atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conns.Add(1)
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	t.Cleanup(srv.Close)

	client, err := New(
		Config{StreamURL: srv.URL, MaxAttempts: 2},
		WithBackoff(FixedBackoff{Interval: 10 * time.Millisecond}),
	)
	require.NoError(t, err)
	defer client.Close()

	client.Connect(context.Background())

	// Initial connection plus two retries, then the client gives up.
	require.Eventually(t, func() bool {
		return conns.Load() >= 3
	}, 2*time.Second, 10*time.Millisecond)

	time.Sleep(200 * time.Millisecond)
	assert.Equal(t, int32(3), conns.Load())
}

func TestClient_ConnectReplacesExistingConnection(t *testing.T) {
	var conns atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conns.Add(1)
		w.Header().Set("Content-Type", "text/event-stream")
		w.WriteHeader(http.StatusOK)
		writeData(t, w, `{"type":"connected","id":"conn"}`)
		<-r.Context().Done()
	}))
	t.Cleanup(srv.Close)

	client := newTestClient(t, srv.URL)
	sub := client.Subscribe(context.Background())

	client.Connect(context.Background())
	nextEvent(t, sub, EventConnected)

	client.Connect(context.Background())
	nextEvent(t, sub, EventConnected)

	require.Eventually(t, func() bool {
		return conns.Load() == 2
	}, 2*time.Second, 10*time.Millisecond)
	assert.True(t, client.Connected())
}
