package api

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quangdang48/cinehub-notify/pkg/notifications"
)

func newTestAPI(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	client, err := New(Config{BaseURL: srv.URL, Token: "secret-token"})
	require.NoError(t, err)
	return client
}

func TestNew_RequiresBaseURL(t *testing.T) {
	_, err := New(Config{})
	assert.ErrorIs(t, err, ErrEmptyBaseURL)
}

func TestClient_History(t *testing.T) {
	const flatBody = `{"data":[{"id":"n1","type":"info","title":"A","createdAt":"2026-08-01T09:00:00Z"},{"id":"n2","type":"error","content":"B"}],"meta":{"total":2}}`
	const nestedBody = `{"data":{"data":[{"id":"n1","type":"info","title":"A","createdAt":"2026-08-01T09:00:00Z"}],"meta":{"total":1}}}`
	const arrayBody = `[{"id":"n1","type":"info","title":"A"}]`

	tests := []struct {
		name      string
		body      string
		wantCount int
	}{
		{name: "flat envelope", body: flatBody, wantCount: 2},
		{name: "nested envelope", body: nestedBody, wantCount: 1},
		{name: "bare array", body: arrayBody, wantCount: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := newTestAPI(t, func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, "Bearer secret-token", r.Header.Get("Authorization"))
				assert.Equal(t, "1", r.URL.Query().Get("page"))
				assert.Equal(t, "20", r.URL.Query().Get("limit"))
				w.Header().Set("Content-Type", "application/json")
				_, _ = w.Write([]byte(tt.body))
			})

			records, err := client.History(context.Background(), 0, 0, HistoryOptions{})
			require.NoError(t, err)
			require.Len(t, records, tt.wantCount)

			// History is definitionally already seen.
			for _, rec := range records {
				assert.True(t, rec.Read)
				assert.NotEmpty(t, rec.ID)
				assert.False(t, rec.Timestamp.IsZero())
			}
			assert.Equal(t, "n1", records[0].ID)
			assert.Equal(t, notifications.KindInfo, records[0].Kind)
		})
	}
}

func TestClient_History_CreatedAtBecomesTimestamp(t *testing.T) {
	client := newTestAPI(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"data":[{"id":"n1","type":"info","createdAt":"2026-07-15T08:30:00Z"}]}`))
	})

	records, err := client.History(context.Background(), 1, 10, HistoryOptions{})
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, time.Date(2026, 7, 15, 8, 30, 0, 0, time.UTC), records[0].Timestamp)
}

func TestClient_History_QueryFilters(t *testing.T) {
	client := newTestAPI(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "3", r.URL.Query().Get("page"))
		assert.Equal(t, "50", r.URL.Query().Get("limit"))
		assert.Equal(t, "warning", r.URL.Query().Get("type"))
		assert.Equal(t, "user-9", r.URL.Query().Get("targetUserId"))
		assert.Equal(t, "desc", r.URL.Query().Get("sort"))
		_, _ = w.Write([]byte(`{"data":[]}`))
	})

	_, err := client.History(context.Background(), 3, 50, HistoryOptions{
		Kind:         notifications.KindWarning,
		TargetUserID: "user-9",
		Sort:         "desc",
	})
	require.NoError(t, err)
}

func TestClient_History_Errors(t *testing.T) {
	t.Run("non-2xx status", func(t *testing.T) {
		client := newTestAPI(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadGateway)
		})
		_, err := client.History(context.Background(), 1, 10, HistoryOptions{})
		assert.Error(t, err)
	})

	t.Run("unexpected payload shape", func(t *testing.T) {
		client := newTestAPI(t, func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{"data":"not a list"}`))
		})
		_, err := client.History(context.Background(), 1, 10, HistoryOptions{})
		assert.ErrorIs(t, err, ErrUnexpectedPayload)
	})
}

func TestClient_Broadcast(t *testing.T) {
	client := newTestAPI(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/broadcast", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		w.WriteHeader(http.StatusAccepted)
	})

	err := client.Broadcast(context.Background(), SendRequest{
		Kind:  notifications.KindInfo,
		Title: "maintenance window",
	})
	assert.NoError(t, err)
}

func TestClient_SendError(t *testing.T) {
	client := newTestAPI(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	})

	err := client.SendToUser(context.Background(), "user-1", SendRequest{Kind: notifications.KindInfo})
	require.Error(t, err)

	var sendErr *SendError
	require.True(t, errors.As(err, &sendErr))
	assert.Equal(t, http.StatusForbidden, sendErr.StatusCode)
	assert.Equal(t, "send to user", sendErr.Op)
}

func TestClient_Delete(t *testing.T) {
	client := newTestAPI(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodDelete, r.Method)
		assert.Equal(t, "/notif-42", r.URL.Path)
		w.WriteHeader(http.StatusNoContent)
	})

	assert.NoError(t, client.Delete(context.Background(), "notif-42"))
}
