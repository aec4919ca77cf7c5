package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"

	"github.com/quangdang48/cinehub-notify/pkg/logger"
	"github.com/quangdang48/cinehub-notify/pkg/notifications"
)

const heartbeatInterval = 25 * time.Second

type server struct {
	log     *slog.Logger
	hub     *hub
	history *historyStore
	router  chi.Router
}

func newServer(log *slog.Logger, h *hub, history *historyStore) *server {
	s := &server{log: log, hub: h, history: history}

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Route("/api/notifications", func(r chi.Router) {
		r.Get("/stream", s.handleStream)
		r.Get("/", s.handleHistory)
		r.Post("/broadcast", s.handleBroadcast)
		r.Post("/send/client", s.handleSendToClient)
		r.Post("/send/user", s.handleSendToUser)
		r.Post("/send/users", s.handleSendToUsers)
		r.Delete("/{id}", s.handleDelete)
	})
	s.router = r
	return s
}

func (s *server) Handler() http.Handler {
	return s.router
}

// wireNotification is the stream/history wire shape consumed by the
// client packages.
type wireNotification struct {
	ID        string         `json:"id"`
	Type      string         `json:"type"`
	Title     string         `json:"title,omitempty"`
	Message   string         `json:"message,omitempty"`
	Timestamp string         `json:"timestamp,omitempty"`
	CreatedAt string         `json:"createdAt,omitempty"`
	Metadata  map[string]any `json:"metadata,omitempty"`
}

func (s *server) handleStream(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	clientID := uuid.New().String()
	client := s.hub.register(clientID, r.URL.Query().Get("userId"))
	defer s.hub.unregister(clientID)

	s.log.LogAttrs(r.Context(), slog.LevelInfo, "Stream client connected",
		logger.ClientID(clientID),
	)

	writeFrame(w, wireNotification{ID: clientID, Type: string(notifications.KindConnected)})
	flusher.Flush()

	heartbeat := time.NewTicker(heartbeatInterval)
	defer heartbeat.Stop()

	for {
		select {
		case <-r.Context().Done():
			s.log.LogAttrs(r.Context(), slog.LevelInfo, "Stream client disconnected",
				logger.ClientID(clientID),
			)
			return
		case <-heartbeat.C:
			fmt.Fprint(w, ": ping\n\n")
			flusher.Flush()
		case n := <-client.ch:
			writeFrame(w, toWire(n))
			flusher.Flush()
		}
	}
}

func writeFrame(w http.ResponseWriter, frame wireNotification) {
	payload, _ := json.Marshal(frame)
	fmt.Fprintf(w, "data: %s\n\n", payload)
}

func toWire(n notifications.Notification) wireNotification {
	return wireNotification{
		ID:        n.ID,
		Type:      string(n.Kind),
		Title:     n.Title,
		Message:   n.Message,
		Timestamp: n.Timestamp.Format(time.RFC3339),
		Metadata:  n.Metadata,
	}
}

// handleHistory serves the paginated history in the nested envelope
// shape the production backend ships: {"data":{"data":[...],"meta":{...}}}.
func (s *server) handleHistory(w http.ResponseWriter, r *http.Request) {
	page := queryInt(r, "page", 1)
	limit := queryInt(r, "limit", 20)
	kind := notifications.Kind(r.URL.Query().Get("type"))
	targetUserID := r.URL.Query().Get("targetUserId")

	records, total := s.history.list(page, limit, kind, targetUserID)

	items := make([]wireNotification, 0, len(records))
	for _, rec := range records {
		item := toWire(rec.Notification)
		item.CreatedAt = item.Timestamp
		item.Timestamp = ""
		items = append(items, item)
	}

	s.respond(w, http.StatusOK, map[string]any{
		"data": map[string]any{
			"data": items,
			"meta": map[string]any{
				"page":  page,
				"limit": limit,
				"total": total,
			},
		},
	})
}

type sendRequest struct {
	ClientID string             `json:"clientId"`
	UserID   string             `json:"userId"`
	UserIDs  []string           `json:"userIds"`
	Kind     notifications.Kind `json:"type"`
	Title    string             `json:"title"`
	Message  string             `json:"message"`
	Metadata map[string]any     `json:"metadata"`
}

func (req sendRequest) toNotification() (notifications.Notification, error) {
	if req.Kind == "" {
		return notifications.Notification{}, fmt.Errorf("missing notification type")
	}
	n := notifications.Notification{
		Kind:     req.Kind,
		Title:    req.Title,
		Message:  req.Message,
		Metadata: req.Metadata,
	}
	n.Normalize(time.Now())
	return n, nil
}

func (s *server) handleBroadcast(w http.ResponseWriter, r *http.Request) {
	_, n, ok := s.decodeSend(w, r)
	if !ok {
		return
	}
	s.history.add(n, "")
	delivered := s.hub.broadcast(n)
	s.respondDelivered(w, n.ID, delivered)
}

func (s *server) handleSendToClient(w http.ResponseWriter, r *http.Request) {
	req, n, ok := s.decodeSend(w, r)
	if !ok {
		return
	}
	if req.ClientID == "" {
		s.respondError(w, http.StatusBadRequest, "missing clientId")
		return
	}
	s.history.add(n, "")
	delivered := 0
	if s.hub.sendToClient(req.ClientID, n) {
		delivered = 1
	}
	s.respondDelivered(w, n.ID, delivered)
}

func (s *server) handleSendToUser(w http.ResponseWriter, r *http.Request) {
	req, n, ok := s.decodeSend(w, r)
	if !ok {
		return
	}
	if req.UserID == "" {
		s.respondError(w, http.StatusBadRequest, "missing userId")
		return
	}
	s.history.add(n, req.UserID)
	s.respondDelivered(w, n.ID, s.hub.sendToUser(req.UserID, n))
}

func (s *server) handleSendToUsers(w http.ResponseWriter, r *http.Request) {
	req, n, ok := s.decodeSend(w, r)
	if !ok {
		return
	}
	if len(req.UserIDs) == 0 {
		s.respondError(w, http.StatusBadRequest, "missing userIds")
		return
	}
	delivered := 0
	for _, userID := range req.UserIDs {
		s.history.add(n, userID)
		delivered += s.hub.sendToUser(userID, n)
	}
	s.respondDelivered(w, n.ID, delivered)
}

func (s *server) handleDelete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if !s.history.delete(id) {
		s.respondError(w, http.StatusNotFound, "notification not found")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *server) decodeSend(w http.ResponseWriter, r *http.Request) (sendRequest, notifications.Notification, bool) {
	var req sendRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid JSON body")
		return req, notifications.Notification{}, false
	}
	n, err := req.toNotification()
	if err != nil {
		s.respondError(w, http.StatusBadRequest, err.Error())
		return req, notifications.Notification{}, false
	}
	return req, n, true
}

func (s *server) respondDelivered(w http.ResponseWriter, id string, delivered int) {
	s.respond(w, http.StatusAccepted, map[string]any{
		"data": map[string]any{
			"id":        id,
			"delivered": delivered,
		},
	})
}

func (s *server) respondError(w http.ResponseWriter, status int, message string) {
	s.respond(w, status, map[string]any{"error": message})
}

func (s *server) respond(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		s.log.LogAttrs(context.Background(), slog.LevelError, "Failed to encode response", logger.Error(err))
	}
}

func queryInt(r *http.Request, key string, fallback int) int {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return fallback
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v <= 0 {
		return fallback
	}
	return v
}
