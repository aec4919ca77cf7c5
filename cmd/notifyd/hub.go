package main

import (
	"sync"

	"github.com/quangdang48/cinehub-notify/pkg/notifications"
)

// streamClient is one open stream connection. Deliveries are
// non-blocking; a connection that stops draining misses frames.
type streamClient struct {
	id     string
	userID string
	ch     chan notifications.Notification
}

// hub tracks open stream connections and routes notifications to all of
// them, to a single connection, or to every connection of a user.
type hub struct {
	clients map[string]*streamClient
	mu      sync.RWMutex
}

func newHub() *hub {
	return &hub{clients: make(map[string]*streamClient)}
}

func (h *hub) register(clientID, userID string) *streamClient {
	c := &streamClient{
		id:     clientID,
		userID: userID,
		ch:     make(chan notifications.Notification, 32),
	}
	h.mu.Lock()
	h.clients[clientID] = c
	h.mu.Unlock()
	return c
}

func (h *hub) unregister(clientID string) {
	h.mu.Lock()
	delete(h.clients, clientID)
	h.mu.Unlock()
}

func (h *hub) broadcast(n notifications.Notification) int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	delivered := 0
	for _, c := range h.clients {
		if push(c, n) {
			delivered++
		}
	}
	return delivered
}

func (h *hub) sendToClient(clientID string, n notifications.Notification) bool {
	h.mu.RLock()
	c, ok := h.clients[clientID]
	h.mu.RUnlock()
	if !ok {
		return false
	}
	return push(c, n)
}

func (h *hub) sendToUser(userID string, n notifications.Notification) int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	delivered := 0
	for _, c := range h.clients {
		if c.userID == userID && push(c, n) {
			delivered++
		}
	}
	return delivered
}

func push(c *streamClient, n notifications.Notification) bool {
	select {
	case c.ch <- n:
		return true
	default:
		return false
	}
}
