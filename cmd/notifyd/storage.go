package main

import (
	"sync"

	"github.com/quangdang48/cinehub-notify/pkg/notifications"
)

// storedNotification is a history record with its delivery target. An
// empty target means the record was broadcast.
type storedNotification struct {
	notifications.Notification
	TargetUserID string
}

// historyStore holds sent notifications in memory, newest first, bounded
// by a cap. There is no persistence; the stub backend exists for local
// development only.
type historyStore struct {
	records []storedNotification
	cap     int
	mu      sync.RWMutex
}

func newHistoryStore(cap int) *historyStore {
	if cap <= 0 {
		cap = 500
	}
	return &historyStore{cap: cap}
}

func (s *historyStore) add(n notifications.Notification, targetUserID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.records = append([]storedNotification{{Notification: n, TargetUserID: targetUserID}}, s.records...)
	if len(s.records) > s.cap {
		s.records = s.records[:s.cap]
	}
}

// list returns one page of matching records plus the total match count.
func (s *historyStore) list(page, limit int, kind notifications.Kind, targetUserID string) ([]storedNotification, int) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var filtered []storedNotification
	for _, r := range s.records {
		if kind != "" && r.Kind != kind {
			continue
		}
		if targetUserID != "" && r.TargetUserID != targetUserID {
			continue
		}
		filtered = append(filtered, r)
	}

	total := len(filtered)
	start := (page - 1) * limit
	if start >= total {
		return nil, total
	}
	end := start + limit
	if end > total {
		end = total
	}

	out := make([]storedNotification, end-start)
	copy(out, filtered[start:end])
	return out, total
}

func (s *historyStore) delete(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, r := range s.records {
		if r.ID == id {
			s.records = append(s.records[:i], s.records[i+1:]...)
			return true
		}
	}
	return false
}
