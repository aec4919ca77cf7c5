package notifications

import (
	"sync"
)

// DefaultCap is the default maximum number of notifications retained in
// memory. Oldest entries are evicted first.
const DefaultCap = 50

// Store is a bounded, most-recent-first, in-memory notification
// collection with read/unread bookkeeping. It is fed by two independent
// asynchronous sources - the live stream and the history snapshot - and
// is safe for concurrent use.
type Store struct {
	records []Notification // head = newest
	cap     int
	mu      sync.RWMutex
}

// StoreOption configures a Store.
type StoreOption func(*Store)

// WithCap overrides the retention cap. Values below one are ignored.
func WithCap(n int) StoreOption {
	return func(s *Store) {
		if n > 0 {
			s.cap = n
		}
	}
}

// NewStore creates an empty store with DefaultCap retention.
func NewStore(opts ...StoreOption) *Store {
	s := &Store{cap: DefaultCap}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Prepend inserts a notification at the head and evicts tail records
// beyond the cap.
func (s *Store) Prepend(n Notification) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.records = append([]Notification{n}, s.records...)
	if len(s.records) > s.cap {
		s.records = s.records[:s.cap]
	}
}

// SetInitial seeds the store from a history snapshot. Without force the
// seed only applies to an empty store, so a late-resolving history fetch
// cannot clobber notifications already accumulated from the live stream.
// With force the snapshot replaces the current contents outright. Either
// way the cap is enforced.
func (s *Store) SetInitial(records []Notification, force bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !force && len(s.records) > 0 {
		return
	}

	if len(records) > s.cap {
		records = records[:s.cap]
	}
	s.records = make([]Notification, len(records))
	copy(s.records, records)
}

// MarkRead marks the notification with the given id as read. Unknown ids
// are a no-op; repeated calls are idempotent.
func (s *Store) MarkRead(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.records {
		if s.records[i].ID == id {
			s.records[i].MarkAsRead()
			return
		}
	}
}

// MarkAllRead marks every retained notification as read.
func (s *Store) MarkAllRead() {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.records {
		s.records[i].MarkAsRead()
	}
}

// Clear empties the store.
func (s *Store) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.records = nil
}

// List returns a copy of the retained notifications, newest first.
func (s *Store) List() []Notification {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Notification, len(s.records))
	copy(out, s.records)
	return out
}

// UnreadCount returns the number of unread notifications. It is
// recomputed on every call, never cached.
func (s *Store) UnreadCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	count := 0
	for i := range s.records {
		if !s.records[i].Read {
			count++
		}
	}
	return count
}

// Len returns the number of retained notifications.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records)
}

// Cap returns the retention cap.
func (s *Store) Cap() int {
	return s.cap
}
