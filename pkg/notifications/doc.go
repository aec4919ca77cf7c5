// Package notifications provides the notification domain model and a
// bounded in-memory store with read/unread bookkeeping.
//
// The store is a most-recent-first sequence capped at a fixed size
// (DefaultCap). It is populated from two independent asynchronous
// sources: live stream frames are prepended one at a time, and a
// paginated history snapshot is merged in bulk via SetInitial. The
// seed-only-if-empty semantics of SetInitial exist because the two
// sources race: whichever resolves first must not be clobbered by a
// benign re-seed, while an explicit refresh may replace everything.
//
// # Usage
//
//	store := notifications.NewStore()
//
//	// Live frame from the stream client.
//	store.Prepend(notifications.Notification{
//	    ID:      "notif-123",
//	    Kind:    notifications.KindSuccess,
//	    Title:   "Movie published",
//	})
//
//	// History snapshot, seeded once.
//	store.SetInitial(history, false)
//
//	badge := store.UnreadCount()
package notifications
