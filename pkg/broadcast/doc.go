// Package broadcast provides a minimal in-process publish/subscribe
// primitive used to fan notification events out to multiple independent
// consumers (badge, toast system, connection indicator).
//
// Delivery is best effort: publishing never blocks, and a subscriber
// whose buffer is full simply misses that message.
package broadcast
