package broadcast

import (
	"context"
	"sync"
)

// Message wraps data of type T for type-safe fan-out.
type Message[T any] struct {
	Data T
}

// Subscriber receives messages from a Broadcaster.
type Subscriber[T any] interface {
	// Receive returns the channel broadcast messages arrive on. The
	// channel is closed when the subscriber or the broadcaster closes.
	Receive() <-chan Message[T]

	// Close closes the subscriber. Idempotent.
	Close() error
}

// Broadcaster fans messages out to any number of subscribers. Slow
// consumers have messages dropped rather than blocking the publisher.
type Broadcaster[T any] interface {
	// Subscribe registers a new subscriber. The subscription is cleaned
	// up when ctx is cancelled or the subscriber is closed.
	Subscribe(ctx context.Context) Subscriber[T]

	// Publish delivers a message to all active subscribers, dropping it
	// for subscribers whose buffers are full.
	Publish(msg Message[T])

	// Close shuts the broadcaster down and closes all subscribers.
	Close() error
}

type subscriber[T any] struct {
	ch     chan Message[T]
	closed bool
	mu     sync.Mutex
}

func (s *subscriber[T]) Receive() <-chan Message[T] {
	return s.ch
}

func (s *subscriber[T]) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.closed {
		close(s.ch)
		s.closed = true
	}
	return nil
}

// send attempts a non-blocking delivery. Returns false when the
// subscriber is closed or its buffer is full.
func (s *subscriber[T]) send(msg Message[T]) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return false
	}
	select {
	case s.ch <- msg:
		return true
	default:
		return false
	}
}

// MemoryBroadcaster is the in-process Broadcaster implementation.
type MemoryBroadcaster[T any] struct {
	subscribers map[*subscriber[T]]struct{}
	bufferSize  int
	closed      bool
	mu          sync.Mutex
	wg          sync.WaitGroup
}

// NewMemoryBroadcaster creates a broadcaster whose subscribers buffer up
// to bufferSize messages. A minimum of 1 is enforced so sends stay
// non-blocking.
func NewMemoryBroadcaster[T any](bufferSize int) *MemoryBroadcaster[T] {
	return &MemoryBroadcaster[T]{
		subscribers: make(map[*subscriber[T]]struct{}),
		bufferSize:  max(bufferSize, 1),
	}
}

func (b *MemoryBroadcaster[T]) Subscribe(ctx context.Context) Subscriber[T] {
	b.mu.Lock()
	defer b.mu.Unlock()

	sub := &subscriber[T]{ch: make(chan Message[T], b.bufferSize)}
	if b.closed {
		_ = sub.Close()
		return sub
	}
	b.subscribers[sub] = struct{}{}

	if ctx.Done() != nil {
		b.wg.Add(1)
		go func() {
			defer b.wg.Done()
			<-ctx.Done()
			b.unsubscribe(sub)
		}()
	}
	return sub
}

func (b *MemoryBroadcaster[T]) Publish(msg Message[T]) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return
	}
	for sub := range b.subscribers {
		// Full or closed subscribers miss this message; they are not
		// removed, a consumer that drains later keeps receiving.
		sub.send(msg)
	}
}

func (b *MemoryBroadcaster[T]) Close() error {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return nil
	}
	b.closed = true
	for sub := range b.subscribers {
		_ = sub.Close()
	}
	clear(b.subscribers)
	b.mu.Unlock()

	b.wg.Wait()
	return nil
}

func (b *MemoryBroadcaster[T]) unsubscribe(sub *subscriber[T]) {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.subscribers, sub)
	_ = sub.Close()
}
