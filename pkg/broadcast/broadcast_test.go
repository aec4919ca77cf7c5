package broadcast

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func receiveOne[T any](t *testing.T, sub Subscriber[T]) T {
	t.Helper()
	select {
	case msg, ok := <-sub.Receive():
		require.True(t, ok, "subscriber channel closed")
		return msg.Data
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for message")
	}
	var zero T
	return zero
}

func TestMemoryBroadcaster_PublishSubscribe(t *testing.T) {
	b := NewMemoryBroadcaster[string](4)
	defer b.Close()

	sub1 := b.Subscribe(context.Background())
	sub2 := b.Subscribe(context.Background())

	b.Publish(Message[string]{Data: "hello"})

	assert.Equal(t, "hello", receiveOne(t, sub1))
	assert.Equal(t, "hello", receiveOne(t, sub2))
}

func TestMemoryBroadcaster_SlowConsumerDrops(t *testing.T) {
	b := NewMemoryBroadcaster[int](1)
	defer b.Close()

	slow := b.Subscribe(context.Background())

	b.Publish(Message[int]{Data: 1})
	b.Publish(Message[int]{Data: 2}) // dropped, buffer full
	b.Publish(Message[int]{Data: 3}) // dropped

	assert.Equal(t, 1, receiveOne(t, slow))

	// Draining keeps the subscription alive for later messages.
	b.Publish(Message[int]{Data: 4})
	assert.Equal(t, 4, receiveOne(t, slow))
}

func TestMemoryBroadcaster_ContextCancelCleansUp(t *testing.T) {
	b := NewMemoryBroadcaster[int](1)
	defer b.Close()

	ctx, cancel := context.WithCancel(context.Background())
	sub := b.Subscribe(ctx)
	cancel()

	select {
	case _, ok := <-sub.Receive():
		assert.False(t, ok)
	case <-time.After(time.Second):
		t.Fatal("subscriber channel was not closed after context cancellation")
	}
}

func TestMemoryBroadcaster_Close(t *testing.T) {
	b := NewMemoryBroadcaster[int](1)
	sub := b.Subscribe(context.Background())

	require.NoError(t, b.Close())
	require.NoError(t, b.Close()) // idempotent

	_, ok := <-sub.Receive()
	assert.False(t, ok)

	// Post-close subscriptions come back already closed.
	late := b.Subscribe(context.Background())
	_, ok = <-late.Receive()
	assert.False(t, ok)

	// Post-close publishes are a no-op.
	b.Publish(Message[int]{Data: 1})
}
