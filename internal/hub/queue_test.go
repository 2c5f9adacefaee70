package hub

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBroadcastQueue_AcceptsUpToCapacity(t *testing.T) {
	q := NewBroadcastQueue(2)

	assert.True(t, q.TryEnqueue(queuedMessage{channel: "trades"}))
	assert.True(t, q.TryEnqueue(queuedMessage{channel: "trades"}))
	assert.Equal(t, 2, q.Depth())
}

func TestBroadcastQueue_DropsWhenFull(t *testing.T) {
	q := NewBroadcastQueue(2)

	q.TryEnqueue(queuedMessage{channel: "trades"})
	q.TryEnqueue(queuedMessage{channel: "trades"})

	// Never blocks, never exceeds capacity
	assert.False(t, q.TryEnqueue(queuedMessage{channel: "trades"}))
	assert.Equal(t, 2, q.Depth())
	assert.Equal(t, 2, q.Capacity())
}

func TestBroadcastQueue_DrainReopensCapacity(t *testing.T) {
	q := NewBroadcastQueue(1)

	q.TryEnqueue(queuedMessage{channel: "trades"})
	assert.False(t, q.TryEnqueue(queuedMessage{channel: "trades"}))

	<-q.Dequeue()
	assert.True(t, q.TryEnqueue(queuedMessage{channel: "trades"}))
}
