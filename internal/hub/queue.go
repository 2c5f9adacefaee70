package hub

import (
	"tradepulse/internal/metrics"
)

type queuedMessage struct {
	channel string
	payload []byte
}

// BroadcastQueue is the bounded admission buffer between producers and the
// dispatcher. TryEnqueue never blocks: a full queue is a normal,
// fast-returning outcome under load, not an error.
type BroadcastQueue struct {
	ch chan queuedMessage
}

// NewBroadcastQueue creates a queue with the given capacity.
func NewBroadcastQueue(capacity int) *BroadcastQueue {
	return &BroadcastQueue{ch: make(chan queuedMessage, capacity)}
}

// TryEnqueue admits a message, or reports a backpressure drop when the
// buffer is at capacity.
func (q *BroadcastQueue) TryEnqueue(m queuedMessage) bool {
	select {
	case q.ch <- m:
		metrics.QueueDepth.Set(float64(len(q.ch)))
		return true
	default:
		return false
	}
}

// Dequeue exposes the consuming end for the dispatcher.
func (q *BroadcastQueue) Dequeue() <-chan queuedMessage {
	return q.ch
}

// Depth returns the number of queued messages.
func (q *BroadcastQueue) Depth() int {
	return len(q.ch)
}

// Capacity returns the configured buffer size.
func (q *BroadcastQueue) Capacity() int {
	return cap(q.ch)
}
