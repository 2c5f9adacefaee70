package hub

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/jonboulle/clockwork"
)

// Connection is the hub-side handle for one live client stream. It is owned
// by the registry entry for its channel; nothing else retains it across
// calls. The burst counters belong to the rate limiter and are reset
// monotonically as the burst window elapses.
type Connection struct {
	ID      uuid.UUID
	Channel string

	writer   *clientWriter
	openedAt time.Time

	burstMutex sync.Mutex
	burstStart time.Time
	burstCount int
}

// NewConnection wraps an upgraded WebSocket connection for the given channel
// with zeroed rate-limit state.
func NewConnection(channel string, ws *websocket.Conn, clock clockwork.Clock, sendBufferSize int) *Connection {
	return &Connection{
		ID:       uuid.New(),
		Channel:  channel,
		writer:   newClientWriter(ws, clock, sendBufferSize),
		openedAt: clock.Now(),
	}
}

// TrySend queues a payload for delivery without blocking.
func (c *Connection) TrySend(payload []byte) error {
	return c.writer.trySend(payload)
}

// RecordActivity marks the connection as active, resetting the idle timer.
func (c *Connection) RecordActivity() {
	c.writer.recordActivity()
}

// Close tears down the connection immediately.
func (c *Connection) Close() {
	c.writer.stop()
}

// CloseGraceful sends a close frame with the given reason before tearing down.
func (c *Connection) CloseGraceful(reason string) {
	c.writer.stopGraceful(reason)
}

// Age returns how long the connection has been open.
func (c *Connection) Age(clock clockwork.Clock) time.Duration {
	return clock.Since(c.openedAt)
}
