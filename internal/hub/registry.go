package hub

import (
	"sync"

	"github.com/google/uuid"

	"tradepulse/internal/metrics"
)

// ConnectionRegistry owns channel membership. Register and Unregister are
// the only mutators; MembersOf hands out point-in-time snapshot slices so a
// fan-out iteration is never affected by concurrent connects or disconnects
// and never holds the lock for the duration of sends.
type ConnectionRegistry struct {
	stats *Stats

	mu       sync.RWMutex
	channels map[string]map[uuid.UUID]*Connection
}

// NewConnectionRegistry creates a registry for the given channel names.
// Channels exist for the lifetime of the hub; an empty channel simply has
// zero members.
func NewConnectionRegistry(channels []string, stats *Stats) *ConnectionRegistry {
	members := make(map[string]map[uuid.UUID]*Connection, len(channels))
	for _, ch := range channels {
		members[ch] = make(map[uuid.UUID]*Connection)
	}
	return &ConnectionRegistry{
		stats:    stats,
		channels: members,
	}
}

// Known reports whether the channel was configured at construction.
func (r *ConnectionRegistry) Known(channel string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.channels[channel]
	return ok
}

// Register adds a connection to its channel's member set.
func (r *ConnectionRegistry) Register(conn *Connection) bool {
	r.mu.Lock()
	members, ok := r.channels[conn.Channel]
	if !ok {
		r.mu.Unlock()
		return false
	}
	members[conn.ID] = conn
	count := len(members)
	r.mu.Unlock()

	r.stats.connectionOpened()
	r.stats.setChannelCount(conn.Channel, count)
	metrics.ActiveConnections.WithLabelValues(conn.Channel).Set(float64(count))
	return true
}

// Unregister removes a connection from its channel and reports whether it
// was still registered. Removing an absent connection is a no-op, not an
// error; callers use the return value to run once-per-connection teardown.
func (r *ConnectionRegistry) Unregister(conn *Connection) bool {
	r.mu.Lock()
	members, ok := r.channels[conn.Channel]
	if !ok {
		r.mu.Unlock()
		return false
	}
	if _, present := members[conn.ID]; !present {
		r.mu.Unlock()
		return false
	}
	delete(members, conn.ID)
	count := len(members)
	r.mu.Unlock()

	r.stats.setChannelCount(conn.Channel, count)
	metrics.ActiveConnections.WithLabelValues(conn.Channel).Set(float64(count))
	return true
}

// MembersOf returns a snapshot of the channel's current members.
func (r *ConnectionRegistry) MembersOf(channel string) []*Connection {
	r.mu.RLock()
	defer r.mu.RUnlock()
	members := r.channels[channel]
	snapshot := make([]*Connection, 0, len(members))
	for _, conn := range members {
		snapshot = append(snapshot, conn)
	}
	return snapshot
}

// ConnectionCount returns the number of members registered on a channel.
func (r *ConnectionRegistry) ConnectionCount(channel string) int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.channels[channel])
}

// ChannelCounts returns current membership size per channel.
func (r *ConnectionRegistry) ChannelCounts() map[string]int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	counts := make(map[string]int, len(r.channels))
	for ch, members := range r.channels {
		counts[ch] = len(members)
	}
	return counts
}

// CloseAll gracefully closes every registered connection and empties all
// channels. Used during hub shutdown.
func (r *ConnectionRegistry) CloseAll(reason string) {
	r.mu.Lock()
	var closing []*Connection
	for ch, members := range r.channels {
		for id, conn := range members {
			closing = append(closing, conn)
			delete(members, id)
		}
		r.channels[ch] = members
	}
	r.mu.Unlock()

	for _, conn := range closing {
		conn.CloseGraceful(reason)
		r.stats.setChannelCount(conn.Channel, 0)
		metrics.ActiveConnections.WithLabelValues(conn.Channel).Set(0)
	}
}
