package hub

import (
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func testRegistry() (*ConnectionRegistry, *Stats) {
	stats := NewStats()
	return NewConnectionRegistry([]string{"trades", "positions"}, stats), stats
}

func testConn(channel string) *Connection {
	return &Connection{ID: uuid.New(), Channel: channel}
}

func TestRegistry_RegisterAndCount(t *testing.T) {
	r, stats := testRegistry()

	assert.True(t, r.Register(testConn("trades")))
	assert.True(t, r.Register(testConn("trades")))

	assert.Equal(t, 2, r.ConnectionCount("trades"))
	assert.Equal(t, 0, r.ConnectionCount("positions"))
	assert.Equal(t, int64(2), stats.Snapshot().TotalConnections)
}

func TestRegistry_RegisterUnknownChannel(t *testing.T) {
	r, _ := testRegistry()

	assert.False(t, r.Register(testConn("bogus")))
	assert.False(t, r.Known("bogus"))
	assert.True(t, r.Known("trades"))
}

func TestRegistry_UnregisterIdempotent(t *testing.T) {
	r, stats := testRegistry()
	conn := testConn("trades")

	r.Register(conn)
	assert.True(t, r.Unregister(conn))
	assert.Equal(t, 0, r.ConnectionCount("trades"))

	before := stats.Snapshot()
	assert.False(t, r.Unregister(conn), "second removal must report absent")
	assert.False(t, r.Unregister(testConn("trades")))
	after := stats.Snapshot()

	assert.Equal(t, 0, r.ConnectionCount("trades"))
	assert.Equal(t, before.TotalConnections, after.TotalConnections)
	assert.Equal(t, before.ByChannel, after.ByChannel)
}

func TestRegistry_SnapshotUnaffectedByMutation(t *testing.T) {
	r, _ := testRegistry()
	a, b := testConn("trades"), testConn("trades")
	r.Register(a)
	r.Register(b)

	snapshot := r.MembersOf("trades")
	r.Unregister(a)
	r.Unregister(b)

	// The snapshot is a point-in-time copy; later mutation does not touch it
	assert.Len(t, snapshot, 2)
	assert.Empty(t, r.MembersOf("trades"))
}

func TestRegistry_ChannelCounts(t *testing.T) {
	r, _ := testRegistry()
	r.Register(testConn("trades"))
	r.Register(testConn("trades"))
	r.Register(testConn("positions"))

	assert.Equal(t, map[string]int{"trades": 2, "positions": 1}, r.ChannelCounts())
}

func TestRegistry_ConcurrentRegisterUnregister(t *testing.T) {
	r, _ := testRegistry()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			conn := testConn("trades")
			r.Register(conn)
			_ = r.MembersOf("trades")
			r.Unregister(conn)
		}()
	}
	wg.Wait()

	assert.Equal(t, 0, r.ConnectionCount("trades"))
}
