package hub

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	ws "github.com/gorilla/websocket"
	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newTestConnPair dials a throwaway WebSocket server and returns both ends.
func newTestConnPair(t *testing.T) (server *ws.Conn, client *ws.Conn) {
	t.Helper()
	upgrader := ws.Upgrader{CheckOrigin: func(r *http.Request) bool { return true }}
	ready := make(chan *ws.Conn, 1)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			t.Errorf("upgrade failed: %v", err)
			return
		}
		ready <- conn
	}))
	t.Cleanup(func() { srv.Close() })

	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	clientConn, _, err := ws.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { clientConn.Close() })

	serverConn := <-ready
	t.Cleanup(func() { serverConn.Close() })

	return serverConn, clientConn
}

func TestClientWriter_DeliversMessages(t *testing.T) {
	server, client := newTestConnPair(t)

	cw := newClientWriter(server, clockwork.NewRealClock(), 16)
	t.Cleanup(func() { cw.stop() })

	require.NoError(t, cw.trySend([]byte(`{"type":"test"}`)))

	client.SetReadDeadline(time.Now().Add(time.Second))
	_, msg, err := client.ReadMessage()
	require.NoError(t, err)
	assert.JSONEq(t, `{"type":"test"}`, string(msg))
}

func TestClientWriter_TrySendFailsWhenBufferFull(t *testing.T) {
	// No run goroutine: the buffer fills deterministically
	cw := &clientWriter{
		clock:       clockwork.NewFakeClock(),
		sendChannel: make(chan []byte, 1),
		doneChannel: make(chan struct{}),
	}

	require.NoError(t, cw.trySend([]byte("a")))
	assert.ErrorIs(t, cw.trySend([]byte("b")), errSendBufferFull)
}

func TestClientWriter_TrySendFailsAfterClose(t *testing.T) {
	server, client := newTestConnPair(t)
	t.Cleanup(func() { client.Close() })

	cw := newClientWriter(server, clockwork.NewRealClock(), 16)
	cw.stop()

	assert.ErrorIs(t, cw.trySend([]byte("late")), errWriterClosed)
}

func TestClientWriter_StopIsIdempotent(t *testing.T) {
	server, client := newTestConnPair(t)
	t.Cleanup(func() { client.Close() })

	cw := newClientWriter(server, clockwork.NewRealClock(), 16)
	cw.stop()
	cw.stop()
	cw.stopGraceful("again")
}

// idleTestWriter builds a writer without the run goroutine so idle checks
// are driven solely by the test.
func idleTestWriter(conn *ws.Conn, clock clockwork.Clock) *clientWriter {
	return &clientWriter{
		connection:   conn,
		clock:        clock,
		sendChannel:  make(chan []byte, 16),
		doneChannel:  make(chan struct{}),
		lastActivity: clock.Now(),
	}
}

func TestClientWriter_IdleTimeout(t *testing.T) {
	fakeClock := clockwork.NewFakeClockAt(time.Now())
	server, _ := newTestConnPair(t)

	cw := idleTestWriter(server, fakeClock)

	assert.False(t, cw.checkIdleTimeout())

	fakeClock.Advance(idleWarningTime)
	assert.False(t, cw.checkIdleTimeout(), "should not disconnect at warning threshold")

	cw.activityMutex.Lock()
	warningSent := cw.warningSent
	cw.activityMutex.Unlock()
	assert.True(t, warningSent, "warning should be sent")

	fakeClock.Advance(1*time.Minute + 10*time.Second)
	assert.True(t, cw.checkIdleTimeout(), "connection should be marked for disconnect")
}

func TestClientWriter_ActivityResetsIdleTimer(t *testing.T) {
	fakeClock := clockwork.NewFakeClockAt(time.Now())
	server, _ := newTestConnPair(t)

	cw := idleTestWriter(server, fakeClock)

	fakeClock.Advance(3 * time.Minute)
	cw.recordActivity()

	fakeClock.Advance(3 * time.Minute)
	assert.False(t, cw.checkIdleTimeout(), "activity should have reset the idle timer")

	fakeClock.Advance(3 * time.Minute)
	assert.True(t, cw.checkIdleTimeout())
}
