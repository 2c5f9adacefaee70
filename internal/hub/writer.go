package hub

import (
	"errors"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/jonboulle/clockwork"

	"tradepulse/internal/metrics"
)

const (
	writeDeadline   = 5 * time.Second
	pingInterval    = 30 * time.Second
	pongDeadline    = 60 * time.Second
	idleTimeout     = 5 * time.Minute
	idleWarningTime = 4 * time.Minute // warn 1 minute before disconnect
)

var (
	errWriterClosed   = errors.New("client writer is closed")
	errSendBufferFull = errors.New("client send buffer is full")
)

// clientWriter owns all writes to one WebSocket connection. Everything the
// hub sends to a client goes through sendChannel so the transport never sees
// concurrent writes.
type clientWriter struct {
	connection    *websocket.Conn
	clock         clockwork.Clock
	sendChannel   chan []byte
	doneChannel   chan struct{}
	closeOnce     sync.Once
	stopOnce      sync.Once
	wg            sync.WaitGroup
	lastActivity  time.Time
	activityMutex sync.Mutex
	warningSent   bool
}

func newClientWriter(connection *websocket.Conn, clock clockwork.Clock, bufferSize int) *clientWriter {
	cw := &clientWriter{
		connection:   connection,
		clock:        clock,
		sendChannel:  make(chan []byte, bufferSize),
		doneChannel:  make(chan struct{}),
		lastActivity: clock.Now(),
	}
	cw.configurePongHandler()
	cw.wg.Add(1)
	go cw.run()
	return cw
}

func (cw *clientWriter) run() {
	ticker := cw.clock.NewTicker(pingInterval)
	defer ticker.Stop()
	defer cw.wg.Done()

	for {
		select {
		case msg, ok := <-cw.sendChannel:
			if !ok {
				return
			}
			start := cw.clock.Now()
			cw.updateWriteDeadline()
			if err := cw.connection.WriteMessage(websocket.TextMessage, msg); err != nil {
				cw.markClosed()
				return
			}
			metrics.MessageSendDuration.Observe(cw.clock.Since(start).Seconds())
		case <-ticker.Chan():
			if cw.checkIdleTimeout() {
				metrics.IdleDisconnectsTotal.Inc()
				cw.markClosed()
				return
			}

			cw.updateWriteDeadline()
			if err := cw.connection.WriteMessage(websocket.PingMessage, nil); err != nil {
				metrics.PingFailuresTotal.Inc()
				cw.markClosed()
				return
			}
		case <-cw.doneChannel:
			return
		}
	}
}

// trySend queues a message without blocking. A closed writer or a full
// buffer is a send failure the caller handles (typically by evicting the
// connection).
func (cw *clientWriter) trySend(msg []byte) error {
	select {
	case <-cw.doneChannel:
		return errWriterClosed
	default:
	}

	select {
	case cw.sendChannel <- msg:
		return nil
	case <-cw.doneChannel:
		return errWriterClosed
	default:
		return errSendBufferFull
	}
}

// markClosed tears down the transport from inside the run goroutine after a
// write failure. Subsequent trySend calls fail immediately.
func (cw *clientWriter) markClosed() {
	cw.closeOnce.Do(func() {
		close(cw.doneChannel)
		_ = cw.connection.Close()
	})
}

func (cw *clientWriter) stop() {
	cw.stopOnce.Do(func() {
		cw.markClosed()
		cw.wg.Wait()
	})
}

// stopGraceful sends a WebSocket close frame with reason before closing.
func (cw *clientWriter) stopGraceful(reason string) {
	cw.stopOnce.Do(func() {
		alreadyClosed := true
		cw.closeOnce.Do(func() {
			alreadyClosed = false
			// Signal the run goroutine to exit, then wait for it so the
			// close frame below is the only writer on the connection.
			close(cw.doneChannel)
			cw.wg.Wait()

			closeMsg := websocket.FormatCloseMessage(websocket.CloseNormalClosure, reason)
			cw.updateWriteDeadline()
			_ = cw.connection.WriteMessage(websocket.CloseMessage, closeMsg)
			_ = cw.connection.Close()
		})
		if alreadyClosed {
			cw.wg.Wait()
		}
	})
}

func (cw *clientWriter) configurePongHandler() {
	cw.updateReadDeadline()
	cw.connection.SetPongHandler(func(string) error {
		cw.updateReadDeadline()
		cw.recordActivity()
		return nil
	})
}

func (cw *clientWriter) updateWriteDeadline() {
	deadline := cw.clock.Now().Add(writeDeadline)
	_ = cw.connection.SetWriteDeadline(deadline)
}

func (cw *clientWriter) updateReadDeadline() {
	deadline := cw.clock.Now().Add(pongDeadline)
	_ = cw.connection.SetReadDeadline(deadline)
}

// recordActivity updates the last activity timestamp.
func (cw *clientWriter) recordActivity() {
	cw.activityMutex.Lock()
	defer cw.activityMutex.Unlock()
	cw.lastActivity = cw.clock.Now()
	cw.warningSent = false
}

// checkIdleTimeout checks if the connection is idle and sends a warning or disconnects.
// Returns true if the connection should be terminated.
func (cw *clientWriter) checkIdleTimeout() bool {
	cw.activityMutex.Lock()
	idleDuration := cw.clock.Since(cw.lastActivity)
	warningSent := cw.warningSent
	cw.activityMutex.Unlock()

	if idleDuration >= idleTimeout {
		return true
	}

	if !warningSent && idleDuration >= idleWarningTime {
		warning := []byte(`{"warning":"Connection idle. Will disconnect if no activity within 1 minute."}`)
		cw.updateWriteDeadline()
		if err := cw.connection.WriteMessage(websocket.TextMessage, warning); err == nil {
			cw.activityMutex.Lock()
			cw.warningSent = true
			cw.activityMutex.Unlock()
		}
	}

	return false
}
