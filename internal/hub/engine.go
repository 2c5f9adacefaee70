package hub

import (
	"log/slog"
	"sync/atomic"

	"github.com/gorilla/websocket"
	"github.com/jonboulle/clockwork"

	"tradepulse/internal/domain"
	"tradepulse/internal/logging"
	"tradepulse/internal/metrics"
)

// Well-known channel names used by the convenience producers.
const (
	ChannelTrades    = "trades"
	ChannelPositions = "positions"
	ChannelMetrics   = "metrics"
	ChannelMarket    = "market"
	ChannelOrders    = "orders"
	ChannelSignals   = "signals"
)

// EngineConfig carries the engine's tunables.
type EngineConfig struct {
	QueueCapacity  int
	SendBufferSize int
}

// Engine ties the hub together: validate, rate-check, enqueue, fan out with
// per-connection isolation, clean up dead connections. Broadcast never
// raises for runtime load; only hub-closed and unknown-channel misuse
// surface as errors.
type Engine struct {
	registry  *ConnectionRegistry
	validator *Validator
	limiter   *RateLimiter
	queue     *BroadcastQueue
	stats     *Stats
	clock     clockwork.Clock

	sendBufferSize int
	closed         atomic.Bool
	done           chan struct{}
	dispatcherDone chan struct{}
}

// NewEngine wires the engine and starts its dispatcher goroutine.
func NewEngine(cfg EngineConfig, registry *ConnectionRegistry, validator *Validator, limiter *RateLimiter, stats *Stats, clock clockwork.Clock) *Engine {
	e := &Engine{
		registry:       registry,
		validator:      validator,
		limiter:        limiter,
		queue:          NewBroadcastQueue(cfg.QueueCapacity),
		stats:          stats,
		clock:          clock,
		sendBufferSize: cfg.SendBufferSize,
		done:           make(chan struct{}),
		dispatcherDone: make(chan struct{}),
	}
	go e.dispatch()
	return e
}

// Broadcast runs the pipeline: validate, sustained rate check, admission to
// the bounded queue. Invalid, rate-limited, and backpressure-dropped
// messages are silent no-ops to the caller; only metrics and logs record
// them. The fan-out itself happens on the dispatcher goroutine, which keeps
// per-channel FIFO ordering.
func (e *Engine) Broadcast(msg domain.Message, channel string) error {
	if e.closed.Load() {
		return domain.ErrHubClosed
	}
	if !e.registry.Known(channel) {
		return domain.ErrUnknownChannel
	}

	msg.Timestamp = e.clock.Now().UTC()

	payload, outcome := e.validator.Validate(msg)
	if outcome != ValidationOK {
		e.stats.addError(1)
		metrics.MessagesDroppedTotal.WithLabelValues("validation").Inc()
		slog.Debug("Message rejected by validator",
			"channel", channel,
			"reason", outcome.String(),
		)
		return nil
	}

	if !e.limiter.AllowChannel(channel) {
		e.stats.addError(1)
		e.stats.addRateLimited()
		metrics.MessagesDroppedTotal.WithLabelValues("rate_limit").Inc()
		return nil
	}

	if !e.queue.TryEnqueue(queuedMessage{channel: channel, payload: payload}) {
		e.stats.addDropped()
		metrics.MessagesDroppedTotal.WithLabelValues("backpressure").Inc()
		logging.WithChannel(channel).Warn("Broadcast queue full, message dropped",
			"capacity", e.queue.Capacity(),
		)
		return nil
	}

	return nil
}

// BroadcastTrade publishes a trade update to the trades channel.
func (e *Engine) BroadcastTrade(p domain.TradePayload) error {
	return e.Broadcast(domain.TradeUpdate(p), ChannelTrades)
}

// BroadcastPosition publishes a position update to the positions channel.
func (e *Engine) BroadcastPosition(p domain.PositionPayload) error {
	return e.Broadcast(domain.PositionUpdate(p), ChannelPositions)
}

// BroadcastMarket publishes a market data update to the market channel.
func (e *Engine) BroadcastMarket(p domain.MarketPayload) error {
	return e.Broadcast(domain.MarketUpdate(p), ChannelMarket)
}

// BroadcastMetrics publishes a metrics update to the metrics channel.
func (e *Engine) BroadcastMetrics(p domain.MetricsPayload) error {
	return e.Broadcast(domain.MetricsUpdate(p), ChannelMetrics)
}

// Register wraps an upgraded WebSocket connection for the channel and adds
// it to the registry. The connection arrives with zeroed rate-limit state.
func (e *Engine) Register(channel string, ws *websocket.Conn) (*Connection, error) {
	if e.closed.Load() {
		return nil, domain.ErrHubClosed
	}
	if !e.registry.Known(channel) {
		return nil, domain.ErrUnknownChannel
	}

	conn := NewConnection(channel, ws, e.clock, e.sendBufferSize)
	if !e.registry.Register(conn) {
		conn.Close()
		return nil, domain.ErrUnknownChannel
	}
	slog.Debug("Connection registered",
		"connection_id", conn.ID.String(),
		"channel", channel,
		"total", e.registry.ConnectionCount(channel),
	)
	return conn, nil
}

// Unregister removes the connection from the registry and tears it down.
// Unregistering an already-absent connection is a no-op; the duration
// histogram records each connection exactly once, even when the dispatcher
// evicts it before its handler returns.
func (e *Engine) Unregister(conn *Connection) {
	if e.registry.Unregister(conn) {
		metrics.ConnectionDuration.Observe(conn.Age(e.clock).Seconds())
	}
	conn.Close()
}

// KnownChannel reports whether the channel was configured at construction.
func (e *Engine) KnownChannel(channel string) bool {
	return e.registry.Known(channel)
}

// ConnectionCount returns current membership for a channel.
func (e *Engine) ConnectionCount(channel string) int {
	return e.registry.ConnectionCount(channel)
}

// ChannelCounts returns current membership per channel.
func (e *Engine) ChannelCounts() map[string]int {
	return e.registry.ChannelCounts()
}

// Closed reports whether shutdown has begun.
func (e *Engine) Closed() bool {
	return e.closed.Load()
}

// Snapshot returns the hub's current counters, with message rates refreshed
// from the limiter. Not on the hot send path.
func (e *Engine) Snapshot() Snapshot {
	for channel := range e.registry.ChannelCounts() {
		e.stats.setMessageRate(channel, e.limiter.Rate(channel))
	}
	return e.stats.Snapshot()
}

// Shutdown stops the dispatcher and closes all registered connections.
// Subsequent Broadcast and Register calls short-circuit with ErrHubClosed.
func (e *Engine) Shutdown() {
	if !e.closed.CompareAndSwap(false, true) {
		return
	}
	close(e.done)
	<-e.dispatcherDone
	e.registry.CloseAll("Server shutting down")
	slog.Info("Hub shut down")
}

func (e *Engine) dispatch() {
	defer close(e.dispatcherDone)
	for {
		select {
		case m := <-e.queue.Dequeue():
			e.fanOut(m)
			metrics.QueueDepth.Set(float64(e.queue.Depth()))
		case <-e.done:
			return
		}
	}
}

// fanOut delivers one message to every member of the channel snapshot.
// Failures are isolated per connection: a failing member is collected into
// the dead set and the loop continues. Cleanup happens strictly after the
// loop so membership mutation never races with the snapshot being iterated.
func (e *Engine) fanOut(m queuedMessage) {
	members := e.registry.MembersOf(m.channel)

	var dead []*Connection
	for _, conn := range members {
		if !e.limiter.AllowBurst(conn) {
			e.stats.addRateLimited()
			metrics.BurstLimitedTotal.Inc()
			continue
		}

		if err := conn.TrySend(m.payload); err != nil {
			dead = append(dead, conn)
			e.stats.addError(1)
			metrics.SendFailuresTotal.Inc()
			continue
		}
		e.stats.addSent(1)
		metrics.MessagesSentTotal.WithLabelValues(m.channel).Inc()
	}

	for _, conn := range dead {
		logging.WithConnection(conn.ID.String()).Warn("Disconnecting failed client",
			"channel", m.channel,
		)
		metrics.SlowClientsEvictedTotal.Inc()
		e.Unregister(conn)
	}
}
