package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Broadcast Pipeline Metrics
var (
	// MessagesSentTotal tracks messages delivered to client send buffers, by channel
	MessagesSentTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "hub_messages_sent_total",
			Help: "Total messages delivered to client send buffers by channel",
		},
		[]string{"channel"},
	)

	// MessagesDroppedTotal tracks messages dropped before fan-out, by reason
	MessagesDroppedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "hub_messages_dropped_total",
			Help: "Total messages dropped by reason (validation/rate_limit/backpressure)",
		},
		[]string{"reason"},
	)

	// SendFailuresTotal tracks per-connection send failures during fan-out
	SendFailuresTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "hub_send_failures_total",
			Help: "Total per-connection send failures during fan-out",
		},
	)

	// BurstLimitedTotal tracks sends suppressed by the per-connection burst gate
	BurstLimitedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "hub_burst_limited_total",
			Help: "Total sends suppressed by the per-connection burst limit",
		},
	)

	// QueueDepth tracks the current broadcast queue depth
	QueueDepth = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "hub_broadcast_queue_depth",
			Help: "Current broadcast queue depth",
		},
	)

	// MessageRate tracks the computed message rate per channel (messages/second)
	MessageRate = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "hub_message_rate",
			Help: "Admitted messages per second over the current rate window, by channel",
		},
		[]string{"channel"},
	)
)

// Connection Metrics
var (
	// ActiveConnections tracks current connections per channel
	ActiveConnections = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "hub_active_connections",
			Help: "Current number of registered connections by channel",
		},
		[]string{"channel"},
	)

	// ConnectionsTotal tracks connection attempts by result
	ConnectionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "hub_connections_total",
			Help: "Total connection attempts by result (accepted/rejected/error)",
		},
		[]string{"result"},
	)

	// ConnectionsRejectedTotal tracks rejected connection attempts by reason
	ConnectionsRejectedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "hub_connections_rejected_total",
			Help: "Total connection attempts rejected by reason (protocol/credentials/forbidden_channel/unknown_channel/rate_limit/per_ip_limit/global_limit)",
		},
		[]string{"reason"},
	)

	// SlowClientsEvictedTotal tracks clients disconnected for failing sends
	SlowClientsEvictedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "hub_slow_clients_evicted_total",
			Help: "Total clients disconnected because their send buffer was full or their transport failed",
		},
	)

	// IdleDisconnectsTotal tracks disconnects due to idle timeout
	IdleDisconnectsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "hub_idle_disconnects_total",
			Help: "Total connections closed due to idle timeout",
		},
	)

	// PingFailuresTotal tracks keepalive ping failures
	PingFailuresTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "hub_ping_failures_total",
			Help: "Total keepalive ping failures (client not responding)",
		},
	)

	// MessageSendDuration tracks WebSocket message write duration
	MessageSendDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "hub_message_send_duration_seconds",
			Help:    "WebSocket message write duration in seconds",
			Buckets: []float64{.0001, .0005, .001, .005, .01, .025, .05, .1, .25},
		},
	)

	// ConnectionDuration tracks connection lifetime
	ConnectionDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "hub_connection_duration_seconds",
			Help:    "WebSocket connection duration in seconds",
			Buckets: []float64{1, 5, 10, 30, 60, 300, 600, 1800, 3600},
		},
	)

	// ConnectionCapacity tracks global connection capacity utilization as percentage
	ConnectionCapacity = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "hub_connection_capacity_percent",
			Help: "Current connection capacity utilization (0-100%)",
		},
	)

	// UniqueIPs tracks number of unique IP addresses with active connections
	UniqueIPs = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "hub_unique_ips",
			Help: "Number of unique IP addresses with active connections",
		},
	)
)

// Control Message Metrics
var (
	// ControlMessagesTotal tracks inbound client control messages by type
	ControlMessagesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "hub_control_messages_total",
			Help: "Total inbound control messages by type (ping/subscribe/unknown/malformed)",
		},
		[]string{"type"},
	)
)

// Build Information Metrics
var (
	// BuildInfo is a gauge that always returns 1, with build metadata as labels
	BuildInfo = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "build_info",
			Help: "Build information with version, commit, build_time, and go_version labels (value is always 1)",
		},
		[]string{"version", "commit", "build_time", "go_version"},
	)
)
