package hub

import (
	"sync"
	"sync/atomic"
)

// Stats aggregates hub counters. The counters are monotonic; the per-channel
// connection gauges track current membership. All methods are safe for
// concurrent use; register, unregister, and broadcast all touch this.
type Stats struct {
	messagesSent     atomic.Int64
	errorCount       atomic.Int64
	totalConnections atomic.Int64
	queueDrops       atomic.Int64
	rateLimited      atomic.Int64

	mu          sync.RWMutex
	byChannel   map[string]int
	messageRate map[string]float64
}

// NewStats creates an empty stats aggregate.
func NewStats() *Stats {
	return &Stats{
		byChannel:   make(map[string]int),
		messageRate: make(map[string]float64),
	}
}

func (s *Stats) addSent(n int64)    { s.messagesSent.Add(n) }
func (s *Stats) addError(n int64)   { s.errorCount.Add(n) }
func (s *Stats) addDropped()        { s.queueDrops.Add(1) }
func (s *Stats) addRateLimited()    { s.rateLimited.Add(1) }
func (s *Stats) connectionOpened()  { s.totalConnections.Add(1) }

func (s *Stats) setChannelCount(channel string, count int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.byChannel[channel] = count
}

func (s *Stats) setMessageRate(channel string, rate float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.messageRate[channel] = rate
}

// Snapshot is a point-in-time copy of the hub's counters and gauges.
type Snapshot struct {
	MessagesSent      int64              `json:"messages_sent"`
	ErrorCount        int64              `json:"error_count"`
	TotalConnections  int64              `json:"total_connections"`
	QueueDrops        int64              `json:"queue_drops"`
	RateLimited       int64              `json:"rate_limited"`
	ActiveConnections int64              `json:"active_connections"`
	ByChannel         map[string]int     `json:"by_channel"`
	MessageRate       map[string]float64 `json:"message_rate"`
}

// Snapshot returns a consistent copy of the current values.
func (s *Stats) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	byChannel := make(map[string]int, len(s.byChannel))
	var active int64
	for ch, n := range s.byChannel {
		byChannel[ch] = n
		active += int64(n)
	}
	rates := make(map[string]float64, len(s.messageRate))
	for ch, r := range s.messageRate {
		rates[ch] = r
	}

	return Snapshot{
		MessagesSent:      s.messagesSent.Load(),
		ErrorCount:        s.errorCount.Load(),
		TotalConnections:  s.totalConnections.Load(),
		QueueDrops:        s.queueDrops.Load(),
		RateLimited:       s.rateLimited.Load(),
		ActiveConnections: active,
		ByChannel:         byChannel,
		MessageRate:       rates,
	}
}
