package hub

import (
	"log/slog"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"

	"tradepulse/internal/metrics"
)

// RateLimiterConfig holds the limits for both windows.
type RateLimiterConfig struct {
	// ChannelLimit is the sustained per-channel message budget per Window.
	ChannelLimit int
	Window       time.Duration
	// BurstLimit is the per-connection budget per BurstWindow.
	BurstLimit  int
	BurstWindow time.Duration
	// AdvisoryChannels lists channels whose sustained limit only logs on
	// breach instead of dropping. The burst gate stays hard everywhere.
	AdvisoryChannels []string
}

type channelWindow struct {
	start time.Time
	count int
	rate  float64
}

// RateLimiter tracks a sustained fixed window per channel and a short burst
// sub-window per connection. Counters reset monotonically when their window
// elapses; a scope with no prior activity is always allowed its first
// message.
type RateLimiter struct {
	clock    clockwork.Clock
	cfg      RateLimiterConfig
	advisory map[string]bool

	mu       sync.Mutex
	channels map[string]*channelWindow
}

// NewRateLimiter creates a rate limiter using the given clock.
func NewRateLimiter(cfg RateLimiterConfig, clock clockwork.Clock) *RateLimiter {
	advisory := make(map[string]bool, len(cfg.AdvisoryChannels))
	for _, ch := range cfg.AdvisoryChannels {
		advisory[ch] = true
	}
	return &RateLimiter{
		clock:    clock,
		cfg:      cfg,
		advisory: advisory,
		channels: make(map[string]*channelWindow),
	}
}

// AllowChannel admits or rejects a message against the channel's sustained
// window. On advisory channels a breach logs a warning but still admits.
// The current message rate for the channel is recomputed on each window
// rollover.
func (rl *RateLimiter) AllowChannel(channel string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.clock.Now()
	w, ok := rl.channels[channel]
	if !ok {
		w = &channelWindow{start: now}
		rl.channels[channel] = w
	}

	if elapsed := now.Sub(w.start); elapsed >= rl.cfg.Window {
		if secs := elapsed.Seconds(); secs > 0 {
			w.rate = float64(w.count) / secs
			metrics.MessageRate.WithLabelValues(channel).Set(w.rate)
		}
		w.start = now
		w.count = 0
	}

	w.count++
	if w.count > rl.cfg.ChannelLimit {
		if rl.advisory[channel] {
			slog.Warn("Channel rate limit breached (advisory)",
				"channel", channel,
				"count", w.count,
				"limit", rl.cfg.ChannelLimit,
			)
			return true
		}
		return false
	}
	return true
}

// AllowBurst admits or rejects a delivery against the connection's burst
// sub-window.
func (rl *RateLimiter) AllowBurst(c *Connection) bool {
	c.burstMutex.Lock()
	defer c.burstMutex.Unlock()

	now := rl.clock.Now()
	if c.burstStart.IsZero() || now.Sub(c.burstStart) >= rl.cfg.BurstWindow {
		c.burstStart = now
		c.burstCount = 0
	}

	if c.burstCount >= rl.cfg.BurstLimit {
		return false
	}
	c.burstCount++
	return true
}

// Rate returns the most recently computed message rate for a channel.
func (rl *RateLimiter) Rate(channel string) float64 {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	if w, ok := rl.channels[channel]; ok {
		return w.rate
	}
	return 0
}
