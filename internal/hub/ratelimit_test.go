package hub

import (
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
)

func testLimiterConfig() RateLimiterConfig {
	return RateLimiterConfig{
		ChannelLimit: 5,
		Window:       60 * time.Second,
		BurstLimit:   10,
		BurstWindow:  100 * time.Millisecond,
	}
}

func TestRateLimiter_FirstMessageAlwaysAllowed(t *testing.T) {
	clock := clockwork.NewFakeClock()
	rl := NewRateLimiter(testLimiterConfig(), clock)

	assert.True(t, rl.AllowChannel("trades"))
	assert.True(t, rl.AllowBurst(&Connection{Channel: "trades"}))
}

func TestRateLimiter_SustainedLimitEnforced(t *testing.T) {
	clock := clockwork.NewFakeClock()
	rl := NewRateLimiter(testLimiterConfig(), clock)

	for i := 0; i < 5; i++ {
		assert.True(t, rl.AllowChannel("trades"), "message %d should be admitted", i)
	}
	assert.False(t, rl.AllowChannel("trades"), "sixth message should be rejected")
}

func TestRateLimiter_SustainedWindowResets(t *testing.T) {
	clock := clockwork.NewFakeClock()
	rl := NewRateLimiter(testLimiterConfig(), clock)

	for i := 0; i < 6; i++ {
		rl.AllowChannel("trades")
	}
	assert.False(t, rl.AllowChannel("trades"))

	clock.Advance(60 * time.Second)
	assert.True(t, rl.AllowChannel("trades"), "window rollover should reset the counter")
}

func TestRateLimiter_AdvisoryChannelNeverDrops(t *testing.T) {
	cfg := testLimiterConfig()
	cfg.AdvisoryChannels = []string{"metrics"}
	clock := clockwork.NewFakeClock()
	rl := NewRateLimiter(cfg, clock)

	for i := 0; i < 20; i++ {
		assert.True(t, rl.AllowChannel("metrics"), "advisory channel must admit message %d", i)
	}
	// Other channels still enforce
	for i := 0; i < 5; i++ {
		rl.AllowChannel("trades")
	}
	assert.False(t, rl.AllowChannel("trades"))
}

func TestRateLimiter_BurstLimit(t *testing.T) {
	clock := clockwork.NewFakeClock()
	rl := NewRateLimiter(testLimiterConfig(), clock)
	conn := &Connection{Channel: "trades"}

	admitted := 0
	for i := 0; i < 15; i++ {
		if rl.AllowBurst(conn) {
			admitted++
		}
	}
	assert.Equal(t, 10, admitted, "at most 10 of 15 messages admitted inside one burst window")
}

func TestRateLimiter_BurstWindowResets(t *testing.T) {
	clock := clockwork.NewFakeClock()
	rl := NewRateLimiter(testLimiterConfig(), clock)
	conn := &Connection{Channel: "trades"}

	for i := 0; i < 10; i++ {
		assert.True(t, rl.AllowBurst(conn))
	}
	assert.False(t, rl.AllowBurst(conn))

	clock.Advance(100 * time.Millisecond)
	assert.True(t, rl.AllowBurst(conn), "burst counter resets after the sub-window elapses")
}

func TestRateLimiter_BurstIsPerConnection(t *testing.T) {
	clock := clockwork.NewFakeClock()
	rl := NewRateLimiter(testLimiterConfig(), clock)
	a := &Connection{Channel: "trades"}
	b := &Connection{Channel: "trades"}

	for i := 0; i < 10; i++ {
		rl.AllowBurst(a)
	}
	assert.False(t, rl.AllowBurst(a))
	assert.True(t, rl.AllowBurst(b), "a saturated connection must not affect its siblings")
}

func TestRateLimiter_RateComputedOnRollover(t *testing.T) {
	clock := clockwork.NewFakeClock()
	rl := NewRateLimiter(testLimiterConfig(), clock)

	assert.Zero(t, rl.Rate("trades"))

	for i := 0; i < 5; i++ {
		rl.AllowChannel("trades")
	}
	clock.Advance(60 * time.Second)
	rl.AllowChannel("trades") // triggers rollover

	rate := rl.Rate("trades")
	assert.InDelta(t, 5.0/60.0, rate, 0.001)
}
