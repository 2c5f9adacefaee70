package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, 1000, cfg.ChannelRateLimit)
	assert.Equal(t, time.Minute, cfg.RateWindow)
	assert.Equal(t, 10, cfg.BurstLimit)
	assert.Equal(t, 100*time.Millisecond, cfg.BurstWindow)
	assert.Equal(t, 1000, cfg.QueueCapacity)
	assert.Equal(t, int64(10000), cfg.MaxConnections)
	assert.Equal(t,
		[]string{"trades", "positions", "metrics", "market", "orders", "signals"},
		cfg.ChannelList(),
	)
	assert.Empty(t, cfg.AuthTokenList())
	assert.Empty(t, cfg.RateLimitDisabledList())
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("CHANNELS", "trades, alerts ,")
	t.Setenv("WS_AUTH_TOKENS", "tok1,tok2")
	t.Setenv("RATE_LIMIT_DISABLED_CHANNELS", "metrics")
	t.Setenv("BURST_WINDOW", "250ms")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.Port)
	assert.Equal(t, []string{"trades", "alerts"}, cfg.ChannelList())
	assert.Equal(t, []string{"tok1", "tok2"}, cfg.AuthTokenList())
	assert.Equal(t, []string{"metrics"}, cfg.RateLimitDisabledList())
	assert.Equal(t, 250*time.Millisecond, cfg.BurstWindow)
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	cases := map[string]string{
		"CHANNELS":           " , ,",
		"CHANNEL_RATE_LIMIT": "0",
		"RATE_WINDOW":        "-1s",
		"BURST_LIMIT":        "-5",
		"QUEUE_CAPACITY":     "0",
		"SEND_BUFFER_SIZE":   "0",
		"MAX_CONNECTIONS":    "-1",
	}

	for key, value := range cases {
		t.Run(key, func(t *testing.T) {
			t.Setenv(key, value)
			_, err := Load()
			assert.Error(t, err)
		})
	}
}
