package config

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"go-simpler.org/env"
)

type Config struct {
	AppEnv    string `env:"APP_ENV" default:"development"`
	Port      string `env:"PORT" default:"8080"`
	LogLevel  string `env:"LOG_LEVEL" default:"info"`
	LogFormat string `env:"LOG_FORMAT" default:"text"`

	// Comma-separated list of accepted bearer tokens. Empty means
	// development mode: every token is accepted.
	AuthTokens string `env:"WS_AUTH_TOKENS"`

	// Comma-separated channel names the hub serves.
	Channels string `env:"CHANNELS" default:"trades,positions,metrics,market,orders,signals"`

	// Comma-separated channels whose sustained rate limit is advisory only.
	RateLimitDisabledChannels string `env:"RATE_LIMIT_DISABLED_CHANNELS"`

	ChannelRateLimit int           `env:"CHANNEL_RATE_LIMIT" default:"1000"`
	RateWindow       time.Duration `env:"RATE_WINDOW" default:"60s"`
	BurstLimit       int           `env:"BURST_LIMIT" default:"10"`
	BurstWindow      time.Duration `env:"BURST_WINDOW" default:"100ms"`

	QueueCapacity  int `env:"QUEUE_CAPACITY" default:"1000"`
	SendBufferSize int `env:"SEND_BUFFER_SIZE" default:"16"`

	MaxConnections      int64         `env:"MAX_CONNECTIONS" default:"10000"`
	MaxConnectionsPerIP int           `env:"MAX_CONNECTIONS_PER_IP" default:"50"`
	ConnectionRate      float64       `env:"CONNECTION_RATE" default:"10"`
	ConnectionBurst     int           `env:"CONNECTION_BURST" default:"10"`
	MetricsInterval     time.Duration `env:"METRICS_INTERVAL" default:"5s"`
}

func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		slog.Info("No .env file found, using environment variables")
	}

	var cfg Config
	if err := env.Load(&cfg, nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	if err := validate(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func validate(cfg *Config) error {
	if len(cfg.ChannelList()) == 0 {
		return fmt.Errorf("CHANNELS must name at least one channel")
	}
	if cfg.ChannelRateLimit <= 0 {
		return fmt.Errorf("CHANNEL_RATE_LIMIT must be positive, got %d", cfg.ChannelRateLimit)
	}
	if cfg.RateWindow <= 0 {
		return fmt.Errorf("RATE_WINDOW must be positive, got %v", cfg.RateWindow)
	}
	if cfg.BurstLimit <= 0 {
		return fmt.Errorf("BURST_LIMIT must be positive, got %d", cfg.BurstLimit)
	}
	if cfg.BurstWindow <= 0 {
		return fmt.Errorf("BURST_WINDOW must be positive, got %v", cfg.BurstWindow)
	}
	if cfg.QueueCapacity <= 0 {
		return fmt.Errorf("QUEUE_CAPACITY must be positive, got %d", cfg.QueueCapacity)
	}
	if cfg.SendBufferSize <= 0 {
		return fmt.Errorf("SEND_BUFFER_SIZE must be positive, got %d", cfg.SendBufferSize)
	}
	if cfg.MaxConnections <= 0 {
		return fmt.Errorf("MAX_CONNECTIONS must be positive, got %d", cfg.MaxConnections)
	}
	return nil
}

// ChannelList returns the configured channel names.
func (c *Config) ChannelList() []string {
	return splitList(c.Channels)
}

// AuthTokenList returns the configured bearer tokens.
func (c *Config) AuthTokenList() []string {
	return splitList(c.AuthTokens)
}

// RateLimitDisabledList returns the channels whose sustained limit is advisory.
func (c *Config) RateLimitDisabledList() []string {
	return splitList(c.RateLimitDisabledChannels)
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
