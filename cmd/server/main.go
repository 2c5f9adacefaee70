package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/jonboulle/clockwork"

	"tradepulse/internal/config"
	"tradepulse/internal/domain"
	"tradepulse/internal/hub"
	"tradepulse/internal/logging"
	"tradepulse/internal/metrics"
	"tradepulse/internal/server"
	"tradepulse/internal/version"
)

func setupConfig() *config.Config {
	cfg, err := config.Load()
	if err != nil {
		// Use log before slog is initialized
		log.Fatalf("Failed to load config: %v", err)
	}
	return cfg
}

func buildHub(cfg *config.Config, clock clockwork.Clock) *hub.Engine {
	stats := hub.NewStats()
	registry := hub.NewConnectionRegistry(cfg.ChannelList(), stats)
	limiter := hub.NewRateLimiter(hub.RateLimiterConfig{
		ChannelLimit:     cfg.ChannelRateLimit,
		Window:           cfg.RateWindow,
		BurstLimit:       cfg.BurstLimit,
		BurstWindow:      cfg.BurstWindow,
		AdvisoryChannels: cfg.RateLimitDisabledList(),
	}, clock)

	return hub.NewEngine(hub.EngineConfig{
		QueueCapacity:  cfg.QueueCapacity,
		SendBufferSize: cfg.SendBufferSize,
	}, registry, hub.NewValidator(), limiter, stats, clock)
}

// runMetricsReporter periodically broadcasts a hub stats snapshot to the
// metrics channel so dashboards can subscribe to it like any other feed.
func runMetricsReporter(engine *hub.Engine, clock clockwork.Clock, interval time.Duration, done <-chan struct{}) {
	ticker := clock.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.Chan():
			snap := engine.Snapshot()
			err := engine.BroadcastMetrics(domain.MetricsPayload{
				ActiveConnections: snap.ActiveConnections,
				MessagesSent:      snap.MessagesSent,
				ErrorCount:        snap.ErrorCount,
				MessageRate:       snap.MessageRate[hub.ChannelMetrics],
				ByChannel:         snap.ByChannel,
				ReportedAt:        clock.Now().UTC(),
			})
			if errors.Is(err, domain.ErrHubClosed) {
				return
			}
			if err != nil {
				slog.Error("Metrics broadcast failed", "error", err)
			}
		case <-done:
			return
		}
	}
}

func runGracefulShutdown(srv *server.Server, engine *hub.Engine, reporterDone chan<- struct{}) <-chan struct{} {
	done := make(chan struct{})
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-sigChan
		slog.Info("Shutdown signal received, cleaning up...")

		close(reporterDone)

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			slog.Error("Server shutdown error", "error", err)
		}

		engine.Shutdown()

		close(done)
	}()

	return done
}

func main() {
	clock := clockwork.NewRealClock()

	cfg := setupConfig()

	logging.InitLogger(cfg.LogLevel, cfg.LogFormat)
	slog.Info("Application starting", "env", cfg.AppEnv, "port", cfg.Port, "channels", cfg.ChannelList())

	info := version.Get()
	metrics.BuildInfo.WithLabelValues(info.Version, info.Commit, info.BuildTime, runtime.Version()).Set(1)

	engine := buildHub(cfg, clock)
	admission := hub.NewAdmissionController(server.NewStaticTokenValidator(cfg.AuthTokenList()))
	if len(cfg.AuthTokenList()) == 0 {
		slog.Warn("No WS_AUTH_TOKENS configured, accepting all connections")
	}

	srv := server.NewServer(cfg, engine, admission, clock)

	reporterDone := make(chan struct{})
	go runMetricsReporter(engine, clock, cfg.MetricsInterval, reporterDone)

	done := runGracefulShutdown(srv, engine, reporterDone)

	slog.Info("Server starting", "port", cfg.Port)
	if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		slog.Error("Server error", "error", err)
		os.Exit(1)
	}

	<-done
}
