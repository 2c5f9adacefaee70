package server

import (
	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func (s *Server) registerRoutes() {
	// Observability endpoints (no auth required)
	s.echo.GET("/health/live", s.handleLiveness)
	s.echo.GET("/health/ready", s.handleReadiness)
	s.echo.GET("/metrics", echo.WrapHandler(promhttp.Handler()))
	s.echo.GET("/version", s.handleVersion)

	// Hub introspection and message injection
	s.echo.GET("/api/stats", s.handleStats)
	s.echo.GET("/api/channels", s.handleChannels)
	s.echo.POST("/api/broadcast", s.handleBroadcast)

	// Streaming endpoint, one logical endpoint per channel name
	s.echo.GET("/ws/:channel", s.handleWebSocket)
}
