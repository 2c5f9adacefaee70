package server

import (
	"context"
	"fmt"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"tradepulse/internal/config"
	apperrors "tradepulse/internal/errors"
	"tradepulse/internal/hub"
)

type Server struct {
	echo      *echo.Echo
	config    *config.Config
	engine    *hub.Engine
	admission *hub.AdmissionController
	limits    *ConnectionLimits
	clock     clockwork.Clock
	startTime time.Time
}

func NewServer(cfg *config.Config, engine *hub.Engine, admission *hub.AdmissionController, clock clockwork.Clock) *Server {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	// Middleware
	e.Use(middleware.Recover())
	e.Use(correlationMiddleware())
	e.Use(requestLoggerMiddleware(clock))
	e.Use(apperrors.Middleware())

	srv := &Server{
		echo:      e,
		config:    cfg,
		engine:    engine,
		admission: admission,
		limits:    NewConnectionLimits(cfg.MaxConnections, cfg.MaxConnectionsPerIP, cfg.ConnectionRate, cfg.ConnectionBurst),
		clock:     clock,
		startTime: clock.Now(),
	}

	srv.registerRoutes()

	return srv
}

func (s *Server) Start() error {
	return s.echo.Start(fmt.Sprintf(":%s", s.config.Port))
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.echo.Shutdown(ctx)
}
