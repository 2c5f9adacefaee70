package server

import (
	"github.com/labstack/echo/v4"

	"tradepulse/internal/version"
)

func (s *Server) handleLiveness(c echo.Context) error {
	uptime := s.clock.Since(s.startTime).Seconds()
	return c.JSON(200, map[string]any{
		"status": "ok",
		"uptime": uptime,
	})
}

// handleReadiness reports whether the hub is still accepting broadcasts and
// connections. After shutdown begins the instance drains and must be taken
// out of rotation.
func (s *Server) handleReadiness(c echo.Context) error {
	if s.engine.Closed() {
		return c.JSON(503, map[string]string{
			"status":       "unhealthy",
			"failed_check": "hub",
		})
	}
	return c.JSON(200, map[string]string{"status": "ready"})
}

func (s *Server) handleVersion(c echo.Context) error {
	return c.JSON(200, version.Get())
}
