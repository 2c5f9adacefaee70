package server

import (
	"log/slog"

	"github.com/jonboulle/clockwork"
	"github.com/labstack/echo/v4"

	"tradepulse/internal/correlation"
)

// correlationMiddleware attaches a correlation ID to every request so log
// lines emitted while handling it can be tied together. An incoming
// X-Request-ID is honored; otherwise a fresh ID is generated.
func correlationMiddleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			id := c.Request().Header.Get("X-Request-ID")
			if id == "" {
				id = correlation.NewID()
			}
			ctx := correlation.WithID(c.Request().Context(), id)
			c.SetRequest(c.Request().WithContext(ctx))
			c.Response().Header().Set("X-Request-ID", id)
			return next(c)
		}
	}
}

// requestLoggerMiddleware logs one line per completed request. Debug level
// keeps scrape and probe traffic out of production logs.
func requestLoggerMiddleware(clock clockwork.Clock) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := clock.Now()
			err := next(c)
			slog.Debug("Request handled",
				"method", c.Request().Method,
				"path", c.Request().URL.Path,
				"status", c.Response().Status,
				"duration_ms", clock.Since(start).Milliseconds(),
			)
			return err
		}
	}
}
