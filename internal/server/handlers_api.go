package server

import (
	"errors"

	"github.com/labstack/echo/v4"

	"tradepulse/internal/domain"
	apperrors "tradepulse/internal/errors"
)

func (s *Server) handleStats(c echo.Context) error {
	return c.JSON(200, s.engine.Snapshot())
}

type broadcastRequest struct {
	Channel string         `json:"channel"`
	Type    string         `json:"type"`
	Data    map[string]any `json:"data,omitempty"`
}

// handleBroadcast injects a message into the hub over HTTP. Operators and
// integration tests use it to publish without an in-process producer.
func (s *Server) handleBroadcast(c echo.Context) error {
	var req broadcastRequest
	if err := c.Bind(&req); err != nil {
		return apperrors.ValidationError("request body must be a JSON broadcast message")
	}

	var data any
	if req.Data != nil {
		data = req.Data
	}
	msg, err := domain.NewMessage(domain.MessageType(req.Type), data)
	if err != nil {
		return apperrors.ValidationError(err.Error()).WithContext("type", req.Type)
	}

	if err := s.engine.Broadcast(msg, req.Channel); err != nil {
		switch {
		case errors.Is(err, domain.ErrUnknownChannel):
			return apperrors.NotFoundError("unknown channel").WithContext("channel", req.Channel)
		case errors.Is(err, domain.ErrHubClosed):
			return apperrors.InternalError("hub is shut down", err)
		default:
			return apperrors.InternalError("broadcast failed", err)
		}
	}

	return c.JSON(202, map[string]string{"status": "queued"})
}

func (s *Server) handleChannels(c echo.Context) error {
	counts := s.engine.ChannelCounts()
	channels := make([]map[string]any, 0, len(counts))
	for name, count := range counts {
		channels = append(channels, map[string]any{
			"name":        name,
			"connections": count,
		})
	}
	return c.JSON(200, map[string]any{"channels": channels})
}
