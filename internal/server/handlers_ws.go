package server

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"

	apperrors "tradepulse/internal/errors"
	"tradepulse/internal/hub"
	"tradepulse/internal/logging"
	"tradepulse/internal/metrics"
)

const maxInboundMessageSize = 4096

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // Browser dashboards connect from arbitrary origins
	},
}

// controlMessage is the JSON shape of inbound client -> hub messages.
type controlMessage struct {
	Type    string   `json:"type"`
	Channel string   `json:"channel,omitempty"`
	Symbols []string `json:"symbols,omitempty"`
}

func (s *Server) handleWebSocket(c echo.Context) error {
	channel := c.Param("channel")
	ip := c.RealIP()

	// Abuse limits run before any admission work
	if ok, reason := s.limits.Acquire(ip); !ok {
		metrics.ConnectionsTotal.WithLabelValues("rejected").Inc()
		metrics.ConnectionsRejectedTotal.WithLabelValues(string(reason)).Inc()
		return apperrors.LimitExceededError("connection limit reached").
			WithContext("reason", string(reason))
	}

	attempt := hub.ConnectionAttempt{
		ProtocolVersion: c.Request().Header.Get("X-Protocol-Version"),
		Token:           bearerToken(c.Request()),
		RemoteAddr:      ip,
	}

	if err := s.admission.Admit(c.Request().Context(), attempt, channel); err != nil {
		s.limits.Release(ip)
		metrics.ConnectionsTotal.WithLabelValues("rejected").Inc()
		return err
	}

	if !s.engine.KnownChannel(channel) {
		s.limits.Release(ip)
		metrics.ConnectionsTotal.WithLabelValues("rejected").Inc()
		metrics.ConnectionsRejectedTotal.WithLabelValues("unknown_channel").Inc()
		return apperrors.NotFoundError("unknown channel").WithContext("channel", channel)
	}

	ws, err := upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		s.limits.Release(ip)
		metrics.ConnectionsTotal.WithLabelValues("error").Inc()
		return nil // Upgrade already wrote the HTTP error response
	}

	conn, err := s.engine.Register(channel, ws)
	if err != nil {
		s.limits.Release(ip)
		metrics.ConnectionsTotal.WithLabelValues("error").Inc()
		_ = ws.Close()
		return nil
	}
	metrics.ConnectionsTotal.WithLabelValues("accepted").Inc()
	s.limits.PublishGauges()

	// Read pump blocks until the connection closes
	s.readPump(conn, ws)

	s.engine.Unregister(conn)
	s.limits.Release(ip)
	s.limits.PublishGauges()

	return nil
}

// readPump consumes inbound control messages until the connection drops.
// Malformed JSON is logged and ignored; the connection stays open.
func (s *Server) readPump(conn *hub.Connection, ws *websocket.Conn) {
	ws.SetReadLimit(maxInboundMessageSize)

	for {
		_, raw, err := ws.ReadMessage()
		if err != nil {
			return
		}
		conn.RecordActivity()

		var msg controlMessage
		if err := json.Unmarshal(raw, &msg); err != nil {
			metrics.ControlMessagesTotal.WithLabelValues("malformed").Inc()
			logging.WithConnection(conn.ID.String()).Debug("Ignoring malformed control message",
				"error", err,
			)
			continue
		}

		switch msg.Type {
		case "ping":
			metrics.ControlMessagesTotal.WithLabelValues("ping").Inc()
			s.reply(conn, map[string]any{
				"type":      "pong",
				"timestamp": s.clock.Now().UTC().Format(time.RFC3339Nano),
			})
		case "subscribe":
			metrics.ControlMessagesTotal.WithLabelValues("subscribe").Inc()
			logging.WithConnection(conn.ID.String()).Debug("Client subscription",
				"channel", msg.Channel,
				"symbols", msg.Symbols,
			)
			s.reply(conn, map[string]string{"status": "subscribed"})
		default:
			metrics.ControlMessagesTotal.WithLabelValues("unknown").Inc()
			s.reply(conn, map[string]string{"status": "error"})
		}
	}
}

// reply queues a control response on the connection's writer so control
// traffic never writes to the transport concurrently with broadcasts.
func (s *Server) reply(conn *hub.Connection, body any) {
	payload, err := json.Marshal(body)
	if err != nil {
		logging.WithError(err).Error("Failed to marshal control reply")
		return
	}
	if err := conn.TrySend(payload); err != nil {
		logging.WithConnection(conn.ID.String()).Debug("Failed to queue control reply",
			"error", err,
		)
	}
}

func bearerToken(r *http.Request) string {
	auth := r.Header.Get("Authorization")
	if token, ok := strings.CutPrefix(auth, "Bearer "); ok {
		return token
	}
	// Browser WebSocket clients cannot set headers; fall back to a query parameter.
	return r.URL.Query().Get("token")
}
