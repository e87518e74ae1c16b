package websocket

import (
	"context"
	"time"

	appSession "github.com/beamdrop/beamdrop/pkg/app/session"
	"github.com/beamdrop/beamdrop/pkg/infra/prometheus"
	"github.com/beamdrop/beamdrop/pkg/relay"
	"github.com/gofiber/contrib/websocket"
	"github.com/sirupsen/logrus"
)

const (
	writeWait = 10 * time.Second
	pongWait  = 45 * time.Second
)

type streamHandler struct {
	logger    *logrus.Logger
	finder    appSession.Finder
	hub       *relay.Hub
	heartbeat time.Duration
}

func NewStreamHandler(
	logger *logrus.Logger,
	finder appSession.Finder,
	hub *relay.Hub,
	heartbeat time.Duration,
) Handler {
	return &streamHandler{
		logger:    logger,
		finder:    finder,
		hub:       hub,
		heartbeat: heartbeat,
	}
}

// Handle serves the websocket flavor of the subscriber stream. The event
// JSON matches the SSE payloads; heartbeats double as the keep-alive ping.
// Subscriber slots are shared with SSE, so the last attacher wins across
// transports too.
func (h *streamHandler) Handle(c *websocket.Conn) {
	sessionID := c.Params("session_id")

	if _, err := h.finder.Find(context.Background(), sessionID); err != nil {
		h.logger.WithError(err).WithField("session_id", sessionID).
			Debug("rejecting websocket attach")
		_ = c.WriteControl(
			websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.ClosePolicyViolation, "invalid session"),
			time.Now().Add(writeWait),
		)
		return
	}

	sub := h.hub.Attach(sessionID)
	defer h.hub.Detach(sub)

	if err := c.SetReadDeadline(time.Now().Add(pongWait)); err != nil {
		h.logger.WithError(err).Error("failed to set read deadline")
		return
	}
	c.SetPongHandler(func(string) error {
		return c.SetReadDeadline(time.Now().Add(pongWait))
	})

	// Reader goroutine: its only job is to notice the client going away.
	readerDone := make(chan struct{})
	go func() {
		defer close(readerDone)
		for {
			if _, _, err := c.ReadMessage(); err != nil {
				return
			}
		}
	}()

	ticker := time.NewTicker(h.heartbeat)
	defer ticker.Stop()

	for {
		select {
		case ev, ok := <-sub.Events():
			if !ok {
				_ = c.WriteControl(
					websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseNormalClosure, "superseded"),
					time.Now().Add(writeWait),
				)
				return
			}
			if err := h.writeEvent(c, ev); err != nil {
				h.logger.WithError(err).WithField("session_id", sessionID).
					Debug("websocket stream write failed")
				return
			}
			prometheus.StreamEventsTotal.WithLabelValues(string(ev.Type)).Inc()
		case <-ticker.C:
			if err := h.writeEvent(c, relay.HeartbeatEvent()); err != nil {
				return
			}
			prometheus.StreamEventsTotal.WithLabelValues(string(relay.EventTypeHeartbeat)).Inc()
		case <-readerDone:
			return
		}
	}
}

func (h *streamHandler) writeEvent(c *websocket.Conn, ev relay.Event) error {
	if err := c.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
		return err
	}
	return c.WriteJSON(ev)
}
