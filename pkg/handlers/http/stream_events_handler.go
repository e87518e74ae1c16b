package http

import (
	"bufio"
	"encoding/json"
	"fmt"
	"time"

	appSession "github.com/beamdrop/beamdrop/pkg/app/session"
	"github.com/beamdrop/beamdrop/pkg/infra/prometheus"
	"github.com/beamdrop/beamdrop/pkg/relay"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/utils"
	"github.com/sirupsen/logrus"
)

type streamEventsHandler struct {
	logger    *logrus.Logger
	finder    appSession.Finder
	hub       *relay.Hub
	heartbeat time.Duration
}

func NewStreamEventsHandler(
	logger *logrus.Logger,
	finder appSession.Finder,
	hub *relay.Hub,
	heartbeat time.Duration,
) Handler {
	return &streamEventsHandler{
		logger:    logger,
		finder:    finder,
		hub:       hub,
		heartbeat: heartbeat,
	}
}

// Handle attaches the receiver's long-lived SSE stream. Attaching supersedes
// any prior subscriber for the session; buffered items are flushed first,
// then the loop alternates between live content events and heartbeats until
// the subscription closes or a write fails (client gone).
func (h *streamEventsHandler) Handle(c *fiber.Ctx) error {
	// Copied because the id is retained by the hub and the stream writer
	// after the pooled ctx is recycled.
	sessionID := utils.CopyString(c.Params("session_id"))

	if _, err := h.finder.Find(c.Context(), sessionID); err != nil {
		return sessionErrorResponse(c, h.logger, err)
	}

	sub := h.hub.Attach(sessionID)

	c.Set(fiber.HeaderContentType, "text/event-stream")
	c.Set(fiber.HeaderCacheControl, "no-cache")
	c.Set(fiber.HeaderConnection, "keep-alive")
	c.Set("X-Accel-Buffering", "no")

	logger := h.logger
	hub := h.hub
	heartbeat := h.heartbeat

	c.Context().SetBodyStreamWriter(func(w *bufio.Writer) {
		defer hub.Detach(sub)

		ticker := time.NewTicker(heartbeat)
		defer ticker.Stop()

		for {
			select {
			case ev, ok := <-sub.Events():
				if !ok {
					return
				}
				if err := writeSSEEvent(w, ev); err != nil {
					logger.WithError(err).WithField("session_id", sessionID).
						Debug("subscriber stream write failed")
					return
				}
				prometheus.StreamEventsTotal.WithLabelValues(string(ev.Type)).Inc()
			case <-ticker.C:
				if err := writeSSEEvent(w, relay.HeartbeatEvent()); err != nil {
					logger.WithError(err).WithField("session_id", sessionID).
						Debug("subscriber stream heartbeat failed")
					return
				}
				prometheus.StreamEventsTotal.WithLabelValues(string(relay.EventTypeHeartbeat)).Inc()
			}
		}
	})

	return nil
}

func writeSSEEvent(w *bufio.Writer, ev relay.Event) error {
	data, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "data: %s\n\n", data); err != nil {
		return err
	}
	return w.Flush()
}
