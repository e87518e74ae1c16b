package http

import (
	"errors"
	"strings"

	appSession "github.com/beamdrop/beamdrop/pkg/app/session"
	"github.com/beamdrop/beamdrop/pkg/domain/content"
	"github.com/beamdrop/beamdrop/pkg/relay"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/utils"
	"github.com/sirupsen/logrus"
)

type submitContentRequest struct {
	Payload string `json:"payload"`
}

type submitContentHandler struct {
	logger *logrus.Logger
	finder appSession.Finder
	hub    *relay.Hub
}

func NewSubmitContentHandler(
	logger *logrus.Logger,
	finder appSession.Finder,
	hub *relay.Hub,
) Handler {
	return &submitContentHandler{
		logger: logger,
		finder: finder,
		hub:    hub,
	}
}

// Handle accepts a sender submission. Acceptance means queued: delivery is
// decoupled, so a missing or broken subscriber stream never fails the
// submission.
func (h *submitContentHandler) Handle(c *fiber.Ctx) error {
	// The id outlives this request as relay state, so it must not alias
	// the pooled ctx buffers.
	sessionID := utils.CopyString(c.Params("session_id"))

	if _, err := h.finder.Find(c.Context(), sessionID); err != nil {
		return sessionErrorResponse(c, h.logger, err)
	}

	payload := h.payload(c)
	if strings.TrimSpace(payload) == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "empty payload"})
	}

	item := content.NewItem(sessionID, payload)
	if err := h.hub.Enqueue(item); err != nil {
		if errors.Is(err, relay.ErrQueueFull) {
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{"error": err.Error()})
		}
		h.logger.WithError(err).Error("failed to enqueue content item")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to enqueue content item"})
	}

	return c.Status(fiber.StatusAccepted).JSON(fiber.Map{
		"item_id":     item.ID,
		"kind":        item.Kind,
		"received_at": item.ReceivedAt,
	})
}

// payload reads the submission body: JSON {"payload": ...} when declared as
// such, raw text otherwise.
func (h *submitContentHandler) payload(c *fiber.Ctx) string {
	if strings.HasPrefix(c.Get(fiber.HeaderContentType), fiber.MIMEApplicationJSON) {
		var req submitContentRequest
		if err := c.BodyParser(&req); err != nil {
			h.logger.WithError(err).Debug("failed to parse submission body")
			return ""
		}
		return req.Payload
	}
	return string(c.Body())
}
