package http

import (
	"errors"
	"time"

	appSession "github.com/beamdrop/beamdrop/pkg/app/session"
	"github.com/beamdrop/beamdrop/pkg/domain/session"
	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
)

type getSessionHandler struct {
	logger *logrus.Logger
	finder appSession.Finder
}

func NewGetSessionHandler(logger *logrus.Logger, finder appSession.Finder) Handler {
	return &getSessionHandler{
		logger: logger,
		finder: finder,
	}
}

// Handle validates a session for the receiver's periodic refresh cycle; on
// 404/410 the client mints a replacement session instead of showing an error.
func (h *getSessionHandler) Handle(c *fiber.Ctx) error {
	sessionID := c.Params("session_id")

	s, err := h.finder.Find(c.Context(), sessionID)
	if err != nil {
		return sessionErrorResponse(c, h.logger, err)
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"session_id": s.ID,
		"state":      s.StateAt(time.Now()),
		"created_at": s.CreatedAt,
		"expires_at": s.ExpiresAt,
	})
}

func sessionErrorResponse(c *fiber.Ctx, logger *logrus.Logger, err error) error {
	switch {
	case errors.Is(err, session.ErrNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "session not found"})
	case errors.Is(err, session.ErrExpired):
		return c.Status(fiber.StatusGone).JSON(fiber.Map{"error": "session expired"})
	default:
		logger.WithError(err).Error("session lookup failed")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "session lookup failed"})
	}
}
