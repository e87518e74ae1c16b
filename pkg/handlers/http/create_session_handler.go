package http

import (
	"errors"

	appSession "github.com/beamdrop/beamdrop/pkg/app/session"
	"github.com/beamdrop/beamdrop/pkg/app/token"
	"github.com/beamdrop/beamdrop/pkg/domain/session"
	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
)

type createSessionHandler struct {
	logger  *logrus.Logger
	creator appSession.Creator
	encoder *token.Encoder
}

func NewCreateSessionHandler(
	logger *logrus.Logger,
	creator appSession.Creator,
	encoder *token.Encoder,
) Handler {
	return &createSessionHandler{
		logger:  logger,
		creator: creator,
		encoder: encoder,
	}
}

func (h *createSessionHandler) Handle(c *fiber.Ctx) error {
	s, err := h.creator.Create(c.Context())
	if err != nil {
		if errors.Is(err, session.ErrStoreExhausted) {
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{"error": err.Error()})
		}
		h.logger.WithError(err).Error("failed to create session")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to create session"})
	}

	tok, err := h.encoder.Encode(s)
	if err != nil {
		h.logger.WithError(err).Error("failed to encode session token")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to encode session token"})
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"session_id": s.ID,
		"token":      tok,
		"created_at": s.CreatedAt,
		"expires_at": s.ExpiresAt,
	})
}
