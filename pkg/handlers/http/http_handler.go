package http

import "github.com/gofiber/fiber/v2"

type Handler interface {
	Handle(ctx *fiber.Ctx) error
}

type HandlerTransport interface {
	GetTransport() HandlerTransport
}

type HandlerTransportDTO struct {
	CreateSessionHandler Handler
	GetSessionHandler    Handler
	SubmitContentHandler Handler
	StreamEventsHandler  Handler
	GetVersionHandler    Handler
}

func (t *HandlerTransportDTO) GetTransport() HandlerTransport {
	return t
}
