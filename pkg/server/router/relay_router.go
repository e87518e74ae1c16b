package router

import (
	"errors"

	handlers "github.com/beamdrop/beamdrop/pkg/handlers/http"
	wsHandlers "github.com/beamdrop/beamdrop/pkg/handlers/websocket"
	"github.com/beamdrop/beamdrop/pkg/middleware"
	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
)

var ErrInvalidHandlerTransport = errors.New("invalid handler transport")

const WebsocketPath = "/ws/:session_id"

type relayRouter struct {
	middlewareTransport *middleware.Transport
	handlerTransport    handlers.HandlerTransport
	wsHandlerTransport  wsHandlers.HandlerTransport
}

func NewRelayRouter(
	middlewareTransport *middleware.Transport,
	handlerTransport handlers.HandlerTransport,
	wsHandlerTransport wsHandlers.HandlerTransport,
) ServerRouter {
	return &relayRouter{
		middlewareTransport: middlewareTransport,
		handlerTransport:    handlerTransport,
		wsHandlerTransport:  wsHandlerTransport,
	}
}

func (r *relayRouter) BuildRoutes(router *fiber.App) error {
	handlerTransport, ok := r.handlerTransport.GetTransport().(*handlers.HandlerTransportDTO)
	if !ok {
		return ErrInvalidHandlerTransport
	}

	wsHandlerTransport, ok := r.wsHandlerTransport.GetTransport().(*wsHandlers.HandlerTransportDTO)
	if !ok {
		return ErrInvalidHandlerTransport
	}

	v1 := router.Group("/api/v1")
	{
		v1.Use(r.middlewareTransport.MetricsMiddleware.Middleware())

		v1.Get("/version", handlerTransport.GetVersionHandler.Handle)

		sessions := v1.Group("/sessions")
		{
			sessions.Post("", handlerTransport.CreateSessionHandler.Handle)
			sessions.Get("/:session_id", handlerTransport.GetSessionHandler.Handle)
			sessions.Post("/:session_id/items", handlerTransport.SubmitContentHandler.Handle)
			sessions.Get("/:session_id/events", handlerTransport.StreamEventsHandler.Handle)
		}
	}

	router.Use(WebsocketPath, func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})
	router.Get(WebsocketPath, websocket.New(wsHandlerTransport.StreamHandler.Handle))

	return nil
}
