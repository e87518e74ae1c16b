package server

import (
	"fmt"

	"github.com/beamdrop/beamdrop/pkg/config"
	handlers "github.com/beamdrop/beamdrop/pkg/handlers/http"
	wsHandlers "github.com/beamdrop/beamdrop/pkg/handlers/websocket"
	"github.com/beamdrop/beamdrop/pkg/infra/prometheus"
	"github.com/beamdrop/beamdrop/pkg/middleware"
	"github.com/beamdrop/beamdrop/pkg/server/router"
	"github.com/sirupsen/logrus"
)

type (
	RelayServerDI struct {
		Config              *config.Config
		Logger              *logrus.Logger
		MiddlewareTransport *middleware.Transport
		HandlerTransport    handlers.HandlerTransport
		WSHandlerTransport  wsHandlers.HandlerTransport
	}
	RelayServer struct {
		*BaseServer
	}
)

func NewRelayServer(di RelayServerDI) *RelayServer {
	prometheus.Initialize()

	s := &RelayServer{
		BaseServer: NewBaseServer(di.Config, di.Logger),
	}

	s.BaseServer.setupHealthCheck()
	s.BaseServer.setupMetricsEndpoint()
	s.BaseServer.WithRouters(
		router.NewRelayRouter(di.MiddlewareTransport, di.HandlerTransport, di.WSHandlerTransport),
	)
	return s
}

func (s *RelayServer) Run() error {
	addr := fmt.Sprintf("%s:%d", s.Config.Server.Host, s.Config.Server.Port)
	s.Logger.WithField("addr", addr).Info("starting relay server")
	return s.Router.Listen(addr)
}

func (s *RelayServer) Shutdown() error {
	return s.Router.Shutdown()
}
