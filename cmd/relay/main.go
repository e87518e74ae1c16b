package main

import (
	"context"
	"errors"
	"log"
	"os"
	"os/signal"
	"syscall"

	infraLogger "github.com/beamdrop/beamdrop/internal/logger"
	appSession "github.com/beamdrop/beamdrop/pkg/app/session"
	"github.com/beamdrop/beamdrop/pkg/app/token"
	"github.com/beamdrop/beamdrop/pkg/config"
	domainSession "github.com/beamdrop/beamdrop/pkg/domain/session"
	handlers "github.com/beamdrop/beamdrop/pkg/handlers/http"
	wsHandlers "github.com/beamdrop/beamdrop/pkg/handlers/websocket"
	infraCache "github.com/beamdrop/beamdrop/pkg/infra/cache"
	"github.com/beamdrop/beamdrop/pkg/infra/repository"
	"github.com/beamdrop/beamdrop/pkg/middleware"
	"github.com/beamdrop/beamdrop/pkg/relay"
	"github.com/beamdrop/beamdrop/pkg/server"
	"github.com/beamdrop/beamdrop/pkg/version"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	envFile := os.Getenv("ENV_FILE")
	if envFile == "" {
		envFile = ".env"
	}
	if err := godotenv.Load(envFile); err != nil {
		log.Println("no .env file found, using system environment variables")
	}

	logger := infraLogger.NewLogger()
	logger.WithFields(logrus.Fields{
		"version":    version.Version,
		"build_date": version.BuildDate,
	}).Info("starting beamdrop relay")

	if err := config.Load("./config"); err != nil {
		logger.Fatalf("failed to load config: %v", err)
	}
	cfg := config.GetConfig()

	repo := buildSessionRepository(cfg, logger)

	hub := relay.NewHub(logger, cfg.Relay.QueueDepth)
	encoder := token.NewEncoder(cfg.Server.PublicURL)

	creator := appSession.NewCreator(repo, cfg.Session.TTL, logger)
	finder := appSession.NewFinder(repo, logger)
	sweeper := appSession.NewSweeper(repo, hub, cfg.Session.SweepInterval, logger)

	middlewareTransport := &middleware.Transport{
		MetricsMiddleware: middleware.NewMetricsMiddleware(logger),
	}

	handlerTransport := &handlers.HandlerTransportDTO{
		CreateSessionHandler: handlers.NewCreateSessionHandler(logger, creator, encoder),
		GetSessionHandler:    handlers.NewGetSessionHandler(logger, finder),
		SubmitContentHandler: handlers.NewSubmitContentHandler(logger, finder, hub),
		StreamEventsHandler:  handlers.NewStreamEventsHandler(logger, finder, hub, cfg.Relay.HeartbeatInterval),
		GetVersionHandler:    handlers.NewGetVersionHandler(logger),
	}

	wsHandlerTransport := &wsHandlers.HandlerTransportDTO{
		StreamHandler: wsHandlers.NewStreamHandler(logger, finder, hub, cfg.Relay.HeartbeatInterval),
	}

	srv := server.NewRelayServer(server.RelayServerDI{
		Config:              cfg,
		Logger:              logger,
		MiddlewareTransport: middlewareTransport,
		HandlerTransport:    handlerTransport,
		WSHandlerTransport:  wsHandlerTransport,
	})

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return srv.Run()
	})
	g.Go(func() error {
		sweeper.Run(gctx)
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down relay server")
		return srv.Shutdown()
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		logger.WithError(err).Fatal("relay server failed")
	}
	logger.Info("relay server stopped")
}

func buildSessionRepository(cfg *config.Config, logger *logrus.Logger) domainSession.Repository {
	if !cfg.Redis.Enabled {
		return repository.NewMemorySessionRepository(cfg.Session.MaxSessions)
	}

	client, err := infraCache.NewClient(infraCache.Config{
		Host:     cfg.Redis.Host,
		Port:     cfg.Redis.Port,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	}, logger)
	if err != nil {
		logger.Fatalf("failed to initialize redis: %v", err)
	}
	return repository.NewRedisSessionRepository(client, cfg.Session.MaxSessions)
}
