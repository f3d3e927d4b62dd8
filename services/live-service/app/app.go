package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/burakmert236/clubscore/common/auth"
	"github.com/burakmert236/clubscore/common/cache"
	"github.com/burakmert236/clubscore/common/config"
	"github.com/burakmert236/clubscore/common/database"
	commonevents "github.com/burakmert236/clubscore/common/events"
	"github.com/burakmert236/clubscore/common/httpx"
	"github.com/burakmert236/clubscore/common/logger"
	"github.com/burakmert236/clubscore/common/natsjetstream"
	"github.com/burakmert236/clubscore/common/server"
	"github.com/burakmert236/clubscore/services/live-service/internal/events"
	"github.com/burakmert236/clubscore/services/live-service/internal/gateway"
	"github.com/burakmert236/clubscore/services/live-service/internal/registry"
	"github.com/burakmert236/clubscore/services/live-service/internal/service"
)

const serviceName = "live-service"

type App struct {
	cfg        *config.Config
	httpServer *http.Server
	opsServer  *server.OpsServer
	logger     *logger.Logger
	clock      clockwork.Clock

	registry   registry.Registry
	hub        *gateway.Hub
	wsHandler  *gateway.Handler
	fanout     service.FanoutService
	subscriber *events.EventSubscriber

	cleanup []func() error
}

func New(ctx context.Context, cfg *config.Config) (*App, error) {
	app := &App{
		cfg:     cfg,
		clock:   clockwork.NewRealClock(),
		cleanup: make([]func() error, 0),
	}

	app.initLogger()

	if err := app.initRegistry(ctx); err != nil {
		return nil, fmt.Errorf("failed to init registry: %w", err)
	}

	app.hub = gateway.NewHub(gateway.Config{
		WriteTimeout: cfg.Live.WriteTimeout,
		PingInterval: cfg.Live.PingInterval,
	}, app.logger)
	app.fanout = service.NewFanoutService(app.registry, app.hub, app.clock, app.logger)

	if err := app.initMessaging(ctx); err != nil {
		return nil, fmt.Errorf("failed to init messaging: %w", err)
	}

	app.initHTTP()

	app.opsServer = server.NewOpsServer(serviceName, app.logger)

	return app, nil
}

func (a *App) initLogger() {
	a.logger = logger.ForService(serviceName, a.cfg.IsProduction(), a.cfg.Server.LogLevel, a.cfg.Server.LogFormat)
	a.cleanup = append(a.cleanup, func() error {
		_ = a.logger.Sync()
		return nil
	})
}

func (a *App) initRegistry(ctx context.Context) error {
	switch a.cfg.Live.Registry {
	case registry.BackendRedis:
		redisClient, err := cache.NewRedisClient(ctx, a.cfg.Redis)
		if err != nil {
			return err
		}
		a.cleanup = append(a.cleanup, redisClient.Close)
		a.registry = registry.NewRedisRegistry(redisClient, a.clock, a.cfg.Live.ConnectionTTL, a.logger)
		a.logger.Info("Redis connection registry ready", "address", redisClient.Addr())

	case registry.BackendDynamoDB, "":
		dynamoClient, err := database.NewDynamoDBClient(ctx, a.cfg)
		if err != nil {
			return err
		}
		a.registry = registry.NewDynamoRegistry(dynamoClient, a.cfg.Live.ConnectionTTL)
		a.logger.Info("DynamoDB connection registry ready", "table", dynamoClient.Table())

	default:
		return fmt.Errorf("unknown live.registry %q", a.cfg.Live.Registry)
	}
	return nil
}

// initMessaging leaves the relay off when NATS is not configured; client
// frames still broadcast.
func (a *App) initMessaging(ctx context.Context) error {
	if a.cfg.NATS.URL == "" {
		a.logger.Warn("NATS URL not set, match event relay is disabled")
		return nil
	}

	natsClient, err := natsjetstream.NewClient(natsjetstream.ConfigFrom(a.cfg.NATS, serviceName), a.logger)
	if err != nil {
		return err
	}
	a.cleanup = append(a.cleanup, natsClient.Close)

	if err := natsClient.EnsureStream(ctx, natsjetstream.StreamConfig{
		Name:     commonevents.MatchEventsStream,
		Subjects: commonevents.StreamSubjects(),
		MaxAge:   24 * time.Hour,
	}); err != nil {
		return err
	}

	a.subscriber = events.NewEventSubscriber(natsClient, a.fanout, a.logger)
	return nil
}

func (a *App) initHTTP() {
	var verifier auth.TokenVerifier
	if a.cfg.Auth.Issuer != "" {
		verifier = auth.NewVerifier(
			a.cfg.Auth.Issuer,
			a.cfg.Auth.ClientID,
			auth.NewRemoteKeySet(a.cfg.Auth.KeySetURL(), nil),
		)
	}

	a.wsHandler = gateway.NewHandler(a.hub, a.fanout, verifier, a.cfg.CORS.AllowedOrigins, a.logger)

	router := gateway.NewRouter(a.wsHandler)
	router.Use(httpx.AccessLog(a.logger))

	a.httpServer = &http.Server{
		Addr:              fmt.Sprintf(":%d", a.cfg.Live.HTTPPort),
		Handler:           httpx.CORS(a.cfg.CORS.AllowedOrigins).Handler(router),
		ReadHeaderTimeout: 10 * time.Second,
	}
}

func (a *App) Logger() *logger.Logger {
	return a.logger
}

func (a *App) Start(ctx context.Context) error {
	if _, err := a.opsServer.Listen(a.cfg.Live.GRPCPort); err != nil {
		return err
	}

	if a.subscriber != nil {
		if err := a.subscriber.Start(ctx); err != nil {
			return err
		}
	}

	go func() {
		a.logger.Info("HTTP server listening", "addr", a.httpServer.Addr)
		if err := a.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.logger.Fatal("HTTP server failed", "error", err)
		}
	}()

	a.opsServer.SetServing(true)
	a.logger.Info("Application started successfully")

	return nil
}

func (a *App) Stop(ctx context.Context) error {
	a.logger.Info("Stopping application...")
	a.opsServer.SetServing(false)

	if a.subscriber != nil {
		a.subscriber.Stop()
	}

	if a.httpServer != nil {
		if err := a.httpServer.Shutdown(ctx); err != nil {
			a.logger.Error("HTTP shutdown error", "error", err)
		}
	}

	// Hijacked sockets outlive Shutdown; close them and let each remove
	// its registry entry before the backends go away.
	a.hub.Close()
	if err := a.wsHandler.Drain(ctx); err != nil {
		a.logger.Warn("Sockets still open at shutdown", "error", err)
	}

	a.opsServer.Stop()

	for _, cleanup := range a.cleanup {
		if err := cleanup(); err != nil {
			a.logger.Error("Cleanup error", "error", err)
		}
	}

	a.logger.Info("Application stopped")
	return nil
}
