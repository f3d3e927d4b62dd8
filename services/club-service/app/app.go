package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/burakmert236/clubscore/common/auth"
	"github.com/burakmert236/clubscore/common/config"
	"github.com/burakmert236/clubscore/common/database"
	commonevents "github.com/burakmert236/clubscore/common/events"
	"github.com/burakmert236/clubscore/common/httpx"
	"github.com/burakmert236/clubscore/common/logger"
	"github.com/burakmert236/clubscore/common/natsjetstream"
	"github.com/burakmert236/clubscore/common/server"
	"github.com/burakmert236/clubscore/services/club-service/internal/events"
	"github.com/burakmert236/clubscore/services/club-service/internal/handler"
	"github.com/burakmert236/clubscore/services/club-service/internal/repository"
	"github.com/burakmert236/clubscore/services/club-service/internal/service"
)

const serviceName = "club-service"

type App struct {
	cfg            *config.Config
	httpServer     *http.Server
	opsServer      *server.OpsServer
	db             *database.DynamoDBClient
	natsClient     *natsjetstream.Client
	logger         *logger.Logger
	clock          clockwork.Clock
	eventPublisher events.Publisher

	cleanup []func() error
}

func New(ctx context.Context, cfg *config.Config) (*App, error) {
	app := &App{
		cfg:     cfg,
		clock:   clockwork.NewRealClock(),
		cleanup: make([]func() error, 0),
	}

	app.initLogger()

	if err := app.initDatabase(ctx); err != nil {
		return nil, fmt.Errorf("failed to init database: %w", err)
	}

	if err := app.initMessaging(ctx); err != nil {
		return nil, fmt.Errorf("failed to init messaging: %w", err)
	}

	if err := app.initHTTP(); err != nil {
		return nil, fmt.Errorf("failed to init HTTP: %w", err)
	}

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

func (a *App) initDatabase(ctx context.Context) error {
	dynamoClient, err := database.NewDynamoDBClient(ctx, a.cfg)
	if err != nil {
		return err
	}

	a.db = dynamoClient
	a.logger.Info("DynamoDB client ready", "table", a.db.Table(), "local", a.cfg.DynamoDB.UseLocalEndpoint)
	return nil
}

// initMessaging falls back to a no-op publisher when NATS is not configured.
func (a *App) initMessaging(ctx context.Context) error {
	if a.cfg.NATS.URL == "" {
		a.logger.Warn("NATS URL not set, match events are disabled")
		a.eventPublisher = events.NopPublisher{}
		return nil
	}

	natsClient, err := natsjetstream.NewClient(natsjetstream.ConfigFrom(a.cfg.NATS, serviceName), a.logger)
	if err != nil {
		return err
	}
	a.natsClient = natsClient
	a.cleanup = append(a.cleanup, natsClient.Close)

	if err := natsClient.EnsureStream(ctx, natsjetstream.StreamConfig{
		Name:     commonevents.MatchEventsStream,
		Subjects: commonevents.StreamSubjects(),
		MaxAge:   24 * time.Hour,
	}); err != nil {
		return err
	}

	a.eventPublisher = events.NewEventPublisher(natsClient, a.clock, a.logger)
	return nil
}

func (a *App) initHTTP() error {
	if a.cfg.Auth.Issuer == "" {
		return errors.New("auth.issuer is required")
	}

	clubRepo := repository.NewClubRepository(a.db)
	matchRepo := repository.NewMatchRepository(a.db)
	memberRepo := repository.NewMemberRepository(a.db)
	userRepo := repository.NewUserRepository(a.db)

	svcs := handler.Services{
		Clubs:    service.NewClubService(clubRepo, matchRepo, a.eventPublisher, a.clock, a.logger),
		Matches:  service.NewMatchService(matchRepo, a.eventPublisher, a.clock, a.logger),
		Members:  service.NewMemberService(memberRepo, userRepo, a.clock, a.logger),
		Profiles: service.NewProfileService(userRepo, a.clock, a.logger),
	}

	verifier := auth.NewVerifier(
		a.cfg.Auth.Issuer,
		a.cfg.Auth.ClientID,
		auth.NewRemoteKeySet(a.cfg.Auth.KeySetURL(), nil),
	)

	router := handler.NewRouter(svcs, verifier, a.logger)
	router.Use(httpx.AccessLog(a.logger))

	a.httpServer = &http.Server{
		Addr:              fmt.Sprintf(":%d", a.cfg.Server.HTTPPort),
		Handler:           httpx.CORS(a.cfg.CORS.AllowedOrigins).Handler(router),
		ReadHeaderTimeout: 10 * time.Second,
	}

	return nil
}

func (a *App) Logger() *logger.Logger {
	return a.logger
}

func (a *App) Start() error {
	if _, err := a.opsServer.Listen(a.cfg.Server.GRPCPort); err != nil {
		return err
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

	if a.httpServer != nil {
		if err := a.httpServer.Shutdown(ctx); err != nil {
			a.logger.Error("HTTP shutdown error", "error", err)
		}
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
