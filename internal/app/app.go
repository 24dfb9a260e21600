package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go-character-api/internal/config"
	"go-character-api/internal/database"
	"go-character-api/internal/event"
	"go-character-api/internal/handler"
	"go-character-api/internal/logger"
	"go-character-api/internal/metrics"
	"go-character-api/internal/middleware"
	"go-character-api/internal/repository"
	"go-character-api/internal/router"
	"go-character-api/internal/service"
	"go-character-api/internal/validate"
	"go-character-api/internal/websocket"
)

type App struct {
	server       *http.Server
	db           *database.DB
	cleanupFuncs []func()
}

func New() (*App, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	slog.SetDefault(logger.New(os.Stdout, cfg.LogFormat, cfg.LogLevel))

	return newWithConfig(context.Background(), cfg)
}

func newWithConfig(ctx context.Context, cfg *config.Config) (*App, error) {
	a := &App{}
	backgroundCtx, cancelBackground := context.WithCancel(context.Background())
	a.cleanupFuncs = append(a.cleanupFuncs, cancelBackground)

	fail := func(err error) (*App, error) {
		a.cleanup()
		return nil, err
	}

	var (
		credentials *service.CredentialStore
		characters  *service.CharacterService
	)

	bus := event.NewBus()
	rules := validate.CredentialRules{
		MinPasswordLength: cfg.PasswordMinLength,
		EmailDomain:       cfg.EmailDomain,
	}

	if cfg.DatabaseURL != "" {
		slog.Info("connecting to PostgreSQL")
		db, err := database.New(ctx, cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
		if err != nil {
			return fail(fmt.Errorf("failed to connect to database: %w", err))
		}
		a.db = db
		a.cleanupFuncs = append(a.cleanupFuncs, db.Close)

		if err := db.EnsureSchema(ctx); err != nil {
			return fail(fmt.Errorf("failed to ensure database schema: %w", err))
		}

		credentials = service.NewCredentialStore(repository.NewUserRepository(db.Pool), cfg.BcryptCost, rules)
		characters = service.NewCharacterService(repository.NewCharacterRepository(db.Pool), bus)
		slog.Info("database ready")
	} else {
		slog.Info("DATABASE_URL not set; using in-memory stores")
		credentials = service.NewCredentialStore(repository.NewMemoryUserRepository(), cfg.BcryptCost, rules)
		characters = service.NewCharacterService(repository.NewMemoryCharacterRepository(), bus)
	}

	revocations := repository.NewRevocationSet()
	tokens, err := service.NewTokenService(cfg.JWTSecret, cfg.JWTAccessTTL, cfg.JWTRefreshTTL, revocations)
	if err != nil {
		return fail(fmt.Errorf("failed to initialize token service: %w", err))
	}
	authService := service.NewAuthService(credentials, tokens, revocations, bus)
	go authService.StartRevocationSweeper(backgroundCtx, cfg.RevocationSweepInterval)

	auditService := service.NewAuditService(cfg.AuditCapacity)
	auditService.Start(backgroundCtx, bus)

	hub := websocket.NewHub(cfg.CORSOrigins)
	hub.Start(backgroundCtx, bus)

	if len(cfg.KafkaBrokers) > 0 {
		sink := event.NewKafkaSink(cfg.KafkaBrokers, cfg.KafkaTopic)
		sinkCtx, stopSink := context.WithCancel(backgroundCtx)
		sink.Start(sinkCtx, bus)
		a.cleanupFuncs = append(a.cleanupFuncs, func() {
			stopSink()
			if err := sink.Close(); err != nil {
				slog.Warn("failed to close kafka writer", "error", err)
			}
		})
		slog.Info("forwarding events to kafka", "brokers", cfg.KafkaBrokers, "topic", cfg.KafkaTopic)
	}

	if cfg.AdminEmail != "" {
		admin, created, err := credentials.EnsureAdmin(ctx, cfg.AdminEmail, cfg.AdminPassword)
		if err != nil {
			return fail(fmt.Errorf("failed to bootstrap admin: %w", err))
		}
		if created {
			slog.Info("bootstrap admin created", "user_id", admin.ID, "email", admin.Email)
		}
	}

	health := handler.NewHealthHandler(nil)
	if a.db != nil {
		health = handler.NewHealthHandler(a.db)
	}

	appMetrics := metrics.New()
	appMetrics.TrackRevocations(revocations.Len)

	authMiddleware := middleware.NewAuthMiddleware(authService).WithObserver(appMetrics)
	appRouter := router.New(cfg, authMiddleware, router.Handlers{
		Auth:      handler.NewAuthHandler(authService),
		Character: handler.NewCharacterHandler(characters),
		Audit:     handler.NewAuditHandler(auditService),
		Health:    health,
		Events:    hub,
		Metrics:   appMetrics,
	})

	a.server = &http.Server{
		Addr:              ":" + cfg.ServerPort,
		Handler:           appRouter,
		ReadHeaderTimeout: cfg.ServerReadHeaderTimeout,
		WriteTimeout:      cfg.ServerWriteTimeout,
		IdleTimeout:       cfg.ServerIdleTimeout,
	}

	return a, nil
}

func (a *App) Handler() http.Handler {
	return a.server.Handler
}

func (a *App) Run() error {
	go func() {
		slog.Info("server starting", "addr", a.server.Addr)
		if serveErr := a.server.ListenAndServe(); serveErr != nil && !errors.Is(serveErr, http.ErrServerClosed) {
			slog.Error("server failed", "error", serveErr)
			os.Exit(1)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	shutdownErr := a.server.Shutdown(ctx)
	a.cleanup()

	if shutdownErr != nil {
		return fmt.Errorf("graceful shutdown failed: %w", shutdownErr)
	}

	slog.Info("server stopped")
	return nil
}

// cleanup runs in reverse registration order so dependants stop before
// the resources they use.
func (a *App) cleanup() {
	for i := len(a.cleanupFuncs) - 1; i >= 0; i-- {
		a.cleanupFuncs[i]()
	}
	a.cleanupFuncs = nil
}
