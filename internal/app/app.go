package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"runtime"
	"time"

	"golang.org/x/sync/errgroup"

	"forecast-vintage-api/internal/config"
	"forecast-vintage-api/internal/database"
	"forecast-vintage-api/internal/handler"
	"forecast-vintage-api/internal/middleware"
	"forecast-vintage-api/internal/repository"
	"forecast-vintage-api/internal/router"
	"forecast-vintage-api/internal/seed"
	"forecast-vintage-api/internal/service"
)

const shutdownTimeout = 10 * time.Second

type App struct {
	server *http.Server
	db     *database.DB
}

// OpenDatabase connects the pool and applies the embedded schema.
func OpenDatabase(ctx context.Context, cfg *config.Config) (*database.DB, error) {
	slog.Info("connecting to PostgreSQL")
	db, err := database.New(ctx, cfg.DSN(), database.PoolOptions{MaxConns: cfg.DBMaxConns, MinConns: cfg.DBMinConns})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := db.EnsureSchema(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ensure database schema: %w", err)
	}

	return db, nil
}

// NewCredentialService wires the credential flows over db.
func NewCredentialService(cfg *config.Config, db *database.DB) (*service.CredentialService, *service.TokenService, error) {
	tokens, err := service.NewTokenService(cfg.TokenSecret, cfg.TokenTTL)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to initialize token service: %w", err)
	}

	hasher := service.NewPasswordHasher(cfg.BcryptCost, runtime.GOMAXPROCS(0))
	audit := service.NewAuditService(repository.NewAuditRepository(db.Pool))
	credentials, err := service.NewCredentialService(repository.NewCredentialRepository(db.Pool), hasher, tokens, audit)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to initialize credential service: %w", err)
	}

	return credentials, tokens, nil
}

func New(ctx context.Context, cfg *config.Config) (*App, error) {
	db, err := OpenDatabase(ctx, cfg)
	if err != nil {
		return nil, err
	}

	credentials, tokens, err := NewCredentialService(cfg, db)
	if err != nil {
		db.Close()
		return nil, err
	}

	if cfg.SeedCredentialsFile != "" {
		created, err := seed.FromFile(ctx, credentials, cfg.SeedCredentialsFile)
		if err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to seed credentials: %w", err)
		}
		slog.Info("credentials seeded", "file", cfg.SeedCredentialsFile, "created", created)
	}

	vintages := service.NewVintageService(repository.NewObservationRepository(db.Pool))
	slog.Info("database ready")

	appRouter := router.New(cfg, middleware.NewAuthMiddleware(tokens), router.Handlers{
		Auth:        handler.NewAuthHandler(credentials),
		User:        handler.NewUserHandler(credentials),
		Observation: handler.NewObservationHandler(vintages),
		Diagnostic:  handler.NewDiagnosticHandler(repository.NewDiagnosticRepository(db.Pool)),
	})

	server := &http.Server{
		Addr:              ":" + cfg.ServerPort,
		Handler:           appRouter,
		ReadHeaderTimeout: cfg.ServerReadHeaderTimeout,
		WriteTimeout:      cfg.ServerWriteTimeout,
		IdleTimeout:       cfg.ServerIdleTimeout,
	}

	return &App{server: server, db: db}, nil
}

// Run serves until ctx is cancelled, then shuts the server down gracefully
// and closes the pool.
func (a *App) Run(ctx context.Context) error {
	defer a.db.Close()

	var lc net.ListenConfig
	listener, err := lc.Listen(ctx, "tcp", a.server.Addr)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", a.server.Addr, err)
	}

	grp, ctx := errgroup.WithContext(ctx)

	grp.Go(func() error {
		slog.Info("server starting", "addr", listener.Addr().String())
		if err := a.server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("serve: %w", err)
		}
		return nil
	})

	grp.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
		defer cancel()

		if err := a.server.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
		slog.Info("server stopped")
		return nil
	})

	return grp.Wait()
}
