package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/aussiebroadwan/headcount/internal/login/domain"
	loginhttp "github.com/aussiebroadwan/headcount/internal/login/http"
	"github.com/aussiebroadwan/headcount/internal/login/seed"
	"github.com/aussiebroadwan/headcount/internal/login/service"
	"github.com/aussiebroadwan/headcount/internal/login/store/drivers"
	"github.com/aussiebroadwan/headcount/internal/login/store/drivers/sqlstore"
	"github.com/aussiebroadwan/headcount/pkg/cryptox"
	"github.com/aussiebroadwan/headcount/pkg/httpx"
	"github.com/aussiebroadwan/headcount/pkg/slogx"
)

// BuildVersion is overridden at build time via -ldflags.
var BuildVersion = "v0.1.0"

// Application encapsulates the login service with all its dependencies.
type Application struct {
	cfg    Config
	logger *slog.Logger

	db   *sqlstore.Store
	keys *Keys

	credentialService *service.CredentialService
	tokenService      *service.TokenService
	seedService       *service.SeedService

	server *http.Server
	router *loginhttp.Router
}

// NewLogger builds the service logger from cfg. A nil out writes to stdout.
func NewLogger(cfg Config, out io.Writer) *slog.Logger {
	return slogx.New(slogx.Config{
		Service: "login-service",
		Version: BuildVersion,
		Env:     cfg.Env,
		Level:   cfg.Log.Level,
		Format:  cfg.Log.Format,
		Output:  out,
	})
}

// OpenStore connects to the configured database and applies migrations.
func OpenStore(cfg Config, logger *slog.Logger) (*sqlstore.Store, error) {
	db, err := drivers.Open(cfg.Database.Driver, cfg.Database.DSN)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	if err := db.ApplyMigrations(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to apply database migrations: %w", err)
	}

	logger.Info("database migrations applied", "driver", db.Dialect())
	return db, nil
}

// SeedAccounts loads the configured fixture.
func SeedAccounts(cfg Config) ([]domain.SeedAccount, error) {
	return seed.Load(cfg.Seed.File)
}

// New creates an Application with every dependency initialised. When
// seed.on_start is set, missing seed accounts are inserted before serving.
func New(cfg Config) (*Application, error) {
	app := &Application{
		cfg:    cfg,
		logger: NewLogger(cfg, nil),
	}

	cryptox.SetPepperPath(cfg.Auth.PepperFile)

	db, err := OpenStore(cfg, app.logger)
	if err != nil {
		return nil, err
	}
	app.db = db

	keys, err := InitSigningKeys(cfg.Auth, app.logger)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to initialize signing keys: %w", err)
	}
	app.keys = keys

	if err := app.initServices(); err != nil {
		_ = db.Close()
		return nil, err
	}

	ctx := slogx.WithContext(context.Background(), app.logger)
	if cfg.Seed.OnStart {
		if _, err := app.seedService.EnsureSeed(ctx); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("failed to seed accounts: %w", err)
		}
	}
	if names, err := app.seedService.DefaultPasswordsInUse(ctx); err != nil {
		app.logger.Warn("could not check seed passwords", slog.Any("error", err))
	} else if len(names) > 0 {
		app.logger.Warn("seed accounts still accept their fixture passwords",
			slog.Any("usernames", names), slog.String("env", cfg.Env))
	}

	if err := app.initHTTP(); err != nil {
		_ = db.Close()
		return nil, err
	}
	return app, nil
}

// Handler exposes the HTTP handler, mainly for tests.
func (app *Application) Handler() http.Handler { return app.router }

// Run starts the application and blocks until shutdown is requested.
func (app *Application) Run() error {
	app.logger.Info("login service starting", "port", app.cfg.HTTP.Port, "version", BuildVersion)

	serverErrors := make(chan error, 1)
	go func() {
		serverErrors <- app.server.ListenAndServe()
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(shutdown)

	select {
	case err := <-serverErrors:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			_ = app.db.Close()
			return fmt.Errorf("server failed: %w", err)
		}
	case sig := <-shutdown:
		app.logger.Info("shutdown signal received", "signal", sig)

		if err := app.Shutdown(); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
	}

	return nil
}

// Shutdown drains in-flight requests and closes the database.
func (app *Application) Shutdown() error {
	app.logger.Info("shutting down login service...")

	ctx, cancel := context.WithTimeout(context.Background(), app.cfg.HTTP.ShutdownGracePeriod)
	defer cancel()

	if err := app.server.Shutdown(ctx); err != nil {
		app.logger.Error("graceful server shutdown failed", "error", err)
		if err := app.server.Close(); err != nil {
			app.logger.Error("error closing server", "error", err)
		}
	}

	if err := app.db.Close(); err != nil {
		app.logger.Error("error closing database", "error", err)
		return err
	}

	app.logger.Info("login service stopped")
	return nil
}

func (app *Application) initServices() error {
	accounts, err := SeedAccounts(app.cfg)
	if err != nil {
		return fmt.Errorf("failed to load seed fixture: %w", err)
	}

	app.credentialService = &service.CredentialService{Store: app.db}
	app.seedService = &service.SeedService{Store: app.db, Accounts: accounts}
	app.tokenService = &service.TokenService{
		Signer:    app.keys.Signer,
		Issuer:    app.cfg.Auth.Issuer,
		Audience:  app.cfg.Auth.Audience,
		AccessTTL: app.cfg.Auth.AccessTTL,
	}
	return nil
}

func (app *Application) initHTTP() error {
	trusted, err := httpx.ParseTrustedProxies(app.cfg.HTTP.TrustedProxies)
	if err != nil {
		return fmt.Errorf("failed to parse trusted proxies: %w", err)
	}

	router := loginhttp.NewRouter(
		app.keys.Set,
		app.keys.Verifier,
		BuildVersion,
		app.db,
		app.logger,
		app.cfg.HTTP.RateLimits.routerLimits(),
	)
	router.Driver = app.db.Dialect()
	router.CredentialService = app.credentialService
	router.TokenService = app.tokenService
	router.ClientIP = httpx.ClientIPKeyExtractor(trusted)
	router.ApplyRoutes()

	app.router = router

	app.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", app.cfg.HTTP.Port),
		Handler:           router,
		ReadHeaderTimeout: 3 * time.Second,
	}
	return nil
}
