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

	httpapi "github.com/aussiebroadwan/twofactor/internal/twofactor/http"
	"github.com/aussiebroadwan/twofactor/internal/twofactor/notify"
	"github.com/aussiebroadwan/twofactor/internal/twofactor/service"
	"github.com/aussiebroadwan/twofactor/internal/twofactor/store"
	"github.com/aussiebroadwan/twofactor/internal/twofactor/store/drivers/sqlite"
	"github.com/aussiebroadwan/twofactor/pkg/cryptox"
	"github.com/aussiebroadwan/twofactor/pkg/jwtx"
	"github.com/aussiebroadwan/twofactor/pkg/slogx"
)

const (
	// BuildVersion should be set at build time via ldflags.
	BuildVersion = "v0.1.0"
)

// Application encapsulates the two-factor service with all its dependencies
type Application struct {
	cfg    Config
	logger *slog.Logger

	// Core dependencies
	db       store.Store
	sealer   *cryptox.Sealer
	pepper   []byte
	verifier jwtx.Verifier
	notifier *notify.Async

	// Services
	twoFactorService    *service.TwoFactorService
	housekeepingService *service.HousekeepingService

	// HTTP server
	server *http.Server
	router *httpapi.Router

	running bool
}

// New creates a new Application instance with all dependencies initialized
func New(cfg Config) (*Application, error) {
	return NewWithLogger(cfg, slogx.New(slogx.Config{
		Service: "twofactor-service",
		Version: BuildVersion,
		Env:     cfg.Env,
		Level:   cfg.LogLevel,
		Format:  cfg.LogFormat,
	}))
}

// NewWithLogger is New with a caller supplied logger.
func NewWithLogger(cfg Config, logger *slog.Logger) (*Application, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	app := &Application{cfg: cfg, logger: logger}

	if err := app.initDatabase(); err != nil {
		return nil, err
	}

	if err := app.initCrypto(); err != nil {
		_ = app.db.Close()
		return nil, err
	}

	if err := app.initNotifier(); err != nil {
		_ = app.db.Close()
		return nil, err
	}

	app.initServices()
	app.initHTTP()

	return app, nil
}

// Handler returns the fully wired HTTP handler.
func (app *Application) Handler() http.Handler {
	return app.router
}

// Run starts the application and blocks until shutdown is requested
func (app *Application) Run() error {
	app.housekeepingService.Start()
	app.running = true

	app.logger.Info("twofactor service starting", "port", app.cfg.Port, "version", BuildVersion)

	serverErrors := make(chan error, 1)
	go func() {
		serverErrors <- app.server.ListenAndServe()
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
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

// Shutdown gracefully shuts down the application
func (app *Application) Shutdown() error {
	app.logger.Info("shutting down twofactor service...")

	ctx, cancel := context.WithTimeout(context.Background(), app.cfg.ShutdownGracePeriod)
	defer cancel()

	if err := app.server.Shutdown(ctx); err != nil {
		app.logger.Error("graceful server shutdown failed", "error", err)
		if err := app.server.Close(); err != nil {
			app.logger.Error("error closing server", "error", err)
		}
	}

	if app.running {
		app.housekeepingService.Stop()
		app.running = false
	}

	// Let queued notifications go out before the process exits.
	if err := app.notifier.Wait(ctx); err != nil {
		app.logger.Warn("pending notifications dropped", "error", err)
	}

	if err := app.db.Close(); err != nil {
		app.logger.Error("error closing database", "error", err)
		return err
	}

	app.logger.Info("twofactor service stopped")
	return nil
}

// initDatabase initializes the database and applies migrations
func (app *Application) initDatabase() error {
	db, err := sqlite.NewStore(sqlite.FileDSN(app.cfg.DatabaseFile))
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	app.db = db

	if err := db.ApplyMigrations(); err != nil {
		_ = db.Close()
		return fmt.Errorf("failed to apply database migrations: %w", err)
	}

	app.logger.Info("database migrations applied successfully")
	return nil
}

// initCrypto loads the pepper, the sealing key and the token verifier
func (app *Application) initCrypto() error {
	pepper, err := cryptox.LoadOrCreatePepper(app.cfg.PepperFile)
	if err != nil {
		return fmt.Errorf("failed to load pepper: %w", err)
	}
	app.pepper = pepper

	sealer, err := InitSealer(app.cfg, app.logger)
	if err != nil {
		return fmt.Errorf("failed to initialize secret sealer: %w", err)
	}
	app.sealer = sealer

	verifier, err := InitVerifier(app.cfg, app.logger)
	if err != nil {
		return fmt.Errorf("failed to initialize token verifier: %w", err)
	}
	app.verifier = verifier

	return nil
}

// initNotifier picks email delivery when SMTP is configured and logging
// otherwise. Either way delivery happens off the request path.
func (app *Application) initNotifier() error {
	var next service.Notifier = notify.NewLogNotifier(app.logger)

	if app.cfg.SMTP.Host != "" {
		email, err := notify.NewEmailNotifier(notify.SMTPConfig{
			Host:     app.cfg.SMTP.Host,
			Port:     app.cfg.SMTP.Port,
			TLS:      app.cfg.SMTP.TLS,
			Username: app.cfg.SMTP.Username,
			Password: app.cfg.SMTP.Password,
			From:     app.cfg.SMTP.From,
		})
		if err != nil {
			return fmt.Errorf("failed to initialize email notifier: %w", err)
		}
		next = email
		app.logger.Info("email notifications enabled", "host", app.cfg.SMTP.Host, "port", app.cfg.SMTP.Port)
	}

	app.notifier = notify.NewAsync(next, app.logger, notify.DefaultAsyncTimeout)
	return nil
}

// initServices initializes all business logic services
func (app *Application) initServices() {
	app.twoFactorService = service.NewTwoFactorService(
		app.db,
		app.sealer,
		service.NewBackupCodeManager(app.pepper),
		app.notifier,
		app.cfg.Issuer,
	)
	app.twoFactorService.BackupCodeCount = app.cfg.BackupCodeCount

	app.housekeepingService = service.NewHousekeepingService(
		app.db,
		app.logger,
		app.cfg.HousekeepingInterval,
		app.cfg.PendingTTL,
		app.cfg.UsedCodeTTL,
	)
}

// initHTTP initializes the HTTP router and server
func (app *Application) initHTTP() {
	router := httpapi.NewRouter(
		app.verifier,
		BuildVersion,
		app.db,
		app.twoFactorService,
		app.logger,
	)
	if app.cfg.VerifyLimit.RequestsPerWindow > 0 {
		router.VerifyLimit = app.cfg.VerifyLimit
	}
	if app.cfg.AccountLimit.RequestsPerWindow > 0 {
		router.AccountLimit = app.cfg.AccountLimit
	}
	if app.cfg.HealthLimit.RequestsPerWindow > 0 {
		router.HealthLimit = app.cfg.HealthLimit
	}
	router.ApplyRoutes()

	app.router = router

	app.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", app.cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 3 * time.Second,
	}
}
