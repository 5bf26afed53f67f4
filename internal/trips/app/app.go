package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/smtp"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	httpapi "github.com/wayfarerhq/wayfarer/internal/trips/http"
	"github.com/wayfarerhq/wayfarer/internal/trips/service"
	"github.com/wayfarerhq/wayfarer/internal/trips/store"
	"github.com/wayfarerhq/wayfarer/internal/trips/store/drivers/sqlite"
	"github.com/wayfarerhq/wayfarer/pkg/jwtx"
	"github.com/wayfarerhq/wayfarer/pkg/mailx"
	"github.com/wayfarerhq/wayfarer/pkg/slogx"
)

const (
	// BuildVersion should be set at build time via ldflags. Later problem
	BuildVersion = "v0.1.0"
)

// Application encapsulates the trips service with all its dependencies.
type Application struct {
	cfg    Config
	logger *slog.Logger

	db     store.Store
	mailer mailx.Mailer

	tripService         *service.TripService
	invitationService   *service.InvitationService
	notificationService *service.NotificationService
	housekeepingService *service.HousekeepingService

	server *http.Server
	router *httpapi.Router
}

// New creates a new Application instance with all dependencies initialized.
func New(cfg Config) (*Application, error) {
	if cfg.AuthJWTSecret == "" {
		return nil, errors.New("AUTH_JWT_SECRET is required")
	}

	app := &Application{
		cfg: cfg,
		logger: slogx.New(slogx.Config{
			Service: "trips-service",
			Version: BuildVersion,
			Env:     cfg.Env,
			Level:   cfg.LogLevel,
			Format:  cfg.LogFormat,
		}),
	}

	if err := app.initDatabase(); err != nil {
		return nil, err
	}

	app.initMailer()
	app.initServices()
	app.initHTTP()

	return app, nil
}

// Run starts the application and blocks until shutdown is requested.
func (app *Application) Run() error {
	app.housekeepingService.Start()

	app.logger.Info("trips service starting", "port", app.cfg.Port, "version", BuildVersion)

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

// Shutdown gracefully shuts down the application.
func (app *Application) Shutdown() error {
	app.logger.Info("shutting down trips service...")

	ctx, cancel := context.WithTimeout(context.Background(), app.cfg.ShutdownGracePeriod)
	defer cancel()

	if err := app.server.Shutdown(ctx); err != nil {
		app.logger.Error("graceful server shutdown failed", "error", err)
		if err := app.server.Close(); err != nil {
			app.logger.Error("error closing server", "error", err)
		}
	}

	app.housekeepingService.Stop()

	if err := app.db.Close(); err != nil {
		app.logger.Error("error closing database", "error", err)
		return err
	}

	app.logger.Info("trips service stopped")
	return nil
}

// initDatabase initializes the database and applies migrations.
func (app *Application) initDatabase() error {
	host := fmt.Sprintf("file:%s?_busy_timeout=5000&_journal_mode=WAL", app.cfg.DatabaseFile)
	db, err := sqlite.NewStore(host)
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

// initMailer selects the SMTP relay when configured, otherwise a log-only
// mailer so dev environments run without one.
func (app *Application) initMailer() {
	if app.cfg.SMTPAddr == "" {
		app.logger.Info("no SMTP relay configured, invitation emails will be logged only")
		app.mailer = &mailx.LogMailer{Logger: app.logger}
		return
	}

	var auth smtp.Auth
	if app.cfg.SMTPUsername != "" {
		host := app.cfg.SMTPAddr
		if i := strings.LastIndex(host, ":"); i >= 0 {
			host = host[:i]
		}
		auth = smtp.PlainAuth("", app.cfg.SMTPUsername, app.cfg.SMTPPassword, host)
	}

	app.mailer = &mailx.SMTPMailer{
		Addr: app.cfg.SMTPAddr,
		From: app.cfg.SMTPFrom,
		Auth: auth,
	}
	app.logger.Info("SMTP mailer configured", "addr", app.cfg.SMTPAddr)
}

// initServices initializes all business logic services.
func (app *Application) initServices() {
	app.tripService = &service.TripService{Store: app.db}

	app.invitationService = &service.InvitationService{
		Store: app.db,
		Tokens: &service.TokenService{
			Store: app.db,
			TTL:   app.cfg.InviteTTL,
		},
		Mailer:      app.mailer,
		LinkBaseURL: strings.TrimSuffix(app.cfg.AppBaseURL, "/") + "/invitations",
	}

	app.notificationService = &service.NotificationService{Store: app.db}

	app.housekeepingService = service.NewHousekeepingService(
		app.db,
		app.logger,
		app.cfg.HousekeepingInterval,
	)
}

// initHTTP initializes the HTTP router and server.
func (app *Application) initHTTP() {
	verifier := jwtx.HS256Verifier{
		Secret: []byte(app.cfg.AuthJWTSecret),
		Issuer: app.cfg.AuthIssuer,
	}

	router := httpapi.NewRouter(verifier, BuildVersion, app.db, app.logger)
	router.TripService = app.tripService
	router.InvitationService = app.invitationService
	router.NotificationService = app.notificationService
	router.ApplyRoutes()

	app.router = router

	app.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", app.cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 3 * time.Second,
	}
}
