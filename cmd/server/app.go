package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"go.opentelemetry.io/otel/exporters/stdout/stdoutmetric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"

	"github.com/phrazzld/user-api/internal/config"
	"github.com/phrazzld/user-api/internal/platform/logger"
	"github.com/phrazzld/user-api/internal/platform/metrics"
	"github.com/phrazzld/user-api/internal/platform/postgres"
	"github.com/phrazzld/user-api/internal/service"
	"github.com/phrazzld/user-api/internal/store"
)

// application holds the configured dependency graph.
type application struct {
	config        *config.Config
	logger        *slog.Logger
	db            *sql.DB
	meterProvider *sdkmetric.MeterProvider
	userService   service.UserService
}

// newApplication loads configuration and wires every component: logger,
// database (with migrations applied), metrics, stores, and services.
func newApplication() (*application, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	appLogger := logger.Setup(cfg.Server.LogLevel)
	appLogger.Info("configuration loaded",
		"port", cfg.Server.Port,
		"log_level", cfg.Server.LogLevel)

	db, err := setupDatabase(cfg, appLogger)
	if err != nil {
		return nil, err
	}

	if err := postgres.Migrate(context.Background(), db); err != nil {
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}
	appLogger.Info("database migrations applied")

	meterProvider, err := setupMetrics()
	if err != nil {
		return nil, fmt.Errorf("failed to set up metrics: %w", err)
	}

	userStore := postgres.NewPostgresUserStore(db, appLogger)
	credentialStore := postgres.NewPostgresCredentialStore(db, appLogger)
	sink := metrics.NewOtelSink(meterProvider.Meter("user-api"), appLogger)

	userService := service.NewUserService(
		userStore,
		credentialStore,
		store.NewTxRunner(db),
		sink,
		appLogger,
	)

	return &application{
		config:        cfg,
		logger:        appLogger,
		db:            db,
		meterProvider: meterProvider,
		userService:   userService,
	}, nil
}

// setupMetrics configures the metric pipeline: counters are exported
// periodically to stdout alongside the JSON logs.
func setupMetrics() (*sdkmetric.MeterProvider, error) {
	exporter, err := stdoutmetric.New()
	if err != nil {
		return nil, err
	}

	provider := sdkmetric.NewMeterProvider(
		sdkmetric.WithReader(sdkmetric.NewPeriodicReader(exporter)),
	)
	return provider, nil
}

// run starts the HTTP server and blocks until shutdown completes.
func (app *application) run(ctx context.Context) error {
	return app.startHTTPServer(ctx, app.setupRouter())
}

// cleanup releases the application's long-lived resources.
func (app *application) cleanup() {
	if err := app.meterProvider.Shutdown(context.Background()); err != nil {
		app.logger.Error("failed to shut down meter provider", "error", err)
	}

	if err := app.db.Close(); err != nil {
		app.logger.Error("failed to close database", "error", err)
	}
}
