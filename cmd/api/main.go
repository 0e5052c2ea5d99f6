// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Command api is the entry point for the BackSite HTTP API server.
//
// # Startup Sequence
//
//  1. Initialize structured logger.
//  2. Load configuration from environment variables.
//  3. Connect to PostgreSQL (pgxpool) with bounded retries.
//  4. Run database migrations (idempotent).
//  5. Select the message broker used by the job producer.
//  6. Wire HTTP handlers.
//  7. Start HTTP server with graceful shutdown.
//
// No business logic lives here. All wiring is explicit constructor injection.
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/HacMan137/BackSite/internal/api"
	"github.com/HacMan137/BackSite/internal/jobs"
	"github.com/HacMan137/BackSite/internal/platform/config"
	"github.com/HacMan137/BackSite/internal/platform/constants"
	"github.com/HacMan137/BackSite/internal/platform/migration"
	pgstore "github.com/HacMan137/BackSite/internal/platform/postgres"
	"github.com/HacMan137/BackSite/internal/users/account"
	"github.com/HacMan137/BackSite/internal/users/auth"
	"github.com/HacMan137/BackSite/internal/users/permission"
	"github.com/HacMan137/BackSite/internal/users/session"
)

func main() {
	// ── 1. Logger ──────────────────────────────────────────────────────────
	// Initialize first so that subsequent startup errors are structured JSON.
	log := newLogger(false)
	log.Info("service_initializing")

	// ── 2. Configuration ──────────────────────────────────────────────────
	cfg, err := config.Load()
	must(log, err, "load configuration")

	if cfg.Debug {
		log = newLogger(true)
		log.Debug("debug_logging_enabled")
	}

	log.Info("configuration_loaded",
		slog.String("environment", cfg.Environment),
		slog.String("port", cfg.ServerPort),
		slog.String("broker", cfg.BrokerDriver),
	)

	// ── 3. PostgreSQL ─────────────────────────────────────────────────────
	pool, err := pgstore.ConnectWithRetry(context.Background(), cfg.DatabaseURL, cfg.BootstrapAttempts, cfg.BootstrapInterval, log)
	must(log, err, "connect to postgres")
	defer func() {
		log.Info("closing_postgres_pool")
		pool.Close()
	}()

	// ── 4. Migrations ─────────────────────────────────────────────────────
	must(log, migration.RunUp(cfg.DatabaseURL, cfg.MigrationPath, log), "run migrations")

	// ── 5. Message Broker ─────────────────────────────────────────────────
	// The producer dials per call, so nothing is opened here.
	broker, err := jobs.NewBroker(cfg.BrokerDriver, cfg, log)
	must(log, err, "select message broker")

	// ── 6. Health handlers (wired with real dependency checkers) ──────────
	liveness, readiness := api.NewHealthHandlers(api.HealthDependencies{
		CheckDatabase: func(ctx context.Context) error {
			return pgstore.Ping(ctx, pool)
		},
		CheckBroker: func(ctx context.Context) error {
			return jobs.Ping(ctx, broker)
		},
	}, log)

	// ── 7. Domain Wiring ──────────────────────────────────────────────────
	accounts := account.NewService(account.NewPostgresRepository(pool))
	sessions := session.NewManager(session.NewPostgresRepository(pool), log, session.WithTTL(cfg.SessionTTL))
	permissions := permission.NewService(permission.NewPostgresRepository(pool), log)
	producer := jobs.NewProducer(broker, log)

	authService := auth.NewService(accounts, sessions, permissions, producer, log)
	userHandler := auth.NewHandler(authService, sessions, permissions, sessions.TTL(), cfg.SessionCookieSecure)

	// ── 8. HTTP Server ────────────────────────────────────────────────────
	server := api.NewServer(cfg, log, api.Handlers{
		Liveness:  liveness,
		Readiness: readiness,
		User:      userHandler,
	})

	// ── 9. Graceful Shutdown ──────────────────────────────────────────────
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGTERM, syscall.SIGINT)

	serverErr := make(chan error, 1)
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	// Block until OS signal or server error.
	select {
	case sig := <-quit:
		log.Info("shutdown_signal_received", slog.String("signal", sig.String()))
	case err := <-serverErr:
		log.Error("server_startup_error", slog.Any("error", err))
	}

	// Give in-flight requests enough time to complete.
	shutdownTimeout := constants.ShutdownTimeout
	log.Info("shutting_down_server", slog.Duration("timeout", shutdownTimeout))

	if err := server.Shutdown(shutdownTimeout); err != nil {
		log.Error("shutdown_error", slog.Any("error", err))
		os.Exit(1)
	}

	log.Info("server_stopped_cleanly")
}

// newLogger builds the process-wide JSON logger and installs it as the default.
func newLogger(debug bool) *slog.Logger {
	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}

	log := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level})).
		With(slog.String("app", constants.AppName))
	slog.SetDefault(log)
	return log
}

// must logs a structured fatal error and terminates the process if err is non-nil.
//
// It is intentionally limited to startup wiring. After startup, all errors
// must be returned and handled explicitly (never panic).
func must(log *slog.Logger, err error, context string) {
	if err != nil {
		log.Error("startup_failure",
			slog.String("context", context),
			slog.Any("error", err),
		)
		os.Exit(1)
	}
}
