// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Command jobs is the background job consumer for the email_jobs queue.
//
// # Lifecycle
//
//  1. Initialize structured logger and load configuration.
//  2. Build the command table and the consumer.
//  3. Start the consumer once; it reconnects on its own.
//  4. Block until SIGINT/SIGTERM, then stop the consumer gracefully.
//
// The process needs only the broker; it never touches PostgreSQL.
package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/HacMan137/BackSite/internal/jobs"
	"github.com/HacMan137/BackSite/internal/platform/config"
	"github.com/HacMan137/BackSite/internal/platform/constants"
)

func main() {
	// ── 1. Logger & Configuration ─────────────────────────────────────────
	log := newLogger(false)
	log.Info("service_initializing")

	cfg, err := config.Load()
	if err != nil {
		log.Error("startup_failure", slog.String("context", "load configuration"), slog.Any("error", err))
		os.Exit(1)
	}

	if cfg.Debug {
		log = newLogger(true)
	}

	broker, err := jobs.NewBroker(cfg.BrokerDriver, cfg, log)
	if err != nil {
		log.Error("startup_failure", slog.String("context", "select message broker"), slog.Any("error", err))
		os.Exit(1)
	}

	// ── 2. Command Table ──────────────────────────────────────────────────
	sender := jobs.NewVerificationSender(jobs.NewLogMailer(log), cfg.APIEmail, cfg.CommonName, cfg.VerificationURL())
	dispatcher := jobs.NewDispatcher(jobs.Handlers{
		SendVerificationEmail: sender.Send,
	}, log)

	consumer := jobs.NewConsumer(broker, constants.QueueEmailJobs, dispatcher, log,
		jobs.WithRetryInterval(cfg.BrokerRetryInterval),
	)

	// ── 3. Start ──────────────────────────────────────────────────────────
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := consumer.Start(ctx); err != nil {
		log.Error("startup_failure", slog.String("context", "start consumer"), slog.Any("error", err))
		os.Exit(1)
	}

	// ── 4. Graceful Shutdown ──────────────────────────────────────────────
	<-ctx.Done()
	log.Info("shutdown_signal_received")

	stopCtx, cancel := context.WithTimeout(context.Background(), constants.ConsumerStopTimeout)
	defer cancel()

	if err := consumer.Stop(stopCtx); err != nil {
		log.Error("shutdown_error", slog.Any("error", err))
		os.Exit(1)
	}

	log.Info("consumer_stopped_cleanly")
}

// newLogger builds the process-wide JSON logger and installs it as the default.
func newLogger(debug bool) *slog.Logger {
	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}

	log := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level})).
		With(slog.String("app", constants.AppName), slog.String("process", "jobs"))
	slog.SetDefault(log)
	return log
}
