// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Command admin is the operator CLI: schema migrations, bootstrap seeding
// and user administration.
//
// It reads the same environment as the API server.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/spf13/cobra"

	"github.com/HacMan137/BackSite/internal/platform/config"
	"github.com/HacMan137/BackSite/internal/platform/constants"
	pgstore "github.com/HacMan137/BackSite/internal/platform/postgres"
	"github.com/HacMan137/BackSite/internal/users/account"
	"github.com/HacMan137/BackSite/internal/users/permission"
	"github.com/HacMan137/BackSite/internal/users/session"
)

var (
	cfg *config.Config
	log *slog.Logger

	verbose bool
)

var rootCmd = &cobra.Command{
	Use:           "admin",
	Short:         "BackSite operator CLI",
	Long:          `admin manages the BackSite database: migrations, the default permission catalog and user grants.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		loaded, err := config.Load()
		if err != nil {
			return err
		}
		cfg = loaded

		level := slog.LevelInfo
		if verbose || cfg.Debug {
			level = slog.LevelDebug
		}
		log = slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: level})).
			With(slog.String("app", constants.AppName), slog.String("process", "admin"))
		slog.SetDefault(log)
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")

	rootCmd.AddCommand(migrateCmd)
	rootCmd.AddCommand(bootstrapCmd)
	rootCmd.AddCommand(createUserCmd)
	rootCmd.AddCommand(grantCmd)
	rootCmd.AddCommand(joinCmd)
	rootCmd.AddCommand(sweepCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// # Shared Wiring

// services bundles the repositories every user command needs.
type services struct {
	pool        *pgxpool.Pool
	accounts    *account.Service
	permissions *permission.Service
	sessions    *session.Manager
}

// connect opens the pool with the bootstrap retry policy and builds the services.
func connect(ctx context.Context) (*services, error) {
	pool, err := pgstore.ConnectWithRetry(ctx, cfg.DatabaseURL, cfg.BootstrapAttempts, cfg.BootstrapInterval, log)
	if err != nil {
		return nil, err
	}

	return &services{
		pool:        pool,
		accounts:    account.NewService(account.NewPostgresRepository(pool)),
		permissions: permission.NewService(permission.NewPostgresRepository(pool), log),
		sessions:    session.NewManager(session.NewPostgresRepository(pool), log, session.WithTTL(cfg.SessionTTL)),
	}, nil
}

func (s *services) Close() {
	s.pool.Close()
}
