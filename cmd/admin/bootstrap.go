// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/HacMan137/BackSite/internal/platform/migration"
	"github.com/HacMan137/BackSite/internal/users/auth"
)

var (
	adminUsername string
	adminEmail    string
	adminPassword string
)

var bootstrapCmd = &cobra.Command{
	Use:   "bootstrap",
	Short: "Migrate the schema and seed the default catalog",
	Long: `bootstrap waits for the database (bounded retries with a fixed backoff),
applies pending migrations, seeds the default permissions and groups, and,
when --admin-username is given, creates a verified administrator.

Every step is idempotent, so bootstrap is safe to run on every deploy.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		svc, err := connect(ctx)
		if err != nil {
			return err
		}
		defer svc.Close()

		if err := migration.RunUp(cfg.DatabaseURL, cfg.MigrationPath, log); err != nil {
			return err
		}

		var admin *auth.AdminAccount
		if adminUsername != "" {
			if adminPassword == "" {
				return fmt.Errorf("--admin-password is required with --admin-username")
			}
			admin = &auth.AdminAccount{Username: adminUsername, Email: adminEmail, Password: adminPassword}
		}

		if err := auth.Provision(ctx, svc.accounts, svc.permissions, admin, log); err != nil {
			return err
		}

		log.InfoContext(ctx, "bootstrap_completed")
		return nil
	},
}

func init() {
	bootstrapCmd.Flags().StringVar(&adminUsername, "admin-username", "", "Create this administrator if missing")
	bootstrapCmd.Flags().StringVar(&adminEmail, "admin-email", "admin@localhost", "Administrator email")
	bootstrapCmd.Flags().StringVar(&adminPassword, "admin-password", "", "Administrator password")
}
