// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package main

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"
)

var (
	createEmail    string
	createPassword string
	createVerified bool
)

var createUserCmd = &cobra.Command{
	Use:   "create-user <username>",
	Short: "Create an account without sending a verification email",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if createEmail == "" || createPassword == "" {
			return fmt.Errorf("--email and --password are required")
		}

		svc, err := connect(cmd.Context())
		if err != nil {
			return err
		}
		defer svc.Close()

		user, err := svc.accounts.CreateUser(cmd.Context(), args[0], createEmail, createPassword, createVerified)
		if err != nil {
			return err
		}

		log.InfoContext(cmd.Context(), "user_created",
			slog.String("user_id", user.ID),
			slog.Bool("verified", user.Verified),
		)
		fmt.Fprintln(cmd.OutOrStdout(), user.ID)
		return nil
	},
}

var grantCmd = &cobra.Command{
	Use:   "grant <username> <permission>",
	Short: "Grant a permission directly to a user",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, err := connect(cmd.Context())
		if err != nil {
			return err
		}
		defer svc.Close()

		user, err := svc.accounts.FindByUsername(cmd.Context(), args[0])
		if err != nil {
			return fmt.Errorf("%s: %w", args[0], err)
		}

		return svc.permissions.Grant(cmd.Context(), user.ID, args[1])
	},
}

var joinCmd = &cobra.Command{
	Use:   "join <username> <group>",
	Short: "Add a user to a group",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, err := connect(cmd.Context())
		if err != nil {
			return err
		}
		defer svc.Close()

		user, err := svc.accounts.FindByUsername(cmd.Context(), args[0])
		if err != nil {
			return fmt.Errorf("%s: %w", args[0], err)
		}

		return svc.permissions.AddToGroup(cmd.Context(), user.ID, args[1])
	},
}

var sweepCmd = &cobra.Command{
	Use:   "sweep",
	Short: "Delete every expired session",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, err := connect(cmd.Context())
		if err != nil {
			return err
		}
		defer svc.Close()

		removed, err := svc.sessions.Sweep(cmd.Context())
		if err != nil {
			return err
		}

		fmt.Fprintf(cmd.OutOrStdout(), "%d expired sessions removed\n", removed)
		return nil
	},
}

func init() {
	createUserCmd.Flags().StringVar(&createEmail, "email", "", "Account email")
	createUserCmd.Flags().StringVar(&createPassword, "password", "", "Account password")
	createUserCmd.Flags().BoolVar(&createVerified, "verified", false, "Mark the account verified")
}
