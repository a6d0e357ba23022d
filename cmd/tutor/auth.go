package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

func newLoginCommand(a *app) *cobra.Command {
	var token string
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Validate a bearer token and store it",
		Long: `login checks the token with the backend and, if it is valid, stores it
(or the refreshed token the backend returns) in the token file.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			status, err := a.client().ValidateToken(cmd.Context(), token)
			if err != nil {
				return fmt.Errorf("validate token: %w", err)
			}
			if !status.Valid {
				return errors.New("token rejected by the backend")
			}
			if err := a.tokens().Save(status.Token); err != nil {
				return fmt.Errorf("store token: %w", err)
			}
			a.logger.Info("token stored", "path", a.cfg.TokenFile)
			fmt.Fprintln(cmd.OutOrStdout(), "Logged in.")
			return nil
		},
	}
	cmd.Flags().StringVar(&token, "token", "", "bearer token issued by the platform")
	_ = cmd.MarkFlagRequired("token")
	return cmd
}

func newLogoutCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Remove the stored bearer token",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := a.tokens().Clear(); err != nil {
				return fmt.Errorf("clear token: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Logged out.")
			return nil
		},
	}
}
