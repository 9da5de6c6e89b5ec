package main

import (
	"context"
	"fmt"

	"github.com/hast-app/hastauth"
	"github.com/spf13/cobra"
)

func newLoginCmd(a *app) *cobra.Command {
	var device string
	cmd := &cobra.Command{
		Use:   "login [username]",
		Short: "Sign in and store the session",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p := newPrompter(cmd.InOrStdin(), cmd.ErrOrStderr())

			var username string
			if len(args) == 1 {
				username = args[0]
			} else {
				u, err := p.line("Username: ")
				if err != nil {
					return err
				}
				username = u
			}
			password, err := p.secret("Password: ")
			if err != nil {
				return fmt.Errorf("read password: %w", err)
			}

			ctx := cmd.Context()
			if device != "" {
				ctx = hastauth.WithDevice(ctx, device)
			}
			c, err := a.Client(ctx)
			if err != nil {
				return err
			}
			return printResult(cmd, c.Login(ctx, username, password))
		},
	}
	cmd.Flags().StringVar(&device, "device", "", "device label recorded in audit events")
	return cmd
}

func newLogoutCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "End the session and clear stored credentials",
		Args:  cobra.NoArgs,
		RunE: runWithClient(a, func(ctx context.Context, c *hastauth.Client, _ []string) hastauth.Result {
			return c.Logout(ctx)
		}),
	}
}

func newWhoamiCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the stored session and its token claims",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			c, err := a.Client(cmd.Context())
			if err != nil {
				return err
			}
			info, err := c.SessionInfo(cmd.Context())
			if err != nil {
				return err
			}
			if err := writeJSON(cmd.OutOrStdout(), info); err != nil {
				return err
			}
			if !info.Authenticated {
				return errFailedResult
			}
			return nil
		},
	}
}

func newPingCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "ping",
		Short: "Check that the backend answers",
		Args:  cobra.NoArgs,
		RunE: runWithClient(a, func(ctx context.Context, c *hastauth.Client, _ []string) hastauth.Result {
			return c.TestConnection(ctx)
		}),
	}
}
