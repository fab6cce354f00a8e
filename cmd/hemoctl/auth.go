package main

import (
	"fmt"
	"os"
	"time"

	"github.com/hemocore/console/entities"
	"github.com/spf13/cobra"
)

func loginCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Log in and store the session token",
		RunE: func(cmd *cobra.Command, args []string) error {
			username, _ := cmd.Flags().GetString("username")
			password, _ := cmd.Flags().GetString("password")
			if password == "" {
				password = os.Getenv("HEMOCORE_PASSWORD")
			}
			if username == "" || password == "" {
				return fmt.Errorf("--username and --password (or HEMOCORE_PASSWORD) are required")
			}

			ctx, cancel := commandContext(cmd)
			defer cancel()

			resp, err := a.svc.Auth.Login(ctx, entities.LoginRequest{Username: username, Password: password})
			if err != nil {
				return err
			}

			name := username
			if resp.User != nil && resp.User.Name != "" {
				name = resp.User.Name
			}
			fmt.Fprintf(a.out, "Logged in as %s\n", name)
			if exp, ok := a.session.ExpiresAt(); ok {
				fmt.Fprintf(a.out, "Session expires at %s\n", exp.Local().Format(time.RFC1123))
			}
			return nil
		},
	}
	cmd.Flags().String("username", "", "Account username")
	cmd.Flags().String("password", "", "Account password (defaults to $HEMOCORE_PASSWORD)")
	return cmd
}

func logoutCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "End the session and remove the stored token",
		RunE: func(cmd *cobra.Command, args []string) error {
			if !a.session.IsAuthenticated() {
				fmt.Fprintln(a.out, "Not logged in")
				return nil
			}

			ctx, cancel := commandContext(cmd)
			defer cancel()

			if err := a.svc.Auth.Logout(ctx); err != nil {
				return err
			}
			fmt.Fprintln(a.out, "Logged out")
			return nil
		},
	}
}

func whoamiCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the logged in operator",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := commandContext(cmd)
			defer cancel()

			user, err := a.svc.Auth.CurrentUser(ctx)
			if err != nil {
				return err
			}

			t := newTable(a.out, "FIELD", "VALUE")
			t.row("id", itoa(user.ID))
			t.row("name", orDash(user.Name))
			t.row("email", orDash(user.Email))
			t.row("role", orDash(user.Role))
			if exp, ok := a.session.ExpiresAt(); ok {
				t.row("expires", exp.UTC().Format(time.RFC3339))
			}
			return t.flush()
		},
	}
}
