package commands

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/taqnia-dev/adminctl/internal/api"
	"github.com/taqnia-dev/adminctl/internal/cli/app"
	"github.com/taqnia-dev/adminctl/internal/cli/output"
	"github.com/taqnia-dev/adminctl/internal/tokenstore"
)

// NewLoginCmd creates the login command
func NewLoginCmd(load AppLoader) *cobra.Command {
	var email, password string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in to the admin backend",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := load()
			if err != nil {
				return err
			}
			return runLogin(cmd.Context(), a, email, password)
		},
	}

	cmd.Flags().StringVar(&email, "email", "", "Email address (or set ADMINCTL_EMAIL)")
	cmd.Flags().StringVar(&password, "password", "", "Password (or set ADMINCTL_PASSWORD, will prompt if not provided)")

	return cmd
}

func runLogin(ctx context.Context, a *app.App, email, password string) error {
	// Fall back to environment variables (useful for CI/CD)
	if email == "" {
		email = a.Config.Email
	}
	if password == "" {
		password = a.Config.Password
	}

	if email == "" {
		return fmt.Errorf("email is required (use --email flag or ADMINCTL_EMAIL env var)")
	}

	// Prompt for password if not provided via flag or env var
	if password == "" {
		var err error
		password, err = a.ReadPassword("Password: ")
		if err != nil {
			return err
		}
	}

	a.Printf("Logging in to %s (%s)...\n", a.Profile, a.BaseURL)

	user, err := a.Session.SignIn(ctx, email, password)
	if err != nil {
		return fmt.Errorf("login failed: %w", err)
	}

	if a.Format != output.Table {
		return a.Render(user, nil)
	}

	a.Printf("✓ Login successful!\n")
	a.Printf("  User: %s (%s)\n", user.DisplayName(), user.Email)
	if user.Role != "" {
		a.Printf("  Role: %s\n", user.Role)
	}
	return nil
}

// NewLogoutCmd creates the logout command
func NewLogoutCmd(load AppLoader) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Sign out and forget the stored token",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := load()
			if err != nil {
				return err
			}
			return runLogout(cmd.Context(), a)
		},
	}
}

func runLogout(ctx context.Context, a *app.App) error {
	if _, err := a.Tokens.Load(); errors.Is(err, tokenstore.ErrNotFound) {
		a.Printf("Not logged in.\n")
		return nil
	}

	if err := a.Session.SignOut(ctx); err != nil {
		return err
	}

	a.Printf("✓ Logged out of %s\n", a.Profile)
	return nil
}

// NewWhoamiCmd creates the whoami command
func NewWhoamiCmd(load AppLoader) *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the signed-in user",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := load()
			if err != nil {
				return err
			}
			return runWhoami(cmd.Context(), a)
		},
	}
}

func runWhoami(ctx context.Context, a *app.App) error {
	user, err := a.RequireSession(ctx)
	if err != nil {
		return err
	}
	return a.Render(user, func() output.Rows {
		return userDetails(a, user)
	})
}

func userDetails(a *app.App, user *api.User) output.Rows {
	rows := output.Rows{}
	rows.Add("Name:", user.DisplayName())
	rows.Add("Email:", user.Email)
	rows.Add("Role:", user.Role)
	rows.Add("Profile:", a.Profile)
	rows.Add("API:", a.BaseURL)
	return rows
}
