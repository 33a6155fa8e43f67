package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/taqnia-dev/adminctl/internal/cli/app"
	"github.com/taqnia-dev/adminctl/internal/cli/commands"
)

var version = "dev" // Will be set during build

// NewRootCmd builds the command tree. load is called lazily by commands that
// talk to the backend; nil means "build from flags and environment".
func NewRootCmd(load commands.AppLoader) *cobra.Command {
	var opts app.Options

	rootCmd := &cobra.Command{
		Use:   "adminctl",
		Short: "adminctl - Manage the Taqnia website from the terminal",
		Long: `adminctl - Manage the Taqnia website from the terminal.

Sign in once, then list and edit projects, reviews, clients, articles and
site settings against any configured backend profile.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringVarP(&opts.Profile, "profile", "p", "", "Backend profile to use")
	rootCmd.PersistentFlags().StringVar(&opts.APIURL, "api-url", "", "Backend URL, overrides the profile (or set ADMINCTL_API_URL)")
	rootCmd.PersistentFlags().StringVarP(&opts.Output, "output", "o", "table", "Output format: table, json or yaml")
	rootCmd.PersistentFlags().StringVar(&opts.LogLevel, "log-level", "", "Log level: debug, info, warn, error (or set ADMINCTL_LOG_LEVEL)")

	if load == nil {
		var cached *app.App
		load = func() (*app.App, error) {
			if cached != nil {
				return cached, nil
			}
			a, err := app.New(opts)
			if err != nil {
				return nil, err
			}
			cached = a
			return a, nil
		}
	}

	// Add version command
	rootCmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print the version number",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "adminctl version %s\n", version)
		},
	})

	// Add all subcommands
	rootCmd.AddCommand(commands.NewLoginCmd(load))
	rootCmd.AddCommand(commands.NewLogoutCmd(load))
	rootCmd.AddCommand(commands.NewWhoamiCmd(load))
	rootCmd.AddCommand(commands.NewDashboardCmd(load))
	rootCmd.AddCommand(commands.NewProjectsCmd(load))
	rootCmd.AddCommand(commands.NewReviewsCmd(load))
	rootCmd.AddCommand(commands.NewClientsCmd(load))
	rootCmd.AddCommand(commands.NewArticlesCmd(load))
	rootCmd.AddCommand(commands.NewUsersCmd(load))
	rootCmd.AddCommand(commands.NewSocialLinksCmd(load))
	rootCmd.AddCommand(commands.NewSettingsCmd(load))
	rootCmd.AddCommand(commands.NewProfileCmd())

	return rootCmd
}

// Execute runs the root command
func Execute() error {
	if err := NewRootCmd(nil).Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return err
	}
	return nil
}
