package commands

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/taqnia-dev/adminctl/internal/cli/output"
	"github.com/taqnia-dev/adminctl/internal/cli/profileselect"
	"github.com/taqnia-dev/adminctl/internal/cli/userconfig"
)

// NewProfileCmd creates the profile command group
func NewProfileCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "profile",
		Short: "Manage backend profiles",
		Long: `Manage backend profiles.

A profile names an admin backend. Each profile keeps its own login token.`,
	}

	var use bool
	add := &cobra.Command{
		Use:   "add <name> <api-url>",
		Short: "Add a profile or change its URL",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runProfileAdd(cmd.OutOrStdout(), args[0], args[1], use)
		},
	}
	add.Flags().BoolVar(&use, "use", false, "Also select the profile")

	useCmd := &cobra.Command{
		Use:   "use [name]",
		Short: "Select the profile used by commands",
		Long: `Select the profile used by commands.

If no name is provided, an interactive prompt will be shown.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var name string
			if len(args) > 0 {
				name = args[0]
			}
			return runProfileUse(cmd.OutOrStdout(), name)
		},
	}

	ls := &cobra.Command{
		Use:     "ls",
		Aliases: []string{"list"},
		Short:   "List profiles",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runProfileList(cmd.OutOrStdout())
		},
	}

	rm := &cobra.Command{
		Use:   "rm <name>",
		Short: "Remove a profile",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runProfileRemove(cmd.OutOrStdout(), args[0])
		},
	}

	cmd.AddCommand(add, useCmd, ls, rm)
	return cmd
}

func runProfileAdd(w io.Writer, name, url string, use bool) error {
	cfg, err := userconfig.Load()
	if err != nil {
		return err
	}
	if err := cfg.Upsert(userconfig.Profile{Name: name, APIURL: url}); err != nil {
		return err
	}
	if use || cfg.SelectedProfile == "" {
		cfg.SelectedProfile = name
	}
	if err := userconfig.Save(cfg); err != nil {
		return err
	}

	p, _ := cfg.Profile(name)
	fmt.Fprintf(w, "✓ Profile %s -> %s\n", p.Name, p.APIURL)
	if cfg.SelectedProfile == name {
		fmt.Fprintf(w, "  Selected. Run 'adminctl login' to sign in.\n")
	}
	return nil
}

func runProfileUse(w io.Writer, name string) error {
	cfg, err := userconfig.Load()
	if err != nil {
		return err
	}

	var profile *userconfig.Profile
	if name != "" {
		profile, err = cfg.Profile(name)
	} else {
		// Show interactive selection
		profile, err = profileselect.PromptProfileSelection(cfg)
	}
	if err != nil {
		return err
	}

	// Save the selected profile
	if err := userconfig.SetSelectedProfile(profile.Name); err != nil {
		return fmt.Errorf("failed to save selected profile: %w", err)
	}

	fmt.Fprintf(w, "Selected profile: %s (%s)\n", profile.Name, profile.APIURL)
	return nil
}

func runProfileList(w io.Writer) error {
	cfg, err := userconfig.Load()
	if err != nil {
		return err
	}

	if len(cfg.Profiles) == 0 {
		fmt.Fprintln(w, "No profiles configured.")
		fmt.Fprintln(w, "\nAdd one with: adminctl profile add <name> <api-url>")
		return nil
	}

	rows := output.Rows{Headers: []string{"", "NAME", "API URL"}}
	for _, p := range cfg.Profiles {
		marker := " "
		if p.Name == cfg.SelectedProfile {
			marker = "*"
		}
		rows.Add(marker, p.Name, p.APIURL)
	}
	return output.WriteTable(w, rows)
}

func runProfileRemove(w io.Writer, name string) error {
	cfg, err := userconfig.Load()
	if err != nil {
		return err
	}
	if err := cfg.Remove(name); err != nil {
		return err
	}
	if err := userconfig.Save(cfg); err != nil {
		return err
	}
	fmt.Fprintf(w, "✓ Removed profile %s\n", name)
	return nil
}
