package commands

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/taqnia-dev/adminctl/internal/api"
	"github.com/taqnia-dev/adminctl/internal/cli/app"
	"github.com/taqnia-dev/adminctl/internal/cli/output"
)

// NewSocialLinksCmd creates the social-links command group
func NewSocialLinksCmd(load AppLoader) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "social-links",
		Aliases: []string{"socials"},
		Short:   "Show or change the public contact links",
	}

	show := &cobra.Command{
		Use:   "show",
		Short: "Show the contact links",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := load()
			if err != nil {
				return err
			}
			return runSocialLinksShow(cmd.Context(), a)
		},
	}

	var links api.SocialLinks
	set := &cobra.Command{
		Use:   "set",
		Short: "Change contact links; links not given keep their value",
		Example: `  adminctl social-links set --twitter https://x.com/taqnia
  adminctl social-links set --facebook ""   # clear a link`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := load()
			if err != nil {
				return err
			}
			return runSocialLinksSet(cmd.Context(), a, links, cmd.Flags())
		},
	}
	set.Flags().StringVar(&links.Twitter, "twitter", "", "Twitter / X profile URL")
	set.Flags().StringVar(&links.Facebook, "facebook", "", "Facebook page URL")
	set.Flags().StringVar(&links.Instagram, "instagram", "", "Instagram profile URL")
	set.Flags().StringVar(&links.Email, "email", "", "Public contact email")
	set.Flags().StringVar(&links.Phone, "phone", "", "Public contact phone")

	cmd.AddCommand(show, set)
	return cmd
}

func socialLinksRows(l *api.SocialLinks) func() output.Rows {
	return func() output.Rows {
		rows := output.Rows{}
		rows.Add("Twitter:", l.Twitter)
		rows.Add("Facebook:", l.Facebook)
		rows.Add("Instagram:", l.Instagram)
		rows.Add("Email:", l.Email)
		rows.Add("Phone:", l.Phone)
		return rows
	}
}

func runSocialLinksShow(ctx context.Context, a *app.App) error {
	if _, err := a.RequireSession(ctx); err != nil {
		return err
	}
	links, err := a.API.SocialLinks.Get(ctx)
	if err != nil {
		return err
	}
	return a.Render(links, socialLinksRows(links))
}

var socialLinkFlags = []string{"twitter", "facebook", "instagram", "email", "phone"}

// anyChanged ignores inherited flags such as --output.
func anyChanged(flags *pflag.FlagSet, names ...string) bool {
	for _, name := range names {
		if flags.Changed(name) {
			return true
		}
	}
	return false
}

// runSocialLinksSet merges the flags that were given into the current links,
// since the backend replaces the whole set.
func runSocialLinksSet(ctx context.Context, a *app.App, given api.SocialLinks, flags *pflag.FlagSet) error {
	if !anyChanged(flags, socialLinkFlags...) {
		return fmt.Errorf("nothing to update (pass at least one of --twitter, --facebook, --instagram, --email, --phone)")
	}
	if _, err := a.RequireSession(ctx); err != nil {
		return err
	}

	links, err := a.API.SocialLinks.Get(ctx)
	if err != nil {
		return fmt.Errorf("failed to load current links: %w", err)
	}

	merge := func(name string, dst *string, v string) {
		if flags.Changed(name) {
			*dst = v
		}
	}
	merge("twitter", &links.Twitter, given.Twitter)
	merge("facebook", &links.Facebook, given.Facebook)
	merge("instagram", &links.Instagram, given.Instagram)
	merge("email", &links.Email, given.Email)
	merge("phone", &links.Phone, given.Phone)

	saved, err := a.API.SocialLinks.Set(ctx, *links)
	if err != nil {
		return fmt.Errorf("failed to save links: %w", err)
	}
	if a.Format != output.Table {
		return a.Render(saved, nil)
	}
	a.Printf("✓ Social links saved\n")
	return nil
}

// NewSettingsCmd creates the settings command group
func NewSettingsCmd(load AppLoader) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "settings",
		Short: "Show or change the site settings",
	}

	show := &cobra.Command{
		Use:   "show",
		Short: "Show the site settings",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := load()
			if err != nil {
				return err
			}
			return runSettingsShow(cmd.Context(), a)
		},
	}

	var opts settingsOptions
	set := &cobra.Command{
		Use:   "set",
		Short: "Change site settings and upload branding files",
		Example: `  adminctl settings set --site-name "Taqnia" --default-lang ar
  adminctl settings set --logo ./logo.svg --favicon ./favicon.ico`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := load()
			if err != nil {
				return err
			}
			return runSettingsSet(cmd.Context(), a, opts.update(cmd.Flags()), opts.logo, opts.favicon)
		},
	}
	f := set.Flags()
	f.StringVar(&opts.siteName, "site-name", "", "Site name")
	f.StringVar(&opts.description, "description", "", "Site description")
	f.StringVar(&opts.defaultLang, "default-lang", "", "Default language (ar, en)")
	f.StringVar(&opts.defaultTheme, "default-theme", "", "Default theme (system, light, dark)")
	f.StringVar(&opts.contactEmail, "contact-email", "", "Contact email")
	f.StringVar(&opts.contactPhone, "contact-phone", "", "Contact phone")
	f.StringVar(&opts.metaKeywords, "meta-keywords", "", "Meta keywords")
	f.StringVar(&opts.metaAuthor, "meta-author", "", "Meta author")
	f.StringVar(&opts.logo, "logo", "", "Path of a logo image to upload")
	f.StringVar(&opts.favicon, "favicon", "", "Path of a favicon to upload")

	cmd.AddCommand(show, set)
	return cmd
}

type settingsOptions struct {
	siteName, description      string
	defaultLang, defaultTheme  string
	contactEmail, contactPhone string
	metaKeywords, metaAuthor   string
	logo, favicon              string
}

// update keeps only the fields whose flags were given.
func (o settingsOptions) update(flags *pflag.FlagSet) api.SettingsUpdate {
	pick := func(name, v string) *string {
		if !flags.Changed(name) {
			return nil
		}
		return &v
	}
	return api.SettingsUpdate{
		SiteName:     pick("site-name", o.siteName),
		Description:  pick("description", o.description),
		DefaultLang:  pick("default-lang", o.defaultLang),
		DefaultTheme: pick("default-theme", o.defaultTheme),
		ContactEmail: pick("contact-email", o.contactEmail),
		ContactPhone: pick("contact-phone", o.contactPhone),
		MetaKeywords: pick("meta-keywords", o.metaKeywords),
		MetaAuthor:   pick("meta-author", o.metaAuthor),
	}
}

func settingsRows(s *api.SiteSettings) func() output.Rows {
	return func() output.Rows {
		rows := output.Rows{}
		rows.Add("Site name:", s.SiteName)
		rows.Add("Description:", output.Truncate(s.Description, 60))
		rows.Add("Default language:", s.DefaultLang)
		rows.Add("Default theme:", s.DefaultTheme)
		rows.Add("Contact email:", s.ContactEmail)
		rows.Add("Contact phone:", s.ContactPhone)
		rows.Add("Meta keywords:", s.MetaKeywords)
		rows.Add("Meta author:", s.MetaAuthor)
		rows.Add("Logo:", s.LogoURL)
		rows.Add("Favicon:", s.FaviconURL)
		return rows
	}
}

func runSettingsShow(ctx context.Context, a *app.App) error {
	if _, err := a.RequireSession(ctx); err != nil {
		return err
	}
	settings, err := a.API.Settings.Get(ctx)
	if err != nil {
		return err
	}
	return a.Render(settings, settingsRows(settings))
}

func runSettingsSet(ctx context.Context, a *app.App, update api.SettingsUpdate, logoPath, faviconPath string) error {
	if logoPath != "" {
		f, err := os.Open(logoPath)
		if err != nil {
			return fmt.Errorf("failed to open logo: %w", err)
		}
		defer f.Close()
		update.Logo = &api.Upload{Filename: filepath.Base(logoPath), Content: f}
	}
	if faviconPath != "" {
		f, err := os.Open(faviconPath)
		if err != nil {
			return fmt.Errorf("failed to open favicon: %w", err)
		}
		defer f.Close()
		update.Favicon = &api.Upload{Filename: filepath.Base(faviconPath), Content: f}
	}

	if update.Empty() {
		return fmt.Errorf("nothing to update")
	}
	if _, err := a.RequireSession(ctx); err != nil {
		return err
	}

	saved, err := a.API.Settings.Update(ctx, update)
	if err != nil {
		return fmt.Errorf("failed to save settings: %w", err)
	}
	if a.Format != output.Table {
		return a.Render(saved, nil)
	}
	a.Printf("✓ Settings saved\n")
	return nil
}

// NewDashboardCmd creates the dashboard command
func NewDashboardCmd(load AppLoader) *cobra.Command {
	return &cobra.Command{
		Use:     "dashboard",
		Aliases: []string{"dash"},
		Short:   "Show record counts at a glance",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := load()
			if err != nil {
				return err
			}
			return runDashboard(cmd.Context(), a)
		},
	}
}

func runDashboard(ctx context.Context, a *app.App) error {
	user, err := a.RequireSession(ctx)
	if err != nil {
		return err
	}

	stats, err := a.API.Stats(ctx)
	if err != nil {
		return err
	}

	if a.Format != output.Table {
		return a.Render(stats, nil)
	}

	a.Printf("Welcome back, %s\n\n", user.DisplayName())
	return output.WriteTable(a.Out, output.Rows{
		Headers: []string{"RESOURCE", "COUNT"},
		Rows: [][]string{
			{"Projects", fmt.Sprint(stats.Projects)},
			{"Reviews", fmt.Sprint(stats.Reviews)},
			{"Articles", fmt.Sprint(stats.Articles)},
			{"Clients", fmt.Sprint(stats.Clients)},
		},
	})
}
