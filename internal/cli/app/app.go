// Package app wires configuration, storage, the request client and the
// session together for a single CLI invocation.
package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/manifoldco/promptui"
	"github.com/rs/zerolog"
	"golang.org/x/term"

	"github.com/taqnia-dev/adminctl/internal/api"
	"github.com/taqnia-dev/adminctl/internal/cli/output"
	"github.com/taqnia-dev/adminctl/internal/cli/profileselect"
	"github.com/taqnia-dev/adminctl/internal/cli/userconfig"
	"github.com/taqnia-dev/adminctl/internal/config"
	"github.com/taqnia-dev/adminctl/internal/httpclient"
	"github.com/taqnia-dev/adminctl/internal/logger"
	"github.com/taqnia-dev/adminctl/internal/session"
	"github.com/taqnia-dev/adminctl/internal/tokenstore"
)

// ErrNotAuthenticated is returned by commands that need a signed-in user.
var ErrNotAuthenticated = errors.New("not authenticated. Please run 'adminctl login' first")

// Options are the global flags.
type Options struct {
	Profile  string
	APIURL   string
	Output   string
	LogLevel string
}

// App holds everything a command needs.
type App struct {
	Config  *config.Config
	Profile string
	BaseURL string

	Tokens  tokenstore.Store
	Client  *httpclient.Client
	API     *api.API
	Session *session.Store
	Format  output.Format

	Out io.Writer
	Err io.Writer

	// Confirm asks a yes/no question. It returns false without error when
	// the user declines.
	Confirm func(label string) (bool, error)
	// ReadPassword reads a secret from the terminal.
	ReadPassword func(prompt string) (string, error)
	// Interactive reports whether prompts can be shown.
	Interactive bool

	clientOpts []httpclient.Option
}

// Option customizes Build.
type Option func(*App)

// WithOutput sets the writers for results and diagnostics.
func WithOutput(out, errOut io.Writer) Option {
	return func(a *App) {
		a.Out = out
		a.Err = errOut
	}
}

// WithFormat sets the result format.
func WithFormat(f output.Format) Option {
	return func(a *App) {
		a.Format = f
	}
}

// WithConfig sets the loaded configuration.
func WithConfig(cfg *config.Config) Option {
	return func(a *App) {
		a.Config = cfg
	}
}

// WithProfile records the profile name the app was built for.
func WithProfile(name string) Option {
	return func(a *App) {
		a.Profile = name
	}
}

// WithConfirm replaces the confirmation prompt.
func WithConfirm(fn func(label string) (bool, error)) Option {
	return func(a *App) {
		a.Confirm = fn
		a.Interactive = true
	}
}

// WithPasswordReader replaces the terminal password prompt.
func WithPasswordReader(fn func(prompt string) (string, error)) Option {
	return func(a *App) {
		a.ReadPassword = fn
		a.Interactive = true
	}
}

// WithClientOptions passes options to the request client.
func WithClientOptions(opts ...httpclient.Option) Option {
	return func(a *App) {
		a.clientOpts = append(a.clientOpts, opts...)
	}
}

// New loads configuration and builds the app for the resolved profile.
func New(opts Options) (*App, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	level := cfg.Logging.Level
	if opts.LogLevel != "" {
		level = opts.LogLevel
	}
	logger.Init(level, cfg.Logging.Format)

	format, err := output.ParseFormat(opts.Output)
	if err != nil {
		return nil, err
	}

	interactive := term.IsTerminal(int(os.Stdin.Fd()))

	profileName, baseURL, err := resolveTarget(cfg, opts, interactive)
	if err != nil {
		return nil, err
	}

	tokens, err := OpenTokenStore(cfg.TokenStore, profileName)
	if err != nil {
		return nil, err
	}

	a := Build(baseURL, tokens,
		WithConfig(cfg),
		WithProfile(profileName),
		WithFormat(format),
		WithClientOptions(
			httpclient.WithTimeout(cfg.API.Timeout),
			httpclient.WithInsecureTLS(cfg.API.InsecureTLS),
			httpclient.WithLogger(logger.GetLogger()),
		),
	)
	a.Interactive = interactive
	return a, nil
}

// resolveTarget picks the backend: --api-url, then ADMINCTL_API_URL, then
// the profile.
func resolveTarget(cfg *config.Config, opts Options, interactive bool) (string, string, error) {
	uc, err := userconfig.Load()
	if err != nil {
		return "", "", fmt.Errorf("failed to load user config: %w", err)
	}

	url := opts.APIURL
	if url == "" {
		url = cfg.API.URL
	}

	if url != "" {
		name := opts.Profile
		if name == "" {
			name = userconfig.DefaultProfile
		}
		return name, url, nil
	}

	profile, err := profileselect.ResolveProfile(uc, opts.Profile, interactive)
	if err != nil {
		return "", "", err
	}
	if profile == nil {
		return "", "", fmt.Errorf("no API URL configured. Run 'adminctl profile add <name> <api-url>' or set ADMINCTL_API_URL")
	}
	return profile.Name, profile.APIURL, nil
}

// OpenTokenStore returns the token store of a profile.
func OpenTokenStore(kind, profile string) (tokenstore.Store, error) {
	key := tokenstore.KeyFor(profile)
	switch kind {
	case config.TokenStoreFile:
		path, err := tokenstore.DefaultFilePath(key)
		if err != nil {
			return nil, err
		}
		return tokenstore.NewFile(path), nil
	case config.TokenStoreKeyring, "":
		return tokenstore.NewKeyring(tokenstore.DefaultService, key), nil
	}
	return nil, fmt.Errorf("unknown token store %q", kind)
}

// Build wires the request client, services and session around tokens.
func Build(baseURL string, tokens tokenstore.Store, opts ...Option) *App {
	a := &App{
		Config:  &config.Config{},
		Profile: userconfig.DefaultProfile,
		BaseURL: baseURL,
		Tokens:  tokens,
		Format:  output.Table,
		Out:     os.Stdout,
		Err:     os.Stderr,
	}
	a.Confirm = a.promptConfirm
	a.ReadPassword = a.promptPassword
	for _, opt := range opts {
		opt(a)
	}

	log := zerolog.Nop()
	if a.Config.Logging.Level != "" {
		log = logger.GetLogger()
	}

	clientOpts := append([]httpclient.Option{
		httpclient.WithTokenSource(httpclient.TokenSourceFunc(tokenstore.Bearer(tokens))),
	}, a.clientOpts...)
	a.Client = httpclient.New(baseURL, clientOpts...)
	a.API = api.New(a.Client)
	a.Session = session.New(a.API.Auth, tokens,
		session.WithNavigator(session.NavigatorFunc(a.redirectToLogin)),
		session.WithLogger(log),
	)
	a.Client.OnUnauthorized(a.Session)
	return a
}

// redirectToLogin is the CLI's login screen: it tells the user how to sign
// in again. A rejected logout is reported by the logout command.
func (a *App) redirectToLogin(_ context.Context, reason error) {
	var reqErr *httpclient.RequestError
	if errors.As(reason, &reqErr) && reqErr.Path == api.LogoutPath {
		return
	}
	fmt.Fprintf(a.Err, "Session expired or revoked. Please run 'adminctl login' again.\n")
}

// RequireSession resolves the session and fails unless a user is signed in.
func (a *App) RequireSession(ctx context.Context) (*api.User, error) {
	if err := a.Session.Init(ctx); err != nil {
		return nil, err
	}
	if a.Session.State() != session.Authenticated {
		return nil, ErrNotAuthenticated
	}
	return a.Session.User(), nil
}

// Render prints v in the configured format.
func (a *App) Render(v any, table func() output.Rows) error {
	return output.Render(a.Out, a.Format, v, table)
}

// Printf writes a human readable line. It is silent for json and yaml so
// their output stays parseable.
func (a *App) Printf(format string, args ...any) {
	if a.Format != output.Table {
		return
	}
	fmt.Fprintf(a.Out, format, args...)
}

func (a *App) promptConfirm(label string) (bool, error) {
	if !a.Interactive {
		return false, fmt.Errorf("confirmation required in non-interactive mode (use --yes)")
	}
	prompt := promptui.Prompt{
		Label:     label,
		IsConfirm: true,
	}
	if _, err := prompt.Run(); err != nil {
		if errors.Is(err, promptui.ErrAbort) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

func (a *App) promptPassword(prompt string) (string, error) {
	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		return "", fmt.Errorf("password is required in non-interactive mode (use --password flag or ADMINCTL_PASSWORD env var)")
	}
	fmt.Fprint(a.Err, prompt)
	b, err := term.ReadPassword(fd)
	fmt.Fprintln(a.Err)
	if err != nil {
		return "", fmt.Errorf("failed to read password: %w", err)
	}
	return string(b), nil
}
