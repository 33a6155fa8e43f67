package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Token store backends.
const (
	TokenStoreKeyring = "keyring"
	TokenStoreFile    = "file"
)

// Config holds all configuration for the application
type Config struct {
	// API Configuration
	API APIConfig

	// Token storage Configuration
	TokenStore string // keyring, file

	// Credentials for non-interactive login
	Email    string
	Password string

	// Logging Configuration
	Logging LoggingConfig
}

// APIConfig holds backend connection settings
type APIConfig struct {
	URL         string // empty means "use the selected profile"
	Timeout     time.Duration
	InsecureTLS bool
}

// LoggingConfig holds logging-related configuration
type LoggingConfig struct {
	Level  string
	Format string // json, console
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	// Load .env files (fails silently if files don't exist)
	_ = godotenv.Load(".env")
	_ = godotenv.Load(".env.local")

	timeout := 30 * time.Second
	if raw := os.Getenv("ADMINCTL_TIMEOUT"); raw != "" {
		d, err := time.ParseDuration(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid ADMINCTL_TIMEOUT %q: %w", raw, err)
		}
		if d <= 0 {
			return nil, fmt.Errorf("invalid ADMINCTL_TIMEOUT %q: must be positive", raw)
		}
		timeout = d
	}

	insecure := false
	if raw := os.Getenv("ADMINCTL_INSECURE_TLS"); raw != "" {
		v, err := strconv.ParseBool(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid ADMINCTL_INSECURE_TLS %q: %w", raw, err)
		}
		insecure = v
	}

	tokenStore := strings.ToLower(os.Getenv("ADMINCTL_TOKEN_STORE"))
	switch tokenStore {
	case "":
		tokenStore = TokenStoreKeyring
	case TokenStoreKeyring, TokenStoreFile:
	default:
		return nil, fmt.Errorf("invalid ADMINCTL_TOKEN_STORE %q: expected keyring or file", tokenStore)
	}

	// Logging configuration - quiet by default, the CLI prints its own output
	logLevel := os.Getenv("ADMINCTL_LOG_LEVEL")
	if logLevel == "" {
		logLevel = "warn"
	}

	logFormat := os.Getenv("ADMINCTL_LOG_FORMAT")
	if logFormat == "" {
		logFormat = "console"
	}

	return &Config{
		API: APIConfig{
			URL:         strings.TrimSpace(os.Getenv("ADMINCTL_API_URL")),
			Timeout:     timeout,
			InsecureTLS: insecure,
		},
		TokenStore: tokenStore,
		Email:      os.Getenv("ADMINCTL_EMAIL"),
		Password:   os.Getenv("ADMINCTL_PASSWORD"),
		Logging: LoggingConfig{
			Level:  logLevel,
			Format: logFormat,
		},
	}, nil
}
