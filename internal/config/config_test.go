package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{
		"ADMINCTL_API_URL", "ADMINCTL_TIMEOUT", "ADMINCTL_INSECURE_TLS",
		"ADMINCTL_TOKEN_STORE", "ADMINCTL_LOG_LEVEL", "ADMINCTL_LOG_FORMAT",
		"ADMINCTL_EMAIL", "ADMINCTL_PASSWORD",
	} {
		t.Setenv(k, "")
	}
	// Keep stray .env files in the package directory out of the way
	chdir(t, t.TempDir())
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Empty(t, cfg.API.URL)
	assert.Equal(t, 30*time.Second, cfg.API.Timeout)
	assert.False(t, cfg.API.InsecureTLS)
	assert.Equal(t, TokenStoreKeyring, cfg.TokenStore)
	assert.Equal(t, "warn", cfg.Logging.Level)
	assert.Equal(t, "console", cfg.Logging.Format)
}

func TestLoad_FromEnv(t *testing.T) {
	clearEnv(t)
	t.Setenv("ADMINCTL_API_URL", " https://api.taqnia.dev ")
	t.Setenv("ADMINCTL_TIMEOUT", "5s")
	t.Setenv("ADMINCTL_INSECURE_TLS", "true")
	t.Setenv("ADMINCTL_TOKEN_STORE", "FILE")
	t.Setenv("ADMINCTL_LOG_LEVEL", "debug")
	t.Setenv("ADMINCTL_EMAIL", "admin@taqnia.dev")
	t.Setenv("ADMINCTL_PASSWORD", "s3cret")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "https://api.taqnia.dev", cfg.API.URL)
	assert.Equal(t, 5*time.Second, cfg.API.Timeout)
	assert.True(t, cfg.API.InsecureTLS)
	assert.Equal(t, TokenStoreFile, cfg.TokenStore)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, "admin@taqnia.dev", cfg.Email)
	assert.Equal(t, "s3cret", cfg.Password)
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		key, value, want string
	}{
		{"ADMINCTL_TIMEOUT", "soon", "invalid ADMINCTL_TIMEOUT"},
		{"ADMINCTL_TIMEOUT", "-1s", "must be positive"},
		{"ADMINCTL_INSECURE_TLS", "maybe", "invalid ADMINCTL_INSECURE_TLS"},
		{"ADMINCTL_TOKEN_STORE", "vault", "expected keyring or file"},
	}

	for _, tt := range tests {
		t.Run(tt.key+"="+tt.value, func(t *testing.T) {
			clearEnv(t)
			t.Setenv(tt.key, tt.value)

			_, err := Load()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

// chdir changes the working directory for the rest of the test and restores
// it on cleanup (stand-in for testing.T.Chdir, which needs Go 1.24).
func chdir(t *testing.T, dir string) {
	t.Helper()
	old, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() {
		if err := os.Chdir(old); err != nil {
			t.Fatal(err)
		}
	})
}
