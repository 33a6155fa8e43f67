package tokenstore

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zalando/go-keyring"
)

func exerciseStore(t *testing.T, s Store) {
	t.Helper()

	_, err := s.Load()
	require.ErrorIs(t, err, ErrNotFound)

	// Deleting a missing token is fine
	require.NoError(t, s.Delete())

	require.NoError(t, s.Save("first"))
	require.NoError(t, s.Save("second"))

	token, err := s.Load()
	require.NoError(t, err)
	assert.Equal(t, "second", token)

	require.NoError(t, s.Delete())
	_, err = s.Load()
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemory(t *testing.T) {
	exerciseStore(t, NewMemory())
}

func TestFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", TokenKey)
	exerciseStore(t, NewFile(path))
}

func TestKeyring(t *testing.T) {
	keyring.MockInit()
	exerciseStore(t, NewKeyring("", KeyFor("default")))
}

func TestKeyring_BackendFailure(t *testing.T) {
	keyring.MockInitWithError(errors.New("dbus unavailable"))
	t.Cleanup(keyring.MockInit)

	s := NewKeyring("adminctl-test", TokenKey)

	_, err := s.Load()
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrNotFound)
	assert.Contains(t, err.Error(), "dbus unavailable")

	assert.Error(t, s.Save("x"))
	assert.Error(t, s.Delete())
}

func TestKeyFor(t *testing.T) {
	assert.Equal(t, "auth_token", KeyFor(""))
	assert.Equal(t, "auth_token", KeyFor("default"))
	assert.Equal(t, "auth_token-staging", KeyFor("staging"))
}

func TestBearer(t *testing.T) {
	s := NewMemory()
	bearer := Bearer(s)

	token, err := bearer(context.Background())
	require.NoError(t, err)
	assert.Empty(t, token)

	require.NoError(t, s.Save("abc"))
	token, err = bearer(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "abc", token)
}
