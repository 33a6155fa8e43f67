// Package tokenstore persists the single opaque authentication token.
package tokenstore

import (
	"context"
	"errors"
	"sync"
)

// TokenKey is the fixed key the token is stored under. Non-default profiles
// get their own suffixed key.
const TokenKey = "auth_token"

// ErrNotFound is returned by Load when no token is persisted.
var ErrNotFound = errors.New("no authentication token stored")

// Store defines the token storage operations.
// This allows us to swap the keyring out in tests and headless environments.
type Store interface {
	Save(token string) error
	Load() (string, error)
	// Delete removes the token. Deleting a missing token is not an error.
	Delete() error
}

// KeyFor returns the storage key for a profile.
func KeyFor(profile string) string {
	if profile == "" || profile == "default" {
		return TokenKey
	}
	return TokenKey + "-" + profile
}

// Bearer adapts a Store to the token accessor signature expected by the
// request client. A missing token yields an empty string.
func Bearer(s Store) func(ctx context.Context) (string, error) {
	return func(ctx context.Context) (string, error) {
		token, err := s.Load()
		if errors.Is(err, ErrNotFound) {
			return "", nil
		}
		return token, err
	}
}

// Memory keeps the token in process memory.
type Memory struct {
	mu    sync.Mutex
	token string
}

// NewMemory returns an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{}
}

func (m *Memory) Save(token string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.token = token
	return nil
}

func (m *Memory) Load() (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.token == "" {
		return "", ErrNotFound
	}
	return m.token, nil
}

func (m *Memory) Delete() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.token = ""
	return nil
}
