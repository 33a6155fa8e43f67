package tokenstore

import (
	"errors"
	"fmt"

	"github.com/zalando/go-keyring"
)

// DefaultService is the keychain service name entries are filed under.
const DefaultService = "adminctl"

// Keyring stores the token securely in the OS keychain/credential manager.
type Keyring struct {
	service string
	key     string
}

// NewKeyring returns a keychain-backed store for the given key.
func NewKeyring(service, key string) *Keyring {
	if service == "" {
		service = DefaultService
	}
	return &Keyring{service: service, key: key}
}

// Save persists the token in the OS keychain
func (k *Keyring) Save(token string) error {
	if err := keyring.Set(k.service, k.key, token); err != nil {
		return fmt.Errorf("failed to save token: %w", err)
	}
	return nil
}

// Load retrieves the token from the OS keychain
func (k *Keyring) Load() (string, error) {
	token, err := keyring.Get(k.service, k.key)
	if err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return "", ErrNotFound
		}
		return "", fmt.Errorf("failed to load token: %w", err)
	}
	return token, nil
}

// Delete removes the token from the OS keychain
func (k *Keyring) Delete() error {
	if err := keyring.Delete(k.service, k.key); err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return nil // Already deleted
		}
		return fmt.Errorf("failed to delete token: %w", err)
	}
	return nil
}
