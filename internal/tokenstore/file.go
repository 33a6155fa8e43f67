package tokenstore

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// File stores the token in a 0600 file, for machines without a keychain.
type File struct {
	path string
}

// NewFile returns a store writing to path.
func NewFile(path string) *File {
	return &File{path: path}
}

// DefaultFilePath returns ~/.config/adminctl/<key>.
func DefaultFilePath(key string) (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user home directory: %w", err)
	}
	return filepath.Join(homeDir, ".config", "adminctl", key), nil
}

func (f *File) Save(token string) error {
	if err := os.MkdirAll(filepath.Dir(f.path), 0700); err != nil {
		return fmt.Errorf("failed to create token directory: %w", err)
	}
	if err := os.WriteFile(f.path, []byte(token), 0600); err != nil {
		return fmt.Errorf("failed to save token: %w", err)
	}
	return nil
}

func (f *File) Load() (string, error) {
	data, err := os.ReadFile(f.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", ErrNotFound
		}
		return "", fmt.Errorf("failed to load token: %w", err)
	}

	token := strings.TrimSpace(string(data))
	if token == "" {
		return "", ErrNotFound
	}
	return token, nil
}

func (f *File) Delete() error {
	if err := os.Remove(f.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to delete token: %w", err)
	}
	return nil
}
