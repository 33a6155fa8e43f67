package userconfig

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

const (
	configDirName  = "adminctl"
	configFileName = "config.json"

	// DefaultProfile is used when no profile was ever selected.
	DefaultProfile = "default"
)

// Profile is a named backend the CLI can talk to.
type Profile struct {
	Name   string `json:"name" yaml:"name"`
	APIURL string `json:"api_url" yaml:"api_url"`
}

// UserConfig represents the user's local configuration stored in ~/.config/adminctl/config.json
type UserConfig struct {
	SelectedProfile string    `json:"selected_profile,omitempty"`
	Profiles        []Profile `json:"profiles,omitempty"`
}

// GetConfigPath returns ~/.config/adminctl/config.json.
func GetConfigPath() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user home directory: %w", err)
	}
	return filepath.Join(homeDir, ".config", configDirName, configFileName), nil
}

// Load reads the user configuration. A missing file is an empty config.
func Load() (*UserConfig, error) {
	configPath, err := GetConfigPath()
	if err != nil {
		return nil, err
	}

	cfg := &UserConfig{}
	data, err := os.ReadFile(configPath)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return cfg, nil
	case err != nil:
		return nil, fmt.Errorf("failed to read %s: %w", configPath, err)
	}

	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", configPath, err)
	}
	return cfg, nil
}

// Save replaces the user configuration file. The file is written next to
// the old one and renamed over it.
func Save(cfg *UserConfig) error {
	configPath, err := GetConfigPath()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(configPath), 0o700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode user config: %w", err)
	}

	tmp := configPath + ".tmp"
	if err := os.WriteFile(tmp, append(data, '\n'), 0o600); err != nil {
		return fmt.Errorf("failed to write user config: %w", err)
	}
	if err := os.Rename(tmp, configPath); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("failed to write user config: %w", err)
	}
	return nil
}

// Profile returns the profile with the given name.
func (c *UserConfig) Profile(name string) (*Profile, error) {
	for i := range c.Profiles {
		if c.Profiles[i].Name == name {
			return &c.Profiles[i], nil
		}
	}
	return nil, fmt.Errorf("profile '%s' not found. Run 'adminctl profile ls' to see configured profiles", name)
}

// Upsert adds a profile or replaces the URL of an existing one. Profiles are
// kept sorted by name.
func (c *UserConfig) Upsert(p Profile) error {
	if err := validateProfile(p); err != nil {
		return err
	}
	p.APIURL = strings.TrimRight(p.APIURL, "/")

	for i := range c.Profiles {
		if c.Profiles[i].Name == p.Name {
			c.Profiles[i] = p
			return nil
		}
	}
	c.Profiles = append(c.Profiles, p)
	sort.Slice(c.Profiles, func(i, j int) bool {
		return c.Profiles[i].Name < c.Profiles[j].Name
	})
	return nil
}

// Remove deletes a profile and clears the selection if it pointed at it.
func (c *UserConfig) Remove(name string) error {
	for i := range c.Profiles {
		if c.Profiles[i].Name == name {
			c.Profiles = append(c.Profiles[:i], c.Profiles[i+1:]...)
			if c.SelectedProfile == name {
				c.SelectedProfile = ""
			}
			return nil
		}
	}
	return fmt.Errorf("profile '%s' not found", name)
}

func validateProfile(p Profile) error {
	if p.Name == "" || strings.ContainsAny(p.Name, " /\\") {
		return fmt.Errorf("invalid profile name '%s': use letters, digits, '-' or '_'", p.Name)
	}
	u, err := url.Parse(p.APIURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("invalid API URL '%s': expected http(s)://host[/path]", p.APIURL)
	}
	return nil
}

// SetSelectedProfile updates the selected profile and saves the config
func SetSelectedProfile(name string) error {
	cfg, err := Load()
	if err != nil {
		return err
	}

	cfg.SelectedProfile = name
	return Save(cfg)
}

// GetSelectedProfile returns the selected profile name, or empty string if not set
func GetSelectedProfile() (string, error) {
	cfg, err := Load()
	if err != nil {
		return "", err
	}

	return cfg.SelectedProfile, nil
}
