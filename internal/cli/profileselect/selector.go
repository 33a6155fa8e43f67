package profileselect

import (
	"fmt"

	"github.com/manifoldco/promptui"

	"github.com/taqnia-dev/adminctl/internal/cli/userconfig"
)

// ResolveProfile determines which profile to use based on the following priority:
// 1. If profileName flag is provided, use that profile
// 2. If user has a selected profile in their local config, use that
// 3. If only one profile is configured, use that
// 4. Otherwise, prompt user to select a profile interactively
//
// It returns nil when no profile is configured at all, leaving the caller to
// fall back to ADMINCTL_API_URL.
func ResolveProfile(cfg *userconfig.UserConfig, profileName string, interactive bool) (*userconfig.Profile, error) {
	// Priority 1: Use profile name if provided
	if profileName != "" {
		return cfg.Profile(profileName)
	}

	// Priority 2: Use selected profile from user config
	if cfg.SelectedProfile != "" {
		profile, err := cfg.Profile(cfg.SelectedProfile)
		if err == nil {
			return profile, nil
		}
		// Selected profile no longer exists, clear it and continue
		cfg.SelectedProfile = ""
		_ = userconfig.SetSelectedProfile("")
	}

	switch len(cfg.Profiles) {
	case 0:
		return nil, nil
	case 1:
		// Priority 3: If only one profile, use it automatically
		profile := &cfg.Profiles[0]
		if err := userconfig.SetSelectedProfile(profile.Name); err != nil {
			// Don't fail if we can't save, just continue
			fmt.Printf("Warning: failed to save selected profile: %v\n", err)
		}
		return profile, nil
	}

	if !interactive {
		return nil, fmt.Errorf("several profiles are configured and none is selected. Run 'adminctl profile use <name>' or pass --profile")
	}

	// Priority 4: Prompt user to select a profile
	profile, err := PromptProfileSelection(cfg)
	if err != nil {
		return nil, err
	}

	// Save the selected profile
	if err := userconfig.SetSelectedProfile(profile.Name); err != nil {
		// Don't fail if we can't save, just continue
		fmt.Printf("Warning: failed to save selected profile: %v\n", err)
	}

	return profile, nil
}

// PromptProfileSelection shows an interactive prompt for the user to select a profile
func PromptProfileSelection(cfg *userconfig.UserConfig) (*userconfig.Profile, error) {
	if len(cfg.Profiles) == 0 {
		return nil, fmt.Errorf("no profiles configured. Run 'adminctl profile add <name> <api-url>' first")
	}

	// Create display labels for each profile
	type profileOption struct {
		Label   string
		Profile *userconfig.Profile
	}

	options := make([]profileOption, len(cfg.Profiles))
	for i := range cfg.Profiles {
		profile := &cfg.Profiles[i]
		label := fmt.Sprintf("%s (%s)", profile.Name, profile.APIURL)
		if profile.Name == cfg.SelectedProfile {
			label += " *"
		}
		options[i] = profileOption{
			Label:   label,
			Profile: profile,
		}
	}

	templates := &promptui.SelectTemplates{
		Label:    "{{ . }}",
		Active:   "> {{ .Label | cyan }}",
		Inactive: "  {{ .Label }}",
		Selected: "{{ .Label | green }}",
	}

	prompt := promptui.Select{
		Label:     "Select a profile",
		Items:     options,
		Templates: templates,
		Size:      10,
	}

	index, _, err := prompt.Run()
	if err != nil {
		return nil, fmt.Errorf("profile selection cancelled: %w", err)
	}

	return options[index].Profile, nil
}
