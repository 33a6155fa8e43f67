package profileselect

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taqnia-dev/adminctl/internal/cli/userconfig"
)

func twoProfiles() *userconfig.UserConfig {
	return &userconfig.UserConfig{Profiles: []userconfig.Profile{
		{Name: "prod", APIURL: "https://taqnia.dev/api"},
		{Name: "staging", APIURL: "https://staging.taqnia.dev/api"},
	}}
}

func TestResolveProfile_ByName(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	p, err := ResolveProfile(twoProfiles(), "staging", false)
	require.NoError(t, err)
	assert.Equal(t, "https://staging.taqnia.dev/api", p.APIURL)

	_, err = ResolveProfile(twoProfiles(), "missing", false)
	assert.ErrorContains(t, err, "profile 'missing' not found")
}

func TestResolveProfile_Selected(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	cfg := twoProfiles()
	cfg.SelectedProfile = "prod"

	p, err := ResolveProfile(cfg, "", false)
	require.NoError(t, err)
	assert.Equal(t, "prod", p.Name)
}

func TestResolveProfile_StaleSelection(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	cfg := twoProfiles()
	cfg.SelectedProfile = "gone"

	_, err := ResolveProfile(cfg, "", false)
	assert.ErrorContains(t, err, "none is selected")
	assert.Empty(t, cfg.SelectedProfile)
}

func TestResolveProfile_SingleProfileIsSaved(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	cfg := &userconfig.UserConfig{Profiles: []userconfig.Profile{{Name: "prod", APIURL: "https://taqnia.dev"}}}

	p, err := ResolveProfile(cfg, "", false)
	require.NoError(t, err)
	assert.Equal(t, "prod", p.Name)

	selected, err := userconfig.GetSelectedProfile()
	require.NoError(t, err)
	assert.Equal(t, "prod", selected)
}

func TestResolveProfile_NoProfiles(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	p, err := ResolveProfile(&userconfig.UserConfig{}, "", false)
	require.NoError(t, err)
	assert.Nil(t, p)
}
