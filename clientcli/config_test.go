package clientcli_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sagarc03/aimage/clientcli"
)

func TestConfig_WithDefaults(t *testing.T) {
	cfg := (&clientcli.Config{}).WithDefaults()
	assert.Equal(t, clientcli.DefaultEndpoint, cfg.Endpoint)

	original := &clientcli.Config{Endpoint: "http://images.local"}
	cfg = original.WithDefaults()
	assert.Equal(t, "http://images.local", cfg.Endpoint)
	assert.NotSame(t, original, cfg)
}

func TestConfig_ValidateWithAuth(t *testing.T) {
	assert.NoError(t, (&clientcli.Config{Username: "u", Password: "p"}).ValidateWithAuth())
	assert.ErrorIs(t, (&clientcli.Config{Password: "p"}).ValidateWithAuth(), clientcli.ErrUsernameRequired)
	assert.ErrorIs(t, (&clientcli.Config{Username: "u"}).ValidateWithAuth(), clientcli.ErrPasswordRequired)
}

func TestConfigFile_Profiles(t *testing.T) {
	cf := &clientcli.ConfigFile{}

	_, err := cf.GetProfile("")
	assert.ErrorIs(t, err, clientcli.ErrNoProfiles)

	require.NoError(t, cf.AddProfile(clientcli.Profile{Name: "local", Endpoint: "http://localhost:5000"}))
	require.NoError(t, cf.AddProfile(clientcli.Profile{Name: "prod", Endpoint: "https://images.example.com"}))
	assert.ErrorIs(t, cf.AddProfile(clientcli.Profile{Name: "local"}), clientcli.ErrProfileExists)

	p, err := cf.GetProfile("")
	require.NoError(t, err)
	assert.Equal(t, "local", p.Name, "first profile is the default when none is marked")

	require.NoError(t, cf.SetDefault("prod"))
	p, err = cf.GetDefaultProfile()
	require.NoError(t, err)
	assert.Equal(t, "prod", p.Name)
	assert.False(t, cf.Profiles[0].Default)

	assert.ErrorIs(t, cf.SetDefault("missing"), clientcli.ErrProfileNotFound)

	require.NoError(t, cf.UpdateProfile(clientcli.Profile{Name: "local", Endpoint: "http://localhost:6000"}))
	p, err = cf.GetProfile("local")
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:6000", p.Endpoint)
	assert.ErrorIs(t, cf.UpdateProfile(clientcli.Profile{Name: "missing"}), clientcli.ErrProfileNotFound)

	_, err = cf.GetProfile("missing")
	assert.ErrorIs(t, err, clientcli.ErrProfileNotFound)

	assert.Equal(t, []string{"local", "prod"}, cf.ProfileNames())

	require.NoError(t, cf.RemoveProfile("local"))
	assert.Equal(t, []string{"prod"}, cf.ProfileNames())
	assert.ErrorIs(t, cf.RemoveProfile("local"), clientcli.ErrProfileNotFound)
}

func TestConfigFile_SaveAndLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")

	cf := &clientcli.ConfigFile{Profiles: []clientcli.Profile{
		{Name: "local", Endpoint: "http://localhost:5000", Username: "admin", Password: "secret", Default: true},
	}}
	require.NoError(t, cf.Save(path))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	loaded, err := clientcli.LoadConfigFile(path)
	require.NoError(t, err)
	assert.Equal(t, cf, loaded)
}

func TestLoadConfigFile_Errors(t *testing.T) {
	_, err := clientcli.LoadConfigFile(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`profiles: [yaml: content`), 0o600))
	_, err = clientcli.LoadConfigFile(path)
	assert.Error(t, err)
}

func TestConfigFromProfile(t *testing.T) {
	assert.Equal(t, &clientcli.Config{}, clientcli.ConfigFromProfile(nil))
	assert.Equal(t,
		&clientcli.Config{Endpoint: "http://x", Username: "u", Password: "p"},
		clientcli.ConfigFromProfile(&clientcli.Profile{Name: "n", Endpoint: "http://x", Username: "u", Password: "p"}),
	)
}

func TestMergeConfig(t *testing.T) {
	tests := []struct {
		name     string
		configs  []*clientcli.Config
		expected *clientcli.Config
	}{
		{
			name:     "empty configs",
			configs:  []*clientcli.Config{},
			expected: &clientcli.Config{},
		},
		{
			name: "later config overrides",
			configs: []*clientcli.Config{
				{Endpoint: "http://a.com", Username: "user1", Password: "pass1"},
				{Endpoint: "http://b.com", Username: "user2"},
			},
			expected: &clientcli.Config{Endpoint: "http://b.com", Username: "user2", Password: "pass1"},
		},
		{
			name: "nil config is skipped",
			configs: []*clientcli.Config{
				{Endpoint: "http://a.com"},
				nil,
				{Password: "pass2"},
			},
			expected: &clientcli.Config{Endpoint: "http://a.com", Password: "pass2"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, clientcli.MergeConfig(tt.configs...))
		})
	}
}

func TestConfigFromEnv(t *testing.T) {
	t.Setenv("AIMAGE_ENDPOINT", "http://test.example.com")
	t.Setenv("AIMAGE_USERNAME", "env-user")
	t.Setenv("AIMAGE_PASSWORD", "env-pass")
	t.Setenv("AIMAGE_PROFILE", "staging")
	t.Setenv("AIMAGE_CLI_CONFIG", "/tmp/aimage.yaml")

	cfg := clientcli.ConfigFromEnv()

	assert.Equal(t, "http://test.example.com", cfg.Endpoint)
	assert.Equal(t, "env-user", cfg.Username)
	assert.Equal(t, "env-pass", cfg.Password)
	assert.Equal(t, "staging", clientcli.ProfileFromEnv())
	assert.Equal(t, "/tmp/aimage.yaml", clientcli.ConfigPathFromEnv())
}
