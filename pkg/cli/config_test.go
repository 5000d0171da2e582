package cli

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUserConfig_ActiveProfile(t *testing.T) {
	cfg := &UserConfig{
		CurrentProfile: "default",
		Profiles: map[string]Profile{
			"default": {
				Warehouse: "refinery.duckdb",
				Output:    "table",
			},
			"staging": {
				Warehouse: "/srv/staging/refinery.duckdb",
				ControlDB: "/srv/staging/control.sqlite",
				Output:    "json",
			},
		},
	}

	tests := []struct {
		name          string
		override      string
		wantWarehouse string
		wantErr       string
	}{
		{
			name:          "uses current profile",
			override:      "",
			wantWarehouse: "refinery.duckdb",
		},
		{
			name:          "override to staging",
			override:      "staging",
			wantWarehouse: "/srv/staging/refinery.duckdb",
		},
		{
			name:     "nonexistent profile errors",
			override: "nonexistent",
			wantErr:  `profile "nonexistent" not found`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := cfg.ActiveProfile(tt.override)
			if tt.wantErr != "" {
				require.EqualError(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantWarehouse, p.Warehouse)
		})
	}
}

func TestUserConfig_ActiveProfile_MissingCurrent(t *testing.T) {
	cfg := &UserConfig{
		CurrentProfile: "gone",
		Profiles:       map[string]Profile{},
	}

	p, err := cfg.ActiveProfile("")
	require.NoError(t, err)
	assert.Equal(t, Profile{}, p)
}

func TestLoadSaveUserConfig(t *testing.T) {
	// Override config path for testing
	dir := t.TempDir()
	t.Setenv("HOME", dir)

	// Save a config
	cfg := &UserConfig{
		CurrentProfile: "test",
		Profiles: map[string]Profile{
			"test": {
				Warehouse: "/data/test.duckdb",
				ControlDB: "/data/control.sqlite",
			},
		},
	}
	err := SaveUserConfig(cfg)
	require.NoError(t, err)

	// Verify file exists
	configPath := filepath.Join(dir, ".refinery", "config.yaml")
	_, err = os.Stat(configPath)
	require.NoError(t, err)

	// Load it back
	loaded, err := LoadUserConfig()
	require.NoError(t, err)
	assert.Equal(t, "test", loaded.CurrentProfile)
	require.Contains(t, loaded.Profiles, "test")
	assert.Equal(t, "/data/test.duckdb", loaded.Profiles["test"].Warehouse)
	assert.Equal(t, "/data/control.sqlite", loaded.Profiles["test"].ControlDB)
}

func TestLoadUserConfig_NotFound(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("HOME", dir)

	_, err := LoadUserConfig()
	require.Error(t, err)
}
