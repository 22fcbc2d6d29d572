package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.NotNil(t, cfg)

	// Store defaults
	assert.Equal(t, DefaultDimensions, cfg.Store.Dimensions)
	assert.Equal(t, DefaultDistanceMetric, cfg.Store.DistanceMetric)
	assert.Equal(t, DefaultSchemaVersion, cfg.Store.SchemaVersion)

	// Bridge defaults
	assert.Equal(t, 3, cfg.Bridge.SearchLimit)
	assert.Equal(t, 10, cfg.Bridge.PageSize)
	assert.Equal(t, 700, cfg.Bridge.MaxContentLength)

	// Import defaults
	assert.True(t, cfg.Import.SkipDuplicates)

	assert.NoError(t, cfg.Validate())
}

func TestDefaultPaths(t *testing.T) {
	configDir := DefaultConfigDir()
	dataDir := DefaultDataDir()
	dbPath := DefaultDatabasePath()

	assert.NotEmpty(t, configDir)
	assert.NotEmpty(t, dataDir)
	assert.NotEmpty(t, dbPath)

	// Should contain "vecdoc"
	assert.Contains(t, configDir, "vecdoc")
	assert.Contains(t, dataDir, "vecdoc")
	assert.Contains(t, dbPath, "vector.db")
}

func TestLoadWithConfigFile(t *testing.T) {
	// Reset viper and global config
	viper.Reset()
	cfg = nil

	// Create a temporary config file
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	configContent := `
database:
  path: /custom/path/vector.db
store:
  dimensions: 384
  distance_metric: cosine
  schema_version: 2
bridge:
  search_limit: 5
  page_size: 25
  max_content_length: 0
import:
  skip_duplicates: false
  ignore:
    - "draft-*.jsonl"
`
	err := os.WriteFile(configPath, []byte(configContent), 0644)
	require.NoError(t, err)

	// Load the config
	err = Load(configPath)
	require.NoError(t, err)

	loadedCfg := Get()

	// Verify loaded values
	assert.Equal(t, "/custom/path/vector.db", loadedCfg.Database.Path)
	assert.Equal(t, 384, loadedCfg.Store.Dimensions)
	assert.Equal(t, "cosine", loadedCfg.Store.DistanceMetric)
	assert.Equal(t, 2, loadedCfg.Store.SchemaVersion)
	assert.Equal(t, 5, loadedCfg.Bridge.SearchLimit)
	assert.Equal(t, 25, loadedCfg.Bridge.PageSize)
	assert.Equal(t, 0, loadedCfg.Bridge.MaxContentLength)
	assert.False(t, loadedCfg.Import.SkipDuplicates)
	assert.Equal(t, []string{"draft-*.jsonl"}, loadedCfg.Import.Ignore)
	assert.Equal(t, configPath, ConfigFilePath())
}

func TestLoadWithEnvironmentVariables(t *testing.T) {
	// Reset viper and global config
	viper.Reset()
	cfg = nil

	// Set environment variables
	t.Setenv("VECDOC_STORE_DIMENSIONS", "4")
	t.Setenv("VECDOC_BRIDGE_PAGE_SIZE", "50")
	t.Setenv("VECDOC_DATABASE_PATH", "/tmp/env.db")

	// Load without a config file
	err := Load("")
	require.NoError(t, err)

	loadedCfg := Get()

	// Verify environment variables are loaded
	assert.Equal(t, 4, loadedCfg.Store.Dimensions)
	assert.Equal(t, 50, loadedCfg.Bridge.PageSize)
	assert.Equal(t, "/tmp/env.db", loadedCfg.Database.Path)
}

func TestLoadMissingConfigFile(t *testing.T) {
	// Reset viper and global config
	viper.Reset()
	cfg = nil

	// Load with non-existent config file - should not error, just use defaults
	err := Load("")
	require.NoError(t, err)

	loadedCfg := Get()

	// Should have default values
	assert.Equal(t, DefaultDimensions, loadedCfg.Store.Dimensions)
	assert.Equal(t, DefaultSearchLimit, loadedCfg.Bridge.SearchLimit)
}

func TestLoadRejectsInvalidConfig(t *testing.T) {
	tests := []struct {
		name    string
		content string
		errMsg  string
	}{
		{
			name:    "zero dimensions",
			content: "store:\n  dimensions: 0\n",
			errMsg:  "store.dimensions",
		},
		{
			name:    "unknown metric",
			content: "store:\n  distance_metric: hamming\n",
			errMsg:  "store.distance_metric",
		},
		{
			name:    "negative page size",
			content: "bridge:\n  page_size: -1\n",
			errMsg:  "bridge.page_size",
		},
		{
			name:    "search limit above sqlite-vec cap",
			content: "bridge:\n  search_limit: 5000\n",
			errMsg:  "bridge.search_limit",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			viper.Reset()
			cfg = nil

			configPath := filepath.Join(t.TempDir(), "config.yaml")
			require.NoError(t, os.WriteFile(configPath, []byte(tt.content), 0644))

			err := Load(configPath)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errMsg)

			// A rejected load leaves defaults in place
			assert.Equal(t, DefaultDimensions, Get().Store.Dimensions)
		})
	}
}

func TestFindRCFile(t *testing.T) {
	root := t.TempDir()
	nested := filepath.Join(root, "a", "b")
	require.NoError(t, os.MkdirAll(nested, 0755))
	require.NoError(t, os.WriteFile(filepath.Join(root, RCFileName), []byte("store:\n  dimensions: 8\n"), 0644))

	t.Chdir(nested)

	rcPath := findRCFile()
	require.NotEmpty(t, rcPath)
	assert.Equal(t, RCFileName, filepath.Base(rcPath))

	viper.Reset()
	cfg = nil
	require.NoError(t, Load(""))
	assert.Equal(t, 8, Get().Store.Dimensions)
}

func TestStoreOptions(t *testing.T) {
	c := DefaultConfig()
	assert.Len(t, c.StoreOptions(), 2)
}

func TestGet(t *testing.T) {
	// Reset global config
	cfg = nil

	// First call should return default config
	c1 := Get()
	assert.NotNil(t, c1)

	// Subsequent call should return same instance
	c2 := Get()
	assert.Same(t, c1, c2)
}

func TestGlobalConfigPath(t *testing.T) {
	path := GlobalConfigPath()
	assert.Contains(t, path, "vecdoc")
	assert.Contains(t, path, "config.yaml")
}
