// Package config handles configuration loading and validation for vecdoc.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/spf13/viper"

	"github.com/nickcecere/vecdoc/internal/store"
)

// Config represents the complete vecdoc configuration.
type Config struct {
	Database DatabaseConfig `mapstructure:"database"`
	Store    StoreConfig    `mapstructure:"store"`
	Bridge   BridgeConfig   `mapstructure:"bridge"`
	Import   ImportConfig   `mapstructure:"import"`
}

// DatabaseConfig configures the SQLite database.
type DatabaseConfig struct {
	Path string `mapstructure:"path"`
}

// StoreConfig configures the vector table.
type StoreConfig struct {
	Dimensions     int    `mapstructure:"dimensions"`
	DistanceMetric string `mapstructure:"distance_metric"`
	SchemaVersion  int    `mapstructure:"schema_version"`
}

// BridgeConfig configures request defaults and limits for the bridge.
type BridgeConfig struct {
	SearchLimit      int `mapstructure:"search_limit"`
	PageSize         int `mapstructure:"page_size"`
	MaxContentLength int `mapstructure:"max_content_length"` // 0 disables the check
}

// ImportConfig configures bulk imports.
type ImportConfig struct {
	SkipDuplicates bool     `mapstructure:"skip_duplicates"`
	Ignore         []string `mapstructure:"ignore"` // gitignore-style patterns skipped by watch
}

// Global configuration instance
var cfg *Config

// Get returns the current configuration.
func Get() *Config {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	return cfg
}

// DefaultConfig returns a configuration with default values.
func DefaultConfig() *Config {
	return &Config{
		Database: DatabaseConfig{
			Path: DefaultDatabasePath(),
		},
		Store: StoreConfig{
			Dimensions:     DefaultDimensions,
			DistanceMetric: DefaultDistanceMetric,
			SchemaVersion:  DefaultSchemaVersion,
		},
		Bridge: BridgeConfig{
			SearchLimit:      DefaultSearchLimit,
			PageSize:         DefaultPageSize,
			MaxContentLength: DefaultMaxContentLength,
		},
		Import: ImportConfig{
			SkipDuplicates: DefaultSkipDuplicates,
		},
	}
}

// Load reads configuration from file and environment variables.
func Load(configFile string) error {
	// Set defaults
	setDefaults()

	// Set config file if specified
	if configFile != "" {
		viper.SetConfigFile(configFile)
	} else {
		// Search for config in standard locations
		viper.SetConfigName("config")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(DefaultConfigDir())
		viper.AddConfigPath(".")

		// Also check for .vecdocrc.yaml in current directory and parents
		if rcPath := findRCFile(); rcPath != "" {
			viper.SetConfigFile(rcPath)
		}
	}

	// Environment variables
	viper.SetEnvPrefix("VECDOC")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	// Read config file
	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return fmt.Errorf("error reading config file: %w", err)
		}
		log.Debug("No config file found, using defaults")
	} else {
		log.Debug("Loaded config from", "file", viper.ConfigFileUsed())
	}

	// Unmarshal into config struct
	loaded := &Config{}
	if err := viper.Unmarshal(loaded); err != nil {
		return fmt.Errorf("error parsing config: %w", err)
	}

	if err := loaded.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	cfg = loaded
	return nil
}

// Validate checks values that would otherwise fail later when the store opens.
func (c *Config) Validate() error {
	if c.Database.Path == "" {
		return fmt.Errorf("database.path must not be empty")
	}
	if c.Store.Dimensions <= 0 {
		return fmt.Errorf("store.dimensions must be positive, got %d", c.Store.Dimensions)
	}
	if _, err := store.ParseDistanceMetric(c.Store.DistanceMetric); err != nil {
		return fmt.Errorf("store.distance_metric: %w", err)
	}
	if c.Store.SchemaVersion <= 0 {
		return fmt.Errorf("store.schema_version must be positive, got %d", c.Store.SchemaVersion)
	}
	if c.Bridge.SearchLimit <= 0 || c.Bridge.SearchLimit > store.MaxSearchK {
		return fmt.Errorf("bridge.search_limit must be between 1 and %d, got %d", store.MaxSearchK, c.Bridge.SearchLimit)
	}
	if c.Bridge.PageSize <= 0 || c.Bridge.PageSize > store.MaxPageSize {
		return fmt.Errorf("bridge.page_size must be between 1 and %d, got %d", store.MaxPageSize, c.Bridge.PageSize)
	}
	if c.Bridge.MaxContentLength < 0 {
		return fmt.Errorf("bridge.max_content_length must not be negative, got %d", c.Bridge.MaxContentLength)
	}
	return nil
}

// StoreOptions converts the store section into options for store.NewSQLiteStore.
func (c *Config) StoreOptions() []store.Option {
	return []store.Option{
		store.WithDistanceMetric(store.DistanceMetric(c.Store.DistanceMetric)),
		store.WithSchemaVersion(c.Store.SchemaVersion),
	}
}

// setDefaults sets default values in viper.
func setDefaults() {
	// Database
	viper.SetDefault("database.path", DefaultDatabasePath())

	// Store
	viper.SetDefault("store.dimensions", DefaultDimensions)
	viper.SetDefault("store.distance_metric", DefaultDistanceMetric)
	viper.SetDefault("store.schema_version", DefaultSchemaVersion)

	// Bridge
	viper.SetDefault("bridge.search_limit", DefaultSearchLimit)
	viper.SetDefault("bridge.page_size", DefaultPageSize)
	viper.SetDefault("bridge.max_content_length", DefaultMaxContentLength)

	// Import
	viper.SetDefault("import.skip_duplicates", DefaultSkipDuplicates)
	viper.SetDefault("import.ignore", []string{})
}

// findRCFile searches for .vecdocrc.yaml starting from current directory.
func findRCFile() string {
	cwd, err := os.Getwd()
	if err != nil {
		return ""
	}

	dir := cwd
	for {
		rcPath := filepath.Join(dir, RCFileName)
		if _, err := os.Stat(rcPath); err == nil {
			return rcPath
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}

	return ""
}

// ConfigFilePath returns the path of the loaded config file, or empty string if none.
func ConfigFilePath() string {
	return viper.ConfigFileUsed()
}

// GlobalConfigPath returns the path to the global config file.
func GlobalConfigPath() string {
	return filepath.Join(DefaultConfigDir(), "config.yaml")
}
