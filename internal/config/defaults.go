package config

import (
	"os"
	"path/filepath"
)

// Default configuration values
const (
	// Store defaults
	DefaultDimensions     = 768
	DefaultDistanceMetric = "l2"
	DefaultSchemaVersion  = 1

	// Bridge defaults
	DefaultSearchLimit      = 3
	DefaultPageSize         = 10
	DefaultMaxContentLength = 700

	// Import defaults
	DefaultSkipDuplicates = true

	// Database
	DefaultDBFileName = "vector.db"

	// RCFileName is the per-project config file searched for upward from the working directory.
	RCFileName = ".vecdocrc.yaml"
)

// DefaultConfigDir returns the default configuration directory path.
func DefaultConfigDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".config/vecdoc"
	}
	return filepath.Join(home, ".config", "vecdoc")
}

// DefaultDataDir returns the default data directory path.
func DefaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".local/share/vecdoc"
	}
	return filepath.Join(home, ".local", "share", "vecdoc")
}

// DefaultDatabasePath returns the default database file path.
func DefaultDatabasePath() string {
	return filepath.Join(DefaultDataDir(), DefaultDBFileName)
}
