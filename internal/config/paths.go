package config

import (
	"os"
	"path/filepath"
)

const (
	// EnvConfigPath names an explicit config file
	EnvConfigPath = "BADGECLOCK_CONFIG"
	// ConfigFileName is looked up in the working directory
	ConfigFileName = "badgeclock.yaml"
	// ConfigDirName is the per-user and system config directory
	ConfigDirName = "badgeclock"
)

// SearchPaths lists config candidates in priority order:
// 1. $BADGECLOCK_CONFIG
// 2. ./badgeclock.yaml
// 3. $XDG_CONFIG_HOME/badgeclock/config.yaml
// 4. ~/.config/badgeclock/config.yaml
// 5. /etc/badgeclock/config.yaml
func SearchPaths() []string {
	var paths []string
	if path := os.Getenv(EnvConfigPath); path != "" {
		paths = append(paths, path)
	}
	if abs, err := filepath.Abs(ConfigFileName); err == nil {
		paths = append(paths, abs)
	} else {
		paths = append(paths, ConfigFileName)
	}
	if xdgHome := os.Getenv("XDG_CONFIG_HOME"); xdgHome != "" {
		paths = append(paths, filepath.Join(xdgHome, ConfigDirName, "config.yaml"))
	}
	if home := os.Getenv("HOME"); home != "" {
		paths = append(paths, filepath.Join(home, ".config", ConfigDirName, "config.yaml"))
	}
	return append(paths, filepath.Join("/etc", ConfigDirName, "config.yaml"))
}

// FindConfigPath returns the first existing config file, or ""
func FindConfigPath() string {
	for _, path := range SearchPaths() {
		if fileExists(path) {
			return path
		}
	}
	return ""
}

// DefaultConfigPath returns where `config init` writes a new file.
// Prefers the working directory so a kiosk install stays self-contained.
func DefaultConfigPath() string {
	if abs, err := filepath.Abs(ConfigFileName); err == nil {
		return abs
	}
	return ConfigFileName
}

// EnsureConfigDir creates the config directory if it doesn't exist
func EnsureConfigDir(configPath string) error {
	return os.MkdirAll(filepath.Dir(configPath), 0755)
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
