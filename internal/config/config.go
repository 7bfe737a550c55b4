// Package config provides configuration management for badgeclock.
//
// Config file locations (priority order):
//  1. $BADGECLOCK_CONFIG
//  2. ./badgeclock.yaml
//  3. $XDG_CONFIG_HOME/badgeclock/config.yaml
//  4. ~/.config/badgeclock/config.yaml
//  5. /etc/badgeclock/config.yaml
//
// Environment variables override the file, see ApplyEnv.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Defaults
const (
	DefaultAddr             = ":8080"
	DefaultDBPath           = "./badgeclock.db"
	DefaultReaderURL        = "ws://localhost:81"
	DefaultTimezone         = "UTC"
	DefaultRecentScans      = 5
	DefaultReconnectDelay   = 5 * time.Second
	DefaultHandshakeTimeout = 10 * time.Second
	DefaultDirectoryTTL     = 30 * time.Second
	DefaultRecordsTTL       = 10 * time.Second
)

// Load finds and loads the config file, or returns defaults if none found.
// Environment overrides are applied in both cases.
func Load() (*Config, string, error) {
	path := FindConfigPath()

	if path == "" {
		cfg := DefaultConfig()
		cfg.ApplyEnv()
		return cfg, "", cfg.Validate()
	}

	return LoadFromPath(path)
}

// LoadFromPath loads config from a specific path
func LoadFromPath(path string) (*Config, string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, path, fmt.Errorf("read config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, path, fmt.Errorf("parse config: %w", err)
	}

	cfg.applyDefaults()
	cfg.ApplyEnv()

	return &cfg, path, cfg.Validate()
}

// Save writes config to the specified path
func (c *Config) Save(path string) error {
	if err := EnsureConfigDir(path); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	return os.WriteFile(path, data, 0644)
}

// DefaultConfig returns sensible defaults for a new installation
func DefaultConfig() *Config {
	cfg := &Config{}
	cfg.applyDefaults()
	cfg.Reader.URL = DefaultReaderURL
	return cfg
}

// applyDefaults fills in missing values with defaults.
// An empty reader URL is left alone: it disables the reader.
func (c *Config) applyDefaults() {
	if c.Version == 0 {
		c.Version = 1
	}
	if c.Server.Addr == "" {
		c.Server.Addr = DefaultAddr
	}
	if c.Database.Driver == "" {
		c.Database.Driver = DriverSQLite
	}
	if c.Database.Path == "" {
		c.Database.Path = DefaultDBPath
	}
	if c.Firestore.EmployeesCollection == "" {
		c.Firestore.EmployeesCollection = "employees"
	}
	if c.Firestore.AttendanceCollection == "" {
		c.Firestore.AttendanceCollection = "attendance"
	}
	if c.Reader.ReconnectDelay <= 0 {
		c.Reader.ReconnectDelay = Duration(DefaultReconnectDelay)
	}
	if c.Reader.HandshakeTimeout <= 0 {
		c.Reader.HandshakeTimeout = Duration(DefaultHandshakeTimeout)
	}
	if c.Attendance.Timezone == "" {
		c.Attendance.Timezone = DefaultTimezone
	}
	if c.Attendance.RecentScans <= 0 {
		c.Attendance.RecentScans = DefaultRecentScans
	}
	if c.Attendance.DirectoryTTL < 0 {
		c.Attendance.DirectoryTTL = 0
	}
	if c.Attendance.DirectoryTTL == 0 {
		c.Attendance.DirectoryTTL = Duration(DefaultDirectoryTTL)
	}
	if c.Attendance.RecordsTTL == 0 {
		c.Attendance.RecordsTTL = Duration(DefaultRecordsTTL)
	}
}

// Validate reports settings that cannot work
func (c *Config) Validate() error {
	switch c.Database.Driver {
	case DriverSQLite:
	case DriverFirestore:
		if c.Firestore.ProjectID == "" && c.Firestore.CredentialsFile == "" {
			return fmt.Errorf("firestore needs project_id or credentials_file")
		}
	default:
		return fmt.Errorf("unknown database driver %q", c.Database.Driver)
	}

	if c.Reader.URL != "" && !strings.HasPrefix(c.Reader.URL, "ws://") && !strings.HasPrefix(c.Reader.URL, "wss://") {
		return fmt.Errorf("reader url %q must use ws:// or wss://", c.Reader.URL)
	}

	if _, err := c.Location(); err != nil {
		return err
	}
	return nil
}

// Location returns the time zone that decides calendar days
func (c *Config) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(c.Attendance.Timezone)
	if err != nil {
		return nil, fmt.Errorf("timezone %q: %w", c.Attendance.Timezone, err)
	}
	return loc, nil
}

// Summary returns a human-readable config summary
func (c *Config) Summary() string {
	store := c.Database.Path
	if c.Database.Driver == DriverFirestore {
		store = c.Firestore.ProjectID
	}
	reader := c.Reader.URL
	if reader == "" {
		reader = "disabled"
	}

	summary := fmt.Sprintf("Listen: %s, Store: %s (%s)\n", c.Server.Addr, c.Database.Driver, store)
	summary += fmt.Sprintf("Reader: %s, Timezone: %s", reader, c.Attendance.Timezone)
	if c.Roster.Path != "" {
		summary += fmt.Sprintf("\nRoster: %s (watch: %v)", c.Roster.Path, c.Roster.Watch)
	}
	return summary
}
