package config

import (
	"time"
)

// Config is the root configuration structure
type Config struct {
	Version    int              `yaml:"version"`
	Server     ServerConfig     `yaml:"server"`
	Database   DatabaseConfig   `yaml:"database"`
	Firestore  FirestoreConfig  `yaml:"firestore"`
	Reader     ReaderConfig     `yaml:"reader"`
	Attendance AttendanceConfig `yaml:"attendance"`
	Roster     RosterConfig     `yaml:"roster"`
}

// ServerConfig holds HTTP listener settings
type ServerConfig struct {
	Addr string `yaml:"addr"`
}

// Store drivers
const (
	DriverSQLite    = "sqlite"
	DriverFirestore = "firestore"
)

// DatabaseConfig selects the attendance store
type DatabaseConfig struct {
	Driver string `yaml:"driver"` // sqlite or firestore
	Path   string `yaml:"path"`   // sqlite file, ":memory:" for a throwaway store
}

// FirestoreConfig holds the Firebase project used when Driver is firestore
type FirestoreConfig struct {
	ProjectID            string `yaml:"project_id,omitempty"`
	CredentialsFile      string `yaml:"credentials_file,omitempty"`
	EmployeesCollection  string `yaml:"employees_collection"`
	AttendanceCollection string `yaml:"attendance_collection"`
}

// ReaderConfig describes the websocket badge reader
type ReaderConfig struct {
	URL              string   `yaml:"url"` // empty disables the reader connection
	ReconnectDelay   Duration `yaml:"reconnect_delay"`
	HandshakeTimeout Duration `yaml:"handshake_timeout"`
}

// AttendanceConfig tunes the attendance engine and its snapshots
type AttendanceConfig struct {
	// Timezone decides where a calendar day starts (IANA name)
	Timezone     string   `yaml:"timezone"`
	RecentScans  int      `yaml:"recent_scans"`
	DirectoryTTL Duration `yaml:"directory_ttl"`
	RecordsTTL   Duration `yaml:"records_ttl"`
}

// RosterConfig points at an optional roster file imported on start
type RosterConfig struct {
	Path  string `yaml:"path,omitempty"`
	Watch bool   `yaml:"watch"`
}

// Duration wraps time.Duration for YAML unmarshaling
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler
func (d *Duration) UnmarshalYAML(unmarshal func(interface{}) error) error {
	var s string
	if err := unmarshal(&s); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(s)
	if err != nil {
		return err
	}
	*d = Duration(parsed)
	return nil
}

// MarshalYAML implements yaml.Marshaler
func (d Duration) MarshalYAML() (interface{}, error) {
	return time.Duration(d).String(), nil
}

// Duration returns the underlying time.Duration
func (d Duration) Duration() time.Duration {
	return time.Duration(d)
}
