package config

import "os"

// Environment overrides
const (
	EnvAddr      = "BADGECLOCK_ADDR"
	EnvReaderURL = "BADGECLOCK_READER_URL"
	EnvDBPath    = "BADGECLOCK_DB_PATH"
	EnvStore     = "BADGECLOCK_STORE"
	EnvTimezone  = "BADGECLOCK_TIMEZONE"
	EnvProjectID = "BADGECLOCK_FIRESTORE_PROJECT"
	// EnvCredentials follows the Google client libraries
	EnvCredentials = "GOOGLE_APPLICATION_CREDENTIALS"
)

// ApplyEnv overrides file settings with the environment
func (c *Config) ApplyEnv() {
	if v := os.Getenv(EnvAddr); v != "" {
		c.Server.Addr = v
	}
	if v, ok := os.LookupEnv(EnvReaderURL); ok {
		// set but empty disables the reader
		c.Reader.URL = v
	}
	if v := os.Getenv(EnvDBPath); v != "" {
		c.Database.Path = v
	}
	if v := os.Getenv(EnvStore); v != "" {
		c.Database.Driver = v
	}
	if v := os.Getenv(EnvTimezone); v != "" {
		c.Attendance.Timezone = v
	}
	if v := os.Getenv(EnvProjectID); v != "" {
		c.Firestore.ProjectID = v
	}
	if c.Firestore.CredentialsFile == "" {
		c.Firestore.CredentialsFile = os.Getenv(EnvCredentials)
	}
}
