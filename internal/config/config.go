// Package config loads and saves the application configuration.
//
// Configuration is a YAML file plus environment overrides for SMTP
// credentials, so secrets can live in the environment (or a .env file)
// rather than on disk next to the calendar data.
package config

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"

	"gopkg.in/yaml.v3"
)

// SMTPConfig holds mail relay settings. All fields can be overridden from
// the environment (SMTP_HOST, SMTP_PORT, SMTP_USER, SMTP_PASS, FROM_EMAIL).
type SMTPConfig struct {
	Host     string `yaml:"host" json:"host"`
	Port     int    `yaml:"port" json:"port"`
	Username string `yaml:"username" json:"username"`
	Password string `yaml:"password" json:"-"`
	From     string `yaml:"from" json:"from"`
}

// BasicAuthConfig holds HTTP Basic Auth credentials for the API.
type BasicAuthConfig struct {
	Username string `yaml:"username" json:"username"`
	Password string `yaml:"password" json:"-"`
}

// Config is the top-level application configuration.
type Config struct {
	// Listen is the HTTP listen address for the API.
	Listen string `yaml:"listen" json:"listen"`

	// Timezone is the IANA timezone used to format event times in
	// reminder mail (e.g. "America/New_York").
	Timezone string `yaml:"timezone" json:"timezone"`

	// DBPath is the SQLite database location.
	DBPath string `yaml:"db_path" json:"db_path"`

	// Schedule is the cron expression driving periodic reminder runs.
	Schedule string `yaml:"schedule" json:"schedule"`

	// ToleranceMinutes is the half-width of the reminder window around
	// each target instant. Keep it wider than the scheduler interval.
	ToleranceMinutes int `yaml:"tolerance_minutes" json:"tolerance_minutes"`

	// SendTimeoutSeconds bounds each individual mail dispatch.
	SendTimeoutSeconds int `yaml:"send_timeout_seconds" json:"send_timeout_seconds"`

	// SMTP configures the outbound mail relay.
	SMTP SMTPConfig `yaml:"smtp" json:"smtp"`

	// BasicAuth, if non-nil, enables HTTP Basic Authentication on all
	// endpoints except /health.
	BasicAuth *BasicAuthConfig `yaml:"basic_auth,omitempty" json:"basic_auth,omitempty"`
}

// DefaultConfig returns an in-memory default configuration.
func DefaultConfig() *Config {
	return &Config{
		Listen:             "127.0.0.1:8080",
		Timezone:           "America/New_York",
		DBPath:             "socialcal.db",
		Schedule:           "*/15 * * * *",
		ToleranceMinutes:   30,
		SendTimeoutSeconds: 30,
		SMTP: SMTPConfig{
			Port: 587,
		},
	}
}

// Normalize fills in missing/zero values with sensible defaults so that
// partially-filled configs still behave correctly.
func (c *Config) Normalize() {
	if c.Listen == "" {
		c.Listen = "127.0.0.1:8080"
	}
	if c.Timezone == "" {
		c.Timezone = "America/New_York"
	}
	if c.DBPath == "" {
		c.DBPath = "socialcal.db"
	}
	if c.Schedule == "" {
		c.Schedule = "*/15 * * * *"
	}
	if c.ToleranceMinutes <= 0 {
		c.ToleranceMinutes = 30
	}
	if c.SendTimeoutSeconds <= 0 {
		c.SendTimeoutSeconds = 30
	}
	if c.SMTP.Port <= 0 {
		c.SMTP.Port = 587
	}
}

// ApplyEnv overlays SMTP settings from the environment using the variable
// names the deployment has always used. Call after Load (and after
// godotenv.Load in main) so the environment wins over the file.
func (c *Config) ApplyEnv() {
	if v := os.Getenv("SMTP_HOST"); v != "" {
		c.SMTP.Host = v
	}
	if v := os.Getenv("SMTP_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			c.SMTP.Port = port
		}
	}
	if v := os.Getenv("SMTP_USER"); v != "" {
		c.SMTP.Username = v
	}
	if v := os.Getenv("SMTP_PASS"); v != "" {
		c.SMTP.Password = v
	}
	if v := os.Getenv("FROM_EMAIL"); v != "" {
		c.SMTP.From = v
	}
}

// Load loads configuration from the given YAML path.
//
// Behavior:
//   - If the file does not exist:
//   - create parent directory if needed
//   - write a default config with 0600 perms
//   - return the default config
//   - If the file exists:
//   - read YAML and unmarshal into Config
//   - normalize defaults
func Load(path string) (*Config, error) {
	if path == "" {
		return nil, errors.New("config path is empty")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			// First run: create default config file.
			cfg := DefaultConfig()
			if err := Save(path, cfg); err != nil {
				return cfg, err
			}
			return cfg, nil
		}
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	cfg.Normalize()

	return &cfg, nil
}

// Save writes the given configuration to the specified path.
//
// Implementation details:
//   - Ensures parent directory exists (0700).
//   - Marshals cfg to YAML.
//   - Writes atomically via a temp file + rename.
//   - Ensures final file permissions are 0600.
func Save(path string, cfg *Config) error {
	if path == "" {
		return errors.New("config path is empty")
	}
	if cfg == nil {
		return errors.New("config is nil")
	}

	cfg.Normalize()

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return err
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}

	// Atomic write: write to temp file in same directory then rename.
	tmp, err := os.CreateTemp(dir, ".socialcal-config-*.tmp")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()

	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}

	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}

	if err := os.Chmod(tmpName, 0o600); err != nil {
		return err
	}

	if err := os.Rename(tmpName, path); err != nil {
		return err
	}

	return nil
}
