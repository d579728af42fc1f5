// Package config handles loading and managing the application configuration.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// Config is the on-disk configuration. Every field has a usable default so
// a missing config file is not an error.
type Config struct {
	OAuth     OAuthConfig     `toml:"oauth"`
	Graph     GraphConfig     `toml:"graph"`
	Reminders RemindersConfig `toml:"reminders"`
	Scan      ScanConfig      `toml:"scan"`

	// HomeDir is the resolved application home (not from the file).
	HomeDir string `toml:"-"`
}

// OAuthConfig holds the OAuth client credentials for both providers.
type OAuthConfig struct {
	GoogleClientID     string `toml:"google_client_id"`
	GoogleClientSecret string `toml:"google_client_secret"`
	MicrosoftClientID  string `toml:"microsoft_client_id"`
	MicrosoftTenant    string `toml:"microsoft_tenant"` // default: "common"
}

// GraphConfig holds Microsoft Graph endpoint configuration.
type GraphConfig struct {
	BaseURL string `toml:"base_url"` // default: https://graph.microsoft.com/v1.0
}

// RemindersConfig holds the reminder backend endpoint.
type RemindersConfig struct {
	BaseURL string `toml:"base_url"`
}

// ScanConfig bounds pagination scans.
type ScanConfig struct {
	// Ceiling is the hard cap on items paginated through in one call,
	// independent of any caller-requested result limit.
	Ceiling int `toml:"ceiling"`
}

const (
	defaultGraphBaseURL     = "https://graph.microsoft.com/v1.0"
	defaultRemindersBaseURL = "https://reminders.superhuman.com/v1"
	defaultScanCeiling      = 1000
	defaultMicrosoftTenant  = "common"
)

// DefaultHome returns the application home directory. Respects the
// SUPERHUMAN_CLI_HOME environment variable.
func DefaultHome() string {
	if h := os.Getenv("SUPERHUMAN_CLI_HOME"); h != "" {
		return h
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ".superhuman-cli"
	}
	return filepath.Join(home, ".superhuman-cli")
}

// Load reads the configuration from the specified file. If path is empty,
// the default location (<home>/config.toml) is used. A missing file yields
// the defaults.
func Load(path string) (*Config, error) {
	homeDir := DefaultHome()
	if path == "" {
		path = filepath.Join(homeDir, "config.toml")
	}

	cfg := &Config{
		HomeDir: homeDir,
		OAuth: OAuthConfig{
			MicrosoftTenant: defaultMicrosoftTenant,
		},
		Graph: GraphConfig{
			BaseURL: defaultGraphBaseURL,
		},
		Reminders: RemindersConfig{
			BaseURL: defaultRemindersBaseURL,
		},
		Scan: ScanConfig{
			Ceiling: defaultScanCeiling,
		},
	}

	if _, err := os.Stat(path); os.IsNotExist(err) {
		return cfg, nil
	}

	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
	}

	if cfg.Graph.BaseURL == "" {
		cfg.Graph.BaseURL = defaultGraphBaseURL
	}
	if cfg.Reminders.BaseURL == "" {
		cfg.Reminders.BaseURL = defaultRemindersBaseURL
	}
	if cfg.Scan.Ceiling <= 0 {
		cfg.Scan.Ceiling = defaultScanCeiling
	}
	if cfg.OAuth.MicrosoftTenant == "" {
		cfg.OAuth.MicrosoftTenant = defaultMicrosoftTenant
	}

	return cfg, nil
}

// CachePath returns the credential cache file location.
func (c *Config) CachePath() string {
	return filepath.Join(c.HomeDir, "accounts.json")
}
