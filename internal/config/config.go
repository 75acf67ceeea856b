// Package config handles the XDG configuration directory, its files, and
// the user settings stored in config.yaml.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	// AppName is the application directory name.
	AppName = "neolist"

	// OAuthClientFile is the OAuth client credentials filename.
	OAuthClientFile = "oauth_client.json"

	// TokenFile is the stored OAuth token filename.
	TokenFile = "token.json"

	// SessionFile holds the signed-in user's identity.
	SessionFile = "session.json"

	// SettingsFile is the user settings filename.
	SettingsFile = "config.yaml"

	// DefaultDatabase is the Firestore database used when none is configured.
	DefaultDatabase = "(default)"

	// DefaultPollInterval is how often the store watcher refreshes.
	DefaultPollInterval = 2 * time.Second

	// ProjectEnv overrides the configured Firestore project.
	ProjectEnv = "NEOLIST_PROJECT"
)

// Theme values.
const (
	ThemeLight = "light"
	ThemeDark  = "dark"
)

// Config holds configuration paths and settings.
type Config struct {
	// Dir is the configuration directory path.
	Dir string

	// Debug enables debug logging.
	Debug bool

	// Quiet suppresses informational output.
	Quiet bool

	// Settings are loaded from config.yaml.
	Settings Settings
}

// Settings is the content of config.yaml.
type Settings struct {
	// Project is the Firestore project ID. Empty means the store is not configured.
	Project string `yaml:"project,omitempty"`

	// Database is the Firestore database ID.
	Database string `yaml:"database,omitempty"`

	// PollInterval is a Go duration string, e.g. "2s".
	PollInterval string `yaml:"poll_interval,omitempty"`

	// Theme is the display preference, light or dark.
	Theme string `yaml:"theme,omitempty"`
}

// New creates a new Config with the default or specified config directory.
// If configDir is empty, uses XDG_CONFIG_HOME/neolist or $HOME/.config/neolist.
// Settings are read from config.yaml when present.
func New(configDir string) (*Config, error) {
	dir := configDir
	if dir == "" {
		dir = DefaultConfigDir()
	}
	cfg := &Config{Dir: dir}
	if err := cfg.Load(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// DefaultConfigDir returns the default configuration directory.
// Uses XDG_CONFIG_HOME if set, otherwise $HOME/.config.
func DefaultConfigDir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, AppName)
	}
	home, err := os.UserHomeDir()
	if err != nil {
		// Fallback to current directory if home can't be determined
		return AppName
	}
	return filepath.Join(home, ".config", AppName)
}

// OAuthClientPath returns the path to the OAuth client credentials file.
func (c *Config) OAuthClientPath() string {
	return filepath.Join(c.Dir, OAuthClientFile)
}

// TokenPath returns the path to the stored OAuth token file.
func (c *Config) TokenPath() string {
	return filepath.Join(c.Dir, TokenFile)
}

// SessionPath returns the path to the stored session file.
func (c *Config) SessionPath() string {
	return filepath.Join(c.Dir, SessionFile)
}

// SettingsPath returns the path to config.yaml.
func (c *Config) SettingsPath() string {
	return filepath.Join(c.Dir, SettingsFile)
}

// EnsureDir creates the config directory if it doesn't exist.
// Directory is created with mode 0700.
func (c *Config) EnsureDir() error {
	return os.MkdirAll(c.Dir, 0700)
}

// HasOAuthClient checks if the OAuth client credentials file exists.
func (c *Config) HasOAuthClient() bool {
	_, err := os.Stat(c.OAuthClientPath())
	return err == nil
}

// HasToken checks if the token file exists.
func (c *Config) HasToken() bool {
	_, err := os.Stat(c.TokenPath())
	return err == nil
}

// RemoveToken deletes the token and session files.
// Missing files are not an error.
func (c *Config) RemoveToken() error {
	for _, p := range []string{c.TokenPath(), c.SessionPath()} {
		if err := os.Remove(p); err != nil && !errors.Is(err, os.ErrNotExist) {
			return err
		}
	}
	return nil
}

// Load reads config.yaml into c.Settings. A missing file leaves defaults.
func (c *Config) Load() error {
	data, err := os.ReadFile(c.SettingsPath())
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("read %s: %w", SettingsFile, err)
	}
	var s Settings
	if err := yaml.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("invalid %s: %w", SettingsFile, err)
	}
	c.Settings = s
	return nil
}

// Save writes c.Settings to config.yaml with mode 0600.
func (c *Config) Save() error {
	if err := c.EnsureDir(); err != nil {
		return err
	}
	data, err := yaml.Marshal(c.Settings)
	if err != nil {
		return err
	}
	return os.WriteFile(c.SettingsPath(), data, 0600)
}

// Project returns the Firestore project, preferring the environment override.
func (c *Config) Project() string {
	if p := strings.TrimSpace(os.Getenv(ProjectEnv)); p != "" {
		return p
	}
	return strings.TrimSpace(c.Settings.Project)
}

// Database returns the Firestore database ID.
func (c *Config) Database() string {
	if c.Settings.Database == "" {
		return DefaultDatabase
	}
	return c.Settings.Database
}

// PollInterval returns the store watcher interval.
// Invalid or non-positive values fall back to DefaultPollInterval.
func (c *Config) PollInterval() time.Duration {
	if c.Settings.PollInterval == "" {
		return DefaultPollInterval
	}
	d, err := time.ParseDuration(c.Settings.PollInterval)
	if err != nil || d <= 0 {
		return DefaultPollInterval
	}
	return d
}

// Theme returns the display theme, light unless dark was chosen.
func (c *Config) Theme() string {
	if c.Settings.Theme == ThemeDark {
		return ThemeDark
	}
	return ThemeLight
}

// SetTheme validates and stores the theme preference.
func (c *Config) SetTheme(theme string) error {
	switch theme {
	case ThemeLight, ThemeDark:
		c.Settings.Theme = theme
		return nil
	default:
		return fmt.Errorf("invalid theme: %s", theme)
	}
}
