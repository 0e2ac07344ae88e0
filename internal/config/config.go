// Package config handles XDG configuration directory, file paths and
// the optional config.toml settings.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
)

const (
	// AppName is the application directory name.
	AppName = "todo"

	// SettingsFile is the optional TOML settings filename.
	SettingsFile = "config.toml"

	// CategoriesFile holds the persisted list ID to category label map.
	CategoriesFile = "categories.json"

	// TokenFile is the stored bearer token filename.
	TokenFile = "token.json"

	// DefaultBaseURL is the backend the development proxy forwarded /api to.
	DefaultBaseURL = "http://localhost:8081/api"

	// DefaultTimeout bounds every backend request.
	DefaultTimeout = 5 * time.Second

	// DefaultCreateCreator is sent as the creator of new todos.
	DefaultCreateCreator = "张三"

	// DefaultUpdateCreator is sent as the creator of fully replaced todos.
	DefaultUpdateCreator = "zyh"

	// BaseURLEnv overrides base_url from the settings file.
	BaseURLEnv = "TODO_BASE_URL"
)

// Config holds configuration paths and settings.
type Config struct {
	// Dir is the configuration directory path.
	Dir string

	// BaseURL is the REST backend root, including the /api prefix.
	BaseURL string

	// Timeout bounds each backend request.
	Timeout time.Duration

	// CreateCreator is the fixed creator sent when creating a todo.
	CreateCreator string

	// UpdateCreator is the fixed creator sent with a full replacement.
	UpdateCreator string

	// Debug enables debug logging.
	Debug bool

	// Quiet suppresses informational output.
	Quiet bool
}

// settings mirrors config.toml.
type settings struct {
	BaseURL       string `toml:"base_url"`
	Timeout       string `toml:"timeout"`
	CreateCreator string `toml:"create_creator"`
	UpdateCreator string `toml:"update_creator"`
}

// New creates a new Config with the default or specified config directory.
// If configDir is empty, uses XDG_CONFIG_HOME/todo or $HOME/.config/todo.
// Settings are read from config.toml when present, then TODO_BASE_URL.
func New(configDir string) (*Config, error) {
	dir := configDir
	if dir == "" {
		dir = DefaultConfigDir()
	}
	cfg := &Config{
		Dir:           dir,
		BaseURL:       DefaultBaseURL,
		Timeout:       DefaultTimeout,
		CreateCreator: DefaultCreateCreator,
		UpdateCreator: DefaultUpdateCreator,
	}
	if err := cfg.loadSettings(); err != nil {
		return nil, err
	}
	if env := strings.TrimSpace(os.Getenv(BaseURLEnv)); env != "" {
		cfg.BaseURL = env
	}
	return cfg, nil
}

func (c *Config) loadSettings() error {
	path := c.SettingsPath()
	var s settings
	if _, err := toml.DecodeFile(path, &s); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("invalid %s: %w", SettingsFile, err)
	}

	if s.BaseURL != "" {
		c.BaseURL = s.BaseURL
	}
	if s.Timeout != "" {
		d, err := time.ParseDuration(s.Timeout)
		if err != nil || d <= 0 {
			return fmt.Errorf("invalid %s: timeout %q", SettingsFile, s.Timeout)
		}
		c.Timeout = d
	}
	if s.CreateCreator != "" {
		c.CreateCreator = s.CreateCreator
	}
	if s.UpdateCreator != "" {
		c.UpdateCreator = s.UpdateCreator
	}
	return nil
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

// SettingsPath returns the path to config.toml.
func (c *Config) SettingsPath() string {
	return filepath.Join(c.Dir, SettingsFile)
}

// CategoriesPath returns the path to the persisted category map.
func (c *Config) CategoriesPath() string {
	return filepath.Join(c.Dir, CategoriesFile)
}

// TokenPath returns the path to the stored token file.
func (c *Config) TokenPath() string {
	return filepath.Join(c.Dir, TokenFile)
}

// EnsureDir creates the config directory if it doesn't exist.
// Directory is created with mode 0700.
func (c *Config) EnsureDir() error {
	return os.MkdirAll(c.Dir, 0700)
}

// HasToken checks if the token file exists.
func (c *Config) HasToken() bool {
	_, err := os.Stat(c.TokenPath())
	return err == nil
}

// RemoveToken deletes the token file.
func (c *Config) RemoveToken() error {
	return os.Remove(c.TokenPath())
}
