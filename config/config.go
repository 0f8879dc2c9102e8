// Package config loads contactsapp settings from an optional YAML file and
// the environment. Environment variables override the file.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/spachava753/contactsapp/permission"
)

const (
	envAddressBookDir  = "CONTACTSAPP_ADDRESSBOOK_DIR"
	envRationaleAction = "CONTACTSAPP_RATIONALE_ACTION"
	envLogLevel        = "CONTACTSAPP_LOG_LEVEL"
	envLoadTimeout     = "CONTACTSAPP_LOAD_TIMEOUT"
)

// Config is the resolved application configuration.
type Config struct {
	// AddressBookDir overrides the AddressBook location. Empty means the
	// current user's default directory.
	AddressBookDir string `yaml:"addressbook_dir"`
	// RationaleAction is "settings" or "request".
	RationaleAction permission.RationaleAction `yaml:"rationale_action"`
	// LogLevel is one of debug, info, warn, error.
	LogLevel string `yaml:"log_level"`
	// LoadTimeout bounds one contact load. Zero disables the limit.
	LoadTimeout Duration `yaml:"load_timeout"`
}

// Duration is a time.Duration that unmarshals from strings like "30s".
type Duration time.Duration

// UnmarshalYAML parses a Go duration string.
func (d *Duration) UnmarshalYAML(node *yaml.Node) error {
	var raw string
	if err := node.Decode(&raw); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(strings.TrimSpace(raw))
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", raw, err)
	}
	*d = Duration(parsed)
	return nil
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		RationaleAction: permission.RationaleOpenSettings,
		LogLevel:        "info",
		LoadTimeout:     Duration(30 * time.Second),
	}
}

// Load reads path (if non-empty) over the defaults, applies environment
// overrides, and validates the result. A missing file is an error only
// when path was given explicitly.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("config: reading %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("config: parsing %s: %w", path, err)
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() error {
	if v := strings.TrimSpace(os.Getenv(envAddressBookDir)); v != "" {
		c.AddressBookDir = v
	}
	if v := strings.TrimSpace(os.Getenv(envRationaleAction)); v != "" {
		c.RationaleAction = permission.RationaleAction(v)
	}
	if v := strings.TrimSpace(os.Getenv(envLogLevel)); v != "" {
		c.LogLevel = v
	}
	if v := strings.TrimSpace(os.Getenv(envLoadTimeout)); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("config: %s: %w", envLoadTimeout, err)
		}
		c.LoadTimeout = Duration(d)
	}
	return nil
}

// Validate checks field values.
func (c Config) Validate() error {
	var errs []error
	switch c.RationaleAction {
	case permission.RationaleOpenSettings, permission.RationaleRequest:
	default:
		errs = append(errs, fmt.Errorf("rationale_action must be %q or %q, got %q",
			permission.RationaleOpenSettings, permission.RationaleRequest, c.RationaleAction))
	}
	if _, err := ParseLevel(c.LogLevel); err != nil {
		errs = append(errs, err)
	}
	if c.LoadTimeout < 0 {
		errs = append(errs, fmt.Errorf("load_timeout must not be negative"))
	}
	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	return nil
}

// ParseLevel converts a level name to a slog level.
func ParseLevel(name string) (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.TrimSpace(name))); err != nil {
		return 0, fmt.Errorf("log_level %q: %w", name, err)
	}
	return level, nil
}
