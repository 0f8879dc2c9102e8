package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/nalgeon/be"

	"github.com/spachava753/contactsapp/permission"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "contactsapp.yaml")
	be.Err(t, os.WriteFile(path, []byte(body), 0o600), nil)
	return path
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	be.Err(t, err, nil)
	be.Equal(t, cfg, Default())
	be.Equal(t, cfg.RationaleAction, permission.RationaleOpenSettings)
}

func TestLoadFile(t *testing.T) {
	path := writeConfig(t, `
addressbook_dir: /tmp/ab
rationale_action: request
log_level: debug
load_timeout: 5s
`)
	cfg, err := Load(path)
	be.Err(t, err, nil)
	be.Equal(t, cfg.AddressBookDir, "/tmp/ab")
	be.Equal(t, cfg.RationaleAction, permission.RationaleRequest)
	be.Equal(t, cfg.LogLevel, "debug")
	be.Equal(t, time.Duration(cfg.LoadTimeout), 5*time.Second)
}

func TestEnvOverridesFile(t *testing.T) {
	path := writeConfig(t, "log_level: debug\nload_timeout: 5s\n")
	t.Setenv(envLogLevel, "warn")
	t.Setenv(envLoadTimeout, "1m")
	t.Setenv(envAddressBookDir, "/data/ab")

	cfg, err := Load(path)
	be.Err(t, err, nil)
	be.Equal(t, cfg.LogLevel, "warn")
	be.Equal(t, time.Duration(cfg.LoadTimeout), time.Minute)
	be.Equal(t, cfg.AddressBookDir, "/data/ab")
}

func TestLoadErrors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	be.Err(t, err, "reading")

	_, err = Load(writeConfig(t, "load_timeout: soon\n"))
	be.Err(t, err, "invalid duration")

	_, err = Load(writeConfig(t, "rationale_action: beg\n"))
	be.Err(t, err, "rationale_action")

	_, err = Load(writeConfig(t, "log_level: chatty\n"))
	be.Err(t, err, "log_level")

	t.Setenv(envLoadTimeout, "forever")
	_, err = Load("")
	be.Err(t, err, envLoadTimeout)
}

func TestParseLevel(t *testing.T) {
	level, err := ParseLevel("DEBUG")
	be.Err(t, err, nil)
	be.Equal(t, level, slog.LevelDebug)

	_, err = ParseLevel("loud")
	be.True(t, err != nil)
}
