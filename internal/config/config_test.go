package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func isolate(t *testing.T) {
	t.Helper()
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("HOME", t.TempDir())
	t.Chdir(t.TempDir())
}

func TestDefaultIsValid(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, 5*time.Second, cfg.API.Timeout)
	assert.Equal(t, uint32(3), cfg.API.BreakerFailures)
	assert.Equal(t, "127.0.0.1:8080", cfg.Server.Addr)
	assert.Equal(t, 300*time.Millisecond, cfg.UI.Debounce)
	assert.Equal(t, "dark", cfg.UI.Theme)
}

func TestLoadWithoutFile(t *testing.T) {
	isolate(t)
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.NotEmpty(t, cfg.DBPath)
}

func TestLoadExplicitMissingFile(t *testing.T) {
	isolate(t)
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestLoadYAML(t *testing.T) {
	isolate(t)
	path := writeConfig(t, `
log_level: debug
db_path: /tmp/x.db
api:
  base_url: http://localhost:8000
  timeout: 2s
ui:
  debounce: 150ms
  theme: light
`)
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "/tmp/x.db", cfg.DBPath)
	assert.Equal(t, "http://localhost:8000", cfg.API.BaseURL)
	assert.Equal(t, 2*time.Second, cfg.API.Timeout)
	assert.Equal(t, 150*time.Millisecond, cfg.UI.Debounce)
	assert.Equal(t, "light", cfg.UI.Theme)
	// Untouched keys keep their defaults.
	assert.Equal(t, 30*time.Second, cfg.API.BreakerCooldown)
}

func TestEnvOverridesFile(t *testing.T) {
	isolate(t)
	path := writeConfig(t, "ui:\n  theme: light\n")
	t.Setenv("CAMPUS_UI_THEME", "dark")
	t.Setenv("CAMPUS_API_URL", "https://tasks.example.edu")
	t.Setenv("CAMPUS_API_BREAKER_FAILURES", "7")
	t.Setenv("CAMPUS_UI_DEBOUNCE", "not-a-duration")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "dark", cfg.UI.Theme)
	assert.Equal(t, "https://tasks.example.edu", cfg.API.BaseURL)
	assert.Equal(t, uint32(7), cfg.API.BreakerFailures)
	assert.Equal(t, 300*time.Millisecond, cfg.UI.Debounce, "bad env values are ignored")
}

func TestDotEnv(t *testing.T) {
	isolate(t)
	require.NoError(t, os.WriteFile(".env", []byte("CAMPUS_SERVER_ADDR=0.0.0.0:9090\n"), 0o644))
	t.Cleanup(func() { os.Unsetenv("CAMPUS_SERVER_ADDR") })

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "0.0.0.0:9090", cfg.Server.Addr)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"log level", func(c *Config) { c.LogLevel = "loud" }},
		{"base url", func(c *Config) { c.API.BaseURL = "ftp://x" }},
		{"timeout", func(c *Config) { c.API.Timeout = 0 }},
		{"breaker", func(c *Config) { c.API.BreakerFailures = 0 }},
		{"addr", func(c *Config) { c.Server.Addr = "8080" }},
		{"debounce", func(c *Config) { c.UI.Debounce = time.Minute }},
		{"theme", func(c *Config) { c.UI.Theme = "neon" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestLoadRejectsInvalidYAML(t *testing.T) {
	isolate(t)
	path := writeConfig(t, "ui: [unclosed")
	_, err := Load(path)
	assert.Error(t, err)
}
