// Package config loads campustasks settings from defaults, an optional YAML
// file, a .env file and CAMPUS_* environment variables, in that order.
package config

import (
	"errors"
	"fmt"
	"net"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/sadopc/campustasks/internal/store"
)

type Config struct {
	Env      string `yaml:"env"`
	LogLevel string `yaml:"log_level"`
	// LogFile is where the TUI writes its log. Empty means the default
	// under the user config dir.
	LogFile  string `yaml:"log_file"`
	DBPath   string `yaml:"db_path"`
	SeedFile string `yaml:"seed_file"`

	API    APIConfig    `yaml:"api"`
	Server ServerConfig `yaml:"server"`
	UI     UIConfig     `yaml:"ui"`
}

type APIConfig struct {
	BaseURL         string        `yaml:"base_url"`
	Timeout         time.Duration `yaml:"timeout"`
	BreakerFailures uint32        `yaml:"breaker_failures"`
	BreakerCooldown time.Duration `yaml:"breaker_cooldown"`
}

type ServerConfig struct {
	Addr         string        `yaml:"addr"`
	ReadTimeout  time.Duration `yaml:"read_timeout"`
	WriteTimeout time.Duration `yaml:"write_timeout"`
}

type UIConfig struct {
	Debounce time.Duration `yaml:"debounce"`
	Theme    string        `yaml:"theme"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Env:      "production",
		LogLevel: "info",
		API: APIConfig{
			Timeout:         5 * time.Second,
			BreakerFailures: 3,
			BreakerCooldown: 30 * time.Second,
		},
		Server: ServerConfig{
			Addr:         "127.0.0.1:8080",
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 10 * time.Second,
		},
		UI: UIConfig{
			Debounce: 300 * time.Millisecond,
			Theme:    "dark",
		},
	}
}

// DefaultPath returns $XDG_CONFIG_HOME/campustasks/config.yaml or the
// platform equivalent.
func DefaultPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "campustasks", "config.yaml"), nil
}

// Load builds the configuration. An explicit path must exist; the default path
// is optional.
func Load(path string) (*Config, error) {
	cfg := Default()

	explicit := path != ""
	if !explicit {
		if p, err := DefaultPath(); err == nil {
			path = p
		}
	}
	if path != "" {
		if err := cfg.loadFile(path); err != nil {
			if explicit || !errors.Is(err, os.ErrNotExist) {
				return nil, err
			}
		}
	}

	// Load .env file if it exists (ignore error if not found)
	_ = godotenv.Load()
	cfg.applyEnv()

	if cfg.DBPath == "" {
		p, err := store.DefaultDBPath()
		if err != nil {
			return nil, fmt.Errorf("resolve db path: %w", err)
		}
		cfg.DBPath = p
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}
	return nil
}

func (c *Config) applyEnv() {
	c.Env = getEnv("CAMPUS_ENV", c.Env)
	c.LogLevel = getEnv("CAMPUS_LOG_LEVEL", c.LogLevel)
	c.LogFile = getEnv("CAMPUS_LOG_FILE", c.LogFile)
	c.DBPath = getEnv("CAMPUS_DB_PATH", c.DBPath)
	c.SeedFile = getEnv("CAMPUS_SEED_FILE", c.SeedFile)

	c.API.BaseURL = getEnv("CAMPUS_API_URL", c.API.BaseURL)
	c.API.Timeout = getDurationEnv("CAMPUS_API_TIMEOUT", c.API.Timeout)
	c.API.BreakerFailures = uint32(getIntEnv("CAMPUS_API_BREAKER_FAILURES", int(c.API.BreakerFailures)))
	c.API.BreakerCooldown = getDurationEnv("CAMPUS_API_BREAKER_COOLDOWN", c.API.BreakerCooldown)

	c.Server.Addr = getEnv("CAMPUS_SERVER_ADDR", c.Server.Addr)
	c.Server.ReadTimeout = getDurationEnv("CAMPUS_SERVER_READ_TIMEOUT", c.Server.ReadTimeout)
	c.Server.WriteTimeout = getDurationEnv("CAMPUS_SERVER_WRITE_TIMEOUT", c.Server.WriteTimeout)

	c.UI.Debounce = getDurationEnv("CAMPUS_UI_DEBOUNCE", c.UI.Debounce)
	c.UI.Theme = getEnv("CAMPUS_UI_THEME", c.UI.Theme)
}

var logLevels = []string{"debug", "info", "warn", "error"}

// Validate rejects values the rest of the program cannot work with.
func (c *Config) Validate() error {
	var errs []error
	if !contains(logLevels, strings.ToLower(c.LogLevel)) {
		errs = append(errs, fmt.Errorf("log_level must be one of %s", strings.Join(logLevels, ", ")))
	}
	if c.API.BaseURL != "" {
		u, err := url.Parse(c.API.BaseURL)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			errs = append(errs, fmt.Errorf("api.base_url %q is not an http(s) URL", c.API.BaseURL))
		}
	}
	if c.API.Timeout <= 0 {
		errs = append(errs, errors.New("api.timeout must be positive"))
	}
	if c.API.BreakerFailures == 0 {
		errs = append(errs, errors.New("api.breaker_failures must be at least 1"))
	}
	if c.API.BreakerCooldown <= 0 {
		errs = append(errs, errors.New("api.breaker_cooldown must be positive"))
	}
	if _, _, err := net.SplitHostPort(c.Server.Addr); err != nil {
		errs = append(errs, fmt.Errorf("server.addr: %w", err))
	}
	if c.UI.Debounce < 0 || c.UI.Debounce > 5*time.Second {
		errs = append(errs, errors.New("ui.debounce must be between 0 and 5s"))
	}
	if c.UI.Theme != "dark" && c.UI.Theme != "light" {
		errs = append(errs, fmt.Errorf("ui.theme must be dark or light, got %q", c.UI.Theme))
	}
	if len(errs) > 0 {
		return fmt.Errorf("invalid config: %w", errors.Join(errs...))
	}
	return nil
}

// IsDevelopment returns true if running in development mode.
func (c *Config) IsDevelopment() bool {
	return c.Env == "development"
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil && i >= 0 {
			return i
		}
	}
	return defaultValue
}

func getDurationEnv(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
