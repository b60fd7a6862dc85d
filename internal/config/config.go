// Package config loads fieldbridge settings from an optional YAML file, an
// optional .env file and FIELDBRIDGE_* environment variables, in that order.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/alexanderramin/fieldbridge/internal/domain"
)

// EnvPrefix prefixes every environment override.
const EnvPrefix = "FIELDBRIDGE_"

type BreakerConfig struct {
	Failures     int `yaml:"failures"`
	OpenTimeoutS int `yaml:"open_timeout_s"`
}

type Config struct {
	// BaseURL selects the office API. Empty means the local store at DBPath.
	BaseURL          string `yaml:"base_url"`
	DBPath           string `yaml:"db_path"`
	LogFile          string `yaml:"log_file"`
	LogLevel         string `yaml:"log_level"`
	RequestTimeoutMs int    `yaml:"request_timeout_ms"`
	MaxRetries       int    `yaml:"max_retries"`
	PollIntervalS    int    `yaml:"poll_interval_s"`
	ReminderEveryS   int    `yaml:"reminder_interval_s"`
	ListenAddr       string `yaml:"listen_addr"`

	UserID   string `yaml:"user_id"`
	UserName string `yaml:"user_name"`
	UserRole string `yaml:"user_role"`

	Breaker BreakerConfig `yaml:"breaker"`
}

// DefaultConfig returns a Config that runs against the local store.
func DefaultConfig() Config {
	return Config{
		DBPath:           defaultDBPath(),
		LogLevel:         "info",
		RequestTimeoutMs: 10000,
		MaxRetries:       2,
		PollIntervalS:    60,
		ReminderEveryS:   300,
		ListenAddr:       "127.0.0.1:8080",
		UserRole:         string(domain.RoleFieldWorker),
		Breaker: BreakerConfig{
			Failures:     4,
			OpenTimeoutS: 10,
		},
	}
}

func defaultDBPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "fieldbridge.db"
	}
	return filepath.Join(home, ".fieldbridge", "fieldbridge.db")
}

// LoadConfig builds the effective configuration. path may be empty; a named
// file that does not exist is an error. A .env file in the working directory
// is loaded when present and never overrides variables already set.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()

	if path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return cfg, fmt.Errorf("reading config %s: %w", path, err)
		}
		if err := yaml.Unmarshal(raw, &cfg); err != nil {
			return cfg, fmt.Errorf("parsing config %s: %w", path, err)
		}
	}

	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return cfg, fmt.Errorf("loading .env: %w", err)
	}
	applyEnv(&cfg)

	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func applyEnv(cfg *Config) {
	setString(&cfg.BaseURL, "BASE_URL")
	setString(&cfg.DBPath, "DB_PATH")
	setString(&cfg.LogFile, "LOG_FILE")
	setString(&cfg.LogLevel, "LOG_LEVEL")
	setString(&cfg.ListenAddr, "LISTEN_ADDR")
	setString(&cfg.UserID, "USER_ID")
	setString(&cfg.UserName, "USER_NAME")
	setString(&cfg.UserRole, "USER_ROLE")
	setInt(&cfg.RequestTimeoutMs, "REQUEST_TIMEOUT_MS")
	setInt(&cfg.MaxRetries, "MAX_RETRIES")
	setInt(&cfg.PollIntervalS, "POLL_INTERVAL_S")
	setInt(&cfg.ReminderEveryS, "REMINDER_INTERVAL_S")
	setInt(&cfg.Breaker.Failures, "BREAKER_FAILURES")
	setInt(&cfg.Breaker.OpenTimeoutS, "BREAKER_OPEN_TIMEOUT_S")
}

func setString(dst *string, name string) {
	if v, ok := os.LookupEnv(EnvPrefix + name); ok {
		*dst = strings.TrimSpace(v)
	}
}

// setInt ignores values that do not parse, like the LLM settings loader.
func setInt(dst *int, name string) {
	v := os.Getenv(EnvPrefix + name)
	if v == "" {
		return
	}
	if n, err := strconv.Atoi(v); err == nil {
		*dst = n
	}
}

// Validate rejects settings no component can run with.
func (c Config) Validate() error {
	if c.BaseURL == "" && c.DBPath == "" {
		return errors.New("config: one of base_url or db_path is required")
	}
	if c.BaseURL != "" && !strings.HasPrefix(c.BaseURL, "http://") && !strings.HasPrefix(c.BaseURL, "https://") {
		return fmt.Errorf("config: base_url %q must be an http or https URL", c.BaseURL)
	}
	if c.RequestTimeoutMs <= 0 {
		return errors.New("config: request_timeout_ms must be positive")
	}
	if c.MaxRetries < 0 {
		return errors.New("config: max_retries cannot be negative")
	}
	if c.PollIntervalS <= 0 || c.ReminderEveryS <= 0 {
		return errors.New("config: poll and reminder intervals must be positive")
	}
	switch strings.ToLower(c.LogLevel) {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("config: unknown log_level %q", c.LogLevel)
	}
	return nil
}

// Remote reports whether the office API is reached over HTTP.
func (c Config) Remote() bool { return c.BaseURL != "" }

func (c Config) RequestTimeout() time.Duration {
	return time.Duration(c.RequestTimeoutMs) * time.Millisecond
}

func (c Config) PollInterval() time.Duration {
	return time.Duration(c.PollIntervalS) * time.Second
}

func (c Config) ReminderInterval() time.Duration {
	return time.Duration(c.ReminderEveryS) * time.Second
}

func (c Config) BreakerOpenTimeout() time.Duration {
	return time.Duration(c.Breaker.OpenTimeoutS) * time.Second
}

// Actor is the identity sent with every office API call.
func (c Config) Actor() domain.Actor {
	return domain.Actor{UserID: c.UserID, Name: c.UserName, Role: domain.Role(c.UserRole)}
}
