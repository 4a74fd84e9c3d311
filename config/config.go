package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// HTTP server
const HTTP_LISTEN_ADDRESS = ":8080"

// Redis Config
const REDIS_DB_ADDRESS = "redis:6379"
const REDIS_DB_PASSWORD = ""
const REDIS_DB = 0

// Calendar backend
const CALENDAR_ENDPOINT_BASE_V1 = "http://calendar:8080/api"
const CALENDAR_NAMESPACE = "default"

// Open/closed sign is re-evaluated every minute, starting immediately.
const OPEN_CLOSED_SIGN_INTERVAL_MS = 60000

// Display
const DEFAULT_TIMEZONE = "Europe/Brussels"
const DEFAULT_LOG_LEVEL = "info"

// Resources file paths
const RESOURCES_PATH_PREFIX = "resources"
const OPENING_HOURS_EVENTS_RESOURCE = "opening_hours_events.json"

const ENV_PROD = "prod"

// Config is the application configuration. It is read from a YAML file and
// then overridden by OPENING_HOURS_* environment variables.
type Config struct {
	Env      string `yaml:"env" validate:"required"`
	Listen   string `yaml:"listen" validate:"required"`
	Timezone string `yaml:"timezone" validate:"required,timezone"`
	LogLevel string `yaml:"log_level" validate:"oneof=debug info warn error"`

	Redis    RedisConfig    `yaml:"redis"`
	Calendar CalendarConfig `yaml:"calendar"`

	// OpenClosedIntervalMs is the period of the open/closed sign evaluation.
	OpenClosedIntervalMs int `yaml:"open_closed_interval_ms" validate:"gt=0"`

	// Permissions lists the capabilities granted to callers of the HTTP API.
	Permissions []string `yaml:"permissions"`
}

type RedisConfig struct {
	Address  string `yaml:"address" validate:"required"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db" validate:"gte=0"`
}

type CalendarConfig struct {
	Endpoint  string `yaml:"endpoint" validate:"required,url"`
	Namespace string `yaml:"namespace"`
	// SeedFile optionally seeds the in-memory calendar used outside prod.
	SeedFile string `yaml:"seed_file"`
}

// DefaultConfig returns the configuration used when no file is present.
func DefaultConfig() *Config {
	return &Config{
		Env:      "dev",
		Listen:   HTTP_LISTEN_ADDRESS,
		Timezone: DEFAULT_TIMEZONE,
		LogLevel: DEFAULT_LOG_LEVEL,
		Redis: RedisConfig{
			Address:  REDIS_DB_ADDRESS,
			Password: REDIS_DB_PASSWORD,
			DB:       REDIS_DB,
		},
		Calendar: CalendarConfig{
			Endpoint:  CALENDAR_ENDPOINT_BASE_V1,
			Namespace: CALENDAR_NAMESPACE,
		},
		OpenClosedIntervalMs: OPEN_CLOSED_SIGN_INTERVAL_MS,
		Permissions:          []string{},
	}
}

// Normalize fills zero values left by partial config files.
func (c *Config) Normalize() {
	d := DefaultConfig()
	if c.Env == "" {
		c.Env = d.Env
	}
	if c.Listen == "" {
		c.Listen = d.Listen
	}
	if c.Timezone == "" {
		c.Timezone = d.Timezone
	}
	if c.LogLevel == "" {
		c.LogLevel = d.LogLevel
	}
	if c.Redis.Address == "" {
		c.Redis.Address = d.Redis.Address
	}
	if c.Calendar.Endpoint == "" {
		c.Calendar.Endpoint = d.Calendar.Endpoint
	}
	if c.Calendar.Namespace == "" {
		c.Calendar.Namespace = d.Calendar.Namespace
	}
	if c.OpenClosedIntervalMs <= 0 {
		c.OpenClosedIntervalMs = d.OpenClosedIntervalMs
	}
	if c.Permissions == nil {
		c.Permissions = []string{}
	}
}

// IsProd reports whether real backends (REST calendar, Redis) are used.
func (c *Config) IsProd() bool {
	return c.Env == ENV_PROD
}

// Validate checks the configuration after defaults and overrides are applied.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

// Load reads the YAML file at path, falling back to defaults when it does not
// exist, then applies a .env file (if any) and environment overrides.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case err == nil:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("failed to parse config %q: %w", path, err)
			}
		case errors.Is(err, fs.ErrNotExist):
			// defaults
		default:
			return nil, fmt.Errorf("failed to read config %q: %w", path, err)
		}
	}

	// A missing .env is fine; only variables already exported are used then.
	_ = godotenv.Load()
	if err := applyEnv(cfg); err != nil {
		return nil, err
	}

	cfg.Normalize()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func applyEnv(cfg *Config) error {
	if v := os.Getenv("OPENING_HOURS_ENV"); v != "" {
		cfg.Env = v
	}
	if v := os.Getenv("OPENING_HOURS_LISTEN"); v != "" {
		cfg.Listen = v
	}
	if v := os.Getenv("OPENING_HOURS_TIMEZONE"); v != "" {
		cfg.Timezone = v
	}
	if v := os.Getenv("OPENING_HOURS_LOG_LEVEL"); v != "" {
		cfg.LogLevel = v
	}
	if v := os.Getenv("OPENING_HOURS_REDIS_ADDRESS"); v != "" {
		cfg.Redis.Address = v
	}
	if v := os.Getenv("OPENING_HOURS_REDIS_PASSWORD"); v != "" {
		cfg.Redis.Password = v
	}
	if v := os.Getenv("OPENING_HOURS_REDIS_DB"); v != "" {
		db, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid OPENING_HOURS_REDIS_DB %q: %w", v, err)
		}
		cfg.Redis.DB = db
	}
	if v := os.Getenv("OPENING_HOURS_CALENDAR_ENDPOINT"); v != "" {
		cfg.Calendar.Endpoint = v
	}
	if v := os.Getenv("OPENING_HOURS_CALENDAR_NAMESPACE"); v != "" {
		cfg.Calendar.Namespace = v
	}
	if v := os.Getenv("OPENING_HOURS_CALENDAR_SEED_FILE"); v != "" {
		cfg.Calendar.SeedFile = v
	}
	if v := os.Getenv("OPENING_HOURS_PERMISSIONS"); v != "" {
		perms := []string{}
		for _, p := range strings.Split(v, ",") {
			if p = strings.TrimSpace(p); p != "" {
				perms = append(perms, p)
			}
		}
		cfg.Permissions = perms
	}
	return nil
}

// BaseDir returns the absolute path of the project root directory
func BaseDir() string {
	// Check if PROJECT_ROOT is set
	if root := os.Getenv("PROJECT_ROOT"); root != "" {
		return root
	}

	// Default to the current working directory
	wd, err := os.Getwd()
	if err != nil {
		panic("Unable to determine working directory: " + err.Error())
	}

	return wd
}

func GetResourcePath(resource_file string) string {
	return filepath.Join(BaseDir(), RESOURCES_PATH_PREFIX, resource_file)
}
