package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"
)

const (
	FileName  = "studytrack.yaml"
	EnvPrefix = "STUDYTRACK_"
)

type RedisConfig struct {
	Addr     string `yaml:"addr" env:"ADDR"`
	Username string `yaml:"username" env:"USERNAME"`
	Password string `yaml:"password" env:"PASSWORD"`
	DB       int    `yaml:"db" env:"DB"`
	Prefix   string `yaml:"prefix" env:"PREFIX"`
}

type Config struct {
	Env          string        `yaml:"env" env:"ENV"`
	DataDir      string        `yaml:"-"`
	DBDriver     string        `yaml:"db_driver" env:"DB_DRIVER"`
	DBDSN        string        `yaml:"db_dsn" env:"DB_DSN"`
	CacheBackend string        `yaml:"cache_backend" env:"CACHE_BACKEND"`
	Redis        RedisConfig   `yaml:"redis" envPrefix:"REDIS_"`
	PollInterval time.Duration `yaml:"poll_interval" env:"POLL_INTERVAL"`
	PollJitter   time.Duration `yaml:"poll_jitter" env:"POLL_JITTER"`
	HistoryDays  int           `yaml:"history_days" env:"HISTORY_DAYS"`
	Timezone     string        `yaml:"timezone" env:"TIMEZONE"`
	LogLevel     string        `yaml:"log_level" env:"LOG_LEVEL"`
	HTTPAddr     string        `yaml:"http_addr" env:"HTTP_ADDR"`
}

// New returns the defaults rooted at dataDir.
func New(dataDir string) (Config, error) {
	if dataDir == "" {
		return Config{}, fmt.Errorf("data dir is required")
	}
	return Config{
		Env:          "production",
		DataDir:      dataDir,
		DBDriver:     "sqlite",
		DBDSN:        filepath.Join(dataDir, "studytrack.db"),
		CacheBackend: "file",
		Redis:        RedisConfig{Addr: "127.0.0.1:6379", Prefix: "studytrack:"},
		PollInterval: 5 * time.Second,
		PollJitter:   time.Second,
		HistoryDays:  90,
		Timezone:     "Local",
		LogLevel:     "info",
		HTTPAddr:     "127.0.0.1:8080",
	}, nil
}

// Load layers the optional config file and STUDYTRACK_* variables over the
// defaults. A nil environ reads the process environment.
func Load(dataDir string, environ map[string]string) (Config, error) {
	cfg, err := New(dataDir)
	if err != nil {
		return Config{}, err
	}
	raw, err := os.ReadFile(filepath.Join(dataDir, FileName))
	switch {
	case err == nil:
		if err := yaml.Unmarshal(raw, &cfg); err != nil {
			return Config{}, fmt.Errorf("decode %s: %w", FileName, err)
		}
	case errors.Is(err, os.ErrNotExist):
	default:
		return Config{}, fmt.Errorf("read %s: %w", FileName, err)
	}

	opts := env.Options{Prefix: EnvPrefix}
	if environ != nil {
		opts.Environment = environ
	}
	if err := env.ParseWithOptions(&cfg, opts); err != nil {
		return Config{}, fmt.Errorf("environment variables are invalid: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	switch c.DBDriver {
	case "sqlite", "mysql", "postgres", "none":
	default:
		return fmt.Errorf("db_driver must be sqlite|mysql|postgres|none, got %q", c.DBDriver)
	}
	if c.DBDriver != "none" && strings.TrimSpace(c.DBDSN) == "" {
		return fmt.Errorf("db_dsn is required for driver %s", c.DBDriver)
	}
	switch c.CacheBackend {
	case "file", "memory":
	case "redis":
		if c.Redis.Addr == "" {
			return fmt.Errorf("redis.addr is required when cache_backend=redis")
		}
	default:
		return fmt.Errorf("cache_backend must be file|memory|redis, got %q", c.CacheBackend)
	}
	if c.PollInterval <= 0 {
		return fmt.Errorf("poll_interval must be positive, got %s", c.PollInterval)
	}
	if c.PollJitter < 0 {
		return fmt.Errorf("poll_jitter must not be negative, got %s", c.PollJitter)
	}
	if c.HistoryDays <= 0 {
		return fmt.Errorf("history_days must be positive, got %d", c.HistoryDays)
	}
	if _, err := time.LoadLocation(c.Timezone); err != nil {
		return fmt.Errorf("timezone is invalid: %w", err)
	}
	return nil
}

// Location resolves Timezone; Validate has already rejected unknown names.
func (c Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.Local
	}
	return loc
}

func (c Config) IsDevelopment() bool {
	return c.Env == "development"
}
