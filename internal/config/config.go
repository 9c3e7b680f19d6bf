// Package config loads settings from a YAML file with environment overrides.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

const (
	DriverSQLite   = "sqlite"
	DriverMemory   = "memory"
	DriverRedis    = "redis"
	DriverPostgres = "postgres"

	DefaultServerAddr = "127.0.0.1:8080"
	DefaultUser       = "default"
)

type Config struct {
	User     string         `yaml:"user"`
	Storage  StorageConfig  `yaml:"storage"`
	Server   ServerConfig   `yaml:"server"`
	Log      LogConfig      `yaml:"log"`
	Insights InsightsConfig `yaml:"insights"`
	Tips     TipsConfig     `yaml:"tips"`
}

type StorageConfig struct {
	Driver        string `yaml:"driver"`
	SQLitePath    string `yaml:"sqlite_path"`
	RedisAddr     string `yaml:"redis_addr"`
	RedisPassword string `yaml:"redis_password"`
	RedisDB       int    `yaml:"redis_db"`
	PostgresDSN   string `yaml:"postgres_dsn"`
}

type ServerConfig struct {
	Addr string `yaml:"addr"`
}

type LogConfig struct {
	Level string `yaml:"level"`
}

type InsightsConfig struct {
	Hemisphere string `yaml:"hemisphere"`
}

type TipsConfig struct {
	Seed *int64 `yaml:"seed,omitempty"`
}

// Default leaves User and Insights.Hemisphere empty so callers can fall back
// to values stored in the database.
func Default() Config {
	return Config{
		Storage: StorageConfig{Driver: DriverSQLite, RedisAddr: "127.0.0.1:6379"},
		Server:  ServerConfig{Addr: DefaultServerAddr},
		Log:     LogConfig{Level: "warn"},
	}
}

// Load reads path (when it exists), then applies MOODMATE_* environment
// overrides. A missing file is only an error when required is set.
func Load(path string, required bool) (Config, error) {
	cfg := Default()
	if strings.TrimSpace(path) != "" {
		raw, err := os.ReadFile(path)
		switch {
		case err == nil:
			if err := yaml.Unmarshal(raw, &cfg); err != nil {
				return cfg, fmt.Errorf("parse config %s: %w", path, err)
			}
		case errors.Is(err, os.ErrNotExist) && !required:
		default:
			return cfg, fmt.Errorf("read config %s: %w", path, err)
		}
	}
	applyEnv(&cfg)
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func applyEnv(cfg *Config) {
	cfg.User = getEnv("MOODMATE_USER", cfg.User)
	cfg.Storage.Driver = getEnv("MOODMATE_STORAGE_DRIVER", cfg.Storage.Driver)
	cfg.Storage.SQLitePath = getEnv("MOODMATE_SQLITE_PATH", cfg.Storage.SQLitePath)
	cfg.Storage.RedisAddr = getEnv("MOODMATE_REDIS_ADDR", cfg.Storage.RedisAddr)
	cfg.Storage.RedisPassword = getEnv("MOODMATE_REDIS_PASSWORD", cfg.Storage.RedisPassword)
	cfg.Storage.RedisDB = getEnvInt("MOODMATE_REDIS_DB", cfg.Storage.RedisDB)
	cfg.Storage.PostgresDSN = getEnv("MOODMATE_POSTGRES_DSN", cfg.Storage.PostgresDSN)
	cfg.Server.Addr = getEnv("MOODMATE_SERVER_ADDR", cfg.Server.Addr)
	cfg.Log.Level = getEnv("MOODMATE_LOG_LEVEL", cfg.Log.Level)
	cfg.Insights.Hemisphere = getEnv("MOODMATE_HEMISPHERE", cfg.Insights.Hemisphere)
	if val := os.Getenv("MOODMATE_TIP_SEED"); val != "" {
		if parsed, err := strconv.ParseInt(val, 10, 64); err == nil {
			cfg.Tips.Seed = &parsed
		}
	}
}

func (c Config) Validate() error {
	switch strings.ToLower(strings.TrimSpace(c.Storage.Driver)) {
	case DriverSQLite, DriverMemory:
	case DriverRedis:
		if strings.TrimSpace(c.Storage.RedisAddr) == "" {
			return fmt.Errorf("storage.redis_addr is required for the redis driver")
		}
	case DriverPostgres:
		if strings.TrimSpace(c.Storage.PostgresDSN) == "" {
			return fmt.Errorf("storage.postgres_dsn is required for the postgres driver")
		}
	default:
		return fmt.Errorf("unsupported storage.driver %q (use sqlite|memory|redis|postgres)", c.Storage.Driver)
	}
	if _, err := ParseLevel(c.Log.Level); err != nil {
		return err
	}
	return nil
}

func ParseLevel(value string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "debug":
		return slog.LevelDebug, nil
	case "", "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("invalid log.level %q (use debug|info|warn|error)", value)
	}
}

func getEnv(key, defaultVal string) string {
	if val := strings.TrimSpace(os.Getenv(key)); val != "" {
		return val
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	if val := os.Getenv(key); val != "" {
		if parsed, err := strconv.Atoi(val); err == nil {
			return parsed
		}
	}
	return defaultVal
}
