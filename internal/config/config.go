// Package config loads client configuration from YAML and the environment.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config is the root configuration for the Conecta client.
type Config struct {
	API     APIConfig     `yaml:"api"`
	Logging LoggingConfig `yaml:"logging"`
	Session SessionConfig `yaml:"session"`
	Cache   CacheConfig   `yaml:"cache"`
}

// APIConfig configures the remote REST endpoint.
type APIConfig struct {
	BaseURL string        `yaml:"base_url"`
	Timeout time.Duration `yaml:"timeout"`
}

// LoggingConfig configures log output.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	Output string `yaml:"output"`
}

// SessionConfig configures the persisted session store.
type SessionConfig struct {
	// TokenPath is the file the bearer token is persisted to.
	TokenPath string `yaml:"token_path"`
}

// CacheConfig configures the query cache store.
type CacheConfig struct {
	// TTL is the maximum age of a cache entry before it is treated as stale.
	TTL time.Duration `yaml:"ttl"`
	// RedisAddr enables the shared Redis-backed store when non-empty.
	RedisAddr     string `yaml:"redis_addr"`
	RedisPassword string `yaml:"redis_password"`
	RedisDB       int    `yaml:"redis_db"`
}

// Default returns the built-in configuration.
func Default() Config {
	home, _ := os.UserHomeDir()
	return Config{
		API: APIConfig{
			BaseURL: "http://localhost:5000/api",
			Timeout: 30 * time.Second,
		},
		Logging: LoggingConfig{Level: "info", Format: "console", Output: "stderr"},
		Session: SessionConfig{TokenPath: filepath.Join(home, ".conecta", "session.json")},
		Cache:   CacheConfig{TTL: 5 * time.Minute},
	}
}

// Load reads config from the given path, falling back to defaults when the
// file does not exist, then applies environment overrides. A .env file in the
// working directory is honoured when present.
func Load(path string) (Config, error) {
	_ = godotenv.Load()

	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			if !os.IsNotExist(err) {
				return cfg, fmt.Errorf("read config: %w", err)
			}
		} else if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("parse config: %w", err)
		}
	}

	applyEnv(&cfg)

	if cfg.API.BaseURL == "" {
		return cfg, fmt.Errorf("api.base_url is required")
	}
	if cfg.API.Timeout <= 0 {
		cfg.API.Timeout = 30 * time.Second
	}
	if cfg.Cache.TTL <= 0 {
		cfg.Cache.TTL = 5 * time.Minute
	}
	return cfg, nil
}

func applyEnv(cfg *Config) {
	if v := os.Getenv("CONECTA_API_URL"); v != "" {
		cfg.API.BaseURL = v
	}
	if v := os.Getenv("CONECTA_API_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.API.Timeout = d
		}
	}
	if v := os.Getenv("CONECTA_LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
	if v := os.Getenv("CONECTA_LOG_FORMAT"); v != "" {
		cfg.Logging.Format = v
	}
	if v := os.Getenv("CONECTA_SESSION_PATH"); v != "" {
		cfg.Session.TokenPath = v
	}
	if v := os.Getenv("CONECTA_CACHE_TTL"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.Cache.TTL = d
		}
	}
	if v := os.Getenv("CONECTA_REDIS_ADDR"); v != "" {
		cfg.Cache.RedisAddr = v
	}
	if v := os.Getenv("CONECTA_REDIS_PASSWORD"); v != "" {
		cfg.Cache.RedisPassword = v
	}
	if v := os.Getenv("CONECTA_REDIS_DB"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Cache.RedisDB = n
		}
	}
}
