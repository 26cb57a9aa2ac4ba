package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/caarlos0/env/v10"
)

const (
	BackendFile     = "file"
	BackendMemory   = "memory"
	BackendRedis    = "redis"
	BackendPostgres = "postgres"
)

// Config centraliza la configuración del cliente y del servidor de desarrollo.
type Config struct {
	APIBaseURL  string        `env:"STOREFRONT_API_URL" envDefault:"https://technorizen-backend.onrender.com"`
	HTTPTimeout time.Duration `env:"HTTP_TIMEOUT" envDefault:"0s"`
	LogLevel    string        `env:"LOG_LEVEL" envDefault:"warn"`

	SessionBackend     string `env:"SESSION_BACKEND" envDefault:"file"`
	SessionDir         string `env:"SESSION_DIR"`
	SessionExpiryCheck bool   `env:"SESSION_EXPIRY_CHECK" envDefault:"false"`

	RedisAddr     string `env:"REDIS_ADDR"`
	RedisPassword string `env:"REDIS_PASSWORD"`
	RedisDB       int    `env:"REDIS_DB" envDefault:"0"`
	RedisPrefix   string `env:"REDIS_PREFIX" envDefault:"storefront:"`

	DatabaseURL      string `env:"DATABASE_URL"`
	StorageNamespace string `env:"STORAGE_NAMESPACE" envDefault:"default"`

	DevAPIPort      string `env:"DEVAPI_PORT" envDefault:"8080"`
	DevAPIJWTSecret string `env:"DEVAPI_JWT_SECRET"`
}

// LoadConfig carga la configuración desde variables de entorno.
func LoadConfig() (*Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, err
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	if cfg.SessionDir == "" && cfg.SessionBackend == BackendFile {
		dir, err := os.UserConfigDir()
		if err != nil {
			return nil, fmt.Errorf("resolve session dir: %w", err)
		}
		cfg.SessionDir = filepath.Join(dir, "storefront")
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	switch c.SessionBackend {
	case BackendFile, BackendMemory:
	case BackendRedis:
		if c.RedisAddr == "" {
			return fmt.Errorf("REDIS_ADDR is required for session backend %q", c.SessionBackend)
		}
	case BackendPostgres:
		if c.DatabaseURL == "" {
			return fmt.Errorf("DATABASE_URL is required for session backend %q", c.SessionBackend)
		}
	default:
		return fmt.Errorf("unknown session backend %q", c.SessionBackend)
	}
	if c.HTTPTimeout < 0 {
		return fmt.Errorf("HTTP_TIMEOUT must not be negative")
	}
	return nil
}
