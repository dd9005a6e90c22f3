package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// Environments understood by the server.
const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

// ServerConfig holds the HTTP service settings, read from the environment.
type ServerConfig struct {
	Env            string        `env:"TYPELINE_ENV" envDefault:"development" validate:"oneof=development production"`
	HTTPAddr       string        `env:"TYPELINE_HTTP_ADDR" envDefault:"localhost:8080" validate:"required"`
	UpstreamURL    string        `env:"TYPELINE_UPSTREAM_URL" validate:"omitempty,url"`
	UpstreamToken  string        `env:"TYPELINE_UPSTREAM_TOKEN"`
	DatabaseURL    string        `env:"TYPELINE_DATABASE_URL"`
	CookieDomain   string        `env:"TYPELINE_COOKIE_DOMAIN" validate:"required_if=Env production"`
	AllowedOrigins []string      `env:"TYPELINE_ALLOWED_ORIGINS" envSeparator:"," validate:"dive,url"`
	RequestTimeout time.Duration `env:"TYPELINE_REQUEST_TIMEOUT" envDefault:"10s" validate:"min=0"`
	CacheSize      int           `env:"TYPELINE_CACHE_SIZE" envDefault:"128" validate:"min=1"`
	DBMaxOpenConns int           `env:"TYPELINE_DB_MAX_OPEN_CONNS" envDefault:"10" validate:"min=1,max=1000"`
	DBMaxIdleConns int           `env:"TYPELINE_DB_MAX_IDLE_CONNS" envDefault:"5" validate:"min=0,max=100"`
}

// ParseEnv loads configuration from environment variables.
func ParseEnv(target any) error {
	if err := env.Parse(target); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}

// LoadServerConfig parses and validates the server environment.
func LoadServerConfig() (ServerConfig, error) {
	var cfg ServerConfig
	if err := ParseEnv(&cfg); err != nil {
		return ServerConfig{}, err
	}
	if err := ValidateStruct(cfg); err != nil {
		return ServerConfig{}, err
	}
	return cfg, nil
}

// IsProduction reports whether production cookie and logging policies apply.
func (c ServerConfig) IsProduction() bool {
	return c.Env == EnvProduction
}
