package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
)

// Config holds server configuration, loaded from environment variables.
type Config struct {
	Port      string `env:"PORT" envDefault:"8080"`
	RedisAddr string `env:"REDIS_ADDR"`
	MongoURI  string `env:"MONGO_URI"`
	MongoDB   string `env:"MONGO_DB" envDefault:"gameion"`

	// HostKey is the shared secret displays present to obtain a host
	// token. Empty means host endpoints are open (local/dev mode).
	HostKey   string `env:"HOST_KEY"`
	JWTSecret string `env:"JWT_SECRET" envDefault:"dev-secret-change-in-production"`
}

// Load parses configuration from the environment.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	return cfg, nil
}
