// Package config loads server configuration from the environment.
package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
)

// Config contains server configuration parameters.
type Config struct {
	Addr      string `env:"ADDR" envDefault:":3000"`
	DBPath    string `env:"DB_PATH" envDefault:"notes.db"`
	JWTSecret string `env:"JWT_SECRET" envDefault:"devsecret"`
	LogLevel  int    `env:"LOG_LEVEL" envDefault:"0"`
}

// Load parses configuration from environment variables.
func Load() (*Config, error) {
	cfg := Config{}
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	return &cfg, nil
}
