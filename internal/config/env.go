package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
)

// RuntimeConfig holds settings that vary per deployment and come from the
// environment rather than the yaml file.
type RuntimeConfig struct {
	DatabaseURL string `env:"DATABASE_URL,required"`
	HTTPAddr    string `env:"HTTP_ADDR" envDefault:":8084"`
	SessionKey  string `env:"SESSION_KEY"`
	Env         string `env:"SHIFTCOVER_ENV" envDefault:"dev"`
}

// LoadRuntime parses the runtime configuration from environment variables
func LoadRuntime() (*RuntimeConfig, error) {
	var cfg RuntimeConfig
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse runtime config: %w", err)
	}
	return &cfg, nil
}
