// Package config loads the server configuration from the environment.
package config

import (
	"github.com/kelseyhightower/envconfig"
)

// Config holds the nesting service configuration.
type Config struct {
	Port           int     `envconfig:"PORT" default:"8080"`
	AllowedOrigins string  `envconfig:"ALLOWED_ORIGINS" default:"*"`
	DefaultMargin  float64 `envconfig:"DEFAULT_MARGIN" default:"3"`
	MaxJobs        int     `envconfig:"MAX_JOBS" default:"4"`
}

// Load reads the configuration from NESTCUT_-prefixed environment
// variables.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("nestcut", &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}
