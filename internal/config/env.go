package config

import (
	"fmt"

	"github.com/kelseyhightower/envconfig"
)

// Env holds the settings read from CUBEFS_* environment variables. They
// override the file.
type Env struct {
	Config    string `envconfig:"CONFIG"`
	LogLevel  string `envconfig:"LOG_LEVEL"`
	LogFormat string `envconfig:"LOG_FORMAT"`
	Metrics   string `envconfig:"METRICS_ADDR"`
}

// LoadEnv reads the CUBEFS_* environment.
func LoadEnv() (Env, error) {
	var env Env
	if err := envconfig.Process("cubefs", &env); err != nil {
		return Env{}, fmt.Errorf("reading environment: %w", err)
	}
	return env, nil
}

// Apply overrides cfg with every variable that is set.
func (e Env) Apply(cfg *Config) {
	if e.LogLevel != "" {
		cfg.Logging.Level = e.LogLevel
	}
	if e.LogFormat != "" {
		cfg.Logging.Format = e.LogFormat
	}
	if e.Metrics != "" {
		cfg.Metrics.Address = e.Metrics
	}
}
