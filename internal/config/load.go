package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"time"

	"gopkg.in/yaml.v3"
)

// matches $(VAR_NAME)
var envPattern = regexp.MustCompile(`\$\(([A-Za-z0-9_]+)\)`)

// replaces $(VAR) with os.Getenv(VAR)
func expandEnvVars(s string) string {
	return envPattern.ReplaceAllStringFunc(s, func(m string) string {
		key := mapEnvKey(envPattern.FindStringSubmatch(m)[1])
		return os.Getenv(key)
	})
}

// Load reads, expands, defaults and validates the file at path.
func Load(path string) (*Config, error) {
	// read raw YAML file
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}
	return Parse(data)
}

// Parse is Load for configuration already in memory.
func Parse(data []byte) (*Config, error) {
	// expand $(ENV_VAR) placeholders
	expanded := expandEnvVars(string(data))

	// unmarshal into struct
	var cfg Config
	if err := yaml.Unmarshal([]byte(expanded), &cfg); err != nil {
		return nil, fmt.Errorf("unmarshalling yaml: %w", err)
	}

	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	var cfg Config
	cfg.applyDefaults()
	return &cfg
}

func (c *Config) applyDefaults() {
	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
	if c.Logging.Format == "" {
		c.Logging.Format = "json"
	}
	if c.Retry.InitialInterval == 0 {
		c.Retry.InitialInterval = 500 * time.Millisecond
	}
	if c.Retry.MaxInterval == 0 {
		c.Retry.MaxInterval = 30 * time.Second
	}
	if c.LockFile == "" {
		c.LockFile = filepath.Join(os.TempDir(), "cubefs.lock")
	}
	if c.ConfigReload.Method == "" {
		c.ConfigReload.Method = "signal"
	}
	for i := range c.Jobs {
		j := &c.Jobs[i]
		if j.Operation == "" {
			j.Operation = OperationCopy
		}
		if j.Watch.Mode == "" {
			j.Watch.Mode = WatchAuto
		}
		if j.Watch.PollInterval == 0 {
			j.Watch.PollInterval = 5 * time.Second
		}
		if j.Watch.DebounceWindow == 0 {
			j.Watch.DebounceWindow = 500 * time.Millisecond
		}
	}
}
