package config

import "time"

type Config struct {
	Logging      LoggingConfig `yaml:"logging"`
	Retry        RetryConfig   `yaml:"retry"`
	Metrics      MetricsConfig `yaml:"metrics"`
	LockFile     string        `yaml:"lockFile"`
	ConfigReload ReloadConfig  `yaml:"configReload"`
	Jobs         []JobConfig   `yaml:"jobs"`
}

type LoggingConfig struct {
	Level  string `yaml:"level"`  // "info", "debug", etc.
	Format string `yaml:"format"` // "json", "text"
	Output string `yaml:"output"` // "stderr", "stdout" or a file path
}

// RetryConfig drives the failure observer built for unattended runs.
type RetryConfig struct {
	MaxAttempts     int           `yaml:"maxAttempts"` // 0 = unlimited
	InitialInterval time.Duration `yaml:"initialInterval"`
	MaxInterval     time.Duration `yaml:"maxInterval"`
	Deadline        time.Duration `yaml:"deadline"` // 0 = none
	TransientOnly   bool          `yaml:"transientOnly"`
}

type MetricsConfig struct {
	Address string `yaml:"address"` // e.g. ":9110", empty disables
}

type ReloadConfig struct {
	Enabled bool   `yaml:"enabled"`
	Method  string `yaml:"method"` // "signal", "fsnotify"
}

type JobConfig struct {
	Name        string          `yaml:"name"`
	Operation   string          `yaml:"operation"` // "copy", "move"
	Source      string          `yaml:"source"`
	Destination string          `yaml:"destination"`
	Overwrite   bool            `yaml:"overwrite"`
	Versioned   bool            `yaml:"versioned"`
	Retention   RetentionConfig `yaml:"retention"`
	Watch       WatchConfig     `yaml:"watch"`
	Schedule    string          `yaml:"schedule"` // cron spec, optional
}

type RetentionConfig struct {
	Keep int `yaml:"keep"` // 0 = keep everything
}

type WatchConfig struct {
	Mode            string        `yaml:"mode"`            // "auto", "poll", "fsnotify", "off"
	PollInterval    time.Duration `yaml:"pollInterval"`    // e.g. 5s
	DebounceWindow  time.Duration `yaml:"debounceWindow"`  // e.g. 500ms
	StabilityWindow time.Duration `yaml:"stabilityWindow"` // 0 = trigger without waiting
	Ignore          []string      `yaml:"ignore"`          // doublestar patterns relative to the source
}

const (
	OperationCopy = "copy"
	OperationMove = "move"

	WatchAuto     = "auto"
	WatchPoll     = "poll"
	WatchFSNotify = "fsnotify"
	WatchOff      = "off"
)

// Job returns the job called name.
func (c *Config) Job(name string) (JobConfig, bool) {
	for _, j := range c.Jobs {
		if j.Name == name {
			return j, true
		}
	}
	return JobConfig{}, false
}
