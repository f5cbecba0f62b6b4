package config

import (
	"errors"
	"fmt"
	"path/filepath"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/robfig/cron/v3"
	"go.uber.org/multierr"
)

var ErrInvalid = errors.New("invalid configuration")

// Validate reports every problem found, combined.
func (c *Config) Validate() error {
	var errs error
	fail := func(format string, args ...any) {
		errs = multierr.Append(errs, fmt.Errorf("%w: "+format, append([]any{ErrInvalid}, args...)...))
	}

	if c.Retry.MaxAttempts < 0 {
		fail("retry.maxAttempts must not be negative")
	}
	if c.Retry.InitialInterval > c.Retry.MaxInterval {
		fail("retry.initialInterval %s exceeds retry.maxInterval %s", c.Retry.InitialInterval, c.Retry.MaxInterval)
	}
	switch c.ConfigReload.Method {
	case "signal", "fsnotify":
	default:
		fail("configReload.method %q is not one of signal, fsnotify", c.ConfigReload.Method)
	}

	seen := make(map[string]bool)
	for i, j := range c.Jobs {
		where := fmt.Sprintf("jobs[%d]", i)
		if j.Name == "" {
			fail("%s: name is required", where)
		} else if seen[j.Name] {
			fail("%s: duplicate job name %q", where, j.Name)
		}
		seen[j.Name] = true

		switch j.Operation {
		case OperationCopy, OperationMove:
		default:
			fail("%s: operation %q is not one of copy, move", where, j.Operation)
		}
		if j.Source == "" || j.Destination == "" {
			fail("%s: source and destination are required", where)
		} else if filepath.Clean(j.Source) == filepath.Clean(j.Destination) {
			fail("%s: source and destination are the same path", where)
		}
		if j.Retention.Keep < 0 {
			fail("%s: retention.keep must not be negative", where)
		}
		if j.Retention.Keep > 0 && !j.Versioned {
			fail("%s: retention requires versioned: true", where)
		}

		switch j.Watch.Mode {
		case WatchAuto, WatchPoll, WatchFSNotify, WatchOff:
		default:
			fail("%s: watch.mode %q is not one of auto, poll, fsnotify, off", where, j.Watch.Mode)
		}
		for _, pattern := range j.Watch.Ignore {
			if !doublestar.ValidatePattern(pattern) {
				fail("%s: bad ignore pattern %q", where, pattern)
			}
		}
		if j.Schedule != "" {
			if _, err := cron.ParseStandard(j.Schedule); err != nil {
				fail("%s: schedule %q: %v", where, j.Schedule, err)
			}
		}
	}
	return errs
}
