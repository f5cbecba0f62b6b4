package worker

import (
	"time"
)

// Job asks a worker to run its configured operation once.
type Job struct {
	Name   string    // job name from the configuration
	Reason string    // "watch", "schedule", "startup", "manual"
	At     time.Time // when the trigger fired
}

// Result summarises one run.
type Result struct {
	Target    string   // directory written to
	Completed bool     // every operation succeeded
	Skipped   bool     // nothing to do (missing or empty source)
	Pruned    []string // versions removed by retention
}
