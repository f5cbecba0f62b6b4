package retry

import (
	"context"
	"time"

	"github.com/cenkalti/backoff/v5"
	"go.uber.org/zap"
)

// Chain runs observers in order and stops at the first one that cancels.
func Chain(observers ...Observer) Observer {
	return func(f *Failure) {
		for _, o := range observers {
			if o == nil {
				continue
			}
			o(f)
			if f.Cancel {
				return
			}
		}
	}
}

// Context cancels once ctx is done. Put it first in a chain so nothing
// else runs for a failure reported after shutdown began.
func Context(ctx context.Context) Observer {
	return func(f *Failure) {
		if ctx.Err() != nil {
			f.Cancel = true
		}
	}
}

// Limit cancels once an invocation has failed n times.
func Limit(n int) Observer {
	return func(f *Failure) {
		if f.Attempt >= n {
			f.Cancel = true
		}
	}
}

// Deadline cancels once d has elapsed since the first attempt.
func Deadline(d time.Duration) Observer {
	return deadline(d, time.Now)
}

func deadline(d time.Duration, now func() time.Time) Observer {
	return func(f *Failure) {
		if now().Sub(f.Started) >= d {
			f.Cancel = true
		}
	}
}

// Only cancels failures that retryable does not accept, e.g. fs.IsTransient
// for unattended callers that should not wait on a permission error.
func Only(retryable func(error) bool) Observer {
	return func(f *Failure) {
		if !retryable(f.Err) {
			f.Cancel = true
		}
	}
}

// Backoff sleeps between attempts following b, and cancels when b stops
// or ctx is done during the wait. b is reset at the first failure of every
// invocation, so an observer built with Backoff must not be shared between
// goroutines.
func Backoff(ctx context.Context, b backoff.BackOff) Observer {
	return backoffWith(b, func(d time.Duration) bool { return sleep(ctx, d) })
}

func backoffWith(b backoff.BackOff, wait func(time.Duration) bool) Observer {
	return func(f *Failure) {
		if f.Attempt == 1 {
			b.Reset()
		}
		d := b.NextBackOff()
		if d == backoff.Stop || !wait(d) {
			f.Cancel = true
		}
	}
}

// sleep waits for d and reports false when ctx ends the wait early.
func sleep(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}

// Exponential returns the back-off schedule used by the CLI and daemon.
func Exponential(initial, max time.Duration) *backoff.ExponentialBackOff {
	b := backoff.NewExponentialBackOff()
	if initial > 0 {
		b.InitialInterval = initial
	}
	if max > 0 {
		b.MaxInterval = max
	}
	return b
}

// Logged reports every failure to log and never cancels.
func Logged(log *zap.Logger) Observer {
	return func(f *Failure) {
		log.Warn("operation failed",
			zap.String("op", f.Op),
			zap.Strings("paths", f.Paths),
			zap.Int("attempt", f.Attempt),
			zap.Error(f.Err),
		)
	}
}
