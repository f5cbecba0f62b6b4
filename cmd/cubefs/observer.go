package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"go.uber.org/zap"

	"github.com/cube-soft/cube.core-sub000/internal/config"
	"github.com/cube-soft/cube.core-sub000/internal/fs"
	"github.com/cube-soft/cube.core-sub000/internal/retry"
)

// prompt asks on out whether to retry each failure. Anything but an empty
// answer or "y" cancels; so does end of input.
func prompt(in io.Reader, out io.Writer) retry.Observer {
	r := bufio.NewReader(in)
	return func(f *retry.Failure) {
		fmt.Fprintf(out, "%s %s: %v\nretry? [Y/n] ", f.Op, strings.Join(f.Paths, " -> "), f.Err) //nolint:errcheck // best-effort prompt
		line, err := r.ReadString('\n')
		if err != nil && line == "" {
			fmt.Fprintln(out) //nolint:errcheck // best-effort prompt
			f.Cancel = true
			return
		}
		switch strings.ToLower(strings.TrimSpace(line)) {
		case "", "y", "yes":
		default:
			f.Cancel = true
		}
	}
}

// unattended is the observer for runs nobody watches: stop once ctx is
// done, log, give up on what cfg rules out, back off between attempts.
func unattended(ctx context.Context, cfg config.RetryConfig, log *zap.Logger) retry.Observer {
	observers := []retry.Observer{retry.Context(ctx), retry.Logged(log)}
	if cfg.TransientOnly {
		observers = append(observers, retry.Only(fs.IsTransient))
	}
	if cfg.MaxAttempts > 0 {
		observers = append(observers, retry.Limit(cfg.MaxAttempts))
	}
	if cfg.Deadline > 0 {
		observers = append(observers, retry.Deadline(cfg.Deadline))
	}
	observers = append(observers, retry.Backoff(ctx, retry.Exponential(cfg.InitialInterval, cfg.MaxInterval)))
	return retry.Chain(observers...)
}
