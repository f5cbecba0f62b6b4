package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"sort"
	"syscall"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/gofrs/flock"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/cube-soft/cube.core-sub000/internal/fs"
	"github.com/cube-soft/cube.core-sub000/internal/logging"
	"github.com/cube-soft/cube.core-sub000/internal/metrics"
)

var now = time.Now

func newRunCmd(o *options) *cobra.Command {
	var (
		once bool
		jobs []string
	)
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run the configured jobs (daemon unless --once)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			if once {
				return o.runOnce(ctx, jobs)
			}
			return o.runDaemon(ctx)
		},
	}
	cmd.Flags().BoolVar(&once, "once", false, "run every job one time and exit")
	cmd.Flags().StringSliceVar(&jobs, "job", nil, "with --once, run only these jobs")
	return cmd
}

func (o *options) runOnce(ctx context.Context, names []string) error {
	cfg, _, err := o.loadConfig()
	if err != nil {
		return err
	}
	log, err := logging.New(cfg.Logging)
	if err != nil {
		return err
	}
	defer log.Sync() //nolint:errcheck // best-effort flush

	only := make(map[string]bool)
	for _, n := range names {
		if _, ok := cfg.Job(n); !ok {
			return fmt.Errorf("unknown job %q", n)
		}
		only[n] = true
	}

	results, err := runJobsOnce(ctx, cfg, fs.New(), log, only)
	names = make([]string, 0, len(results))
	for n := range results {
		names = append(names, n)
	}
	sort.Strings(names)
	for _, n := range names {
		res := results[n]
		status := "done"
		switch {
		case res.Skipped:
			status = "skipped"
		case !res.Completed:
			status = "incomplete"
		}
		fmt.Fprintf(o.stdout, "%s\t%s\t%s\n", n, status, res.Target) //nolint:errcheck // best-effort stdout
	}
	if err != nil {
		fmt.Fprintf(o.stderr, "cubefs run: %v\n", err) //nolint:errcheck // best-effort stderr
		return errExit
	}
	return nil
}

func (o *options) runDaemon(ctx context.Context) error {
	cfg, path, err := o.loadConfig()
	if err != nil {
		return err
	}
	log, err := logging.New(cfg.Logging)
	if err != nil {
		return err
	}
	defer log.Sync() //nolint:errcheck // best-effort flush

	// Single daemon per lock file
	lock := flock.New(cfg.LockFile)
	locked, err := lock.TryLock()
	if err != nil {
		return fmt.Errorf("locking %s: %w", cfg.LockFile, err)
	}
	if !locked {
		return fmt.Errorf("another cubefs daemon holds %s", cfg.LockFile)
	}
	defer lock.Unlock() //nolint:errcheck // released on exit anyway

	if cfg.Metrics.Address != "" {
		srv := serveMetrics(cfg.Metrics.Address, log)
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			srv.Shutdown(shutdownCtx) //nolint:errcheck // best-effort shutdown
		}()
	}

	d := newDaemon(ctx, fs.New(), log)
	if err := d.start(cfg); err != nil {
		d.stop()
		return err
	}
	log.Info("daemon started", zap.Strings("jobs", d.names()), zap.String("config", path))

	// Hot reload on SIGHUP, or on config file changes when enabled
	reload := make(chan struct{}, 1)
	hup := make(chan os.Signal, 1)
	signal.Notify(hup, syscall.SIGHUP)
	defer signal.Stop(hup)
	if path != "" && cfg.ConfigReload.Enabled && cfg.ConfigReload.Method == "fsnotify" {
		go watchConfig(ctx, path, reload, log)
	}

	for {
		select {
		case <-ctx.Done():
			log.Info("shutting down...")
			d.stop()
			log.Info("exit complete")
			return nil
		case <-hup:
		case <-reload:
		}

		if path == "" {
			log.Warn("config reload requested but no config file is in use")
			continue
		}
		newCfg, _, err := o.loadConfig()
		if err != nil {
			log.Error("config reload failed", zap.Error(err))
			continue
		}
		if newCfg.LockFile != cfg.LockFile {
			log.Warn("lockFile change ignored until restart", zap.String("lockFile", newCfg.LockFile))
		}
		if err := d.apply(newCfg); err != nil {
			log.Error("config reload incomplete", zap.Error(err))
			continue
		}
		log.Info("config reloaded", zap.Strings("jobs", d.names()))
		d.logSchedules(newCfg)
	}
}

func serveMetrics(addr string, log *zap.Logger) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", metrics.Handler())
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("metrics server failed", zap.Error(err))
		}
	}()
	log.Info("serving metrics", zap.String("address", addr))
	return srv
}

// watchConfig signals reload when the config file is written or replaced.
// The directory is watched so editors that rename over the file are seen.
func watchConfig(ctx context.Context, path string, reload chan<- struct{}, log *zap.Logger) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		log.Warn("config watch unavailable", zap.Error(err))
		return
	}
	defer w.Close()
	if err := w.Add(filepath.Dir(path)); err != nil {
		log.Warn("config watch unavailable", zap.Error(err))
		return
	}

	name := filepath.Base(path)
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-w.Events:
			if !ok {
				return
			}
			if filepath.Base(ev.Name) != name || !ev.Has(fsnotify.Write|fsnotify.Create) {
				continue
			}
			select {
			case reload <- struct{}{}:
			default:
			}
		case err, ok := <-w.Errors:
			if !ok {
				return
			}
			log.Warn("config watch error", zap.Error(err))
		}
	}
}
