// Package worker runs configured copy and move jobs through the engine.
package worker

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/cube-soft/cube.core-sub000/internal/config"
	"github.com/cube-soft/cube.core-sub000/internal/engine"
	"github.com/cube-soft/cube.core-sub000/internal/mailbox"
	"github.com/cube-soft/cube.core-sub000/internal/metrics"
	"github.com/cube-soft/cube.core-sub000/internal/retention"
)

// Worker executes one job each time its mailbox delivers a trigger.
type Worker struct {
	mu     sync.RWMutex
	cfg    config.JobConfig
	engine *engine.Engine
	log    *zap.Logger
	mb     *mailbox.Mailbox[Job]
	now    func() time.Time
}

// New creates a worker for cfg. The engine is owned by this worker.
func New(cfg config.JobConfig, e *engine.Engine, log *zap.Logger, mb *mailbox.Mailbox[Job]) *Worker {
	return &Worker{
		cfg:    cfg,
		engine: e,
		log:    log.With(zap.String("job", cfg.Name)),
		mb:     mb,
		now:    time.Now,
	}
}

// Start runs the worker loop using mailbox semantics until ctx is done or
// the mailbox is closed.
func (w *Worker) Start(ctx context.Context) {
	w.log.Info("starting worker")
	for {
		job, err := w.mb.Take(ctx)
		if err != nil {
			w.log.Info("worker stopped", zap.Error(err))
			return
		}
		if _, err := w.Handle(ctx, job); err != nil {
			w.log.Error("job failed", zap.String("reason", job.Reason), zap.Error(err))
		}
	}
}

// UpdateConfig hot‑reloads the job settings. A nil engine keeps the
// current one.
func (w *Worker) UpdateConfig(cfg config.JobConfig, e *engine.Engine) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.cfg = cfg
	if e != nil {
		w.engine = e
	}
}

// Config returns the current job settings.
func (w *Worker) Config() config.JobConfig {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.cfg
}

// Handle runs the job once and applies retention to versioned output.
func (w *Worker) Handle(ctx context.Context, job Job) (Result, error) {
	w.mu.RLock()
	cfg, e := w.cfg, w.engine
	w.mu.RUnlock()

	start := w.now()
	res, err := w.run(ctx, cfg, e)
	metrics.RecordJob(cfg.Name, outcome(res, err), time.Since(start))

	fields := []zap.Field{
		zap.String("reason", job.Reason),
		zap.String("target", res.Target),
		zap.Bool("completed", res.Completed),
		zap.Duration("took", time.Since(start)),
	}
	switch {
	case err != nil:
		// reported by the caller
	case res.Skipped:
		w.log.Debug("nothing to do", fields...)
	case res.Completed:
		w.log.Info("job done", fields...)
	default:
		w.log.Warn("job incomplete", fields...)
	}
	return res, err
}

func (w *Worker) run(ctx context.Context, cfg config.JobConfig, e *engine.Engine) (Result, error) {
	if err := ctx.Err(); err != nil {
		return Result{}, err
	}

	src := e.Get(cfg.Source)
	if !src.Exists {
		return Result{Skipped: true}, nil
	}

	var entries []string
	if src.IsDirectory {
		entries = append(e.Files(src.FullName), e.Directories(src.FullName)...)
		if cfg.Operation == config.OperationMove && len(entries) == 0 {
			return Result{Skipped: true}, nil
		}
	} else {
		entries = []string{src.FullName}
	}

	target := cfg.Destination
	if cfg.Versioned {
		target = e.UniqueName(filepath.Join(cfg.Destination, retention.Name(w.now())))
	}
	res := Result{Target: target}

	var (
		ok  bool
		err error
	)
	switch cfg.Operation {
	case config.OperationCopy:
		if src.IsDirectory {
			ok, err = e.Copy(src.FullName, target, cfg.Overwrite)
		} else {
			ok, err = e.Copy(src.FullName, filepath.Join(target, src.Name), cfg.Overwrite)
		}
	case config.OperationMove:
		// Each entry moves on its own so the source directory stays in place.
		ok = true
		for _, entry := range entries {
			if err := ctx.Err(); err != nil {
				return res, err
			}
			moved, merr := e.Move(entry, filepath.Join(target, filepath.Base(entry)), cfg.Overwrite)
			ok = ok && moved && merr == nil
			err = multierr.Append(err, merr)
		}
	default:
		return res, fmt.Errorf("%w: unknown operation %q", config.ErrInvalid, cfg.Operation)
	}
	res.Completed = ok && err == nil
	if err != nil {
		return res, err
	}

	if cfg.Versioned && res.Completed && cfg.Retention.Keep > 0 {
		pruned, perr := retention.New(e, w.log).Apply(ctx, cfg.Destination, cfg.Retention.Keep)
		res.Pruned = pruned
		if perr != nil {
			return res, fmt.Errorf("retention: %w", perr)
		}
	}
	return res, nil
}

func outcome(res Result, err error) string {
	switch {
	case err != nil:
		return "error"
	case res.Skipped:
		return "skipped"
	case res.Completed:
		return "success"
	default:
		return "incomplete"
	}
}
