// Package engine is the recoverable file-system operation façade.
//
// Queries (Exists, Get, Files, Directories, Combine) never retry and never
// fail: a path that cannot be resolved simply does not exist. Every mutation
// runs under the engine's retry.Policy, and tree operations are built from
// the same primitives so retries apply leaf by leaf during a walk.
//
// Mutations return (ok, err). With an observer, err is nil except for
// programmer errors and ok is false when the observer cancelled. Without
// one, the first host error is returned unchanged (tree operations keep
// walking and return every leaf error combined).
package engine

import (
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/cube-soft/cube.core-sub000/internal/fs"
	"github.com/cube-soft/cube.core-sub000/internal/metrics"
	"github.com/cube-soft/cube.core-sub000/internal/retry"
	"github.com/cube-soft/cube.core-sub000/internal/snapshot"
)

// Engine performs file-system operations over an fs.FS. It is synchronous
// and holds no per-path state; an Engine whose observer carries state (such
// as a back-off schedule) must not be shared between goroutines.
type Engine struct {
	fs        fs.FS
	refresher snapshot.Refresher
	observer  retry.Observer
	policy    *retry.Policy
	log       *zap.Logger
	tempName  func() string
}

// Option configures an Engine.
type Option func(*Engine)

// WithFS sets the host filesystem. The default is the operating system.
func WithFS(host fs.FS) Option {
	return func(e *Engine) { e.fs = host }
}

// WithRefresher sets how snapshots are populated. The default queries the
// engine's host.
func WithRefresher(r snapshot.Refresher) Option {
	return func(e *Engine) { e.refresher = r }
}

// WithObserver registers the failure observer. Without one, failures
// propagate to the caller.
func WithObserver(o retry.Observer) Option {
	return func(e *Engine) { e.observer = o }
}

// WithLogger sets the logger. The default discards everything.
func WithLogger(log *zap.Logger) Option {
	return func(e *Engine) { e.log = log }
}

func withTempName(fn func() string) Option {
	return func(e *Engine) { e.tempName = fn }
}

// New returns an engine configured by opts.
func New(opts ...Option) *Engine {
	e := &Engine{
		log:      zap.NewNop(),
		tempName: func() string { return uuid.NewString() },
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.fs == nil {
		e.fs = fs.New()
	}
	if e.refresher == nil {
		e.refresher = snapshot.NewRefresher(e.fs)
	}

	var observer retry.Observer
	if e.observer != nil {
		inner := e.observer
		observer = func(f *retry.Failure) {
			metrics.RecordFailure(f.Op)
			inner(f)
		}
	}
	e.policy = retry.New(observer)
	return e
}

// Observed reports whether a failure observer is registered.
func (e *Engine) Observed() bool {
	return e.policy.Observed()
}

// do runs fn under the retry policy and records the result.
func (e *Engine) do(op string, fn func() error, paths ...string) (bool, error) {
	start := time.Now()
	ok, err := e.policy.Do(op, fn, paths...)
	metrics.RecordOperation(op, result(ok, err), time.Since(start))
	if err != nil {
		e.log.Debug("operation failed", zap.String("op", op), zap.Strings("paths", paths), zap.Error(err))
	}
	return ok, err
}

func get[T any](e *Engine, op string, fn func() (T, error), paths ...string) (T, error) {
	var abort T
	start := time.Now()
	v, err := retry.Get(e.policy, op, fn, abort, paths...)
	ok := err == nil && any(v) != nil
	metrics.RecordOperation(op, result(ok, err), time.Since(start))
	return v, err
}

func result(ok bool, err error) string {
	switch {
	case err != nil:
		return "error"
	case !ok:
		return "cancelled"
	default:
		return "success"
	}
}
