package main

import (
	"context"
	"sync"

	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/cube-soft/cube.core-sub000/internal/config"
	"github.com/cube-soft/cube.core-sub000/internal/engine"
	"github.com/cube-soft/cube.core-sub000/internal/fs"
	"github.com/cube-soft/cube.core-sub000/internal/mailbox"
	"github.com/cube-soft/cube.core-sub000/internal/schedule"
	"github.com/cube-soft/cube.core-sub000/internal/watcher"
	"github.com/cube-soft/cube.core-sub000/internal/worker"
)

// jobRunner is the set of goroutines serving one configured job.
type jobRunner struct {
	mb      *mailbox.Mailbox[worker.Job]
	worker  *worker.Worker
	watcher *watcher.Watcher
	ctx     context.Context
	cancel  context.CancelFunc
}

// daemon owns every job runner and the shared scheduler.
type daemon struct {
	mu    sync.Mutex
	ctx   context.Context
	host  fs.FS
	log   *zap.Logger
	sched *schedule.Scheduler
	jobs  map[string]*jobRunner
	wg    sync.WaitGroup
}

func newDaemon(ctx context.Context, host fs.FS, log *zap.Logger) *daemon {
	return &daemon{
		ctx:   ctx,
		host:  host,
		log:   log,
		sched: schedule.New(log),
		jobs:  make(map[string]*jobRunner),
	}
}

// newJobEngine gives each job its own engine: observers carry
// per-invocation state. Retries end when ctx, the job's lifetime, is done.
func (d *daemon) newJobEngine(ctx context.Context, cfg *config.Config, job config.JobConfig) *engine.Engine {
	log := d.log.With(zap.String("job", job.Name))
	return engine.New(
		engine.WithFS(d.host),
		engine.WithLogger(log),
		engine.WithObserver(unattended(ctx, cfg.Retry, log)),
	)
}

// start launches every job and triggers a first run of each.
func (d *daemon) start(cfg *config.Config) error {
	if err := d.apply(cfg); err != nil {
		return err
	}
	d.sched.Start()
	d.mu.Lock()
	for name, j := range d.jobs {
		// a trigger the watcher already queued keeps its reason
		if !j.mb.HasJob() {
			j.mb.Put(worker.Job{Name: name, Reason: "startup", At: now()})
		}
	}
	d.mu.Unlock()
	d.logSchedules(cfg)
	return nil
}

// logSchedules reports the next activation of every scheduled job.
func (d *daemon) logSchedules(cfg *config.Config) {
	for _, job := range cfg.Jobs {
		if next, ok := d.sched.Next(job.Name); ok && !next.IsZero() {
			d.log.Info("next scheduled run", zap.String("job", job.Name), zap.Time("at", next))
		}
	}
}

// apply makes the running jobs match cfg: new jobs start, removed jobs
// stop and existing jobs take the new settings.
func (d *daemon) apply(cfg *config.Config) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	keep := make(map[string]bool)
	for _, job := range cfg.Jobs {
		keep[job.Name] = true
		if j, ok := d.jobs[job.Name]; ok {
			j.worker.UpdateConfig(job, d.newJobEngine(j.ctx, cfg, job))
			j.watcher.UpdateConfig(job)
			continue
		}
		d.jobs[job.Name] = d.spawn(cfg, job)
	}

	for name, j := range d.jobs {
		if !keep[name] {
			d.log.Info("stopping removed job", zap.String("job", name))
			d.halt(name, j)
			delete(d.jobs, name)
		}
	}

	boxes := make(map[string]*mailbox.Mailbox[worker.Job], len(d.jobs))
	for name, j := range d.jobs {
		boxes[name] = j.mb
	}
	return d.sched.Sync(cfg.Jobs, boxes)
}

func (d *daemon) spawn(cfg *config.Config, job config.JobConfig) *jobRunner {
	ctx, cancel := context.WithCancel(d.ctx)
	mb := mailbox.New[worker.Job]()
	j := &jobRunner{
		mb:      mb,
		worker:  worker.New(job, d.newJobEngine(ctx, cfg, job), d.log, mb),
		watcher: watcher.New(job, d.host, d.log, mb),
		ctx:     ctx,
		cancel:  cancel,
	}

	d.wg.Add(2)
	go func() {
		defer d.wg.Done()
		j.worker.Start(ctx)
	}()
	go func() {
		defer d.wg.Done()
		if err := j.watcher.Start(ctx); err != nil {
			d.log.Error("watcher stopped", zap.String("job", job.Name), zap.Error(err))
		}
	}()
	d.log.Info("job started", zap.String("job", job.Name), zap.String("operation", job.Operation),
		zap.String("source", job.Source), zap.String("destination", job.Destination))
	return j
}

// halt drops a pending trigger and stops the job's goroutines. A run in
// progress stops retrying and returns.
func (d *daemon) halt(name string, j *jobRunner) {
	if pending := j.mb.TryTake(); pending != nil {
		d.log.Info("dropping pending trigger", zap.String("job", name), zap.String("reason", pending.Reason))
	}
	j.cancel()
	j.mb.Close()
}

// names returns the running job names.
func (d *daemon) names() []string {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make([]string, 0, len(d.jobs))
	for name := range d.jobs {
		out = append(out, name)
	}
	return out
}

// stop cancels every job and waits for its goroutines.
func (d *daemon) stop() {
	d.sched.Stop()
	d.mu.Lock()
	for name, j := range d.jobs {
		d.halt(name, j)
	}
	d.mu.Unlock()
	d.wg.Wait()
}

// runJobsOnce runs every job (or the named ones) a single time, in order.
func runJobsOnce(ctx context.Context, cfg *config.Config, host fs.FS, log *zap.Logger, only map[string]bool) (map[string]worker.Result, error) {
	d := newDaemon(ctx, host, log)
	results := make(map[string]worker.Result)
	var errs error
	for _, job := range cfg.Jobs {
		if len(only) > 0 && !only[job.Name] {
			continue
		}
		w := worker.New(job, d.newJobEngine(ctx, cfg, job), log, mailbox.New[worker.Job]())
		res, err := w.Handle(ctx, worker.Job{Name: job.Name, Reason: "manual", At: now()})
		results[job.Name] = res
		if err != nil {
			errs = multierr.Append(errs, err)
		}
	}
	return results, errs
}
