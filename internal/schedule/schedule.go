// Package schedule triggers jobs on cron expressions.
package schedule

import (
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/cube-soft/cube.core-sub000/internal/config"
	"github.com/cube-soft/cube.core-sub000/internal/mailbox"
	"github.com/cube-soft/cube.core-sub000/internal/worker"
)

// Scheduler puts a worker.Job into a job's mailbox each time its schedule
// fires. Schedules use the standard five-field cron syntax.
type Scheduler struct {
	mu      sync.Mutex
	cron    *cron.Cron
	entries map[string]cron.EntryID
	specs   map[string]string
	boxes   map[string]*mailbox.Mailbox[worker.Job]
	log     *zap.Logger
	now     func() time.Time
}

func New(log *zap.Logger) *Scheduler {
	return &Scheduler{
		cron:    cron.New(),
		entries: make(map[string]cron.EntryID),
		specs:   make(map[string]string),
		boxes:   make(map[string]*mailbox.Mailbox[worker.Job]),
		log:     log,
		now:     time.Now,
	}
}

// Set registers, replaces or (with an empty spec) removes the schedule of
// job name.
func (s *Scheduler) Set(name, spec string, mb *mailbox.Mailbox[worker.Job]) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.boxes[name] = mb
	if s.specs[name] == spec {
		if _, ok := s.entries[name]; ok || spec == "" {
			return nil
		}
	}
	if id, ok := s.entries[name]; ok {
		s.cron.Remove(id)
		delete(s.entries, name)
		delete(s.specs, name)
	}
	if spec == "" {
		return nil
	}

	id, err := s.cron.AddFunc(spec, func() { s.fire(name) })
	if err != nil {
		return fmt.Errorf("schedule %q for job %s: %w", spec, name, err)
	}
	s.entries[name] = id
	s.specs[name] = spec
	s.log.Info("job scheduled", zap.String("job", name), zap.String("schedule", spec))
	return nil
}

// Sync makes the registered schedules match jobs: missing jobs are dropped.
func (s *Scheduler) Sync(jobs []config.JobConfig, boxes map[string]*mailbox.Mailbox[worker.Job]) error {
	keep := make(map[string]bool)
	var firstErr error
	for _, j := range jobs {
		keep[j.Name] = true
		if err := s.Set(j.Name, j.Schedule, boxes[j.Name]); err != nil && firstErr == nil {
			firstErr = err
		}
	}

	s.mu.Lock()
	for name, id := range s.entries {
		if !keep[name] {
			s.cron.Remove(id)
			delete(s.entries, name)
			delete(s.specs, name)
			delete(s.boxes, name)
		}
	}
	s.mu.Unlock()
	return firstErr
}

// Next returns the next activation of job name. It is zero until the
// scheduler is started.
func (s *Scheduler) Next(name string) (time.Time, bool) {
	s.mu.Lock()
	id, ok := s.entries[name]
	s.mu.Unlock()
	if !ok {
		return time.Time{}, false
	}
	return s.cron.Entry(id).Next, true
}

func (s *Scheduler) Start() {
	s.cron.Start()
}

// Stop stops the scheduler and waits for running triggers.
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
}

func (s *Scheduler) fire(name string) {
	s.mu.Lock()
	mb := s.boxes[name]
	s.mu.Unlock()
	if mb == nil {
		return
	}
	mb.Put(worker.Job{Name: name, Reason: "schedule", At: s.now()})
	s.log.Debug("job triggered", zap.String("job", name), zap.String("reason", "schedule"))
}
