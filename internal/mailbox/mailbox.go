// Package mailbox provides a single-slot, latest-wins hand-off between a
// trigger (watcher, scheduler, signal) and the worker that acts on it.
package mailbox

import (
	"context"
	"errors"
	"sync"
)

// ErrClosed is returned by Take once the mailbox is closed and drained.
var ErrClosed = errors.New("mailbox closed")

// Mailbox is a single-slot buffer where the latest job always wins.
// It is NOT a queue. It holds at most one pending job.
// Put() overwrites any existing job. Take() blocks until a job is available.
type Mailbox[T any] struct {
	mu     sync.Mutex
	cond   *sync.Cond
	job    *T
	closed bool
}

// New creates an empty mailbox.
func New[T any]() *Mailbox[T] {
	m := &Mailbox[T]{}
	m.cond = sync.NewCond(&m.mu)
	return m
}

// Put stores a job in the mailbox, replacing any existing job.
// It never blocks. Puts after Close are dropped.
func (m *Mailbox[T]) Put(j T) {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return
	}
	m.job = &j
	m.mu.Unlock()
	m.cond.Signal() // wake up worker if waiting
}

// Take blocks until a job is available, ctx is done or the mailbox is
// closed, then returns the job and clears the slot. A job still pending
// at Close is delivered before ErrClosed.
func (m *Mailbox[T]) Take(ctx context.Context) (T, error) {
	stop := context.AfterFunc(ctx, func() {
		m.mu.Lock()
		defer m.mu.Unlock()
		m.cond.Broadcast()
	})
	defer stop()

	m.mu.Lock()
	defer m.mu.Unlock()

	var zero T
	for m.job == nil {
		if m.closed {
			return zero, ErrClosed
		}
		if err := ctx.Err(); err != nil {
			return zero, err
		}
		m.cond.Wait()
	}

	j := *m.job
	m.job = nil
	return j, nil
}

// TryTake returns the job if present, or nil if empty.
// It never blocks.
func (m *Mailbox[T]) TryTake() *T {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.job == nil {
		return nil
	}

	j := m.job
	m.job = nil
	return j
}

// HasJob reports whether a job is currently waiting.
func (m *Mailbox[T]) HasJob() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.job != nil
}

// Close wakes every waiting Take. It is safe to call more than once.
func (m *Mailbox[T]) Close() {
	m.mu.Lock()
	m.closed = true
	m.mu.Unlock()
	m.cond.Broadcast()
}
