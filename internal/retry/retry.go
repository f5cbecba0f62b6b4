// Package retry runs filesystem mutations under an observable, cancellable
// retry loop.
//
// Every failed attempt is reported to a single Observer as a Failure. The
// observer decides: leave Cancel false to try again, or set it to abort. An
// absent observer means fail fast: the first error is returned unchanged.
//
// Retrying is unbounded. An observer that never cancels and never fixes the
// underlying condition (a lock, a full disk, a permission) loops forever;
// bounding the loop is the observer's job (see Limit and Deadline).
package retry

import (
	"errors"
	"time"
)

// Failure describes one failed attempt of an operation.
type Failure struct {
	Op      string    // operation name, e.g. "Delete"
	Paths   []string  // path or pair of paths involved
	Err     error     // what the host reported
	Attempt int       // 1 for the first failure of this invocation
	Started time.Time // when the first attempt began

	// Cancel is set by the observer to abort instead of retrying.
	Cancel bool
}

// Observer receives failures synchronously on the calling goroutine.
type Observer func(f *Failure)

// Outcome is the state reached after one attempt.
type Outcome int

const (
	Success Outcome = iota
	Retrying
	Aborted
)

func (o Outcome) String() string {
	switch o {
	case Success:
		return "success"
	case Retrying:
		return "retrying"
	case Aborted:
		return "aborted"
	default:
		return "unknown"
	}
}

// PermanentError marks an error that must never be retried, such as an
// invalid argument. It bypasses the observer.
type PermanentError struct {
	Err error
}

func (e *PermanentError) Error() string {
	return e.Err.Error()
}

func (e *PermanentError) Unwrap() error {
	return e.Err
}

// Permanent wraps err so the policy returns it without consulting the
// observer.
func Permanent(err error) error {
	if err == nil {
		return nil
	}
	return &PermanentError{Err: err}
}

// IsPermanent reports whether err was marked with Permanent.
func IsPermanent(err error) bool {
	var p *PermanentError
	return errors.As(err, &p)
}

// Policy applies the retry loop around operations.
type Policy struct {
	observer Observer
}

// New returns a policy reporting to observer, which may be nil.
func New(observer Observer) *Policy {
	return &Policy{observer: observer}
}

// Observed reports whether failures are delivered to an observer.
func (p *Policy) Observed() bool {
	return p != nil && p.observer != nil
}

type run struct {
	op      string
	paths   []string
	attempt int
	started time.Time
}

// step performs one attempt and decides the next state. The error is only
// non-nil when the outcome is Aborted and the failure must propagate.
func (p *Policy) step(r *run, fn func() error) (Outcome, error) {
	err := fn()
	if err == nil {
		return Success, nil
	}
	if IsPermanent(err) || !p.Observed() {
		return Aborted, err
	}

	r.attempt++
	f := &Failure{
		Op:      r.op,
		Paths:   append([]string(nil), r.paths...),
		Err:     err,
		Attempt: r.attempt,
		Started: r.started,
	}
	p.observer(f)
	if f.Cancel {
		return Aborted, nil
	}
	return Retrying, nil
}

// Do runs fn until it succeeds or the observer cancels. It returns true on
// success, false when cancelled, and the unchanged error when there is no
// observer (or the error is permanent).
func (p *Policy) Do(op string, fn func() error, paths ...string) (bool, error) {
	r := &run{op: op, paths: paths, started: time.Now()}
	for {
		outcome, err := p.step(r, fn)
		switch outcome {
		case Success:
			return true, nil
		case Aborted:
			return false, err
		}
	}
}

// Get is the function form of Do. When the observer cancels it returns
// abort; when the failure propagates it returns abort together with the
// error.
func Get[T any](p *Policy, op string, fn func() (T, error), abort T, paths ...string) (T, error) {
	var result T
	ok, err := p.Do(op, func() error {
		v, err := fn()
		if err != nil {
			return err
		}
		result = v
		return nil
	}, paths...)
	if err != nil || !ok {
		return abort, err
	}
	return result, nil
}
