package libelec

import (
	"errors"
	"fmt"
	"slices"
	"sync"
)

// State is the lifecycle position of a System handle.
type State int

const (
	StateCreated State = iota
	StateStarted
	StateStopped
	StateDestroyed
)

func (s State) String() string {
	switch s {
	case StateCreated:
		return "created"
	case StateStarted:
		return "started"
	case StateStopped:
		return "stopped"
	case StateDestroyed:
		return "destroyed"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// ErrUsage matches every UsageError with errors.Is.
var ErrUsage = errors.New("libelec: invalid handle use")

// UsageError reports an operation the handle's current state does not
// allow.
type UsageError struct {
	Op    string
	State State
}

func (e *UsageError) Error() string {
	return fmt.Sprintf("libelec: cannot %s a %s system", e.Op, e.State)
}

func (e *UsageError) Is(target error) bool { return target == ErrUsage }

// lifecycle guards a native handle. Transitions run their native call
// while holding the lock, so a destroy cannot race a read.
type lifecycle struct {
	mu    sync.Mutex
	state State
}

// do runs fn if the current state is one of from.
func (l *lifecycle) do(op string, fn func() error, from ...State) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if !slices.Contains(from, l.state) {
		return &UsageError{Op: op, State: l.state}
	}
	if fn == nil {
		return nil
	}
	return fn()
}

// transition moves to the target state once fn succeeds.
func (l *lifecycle) transition(op string, to State, fn func() error, from ...State) error {
	return l.do(op, func() error {
		if fn != nil {
			if err := fn(); err != nil {
				return err
			}
		}
		l.state = to
		return nil
	}, from...)
}

// use runs fn unless the handle is destroyed.
func (l *lifecycle) use(op string, fn func() error) error {
	return l.do(op, fn, StateCreated, StateStarted, StateStopped)
}

func (l *lifecycle) start(fn func() error) error {
	return l.transition("start", StateStarted, fn, StateCreated, StateStopped)
}

func (l *lifecycle) stop(fn func() error) error {
	return l.transition("stop", StateStopped, fn, StateStarted)
}

// destroy accepts only a stopped system. A running system must be stopped
// first, and a handle that was never started is a usage error.
func (l *lifecycle) destroy(fn func() error) error {
	return l.transition("destroy", StateDestroyed, fn, StateStopped)
}

func (l *lifecycle) current() State {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.state
}
