// Package dispose provides a scoped finalizer: a list of cleanup actions run
// in reverse registration order when the scope is closed.
package dispose

import (
	"errors"
	"fmt"
	"io"
	"sync"
)

// ErrScopeClosed is returned when adding to a scope that was already closed.
var ErrScopeClosed = errors.New("dispose: scope already closed")

// Scope collects cleanup actions. Close runs them last-in first-out, keeps
// going when one of them fails or panics, and returns the joined errors.
//
// Scope is safe for concurrent use. The zero value is ready to use.
type Scope struct {
	mu      sync.Mutex
	actions []func() error
	closed  bool
}

// New creates an empty scope.
func New() *Scope {
	return &Scope{}
}

// Add registers c to be closed with the scope and returns c.
// When the scope is already closed, c is closed immediately.
func Add[T io.Closer](s *Scope, c T) T {
	if err := s.AddFunc(c.Close); err != nil {
		_ = c.Close()
	}
	return c
}

// AddFunc registers fn. It returns ErrScopeClosed, without running fn, when
// the scope has already been closed.
func (s *Scope) AddFunc(fn func() error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrScopeClosed
	}
	s.actions = append(s.actions, fn)
	return nil
}

// AddAction registers an action that cannot fail.
func (s *Scope) AddAction(fn func()) error {
	return s.AddFunc(func() error {
		fn()
		return nil
	})
}

// Len returns the number of pending actions.
func (s *Scope) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.actions)
}

// Detach removes all pending actions without running them and returns them
// in registration order. Ownership of the resources moves to the caller.
func (s *Scope) Detach() []func() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	actions := s.actions
	s.actions = nil
	return actions
}

// Close runs the pending actions in reverse order. Subsequent calls are
// no-ops returning nil.
func (s *Scope) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	actions := s.actions
	s.actions = nil
	s.mu.Unlock()

	var errs []error
	for i := len(actions) - 1; i >= 0; i-- {
		if err := run(actions[i]); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func run(fn func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("dispose: cleanup panicked: %v", r)
		}
	}()
	return fn()
}
