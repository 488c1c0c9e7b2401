package framethread

import (
	"context"
	"sync"
)

// Loop is a Dispatcher pumped explicitly by the frame thread, typically
// once per frame through RunPending.
type Loop struct {
	mu     sync.Mutex
	queue  []func()
	closed bool
	signal chan struct{}
}

var _ Dispatcher = (*Loop)(nil)

// NewLoop returns an empty loop.
func NewLoop() *Loop {
	return &Loop{signal: make(chan struct{}, 1)}
}

// Post queues fn for the next RunPending. After Close it runs fn inline.
func (l *Loop) Post(fn func()) {
	l.mu.Lock()
	if l.closed {
		l.mu.Unlock()
		fn()
		return
	}
	l.queue = append(l.queue, fn)
	l.mu.Unlock()

	select {
	case l.signal <- struct{}{}:
	default:
	}
}

// Run queues fn and waits until the frame thread ran it.
func (l *Loop) Run(fn func()) {
	done := make(chan struct{})
	l.Post(func() {
		defer close(done)
		fn()
	})
	<-done
}

// RunPending runs the queued functions in order and returns how many ran.
// Functions queued while it runs wait for the next call.
func (l *Loop) RunPending() int {
	l.mu.Lock()
	batch := l.queue
	l.queue = nil
	l.mu.Unlock()

	for _, fn := range batch {
		fn()
	}
	return len(batch)
}

// Pending returns the number of queued functions.
func (l *Loop) Pending() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.queue)
}

// Wait blocks until a function is queued or ctx ends.
func (l *Loop) Wait(ctx context.Context) error {
	for {
		if l.Pending() > 0 {
			return nil
		}
		select {
		case <-l.signal:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// Close runs the remaining functions and makes later posts run inline, so
// no caller blocks on a loop nobody pumps.
func (l *Loop) Close() {
	l.mu.Lock()
	l.closed = true
	l.mu.Unlock()
	l.RunPending()
}
