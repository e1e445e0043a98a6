package session

import (
	"sync"
	"time"
)

// Loop is the session's single execution thread. Every piece of session
// state is touched only from closures drained by Run, which stands in for
// the one cooperative thread the interaction model assumes. Timers and
// background I/O re-enter through Post.
type Loop struct {
	tasks chan func()

	mu     sync.Mutex
	closed bool
	done   chan struct{}
}

func NewLoop() *Loop {
	return &Loop{
		tasks: make(chan func(), 256),
		done:  make(chan struct{}),
	}
}

// Run drains posted closures until Stop. It must be called from exactly
// one goroutine.
func (l *Loop) Run() {
	for {
		select {
		case f := <-l.tasks:
			f()
		case <-l.done:
			// drain what was posted before the stop
			for {
				select {
				case f := <-l.tasks:
					f()
				default:
					return
				}
			}
		}
	}
}

// Post schedules a closure on the loop. Posts after Stop are dropped.
func (l *Loop) Post(f func()) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.closed {
		return
	}
	select {
	case l.tasks <- f:
	case <-l.done:
	}
}

// After schedules a closure on the loop once the delay elapses. The
// returned timer can cancel a delivery that has not fired yet.
func (l *Loop) After(d time.Duration, f func()) *time.Timer {
	return time.AfterFunc(d, func() {
		l.Post(f)
	})
}

// Barrier posts a no-op and blocks until the loop has executed it, which
// means everything posted before it has run.
func (l *Loop) Barrier() {
	ran := make(chan struct{})
	l.Post(func() { close(ran) })
	select {
	case <-ran:
	case <-l.done:
	}
}

// Stop ends Run after the already-posted closures execute.
func (l *Loop) Stop() {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.closed {
		return
	}
	l.closed = true
	close(l.done)
}
