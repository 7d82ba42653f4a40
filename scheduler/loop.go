// Package scheduler provides the single-threaded tick loop the store defers
// its flushes onto.
//
// Work arrives in two ways. Dispatch posts an external event from any
// goroutine. Defer, callable only from the loop goroutine, queues a task for
// the next tick boundary: after the current synchronous work has returned
// and before the next external event is processed.
package scheduler

import (
	"context"
	"errors"
	"sync"

	"github.com/sirupsen/logrus"
)

const DefaultMaxTicksPerDrain = 1024

var ErrClosed = errors.New("scheduler: loop closed")

type Loop struct {
	deferred []func()
	maxTicks int
	log      *logrus.Entry

	mu     sync.Mutex
	events []func()
	wake   chan struct{}
	closed bool
	done   chan struct{}
}

type Option func(*Loop)

// WithMaxTicksPerDrain bounds how many tick boundaries Drain will cross
// before giving up on a task queue that keeps refilling itself.
func WithMaxTicksPerDrain(n int) Option {
	return func(l *Loop) {
		if n > 0 {
			l.maxTicks = n
		}
	}
}

func WithLogger(log *logrus.Entry) Option {
	return func(l *Loop) {
		if log != nil {
			l.log = log
		}
	}
}

func NewLoop(opts ...Option) *Loop {
	l := &Loop{
		maxTicks: DefaultMaxTicksPerDrain,
		log:      logrus.NewEntry(logrus.StandardLogger()),
		wake:     make(chan struct{}, 1),
		done:     make(chan struct{}),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Defer queues fn for the next tick. It must only be called from the loop
// goroutine.
func (l *Loop) Defer(fn func()) {
	if fn == nil {
		return
	}
	l.deferred = append(l.deferred, fn)
}

// Pending reports how many tasks are waiting for the next tick.
func (l *Loop) Pending() int {
	return len(l.deferred)
}

// Tick runs the tasks that were queued before it was called. Tasks deferred
// while it runs wait for the following tick. A panicking task leaves the
// tasks after it queued.
func (l *Loop) Tick() (ran int) {
	tasks := l.deferred
	l.deferred = nil

	defer func() {
		if ran < len(tasks) {
			rest := tasks[ran+1:]
			l.deferred = append(rest[:len(rest):len(rest)], l.deferred...)
		}
	}()

	for ran < len(tasks) {
		tasks[ran]()
		ran++
	}
	return ran
}

// Drain ticks until no task is left, or until the tick budget is spent.
func (l *Loop) Drain() (ran int) {
	for ticks := 0; len(l.deferred) > 0; ticks++ {
		if ticks == l.maxTicks {
			l.log.WithField("pending", len(l.deferred)).
				Warn("deferred work still pending after tick budget, yielding")
			return ran
		}
		ran += l.Tick()
	}
	return ran
}

// Dispatch posts an external event. It is safe to call from any goroutine.
func (l *Loop) Dispatch(fn func()) error {
	if fn == nil {
		return nil
	}
	l.mu.Lock()
	if l.closed {
		l.mu.Unlock()
		return ErrClosed
	}
	l.events = append(l.events, fn)
	l.mu.Unlock()

	select {
	case l.wake <- struct{}{}:
	default:
	}
	return nil
}

func (l *Loop) drainEvents() []func() {
	l.mu.Lock()
	defer l.mu.Unlock()
	events := l.events
	l.events = nil
	return events
}

// RunOnce processes every event posted so far, draining deferred work after
// each one. It returns the number of events processed.
func (l *Loop) RunOnce() int {
	events := l.drainEvents()
	for _, ev := range events {
		ev()
		l.Drain()
	}
	return len(events)
}

// Run processes events until ctx is cancelled or the loop is closed. The
// goroutine calling Run becomes the loop goroutine.
func (l *Loop) Run(ctx context.Context) error {
	l.Drain()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-l.done:
			l.RunOnce()
			return nil
		case <-l.wake:
			l.RunOnce()
		}
	}
}

// Close stops accepting events. Events already posted are still processed by
// a running Run.
func (l *Loop) Close() {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.closed {
		return
	}
	l.closed = true
	close(l.done)
}
