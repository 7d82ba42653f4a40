// Package store is the core of universal-model: a single reactive state
// container whose sub-states and selectors are watched on behalf of
// consumers, with every burst of synchronous changes coalesced into one
// delivery per consumer per tick.
//
// A Store is not safe for concurrent use. All mutation, registration and
// flushing happens on the goroutine that runs its Scheduler; other
// goroutines hand work over with scheduler.Loop.Dispatch.
package store

import (
	"github.com/sirupsen/logrus"

	"github.com/universal-model/universal-model/config"
	"github.com/universal-model/universal-model/logging"
	"github.com/universal-model/universal-model/metrics"
	"github.com/universal-model/universal-model/reactively"
	"github.com/universal-model/universal-model/scheduler"
)

// Scheduler runs deferred work after the current synchronous call stack has
// returned and before the next external event. *scheduler.Loop implements it.
type Scheduler interface {
	Defer(fn func())
}

type Store struct {
	name      string
	debug     bool
	sys       *reactively.System
	state     *State
	selectors *Selectors
	registry  *Registry
	consumers arena
	sched     Scheduler
	log       *logrus.Entry
	metrics   *metrics.Collector
}

type Option func(*Store)

func WithName(name string) Option {
	return func(st *Store) {
		if name != "" {
			st.name = name
		}
	}
}

func WithScheduler(s Scheduler) Option {
	return func(st *Store) {
		if s != nil {
			st.sched = s
		}
	}
}

func WithLogger(log *logrus.Entry) Option {
	return func(st *Store) {
		if log != nil {
			st.log = log
		}
	}
}

func WithMetrics(m *metrics.Collector) Option {
	return func(st *Store) {
		st.metrics = m
	}
}

// WithSystem shares a reactive system with code outside the store.
func WithSystem(sys *reactively.System) Option {
	return func(st *Store) {
		if sys != nil {
			st.sys = sys
		}
	}
}

// WithDebug logs every recorded change and flush at debug level.
func WithDebug(debug bool) Option {
	return func(st *Store) {
		st.debug = debug
	}
}

// FromConfig applies the store section of cfg.
func FromConfig(cfg *config.Config) Option {
	return func(st *Store) {
		if cfg == nil {
			return
		}
		WithName(cfg.Store.Name)(st)
		st.debug = cfg.Store.Debug
	}
}

// New creates an empty store. Without WithScheduler it defers onto a
// scheduler.Loop of its own, reachable through Scheduler.
func New(opts ...Option) *Store {
	st := &Store{
		name:     config.DefaultStoreName,
		sys:      reactively.NewSystem(),
		registry: NewRegistry(),
	}
	for _, opt := range opts {
		opt(st)
	}
	if st.sched == nil {
		st.sched = scheduler.NewLoop()
	}
	if st.log == nil {
		st.log = logging.NewLogger("store")
	}
	st.log = st.log.WithField("store", st.name)
	st.state = &State{newNamedItems(st.sys, false)}
	st.selectors = &Selectors{newNamedItems(st.sys, true)}
	st.registry.onChange = func(delta int) {
		st.metrics.SubscriptionsChanged(st.name, delta)
	}
	return st
}

func (st *Store) Name() string {
	return st.name
}

// Logger is the store's logger, for adapters that log on its behalf.
func (st *Store) Logger() *logrus.Entry {
	return st.log
}

func (st *Store) Scheduler() Scheduler {
	return st.sched
}

func (st *Store) System() *reactively.System {
	return st.sys
}

func (st *Store) Registry() *Registry {
	return st.registry
}

// State returns the state container.
func (st *Store) State() *State {
	return st.state
}

func (st *Store) Selectors() *Selectors {
	return st.selectors
}

func (st *Store) StateAndSelectors() (*State, *Selectors) {
	return st.state, st.selectors
}

// Selector returns the selector registered under name.
func (st *Store) Selector(name string) (Item, bool) {
	return st.selectors.Lookup(name)
}

// Consumers reports how many consumers are registered.
func (st *Store) Consumers() int {
	return st.consumers.live
}
