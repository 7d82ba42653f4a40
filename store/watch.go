package store

import (
	mapset "github.com/deckarep/golang-set/v2"

	"github.com/universal-model/universal-model/reactively"
)

// Subscription is one (item, callback) pairing. It is active until Cancel is
// called; cancelling is idempotent.
type Subscription struct {
	reg  *Registry
	name string
	stop func()
}

func (s *Subscription) Active() bool {
	return s != nil && s.stop != nil
}

// Name is the name of the watched item.
func (s *Subscription) Name() string {
	return s.name
}

func (s *Subscription) Cancel() {
	if !s.Active() {
		return
	}
	stop := s.stop
	s.stop = nil
	stop()
	s.reg.release(s)
}

// Registry bridges the reactive primitive's deep watch to plain change
// callbacks and keeps track of every subscription still active.
type Registry struct {
	active   mapset.Set[*Subscription]
	onChange func(delta int)
}

func NewRegistry() *Registry {
	return &Registry{active: mapset.NewThreadUnsafeSet[*Subscription]()}
}

// Watch calls onChange synchronously, once per write that changes item,
// including writes to nested fields. Items are expected to be validated by
// the caller.
func (r *Registry) Watch(item Item, onChange func()) *Subscription {
	sub := &Subscription{reg: r, name: item.Name()}
	sub.stop = reactively.WatchDeep(item.Source(), onChange)
	r.active.Add(sub)
	if r.onChange != nil {
		r.onChange(1)
	}
	return sub
}

func (r *Registry) release(sub *Subscription) {
	if !r.active.Contains(sub) {
		return
	}
	r.active.Remove(sub)
	if r.onChange != nil {
		r.onChange(-1)
	}
}

// Len reports the number of active subscriptions.
func (r *Registry) Len() int {
	return r.active.Cardinality()
}
