package bind

import (
	"github.com/google/uuid"

	"github.com/universal-model/universal-model/store"
)

// Slot is a subscribable single value. Subscribers are called with the
// current value when they subscribe and on every Set.
type Slot struct {
	value any
	subs  []*slotSub
}

type slotSub struct {
	fn func(v any)
}

func NewSlot(initial any) *Slot {
	return &Slot{value: initial}
}

func (s *Slot) Get() any {
	return s.value
}

func (s *Slot) Set(v any) {
	s.value = v
	for _, sub := range append([]*slotSub(nil), s.subs...) {
		if sub.fn != nil {
			sub.fn(v)
		}
	}
}

// Subscribe calls fn with the current value, then with every later one until
// the returned function is called.
func (s *Slot) Subscribe(fn func(v any)) (unsubscribe func()) {
	sub := &slotSub{fn: fn}
	s.subs = append(s.subs, sub)
	fn(s.value)
	return func() {
		if sub.fn == nil {
			return
		}
		sub.fn = nil
		for i, x := range s.subs {
			if x == sub {
				s.subs = append(s.subs[:i], s.subs[i+1:]...)
				break
			}
		}
	}
}

// Subscribers reports how many subscribers the slot has.
func (s *Slot) Subscribers() int {
	return len(s.subs)
}

// SlotHost is a component that runs callbacks when it is destroyed.
type SlotHost interface {
	OnDestroy(fn func())
}

type slotPusher struct {
	state     []*Slot
	selectors []*Slot
}

func (p slotPusher) Deliver(batch store.Batch) {
	for _, k := range batch.Keys() {
		switch k.Kind {
		case store.KindState:
			p.state[k.Index].Set(batch[k])
		case store.KindSelector:
			p.selectors[k.Index-len(p.state)].Set(batch[k])
		}
	}
}

// UseStateSvelte returns one slot per sub-state, in order, holding its
// current value and updated after every tick in which it changed. id names
// the consumer in logs; an empty id gets a generated one.
func UseStateSvelte(st *store.Store, id string, host SlotHost, subStates ...any) ([]*Slot, error) {
	state, _, err := UseStateAndSelectorsSvelte(st, id, host, subStates, nil)
	return state, err
}

func UseSelectorsSvelte(st *store.Store, id string, host SlotHost, selectors ...any) ([]*Slot, error) {
	_, sel, err := UseStateAndSelectorsSvelte(st, id, host, nil, selectors)
	return sel, err
}

// UseStateAndSelectorsSvelte binds both lists as one consumer, so a tick that
// changes a sub-state and a selector updates both slots in one flush.
func UseStateAndSelectorsSvelte(st *store.Store, id string, host SlotHost, subStates, selectors []any) (state, sel []*Slot, err error) {
	if id == "" {
		id = uuid.New().String()
	}
	bindings := store.Bind(store.KindState, subStates...)
	for _, b := range store.Bind(store.KindSelector, selectors...) {
		b.Key.Index += len(subStates)
		bindings = append(bindings, b)
	}
	for i, b := range bindings {
		if err := checkKind(b.Key.Kind, i, b.Key.Name, b.Item); err != nil {
			return nil, nil, err
		}
	}
	if err := st.Validate(bindings...); err != nil {
		return nil, nil, err
	}

	p := slotPusher{
		state:     make([]*Slot, len(subStates)),
		selectors: make([]*Slot, len(selectors)),
	}
	for i, b := range bindings {
		slot := NewSlot(b.Item.(store.Item).Snapshot())
		if i < len(subStates) {
			p.state[i] = slot
		} else {
			p.selectors[i-len(subStates)] = slot
		}
	}

	cid, err := st.Register(id, p, bindings...)
	if err != nil {
		return nil, nil, err
	}
	host.OnDestroy(func() { st.Unregister(cid) })
	return p.state, p.selectors, nil
}
