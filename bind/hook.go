// Package bind adapts the store to the three consumer models a UI layer can
// have: render hooks, component instances with lifecycle callbacks, and
// subscribable per-value slots. Every adapter validates its items before it
// subscribes, tears down exactly once, and receives at most one batch per
// tick from the store.
package bind

import (
	"github.com/universal-model/universal-model/store"
)

// HookHost is a rendered view that can run an effect once on mount and be
// asked to re-render.
type HookHost interface {
	// RegisterMountEffect runs setup when the view mounts and the returned
	// teardown when it unmounts.
	RegisterMountEffect(setup func() (teardown func()))
	RequestRerender()
}

type rerender struct {
	host HookHost
}

func (r rerender) Deliver(store.Batch) {
	r.host.RequestRerender()
}

// UseState re-renders host once per tick in which any of subStates changed.
func UseState(st *store.Store, host HookHost, subStates ...any) error {
	return useHook(st, host, store.Bind(store.KindState, subStates...))
}

// UseSelectors re-renders host once per tick in which any of selectors
// produced a new value.
func UseSelectors(st *store.Store, host HookHost, selectors ...any) error {
	return useHook(st, host, store.Bind(store.KindSelector, selectors...))
}

func UseStateAndSelectors(st *store.Store, host HookHost, subStates, selectors []any) error {
	bindings := append(store.Bind(store.KindState, subStates...), store.Bind(store.KindSelector, selectors...)...)
	return useHook(st, host, bindings)
}

func useHook(st *store.Store, host HookHost, bindings []store.Binding) error {
	if err := st.Validate(bindings...); err != nil {
		return err
	}
	host.RegisterMountEffect(func() func() {
		id, err := st.Register("hook", rerender{host: host}, bindings...)
		if err != nil {
			// bindings were validated above
			panic(err)
		}
		return func() { st.Unregister(id) }
	})
	return nil
}
