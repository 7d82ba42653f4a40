package store

import (
	"fmt"
	"reflect"

	"github.com/universal-model/universal-model/reactively"
)

// Item is anything a consumer can watch: a SubState or a Selector.
type Item interface {
	Name() string
	// Snapshot returns the current value without tracking.
	Snapshot() any
	Source() reactively.Source
}

type subStateMarker interface {
	IsSubState() bool
}

type derivedMarker interface {
	IsDerived() bool
}

// SubState is a named, independently watchable slice of the state container.
type SubState[T any] struct {
	name       string
	owner      *reactively.System
	value      *reactively.Value[T]
	isSubState bool
}

// NewSubState creates a sub-state and adds it to the store's state container.
func NewSubState[T any](st *Store, name string, initial T) (*SubState[T], error) {
	s := &SubState[T]{
		name:       name,
		owner:      st.sys,
		value:      reactively.NewValue(st.sys, initial),
		isSubState: true,
	}
	if err := st.state.add(name, s, -1); err != nil {
		return nil, err
	}
	return s, nil
}

func MustSubState[T any](st *Store, name string, initial T) *SubState[T] {
	s, err := NewSubState(st, name, initial)
	if err != nil {
		panic(err)
	}
	return s
}

func (s *SubState[T]) IsSubState() bool {
	return s != nil && s.isSubState && s.value != nil
}

func (s *SubState[T]) Name() string { return s.name }

// Get returns the current value. Inside a selector the read is tracked.
func (s *SubState[T]) Get() T { return s.value.Read() }

func (s *SubState[T]) Peek() T { return s.value.Peek() }

func (s *SubState[T]) Set(v T) { s.value.Set(v) }

// Update mutates the sub-state in place; nested changes at any depth are
// picked up by watchers.
func (s *SubState[T]) Update(fn func(v *T)) { s.value.Update(fn) }

func (s *SubState[T]) Snapshot() any { return s.value.Peek() }

func (s *SubState[T]) Source() reactively.Source { return s.value }

func (s *SubState[T]) system() *reactively.System { return s.owner }

// Selector is a named value derived from the state container. It is
// recomputed lazily when a sub-state it read has changed.
type Selector[T any] struct {
	name    string
	owner   *reactively.System
	derived *reactively.Derived[T]
}

func NewSelector[T any](st *Store, name string, fn func(state *State) T) (*Selector[T], error) {
	s := &Selector[T]{
		name:  name,
		owner: st.sys,
		derived: reactively.NewDerived(st.sys, func() T {
			return fn(st.state)
		}),
	}
	if err := st.selectors.add(name, s, -1); err != nil {
		return nil, err
	}
	return s, nil
}

func MustSelector[T any](st *Store, name string, fn func(state *State) T) *Selector[T] {
	s, err := NewSelector(st, name, fn)
	if err != nil {
		panic(err)
	}
	return s
}

func (s *Selector[T]) IsDerived() bool {
	return s != nil && s.derived != nil
}

func (s *Selector[T]) Name() string { return s.name }

// Get returns the current value. Inside another selector the read is
// tracked, so selectors compose.
func (s *Selector[T]) Get() T { return s.derived.Read() }

func (s *Selector[T]) Snapshot() any { return s.derived.Peek() }

func (s *Selector[T]) Source() reactively.Source { return s.derived }

func (s *Selector[T]) system() *reactively.System { return s.owner }

type owned interface {
	system() *reactively.System
}

// validate checks the marker contract of a watchable item. position is the
// index in the registration call, or -1.
func validate(sys *reactively.System, position int, item any) (Item, error) {
	fail := func(name, reason string) (Item, error) {
		return nil, &InvalidSubStateError{Position: position, Name: name, Reason: reason}
	}

	if item == nil {
		return fail("", "nil item")
	}
	if isNil(item) {
		return fail("", fmt.Sprintf("nil %T", item))
	}

	it, ok := item.(Item)
	if !ok {
		return fail("", fmt.Sprintf("%T is plain data", item))
	}
	name := it.Name()

	marked := false
	if m, ok := item.(subStateMarker); ok && m.IsSubState() {
		marked = true
	}
	if m, ok := item.(derivedMarker); ok && m.IsDerived() {
		marked = true
	}
	if !marked {
		return fail(name, fmt.Sprintf("%T carries no sub-state marker", item))
	}
	if o, ok := item.(owned); ok && o.system() != sys {
		return fail(name, "belongs to another store")
	}
	return it, nil
}

func isNil(item any) bool {
	v := reflect.ValueOf(item)
	switch v.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Slice, reflect.Func, reflect.Interface:
		return v.IsNil()
	}
	return item == nil
}

// namedItems keeps items by name in insertion order.
type namedItems struct {
	sys     *reactively.System
	derived bool
	items   map[string]Item
	order   []string
}

func newNamedItems(sys *reactively.System, derived bool) namedItems {
	return namedItems{sys: sys, derived: derived, items: map[string]Item{}}
}

func (n *namedItems) add(name string, item any, position int) error {
	it, err := validate(n.sys, position, item)
	if err != nil {
		if e, ok := err.(*InvalidSubStateError); ok && e.Name == "" {
			e.Name = name
		}
		return err
	}
	if _, isDerived := it.(derivedMarker); isDerived != n.derived {
		kind := "selector"
		if n.derived {
			kind = "sub-state"
		}
		return &InvalidSubStateError{Position: position, Name: name, Reason: "a " + kind + " cannot be added here"}
	}
	if _, exists := n.items[name]; exists {
		return fmt.Errorf("%w: %q", ErrDuplicateName, name)
	}
	n.items[name] = it
	n.order = append(n.order, name)
	return nil
}

// Lookup returns the item registered under name.
func (n *namedItems) Lookup(name string) (Item, bool) {
	it, ok := n.items[name]
	return it, ok
}

// Names returns the registered names in insertion order.
func (n *namedItems) Names() []string {
	return append([]string(nil), n.order...)
}

func (n *namedItems) Len() int {
	return len(n.order)
}

// State is the store's state container: every entry is a tagged sub-state.
type State struct {
	namedItems
}

// Add puts an existing sub-state into the container under name. Anything
// that is not a sub-state of this store is rejected with an
// InvalidSubStateError.
func (s *State) Add(name string, item any) error {
	return s.add(name, item, -1)
}

// Selectors is the store's set of named selectors.
type Selectors struct {
	namedItems
}

// Get reads the sub-state called name from inside a selector. The read is
// tracked. It panics if there is no such sub-state or it does not hold a T.
func Get[T any](state *State, name string) T {
	it, ok := state.Lookup(name)
	if !ok {
		panic(fmt.Sprintf("universal-model: no sub-state %q", name))
	}
	s, ok := it.(*SubState[T])
	if !ok {
		panic(fmt.Sprintf("universal-model: sub-state %q is %T, not %T", name, it, (*SubState[T])(nil)))
	}
	return s.Get()
}
