package bind

import (
	"fmt"
	"reflect"
	"sort"

	"github.com/sirupsen/logrus"

	"github.com/universal-model/universal-model/store"
)

// Destroyable is a component instance with a replaceable destroy hook.
type Destroyable interface {
	DestroyFunc() func()
	SetDestroyFunc(fn func())
}

// Lifecycle is an embeddable Destroyable.
type Lifecycle struct {
	onDestroy func()
}

func (l *Lifecycle) DestroyFunc() func() {
	return l.onDestroy
}

func (l *Lifecycle) SetDestroyFunc(fn func()) {
	l.onDestroy = fn
}

// Destroy runs the current destroy hook, if any.
func (l *Lifecycle) Destroy() {
	if l.onDestroy != nil {
		l.onDestroy()
	}
}

// FieldBinding ties a watched item to the setter of one instance field.
type FieldBinding struct {
	item  any
	check func(v any) error
	set   func(v any)
}

// Field binds item, a sub-state or selector holding a T, to set. The setter
// receives the current value at bind time and the latest value after every
// tick in which it changed.
func Field[T any](item interface{ Get() T }, set func(v T)) FieldBinding {
	return FieldBinding{
		item: item,
		check: func(v any) error {
			_, err := fieldValue[T](v)
			return err
		},
		set: func(v any) {
			if tv, err := fieldValue[T](v); err == nil {
				set(tv)
			}
		},
	}
}

// fieldValue unboxes a delivered value. A nil box is the zero T, which is how
// a nil interface value comes back out of a Batch.
func fieldValue[T any](v any) (T, error) {
	if v == nil {
		var zero T
		return zero, nil
	}
	tv, ok := v.(T)
	if !ok {
		return tv, fmt.Errorf("universal-model: field holds %T, not %s", v, reflect.TypeOf((*T)(nil)).Elem())
	}
	return tv, nil
}

type fieldSetter struct {
	fields map[string]FieldBinding
	log    *logrus.Entry
}

func (f fieldSetter) Deliver(batch store.Batch) {
	for _, k := range batch.Keys() {
		fb, ok := f.fields[k.Name]
		if !ok {
			continue
		}
		if err := fb.check(batch[k]); err != nil {
			f.log.WithField("field", k.Name).WithError(err).Error("field not assigned")
			continue
		}
		fb.set(batch[k])
	}
}

// UseStateNg assigns each sub-state in fields to its instance field now and
// again after every tick in which it changed. Destroying inst cancels the
// subscriptions, then runs whatever destroy hook inst had before.
func UseStateNg(st *store.Store, inst Destroyable, fields map[string]FieldBinding) error {
	return useInstance(st, inst, store.KindState, fields, nil)
}

func UseSelectorsNg(st *store.Store, inst Destroyable, fields map[string]FieldBinding) error {
	return useInstance(st, inst, store.KindSelector, fields, nil)
}

// UseStateAndSelectorsNg binds both maps as one consumer. Field names must
// be unique across the two maps.
func UseStateAndSelectorsNg(st *store.Store, inst Destroyable, stateFields, selectorFields map[string]FieldBinding) error {
	return useInstance(st, inst, store.KindState, stateFields, selectorFields)
}

func useInstance(st *store.Store, inst Destroyable, kind store.Kind, fields, selectorFields map[string]FieldBinding) error {
	all := make(map[string]FieldBinding, len(fields)+len(selectorFields))
	var bindings []store.Binding
	add := func(kind store.Kind, m map[string]FieldBinding) error {
		names := make([]string, 0, len(m))
		for name := range m {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			if _, dup := all[name]; dup {
				return fmt.Errorf("%w: field %q", store.ErrDuplicateName, name)
			}
			if err := checkKind(kind, len(bindings), name, m[name].item); err != nil {
				return err
			}
			all[name] = m[name]
			bindings = append(bindings, store.Binding{
				Key:  store.Key{Kind: store.KindField, Name: name, Index: len(bindings)},
				Item: m[name].item,
			})
		}
		return nil
	}
	if err := add(kind, fields); err != nil {
		return err
	}
	if err := add(store.KindSelector, selectorFields); err != nil {
		return err
	}
	if err := st.Validate(bindings...); err != nil {
		return err
	}

	initial := make([]any, len(bindings))
	for i, b := range bindings {
		initial[i] = b.Item.(store.Item).Snapshot()
		if err := all[b.Key.Name].check(initial[i]); err != nil {
			return fmt.Errorf("field %q: %w", b.Key.Name, err)
		}
	}
	for i, b := range bindings {
		all[b.Key.Name].set(initial[i])
	}

	setter := fieldSetter{fields: all, log: st.Logger().WithField("component", "bind")}
	id, err := st.Register(fmt.Sprintf("%T", inst), setter, bindings...)
	if err != nil {
		return err
	}

	prev := inst.DestroyFunc()
	destroyed := false
	inst.SetDestroyFunc(func() {
		if destroyed {
			return
		}
		destroyed = true
		st.Unregister(id)
		if prev != nil {
			prev()
		}
	})
	return nil
}

// checkKind rejects a selector bound as state and a sub-state bound as a
// selector. Anything else is left to Store.Validate.
func checkKind(kind store.Kind, position int, name string, item any) error {
	var ok bool
	switch kind {
	case store.KindState:
		_, isSelector := item.(interface{ IsDerived() bool })
		ok = !isSelector
	case store.KindSelector:
		_, isSubState := item.(interface{ IsSubState() bool })
		ok = !isSubState
	default:
		ok = true
	}
	if ok {
		return nil
	}
	return &store.InvalidSubStateError{
		Position: position,
		Name:     name,
		Reason:   fmt.Sprintf("%T cannot be bound as a %s", item, kind),
	}
}
