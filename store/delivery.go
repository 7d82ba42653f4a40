package store

import (
	"fmt"
	"sort"
)

type Kind uint8

const (
	KindState Kind = iota + 1
	KindSelector
	KindField
)

func (k Kind) String() string {
	switch k {
	case KindState:
		return "state"
	case KindSelector:
		return "selector"
	case KindField:
		return "field"
	default:
		return "unknown"
	}
}

// Key identifies one slice in a consumer's pending update set. Adapters pick
// whichever of Name and Index they address slices by.
type Key struct {
	Kind  Kind
	Name  string
	Index int
}

func StateKey(index int, name string) Key {
	return Key{Kind: KindState, Name: name, Index: index}
}

func SelectorKey(index int, name string) Key {
	return Key{Kind: KindSelector, Name: name, Index: index}
}

func FieldKey(field string) Key {
	return Key{Kind: KindField, Name: field, Index: -1}
}

func (k Key) String() string {
	if k.Index < 0 {
		return fmt.Sprintf("%s:%s", k.Kind, k.Name)
	}
	return fmt.Sprintf("%s[%d]:%s", k.Kind, k.Index, k.Name)
}

// Batch is a pending update set: the latest observed value of every slice
// that changed since the last flush.
type Batch map[Key]any

// Keys returns the keys ordered by kind, then index, then name.
func (b Batch) Keys() []Key {
	keys := make([]Key, 0, len(b))
	for k := range b {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].Kind != keys[j].Kind {
			return keys[i].Kind < keys[j].Kind
		}
		if keys[i].Index != keys[j].Index {
			return keys[i].Index < keys[j].Index
		}
		return keys[i].Name < keys[j].Name
	})
	return keys
}

// Lookup returns the value recorded for the first key called name.
func (b Batch) Lookup(name string) (any, bool) {
	for _, k := range b.Keys() {
		if k.Name == name {
			return b[k], true
		}
	}
	return nil, false
}

// Values returns the batch keyed by name.
func (b Batch) Values() map[string]any {
	out := make(map[string]any, len(b))
	for k, v := range b {
		out[k.Name] = v
	}
	return out
}

// Delivery applies a flushed batch to a consumer. It is called at most once
// per tick per consumer.
type Delivery interface {
	Deliver(batch Batch)
}

type DeliveryFunc func(batch Batch)

func (f DeliveryFunc) Deliver(batch Batch) {
	f(batch)
}

// Binding pairs a watched item with the key its changes are recorded under.
type Binding struct {
	Key  Key
	Item any
}

// Bind builds bindings for items keyed by position and name.
func Bind(kind Kind, items ...any) []Binding {
	out := make([]Binding, len(items))
	for i, item := range items {
		name := ""
		if it, ok := item.(Item); ok && !isNil(item) {
			name = it.Name()
		}
		out[i] = Binding{Key: Key{Kind: kind, Name: name, Index: i}, Item: item}
	}
	return out
}
