package reactively

// Value is observable plain data. Reads inside a derived computation are
// tracked; writes that change the deep fingerprint of the data notify every
// dependent and run watchers before returning.
type Value[T any] struct {
	sys       *System
	value     T
	fp        uint64
	observers observers
}

func NewValue[T any](sys *System, value T) *Value[T] {
	return &Value[T]{
		sys:   sys,
		value: value,
		fp:    Fingerprint(value),
	}
}

func (v *Value[T]) Read() T {
	v.sys.track(v)
	return v.value
}

// Peek returns the current value without tracking.
func (v *Value[T]) Peek() T {
	return v.value
}

func (v *Value[T]) Set(next T) {
	v.value = next
	v.changed()
}

// Update mutates the value in place. Changes to nested fields at any depth,
// including through pointers, are detected.
func (v *Value[T]) Update(fn func(value *T)) {
	fn(&v.value)
	v.changed()
}

func (v *Value[T]) changed() {
	fp := Fingerprint(v.value)
	if fp == v.fp {
		return
	}
	v.fp = fp
	v.observers.stale(CacheDirty)
	v.sys.runWatchers()
}

func (v *Value[T]) system() *System { return v.sys }
func (v *Value[T]) addObserver(o observer) { v.observers.add(o) }
func (v *Value[T]) removeObserver(o observer) { v.observers.remove(o) }
func (v *Value[T]) updateIfNecessary() {}
func (v *Value[T]) fingerprint() uint64 { return v.fp }
