package reactively

import (
	mapset "github.com/deckarep/golang-set/v2"
)

// Derived is a cached value computed from other sources. It recomputes
// lazily, and only when one of the sources it read last time has changed.
type Derived[T any] struct {
	sys       *System
	fn        func() T
	value     T
	fp        uint64
	computed  bool
	state     CacheState
	sources   []Source
	observers observers
}

func NewDerived[T any](sys *System, fn func() T) *Derived[T] {
	return &Derived[T]{
		sys:   sys,
		fn:    fn,
		state: CacheDirty,
	}
}

func (d *Derived[T]) Read() T {
	d.sys.track(d)
	d.updateIfNecessary()
	return d.value
}

// Peek returns the up to date value without tracking.
func (d *Derived[T]) Peek() T {
	d.updateIfNecessary()
	return d.value
}

func (d *Derived[T]) stale(state CacheState) {
	if d.state < state {
		// If we were previously clean, then we know that we may need to update to get the new value
		d.state = state
		d.observers.stale(CacheCheck)
	}
}

func (d *Derived[T]) markDirty() {
	d.state = CacheDirty
}

// run the computation fn, updating the cached value
func (d *Derived[T]) update() {
	prev := d.sys.current
	t := &tracker{seen: mapset.NewThreadUnsafeSet[Source]()}
	d.sys.current = t
	defer func() { d.sys.current = prev }()

	value := d.fn()
	d.relink(t.gets)
	d.value = value

	fp := Fingerprint(value)
	changed := !d.computed || fp != d.fp
	d.fp = fp
	d.computed = true

	// handle diamond dependencies if we're the parent of a diamond
	if changed {
		d.observers.markDirty()
	}
}

func (d *Derived[T]) relink(gets []Source) {
	prev := mapset.NewThreadUnsafeSet(d.sources...)
	next := mapset.NewThreadUnsafeSet(gets...)
	for _, s := range prev.Difference(next).ToSlice() {
		s.removeObserver(d)
	}
	for _, s := range next.Difference(prev).ToSlice() {
		s.addObserver(d)
	}
	d.sources = gets
}

// if dirty, or a parent turns out to be dirty.
func (d *Derived[T]) updateIfNecessary() {
	if d.state == CacheCheck {
		for _, source := range d.sources {
			// can change d.state
			source.updateIfNecessary()
			if d.state == CacheDirty {
				// Stop here so we won't trigger updates on other parents unnecessarily
				break
			}
		}
	}

	if d.state == CacheDirty {
		d.update()
	}

	d.state = CacheClean
}

func (d *Derived[T]) system() *System { return d.sys }
func (d *Derived[T]) addObserver(o observer) { d.observers.add(o) }
func (d *Derived[T]) removeObserver(o observer) { d.observers.remove(o) }

func (d *Derived[T]) fingerprint() uint64 {
	d.updateIfNecessary()
	return d.fp
}
