package store

import (
	"errors"
	"fmt"
)

// Register validates every binding, then subscribes the consumer to each
// bound item. Validation happens before any subscription is created, so a
// failed registration leaves nothing behind.
//
// Every change to a bound item is recorded into the consumer's pending update
// set under the binding's key. The first record after a flush schedules one
// flush on the store's Scheduler; later records in the same tick only
// overwrite values.
func (st *Store) Register(label string, delivery Delivery, bindings ...Binding) (ConsumerID, error) {
	items, err := st.validate(bindings)
	if err != nil {
		return ConsumerID{}, err
	}
	if delivery == nil || isNil(delivery) {
		return ConsumerID{}, ErrNilDelivery
	}

	id, ctx := st.consumers.alloc()
	ctx.label = label
	ctx.delivery = delivery
	ctx.subs = make([]*Subscription, 0, len(bindings))
	st.metrics.ConsumerAdded(st.name)

	// A panicking selector propagates out of Watch; release whatever was
	// subscribed before it.
	registered := false
	defer func() {
		if !registered {
			st.Unregister(id)
		}
	}()
	for i, b := range bindings {
		key, item := b.Key, items[i]
		ctx.subs = append(ctx.subs, st.registry.Watch(item, func() {
			st.record(id, key, item.Snapshot())
		}))
	}
	registered = true

	st.log.WithField("consumer", id).WithField("label", label).WithField("bindings", len(bindings)).Debug("consumer registered")
	return id, nil
}

// Validate checks bindings the way Register does without registering
// anything. Adapters that subscribe later, on mount, call it up front so a
// bad item fails at the call site.
func (st *Store) Validate(bindings ...Binding) error {
	_, err := st.validate(bindings)
	return err
}

func (st *Store) validate(bindings []Binding) ([]Item, error) {
	items := make([]Item, len(bindings))
	for i, b := range bindings {
		it, err := validate(st.sys, i, b.Item)
		if err != nil {
			var invalid *InvalidSubStateError
			if errors.As(err, &invalid) && invalid.Name == "" {
				invalid.Name = b.Key.Name
			}
			return nil, err
		}
		items[i] = it
	}
	return items, nil
}

// Unregister cancels every subscription the consumer holds and releases its
// handle. A flush already scheduled for it is dropped when it runs. It
// reports whether id was still registered; calling it again is a no-op.
func (st *Store) Unregister(id ConsumerID) bool {
	ctx := st.consumers.release(id)
	if ctx == nil {
		return false
	}
	for _, sub := range ctx.subs {
		sub.Cancel()
	}
	st.metrics.ConsumerRemoved(st.name)
	st.log.WithField("consumer", id).WithField("label", ctx.label).Debug("consumer unregistered")
	return true
}

// Registered reports whether id still refers to a live consumer.
func (st *Store) Registered(id ConsumerID) bool {
	return st.consumers.get(id) != nil
}

// Pending returns a copy of the consumer's pending update set, or nil if
// nothing is pending or the consumer is gone.
func (st *Store) Pending(id ConsumerID) Batch {
	ctx := st.consumers.get(id)
	if ctx == nil || len(ctx.pending) == 0 {
		return nil
	}
	out := make(Batch, len(ctx.pending))
	for k, v := range ctx.pending {
		out[k] = v
	}
	return out
}

func (st *Store) record(id ConsumerID, key Key, value any) {
	ctx := st.consumers.get(id)
	if ctx == nil {
		return
	}
	if ctx.pending == nil {
		ctx.pending = Batch{}
	}
	ctx.pending[key] = value
	st.metrics.Recorded(st.name)
	if st.debug {
		st.log.WithField("consumer", id).WithField("key", key.String()).Debugf("recorded %v", value)
	}
	if ctx.scheduled {
		return
	}
	ctx.scheduled = true
	st.sched.Defer(func() { st.flush(id, true) })
}

// flush delivers the consumer's pending set. The set is detached before
// delivery, so changes made by the delivery itself start a new batch and a
// new flush. Only the deferred task passes scheduled, so a consumer never has
// more than one flush queued.
func (st *Store) flush(id ConsumerID, scheduled bool) {
	ctx := st.consumers.get(id)
	if ctx == nil {
		if scheduled {
			st.metrics.Dropped(st.name)
			st.log.WithField("consumer", id).Debug("flush dropped, consumer gone")
		}
		return
	}
	batch := ctx.pending
	ctx.pending = nil
	if scheduled {
		ctx.scheduled = false
	}
	if len(batch) == 0 {
		return
	}
	st.metrics.Flushed(st.name, len(batch))
	if st.debug {
		st.log.WithField("consumer", id).WithField("label", ctx.label).Debugf("flushing %d keys", len(batch))
	}
	ctx.delivery.Deliver(batch)
}

// Flush delivers the consumer's pending set now. A flush that was already
// scheduled stays queued and delivers whatever is recorded until it runs.
func (st *Store) Flush(id ConsumerID) error {
	if st.consumers.get(id) == nil {
		return fmt.Errorf("%w: %s", ErrUnknownConsumer, id)
	}
	st.flush(id, false)
	return nil
}

// String describes the store for logs.
func (st *Store) String() string {
	return fmt.Sprintf("store %q (%d consumers, %d subscriptions)", st.name, st.Consumers(), st.registry.Len())
}
