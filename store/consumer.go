package store

import "fmt"

// ConsumerID is the handle a consumer gets back from Register and threads
// into every later call. A handle outlives its consumer harmlessly: once the
// consumer is unregistered the handle resolves to nothing, even if its slot
// is reused.
type ConsumerID struct {
	index uint32
	gen   uint32
}

func (id ConsumerID) IsZero() bool {
	return id.gen == 0
}

func (id ConsumerID) String() string {
	return fmt.Sprintf("consumer#%d.%d", id.index, id.gen)
}

// consumerContext is the per-consumer bookkeeping: its subscriptions, its
// pending update set and whether a flush is already scheduled.
type consumerContext struct {
	gen       uint32
	live      bool
	label     string
	delivery  Delivery
	subs      []*Subscription
	pending   Batch
	scheduled bool
}

type arena struct {
	slots []*consumerContext
	free  []uint32
	live  int
}

func (a *arena) alloc() (ConsumerID, *consumerContext) {
	var index uint32
	if n := len(a.free); n > 0 {
		index = a.free[n-1]
		a.free = a.free[:n-1]
	} else {
		index = uint32(len(a.slots))
		a.slots = append(a.slots, &consumerContext{gen: 1})
	}
	ctx := a.slots[index]
	ctx.live = true
	a.live++
	return ConsumerID{index: index, gen: ctx.gen}, ctx
}

func (a *arena) get(id ConsumerID) *consumerContext {
	if id.IsZero() || int(id.index) >= len(a.slots) {
		return nil
	}
	ctx := a.slots[id.index]
	if !ctx.live || ctx.gen != id.gen {
		return nil
	}
	return ctx
}

func (a *arena) release(id ConsumerID) *consumerContext {
	ctx := a.get(id)
	if ctx == nil {
		return nil
	}
	released := *ctx
	*ctx = consumerContext{gen: ctx.gen + 1}
	a.free = append(a.free, id.index)
	a.live--
	return &released
}
