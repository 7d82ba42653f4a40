package reactively

import (
	"slices"

	mapset "github.com/deckarep/golang-set/v2"
)

type CacheState int

const (
	CacheClean CacheState = iota // reactive value is valid, no need to recompute
	CacheCheck                   // reactive value might be stale, check parent nodes to decide whether to recompute
	CacheDirty                   // reactive value is invalid, parents have changed, value needs to be recomputed
)

// Source is anything a derived value or a watcher can depend on.
type Source interface {
	system() *System
	addObserver(o observer)
	removeObserver(o observer)
	updateIfNecessary()
	fingerprint() uint64
}

type observer interface {
	stale(state CacheState)
	markDirty()
}

// System is one reactive graph. It is not safe for concurrent use, all reads
// and writes must happen on the goroutine that owns it.
type System struct {
	current  *tracker
	queue    []*watcher
	flushing bool
}

type tracker struct {
	gets []Source
	seen mapset.Set[Source]
}

func NewSystem() *System {
	return &System{}
}

func (sys *System) track(s Source) {
	t := sys.current
	if t == nil {
		return
	}
	if t.seen.Add(s) {
		t.gets = append(t.gets, s)
	}
}

// Untracked runs fn without recording any reads as dependencies of the
// computation currently being evaluated.
func (sys *System) Untracked(fn func()) {
	prev := sys.current
	sys.current = nil
	defer func() { sys.current = prev }()
	fn()
}

// runWatchers drains queued watchers. Writes made by a watcher callback queue
// more watchers, which are picked up by the same drain.
func (sys *System) runWatchers() {
	if sys.flushing {
		return
	}
	sys.flushing = true
	defer func() {
		sys.flushing = false
		for _, w := range sys.queue {
			w.queued = false
		}
		sys.queue = nil
	}()

	for len(sys.queue) > 0 {
		w := sys.queue[0]
		sys.queue = sys.queue[1:]
		w.queued = false
		w.run()
	}
}

type observers []observer

func (o *observers) add(ob observer) {
	if slices.Contains(*o, ob) {
		return
	}
	*o = append(*o, ob)
}

func (o *observers) remove(ob observer) {
	if i := slices.Index(*o, ob); i >= 0 {
		*o = slices.Delete(*o, i, i+1)
	}
}

func (o observers) stale(state CacheState) {
	// observers may unsubscribe while being notified
	for _, ob := range slices.Clone(o) {
		ob.stale(state)
	}
}

func (o observers) markDirty() {
	for _, ob := range slices.Clone(o) {
		ob.markDirty()
	}
}
