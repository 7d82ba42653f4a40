package reactively

type watcher struct {
	sys     *System
	target  Source
	last    uint64
	cb      func()
	queued  bool
	stopped bool
}

// WatchDeep calls cb synchronously, from inside the write that caused it,
// every time the deep fingerprint of target changes. The returned stop func
// is idempotent.
func WatchDeep(target Source, cb func()) (stop func()) {
	w := &watcher{
		sys:    target.system(),
		target: target,
		cb:     cb,
	}
	w.sys.Untracked(func() {
		w.last = target.fingerprint()
	})
	target.addObserver(w)

	return func() {
		if w.stopped {
			return
		}
		w.stopped = true
		w.target.removeObserver(w)
	}
}

func (w *watcher) stale(CacheState) {
	if w.stopped || w.queued {
		return
	}
	w.queued = true
	w.sys.queue = append(w.sys.queue, w)
}

// watchers compare fingerprints themselves
func (w *watcher) markDirty() {}

func (w *watcher) run() {
	if w.stopped {
		return
	}
	fp := w.target.fingerprint()
	if fp == w.last {
		return
	}
	w.last = fp
	w.cb()
}
