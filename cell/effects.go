package cell

// Cleanup is invoked before the next rerun of the effect that returned it,
// and once more on dispose.
type Cleanup func()

// EffectFn may return a cleanup, an error, or neither. Errors are routed to
// the system's OnErrorFunc instead of unwinding the graph.
type EffectFn func() (Cleanup, error)

type effectRunner struct {
	rs       *ReactiveSystem
	node     *ReadonlySignal[int]
	cleanup  Cleanup
	unsub    func()
	disposed bool
}

// Effect wraps fn in a derived node over a run counter plus a no-op
// subscription; the subscription is what includes the node in dirty-walk
// notification, so the effect reruns whenever a dependency changes. Each
// rerun first invokes the previous cleanup with tracking paused, so cleanup
// reads are not attributed as dependencies. The returned stop function is
// idempotent and also registered into the active disposal scope.
func Effect(rs *ReactiveSystem, fn EffectFn) (stop func()) {
	e := &effectRunner{rs: rs}
	e.node = Computed(rs, func(runs int) int {
		if prev := e.cleanup; prev != nil {
			e.cleanup = nil
			rs.Untracked(prev)
		}
		cleanup, err := fn()
		if err != nil {
			rs.reportError(err)
		}
		e.cleanup = cleanup
		return runs + 1
	})
	e.unsub = e.node.Subscribe(func(int) {})
	registerDisposer(rs, e.dispose)
	return e.dispose
}

func (e *effectRunner) dispose() {
	if e.disposed {
		return
	}
	e.disposed = true
	e.unsub()
	e.node.Dispose()
	if cl := e.cleanup; cl != nil {
		e.cleanup = nil
		cl()
	}
}
