package cell

import (
	mapset "github.com/deckarep/golang-set/v2"
)

// A Scope collects cleanup callbacks registered while it is active. Derived
// nodes and effects constructed under an open scope register their own
// disposal here, making teardown leak-free despite the mutual references
// inside the graph.
type Scope struct {
	items    mapset.Set[*scopeItem]
	disposed bool
}

type scopeItem struct {
	fn  func()
	ran bool
}

func (it *scopeItem) run() {
	if it.ran {
		return
	}
	it.ran = true
	it.fn()
}

func newScope() *Scope {
	return &Scope{items: mapset.NewSet[*scopeItem]()}
}

func (s *Scope) add(fn func()) {
	s.items.Add(&scopeItem{fn: fn})
}

// Dispose invokes every registered cleanup once. It is idempotent and
// tolerates a cleanup disposing a sibling mid-teardown: the set is drained
// before anything runs and each item carries its own once guard.
func (s *Scope) Dispose() {
	if s.disposed {
		return
	}
	s.disposed = true
	items := s.items.ToSlice()
	s.items.Clear()
	for _, it := range items {
		it.run()
	}
}

// Root opens a disposal scope for the duration of fn and hands fn the
// scope's dispose function. Roots are not linked to an enclosing scope;
// disposing them is the caller's responsibility.
func Root[T any](rs *ReactiveSystem, fn func(dispose func()) T) T {
	scope := newScope()
	prev := rs.activeScope
	rs.activeScope = scope
	defer func() {
		rs.activeScope = prev
	}()
	return fn(scope.Dispose)
}

// OnCleanup registers fn into the currently active scope. Without an active
// scope it is a no-op; whatever was created then must be disposed manually.
func OnCleanup(rs *ReactiveSystem, fn func()) {
	registerDisposer(rs, fn)
}
