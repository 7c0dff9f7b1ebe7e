package reconcile

import (
	"log"

	mapset "github.com/deckarep/golang-set/v2"

	"github.com/delaneyj/sinew/cell"
)

// entry is the live state for one rendered key: the render-target nodes it
// produced, its disposal callback, and the per-item signal used for in-place
// value updates without node churn.
type entry[T, N any] struct {
	item    *cell.WriteableSignal[T]
	nodes   []N
	dispose func()
}

// Each keeps an external ordered render target in sync with a reactive item
// list using minimal create/update/move/remove edits. Entries are keyed by
// the caller's key function, never by position.
type Each[T, N any] struct {
	rs       *cell.ReactiveSystem
	list     *cell.ReadonlySignal[[]T]
	keyFn    func(T) string
	target   Target[T, N]
	entries  map[string]*entry[T, N]
	keys     []string
	unsub    func()
	disposed bool
}

// New normalizes source through one derived node, runs a first
// reconciliation immediately, and reconciles again on every change of the
// list value. The instance registers its disposal into the active scope.
func New[T, N any](rs *cell.ReactiveSystem, source func() []T, keyFn func(T) string, target Target[T, N]) *Each[T, N] {
	e := &Each[T, N]{
		rs:      rs,
		keyFn:   keyFn,
		target:  target,
		entries: map[string]*entry[T, N]{},
	}
	e.list = cell.Computed(rs, func(_ []T) []T {
		return source()
	})
	e.unsub = e.list.Subscribe(func(items []T) {
		e.reconcile(items)
	})
	e.reconcile(e.list.Value())
	cell.OnCleanup(rs, e.Dispose)
	return e
}

// FromSlice adapts a static item slice.
func FromSlice[T any](items []T) func() []T {
	return func() []T { return items }
}

// FromSignal adapts a writeable list signal.
func FromSignal[T any](s *cell.WriteableSignal[[]T]) func() []T {
	return s.Value
}

// FromComputed adapts a derived list node.
func FromComputed[T any](c *cell.ReadonlySignal[[]T]) func() []T {
	return c.Value
}

// Len reports how many entries are currently live.
func (e *Each[T, N]) Len() int {
	return len(e.entries)
}

// Dispose unsubscribes from the list, releases the list node, and unmounts
// every live entry. Idempotent.
func (e *Each[T, N]) Dispose() {
	if e.disposed {
		return
	}
	e.disposed = true
	e.unsub()
	e.list.Dispose()
	for _, k := range e.keys {
		e.unmount(k)
	}
	e.keys = nil
}

func (e *Each[T, N]) mount(key string, item T, index int, ref *N) {
	sig := cell.Signal(e.rs, item)
	nodes, dispose := e.target.RenderItem(sig, index)
	e.target.InsertBefore(nodes, ref)
	e.entries[key] = &entry[T, N]{item: sig, nodes: nodes, dispose: dispose}
}

func (e *Each[T, N]) unmount(key string) {
	ent := e.entries[key]
	if ent == nil {
		return
	}
	e.target.RemoveNodes(ent.nodes)
	if ent.dispose != nil {
		ent.dispose()
	}
	delete(e.entries, key)
}

// update pushes the latest item value through the entry's signal; renderers
// subscribed to it update in place with no structural edit.
func (e *Each[T, N]) update(key string, item T) {
	e.entries[key].item.SetValue(item)
}

// firstNode returns the insertion reference for "just before this entry".
func (e *Each[T, N]) firstNode(key string) *N {
	ent := e.entries[key]
	if ent == nil || len(ent.nodes) == 0 {
		return e.target.EndMarker()
	}
	return &ent.nodes[0]
}

// refAfter returns the reference for "just after position newEnd": the first
// node of the next already-resolved entry, or the end marker if none remain.
func (e *Each[T, N]) refAfter(newKeys []string, newEnd int) *N {
	if newEnd+1 < len(newKeys) {
		return e.firstNode(newKeys[newEnd+1])
	}
	return e.target.EndMarker()
}

func (e *Each[T, N]) reconcile(items []T) {
	if e.disposed {
		return
	}

	// Duplicate keys are a data-quality issue in caller data: the first
	// occurrence wins, later ones are dropped, one diagnostic per pass.
	newKeys := make([]string, 0, len(items))
	newItems := make([]T, 0, len(items))
	seen := mapset.NewSetWithSize[string](len(items))
	dupKey, hasDup := "", false
	for _, it := range items {
		k := e.keyFn(it)
		if !seen.Add(k) {
			if !hasDup {
				dupKey, hasDup = k, true
			}
			continue
		}
		newKeys = append(newKeys, k)
		newItems = append(newItems, it)
	}
	if hasDup {
		log.Printf("reconcile: dropped duplicate key %q, first occurrence wins", dupKey)
	}

	old := e.keys

	// Empty-list fast path.
	if len(newKeys) == 0 {
		for _, k := range old {
			e.unmount(k)
		}
		e.keys = nil
		return
	}

	// First-render fast path.
	if len(old) == 0 {
		end := e.target.EndMarker()
		for i, k := range newKeys {
			e.mount(k, newItems[i], i, end)
		}
		e.keys = newKeys
		return
	}

	oldStart, oldEnd := 0, len(old)-1
	newStart, newEnd := 0, len(newKeys)-1
	consumed := make([]bool, len(old))
	var oldIndex map[string]int
	var newKeySet map[string]struct{}

	for oldStart <= oldEnd && newStart <= newEnd {
		switch {
		case consumed[oldStart]:
			oldStart++

		case consumed[oldEnd]:
			oldEnd--

		case old[oldStart] == newKeys[newStart]:
			e.update(old[oldStart], newItems[newStart])
			oldStart++
			newStart++

		case old[oldEnd] == newKeys[newEnd]:
			e.update(old[oldEnd], newItems[newEnd])
			oldEnd--
			newEnd--

		case old[oldStart] == newKeys[newEnd]:
			// Moved from the front to the back.
			k := old[oldStart]
			e.update(k, newItems[newEnd])
			e.target.InsertBefore(e.entries[k].nodes, e.refAfter(newKeys, newEnd))
			oldStart++
			newEnd--

		case old[oldEnd] == newKeys[newStart]:
			// Moved from the back to the front.
			k := old[oldEnd]
			e.update(k, newItems[newStart])
			e.target.InsertBefore(e.entries[k].nodes, e.firstNode(old[oldStart]))
			oldEnd--
			newStart++

		default:
			// No direct match; resolve through the key maps, built once per
			// reconciliation over the unprocessed window.
			if oldIndex == nil {
				oldIndex = make(map[string]int, oldEnd-oldStart+1)
				for i := oldStart; i <= oldEnd; i++ {
					oldIndex[old[i]] = i
				}
				newKeySet = make(map[string]struct{}, newEnd-newStart+1)
				for i := newStart; i <= newEnd; i++ {
					newKeySet[newKeys[i]] = struct{}{}
				}
			}

			headKey := old[oldStart]
			if _, stillNeeded := newKeySet[headKey]; !stillNeeded {
				e.unmount(headKey)
				consumed[oldStart] = true
				oldStart++
			} else if oi, exists := oldIndex[newKeys[newStart]]; !exists {
				e.mount(newKeys[newStart], newItems[newStart], newStart, e.firstNode(headKey))
				newStart++
			} else {
				k := newKeys[newStart]
				e.update(k, newItems[newStart])
				e.target.InsertBefore(e.entries[k].nodes, e.firstNode(headKey))
				consumed[oi] = true
				newStart++
			}
		}
	}

	// Drain: remove old keys left unmatched, then insert new keys left
	// unmatched just before the next already-resolved entry.
	for ; oldStart <= oldEnd; oldStart++ {
		if !consumed[oldStart] {
			e.unmount(old[oldStart])
		}
	}
	for ; newStart <= newEnd; newStart++ {
		e.mount(newKeys[newStart], newItems[newStart], newStart, e.refAfter(newKeys, newEnd))
	}

	e.keys = newKeys
}
