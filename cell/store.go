package cell

import (
	"sort"

	"github.com/cespare/xxhash/v2"
)

// A Store is a deep reactive view over a plain map: an explicit get/set
// capability backed by one lazily created signal per property. Property
// names are interned to xxhash ids so the hot path never rehashes long keys.
type Store struct {
	rs      *ReactiveSystem
	cells   map[uint64]*WriteableSignal[any]
	backing map[string]any
}

func NewStore(rs *ReactiveSystem, src map[string]any) *Store {
	st := &Store{
		rs:      rs,
		cells:   map[uint64]*WriteableSignal[any]{},
		backing: make(map[string]any, len(src)),
	}
	for k, v := range src {
		st.backing[k] = v
	}
	return st
}

// A WrappedSlice is a slice whose elements have already been through Wrap.
// The distinct type is what lets Wrap pass it through by identity instead of
// allocating a fresh copy on every touch.
type WrappedSlice []any

// Wrap recursively converts plain maps to Stores and plain slices to
// WrappedSlices of wrapped elements; everything else passes through
// unchanged. Wrapping is idempotent: an already-wrapped value comes back as
// the same reference, so identity-sensitive comparisons elsewhere stay valid.
func Wrap(rs *ReactiveSystem, v any) any {
	switch tv := v.(type) {
	case *Store:
		return tv
	case WrappedSlice:
		return tv
	case map[string]any:
		return NewStore(rs, tv)
	case []any:
		out := make(WrappedSlice, len(tv))
		for i, el := range tv {
			out[i] = Wrap(rs, el)
		}
		return out
	default:
		return v
	}
}

func keyID(key string) uint64 {
	return xxhash.Sum64String(key)
}

// cell returns the per-key signal, allocating it on first touch seeded with
// the wrapped backing value. The wrapped form is mirrored back into backing
// so later unwrapped reads stay consistent.
func (st *Store) cell(key string) *WriteableSignal[any] {
	id := keyID(key)
	c, ok := st.cells[id]
	if !ok {
		wrapped := Wrap(st.rs, st.backing[key])
		st.backing[key] = wrapped
		c = Signal[any](st.rs, wrapped)
		st.cells[id] = c
	}
	return c
}

// Get reads the property through its cell, registering a dependency when an
// execution context is active.
func (st *Store) Get(key string) any {
	return st.cell(key).Value()
}

// Set wraps the incoming value, writes it through the per-key cell so the
// standard invalidation runs, and mirrors it into backing storage.
func (st *Store) Set(key string, v any) {
	c := st.cell(key)
	wrapped := Wrap(st.rs, v)
	st.backing[key] = wrapped
	c.SetValue(wrapped)
}

func (st *Store) Has(key string) bool {
	_, ok := st.backing[key]
	return ok
}

func (st *Store) Keys() []string {
	keys := make([]string, 0, len(st.backing))
	for k := range st.backing {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Snapshot returns a shallow copy of the backing storage. Values that were
// touched through the store come back in wrapped form.
func (st *Store) Snapshot() map[string]any {
	out := make(map[string]any, len(st.backing))
	for k, v := range st.backing {
		out[k] = v
	}
	return out
}
