package cell

// A source is anything a derived node can read during evaluation: a
// writeable signal or another derived node.
type source interface {
	addDependent(d dependent)
	removeDependent(d dependent)
}

// A dependent is a derived node linked into a source's dependent list. The
// dirty walk reaches nodes through this interface so it never needs to know
// their value types.
type dependent interface {
	graph() *node
	hasSubscribers() bool
	// markPending snapshots the node's value before any recompute of the
	// current walk happens, at most once per flush window.
	markPending()
	// deliver recomputes the node if still dirty and fans out to its
	// subscribers when the value moved off the snapshot. Under a batch the
	// work is enqueued instead of run.
	deliver()
}

// node is the non-generic graph bookkeeping shared by every derived node.
// The generic wrapper stores its own interface value in self at construction
// so the core can link and unlink on its behalf.
type node struct {
	self       dependent
	sources    []source
	readIndex  int
	dependents []dependent
	dirty      bool
	computing  bool
}

// track records a read of src at the current cursor position. If the source
// at the cursor is already src the read is confirmed in O(1); otherwise every
// entry from the cursor onward is stale for this round, so it is unlinked and
// the new source appended. Reads in a stable relative order never relink.
func (n *node) track(src source) {
	if n.readIndex < len(n.sources) && n.sources[n.readIndex] == src {
		n.readIndex++
		return
	}
	tail := n.sources[n.readIndex:]
	for i, stale := range tail {
		stale.removeDependent(n.self)
		tail[i] = nil
	}
	n.sources = append(n.sources[:n.readIndex], src)
	src.addDependent(n.self)
	n.readIndex++
}

// truncateSources unlinks every dependency entry beyond the number of sources
// actually read this round. This is how edges shrink when a derivation's
// control flow reads fewer sources than before.
func (n *node) truncateSources() {
	tail := n.sources[n.readIndex:]
	for i, stale := range tail {
		stale.removeDependent(n.self)
		tail[i] = nil
	}
	n.sources = n.sources[:n.readIndex]
}

func (n *node) addDependent(d dependent) {
	n.dependents = append(n.dependents, d)
}

func (n *node) removeDependent(d dependent) {
	n.dependents = removeDependent(n.dependents, d)
}

// removeDependent drops one occurrence of d, swap-with-last-and-pop.
func removeDependent(list []dependent, d dependent) []dependent {
	for i, cur := range list {
		if cur == d {
			last := len(list) - 1
			list[i] = list[last]
			list[last] = nil
			return list[:last]
		}
	}
	return list
}

// subscription wraps a callback so unsubscribe can find it by identity.
type subscription[T any] struct {
	cb func(T)
}

// removeSubscription drops sub swap-with-last-and-pop. Removal order is not
// preserved; that is the accepted trade-off for O(1) cost.
func removeSubscription[T any](subs []*subscription[T], sub *subscription[T]) []*subscription[T] {
	for i, cur := range subs {
		if cur == sub {
			last := len(subs) - 1
			subs[i] = subs[last]
			subs[last] = nil
			return subs[:last]
		}
	}
	return subs
}
