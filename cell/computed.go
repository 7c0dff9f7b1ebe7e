package cell

// A ReadonlySignal is a memoized pull node with push-based invalidation. Its
// dependency list always reflects exactly the sources read during the most
// recent completed evaluation, in read order.
type ReadonlySignal[T any] struct {
	n           node
	rs          *ReactiveSystem
	getter      func(oldValue T) T
	value       T
	equals      func(a, b T) bool
	subscribers []*subscription[T]
	base        T
	pending     bool
}

// Computed creates a derived node and evaluates it eagerly once. While a
// disposal scope is open the node registers its own disposal there.
func Computed[T any](rs *ReactiveSystem, getter func(oldValue T) T) *ReadonlySignal[T] {
	c := &ReadonlySignal[T]{
		rs:     rs,
		getter: getter,
		equals: sameValue[T],
	}
	c.n.self = c
	c.n.dirty = true
	c.recompute()
	registerDisposer(rs, c.Dispose)
	return c
}

func (c *ReadonlySignal[T]) graph() *node { return &c.n }

func (c *ReadonlySignal[T]) hasSubscribers() bool { return len(c.subscribers) > 0 }

// Value recomputes first if the cached value is stale, then registers the
// node with the active execution context. A node reading itself during its
// own evaluation is skipped, so a node never depends on itself; the value it
// sees is the previous cached one.
func (c *ReadonlySignal[T]) Value() T {
	if c.n.dirty && !c.n.computing {
		c.recompute()
	}
	if a := c.rs.active; a != nil && a != dependent(c) {
		a.graph().track(c)
	}
	return c.value
}

// recompute runs the derivation with this node as the execution context.
// Re-entrant calls while already computing are dropped, which makes an
// accidental self-reference terminate instead of recursing. The context is
// restored on every exit path; if the derivation panics the node stays dirty
// with its previous value intact.
func (c *ReadonlySignal[T]) recompute() {
	if c.n.computing || c.getter == nil {
		return
	}
	c.n.computing = true
	c.n.readIndex = 0
	prev := c.rs.active
	c.rs.active = c
	defer func() {
		c.rs.active = prev
		c.n.computing = false
	}()
	c.value = c.getter(c.value)
	c.n.truncateSources()
	c.n.dirty = false
}

// markPending snapshots the value ahead of the walk's recomputes. The first
// snapshot in a flush window wins, so several writes inside one batch still
// compare against the value from before the first of them.
func (c *ReadonlySignal[T]) markPending() {
	if c.pending {
		return
	}
	c.pending = true
	c.base = c.value
}

func (c *ReadonlySignal[T]) deliver() {
	if c.rs.batching() {
		c.rs.enqueue(c.settle)
		return
	}
	c.settle()
}

// settle refreshes the node and notifies subscribers only when the
// recomputed value is not the same value as the snapshot; a dependency
// changing does not imply the derived value changed.
func (c *ReadonlySignal[T]) settle() {
	if !c.pending {
		return
	}
	c.pending = false
	if c.n.dirty {
		c.recompute()
	}
	if !c.equals(c.base, c.value) {
		c.fanout()
	}
}

func (c *ReadonlySignal[T]) fanout() {
	for i := 0; i < len(c.subscribers); i++ {
		c.subscribers[i].cb(c.value)
	}
}

// Subscribe makes the node eligible for proactive refresh during the dirty
// walk; an unsubscribed node is pull-only.
func (c *ReadonlySignal[T]) Subscribe(cb func(T)) (unsubscribe func()) {
	sub := &subscription[T]{cb: cb}
	c.subscribers = append(c.subscribers, sub)
	return func() {
		c.subscribers = removeSubscription(c.subscribers, sub)
	}
}

// Dispose clears the derivation, unlinks the node from every source's
// dependent list, and drops its subscribers, breaking the mutual-reference
// cycle between the node and its sources. Safe to call more than once;
// reading a disposed node returns the last cached value.
func (c *ReadonlySignal[T]) Dispose() {
	if c.getter == nil {
		return
	}
	c.getter = nil
	for i, src := range c.n.sources {
		src.removeDependent(c)
		c.n.sources[i] = nil
	}
	c.n.sources = nil
	c.n.readIndex = 0
	c.n.dirty = false
	c.pending = false
	c.subscribers = nil
}

func (c *ReadonlySignal[T]) addDependent(d dependent) {
	c.n.addDependent(d)
}

func (c *ReadonlySignal[T]) removeDependent(d dependent) {
	c.n.removeDependent(d)
}
