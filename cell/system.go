package cell

import "log"

type OnErrorFunc func(err error)

// A ReactiveSystem owns all shared state of one dependency graph: the
// currently evaluating node, the batching depth with its deferred queue, and
// the currently open disposal scope. Everything created against one system
// must stay on one goroutine; evaluation is synchronous and re-entrant,
// never interleaved.
type ReactiveSystem struct {
	active      dependent
	pauseStack  []dependent
	batchDepth  int
	queue       []func()
	activeScope *Scope
	onError     OnErrorFunc
}

func NewReactiveSystem(onError OnErrorFunc) *ReactiveSystem {
	return &ReactiveSystem{onError: onError}
}

func (rs *ReactiveSystem) StartBatch() {
	rs.batchDepth++
}

func (rs *ReactiveSystem) EndBatch() {
	rs.batchDepth--
	if rs.batchDepth != 0 {
		return
	}
	rs.flush()
}

// Batch runs fn synchronously, deferring subscriber notification until the
// outermost batch exits. Dirty propagation and graph mutation still happen
// immediately on every write.
func (rs *ReactiveSystem) Batch(fn func()) {
	rs.StartBatch()
	defer rs.EndBatch()
	fn()
}

func (rs *ReactiveSystem) batching() bool {
	return rs.batchDepth > 0
}

func (rs *ReactiveSystem) enqueue(fn func()) {
	rs.queue = append(rs.queue, fn)
}

// flush runs every enqueued callback once, in enqueue order. The queue is
// snapshotted and cleared before any callback runs, so a callback that
// triggers a write mid-flush never observes a half-drained queue.
func (rs *ReactiveSystem) flush() {
	for len(rs.queue) > 0 {
		q := rs.queue
		rs.queue = nil
		for _, fn := range q {
			fn()
		}
	}
}

func (rs *ReactiveSystem) PauseTracking() {
	rs.pauseStack = append(rs.pauseStack, rs.active)
	rs.active = nil
}

func (rs *ReactiveSystem) ResumeTracking() {
	last := len(rs.pauseStack) - 1
	rs.active = rs.pauseStack[last]
	rs.pauseStack[last] = nil
	rs.pauseStack = rs.pauseStack[:last]
}

// Untracked runs fn with the execution context cleared, so reads inside fn
// are not attributed as dependencies of the evaluating node.
func (rs *ReactiveSystem) Untracked(fn func()) {
	rs.PauseTracking()
	defer rs.ResumeTracking()
	fn()
}

// propagate is the strict two-phase dirty walk, run on every write. Phase 1
// marks every transitively reachable derived node dirty, breadth first over
// an explicit worklist; dirty is monotonic until recompute clears it, so a
// node is enqueued at most once. Phase 2 snapshots every collected
// subscriber-bearing node first, then recomputes and notifies each, so no
// notification can compare against a value produced mid-walk.
func (rs *ReactiveSystem) propagate(deps *[]dependent) {
	var queue, pending []dependent
	for i := 0; i < len(*deps); i++ {
		d := (*deps)[i]
		if n := d.graph(); !n.dirty {
			n.dirty = true
			queue = append(queue, d)
		}
	}
	for i := 0; i < len(queue); i++ {
		d := queue[i]
		if d.hasSubscribers() {
			pending = append(pending, d)
		}
		n := d.graph()
		for j := 0; j < len(n.dependents); j++ {
			dd := n.dependents[j]
			if nn := dd.graph(); !nn.dirty {
				nn.dirty = true
				queue = append(queue, dd)
			}
		}
	}
	for _, d := range pending {
		d.markPending()
	}
	for _, d := range pending {
		d.deliver()
	}
}

func (rs *ReactiveSystem) reportError(err error) {
	if rs.onError != nil {
		rs.onError(err)
		return
	}
	log.Printf("cell: effect error: %v", err)
}

func registerDisposer(rs *ReactiveSystem, fn func()) {
	if rs.activeScope == nil {
		return
	}
	rs.activeScope.add(fn)
}
